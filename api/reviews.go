package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kazwonder/tourbooking/internal/service/reviews"
)

type ReviewHandler struct {
	service reviews.ReviewUseCase
}

func NewReviewHandler(service reviews.ReviewUseCase) *ReviewHandler {
	return &ReviewHandler{service: service}
}

func (h *ReviewHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.list)
}

func (h *ReviewHandler) list(c *gin.Context) {
	tourID := c.Query("tourId")
	if tourID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tourId is required"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	result, err := h.service.ListReviews(c.Request.Context(), tourID, page, perPage)
	if err != nil {
		if errors.Is(err, reviews.ErrNoReviews) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}
