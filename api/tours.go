package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kazwonder/tourbooking/internal/service/tours"
)

type TourHandler struct {
	service tours.TourUseCase
}

func NewTourHandler(service tours.TourUseCase) *TourHandler {
	return &TourHandler{service: service}
}

func (h *TourHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.get)
}

func (h *TourHandler) get(c *gin.Context) {
	tourID := c.Query("tourId")
	if tourID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tourId is required"})
		return
	}

	payload, err := h.service.GetTour(c.Request.Context(), tourID)
	if err != nil {
		if errors.Is(err, tours.ErrTourNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, payload)
}
