package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kazwonder/tourbooking/internal/service/crm"
)

type CRMHandler struct {
	service crm.CRMUseCase
}

func NewCRMHandler(service crm.CRMUseCase) *CRMHandler {
	return &CRMHandler{service: service}
}

func (h *CRMHandler) Register(router *gin.RouterGroup) {
	router.POST("/subscribe", h.subscribe)
	router.POST("/support", h.support)
}

func (h *CRMHandler) subscribe(c *gin.Context) {
	var req crm.SubscribeInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email is required"})
		return
	}

	if err := h.service.Subscribe(c.Request.Context(), req); err != nil {
		if errors.Is(err, crm.ErrCooldown) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "subscribed"})
}

func (h *CRMHandler) support(c *gin.Context) {
	var req crm.SupportInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Email == "" || req.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and message are required"})
		return
	}

	if err := h.service.Support(c.Request.Context(), req); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "message received"})
}
