package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kazwonder/tourbooking/internal/domain"
	"github.com/kazwonder/tourbooking/internal/service/orders"
)

type ProfileProvider interface {
	GetProfile(ctx context.Context, userID int64) (*domain.User, error)
}

type OrderHandler struct {
	service  orders.OrderUseCase
	profiles ProfileProvider
}

type createOrderRequest struct {
	TourID              string                      `json:"tour_id"`
	BookingDateID       int64                       `json:"booking_date_id"`
	ParticipantsCount   int                         `json:"participants_count"`
	PrimaryTraveler     domain.PrimaryTraveler      `json:"primary_traveler"`
	AdditionalTravelers []domain.AdditionalTraveler `json:"additional_travelers"`
}

type orderResponse struct {
	ID                  int64                       `json:"id"`
	TourID              string                      `json:"tourId"`
	TourTitle           string                      `json:"tourTitle"`
	BookingDateID       int64                       `json:"bookingDateId"`
	DateRange           string                      `json:"dateRange"`
	ParticipantsCount   int                         `json:"participantsCount"`
	TotalAmount         int64                       `json:"totalAmount"`
	PrepaymentAmount    int64                       `json:"prepaymentAmount"`
	Currency            string                      `json:"currency"`
	Status              string                      `json:"status"`
	PrimaryTraveler     domain.PrimaryTraveler      `json:"primaryTraveler"`
	AdditionalTravelers []domain.AdditionalTraveler `json:"additionalTravelers,omitempty"`
	CreatedAt           string                      `json:"createdAt"`
}

func NewOrderHandler(service orders.OrderUseCase, profiles ProfileProvider) *OrderHandler {
	return &OrderHandler{service: service, profiles: profiles}
}

func (h *OrderHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.create)
	router.GET("/", h.list)
}

func (h *OrderHandler) create(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := currentUserID(c)
	user, err := h.profiles.GetProfile(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
		return
	}

	order, err := h.service.CreateOrder(c.Request.Context(), orders.CreateOrderInput{
		UserID:              userID,
		UserEmail:           user.Email,
		TourID:              req.TourID,
		BookingDateID:       req.BookingDateID,
		ParticipantsCount:   req.ParticipantsCount,
		PrimaryTraveler:     req.PrimaryTraveler,
		AdditionalTravelers: req.AdditionalTravelers,
	})
	if err != nil {
		h.writeCreateError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toOrderResponse(order))
}

// writeCreateError переводит ошибки оформления заказа в HTTP-статусы.
func (h *OrderHandler) writeCreateError(c *gin.Context, err error) {
	var violation *domain.FieldViolation
	switch {
	case errors.Is(err, orders.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, orders.ErrUnavailable), errors.Is(err, orders.ErrInsufficientCapacity):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &violation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":    violation.Error(),
			"traveler": violation.Traveler,
			"field":    violation.Field,
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (h *OrderHandler) list(c *gin.Context) {
	list, err := h.service.ListOrdersForUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]orderResponse, 0, len(list))
	for i := range list {
		resp = append(resp, toOrderResponse(&list[i]))
	}
	c.JSON(http.StatusOK, gin.H{"orders": resp})
}

func toOrderResponse(order *domain.Order) orderResponse {
	return orderResponse{
		ID:                  order.ID,
		TourID:              order.TourID,
		TourTitle:           order.TourTitle,
		BookingDateID:       order.BookingDateID,
		DateRange:           order.DateRange,
		ParticipantsCount:   order.ParticipantsCount,
		TotalAmount:         order.TotalAmount,
		PrepaymentAmount:    order.PrepaymentAmount,
		Currency:            order.Currency,
		Status:              order.Status,
		PrimaryTraveler:     order.PrimaryTraveler,
		AdditionalTravelers: order.AdditionalTravelers,
		CreatedAt:           order.CreatedAt.Format(time.RFC3339),
	}
}
