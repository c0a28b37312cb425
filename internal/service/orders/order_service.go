package orders

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/kazwonder/tourbooking/internal/daterange"
	"github.com/kazwonder/tourbooking/internal/domain"
	"github.com/kazwonder/tourbooking/internal/email"
	"github.com/kazwonder/tourbooking/internal/kafka"
	"github.com/kazwonder/tourbooking/internal/repository"
)

var (
	// ErrNotFound — заезд (или связанные с ним тур/условия) не существует.
	ErrNotFound = errors.New("booking date not found")
	// ErrUnavailable — заезд существует, но мест не осталось.
	ErrUnavailable = errors.New("booking date is not available for booking")
	// ErrInsufficientCapacity — мест меньше, чем участников в заявке.
	ErrInsufficientCapacity = errors.New("not enough free seats")
)

type OrderUseCase interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*domain.Order, error)
	ListOrdersForUser(ctx context.Context, userID int64) ([]domain.Order, error)
}

type Producer interface {
	PublishWithRetry(ctx context.Context, topic, key string, value interface{}, maxRetries int) error
}

// Уведомление вторично по отношению к заказу, после publishRetries
// попыток оно теряется с предупреждением в логе.
const publishRetries = 3

type Cache interface {
	InvalidateTour(ctx context.Context, tourID string) error
}

type OrderService struct {
	orders             repository.OrderRepository
	tours              repository.TourRepository
	cache              Cache
	producer           Producer
	notificationsTopic string
	codec              *daterange.Codec
	now                func() time.Time
}

type CreateOrderInput struct {
	UserID              int64
	UserEmail           string
	TourID              string                      `json:"tour_id"`
	BookingDateID       int64                       `json:"booking_date_id"`
	ParticipantsCount   int                         `json:"participants_count"`
	PrimaryTraveler     domain.PrimaryTraveler      `json:"primary_traveler"`
	AdditionalTravelers []domain.AdditionalTraveler `json:"additional_travelers"`
}

type OrderServiceOption func(*OrderService)

// WithClock подменяет источник времени (для проверки возраста в тестах).
func WithClock(now func() time.Time) OrderServiceOption {
	return func(s *OrderService) {
		s.now = now
	}
}

func NewOrderService(
	orders repository.OrderRepository,
	tours repository.TourRepository,
	cache Cache,
	producer Producer,
	notificationsTopic string,
	opts ...OrderServiceOption,
) *OrderService {
	service := &OrderService{
		orders:             orders,
		tours:              tours,
		cache:              cache,
		producer:           producer,
		notificationsTopic: notificationsTopic,
		codec:              daterange.New(),
		now:                time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// CreateOrder проверяет заявку, атомарно списывает места и сохраняет заказ.
// Порядок проверок фиксирован: существование заезда, доступность, остаток
// мест, данные путешественников.
func (s *OrderService) CreateOrder(ctx context.Context, input CreateOrderInput) (*domain.Order, error) {
	if input.ParticipantsCount <= 0 {
		return nil, &domain.FieldViolation{Traveler: "order", Field: "participantsCount", Rule: "must be positive"}
	}

	bookingDate, err := s.orders.GetBookingDate(ctx, input.BookingDateID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !bookingDate.Active() {
		return nil, ErrUnavailable
	}
	if bookingDate.Seats < input.ParticipantsCount {
		return nil, ErrInsufficientCapacity
	}

	today := s.now()
	if v := input.PrimaryTraveler.Validate(today); v != nil {
		return nil, v
	}
	for i, traveler := range input.AdditionalTravelers {
		if v := traveler.Validate(i, today); v != nil {
			return nil, v
		}
	}

	booking, err := s.tours.GetBookingByID(ctx, bookingDate.BookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	tour, err := s.tours.GetByID(ctx, input.TourID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if booking.TourID != tour.ID {
		return nil, ErrNotFound
	}

	count := int64(input.ParticipantsCount)
	order := &domain.Order{
		UserID:              input.UserID,
		TourID:              tour.ID,
		TourTitle:           tour.Title,
		BookingDateID:       bookingDate.ID,
		DateRange:           s.codec.Format(bookingDate.StartDate, bookingDate.EndDate(booking.Days)),
		ParticipantsCount:   input.ParticipantsCount,
		TotalAmount:         bookingDate.Price * count,
		PrepaymentAmount:    booking.Prepayment * count,
		Currency:            booking.Currency,
		PrimaryTraveler:     input.PrimaryTraveler,
		AdditionalTravelers: input.AdditionalTravelers,
	}

	if err := s.orders.Create(ctx, order); err != nil {
		if !errors.Is(err, repository.ErrSeatConflict) {
			return nil, err
		}
		// Проверка прошла, но декремент проиграл гонку конкурирующему
		// заказу. Перечитываем остаток и пробуем ровно один раз.
		if err := s.retryCreate(ctx, order, input.ParticipantsCount); err != nil {
			return nil, err
		}
	}

	if s.cache != nil {
		_ = s.cache.InvalidateTour(ctx, tour.ID)
	}

	if err := s.publishConfirmation(ctx, order, tour, booking, input.UserEmail); err != nil {
		log.Printf("WARNING: failed to publish order confirmation for order %d: %v", order.ID, err)
	}
	return order, nil
}

func (s *OrderService) retryCreate(ctx context.Context, order *domain.Order, count int) error {
	bookingDate, err := s.orders.GetBookingDate(ctx, order.BookingDateID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if bookingDate.Seats < count {
		return ErrInsufficientCapacity
	}
	if err := s.orders.Create(ctx, order); err != nil {
		if errors.Is(err, repository.ErrSeatConflict) {
			return ErrInsufficientCapacity
		}
		return err
	}
	return nil
}

func (s *OrderService) ListOrdersForUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

func (s *OrderService) publishConfirmation(ctx context.Context, order *domain.Order, tour *domain.Tour, booking *domain.Booking, userEmail string) error {
	if s.producer == nil || s.notificationsTopic == "" {
		return nil
	}

	image := ""
	if len(tour.Images) > 0 {
		image = tour.Images[0]
	}
	html, err := email.BuildOrderConfirmation(email.OrderEmailData{
		OrderID:           order.ID,
		TourTitle:         order.TourTitle,
		TourImageURL:      image,
		DateRange:         order.DateRange,
		Days:              booking.Days,
		ParticipantsCount: order.ParticipantsCount,
		TotalAmount:       order.TotalAmount,
		PrepaymentAmount:  order.PrepaymentAmount,
		Currency:          order.Currency,
		TravelerName:      order.PrimaryTraveler.FirstName,
	})
	if err != nil {
		return err
	}

	event := kafka.NotificationEvent{
		Type:    kafka.EventOrderConfirmation,
		To:      userEmail,
		Subject: fmt.Sprintf("Покупка тура №%d", order.ID),
		HTML:    html,
		SentAt:  s.now(),
	}
	return s.producer.PublishWithRetry(ctx, s.notificationsTopic, uuid.NewString(), event, publishRetries)
}

var _ OrderUseCase = (*OrderService)(nil)
