package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kazwonder/tourbooking/internal/daterange"
	"github.com/kazwonder/tourbooking/internal/domain"
	"github.com/kazwonder/tourbooking/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// Mock структуры

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) GetBookingDate(ctx context.Context, id int64) (*domain.BookingDate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BookingDate), args.Error(1)
}

func (m *MockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Order), args.Error(1)
}

type MockTourRepository struct {
	mock.Mock
}

func (m *MockTourRepository) GetByID(ctx context.Context, id string) (*domain.Tour, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Tour), args.Error(1)
}

func (m *MockTourRepository) ListExcept(ctx context.Context, id string) ([]domain.Tour, error) {
	args := m.Called(ctx, id)
	return args.Get(0).([]domain.Tour), args.Error(1)
}

func (m *MockTourRepository) GetBookingByTourID(ctx context.Context, tourID string) (*domain.Booking, error) {
	args := m.Called(ctx, tourID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockTourRepository) GetBookingByID(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockTourRepository) ListActiveDatesFrom(ctx context.Context, bookingID int64, from domain.Date) ([]domain.BookingDate, error) {
	args := m.Called(ctx, bookingID, from)
	return args.Get(0).([]domain.BookingDate), args.Error(1)
}

func (m *MockTourRepository) CreateTour(ctx context.Context, tour *domain.Tour) error {
	args := m.Called(ctx, tour)
	return args.Error(0)
}

func (m *MockTourRepository) CreateBooking(ctx context.Context, booking *domain.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *MockTourRepository) CreateBookingDate(ctx context.Context, date *domain.BookingDate) error {
	args := m.Called(ctx, date)
	return args.Error(0)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) InvalidateTour(ctx context.Context, tourID string) error {
	args := m.Called(ctx, tourID)
	return args.Error(0)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) PublishWithRetry(ctx context.Context, topic, key string, value interface{}, maxRetries int) error {
	args := m.Called(ctx, topic, key, value, maxRetries)
	return args.Error(0)
}

// Фикстуры

var testToday = time.Date(2026, time.September, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testToday }

func testTour() *domain.Tour {
	return &domain.Tour{ID: "baikonur", Title: "Байконур", Images: []string{"https://cdn.example/b.jpg"}}
}

func testBooking() *domain.Booking {
	return &domain.Booking{ID: 7, TourID: "baikonur", Cost: 100000, Currency: "KZT", Days: 3, Prepayment: 20000, MaxSeats: 12}
}

func testBookingDate(seats int) *domain.BookingDate {
	return &domain.BookingDate{ID: 42, BookingID: 7, StartDate: domain.NewDate(2025, time.November, 26), Price: 120000, Seats: seats}
}

func validPrimary() domain.PrimaryTraveler {
	return domain.PrimaryTraveler{
		FirstName: "Арман",
		LastName:  "Сериков",
		Email:     "arman@example.com",
		Phone:     "+7 700 000 00 00",
		DOB:       domain.NewDate(1990, time.March, 14),
		Gender:    domain.GenderMale,
	}
}

func newTestService(orderRepo *MockOrderRepository, tourRepo *MockTourRepository, cache Cache, producer Producer) *OrderService {
	return &OrderService{
		orders:             orderRepo,
		tours:              tourRepo,
		cache:              cache,
		producer:           producer,
		notificationsTopic: "notifications",
		codec:              daterange.New(),
		now:                fixedClock,
	}
}

// ============================ Тесты для OrderService ============================

func TestOrderService_CreateOrder_Success(t *testing.T) {
	mockOrderRepo := &MockOrderRepository{}
	mockTourRepo := &MockTourRepository{}
	mockCache := &MockCache{}
	mockProducer := &MockProducer{}

	service := newTestService(mockOrderRepo, mockTourRepo, mockCache, mockProducer)

	ctx := context.Background()
	input := CreateOrderInput{
		UserID:            11,
		UserEmail:         "arman@example.com",
		TourID:            "baikonur",
		BookingDateID:     42,
		ParticipantsCount: 2,
		PrimaryTraveler:   validPrimary(),
	}

	mockOrderRepo.On("GetBookingDate", ctx, int64(42)).Return(testBookingDate(10), nil).Once()
	mockTourRepo.On("GetBookingByID", ctx, int64(7)).Return(testBooking(), nil).Once()
	mockTourRepo.On("GetByID", ctx, "baikonur").Return(testTour(), nil).Once()
	mockOrderRepo.On("Create", ctx, mock.AnythingOfType("*domain.Order")).Run(func(args mock.Arguments) {
		order := args.Get(1).(*domain.Order)
		order.ID = 777
		order.Status = domain.OrderStatusConfirmed
	}).Return(nil).Once()
	mockCache.On("InvalidateTour", ctx, "baikonur").Return(nil).Once()
	mockProducer.On("PublishWithRetry", ctx, "notifications", mock.Anything, mock.Anything, publishRetries).Return(nil).Once()

	order, err := service.CreateOrder(ctx, input)

	assert.NoError(t, err)
	assert.NotNil(t, order)
	assert.Equal(t, int64(777), order.ID)
	assert.Equal(t, int64(240000), order.TotalAmount)
	assert.Equal(t, int64(40000), order.PrepaymentAmount)
	assert.Equal(t, "KZT", order.Currency)
	assert.Equal(t, "26–28 ноя 2025", order.DateRange)
	assert.Equal(t, "Байконур", order.TourTitle)

	mockOrderRepo.AssertExpectations(t)
	mockTourRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
	mockProducer.AssertExpectations(t)
}

// Неположительное число участников отклоняется как ошибка данных
// заявки, а не как внутренняя ошибка.
func TestOrderService_CreateOrder_ParticipantsCountNotPositive(t *testing.T) {
	service := newTestService(&MockOrderRepository{}, &MockTourRepository{}, &MockCache{}, &MockProducer{})

	_, err := service.CreateOrder(context.Background(), CreateOrderInput{
		TourID:            "baikonur",
		BookingDateID:     42,
		ParticipantsCount: 0,
		PrimaryTraveler:   validPrimary(),
	})

	var violation *domain.FieldViolation
	assert.Error(t, err)
	assert.True(t, errors.As(err, &violation))
	assert.Equal(t, "order", violation.Traveler)
	assert.Equal(t, "participantsCount", violation.Field)
}

func TestOrderService_CreateOrder_DateNotFound(t *testing.T) {
	mockOrderRepo := &MockOrderRepository{}
	service := newTestService(mockOrderRepo, &MockTourRepository{}, &MockCache{}, &MockProducer{})

	ctx := context.Background()
	mockOrderRepo.On("GetBookingDate", ctx, int64(404)).Return(nil, repository.ErrNotFound).Once()

	_, err := service.CreateOrder(ctx, CreateOrderInput{
		TourID:            "baikonur",
		BookingDateID:     404,
		ParticipantsCount: 1,
		PrimaryTraveler:   validPrimary(),
	})

	assert.ErrorIs(t, err, ErrNotFound)
	mockOrderRepo.AssertExpectations(t)
}

func TestOrderService_CreateOrder_DateInactive(t *testing.T) {
	mockOrderRepo := &MockOrderRepository{}
	service := newTestService(mockOrderRepo, &MockTourRepository{}, &MockCache{}, &MockProducer{})

	ctx := context.Background()
	mockOrderRepo.On("GetBookingDate", ctx, int64(42)).Return(testBookingDate(0), nil).Once()

	_, err := service.CreateOrder(ctx, CreateOrderInput{
		TourID:            "baikonur",
		BookingDateID:     42,
		ParticipantsCount: 1,
		PrimaryTraveler:   validPrimary(),
	})

	assert.ErrorIs(t, err, ErrUnavailable)
	mockOrderRepo.AssertExpectations(t)
}

// Запрос 5 мест при 3 свободных отклоняется целиком: частичное
// бронирование не допускается, Create не вызывается вовсе.
func TestOrderService_CreateOrder_InsufficientCapacity(t *testing.T) {
	mockOrderRepo := &MockOrderRepository{}
	service := newTestService(mockOrderRepo, &MockTourRepository{}, &MockCache{}, &MockProducer{})

	ctx := context.Background()
	mockOrderRepo.On("GetBookingDate", ctx, int64(42)).Return(testBookingDate(3), nil).Once()

	_, err := service.CreateOrder(ctx, CreateOrderInput{
		TourID:            "baikonur",
		BookingDateID:     42,
		ParticipantsCount: 5,
		PrimaryTraveler:   validPrimary(),
	})

	assert.ErrorIs(t, err, ErrInsufficientCapacity)
	mockOrderRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	mockOrderRepo.AssertExpectations(t)
}

func TestOrderService_CreateOrder_PrimaryTravelerValidation(t *testing.T) {
	testCases := []struct {
		name     string
		mutate   func(*domain.PrimaryTraveler)
		field    string
	}{
		{
			name:   "Exactly one day under 18",
			mutate: func(p *domain.PrimaryTraveler) { p.DOB = domain.NewDate(2008, time.September, 2) },
			field:  "dob",
		},
		{
			name:   "Missing first name",
			mutate: func(p *domain.PrimaryTraveler) { p.FirstName = "" },
			field:  "firstName",
		},
		{
			name:   "Bad email",
			mutate: func(p *domain.PrimaryTraveler) { p.Email = "not-an-email" },
			field:  "email",
		},
		{
			name:   "Unknown gender",
			mutate: func(p *domain.PrimaryTraveler) { p.Gender = "other" },
			field:  "gender",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockOrderRepo := &MockOrderRepository{}
			service := newTestService(mockOrderRepo, &MockTourRepository{}, &MockCache{}, &MockProducer{})

			ctx := context.Background()
			mockOrderRepo.On("GetBookingDate", ctx, int64(42)).Return(testBookingDate(10), nil).Once()

			primary := validPrimary()
			tc.mutate(&primary)

			_, err := service.CreateOrder(ctx, CreateOrderInput{
				TourID:            "baikonur",
				BookingDateID:     42,
				ParticipantsCount: 1,
				PrimaryTraveler:   primary,
			})

			var violation *domain.FieldViolation
			assert.Error(t, err)
			assert.True(t, errors.As(err, &violation))
			assert.Equal(t, "primary", violation.Traveler)
			assert.Equal(t, tc.field, violation.Field)
			mockOrderRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

// Ровно 18 лет на момент проверки — проходит.
func TestOrderService_CreateOrder_ExactlyEighteenPasses(t *testing.T) {
	mockOrderRepo := &MockOrderRepository{}
	mockTourRepo := &MockTourRepository{}
	service := newTestService(mockOrderRepo, mockTourRepo, nil, nil)

	ctx := context.Background()
	primary := validPrimary()
	primary.DOB = domain.NewDate(2008, time.September, 1)

	mockOrderRepo.On("GetBookingDate", ctx, int64(42)).Return(testBookingDate(10), nil).Once()
	mockTourRepo.On("GetBookingByID", ctx, int64(7)).Return(testBooking(), nil).Once()
	mockTourRepo.On("GetByID", ctx, "baikonur").Return(testTour(), nil).Once()
	mockOrderRepo.On("Create", ctx, mock.AnythingOfType("*domain.Order")).Return(nil).Once()

	_, err := service.CreateOrder(ctx, CreateOrderInput{
		TourID:            "baikonur",
		BookingDateID:     42,
		ParticipantsCount: 1,
		PrimaryTraveler:   primary,
	})

	assert.NoError(t, err)
	mockOrderRepo.AssertExpectations(t)
}

func TestOrderService_CreateOrder_AdditionalTravelerUnderFour(t *testing.T) {
	mockOrderRepo := &MockOrderRepository{}
	service := newTestService(mockOrderRepo, &MockTourRepository{}, &MockCache{}, &MockProducer{})

	ctx := context.Background()
	mockOrderRepo.On("GetBookingDate", ctx, int64(42)).Return(testBookingDate(10), nil).Once()

	dob := domain.NewDate(2024, time.January, 1)
	_, err := service.CreateOrder(ctx, CreateOrderInput{
		TourID:              "baikonur",
		BookingDateID:       42,
		ParticipantsCount:   2,
		PrimaryTraveler:     validPrimary(),
		AdditionalTravelers: []domain.AdditionalTraveler{{FirstName: "Дана"}, {DOB: &dob}},
	})

	var violation *domain.FieldViolation
	assert.Error(t, err)
	assert.True(t, errors.As(err, &violation))
	assert.Equal(t, "additional[1]", violation.Traveler)
	assert.Equal(t, "dob", violation.Field)
}

// Проигранная гонка за места: условный декремент не прошёл, сервис
// перечитывает остаток и повторяет ровно один раз.
func TestOrderService_CreateOrder_RetryAfterLostRace(t *testing.T) {
	mockOrderRepo := &MockOrderRepository{}
	mockTourRepo := &MockTourRepository{}
	service := newTestService(mockOrderRepo, mockTourRepo, nil, nil)

	ctx := context.Background()
	input := CreateOrderInput{
		TourID:            "baikonur",
		BookingDateID:     42,
		ParticipantsCount: 2,
		PrimaryTraveler:   validPrimary(),
	}

	mockOrderRepo.On("GetBookingDate", ctx, int64(42)).Return(testBookingDate(10), nil).Once()
	mockTourRepo.On("GetBookingByID", ctx, int64(7)).Return(testBooking(), nil).Once()
	mockTourRepo.On("GetByID", ctx, "baikonur").Return(testTour(), nil).Once()
	mockOrderRepo.On("Create", ctx, mock.AnythingOfType("*domain.Order")).Return(repository.ErrSeatConflict).Once()
	mockOrderRepo.On("GetBookingDate", ctx, int64(42)).Return(testBookingDate(2), nil).Once()
	mockOrderRepo.On("Create", ctx, mock.AnythingOfType("*domain.Order")).Return(nil).Once()

	order, err := service.CreateOrder(ctx, input)

	assert.NoError(t, err)
	assert.NotNil(t, order)
	mockOrderRepo.AssertExpectations(t)
}

// Повтор тоже проиграл — заявка отклоняется, пересортицы мест нет.
func TestOrderService_CreateOrder_RetryExhausted(t *testing.T) {
	mockOrderRepo := &MockOrderRepository{}
	mockTourRepo := &MockTourRepository{}
	service := newTestService(mockOrderRepo, mockTourRepo, nil, nil)

	ctx := context.Background()
	input := CreateOrderInput{
		TourID:            "baikonur",
		BookingDateID:     42,
		ParticipantsCount: 2,
		PrimaryTraveler:   validPrimary(),
	}

	mockOrderRepo.On("GetBookingDate", ctx, int64(42)).Return(testBookingDate(10), nil).Once()
	mockTourRepo.On("GetBookingByID", ctx, int64(7)).Return(testBooking(), nil).Once()
	mockTourRepo.On("GetByID", ctx, "baikonur").Return(testTour(), nil).Once()
	mockOrderRepo.On("Create", ctx, mock.AnythingOfType("*domain.Order")).Return(repository.ErrSeatConflict).Once()
	mockOrderRepo.On("GetBookingDate", ctx, int64(42)).Return(testBookingDate(1), nil).Once()

	_, err := service.CreateOrder(ctx, input)

	assert.ErrorIs(t, err, ErrInsufficientCapacity)
	mockOrderRepo.AssertExpectations(t)
}

func TestOrderService_ListOrdersForUser(t *testing.T) {
	mockOrderRepo := &MockOrderRepository{}
	service := newTestService(mockOrderRepo, &MockTourRepository{}, &MockCache{}, &MockProducer{})

	ctx := context.Background()
	orders := []domain.Order{
		{ID: 2, UserID: 11, TourID: "baikonur", CreatedAt: testToday},
		{ID: 1, UserID: 11, TourID: "charyn", CreatedAt: testToday.Add(-24 * time.Hour)},
	}
	mockOrderRepo.On("ListByUser", ctx, int64(11)).Return(orders, nil).Once()

	got, err := service.ListOrdersForUser(ctx, 11)

	assert.NoError(t, err)
	assert.Equal(t, orders, got)
	mockOrderRepo.AssertExpectations(t)
}
