package tours

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/kazwonder/tourbooking/internal/daterange"
	"github.com/kazwonder/tourbooking/internal/domain"
	"github.com/kazwonder/tourbooking/internal/repository"
	"github.com/kazwonder/tourbooking/internal/service/reviews"
)

// ErrTourNotFound — тур с таким идентификатором не существует.
var ErrTourNotFound = errors.New("tour not found")

type TourUseCase interface {
	GetTour(ctx context.Context, tourID string) (*TourPayload, error)
}

type Cache interface {
	GetTourPayload(ctx context.Context, tourID string) ([]byte, error)
	SetTourPayload(ctx context.Context, tourID string, payload []byte) error
}

type RatingProvider interface {
	GetRatingSummary(ctx context.Context, tourID string) (*reviews.Summary, error)
}

// BookingDateItem — заезд в карточке тура. Range отдаётся уже
// отформатированным, фронтенд диапазон не собирает.
type BookingDateItem struct {
	ID     int64  `json:"id"`
	Range  string `json:"range"`
	Price  int64  `json:"price"`
	Seats  int    `json:"seats"`
	Active bool   `json:"active"`
}

type BookingBlock struct {
	BookingID  int64             `json:"bookingId"`
	Cost       int64             `json:"cost"`
	Currency   string            `json:"currency"`
	Days       int               `json:"days"`
	Prepayment int64             `json:"prepayment"`
	MaxSeats   int               `json:"maxSeats"`
	Dates      []BookingDateItem `json:"dates"`
}

type RecommendedCard struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Image    string `json:"image,omitempty"`
	Price    int64  `json:"price"`
	Currency string `json:"currency"`
	Days     int    `json:"days"`
}

// TourPayload — полная карточка тура для страницы.
type TourPayload struct {
	ID            string                     `json:"id"`
	Title         string                     `json:"title"`
	Description   []string                   `json:"description"`
	Images        []string                   `json:"images"`
	Included      []string                   `json:"included"`
	Excluded      []string                   `json:"excluded"`
	WhatToBring   []string                   `json:"whatToBring"`
	ImportantInfo []domain.ImportantInfoItem `json:"importantInfo"`
	FAQ           []domain.FAQItem           `json:"faq"`
	Organizer     domain.Organizer           `json:"organizer"`
	MapPopup      string                     `json:"mapPopup"`
	MapLat        float64                    `json:"mapLat"`
	MapLong       float64                    `json:"mapLong"`
	Booking       *BookingBlock              `json:"booking,omitempty"`
	Rating        *reviews.Summary           `json:"rating,omitempty"`
	Recommended   []RecommendedCard          `json:"recommended"`
}

type TourService struct {
	tours  repository.TourRepository
	cache  Cache
	rating RatingProvider
	codec  *daterange.Codec
	now    func() time.Time
}

func NewTourService(tours repository.TourRepository, cache Cache, rating RatingProvider) *TourService {
	return &TourService{
		tours:  tours,
		cache:  cache,
		rating: rating,
		codec:  daterange.New(),
		now:    time.Now,
	}
}

// GetTour собирает карточку тура. Готовый ответ кладётся в Redis, при
// попадании в кэш база не трогается вовсе.
func (s *TourService) GetTour(ctx context.Context, tourID string) (*TourPayload, error) {
	if s.cache != nil {
		raw, err := s.cache.GetTourPayload(ctx, tourID)
		if err != nil {
			log.Printf("WARNING: tour cache read failed for %s: %v", tourID, err)
		} else if raw != nil {
			var payload TourPayload
			if err := json.Unmarshal(raw, &payload); err == nil {
				return &payload, nil
			}
		}
	}

	payload, err := s.buildPayload(ctx, tourID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(payload); err == nil {
			if err := s.cache.SetTourPayload(ctx, tourID, raw); err != nil {
				log.Printf("WARNING: tour cache write failed for %s: %v", tourID, err)
			}
		}
	}
	return payload, nil
}

func (s *TourService) buildPayload(ctx context.Context, tourID string) (*TourPayload, error) {
	tour, err := s.tours.GetByID(ctx, tourID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTourNotFound
		}
		return nil, err
	}

	payload := &TourPayload{
		ID:            tour.ID,
		Title:         tour.Title,
		Description:   tour.Description,
		Images:        tour.Images,
		Included:      tour.Included,
		Excluded:      tour.Excluded,
		WhatToBring:   tour.WhatToBring,
		ImportantInfo: tour.ImportantInfo,
		FAQ:           tour.FAQ,
		Organizer:     tour.Organizer,
		MapPopup:      tour.MapPopup,
		MapLat:        tour.MapLat,
		MapLong:       tour.MapLong,
		Recommended:   []RecommendedCard{},
	}

	booking, err := s.tours.GetBookingByTourID(ctx, tour.ID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if booking != nil {
		block, err := s.buildBookingBlock(ctx, booking)
		if err != nil {
			return nil, err
		}
		payload.Booking = block
	}

	if s.rating != nil {
		summary, err := s.rating.GetRatingSummary(ctx, tour.ID)
		if err != nil {
			return nil, err
		}
		payload.Rating = summary
	}

	cards, err := s.buildRecommended(ctx, tour.ID)
	if err != nil {
		return nil, err
	}
	payload.Recommended = cards
	return payload, nil
}

func (s *TourService) buildBookingBlock(ctx context.Context, booking *domain.Booking) (*BookingBlock, error) {
	today := domain.DateOf(s.now())
	dates, err := s.tours.ListActiveDatesFrom(ctx, booking.ID, today)
	if err != nil {
		return nil, err
	}

	items := make([]BookingDateItem, 0, len(dates))
	for _, d := range dates {
		items = append(items, BookingDateItem{
			ID:     d.ID,
			Range:  s.codec.Format(d.StartDate, d.EndDate(booking.Days)),
			Price:  d.Price,
			Seats:  d.Seats,
			Active: d.Active(),
		})
	}

	return &BookingBlock{
		BookingID:  booking.ID,
		Cost:       booking.Cost,
		Currency:   booking.Currency,
		Days:       booking.Days,
		Prepayment: booking.Prepayment,
		MaxSeats:   booking.MaxSeats,
		Dates:      items,
	}, nil
}

func (s *TourService) buildRecommended(ctx context.Context, tourID string) ([]RecommendedCard, error) {
	others, err := s.tours.ListExcept(ctx, tourID)
	if err != nil {
		return nil, err
	}

	cards := make([]RecommendedCard, 0, len(others))
	for _, other := range others {
		card := RecommendedCard{ID: other.ID, Title: other.Title}
		if len(other.Images) > 0 {
			card.Image = other.Images[0]
		}
		// Тур без коммерческих условий остаётся в рекомендациях
		// с нулевой ценой.
		booking, err := s.tours.GetBookingByTourID(ctx, other.ID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		if booking != nil {
			card.Price = booking.Cost
			card.Currency = booking.Currency
			card.Days = booking.Days
		}
		cards = append(cards, card)
	}
	return cards, nil
}

var _ TourUseCase = (*TourService)(nil)
