package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/kazwonder/tourbooking/internal/daterange"
	"github.com/kazwonder/tourbooking/internal/domain"
	"github.com/kazwonder/tourbooking/internal/repository"
)

const reviewDateLayout = "02.01.2006"

// tourFile — структура каталожного JSON. Поля описаний совпадают с
// тем, что отдаёт карточка тура, поэтому теги фронтендовые.
type tourFile struct {
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
	Map           struct {
		Popup string  `json:"popup"`
		Lat   float64 `json:"lat"`
		Long  float64 `json:"long"`
	} `json:"map"`
	Booking struct {
		Cost       int64  `json:"cost"`
		Currency   string `json:"currency"`
		Days       int    `json:"days"`
		Prepayment int64  `json:"prepayment"`
		MaxSeats   int    `json:"maxSeats"`
		Dates      []struct {
			Range string `json:"range"`
			Price int64  `json:"price"`
			Seats int    `json:"seats"`
		} `json:"dates"`
	} `json:"booking"`
	Reviews []struct {
		Name   string `json:"name"`
		Date   string `json:"date"`
		Rating int    `json:"rating"`
		Text   string `json:"text"`
	} `json:"reviews"`
}

type Loader struct {
	tours   repository.TourRepository
	reviews repository.ReviewRepository
	codec   *daterange.Codec
}

func NewLoader(tours repository.TourRepository, reviews repository.ReviewRepository) *Loader {
	return &Loader{
		tours:   tours,
		reviews: reviews,
		codec:   daterange.New(),
	}
}

// LoadFile импортирует каталог туров из JSON-файла. Каждый тур
// загружается целиком, первая ошибка останавливает импорт.
func (l *Loader) LoadFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read catalog: %w", err)
	}

	var entries []tourFile
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parse catalog: %w", err)
	}

	for _, entry := range entries {
		if err := l.loadTour(ctx, entry); err != nil {
			return fmt.Errorf("tour %q: %w", entry.ID, err)
		}
		log.Printf("tour %q loaded", entry.ID)
	}
	return nil
}

func (l *Loader) loadTour(ctx context.Context, entry tourFile) error {
	tour := &domain.Tour{
		ID:            entry.ID,
		Title:         entry.Title,
		Description:   entry.Description,
		Images:        entry.Images,
		Included:      entry.Included,
		Excluded:      entry.Excluded,
		WhatToBring:   entry.WhatToBring,
		ImportantInfo: entry.ImportantInfo,
		FAQ:           entry.FAQ,
		Organizer:     entry.Organizer,
		MapPopup:      entry.Map.Popup,
		MapLat:        entry.Map.Lat,
		MapLong:       entry.Map.Long,
	}
	if err := l.tours.CreateTour(ctx, tour); err != nil {
		return err
	}

	booking := &domain.Booking{
		TourID:     tour.ID,
		Cost:       entry.Booking.Cost,
		Currency:   entry.Booking.Currency,
		Days:       entry.Booking.Days,
		Prepayment: entry.Booking.Prepayment,
		MaxSeats:   entry.Booking.MaxSeats,
	}
	if err := l.tours.CreateBooking(ctx, booking); err != nil {
		return err
	}

	for _, d := range entry.Booking.Dates {
		start, _, err := l.codec.Parse(d.Range)
		if err != nil {
			return err
		}
		bookingDate := &domain.BookingDate{
			BookingID: booking.ID,
			StartDate: start,
			Price:     d.Price,
			Seats:     d.Seats,
		}
		if err := l.tours.CreateBookingDate(ctx, bookingDate); err != nil {
			return err
		}
	}

	for _, r := range entry.Reviews {
		reviewDate, err := time.Parse(reviewDateLayout, r.Date)
		if err != nil {
			return fmt.Errorf("review date %q: %w", r.Date, err)
		}
		review := &domain.Review{
			TourID: tour.ID,
			Name:   r.Name,
			Date:   domain.DateOf(reviewDate),
			Rating: r.Rating,
			Text:   r.Text,
		}
		if err := l.reviews.Create(ctx, review); err != nil {
			return err
		}
	}
	return nil
}
