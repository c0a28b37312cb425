package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kazwonder/tourbooking/internal/domain"
)

type TourRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Tour, error)
	ListExcept(ctx context.Context, id string) ([]domain.Tour, error)
	GetBookingByTourID(ctx context.Context, tourID string) (*domain.Booking, error)
	GetBookingByID(ctx context.Context, id int64) (*domain.Booking, error)
	ListActiveDatesFrom(ctx context.Context, bookingID int64, from domain.Date) ([]domain.BookingDate, error)
	CreateTour(ctx context.Context, tour *domain.Tour) error
	CreateBooking(ctx context.Context, booking *domain.Booking) error
	CreateBookingDate(ctx context.Context, date *domain.BookingDate) error
}

type PGTourRepository struct {
	db *pgxpool.Pool
}

func NewTourRepository(db *pgxpool.Pool) TourRepository {
	return &PGTourRepository{db: db}
}

const tourColumns = `id, title, description, images, included, excluded, what_to_bring, important_info, faq, organizer, map_popup, map_lat, map_long`

func scanTour(row pgx.Row) (*domain.Tour, error) {
	var t domain.Tour
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Images, &t.Included, &t.Excluded,
		&t.WhatToBring, &t.ImportantInfo, &t.FAQ, &t.Organizer, &t.MapPopup, &t.MapLat, &t.MapLong)
	if err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func (r *PGTourRepository) GetByID(ctx context.Context, id string) (*domain.Tour, error) {
	return scanTour(r.db.QueryRow(ctx, `SELECT `+tourColumns+` FROM tours WHERE id=$1`, id))
}

func (r *PGTourRepository) ListExcept(ctx context.Context, id string) ([]domain.Tour, error) {
	rows, err := r.db.Query(ctx, `SELECT `+tourColumns+` FROM tours WHERE id<>$1 ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tours := make([]domain.Tour, 0)
	for rows.Next() {
		t, err := scanTour(rows)
		if err != nil {
			return nil, err
		}
		tours = append(tours, *t)
	}
	return tours, rows.Err()
}

func (r *PGTourRepository) GetBookingByTourID(ctx context.Context, tourID string) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT id, tour_id, cost, currency, days, prepayment, max_seats FROM bookings WHERE tour_id=$1`, tourID)
	return scanBooking(row)
}

func (r *PGTourRepository) GetBookingByID(ctx context.Context, id int64) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT id, tour_id, cost, currency, days, prepayment, max_seats FROM bookings WHERE id=$1`, id)
	return scanBooking(row)
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	if err := row.Scan(&b.ID, &b.TourID, &b.Cost, &b.Currency, &b.Days, &b.Prepayment, &b.MaxSeats); err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

// ListActiveDatesFrom возвращает будущие заезды с остатком мест. Условие
// seats > 0 повторяет domain.BookingDate.Active, чтобы SQL-путь и
// вычисление в памяти совпадали.
func (r *PGTourRepository) ListActiveDatesFrom(ctx context.Context, bookingID int64, from domain.Date) ([]domain.BookingDate, error) {
	rows, err := r.db.Query(ctx, `SELECT id, booking_id, start_date, price, seats FROM booking_dates
		WHERE booking_id=$1 AND seats > 0 AND start_date >= $2 ORDER BY start_date`, bookingID, from.Time)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	dates := make([]domain.BookingDate, 0)
	for rows.Next() {
		var d domain.BookingDate
		if err := rows.Scan(&d.ID, &d.BookingID, &d.StartDate.Time, &d.Price, &d.Seats); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

func (r *PGTourRepository) CreateTour(ctx context.Context, tour *domain.Tour) error {
	_, err := r.db.Exec(ctx, `INSERT INTO tours (`+tourColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		tour.ID, tour.Title, tour.Description, tour.Images, tour.Included, tour.Excluded,
		tour.WhatToBring, tour.ImportantInfo, tour.FAQ, tour.Organizer,
		tour.MapPopup, tour.MapLat, tour.MapLong)
	return err
}

func (r *PGTourRepository) CreateBooking(ctx context.Context, booking *domain.Booking) error {
	return r.db.QueryRow(ctx, `INSERT INTO bookings (tour_id, cost, currency, days, prepayment, max_seats)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		booking.TourID, booking.Cost, booking.Currency, booking.Days, booking.Prepayment, booking.MaxSeats).
		Scan(&booking.ID)
}

func (r *PGTourRepository) CreateBookingDate(ctx context.Context, date *domain.BookingDate) error {
	return r.db.QueryRow(ctx, `INSERT INTO booking_dates (booking_id, start_date, price, seats)
		VALUES ($1, $2, $3, $4) RETURNING id`,
		date.BookingID, date.StartDate.Time, date.Price, date.Seats).
		Scan(&date.ID)
}

var _ TourRepository = (*PGTourRepository)(nil)
