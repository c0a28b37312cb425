package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kazwonder/tourbooking/internal/domain"
)

type OrderRepository interface {
	GetBookingDate(ctx context.Context, id int64) (*domain.BookingDate, error)
	Create(ctx context.Context, order *domain.Order) error
	ListByUser(ctx context.Context, userID int64) ([]domain.Order, error)
}

type PGOrderRepository struct {
	db *pgxpool.Pool
}

func NewOrderRepository(db *pgxpool.Pool) OrderRepository {
	return &PGOrderRepository{db: db}
}

func (r *PGOrderRepository) GetBookingDate(ctx context.Context, id int64) (*domain.BookingDate, error) {
	row := r.db.QueryRow(ctx, `SELECT id, booking_id, start_date, price, seats FROM booking_dates WHERE id=$1`, id)
	var d domain.BookingDate
	if err := row.Scan(&d.ID, &d.BookingID, &d.StartDate.Time, &d.Price, &d.Seats); err != nil {
		return nil, notFound(err)
	}
	return &d, nil
}

// Create атомарно списывает места и сохраняет заказ. Условный UPDATE
// сериализует конкурирующие заказы на один заезд: либо декремент и вставка
// фиксируются вместе, либо транзакция откатывается целиком.
func (r *PGOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	cmd, err := tx.Exec(ctx, `UPDATE booking_dates SET seats = seats - $2 WHERE id=$1 AND seats >= $2`,
		order.BookingDateID, order.ParticipantsCount)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrSeatConflict
	}

	primary, err := json.Marshal(order.PrimaryTraveler)
	if err != nil {
		return err
	}
	var additional []byte
	if order.AdditionalTravelers != nil {
		if additional, err = json.Marshal(order.AdditionalTravelers); err != nil {
			return err
		}
	}

	order.Status = domain.OrderStatusConfirmed
	if err := tx.QueryRow(ctx, `INSERT INTO orders
		(user_id, tour_id, tour_title, booking_date_id, date_range, participants_count,
		 total_amount, prepayment_amount, currency, primary_traveler, additional_travelers, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at`,
		order.UserID, order.TourID, order.TourTitle, order.BookingDateID, order.DateRange,
		order.ParticipantsCount, order.TotalAmount, order.PrepaymentAmount, order.Currency,
		primary, additional, order.Status).
		Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *PGOrderRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	rows, err := r.db.Query(ctx, `SELECT id, user_id, tour_id, tour_title, booking_date_id, date_range,
		participants_count, total_amount, prepayment_amount, currency,
		primary_traveler, additional_travelers, status, created_at, updated_at
		FROM orders WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		var (
			o          domain.Order
			primary    []byte
			additional []byte
		)
		if err := rows.Scan(&o.ID, &o.UserID, &o.TourID, &o.TourTitle, &o.BookingDateID, &o.DateRange,
			&o.ParticipantsCount, &o.TotalAmount, &o.PrepaymentAmount, &o.Currency,
			&primary, &additional, &o.Status, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(primary, &o.PrimaryTraveler); err != nil {
			return nil, err
		}
		// Пустой сохранённый список попутчиков схлопывается в "их нет".
		if len(additional) > 0 && string(additional) != "[]" {
			if err := json.Unmarshal(additional, &o.AdditionalTravelers); err != nil {
				return nil, err
			}
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

var _ OrderRepository = (*PGOrderRepository)(nil)
