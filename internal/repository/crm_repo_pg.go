package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kazwonder/tourbooking/internal/domain"
)

type CRMRepository interface {
	GetSubscriberByEmail(ctx context.Context, email string) (*domain.Subscriber, error)
	UpsertSubscriber(ctx context.Context, sub *domain.Subscriber) error
	CreateSupportMessage(ctx context.Context, msg *domain.SupportMessage) error
}

type PGCRMRepository struct {
	db *pgxpool.Pool
}

func NewCRMRepository(db *pgxpool.Pool) CRMRepository {
	return &PGCRMRepository{db: db}
}

func (r *PGCRMRepository) GetSubscriberByEmail(ctx context.Context, email string) (*domain.Subscriber, error) {
	row := r.db.QueryRow(ctx, `SELECT id, email, name, created_at, last_subscribed_at FROM subscribers WHERE email=$1`, email)
	var s domain.Subscriber
	if err := row.Scan(&s.ID, &s.Email, &s.Name, &s.CreatedAt, &s.LastSubscribedAt); err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

func (r *PGCRMRepository) UpsertSubscriber(ctx context.Context, sub *domain.Subscriber) error {
	return r.db.QueryRow(ctx, `INSERT INTO subscribers (email, name, created_at, last_subscribed_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (email) DO UPDATE SET name=EXCLUDED.name, last_subscribed_at=EXCLUDED.last_subscribed_at
		RETURNING id, created_at`,
		sub.Email, sub.Name, sub.LastSubscribedAt).
		Scan(&sub.ID, &sub.CreatedAt)
}

func (r *PGCRMRepository) CreateSupportMessage(ctx context.Context, msg *domain.SupportMessage) error {
	return r.db.QueryRow(ctx, `INSERT INTO support_messages (name, email, phone, request_type, message)
		VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`,
		msg.Name, msg.Email, msg.Phone, msg.RequestType, msg.Message).
		Scan(&msg.ID, &msg.CreatedAt)
}

var _ CRMRepository = (*PGCRMRepository)(nil)
