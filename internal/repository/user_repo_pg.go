package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kazwonder/tourbooking/internal/domain"
)

type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	CreateEmailToken(ctx context.Context, token *domain.EmailToken) error
	GetEmailToken(ctx context.Context, token string) (*domain.EmailToken, error)
	Activate(ctx context.Context, userID, tokenID int64) error
}

type PGUserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) UserRepository {
	return &PGUserRepository{db: db}
}

const userColumns = `id, email, hashed_password, first_name, last_name, avatar_url, is_active, created_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Email, &u.HashedPassword, &u.FirstName, &u.LastName, &u.AvatarURL, &u.IsActive, &u.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *PGUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email=$1`, email))
}

func (r *PGUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id))
}

func (r *PGUserRepository) Create(ctx context.Context, user *domain.User) error {
	return r.db.QueryRow(ctx, `INSERT INTO users (email, hashed_password, first_name, last_name, avatar_url, is_active)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at`,
		user.Email, user.HashedPassword, user.FirstName, user.LastName, user.AvatarURL, user.IsActive).
		Scan(&user.ID, &user.CreatedAt)
}

func (r *PGUserRepository) Update(ctx context.Context, user *domain.User) error {
	cmd, err := r.db.Exec(ctx, `UPDATE users SET hashed_password=$2, first_name=$3, last_name=$4, avatar_url=$5, is_active=$6 WHERE id=$1`,
		user.ID, user.HashedPassword, user.FirstName, user.LastName, user.AvatarURL, user.IsActive)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGUserRepository) CreateEmailToken(ctx context.Context, token *domain.EmailToken) error {
	return r.db.QueryRow(ctx, `INSERT INTO email_tokens (user_id, token, expires_at, used)
		VALUES ($1, $2, $3, false) RETURNING id`,
		token.UserID, token.Token, token.ExpiresAt).
		Scan(&token.ID)
}

// GetEmailToken возвращает только неиспользованный токен.
func (r *PGUserRepository) GetEmailToken(ctx context.Context, token string) (*domain.EmailToken, error) {
	row := r.db.QueryRow(ctx, `SELECT id, user_id, token, expires_at, used FROM email_tokens
		WHERE token=$1 AND used=false`, token)
	var t domain.EmailToken
	if err := row.Scan(&t.ID, &t.UserID, &t.Token, &t.ExpiresAt, &t.Used); err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

// Activate включает пользователя и гасит токен в одной транзакции.
func (r *PGUserRepository) Activate(ctx context.Context, userID, tokenID int64) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `UPDATE users SET is_active=true WHERE id=$1`, userID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `UPDATE email_tokens SET used=true WHERE id=$1`, tokenID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

var _ UserRepository = (*PGUserRepository)(nil)
