package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kazwonder/tourbooking/internal/domain"
)

type ReviewRepository interface {
	CountByTour(ctx context.Context, tourID string) (int, error)
	ListByTour(ctx context.Context, tourID string, limit, offset int) ([]domain.Review, error)
	RatingCounts(ctx context.Context, tourID string) (map[int]int, error)
	Create(ctx context.Context, review *domain.Review) error
}

type PGReviewRepository struct {
	db *pgxpool.Pool
}

func NewReviewRepository(db *pgxpool.Pool) ReviewRepository {
	return &PGReviewRepository{db: db}
}

func (r *PGReviewRepository) CountByTour(ctx context.Context, tourID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM reviews WHERE tour_id=$1`, tourID).Scan(&count)
	return count, err
}

func (r *PGReviewRepository) ListByTour(ctx context.Context, tourID string, limit, offset int) ([]domain.Review, error) {
	rows, err := r.db.Query(ctx, `SELECT id, tour_id, name, date, rating, text FROM reviews
		WHERE tour_id=$1 ORDER BY date DESC OFFSET $2 LIMIT $3`, tourID, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reviews := make([]domain.Review, 0)
	for rows.Next() {
		var rev domain.Review
		if err := rows.Scan(&rev.ID, &rev.TourID, &rev.Name, &rev.Date.Time, &rev.Rating, &rev.Text); err != nil {
			return nil, err
		}
		reviews = append(reviews, rev)
	}
	return reviews, rows.Err()
}

// RatingCounts возвращает количество отзывов по каждой оценке; оценки без
// отзывов в карту не попадают.
func (r *PGReviewRepository) RatingCounts(ctx context.Context, tourID string) (map[int]int, error) {
	rows, err := r.db.Query(ctx, `SELECT rating, count(*) FROM reviews WHERE tour_id=$1 GROUP BY rating`, tourID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var rating, count int
		if err := rows.Scan(&rating, &count); err != nil {
			return nil, err
		}
		counts[rating] = count
	}
	return counts, rows.Err()
}

func (r *PGReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	return r.db.QueryRow(ctx, `INSERT INTO reviews (tour_id, name, date, rating, text)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		review.TourID, review.Name, review.Date.Time, review.Rating, review.Text).
		Scan(&review.ID)
}

var _ ReviewRepository = (*PGReviewRepository)(nil)
