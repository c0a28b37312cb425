package reviews

import (
	"context"
	"errors"
	"math"
	"sort"

	"github.com/kazwonder/tourbooking/internal/repository"
)

// ErrNoReviews — у тура нет ни одного отзыва.
var ErrNoReviews = errors.New("tour has no reviews")

const defaultPerPage = 10

type ReviewUseCase interface {
	ListReviews(ctx context.Context, tourID string, page, perPage int) (*ReviewPage, error)
	GetRatingSummary(ctx context.Context, tourID string) (*Summary, error)
}

type ReviewItem struct {
	ID     int64  `json:"id"`
	Author string `json:"author"`
	Rating int    `json:"rating"`
	Date   string `json:"date"`
	Text   string `json:"text"`
}

type ReviewPage struct {
	Reviews []ReviewItem `json:"reviews"`
	Total   int          `json:"total"`
	Page    int          `json:"page"`
	PerPage int          `json:"perPage"`
	HasMore bool         `json:"hasMore"`
}

type RatingBucket struct {
	Stars int `json:"stars"`
	Count int `json:"count"`
}

// Summary — агрегат рейтинга тура. Average округлён до одного знака,
// ступени без отзывов в Ratings не попадают.
type Summary struct {
	TotalReviews int            `json:"totalReviews"`
	Average      float64        `json:"average"`
	Ratings      []RatingBucket `json:"ratings"`
}

type ReviewService struct {
	reviews repository.ReviewRepository
}

func NewReviewService(reviews repository.ReviewRepository) *ReviewService {
	return &ReviewService{reviews: reviews}
}

func (s *ReviewService) ListReviews(ctx context.Context, tourID string, page, perPage int) (*ReviewPage, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}

	total, err := s.reviews.CountByTour(ctx, tourID)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return nil, ErrNoReviews
	}

	offset := (page - 1) * perPage
	list, err := s.reviews.ListByTour(ctx, tourID, perPage, offset)
	if err != nil {
		return nil, err
	}

	items := make([]ReviewItem, 0, len(list))
	for _, r := range list {
		items = append(items, ReviewItem{
			ID:     r.ID,
			Author: r.Name,
			Rating: r.Rating,
			Date:   r.Date.Format("02.01.2006"),
			Text:   r.Text,
		})
	}

	return &ReviewPage{
		Reviews: items,
		Total:   total,
		Page:    page,
		PerPage: perPage,
		HasMore: offset+len(list) < total,
	}, nil
}

func (s *ReviewService) GetRatingSummary(ctx context.Context, tourID string) (*Summary, error) {
	counts, err := s.reviews.RatingCounts(ctx, tourID)
	if err != nil {
		return nil, err
	}

	total := 0
	sum := 0
	buckets := make([]RatingBucket, 0, len(counts))
	for stars, count := range counts {
		total += count
		sum += stars * count
		buckets = append(buckets, RatingBucket{Stars: stars, Count: count})
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Stars > buckets[j].Stars })

	summary := &Summary{TotalReviews: total, Ratings: buckets}
	if total > 0 {
		summary.Average = math.Round(float64(sum)/float64(total)*10) / 10
	}
	return summary, nil
}

var _ ReviewUseCase = (*ReviewService)(nil)
