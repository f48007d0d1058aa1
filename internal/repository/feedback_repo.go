package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"rentalassist-backend/internal/models"
)

type FeedbackRepo struct {
	pool *pgxpool.Pool
}

func NewFeedbackRepo(pool *pgxpool.Pool) *FeedbackRepo {
	return &FeedbackRepo{pool: pool}
}

// Insert stores a vote. A second insert for the same message is ignored and
// reports false.
func (r *FeedbackRepo) Insert(ctx context.Context, fb models.FeedbackRecord) (bool, error) {
	query := `INSERT INTO assistant_feedback (session_id, message_id, positive, category, rated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (session_id, message_id) DO NOTHING`

	tag, err := r.pool.Exec(ctx, query, fb.SessionID, fb.MessageID, fb.Positive, fb.Category, fb.RatedAt)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

type CategoryFeedback struct {
	Category string `json:"category"`
	Positive int    `json:"positive"`
	Negative int    `json:"negative"`
}

// CountByCategory tallies votes rated at or after since.
func (r *FeedbackRepo) CountByCategory(ctx context.Context, since time.Time) ([]CategoryFeedback, error) {
	query := `SELECT category,
			COUNT(*) FILTER (WHERE positive),
			COUNT(*) FILTER (WHERE NOT positive)
		FROM assistant_feedback
		WHERE rated_at >= $1
		GROUP BY category
		ORDER BY category`

	rows, err := r.pool.Query(ctx, query, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CategoryFeedback
	for rows.Next() {
		var c CategoryFeedback
		if err := rows.Scan(&c.Category, &c.Positive, &c.Negative); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
