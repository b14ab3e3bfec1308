package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/instruktori/tutorialstore/internal/domain"
	apperrors "github.com/instruktori/tutorialstore/pkg/errors"
)

// AddReview inserts a review and recomputes the tutorial's aggregate rating
// and review count inside one transaction, so readers never observe a count
// that disagrees with the stored reviews.
func (r *TutorialRepository) AddReview(ctx context.Context, tutorialID string, review *domain.Review) (*domain.ReviewAggregate, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	insert := `
		INSERT INTO reviews (id, tutorial_id, name, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	if _, err := tx.Exec(ctx, insert,
		review.ID,
		tutorialID,
		review.Name,
		review.Rating,
		review.Comment,
		review.CreatedAt,
	); err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.DuplicateReview()
		}
		if isForeignKeyViolation(err) {
			return nil, apperrors.TutorialNotFound()
		}
		return nil, fmt.Errorf("insert review: %w", err)
	}

	recompute := `
		UPDATE tutorials
		SET rating = (SELECT AVG(rating)::float8 FROM reviews WHERE tutorial_id = $1),
		    number_reviews = (SELECT COUNT(*) FROM reviews WHERE tutorial_id = $1),
		    updated_at = $2
		WHERE id = $1
		RETURNING rating, number_reviews`

	var agg domain.ReviewAggregate
	err = tx.QueryRow(ctx, recompute, tutorialID, time.Now().UTC()).Scan(&agg.Rating, &agg.NumberReviews)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.TutorialNotFound()
		}
		return nil, fmt.Errorf("recompute rating: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return &agg, nil
}

// isForeignKeyViolation checks for a PostgreSQL foreign key violation (SQLSTATE 23503).
func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23503")
}
