package repository

import (
	"context"

	"github.com/instruktori/tutorialstore/internal/domain"
)

// TutorialFilter defines filter and sort criteria for listing tutorials.
// Nil pointer fields disable the corresponding criterion.
type TutorialFilter struct {
	Category  *string
	Query     *string
	MinPrice  *float64
	MaxPrice  *float64
	MinRating *float64
	Order     string
	Page      int
	PageSize  int
}

// TutorialRepository defines the interface for tutorial persistence operations.
type TutorialRepository interface {
	// Create inserts a new tutorial into the store.
	Create(ctx context.Context, tutorial *domain.Tutorial) error

	// GetByID retrieves a tutorial with its reviews by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Tutorial, error)

	// GetBySlug retrieves a tutorial with its reviews by its URL-friendly slug.
	GetBySlug(ctx context.Context, slug string) (*domain.Tutorial, error)

	// ListAll returns every tutorial, newest first, without pagination.
	ListAll(ctx context.Context) ([]domain.Tutorial, error)

	// List returns tutorials matching the given filter along with the total count.
	List(ctx context.Context, filter TutorialFilter) ([]domain.Tutorial, int, error)

	// ListCategories returns the distinct category names in the catalog.
	ListCategories(ctx context.Context) ([]string, error)

	// Update overwrites the editable fields of an existing tutorial.
	Update(ctx context.Context, tutorial *domain.Tutorial) error

	// Delete removes a tutorial and its reviews by its identifier.
	Delete(ctx context.Context, id string) error

	// AddReview inserts a review and recomputes the tutorial's aggregate
	// rating fields in a single transaction.
	AddReview(ctx context.Context, tutorialID string, review *domain.Review) (*domain.ReviewAggregate, error)
}
