package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/instruktori/tutorialstore/internal/domain"
	"github.com/instruktori/tutorialstore/internal/event"
	"github.com/instruktori/tutorialstore/internal/repository"
	apperrors "github.com/instruktori/tutorialstore/pkg/errors"
	"github.com/instruktori/tutorialstore/pkg/slug"
)

// DefaultPageSize is applied when a listing request carries no page size.
const DefaultPageSize = 3

// CatalogService implements the business logic for tutorial catalog operations.
type CatalogService struct {
	repo      repository.TutorialRepository
	publisher event.Publisher
	logger    *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(repo repository.TutorialRepository, publisher event.Publisher, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// ListResult is a page of tutorials with pagination bookkeeping.
type ListResult struct {
	Tutorials      []domain.Tutorial `json:"tutorials"`
	CountTutorials int               `json:"countTutorials"`
	Page           int               `json:"page"`
	Pages          int               `json:"pages"`
}

// UpdateTutorialInput holds the full replacement values for a tutorial's
// editable fields. Every field is written unconditionally; omitted fields
// become their zero value.
type UpdateTutorialInput struct {
	Name         string
	Slug         string
	Image        string
	Images       []string
	Category     string
	Description  string
	Price        float64
	CountInStock int
}

// ListAll returns every tutorial without pagination, newest first.
func (s *CatalogService) ListAll(ctx context.Context) ([]domain.Tutorial, error) {
	tutorials, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list all tutorials: %w", err)
	}
	return tutorials, nil
}

// List returns a filtered, sorted, paginated page of tutorials. Page and
// page size are coerced to usable values before hitting the store.
func (s *CatalogService) List(ctx context.Context, filter repository.TutorialFilter) (*ListResult, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = DefaultPageSize
	}

	tutorials, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list tutorials: %w", err)
	}

	pages := total / filter.PageSize
	if total%filter.PageSize != 0 {
		pages++
	}

	return &ListResult{
		Tutorials:      tutorials,
		CountTutorials: total,
		Page:           filter.Page,
		Pages:          pages,
	}, nil
}

// GetTutorial retrieves a tutorial by its ID.
func (s *CatalogService) GetTutorial(ctx context.Context, id string) (*domain.Tutorial, error) {
	tutorial, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get tutorial by id: %w", err)
	}
	return tutorial, nil
}

// GetTutorialBySlug retrieves a tutorial by its slug.
func (s *CatalogService) GetTutorialBySlug(ctx context.Context, slugValue string) (*domain.Tutorial, error) {
	tutorial, err := s.repo.GetBySlug(ctx, slugValue)
	if err != nil {
		return nil, fmt.Errorf("get tutorial by slug: %w", err)
	}
	return tutorial, nil
}

// ListCategories returns the distinct category names in the catalog.
func (s *CatalogService) ListCategories(ctx context.Context) ([]string, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// CreateTutorial inserts a placeholder tutorial for the admin to edit
// afterwards. A millisecond timestamp keeps the generated name and slug
// unique across repeated creates.
func (s *CatalogService) CreateTutorial(ctx context.Context) (*domain.Tutorial, error) {
	now := time.Now().UTC()
	stamp := now.UnixMilli()

	tutorial := &domain.Tutorial{
		ID:            uuid.New().String(),
		Name:          fmt.Sprintf("sample name %d", stamp),
		Slug:          fmt.Sprintf("sample-name-%d", stamp),
		Image:         "/images/p1.jpg",
		Images:        []string{},
		Category:      "sample category",
		Description:   "sample description",
		Price:         0,
		CountInStock:  0,
		Rating:        0,
		NumberReviews: 0,
		Reviews:       []domain.Review{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, tutorial); err != nil {
		return nil, fmt.Errorf("create tutorial: %w", err)
	}

	if err := s.publisher.PublishTutorialCreated(ctx, tutorial); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish tutorial.created event",
			slog.String("tutorial_id", tutorial.ID),
			slog.String("error", err.Error()),
		)
		// Do not fail the operation if event publishing fails.
	}

	s.logger.InfoContext(ctx, "tutorial created",
		slog.String("tutorial_id", tutorial.ID),
		slog.String("slug", tutorial.Slug),
	)

	return tutorial, nil
}

// UpdateTutorial overwrites every editable field of an existing tutorial
// with the caller's values. Rating and review count stay untouched.
func (s *CatalogService) UpdateTutorial(ctx context.Context, id string, input *UpdateTutorialInput) (*domain.Tutorial, error) {
	if input.Name == "" {
		return nil, apperrors.InvalidInput("tutorial name is required")
	}
	if input.Price < 0 {
		return nil, apperrors.InvalidInput("price must not be negative")
	}
	if input.CountInStock < 0 {
		return nil, apperrors.InvalidInput("stock count must not be negative")
	}

	tutorial, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get tutorial for update: %w", err)
	}

	tutorial.Name = input.Name
	tutorial.Slug = input.Slug
	if tutorial.Slug == "" {
		tutorial.Slug = slug.Generate(input.Name)
	}
	tutorial.Image = input.Image
	tutorial.Images = input.Images
	if tutorial.Images == nil {
		tutorial.Images = []string{}
	}
	tutorial.Category = input.Category
	tutorial.Description = input.Description
	tutorial.Price = input.Price
	tutorial.CountInStock = input.CountInStock

	if err := s.repo.Update(ctx, tutorial); err != nil {
		return nil, fmt.Errorf("update tutorial: %w", err)
	}

	if err := s.publisher.PublishTutorialUpdated(ctx, tutorial); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish tutorial.updated event",
			slog.String("tutorial_id", tutorial.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "tutorial updated",
		slog.String("tutorial_id", tutorial.ID),
		slog.String("slug", tutorial.Slug),
	)

	return tutorial, nil
}

// DeleteTutorial permanently removes a tutorial and its reviews.
func (s *CatalogService) DeleteTutorial(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete tutorial: %w", err)
	}

	if err := s.publisher.PublishTutorialDeleted(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish tutorial.deleted event",
			slog.String("tutorial_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "tutorial deleted",
		slog.String("tutorial_id", id),
	)

	return nil
}

// SubmitReview appends a review under the caller's display name and returns
// the created review with the recomputed aggregate fields. One review per
// reviewer name per tutorial.
func (s *CatalogService) SubmitReview(ctx context.Context, tutorialID, reviewer string, rating int, comment string) (*domain.Review, *domain.ReviewAggregate, error) {
	if reviewer == "" {
		return nil, nil, apperrors.InvalidInput("reviewer name is required")
	}
	if rating < 1 || rating > 5 {
		return nil, nil, apperrors.InvalidInput("rating must be between 1 and 5")
	}

	if _, err := s.repo.GetByID(ctx, tutorialID); err != nil {
		return nil, nil, fmt.Errorf("get tutorial for review: %w", err)
	}

	review := &domain.Review{
		ID:        uuid.New().String(),
		Name:      reviewer,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: time.Now().UTC(),
	}

	agg, err := s.repo.AddReview(ctx, tutorialID, review)
	if err != nil {
		return nil, nil, fmt.Errorf("add review: %w", err)
	}

	if err := s.publisher.PublishReviewCreated(ctx, tutorialID, review); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.created event",
			slog.String("tutorial_id", tutorialID),
			slog.String("review_id", review.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "review created",
		slog.String("tutorial_id", tutorialID),
		slog.String("review_id", review.ID),
		slog.Int("rating", rating),
	)

	return review, agg, nil
}
