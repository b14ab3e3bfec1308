package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/instruktori/tutorialstore/internal/domain"
	"github.com/instruktori/tutorialstore/internal/repository"
	"github.com/instruktori/tutorialstore/pkg/database"
	apperrors "github.com/instruktori/tutorialstore/pkg/errors"
)

const tutorialColumns = `id, name, slug, image, images, category, description, price, count_in_stock, rating, number_reviews, created_at, updated_at`

// TutorialRepository implements repository.TutorialRepository using PostgreSQL.
// The internal seq column preserves insertion order so the default listing is
// newest first with stable tie-breaks.
type TutorialRepository struct {
	pool database.DBTX
}

// NewTutorialRepository creates a new PostgreSQL-backed tutorial repository.
func NewTutorialRepository(pool database.DBTX) *TutorialRepository {
	return &TutorialRepository{pool: pool}
}

// Create inserts a new tutorial into the database.
func (r *TutorialRepository) Create(ctx context.Context, t *domain.Tutorial) error {
	query := `
		INSERT INTO tutorials (id, name, slug, image, images, category, description, price, count_in_stock, rating, number_reviews, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.pool.Exec(ctx, query,
		t.ID,
		t.Name,
		t.Slug,
		t.Image,
		t.Images,
		t.Category,
		t.Description,
		t.Price,
		t.CountInStock,
		t.Rating,
		t.NumberReviews,
		t.CreatedAt,
		t.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.InvalidInput(fmt.Sprintf("tutorial with name %q already exists", t.Name))
		}
		return fmt.Errorf("insert tutorial: %w", err)
	}

	return nil
}

// GetByID retrieves a tutorial with its reviews by its ID.
func (r *TutorialRepository) GetByID(ctx context.Context, id string) (*domain.Tutorial, error) {
	query := fmt.Sprintf(`SELECT %s FROM tutorials WHERE id = $1`, tutorialColumns)
	return r.getOne(ctx, query, id)
}

// GetBySlug retrieves a tutorial with its reviews by its slug.
func (r *TutorialRepository) GetBySlug(ctx context.Context, slug string) (*domain.Tutorial, error) {
	query := fmt.Sprintf(`SELECT %s FROM tutorials WHERE slug = $1`, tutorialColumns)
	return r.getOne(ctx, query, slug)
}

// ListAll returns every tutorial with reviews, newest first.
func (r *TutorialRepository) ListAll(ctx context.Context) ([]domain.Tutorial, error) {
	query := fmt.Sprintf(`SELECT %s FROM tutorials ORDER BY seq DESC`, tutorialColumns)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list tutorials: %w", err)
	}
	defer rows.Close()

	tutorials, err := scanTutorials(rows)
	if err != nil {
		return nil, err
	}

	if err := r.attachReviews(ctx, tutorials); err != nil {
		return nil, err
	}

	return tutorials, nil
}

// List returns tutorials matching the given filter with the total count.
func (r *TutorialRepository) List(ctx context.Context, filter repository.TutorialFilter) ([]domain.Tutorial, int, error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if filter.Category != nil {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argIndex))
		args = append(args, *filter.Category)
		argIndex++
	}

	if filter.Query != nil {
		conditions = append(conditions, fmt.Sprintf("name ILIKE $%d", argIndex))
		args = append(args, "%"+*filter.Query+"%")
		argIndex++
	}

	if filter.MinPrice != nil {
		conditions = append(conditions, fmt.Sprintf("price >= $%d", argIndex))
		args = append(args, *filter.MinPrice)
		argIndex++
	}

	if filter.MaxPrice != nil {
		conditions = append(conditions, fmt.Sprintf("price <= $%d", argIndex))
		args = append(args, *filter.MaxPrice)
		argIndex++
	}

	if filter.MinRating != nil {
		conditions = append(conditions, fmt.Sprintf("rating >= $%d", argIndex))
		args = append(args, *filter.MinRating)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	// Use count(*) OVER() for total count in a single query.
	query := fmt.Sprintf(`
		SELECT %s, count(*) OVER() AS total_count
		FROM tutorials
		%s
		ORDER BY %s
		LIMIT $%d OFFSET $%d`,
		tutorialColumns, whereClause, orderClause(filter.Order), argIndex, argIndex+1,
	)

	limit := filter.PageSize
	if limit <= 0 {
		limit = 3
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}

	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list tutorials: %w", err)
	}
	defer rows.Close()

	var (
		tutorials  []domain.Tutorial
		totalCount int
	)

	for rows.Next() {
		var t domain.Tutorial

		if err := scanTutorialRow(rows, &t, &totalCount); err != nil {
			return nil, 0, err
		}

		tutorials = append(tutorials, t)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate tutorial rows: %w", err)
	}

	if tutorials == nil {
		tutorials = []domain.Tutorial{}
	}

	if err := r.attachReviews(ctx, tutorials); err != nil {
		return nil, 0, err
	}

	return tutorials, totalCount, nil
}

// ListCategories returns the distinct category names in alphabetical order.
func (r *TutorialRepository) ListCategories(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT category FROM tutorials ORDER BY category`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category rows: %w", err)
	}

	return categories, nil
}

// Update overwrites the editable fields of an existing tutorial. Rating and
// review count are derived fields and are never written here.
func (r *TutorialRepository) Update(ctx context.Context, t *domain.Tutorial) error {
	t.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE tutorials
		SET name = $1, slug = $2, image = $3, images = $4, category = $5,
		    description = $6, price = $7, count_in_stock = $8, updated_at = $9
		WHERE id = $10`

	ct, err := r.pool.Exec(ctx, query,
		t.Name,
		t.Slug,
		t.Image,
		t.Images,
		t.Category,
		t.Description,
		t.Price,
		t.CountInStock,
		t.UpdatedAt,
		t.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.InvalidInput(fmt.Sprintf("tutorial with name %q already exists", t.Name))
		}
		return fmt.Errorf("update tutorial: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.TutorialNotFound()
	}

	return nil
}

// Delete removes a tutorial by its ID. Reviews cascade at the schema level.
func (r *TutorialRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM tutorials WHERE id = $1`

	ct, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete tutorial: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.TutorialNotFound()
	}

	return nil
}

func (r *TutorialRepository) getOne(ctx context.Context, query string, arg any) (*domain.Tutorial, error) {
	var t domain.Tutorial

	row := r.pool.QueryRow(ctx, query, arg)
	if err := row.Scan(
		&t.ID,
		&t.Name,
		&t.Slug,
		&t.Image,
		&t.Images,
		&t.Category,
		&t.Description,
		&t.Price,
		&t.CountInStock,
		&t.Rating,
		&t.NumberReviews,
		&t.CreatedAt,
		&t.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.TutorialNotFound()
		}
		return nil, fmt.Errorf("scan tutorial: %w", err)
	}

	tutorials := []domain.Tutorial{t}
	if err := r.attachReviews(ctx, tutorials); err != nil {
		return nil, err
	}

	return &tutorials[0], nil
}

// attachReviews loads the reviews for the given tutorials in a single query
// and fills each tutorial's Reviews slice, oldest first.
func (r *TutorialRepository) attachReviews(ctx context.Context, tutorials []domain.Tutorial) error {
	if len(tutorials) == 0 {
		return nil
	}

	ids := make([]string, len(tutorials))
	index := make(map[string]int, len(tutorials))
	for i := range tutorials {
		tutorials[i].Reviews = []domain.Review{}
		ids[i] = tutorials[i].ID
		index[tutorials[i].ID] = i
	}

	query := `
		SELECT id, tutorial_id, name, rating, comment, created_at
		FROM reviews
		WHERE tutorial_id = ANY($1)
		ORDER BY created_at, id`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			rv         domain.Review
			tutorialID string
		)
		if err := rows.Scan(&rv.ID, &tutorialID, &rv.Name, &rv.Rating, &rv.Comment, &rv.CreatedAt); err != nil {
			return fmt.Errorf("scan review row: %w", err)
		}
		if i, ok := index[tutorialID]; ok {
			tutorials[i].Reviews = append(tutorials[i].Reviews, rv)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate review rows: %w", err)
	}

	return nil
}

func scanTutorials(rows pgx.Rows) ([]domain.Tutorial, error) {
	tutorials := []domain.Tutorial{}

	for rows.Next() {
		var t domain.Tutorial
		if err := rows.Scan(
			&t.ID,
			&t.Name,
			&t.Slug,
			&t.Image,
			&t.Images,
			&t.Category,
			&t.Description,
			&t.Price,
			&t.CountInStock,
			&t.Rating,
			&t.NumberReviews,
			&t.CreatedAt,
			&t.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan tutorial row: %w", err)
		}
		tutorials = append(tutorials, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tutorial rows: %w", err)
	}

	return tutorials, nil
}

func scanTutorialRow(rows pgx.Rows, t *domain.Tutorial, totalCount *int) error {
	if err := rows.Scan(
		&t.ID,
		&t.Name,
		&t.Slug,
		&t.Image,
		&t.Images,
		&t.Category,
		&t.Description,
		&t.Price,
		&t.CountInStock,
		&t.Rating,
		&t.NumberReviews,
		&t.CreatedAt,
		&t.UpdatedAt,
		totalCount,
	); err != nil {
		return fmt.Errorf("scan tutorial row: %w", err)
	}
	return nil
}

// orderClause maps a sort token to an ORDER BY expression. The internal seq
// column breaks ties so page boundaries stay stable.
func orderClause(order string) string {
	switch order {
	case domain.OrderLowest:
		return "price ASC, seq DESC"
	case domain.OrderHighest:
		return "price DESC, seq DESC"
	case domain.OrderTopRated:
		return "rating DESC, seq DESC"
	case domain.OrderNewest:
		return "seq DESC"
	default:
		// "featured" has no dedicated ranking and uses the default order.
		return "seq DESC"
	}
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}
