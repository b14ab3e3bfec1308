package storefront

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/instruktori/tutorialstore/internal/domain"
	apperrors "github.com/instruktori/tutorialstore/pkg/errors"
	"github.com/instruktori/tutorialstore/pkg/httpclient"
)

// SearchParams mirrors the query parameters of the catalog search endpoint.
// Zero values are omitted from the request.
type SearchParams struct {
	Page     int
	PageSize int
	Category string
	Query    string
	Price    string
	Rating   string
	Order    string
}

// SearchResult is a page of tutorials as returned by the catalog.
type SearchResult struct {
	Tutorials      []domain.Tutorial `json:"tutorials"`
	CountTutorials int               `json:"countTutorials"`
	Page           int               `json:"page"`
	Pages          int               `json:"pages"`
}

// CatalogClient is a headless client for the catalog API, protected by a
// circuit breaker so a struggling backend degrades reads instead of piling
// up timeouts.
type CatalogClient struct {
	http    *httpclient.BreakerClient
	baseURL string
}

// NewCatalogClient creates a catalog client against the given base URL.
func NewCatalogClient(http *httpclient.BreakerClient, baseURL string) *CatalogClient {
	return &CatalogClient{
		http:    http,
		baseURL: baseURL,
	}
}

// ListTutorials fetches the full unpaginated catalog.
func (c *CatalogClient) ListTutorials(ctx context.Context) ([]domain.Tutorial, error) {
	var tutorials []domain.Tutorial
	if err := c.getJSON(ctx, c.baseURL+"/api/tutorials", &tutorials); err != nil {
		return nil, err
	}
	return tutorials, nil
}

// GetTutorial fetches a single tutorial by ID.
func (c *CatalogClient) GetTutorial(ctx context.Context, id string) (*domain.Tutorial, error) {
	var tutorial domain.Tutorial
	if err := c.getJSON(ctx, c.baseURL+"/api/tutorials/"+url.PathEscape(id), &tutorial); err != nil {
		return nil, err
	}
	return &tutorial, nil
}

// GetTutorialBySlug fetches a single tutorial by slug.
func (c *CatalogClient) GetTutorialBySlug(ctx context.Context, slug string) (*domain.Tutorial, error) {
	var tutorial domain.Tutorial
	if err := c.getJSON(ctx, c.baseURL+"/api/tutorials/slug/"+url.PathEscape(slug), &tutorial); err != nil {
		return nil, err
	}
	return &tutorial, nil
}

// ListCategories fetches the distinct category names.
func (c *CatalogClient) ListCategories(ctx context.Context) ([]string, error) {
	var categories []string
	if err := c.getJSON(ctx, c.baseURL+"/api/tutorials/categories", &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// Search fetches a filtered page of tutorials.
func (c *CatalogClient) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	q := url.Values{}
	if params.Page > 0 {
		q.Set("page", fmt.Sprintf("%d", params.Page))
	}
	if params.PageSize > 0 {
		q.Set("pageSize", fmt.Sprintf("%d", params.PageSize))
	}
	if params.Category != "" {
		q.Set("category", params.Category)
	}
	if params.Query != "" {
		q.Set("query", params.Query)
	}
	if params.Price != "" {
		q.Set("price", params.Price)
	}
	if params.Rating != "" {
		q.Set("rating", params.Rating)
	}
	if params.Order != "" {
		q.Set("order", params.Order)
	}

	endpoint := c.baseURL + "/api/tutorials/search"
	if encoded := q.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	var result SearchResult
	if err := c.getJSON(ctx, endpoint, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *CatalogClient) getJSON(ctx context.Context, endpoint string, dst any) error {
	resp, err := c.http.Get(ctx, endpoint)
	if err != nil {
		return fmt.Errorf("catalog request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return apperrors.TutorialNotFound()
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("catalog request %s: unexpected status %d", endpoint, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode catalog response: %w", err)
	}
	return nil
}
