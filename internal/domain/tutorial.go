package domain

import (
	"time"
)

// Sort order tokens accepted by listing endpoints. Anything else falls
// back to newest-first insertion order.
const (
	OrderFeatured = "featured"
	OrderLowest   = "lowest"
	OrderHighest  = "highest"
	OrderTopRated = "toprated"
	OrderNewest   = "newest"
)

// Tutorial represents a tutorial in the catalog. Rating and NumberReviews
// are derived from the attached reviews and recomputed on every review
// submission.
type Tutorial struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	Image         string    `json:"image"`
	Images        []string  `json:"images"`
	Category      string    `json:"category"`
	Description   string    `json:"description"`
	Price         float64   `json:"price"`
	CountInStock  int       `json:"countInStock"`
	Rating        float64   `json:"rating"`
	NumberReviews int       `json:"numberReviews"`
	Reviews       []Review  `json:"reviews"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// InStock reports whether at least one unit is available.
func (t *Tutorial) InStock() bool {
	return t.CountInStock > 0
}

// HasStock reports whether qty units are available.
func (t *Tutorial) HasStock(qty int) bool {
	return qty > 0 && t.CountInStock >= qty
}
