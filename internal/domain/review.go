package domain

import (
	"time"
)

// Review represents a single review on a tutorial. Name is the reviewer's
// display name and doubles as the uniqueness key: one review per name per
// tutorial.
type Review struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

// ReviewAggregate carries the recomputed rating fields returned alongside
// a newly created review.
type ReviewAggregate struct {
	Rating        float64 `json:"rating"`
	NumberReviews int     `json:"numberReviews"`
}
