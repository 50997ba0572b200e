package models

import "time"

// Review is the model for the 'reviews' table. A user may review the same
// product more than once; ratings are bounded to 1..5 at the API boundary.
type Review struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"userId" db:"user_id"`
	ProductID int64     `json:"productId" db:"product_id"`
	Rating    int       `json:"rating" db:"rating"`
	Comment   string    `json:"comment" db:"comment"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	// Reviewer display handle derived from the user's email local part.
	Reviewer string `json:"reviewer,omitempty" db:"-"`
}
