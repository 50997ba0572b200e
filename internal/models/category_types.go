package models

// Category is the model for the 'categories' table. Static reference data,
// seeded once and extended by admins.
type Category struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}
