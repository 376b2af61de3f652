package models

import "time"

// TodoItem is a single task owned by exactly one user.
type TodoItem struct {
	ID           int64     `json:"id"`
	Description  string    `json:"description"`
	IsComplete   bool      `json:"is_complete"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	ItemCategory string    `json:"item_category"`
	Quantity     int       `json:"quantity"`
	StoreName    string    `json:"store_name"`
	OwnerID      int64     `json:"owner_id"`
}

// TodoPatch holds the fields a caller may set on create or edit. Identity,
// owner and timestamps are not editable.
type TodoPatch struct {
	Description  string `json:"description"`
	IsComplete   bool   `json:"is_complete"`
	ItemCategory string `json:"item_category"`
	Quantity     int    `json:"quantity"`
	StoreName    string `json:"store_name"`
}

// StatusFilter selects items by completion flag. Nil fields mean the
// corresponding checkbox was not submitted.
type StatusFilter struct {
	Completed    *bool
	NotCompleted *bool
}
