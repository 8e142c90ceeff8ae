package dto

import "time"

// StatementRequest selects the completed sessions rendered in a mentor statement.
type StatementRequest struct {
	From   time.Time `form:"from" time_format:"2006-01-02" time_utc:"1" validate:"required"`
	To     time.Time `form:"to" time_format:"2006-01-02" time_utc:"1" validate:"required"`
	Format string    `form:"format" validate:"omitempty,oneof=csv pdf"`
}

// StatementResponse returns a signed download link.
type StatementResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
	Format    string    `json:"format"`
	Sessions  int       `json:"sessions"`
	Total     float64   `json:"total"`
}
