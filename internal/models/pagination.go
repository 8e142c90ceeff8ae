package models

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page     int  `json:"page"`
	PageSize int  `json:"pageSize"`
	HasMore  bool `json:"hasMore"`
}
