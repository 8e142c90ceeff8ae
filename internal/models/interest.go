package models

import (
	"time"

	"github.com/lib/pq"
)

// UserInterest is a user's declared preferences.
type UserInterest struct {
	UserID     string         `db:"user_id" json:"userId" yaml:"userId"`
	Tags       pq.StringArray `db:"tags" json:"tags" yaml:"tags"`
	Categories pq.StringArray `db:"categories" json:"categories" yaml:"categories"`
	UpdatedAt  time.Time      `db:"updated_at" json:"updatedAt" yaml:"-"`
}
