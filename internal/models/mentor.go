package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Availability maps a lower-case weekday name to the HH:MM start times a mentor accepts.
type Availability map[string][]string

// Allows reports whether hhmm is listed for weekday.
func (a Availability) Allows(weekday, hhmm string) bool {
	for _, slot := range a[strings.ToLower(weekday)] {
		if strings.TrimSpace(slot) == hhmm {
			return true
		}
	}
	return false
}

// Value implements driver.Valuer for the JSONB column.
func (a Availability) Value() (driver.Value, error) {
	if a == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(a)
}

// Scan implements sql.Scanner for the JSONB column.
func (a *Availability) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*a = Availability{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("availability: unsupported source %T", src)
	}
	out := Availability{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("availability: %w", err)
	}
	*a = out
	return nil
}

// MentorProfile carries what booking needs to know about a mentor.
type MentorProfile struct {
	ID           string       `db:"id" json:"id" yaml:"id"`
	DisplayName  string       `db:"display_name" json:"displayName" yaml:"displayName"`
	HourlyRate   float64      `db:"hourly_rate" json:"hourlyRate" yaml:"hourlyRate"`
	Timezone     string       `db:"timezone" json:"timezone" yaml:"timezone"`
	Availability Availability `db:"availability" json:"availability" yaml:"availability"`
	CreatedAt    time.Time    `db:"created_at" json:"createdAt" yaml:"-"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updatedAt" yaml:"-"`
}
