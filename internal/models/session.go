package models

import "time"

// SessionStatus is the lifecycle state of a mentorship session.
type SessionStatus string

const (
	SessionStatusScheduled  SessionStatus = "scheduled"
	SessionStatusInProgress SessionStatus = "in_progress"
	SessionStatusCompleted  SessionStatus = "completed"
	SessionStatusCancelled  SessionStatus = "cancelled"
)

// Terminal reports whether no further status change is possible.
func (s SessionStatus) Terminal() bool {
	return s == SessionStatusCompleted || s == SessionStatusCancelled
}

// SessionAction is a request to move a session through its lifecycle.
type SessionAction string

const (
	SessionActionStart    SessionAction = "start"
	SessionActionComplete SessionAction = "complete"
	SessionActionCancel   SessionAction = "cancel"
	SessionActionUpdate   SessionAction = "update"
)

// Session is a booked meeting between a mentor and a learner.
type Session struct {
	ID              string        `db:"id" json:"id"`
	MentorID        string        `db:"mentor_id" json:"mentorId"`
	LearnerID       string        `db:"learner_id" json:"learnerId"`
	LearnerName     string        `db:"learner_name" json:"learnerName"`
	ScheduledAt     time.Time     `db:"scheduled_at" json:"date"`
	ScheduledDay    string        `db:"scheduled_day" json:"-"`
	DurationMinutes int           `db:"duration_minutes" json:"durationMinutes"`
	Topic           string        `db:"topic" json:"topic"`
	Price           float64       `db:"price" json:"price"`
	Status          SessionStatus `db:"status" json:"status"`
	Feedback        *string       `db:"feedback" json:"feedback,omitempty"`
	Rating          *int          `db:"rating" json:"rating,omitempty"`
	Notes           *string       `db:"notes" json:"notes,omitempty"`
	CreatedAt       time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time     `db:"updated_at" json:"updatedAt"`
}

// IsParticipant reports whether userID is the mentor or the learner.
func (s *Session) IsParticipant(userID string) bool {
	return userID != "" && (userID == s.MentorID || userID == s.LearnerID)
}

// SessionParty selects which side of the session the caller is listing as.
type SessionParty string

const (
	SessionPartyMentor  SessionParty = "mentor"
	SessionPartyLearner SessionParty = "learner"
)

// SessionFilter constrains session listing queries.
type SessionFilter struct {
	UserID string
	Party  SessionParty
	Status SessionStatus
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

// SessionUpdate is the compare-and-set write applied on a transition.
type SessionUpdate struct {
	ID         string
	FromStatus SessionStatus
	ToStatus   SessionStatus
	Feedback   *string
	Rating     *int
	Notes      *string
	UpdatedAt  time.Time
}
