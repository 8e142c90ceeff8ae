package service

import "github.com/deep-platform/deep-api/internal/models"

// sessionTransitions is the complete set of legal (status, action) pairs.
var sessionTransitions = map[models.SessionStatus]map[models.SessionAction]models.SessionStatus{
	models.SessionStatusScheduled: {
		models.SessionActionStart:  models.SessionStatusInProgress,
		models.SessionActionCancel: models.SessionStatusCancelled,
	},
	models.SessionStatusInProgress: {
		models.SessionActionComplete: models.SessionStatusCompleted,
		models.SessionActionCancel:   models.SessionStatusCancelled,
	},
	models.SessionStatusCompleted: {
		models.SessionActionUpdate: models.SessionStatusCompleted,
	},
}

func nextSessionStatus(current models.SessionStatus, action models.SessionAction) (models.SessionStatus, bool) {
	next, ok := sessionTransitions[current][action]
	return next, ok
}
