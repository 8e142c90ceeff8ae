package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorWrapsUnknown(t *testing.T) {
	err := FromError(fmt.Errorf("pq: connection refused"))
	assert.Equal(t, ErrInternal.Code, err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.Empty(t, err.Details())
}

func TestCloneKeepsIdentity(t *testing.T) {
	clone := Clone(ErrSlotConflict, "busy")
	assert.True(t, errors.Is(clone, ErrSlotConflict))
	assert.False(t, errors.Is(clone, ErrSlotUnavailable))
	assert.Equal(t, "busy", clone.Message)
	assert.Equal(t, "mentor already has a scheduled session on this date", ErrSlotConflict.Message)
}

func TestDetailsOnlyForClientErrors(t *testing.T) {
	client := Wrap(errors.New("durationMinutes must be positive"), ErrValidation.Code, ErrValidation.Status, "invalid booking payload")
	assert.Equal(t, "durationMinutes must be positive", client.Details())

	server := Internal(errors.New("dial tcp 10.0.0.3:5432"), "failed to load session")
	assert.Empty(t, server.Details())
	assert.Equal(t, "failed to load session: dial tcp 10.0.0.3:5432", server.Error())
}
