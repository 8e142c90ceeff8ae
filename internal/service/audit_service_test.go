package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deep-platform/deep-api/internal/models"
	"github.com/deep-platform/deep-api/pkg/jobs"
)

func TestAuditRecorderWritesInlineWithClientInfo(t *testing.T) {
	writer := &auditWriterStub{}
	recorder := NewAuditRecorder(writer, nil, nil)

	ctx := WithClientInfo(context.Background(), "10.0.0.1", "curl/8.0")
	recorder.Record(ctx, &models.AuditLog{Action: models.AuditActionSessionCreate, Resource: "session"})

	require.Len(t, writer.written, 1)
	assert.Equal(t, "10.0.0.1", writer.written[0].IPAddress)
	assert.Equal(t, "curl/8.0", writer.written[0].UserAgent)
}

func TestAuditRecorderSwallowsWriteFailures(t *testing.T) {
	metrics := &metricsStub{}
	recorder := NewAuditRecorder(&auditWriterStub{err: errStore}, metrics, nil)

	assert.NotPanics(t, func() {
		recorder.Record(context.Background(), &models.AuditLog{Action: models.AuditActionPostModerate})
	})
	assert.Equal(t, []string{"write"}, metrics.auditFailures)
}

func TestAuditRecorderUsesQueue(t *testing.T) {
	writer := &auditWriterStub{}
	queue := &queueStub{}
	recorder := NewAuditRecorder(writer, nil, nil)
	recorder.Attach(queue)

	recorder.Record(context.Background(), &models.AuditLog{Action: models.AuditActionSessionTransition})
	require.Len(t, queue.tasks, 1)
	assert.Empty(t, writer.written)

	require.NoError(t, recorder.Handle(context.Background(), queue.tasks[0]))
	assert.Len(t, writer.written, 1)

	assert.Error(t, recorder.Handle(context.Background(), jobs.Task{Payload: "nope"}))
}

func TestAuditRecorderCountsQueueFailures(t *testing.T) {
	metrics := &metricsStub{}
	recorder := NewAuditRecorder(&auditWriterStub{}, metrics, nil)
	recorder.Attach(&queueStub{err: jobs.ErrFull})

	recorder.Record(context.Background(), &models.AuditLog{Action: models.AuditActionSessionCreate})
	recorder.Dropped(jobs.Task{Payload: &models.AuditLog{Action: models.AuditActionSessionCreate}}, errStore)

	assert.Equal(t, []string{"enqueue", "retries_exhausted"}, metrics.auditFailures)

	recorder.Dropped(jobs.Task{Payload: &models.AuditLog{Action: models.AuditActionPostModerate}}, fmt.Errorf("audit: %w", jobs.ErrStopped))
	assert.Equal(t, "shutdown", metrics.auditFailures[2])
}

func TestNilAuditRecorderIsSafe(t *testing.T) {
	var recorder *AuditRecorder
	assert.NotPanics(t, func() {
		recorder.Record(context.Background(), &models.AuditLog{})
	})
}
