package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/deep-platform/deep-api/internal/models"
	"github.com/deep-platform/deep-api/pkg/jobs"
)

type auditWriter interface {
	Create(ctx context.Context, log *models.AuditLog) error
}

type auditQueue interface {
	Submit(task jobs.Task) error
}

type auditFailureCounter interface {
	IncAuditFailure(stage string)
}

type clientInfoKey struct{}

type clientInfo struct {
	ip        string
	userAgent string
}

// WithClientInfo stores the caller's network details for audit entries.
func WithClientInfo(ctx context.Context, ip, userAgent string) context.Context {
	return context.WithValue(ctx, clientInfoKey{}, clientInfo{ip: ip, userAgent: userAgent})
}

// AuditRecorder writes audit entries without ever failing the caller.
// With a queue attached writes happen on the worker pool, otherwise inline.
type AuditRecorder struct {
	writer  auditWriter
	queue   auditQueue
	metrics auditFailureCounter
	logger  *zap.Logger
}

// NewAuditRecorder constructs the recorder.
func NewAuditRecorder(writer auditWriter, metrics auditFailureCounter, logger *zap.Logger) *AuditRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditRecorder{writer: writer, metrics: metrics, logger: logger}
}

// Attach routes subsequent records through queue.
func (r *AuditRecorder) Attach(queue auditQueue) {
	r.queue = queue
}

// Record persists entry best-effort.
func (r *AuditRecorder) Record(ctx context.Context, entry *models.AuditLog) {
	if r == nil || entry == nil {
		return
	}
	if info, ok := ctx.Value(clientInfoKey{}).(clientInfo); ok {
		if entry.IPAddress == "" {
			entry.IPAddress = info.ip
		}
		if entry.UserAgent == "" {
			entry.UserAgent = info.userAgent
		}
	}

	if r.queue != nil {
		err := r.queue.Submit(jobs.Task{ID: entry.ID, Kind: entry.Action, Payload: entry})
		if err == nil {
			return
		}
		r.fail("enqueue", entry, err)
		return
	}

	if r.writer == nil {
		return
	}
	if err := r.writer.Create(context.WithoutCancel(ctx), entry); err != nil {
		r.fail("write", entry, err)
	}
}

// Handle is the queue handler performing the actual write.
func (r *AuditRecorder) Handle(ctx context.Context, task jobs.Task) error {
	entry, ok := task.Payload.(*models.AuditLog)
	if !ok {
		return fmt.Errorf("unexpected audit payload %T", task.Payload)
	}
	if r.writer == nil {
		return nil
	}
	return r.writer.Create(ctx, entry)
}

// Dropped observes entries the queue abandoned after exhausting retries.
func (r *AuditRecorder) Dropped(task jobs.Task, err error) {
	entry, _ := task.Payload.(*models.AuditLog)
	stage := "retries_exhausted"
	if errors.Is(err, jobs.ErrStopped) {
		stage = "shutdown"
	}
	r.fail(stage, entry, err)
}

func (r *AuditRecorder) fail(stage string, entry *models.AuditLog, err error) {
	fields := []zap.Field{zap.String("stage", stage), zap.Error(err)}
	if entry != nil {
		fields = append(fields, zap.String("action", entry.Action), zap.String("resource", entry.Resource))
	}
	r.logger.Warn("failed to record audit log", fields...)
	if r.metrics != nil {
		r.metrics.IncAuditFailure(stage)
	}
}
