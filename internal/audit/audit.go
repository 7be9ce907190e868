package audit

import (
	"context"
	"strings"
	"time"

	"seamline.io/internal/ids"
	"seamline.io/internal/obs"
)

// Actions recorded for permission-affecting mutations.
const (
	ActionGrantCreate = "grant.create"
	ActionGrantDelete = "grant.delete"
)

// Entry is an immutable record of a permission-affecting mutation.
type Entry struct {
	ID                string            `json:"id"`
	ActorID           string            `json:"actor_id"`
	Action            string            `json:"action"`
	TargetSubjectType string            `json:"target_subject_type"`
	TargetSubjectID   string            `json:"target_subject_id"`
	Details           map[string]string `json:"details,omitempty"`
	OccurredAt        time.Time         `json:"occurred_at"`
}

// Store appends immutable entries. Entries are never updated or deleted.
type Store interface {
	Append(ctx context.Context, entry *Entry) error
}

// Recorder writes audit entries for compliance review. Writes are best-effort:
// a failed append is logged and never fails the mutation it describes.
type Recorder struct {
	store Store
	now   func() time.Time
}

// RecorderOption configures Recorder behavior.
type RecorderOption func(*Recorder)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) RecorderOption {
	return func(r *Recorder) {
		if fn != nil {
			r.now = fn
		}
	}
}

// NewRecorder constructs a Recorder over the given store.
func NewRecorder(store Store, opts ...RecorderOption) *Recorder {
	r := &Recorder{store: store, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record appends an entry, filling in id and timestamp when absent.
// Append failures are logged as structured events; the caller's mutation
// remains the source of truth.
func (r *Recorder) Record(ctx context.Context, entry Entry) {
	if r == nil || r.store == nil {
		return
	}
	if entry.ID == "" {
		entry.ID = ids.New()
	}
	if entry.OccurredAt.IsZero() {
		entry.OccurredAt = r.now().UTC()
	}
	if err := r.store.Append(ctx, &entry); err != nil {
		obs.LogEvent(map[string]any{
			"ts":    r.now().UTC().Format(time.RFC3339Nano),
			"type":  "audit",
			"event": "audit.append_failed",
			"error": err.Error(),
			"fields": map[string]any{
				"action":   entry.Action,
				"actor_id": entry.ActorID,
			},
		})
		return
	}
	r.logEvent(ctx, entry)
}

type ctxKey string

const requestIDKey ctxKey = "audit_request_id"

// WithRequestID attaches the request identifier to the context for audit logging.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, requestID)
}

func requestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// logEvent mirrors the persisted entry to the service log.
func (r *Recorder) logEvent(ctx context.Context, entry Entry) {
	event := map[string]any{
		"ts":       entry.OccurredAt.Format(time.RFC3339Nano),
		"type":     "audit",
		"event":    entry.Action,
		"actor_id": entry.ActorID,
		"target":   entry.TargetSubjectType + ":" + entry.TargetSubjectID,
	}
	if rid := requestIDFromContext(ctx); rid != "" {
		event["request_id"] = rid
	}
	if len(entry.Details) > 0 {
		fields := make(map[string]any, len(entry.Details))
		for k, v := range entry.Details {
			fields[k] = v
		}
		event["fields"] = fields
	}
	obs.LogEvent(event)
}
