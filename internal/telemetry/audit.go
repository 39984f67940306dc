package telemetry

import (
	"context"
	"log"
	"time"
)

// Audit levels.
const (
	LevelInfo  = "INFO"
	LevelError = "ERROR"
)

const auditSchemaVersion = 2

// Publisher delivers audit envelopes to the broker.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
	Close() error
}

// AuditRecord describes one notable user action.
type AuditRecord struct {
	Level     string
	Action    string
	Text      string
	Resource  string
	RequestID string
	UserID    *string
}

type AuditEnvelope struct {
	SchemaVersion int          `json:"schema_version"`
	EventType     string       `json:"event_type"`
	OccurredAt    string       `json:"occurred_at"`
	Service       string       `json:"service"`
	Environment   string       `json:"environment"`
	RequestID     string       `json:"request_id"`
	TraceID       string       `json:"trace_id,omitempty"`
	UserID        *string      `json:"user_id,omitempty"`
	Payload       AuditPayload `json:"payload"`
}

type AuditPayload struct {
	Level    string `json:"level"`
	Action   string `json:"action"`
	Text     string `json:"text"`
	Resource string `json:"resource,omitempty"`
}

// AuditEmitter turns audit records into envelopes on the audit routing key.
type AuditEmitter struct {
	publisher   Publisher
	routingKey  string
	service     string
	environment string
	now         func() time.Time
}

func NewAuditEmitter(publisher Publisher, routingKey, service, environment string) *AuditEmitter {
	return &AuditEmitter{
		publisher:   publisher,
		routingKey:  routingKey,
		service:     service,
		environment: environment,
		now:         time.Now,
	}
}

// Emit is safe on a nil emitter. Publish failures are logged, never returned.
func (e *AuditEmitter) Emit(ctx context.Context, rec AuditRecord) {
	if e == nil || e.publisher == nil {
		return
	}

	envelope := e.envelope(ctx, rec)
	log.Printf("audit: action=%s level=%s request_id=%s resource=%s", envelope.Payload.Action, envelope.Payload.Level, envelope.RequestID, envelope.Payload.Resource)
	if err := e.publisher.Publish(ctx, e.routingKey, envelope); err != nil {
		log.Printf("audit publish failed: action=%s err=%v", rec.Action, err)
	}
}

func (e *AuditEmitter) envelope(ctx context.Context, rec AuditRecord) AuditEnvelope {
	level := rec.Level
	if level == "" {
		level = LevelInfo
	}
	return AuditEnvelope{
		SchemaVersion: auditSchemaVersion,
		EventType:     "audit_log",
		OccurredAt:    e.now().UTC().Format(time.RFC3339Nano),
		Service:       e.service,
		Environment:   e.environment,
		RequestID:     rec.RequestID,
		TraceID:       TraceIDFromContext(ctx),
		UserID:        rec.UserID,
		Payload: AuditPayload{
			Level:    level,
			Action:   rec.Action,
			Text:     rec.Text,
			Resource: rec.Resource,
		},
	}
}
