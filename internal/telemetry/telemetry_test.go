package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type capturePublisher struct {
	routingKey string
	event      any
}

func (p *capturePublisher) Publish(ctx context.Context, routingKey string, event any) error {
	p.routingKey, p.event = routingKey, event
	return nil
}

func (p *capturePublisher) Close() error { return nil }

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, string, any) error { return assert.AnError }

func (failingPublisher) Close() error { return nil }

func TestAuditEmitterBuildsEnvelope(t *testing.T) {
	pub := &capturePublisher{}
	emitter := NewAuditEmitter(pub, "audit.placechat", "placechat", "test")
	emitter.now = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.FixedZone("KST", 9*3600)) }
	userID := "user-1"

	tp := sdktrace.NewTracerProvider()
	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	emitter.Emit(ctx, AuditRecord{Action: "match.created", Text: "Match created", Resource: "match:m1", RequestID: "req-1", UserID: &userID})

	require.Equal(t, "audit.placechat", pub.routingKey)
	envelope, ok := pub.event.(AuditEnvelope)
	require.True(t, ok)
	assert.Equal(t, "audit_log", envelope.EventType)
	assert.Equal(t, "2026-03-01T00:00:00Z", envelope.OccurredAt)
	assert.Equal(t, "placechat", envelope.Service)
	assert.Equal(t, "req-1", envelope.RequestID)
	assert.Equal(t, span.SpanContext().TraceID().String(), envelope.TraceID)
	assert.Equal(t, LevelInfo, envelope.Payload.Level)
	assert.Equal(t, "match.created", envelope.Payload.Action)
	assert.Equal(t, "match:m1", envelope.Payload.Resource)
	require.NotNil(t, envelope.UserID)
	assert.Equal(t, "user-1", *envelope.UserID)
}

func TestAuditEmitterSwallowsPublishErrors(t *testing.T) {
	emitter := NewAuditEmitter(failingPublisher{}, "audit.placechat", "placechat", "test")
	assert.NotPanics(t, func() {
		emitter.Emit(context.Background(), AuditRecord{Level: LevelError, Action: "room.create_failed"})
	})
}

func TestNilAuditEmitterIsSafe(t *testing.T) {
	var emitter *AuditEmitter
	assert.NotPanics(t, func() { emitter.Emit(context.Background(), AuditRecord{Action: "x"}) })
}

func TestInitTracerDisabled(t *testing.T) {
	shutdown, err := InitTracer(context.Background(), "placechat", "test", "")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
	assert.Empty(t, TraceIDFromContext(context.Background()))
}
