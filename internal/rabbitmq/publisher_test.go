package rabbitmq

import (
	"context"
	"encoding/json"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"placechat/internal/observability"
	"placechat/internal/telemetry"
)

func TestConnectWithoutURLIsLogOnly(t *testing.T) {
	p := Connect("", "placechat.events", "placechat")

	assert.Equal(t, "log-only", Mode(p))
	assert.Equal(t, "empty amqp url", DisabledReason(p))
	assert.NoError(t, p.Publish(context.Background(), "audit.placechat", telemetry.AuditEnvelope{EventType: "audit_log"}))
	assert.NoError(t, p.PublishJSON(context.Background(), "placechat.match.created", map[string]string{"k": "v"}, nil))
	assert.NoError(t, p.Close())
}

func TestNewPublishingCarriesHeaders(t *testing.T) {
	envelope := observability.EventEnvelope{EventType: "domain_events", EventName: observability.EventMatchCreated}

	msg, err := newPublishing("placechat", envelope, map[string]string{"x-request-id": "req-1", "trace_id": "abc"})

	require.NoError(t, err)
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, "placechat", msg.AppId)
	assert.Equal(t, "domain_events/match.created", msg.Type)
	assert.Equal(t, "req-1", msg.CorrelationId)
	assert.Equal(t, "abc", msg.Headers["trace_id"])
	assert.NotEmpty(t, msg.MessageId)

	var decoded observability.EventEnvelope
	require.NoError(t, json.Unmarshal(msg.Body, &decoded))
	assert.Equal(t, observability.EventMatchCreated, decoded.EventName)
}

func TestNewPublishingWithoutHeaders(t *testing.T) {
	msg, err := newPublishing("placechat", telemetry.AuditEnvelope{EventType: "audit_log"}, nil)

	require.NoError(t, err)
	assert.Nil(t, msg.Headers)
	assert.Equal(t, "audit_log", msg.Type)
	assert.Empty(t, msg.CorrelationId)
}

func TestNewPublishingRejectsUnencodable(t *testing.T) {
	_, err := newPublishing("placechat", make(chan int), nil)
	assert.Error(t, err)
}
