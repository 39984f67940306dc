package observability

import (
	"context"
	"log"
	"sync"
	"time"
)

// Domain event names.
const (
	EventInterestCreated = "interest.created"
	EventMatchCreated    = "match.created"
	EventMatchUnmatched  = "match.unmatched"
)

// Routing keys.
const (
	DomainRoutingKeyPrefix = "placechat."
	WSRoutingKey           = "ws_events.rooms"
)

// Publisher delivers JSON events to the broker.
type Publisher interface {
	PublishJSON(ctx context.Context, routingKey string, message interface{}, headers map[string]string) error
}

var (
	publisherMu sync.RWMutex
	publisher   Publisher
)

// SetPublisher installs the process-wide event publisher. A nil publisher disables events.
func SetPublisher(p Publisher) {
	publisherMu.Lock()
	defer publisherMu.Unlock()
	publisher = p
}

// PublishEvent sends message to routingKey, counting failures. It is a no-op
// until a publisher is installed.
func PublishEvent(ctx context.Context, routingKey string, message interface{}, headers map[string]string) error {
	publisherMu.RLock()
	p := publisher
	publisherMu.RUnlock()
	if p == nil {
		return nil
	}

	if err := p.PublishJSON(ctx, routingKey, message, headers); err != nil {
		IncAMQPPublishError()
		return err
	}
	return nil
}

type EventEnvelope struct {
	EventType  string      `json:"event_type"`
	EventName  string      `json:"event_name"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

func BuildHeaders(requestID, traceID string) map[string]string {
	headers := map[string]string{}
	if requestID != "" {
		headers["x-request-id"] = requestID
	}
	if traceID != "" {
		headers["trace_id"] = traceID
	}
	return headers
}

// PublishDomainEvent publishes a domain event under placechat.<name>. Failures are logged.
func PublishDomainEvent(ctx context.Context, name string, payload interface{}, requestID string) {
	err := PublishEvent(ctx, DomainRoutingKeyPrefix+name, EventEnvelope{
		EventType:  "domain_events",
		EventName:  name,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}, BuildHeaders(requestID, ""))
	if err != nil {
		log.Printf("domain event publish failed: event=%s err=%v", name, err)
	}
}
