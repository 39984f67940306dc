package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"placechat/internal/observability"
	"placechat/internal/telemetry"
)

// Publisher is the placechat broker connection. Audit envelopes go through
// Publish, domain and websocket events through PublishJSON.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
	PublishJSON(ctx context.Context, routingKey string, message interface{}, headers map[string]string) error
	Close() error
}

// Connect dials the broker and declares the topic exchange. When AMQP is
// disabled or unreachable it returns a publisher that only logs, so the
// service still starts.
func Connect(amqpURL, exchange, appID string) Publisher {
	if amqpURL == "" {
		return newLogOnly("empty amqp url")
	}

	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return newLogOnly(err.Error())
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return newLogOnly(err.Error())
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return newLogOnly(err.Error())
	}

	log.Printf("rabbitmq connected exchange=%s", exchange)
	return &brokerPublisher{conn: conn, ch: ch, exchange: exchange, appID: appID}
}

type brokerPublisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	appID    string
	mu       sync.Mutex
}

func (p *brokerPublisher) Publish(ctx context.Context, routingKey string, event any) error {
	return p.PublishJSON(ctx, routingKey, event, nil)
}

func (p *brokerPublisher) PublishJSON(ctx context.Context, routingKey string, message interface{}, headers map[string]string) error {
	msg, err := newPublishing(p.appID, message, headers)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, msg); err != nil {
		log.Printf("rabbitmq publish failed: routing_key=%s err=%v", routingKey, err)
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}
	return nil
}

func (p *brokerPublisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

func newPublishing(appID string, message interface{}, headers map[string]string) (amqp.Publishing, error) {
	body, err := json.Marshal(message)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("encode event: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		AppId:        appID,
		Type:         eventType(message),
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if len(headers) > 0 {
		msg.Headers = amqp.Table{}
		for key, value := range headers {
			msg.Headers[key] = value
		}
		msg.CorrelationId = headers["x-request-id"]
	}
	return msg, nil
}

// eventType names the envelope kind for consumers filtering on the AMQP type property.
func eventType(message interface{}) string {
	switch m := message.(type) {
	case telemetry.AuditEnvelope:
		return m.EventType
	case observability.EventEnvelope:
		return m.EventType + "/" + m.EventName
	default:
		return ""
	}
}

type logOnlyPublisher struct {
	reason string
}

func newLogOnly(reason string) logOnlyPublisher {
	log.Printf("rabbitmq disabled, events are logged only: %s", reason)
	return logOnlyPublisher{reason: reason}
}

func (p logOnlyPublisher) Publish(ctx context.Context, routingKey string, event any) error {
	return p.PublishJSON(ctx, routingKey, event, nil)
}

func (logOnlyPublisher) PublishJSON(ctx context.Context, routingKey string, message interface{}, headers map[string]string) error {
	log.Printf("rabbitmq log-only publish routing_key=%s type=%s request_id=%s", routingKey, eventType(message), headers["x-request-id"])
	return nil
}

func (logOnlyPublisher) Close() error {
	return nil
}

// Mode reports whether p talks to a broker, for startup logging.
func Mode(p Publisher) string {
	switch p.(type) {
	case *brokerPublisher:
		return "amqp"
	case logOnlyPublisher:
		return "log-only"
	default:
		return "unknown"
	}
}

// DisabledReason explains why a log-only publisher is in use.
func DisabledReason(p Publisher) string {
	if publisher, ok := p.(logOnlyPublisher); ok {
		return publisher.reason
	}
	return ""
}

var (
	_ telemetry.Publisher     = (*brokerPublisher)(nil)
	_ observability.Publisher = (*brokerPublisher)(nil)
	_ telemetry.Publisher     = logOnlyPublisher{}
	_ observability.Publisher = logOnlyPublisher{}
)
