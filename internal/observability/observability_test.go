package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	routingKey string
	message    interface{}
	headers    map[string]string
	err        error
}

func (p *recordingPublisher) PublishJSON(ctx context.Context, routingKey string, message interface{}, headers map[string]string) error {
	p.routingKey, p.message, p.headers = routingKey, message, headers
	return p.err
}

func TestPublishDomainEvent(t *testing.T) {
	pub := &recordingPublisher{}
	SetPublisher(pub)
	t.Cleanup(func() { SetPublisher(nil) })

	PublishDomainEvent(context.Background(), EventMatchCreated, map[string]string{"match_id": "m1"}, "req-1")

	assert.Equal(t, "placechat.match.created", pub.routingKey)
	envelope, ok := pub.message.(EventEnvelope)
	require.True(t, ok)
	assert.Equal(t, EventMatchCreated, envelope.EventName)
	assert.Equal(t, "req-1", pub.headers["x-request-id"])
	assert.False(t, envelope.OccurredAt.IsZero())
}

func TestPublishEventCountsErrors(t *testing.T) {
	SetPublisher(&recordingPublisher{err: assert.AnError})
	t.Cleanup(func() { SetPublisher(nil) })

	before := testutil.ToFloat64(amqpPublishErrorsTotal)
	err := PublishEvent(context.Background(), "k", nil, nil)
	require.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, before+1, testutil.ToFloat64(amqpPublishErrorsTotal))
}

func TestPublishEventWithoutPublisher(t *testing.T) {
	SetPublisher(nil)
	assert.NoError(t, PublishEvent(context.Background(), "k", nil, nil))
}

func TestHTTPMetricsMiddlewareUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(HTTPMetricsMiddleware())
	r.GET("/rooms/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/rooms/:id", "204"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rooms/abc", nil))

	assert.Equal(t, before+1, testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/rooms/:id", "204")))
}

func TestIncRoomJoinByResult(t *testing.T) {
	before := testutil.ToFloat64(roomJoinsTotal.WithLabelValues("full"))
	IncRoomJoin("full")
	assert.Equal(t, before+1, testutil.ToFloat64(roomJoinsTotal.WithLabelValues("full")))
}
