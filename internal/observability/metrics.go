package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "placechat_http_requests_total",
			Help: "Total number of HTTP requests processed by the placechat service.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "placechat_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	wsActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "placechat_ws_active_connections",
			Help: "Number of active room websocket connections.",
		},
	)
	wsEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "placechat_ws_events_total",
			Help: "Total number of websocket events.",
		},
		[]string{"event"},
	)
	matchesCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "placechat_matches_created_total",
			Help: "Total number of matches created or reactivated by reciprocal interest.",
		},
	)
	roomJoinsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "placechat_room_joins_total",
			Help: "Room join attempts by outcome.",
		},
		[]string{"result"},
	)
	placeSearchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "placechat_place_search_total",
			Help: "External place searches by provider and outcome.",
		},
		[]string{"provider", "result"},
	)
	amqpPublishErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "placechat_amqp_publish_errors_total",
			Help: "Total number of AMQP publish errors.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		wsActiveConnections,
		wsEventsTotal,
		matchesCreatedTotal,
		roomJoinsTotal,
		placeSearchTotal,
		amqpPublishErrorsTotal,
	)
}

func HTTPMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()

		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

func IncWSActive() {
	wsActiveConnections.Inc()
}

func DecWSActive() {
	wsActiveConnections.Dec()
}

func IncWSEvent(event string) {
	wsEventsTotal.WithLabelValues(event).Inc()
}

func IncMatchCreated() {
	matchesCreatedTotal.Inc()
}

// IncRoomJoin records a join attempt; result is "joined" or the rejection reason.
func IncRoomJoin(result string) {
	roomJoinsTotal.WithLabelValues(result).Inc()
}

func IncPlaceSearch(provider, result string) {
	placeSearchTotal.WithLabelValues(provider, result).Inc()
}

func IncAMQPPublishError() {
	amqpPublishErrorsTotal.Inc()
}
