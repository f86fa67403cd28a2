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
			Name: "hangout_http_requests_total",
			Help: "Total number of HTTP requests processed by the hangout service.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hangout_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	overlapComputationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hangout_overlap_computations_total",
			Help: "Total number of pairwise overlap computations served from the database.",
		},
	)
	overlapCacheHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hangout_overlap_cache_hits_total",
			Help: "Total number of overlap computations served from the cache.",
		},
	)
	hangoutStatusTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hangout_requests_status_total",
			Help: "Total number of hangout request status transitions.",
		},
		[]string{"status"},
	)
	chatsProvisionedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hangout_chats_provisioned_total",
			Help: "Total number of group chats provisioned on full acceptance.",
		},
	)
	chatsSweptTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hangout_chats_swept_total",
			Help: "Total number of expired group chats removed by the sweeper.",
		},
	)
	wsActiveConnections = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hangout_ws_active_connections",
			Help: "Number of active websocket connections.",
		},
		[]string{"kind"},
	)
	wsEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hangout_ws_events_total",
			Help: "Total number of websocket events.",
		},
		[]string{"kind", "event"},
	)
	amqpPublishErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hangout_amqp_publish_errors_total",
			Help: "Total number of AMQP publish errors.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		overlapComputationsTotal,
		overlapCacheHitsTotal,
		hangoutStatusTotal,
		chatsProvisionedTotal,
		chatsSweptTotal,
		wsActiveConnections,
		wsEventsTotal,
		amqpPublishErrorsTotal,
	)
}

func HTTPMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()

		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func IncOverlapComputed() {
	overlapComputationsTotal.Inc()
}

func IncOverlapCacheHit() {
	overlapCacheHitsTotal.Inc()
}

func IncHangoutStatus(status string) {
	hangoutStatusTotal.WithLabelValues(status).Inc()
}

func IncChatProvisioned() {
	chatsProvisionedTotal.Inc()
}

func IncChatSwept() {
	chatsSweptTotal.Inc()
}

func IncWSActive(kind string) {
	wsActiveConnections.WithLabelValues(kind).Inc()
}

func DecWSActive(kind string) {
	wsActiveConnections.WithLabelValues(kind).Dec()
}

func IncWSEvent(kind, event string) {
	wsEventsTotal.WithLabelValues(kind, event).Inc()
}

func IncAMQPPublishError() {
	amqpPublishErrorsTotal.Inc()
}
