package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialapp_http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "socialapp_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialapp_notifications_emitted_total",
		Help: "Notifications persisted, by type.",
	}, []string{"type"})

	mutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialapp_mutations_total",
		Help: "Applied social graph and content mutations, by operation.",
	}, []string{"operation"})

	liveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "socialapp_websocket_connections",
		Help: "Currently open notification websockets.",
	})
)

// Operation labels for Mutation.
const (
	OpSignup     = "signup"
	OpFollow     = "follow"
	OpUnfollow   = "unfollow"
	OpLike       = "like"
	OpUnlike     = "unlike"
	OpComment    = "comment"
	OpPostCreate = "post_create"
	OpPostDelete = "post_delete"
)

func NotificationEmitted(kind string) {
	notifications.WithLabelValues(kind).Inc()
}

func Mutation(op string) {
	mutations.WithLabelValues(op).Inc()
}

func ConnectionOpened() { liveConnections.Inc() }
func ConnectionClosed() { liveConnections.Dec() }

// Middleware records count and latency per matched route. Unmatched paths are
// folded into one label to keep cardinality bounded.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		httpRequests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

func Handler() http.Handler {
	return promhttp.Handler()
}
