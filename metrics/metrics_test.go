package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareCountsByRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/api/posts/user/:username", func(c *gin.Context) { c.Status(http.StatusOK) })

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/posts/user/:username", "200"))
	beforeUnmatched := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "unmatched", "404"))

	for _, path := range []string{"/api/posts/user/alice", "/api/posts/user/bob", "/nope"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, before+2, testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/posts/user/:username", "200")))
	assert.Equal(t, beforeUnmatched+1, testutil.ToFloat64(httpRequests.WithLabelValues("GET", "unmatched", "404")))
}

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(notifications.WithLabelValues("like"))
	NotificationEmitted("like")
	assert.Equal(t, before+1, testutil.ToFloat64(notifications.WithLabelValues("like")))

	beforeOp := testutil.ToFloat64(mutations.WithLabelValues(OpFollow))
	Mutation(OpFollow)
	assert.Equal(t, beforeOp+1, testutil.ToFloat64(mutations.WithLabelValues(OpFollow)))

	ConnectionOpened()
	ConnectionOpened()
	ConnectionClosed()
	assert.Equal(t, float64(1), testutil.ToFloat64(liveConnections))
}

func TestHandlerExposesMetrics(t *testing.T) {
	Mutation(OpPostCreate)

	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "socialapp_mutations_total"))
}
