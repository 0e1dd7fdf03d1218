package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T) string {
	t.Helper()
	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestWorkflowAndNotifyCounters(t *testing.T) {
	RecordTransition("PENDING", "ADVISOR_REVIEW")
	RecordTransitionFailure("")
	RecordNotification("email", nil)
	RecordNotification("email", errors.New("smtp down"))
	RecordDroppedNotification()

	body := scrape(t)
	assert.Contains(t, body, `internflow_workflow_transitions_total{from="PENDING",to="ADVISOR_REVIEW"}`)
	assert.Contains(t, body, `internflow_workflow_transition_failures_total{code="unknown"}`)
	assert.Contains(t, body, `internflow_notify_notifications_total{result="delivered",sink="email"}`)
	assert.Contains(t, body, `internflow_notify_notifications_total{result="failed",sink="email"}`)
	assert.Contains(t, body, `internflow_notify_notifications_total{result="dropped",sink="queue"}`)
}

func TestMiddlewareUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware("/metrics"))
	r.GET("/internships/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/internships/42", nil))
	require.Equal(t, http.StatusNoContent, w.Code)

	body := scrape(t)
	assert.Contains(t, body, `internflow_http_requests_total{method="GET",path="/internships/:id",status="204"}`)
	assert.NotContains(t, body, "/internships/42")
}
