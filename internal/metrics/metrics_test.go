package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func newTestMetrics() *Metrics {
	return NewWithRegistry(prometheus.NewRegistry(), nil)
}

func TestRecordHTTPRequest(t *testing.T) {
	m := newTestMetrics()

	m.RecordHTTPRequest("GET", "/announcements", 200, 15*time.Millisecond)
	m.RecordHTTPRequest("GET", "/announcements", 201, 5*time.Millisecond)
	m.RecordHTTPRequest("POST", "/reports", 409, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/announcements", "2xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("POST", "/reports", "4xx")))
}

func TestBusinessCounters(t *testing.T) {
	m := newTestMetrics()

	m.IncReportCreated("comment")
	m.IncReportCreated("comment")
	m.IncTargetRemoved("announcement")
	m.IncModerationAction("block_user")
	m.IncReactionToggled("like", "added")
	m.AddDanglingReportsSwept(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ReportsCreatedTotal.WithLabelValues("comment")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TargetsRemovedTotal.WithLabelValues("announcement")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ModerationActionsTotal.WithLabelValues("block_user")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReactionsToggledTotal.WithLabelValues("like", "added")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.DanglingReportsSwept))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncReportCreated("comment")
		m.RecordHTTPRequest("GET", "/", 200, time.Millisecond)
	})
}

func TestCategorizeStatus(t *testing.T) {
	cases := map[int]string{200: "2xx", 302: "3xx", 404: "4xx", 503: "5xx", 100: "unknown"}
	for code, want := range cases {
		assert.Equal(t, want, categorizeStatus(code), "code %d", code)
	}
	assert.True(t, ShouldSkipEndpoint("/metrics"))
	assert.False(t, ShouldSkipEndpoint("/announcements"))
}
