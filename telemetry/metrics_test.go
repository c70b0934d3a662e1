package telemetry

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsHandler(t *testing.T) {
	SetBuildInfo("test")
	EventsTotal.WithLabelValues("member-join").Inc()
	SavesTotal.WithLabelValues(SaveWritten).Inc()
	Entries.Set(3)

	rec := httptest.NewRecorder()
	MetricsHandler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `hostsync_events_total{kind="member-join"}`)
	assert.Contains(t, string(body), `hostsync_saves_total{result="written"}`)
	assert.Contains(t, string(body), `hostsync_entries 3`)
	assert.Contains(t, string(body), `hostsync_build_info{version="test"} 1`)
	assert.Contains(t, string(body), `hostsync_uptime_seconds`)
}
