package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	SaveWritten   = "written"
	SaveUnchanged = "unchanged"
	SaveError     = "error"
)

var (
	Registry = prometheus.NewRegistry()

	EventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hostsync",
			Name:      "events_total",
			Help:      "Membership events handled, by kind.",
		},
		[]string{"kind"},
	)

	RecordsRejected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "hostsync",
			Name:      "records_rejected_total",
			Help:      "Member records skipped because they could not be applied.",
		},
	)

	SavesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hostsync",
			Name:      "saves_total",
			Help:      "Attempts to save the hosts file, by result.",
		},
		[]string{"result"},
	)

	Entries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "hostsync",
			Name:      "entries",
			Help:      "Number of entries in the hosts file after the last save.",
		},
	)

	buildInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "hostsync",
			Name:      "build_info",
			Help:      "Build info (constant 1, labeled by version).",
		},
		[]string{"version"},
	)

	startTime = time.Now()
	uptime    = prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: "hostsync",
			Name:      "uptime_seconds",
			Help:      "Process uptime in seconds.",
		},
		func() float64 { return time.Since(startTime).Seconds() },
	)
)

func init() {
	Registry.MustRegister(EventsTotal, RecordsRejected, SavesTotal, Entries, buildInfo, uptime)
}

// MetricsHandler exposes /metrics. Mount it with mux.Handle("/metrics", telemetry.MetricsHandler()).
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// SetBuildInfo should be called once at startup.
func SetBuildInfo(version string) {
	buildInfo.WithLabelValues(version).Set(1)
}
