package metrics

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	broadcastMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broadcast_messages_total",
			Help: "Broadcast delivery attempts by outcome (sent/unsent).",
		},
		[]string{"status"},
	)

	broadcastRunsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "broadcast_runs_total",
			Help: "Completed broadcast runs.",
		},
	)

	broadcastRunSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "broadcast_run_seconds",
			Help:    "Wall-clock duration of broadcast runs in seconds.",
			Buckets: []float64{1, 5, 15, 60, 300, 900, 3600, 7200},
		},
	)

	registeredUsersTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "registered_users_total",
			Help: "Users registered on first contact since process start.",
		},
	)
)

// MustRegister registers collectors with the default registry (idempotent).
func MustRegister() {
	once.Do(func() {
		prometheus.MustRegister(
			broadcastMessagesTotal, broadcastRunsTotal, broadcastRunSeconds,
			registeredUsersTotal, adminCommandTotal,
		)
	})
}

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// -------- Broadcast helpers --------

func IncBroadcastMessage(status string) {
	broadcastMessagesTotal.WithLabelValues(norm(status)).Inc()
}

func ObserveBroadcastRun(elapsed time.Duration) {
	broadcastRunsTotal.Inc()
	broadcastRunSeconds.Observe(elapsed.Seconds())
}

// -------- Registration helpers --------

func IncRegisteredUser() {
	registeredUsersTotal.Inc()
}
