// Package metrics exposes the dispatcher's Prometheus counters. Write
// failures must stay observable so an operator can detect silent
// notification loss.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "theatreops_notifications_sent_total",
		Help: "Notifications written to the sink, by severity",
	}, []string{"severity"})

	suppressed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "theatreops_notifications_suppressed_total",
		Help: "Events skipped because their condition is inside a cool-down window",
	})

	belowThreshold = promauto.NewCounter(prometheus.CounterOpts{
		Name: "theatreops_notifications_below_threshold_total",
		Help: "Events that did not cross the dispatch threshold",
	})

	writeFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "theatreops_notification_write_failures_total",
		Help: "Notification sink write failures",
	})
)

func IncSent(severity string) { sent.WithLabelValues(severity).Inc() }

func IncSuppressed() { suppressed.Inc() }

func IncBelowThreshold() { belowThreshold.Inc() }

func IncWriteFailure() { writeFailures.Inc() }
