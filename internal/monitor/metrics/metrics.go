package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	eventsClassified = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "theatreops_events_classified_total",
		Help: "Domain events produced by the classifier, by kind",
	}, []string{"kind"})

	classificationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "theatreops_classification_failures_total",
		Help: "Changes the classifier could not evaluate, by entity",
	}, []string{"entity"})

	activeStreams = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "theatreops_active_streams",
		Help: "Change-feed subscriptions currently being pumped",
	})
)

func IncClassified(kind string) { eventsClassified.WithLabelValues(kind).Inc() }

func IncClassificationFailure(entity string) { classificationFailures.WithLabelValues(entity).Inc() }

func StreamStarted() { activeStreams.Inc() }

func StreamStopped() { activeStreams.Dec() }
