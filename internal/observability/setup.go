package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

var (
	predictionsSubmittedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "predictions_submitted_total",
			Help: "Total number of predictions submitted for moderation",
		},
	)

	moderationActionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moderation_actions_total",
			Help: "Total number of applied moderation actions",
		},
		[]string{"state"},
	)

	forbiddenActionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "forbidden_actions_total",
			Help: "Total number of privileged actions denied to non-admin actors",
		},
	)
)

func Init(addr string) {
	prometheus.MustRegister(predictionsSubmittedTotal)
	prometheus.MustRegister(moderationActionsTotal)
	prometheus.MustRegister(forbiddenActionsTotal)

	go func() {
		http.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(addr, nil); err != nil {
			log.WithError(err).Error("metrics server failed")
		}
	}()
}

func RecordSubmission() {
	predictionsSubmittedTotal.Inc()
}

func RecordModerationAction(state string) {
	moderationActionsTotal.WithLabelValues(state).Inc()
}

func RecordForbiddenAction() {
	forbiddenActionsTotal.Inc()
}
