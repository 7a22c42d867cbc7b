package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"driving-school-platform/internal/domain/model"
)

func init() {
	register(
		upgradeRequestsSubmittedTotal,
		upgradeRequestsProcessedTotal,
		upgradeRequestsByStatus,
		gatewayCapturesTotal,
	)
}

var (
	upgradeRequestsSubmittedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upgrade_requests_submitted_total",
			Help: "Upgrade requests accepted by submit, by payment method.",
		},
		[]string{"method", "renewal"},
	)

	upgradeRequestsProcessedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upgrade_requests_processed_total",
			Help: "Requests leaving pending, by terminal outcome.",
		},
		[]string{"outcome"},
	)

	upgradeRequestsByStatus = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "upgrade_requests_total",
			Help: "Current number of upgrade requests by status.",
		},
		[]string{"status"},
	)

	gatewayCapturesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_gateway_captures_total",
			Help: "Gateway capture attempts by provider and result.",
		},
		[]string{"provider", "result"},
	)
)

func IncRequestSubmitted(method model.PaymentMethod, renewal bool) {
	r := "false"
	if renewal {
		r = "true"
	}
	upgradeRequestsSubmittedTotal.WithLabelValues(string(method), r).Inc()
}

func IncRequestProcessed(outcome model.RequestStatus) {
	upgradeRequestsProcessedTotal.WithLabelValues(string(outcome)).Inc()
}

func SetRequestsByStatus(counts map[model.RequestStatus]int) {
	statuses := []model.RequestStatus{
		model.RequestStatusPending,
		model.RequestStatusApproved,
		model.RequestStatusRejected,
		model.RequestStatusCancelled,
	}
	for _, st := range statuses {
		if n, ok := counts[st]; ok {
			upgradeRequestsByStatus.WithLabelValues(string(st)).Set(float64(n))
		}
	}
}

func IncGatewayCapture(provider, result string) {
	gatewayCapturesTotal.WithLabelValues(provider, result).Inc()
}
