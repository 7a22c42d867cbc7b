package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"driving-school-platform/internal/domain/model"
)

func init() {
	register(
		tenantsByPlan,
		tenantsOverCapacityTotal,
	)
}

var (
	tenantsByPlan = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tenants_total",
			Help: "Current number of tenants by plan.",
		},
		[]string{"plan"},
	)

	tenantsOverCapacityTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tenants_over_capacity_total",
			Help: "Plan mutations that left a tenant above its account ceiling.",
		},
	)
)

func SetTenantsByPlan(counts map[model.Plan]int) {
	for plan, n := range counts {
		tenantsByPlan.WithLabelValues(string(plan)).Set(float64(n))
	}
}

func IncTenantOverCapacity() {
	tenantsOverCapacityTotal.Inc()
}
