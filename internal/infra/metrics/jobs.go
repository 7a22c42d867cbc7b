package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		jobRunsTotal,
		jobItemsTotal,
	)
}

var (
	jobRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "maintenance_job_runs_total",
			Help: "Maintenance job executions by job name and result.",
		},
		[]string{"job", "result"},
	)

	jobItemsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "maintenance_job_items_total",
			Help: "Items corrected by maintenance jobs.",
		},
		[]string{"job"},
	)
)

func IncJobRun(job, result string) {
	jobRunsTotal.WithLabelValues(job, result).Inc()
}

func AddJobItems(job string, n int) {
	jobItemsTotal.WithLabelValues(job).Add(float64(n))
}
