package optimistic

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var persistFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "historia",
	Name:      "persistence_failures_total",
	Help:      "Background writes that failed after the local state was already updated.",
}, []string{"entity", "op"})
