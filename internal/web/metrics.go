package web

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var gridDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "historia",
	Name:      "grid_projection_seconds",
	Help:      "Time spent projecting week grids.",
	Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
}, []string{"view"})

func observeGrid(view string, start time.Time) {
	gridDuration.WithLabelValues(view).Observe(time.Since(start).Seconds())
}
