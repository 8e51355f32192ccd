package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	SavesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "docbind", Name: "saves_total", Help: "Number of driver save calls by collection."},
		[]string{"collection"},
	)
	RemovesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "docbind", Name: "removes_total", Help: "Number of driver remove calls by collection."},
		[]string{"collection"},
	)
	QueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "docbind", Name: "queries_total", Help: "Number of driver read and group calls by collection."},
		[]string{"collection"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(SavesTotal)
	reg.MustRegister(RemovesTotal)
	reg.MustRegister(QueriesTotal)
}
