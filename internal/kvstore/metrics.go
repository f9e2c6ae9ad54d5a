package kvstore

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	opGet = "get"
	opSet = "set"

	resultOK        = "ok"
	resultMiss      = "miss"
	resultError     = "error"
	resultMalformed = "malformed"
)

// Metrics counts tier operations. A nil *Metrics is a valid no-op.
type Metrics struct {
	operations *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		operations: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "kv",
			Name:      "operations_total",
			Help:      "Storage tier operations by tier, operation and result.",
		}, []string{"tier", "op", "result"}),
	}
}

func (m *Metrics) observe(tier, op, result string) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(tier, op, result).Inc()
}
