package paymentstrategy

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcomes recorded for an operation.
const (
	OutcomeSucceeded   = "succeeded"
	OutcomeFailed      = "failed"
	OutcomeNotRequired = "not_required"
	OutcomeSkipped     = "skipped"
)

var (
	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "checkout",
		Subsystem: "payment_strategy",
		Name:      "operations_total",
		Help:      "Payment strategy lifecycle operations, by operation, outcome and registry.",
	}, []string{"operation", "outcome", "source"})

	operationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "checkout",
		Subsystem: "payment_strategy",
		Name:      "operation_duration_seconds",
		Help:      "Duration of payment strategy lifecycle operations.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})
)

// OperationsTotal exposes the operation counter for tests.
func OperationsTotal() *prometheus.CounterVec { return operationsTotal }

// OperationDuration exposes the duration histogram for tests.
func OperationDuration() *prometheus.HistogramVec { return operationDuration }
