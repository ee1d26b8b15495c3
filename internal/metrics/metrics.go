package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TransactionRetries counts transactions re-run after a write conflict.
	TransactionRetries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "devflow",
		Name:      "transaction_retries_total",
		Help:      "Number of transactions retried after a transient write conflict.",
	})

	// SideEffectTasks counts post-commit tasks by outcome.
	SideEffectTasks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "devflow",
		Name:      "side_effect_tasks_total",
		Help:      "Post-commit side-effect tasks processed, labelled by outcome.",
	}, []string{"outcome"})
)
