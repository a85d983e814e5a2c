package checkpoint

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CheckpointHits tracks loads that found a stored checkpoint
	CheckpointHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wise_checkpoint_hits_total",
			Help: "Total number of activity checkpoints found",
		},
	)

	// CheckpointMisses tracks loads without a stored checkpoint
	CheckpointMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wise_checkpoint_misses_total",
			Help: "Total number of activity checkpoint lookups without result",
		},
	)

	// CheckpointWrites tracks saved checkpoints
	CheckpointWrites = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wise_checkpoint_writes_total",
			Help: "Total number of activity checkpoints saved",
		},
	)

	// CheckpointErrors tracks checkpoint operation errors
	CheckpointErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wise_checkpoint_errors_total",
			Help: "Total number of checkpoint operation errors",
		},
		[]string{"operation"}, // "get", "set", "delete"
	)
)
