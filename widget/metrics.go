package widget

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "leo",
		Subsystem: "window",
		Name:      "transitions_total",
		Help:      "Window transitions by target preset and result.",
	}, []string{"preset", "result"})
	metricTransitionsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "leo",
		Subsystem: "window",
		Name:      "transitions_dropped_total",
		Help:      "Transition requests dropped because another was in flight.",
	})
	metricDragMoves = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "leo",
		Subsystem: "window",
		Name:      "drag_moves_total",
		Help:      "Host move calls issued while dragging.",
	})
)
