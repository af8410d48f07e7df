package action

import "github.com/prometheus/client_golang/prometheus"

var (
	authEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "todo_auth_events_total", Help: "Authentication events by kind"},
		[]string{"event"},
	)
	todoOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "todo_operations_total", Help: "Todo mutations by operation"},
		[]string{"op"},
	)
)

func init() { prometheus.MustRegister(authEvents, todoOps) }
