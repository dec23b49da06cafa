package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the service.
type Metrics struct {
	CommandsReceived *prometheus.CounterVec
	TasksFinished    *prometheus.CounterVec
	QueueDepth       prometheus.Gauge
	ConfigReloads    *prometheus.CounterVec
	ThrottledTotal   prometheus.Counter
	WorkerExits      prometheus.Counter
	ExecuteLatency   prometheus.Histogram
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		CommandsReceived: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_received_total",
			Help:      "Commands received by resolved intent.",
		}, []string{"intent"}),
		TasksFinished: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_finished_total",
			Help:      "Tasks that reached a terminal status, by status.",
		}, []string{"status"}),
		QueueDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "task_queue_depth",
			Help:      "Tasks currently waiting in the worker queue.",
		}),
		ConfigReloads: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "config_reloads_total",
			Help:      "Command file reload attempts by outcome.",
		}, []string{"outcome"}),
		ThrottledTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_throttled_total",
			Help:      "Commands rejected by the antiflood limiter.",
		}),
		WorkerExits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "worker_exits_total",
			Help:      "Times the task worker goroutine exited.",
		}),
		ExecuteLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "task_execute_latency_ms",
			Help:      "Task execution latency in milliseconds.",
			Buckets:   []float64{5, 20, 50, 100, 250, 500, 1000, 5000, 15000},
		}),
	}
}

func (m *Metrics) ObserveExecuteLatency(d time.Duration) {
	m.ExecuteLatency.Observe(float64(d.Milliseconds()))
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
