package monitor

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	OnlinePlayers    prometheus.Gauge
	ActiveRooms      prometheus.Gauge
	ActionsReceived  prometheus.Counter
	SettlementsTotal prometheus.Counter
	SettlementErrors prometheus.Counter
	ActionLatency    prometheus.Histogram
}

func NewMetrics(namespace string) *Metrics {
	m := &Metrics{
		OnlinePlayers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "online_players",
			Help:      "Number of connected players",
		}),
		ActiveRooms: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_rooms",
			Help:      "Number of active rooms",
		}),
		ActionsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_received_total",
			Help:      "Total number of game actions received",
		}),
		SettlementsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settlements_total",
			Help:      "Total number of round settlements",
		}),
		SettlementErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settlement_errors_total",
			Help:      "Settlements that failed and need attention",
		}),
		ActionLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "action_latency_seconds",
			Help:      "Game action processing latency",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 10),
		}),
	}

	prometheus.MustRegister(
		m.OnlinePlayers,
		m.ActiveRooms,
		m.ActionsReceived,
		m.SettlementsTotal,
		m.SettlementErrors,
		m.ActionLatency,
	)

	return m
}

type Monitor struct {
	metrics *Metrics
}

func NewMonitor(namespace string) *Monitor {
	return &Monitor{metrics: NewMetrics(namespace)}
}

// Register mounts the /metrics endpoint on the main router.
func (m *Monitor) Register(router *gin.Engine) {
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func (m *Monitor) IncOnlinePlayers() { m.metrics.OnlinePlayers.Inc() }
func (m *Monitor) DecOnlinePlayers() { m.metrics.OnlinePlayers.Dec() }

func (m *Monitor) SetActiveRooms(count int) {
	m.metrics.ActiveRooms.Set(float64(count))
}

func (m *Monitor) IncActionsReceived() { m.metrics.ActionsReceived.Inc() }
func (m *Monitor) IncSettlements()     { m.metrics.SettlementsTotal.Inc() }
func (m *Monitor) IncSettlementError() { m.metrics.SettlementErrors.Inc() }

func (m *Monitor) ObserveActionLatency(d time.Duration) {
	m.metrics.ActionLatency.Observe(d.Seconds())
}
