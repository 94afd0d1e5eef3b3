package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "disaster_alert"

// Metrics - счетчики и гистограммы сервиса
type Metrics struct {
	ReportsCreated  *prometheus.CounterVec // labels: priority={high,medium,low}
	ReportsVerified *prometheus.CounterVec // labels: verified={true,false}

	// Внешние провайдеры
	OracleRequests   *prometheus.CounterVec   // labels: provider={text,image}, outcome={success,error,disabled}
	ProviderRequests *prometheus.CounterVec   // labels: provider={weather,terrain}, outcome={success,error,disabled}
	ProviderDuration *prometheus.HistogramVec // labels: provider
	EnvCache         *prometheus.CounterVec   // labels: kind={weather,terrain}, result={hit,miss}

	// Оценка риска
	RiskAssessments  *prometheus.CounterVec // labels: mode={point,grid}
	RiskCellFailures prometheus.Counter
	RiskDuration     prometheus.Histogram

	// Хаб
	HubConnections       prometheus.Gauge
	HubSubscriptions     prometheus.Gauge
	HubEventsBroadcast   *prometheus.CounterVec // labels: event
	HubDeliveries        prometheus.Counter
	HubDeliveriesDropped prometheus.Counter
}

// NewMetrics создает метрики и регистрирует их в стандартном реестре Prometheus
func NewMetrics() *Metrics {
	m := build(
		[]float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		[]float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	)

	prometheus.MustRegister(
		m.ReportsCreated,
		m.ReportsVerified,
		m.OracleRequests,
		m.ProviderRequests,
		m.ProviderDuration,
		m.EnvCache,
		m.RiskAssessments,
		m.RiskCellFailures,
		m.RiskDuration,
		m.HubConnections,
		m.HubSubscriptions,
		m.HubEventsBroadcast,
		m.HubDeliveries,
		m.HubDeliveriesDropped,
	)

	return m
}

// NewMetricsForTesting создает метрики без регистрации, чтобы тесты
// не падали с "duplicate metrics collector registration"
func NewMetricsForTesting() *Metrics {
	return build(nil, nil)
}

func build(providerBuckets, riskBuckets []float64) *Metrics {
	return &Metrics{
		ReportsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_created_total",
			Help:      "Reports accepted by the pipeline by priority.",
		}, []string{"priority"}),
		ReportsVerified: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_verified_total",
			Help:      "Verification verdicts by outcome.",
		}, []string{"verified"}),
		OracleRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "oracle_requests_total",
			Help:      "Classification oracle calls by provider and outcome.",
		}, []string{"provider", "outcome"}),
		ProviderRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "env_provider_requests_total",
			Help:      "Weather and elevation provider calls by outcome.",
		}, []string{"provider", "outcome"}),
		ProviderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "env_provider_duration_seconds",
			Help:      "Environmental provider request duration in seconds.",
			Buckets:   providerBuckets,
		}, []string{"provider"}),
		EnvCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "env_cache_total",
			Help:      "Environmental cache lookups by kind and result.",
		}, []string{"kind", "result"}),
		RiskAssessments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "risk_assessments_total",
			Help:      "Risk assessments computed by mode.",
		}, []string{"mode"}),
		RiskCellFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "risk_grid_cell_failures_total",
			Help:      "Grid cells omitted because scoring failed.",
		}),
		RiskDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "risk_assessment_duration_seconds",
			Help:      "Duration of a single point risk assessment.",
			Buckets:   riskBuckets,
		}),
		HubConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "hub_connections",
			Help:      "Currently registered live connections.",
		}),
		HubSubscriptions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "hub_subscriptions",
			Help:      "Currently active area subscriptions.",
		}),
		HubEventsBroadcast: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hub_events_broadcast_total",
			Help:      "Events passed to the broadcast hub by name.",
		}, []string{"event"}),
		HubDeliveries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hub_deliveries_total",
			Help:      "Events queued to individual connections.",
		}),
		HubDeliveriesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hub_deliveries_dropped_total",
			Help:      "Events dropped because a connection buffer was full or closed.",
		}),
	}
}
