package metrics

import (
	"strconv"
	"time"

	"freshmart/internal/domain/model"

	"github.com/prometheus/client_golang/prometheus"
)

// アプリの業務メトリクス
type Metrics struct {
	ordersCreated       *prometheus.CounterVec
	notificationsFailed prometheus.Counter
	httpDuration        *prometheus.HistogramVec
}

// regにメトリクスを登録する。regがnilなら何も記録しない。
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	ordersCreated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "freshmart_orders_created_total",
		Help: "Orders created, by payment method.",
	}, []string{"method"})
	notificationsFailed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "freshmart_notifications_failed_total",
		Help: "Notification emails that could not be sent or queued.",
	})
	httpDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "freshmart_http_request_duration_seconds",
		Help:    "HTTP request latency by route and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
	reg.MustRegister(ordersCreated, notificationsFailed, httpDuration)

	return &Metrics{
		ordersCreated:       ordersCreated,
		notificationsFailed: notificationsFailed,
		httpDuration:        httpDuration,
	}
}

func (m *Metrics) OrderPlaced(method model.PaymentMethod) {
	if m == nil || m.ordersCreated == nil {
		return
	}
	label := string(method)
	if label == "" {
		label = "unknown"
	}
	m.ordersCreated.WithLabelValues(label).Inc()
}

func (m *Metrics) NotificationFailed() {
	if m == nil || m.notificationsFailed == nil {
		return
	}
	m.notificationsFailed.Inc()
}

func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil || m.httpDuration == nil {
		return
	}
	m.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}
