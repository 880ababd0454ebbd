package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics набор Prometheus-метрик сервиса
// Все методы безопасны для nil-получателя: при выключенных метриках передаётся nil
type Metrics struct {
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	dbQueryDuration *prometheus.HistogramVec
	dbOpenConns     prometheus.Gauge
	dbInUseConns    prometheus.Gauge
	dbIdleConns     prometheus.Gauge
	dbWaitCount     prometheus.Gauge

	bookings      *prometheus.CounterVec
	rsvps         *prometheus.CounterVec
	promotions    prometheus.Counter
	occurrences   *prometheus.CounterVec
	notifications *prometheus.CounterVec
}

// New создаёт и регистрирует метрики в переданном registerer
func New(serviceName string, reg prometheus.Registerer) *Metrics {
	constLabels := prometheus.Labels{"service": serviceName}

	m := &Metrics{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: constLabels,
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request latency",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "route"}),
		dbQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database query latency",
			ConstLabels: constLabels,
			Buckets:     []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
		dbOpenConns: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "db_open_connections", Help: "Open DB connections", ConstLabels: constLabels,
		}),
		dbInUseConns: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "db_in_use_connections", Help: "DB connections in use", ConstLabels: constLabels,
		}),
		dbIdleConns: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "db_idle_connections", Help: "Idle DB connections", ConstLabels: constLabels,
		}),
		dbWaitCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "db_wait_count", Help: "Total number of connections waited for", ConstLabels: constLabels,
		}),
		bookings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "bookings_total",
			Help:        "Booking engine operations by result",
			ConstLabels: constLabels,
		}, []string{"operation", "result"}),
		rsvps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "rsvp_total",
			Help:        "RSVP responses by stored status",
			ConstLabels: constLabels,
		}, []string{"status"}),
		promotions: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "waitlist_promotions_total",
			Help:        "Waitlisted RSVPs promoted to attending",
			ConstLabels: constLabels,
		}),
		occurrences: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "occurrences_generated_total",
			Help:        "Occurrences materialized from recurrence series",
			ConstLabels: constLabels,
		}, []string{"kind"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "notifications_total",
			Help:        "Notification dispatch attempts",
			ConstLabels: constLabels,
		}, []string{"template", "result"}),
	}

	reg.MustRegister(
		m.httpRequests, m.httpDuration,
		m.dbQueryDuration, m.dbOpenConns, m.dbInUseConns, m.dbIdleConns, m.dbWaitCount,
		m.bookings, m.rsvps, m.promotions, m.occurrences, m.notifications,
	)

	return m
}

// ObserveHTTP фиксирует HTTP запрос
func (m *Metrics) ObserveHTTP(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveQuery фиксирует длительность запроса к БД
func (m *Metrics) ObserveQuery(operation string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// SetPoolStats обновляет метрики пула соединений
func (m *Metrics) SetPoolStats(open, inUse, idle int, waitCount int64) {
	if m == nil {
		return
	}
	m.dbOpenConns.Set(float64(open))
	m.dbInUseConns.Set(float64(inUse))
	m.dbIdleConns.Set(float64(idle))
	m.dbWaitCount.Set(float64(waitCount))
}

// ObserveBooking фиксирует результат операции Booking Engine (book/reschedule/cancel)
func (m *Metrics) ObserveBooking(operation, result string) {
	if m == nil {
		return
	}
	m.bookings.WithLabelValues(operation, result).Inc()
}

// ObserveRSVP фиксирует сохранённый статус RSVP
func (m *Metrics) ObserveRSVP(status string) {
	if m == nil {
		return
	}
	m.rsvps.WithLabelValues(status).Inc()
}

// ObservePromotions фиксирует количество продвинутых из листа ожидания RSVP
func (m *Metrics) ObservePromotions(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.promotions.Add(float64(n))
}

// ObserveOccurrences фиксирует количество сгенерированных вхождений серии
func (m *Metrics) ObserveOccurrences(kind string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.occurrences.WithLabelValues(kind).Add(float64(n))
}

// ObserveNotification фиксирует попытку отправки уведомления
func (m *Metrics) ObserveNotification(template, result string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(template, result).Inc()
}
