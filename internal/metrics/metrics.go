// Package metrics содержит prometheus-метрики сверки прав доступа,
// мутаций подписки и outbox-а квитанций.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "entitlement"

// Metrics объединяет коллекторы сервиса. Нулевой указатель допустим и
// ничего не записывает.
type Metrics struct {
	reconciles        *prometheus.CounterVec
	reconcileDuration *prometheus.HistogramVec
	mutations         *prometheus.CounterVec
	receipts          *prometheus.CounterVec
}

// New создает коллекторы и регистрирует их в reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		reconciles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconciles_total",
			Help:      "Reconciliations by snapshot source and premium result.",
		}, []string{"source", "premium"}),
		reconcileDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reconcile_duration_seconds",
			Help:      "Duration of reconciliations by snapshot source.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mutations_total",
			Help:      "Subscription mutations by action and error kind.",
		}, []string{"action", "kind"}),
		receipts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "receipts_total",
			Help:      "Receipt requests by stage and outcome.",
		}, []string{"stage", "outcome"}),
	}
	reg.MustRegister(m.reconciles, m.reconcileDuration, m.mutations, m.receipts)
	return m
}

// ObserveReconcile учитывает завершенную сверку.
func (m *Metrics) ObserveReconcile(source string, premium bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	p := "false"
	if premium {
		p = "true"
	}
	m.reconciles.WithLabelValues(source, p).Inc()
	m.reconcileDuration.WithLabelValues(source).Observe(elapsed.Seconds())
}

// ObserveMutation учитывает мутацию. Пустой kind означает успех.
func (m *Metrics) ObserveMutation(action, kind string) {
	if m == nil {
		return
	}
	if kind == "" {
		kind = "ok"
	}
	m.mutations.WithLabelValues(action, kind).Inc()
}

// ObserveReceipt учитывает квитанцию на стадии stage ("publish" или "relay").
func (m *Metrics) ObserveReceipt(stage, outcome string) {
	if m == nil {
		return
	}
	m.receipts.WithLabelValues(stage, outcome).Inc()
}
