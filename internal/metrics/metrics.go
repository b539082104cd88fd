package metrics

import (
	"github.com/Freeeeeet/tutorchain/internal/apperr"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics счётчики воркфлоу и вызовов леджера. Методы безопасны для nil.
type Metrics struct {
	workflows    *prometheus.CounterVec
	ledgerCalls  *prometheus.CounterVec
	quizFallback *prometheus.CounterVec
}

// New регистрирует коллекторы в reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		workflows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tutorchain",
			Name:      "workflow_total",
			Help:      "Finished ledger workflows by terminal state.",
		}, []string{"workflow", "state"}),
		ledgerCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tutorchain",
			Name:      "ledger_calls_total",
			Help:      "Ledger operations by result kind.",
		}, []string{"op", "result"}),
		quizFallback: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tutorchain",
			Name:      "quiz_fallback_total",
			Help:      "Quiz questions served from the static bank after generation failed.",
		}, []string{"subject"}),
	}

	if reg != nil {
		reg.MustRegister(m.workflows, m.ledgerCalls, m.quizFallback)
	}
	return m
}

func (m *Metrics) WorkflowFinished(workflow, state string) {
	if m == nil {
		return
	}
	m.workflows.WithLabelValues(workflow, state).Inc()
}

func (m *Metrics) LedgerCall(op string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = string(apperr.KindOf(err))
	}
	m.ledgerCalls.WithLabelValues(op, result).Inc()
}

func (m *Metrics) QuizFallback(subject string) {
	if m == nil {
		return
	}
	m.quizFallback.WithLabelValues(subject).Inc()
}
