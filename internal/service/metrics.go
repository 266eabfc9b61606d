package service

import (
	"github.com/prometheus/client_golang/prometheus"

	"makan-match/internal/domain"
)

// QuizMetrics cuenta resultados por plato y activaciones de modificadores.
type QuizMetrics struct {
	results   *prometheus.CounterVec
	modifiers *prometheus.CounterVec
}

// NewQuizMetrics registra los contadores en reg. Con reg nil no registra nada.
func NewQuizMetrics(reg prometheus.Registerer) *QuizMetrics {
	m := &QuizMetrics{
		results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quiz_results_total",
			Help: "Quiz results by strategy and resolved dish.",
		}, []string{"strategy", "dish"}),
		modifiers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quiz_modifiers_total",
			Help: "Activated modifiers by dish.",
		}, []string{"dish", "modifier"}),
	}
	if reg != nil {
		reg.MustRegister(m.results, m.modifiers)
	}
	return m
}

func (m *QuizMetrics) ObserveResult(result domain.QuizResult) {
	if m == nil {
		return
	}
	m.results.WithLabelValues(result.Strategy, result.DishID).Inc()
	if result.ModifierID != "" {
		m.modifiers.WithLabelValues(result.DishID, result.ModifierID).Inc()
	}
}
