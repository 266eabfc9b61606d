package service

import "makan-match/internal/domain"

// ModifierActivation describe como quedo un modificador frente a las respuestas.
type ModifierActivation struct {
	Modifier   domain.Modifier
	Count      int
	Coverage   int
	Percentage float64
	Active     bool
}

// EvaluateModifiers calcula el porcentaje observado de cada modificador del plato:
// conteo del valor vigilado / preguntas respondidas que podian etiquetar la dimension.
// Modificadores con trigger no rastreado se omiten. Sin cobertura nunca se activa.
func EvaluateModifiers(dish domain.Dish, tally domain.TraitTally, coverage domain.Coverage) []ModifierActivation {
	out := make([]ModifierActivation, 0, len(dish.Modifiers))
	for _, m := range dish.Modifiers {
		if !domain.IsTracked(m.TriggerTrait) {
			continue
		}
		value, ok := m.WatchedValue()
		if !ok {
			continue
		}
		count := tally[m.TriggerTrait][value]
		total := coverage[m.TriggerTrait]
		pct := 0.0
		if total > 0 {
			pct = float64(count) / float64(total) * 100
		}
		out = append(out, ModifierActivation{
			Modifier:   m,
			Count:      count,
			Coverage:   total,
			Percentage: pct,
			Active:     total > 0 && pct >= m.TriggerThreshold,
		})
	}
	return out
}

// ResolveModifier devuelve el modificador activo de mayor porcentaje.
// Empates conservan el orden de declaracion.
func ResolveModifier(dish domain.Dish, tally domain.TraitTally, coverage domain.Coverage) (domain.Modifier, float64, bool) {
	var (
		best    domain.Modifier
		bestPct float64
		found   bool
	)
	for _, a := range EvaluateModifiers(dish, tally, coverage) {
		if !a.Active {
			continue
		}
		if !found || a.Percentage > bestPct {
			best = a.Modifier
			bestPct = a.Percentage
			found = true
		}
	}
	return best, bestPct, found
}
