package catalog

import (
	"fmt"
	"strings"

	"makan-match/internal/domain"
)

// Validate revisa la integridad del catalogo. Cualquier error es de configuracion
// y debe abortar el arranque.
func Validate(dishes []domain.Dish, questions []domain.Question, classics []domain.ClassicPairing) error {
	if len(dishes) == 0 {
		return fmt.Errorf("%w: no dishes", ErrInvalidCatalog)
	}

	var problems []string
	seen := make(map[string]struct{}, len(dishes))
	for _, d := range dishes {
		if strings.TrimSpace(d.ID) == "" {
			problems = append(problems, fmt.Sprintf("dish %q has empty id", d.Name))
			continue
		}
		if _, dup := seen[d.ID]; dup {
			problems = append(problems, fmt.Sprintf("duplicate dish id %q", d.ID))
		}
		seen[d.ID] = struct{}{}
		problems = append(problems, validateAttributes(d)...)
		problems = append(problems, validateModifiers(d)...)
	}

	qSeen := make(map[string]struct{}, len(questions))
	for _, q := range questions {
		if _, dup := qSeen[q.ID]; dup {
			problems = append(problems, fmt.Sprintf("duplicate question id %q", q.ID))
		}
		qSeen[q.ID] = struct{}{}
		aSeen := make(map[string]struct{}, len(q.Answers))
		for _, a := range q.Answers {
			if _, dup := aSeen[a.ID]; dup {
				problems = append(problems, fmt.Sprintf("question %q: duplicate answer id %q", q.ID, a.ID))
			}
			aSeen[a.ID] = struct{}{}
			for dim, value := range a.Traits {
				if !domain.IsValidValue(dim, value) {
					problems = append(problems, fmt.Sprintf("question %q answer %q: invalid tag %s=%q", q.ID, a.ID, dim, value))
				}
			}
		}
	}

	for _, cp := range classics {
		if _, ok := seen[cp.DishID]; !ok {
			problems = append(problems, fmt.Sprintf("classic pairing references unknown dish %q", cp.DishID))
		}
		for _, p := range cp.Partners {
			if _, ok := seen[p.DishID]; !ok {
				problems = append(problems, fmt.Sprintf("classic pairing %q references unknown partner %q", cp.DishID, p.DishID))
			}
			if p.DishID == cp.DishID {
				problems = append(problems, fmt.Sprintf("classic pairing %q pairs with itself", cp.DishID))
			}
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidCatalog, strings.Join(problems, "; "))
	}
	return nil
}

func validateAttributes(d domain.Dish) []string {
	var problems []string
	for _, dim := range domain.AllDimensions() {
		value, ok := d.Attributes[dim]
		if !ok {
			problems = append(problems, fmt.Sprintf("dish %q: missing attribute %s", d.ID, dim))
			continue
		}
		if !domain.IsValidValue(dim, value) {
			problems = append(problems, fmt.Sprintf("dish %q: invalid %s=%q", d.ID, dim, value))
		}
	}
	for dim := range d.Attributes {
		if !domain.IsTracked(dim) {
			problems = append(problems, fmt.Sprintf("dish %q: unknown attribute %s", d.ID, dim))
		}
	}
	return problems
}

func validateModifiers(d domain.Dish) []string {
	var problems []string
	seen := make(map[string]struct{}, len(d.Modifiers))
	for _, m := range d.Modifiers {
		if _, dup := seen[m.ID]; dup {
			problems = append(problems, fmt.Sprintf("dish %q: duplicate modifier id %q", d.ID, m.ID))
		}
		seen[m.ID] = struct{}{}
		if !domain.IsTracked(m.TriggerTrait) {
			problems = append(problems, fmt.Sprintf("dish %q modifier %q: untracked trigger trait %q", d.ID, m.ID, m.TriggerTrait))
			continue
		}
		value, ok := m.WatchedValue()
		if !ok {
			problems = append(problems, fmt.Sprintf("dish %q modifier %q: modifier traits lack trigger trait %s", d.ID, m.ID, m.TriggerTrait))
		} else if !domain.IsValidValue(m.TriggerTrait, value) {
			problems = append(problems, fmt.Sprintf("dish %q modifier %q: invalid %s=%q", d.ID, m.ID, m.TriggerTrait, value))
		}
		if m.TriggerThreshold < 0 || m.TriggerThreshold > 100 {
			problems = append(problems, fmt.Sprintf("dish %q modifier %q: threshold %v out of range", d.ID, m.ID, m.TriggerThreshold))
		}
	}
	return problems
}
