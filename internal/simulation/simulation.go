// Package simulation corre el quiz con respuestas aleatorias para medir la
// distribucion de platos y que modificadores son alcanzables.
package simulation

import (
	"context"
	"errors"
	"sort"

	"makan-match/internal/catalog"
	"makan-match/internal/domain"
	"makan-match/internal/service"
)

const DefaultSeed = 12345

// LCG es el generador congruencial lineal usado para que las corridas sean reproducibles.
type LCG struct {
	state int64
}

func NewLCG(seed int64) *LCG {
	return &LCG{state: seed & 0x7fffffff}
}

// Next avanza el estado: state = (state*1103515245 + 12345) & 0x7fffffff.
func (g *LCG) Next() int64 {
	g.state = (g.state*1103515245 + 12345) & 0x7fffffff
	return g.state
}

// Float devuelve un valor en [0, 1].
func (g *LCG) Float() float64 {
	return float64(g.Next()) / float64(0x7fffffff)
}

// Intn devuelve un entero en [0, n).
func (g *LCG) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	i := int(g.Float() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}

type DishCount struct {
	Dish       domain.Dish
	Count      int
	Percentage float64
}

type CategoryCount struct {
	Category   string
	Count      int
	Percentage float64
}

type ModifierCount struct {
	DishID     string
	DishName   string
	Modifier   domain.Modifier
	Count      int
	Percentage float64
}

// Report resume una corrida. Las listas vienen ordenadas por conteo descendente;
// los empates conservan el orden de catalogo.
type Report struct {
	Runs       int
	Strategy   string
	Dishes     []DishCount
	Categories []CategoryCount
	Modifiers  []ModifierCount
	NoModifier int
}

// Expected es el conteo por plato si la distribucion fuera uniforme.
func (r Report) Expected() float64 {
	if len(r.Dishes) == 0 {
		return 0
	}
	return float64(r.Runs) / float64(len(r.Dishes))
}

// Spread devuelve el maximo y minimo conteo por plato.
func (r Report) Spread() (max, min int) {
	if len(r.Dishes) == 0 {
		return 0, 0
	}
	return r.Dishes[0].Count, r.Dishes[len(r.Dishes)-1].Count
}

// Unreachable lista los modificadores que nunca se activaron.
func (r Report) Unreachable() []ModifierCount {
	var out []ModifierCount
	for _, m := range r.Modifiers {
		if m.Count == 0 {
			out = append(out, m)
		}
	}
	return out
}

// Run simula runs envios con una respuesta aleatoria por pregunta.
func Run(ctx context.Context, cat *catalog.Catalog, resolver service.Resolver, runs int, seed int64) (Report, error) {
	if cat == nil {
		return Report{}, errors.New("simulation: nil catalog")
	}
	if runs <= 0 {
		return Report{}, errors.New("simulation: runs must be positive")
	}
	svc := service.NewQuizService(cat, resolver, nil, nil)
	rng := NewLCG(seed)
	questions := cat.Questions()

	dishCounts := make(map[string]int)
	modCounts := make(map[string]int)
	noModifier := 0
	for i := 0; i < runs; i++ {
		responses := make(domain.UserResponseSet, len(questions))
		for _, q := range questions {
			if len(q.Answers) == 0 {
				continue
			}
			responses[q.ID] = q.Answers[rng.Intn(len(q.Answers))].ID
		}
		result, err := svc.Submit(ctx, responses, "")
		if err != nil {
			return Report{}, err
		}
		dishCounts[result.DishID]++
		if result.ModifierID == "" {
			noModifier++
			continue
		}
		modCounts[modifierKey(result.DishID, result.ModifierID)]++
	}

	report := Report{
		Runs:       runs,
		Strategy:   svc.Strategy(),
		NoModifier: noModifier,
	}
	categoryCounts := make(map[string]int)
	var categoryOrder []string
	for _, d := range cat.Dishes() {
		count := dishCounts[d.ID]
		report.Dishes = append(report.Dishes, DishCount{Dish: d, Count: count, Percentage: pct(count, runs)})
		if _, ok := categoryCounts[d.Category]; !ok {
			categoryOrder = append(categoryOrder, d.Category)
		}
		categoryCounts[d.Category] += count
		for _, m := range d.Modifiers {
			mc := modCounts[modifierKey(d.ID, m.ID)]
			report.Modifiers = append(report.Modifiers, ModifierCount{
				DishID:     d.ID,
				DishName:   d.Name,
				Modifier:   m,
				Count:      mc,
				Percentage: pct(mc, runs),
			})
		}
	}
	for _, c := range categoryOrder {
		report.Categories = append(report.Categories, CategoryCount{
			Category:   c,
			Count:      categoryCounts[c],
			Percentage: pct(categoryCounts[c], runs),
		})
	}

	sort.SliceStable(report.Dishes, func(i, j int) bool { return report.Dishes[i].Count > report.Dishes[j].Count })
	sort.SliceStable(report.Categories, func(i, j int) bool { return report.Categories[i].Count > report.Categories[j].Count })
	sort.SliceStable(report.Modifiers, func(i, j int) bool { return report.Modifiers[i].Count > report.Modifiers[j].Count })
	return report, nil
}

func modifierKey(dishID, modifierID string) string {
	return dishID + "/" + modifierID
}

func pct(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}
