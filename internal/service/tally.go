package service

import "makan-match/internal/domain"

// Tally agrega las respuestas elegidas en conteos por dimension y valor.
// Preguntas o respuestas desconocidas se ignoran; un set vacio devuelve todo en cero.
func Tally(responses domain.UserResponseSet, questions []domain.Question) domain.TraitTally {
	tally, _ := TallyWithCoverage(responses, questions)
	return tally
}

// TallyWithCoverage ademas cuenta, por dimension, cuantas preguntas respondidas
// podian etiquetarla. Es el denominador del porcentaje de modificadores.
func TallyWithCoverage(responses domain.UserResponseSet, questions []domain.Question) (domain.TraitTally, domain.Coverage) {
	tally := newTally()
	coverage := domain.Coverage{}
	for _, dim := range domain.AllDimensions() {
		coverage[dim] = 0
	}

	// Se recorre en orden de catalogo para no depender del orden del map.
	for _, q := range questions {
		answerID, ok := responses[q.ID]
		if !ok {
			continue
		}
		answer, ok := q.Answer(answerID)
		if !ok {
			continue
		}
		for _, dim := range domain.AllDimensions() {
			if q.Tags(dim) {
				coverage[dim]++
			}
		}
		for dim, value := range answer.Traits {
			counts, ok := tally[dim]
			if !ok {
				continue
			}
			if _, ok := counts[value]; !ok {
				continue
			}
			counts[value]++
		}
	}
	return tally, coverage
}

func newTally() domain.TraitTally {
	tally := make(domain.TraitTally, len(domain.AllDimensions()))
	for _, dim := range domain.AllDimensions() {
		counts := make(map[string]int)
		for _, v := range domain.DimensionValues(dim) {
			counts[v] = 0
		}
		tally[dim] = counts
	}
	return tally
}
