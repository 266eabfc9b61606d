package service

import "makan-match/internal/domain"

// ReduceProfile colapsa cada dimension a su valor mas frecuente.
// Empates: gana el primero en el orden canonico. Sin conteos: valor por defecto
// de la dimension (el primero de su lista canonica).
func ReduceProfile(tally domain.TraitTally) domain.Profile {
	profile := make(domain.Profile, len(domain.AllDimensions()))
	for _, dim := range domain.AllDimensions() {
		profile[dim] = mostCommon(dim, tally[dim])
	}
	return profile
}

// ComputeProfile compone Tally y ReduceProfile.
func ComputeProfile(responses domain.UserResponseSet, questions []domain.Question) domain.Profile {
	return ReduceProfile(Tally(responses, questions))
}

func mostCommon(dim domain.TraitDimension, counts map[string]int) string {
	best := domain.DefaultValue(dim)
	bestCount := 0
	for _, v := range domain.DimensionValues(dim) {
		if c := counts[v]; c > bestCount {
			best = v
			bestCount = c
		}
	}
	return best
}
