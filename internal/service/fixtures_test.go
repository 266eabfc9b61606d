package service

import (
	"strconv"
	"testing"

	"makan-match/internal/catalog"
	"makan-match/internal/domain"
)

func fixtureAttrs(overrides map[domain.TraitDimension]string) domain.DishAttributes {
	out := domain.DishAttributes{}
	for _, dim := range domain.AllDimensions() {
		out[dim] = domain.DefaultValue(dim)
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

func fixtureDish(id string, overrides map[domain.TraitDimension]string, mods ...domain.Modifier) domain.Dish {
	return domain.Dish{
		ID:         id,
		Name:       id,
		Attributes: fixtureAttrs(overrides),
		Modifiers:  mods,
	}
}

func traits(pairs ...string) map[domain.TraitDimension]string {
	out := make(map[domain.TraitDimension]string, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out[domain.TraitDimension(pairs[i])] = pairs[i+1]
	}
	return out
}

func defaultCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.LoadDefault()
	if err != nil {
		t.Fatalf("load default catalog: %v", err)
	}
	return c
}

// answersFor arma respuestas para las preguntas "1".."n" en orden.
func answersFor(ids ...string) domain.UserResponseSet {
	out := domain.UserResponseSet{}
	for i, id := range ids {
		out[strconv.Itoa(i+1)] = id
	}
	return out
}
