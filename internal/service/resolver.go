package service

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf16"

	"makan-match/internal/domain"
)

const (
	StrategyWeighted = "weighted"
	StrategyHash     = "hash"
)

var (
	ErrEmptyCatalog    = errors.New("catalog has no dishes")
	ErrUnknownStrategy = errors.New("unknown result strategy")
)

// Resolver elige un plato del catalogo a partir de un perfil reducido.
type Resolver interface {
	Name() string
	Resolve(profile domain.Profile, dishes []domain.Dish) (string, error)
}

// NewResolver devuelve la estrategia registrada con ese nombre.
func NewResolver(name string) (Resolver, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case StrategyWeighted:
		return WeightedMatchResolver{}, nil
	case StrategyHash:
		return HashBucketResolver{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}

// Pesos por dimension del match ponderado; dimensiones no listadas pesan 1.0.
var matchWeights = map[domain.TraitDimension]float64{
	domain.DimensionEnergyLevel:          1.5,
	domain.DimensionSocialPreference:     1.2,
	domain.DimensionFlavorProfile:        1.5,
	domain.DimensionAdventureLevel:       1.3,
	domain.DimensionTimeOfDay:            1.0,
	domain.DimensionSetting:              1.0,
	domain.DimensionTexturePreference:    1.2,
	domain.DimensionCulturalAuthenticity: 1.3,
}

func matchWeight(dim domain.TraitDimension) float64 {
	if w, ok := matchWeights[dim]; ok {
		return w
	}
	return 1.0
}

// WeightedMatchResolver puntua cada plato por coincidencias con el perfil en las
// 8 dimensiones core. Favorece similitud sobre distribucion uniforme.
type WeightedMatchResolver struct{}

func (WeightedMatchResolver) Name() string { return StrategyWeighted }

// Score suma el peso de cada dimension core donde el plato coincide con el perfil.
func (WeightedMatchResolver) Score(attrs domain.DishAttributes, profile domain.Profile) float64 {
	score := 0.0
	for _, dim := range domain.CoreDimensions() {
		if v, ok := profile[dim]; ok && attrs[dim] == v {
			score += matchWeight(dim)
		}
	}
	return score
}

// MaxScore es el puntaje de un plato que coincide en todas las dimensiones core.
func (WeightedMatchResolver) MaxScore() float64 {
	total := 0.0
	for _, dim := range domain.CoreDimensions() {
		total += matchWeight(dim)
	}
	return total
}

func (r WeightedMatchResolver) Resolve(profile domain.Profile, dishes []domain.Dish) (string, error) {
	if len(dishes) == 0 {
		return "", ErrEmptyCatalog
	}
	best := dishes[0].ID
	bestScore := 0.0
	for _, d := range dishes {
		if s := r.Score(d.Attributes, profile); s > bestScore {
			best = d.ID
			bestScore = s
		}
	}
	return best, nil
}

// HashBucketResolver elige el plato por hash de la firma completa del perfil.
// Busca una distribucion casi uniforme del catalogo e ignora la similitud:
// dos perfiles muy distintos pueden caer en el mismo plato.
type HashBucketResolver struct{}

func (HashBucketResolver) Name() string { return StrategyHash }

func (HashBucketResolver) Resolve(profile domain.Profile, dishes []domain.Dish) (string, error) {
	if len(dishes) == 0 {
		return "", ErrEmptyCatalog
	}
	return dishes[BucketIndex(ProfileSignature(profile), len(dishes))].ID, nil
}

// ProfileSignature concatena los 10 valores del perfil en orden fijo de dimensiones.
func ProfileSignature(profile domain.Profile) string {
	parts := make([]string, 0, len(domain.AllDimensions()))
	for _, dim := range domain.AllDimensions() {
		parts = append(parts, profile[dim])
	}
	return strings.Join(parts, "|")
}

// SignatureHash es el hash polinomial clasico (h = h*31 + c) sobre unidades UTF-16,
// con desborde de entero de 32 bits con signo.
func SignatureHash(s string) int32 {
	var h int32
	for _, c := range utf16.Encode([]rune(s)) {
		h = h*31 + int32(c)
	}
	return h
}

// BucketIndex devuelve |hash| mod n.
func BucketIndex(signature string, n int) int {
	if n <= 0 {
		return 0
	}
	h := int64(SignatureHash(signature))
	if h < 0 {
		h = -h
	}
	return int(h % int64(n))
}
