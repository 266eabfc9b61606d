package service

import (
	"math"
	"sort"

	"makan-match/internal/domain"
)

const (
	PairingScoreFloor     = 70
	ClassicPairingMinimum = 85
	genericPairingReason  = "Complementary flavors and vibes"
	missingCellScore      = 50
)

// PairingEngine calcula compatibilidad entre platos y arma la lista "best paired with".
type PairingEngine struct{}

// DefaultPairingEngine permite uso directo sin instanciar.
var DefaultPairingEngine = PairingEngine{}

type compatTable map[string]map[string]float64

var flavorCompatibility = compatTable{
	"sweet":    {"sweet": 80, "savory": 60, "spicy": 90, "balanced": 70},
	"savory":   {"sweet": 60, "savory": 85, "spicy": 70, "balanced": 80},
	"spicy":    {"sweet": 90, "savory": 70, "spicy": 75, "balanced": 65},
	"balanced": {"sweet": 70, "savory": 80, "spicy": 65, "balanced": 75},
}

var energyCompatibility = compatTable{
	"high":   {"high": 90, "medium": 70, "low": 50},
	"medium": {"high": 70, "medium": 85, "low": 75},
	"low":    {"high": 50, "medium": 75, "low": 90},
}

var timeCompatibility = compatTable{
	"morning":   {"morning": 95, "afternoon": 75, "evening": 50, "night": 40},
	"afternoon": {"morning": 75, "afternoon": 85, "evening": 70, "night": 60},
	"evening":   {"morning": 50, "afternoon": 70, "evening": 90, "night": 75},
	"night":     {"morning": 40, "afternoon": 60, "evening": 75, "night": 90},
}

var socialCompatibility = compatTable{
	"extrovert": {"extrovert": 90, "ambivert": 75, "introvert": 55},
	"ambivert":  {"extrovert": 75, "ambivert": 85, "introvert": 70},
	"introvert": {"extrovert": 55, "ambivert": 70, "introvert": 90},
}

var culturalCompatibility = compatTable{
	"root-deep":     {"root-deep": 90, "modern-fusion": 60, "street-smart": 75},
	"modern-fusion": {"root-deep": 60, "modern-fusion": 85, "street-smart": 70},
	"street-smart":  {"root-deep": 75, "modern-fusion": 70, "street-smart": 90},
}

var textureCompatibility = compatTable{
	"soft":    {"soft": 70, "crunchy": 90, "chewy": 75, "varied": 80},
	"crunchy": {"soft": 90, "crunchy": 70, "chewy": 65, "varied": 75},
	"chewy":   {"soft": 75, "crunchy": 65, "chewy": 80, "varied": 85},
	"varied":  {"soft": 80, "crunchy": 75, "chewy": 85, "varied": 80},
}

var adventureCompatibility = compatTable{
	"adventurous": {"adventurous": 85, "moderate": 70, "traditional": 55},
	"moderate":    {"adventurous": 70, "moderate": 85, "traditional": 75},
	"traditional": {"adventurous": 55, "moderate": 75, "traditional": 90},
}

type pairingFactor struct {
	dim    domain.TraitDimension
	table  compatTable
	weight float64
}

var pairingFactors = []pairingFactor{
	{domain.DimensionEnergyLevel, energyCompatibility, 1.5},
	{domain.DimensionFlavorProfile, flavorCompatibility, 1.5},
	{domain.DimensionTimeOfDay, timeCompatibility, 1.2},
	{domain.DimensionSocialPreference, socialCompatibility, 1.0},
	{domain.DimensionCulturalAuthenticity, culturalCompatibility, 1.0},
	{domain.DimensionTexturePreference, textureCompatibility, 1.0},
	{domain.DimensionAdventureLevel, adventureCompatibility, 0.8},
}

func (t compatTable) lookup(a, b string) float64 {
	if row, ok := t[a]; ok {
		if v, ok := row[b]; ok && v > 0 {
			return v
		}
	}
	return missingCellScore
}

// Compatibility es el promedio ponderado de las 7 tablas, redondeado al entero mas cercano.
func (PairingEngine) Compatibility(a, b domain.Dish) int {
	score, weights := 0.0, 0.0
	for _, f := range pairingFactors {
		score += f.table.lookup(a.Attributes[f.dim], b.Attributes[f.dim]) * f.weight
		weights += f.weight
	}
	return int(math.Round(score / weights))
}

// Reason elige el primer motivo notable en orden de prioridad fijo.
func (PairingEngine) Reason(a, b domain.Dish) string {
	x, y := a.Attributes, b.Attributes
	flavorA, flavorB := x[domain.DimensionFlavorProfile], y[domain.DimensionFlavorProfile]
	textureA, textureB := x[domain.DimensionTexturePreference], y[domain.DimensionTexturePreference]

	switch {
	case (flavorA == "sweet" && flavorB == "spicy") || (flavorA == "spicy" && flavorB == "sweet"):
		return "Sweet meets spicy for perfect balance"
	case x[domain.DimensionTimeOfDay] == "morning" && y[domain.DimensionTimeOfDay] == "morning":
		return "Morning besties who start the day right"
	case (textureA == "crunchy" && textureB == "soft") || (textureA == "soft" && textureB == "crunchy"):
		return "Crunchy meets soft for textural harmony"
	case x[domain.DimensionEnergyLevel] == y[domain.DimensionEnergyLevel]:
		return "Same energy, same vibe"
	}

	if social := x[domain.DimensionSocialPreference]; social == y[domain.DimensionSocialPreference] {
		switch social {
		case "extrovert":
			return "Social butterflies together"
		case "introvert":
			return "Quiet companionship"
		default:
			return "Perfectly balanced together"
		}
	}

	// modern-fusion compartido no tiene texto propio y cae al motivo generico.
	if cultural := x[domain.DimensionCulturalAuthenticity]; cultural == y[domain.DimensionCulturalAuthenticity] {
		switch cultural {
		case "root-deep":
			return "Heritage heroes united"
		case "street-smart":
			return "Street food legends"
		}
	}
	return genericPairingReason
}

// ComputeAllPairings calcula, para cada plato, los maridajes con compatibilidad >= 70
// ordenados de mayor a menor, y luego fusiona los maridajes clasicos.
// El piso se aplica por direccion; los clasicos son direccionales.
func (e PairingEngine) ComputeAllPairings(dishes []domain.Dish, classics []domain.ClassicPairing) map[string][]domain.PairedWith {
	byID := make(map[string]domain.Dish, len(dishes))
	for _, d := range dishes {
		byID[d.ID] = d
	}

	out := make(map[string][]domain.PairedWith, len(dishes))
	for _, dish := range dishes {
		pairings := make([]domain.PairedWith, 0)
		for _, other := range dishes {
			if other.ID == dish.ID {
				continue
			}
			score := e.Compatibility(dish, other)
			if score < PairingScoreFloor {
				continue
			}
			pairings = append(pairings, domain.PairedWith{
				DishID:             other.ID,
				Reason:             e.Reason(dish, other),
				CompatibilityScore: score,
			})
		}
		sortPairings(pairings)
		out[dish.ID] = pairings
	}

	for _, cp := range classics {
		dish, ok := byID[cp.DishID]
		if !ok || len(cp.Partners) == 0 {
			continue
		}
		pairings := out[dish.ID]
		for _, partner := range cp.Partners {
			other, ok := byID[partner.DishID]
			if !ok || other.ID == dish.ID {
				continue
			}
			entry := domain.PairedWith{
				DishID:             other.ID,
				Reason:             partner.Reason,
				CompatibilityScore: max(ClassicPairingMinimum, e.Compatibility(dish, other)),
			}
			if entry.Reason == "" {
				entry.Reason = genericPairingReason
			}
			if idx := indexOfPairing(pairings, other.ID); idx >= 0 {
				pairings[idx] = entry
			} else {
				pairings = append([]domain.PairedWith{entry}, pairings...)
			}
		}
		sortPairings(pairings)
		out[dish.ID] = pairings
	}
	return out
}

func sortPairings(p []domain.PairedWith) {
	sort.SliceStable(p, func(i, j int) bool {
		return p[i].CompatibilityScore > p[j].CompatibilityScore
	})
}

func indexOfPairing(p []domain.PairedWith, dishID string) int {
	for i, entry := range p {
		if entry.DishID == dishID {
			return i
		}
	}
	return -1
}
