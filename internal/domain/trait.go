package domain

// TraitDimension identifica un eje de personalidad usado por preguntas y platos.
type TraitDimension string

const (
	DimensionEnergyLevel          TraitDimension = "energyLevel"
	DimensionSocialPreference     TraitDimension = "socialPreference"
	DimensionFlavorProfile        TraitDimension = "flavorProfile"
	DimensionAdventureLevel       TraitDimension = "adventureLevel"
	DimensionTimeOfDay            TraitDimension = "timeOfDay"
	DimensionSetting              TraitDimension = "setting"
	DimensionTexturePreference    TraitDimension = "texturePreference"
	DimensionCulturalAuthenticity TraitDimension = "culturalAuthenticity"

	// Dimensiones bonus: solo participan en la firma del hash-bucket.
	DimensionTextureTalk TraitDimension = "textureTalk"
	DimensionFoodRemix   TraitDimension = "foodRemix"
)

var coreDimensions = []TraitDimension{
	DimensionEnergyLevel,
	DimensionSocialPreference,
	DimensionFlavorProfile,
	DimensionAdventureLevel,
	DimensionTimeOfDay,
	DimensionSetting,
	DimensionTexturePreference,
	DimensionCulturalAuthenticity,
}

var bonusDimensions = []TraitDimension{
	DimensionTextureTalk,
	DimensionFoodRemix,
}

// El orden de cada lista es canonico: define desempates y el valor por defecto.
var dimensionValues = map[TraitDimension][]string{
	DimensionEnergyLevel:          {"high", "medium", "low"},
	DimensionSocialPreference:     {"extrovert", "ambivert", "introvert"},
	DimensionFlavorProfile:        {"sweet", "savory", "spicy", "sour", "balanced"},
	DimensionAdventureLevel:       {"adventurous", "moderate", "traditional"},
	DimensionTimeOfDay:            {"morning", "afternoon", "evening", "night"},
	DimensionSetting:              {"casual", "moderate", "elegant"},
	DimensionTexturePreference:    {"soft", "crunchy", "chewy", "varied"},
	DimensionCulturalAuthenticity: {"root-deep", "modern-fusion", "street-smart"},
	DimensionTextureTalk:          {"classic", "experimental"},
	DimensionFoodRemix:            {"og", "remix"},
}

// CoreDimensions devuelve las 8 dimensiones puntuadas por el match ponderado.
func CoreDimensions() []TraitDimension {
	out := make([]TraitDimension, len(coreDimensions))
	copy(out, coreDimensions)
	return out
}

// AllDimensions devuelve las 10 dimensiones en orden fijo (core y luego bonus).
func AllDimensions() []TraitDimension {
	out := make([]TraitDimension, 0, len(coreDimensions)+len(bonusDimensions))
	out = append(out, coreDimensions...)
	return append(out, bonusDimensions...)
}

// DimensionValues devuelve los valores validos de la dimension en orden canonico.
func DimensionValues(dim TraitDimension) []string {
	values := dimensionValues[dim]
	out := make([]string, len(values))
	copy(out, values)
	return out
}

// DefaultValue es el valor usado cuando ninguna respuesta etiqueta la dimension.
func DefaultValue(dim TraitDimension) string {
	values := dimensionValues[dim]
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func IsTracked(dim TraitDimension) bool {
	_, ok := dimensionValues[dim]
	return ok
}

func IsValidValue(dim TraitDimension, value string) bool {
	for _, v := range dimensionValues[dim] {
		if v == value {
			return true
		}
	}
	return false
}

// TraitTally cuenta, por dimension, cuantas respuestas eligieron cada valor.
type TraitTally map[TraitDimension]map[string]int

// Profile es el valor dominante por dimension.
type Profile map[TraitDimension]string

// Coverage cuenta cuantas preguntas respondidas podian etiquetar cada dimension.
type Coverage map[TraitDimension]int
