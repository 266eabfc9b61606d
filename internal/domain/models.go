package domain

// Answer es una opcion de una pregunta; etiqueta cero o mas dimensiones con un valor.
type Answer struct {
	ID     string                    `json:"id" yaml:"id"`
	Text   string                    `json:"text" yaml:"text"`
	Traits map[TraitDimension]string `json:"traits" yaml:"traits"`
}

type Question struct {
	ID      string   `json:"id" yaml:"id"`
	Prompt  string   `json:"prompt" yaml:"prompt"`
	Answers []Answer `json:"answers" yaml:"answers"`
}

// Answer busca una respuesta por id dentro de la pregunta.
func (q Question) Answer(id string) (Answer, bool) {
	for _, a := range q.Answers {
		if a.ID == id {
			return a, true
		}
	}
	return Answer{}, false
}

// Tags indica si alguna respuesta de la pregunta etiqueta la dimension.
func (q Question) Tags(dim TraitDimension) bool {
	for _, a := range q.Answers {
		if _, ok := a.Traits[dim]; ok {
			return true
		}
	}
	return false
}

// UserResponseSet mapea question id -> answer id elegida.
type UserResponseSet map[string]string

// DishAttributes asigna exactamente un valor por dimension a un plato.
type DishAttributes map[TraitDimension]string

type Modifier struct {
	ID               string                    `json:"id" yaml:"id"`
	Name             string                    `json:"name" yaml:"name"`
	Description      string                    `json:"description" yaml:"description"`
	TriggerTrait     TraitDimension            `json:"trigger_trait" yaml:"trigger_trait"`
	TriggerThreshold float64                   `json:"trigger_threshold" yaml:"trigger_threshold"`
	ModifierTraits   map[TraitDimension]string `json:"modifier_traits" yaml:"modifier_traits"`
	MemeCaption      string                    `json:"meme_caption,omitempty" yaml:"meme_caption"`
	EmojiCombo       []string                  `json:"emoji_combo,omitempty" yaml:"emoji_combo"`
}

// WatchedValue devuelve el valor de la dimension disparadora que mide el modificador.
func (m Modifier) WatchedValue() (string, bool) {
	v, ok := m.ModifierTraits[m.TriggerTrait]
	return v, ok
}

type MemeContent struct {
	TiktokCaption string   `json:"tiktok_caption" yaml:"tiktok_caption"`
	VibeCheck     string   `json:"vibe_check" yaml:"vibe_check"`
	MemePotential string   `json:"meme_potential" yaml:"meme_potential"`
	EmojiCombo    []string `json:"emoji_combo" yaml:"emoji_combo"`
	InternetSlang []string `json:"internet_slang" yaml:"internet_slang"`
}

// PairedWith es una sugerencia direccional guardada en el plato dueño.
type PairedWith struct {
	DishID             string `json:"dish_id"`
	Reason             string `json:"reason"`
	CompatibilityScore int    `json:"compatibility_score"`
}

type Dish struct {
	ID                string         `json:"id" yaml:"id"`
	Emoji             string         `json:"emoji" yaml:"emoji"`
	Name              string         `json:"name" yaml:"name"`
	ChineseName       string         `json:"chinese_name,omitempty" yaml:"chinese_name"`
	Category          string         `json:"category" yaml:"category"`
	Description       string         `json:"description" yaml:"description"`
	Quote             string         `json:"quote,omitempty" yaml:"quote"`
	PersonalityTraits []string       `json:"personality_traits" yaml:"personality_traits"`
	Attributes        DishAttributes `json:"attributes" yaml:"attributes"`
	Modifiers         []Modifier     `json:"modifiers,omitempty" yaml:"modifiers"`
	Meme              *MemeContent   `json:"meme,omitempty" yaml:"meme"`
	PairedWith        []PairedWith   `json:"paired_with,omitempty" yaml:"-"`
}

// ClassicPartner es un compañero canonico forzado en la lista de maridajes.
type ClassicPartner struct {
	DishID string `json:"dish_id" yaml:"id"`
	Reason string `json:"reason,omitempty" yaml:"reason"`
}

type ClassicPairing struct {
	DishID   string           `json:"dish_id" yaml:"dish"`
	Partners []ClassicPartner `json:"partners" yaml:"partners"`
}

// QuizResult es la salida de una resolucion completa.
type QuizResult struct {
	DishID        string   `json:"dish_id"`
	ModifierID    string   `json:"modifier_id,omitempty"`
	PairedDishIDs []string `json:"paired_dish_ids"`
	Strategy      string   `json:"strategy"`
	Profile       Profile  `json:"profile"`
}
