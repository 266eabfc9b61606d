package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"makan-match/internal/domain"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

var ErrInvalidCatalog = errors.New("invalid catalog")

// Catalog es el dataset estatico del quiz: platos, preguntas y maridajes clasicos.
// Una vez cargado es de solo lectura y puede compartirse entre requests.
type Catalog struct {
	dishes    []domain.Dish
	questions []domain.Question
	classics  []domain.ClassicPairing
	dishIndex map[string]int
	qIndex    map[string]int
}

type document struct {
	Dishes          []domain.Dish           `yaml:"dishes"`
	Questions       []domain.Question       `yaml:"questions"`
	ClassicPairings []domain.ClassicPairing `yaml:"classic_pairings"`
}

// LoadDefault carga el catalogo embebido en el binario.
func LoadDefault() (*Catalog, error) {
	return Load(defaultCatalogYAML)
}

// LoadFile carga un catalogo YAML desde disco.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Load(data)
}

// Load parsea y valida un documento YAML de catalogo.
func Load(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: parse yaml: %v", ErrInvalidCatalog, err)
	}
	return New(doc.Dishes, doc.Questions, doc.ClassicPairings)
}

// New construye un catalogo validado a partir de datos ya decodificados.
func New(dishes []domain.Dish, questions []domain.Question, classics []domain.ClassicPairing) (*Catalog, error) {
	if err := Validate(dishes, questions, classics); err != nil {
		return nil, err
	}
	c := &Catalog{
		dishes:    dishes,
		questions: questions,
		classics:  classics,
		dishIndex: make(map[string]int, len(dishes)),
		qIndex:    make(map[string]int, len(questions)),
	}
	for i, d := range dishes {
		c.dishIndex[d.ID] = i
	}
	for i, q := range questions {
		c.qIndex[q.ID] = i
	}
	return c, nil
}

// WithPairings devuelve una copia del catalogo con los maridajes anotados en cada plato.
func (c *Catalog) WithPairings(pairings map[string][]domain.PairedWith) *Catalog {
	dishes := make([]domain.Dish, len(c.dishes))
	copy(dishes, c.dishes)
	for i := range dishes {
		list := pairings[dishes[i].ID]
		if len(list) == 0 {
			dishes[i].PairedWith = nil
			continue
		}
		dishes[i].PairedWith = append([]domain.PairedWith(nil), list...)
	}
	return &Catalog{
		dishes:    dishes,
		questions: c.questions,
		classics:  c.classics,
		dishIndex: c.dishIndex,
		qIndex:    c.qIndex,
	}
}

// Dishes devuelve los platos en orden de catalogo.
func (c *Catalog) Dishes() []domain.Dish {
	out := make([]domain.Dish, len(c.dishes))
	copy(out, c.dishes)
	return out
}

func (c *Catalog) Questions() []domain.Question {
	out := make([]domain.Question, len(c.questions))
	copy(out, c.questions)
	return out
}

func (c *Catalog) ClassicPairings() []domain.ClassicPairing {
	out := make([]domain.ClassicPairing, len(c.classics))
	copy(out, c.classics)
	return out
}

// Dish busca un plato por id.
func (c *Catalog) Dish(id string) (domain.Dish, bool) {
	i, ok := c.dishIndex[id]
	if !ok {
		return domain.Dish{}, false
	}
	return c.dishes[i], true
}

// Question busca una pregunta por id.
func (c *Catalog) Question(id string) (domain.Question, bool) {
	i, ok := c.qIndex[id]
	if !ok {
		return domain.Question{}, false
	}
	return c.questions[i], true
}

// PairedDishes resuelve los maridajes de un plato en orden; ids desconocidos se ignoran.
func (c *Catalog) PairedDishes(id string) []domain.Dish {
	dish, ok := c.Dish(id)
	if !ok || len(dish.PairedWith) == 0 {
		return []domain.Dish{}
	}
	out := make([]domain.Dish, 0, len(dish.PairedWith))
	for _, p := range dish.PairedWith {
		if paired, ok := c.Dish(p.DishID); ok {
			out = append(out, paired)
		}
	}
	return out
}

// BestPairing devuelve el maridaje de mayor puntaje de un plato.
func (c *Catalog) BestPairing(id string) (domain.Dish, domain.PairedWith, bool) {
	dish, ok := c.Dish(id)
	if !ok || len(dish.PairedWith) == 0 {
		return domain.Dish{}, domain.PairedWith{}, false
	}
	best := dish.PairedWith[0]
	paired, ok := c.Dish(best.DishID)
	if !ok {
		return domain.Dish{}, domain.PairedWith{}, false
	}
	return paired, best, true
}

// PairingInfo devuelve la entrada de maridaje de a hacia b, si existe.
func (c *Catalog) PairingInfo(a, b string) (domain.PairedWith, bool) {
	dish, ok := c.Dish(a)
	if !ok {
		return domain.PairedWith{}, false
	}
	for _, p := range dish.PairedWith {
		if p.DishID == b {
			return p, true
		}
	}
	return domain.PairedWith{}, false
}
