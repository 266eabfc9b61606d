package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"makan-match/internal/catalog"
	"makan-match/internal/domain"
)

var (
	ErrQuizNotConfigured = errors.New("quiz service not configured")
	ErrDishNotFound      = errors.New("dish not found")
	ErrUnknownAnswer     = errors.New("unknown question or answer")
)

// QuizService orquesta el calculo del resultado sobre el catalogo ya anotado con maridajes.
type QuizService struct {
	catalog  *catalog.Catalog
	resolver Resolver
	metrics  *QuizMetrics
	logger   *zap.Logger
}

// NewQuizService calcula los maridajes una sola vez y guarda el catalogo anotado.
func NewQuizService(cat *catalog.Catalog, resolver Resolver, metrics *QuizMetrics, logger *zap.Logger) *QuizService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if resolver == nil {
		resolver = WeightedMatchResolver{}
	}
	svc := &QuizService{
		resolver: resolver,
		metrics:  metrics,
		logger:   logger,
	}
	if cat != nil {
		pairings := DefaultPairingEngine.ComputeAllPairings(cat.Dishes(), cat.ClassicPairings())
		svc.catalog = cat.WithPairings(pairings)
	}
	return svc
}

// Strategy devuelve el nombre de la estrategia activa.
func (s *QuizService) Strategy() string {
	if s == nil || s.resolver == nil {
		return ""
	}
	return s.resolver.Name()
}

// Catalog expone el catalogo anotado (solo lectura).
func (s *QuizService) Catalog() *catalog.Catalog {
	if s == nil {
		return nil
	}
	return s.catalog
}

func (s *QuizService) Questions() []domain.Question {
	if s == nil || s.catalog == nil {
		return nil
	}
	return s.catalog.Questions()
}

func (s *QuizService) Dishes() []domain.Dish {
	if s == nil || s.catalog == nil {
		return nil
	}
	return s.catalog.Dishes()
}

// Dish busca un plato anotado; ErrDishNotFound si el id no existe.
func (s *QuizService) Dish(id string) (domain.Dish, error) {
	if s == nil || s.catalog == nil {
		return domain.Dish{}, ErrQuizNotConfigured
	}
	dish, ok := s.catalog.Dish(strings.TrimSpace(id))
	if !ok {
		return domain.Dish{}, ErrDishNotFound
	}
	return dish, nil
}

func (s *QuizService) PairedDishes(id string) ([]domain.Dish, error) {
	if _, err := s.Dish(id); err != nil {
		return nil, err
	}
	return s.catalog.PairedDishes(strings.TrimSpace(id)), nil
}

// ValidateAnswer verifica que la respuesta exista en el catalogo antes de guardarla.
func (s *QuizService) ValidateAnswer(questionID, answerID string) error {
	if s == nil || s.catalog == nil {
		return ErrQuizNotConfigured
	}
	q, ok := s.catalog.Question(questionID)
	if !ok {
		return fmt.Errorf("%w: question %q", ErrUnknownAnswer, questionID)
	}
	if _, ok := q.Answer(answerID); !ok {
		return fmt.Errorf("%w: answer %q for question %q", ErrUnknownAnswer, answerID, questionID)
	}
	return nil
}

// Submit resuelve plato, modificador y maridajes para un set de respuestas.
// strategy vacio usa la estrategia configurada.
func (s *QuizService) Submit(ctx context.Context, responses domain.UserResponseSet, strategy string) (domain.QuizResult, error) {
	if s == nil || s.catalog == nil {
		return domain.QuizResult{}, ErrQuizNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return domain.QuizResult{}, err
	}
	resolver := s.resolver
	if strings.TrimSpace(strategy) != "" {
		r, err := NewResolver(strategy)
		if err != nil {
			return domain.QuizResult{}, err
		}
		resolver = r
	}

	questions := s.catalog.Questions()
	tally, coverage := TallyWithCoverage(responses, questions)
	profile := ReduceProfile(tally)

	dishID, err := resolver.Resolve(profile, s.catalog.Dishes())
	if err != nil {
		return domain.QuizResult{}, fmt.Errorf("resolve dish: %w", err)
	}
	dish, ok := s.catalog.Dish(dishID)
	if !ok {
		return domain.QuizResult{}, fmt.Errorf("resolve dish %q: %w", dishID, ErrDishNotFound)
	}

	result := domain.QuizResult{
		DishID:        dish.ID,
		PairedDishIDs: make([]string, 0, len(dish.PairedWith)),
		Strategy:      resolver.Name(),
		Profile:       profile,
	}
	modifier, pct, active := ResolveModifier(dish, tally, coverage)
	if active {
		result.ModifierID = modifier.ID
	}
	for _, p := range s.catalog.PairedDishes(dish.ID) {
		result.PairedDishIDs = append(result.PairedDishIDs, p.ID)
	}

	s.metrics.ObserveResult(result)
	s.logger.Info("quiz resolved",
		zap.String("dish_id", result.DishID),
		zap.String("modifier_id", result.ModifierID),
		zap.Float64("modifier_pct", pct),
		zap.String("strategy", result.Strategy),
		zap.Int("answers", len(responses)),
	)
	return result, nil
}
