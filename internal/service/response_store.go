package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"makan-match/internal/domain"
)

var ErrSessionNotFound = errors.New("quiz session not found")

// ResponseStore guarda las respuestas parciales de una sesion de quiz con TTL.
// Nada sobrevive mas alla de la sesion.
type ResponseStore interface {
	Create(ctx context.Context) (domain.QuizSession, error)
	Answer(ctx context.Context, sessionID, questionID, answerID string) (domain.QuizSession, error)
	Get(ctx context.Context, sessionID string) (domain.QuizSession, error)
	Delete(ctx context.Context, sessionID string) error
}

const defaultSessionTTL = 2 * time.Hour

type memorySession struct {
	responses domain.UserResponseSet
	createdAt time.Time
	expiresAt time.Time
}

type memoryResponseStore struct {
	mu        sync.Mutex
	ttl       time.Duration
	now       func() time.Time
	items     map[string]*memorySession
	lastSweep time.Time
}

// sessionSweepInterval acota cada cuanto se recorren las sesiones vencidas.
const sessionSweepInterval = time.Minute

func NewMemoryResponseStore(ttl time.Duration) ResponseStore {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &memoryResponseStore{
		ttl:   ttl,
		now:   func() time.Time { return time.Now().UTC() },
		items: make(map[string]*memorySession),
	}
}

func (s *memoryResponseStore) Create(_ context.Context) (domain.QuizSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.sweepExpired(now)
	id := uuid.NewString()
	item := &memorySession{
		responses: domain.UserResponseSet{},
		createdAt: now,
		expiresAt: now.Add(s.ttl),
	}
	s.items[id] = item
	return item.snapshot(id), nil
}

func (s *memoryResponseStore) Answer(_ context.Context, sessionID, questionID, answerID string) (domain.QuizSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepExpired(s.now())
	item, err := s.lookup(sessionID)
	if err != nil {
		return domain.QuizSession{}, err
	}
	item.responses[questionID] = answerID
	item.expiresAt = s.now().Add(s.ttl)
	return item.snapshot(sessionID), nil
}

func (s *memoryResponseStore) Get(_ context.Context, sessionID string) (domain.QuizSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, err := s.lookup(sessionID)
	if err != nil {
		return domain.QuizSession{}, err
	}
	return item.snapshot(sessionID), nil
}

func (s *memoryResponseStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, sessionID)
	return nil
}

// sweepExpired borra las sesiones vencidas, a lo sumo una vez por intervalo.
// Requiere el lock tomado.
func (s *memoryResponseStore) sweepExpired(now time.Time) {
	interval := sessionSweepInterval
	if s.ttl < interval {
		interval = s.ttl
	}
	if now.Sub(s.lastSweep) < interval {
		return
	}
	s.lastSweep = now
	for id, item := range s.items {
		if now.After(item.expiresAt) {
			delete(s.items, id)
		}
	}
}

// lookup requiere el lock tomado; borra la sesion si ya expiro.
func (s *memoryResponseStore) lookup(sessionID string) (*memorySession, error) {
	item, ok := s.items[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if s.now().After(item.expiresAt) {
		delete(s.items, sessionID)
		return nil, ErrSessionNotFound
	}
	return item, nil
}

func (m *memorySession) snapshot(id string) domain.QuizSession {
	responses := make(domain.UserResponseSet, len(m.responses))
	for k, v := range m.responses {
		responses[k] = v
	}
	return domain.QuizSession{
		ID:        id,
		Responses: responses,
		ExpiresAt: m.expiresAt,
		CreatedAt: m.createdAt,
	}
}

const createdAtField = "_created_at"

// Crea la sesion y fija su TTL en un solo paso; nunca queda una clave sin vencimiento.
const redisCreateSessionScript = `
redis.call("HSET", KEYS[1], ARGV[1], ARGV[2])
redis.call("PEXPIRE", KEYS[1], ARGV[3])
return 1
`

// Guarda la respuesta solo si la sesion sigue viva; una sesion vencida no revive.
const redisAnswerSessionScript = `
if redis.call("EXISTS", KEYS[1]) == 0 then
  return 0
end
redis.call("HSET", KEYS[1], ARGV[1], ARGV[2])
redis.call("PEXPIRE", KEYS[1], ARGV[3])
return 1
`

type redisHashClient interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
	TTL(ctx context.Context, key string) *redis.DurationCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type redisResponseStore struct {
	client redisHashClient
	ttl    time.Duration
	prefix string
}

func NewRedisResponseStore(client *redis.Client, ttl time.Duration) ResponseStore {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &redisResponseStore{
		client: client,
		ttl:    ttl,
		prefix: "quiz:session:",
	}
}

func (s *redisResponseStore) Create(ctx context.Context) (domain.QuizSession, error) {
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	id := uuid.NewString()
	now := time.Now().UTC()
	key := s.prefix + id
	err := s.client.Eval(ctx, redisCreateSessionScript, []string{key},
		createdAtField, strconv.FormatInt(now.Unix(), 10), s.ttl.Milliseconds()).Err()
	if err != nil {
		return domain.QuizSession{}, err
	}
	return domain.QuizSession{
		ID:        id,
		Responses: domain.UserResponseSet{},
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}, nil
}

func (s *redisResponseStore) Answer(ctx context.Context, sessionID, questionID, answerID string) (domain.QuizSession, error) {
	if strings.TrimSpace(sessionID) == "" {
		return domain.QuizSession{}, ErrSessionNotFound
	}
	if err := s.store(ctx, s.prefix+sessionID, questionID, answerID); err != nil {
		return domain.QuizSession{}, err
	}
	return s.Get(ctx, sessionID)
}

// store escribe la respuesta y renueva el TTL en el mismo script que
// comprueba que la sesion exista.
func (s *redisResponseStore) store(ctx context.Context, key, questionID, answerID string) error {
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	stored, err := s.client.Eval(ctx, redisAnswerSessionScript, []string{key},
		questionID, answerID, s.ttl.Milliseconds()).Int()
	if err != nil {
		return err
	}
	if stored == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (s *redisResponseStore) Get(ctx context.Context, sessionID string) (domain.QuizSession, error) {
	if strings.TrimSpace(sessionID) == "" {
		return domain.QuizSession{}, ErrSessionNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	key := s.prefix + sessionID
	fields, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return domain.QuizSession{}, err
	}
	if len(fields) == 0 {
		return domain.QuizSession{}, ErrSessionNotFound
	}
	session := domain.QuizSession{
		ID:        sessionID,
		Responses: domain.UserResponseSet{},
	}
	for k, v := range fields {
		if k == createdAtField {
			if unix, err := strconv.ParseInt(v, 10, 64); err == nil {
				session.CreatedAt = time.Unix(unix, 0).UTC()
			}
			continue
		}
		session.Responses[k] = v
	}
	ttl, err := s.client.TTL(ctx, key).Result()
	if err != nil {
		return domain.QuizSession{}, err
	}
	if ttl > 0 {
		session.ExpiresAt = time.Now().UTC().Add(ttl)
	}
	return session, nil
}

func (s *redisResponseStore) Delete(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	return s.client.Del(ctx, s.prefix+sessionID).Err()
}
