package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestMemoryResponseStore_Basics(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryResponseStore(time.Minute)

	session, err := store.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if session.ID == "" || len(session.Responses) != 0 {
		t.Fatalf("unexpected new session: %+v", session)
	}

	if _, err := store.Answer(ctx, session.ID, "1", "a"); err != nil {
		t.Fatalf("answer: %v", err)
	}
	updated, err := store.Answer(ctx, session.ID, "1", "c")
	if err != nil {
		t.Fatalf("answer overwrite: %v", err)
	}
	if updated.Responses["1"] != "c" || len(updated.Responses) != 1 {
		t.Fatalf("expected one answer per question, got %+v", updated.Responses)
	}

	// Los snapshots no deben compartir el map interno.
	updated.Responses["2"] = "b"
	got, err := store.Get(ctx, session.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if _, ok := got.Responses["2"]; ok {
		t.Fatalf("expected snapshot isolation")
	}

	if err := store.Delete(ctx, session.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, session.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after delete, got %v", err)
	}
	if _, err := store.Answer(ctx, "missing", "1", "a"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound for unknown session, got %v", err)
	}
}

func TestMemoryResponseStore_Expiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryResponseStore(time.Minute).(*memoryResponseStore)
	now := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	session, err := store.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	now = now.Add(2 * time.Minute)
	if _, err := store.Get(ctx, session.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected expired session to be gone, got %v", err)
	}
	if len(store.items) != 0 {
		t.Fatalf("expected expired session to be evicted")
	}
}

func TestMemoryResponseStore_SweepsAbandonedSessions(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryResponseStore(time.Minute).(*memoryResponseStore)
	now := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	for i := 0; i < 1000; i++ {
		if _, err := store.Create(ctx); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	kept, err := store.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(store.items) != 1001 {
		t.Fatalf("expected live sessions kept, got %d", len(store.items))
	}

	// Una sesion renovada a mitad de camino sobrevive al barrido.
	now = now.Add(45 * time.Second)
	if _, err := store.Answer(ctx, kept.ID, "1", "a"); err != nil {
		t.Fatalf("answer: %v", err)
	}

	now = now.Add(30 * time.Second)
	if _, err := store.Create(ctx); err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(store.items) != 2 {
		t.Fatalf("expected abandoned sessions swept, %d held", len(store.items))
	}
	if _, err := store.Get(ctx, kept.ID); err != nil {
		t.Fatalf("expected refreshed session alive, got %v", err)
	}

	now = now.Add(24 * time.Hour)
	if _, err := store.Create(ctx); err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(store.items) != 1 {
		t.Fatalf("expected only the new session after a day, got %d", len(store.items))
	}
}

type mockRedisHashClient struct {
	hashes   map[string]map[string]string
	ttls     map[string]time.Duration
	evalErr  error
	lastDel  []string
	lastTTLs []time.Duration
}

func newMockRedisHashClient() *mockRedisHashClient {
	return &mockRedisHashClient{
		hashes: make(map[string]map[string]string),
		ttls:   make(map[string]time.Duration),
	}
}

// expire simula que Redis vencio la clave.
func (m *mockRedisHashClient) expire(key string) {
	delete(m.hashes, key)
	delete(m.ttls, key)
}

// Eval reproduce los scripts del store: HSET + PEXPIRE, con chequeo de
// existencia en el de respuestas.
func (m *mockRedisHashClient) Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd {
	cmd := redis.NewCmd(ctx)
	if m.evalErr != nil {
		cmd.SetErr(m.evalErr)
		return cmd
	}
	key := keys[0]
	h, ok := m.hashes[key]
	if script == redisAnswerSessionScript && !ok {
		cmd.SetVal(int64(0))
		return cmd
	}
	if !ok {
		h = make(map[string]string)
		m.hashes[key] = h
	}
	h[args[0].(string)] = args[1].(string)
	ttl := time.Duration(args[2].(int64)) * time.Millisecond
	m.ttls[key] = ttl
	m.lastTTLs = append(m.lastTTLs, ttl)
	cmd.SetVal(int64(1))
	return cmd
}

func (m *mockRedisHashClient) HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd {
	cmd := redis.NewMapStringStringCmd(ctx)
	out := make(map[string]string)
	for k, v := range m.hashes[key] {
		out[k] = v
	}
	cmd.SetVal(out)
	return cmd
}

func (m *mockRedisHashClient) TTL(ctx context.Context, key string) *redis.DurationCmd {
	cmd := redis.NewDurationCmd(ctx, time.Second)
	cmd.SetVal(m.ttls[key])
	return cmd
}

func (m *mockRedisHashClient) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	m.lastDel = keys
	for _, k := range keys {
		delete(m.hashes, k)
	}
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(int64(len(keys)))
	return cmd
}

func TestRedisResponseStore_Flow(t *testing.T) {
	ctx := context.Background()
	client := newMockRedisHashClient()
	store := &redisResponseStore{client: client, ttl: 30 * time.Minute, prefix: "quiz:session:"}

	session, err := store.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	key := "quiz:session:" + session.ID
	if _, ok := client.hashes[key][createdAtField]; !ok {
		t.Fatalf("expected created_at field stored, got %+v", client.hashes[key])
	}
	if client.ttls[key] != 30*time.Minute {
		t.Fatalf("expected ttl on create, got %v", client.ttls[key])
	}

	got, err := store.Answer(ctx, session.ID, "3", "c")
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if got.Responses["3"] != "c" || len(got.Responses) != 1 {
		t.Fatalf("expected created_at excluded from responses, got %+v", got.Responses)
	}
	if got.CreatedAt.IsZero() || got.ExpiresAt.IsZero() {
		t.Fatalf("expected timestamps populated, got %+v", got)
	}
	if len(client.lastTTLs) != 2 {
		t.Fatalf("expected ttl refreshed on answer, got %v", client.lastTTLs)
	}

	if err := store.Delete(ctx, session.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(client.lastDel) != 1 || client.lastDel[0] != key {
		t.Fatalf("unexpected del keys: %+v", client.lastDel)
	}
	if _, err := store.Get(ctx, session.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after delete, got %v", err)
	}
}

func TestRedisResponseStore_Errors(t *testing.T) {
	ctx := context.Background()
	client := newMockRedisHashClient()
	store := &redisResponseStore{client: client, ttl: time.Minute, prefix: "quiz:session:"}

	if _, err := store.Answer(ctx, "nope", "1", "a"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound for unknown session, got %v", err)
	}
	if _, err := store.Get(ctx, "  "); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound for blank id, got %v", err)
	}

	client.evalErr = errors.New("redis down")
	if _, err := store.Create(ctx); err == nil {
		t.Fatalf("expected create to surface redis errors")
	}
	if NewRedisResponseStore(nil, time.Minute) != nil {
		t.Fatalf("expected nil store without client")
	}
}

func TestRedisResponseStore_ExpiredSessionStaysGone(t *testing.T) {
	ctx := context.Background()
	client := newMockRedisHashClient()
	store := &redisResponseStore{client: client, ttl: time.Minute, prefix: "quiz:session:"}

	session, err := store.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	key := "quiz:session:" + session.ID
	client.expire(key)

	if _, err := store.Answer(ctx, session.ID, "1", "a"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound for expired session, got %v", err)
	}
	if _, ok := client.hashes[key]; ok {
		t.Fatalf("expected answer not to recreate the session, got %+v", client.hashes[key])
	}
	if len(client.lastTTLs) != 1 {
		t.Fatalf("expected ttl only set on create, got %v", client.lastTTLs)
	}
}
