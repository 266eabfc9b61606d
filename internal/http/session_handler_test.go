package http

import (
	"net/http"
	"testing"
	"time"

	"makan-match/internal/domain"
	"makan-match/internal/service"
)

func TestSessionHandlerFlow(t *testing.T) {
	r := setupRouter(t, nil)

	rec := performRequest(r, http.MethodPost, "/session", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	created := decode[struct {
		SessionID string `json:"session_id"`
	}](t, rec)
	if created.SessionID == "" {
		t.Fatalf("expected session id")
	}
	base := "/session/" + created.SessionID

	rec = performRequest(r, http.MethodPut, base+"/answers", map[string]string{"question_id": "3", "answer_id": "z"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown answer, got %d", rec.Code)
	}
	rec = performRequest(r, http.MethodPut, base+"/answers", map[string]string{"question_id": "3"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing answer id, got %d", rec.Code)
	}

	for q, a := range laksaAnswers {
		rec = performRequest(r, http.MethodPut, base+"/answers", map[string]string{"question_id": q, "answer_id": a})
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 saving %s=%s, got %d", q, a, rec.Code)
		}
	}

	rec = performRequest(r, http.MethodGet, base, nil)
	got := decode[struct {
		Session domain.QuizSession `json:"session"`
	}](t, rec)
	if len(got.Session.Responses) != len(laksaAnswers) {
		t.Fatalf("expected %d stored answers, got %+v", len(laksaAnswers), got.Session.Responses)
	}

	rec = performRequest(r, http.MethodPost, base+"/result", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on session result, got %d: %s", rec.Code, rec.Body.String())
	}
	result := decode[domain.QuizResult](t, rec)
	if result.DishID != "laksa" {
		t.Fatalf("expected laksa from stored answers, got %q", result.DishID)
	}

	rec = performRequest(r, http.MethodGet, base, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected session discarded after result, got %d", rec.Code)
	}
}

func TestSessionHandlerUnknownSession(t *testing.T) {
	r := setupRouter(t, nil)

	rec := performRequest(r, http.MethodPut, "/session/missing/answers", map[string]string{"question_id": "1", "answer_id": "a"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown session, got %d", rec.Code)
	}
	rec = performRequest(r, http.MethodPost, "/session/missing/result", map[string]string{"strategy": "hash"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 submitting unknown session, got %d", rec.Code)
	}
}

func TestSessionHandlerSubmit_RateLimited(t *testing.T) {
	r := setupRouter(t, &mockLimiter{deny: map[service.RateAction]bool{service.RateActionSubmit: true}})

	rec := performRequest(r, http.MethodPost, "/session", nil)
	created := decode[struct {
		SessionID string `json:"session_id"`
	}](t, rec)
	rec = performRequest(r, http.MethodPost, "/session/"+created.SessionID+"/result", nil)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
}

func TestSessionHandlerCreate_RateLimited(t *testing.T) {
	limiter := &mockLimiter{
		deny:  map[service.RateAction]bool{service.RateActionSession: true},
		retry: 40 * time.Second,
	}
	r := setupRouter(t, limiter)

	rec := performRequest(r, http.MethodPost, "/session", nil)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 creating sessions over budget, got %d", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "40" {
		t.Fatalf("expected Retry-After 40, got %q", got)
	}
	if len(limiter.calls) != 1 || limiter.calls[0].action != service.RateActionSession {
		t.Fatalf("expected session budget checked, got %+v", limiter.calls)
	}

	// Responder preguntas no consume presupuesto.
	rec = performRequest(r, http.MethodPut, "/session/missing/answers", map[string]string{"question_id": "1", "answer_id": "a"})
	if rec.Code != http.StatusNotFound || len(limiter.calls) != 1 {
		t.Fatalf("expected answers outside the limiter, got %d with %d calls", rec.Code, len(limiter.calls))
	}
}
