package domain

import "time"

// QuizSession guarda las respuestas parciales de un intento del quiz.
type QuizSession struct {
	ID        string          `json:"id"`
	Responses UserResponseSet `json:"responses"`
	ExpiresAt time.Time       `json:"expires_at"`
	CreatedAt time.Time       `json:"created_at"`
}
