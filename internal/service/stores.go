package service

import (
	"context"
	"time"

	"github.com/certlab/certprep-backend/internal/model"
	"github.com/google/uuid"
)

// SessionStore is the session persistence contract the services depend on.
// *repository.ExamSessionRepository satisfies it.
type SessionStore interface {
	Get(ctx context.Context, userID string, sessionID uuid.UUID) (*model.ExamSession, error)
	Create(ctx context.Context, s *model.ExamSession) error
	UpdateProgress(ctx context.Context, userID string, sessionID uuid.UUID,
		answers map[string]model.Answer, markedForReview []string, updatedAt time.Time) (*model.ExamSession, error)
	Transition(ctx context.Context, userID string, sessionID uuid.UUID,
		status model.SessionStatus, endTime time.Time) error
}

// QuestionStore is the question read contract.
// *repository.QuestionRepository satisfies it.
type QuestionStore interface {
	ListByCertificationDomain(ctx context.Context, certification, domain string,
		difficulty model.Difficulty) ([]model.Question, error)
	GetByIDs(ctx context.Context, ids []string) ([]model.Question, error)
}

// ResultStore is the create-only result contract.
// *repository.ExamResultRepository satisfies it.
type ResultStore interface {
	Create(ctx context.Context, res *model.ExamResult) error
}

// Notifier is the fire-and-forget event sink. Implementations absorb their
// own delivery failures.
type Notifier interface {
	Publish(ctx context.Context, eventType string, payload any)
}
