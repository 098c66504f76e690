package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/certlab/certprep-backend/internal/event"
	"github.com/certlab/certprep-backend/internal/model"
	"github.com/certlab/certprep-backend/internal/registry"
	"github.com/certlab/certprep-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ScoringService finalizes sessions into immutable results.
type ScoringService struct {
	sessions  SessionStore
	questions QuestionStore
	results   ResultStore
	registry  *registry.Registry
	notifier  Notifier
	log       zerolog.Logger
	now       func() time.Time
}

// NewScoringService creates a new ScoringService.
func NewScoringService(
	sessions SessionStore,
	questions QuestionStore,
	results ResultStore,
	reg *registry.Registry,
	notifier Notifier,
	log zerolog.Logger,
) *ScoringService {
	return &ScoringService{
		sessions:  sessions,
		questions: questions,
		results:   results,
		registry:  reg,
		notifier:  notifier,
		log:       log.With().Str("component", "scoring_service").Logger(),
		now:       time.Now,
	}
}

// SubmitExam grades a session, persists the result, marks the session
// completed and emits the completion event. Submitting an already-closed
// session fails without touching the stored result.
func (s *ScoringService) SubmitExam(ctx context.Context, userID string, sessionID uuid.UUID) (*model.ExamResult, error) {
	session, err := s.sessions.Get(ctx, userID, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	switch session.Status {
	case model.SessionStatusCompleted:
		return nil, ErrAlreadySubmitted
	case model.SessionStatusExpired:
		return nil, ErrSessionExpired
	}

	cfg, ok := s.registry.Scoring(session.Certification)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoScoringConfig, session.Certification)
	}

	questions, err := s.questions.GetByIDs(ctx, session.Questions)
	if err != nil {
		return nil, fmt.Errorf("fetch questions: %w", err)
	}

	completedAt := s.now()
	result := s.score(session, questions, cfg, completedAt)

	if err := s.results.Create(ctx, result); err != nil {
		return nil, fmt.Errorf("persist result: %w", err)
	}

	if err := s.sessions.Transition(ctx, userID, sessionID, model.SessionStatusCompleted, completedAt); err != nil {
		return nil, fmt.Errorf("complete session: %w", err)
	}

	s.notifier.Publish(ctx, event.TypeExamCompleted, event.ExamCompleted{
		SessionID:     session.ID.String(),
		UserID:        userID,
		ResultID:      result.ID.String(),
		Certification: session.Certification,
		ExamType:      string(session.ExamType),
		ScaledScore:   result.ScaledScore,
		Passed:        result.Passed,
		CompletedAt:   completedAt,
	})

	s.log.Info().
		Str("session_id", sessionID.String()).
		Int("scaled_score", result.ScaledScore).
		Bool("passed", result.Passed).
		Int("total_questions", result.TotalQuestions).
		Msg("Exam scored")

	return result, nil
}

// score computes the per-domain and overall scaled scores.
func (s *ScoringService) score(
	session *model.ExamSession,
	questions []model.Question,
	cfg registry.ScoringConfig,
	completedAt time.Time,
) *model.ExamResult {
	// Seed every configured domain so the breakdown always carries them,
	// zeroed if no question landed there. Domains present in question data
	// but missing from the config are created on the fly; question banks and
	// configs are not guaranteed to be in lockstep.
	accumulators := make(map[string]*model.DomainScore, len(cfg.Domains))
	order := make([]string, 0, len(cfg.Domains))
	for _, domain := range cfg.Domains {
		accumulators[domain] = &model.DomainScore{Domain: domain}
		order = append(order, domain)
	}

	totalCorrect := 0
	for _, q := range questions {
		acc, ok := accumulators[q.Domain]
		if !ok {
			acc = &model.DomainScore{Domain: q.Domain}
			accumulators[q.Domain] = acc
			order = append(order, q.Domain)
		}
		acc.TotalQuestions++

		answer, answered := session.Answers[q.ID.String()]
		if answered && len(answer.SelectedOptions) > 0 && sameOptionSet(answer.SelectedOptions, q.CorrectOptions) {
			acc.CorrectAnswers++
			totalCorrect++
		}
	}

	breakdown := make([]model.DomainScore, 0, len(order))
	for _, domain := range order {
		acc := accumulators[domain]
		if acc.TotalQuestions > 0 {
			ratio := float64(acc.CorrectAnswers) / float64(acc.TotalQuestions)
			acc.Percentage = int(math.Round(ratio * 100))
			acc.Score = int(math.Round(ratio * float64(cfg.ScalingFactor)))
		}
		breakdown = append(breakdown, *acc)
	}

	scaledScore := 0
	if len(questions) > 0 {
		rawPercentage := float64(totalCorrect) / float64(len(questions))
		scaledScore = int(math.Round(rawPercentage * float64(cfg.ScalingFactor)))
	}

	return &model.ExamResult{
		ID:              uuid.New(),
		SessionID:       session.ID,
		UserID:          session.UserID,
		Certification:   session.Certification,
		ExamType:        session.ExamType,
		ScaledScore:     scaledScore,
		Passed:          scaledScore >= cfg.PassingScore,
		DomainBreakdown: breakdown,
		TotalQuestions:  len(questions),
		CorrectAnswers:  totalCorrect,
		CompletedAt:     completedAt,
		TimeSpent:       int(math.Round(completedAt.Sub(session.StartTime).Minutes())),
	}
}

// sameOptionSet compares selected and correct option IDs as sets: order does
// not matter and duplicate selections of one ID collapse.
func sameOptionSet(selected, correct []string) bool {
	sel := make(map[string]struct{}, len(selected))
	for _, id := range selected {
		sel[id] = struct{}{}
	}
	cor := make(map[string]struct{}, len(correct))
	for _, id := range correct {
		cor[id] = struct{}{}
	}
	if len(sel) != len(cor) {
		return false
	}
	for id := range cor {
		if _, ok := sel[id]; !ok {
			return false
		}
	}
	return true
}
