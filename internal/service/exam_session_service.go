package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/certlab/certprep-backend/internal/config"
	"github.com/certlab/certprep-backend/internal/event"
	"github.com/certlab/certprep-backend/internal/model"
	"github.com/certlab/certprep-backend/internal/registry"
	"github.com/certlab/certprep-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	// PracticeTimeLimit is the fixed limit for PRACTICE sessions (minutes).
	PracticeTimeLimit = 60
	// CustomTimeLimitMin and CustomTimeLimitMax bound the computed CUSTOM
	// limit of two minutes per requested question.
	CustomTimeLimitMin = 60
	CustomTimeLimitMax = 300
	// ExpiryBuffer pads the storage-level reclamation hint past the deadline
	// so a session outlives its own expiry long enough to be scored.
	ExpiryBuffer = time.Hour
)

// ExamSessionService creates and maintains exam sessions.
type ExamSessionService struct {
	sessions  SessionStore
	questions QuestionStore
	registry  *registry.Registry
	notifier  Notifier
	rdb       *redis.Client
	log       zerolog.Logger
	now       func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

// NewExamSessionService creates a new ExamSessionService. The rng is the
// only randomness source used for question draws, so tests can pin shuffle
// behavior with a seeded generator.
func NewExamSessionService(
	sessions SessionStore,
	questions QuestionStore,
	reg *registry.Registry,
	notifier Notifier,
	rdb *redis.Client,
	rng *rand.Rand,
	log zerolog.Logger,
) *ExamSessionService {
	return &ExamSessionService{
		sessions:  sessions,
		questions: questions,
		registry:  reg,
		notifier:  notifier,
		rdb:       rdb,
		log:       log.With().Str("component", "exam_session_service").Logger(),
		now:       time.Now,
		rng:       rng,
	}
}

// StartExamResult is the response of StartExam: the created session plus the
// question payload the client renders. For MOCK exams the questions are
// redacted (no answer keys, no explanations) until submission.
type StartExamResult struct {
	Session   *model.ExamSession `json:"session"`
	Questions []model.Question   `json:"questions"`
}

// StartExam assembles a question set for the requested exam type and writes
// a new session record. The creation is guarded against identity collisions.
func (s *ExamSessionService) StartExam(ctx context.Context, userID string, req *model.StartExamRequest) (*StartExamResult, error) {
	var (
		selected  []model.Question
		timeLimit int
		err       error
	)

	switch req.ExamType {
	case model.ExamTypeMock:
		tmpl, ok := s.registry.Template(req.Certification)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownCertification, req.Certification)
		}
		selected, err = s.assembleMock(ctx, tmpl)
		if err != nil {
			return nil, err
		}
		timeLimit = tmpl.TimeLimit

	case model.ExamTypeCustom:
		if req.CustomOptions == nil {
			return nil, fmt.Errorf("%w: custom exam requires custom options", ErrInvalidInput)
		}
		selected, err = s.assembleCustom(ctx, req.Certification, req.CustomOptions)
		if err != nil {
			return nil, err
		}
		timeLimit = clamp(req.CustomOptions.QuestionCount*2, CustomTimeLimitMin, CustomTimeLimitMax)

	case model.ExamTypePractice:
		if _, ok := s.registry.Template(req.Certification); !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownCertification, req.Certification)
		}
		// Questions are resolved on demand outside this service.
		selected = nil
		timeLimit = PracticeTimeLimit

	default:
		return nil, fmt.Errorf("%w: exam type %q", ErrInvalidInput, req.ExamType)
	}

	now := s.now()
	questionIDs := make([]string, len(selected))
	for i, q := range selected {
		questionIDs[i] = q.ID.String()
	}

	session := &model.ExamSession{
		ID:              uuid.New(),
		UserID:          userID,
		ExamType:        req.ExamType,
		Certification:   req.Certification,
		Questions:       questionIDs,
		Answers:         map[string]model.Answer{},
		MarkedForReview: []string{},
		StartTime:       now,
		TimeLimit:       timeLimit,
		Status:          model.SessionStatusInProgress,
		UpdatedAt:       now,
		ExpiresAt:       now.Add(time.Duration(timeLimit)*time.Minute + ExpiryBuffer),
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateSession, session.ID)
		}
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.cacheDeadline(ctx, session)

	s.notifier.Publish(ctx, event.TypeExamStarted, event.ExamStarted{
		SessionID:     session.ID.String(),
		UserID:        userID,
		Certification: session.Certification,
		ExamType:      string(session.ExamType),
		StartTime:     session.StartTime,
	})

	payload := selected
	if req.ExamType == model.ExamTypeMock {
		payload = make([]model.Question, len(selected))
		for i, q := range selected {
			payload[i] = q.Redacted()
		}
	}

	return &StartExamResult{Session: session, Questions: payload}, nil
}

// assembleMock draws each domain's quota from the certification's template
// and shuffles the concatenation so domain order is not apparent.
func (s *ExamSessionService) assembleMock(ctx context.Context, tmpl registry.ExamTemplate) ([]model.Question, error) {
	var selected []model.Question

	for _, spec := range tmpl.Domains {
		quota := tmpl.TotalQuestions * spec.Percentage / 100

		pool, err := s.questions.ListByCertificationDomain(ctx, tmpl.Certification, spec.Name, "")
		if err != nil {
			return nil, fmt.Errorf("list questions for %s/%s: %w", tmpl.Certification, spec.Name, err)
		}

		if len(pool) < quota {
			// Shortfall is tolerated: take what exists rather than failing
			// the whole exam start.
			s.log.Warn().
				Str("certification", tmpl.Certification).
				Str("domain", spec.Name).
				Int("requested", quota).
				Int("available", len(pool)).
				Msg("Question pool shortfall")
			quota = len(pool)
		}

		selected = append(selected, s.draw(pool, quota)...)
	}

	s.shuffle(selected)
	return selected, nil
}

// assembleCustom pools the selected domains (optionally difficulty-filtered)
// and draws the requested count from the combined pool with no per-domain
// quota.
func (s *ExamSessionService) assembleCustom(ctx context.Context, certification string, opts *model.CustomExamOptions) ([]model.Question, error) {
	difficulty := model.Difficulty(opts.Difficulty)

	var pool []model.Question
	for _, domain := range opts.Domains {
		qs, err := s.questions.ListByCertificationDomain(ctx, certification, domain, difficulty)
		if err != nil {
			return nil, fmt.Errorf("list questions for %s/%s: %w", certification, domain, err)
		}
		pool = append(pool, qs...)
	}

	count := opts.QuestionCount
	if count > len(pool) {
		s.log.Warn().
			Str("certification", certification).
			Int("requested", count).
			Int("available", len(pool)).
			Msg("Question pool shortfall")
		count = len(pool)
	}

	return s.draw(pool, count), nil
}

// SaveProgress replaces the stored answers and review marks wholesale.
// A save that arrives past the deadline does not apply: the session is
// auto-expired, the expiry event is emitted, and the call fails with
// ErrSessionExpired.
func (s *ExamSessionService) SaveProgress(ctx context.Context, userID string, sessionID uuid.UUID, req *model.SaveProgressRequest) (*model.ExamSession, error) {
	session, err := s.sessions.Get(ctx, userID, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	if session.Status != model.SessionStatusInProgress {
		return nil, ErrSessionNotActive
	}

	now := s.now()
	if now.After(session.Deadline()) {
		s.expire(ctx, session, now)
		return nil, ErrSessionExpired
	}

	answers := req.Answers
	if answers == nil {
		answers = map[string]model.Answer{}
	}
	marked := req.MarkedForReview
	if marked == nil {
		marked = []string{}
	}

	updated, err := s.sessions.UpdateProgress(ctx, userID, sessionID, answers, marked, now)
	if err != nil {
		return nil, fmt.Errorf("update progress: %w", err)
	}
	return updated, nil
}

// expire commits the EXPIRED transition and emits the expiry event. The
// triggering call still fails afterwards; this is a forced termination, not
// a normal response.
func (s *ExamSessionService) expire(ctx context.Context, session *model.ExamSession, now time.Time) {
	err := s.sessions.Transition(ctx, session.UserID, session.ID, model.SessionStatusExpired, now)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		// ErrNotFound means a concurrent access already closed it.
		s.log.Error().Err(err).
			Str("session_id", session.ID.String()).
			Msg("Expiry transition failed")
		return
	}

	s.dropDeadline(ctx, session)

	s.notifier.Publish(ctx, event.TypeExamExpired, event.ExamExpired{
		SessionID: session.ID.String(),
		UserID:    session.UserID,
		Reason:    event.ReasonTimeLimitExceeded,
	})
}

// GetSession retrieves a session for the owning user.
func (s *ExamSessionService) GetSession(ctx context.Context, userID string, sessionID uuid.UUID) (*model.ExamSession, error) {
	session, err := s.sessions.Get(ctx, userID, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return session, nil
}

// RemainingSeconds returns the seconds left on a session's clock, floored at
// zero. The deadline is served from Redis so the countdown poll stays off
// PostgreSQL; on a cache miss it falls back to the session row and self-heals.
func (s *ExamSessionService) RemainingSeconds(ctx context.Context, userID string, sessionID uuid.UUID) (float64, error) {
	var deadlineUnix int64

	key := config.CacheKey.SessionDeadlineKey(userID, sessionID.String())
	val, err := s.rdb.Get(ctx, key).Result()

	switch {
	case errors.Is(err, redis.Nil):
		// Cache miss (evicted or pre-cache session). PostgreSQL is the
		// source of truth; put it back so the next poll is fast.
		session, dbErr := s.sessions.Get(ctx, userID, sessionID)
		if dbErr != nil {
			if errors.Is(dbErr, repository.ErrNotFound) {
				return 0, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
			}
			return 0, fmt.Errorf("get session: %w", dbErr)
		}
		deadlineUnix = session.Deadline().Unix()
		s.cacheDeadline(ctx, session)

	case err != nil:
		return 0, fmt.Errorf("redis get deadline: %w", err)

	default:
		deadlineUnix, err = strconv.ParseInt(val, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid deadline format in cache: %w", err)
		}
	}

	remaining := time.Unix(deadlineUnix, 0).Sub(s.now())
	if remaining < 0 {
		remaining = 0
	}
	return remaining.Seconds(), nil
}

func (s *ExamSessionService) cacheDeadline(ctx context.Context, session *model.ExamSession) {
	if s.rdb == nil {
		return
	}
	key := config.CacheKey.SessionDeadlineKey(session.UserID, session.ID.String())
	ttl := time.Duration(session.TimeLimit)*time.Minute + ExpiryBuffer
	if err := s.rdb.Set(ctx, key, session.Deadline().Unix(), ttl).Err(); err != nil {
		// Best effort; RemainingSeconds falls back to the database.
		s.log.Warn().Err(err).Str("session_id", session.ID.String()).Msg("Deadline cache write failed")
	}
}

func (s *ExamSessionService) dropDeadline(ctx context.Context, session *model.ExamSession) {
	if s.rdb == nil {
		return
	}
	_ = s.rdb.Del(ctx, config.CacheKey.SessionDeadlineKey(session.UserID, session.ID.String())).Err()
}

// draw picks n elements uniformly at random without replacement.
func (s *ExamSessionService) draw(pool []model.Question, n int) []model.Question {
	if n > len(pool) {
		n = len(pool)
	}
	shuffled := make([]model.Question, len(pool))
	copy(shuffled, pool)
	s.shuffle(shuffled)
	return shuffled[:n]
}

// shuffle performs an in-place Fisher–Yates shuffle.
func (s *ExamSessionService) shuffle(questions []model.Question) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rng.Shuffle(len(questions), func(i, j int) {
		questions[i], questions[j] = questions[j], questions[i]
	})
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
