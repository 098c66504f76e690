package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/certlab/certprep-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const sessionColumns = `id, user_id, exam_type, certification, questions, answers,
	marked_for_review, start_time, time_limit_minutes, status, end_time, updated_at, expires_at`

// ExamSessionRepository handles exam session data access.
type ExamSessionRepository struct {
	pool *pgxpool.Pool
}

// NewExamSessionRepository creates a new ExamSessionRepository.
func NewExamSessionRepository(pool *pgxpool.Pool) *ExamSessionRepository {
	return &ExamSessionRepository{pool: pool}
}

// Get retrieves a session by its (user, session) identity.
func (r *ExamSessionRepository) Get(ctx context.Context, userID string, sessionID uuid.UUID) (*model.ExamSession, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+`
		 FROM exam_sessions
		 WHERE user_id = $1 AND id = $2`, userID, sessionID)

	s, err := scanSession(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

// Create inserts a new session. The insert is conditional on the identity
// being free: a conflicting row makes it a no-op and Create reports
// ErrDuplicate instead of clobbering the existing session.
func (r *ExamSessionRepository) Create(ctx context.Context, s *model.ExamSession) error {
	questions, answers, marked, err := encodeSessionFields(s)
	if err != nil {
		return err
	}

	err = r.pool.QueryRow(ctx,
		`INSERT INTO exam_sessions
		   (id, user_id, exam_type, certification, questions, answers, marked_for_review,
		    start_time, time_limit_minutes, status, updated_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 ON CONFLICT (user_id, id) DO NOTHING
		 RETURNING start_time, updated_at`,
		s.ID, s.UserID, s.ExamType, s.Certification, questions, answers, marked,
		s.StartTime, s.TimeLimit, s.Status, s.UpdatedAt, s.ExpiresAt,
	).Scan(&s.StartTime, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrDuplicate
	}
	return err
}

// UpdateProgress replaces answers and marked_for_review wholesale and stamps
// updated_at, returning the updated row. Callers are responsible for status
// and deadline checks; this is a plain last-write-wins write.
func (r *ExamSessionRepository) UpdateProgress(
	ctx context.Context,
	userID string,
	sessionID uuid.UUID,
	answers map[string]model.Answer,
	markedForReview []string,
	updatedAt time.Time,
) (*model.ExamSession, error) {
	answersJSON, err := json.Marshal(answers)
	if err != nil {
		return nil, fmt.Errorf("encode answers: %w", err)
	}
	markedJSON, err := json.Marshal(markedForReview)
	if err != nil {
		return nil, fmt.Errorf("encode marked_for_review: %w", err)
	}

	row := r.pool.QueryRow(ctx,
		`UPDATE exam_sessions
		 SET answers = $3, marked_for_review = $4, updated_at = $5
		 WHERE user_id = $1 AND id = $2
		 RETURNING `+sessionColumns,
		userID, sessionID, answersJSON, markedJSON, updatedAt)

	s, err := scanSession(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

// Transition moves an IN_PROGRESS session to a terminal status and sets
// end_time. The guard on the current status makes the state machine one-way:
// a session that already left IN_PROGRESS is never touched again.
func (r *ExamSessionRepository) Transition(
	ctx context.Context,
	userID string,
	sessionID uuid.UUID,
	status model.SessionStatus,
	endTime time.Time,
) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE exam_sessions
		 SET status = $3, end_time = $4, updated_at = $4
		 WHERE user_id = $1 AND id = $2 AND status = $5`,
		userID, sessionID, status, endTime, model.SessionStatusInProgress)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func encodeSessionFields(s *model.ExamSession) (questions, answers, marked []byte, err error) {
	if questions, err = json.Marshal(s.Questions); err != nil {
		return nil, nil, nil, fmt.Errorf("encode questions: %w", err)
	}
	if answers, err = json.Marshal(s.Answers); err != nil {
		return nil, nil, nil, fmt.Errorf("encode answers: %w", err)
	}
	if marked, err = json.Marshal(s.MarkedForReview); err != nil {
		return nil, nil, nil, fmt.Errorf("encode marked_for_review: %w", err)
	}
	return questions, answers, marked, nil
}

func scanSession(row pgx.Row) (*model.ExamSession, error) {
	var (
		s         model.ExamSession
		questions []byte
		answers   []byte
		marked    []byte
	)
	err := row.Scan(
		&s.ID, &s.UserID, &s.ExamType, &s.Certification, &questions, &answers,
		&marked, &s.StartTime, &s.TimeLimit, &s.Status, &s.EndTime, &s.UpdatedAt, &s.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(questions, &s.Questions); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	if err := json.Unmarshal(answers, &s.Answers); err != nil {
		return nil, fmt.Errorf("decode answers: %w", err)
	}
	if err := json.Unmarshal(marked, &s.MarkedForReview); err != nil {
		return nil, fmt.Errorf("decode marked_for_review: %w", err)
	}
	return &s, nil
}
