package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/certlab/certprep-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const resultColumns = `id, session_id, user_id, certification, exam_type, scaled_score,
	passed, domain_breakdown, total_questions, correct_answers, completed_at, time_spent_minutes`

// ExamResultRepository handles exam result data access. Results are
// create-only; no update path exists.
type ExamResultRepository struct {
	pool *pgxpool.Pool
}

// NewExamResultRepository creates a new ExamResultRepository.
func NewExamResultRepository(pool *pgxpool.Pool) *ExamResultRepository {
	return &ExamResultRepository{pool: pool}
}

// Create inserts a new result row.
func (r *ExamResultRepository) Create(ctx context.Context, res *model.ExamResult) error {
	breakdown, err := json.Marshal(res.DomainBreakdown)
	if err != nil {
		return fmt.Errorf("encode domain_breakdown: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO exam_results
		   (id, session_id, user_id, certification, exam_type, scaled_score,
		    passed, domain_breakdown, total_questions, correct_answers, completed_at, time_spent_minutes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		res.ID, res.SessionID, res.UserID, res.Certification, res.ExamType, res.ScaledScore,
		res.Passed, breakdown, res.TotalQuestions, res.CorrectAnswers, res.CompletedAt, res.TimeSpent)
	return err
}

// GetByID retrieves a result owned by the given user.
func (r *ExamResultRepository) GetByID(ctx context.Context, userID string, resultID uuid.UUID) (*model.ExamResult, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+resultColumns+`
		 FROM exam_results
		 WHERE user_id = $1 AND id = $2`, userID, resultID)

	res, err := scanResult(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return res, nil
}

// ListByUser retrieves a user's results, newest first, with pagination.
func (r *ExamResultRepository) ListByUser(ctx context.Context, userID string, page, perPage int) ([]model.ExamResult, int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM exam_results WHERE user_id = $1`, userID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * perPage
	rows, err := r.pool.Query(ctx,
		`SELECT `+resultColumns+`
		 FROM exam_results
		 WHERE user_id = $1
		 ORDER BY completed_at DESC
		 LIMIT $2 OFFSET $3`, userID, perPage, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var results []model.ExamResult
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, 0, err
		}
		results = append(results, *res)
	}
	return results, total, rows.Err()
}

func scanResult(row pgx.Row) (*model.ExamResult, error) {
	var (
		res       model.ExamResult
		breakdown []byte
	)
	err := row.Scan(
		&res.ID, &res.SessionID, &res.UserID, &res.Certification, &res.ExamType,
		&res.ScaledScore, &res.Passed, &breakdown, &res.TotalQuestions,
		&res.CorrectAnswers, &res.CompletedAt, &res.TimeSpent,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(breakdown, &res.DomainBreakdown); err != nil {
		return nil, fmt.Errorf("decode domain_breakdown: %w", err)
	}
	return &res, nil
}
