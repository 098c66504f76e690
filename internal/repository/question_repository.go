package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/certlab/certprep-backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BatchGetLimit caps how many question IDs a single batch read may carry.
// Larger ID lists are fetched across multiple round trips.
const BatchGetLimit = 100

const questionColumns = `id, certification, domain, difficulty, question_text, question_type,
	options, correct_options, explanation, reference_links, tags, created_by, created_at, updated_at`

// QuestionRepository handles question data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// ListByCertificationDomain retrieves all questions for a certification and
// domain. An empty or MIXED difficulty applies no difficulty filter.
func (r *QuestionRepository) ListByCertificationDomain(
	ctx context.Context,
	certification, domain string,
	difficulty model.Difficulty,
) ([]model.Question, error) {
	query := `SELECT ` + questionColumns + `
		 FROM questions
		 WHERE certification = $1 AND domain = $2`
	args := []any{certification, domain}

	if difficulty != "" && difficulty != model.DifficultyMixed {
		args = append(args, difficulty)
		query += fmt.Sprintf(" AND difficulty = $%d", len(args))
	}
	query += " ORDER BY created_at"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanQuestions(rows)
}

// GetByIDs retrieves full question records (answer keys included) for the
// given IDs. Reads are chunked at BatchGetLimit and accumulated; a failed
// chunk fails the whole call. Missing IDs are simply absent from the result.
func (r *QuestionRepository) GetByIDs(ctx context.Context, ids []string) ([]model.Question, error) {
	questions := make([]model.Question, 0, len(ids))

	for start := 0; start < len(ids); start += BatchGetLimit {
		end := start + BatchGetLimit
		if end > len(ids) {
			end = len(ids)
		}

		rows, err := r.pool.Query(ctx,
			`SELECT `+questionColumns+`
			 FROM questions
			 WHERE id = ANY($1)`, ids[start:end])
		if err != nil {
			return nil, fmt.Errorf("batch get questions: %w", err)
		}

		batch, err := scanQuestions(rows)
		rows.Close()
		if err != nil {
			return nil, err
		}
		questions = append(questions, batch...)
	}

	return questions, nil
}

func scanQuestions(rows pgx.Rows) ([]model.Question, error) {
	var questions []model.Question
	for rows.Next() {
		var (
			q       model.Question
			options []byte
			correct []byte
			refs    []byte
			tags    []byte
		)
		if err := rows.Scan(
			&q.ID, &q.Certification, &q.Domain, &q.Difficulty, &q.Text, &q.Type,
			&options, &correct, &q.Explanation, &refs, &tags, &q.CreatedBy,
			&q.CreatedAt, &q.UpdatedAt,
		); err != nil {
			return nil, err
		}

		if err := json.Unmarshal(options, &q.Options); err != nil {
			return nil, fmt.Errorf("decode options for %s: %w", q.ID, err)
		}
		if err := json.Unmarshal(correct, &q.CorrectOptions); err != nil {
			return nil, fmt.Errorf("decode correct_options for %s: %w", q.ID, err)
		}
		if err := json.Unmarshal(refs, &q.References); err != nil {
			return nil, fmt.Errorf("decode reference_links for %s: %w", q.ID, err)
		}
		if err := json.Unmarshal(tags, &q.Tags); err != nil {
			return nil, fmt.Errorf("decode tags for %s: %w", q.ID, err)
		}

		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// Create inserts a new question. Used by the seeding tooling.
func (r *QuestionRepository) Create(ctx context.Context, q *model.Question) error {
	options, err := json.Marshal(q.Options)
	if err != nil {
		return fmt.Errorf("encode options: %w", err)
	}
	correct, err := json.Marshal(q.CorrectOptions)
	if err != nil {
		return fmt.Errorf("encode correct_options: %w", err)
	}
	refs, err := json.Marshal(q.References)
	if err != nil {
		return fmt.Errorf("encode reference_links: %w", err)
	}
	tags, err := json.Marshal(q.Tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}

	return r.pool.QueryRow(ctx,
		`INSERT INTO questions
		   (id, certification, domain, difficulty, question_text, question_type,
		    options, correct_options, explanation, reference_links, tags, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING created_at, updated_at`,
		q.ID, q.Certification, q.Domain, q.Difficulty, q.Text, q.Type,
		options, correct, q.Explanation, refs, tags, q.CreatedBy,
	).Scan(&q.CreatedAt, &q.UpdatedAt)
}
