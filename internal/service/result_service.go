package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/certlab/certprep-backend/internal/model"
	"github.com/certlab/certprep-backend/internal/repository"
	"github.com/google/uuid"
)

// ResultReader is the result read contract.
// *repository.ExamResultRepository satisfies it.
type ResultReader interface {
	GetByID(ctx context.Context, userID string, resultID uuid.UUID) (*model.ExamResult, error)
	ListByUser(ctx context.Context, userID string, page, perPage int) ([]model.ExamResult, int64, error)
}

// ResultService serves result history reads.
type ResultService struct {
	results ResultReader
}

// NewResultService creates a new ResultService.
func NewResultService(results ResultReader) *ResultService {
	return &ResultService{results: results}
}

// GetResult retrieves one result owned by the user.
func (s *ResultService) GetResult(ctx context.Context, userID string, resultID uuid.UUID) (*model.ExamResult, error) {
	res, err := s.results.GetByID(ctx, userID, resultID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrResultNotFound, resultID)
		}
		return nil, fmt.Errorf("get result: %w", err)
	}
	return res, nil
}

// ListResults retrieves the user's result history, newest first.
func (s *ResultService) ListResults(ctx context.Context, userID string, page, perPage int) ([]model.ExamResult, int64, error) {
	return s.results.ListByUser(ctx, userID, page, perPage)
}
