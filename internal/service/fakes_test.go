package service

import (
	"context"
	"fmt"
	"time"

	"github.com/certlab/certprep-backend/internal/model"
	"github.com/certlab/certprep-backend/internal/repository"
	"github.com/google/uuid"
)

// In-memory store fakes backing the service tests. They mimic the repository
// contracts, including the sentinel errors.

type fakeSessionStore struct {
	sessions  map[string]*model.ExamSession
	createErr error
	creates   int
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]*model.ExamSession)}
}

func sessionKey(userID string, sessionID uuid.UUID) string {
	return userID + "/" + sessionID.String()
}

func (f *fakeSessionStore) Get(_ context.Context, userID string, sessionID uuid.UUID) (*model.ExamSession, error) {
	s, ok := f.sessions[sessionKey(userID, sessionID)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSessionStore) Create(_ context.Context, s *model.ExamSession) error {
	if f.createErr != nil {
		return f.createErr
	}
	key := sessionKey(s.UserID, s.ID)
	if _, exists := f.sessions[key]; exists {
		return repository.ErrDuplicate
	}
	cp := *s
	f.sessions[key] = &cp
	f.creates++
	return nil
}

func (f *fakeSessionStore) UpdateProgress(
	_ context.Context,
	userID string,
	sessionID uuid.UUID,
	answers map[string]model.Answer,
	markedForReview []string,
	updatedAt time.Time,
) (*model.ExamSession, error) {
	s, ok := f.sessions[sessionKey(userID, sessionID)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	s.Answers = answers
	s.MarkedForReview = markedForReview
	s.UpdatedAt = updatedAt
	cp := *s
	return &cp, nil
}

func (f *fakeSessionStore) Transition(
	_ context.Context,
	userID string,
	sessionID uuid.UUID,
	status model.SessionStatus,
	endTime time.Time,
) error {
	s, ok := f.sessions[sessionKey(userID, sessionID)]
	if !ok || s.Status != model.SessionStatusInProgress {
		return repository.ErrNotFound
	}
	s.Status = status
	s.EndTime = &endTime
	s.UpdatedAt = endTime
	return nil
}

type fakeQuestionStore struct {
	// byDomain is keyed "certification/domain".
	byDomain map[string][]model.Question
	listErr  error
}

func newFakeQuestionStore() *fakeQuestionStore {
	return &fakeQuestionStore{byDomain: make(map[string][]model.Question)}
}

func (f *fakeQuestionStore) add(q model.Question) {
	key := q.Certification + "/" + q.Domain
	f.byDomain[key] = append(f.byDomain[key], q)
}

func (f *fakeQuestionStore) ListByCertificationDomain(
	_ context.Context,
	certification, domain string,
	difficulty model.Difficulty,
) ([]model.Question, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []model.Question
	for _, q := range f.byDomain[certification+"/"+domain] {
		if difficulty != "" && difficulty != model.DifficultyMixed && q.Difficulty != difficulty {
			continue
		}
		out = append(out, q)
	}
	return out, nil
}

func (f *fakeQuestionStore) GetByIDs(_ context.Context, ids []string) ([]model.Question, error) {
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	var out []model.Question
	for _, qs := range f.byDomain {
		for _, q := range qs {
			if wanted[q.ID.String()] {
				out = append(out, q)
			}
		}
	}
	return out, nil
}

type fakeResultStore struct {
	results   []*model.ExamResult
	createErr error
}

func (f *fakeResultStore) Create(_ context.Context, res *model.ExamResult) error {
	if f.createErr != nil {
		return f.createErr
	}
	cp := *res
	f.results = append(f.results, &cp)
	return nil
}

func (f *fakeResultStore) GetByID(_ context.Context, userID string, resultID uuid.UUID) (*model.ExamResult, error) {
	for _, r := range f.results {
		if r.UserID == userID && r.ID == resultID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeResultStore) ListByUser(_ context.Context, userID string, page, perPage int) ([]model.ExamResult, int64, error) {
	var out []model.ExamResult
	for _, r := range f.results {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	return out, int64(len(out)), nil
}

type publishedEvent struct {
	eventType string
	payload   any
}

type fakeNotifier struct {
	events []publishedEvent
}

func (f *fakeNotifier) Publish(_ context.Context, eventType string, payload any) {
	f.events = append(f.events, publishedEvent{eventType: eventType, payload: payload})
}

func (f *fakeNotifier) byType(eventType string) []publishedEvent {
	var out []publishedEvent
	for _, e := range f.events {
		if e.eventType == eventType {
			out = append(out, e)
		}
	}
	return out
}

// seedQuestions adds n questions for a certification/domain and returns them.
func seedQuestions(store *fakeQuestionStore, certification, domain string, difficulty model.Difficulty, n int) []model.Question {
	out := make([]model.Question, 0, n)
	for i := 0; i < n; i++ {
		q := model.Question{
			ID:            uuid.New(),
			Certification: certification,
			Domain:        domain,
			Difficulty:    difficulty,
			Text:          fmt.Sprintf("%s question %d", domain, i),
			Type:          model.QuestionTypeSingleAnswer,
			Options: []model.Option{
				{ID: "A", Text: "Option A"},
				{ID: "B", Text: "Option B"},
				{ID: "C", Text: "Option C"},
				{ID: "D", Text: "Option D"},
			},
			CorrectOptions: []string{"B"},
			Explanation:    "B is correct.",
		}
		store.add(q)
		out = append(out, q)
	}
	return out
}
