package service

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/certlab/certprep-backend/internal/event"
	"github.com/certlab/certprep-backend/internal/model"
	"github.com/certlab/certprep-backend/internal/registry"
	"github.com/certlab/certprep-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func newSessionService(t *testing.T, seed int64) (*ExamSessionService, *fakeSessionStore, *fakeQuestionStore, *fakeNotifier) {
	t.Helper()
	sessions := newFakeSessionStore()
	questions := newFakeQuestionStore()
	notifier := &fakeNotifier{}
	svc := NewExamSessionService(
		sessions, questions, registry.New(), notifier, nil,
		rand.New(rand.NewSource(seed)), zerolog.Nop(),
	)
	return svc, sessions, questions, notifier
}

func seedFullBank(questions *fakeQuestionStore, certification string, perDomain int) {
	reg := registry.New()
	tmpl, _ := reg.Template(certification)
	for _, d := range tmpl.Domains {
		seedQuestions(questions, certification, d.Name, model.DifficultyMedium, perDomain)
	}
}

func TestStartMockExamDomainQuotas(t *testing.T) {
	svc, _, questions, notifier := newSessionService(t, 1)
	seedFullBank(questions, "SAA-C03", 30)

	res, err := svc.StartExam(context.Background(), "user-1", &model.StartExamRequest{
		Certification: "SAA-C03",
		ExamType:      model.ExamTypeMock,
	})
	if err != nil {
		t.Fatalf("StartExam: %v", err)
	}

	tmpl, _ := registry.New().Template("SAA-C03")

	// Each domain contributes floor(total * pct / 100) questions.
	wantTotal := 0
	wantPerDomain := make(map[string]int)
	for _, d := range tmpl.Domains {
		quota := tmpl.TotalQuestions * d.Percentage / 100
		wantPerDomain[d.Name] = quota
		wantTotal += quota
	}
	if len(res.Questions) != wantTotal {
		t.Errorf("question count = %d, want %d", len(res.Questions), wantTotal)
	}
	if diff := tmpl.TotalQuestions - wantTotal; diff < 0 || diff > 3 {
		t.Errorf("floor rounding drift = %d, want within 3 of %d", diff, tmpl.TotalQuestions)
	}

	gotPerDomain := make(map[string]int)
	seen := make(map[string]bool)
	for _, q := range res.Questions {
		gotPerDomain[q.Domain]++
		if seen[q.ID.String()] {
			t.Errorf("duplicate question %s", q.ID)
		}
		seen[q.ID.String()] = true
	}
	for domain, want := range wantPerDomain {
		if gotPerDomain[domain] != want {
			t.Errorf("domain %q count = %d, want %d", domain, gotPerDomain[domain], want)
		}
	}

	if res.Session.TimeLimit != tmpl.TimeLimit {
		t.Errorf("time limit = %d, want %d", res.Session.TimeLimit, tmpl.TimeLimit)
	}
	if len(res.Session.Questions) != len(res.Questions) {
		t.Errorf("session question IDs = %d, want %d", len(res.Session.Questions), len(res.Questions))
	}
	if res.Session.Status != model.SessionStatusInProgress {
		t.Errorf("status = %s, want IN_PROGRESS", res.Session.Status)
	}

	if got := notifier.byType(event.TypeExamStarted); len(got) != 1 {
		t.Errorf("exam.started events = %d, want 1", len(got))
	}
}

func TestStartMockExamRedactsAnswerKeys(t *testing.T) {
	svc, _, questions, _ := newSessionService(t, 2)
	seedFullBank(questions, "CLF-C02", 25)

	res, err := svc.StartExam(context.Background(), "user-1", &model.StartExamRequest{
		Certification: "CLF-C02",
		ExamType:      model.ExamTypeMock,
	})
	if err != nil {
		t.Fatalf("StartExam: %v", err)
	}

	for _, q := range res.Questions {
		if len(q.CorrectOptions) != 0 {
			t.Fatalf("question %s leaked correct options", q.ID)
		}
		if q.Explanation != "" {
			t.Fatalf("question %s leaked explanation", q.ID)
		}
	}
}

func TestStartMockExamShortfall(t *testing.T) {
	svc, _, questions, _ := newSessionService(t, 3)

	// Only 5 questions per domain, far fewer than any quota.
	seedFullBank(questions, "SAA-C03", 5)

	res, err := svc.StartExam(context.Background(), "user-1", &model.StartExamRequest{
		Certification: "SAA-C03",
		ExamType:      model.ExamTypeMock,
	})
	if err != nil {
		t.Fatalf("shortfall must not fail the request: %v", err)
	}
	if len(res.Questions) != 20 {
		t.Errorf("question count = %d, want 20 (all available)", len(res.Questions))
	}
}

func TestStartCustomExam(t *testing.T) {
	svc, _, questions, _ := newSessionService(t, 4)
	seedQuestions(questions, "SAA-C03", "Design Secure Architectures", model.DifficultyEasy, 10)
	seedQuestions(questions, "SAA-C03", "Design Resilient Architectures", model.DifficultyHard, 10)

	res, err := svc.StartExam(context.Background(), "user-1", &model.StartExamRequest{
		Certification: "SAA-C03",
		ExamType:      model.ExamTypeCustom,
		CustomOptions: &model.CustomExamOptions{
			Domains:       []string{"Design Secure Architectures", "Design Resilient Architectures"},
			Difficulty:    "MIXED",
			QuestionCount: 15,
		},
	})
	if err != nil {
		t.Fatalf("StartExam: %v", err)
	}

	if len(res.Questions) != 15 {
		t.Errorf("question count = %d, want 15", len(res.Questions))
	}
	// clamp(15*2, 60, 300) = 60
	if res.Session.TimeLimit != 60 {
		t.Errorf("time limit = %d, want 60", res.Session.TimeLimit)
	}
}

func TestStartCustomExamPoolSmallerThanRequest(t *testing.T) {
	svc, _, questions, _ := newSessionService(t, 5)
	seedQuestions(questions, "SAA-C03", "Design Secure Architectures", model.DifficultyMedium, 8)

	res, err := svc.StartExam(context.Background(), "user-1", &model.StartExamRequest{
		Certification: "SAA-C03",
		ExamType:      model.ExamTypeCustom,
		CustomOptions: &model.CustomExamOptions{
			Domains:       []string{"Design Secure Architectures"},
			QuestionCount: 150,
		},
	})
	if err != nil {
		t.Fatalf("StartExam: %v", err)
	}

	if len(res.Questions) != 8 {
		t.Errorf("question count = %d, want 8 (pool size)", len(res.Questions))
	}
	// Limit derives from the requested count: clamp(150*2, 60, 300) = 300.
	if res.Session.TimeLimit != 300 {
		t.Errorf("time limit = %d, want 300", res.Session.TimeLimit)
	}
}

func TestStartCustomExamDifficultyFilter(t *testing.T) {
	svc, _, questions, _ := newSessionService(t, 6)
	seedQuestions(questions, "SAA-C03", "Security", model.DifficultyEasy, 6)
	seedQuestions(questions, "SAA-C03", "Security", model.DifficultyHard, 6)

	res, err := svc.StartExam(context.Background(), "user-1", &model.StartExamRequest{
		Certification: "SAA-C03",
		ExamType:      model.ExamTypeCustom,
		CustomOptions: &model.CustomExamOptions{
			Domains:       []string{"Security"},
			Difficulty:    "EASY",
			QuestionCount: 10,
		},
	})
	if err != nil {
		t.Fatalf("StartExam: %v", err)
	}

	if len(res.Questions) != 6 {
		t.Fatalf("question count = %d, want 6 easy questions", len(res.Questions))
	}
	for _, q := range res.Questions {
		if q.Difficulty != model.DifficultyEasy {
			t.Errorf("question %s difficulty = %s, want EASY", q.ID, q.Difficulty)
		}
	}
}

func TestStartCustomExamWithoutOptions(t *testing.T) {
	svc, sessions, _, notifier := newSessionService(t, 7)

	_, err := svc.StartExam(context.Background(), "user-1", &model.StartExamRequest{
		Certification: "SAA-C03",
		ExamType:      model.ExamTypeCustom,
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
	if sessions.creates != 0 {
		t.Error("no session may be written before validation")
	}
	if len(notifier.events) != 0 {
		t.Error("no event may be emitted on validation failure")
	}
}

func TestStartPracticeExam(t *testing.T) {
	svc, _, _, _ := newSessionService(t, 8)

	res, err := svc.StartExam(context.Background(), "user-1", &model.StartExamRequest{
		Certification: "DVA-C02",
		ExamType:      model.ExamTypePractice,
	})
	if err != nil {
		t.Fatalf("StartExam: %v", err)
	}

	if len(res.Session.Questions) != 0 {
		t.Errorf("practice session pre-assembled %d questions, want 0", len(res.Session.Questions))
	}
	if res.Session.TimeLimit != PracticeTimeLimit {
		t.Errorf("time limit = %d, want %d", res.Session.TimeLimit, PracticeTimeLimit)
	}
}

func TestStartExamUnknownCertification(t *testing.T) {
	svc, _, _, _ := newSessionService(t, 9)

	for _, examType := range []model.ExamType{model.ExamTypeMock, model.ExamTypePractice} {
		_, err := svc.StartExam(context.Background(), "user-1", &model.StartExamRequest{
			Certification: "XXX-000",
			ExamType:      examType,
		})
		if !errors.Is(err, ErrUnknownCertification) {
			t.Errorf("%s: err = %v, want ErrUnknownCertification", examType, err)
		}
	}
}

func TestStartExamDuplicateIdentity(t *testing.T) {
	svc, sessions, questions, _ := newSessionService(t, 10)
	seedFullBank(questions, "SAA-C03", 30)
	sessions.createErr = repository.ErrDuplicate

	_, err := svc.StartExam(context.Background(), "user-1", &model.StartExamRequest{
		Certification: "SAA-C03",
		ExamType:      model.ExamTypeMock,
	})
	if !errors.Is(err, ErrDuplicateSession) {
		t.Fatalf("err = %v, want ErrDuplicateSession", err)
	}
}

func TestSeededShuffleIsDeterministic(t *testing.T) {
	// Question IDs differ across runs (fresh UUIDs), so compare positions of
	// the drawn texts instead.
	texts := func(seed int64) []string {
		svc, _, questions, _ := newSessionService(t, seed)
		seedFullBank(questions, "SAA-C03", 30)
		res, _ := svc.StartExam(context.Background(), "user-1", &model.StartExamRequest{
			Certification: "SAA-C03",
			ExamType:      model.ExamTypeMock,
		})
		out := make([]string, len(res.Questions))
		for i, q := range res.Questions {
			out[i] = q.Text
		}
		return out
	}

	a, b := texts(42), texts(42)
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("position %d differs: %q vs %q", i, a[i], b[i])
		}
	}
}

func startedSession(t *testing.T, svc *ExamSessionService, questions *fakeQuestionStore) *model.ExamSession {
	t.Helper()
	seedFullBank(questions, "SAA-C03", 30)
	res, err := svc.StartExam(context.Background(), "user-1", &model.StartExamRequest{
		Certification: "SAA-C03",
		ExamType:      model.ExamTypeMock,
	})
	if err != nil {
		t.Fatalf("StartExam: %v", err)
	}
	return res.Session
}

func TestSaveProgressReplacesWholesale(t *testing.T) {
	svc, _, questions, _ := newSessionService(t, 11)
	session := startedSession(t, svc, questions)

	first := &model.SaveProgressRequest{
		Answers: map[string]model.Answer{
			session.Questions[0]: {QuestionID: session.Questions[0], SelectedOptions: []string{"A"}, TimeSpent: 30},
			session.Questions[1]: {QuestionID: session.Questions[1], SelectedOptions: []string{"B"}, TimeSpent: 45},
		},
		MarkedForReview: []string{session.Questions[1]},
	}
	if _, err := svc.SaveProgress(context.Background(), "user-1", session.ID, first); err != nil {
		t.Fatalf("SaveProgress: %v", err)
	}

	second := &model.SaveProgressRequest{
		Answers: map[string]model.Answer{
			session.Questions[2]: {QuestionID: session.Questions[2], SelectedOptions: []string{"C"}, TimeSpent: 10},
		},
	}
	updated, err := svc.SaveProgress(context.Background(), "user-1", session.ID, second)
	if err != nil {
		t.Fatalf("SaveProgress: %v", err)
	}

	// Last write wins: the first save's answers are gone, not merged. This
	// is the documented multi-device limitation.
	if len(updated.Answers) != 1 {
		t.Errorf("answers = %d entries, want 1 (wholesale replacement)", len(updated.Answers))
	}
	if _, ok := updated.Answers[session.Questions[0]]; ok {
		t.Error("first save's answer survived a wholesale replacement")
	}
	if len(updated.MarkedForReview) != 0 {
		t.Errorf("marked_for_review = %v, want empty", updated.MarkedForReview)
	}
}

func TestSaveProgressNotFound(t *testing.T) {
	svc, _, _, _ := newSessionService(t, 12)

	_, err := svc.SaveProgress(context.Background(), "user-1", uuid.New(), &model.SaveProgressRequest{})
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestSaveProgressOnClosedSession(t *testing.T) {
	svc, sessions, questions, _ := newSessionService(t, 13)
	session := startedSession(t, svc, questions)

	if err := sessions.Transition(context.Background(), "user-1", session.ID, model.SessionStatusCompleted, time.Now()); err != nil {
		t.Fatalf("transition: %v", err)
	}

	_, err := svc.SaveProgress(context.Background(), "user-1", session.ID, &model.SaveProgressRequest{})
	if !errors.Is(err, ErrSessionNotActive) {
		t.Fatalf("err = %v, want ErrSessionNotActive", err)
	}
}

func TestSaveProgressPastDeadlineExpiresSession(t *testing.T) {
	svc, sessions, questions, notifier := newSessionService(t, 14)
	session := startedSession(t, svc, questions)

	// One millisecond past the deadline.
	svc.now = func() time.Time {
		return session.Deadline().Add(time.Millisecond)
	}

	req := &model.SaveProgressRequest{
		Answers: map[string]model.Answer{
			session.Questions[0]: {QuestionID: session.Questions[0], SelectedOptions: []string{"B"}},
		},
	}
	_, err := svc.SaveProgress(context.Background(), "user-1", session.ID, req)
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("err = %v, want ErrSessionExpired", err)
	}

	stored, err := sessions.Get(context.Background(), "user-1", session.ID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if stored.Status != model.SessionStatusExpired {
		t.Errorf("status = %s, want EXPIRED", stored.Status)
	}
	if stored.EndTime == nil {
		t.Error("end_time not set on expiry")
	}
	if len(stored.Answers) != 0 {
		t.Error("expired save must not apply the submitted answers")
	}

	expired := notifier.byType(event.TypeExamExpired)
	if len(expired) != 1 {
		t.Fatalf("exam.expired events = %d, want 1", len(expired))
	}
	payload, ok := expired[0].payload.(event.ExamExpired)
	if !ok {
		t.Fatalf("payload type %T", expired[0].payload)
	}
	if payload.Reason != event.ReasonTimeLimitExceeded {
		t.Errorf("reason = %q, want %q", payload.Reason, event.ReasonTimeLimitExceeded)
	}
}
