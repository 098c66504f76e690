package model

import (
	"time"

	"github.com/google/uuid"
)

// ExamType enumerates the supported exam modes.
type ExamType string

const (
	ExamTypeMock     ExamType = "MOCK"
	ExamTypeCustom   ExamType = "CUSTOM"
	ExamTypePractice ExamType = "PRACTICE"
)

// SessionStatus enumerates exam session states. The machine is one-way:
// IN_PROGRESS transitions to COMPLETED or EXPIRED and is terminal after that.
type SessionStatus string

const (
	SessionStatusInProgress SessionStatus = "IN_PROGRESS"
	SessionStatusCompleted  SessionStatus = "COMPLETED"
	SessionStatusExpired    SessionStatus = "EXPIRED"
)

// Answer is a test-taker's submitted answer for one question. Correctness is
// never stored here; it is computed at scoring time.
type Answer struct {
	QuestionID      string   `json:"question_id" binding:"required"`
	SelectedOptions []string `json:"selected_options"`
	TimeSpent       int      `json:"time_spent" binding:"min=0"` // seconds
}

// ExamSession represents one user's exam attempt.
type ExamSession struct {
	ID              uuid.UUID         `json:"id"`
	UserID          string            `json:"user_id"`
	ExamType        ExamType          `json:"exam_type"`
	Certification   string            `json:"certification"`
	Questions       []string          `json:"questions"` // ordered question IDs, fixed at creation
	Answers         map[string]Answer `json:"answers"`
	MarkedForReview []string          `json:"marked_for_review"`
	StartTime       time.Time         `json:"start_time"`
	TimeLimit       int               `json:"time_limit"` // minutes
	Status          SessionStatus     `json:"status"`
	EndTime         *time.Time        `json:"end_time,omitempty"`
	UpdatedAt       time.Time         `json:"updated_at"`
	// ExpiresAt is the storage-level reclamation hint (deadline + buffer).
	// The application never reads it back.
	ExpiresAt time.Time `json:"-"`
}

// Deadline returns the wall-clock instant after which the session is expired.
func (s *ExamSession) Deadline() time.Time {
	return s.StartTime.Add(time.Duration(s.TimeLimit) * time.Minute)
}

// CustomExamOptions configures a CUSTOM exam. Mandatory for that type.
type CustomExamOptions struct {
	Domains       []string `json:"domains" binding:"required,min=1,dive,min=1"`
	Difficulty    string   `json:"difficulty" binding:"omitempty,oneof=EASY MEDIUM HARD MIXED"`
	QuestionCount int      `json:"question_count" binding:"required,min=1,max=200"`
}

// StartExamRequest is the payload for starting an exam session.
type StartExamRequest struct {
	Certification string             `json:"certification" binding:"required,min=2,max=32"`
	ExamType      ExamType           `json:"exam_type" binding:"required,oneof=MOCK CUSTOM PRACTICE"`
	CustomOptions *CustomExamOptions `json:"custom_options,omitempty"`
}

// SaveProgressRequest is the payload for a periodic progress save. Both
// collections replace the stored values wholesale (last write wins).
type SaveProgressRequest struct {
	Answers         map[string]Answer `json:"answers"`
	MarkedForReview []string          `json:"marked_for_review"`
}
