package model

import (
	"time"

	"github.com/google/uuid"
)

// DomainScore is per-domain correctness statistics attached to a result.
type DomainScore struct {
	Domain         string `json:"domain"`
	TotalQuestions int    `json:"total_questions"`
	CorrectAnswers int    `json:"correct_answers"`
	Score          int    `json:"score"`
	Percentage     int    `json:"percentage"`
}

// ExamResult is the immutable outcome of a submitted exam session.
// Created exactly once per successful submission, never updated.
type ExamResult struct {
	ID              uuid.UUID     `json:"id"`
	SessionID       uuid.UUID     `json:"session_id"`
	UserID          string        `json:"user_id"`
	Certification   string        `json:"certification"`
	ExamType        ExamType      `json:"exam_type"`
	ScaledScore     int           `json:"scaled_score"`
	Passed          bool          `json:"passed"`
	DomainBreakdown []DomainScore `json:"domain_breakdown"`
	TotalQuestions  int           `json:"total_questions"`
	CorrectAnswers  int           `json:"correct_answers"`
	CompletedAt     time.Time     `json:"completed_at"`
	TimeSpent       int           `json:"time_spent"` // minutes
}
