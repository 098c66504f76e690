package model

import (
	"time"

	"github.com/google/uuid"
)

// Difficulty enumerates question difficulty levels.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
	// DifficultyMixed is a filter sentinel, never stored on a question.
	DifficultyMixed Difficulty = "MIXED"
)

// QuestionType distinguishes single-answer from multi-answer questions.
type QuestionType string

const (
	QuestionTypeSingleAnswer QuestionType = "SINGLE_ANSWER"
	QuestionTypeMultiAnswer  QuestionType = "MULTI_ANSWER"
)

// Option is one selectable choice on a question.
type Option struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Question is a single exam question. Read-only during session and scoring
// flows; authoring happens through the seeding tooling.
type Question struct {
	ID             uuid.UUID    `json:"id"`
	Certification  string       `json:"certification"`
	Domain         string       `json:"domain"`
	Difficulty     Difficulty   `json:"difficulty"`
	Text           string       `json:"text"`
	Type           QuestionType `json:"type"`
	Options        []Option     `json:"options"`
	CorrectOptions []string     `json:"correct_options,omitempty"`
	Explanation    string       `json:"explanation,omitempty"`
	References     []string     `json:"references,omitempty"`
	Tags           []string     `json:"tags,omitempty"`
	CreatedBy      string       `json:"created_by,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// Redacted returns a copy safe to hand to a test-taker before submission:
// the correct-answer set and the explanation are stripped.
func (q Question) Redacted() Question {
	q.CorrectOptions = nil
	q.Explanation = ""
	return q
}
