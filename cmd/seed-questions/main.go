package main

import (
	"context"
	"fmt"
	"time"

	"github.com/certlab/certprep-backend/internal/config"
	"github.com/certlab/certprep-backend/internal/database"
	"github.com/certlab/certprep-backend/internal/logger"
	"github.com/certlab/certprep-backend/internal/model"
	"github.com/certlab/certprep-backend/internal/registry"
	"github.com/certlab/certprep-backend/internal/repository"
	"github.com/google/uuid"
)

// perDomain is how many questions are generated for each certification
// domain and difficulty tier. Enough for a full mock draw on every
// certification with room left over.
const perDomain = 15

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	questionRepo := repository.NewQuestionRepository(pool)
	reg := registry.New()

	difficulties := []model.Difficulty{
		model.DifficultyEasy,
		model.DifficultyMedium,
		model.DifficultyHard,
	}

	fmt.Println("=== Seeding Question Bank ===")

	total := 0
	failed := 0
	for _, tmpl := range reg.Certifications() {
		for _, spec := range tmpl.Domains {
			for _, diff := range difficulties {
				for i := 0; i < perDomain; i++ {
					q := buildQuestion(tmpl.Certification, spec.Name, diff, i)
					if err := questionRepo.Create(ctx, q); err != nil {
						fmt.Printf("Error creating question for %s/%s: %v\n", tmpl.Certification, spec.Name, err)
						failed++
						continue
					}
					total++
				}
			}
		}
		fmt.Printf("Seeded %s\n", tmpl.Certification)
	}

	fmt.Printf("\nSeed completed! Added %d questions (%d failed).\n", total, failed)
}

// buildQuestion generates a deterministic placeholder question. Every third
// question is multi-answer with two correct options.
func buildQuestion(certification, domain string, diff model.Difficulty, n int) *model.Question {
	now := time.Now().UTC()

	q := &model.Question{
		ID:            uuid.New(),
		Certification: certification,
		Domain:        domain,
		Difficulty:    diff,
		Text: fmt.Sprintf("[%s/%s #%d] Which approach best satisfies the stated requirement?",
			domain, diff, n+1),
		Type: model.QuestionTypeSingleAnswer,
		Options: []model.Option{
			{ID: "A", Text: "Provision a dedicated resource for each workload"},
			{ID: "B", Text: "Use the managed service with defaults"},
			{ID: "C", Text: "Build a custom solution on virtual machines"},
			{ID: "D", Text: "Defer the decision until load testing"},
		},
		CorrectOptions: []string{"B"},
		Explanation:    "The managed option meets the requirement with the least operational overhead.",
		References:     []string{"https://docs.aws.amazon.com/"},
		Tags:           []string{domain, string(diff)},
		CreatedBy:      "seed",
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if n%3 == 2 {
		q.Type = model.QuestionTypeMultiAnswer
		q.CorrectOptions = []string{"B", "D"}
	}

	return q
}
