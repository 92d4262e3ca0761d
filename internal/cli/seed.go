package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"syllabus-service/internal/config"
	"syllabus-service/internal/infra/memory"
)

// NewSeedCmd loads a subject catalogue into the configured backend. Without
// a fixture file it seeds the built-in sample catalogue.
func NewSeedCmd(configPath *string) *cobra.Command {
	var fixturePath string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed the content database with a subject catalogue",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), *configPath, fixturePath)
		},
	}
	cmd.Flags().StringVar(&fixturePath, "file", "", "path to a JSON subject fixture")
	return cmd
}

func runSeed(ctx context.Context, configPath, fixturePath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Mongo.URI == "" && cfg.Postgres.URL == "" {
		return fmt.Errorf("no durable backend configured; nothing to seed")
	}
	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	subjects := memory.SampleSubjects()
	if fixturePath != "" {
		data, err := os.ReadFile(fixturePath)
		if err != nil {
			return err
		}
		subjects = nil
		if err := json.Unmarshal(data, &subjects); err != nil {
			return fmt.Errorf("invalid fixture: %w", err)
		}
	}
	for _, subject := range subjects {
		for _, quiz := range subject.Quizzes {
			for i, q := range quiz.Questions {
				if err := q.Validate(); err != nil {
					return fmt.Errorf("subject %q quiz %q question %d: %w", subject.Name, quiz.Title, i+1, err)
				}
			}
		}
	}

	content, _, _, cleanup, err := buildStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	for _, subject := range subjects {
		created, err := content.CreateSubject(ctx, subject.Name, subject.Order)
		if err != nil {
			return err
		}
		for _, quiz := range subject.Quizzes {
			createdQuiz, err := content.CreateQuiz(ctx, created.ID, quiz.Title)
			if err != nil {
				return err
			}
			if len(quiz.Questions) == 0 {
				continue
			}
			if err := content.ReplaceQuizQuestions(ctx, created.ID, createdQuiz.ID, quiz.Questions); err != nil {
				return err
			}
		}
		log.Printf("seeded subject %q with %d quizzes", subject.Name, len(subject.Quizzes))
	}
	return nil
}
