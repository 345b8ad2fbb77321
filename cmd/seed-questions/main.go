package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/prepworks/prepworks-backend/internal/config"
	"github.com/prepworks/prepworks-backend/internal/database"
	"github.com/prepworks/prepworks-backend/internal/logger"
	"github.com/prepworks/prepworks-backend/internal/model"
	"github.com/prepworks/prepworks-backend/internal/repository"
)

// seedFile is the JSON shape consumed by this tool: one entry per subject
// and exam paper, carrying raw questions exactly as the engine expects them.
type seedFile []struct {
	Subject    string              `json:"subject"`
	Code       string              `json:"code"`
	ExamType   model.ExamType      `json:"exam_type"`
	Year       int                 `json:"year,omitempty"`
	Difficulty string              `json:"difficulty,omitempty"`
	Questions  []model.RawQuestion `json:"questions"`
}

func main() {
	var path string
	flag.StringVar(&path, "file", "questions.json", "Path to the seed JSON file")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	subjectRepo := repository.NewSubjectRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)

	raw, err := os.ReadFile(path)
	if err != nil {
		log.Fatal().Err(err).Str("file", path).Msg("Failed to read seed file")
	}

	var seed seedFile
	if err := json.Unmarshal(raw, &seed); err != nil {
		log.Fatal().Err(err).Msg("Failed to parse seed file")
	}

	total := 0
	for _, paper := range seed {
		subjectID, err := subjectRepo.Upsert(ctx, paper.Subject, paper.Code)
		if err != nil {
			log.Fatal().Err(err).Str("subject", paper.Subject).Msg("Failed to upsert subject")
		}

		for _, q := range paper.Questions {
			if err := questionRepo.Insert(ctx, subjectID, paper.ExamType, paper.Year, paper.Difficulty, q); err != nil {
				log.Fatal().Err(err).
					Str("subject", paper.Subject).
					Int("question_id", q.ID).
					Msg("Failed to insert question")
			}
			total++
		}

		log.Info().
			Str("subject", paper.Subject).
			Str("exam_type", string(paper.ExamType)).
			Int("count", len(paper.Questions)).
			Msg("Paper seeded")
	}

	fmt.Printf("Seeded %d questions from %s\n", total, path)
}
