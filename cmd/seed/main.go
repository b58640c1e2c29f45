// Command seed fills the database with generated users, tags, questions,
// answers, and votes. Votes go through the vote engine so every rating and
// profile invariant holds on the seeded data.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"

	"github.com/brianvoe/gofakeit/v7"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/emilythestrangee/qa-forum/backend/internal/apperrors"
	"github.com/emilythestrangee/qa-forum/backend/internal/config"
	"github.com/emilythestrangee/qa-forum/backend/internal/database"
	"github.com/emilythestrangee/qa-forum/backend/internal/logging"
	"github.com/emilythestrangee/qa-forum/backend/internal/models"
	"github.com/emilythestrangee/qa-forum/backend/internal/voting"
)

func main() {
	ratio := flag.Int("ratio", 10, "fill ratio: users=N, tags=N, questions=10N, answers=100N, votes=200N")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logging.Init(cfg.LogLevel, cfg.LogFormat)

	db, err := database.New(cfg)
	if err != nil {
		slog.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := seed(db.GetDB(), *ratio); err != nil {
		slog.Error("seeding failed", "error", err)
		os.Exit(1)
	}
}

func seed(db *gorm.DB, ratio int) error {
	ctx := context.Background()
	engine := voting.NewEngine(db)

	// bcrypt.MinCost keeps bulk user creation fast; seeded accounts are
	// throwaways.
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		return err
	}

	slog.Info("creating users", "count", ratio)
	users := make([]models.User, 0, ratio)
	for i := 0; i < ratio; i++ {
		user := models.User{
			Username: fmt.Sprintf("%s%d", gofakeit.Username(), i),
			Email:    fmt.Sprintf("%d.%s", i, gofakeit.Email()),
			Password: string(hashed),
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
			return tx.Create(&models.Profile{UserID: user.ID, Nickname: user.Username}).Error
		})
		if err != nil {
			return fmt.Errorf("creating user %d: %w", i, err)
		}
		users = append(users, user)
	}

	slog.Info("creating tags", "count", ratio)
	tags := make([]models.Tag, 0, ratio)
	for i := 0; i < ratio; i++ {
		tag := models.Tag{Name: fmt.Sprintf("%s-%d", gofakeit.Word(), i)}
		if err := db.Create(&tag).Error; err != nil {
			return fmt.Errorf("creating tag %d: %w", i, err)
		}
		tags = append(tags, tag)
	}

	slog.Info("creating questions", "count", ratio*10)
	questions := make([]models.Question, 0, ratio*10)
	for i := 0; i < ratio*10; i++ {
		question := models.Question{
			Title:    gofakeit.Question(),
			Body:     gofakeit.Paragraph(2, 4, 12, " "),
			AuthorID: users[rand.Intn(len(users))].ID,
		}
		for _, j := range rand.Perm(len(tags))[:min(3, len(tags))] {
			question.Tags = append(question.Tags, tags[j])
		}
		if err := db.Create(&question).Error; err != nil {
			return fmt.Errorf("creating question %d: %w", i, err)
		}
		questions = append(questions, question)
	}

	slog.Info("creating answers", "count", ratio*100)
	answers := make([]models.Answer, 0, ratio*100)
	for i := 0; i < ratio*100; i++ {
		author := users[rand.Intn(len(users))]
		answer := models.Answer{
			Body:       gofakeit.Paragraph(1, 3, 12, " "),
			AuthorID:   author.ID,
			QuestionID: questions[rand.Intn(len(questions))].ID,
		}
		if err := db.Create(&answer).Error; err != nil {
			return fmt.Errorf("creating answer %d: %w", i, err)
		}
		answers = append(answers, answer)
	}

	slog.Info("casting votes", "count", ratio*200)
	for i := 0; i < ratio*200; i++ {
		voter := users[rand.Intn(len(users))]
		value := 1
		if rand.Intn(4) == 0 {
			value = -1
		}

		if i%2 == 0 {
			_, err = engine.CastQuestionVote(ctx, voter.ID, questions[rand.Intn(len(questions))].ID, value)
		} else {
			_, err = engine.CastAnswerVote(ctx, voter.ID, answers[rand.Intn(len(answers))].ID, value)
		}
		// Random pairings hit the occasional self-vote; skip those.
		if err != nil && !apperrors.IsType(err, apperrors.TypeAuthorization) {
			return fmt.Errorf("casting vote %d: %w", i, err)
		}
	}

	// Votes only refresh voted-on authors; one full pass covers the rest.
	slog.Info("reconciling profiles")
	if err := engine.Aggregator().ReconcileAll(ctx); err != nil {
		return err
	}

	slog.Info("seeding complete",
		"users", len(users), "tags", len(tags),
		"questions", len(questions), "answers", len(answers))
	return nil
}
