package voting

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/emilythestrangee/qa-forum/backend/internal/apperrors"
	"github.com/emilythestrangee/qa-forum/backend/internal/models"
)

// Result is the outcome of a cast-vote call: the caller's vote after the
// toggle (-1, 0 or 1) and the item's freshly recomputed rating.
type Result struct {
	UserVote int `json:"user_vote"`
	Rating   int `json:"rating"`
}

// Engine applies vote mutations with toggle semantics. Each cast runs the
// existing-vote check, the mutation, and the item rating recomputation as one
// transaction; the unique (user, item) index turns a lost race into a
// retryable conflict.
type Engine struct {
	db      *gorm.DB
	agg     *Aggregator
	trigger *Trigger
}

func NewEngine(db *gorm.DB) *Engine {
	agg := NewAggregator(db)
	return &Engine{db: db, agg: agg, trigger: NewTrigger(agg)}
}

func (e *Engine) Aggregator() *Aggregator { return e.agg }
func (e *Engine) Trigger() *Trigger       { return e.trigger }

// CastQuestionVote applies the toggle state machine to the caller's vote on
// a question: no vote creates one, the same value removes it, the opposite
// value flips it.
func (e *Engine) CastQuestionVote(ctx context.Context, userID, questionID, value int) (*Result, error) {
	if value != 1 && value != -1 {
		return nil, apperrors.Validation("value must be 1 or -1")
	}

	var res Result
	var authorID int

	attempt := func() error {
		return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			// Lock the question row so concurrent casts on the same item
			// serialize and never write a stale sum.
			var question models.Question
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&question, questionID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperrors.NotFound("question not found")
				}
				return apperrors.Internal("loading question", err)
			}
			if question.AuthorID == userID {
				return apperrors.Authorization("you cannot vote for your own question")
			}
			authorID = question.AuthorID

			var vote models.QuestionVote
			err := tx.Where("user_id = ? AND question_id = ?", userID, questionID).First(&vote).Error
			switch {
			case err == nil && vote.Value == value:
				// Same vote again removes it (toggle off).
				if err := tx.Delete(&vote).Error; err != nil {
					return apperrors.Internal("removing vote", err)
				}
				res.UserVote = 0
			case err == nil:
				vote.Value = value
				if err := tx.Save(&vote).Error; err != nil {
					return apperrors.Internal("updating vote", err)
				}
				res.UserVote = value
			case errors.Is(err, gorm.ErrRecordNotFound):
				vote = models.QuestionVote{UserID: userID, QuestionID: questionID, Value: value}
				if err := tx.Create(&vote).Error; err != nil {
					// Left unwrapped so a unique violation stays detectable.
					return err
				}
				res.UserVote = value
			default:
				return apperrors.Internal("loading vote", err)
			}

			rating, err := e.agg.RecomputeQuestionRating(tx, questionID)
			if err != nil {
				return err
			}
			res.Rating = rating
			return nil
		})
	}

	if err := e.castWithRetry(attempt); err != nil {
		return nil, err
	}

	e.trigger.VoteMutated(ctx, authorID)
	return &res, nil
}

// CastAnswerVote is the answer counterpart of CastQuestionVote.
func (e *Engine) CastAnswerVote(ctx context.Context, userID, answerID, value int) (*Result, error) {
	if value != 1 && value != -1 {
		return nil, apperrors.Validation("value must be 1 or -1")
	}

	var res Result
	var authorID int

	attempt := func() error {
		return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var answer models.Answer
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&answer, answerID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperrors.NotFound("answer not found")
				}
				return apperrors.Internal("loading answer", err)
			}
			if answer.AuthorID == userID {
				return apperrors.Authorization("you cannot vote for your own answer")
			}
			authorID = answer.AuthorID

			var vote models.AnswerVote
			err := tx.Where("user_id = ? AND answer_id = ?", userID, answerID).First(&vote).Error
			switch {
			case err == nil && vote.Value == value:
				if err := tx.Delete(&vote).Error; err != nil {
					return apperrors.Internal("removing vote", err)
				}
				res.UserVote = 0
			case err == nil:
				vote.Value = value
				if err := tx.Save(&vote).Error; err != nil {
					return apperrors.Internal("updating vote", err)
				}
				res.UserVote = value
			case errors.Is(err, gorm.ErrRecordNotFound):
				vote = models.AnswerVote{UserID: userID, AnswerID: answerID, Value: value}
				if err := tx.Create(&vote).Error; err != nil {
					return err
				}
				res.UserVote = value
			default:
				return apperrors.Internal("loading vote", err)
			}

			rating, err := e.agg.RecomputeAnswerRating(tx, answerID)
			if err != nil {
				return err
			}
			res.Rating = rating
			return nil
		})
	}

	if err := e.castWithRetry(attempt); err != nil {
		return nil, err
	}

	e.trigger.VoteMutated(ctx, authorID)
	return &res, nil
}

// castWithRetry runs the transaction body, re-running it exactly once when a
// concurrent insert on the same (user, item) pair lost the race on the
// unique index. The second run sees the winner's row and applies toggle
// semantics to it.
func (e *Engine) castWithRetry(attempt func() error) error {
	err := attempt()
	if isUniqueViolation(err) {
		err = attempt()
		if isUniqueViolation(err) {
			return apperrors.Conflict("vote conflicts with a concurrent request", err)
		}
	}
	if err != nil {
		var appErr *apperrors.Error
		if errors.As(err, &appErr) {
			return appErr
		}
		return apperrors.Internal("casting vote", err)
	}
	return nil
}

// isUniqueViolation reports whether err is a postgres unique-constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
