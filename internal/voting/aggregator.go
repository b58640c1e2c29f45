package voting

import (
	"context"

	"gorm.io/gorm"

	"github.com/emilythestrangee/qa-forum/backend/internal/apperrors"
	"github.com/emilythestrangee/qa-forum/backend/internal/models"
)

// Aggregator recomputes derived ratings from the vote ledger. Ratings are
// always rebuilt as a full sum over votes rather than adjusted by deltas, so
// a missed or doubled event can never leave a permanently wrong number.
type Aggregator struct {
	db *gorm.DB
}

func NewAggregator(db *gorm.DB) *Aggregator {
	return &Aggregator{db: db}
}

// RecomputeQuestionRating rebuilds a question's rating from its votes inside
// the caller's transaction and returns the new value.
func (a *Aggregator) RecomputeQuestionRating(tx *gorm.DB, questionID int) (int, error) {
	var rating int
	err := tx.Model(&models.QuestionVote{}).
		Where("question_id = ?", questionID).
		Select("COALESCE(SUM(value), 0)").
		Scan(&rating).Error
	if err != nil {
		return 0, apperrors.Internal("summing question votes", err)
	}

	err = tx.Model(&models.Question{}).Where("id = ?", questionID).Update("rating", rating).Error
	if err != nil {
		return 0, apperrors.Internal("persisting question rating", err)
	}
	return rating, nil
}

// RecomputeAnswerRating rebuilds an answer's rating from its votes inside the
// caller's transaction and returns the new value.
func (a *Aggregator) RecomputeAnswerRating(tx *gorm.DB, answerID int) (int, error) {
	var rating int
	err := tx.Model(&models.AnswerVote{}).
		Where("answer_id = ?", answerID).
		Select("COALESCE(SUM(value), 0)").
		Scan(&rating).Error
	if err != nil {
		return 0, apperrors.Internal("summing answer votes", err)
	}

	err = tx.Model(&models.Answer{}).Where("id = ?", answerID).Update("rating", rating).Error
	if err != nil {
		return 0, apperrors.Internal("persisting answer rating", err)
	}
	return rating, nil
}

// RecomputeProfile rebuilds a user's reputation and answer count from their
// items' ratings. Runs in its own transaction.
func (a *Aggregator) RecomputeProfile(ctx context.Context, userID int) error {
	return a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var questionRating, answerRating int
		var answerCount int64

		err := tx.Model(&models.Question{}).
			Where("author_id = ?", userID).
			Select("COALESCE(SUM(rating), 0)").
			Scan(&questionRating).Error
		if err != nil {
			return apperrors.Internal("summing question ratings", err)
		}

		err = tx.Model(&models.Answer{}).
			Where("author_id = ?", userID).
			Select("COALESCE(SUM(rating), 0)").
			Scan(&answerRating).Error
		if err != nil {
			return apperrors.Internal("summing answer ratings", err)
		}

		err = tx.Model(&models.Answer{}).Where("author_id = ?", userID).Count(&answerCount).Error
		if err != nil {
			return apperrors.Internal("counting answers", err)
		}

		err = tx.Model(&models.Profile{}).Where("user_id = ?", userID).Updates(map[string]any{
			"reputation":   questionRating + answerRating,
			"answer_count": answerCount,
		}).Error
		if err != nil {
			return apperrors.Internal("persisting profile", err)
		}
		return nil
	})
}

// ReconcileAll rebuilds every rating and every profile from the vote ledger.
// Used by cmd/reconcile to repair drift after bulk imports or bugs.
func (a *Aggregator) ReconcileAll(ctx context.Context) error {
	db := a.db.WithContext(ctx)

	var questionIDs []int
	if err := db.Model(&models.Question{}).Pluck("id", &questionIDs).Error; err != nil {
		return apperrors.Internal("listing questions", err)
	}
	for _, id := range questionIDs {
		err := db.Transaction(func(tx *gorm.DB) error {
			_, err := a.RecomputeQuestionRating(tx, id)
			return err
		})
		if err != nil {
			return err
		}
	}

	var answerIDs []int
	if err := db.Model(&models.Answer{}).Pluck("id", &answerIDs).Error; err != nil {
		return apperrors.Internal("listing answers", err)
	}
	for _, id := range answerIDs {
		err := db.Transaction(func(tx *gorm.DB) error {
			_, err := a.RecomputeAnswerRating(tx, id)
			return err
		})
		if err != nil {
			return err
		}
	}

	var userIDs []int
	if err := db.Model(&models.User{}).Pluck("id", &userIDs).Error; err != nil {
		return apperrors.Internal("listing users", err)
	}
	for _, id := range userIDs {
		if err := a.RecomputeProfile(ctx, id); err != nil {
			return err
		}
	}
	return nil
}
