package voting

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/emilythestrangee/qa-forum/backend/internal/apperrors"
	"github.com/emilythestrangee/qa-forum/backend/internal/models"
)

// DeleteQuestion removes a question owned by the actor. The database
// cascades away its answers and votes; the profiles of the question's author
// and of every answer author are refreshed afterwards, since their items
// died with the question.
func (e *Engine) DeleteQuestion(ctx context.Context, actorID, questionID int) error {
	var affected []int

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var question models.Question
		if err := tx.First(&question, questionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("question not found")
			}
			return apperrors.Internal("loading question", err)
		}
		if question.AuthorID != actorID {
			return apperrors.Authorization("you can only delete your own questions")
		}

		if err := tx.Model(&models.Answer{}).
			Where("question_id = ?", questionID).
			Distinct().
			Pluck("author_id", &affected).Error; err != nil {
			return apperrors.Internal("listing answer authors", err)
		}
		affected = append(affected, question.AuthorID)

		if err := tx.Delete(&question).Error; err != nil {
			return apperrors.Internal("deleting question", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	return e.trigger.ItemsMutated(ctx, affected...)
}

// DeleteUser removes a user and, via cascades, their questions, answers, and
// votes. Every other author whose item's vote set changed — because the
// deleted user had voted on it, or because their answer lived under one of
// the deleted questions — gets their ratings and profile recomputed.
func (e *Engine) DeleteUser(ctx context.Context, userID int) error {
	var votedQuestionIDs, votedAnswerIDs, affected []int

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("user not found")
			}
			return apperrors.Internal("loading user", err)
		}

		if err := tx.Model(&models.QuestionVote{}).
			Where("user_id = ?", userID).
			Distinct().
			Pluck("question_id", &votedQuestionIDs).Error; err != nil {
			return apperrors.Internal("listing voted questions", err)
		}
		if err := tx.Model(&models.AnswerVote{}).
			Where("user_id = ?", userID).
			Distinct().
			Pluck("answer_id", &votedAnswerIDs).Error; err != nil {
			return apperrors.Internal("listing voted answers", err)
		}

		var questionAuthors, answerAuthors, cascadeAuthors []int
		if err := tx.Model(&models.Question{}).
			Where("id IN ?", votedQuestionIDs).
			Distinct().
			Pluck("author_id", &questionAuthors).Error; err != nil {
			return apperrors.Internal("listing question authors", err)
		}
		if err := tx.Model(&models.Answer{}).
			Where("id IN ?", votedAnswerIDs).
			Distinct().
			Pluck("author_id", &answerAuthors).Error; err != nil {
			return apperrors.Internal("listing answer authors", err)
		}

		// Answers by others under the user's questions are cascade-deleted.
		if err := tx.Model(&models.Answer{}).
			Where("question_id IN (?)", tx.Model(&models.Question{}).Select("id").Where("author_id = ?", userID)).
			Distinct().
			Pluck("author_id", &cascadeAuthors).Error; err != nil {
			return apperrors.Internal("listing cascade answer authors", err)
		}
		affected = append(affected, questionAuthors...)
		affected = append(affected, answerAuthors...)
		affected = append(affected, cascadeAuthors...)

		if err := tx.Delete(&user).Error; err != nil {
			return apperrors.Internal("deleting user", err)
		}

		// Re-sum surviving voted items; rows deleted by the cascade simply
		// match nothing.
		for _, id := range votedQuestionIDs {
			if _, err := e.agg.RecomputeQuestionRating(tx, id); err != nil {
				return err
			}
		}
		for _, id := range votedAnswerIDs {
			if _, err := e.agg.RecomputeAnswerRating(tx, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	// The deleted user's own profile is gone; skip it.
	refresh := affected[:0]
	for _, id := range affected {
		if id != userID {
			refresh = append(refresh, id)
		}
	}
	return e.trigger.ItemsMutated(ctx, refresh...)
}
