package voting

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/emilythestrangee/qa-forum/backend/internal/apperrors"
	"github.com/emilythestrangee/qa-forum/backend/internal/models"
)

// MarkAccepted flags an answer as the question's accepted one. Only the
// question author may do this; the previous holder is cleared and the new
// one set within the same transaction, so at most one answer per question
// is ever accepted.
func (e *Engine) MarkAccepted(ctx context.Context, actorID, questionID, answerID int) error {
	return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var question models.Question
		if err := tx.First(&question, questionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("question not found")
			}
			return apperrors.Internal("loading question", err)
		}

		var answer models.Answer
		if err := tx.First(&answer, answerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("answer not found")
			}
			return apperrors.Internal("loading answer", err)
		}

		if question.AuthorID != actorID {
			return apperrors.Authorization("only the question author can mark the correct answer")
		}
		if answer.QuestionID != question.ID {
			return apperrors.Validation("answer does not belong to this question")
		}

		// Clear-then-set keeps the single-accepted invariant.
		err := tx.Model(&models.Answer{}).
			Where("question_id = ? AND accepted = ?", question.ID, true).
			Update("accepted", false).Error
		if err != nil {
			return apperrors.Internal("clearing accepted answer", err)
		}

		err = tx.Model(&models.Answer{}).Where("id = ?", answer.ID).Update("accepted", true).Error
		if err != nil {
			return apperrors.Internal("marking accepted answer", err)
		}
		return nil
	})
}
