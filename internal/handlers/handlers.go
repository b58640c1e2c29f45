package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/emilythestrangee/qa-forum/backend/internal/apperrors"
	"github.com/emilythestrangee/qa-forum/backend/internal/voting"
)

// Handler combines all handler types
type Handler struct {
	Auth     *AuthHandler
	Question *QuestionHandler
	Answer   *AnswerHandler
	Vote     *VoteHandler
	User     *UserHandler
}

// NewHandler creates a unified handler with all sub-handlers
func NewHandler(db *gorm.DB) *Handler {
	engine := voting.NewEngine(db)

	return &Handler{
		Auth:     NewAuthHandler(db),
		Question: NewQuestionHandler(db, engine),
		Answer:   NewAnswerHandler(db, engine),
		Vote:     NewVoteHandler(engine),
		User:     NewUserHandler(db, engine),
	}
}

func extractUserID(c *gin.Context) (int, bool) {
	raw, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}
	switch v := raw.(type) {
	case int:
		return v, true
	case uint:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

// respondError maps a voting-core error onto its HTTP status. Internal
// failures are logged and never leak their cause to the client.
func respondError(c *gin.Context, err error) {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		if appErr.Type == apperrors.TypeInternal {
			slog.Error("request failed", "path", c.FullPath(), "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		c.JSON(appErr.HTTPStatus(), gin.H{"error": appErr.Message})
		return
	}

	slog.Error("unexpected error", "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}
