package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/emilythestrangee/qa-forum/backend/internal/models"
	"github.com/emilythestrangee/qa-forum/backend/internal/voting"
)

type UserHandler struct {
	db     *gorm.DB
	engine *voting.Engine
}

func NewUserHandler(db *gorm.DB, engine *voting.Engine) *UserHandler {
	return &UserHandler{db: db, engine: engine}
}

// GetUserProfile returns a user's profile with reputation and recent questions
func (h *UserHandler) GetUserProfile(c *gin.Context) {
	userID := c.Param("id")

	var user models.User
	if err := h.db.Preload("Profile").First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var questions []models.Question
	h.db.Preload("Tags").Where("author_id = ?", user.ID).Order("created_at desc").Limit(10).Find(&questions)

	if questions == nil {
		questions = []models.Question{}
	}

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":           user.ID,
			"username":     user.Username,
			"nickname":     user.Profile.Nickname,
			"reputation":   user.Profile.Reputation,
			"answer_count": user.Profile.AnswerCount,
		},
		"questions": questions,
	})
}

// DeleteMe deletes the authenticated user's account. Cascades remove their
// questions, answers, and votes; affected authors get re-aggregated.
func (h *UserHandler) DeleteMe(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	if err := h.engine.DeleteUser(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Account deleted successfully"})
}
