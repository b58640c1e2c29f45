package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/emilythestrangee/qa-forum/backend/internal/models"
	"github.com/emilythestrangee/qa-forum/backend/internal/voting"
)

type AnswerHandler struct {
	db     *gorm.DB
	engine *voting.Engine
}

func NewAnswerHandler(db *gorm.DB, engine *voting.Engine) *AnswerHandler {
	return &AnswerHandler{db: db, engine: engine}
}

// CreateAnswer creates a new answer on a question (PROTECTED)
func (h *AnswerHandler) CreateAnswer(c *gin.Context) {
	var input struct {
		Body string `json:"body" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Body is required"})
		return
	}

	questionID := c.Param("id")
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	// Verify question exists
	var question models.Question
	if err := h.db.First(&question, questionID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Question not found"})
		return
	}

	answer := models.Answer{
		Body:       input.Body,
		QuestionID: question.ID,
		AuthorID:   userID,
	}

	if err := h.db.Create(&answer).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create answer"})
		return
	}

	// The author's answer count changed.
	if err := h.engine.Trigger().ItemsMutated(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}

	h.db.Preload("User").Preload("User.Profile").First(&answer, answer.ID)

	c.JSON(http.StatusCreated, answer)
}
