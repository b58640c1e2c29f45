package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/emilythestrangee/qa-forum/backend/internal/models"
	"github.com/emilythestrangee/qa-forum/backend/internal/voting"
)

type QuestionHandler struct {
	db     *gorm.DB
	engine *voting.Engine
}

func NewQuestionHandler(db *gorm.DB, engine *voting.Engine) *QuestionHandler {
	return &QuestionHandler{db: db, engine: engine}
}

// GetQuestions returns questions ordered by creation date (new) or rating
// (hot), optionally filtered by tag.
func (h *QuestionHandler) GetQuestions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	perPage := 10

	query := h.db.Model(&models.Question{}).Preload("User").Preload("User.Profile").Preload("Tags")

	if tag := c.Query("tag"); tag != "" {
		query = query.
			Joins("JOIN question_tags ON question_tags.question_id = questions.id").
			Joins("JOIN tags ON tags.id = question_tags.tag_id").
			Where("tags.name = ?", tag)
	}

	if c.DefaultQuery("sort", "new") == "hot" {
		query = query.Order("rating desc").Order("created_at desc")
	} else {
		query = query.Order("created_at desc")
	}

	var questions []models.Question
	if err := query.Offset((page - 1) * perPage).Limit(perPage).Find(&questions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch questions"})
		return
	}

	if questions == nil {
		questions = []models.Question{}
	}

	c.JSON(http.StatusOK, questions)
}

// GetQuestion returns a single question with its answers, accepted first.
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	questionID := c.Param("id")

	var question models.Question
	if err := h.db.Preload("User").Preload("User.Profile").Preload("Tags").First(&question, questionID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Question not found"})
		return
	}

	var answers []models.Answer
	if err := h.db.Preload("User").Preload("User.Profile").
		Where("question_id = ?", question.ID).
		Order("accepted desc").Order("rating desc").Order("created_at desc").
		Find(&answers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch answers"})
		return
	}

	if answers == nil {
		answers = []models.Answer{}
	}

	c.JSON(http.StatusOK, gin.H{
		"question": question,
		"answers":  answers,
	})
}

// CreateQuestion creates a new question with its tags (PROTECTED)
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	var input struct {
		Title string   `json:"title" binding:"required"`
		Body  string   `json:"body"`
		Tags  []string `json:"tags"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
		return
	}

	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	question := models.Question{
		Title:    input.Title,
		Body:     input.Body,
		AuthorID: userID,
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		for _, name := range input.Tags {
			var tag models.Tag
			if err := tx.Where(models.Tag{Name: name}).FirstOrCreate(&tag).Error; err != nil {
				return err
			}
			question.Tags = append(question.Tags, tag)
		}
		return tx.Create(&question).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create question"})
		return
	}

	if err := h.engine.Trigger().ItemsMutated(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}

	h.db.Preload("User").Preload("Tags").First(&question, question.ID)

	c.JSON(http.StatusCreated, question)
}

// DeleteQuestion deletes a question (PROTECTED - requires ownership)
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	questionID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid question id"})
		return
	}

	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	if err := h.engine.DeleteQuestion(c.Request.Context(), userID, questionID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Question deleted successfully"})
}
