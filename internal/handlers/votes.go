package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/qa-forum/backend/internal/voting"
)

// VoteHandler exposes the vote engine over HTTP. Responses follow the
// {success, rating, user_vote} shape the frontend's like buttons consume.
type VoteHandler struct {
	engine *voting.Engine
}

func NewVoteHandler(engine *voting.Engine) *VoteHandler {
	return &VoteHandler{engine: engine}
}

// VoteQuestion toggles the caller's vote on a question (PROTECTED)
func (h *VoteHandler) VoteQuestion(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input struct {
		QuestionID int `json:"question_id" binding:"required"`
		Value      int `json:"value" binding:"required,oneof=-1 1"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "question_id and value (1 or -1) are required"})
		return
	}

	res, err := h.engine.CastQuestionVote(c.Request.Context(), userID, input.QuestionID, input.Value)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"rating":    res.Rating,
		"user_vote": res.UserVote,
	})
}

// VoteAnswer toggles the caller's vote on an answer (PROTECTED)
func (h *VoteHandler) VoteAnswer(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input struct {
		AnswerID int `json:"answer_id" binding:"required"`
		Value    int `json:"value" binding:"required,oneof=-1 1"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "answer_id and value (1 or -1) are required"})
		return
	}

	res, err := h.engine.CastAnswerVote(c.Request.Context(), userID, input.AnswerID, input.Value)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"rating":    res.Rating,
		"user_vote": res.UserVote,
	})
}

// MarkCorrectAnswer marks an answer as the accepted one (PROTECTED -
// question author only)
func (h *VoteHandler) MarkCorrectAnswer(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input struct {
		QuestionID int `json:"question_id" binding:"required"`
		AnswerID   int `json:"answer_id" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "question_id and answer_id are required"})
		return
	}

	err := h.engine.MarkAccepted(c.Request.Context(), userID, input.QuestionID, input.AnswerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"answer_id": input.AnswerID,
	})
}
