package models

import "time"

// QuestionVote records a single user's vote on a question. One row per
// (user, question) pair; the unique index is the backstop that turns a
// concurrent double-insert into a retryable conflict.
type QuestionVote struct {
	ID         int       `gorm:"primaryKey" json:"id"`
	UserID     int       `gorm:"not null;uniqueIndex:uniq_question_vote" json:"user_id"`
	User       User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	QuestionID int       `gorm:"not null;uniqueIndex:uniq_question_vote" json:"question_id"`
	Question   Question  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Value      int       `gorm:"not null;check:value IN (-1, 1)" json:"value"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// AnswerVote is the answer counterpart of QuestionVote.
type AnswerVote struct {
	ID        int       `gorm:"primaryKey" json:"id"`
	UserID    int       `gorm:"not null;uniqueIndex:uniq_answer_vote" json:"user_id"`
	User      User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	AnswerID  int       `gorm:"not null;uniqueIndex:uniq_answer_vote" json:"answer_id"`
	Answer    Answer    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Value     int       `gorm:"not null;check:value IN (-1, 1)" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type VoteQuestionRequest struct {
	QuestionID int `json:"question_id"`
	Value      int `json:"value"`
}

type VoteAnswerRequest struct {
	AnswerID int `json:"answer_id"`
	Value    int `json:"value"`
}

type MarkCorrectRequest struct {
	QuestionID int `json:"question_id"`
	AnswerID   int `json:"answer_id"`
}
