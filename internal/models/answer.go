package models

import "time"

type Answer struct {
	ID         int      `gorm:"primaryKey" json:"id"`
	Body       string   `gorm:"not null" json:"body"`
	AuthorID   int      `gorm:"not null;index" json:"author_id"`
	User       User     `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"user"`
	QuestionID int      `gorm:"not null;index" json:"question_id"`
	Question   Question `gorm:"constraint:OnDelete:CASCADE" json:"-"`

	// At most one answer per question carries Accepted=true.
	Accepted bool `gorm:"default:false" json:"accepted"`

	// Rating is derived: always the sum of this answer's vote values.
	Rating int `gorm:"default:0" json:"rating"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateAnswerRequest struct {
	Body string `json:"body"`
}
