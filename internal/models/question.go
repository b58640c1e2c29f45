package models

import "time"

type Question struct {
	ID       int    `gorm:"primaryKey" json:"id"`
	Title    string `gorm:"not null" json:"title"`
	Body     string `json:"body"`
	AuthorID int    `gorm:"not null;index" json:"author_id"`
	User     User   `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"user"`
	Tags     []Tag  `gorm:"many2many:question_tags" json:"tags"`

	// Rating is derived: always the sum of this question's vote values.
	Rating int `gorm:"default:0" json:"rating"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Tag struct {
	ID   int    `gorm:"primaryKey" json:"id"`
	Name string `gorm:"unique;not null" json:"name"`
}

type CreateQuestionRequest struct {
	Title string   `json:"title"`
	Body  string   `json:"body"`
	Tags  []string `json:"tags"`
}
