package models

import "time"

type User struct {
	ID       int    `gorm:"primaryKey" json:"id"`
	Username string `gorm:"unique;not null" json:"username"`
	Email    string `gorm:"unique;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`

	Profile Profile `gorm:"constraint:OnDelete:CASCADE" json:"profile"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Profile holds the derived reputation numbers for a user. The rating
// aggregator is the only writer of Reputation and AnswerCount; clients
// never mutate a profile directly.
type Profile struct {
	ID          int       `gorm:"primaryKey" json:"id"`
	UserID      int       `gorm:"uniqueIndex;not null" json:"user_id"`
	Nickname    string    `json:"nickname"`
	Reputation  int       `gorm:"default:0" json:"reputation"`
	AnswerCount int       `gorm:"default:0" json:"answer_count"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Nickname string `json:"nickname"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token   string `json:"token"`
	User    User   `json:"user"`
	Message string `json:"message"`
}
