package models

import "time"

// User is an operator account for the dashboard.
type User struct {
	Id           int64     `gorm:"primaryKey" json:"-"`
	Email        string    `gorm:"uniqueIndex;size:128" json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"-"`
}

func (User) TableName() string {
	return "users"
}
