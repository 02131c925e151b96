package models

import "time"

// User represents a user of the store.
type User struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Username    string    `json:"username" gorm:"uniqueIndex;type:varchar(100);not null" validate:"required,min=3,max=100"`
	Email       string    `json:"email" gorm:"uniqueIndex;type:varchar(255);not null" validate:"required,email"`
	Password    string    `json:"-" gorm:"type:varchar(255);not null"` // bcrypt hash, never serialized
	FullName    string    `json:"fullName" gorm:"type:varchar(200)"`
	PhoneNumber string    `json:"phoneNumber" gorm:"type:varchar(50)"`
	Address     string    `json:"address" gorm:"type:text"`
	IsAdmin     bool      `json:"isAdmin" gorm:"default:false;not null"`
	CreatedAt   time.Time `json:"createdAt"`
}

// RegisterRequest is the body of a registration call.
type RegisterRequest struct {
	Username    string `json:"username" validate:"required,min=3,max=100"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6,max=72"`
	FullName    string `json:"fullName" validate:"required,min=2,max=200"`
	PhoneNumber string `json:"phoneNumber" validate:"omitempty,max=50"`
	Address     string `json:"address" validate:"omitempty,max=1000"`
}
