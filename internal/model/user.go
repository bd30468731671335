package model

import "time"

// User represents a user account. Status doubles as the soft-delete tombstone.
type User struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	Name      string     `json:"name" gorm:"size:255"`
	Email     string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Password  string     `json:"-" gorm:"size:255;not null"` // bcrypt hash, never exposed
	Cellphone string     `json:"cellphone" gorm:"size:255"`
	Status    bool       `json:"status" gorm:"default:true;index"`
	LastLogin *time.Time `json:"lastLogin"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}
