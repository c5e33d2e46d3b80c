package user

import "time"

// User mirrors the identity provider account; credentials never leave the provider.
type User struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	Email     string    `gorm:"size:320;not null;uniqueIndex" json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
