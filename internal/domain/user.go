package domain

import "time"

// User Model
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`                     // Primary key
	Username  string    `gorm:"size:120;unique;not null" json:"username"` // Unique username
	Email     string    `gorm:"size:120;unique;not null" json:"email"`    // Unique email
	Password  string    `gorm:"size:100;not null" json:"-"`               // Hashed password, never serialized
	Status    bool      `gorm:"not null;default:true" json:"status"`      // Active-status flag
	CreatedAt time.Time `json:"created_at"`                               // Timestamp of creation
	UpdatedAt time.Time `json:"updated_at"`                               // Timestamp of last update

	// user_id on wallet is NOT NULL, so the delete rule must not be SET
	// NULL (MySQL rejects that pairing at CREATE TABLE). Users are never
	// deleted here anyway.
	Wallet Wallet `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"` // One-to-one relationship with Wallet
}

// TableName maps the model onto the original `users` table
func (User) TableName() string { return "users" }
