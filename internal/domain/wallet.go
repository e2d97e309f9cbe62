package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet Model
type Wallet struct {
	ID        uint            `gorm:"primaryKey" json:"id"`                              // Primary key
	UserID    uint            `gorm:"uniqueIndex;not null" json:"user_id"`               // Foreign key to User, one wallet per user
	Balance   decimal.Decimal `gorm:"type:decimal(20,8);not null;default:0" json:"balance"` // Wallet balance, never floating point
	Status    bool            `gorm:"not null;default:true" json:"status"`               // Active-status flag
	CreatedAt time.Time       `json:"created_at"`                                        // Timestamp of creation
	UpdatedAt time.Time       `json:"updated_at"`                                        // Timestamp of last update
}

// TableName maps the model onto the original `wallet` table
func (Wallet) TableName() string { return "wallet" }
