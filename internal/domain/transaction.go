package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction Model, an immutable ledger entry for one completed transfer
type Transaction struct {
	ID         uint            `gorm:"primaryKey" json:"id"`                             // Primary key
	FromWallet uint            `gorm:"column:from_wallet;not null" json:"from_wallet"`   // Wallet of the sender
	ToWallet   uint            `gorm:"column:to_wallet;not null" json:"to_wallet"`       // Wallet of the receiver
	Amount     decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"amount"`        // Amount of the transfer
	CreatedAt  time.Time       `json:"created_at"`                                       // Timestamp of creation
}

// TableName maps the model onto the original `transaction` table
func (Transaction) TableName() string { return "transaction" }
