package ledger

import (
	"context"
	"errors"

	"github.com/Aditeya/smpl-payments/internal/domain" // Importing domain models

	"github.com/shopspring/decimal" // Arbitrary-precision decimals
	"github.com/sirupsen/logrus"    // Logging library
	"gorm.io/gorm"                  // GORM ORM library
	"gorm.io/gorm/clause"           // GORM clause helpers
)

// CreateWallet inserts a wallet with balance 0 for the user. ErrDuplicate
// when the user already owns one (unique index on user_id).
func (l *Ledger) CreateWallet(ctx context.Context, userID uint) (*domain.Wallet, error) {
	wallet := domain.Wallet{UserID: userID, Balance: decimal.Zero, Status: true}
	if err := l.db.WithContext(ctx).Create(&wallet).Error; err != nil {
		return nil, translateError(err)
	}
	l.log.WithFields(logrus.Fields{
		"user_id":   userID,
		"wallet_id": wallet.ID,
	}).Info("Wallet created")
	return &wallet, nil
}

// GetWallet returns the user's wallet with its committed balance, read
// under a shared row lock inside its own transaction. The lock blocks
// concurrent balance mutation but not other readers. ErrNotFound here is
// an internal-consistency fault: every signed-up user has one wallet.
func (l *Ledger) GetWallet(ctx context.Context, userID uint) (*domain.Wallet, error) {
	var wallet domain.Wallet
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock the wallet row for reading
		return tx.Clauses(clause.Locking{Strength: "SHARE"}).
			Where("user_id = ?", userID).
			First(&wallet).Error
	})
	if err != nil {
		return nil, translateError(err)
	}
	return &wallet, nil
}

// Deposit adds amount to the wallet balance. The row is locked FOR UPDATE
// for the span of the transaction; the new balance and updated timestamp
// commit together. Positivity of amount is the boundary's responsibility.
func (l *Ledger) Deposit(ctx context.Context, userID uint, amount decimal.Decimal) (*domain.Wallet, error) {
	var wallet domain.Wallet
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock the wallet row for update
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", userID).
			First(&wallet).Error; err != nil {
			return err
		}
		wallet.Balance = wallet.Balance.Add(amount)
		return tx.Model(&wallet).Update("balance", wallet.Balance).Error
	})
	if err != nil {
		err = translateError(err)
		l.log.WithFields(logrus.Fields{
			"user_id": userID,
			"amount":  amount,
			"error":   err.Error(),
		}).Error("Deposit failed")
		return nil, err
	}
	l.log.WithFields(logrus.Fields{
		"user_id": userID,
		"amount":  amount,
	}).Info("Deposit committed")
	return &wallet, nil
}

// Withdraw subtracts amount from the wallet balance under the same lock
// as Deposit. A balance smaller than amount aborts the transaction before
// any write: the committed balance never goes negative.
func (l *Ledger) Withdraw(ctx context.Context, userID uint, amount decimal.Decimal) (*domain.Wallet, error) {
	var wallet domain.Wallet
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock the wallet row for update
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", userID).
			First(&wallet).Error; err != nil {
			return err
		}
		if wallet.Balance.LessThan(amount) {
			return ErrInsufficientFunds
		}
		wallet.Balance = wallet.Balance.Sub(amount)
		return tx.Model(&wallet).Update("balance", wallet.Balance).Error
	})
	if err != nil {
		err = translateError(err)
		if !errors.Is(err, ErrInsufficientFunds) {
			l.log.WithFields(logrus.Fields{
				"user_id": userID,
				"amount":  amount,
				"error":   err.Error(),
			}).Error("Withdraw failed")
		}
		return nil, err
	}
	l.log.WithFields(logrus.Fields{
		"user_id": userID,
		"amount":  amount,
	}).Info("Withdraw committed")
	return &wallet, nil
}
