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

// Transfer moves amount from the caller's wallet to the wallet owned by
// toUsername as one atomic unit: two balance updates plus one immutable
// ledger entry, inside a single database transaction. Any failure after
// the first lock rolls back every prior write.
//
// Both wallet rows are locked FOR UPDATE in ascending wallet-id order,
// whatever the direction of the transfer, so two concurrent transfers
// over the same pair always take their locks in the same order and
// cannot deadlock. A transfer to the caller's own wallet is rejected
// before any lock is taken.
func (l *Ledger) Transfer(ctx context.Context, fromUserID uint, toUsername string, amount decimal.Decimal) (*domain.Transaction, error) {
	var entry domain.Transaction
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Resolve both wallet ids before locking anything.
		var fromWalletRef domain.Wallet
		if err := tx.Select("id").
			Where("user_id = ?", fromUserID).
			Take(&fromWalletRef).Error; err != nil {
			return err
		}

		var toUser domain.User
		if err := tx.Select("id").
			Where("username = ?", toUsername).
			Take(&toUser).Error; err != nil {
			return err
		}

		var toWalletRef domain.Wallet
		if err := tx.Select("id").
			Where("user_id = ?", toUser.ID).
			Take(&toWalletRef).Error; err != nil {
			return err
		}

		if fromWalletRef.ID == toWalletRef.ID {
			return ErrSelfTransfer
		}

		// Fixed lock order: lower wallet id first.
		first, second := fromWalletRef.ID, toWalletRef.ID
		if second < first {
			first, second = second, first
		}
		locked := make(map[uint]*domain.Wallet, 2)
		for _, id := range []uint{first, second} {
			var w domain.Wallet
			// Lock the wallet row for update; the balance used below
			// comes from this locked read.
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("id = ?", id).
				First(&w).Error; err != nil {
				return err
			}
			locked[id] = &w
		}
		fromWallet := locked[fromWalletRef.ID]
		toWallet := locked[toWalletRef.ID]

		if fromWallet.Balance.LessThan(amount) {
			return ErrInsufficientFunds
		}

		// Deduct from sender
		if err := tx.Model(fromWallet).
			Update("balance", fromWallet.Balance.Sub(amount)).Error; err != nil {
			return err
		}
		// Add to receiver
		if err := tx.Model(toWallet).
			Update("balance", toWallet.Balance.Add(amount)).Error; err != nil {
			return err
		}

		// Append the immutable ledger entry
		entry = domain.Transaction{
			FromWallet: fromWallet.ID,
			ToWallet:   toWallet.ID,
			Amount:     amount,
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		err = translateError(err)
		// Business rejections are the caller's to surface, not faults.
		if !errors.Is(err, ErrInsufficientFunds) && !errors.Is(err, ErrSelfTransfer) {
			l.log.WithFields(logrus.Fields{
				"from_user_id": fromUserID,
				"to_username":  toUsername,
				"amount":       amount,
				"error":        err.Error(),
			}).Error("Transfer failed")
		}
		return nil, err
	}
	l.log.WithFields(logrus.Fields{
		"from_user_id":   fromUserID,
		"to_username":    toUsername,
		"amount":         amount,
		"transaction_id": entry.ID,
	}).Info("Transfer committed")
	return &entry, nil
}
