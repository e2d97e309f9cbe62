package ledger

import (
	"context"
	"errors"

	"github.com/Aditeya/smpl-payments/internal/domain" // Importing domain models

	"gorm.io/gorm" // GORM ORM library
)

// TransactionDetail is a ledger entry joined with the usernames owning
// each side.
type TransactionDetail struct {
	Transaction  domain.Transaction `json:"transaction"`
	FromUsername string             `json:"from_username"`
	ToUsername   string             `json:"to_username"`
}

// walletOwner carries one side's owning user of a wallet row.
type walletOwner struct {
	UserID   uint
	Username string
}

func (l *Ledger) ownerOfWallet(ctx context.Context, walletID uint) (walletOwner, error) {
	var owner walletOwner
	err := l.db.WithContext(ctx).Model(&domain.Wallet{}).
		Select("wallet.user_id, users.username").
		Joins("JOIN users ON users.id = wallet.user_id").
		Where("wallet.id = ?", walletID).
		Take(&owner).Error
	return owner, err
}

// GetTransaction loads one ledger entry visible to userID and resolves
// the username on each side. A transaction between two other users is
// indistinguishable from a nonexistent one: both return (nil, nil). This
// is an authorization filter, not an integrity check.
func (l *Ledger) GetTransaction(ctx context.Context, userID, transactionID uint) (*TransactionDetail, error) {
	var entry domain.Transaction
	if err := l.db.WithContext(ctx).First(&entry, transactionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, translateError(err)
	}

	from, err := l.ownerOfWallet(ctx, entry.FromWallet)
	if err != nil {
		return nil, translateError(err)
	}
	to, err := l.ownerOfWallet(ctx, entry.ToWallet)
	if err != nil {
		return nil, translateError(err)
	}

	if from.UserID != userID && to.UserID != userID {
		return nil, nil
	}
	return &TransactionDetail{
		Transaction:  entry,
		FromUsername: from.Username,
		ToUsername:   to.Username,
	}, nil
}

// ListTransactions returns every ledger entry where the caller's wallet
// appears as source or destination, newest first. Ordering by id is
// deterministic: ids are monotonic with insertion.
func (l *Ledger) ListTransactions(ctx context.Context, userID uint) ([]domain.Transaction, error) {
	wallet, err := l.GetWallet(ctx, userID)
	if err != nil {
		return nil, err
	}
	var entries []domain.Transaction
	if err := l.db.WithContext(ctx).
		Where("from_wallet = ? OR to_wallet = ?", wallet.ID, wallet.ID).
		Order("id DESC").
		Find(&entries).Error; err != nil {
		return nil, translateError(err)
	}
	return entries, nil
}
