package ledger

import (
	"context"

	"github.com/Aditeya/smpl-payments/internal/domain" // Importing domain models

	"github.com/shopspring/decimal" // Arbitrary-precision decimals
	"github.com/sirupsen/logrus"    // Logging library
	"gorm.io/gorm"                  // GORM ORM library
	"gorm.io/gorm/clause"           // GORM clause helpers
)

// SignUp creates the user row and its zero-balance wallet in one database
// transaction. A duplicate username or email aborts the whole unit, so a
// rejected signup never leaves a wallet behind.
func (l *Ledger) SignUp(ctx context.Context, username, email, passwordHash string) (*domain.User, error) {
	user := domain.User{
		Username: username,
		Email:    email,
		Password: passwordHash,
		Status:   true,
	}
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&user).Error; err != nil {
			return err
		}
		wallet := domain.Wallet{UserID: user.ID, Balance: decimal.Zero, Status: true}
		return tx.Create(&wallet).Error
	})
	if err != nil {
		err = translateError(err)
		l.log.WithFields(logrus.Fields{
			"username": username,
			"email":    email,
			"error":    err.Error(),
		}).Warn("Sign up rejected")
		return nil, err
	}
	l.log.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"username": username,
	}).Info("User signed up")
	return &user, nil
}

// GetUserByEmail returns the user owning the email, for sign-in.
func (l *Ledger) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	if err := l.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

// GetUserByUsername returns the user owning the username.
func (l *Ledger) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	if err := l.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

// GetUserByID returns the user record for an authenticated id.
func (l *Ledger) GetUserByID(ctx context.Context, id uint) (*domain.User, error) {
	var user domain.User
	if err := l.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

// UpdateUsername renames the user. ErrDuplicate when the name is taken.
func (l *Ledger) UpdateUsername(ctx context.Context, id uint, username string) (*domain.User, error) {
	var user domain.User
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, id).Error; err != nil {
			return err
		}
		return tx.Model(&user).Update("username", username).Error
	})
	if err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}
