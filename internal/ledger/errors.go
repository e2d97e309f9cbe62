package ledger

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql" // MySQL driver error types
	"gorm.io/gorm"                   // GORM ORM library
)

// Closed error taxonomy surfaced by the ledger engine. No raw backend
// error type crosses this boundary; callers branch with errors.Is.
var (
	// ErrDuplicate reports a violated unique constraint: username,
	// email, or the one-wallet-per-user index.
	ErrDuplicate = errors.New("unique constraint violated")

	// ErrInsufficientFunds reports a withdrawal or transfer where the
	// balance is smaller than the amount. The whole transaction is
	// rolled back; this is a business rejection, not a system fault.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrNotFound reports a missing row (user, wallet, transaction).
	ErrNotFound = errors.New("record not found")

	// ErrSelfTransfer reports a transfer whose source and destination
	// resolve to the same wallet.
	ErrSelfTransfer = errors.New("cannot transfer to own wallet")

	// ErrUnavailable reports pool exhaustion or a lost backend
	// connection; transient, safe to retry at the caller's discretion.
	ErrUnavailable = errors.New("backing store unavailable")

	// ErrStore reports any other backend failure; fatal for the
	// current operation.
	ErrStore = errors.New("store failure")
)

// MySQL error 1062: ER_DUP_ENTRY.
const mysqlDupEntry = 1062

// translateError folds gorm and driver errors into the closed taxonomy.
// Errors already in the taxonomy pass through unchanged.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrDuplicate),
		errors.Is(err, ErrInsufficientFunds),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrSelfTransfer),
		errors.Is(err, ErrUnavailable),
		errors.Is(err, ErrStore):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, driver.ErrBadConn),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDupEntry {
		return ErrDuplicate
	}
	return fmt.Errorf("%w: %v", ErrStore, err)
}
