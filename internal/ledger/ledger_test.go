package ledger

import (
	"io"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestLedger wires the engine to a sqlmock-backed gorm handle.
func newTestLedger(t *testing.T) (*Ledger, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(gormmysql.New(gormmysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger:               logger.Default.LogMode(logger.Silent),
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)

	log := logrus.New()
	log.SetOutput(io.Discard)
	return New(db, log), mock
}

// walletRows builds a single-wallet result set with the given balance.
func walletRows(id, userID uint, balance string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "user_id", "balance", "status", "created_at", "updated_at"}).
		AddRow(id, userID, balance, true, now, now)
}

// idRows builds a result set holding a single id column.
func idRows(id uint) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id"}).AddRow(id)
}
