// Package ledger implements the wallet ledger engine: wallet lifecycle,
// atomic transfers between wallets and read-only transaction queries on
// top of a relational store. Every money-moving operation runs inside a
// single database transaction under row locks; the transaction boundary
// is the unit of atomicity and of rollback.
package ledger

import (
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// Ledger owns all persisted reads and writes of users, wallets and
// ledger entries. The HTTP shell only ever talks to the store through it.
type Ledger struct {
	db  *gorm.DB       // Shared connection pool, passed in explicitly
	log *logrus.Logger // Structured logger
}

// New wires the engine to an already-opened database handle.
func New(db *gorm.DB, log *logrus.Logger) *Ledger {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Ledger{db: db, log: log}
}
