package postgres

import (
	"time"
)

/*
 * 'Wallet' holds a user's Chips balance. Balances are integers, there is
 * no fractional currency anywhere, so payout arithmetic never drifts.
 * A frozen wallet (FrozenAt set) rejects new debits but still accepts
 * credits. Mutated only through ledger operations, never assigned directly.
 */
type Wallet struct {
	UserID    string     `gorm:"primaryKey;size:36;not null"`
	Balance   int64      `gorm:"not null;default:0"`
	FrozenAt  *time.Time `gorm:"default:null"`
	UpdatedAt time.Time
}
