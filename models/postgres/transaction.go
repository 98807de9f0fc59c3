package postgres

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TransactionType string

const (
	TxBetPlaced       TransactionType = "BET_PLACED"
	TxGameWin         TransactionType = "GAME_WIN"
	TxBetRefund       TransactionType = "BET_REFUND"
	TxDailyClaim      TransactionType = "DAILY_CLAIM"
	TxWeeklyBonus     TransactionType = "WEEKLY_BONUS"
	TxTransferSent    TransactionType = "TRANSFER_SENT"
	TxTransferGot     TransactionType = "TRANSFER_RECEIVED"
	TxAdminAdjustment TransactionType = "ADMIN_ADJUSTMENT"
)

/*
 * 'Transaction' is the immutable audit record for every wallet mutation.
 * Append-only: rows are created inside the same database transaction as the
 * balance change they describe and are never updated afterwards.
 */
type Transaction struct {
	ID            string          `gorm:"primaryKey;size:36;not null"`
	Type          TransactionType `gorm:"size:30;not null;index:idx_transactions_type"`
	Amount        int64           `gorm:"not null"`
	UserID        string          `gorm:"size:36;not null;index:idx_transactions_user"`
	RelatedUserID *string         `gorm:"size:36"`
	Description   string          `gorm:"size:255"`
	CreatedAt     time.Time       `gorm:"default:CURRENT_TIMESTAMP;index:idx_transactions_created"`
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
