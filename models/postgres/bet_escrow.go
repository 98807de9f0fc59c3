package postgres

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EscrowStatus string

const (
	EscrowLocked   EscrowStatus = "LOCKED"
	EscrowReleased EscrowStatus = "RELEASED"
)

/*
 * 'BetEscrow' tracks a stake that has been debited from a wallet and is at
 * risk in a room's current round. The sum of LOCKED escrow amounts for a
 * room equals the displayed pot. An escrow transitions to RELEASED exactly
 * once, on round settlement or refund.
 */
type BetEscrow struct {
	ID         string       `gorm:"primaryKey;size:36;not null"`
	RoomID     string       `gorm:"size:36;not null;index:idx_bet_escrows_room"`
	UserID     string       `gorm:"size:36;not null;index:idx_bet_escrows_user"`
	Amount     int64        `gorm:"not null"`
	Status     EscrowStatus `gorm:"size:10;not null;default:'LOCKED';index:idx_bet_escrows_status"`
	LockedAt   time.Time    `gorm:"default:CURRENT_TIMESTAMP"`
	ReleasedAt *time.Time   `gorm:"default:null"`
}

func (e *BetEscrow) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}
