// Package reconcile repairs money state after a crash: escrows left LOCKED
// by a process that died between debit and settlement are refunded on
// startup, before any new room can exist.
package reconcile

import (
	"context"
	"database/sql"
	"log"
	"time"

	"gorm.io/gorm"

	"Spielhalle/models/postgres"
)

var serializable = &sql.TxOptions{Isolation: sql.LevelSerializable}

// SweepStuckEscrows refunds every LOCKED escrow. Rooms live only in process
// memory, so at startup any LOCKED escrow belongs to a round that can never
// settle. Each escrow is refunded in its own transaction, guarded by the
// status flip so a concurrent or repeated sweep cannot double-refund.
// Returns the number of escrows refunded.
func SweepStuckEscrows(ctx context.Context, db *gorm.DB) (int, error) {
	var stuck []postgres.BetEscrow
	if err := db.WithContext(ctx).
		Where("status = ?", postgres.EscrowLocked).
		Find(&stuck).Error; err != nil {
		return 0, err
	}
	if len(stuck) == 0 {
		return 0, nil
	}

	log.Printf("[RECONCILE] found %d stuck escrows, refunding", len(stuck))

	refunded := 0
	for _, escrow := range stuck {
		err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			now := time.Now()
			result := tx.Model(&postgres.BetEscrow{}).
				Where("id = ? AND status = ?", escrow.ID, postgres.EscrowLocked).
				Updates(map[string]any{"status": postgres.EscrowReleased, "released_at": &now})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				// Already handled elsewhere.
				return nil
			}

			if err := tx.Model(&postgres.Wallet{}).
				Where("user_id = ?", escrow.UserID).
				Update("balance", gorm.Expr("balance + ?", escrow.Amount)).Error; err != nil {
				return err
			}
			return tx.Create(&postgres.Transaction{
				Type:        postgres.TxBetRefund,
				Amount:      escrow.Amount,
				UserID:      escrow.UserID,
				Description: "Einsatz zurück (Serverneustart)",
			}).Error
		}, serializable)
		if err != nil {
			log.Printf("[RECONCILE-ERROR] escrow %s user %s: %v", escrow.ID, escrow.UserID, err)
			continue
		}
		refunded++
	}

	log.Printf("[RECONCILE] refunded %d escrows", refunded)
	return refunded, nil
}
