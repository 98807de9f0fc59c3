package postgres

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

/*
 * 'SystemSettings' is the singleton economic configuration row. Seeded once
 * on migration with the platform defaults and editable by admins afterwards;
 * the seed never overwrites admin changes.
 */
type SystemSettings struct {
	ID                  string         `gorm:"primaryKey;size:36;not null"`
	CurrencyName        string         `gorm:"size:50;not null;default:'Chips'"`
	StartingBalance     int64          `gorm:"not null;default:1000"`
	DailyAllowanceBase  int64          `gorm:"not null;default:100"`
	WeeklyBonusAmount   int64          `gorm:"not null;default:500"`
	TransferMaxAmount   int64          `gorm:"not null;default:1000"`
	TransferDailyLimit  int64          `gorm:"not null;default:5000"`
	DefaultBetPresets   datatypes.JSON `gorm:"type:jsonb"`
	DefaultPayoutRatios datatypes.JSON `gorm:"type:jsonb"`
	AFKGracePeriodSec   int            `gorm:"not null;default:30"`
	AlertTransferLimit  int64          `gorm:"not null;default:2000"`
	AlertBalanceDropPct int            `gorm:"not null;default:50"`
	UpdatedAt           time.Time
}

func (s *SystemSettings) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// DefaultBetPresetsJSON returns the stake amounts offered when creating a
// bet room.
func DefaultBetPresetsJSON() datatypes.JSON {
	return datatypes.JSON(`[50,100,250,500]`)
}

// DefaultPayoutRatiosJSON returns the standard 60/30/10 split used when a
// bet room does not configure its own ratios.
func DefaultPayoutRatiosJSON() datatypes.JSON {
	return datatypes.JSON(`[{"position":1,"percentage":60},{"position":2,"percentage":30},{"position":3,"percentage":10}]`)
}
