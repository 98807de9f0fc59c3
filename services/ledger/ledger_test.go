package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"Spielhalle/models/postgres"
)

func TestEconomyFallsBackToCompiledDefaults(t *testing.T) {
	eco := economyFromRow(nil)

	assert.Equal(t, StartingBalance, eco.StartingBalance)
	assert.Equal(t, DailyAllowance, eco.DailyAllowance)
	assert.Equal(t, WeeklyBonus, eco.WeeklyBonus)
	assert.Equal(t, TransferMax, eco.TransferMax)
	assert.Equal(t, TransferDailyLimit, eco.TransferDailyLimit)
}

func TestEconomyTracksSettingsRow(t *testing.T) {
	row := &postgres.SystemSettings{
		StartingBalance:    2000,
		DailyAllowanceBase: 250,
		WeeklyBonusAmount:  750,
		TransferMaxAmount:  300,
		TransferDailyLimit: 900,
	}

	eco := economyFromRow(row)
	assert.Equal(t, economySettings{
		StartingBalance:    2000,
		DailyAllowance:     250,
		WeeklyBonus:        750,
		TransferMax:        300,
		TransferDailyLimit: 900,
	}, eco)
}
