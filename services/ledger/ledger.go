// Package ledger is the single write path for Chips: wallet debits and
// credits, bet escrow, transfers and admin adjustments. Every mutation runs
// in a serializable database transaction with a bounded timeout so that
// concurrent settlements and bets for the same wallets cannot race.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"Spielhalle/models/postgres"
)

// Compiled fallbacks for the economy amounts. The authoritative values live
// in the SystemSettings row; these only apply when no row exists yet.
const (
	StartingBalance    int64 = 1000
	DailyAllowance     int64 = 100
	WeeklyBonus        int64 = 500
	TransferMax        int64 = 1000
	TransferDailyLimit int64 = 5000

	txTimeout = 10 * time.Second
)

var (
	ErrInsufficientBalance = errors.New("Nicht genug Guthaben")
	ErrWalletFrozen        = errors.New("Wallet ist eingefroren")
	ErrWalletNotFound      = errors.New("Wallet nicht gefunden")
	ErrInvalidAmount       = errors.New("Betrag muss positiv sein")
	ErrTransferToSelf      = errors.New("Transfer an sich selbst nicht möglich")
	ErrTransferMax         = errors.New("Transfer überschreitet das Maximum")
	ErrTransferDailyLimit  = errors.New("Tägliches Transferlimit erreicht")
)

var serializable = &sql.TxOptions{Isolation: sql.LevelSerializable}

func forUpdate() clause.Locking {
	return clause.Locking{Strength: "UPDATE"}
}

// economySettings are the tunable amounts the ledger enforces.
type economySettings struct {
	StartingBalance    int64
	DailyAllowance     int64
	WeeklyBonus        int64
	TransferMax        int64
	TransferDailyLimit int64
}

func defaultEconomy() economySettings {
	return economySettings{
		StartingBalance:    StartingBalance,
		DailyAllowance:     DailyAllowance,
		WeeklyBonus:        WeeklyBonus,
		TransferMax:        TransferMax,
		TransferDailyLimit: TransferDailyLimit,
	}
}

func economyFromRow(row *postgres.SystemSettings) economySettings {
	if row == nil {
		return defaultEconomy()
	}
	return economySettings{
		StartingBalance:    row.StartingBalance,
		DailyAllowance:     row.DailyAllowanceBase,
		WeeklyBonus:        row.WeeklyBonusAmount,
		TransferMax:        row.TransferMaxAmount,
		TransferDailyLimit: row.TransferDailyLimit,
	}
}

// loadEconomy reads the settings row inside the current transaction so admin
// edits apply without a restart. A missing row falls back to the compiled
// defaults.
func loadEconomy(tx *gorm.DB) economySettings {
	var row postgres.SystemSettings
	if err := tx.First(&row).Error; err != nil {
		return defaultEconomy()
	}
	return economyFromRow(&row)
}

type Service struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) inTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	ctx, cancel := context.WithTimeout(ctx, txTimeout)
	defer cancel()
	return s.db.WithContext(ctx).Transaction(fn, serializable)
}

// EnsureWallet creates the wallet with the starting balance if the user has
// none yet. Safe to call on every login.
func (s *Service) EnsureWallet(ctx context.Context, userID string) error {
	return s.inTx(ctx, func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&postgres.Wallet{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		return tx.Create(&postgres.Wallet{UserID: userID, Balance: loadEconomy(tx).StartingBalance}).Error
	})
}

// Balance reads the current wallet balance.
func (s *Service) Balance(ctx context.Context, userID string) (int64, error) {
	var wallet postgres.Wallet
	err := s.db.WithContext(ctx).First(&wallet, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrWalletNotFound
	}
	if err != nil {
		return 0, err
	}
	return wallet.Balance, nil
}

// lockedWallet fetches a wallet with a row lock inside the transaction and
// rejects frozen wallets for debit paths.
func lockedWallet(tx *gorm.DB, userID string, forDebit bool) (*postgres.Wallet, error) {
	var wallet postgres.Wallet
	err := tx.Clauses(forUpdate()).First(&wallet, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrWalletNotFound
	}
	if err != nil {
		return nil, err
	}
	if forDebit && wallet.FrozenAt != nil {
		return nil, ErrWalletFrozen
	}
	return &wallet, nil
}

func debit(tx *gorm.DB, userID string, amount int64, txType postgres.TransactionType, description string, relatedUserID *string) (int64, error) {
	wallet, err := lockedWallet(tx, userID, true)
	if err != nil {
		return 0, err
	}
	if wallet.Balance < amount {
		return 0, ErrInsufficientBalance
	}
	newBalance := wallet.Balance - amount
	if err := tx.Model(&postgres.Wallet{}).Where("user_id = ?", userID).
		Update("balance", newBalance).Error; err != nil {
		return 0, err
	}
	record := postgres.Transaction{
		Type:          txType,
		Amount:        amount,
		UserID:        userID,
		RelatedUserID: relatedUserID,
		Description:   description,
	}
	if err := tx.Create(&record).Error; err != nil {
		return 0, err
	}
	return newBalance, nil
}

func credit(tx *gorm.DB, userID string, amount int64, txType postgres.TransactionType, description string, relatedUserID *string) (int64, error) {
	wallet, err := lockedWallet(tx, userID, false)
	if err != nil {
		return 0, err
	}
	newBalance := wallet.Balance + amount
	if err := tx.Model(&postgres.Wallet{}).Where("user_id = ?", userID).
		Update("balance", newBalance).Error; err != nil {
		return 0, err
	}
	record := postgres.Transaction{
		Type:          txType,
		Amount:        amount,
		UserID:        userID,
		RelatedUserID: relatedUserID,
		Description:   description,
	}
	if err := tx.Create(&record).Error; err != nil {
		return 0, err
	}
	return newBalance, nil
}

// Debit removes Chips from a wallet, recording the transaction. Fails on
// frozen wallets and insufficient balance without mutating anything.
func (s *Service) Debit(ctx context.Context, userID string, amount int64, txType postgres.TransactionType, description string) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	var newBalance int64
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		var err error
		newBalance, err = debit(tx, userID, amount, txType, description, nil)
		return err
	})
	return newBalance, err
}

// Credit adds Chips to a wallet, recording the transaction. Credits are
// allowed on frozen wallets so settlements and refunds always land.
func (s *Service) Credit(ctx context.Context, userID string, amount int64, txType postgres.TransactionType, description string) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	var newBalance int64
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		var err error
		newBalance, err = credit(tx, userID, amount, txType, description, nil)
		return err
	})
	return newBalance, err
}

// PlaceBetWithEscrow debits the stake and creates a LOCKED escrow for the
// room in one transaction. The aggregate of LOCKED escrows is the room pot.
func (s *Service) PlaceBetWithEscrow(ctx context.Context, roomID, userID string, amount int64, description string) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	var newBalance int64
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		var err error
		newBalance, err = debit(tx, userID, amount, postgres.TxBetPlaced, description, nil)
		if err != nil {
			return err
		}
		return tx.Create(&postgres.BetEscrow{
			RoomID: roomID,
			UserID: userID,
			Amount: amount,
			Status: postgres.EscrowLocked,
		}).Error
	})
	return newBalance, err
}

// RefundBet is the compensating credit for a rejected bet: it returns the
// stake and releases the newest matching LOCKED escrow.
func (s *Service) RefundBet(ctx context.Context, roomID, userID string, amount int64, description string) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	var newBalance int64
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		var err error
		newBalance, err = credit(tx, userID, amount, postgres.TxBetRefund, description, nil)
		if err != nil {
			return err
		}
		var escrow postgres.BetEscrow
		err = tx.Where("room_id = ? AND user_id = ? AND status = ? AND amount = ?",
			roomID, userID, postgres.EscrowLocked, amount).
			Order("locked_at DESC").First(&escrow).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// No escrow was created for this debit, nothing to release.
			return nil
		}
		if err != nil {
			return err
		}
		now := time.Now()
		return tx.Model(&postgres.BetEscrow{}).Where("id = ?", escrow.ID).
			Updates(map[string]any{"status": postgres.EscrowReleased, "released_at": &now}).Error
	})
	return newBalance, err
}

// RoomPot sums the LOCKED escrow amounts of a room.
func (s *Service) RoomPot(ctx context.Context, roomID string) (int64, error) {
	var total sql.NullInt64
	err := s.db.WithContext(ctx).Model(&postgres.BetEscrow{}).
		Where("room_id = ? AND status = ?", roomID, postgres.EscrowLocked).
		Select("SUM(amount)").Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total.Int64, nil
}

// Payout is one settlement credit.
type Payout struct {
	UserID      string
	Amount      int64
	Description string
}

// SettleRound credits all winners and releases every LOCKED escrow of the
// room in a single transaction, so a settlement can never double-pay.
// Returns the new balance per credited user.
func (s *Service) SettleRound(ctx context.Context, roomID string, payouts []Payout) (map[string]int64, error) {
	balances := make(map[string]int64)
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		for _, p := range payouts {
			if p.Amount <= 0 {
				continue
			}
			newBalance, err := credit(tx, p.UserID, p.Amount, postgres.TxGameWin, p.Description, nil)
			if err != nil {
				return err
			}
			balances[p.UserID] = newBalance
		}
		now := time.Now()
		return tx.Model(&postgres.BetEscrow{}).
			Where("room_id = ? AND status = ?", roomID, postgres.EscrowLocked).
			Updates(map[string]any{"status": postgres.EscrowReleased, "released_at": &now}).Error
	})
	if err != nil {
		return nil, err
	}
	return balances, nil
}

// Transfer moves Chips between users, enforcing the per-transfer maximum
// and the sender's rolling daily limit.
func (s *Service) Transfer(ctx context.Context, fromID, toID string, amount int64, description string) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	if fromID == toID {
		return 0, ErrTransferToSelf
	}
	var newBalance int64
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		eco := loadEconomy(tx)
		if amount > eco.TransferMax {
			return ErrTransferMax
		}
		var sentToday sql.NullInt64
		since := time.Now().Add(-24 * time.Hour)
		if err := tx.Model(&postgres.Transaction{}).
			Where("user_id = ? AND type = ? AND created_at > ?", fromID, postgres.TxTransferSent, since).
			Select("SUM(amount)").Scan(&sentToday).Error; err != nil {
			return err
		}
		if sentToday.Int64+amount > eco.TransferDailyLimit {
			return ErrTransferDailyLimit
		}

		var err error
		newBalance, err = debit(tx, fromID, amount, postgres.TxTransferSent, description, &toID)
		if err != nil {
			return err
		}
		_, err = credit(tx, toID, amount, postgres.TxTransferGot, description, &fromID)
		return err
	})
	return newBalance, err
}

// DailyClaim credits the daily allowance, returning the new balance and the
// credited amount. Cooldown bookkeeping lives in redis; the ledger only
// records the credit.
func (s *Service) DailyClaim(ctx context.Context, userID string) (int64, int64, error) {
	var newBalance, amount int64
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		amount = loadEconomy(tx).DailyAllowance
		var err error
		newBalance, err = credit(tx, userID, amount, postgres.TxDailyClaim, "Tägliches Guthaben", nil)
		return err
	})
	return newBalance, amount, err
}

// ClaimWeeklyBonus credits the weekly bonus, returning the new balance and
// the credited amount.
func (s *Service) ClaimWeeklyBonus(ctx context.Context, userID string) (int64, int64, error) {
	var newBalance, amount int64
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		amount = loadEconomy(tx).WeeklyBonus
		var err error
		newBalance, err = credit(tx, userID, amount, postgres.TxWeeklyBonus, "Wöchentlicher Bonus", nil)
		return err
	})
	return newBalance, amount, err
}

// AdminAdjust applies a signed balance correction. Negative adjustments may
// not push the balance below zero.
func (s *Service) AdminAdjust(ctx context.Context, userID string, amount int64, description string) (int64, error) {
	if amount == 0 {
		return 0, ErrInvalidAmount
	}
	var newBalance int64
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		wallet, err := lockedWallet(tx, userID, false)
		if err != nil {
			return err
		}
		if wallet.Balance+amount < 0 {
			return ErrInsufficientBalance
		}
		newBalance = wallet.Balance + amount
		if err := tx.Model(&postgres.Wallet{}).Where("user_id = ?", userID).
			Update("balance", newBalance).Error; err != nil {
			return err
		}
		recorded := amount
		if recorded < 0 {
			recorded = -recorded
		}
		return tx.Create(&postgres.Transaction{
			Type:        postgres.TxAdminAdjustment,
			Amount:      recorded,
			UserID:      userID,
			Description: description,
		}).Error
	})
	return newBalance, err
}

// Freeze stops further debits from a wallet; credits still land.
func (s *Service) Freeze(ctx context.Context, userID string) error {
	now := time.Now()
	return s.inTx(ctx, func(tx *gorm.DB) error {
		result := tx.Model(&postgres.Wallet{}).Where("user_id = ?", userID).Update("frozen_at", &now)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrWalletNotFound
		}
		return nil
	})
}

func (s *Service) Unfreeze(ctx context.Context, userID string) error {
	return s.inTx(ctx, func(tx *gorm.DB) error {
		result := tx.Model(&postgres.Wallet{}).Where("user_id = ?", userID).Update("frozen_at", nil)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrWalletNotFound
		}
		return nil
	})
}

// Transactions lists a user's newest transactions.
func (s *Service) Transactions(ctx context.Context, userID string, limit int) ([]postgres.Transaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var records []postgres.Transaction
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}
