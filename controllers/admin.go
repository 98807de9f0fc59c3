package controllers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"Spielhalle/middleware"
	models "Spielhalle/models/postgres"
	"Spielhalle/services/ledger"
)

type adjustRequest struct {
	Username string `json:"username" binding:"required"`
	Amount   int64  `json:"amount" binding:"required"`
	Reason   string `json:"reason" binding:"required"`
}

func lookupUser(db *gorm.DB, username string) (*models.User, error) {
	var user models.User
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// AdminAdjustBalance applies a signed manual correction to a user's wallet.
// Every adjustment is logged with the acting admin for the audit trail.
func AdminAdjustBalance(db *gorm.DB, lg *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		adminID := middleware.SessionUserID(c)

		var req adjustRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		user, err := lookupUser(db, req.Username)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}

		newBalance, err := lg.AdminAdjust(c.Request.Context(), user.ID, req.Amount, req.Reason)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, ledger.ErrInvalidAmount) || errors.Is(err, ledger.ErrInsufficientBalance) {
				status = http.StatusBadRequest
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		log.Printf("[ADMIN] %s adjusted %s by %d (%s)", adminID, user.ID, req.Amount, req.Reason)
		c.JSON(http.StatusOK, gin.H{"user_id": user.ID, "balance": newBalance})
	}
}

// AdminFreezeWallet stops further debits from a user's wallet.
func AdminFreezeWallet(db *gorm.DB, lg *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		adminID := middleware.SessionUserID(c)
		username := c.Param("username")

		user, err := lookupUser(db, username)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}

		if err := lg.Freeze(c.Request.Context(), user.ID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		log.Printf("[ADMIN] %s froze wallet of %s", adminID, user.ID)
		c.JSON(http.StatusOK, gin.H{"message": "Wallet frozen"})
	}
}

// AdminUnfreezeWallet lifts a freeze again.
func AdminUnfreezeWallet(db *gorm.DB, lg *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		adminID := middleware.SessionUserID(c)
		username := c.Param("username")

		user, err := lookupUser(db, username)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}

		if err := lg.Unfreeze(c.Request.Context(), user.ID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		log.Printf("[ADMIN] %s unfroze wallet of %s", adminID, user.ID)
		c.JSON(http.StatusOK, gin.H{"message": "Wallet unfrozen"})
	}
}

// AdminUserTransactions lists any user's ledger history.
func AdminUserTransactions(db *gorm.DB, lg *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		username := c.Param("username")

		user, err := lookupUser(db, username)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}

		records, err := lg.Transactions(c.Request.Context(), user.ID, 100)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error reading transactions"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": user.ID, "transactions": records})
	}
}

// AdminGetSettings returns the singleton economic configuration row.
func AdminGetSettings(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var settings models.SystemSettings
		if err := db.First(&settings).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error reading settings"})
			return
		}
		c.JSON(http.StatusOK, settings)
	}
}

type settingsRequest struct {
	CurrencyName        *string `json:"currency_name"`
	StartingBalance     *int64  `json:"starting_balance"`
	DailyAllowanceBase  *int64  `json:"daily_allowance_base"`
	WeeklyBonusAmount   *int64  `json:"weekly_bonus_amount"`
	TransferMaxAmount   *int64  `json:"transfer_max_amount"`
	TransferDailyLimit  *int64  `json:"transfer_daily_limit"`
	AFKGracePeriodSec   *int    `json:"afk_grace_period_sec"`
	AlertTransferLimit  *int64  `json:"alert_transfer_limit"`
	AlertBalanceDropPct *int    `json:"alert_balance_drop_pct"`
}

// AdminUpdateSettings patches the fields that were provided.
func AdminUpdateSettings(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req settingsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		var settings models.SystemSettings
		if err := db.First(&settings).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error reading settings"})
			return
		}

		updates := map[string]any{}
		if req.CurrencyName != nil {
			updates["currency_name"] = *req.CurrencyName
		}
		if req.StartingBalance != nil {
			updates["starting_balance"] = *req.StartingBalance
		}
		if req.DailyAllowanceBase != nil {
			updates["daily_allowance_base"] = *req.DailyAllowanceBase
		}
		if req.WeeklyBonusAmount != nil {
			updates["weekly_bonus_amount"] = *req.WeeklyBonusAmount
		}
		if req.TransferMaxAmount != nil {
			updates["transfer_max_amount"] = *req.TransferMaxAmount
		}
		if req.TransferDailyLimit != nil {
			updates["transfer_daily_limit"] = *req.TransferDailyLimit
		}
		if req.AFKGracePeriodSec != nil {
			updates["afk_grace_period_sec"] = *req.AFKGracePeriodSec
		}
		if req.AlertTransferLimit != nil {
			updates["alert_transfer_limit"] = *req.AlertTransferLimit
		}
		if req.AlertBalanceDropPct != nil {
			updates["alert_balance_drop_pct"] = *req.AlertBalanceDropPct
		}
		if len(updates) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to update"})
			return
		}

		if err := db.Model(&settings).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating settings"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Settings updated"})
	}
}
