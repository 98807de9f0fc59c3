package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"Spielhalle/middleware"
	models "Spielhalle/models/postgres"
	"Spielhalle/services/ledger"
	"Spielhalle/services/redis"
)

// GetBalance returns the session user's current Chips balance.
func GetBalance(lg *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.SessionUserID(c)

		balance, err := lg.Balance(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error reading balance"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"balance": balance})
	}
}

// GetTransactions lists the session user's newest ledger entries.
func GetTransactions(lg *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.SessionUserID(c)
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

		records, err := lg.Transactions(c.Request.Context(), userID, limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error reading transactions"})
			return
		}

		entries := make([]gin.H, len(records))
		for i, tx := range records {
			entries[i] = gin.H{
				"id":          tx.ID,
				"type":        tx.Type,
				"amount":      tx.Amount,
				"description": tx.Description,
				"created_at":  tx.CreatedAt,
			}
		}
		c.JSON(http.StatusOK, gin.H{"transactions": entries})
	}
}

// ClaimDaily credits the daily allowance once per 24 hours. The cooldown
// lives in redis (SetNX); if the ledger credit fails after the cooldown was
// taken, the cooldown is released again so the user can retry.
func ClaimDaily(lg *ledger.Service, redisClient *redis.RedisClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.SessionUserID(c)

		ok, err := redisClient.TryDailyClaim(userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error checking claim cooldown"})
			return
		}
		if !ok {
			ttl, _ := redisClient.DailyClaimTTL(userID)
			c.JSON(http.StatusConflict, gin.H{
				"error":         "Tägliches Guthaben bereits abgeholt",
				"retry_in_secs": int(ttl.Seconds()),
			})
			return
		}

		newBalance, amount, err := lg.DailyClaim(c.Request.Context(), userID)
		if err != nil {
			if relErr := redisClient.ReleaseDailyClaim(userID); relErr != nil {
				log.Printf("[CLAIM-ERROR] could not release daily cooldown for %s: %v", userID, relErr)
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error crediting allowance"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"amount":  amount,
			"balance": newBalance,
		})
	}
}

// ClaimWeekly credits the weekly bonus, same cooldown pattern as ClaimDaily.
func ClaimWeekly(lg *ledger.Service, redisClient *redis.RedisClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.SessionUserID(c)

		ok, err := redisClient.TryWeeklyBonus(userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error checking claim cooldown"})
			return
		}
		if !ok {
			c.JSON(http.StatusConflict, gin.H{"error": "Wöchentlicher Bonus bereits abgeholt"})
			return
		}

		newBalance, amount, err := lg.ClaimWeeklyBonus(c.Request.Context(), userID)
		if err != nil {
			if relErr := redisClient.ReleaseWeeklyBonus(userID); relErr != nil {
				log.Printf("[CLAIM-ERROR] could not release weekly cooldown for %s: %v", userID, relErr)
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error crediting bonus"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"amount":  amount,
			"balance": newBalance,
		})
	}
}

type transferRequest struct {
	ToUsername string `json:"to_username" binding:"required"`
	Amount     int64  `json:"amount" binding:"required"`
	Message    string `json:"message"`
}

// Transfer moves Chips to another user, within the per-transfer and daily
// limits enforced by the ledger.
func Transfer(db *gorm.DB, lg *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.SessionUserID(c)

		var req transferRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		var recipient models.User
		if err := db.Where("username = ?", req.ToUsername).First(&recipient).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Empfänger nicht gefunden"})
			return
		}

		description := "Transfer an " + recipient.Username
		if req.Message != "" {
			description = req.Message
		}

		newBalance, err := lg.Transfer(c.Request.Context(), userID, recipient.ID, req.Amount, description)
		if err != nil {
			status := http.StatusInternalServerError
			switch {
			case errors.Is(err, ledger.ErrInsufficientBalance),
				errors.Is(err, ledger.ErrInvalidAmount),
				errors.Is(err, ledger.ErrTransferToSelf),
				errors.Is(err, ledger.ErrTransferMax),
				errors.Is(err, ledger.ErrTransferDailyLimit):
				status = http.StatusBadRequest
			case errors.Is(err, ledger.ErrWalletFrozen):
				status = http.StatusForbidden
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"balance": newBalance})
	}
}
