package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"Spielhalle/middleware"
	models "Spielhalle/models/postgres"
	"Spielhalle/services/ledger"
)

func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

// SignUp creates the user plus its wallet with the starting balance.
func SignUp(db *gorm.DB, lg *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		username := strings.TrimSpace(c.PostForm("username"))
		displayName := strings.TrimSpace(c.PostForm("display_name"))
		password := c.PostForm("password")

		// Minimum input sanitizing
		if username == "" || password == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Parameters can't be empty"})
			return
		}
		if displayName == "" {
			displayName = username
		}

		var count int64
		if err := db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		if count > 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "Username already taken"})
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error hashing password"})
			return
		}

		user := models.User{
			Username:     username,
			DisplayName:  displayName,
			PasswordHash: string(hash),
		}
		if err := db.Create(&user).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating user"})
			return
		}

		if err := lg.EnsureWallet(c.Request.Context(), user.ID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating wallet"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"user_id": user.ID, "message": "User created successfully"})
	}
}

// Login verifies the credentials, opens the cookie session and hands out
// the socket token used for the realtime connection.
func Login(db *gorm.DB, lg *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		username := strings.TrimSpace(c.PostForm("username"))
		password := c.PostForm("password")

		if username == "" || password == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Parameters can't be empty"})
			return
		}

		var user models.User
		if err := db.Where("username = ?", username).First(&user).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password!"})
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password!"})
			return
		}

		// Older accounts might predate the wallet table.
		if err := lg.EnsureWallet(c.Request.Context(), user.ID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error preparing wallet"})
			return
		}

		session.Set(middleware.UserIDKey, user.ID)
		if err := session.Save(); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "No session!"})
			return
		}

		token, err := middleware.IssueSocketToken(user.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error issuing token"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"user_id":      user.ID,
			"display_name": user.DisplayName,
			"role":         user.Role,
			"socket_token": token,
		})
	}
}

// Logout from server, deletes the session associated with the UserID key
func Logout(c *gin.Context) {
	session := sessions.Default(c)
	user := session.Get(middleware.UserIDKey)
	// There is no session for the user, won't delete nothing
	if user == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session token"})
		return
	}

	session.Delete(middleware.UserIDKey)
	if err := session.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out"})
}

// Me returns the profile of the session user.
func Me(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.SessionUserID(c)

		var user models.User
		if err := db.Preload("Wallet").First(&user, "id = ?", userID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"user_id":      user.ID,
			"username":     user.Username,
			"display_name": user.DisplayName,
			"role":         user.Role,
			"member_since": user.MemberSince,
			"balance":      user.Wallet.Balance,
			"frozen":       user.Wallet.FrozenAt != nil,
		})
	}
}
