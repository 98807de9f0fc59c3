package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"Spielhalle/controllers"
	"Spielhalle/middleware"
	"Spielhalle/services/ledger"
	"Spielhalle/services/redis"
	"Spielhalle/services/rooms"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, db *gorm.DB, redisClient *redis.RedisClient,
	lg *ledger.Service, manager *rooms.Manager) {
	api := router.Group("/")

	api.GET("/ping", controllers.Ping)

	api.POST("/signup", controllers.SignUp(db, lg))
	api.POST("/login", controllers.Login(db, lg))

	api.GET("/rooms", controllers.ListRooms(manager))

	authentication := api.Group("/auth")
	authentication.Use(middleware.AuthRequired)
	{
		authentication.DELETE("/logout", controllers.Logout)
		authentication.GET("/me", controllers.Me(db))

		authentication.GET("/wallet/balance", controllers.GetBalance(lg))
		authentication.GET("/wallet/transactions", controllers.GetTransactions(lg))
		authentication.POST("/wallet/claim-daily", controllers.ClaimDaily(lg, redisClient))
		authentication.POST("/wallet/claim-weekly", controllers.ClaimWeekly(lg, redisClient))
		authentication.POST("/wallet/transfer", controllers.Transfer(db, lg))
	}

	admin := authentication.Group("/admin")
	admin.Use(middleware.AdminRequired(db))
	{
		admin.POST("/adjust", controllers.AdminAdjustBalance(db, lg))
		admin.POST("/freeze/:username", controllers.AdminFreezeWallet(db, lg))
		admin.POST("/unfreeze/:username", controllers.AdminUnfreezeWallet(db, lg))
		admin.GET("/transactions/:username", controllers.AdminUserTransactions(db, lg))
		admin.GET("/settings", controllers.AdminGetSettings(db))
		admin.PATCH("/settings", controllers.AdminUpdateSettings(db))
	}
}
