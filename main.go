package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"Spielhalle/config"
	gameconst "Spielhalle/constants/game"
	"Spielhalle/middleware"
	"Spielhalle/monitor"
	"Spielhalle/routes"
	"Spielhalle/services/ledger"
	"Spielhalle/services/reconcile"
	"Spielhalle/services/redis"
	"Spielhalle/services/rooms"
	"Spielhalle/services/settlement"
	"Spielhalle/services/socket_io"
)

func main() {
	godotenv.Load()
	log.Println("Setting up server...")

	if os.Getenv("PROD") == "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	gormDB, err := config.ConnectGORM()
	if err != nil {
		log.Fatalf("Error connecting to PostgreSQL: %v", err)
	}
	log.Println("GORM Connected")

	if os.Getenv("MIGRATE_POSTGRES") == "true" {
		log.Println("Migrating PostgreSQL database...")
		if err := config.MigrateDatabase(gormDB); err != nil {
			log.Printf("Warning: Database migration failed: %v", err)
		} else {
			log.Println("Database migrated successfully")
		}
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatalf("Error reading GORM PostgreSQL instance: %v", err)
	}
	defer sqlDB.Close()

	redisClient, err := config.Connect_redis()
	if err != nil {
		log.Fatalf("Error connecting to Redis: %v", err)
	}
	defer redis.CloseRedis(redisClient)

	// Refund escrows stranded by a previous crash before any new room can
	// bet against them.
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	refunded, err := reconcile.SweepStuckEscrows(ctx, gormDB)
	cancel()
	if err != nil {
		log.Fatalf("Error reconciling stuck escrows: %v", err)
	}
	if refunded > 0 {
		log.Printf("Reconciled %d stuck escrows from previous run", refunded)
	}

	mon := monitor.NewMonitor("spielhalle")
	ledgerService := ledger.New(gormDB)
	orchestrator := settlement.New(ledgerService, mon)
	roomManager := rooms.NewManager()

	r := gin.Default()
	middleware.SetUpMiddleware(r)
	mon.Register(r)

	routes.SetupRoutes(r, gormDB, redisClient, ledgerService, roomManager)

	sio := &socket_io.MySocketServer{}
	sio.Start(r, gormDB, redisClient, roomManager, orchestrator, mon)

	// Periodic sweep of empty and long-ended rooms.
	go func() {
		ticker := time.NewTicker(gameconst.CleanupIntervalSec * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			roomManager.Cleanup(gameconst.EndedRoomMaxAgeMin * time.Minute)
			mon.SetActiveRooms(roomManager.RoomCount())
		}
	}()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Error starting server: %v", err)
	}
}
