package socket_io

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/engine.io/v2/log"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io/v2/socket"
	"gorm.io/gorm"

	"Spielhalle/monitor"
	"Spielhalle/services/redis"
	"Spielhalle/services/rooms"
	"Spielhalle/services/settlement"
	"Spielhalle/services/socket_io/handlers"
	socketio_types "Spielhalle/services/socket_io/types"
	socketio_utils "Spielhalle/services/socket_io/utils"
)

type MySocketServer socketio_types.SocketServer

// instrument counts a game action and records its processing latency around
// the wrapped handler.
func instrument(mon *monitor.Monitor, handler func(args ...interface{})) func(args ...interface{}) {
	return func(args ...interface{}) {
		mon.IncActionsReceived()
		start := time.Now()
		handler(args...)
		mon.ObserveActionLatency(time.Since(start))
	}
}

func (sio *MySocketServer) Start(router *gin.Engine, db *gorm.DB, redisClient *redis.RedisClient,
	mgr *rooms.Manager, orch *settlement.Orchestrator, mon *monitor.Monitor) {
	log.DEBUG = os.Getenv("VERBOSE_SOCKETS") == "true"
	c := socket.DefaultServerOptions()
	c.SetServeClient(true)
	// NOTE: higher ping interval and timeout to 1) reduce network load and
	// 2) support slower networks
	c.SetPingInterval(5 * time.Second)
	c.SetPingTimeout(3 * time.Second)
	c.SetMaxHttpBufferSize(1000000)
	c.SetConnectTimeout(10 * time.Second)
	c.SetTransports(types.NewSet("polling", "websocket"))
	c.SetCors(&types.Cors{
		Origin:      "*",
		Credentials: true,
	})

	sio.UserConnections = make(map[string]*socket.Socket)

	sio.Sio_server = socket.NewServer(nil, nil)
	sio.Sio_server.On("connection", func(clients ...interface{}) {
		client := clients[0].(*socket.Socket)

		// Check if the client is authenticated
		success, userID, displayName := socketio_utils.VerifyUserConnection(client, db)
		if !success {
			client.Disconnect(true)
			return
		}

		server := (*socketio_types.SocketServer)(sio)
		server.AddConnection(userID, client)
		handlers.HandleConnected(mgr, redisClient, mon, userID, string(client.Id()), server)

		fmt.Println("An individual just connected!: ", displayName)

		// Room lifecycle
		client.On("room:create", handlers.HandleCreateRoom(mgr, mon, client, userID, displayName, server))
		client.On("room:join", handlers.HandleJoinRoom(mgr, client, userID, displayName, server))
		client.On("room:leave", handlers.HandleLeaveRoom(mgr, mon, client, userID, server))
		client.On("room:kick", handlers.HandleKickPlayer(mgr, mon, client, userID, server))
		client.On("room:list", handlers.HandleListRooms(mgr, client))
		client.On("room:toggle-ready", handlers.HandleToggleReady(mgr, client, userID, server))
		client.On("room:start", handlers.HandleStartGame(mgr, orch, mon, client, userID, server))
		client.On("request-state", handlers.HandleRequestState(mgr, client, userID))

		// Chat
		client.On("chat:message", handlers.HandleChatMessage(mgr, client, userID, displayName, server))

		// Kniffel
		client.On("game:roll-dice", instrument(mon, handlers.HandleRollDice(mgr, orch, client, userID, server)))
		client.On("game:hold-dice", instrument(mon, handlers.HandleHoldDice(mgr, orch, client, userID, server)))
		client.On("game:choose-category", instrument(mon, handlers.HandleChooseCategory(mgr, orch, client, userID, server)))

		// Blackjack
		client.On("blackjack:place-bet", instrument(mon, handlers.HandleBlackjackPlaceBet(mgr, orch, client, userID, server)))
		client.On("blackjack:action", instrument(mon, handlers.HandleBlackjackAction(mgr, orch, client, userID, server)))
		client.On("blackjack:next-round", instrument(mon, handlers.HandleBlackjackNextRound(mgr, orch, client, userID, server)))

		// Roulette
		client.On("roulette:place-bet", instrument(mon, handlers.HandleRoulettePlaceBet(mgr, orch, client, userID, displayName, server)))
		client.On("roulette:remove-bet", instrument(mon, handlers.HandleRouletteRemoveBet(mgr, orch, client, userID, server)))
		client.On("roulette:spin", instrument(mon, handlers.HandleRouletteSpin(mgr, orch, client, userID, server)))

		// NOTE: will remove sio connection from map
		client.On("disconnecting", handlers.HandleDisconnecting(mgr, redisClient, mon, userID, server))
	})

	router.POST("/socket.io/*f", gin.WrapH(sio.Sio_server.ServeHandler(c)))
	router.GET("/socket.io/*f", gin.WrapH(sio.Sio_server.ServeHandler(c)))

	SignalC := make(chan os.Signal, 1)

	signal.Notify(SignalC, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		for s := range SignalC {
			switch s {
			case syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT:
				sio.Sio_server.Close(nil)
				os.Exit(0)
			}
		}
	}()

	fmt.Println("Socket server started")
}
