package routes

import (
	"net/http"

	"imposter/handlers"
	"imposter/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func SetupRoutes(
	router *gin.Engine,
	gameHandler *handlers.GameHandler,
	hub *services.Hub,
	logger *zap.Logger,
) {
	api := router.Group("/api")
	{
		rooms := api.Group("/rooms")
		{
			rooms.GET("/:code", gameHandler.GetRoom)
		}
	}

	// All game actions flow over one websocket per client; the socket
	// binds itself to a room with its first create/join/reconnect
	// message.
	router.GET("/ws", func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Error("websocket upgrade failed", zap.Error(err))
			return
		}
		hub.RegisterClient(conn)
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
