package routes

import (
	"debatebot/controllers"
	"debatebot/store"
	"debatebot/websocket"

	"github.com/gin-gonic/gin"
)

// SetupDebateRoutes wires the debate endpoints and the spectator feed
func SetupDebateRoutes(router *gin.Engine, dc *controllers.DebateController, hub *websocket.Hub, st store.SessionStore) {
	router.GET("/healthz", dc.Healthz)

	api := router.Group("/api/debate")
	{
		api.POST("/start", dc.StartDebate)
		api.POST("/turn", dc.TakeTurn)
	}

	router.GET("/ws/debate/:sessionId", websocket.SpectateHandler(hub, st))
}
