package router

import (
	"knowflow-agent-backend/controller"
	"knowflow-agent-backend/middleware"

	"github.com/gin-gonic/gin"
)

func Register(chatCtl *controller.ChatController, mcpCtl *controller.MCPController) *gin.Engine {
	r := gin.Default()
	r.Use(middleware.CORSMiddleware())

	api := r.Group("/api")
	{
		api.GET("/health", controller.Health)

		api.GET("/stream", chatCtl.Stream)
		api.GET("/stream/ws", chatCtl.StreamWS)

		chat := api.Group("/chat")
		{
			chat.GET("/history", chatCtl.GetChatHistory)
			chat.GET("/session/:id", chatCtl.GetSession)
			chat.DELETE("/session/:id", chatCtl.DeleteSession)
			chat.GET("/export/:id", chatCtl.ExportSession)
		}

		mcp := api.Group("/mcp")
		{
			mcp.POST("/servers", mcpCtl.CreateServer)
			mcp.GET("/servers", mcpCtl.ListServers)
			mcp.GET("/servers/:id", mcpCtl.GetServer)
			mcp.PUT("/servers/:id", mcpCtl.UpdateServer)
			mcp.DELETE("/servers/:id", mcpCtl.DeleteServer)
			mcp.POST("/servers/:id/refresh-tools", mcpCtl.RefreshTools)
			mcp.GET("/tools", mcpCtl.ListTools)
		}
	}

	return r
}
