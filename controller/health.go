package controller

import (
	"net/http"

	"knowflow-agent-backend/response"

	"github.com/gin-gonic/gin"
)

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, response.Response{
		Data: gin.H{"status": "ok"},
	})
}
