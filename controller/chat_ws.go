package controller

import (
	"context"
	"log/slog"
	"net/http"

	"knowflow-agent-backend/request"
	"knowflow-agent-backend/response"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var streamUpgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// StreamWS 与 Stream 相同的事件流，改走 WebSocket：
// 每个事件一条 JSON 文本消息，终止事件后正常关闭连接。
func (ctl *ChatController) StreamWS(c *gin.Context) {
	var req request.StreamRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		slog.Error(ErrParseRequest.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, response.Response{
			Msg: ErrParseRequest.Error(),
		})
		return
	}

	conn, err := streamUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Error(ErrUpgradeConnection.Error(), "err", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// 丢弃客户端消息，读出错即视为对端离开
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// 写失败后继续耗尽通道，让流水线完成持久化
	writeFailed := false
	for event := range ctl.pipeline.Run(ctx, req) {
		if writeFailed {
			continue
		}
		if err := conn.WriteJSON(event); err != nil {
			slog.Warn("Failed to write stream event", "err", err)
			writeFailed = true
			cancel()
		}
	}

	if !writeFailed {
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}
}
