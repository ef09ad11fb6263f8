package controller

import (
	"log/slog"

	"knowflow-agent-backend/dao"
	"knowflow-agent-backend/request"
	"knowflow-agent-backend/service/chat"
	"knowflow-agent-backend/utils"

	"github.com/gin-gonic/gin"
)

type ChatController struct {
	store    *dao.Store
	pipeline *chat.Pipeline
}

func NewChatController(store *dao.Store, pipeline *chat.Pipeline) *ChatController {
	return &ChatController{
		store:    store,
		pipeline: pipeline,
	}
}

// Stream 流式问答入口，以 SSE 帧返回事件流
func (ctl *ChatController) Stream(c *gin.Context) {
	utils.SetSSEHeaders(c)

	var req request.StreamRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		slog.Error(ErrParseRequest.Error(), "err", err)
		utils.SendSSEData(c, chat.ErrorEvent(ErrParseRequest.Error()))
		utils.SendSSEData(c, chat.DoneEvent(req.SessionID))
		return
	}

	// 客户端断开时 request context 取消，流水线随之停止生成
	for event := range ctl.pipeline.Run(c.Request.Context(), req) {
		utils.SendSSEData(c, event)
	}
}
