package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"knowflow-agent-backend/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func (ctl *ChatController) GetChatHistory(c *gin.Context) {
	sessions, err := ctl.store.GetSessions(c.Request.Context())
	if err != nil {
		slog.Error(ErrGetSessions.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrGetSessions.Error(),
		})
		return
	}

	var resp response.GetSessionsResponse
	for _, s := range sessions {
		resp.Sessions = append(resp.Sessions, response.SessionResponse{
			ID:        s.SessionID,
			Summary:   s.Summary,
			CreatedAt: s.CreatedAt,
			UpdatedAt: s.UpdatedAt,
		})
	}

	c.JSON(http.StatusOK, response.Response{
		Data: resp,
	})
}

func (ctl *ChatController) GetSession(c *gin.Context) {
	sessionID := c.Param("id")
	session, err := ctl.store.GetSession(c.Request.Context(), sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, response.Response{
				Msg: ErrSessionNotFound.Error(),
			})
			return
		}
		slog.Error(ErrGetSessionMessages.Error(), "session_id", sessionID, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrGetSessionMessages.Error(),
		})
		return
	}

	messages, err := ctl.store.GetMessagesBySessionID(c.Request.Context(), sessionID)
	if err != nil {
		slog.Error(ErrGetSessionMessages.Error(), "session_id", sessionID, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrGetSessionMessages.Error(),
		})
		return
	}

	resp := response.GetSessionResponse{
		Session: response.SessionResponse{
			ID:        session.SessionID,
			Summary:   session.Summary,
			CreatedAt: session.CreatedAt,
			UpdatedAt: session.UpdatedAt,
		},
	}
	for _, m := range messages {
		resp.Messages = append(resp.Messages, response.MessageResponse{
			CreatedAt: m.CreatedAt,
			Role:      m.Role,
			Content:   m.Content,
		})
	}

	c.JSON(http.StatusOK, response.Response{
		Data: resp,
	})
}

func (ctl *ChatController) DeleteSession(c *gin.Context) {
	sessionID := c.Param("id")
	if err := ctl.store.DeleteSession(c.Request.Context(), sessionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, response.Response{
				Msg: ErrSessionNotFound.Error(),
			})
			return
		}
		slog.Error(ErrDeleteSession.Error(), "session_id", sessionID, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrDeleteSession.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response.Response{})
}

// ExportSession 以 JSON 附件的形式导出会话内的全部消息
func (ctl *ChatController) ExportSession(c *gin.Context) {
	sessionID := c.Param("id")
	messages, err := ctl.store.GetMessagesBySessionID(c.Request.Context(), sessionID)
	if err != nil {
		slog.Error(ErrExportSession.Error(), "session_id", sessionID, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrExportSession.Error(),
		})
		return
	}
	if len(messages) == 0 {
		c.AbortWithStatusJSON(http.StatusNotFound, response.Response{
			Msg: ErrSessionNotFound.Error(),
		})
		return
	}

	var export []response.MessageResponse
	for _, m := range messages {
		export = append(export, response.MessageResponse{
			CreatedAt: m.CreatedAt,
			Role:      m.Role,
			Content:   m.Content,
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		slog.Error(ErrExportSession.Error(), "session_id", sessionID, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrExportSession.Error(),
		})
		return
	}

	filename := fmt.Sprintf("chat_session_%s.json", sessionID)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "application/json", data)
}
