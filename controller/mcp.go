package controller

import (
	"errors"
	"log/slog"
	"net/http"

	"knowflow-agent-backend/dao"
	"knowflow-agent-backend/model"
	"knowflow-agent-backend/request"
	"knowflow-agent-backend/response"
	"knowflow-agent-backend/service/registry"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MCPController struct {
	store *dao.Store
	sync  *registry.Synchronizer
}

func NewMCPController(store *dao.Store, sync *registry.Synchronizer) *MCPController {
	return &MCPController{
		store: store,
		sync:  sync,
	}
}

// CreateServer 注册一个工具服务器并立即同步其工具列表。
// 同步失败不影响注册本身，稍后可通过 refresh-tools 重试。
func (ctl *MCPController) CreateServer(c *gin.Context) {
	var req request.MCPServerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error(ErrParseRequest.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, response.Response{
			Msg: ErrParseRequest.Error(),
		})
		return
	}

	server := model.MCPServer{
		ID:          uuid.New().String(),
		Name:        req.Name,
		URL:         req.URL,
		Description: req.Description,
		AuthType:    normalizeAuthType(req.AuthType),
		AuthValue:   req.AuthValue,
	}
	if err := ctl.store.CreateMCPServer(c.Request.Context(), &server); err != nil {
		slog.Error(ErrCreateMCPServer.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrCreateMCPServer.Error(),
		})
		return
	}

	if err := ctl.sync.Sync(c.Request.Context(), &server); err != nil {
		slog.Warn("Failed to sync tools for new mcp server",
			"server_id", server.ID,
			"err", err)
	}

	c.JSON(http.StatusCreated, response.Response{
		Data: mcpServerResponse(&server),
	})
}

func (ctl *MCPController) ListServers(c *gin.Context) {
	servers, err := ctl.store.GetMCPServers(c.Request.Context())
	if err != nil {
		slog.Error(ErrGetMCPServers.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrGetMCPServers.Error(),
		})
		return
	}

	var resp response.GetMCPServersResponse
	for i := range servers {
		resp.Servers = append(resp.Servers, mcpServerResponse(&servers[i]))
	}

	c.JSON(http.StatusOK, response.Response{
		Data: resp,
	})
}

func (ctl *MCPController) GetServer(c *gin.Context) {
	serverID := c.Param("id")
	server, err := ctl.store.GetMCPServer(c.Request.Context(), serverID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, response.Response{
				Msg: ErrMCPServerNotFound.Error(),
			})
			return
		}
		slog.Error(ErrGetMCPServers.Error(), "server_id", serverID, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrGetMCPServers.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response.Response{
		Data: mcpServerResponse(server),
	})
}

func (ctl *MCPController) UpdateServer(c *gin.Context) {
	var req request.MCPServerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error(ErrParseRequest.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, response.Response{
			Msg: ErrParseRequest.Error(),
		})
		return
	}

	server := model.MCPServer{
		ID:          c.Param("id"),
		Name:        req.Name,
		URL:         req.URL,
		Description: req.Description,
		AuthType:    normalizeAuthType(req.AuthType),
		AuthValue:   req.AuthValue,
	}
	if err := ctl.store.UpdateMCPServer(c.Request.Context(), &server); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, response.Response{
				Msg: ErrMCPServerNotFound.Error(),
			})
			return
		}
		slog.Error(ErrUpdateMCPServer.Error(), "server_id", server.ID, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrUpdateMCPServer.Error(),
		})
		return
	}

	if err := ctl.sync.Sync(c.Request.Context(), &server); err != nil {
		slog.Warn("Failed to sync tools for updated mcp server",
			"server_id", server.ID,
			"err", err)
	}

	c.JSON(http.StatusOK, response.Response{})
}

func (ctl *MCPController) DeleteServer(c *gin.Context) {
	serverID := c.Param("id")
	if err := ctl.store.DeleteMCPServer(c.Request.Context(), serverID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, response.Response{
				Msg: ErrMCPServerNotFound.Error(),
			})
			return
		}
		slog.Error(ErrDeleteMCPServer.Error(), "server_id", serverID, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrDeleteMCPServer.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response.Response{})
}

// RefreshTools 手动触发一次工具同步
func (ctl *MCPController) RefreshTools(c *gin.Context) {
	serverID := c.Param("id")
	server, err := ctl.store.GetMCPServer(c.Request.Context(), serverID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, response.Response{
				Msg: ErrMCPServerNotFound.Error(),
			})
			return
		}
		slog.Error(ErrRefreshMCPTools.Error(), "server_id", serverID, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrRefreshMCPTools.Error(),
		})
		return
	}

	if err := ctl.sync.Sync(c.Request.Context(), server); err != nil {
		slog.Error(ErrRefreshMCPTools.Error(), "server_id", serverID, "err", err)
		c.AbortWithStatusJSON(http.StatusBadGateway, response.Response{
			Msg: ErrRefreshMCPTools.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response.Response{})
}

func (ctl *MCPController) ListTools(c *gin.Context) {
	ctx := c.Request.Context()

	var tools []model.MCPTool
	var err error
	if serverID := c.Query("server_id"); serverID != "" {
		tools, err = ctl.store.GetMCPToolsByServerID(ctx, serverID)
	} else {
		tools, err = ctl.store.GetMCPTools(ctx)
	}
	if err != nil {
		slog.Error(ErrGetMCPTools.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrGetMCPTools.Error(),
		})
		return
	}

	var resp response.GetMCPToolsResponse
	for _, t := range tools {
		resp.Tools = append(resp.Tools, response.MCPToolResponse{
			ID:          t.ID,
			ServerID:    t.ServerID,
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.InputSchema,
			CreatedAt:   t.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, response.Response{
		Data: resp,
	})
}

func mcpServerResponse(server *model.MCPServer) response.MCPServerResponse {
	return response.MCPServerResponse{
		ID:          server.ID,
		Name:        server.Name,
		URL:         server.URL,
		Description: server.Description,
		AuthType:    server.AuthType,
		CreatedAt:   server.CreatedAt,
		UpdatedAt:   server.UpdatedAt,
	}
}

func normalizeAuthType(authType string) string {
	if authType == "" {
		return model.AuthTypeNone
	}
	return authType
}
