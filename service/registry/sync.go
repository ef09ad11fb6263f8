// Package registry 同步远端工具服务器声明的工具集到本地存储。
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"knowflow-agent-backend/dao"
	"knowflow-agent-backend/model"
	"knowflow-agent-backend/service/mcpclient"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

const (
	listTimeout  = 30 * time.Second
	listAttempts = 3
)

type listFunc func(ctx context.Context, endpoint string, headers map[string]string) ([]mcp.Tool, error)

type Synchronizer struct {
	store *dao.Store
	list  listFunc
}

func NewSynchronizer(store *dao.Store) *Synchronizer {
	return &Synchronizer{
		store: store,
		list:  mcpclient.ListTools,
	}
}

// Sync 刷新一个服务器的工具集：先列举远端工具，成功后在一个事务内全量替换。
// 列举发生在任何写操作之前，传输失败不会动到已存储的工具。
func (s *Synchronizer) Sync(ctx context.Context, server *model.MCPServer) error {
	listCtx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	var listed []mcp.Tool
	err := retry.Do(
		func() error {
			var err error
			listed, err = s.list(listCtx, server.URL, server.AuthHeaders())
			return err
		},
		retry.Attempts(listAttempts),
		retry.DelayType(retry.BackOffDelay),
		retry.Context(listCtx),
		retry.OnRetry(func(n uint, err error) {
			slog.Warn("Retrying to list tools",
				"attempt", n+1,
				"server_id", server.ID,
				"url", server.URL,
				"err", err)
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to list tools from %s: %v", server.URL, err)
	}

	tools := make([]model.MCPTool, 0, len(listed))
	for _, tool := range listed {
		schema, err := json.Marshal(tool.InputSchema)
		if err != nil {
			return fmt.Errorf("failed to marshal input schema of tool %s: %v", tool.Name, err)
		}
		tools = append(tools, model.MCPTool{
			ID:          uuid.New().String(),
			ServerID:    server.ID,
			Name:        tool.Name,
			Description: tool.Description,
			InputSchema: string(schema),
		})
	}

	if err := s.store.ReplaceMCPTools(ctx, server.ID, tools); err != nil {
		return fmt.Errorf("failed to store tools for server %s: %v", server.ID, err)
	}

	slog.Info("Synced tools for mcp server",
		"server_id", server.ID,
		"url", server.URL,
		"tool_count", len(tools))
	return nil
}
