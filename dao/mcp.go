package dao

import (
	"context"

	"knowflow-agent-backend/model"

	"gorm.io/gorm"
)

// RegisteredTool 工具及其所属服务器的连接信息，供决策与调用使用
type RegisteredTool struct {
	ID          string
	ServerID    string
	Name        string
	Description string
	InputSchema string
	ServerURL   string
	AuthType    string
	AuthValue   string
}

// AuthHeaders 所属服务器的认证配置渲染为请求头
func (t *RegisteredTool) AuthHeaders() map[string]string {
	return model.AuthHeaders(t.AuthType, t.AuthValue)
}

func (s *Store) CreateMCPServer(ctx context.Context, server *model.MCPServer) error {
	return s.db.WithContext(ctx).Create(server).Error
}

func (s *Store) GetMCPServers(ctx context.Context) ([]model.MCPServer, error) {
	var servers []model.MCPServer
	if err := s.db.WithContext(ctx).
		Order("created_at ASC").
		Find(&servers).Error; err != nil {
		return nil, err
	}
	return servers, nil
}

func (s *Store) GetMCPServer(ctx context.Context, serverID string) (*model.MCPServer, error) {
	var server model.MCPServer
	if err := s.db.WithContext(ctx).
		Where("id = ?", serverID).
		First(&server).Error; err != nil {
		return nil, err
	}
	return &server, nil
}

func (s *Store) UpdateMCPServer(ctx context.Context, server *model.MCPServer) error {
	result := s.db.WithContext(ctx).
		Model(&model.MCPServer{}).
		Where("id = ?", server.ID).
		Updates(map[string]any{
			"name":        server.Name,
			"url":         server.URL,
			"description": server.Description,
			"auth_type":   server.AuthType,
			"auth_value":  server.AuthValue,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteMCPServer 删除服务器并级联删除其全部工具，服务器不存在时返回 ErrRecordNotFound
func (s *Store) DeleteMCPServer(ctx context.Context, serverID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ?", serverID).
			Delete(&model.MCPServer{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return tx.Where("server_id = ?", serverID).
			Delete(&model.MCPTool{}).Error
	})
}

func (s *Store) GetMCPTools(ctx context.Context) ([]model.MCPTool, error) {
	var tools []model.MCPTool
	if err := s.db.WithContext(ctx).
		Order("created_at ASC, id ASC").
		Find(&tools).Error; err != nil {
		return nil, err
	}
	return tools, nil
}

func (s *Store) GetMCPToolsByServerID(ctx context.Context, serverID string) ([]model.MCPTool, error) {
	var tools []model.MCPTool
	if err := s.db.WithContext(ctx).
		Where("server_id = ?", serverID).
		Order("created_at ASC, id ASC").
		Find(&tools).Error; err != nil {
		return nil, err
	}
	return tools, nil
}

// GetRegisteredTools 返回全部已注册工具及其服务器连接信息。
// 按工具注册时间升序排列，重名工具由先注册者优先。
func (s *Store) GetRegisteredTools(ctx context.Context) ([]RegisteredTool, error) {
	var tools []RegisteredTool
	err := s.db.WithContext(ctx).
		Table("mcp_tool AS t").
		Select("t.id, t.server_id, t.name, t.description, t.input_schema, s.url AS server_url, s.auth_type, s.auth_value").
		Joins("JOIN mcp_server AS s ON t.server_id = s.id").
		Order("t.created_at ASC, t.id ASC").
		Scan(&tools).Error
	if err != nil {
		return nil, err
	}
	return tools, nil
}

// ReplaceMCPTools 以全量替换的方式刷新服务器的工具集：
// 删除旧工具并插入新列表，二者在同一事务内完成。
func (s *Store) ReplaceMCPTools(ctx context.Context, serverID string, tools []model.MCPTool) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("server_id = ?", serverID).
			Delete(&model.MCPTool{}).Error; err != nil {
			return err
		}

		if len(tools) > 0 {
			if err := tx.CreateInBatches(tools, 100).Error; err != nil {
				return err
			}
		}

		return nil
	})
}
