package model

import "time"

const (
	AuthTypeNone   = "none"
	AuthTypeBearer = "bearer"
)

type MCPServer struct {
	ID          string    `gorm:"primarykey;size:36" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Name        string    `gorm:"not null" json:"name"`
	URL         string    `gorm:"not null" json:"url"`
	Description string    `gorm:"type:text" json:"description"`
	AuthType    string    `gorm:"default:none" json:"auth_type"`
	AuthValue   string    `json:"auth_value"`
}

func (MCPServer) TableName() string {
	return "mcp_server"
}

// AuthHeaders 将服务器的认证配置渲染为请求头
func (s *MCPServer) AuthHeaders() map[string]string {
	return AuthHeaders(s.AuthType, s.AuthValue)
}

// MCPTool 建立联合索引 (server_id, created_at)
type MCPTool struct {
	ID          string    `gorm:"primarykey;size:36" json:"id"`
	CreatedAt   time.Time `gorm:"index:idx_server_created" json:"created_at"`
	ServerID    string    `gorm:"not null;index:idx_server_created;size:36" json:"server_id"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	InputSchema string    `gorm:"type:text" json:"input_schema"`
}

func (MCPTool) TableName() string {
	return "mcp_tool"
}

func AuthHeaders(authType, authValue string) map[string]string {
	if authType == AuthTypeBearer && authValue != "" {
		return map[string]string{"Authorization": "Bearer " + authValue}
	}
	return nil
}
