package response

import "time"

type MCPServerResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	URL         string    `json:"url"`
	Description string    `json:"description"`
	AuthType    string    `json:"auth_type"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type GetMCPServersResponse struct {
	Servers []MCPServerResponse `json:"servers"`
}

type MCPToolResponse struct {
	ID          string    `json:"id"`
	ServerID    string    `json:"server_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	InputSchema string    `json:"input_schema"`
	CreatedAt   time.Time `json:"created_at"`
}

type GetMCPToolsResponse struct {
	Tools []MCPToolResponse `json:"tools"`
}
