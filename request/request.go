package request

// StreamRequest 流式问答请求，通过查询参数传递
type StreamRequest struct {
	Query     string `form:"query" binding:"required"`
	SessionID string `form:"session_id"`
	WebSearch bool   `form:"web_search"`
	AgentMode bool   `form:"agent_mode"`
}

type MCPServerRequest struct {
	Name        string `json:"name" binding:"required"`
	URL         string `json:"url" binding:"required"`
	Description string `json:"description"`
	AuthType    string `json:"auth_type"`
	AuthValue   string `json:"auth_value"`
}
