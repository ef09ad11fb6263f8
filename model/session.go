package model

import "time"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"

	// RoleSystem 仅作为内存中的上下文使用，不落库
	RoleSystem = "system"
)

// 会话摘要最大长度（按 rune 计），超出部分截断并追加省略号
const (
	summaryMaxLen   = 50
	summaryEllipsis = "…"
)

type Session struct {
	SessionID string    `gorm:"primarykey;size:36" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Summary   string    `json:"summary"`
}

func (Session) TableName() string {
	return "chat_session"
}

// Message 建立联合索引 (session_id, created_at)，同一会话内按 (created_at, id) 全序
type Message struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index:idx_session_created" json:"created_at"`
	SessionID string    `gorm:"not null;index:idx_session_created;size:36" json:"session_id"`
	Role      string    `gorm:"not null" json:"role"`
	Content   string    `gorm:"type:text" json:"content"`
}

func (Message) TableName() string {
	return "chat_message"
}

// SummarizeQuery 从会话的第一条查询生成会话摘要
func SummarizeQuery(query string) string {
	runes := []rune(query)
	if len(runes) <= summaryMaxLen {
		return query
	}
	return string(runes[:summaryMaxLen]) + summaryEllipsis
}
