package dao

import (
	"context"
	"time"

	"knowflow-agent-backend/model"

	"gorm.io/gorm"
)

// HistoryMessage 历史消息在内存中的表示，用于构建模型上下文
type HistoryMessage struct {
	Role    string
	Content string
}

// LoadHistory 按时间顺序加载会话的历史消息。
// 未知或空的会话ID视为新会话，返回空序列而非错误。
func (s *Store) LoadHistory(ctx context.Context, sessionID string) ([]HistoryMessage, error) {
	if sessionID == "" {
		return nil, nil
	}

	var messages []HistoryMessage
	err := s.db.WithContext(ctx).
		Model(&model.Message{}).
		Select("role, content").
		Where("session_id = ?", sessionID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// CommitTurn 持久化一轮完整的问答。
// newSession 为 true 时以 sessionID 创建新会话并生成摘要，否则追加到已有会话
// 并推进其更新时间。整个操作在一个事务内完成，不会留下写了一半的轮次。
func (s *Store) CommitTurn(ctx context.Context, sessionID string, newSession bool, query, answer string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if newSession {
			session := model.Session{
				SessionID: sessionID,
				Summary:   model.SummarizeQuery(query),
			}
			if err := tx.Create(&session).Error; err != nil {
				return err
			}
		} else {
			result := tx.Model(&model.Session{}).
				Where("session_id = ?", sessionID).
				Update("updated_at", time.Now())
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
		}

		userMsg := model.Message{
			SessionID: sessionID,
			Role:      model.RoleUser,
			Content:   query,
		}
		if err := tx.Create(&userMsg).Error; err != nil {
			return err
		}

		assistantMsg := model.Message{
			SessionID: sessionID,
			Role:      model.RoleAssistant,
			Content:   answer,
		}
		return tx.Create(&assistantMsg).Error
	})
}

func (s *Store) GetSessions(ctx context.Context) ([]model.Session, error) {
	var sessions []model.Session
	if err := s.db.WithContext(ctx).
		Order("updated_at DESC").
		Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func (s *Store) GetSession(ctx context.Context, sessionID string) (*model.Session, error) {
	var session model.Session
	if err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *Store) GetMessagesBySessionID(ctx context.Context, sessionID string) ([]model.Message, error) {
	var messages []model.Message
	if err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

// DeleteSession 删除会话并级联删除其全部消息，会话不存在时返回 ErrRecordNotFound
func (s *Store) DeleteSession(ctx context.Context, sessionID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("session_id = ?", sessionID).
			Delete(&model.Session{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return tx.Where("session_id = ?", sessionID).
			Delete(&model.Message{}).Error
	})
}
