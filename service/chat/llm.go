package chat

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"knowflow-agent-backend/config"
	"knowflow-agent-backend/dao"
	"knowflow-agent-backend/model"
	"knowflow-agent-backend/utils"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// 配置 300s 超时时间处理 LLM 流式输出
var llmHTTPClient *http.Client = utils.NewHTTPClient(
	utils.WithTimeout(300 * time.Second),
)

// LLM 对模型补全能力的封装：给定消息列表，产出一段文本或一串增量
type LLM struct {
	model llms.Model
}

func NewLLM() (*LLM, error) {
	llm, err := openai.New(
		openai.WithModel(config.Cfg.Model.Name),
		openai.WithToken(config.Cfg.Model.APIKey),
		openai.WithBaseURL(config.Cfg.Model.BaseURL),
		openai.WithHTTPClient(llmHTTPClient),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create llm client: %v", err)
	}
	return &LLM{model: llm}, nil
}

// Complete 单次非流式补全
func (l *LLM) Complete(ctx context.Context, prompt string) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, l.model, prompt)
}

// Stream 基于消息列表流式生成回答，每个增量回调一次 onDelta。
// 出错时仍返回已产出的部分文本，供调用方决定是否保留。
func (l *LLM) Stream(ctx context.Context, history []dao.HistoryMessage, onDelta func(text string)) (string, error) {
	messages := make([]llms.MessageContent, 0, len(history))
	for _, msg := range history {
		messages = append(messages, llms.TextParts(chatMessageType(msg.Role), msg.Content))
	}

	var full strings.Builder
	_, err := l.model.GenerateContent(ctx, messages,
		llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
			if len(chunk) == 0 {
				return nil
			}
			full.Write(chunk)
			onDelta(string(chunk))
			return nil
		}),
	)
	return full.String(), err
}

func chatMessageType(role string) llms.ChatMessageType {
	switch role {
	case model.RoleAssistant:
		return llms.ChatMessageTypeAI
	case model.RoleSystem:
		return llms.ChatMessageTypeSystem
	default:
		return llms.ChatMessageTypeHuman
	}
}
