package chat

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"knowflow-agent-backend/dao"
)

var (
	//go:embed prompts/tool_decision.txt
	toolDecisionPrompt string

	//go:embed prompts/final_answer.txt
	finalAnswerPrompt string
)

var (
	toolDecisionTmpl = template.Must(template.New("tool_decision").Parse(toolDecisionPrompt))
	finalAnswerTmpl  = template.Must(template.New("final_answer").Parse(finalAnswerPrompt))
)

// Decision 工具路由决策结果：直接回答或调用某个工具。
// 每轮 agent 对话产生一次，随即消费，不落库。
type Decision interface {
	isDecision()
}

// Direct 模型给出的文本即最终答案
type Direct struct {
	Text string
}

// Invoke 以给定参数调用指定工具
type Invoke struct {
	ToolName   string
	Parameters map[string]any
}

func (Direct) isDecision() {}
func (Invoke) isDecision() {}

type decisionPayload struct {
	ToolName   string          `json:"tool_name"`
	Parameters json.RawMessage `json:"parameters"`
}

// ParseDecision 解析模型的决策输出。
// 仅当输出是合法 JSON、tool_name 精确匹配某个已注册工具、且 parameters
// 为 JSON 对象（可为空对象）时产生 Invoke；其余情况一律把原始文本当作
// 最终答案返回 Direct，不重试、不二次提问。
func ParseDecision(raw string, tools []dao.RegisteredTool) Decision {
	var payload decisionPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return Direct{Text: raw}
	}

	if payload.ToolName == "" || payload.Parameters == nil {
		return Direct{Text: raw}
	}

	var params map[string]any
	if err := json.Unmarshal(payload.Parameters, &params); err != nil || params == nil {
		return Direct{Text: raw}
	}

	if findTool(tools, payload.ToolName) == nil {
		return Direct{Text: raw}
	}

	return Invoke{ToolName: payload.ToolName, Parameters: params}
}

// findTool 返回目录中第一个同名工具。
// 目录按注册时间升序排列，跨服务器重名时先注册者优先。
func findTool(tools []dao.RegisteredTool, name string) *dao.RegisteredTool {
	for i := range tools {
		if tools[i].Name == name {
			return &tools[i]
		}
	}
	return nil
}

func buildDecisionPrompt(query string, tools []dao.RegisteredTool) (string, error) {
	var descriptions []string
	for _, tool := range tools {
		descriptions = append(descriptions, fmt.Sprintf(
			"- 工具名: %s\n  描述: %s\n  输入格式: %s",
			tool.Name, tool.Description, tool.InputSchema,
		))
	}

	var buf bytes.Buffer
	data := struct {
		Tools string
		Query string
	}{
		Tools: strings.Join(descriptions, "\n"),
		Query: query,
	}
	if err := toolDecisionTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render decision prompt: %v", err)
	}
	return buf.String(), nil
}

func buildFinalAnswerPrompt(query, toolName, result string) (string, error) {
	var buf bytes.Buffer
	data := struct {
		ToolName string
		Result   string
		Query    string
	}{
		ToolName: toolName,
		Result:   result,
		Query:    query,
	}
	if err := finalAnswerTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render final answer prompt: %v", err)
	}
	return buf.String(), nil
}
