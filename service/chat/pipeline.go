package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"knowflow-agent-backend/dao"
	"knowflow-agent-backend/model"
	"knowflow-agent-backend/request"
	"knowflow-agent-backend/service/search"

	"github.com/google/uuid"
)

const (
	decisionTimeout = 60 * time.Second
	toolCallTimeout = 60 * time.Second

	eventBufferSize = 16
)

// 面向用户的固定提示内容
const (
	msgNoTools       = "没有可用的工具。"
	msgSearchFailure = "网络搜索功能异常: "
)

// Generator 模型补全能力：给定消息列表产出文本增量序列
type Generator interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Stream(ctx context.Context, history []dao.HistoryMessage, onDelta func(text string)) (string, error)
}

// Searcher 网络搜索能力：返回结果文本或可识别的失败描述
type Searcher interface {
	Search(ctx context.Context, query string) string
}

// ToolInvoker 远端工具调用能力
type ToolInvoker interface {
	Invoke(ctx context.Context, endpoint string, headers map[string]string, toolName string, parameters map[string]any) (string, error)
}

// Pipeline 一次流式问答的编排器：
// 加载历史 → 可选搜索增强 → 直接生成或决策+工具调用+最终生成 → 持久化。
// 所有依赖显式注入，各请求之间不共享可变状态。
type Pipeline struct {
	store    *dao.Store
	llm      Generator
	searcher Searcher
	invoker  ToolInvoker
}

func NewPipeline(store *dao.Store, llm Generator, searcher Searcher, invoker ToolInvoker) *Pipeline {
	return &Pipeline{
		store:    store,
		llm:      llm,
		searcher: searcher,
		invoker:  invoker,
	}
}

// Run 执行一轮流式问答并返回事件通道。
// 终止事件写出后通道关闭，消费方把通道耗尽即视为本轮结束。
func (p *Pipeline) Run(ctx context.Context, req request.StreamRequest) <-chan Event {
	events := make(chan Event, eventBufferSize)
	go func() {
		defer close(events)
		p.run(ctx, req, events)
	}()
	return events
}

func (p *Pipeline) run(ctx context.Context, req request.StreamRequest, events chan<- Event) {
	sessionID := req.SessionID
	newSession := sessionID == ""
	if newSession {
		sessionID = uuid.New().String()
	}

	// 任何退出路径上有且仅有这一个终止事件
	defer func() {
		events <- DoneEvent(sessionID)
	}()

	history, err := p.store.LoadHistory(ctx, req.SessionID)
	if err != nil {
		slog.Error("Failed to load chat history", "session_id", sessionID, "err", err)
		events <- ErrorEvent("failed to load chat history")
		return
	}

	if req.WebSearch {
		results := p.searcher.Search(ctx, req.Query)
		if search.IsErrorResult(results) {
			slog.Warn("Web search failed", "session_id", sessionID, "result", results)
			events <- ContentEvent(msgSearchFailure + results)
			return
		}
		// 搜索结果作为临时上下文放在真实历史之前，不落库
		history = append([]dao.HistoryMessage{{
			Role:    model.RoleSystem,
			Content: "网络搜索结果: " + results,
		}}, history...)
	}

	history = append(history, dao.HistoryMessage{Role: model.RoleUser, Content: req.Query})

	if req.AgentMode {
		p.runAgent(ctx, sessionID, newSession, req.Query, events)
		return
	}

	answer, ok := p.generate(ctx, history, events)
	if ok || persistablePartial(ctx, answer) {
		p.persist(ctx, sessionID, newSession, req.Query, answer, events)
	}
}

// runAgent agent 模式：一次决策，至多一次工具调用，随后生成最终回答
func (p *Pipeline) runAgent(ctx context.Context, sessionID string, newSession bool, query string, events chan<- Event) {
	catalog, err := p.store.GetRegisteredTools(ctx)
	if err != nil {
		slog.Error("Failed to load tool catalog", "session_id", sessionID, "err", err)
		events <- ErrorEvent("failed to load registered tools")
		return
	}

	if len(catalog) == 0 {
		// 无模型产出可存，这一轮不持久化
		events <- ContentEvent(msgNoTools)
		return
	}

	prompt, err := buildDecisionPrompt(query, catalog)
	if err != nil {
		slog.Error("Failed to build decision prompt", "session_id", sessionID, "err", err)
		events <- ErrorEvent("error while deciding on tool use")
		return
	}

	decisionCtx, cancel := context.WithTimeout(ctx, decisionTimeout)
	raw, err := p.llm.Complete(decisionCtx, prompt)
	cancel()
	if err != nil {
		slog.Error("Tool decision call failed", "session_id", sessionID, "err", err)
		events <- ErrorEvent("error while deciding on tool use")
		return
	}

	switch decision := ParseDecision(strings.TrimSpace(raw), catalog).(type) {
	case Direct:
		// 未解析出工具调用时，决策文本本身就是最终答案
		events <- ContentEvent(decision.Text)
		p.persist(ctx, sessionID, newSession, query, decision.Text, events)
	case Invoke:
		p.invokeAndAnswer(ctx, sessionID, newSession, query, catalog, decision, events)
	}
}

func (p *Pipeline) invokeAndAnswer(ctx context.Context, sessionID string, newSession bool, query string, catalog []dao.RegisteredTool, decision Invoke, events chan<- Event) {
	// ParseDecision 只会对目录内的工具产生 Invoke
	tool := findTool(catalog, decision.ToolName)

	callCtx, cancel := context.WithTimeout(ctx, toolCallTimeout)
	result, err := p.invoker.Invoke(callCtx, tool.ServerURL, tool.AuthHeaders(), decision.ToolName, decision.Parameters)
	cancel()
	if err != nil {
		// 工具调用失败也是一轮已回答的对话：失败描述就是答案，照常持久化
		slog.Warn("Tool invocation failed",
			"session_id", sessionID,
			"tool", decision.ToolName,
			"err", err)
		answer := fmt.Sprintf("工具 %s 调用失败: %v", decision.ToolName, err)
		events <- ContentEvent(answer)
		p.persist(ctx, sessionID, newSession, query, answer, events)
		return
	}

	prompt, err := buildFinalAnswerPrompt(query, decision.ToolName, result)
	if err != nil {
		slog.Error("Failed to build final answer prompt", "session_id", sessionID, "err", err)
		events <- ErrorEvent("error while generating final answer")
		return
	}

	finalContext := []dao.HistoryMessage{{Role: model.RoleUser, Content: prompt}}
	answer, ok := p.generate(ctx, finalContext, events)
	if ok || persistablePartial(ctx, answer) {
		p.persist(ctx, sessionID, newSession, query, answer, events)
	}
}

// generate 流式生成一次回答，每个增量发出一个 content 事件。
// 返回完整文本（失败时为已产出的部分）以及生成是否完整结束。
func (p *Pipeline) generate(ctx context.Context, history []dao.HistoryMessage, events chan<- Event) (string, bool) {
	text, err := p.llm.Stream(ctx, history, func(delta string) {
		if delta != "" {
			events <- ContentEvent(delta)
		}
	})
	if err != nil {
		slog.Error("Generation failed", "err", err)
		events <- ErrorEvent("error while generating answer")
		return text, false
	}
	return text, true
}

// persistablePartial 消费方断开导致生成中断时，保留已产出的部分回答
func persistablePartial(ctx context.Context, answer string) bool {
	return answer != "" && ctx.Err() != nil
}

// persist 提交本轮问答。提交失败对这一轮是致命的：
// 记录日志并发出 error 事件，流仍会正常走到终止事件。
func (p *Pipeline) persist(ctx context.Context, sessionID string, newSession bool, query, answer string, events chan<- Event) {
	// 持久化不随消费方断开而取消
	ctx = context.WithoutCancel(ctx)
	if err := p.store.CommitTurn(ctx, sessionID, newSession, query, answer); err != nil {
		slog.Error("Failed to persist turn", "session_id", sessionID, "err", err)
		events <- ErrorEvent("failed to save this conversation turn")
	}
}
