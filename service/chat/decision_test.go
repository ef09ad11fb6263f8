package chat

import (
	"testing"

	"knowflow-agent-backend/dao"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCatalog = []dao.RegisteredTool{
	{Name: "order_stats", Description: "订单统计", InputSchema: `{"type":"object"}`, ServerURL: "http://one.local/sse"},
	{Name: "order_query", Description: "订单查询", InputSchema: `{"type":"object"}`, ServerURL: "http://two.local/sse"},
}

func TestParseDecisionInvoke(t *testing.T) {
	decision := ParseDecision(`{"tool_name":"order_stats","parameters":{}}`, testCatalog)
	invoke, ok := decision.(Invoke)
	require.True(t, ok)
	assert.Equal(t, "order_stats", invoke.ToolName)
	assert.NotNil(t, invoke.Parameters)
	assert.Empty(t, invoke.Parameters)
}

func TestParseDecisionInvokeWithParameters(t *testing.T) {
	decision := ParseDecision(`{"tool_name":"order_query","parameters":{"customer":"张三","limit":3}}`, testCatalog)
	invoke, ok := decision.(Invoke)
	require.True(t, ok)
	assert.Equal(t, "order_query", invoke.ToolName)
	assert.Equal(t, "张三", invoke.Parameters["customer"])
	assert.Equal(t, float64(3), invoke.Parameters["limit"])
}

func TestParseDecisionFallsBackToDirect(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "plain prose", raw: "今天的天气很好，不需要调用任何工具。"},
		{name: "invalid json", raw: `{"tool_name": "order_stats"`},
		{name: "unknown tool", raw: `{"tool_name":"no_such_tool","parameters":{}}`},
		{name: "missing parameters", raw: `{"tool_name":"order_stats"}`},
		{name: "null parameters", raw: `{"tool_name":"order_stats","parameters":null}`},
		{name: "non-object parameters", raw: `{"tool_name":"order_stats","parameters":"x"}`},
		{name: "missing tool name", raw: `{"parameters":{}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := ParseDecision(tt.raw, testCatalog)
			direct, ok := decision.(Direct)
			require.True(t, ok, "expected Direct, got %T", decision)
			assert.Equal(t, tt.raw, direct.Text, "raw decision text is the final answer")
		})
	}
}

func TestFindToolFirstMatchWins(t *testing.T) {
	catalog := []dao.RegisteredTool{
		{Name: "dup", ServerURL: "http://old.local/sse"},
		{Name: "dup", ServerURL: "http://new.local/sse"},
	}

	tool := findTool(catalog, "dup")
	require.NotNil(t, tool)
	assert.Equal(t, "http://old.local/sse", tool.ServerURL)

	assert.Nil(t, findTool(catalog, "missing"))
}

func TestBuildDecisionPrompt(t *testing.T) {
	prompt, err := buildDecisionPrompt("统计张三的订单", testCatalog)
	require.NoError(t, err)
	assert.Contains(t, prompt, "order_stats")
	assert.Contains(t, prompt, "订单查询")
	assert.Contains(t, prompt, "统计张三的订单")
}

func TestBuildFinalAnswerPrompt(t *testing.T) {
	prompt, err := buildFinalAnswerPrompt("统计张三的订单", "order_stats", "共 3 笔订单")
	require.NoError(t, err)
	assert.Contains(t, prompt, "order_stats")
	assert.Contains(t, prompt, "共 3 笔订单")
	assert.Contains(t, prompt, "统计张三的订单")
}
