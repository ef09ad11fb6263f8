package dao

import (
	"context"
	"testing"

	"knowflow-agent-backend/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createTestServer(t *testing.T, store *Store, id, url string) *model.MCPServer {
	t.Helper()
	server := &model.MCPServer{
		ID:       id,
		Name:     "server-" + id,
		URL:      url,
		AuthType: model.AuthTypeNone,
	}
	require.NoError(t, store.CreateMCPServer(context.Background(), server))
	return server
}

func TestReplaceMCPToolsFullReplace(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	createTestServer(t, store, "srv-1", "http://tools.local/sse")

	old := []model.MCPTool{
		{ID: "t1", ServerID: "srv-1", Name: "order_stats", InputSchema: "{}"},
		{ID: "t2", ServerID: "srv-1", Name: "order_query", InputSchema: "{}"},
	}
	require.NoError(t, store.ReplaceMCPTools(ctx, "srv-1", old))

	fresh := []model.MCPTool{
		{ID: "t3", ServerID: "srv-1", Name: "order_query", InputSchema: `{"type":"object"}`},
		{ID: "t4", ServerID: "srv-1", Name: "order_export", InputSchema: "{}"},
	}
	require.NoError(t, store.ReplaceMCPTools(ctx, "srv-1", fresh))

	tools, err := store.GetMCPToolsByServerID(ctx, "srv-1")
	require.NoError(t, err)
	require.Len(t, tools, 2)

	names := []string{tools[0].Name, tools[1].Name}
	assert.ElementsMatch(t, []string{"order_query", "order_export"}, names)
	for _, tool := range tools {
		assert.NotEqual(t, "t1", tool.ID, "stale tools must not linger after a refresh")
		assert.NotEqual(t, "t2", tool.ID, "stale tools must not linger after a refresh")
	}
}

func TestReplaceMCPToolsOnlyTargetServer(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	createTestServer(t, store, "srv-1", "http://one.local/sse")
	createTestServer(t, store, "srv-2", "http://two.local/sse")

	require.NoError(t, store.ReplaceMCPTools(ctx, "srv-1", []model.MCPTool{
		{ID: "t1", ServerID: "srv-1", Name: "alpha", InputSchema: "{}"},
	}))
	require.NoError(t, store.ReplaceMCPTools(ctx, "srv-2", []model.MCPTool{
		{ID: "t2", ServerID: "srv-2", Name: "beta", InputSchema: "{}"},
	}))

	require.NoError(t, store.ReplaceMCPTools(ctx, "srv-1", nil))

	tools, err := store.GetMCPToolsByServerID(ctx, "srv-1")
	require.NoError(t, err)
	assert.Empty(t, tools)

	tools, err = store.GetMCPToolsByServerID(ctx, "srv-2")
	require.NoError(t, err)
	assert.Len(t, tools, 1)
}

func TestDeleteMCPServerCascades(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	createTestServer(t, store, "srv-1", "http://tools.local/sse")

	require.NoError(t, store.ReplaceMCPTools(ctx, "srv-1", []model.MCPTool{
		{ID: "t1", ServerID: "srv-1", Name: "alpha", InputSchema: "{}"},
	}))

	require.NoError(t, store.DeleteMCPServer(ctx, "srv-1"))

	_, err := store.GetMCPServer(ctx, "srv-1")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	tools, err := store.GetMCPToolsByServerID(ctx, "srv-1")
	require.NoError(t, err)
	assert.Empty(t, tools)
}

func TestDeleteMCPServerNotFound(t *testing.T) {
	store := newTestStore(t)

	err := store.DeleteMCPServer(context.Background(), "no-such-server")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestGetRegisteredToolsJoinsServer(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	server := createTestServer(t, store, "srv-1", "http://tools.local/sse")
	server.AuthType = model.AuthTypeBearer
	server.AuthValue = "secret"
	require.NoError(t, store.UpdateMCPServer(ctx, server))

	require.NoError(t, store.ReplaceMCPTools(ctx, "srv-1", []model.MCPTool{
		{ID: "t1", ServerID: "srv-1", Name: "order_stats", Description: "订单统计", InputSchema: "{}"},
	}))

	tools, err := store.GetRegisteredTools(ctx)
	require.NoError(t, err)
	require.Len(t, tools, 1)
	assert.Equal(t, "order_stats", tools[0].Name)
	assert.Equal(t, "http://tools.local/sse", tools[0].ServerURL)
	assert.Equal(t, map[string]string{"Authorization": "Bearer secret"}, tools[0].AuthHeaders())
}
