// Package mcpclient 通过 MCP 协议访问远端工具服务器。
// 每次调用开启一条短生命周期的客户端会话，结束后关闭，不复用、不做连接池。
package mcpclient

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"
)

// Invoker 工具调用器，满足 chat 流水线的 ToolInvoker 接口
type Invoker struct{}

func (Invoker) Invoke(ctx context.Context, endpoint string, headers map[string]string, toolName string, parameters map[string]any) (string, error) {
	return Invoke(ctx, endpoint, headers, toolName, parameters)
}

// Invoke 对 endpoint 发起一次 tools/call。
// 无论成功失败，本次调用的会话都会在返回前关闭。
func Invoke(ctx context.Context, endpoint string, headers map[string]string, toolName string, parameters map[string]any) (string, error) {
	cli, err := openSession(ctx, endpoint, headers)
	if err != nil {
		return "", fmt.Errorf("failed to connect to tool server %s: %v", endpoint, err)
	}
	defer cli.Close()

	request := mcp.CallToolRequest{}
	request.Params.Name = toolName
	request.Params.Arguments = parameters

	result, err := cli.CallTool(ctx, request)
	if err != nil {
		return "", fmt.Errorf("failed to call tool %s: %v", toolName, err)
	}

	text := flattenContent(result.Content)
	if result.IsError {
		return "", fmt.Errorf("tool %s returned an error: %s", toolName, text)
	}
	return text, nil
}

// ListTools 获取 endpoint 上声明的全部工具
func ListTools(ctx context.Context, endpoint string, headers map[string]string) ([]mcp.Tool, error) {
	cli, err := openSession(ctx, endpoint, headers)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to tool server %s: %v", endpoint, err)
	}
	defer cli.Close()

	result, err := cli.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("failed to list tools from %s: %v", endpoint, err)
	}
	return result.Tools, nil
}

func openSession(ctx context.Context, endpoint string, headers map[string]string) (*client.Client, error) {
	var opts []transport.ClientOption
	if len(headers) > 0 {
		opts = append(opts, transport.WithHeaders(headers))
	}

	cli, err := client.NewSSEMCPClient(endpoint, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp client: %v", err)
	}

	if err := cli.Start(ctx); err != nil {
		cli.Close()
		return nil, fmt.Errorf("failed to start mcp client: %v", err)
	}

	if _, err := cli.Initialize(ctx, mcp.InitializeRequest{}); err != nil {
		cli.Close()
		return nil, fmt.Errorf("failed to initialize mcp client: %v", err)
	}

	return cli, nil
}

func flattenContent(contents []mcp.Content) string {
	var sb strings.Builder
	for _, content := range contents {
		switch content := content.(type) {
		case mcp.TextContent:
			sb.WriteString(content.Text)
		default:
			sb.WriteString("[non-text content]")
		}
	}
	return sb.String()
}
