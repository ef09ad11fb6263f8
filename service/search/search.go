package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"knowflow-agent-backend/config"
	"knowflow-agent-backend/utils"

	"github.com/avast/retry-go/v4"
)

const (
	searchTimeout  = 30 * time.Second
	searchAttempts = 3

	searchPath = "/v1/web-search"
)

// 搜索失败以带前缀的字符串返回，调用方通过 IsErrorResult 识别
const (
	PrefixNotConfigured = "搜索 API Key 未配置，无法执行网络搜索"
	PrefixRequestFailed = "执行网络搜索时出错"
	PrefixBadStatus     = "搜索失败，状态码"
	PrefixBadPayload    = "搜索结果JSON解析失败"
)

var errorPrefixes = []string{
	PrefixNotConfigured,
	PrefixRequestFailed,
	PrefixBadStatus,
	PrefixBadPayload,
}

// IsErrorResult 判断搜索结果是否为已知的失败描述
func IsErrorResult(result string) bool {
	for _, prefix := range errorPrefixes {
		if strings.HasPrefix(result, prefix) {
			return true
		}
	}
	return false
}

type searchRequest struct {
	Query     string `json:"query"`
	Freshness string `json:"freshness"`
	Summary   bool   `json:"summary"`
	Count     int    `json:"count"`
}

// Client 网络搜索能力的客户端
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewClient() *Client {
	return newClient(
		config.Cfg.Search.APIKey,
		config.Cfg.Search.BaseURL,
		utils.NewHTTPClient(utils.WithTimeout(searchTimeout)),
	)
}

func newClient(apiKey, baseURL string, httpClient *http.Client) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

// Search 执行网络搜索，返回结果全文或一条可识别的失败描述，从不返回 error
func (c *Client) Search(ctx context.Context, query string) string {
	if c.apiKey == "" {
		return PrefixNotConfigured
	}

	body, err := json.Marshal(searchRequest{
		Query:     query,
		Freshness: "noLimit",
		Summary:   true,
		Count:     10,
	})
	if err != nil {
		return fmt.Sprintf("%s: %v", PrefixRequestFailed, err)
	}

	var raw []byte
	var status int
	err = retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+searchPath, bytes.NewReader(body))
			if err != nil {
				return retry.Unrecoverable(err)
			}
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+c.apiKey)

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			status = resp.StatusCode
			raw, err = io.ReadAll(resp.Body)
			return err
		},
		retry.Attempts(searchAttempts),
		retry.DelayType(retry.BackOffDelay),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			slog.Warn("Retrying web search request",
				"attempt", n+1,
				"err", err)
		}),
	)
	if err != nil {
		return fmt.Sprintf("%s: %v", PrefixRequestFailed, err)
	}

	if status != http.StatusOK {
		return fmt.Sprintf("%s: %d, 响应: %s", PrefixBadStatus, status, raw)
	}

	if !json.Valid(raw) {
		return fmt.Sprintf("%s: 响应不是合法的 JSON", PrefixBadPayload)
	}

	return string(raw)
}
