// Package harness 向被测服务发请求，并对响应做状态码、响应头、JSON 字段和记录级的断言。
package harness

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient 创建客户端。httpClient 为 nil 时使用不设超时的默认 http.Client。
func NewClient(baseURL string, httpClient *http.Client, logger *slog.Logger) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("解析 base_url 失败: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("base_url 必须是 http(s) 绝对地址: %q", baseURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		logger:  logger.With("component", "harness"),
	}, nil
}

func (c *Client) BaseURL() string { return c.baseURL }

// URL 拼出端点的完整地址
func (c *Client) URL(ep Endpoint, query map[string]string) string {
	target := c.baseURL + "/" + strings.TrimLeft(ep.Path, "/")
	if q := encodeQuery(query); q != "" {
		target += "?" + q
	}
	return target
}

// Execute 发出一次请求并读完响应体。非 2xx 不算错误，交给断言处理；
// 只有请求非法（*RequestError）或传输失败（*TransportError）时返回错误。
func (c *Client) Execute(ctx context.Context, ep Endpoint, req Request) (*Response, error) {
	if err := ep.Validate(); err != nil {
		return nil, err
	}
	body, err := req.encodeBody(ep)
	if err != nil {
		return nil, err
	}

	target := c.URL(ep, req.Query)
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, ep.Method, target, reader)
	if err != nil {
		return nil, &RequestError{Endpoint: ep, Reason: err.Error()}
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for k, v := range req.Header {
		httpReq.Header.Set(k, v)
	}

	curl := toCurl(httpReq, string(body))
	c.logger.Debug("发送请求", "method", ep.Method, "url", target)

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Warn("请求失败", "method", ep.Method, "url", target, "error", err)
		return nil, &TransportError{Endpoint: ep, URL: target, Err: err, Canceled: ctx.Err() != nil}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Warn("读取响应失败", "method", ep.Method, "url", target, "error", err)
		return nil, &TransportError{Endpoint: ep, URL: target, Err: fmt.Errorf("读取响应体: %w", err), Canceled: ctx.Err() != nil}
	}
	elapsed := time.Since(start)

	c.logger.Debug("收到响应",
		"method", ep.Method,
		"url", target,
		"status", resp.StatusCode,
		"duration", elapsed)

	return &Response{
		Endpoint:    ep,
		URL:         target,
		RequestBody: string(body),
		StatusCode:  resp.StatusCode,
		Header:      resp.Header,
		Body:        raw,
		Duration:    elapsed,
		Curl:        curl,
	}, nil
}

// toCurl 将请求转换为 curl 命令
func toCurl(req *http.Request, body string) string {
	var sb strings.Builder
	sb.WriteString("curl -X ")
	sb.WriteString(req.Method)

	for _, key := range sortedKeys(req.Header) {
		fmt.Fprintf(&sb, " -H %s", shellQuote(key+": "+req.Header.Get(key)))
	}
	if body != "" {
		fmt.Fprintf(&sb, " -d %s", shellQuote(body))
	}
	sb.WriteString(" ")
	sb.WriteString(shellQuote(req.URL.String()))
	return sb.String()
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
