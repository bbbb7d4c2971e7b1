package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lk2023060901/model-catalog/internal/pkg/logger"
	"go.uber.org/zap"
)

const (
	authPath = "/auth/v1"
	restPath = "/rest/v1"

	defaultTimeout = 15 * time.Second
)

// ErrNotConfigured 客户端未创建（URL 或匿名 key 缺失）
var ErrNotConfigured = errors.New("supabase: client not configured")

// Config 外部服务配置
type Config struct {
	URL     string
	AnonKey string
	Timeout time.Duration
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.URL == "" {
		return errors.New("supabase: url is required")
	}
	if _, err := url.ParseRequestURI(c.URL); err != nil {
		return fmt.Errorf("supabase: invalid url: %w", err)
	}
	if c.AnonKey == "" {
		return errors.New("supabase: anon key is required")
	}
	return nil
}

// Client 托管认证服务与 REST 数据接口的 HTTP 客户端
type Client struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
	logger     *logger.Logger
}

// New 创建客户端
func New(cfg *Config, log *logger.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		anonKey:    cfg.AnonKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     log.Named("supabase"),
	}, nil
}

// request 描述一次调用；token 为空时只携带 apikey
type request struct {
	method  string
	path    string
	query   url.Values
	token   string
	body    interface{}
	headers map[string]string
}

// do 执行请求。2xx 时把响应体解码进 result（可为 nil），否则返回 *APIError
func (c *Client) do(ctx context.Context, r request, result interface{}) error {
	if c == nil {
		return ErrNotConfigured
	}
	endpoint := c.baseURL + r.path
	if len(r.query) > 0 {
		endpoint += "?" + r.query.Encode()
	}

	var reqBody io.Reader
	if r.body != nil {
		data, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	for k, v := range Headers(c.anonKey, r.token) {
		req.Header.Set(k, v)
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	log := c.logger.WithContext(ctx)
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("supabase request failed",
			zap.String("method", r.method),
			zap.String("path", r.path),
			zap.Error(err),
		)
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respData, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	log.Debug("supabase response",
		zap.String("method", r.method),
		zap.String("path", r.path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(resp.StatusCode, respData)
	}

	if result == nil || len(bytes.TrimSpace(respData)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respData, result); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// Headers 返回调用外部服务所需的请求头；token 非空时附加 Bearer 授权
func Headers(anonKey, token string) map[string]string {
	h := map[string]string{
		"apikey":       anonKey,
		"Content-Type": "application/json",
		"Accept":       "application/json",
	}
	if token != "" {
		h["Authorization"] = "Bearer " + token
	}
	return h
}
