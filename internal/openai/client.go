// Package openai 封装 chat-completion 风格的文本生成调用。
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"habittracker/pkg/circuitbreaker"
	"habittracker/pkg/metrics"
	"habittracker/pkg/trace"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1/chat/completions"
	DefaultModel   = "gpt-3.5-turbo"

	// 固定的系统指令：温和务实、中文、只输出一句话
	systemPrompt = "你是一个温和但务实的中文成长陪伴助手。必须只输出 1 句中文，不解释理由，不复述输入，建议必须是明天可执行的具体动作。"

	temperature = 0.7
)

var (
	// ErrMissingAPIKey 未配置 API Key
	ErrMissingAPIKey = errors.New("missing api key")
	// ErrInvalidResponse HTTP 非 2xx 或响应体无法解析
	ErrInvalidResponse = errors.New("invalid response from generation api")
	// ErrEmptyResponse 响应里没有可用内容
	ErrEmptyResponse = errors.New("empty response from generation api")
)

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	cb         *circuitbreaker.CircuitBreaker
}

// NewClient 创建生成客户端。baseURL/model 为空时使用默认值。
func NewClient(baseURL, model string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}

	// 连续失败快速熔断，避免每次建议请求都等完整超时
	cbConfig := circuitbreaker.Config{
		FailureThreshold:    3,
		SuccessThreshold:    2,
		Timeout:             30 * time.Second,
		HalfOpenMaxRequests: 2,
	}

	return &Client{
		baseURL: baseURL,
		model:   model,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		cb: circuitbreaker.NewCircuitBreaker(cbConfig),
	}
}

// FetchSuggestion 发起一次生成调用，返回去除首尾空白后的文本。
// 失败时返回 ErrInvalidResponse / ErrEmptyResponse（或熔断器错误），由调用方决定降级。
func (c *Client) FetchSuggestion(ctx context.Context, apiKey, prompt string) (string, error) {
	if apiKey == "" {
		return "", ErrMissingAPIKey
	}

	var content string
	err := c.cb.Execute(func() error {
		start := time.Now()
		status := "success"

		body, err := json.Marshal(chatRequest{
			Model: c.model,
			Messages: []message{
				{Role: "system", Content: systemPrompt},
				{Role: "user", Content: prompt},
			},
			Temperature: temperature,
		})
		if err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+apiKey)
		if traceID := trace.FromContext(ctx); traceID != "" {
			req.Header.Set(trace.HeaderName(), traceID)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			metrics.RecordGenerationCallLatency("chat", "error", time.Since(start))
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			status = fmt.Sprintf("%d", resp.StatusCode)
			metrics.RecordGenerationCallLatency("chat", status, time.Since(start))
			return fmt.Errorf("%w: status %d", ErrInvalidResponse, resp.StatusCode)
		}

		var decoded chatResponse
		if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
			metrics.RecordGenerationCallLatency("chat", "decode_error", time.Since(start))
			return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}

		metrics.RecordGenerationCallLatency("chat", status, time.Since(start))

		if len(decoded.Choices) == 0 {
			return ErrEmptyResponse
		}
		content = strings.TrimSpace(decoded.Choices[0].Message.Content)
		if content == "" {
			return ErrEmptyResponse
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	return content, nil
}
