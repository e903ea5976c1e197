// Package gemini 基于 Google GenAI 的评语生成服务实现
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"memonotes/config"
	"memonotes/internal/generation"
)

// ErrAPIKeyMissing 未配置 API Key
var ErrAPIKeyMissing = errors.New("未配置 Gemini API Key")

// Client 评语生成客户端，实现 generation.Generator
type Client struct {
	client      *genai.Client
	model       string
	temperature float32
	timeout     time.Duration
	logger      *zap.Logger
}

var _ generation.Generator = (*Client)(nil)

// NewClient 创建生成客户端
// 未配置 API Key 时仍返回可用实例，Available 报告不可用，批量生成会整体快速失败
func NewClient(ctx context.Context, cfg *config.GenerationConfig, logger *zap.Logger) (*Client, error) {
	c := &Client{
		model:       cfg.Model,
		temperature: cfg.Temperature,
		timeout:     cfg.RequestTimeout,
		logger:      logger,
	}
	if c.model == "" {
		c.model = "gemini-2.5-flash"
	}

	if cfg.APIKey == "" {
		logger.Warn("未配置 Gemini API Key，评语生成不可用")
		return c, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("创建 GenAI 客户端失败: %w", err)
	}
	c.client = client

	logger.Info("评语生成服务已就绪", zap.String("model", c.model))
	return c, nil
}

// Available 检查服务是否可用
func (c *Client) Available(_ context.Context) error {
	if c.client == nil {
		return ErrAPIKeyMissing
	}
	return nil
}

// Generate 渲染提示词并调用模型生成正文
func (c *Client) Generate(ctx context.Context, fc generation.FieldContext) (string, error) {
	if c.client == nil {
		return "", ErrAPIKeyMissing
	}

	prompt, err := BuildPrompt(fc)
	if err != nil {
		return "", err
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var genCfg *genai.GenerateContentConfig
	if c.temperature > 0 {
		genCfg = &genai.GenerateContentConfig{Temperature: genai.Ptr(c.temperature)}
	}

	start := time.Now()
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), genCfg)
	if err != nil {
		c.logger.Warn("Gemini 调用失败",
			zap.String("kind", string(fc.Kind())),
			zap.Duration("latency", time.Since(start)),
			zap.Error(err),
		)
		return "", fmt.Errorf("Gemini 调用失败: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	c.logger.Debug("Gemini 调用完成",
		zap.String("kind", string(fc.Kind())),
		zap.Duration("latency", time.Since(start)),
		zap.Int("chars", len(text)),
	)
	return text, nil
}
