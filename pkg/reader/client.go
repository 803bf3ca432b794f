// Package reader provides a client for an extractive question answering
// inference service. 模型本身（span 抽取）运行在独立的推理服务中，
// 本包只负责 HTTP 调用与结果解码。
package reader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
	"wiki-qa-go/internal/config"
	"wiki-qa-go/pkg/log"
)

// Passage 是发送给推理服务的一个候选段落。
type Passage struct {
	ID   uint   `json:"id"`
	Text string `json:"text"`
}

// Prediction 是推理服务对单个段落抽取出的答案片段。
// Start/End 是答案在段落文本中的 rune 偏移。
type Prediction struct {
	PassageID   uint    `json:"passage_id"`
	Answer      string  `json:"answer"`
	Score       float64 `json:"score"`
	Probability float64 `json:"probability"`
	Start       int     `json:"start"`
	End         int     `json:"end"`
}

// Client defines the interface for a reader client.
type Client interface {
	Predict(ctx context.Context, question string, passages []Passage, topK int) ([]Prediction, error)
}

type httpClient struct {
	cfg    config.ReaderConfig
	client *http.Client
}

// NewClient creates a new reader client for the configured inference endpoint.
func NewClient(cfg config.ReaderConfig) Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if cfg.TimeoutSeconds <= 0 {
		timeout = 60 * time.Second
	}
	return &httpClient{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

type predictRequest struct {
	Model    string    `json:"model"`
	Question string    `json:"question"`
	Passages []Passage `json:"passages"`
	TopK     int       `json:"top_k,omitempty"`
}

type predictResponse struct {
	Answers []Prediction `json:"answers"`
}

// Predict calls the inference service to extract answer spans from the
// given passages.
func (c *httpClient) Predict(ctx context.Context, question string, passages []Passage, topK int) ([]Prediction, error) {
	log.Infof("[ReaderClient] 开始调用推理服务, model: %s, passages: %d", c.cfg.Model, len(passages))
	reqBody := predictRequest{
		Model:    c.cfg.Model,
		Question: question,
		Passages: passages,
		TopK:     topK,
	}

	reqBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal predict request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.cfg.BaseURL+"/predict", bytes.NewReader(reqBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create predict request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		log.Errorf("[ReaderClient] 调用推理服务失败, error: %v", err)
		return nil, fmt.Errorf("failed to call reader api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Errorf("[ReaderClient] 推理服务返回非 200 状态码: %s", resp.Status)
		return nil, fmt.Errorf("reader api returned non-200 status: %s", resp.Status)
	}

	var predictResp predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&predictResp); err != nil {
		log.Errorf("[ReaderClient] 解析推理服务响应失败, error: %v", err)
		return nil, fmt.Errorf("failed to decode predict response: %w", err)
	}

	log.Infof("[ReaderClient] 推理服务返回 %d 个答案片段", len(predictResp.Answers))
	return predictResp.Answers, nil
}
