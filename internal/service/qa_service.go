// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"time"
	"wiki-qa-go/internal/finder"
	"wiki-qa-go/internal/model"
	"wiki-qa-go/internal/repository"
	"wiki-qa-go/pkg/log"

	"github.com/gorilla/websocket"
)

// QAService 定义了问答操作的接口。
type QAService interface {
	Ask(ctx context.Context, question string, topKRetriever, topKReader int) (*model.QAResult, error)
	StreamAnswers(ctx context.Context, question string, topKRetriever, topKReader int, ws *websocket.Conn, shouldStop func() bool) error
}

type qaService struct {
	qaFinder    *finder.Finder
	answerCache repository.AnswerCacheRepository
	retrieverK  int
	readerK     int
	answerTTL   time.Duration
}

// NewQAService 创建一个新的 QAService 实例。
// defaultRetrieverK/defaultReaderK 是请求未显式指定时的两阶段 top-k。
func NewQAService(qaFinder *finder.Finder, answerCache repository.AnswerCacheRepository, defaultRetrieverK, defaultReaderK, answerTTLMinutes int) QAService {
	if defaultRetrieverK <= 0 {
		defaultRetrieverK = 10
	}
	if defaultReaderK <= 0 {
		defaultReaderK = 5
	}
	ttl := time.Duration(answerTTLMinutes) * time.Minute
	if answerTTLMinutes <= 0 {
		ttl = time.Hour
	}
	return &qaService{
		qaFinder:    qaFinder,
		answerCache: answerCache,
		retrieverK:  defaultRetrieverK,
		readerK:     defaultReaderK,
		answerTTL:   ttl,
	}
}

// Ask 执行一次问答查询，结果在缓存有效期内复用。
func (s *qaService) Ask(ctx context.Context, question string, topKRetriever, topKReader int) (*model.QAResult, error) {
	topKRetriever, topKReader = s.normalizeTopK(topKRetriever, topKReader)
	cacheKey := answerCacheKey(question, topKRetriever, topKReader)

	if cached, err := s.answerCache.Get(ctx, cacheKey); err != nil {
		// 缓存故障不影响问答主流程
		log.Warnf("[QAService] 读取答案缓存失败: %v", err)
	} else if cached != nil {
		log.Infof("[QAService] 答案缓存命中, question: '%s'", question)
		return cached, nil
	}

	result, err := s.qaFinder.GetAnswers(ctx, question, topKRetriever, topKReader)
	if err != nil {
		return nil, err
	}

	if err := s.answerCache.Set(ctx, cacheKey, result, s.answerTTL); err != nil {
		log.Warnf("[QAService] 写入答案缓存失败: %v", err)
	}
	return result, nil
}

// streamFrame 是 WebSocket 流式问答的一帧。
type streamFrame struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// StreamAnswers 通过 WebSocket 分阶段推送问答进度：
// 先推送检索到的候选段落，再推送最终答案，最后发送完成帧。
func (s *qaService) StreamAnswers(ctx context.Context, question string, topKRetriever, topKReader int, ws *websocket.Conn, shouldStop func() bool) error {
	topKRetriever, topKReader = s.normalizeTopK(topKRetriever, topKReader)

	candidates, err := s.qaFinder.RetrieveCandidates(ctx, question, topKRetriever)
	if err != nil {
		_ = writeFrame(ws, streamFrame{Type: "error", Data: "检索失败"})
		return err
	}
	if err := writeFrame(ws, streamFrame{Type: "retrieval", Data: candidates}); err != nil {
		return err
	}

	if shouldStop != nil && shouldStop() {
		log.Infof("[QAService] 客户端请求停止, question: '%s'", question)
		return writeFrame(ws, streamFrame{Type: "stopped"})
	}

	answers := []model.Answer{}
	if len(candidates) > 0 {
		answers, err = s.qaFinder.ExtractAnswers(ctx, question, candidates, topKReader)
		if err != nil {
			_ = writeFrame(ws, streamFrame{Type: "error", Data: "阅读器推理失败"})
			return err
		}
	}

	result := &model.QAResult{Question: question, Answers: answers}
	if err := writeFrame(ws, streamFrame{Type: "answers", Data: result}); err != nil {
		return err
	}

	// 流式查询同样写缓存，后续相同问题可直接命中
	cacheKey := answerCacheKey(question, topKRetriever, topKReader)
	if err := s.answerCache.Set(ctx, cacheKey, result, s.answerTTL); err != nil {
		log.Warnf("[QAService] 写入答案缓存失败: %v", err)
	}

	return writeFrame(ws, streamFrame{Type: "done"})
}

func (s *qaService) normalizeTopK(topKRetriever, topKReader int) (int, int) {
	if topKRetriever <= 0 {
		topKRetriever = s.retrieverK
	}
	if topKReader <= 0 {
		topKReader = s.readerK
	}
	return topKRetriever, topKReader
}

func writeFrame(ws *websocket.Conn, frame streamFrame) error {
	b, err := json.Marshal(frame)
	if err != nil {
		return fmt.Errorf("failed to marshal stream frame: %w", err)
	}
	return ws.WriteMessage(websocket.TextMessage, b)
}

// answerCacheKey 由问题与两阶段 top-k 参数唯一确定。
func answerCacheKey(question string, topKRetriever, topKReader int) string {
	h := sha1.Sum([]byte(fmt.Sprintf("%s|%d|%d", question, topKRetriever, topKReader)))
	return fmt.Sprintf("%x", h)
}
