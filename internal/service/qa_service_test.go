package service

import (
	"context"
	"os"
	"testing"
	"time"
	"wiki-qa-go/internal/finder"
	"wiki-qa-go/internal/model"
	"wiki-qa-go/pkg/log"
	"wiki-qa-go/pkg/reader"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	log.Init("error", "console", "")
	os.Exit(m.Run())
}

type stubRetriever struct {
	calls      int
	candidates []model.Candidate
}

func (s *stubRetriever) Retrieve(ctx context.Context, query string, candidateDocIDs []uint, topK int) ([]model.Candidate, error) {
	s.calls++
	return s.candidates, nil
}

func (s *stubRetriever) Refresh(ctx context.Context) error { return nil }

type stubReader struct {
	gotTopK     int
	predictions []reader.Prediction
}

func (s *stubReader) Predict(ctx context.Context, question string, passages []reader.Passage, topK int) ([]reader.Prediction, error) {
	s.gotTopK = topK
	return s.predictions, nil
}

type memoryAnswerCache struct {
	store map[string]*model.QAResult
}

func newMemoryAnswerCache() *memoryAnswerCache {
	return &memoryAnswerCache{store: make(map[string]*model.QAResult)}
}

func (c *memoryAnswerCache) Get(ctx context.Context, key string) (*model.QAResult, error) {
	return c.store[key], nil
}

func (c *memoryAnswerCache) Set(ctx context.Context, key string, result *model.QAResult, ttl time.Duration) error {
	c.store[key] = result
	return nil
}

func newTestService(ret *stubRetriever, rd *stubReader, cache *memoryAnswerCache) QAService {
	f := finder.NewFinder(ret, rd)
	return NewQAService(f, cache, 10, 5, 60)
}

func TestAskCachesResult(t *testing.T) {
	ret := &stubRetriever{candidates: []model.Candidate{
		{ParagraphID: 1, DocumentID: 1, DocumentName: "arya_stark.txt", Text: "Arya Stark is a daughter of Eddard Stark."},
	}}
	rd := &stubReader{predictions: []reader.Prediction{
		{PassageID: 1, Answer: "Eddard Stark", Score: 9.1, Start: 28, End: 40},
	}}
	svc := newTestService(ret, rd, newMemoryAnswerCache())

	first, err := svc.Ask(context.Background(), "Who is the father of Arya Stark?", 10, 5)
	require.NoError(t, err)
	require.Len(t, first.Answers, 1)
	assert.Equal(t, 1, ret.calls)

	// 第二次相同查询命中缓存，不再触发检索
	second, err := svc.Ask(context.Background(), "Who is the father of Arya Stark?", 10, 5)
	require.NoError(t, err)
	assert.Equal(t, first.Answers, second.Answers)
	assert.Equal(t, 1, ret.calls)
}

func TestAskDifferentTopKBypassesCache(t *testing.T) {
	ret := &stubRetriever{candidates: []model.Candidate{{ParagraphID: 1, Text: "t"}}}
	rd := &stubReader{}
	svc := newTestService(ret, rd, newMemoryAnswerCache())

	_, err := svc.Ask(context.Background(), "q", 10, 5)
	require.NoError(t, err)
	_, err = svc.Ask(context.Background(), "q", 3, 5)
	require.NoError(t, err)
	assert.Equal(t, 2, ret.calls)
}

func TestAskAppliesDefaultTopK(t *testing.T) {
	ret := &stubRetriever{candidates: []model.Candidate{{ParagraphID: 1, Text: "t"}}}
	rd := &stubReader{}
	svc := newTestService(ret, rd, newMemoryAnswerCache())

	// 请求未指定 top-k 时使用服务默认值
	_, err := svc.Ask(context.Background(), "q", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, rd.gotTopK)
}

func TestAskEmptyCorpus(t *testing.T) {
	svc := newTestService(&stubRetriever{}, &stubReader{}, newMemoryAnswerCache())

	result, err := svc.Ask(context.Background(), "q", 10, 5)
	require.NoError(t, err)
	assert.Empty(t, result.Answers)
}
