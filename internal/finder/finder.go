// Package finder 将检索器与阅读器串联成完整的问答流水线：
// 检索阶段先把语料缩小到少量候选段落，阅读阶段再从候选中抽取答案片段。
package finder

import (
	"context"
	"fmt"
	"sort"
	"wiki-qa-go/internal/model"
	"wiki-qa-go/internal/retriever"
	"wiki-qa-go/pkg/log"
	"wiki-qa-go/pkg/reader"
)

// 答案上下文窗口：答案片段两侧各保留的 rune 数。
const contextWindow = 80

// Finder 封装了两阶段问答流水线。
type Finder struct {
	retriever    retriever.Retriever
	readerClient reader.Client
}

// NewFinder 创建一个新的 Finder 实例。
func NewFinder(r retriever.Retriever, readerClient reader.Client) *Finder {
	return &Finder{
		retriever:    r,
		readerClient: readerClient,
	}
}

// GetAnswers 执行一次完整的问答查询。
// topKRetriever 控制检索阶段的候选段落数，topKReader 控制最终返回的答案数。
func (f *Finder) GetAnswers(ctx context.Context, question string, topKRetriever, topKReader int) (*model.QAResult, error) {
	candidates, err := f.RetrieveCandidates(ctx, question, topKRetriever)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		log.Infof("[Finder] 检索阶段没有候选段落, question: '%s'", question)
		return &model.QAResult{Question: question, Answers: []model.Answer{}}, nil
	}

	answers, err := f.ExtractAnswers(ctx, question, candidates, topKReader)
	if err != nil {
		return nil, err
	}

	log.Infof("[Finder] 问答完成, question: '%s', 返回 %d 个答案", question, len(answers))
	return &model.QAResult{Question: question, Answers: answers}, nil
}

// RetrieveCandidates 执行检索阶段，返回 topK 个候选段落。
func (f *Finder) RetrieveCandidates(ctx context.Context, question string, topK int) ([]model.Candidate, error) {
	candidates, err := f.retriever.Retrieve(ctx, question, nil, topK)
	if err != nil {
		return nil, fmt.Errorf("检索候选段落失败: %w", err)
	}
	return candidates, nil
}

// ExtractAnswers 执行阅读阶段：把候选段落送入阅读器，
// 合并预测与来源元数据后按得分降序截取 topK。
func (f *Finder) ExtractAnswers(ctx context.Context, question string, candidates []model.Candidate, topK int) ([]model.Answer, error) {
	passages := make([]reader.Passage, 0, len(candidates))
	for _, c := range candidates {
		passages = append(passages, reader.Passage{ID: c.ParagraphID, Text: c.Text})
	}

	predictions, err := f.readerClient.Predict(ctx, question, passages, topK)
	if err != nil {
		return nil, fmt.Errorf("阅读器推理失败: %w", err)
	}
	return mergeAnswers(candidates, predictions, topK), nil
}

// mergeAnswers 将阅读器预测与候选段落元数据合并，按得分降序截取 topK。
func mergeAnswers(candidates []model.Candidate, predictions []reader.Prediction, topK int) []model.Answer {
	if topK <= 0 {
		topK = 5
	}

	byParagraph := make(map[uint]model.Candidate, len(candidates))
	for _, c := range candidates {
		byParagraph[c.ParagraphID] = c
	}

	answers := make([]model.Answer, 0, len(predictions))
	for _, p := range predictions {
		candidate, ok := byParagraph[p.PassageID]
		if !ok {
			// 推理服务返回了不在候选集中的段落，跳过
			log.Warnf("[Finder] 预测指向未知段落 %d, 已忽略", p.PassageID)
			continue
		}
		answers = append(answers, model.Answer{
			Answer:       p.Answer,
			Score:        p.Score,
			Probability:  p.Probability,
			Context:      contextAround(candidate.Text, p.Start, p.End),
			OffsetStart:  p.Start,
			OffsetEnd:    p.End,
			DocumentID:   candidate.DocumentID,
			DocumentName: candidate.DocumentName,
			ParagraphID:  candidate.ParagraphID,
		})
	}

	sort.SliceStable(answers, func(a, b int) bool {
		return answers[a].Score > answers[b].Score
	})
	if len(answers) > topK {
		answers = answers[:topK]
	}
	return answers
}

// contextAround 截取答案片段两侧各 contextWindow 个 rune 的上下文。
// 偏移越界时退化为整段文本。
func contextAround(text string, start, end int) string {
	runes := []rune(text)
	if start < 0 || end > len(runes) || start > end {
		return text
	}
	from := start - contextWindow
	if from < 0 {
		from = 0
	}
	to := end + contextWindow
	if to > len(runes) {
		to = len(runes)
	}
	return string(runes[from:to])
}
