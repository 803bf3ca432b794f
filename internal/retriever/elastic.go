package retriever

import (
	"context"
	"wiki-qa-go/internal/model"
	"wiki-qa-go/pkg/es"
)

// ParagraphSearcher 抽象段落索引上的全文检索。
type ParagraphSearcher interface {
	SearchParagraphs(ctx context.Context, query string, candidateDocIDs []uint, topK int) ([]es.ParagraphHit, error)
}

// ElasticRetriever 基于 Elasticsearch 的段落索引做 BM25 检索。
// 索引内容由导入流水线维护，Refresh 不需要做任何事。
type ElasticRetriever struct {
	searcher ParagraphSearcher
}

// NewElasticRetriever 创建一个新的 ElasticRetriever 实例。
func NewElasticRetriever(searcher ParagraphSearcher) *ElasticRetriever {
	return &ElasticRetriever{searcher: searcher}
}

// Retrieve 在段落索引上执行全文检索并返回 topK 个候选段落。
func (r *ElasticRetriever) Retrieve(ctx context.Context, query string, candidateDocIDs []uint, topK int) ([]model.Candidate, error) {
	if topK <= 0 {
		topK = 10
	}

	hits, err := r.searcher.SearchParagraphs(ctx, query, candidateDocIDs, topK)
	if err != nil {
		return nil, err
	}

	results := make([]model.Candidate, 0, len(hits))
	for _, h := range hits {
		results = append(results, model.Candidate{
			ParagraphID:  h.Source.ParagraphID,
			DocumentID:   h.Source.DocumentID,
			DocumentName: h.Source.DocumentName,
			Text:         h.Source.Text,
			Score:        h.Score,
		})
	}
	return results, nil
}

// Refresh 对 ES 检索器是空操作，索引由导入流水线实时更新。
func (r *ElasticRetriever) Refresh(ctx context.Context) error {
	return nil
}
