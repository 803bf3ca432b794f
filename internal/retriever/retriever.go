// Package retriever 实现了问答流水线的检索阶段：
// 从语料库中快速筛出少量可能包含答案的候选段落。
package retriever

import (
	"context"
	"wiki-qa-go/internal/model"
)

// Retriever 定义了检索器的统一接口。
type Retriever interface {
	// Retrieve 对 query 打分并返回得分最高的 topK 个候选段落。
	// candidateDocIDs 非空时，结果限定在给定文档范围内。
	Retrieve(ctx context.Context, query string, candidateDocIDs []uint, topK int) ([]model.Candidate, error)
	// Refresh 从持久化存储重建检索索引。语料发生增删后调用。
	Refresh(ctx context.Context) error
}
