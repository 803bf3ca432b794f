package retriever

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"sync"
	"wiki-qa-go/internal/model"
	"wiki-qa-go/internal/repository"
	"wiki-qa-go/pkg/log"
)

// tokenPattern 匹配长度至少为 2 的词元（字母、数字、下划线）。
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// posting 是倒排表中的一项：段落下标与该词在段落向量中的归一化权重。
type posting struct {
	idx    int
	weight float64
}

// paragraphEntry 是构建矩阵时加载到内存的一个段落。
type paragraphEntry struct {
	paragraphID  uint
	documentID   uint
	documentName string
	text         string
}

// TfidfRetriever 在内存中维护一个段落级 TF-IDF 矩阵。
//
// 权重采用平滑 idf（ln((1+n)/(1+df)) + 1），段落向量做 L2 归一化；
// 查询向量用同一套词表和 idf 变换后与矩阵做点积，得分即余弦相似度。
type TfidfRetriever struct {
	docRepo  repository.DocumentRepository
	paraRepo repository.ParagraphRepository

	mu         sync.RWMutex
	paragraphs []paragraphEntry
	postings   map[string][]posting
	idf        map[string]float64
}

// NewTfidfRetriever 创建一个新的 TfidfRetriever 实例。
// 返回前不加载语料，需要显式调用 Refresh。
func NewTfidfRetriever(docRepo repository.DocumentRepository, paraRepo repository.ParagraphRepository) *TfidfRetriever {
	return &TfidfRetriever{
		docRepo:  docRepo,
		paraRepo: paraRepo,
		postings: make(map[string][]posting),
		idf:      make(map[string]float64),
	}
}

// Refresh 从数据库读取全部段落并重建 TF-IDF 矩阵。
func (r *TfidfRetriever) Refresh(ctx context.Context) error {
	docs, err := r.docRepo.FindAll()
	if err != nil {
		return fmt.Errorf("加载文档列表失败: %w", err)
	}
	docNames := make(map[uint]string, len(docs))
	for _, d := range docs {
		docNames[d.ID] = d.Name
	}

	rows, err := r.paraRepo.FindAll()
	if err != nil {
		return fmt.Errorf("加载段落失败: %w", err)
	}

	paragraphs := make([]paragraphEntry, 0, len(rows))
	for _, p := range rows {
		if strings.TrimSpace(p.Text) == "" {
			continue
		}
		paragraphs = append(paragraphs, paragraphEntry{
			paragraphID:  p.ID,
			documentID:   p.DocumentID,
			documentName: docNames[p.DocumentID],
			text:         p.Text,
		})
	}

	postings, idf := buildMatrix(paragraphs)

	r.mu.Lock()
	r.paragraphs = paragraphs
	r.postings = postings
	r.idf = idf
	r.mu.Unlock()

	log.Infof("[TfidfRetriever] 矩阵重建完成: %d 个候选段落, 来自 %d 篇文档, 词表大小 %d",
		len(paragraphs), len(docs), len(idf))
	return nil
}

// Retrieve 对 query 打分并返回 topK 个候选段落，得分降序排列。
// 查询词与语料词表完全无交集时直接返回空集，而不是 topK 个零分段落。
func (r *TfidfRetriever) Retrieve(ctx context.Context, query string, candidateDocIDs []uint, topK int) ([]model.Candidate, error) {
	if topK <= 0 {
		topK = 10
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.paragraphs) == 0 {
		return []model.Candidate{}, nil
	}

	queryVec := r.transformQuery(query)
	if len(queryVec) == 0 {
		return []model.Candidate{}, nil
	}

	// 稀疏点积：只遍历查询词命中的倒排表
	scores := make([]float64, len(r.paragraphs))
	for term, qw := range queryVec {
		for _, p := range r.postings[term] {
			scores[p.idx] += qw * p.weight
		}
	}

	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	// 得分降序；同分时段落加载顺序在前的优先
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	var docFilter map[uint]struct{}
	if len(candidateDocIDs) > 0 {
		docFilter = make(map[uint]struct{}, len(candidateDocIDs))
		for _, id := range candidateDocIDs {
			docFilter[id] = struct{}{}
		}
	}

	results := make([]model.Candidate, 0, topK)
	for _, idx := range order {
		entry := r.paragraphs[idx]
		if docFilter != nil {
			if _, ok := docFilter[entry.documentID]; !ok {
				continue
			}
		}
		results = append(results, model.Candidate{
			ParagraphID:  entry.paragraphID,
			DocumentID:   entry.documentID,
			DocumentName: entry.documentName,
			Text:         entry.text,
			Score:        scores[idx],
		})
		if len(results) == topK {
			break
		}
	}

	log.Infof("[TfidfRetriever] 检索到 %d 个候选段落, query: '%s'", len(results), query)
	return results, nil
}

// transformQuery 用语料的词表和 idf 将查询转成 L2 归一化的稀疏向量。
// 不在词表中的查询词直接忽略。
func (r *TfidfRetriever) transformQuery(query string) map[string]float64 {
	counts := termCounts(query)
	vec := make(map[string]float64, len(counts))
	var norm float64
	for term, count := range counts {
		idf, ok := r.idf[term]
		if !ok {
			continue
		}
		w := float64(count) * idf
		vec[term] = w
		norm += w * w
	}
	if norm == 0 {
		return nil
	}
	norm = math.Sqrt(norm)
	for term := range vec {
		vec[term] /= norm
	}
	return vec
}

// buildMatrix 从段落集合构建倒排表和 idf 表。
func buildMatrix(paragraphs []paragraphEntry) (map[string][]posting, map[string]float64) {
	n := len(paragraphs)
	counts := make([]map[string]int, n)
	df := make(map[string]int)

	for i, p := range paragraphs {
		c := termCounts(p.text)
		counts[i] = c
		for term := range c {
			df[term]++
		}
	}

	// 平滑 idf: ln((1+n)/(1+df)) + 1
	idf := make(map[string]float64, len(df))
	for term, d := range df {
		idf[term] = math.Log(float64(1+n)/float64(1+d)) + 1
	}

	postings := make(map[string][]posting, len(df))
	for i, c := range counts {
		var norm float64
		weights := make(map[string]float64, len(c))
		for term, count := range c {
			w := float64(count) * idf[term]
			weights[term] = w
			norm += w * w
		}
		if norm == 0 {
			continue
		}
		norm = math.Sqrt(norm)
		for term, w := range weights {
			postings[term] = append(postings[term], posting{idx: i, weight: w / norm})
		}
	}

	return postings, idf
}

// termCounts 统计文本中各词元的出现次数，词元统一转小写。
func termCounts(text string) map[string]int {
	tokens := tokenPattern.FindAllString(strings.ToLower(text), -1)
	counts := make(map[string]int, len(tokens))
	for _, t := range tokens {
		counts[t]++
	}
	return counts
}
