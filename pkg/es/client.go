// Package es 提供了与 Elasticsearch 交互的客户端功能。
package es

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"wiki-qa-go/internal/config"
	"wiki-qa-go/internal/model"
	"wiki-qa-go/pkg/log"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

var ESClient *elasticsearch.Client

// InitES 初始化 Elasticsearch 客户端
func InitES(esCfg config.ElasticsearchConfig) error {
	cfg := elasticsearch.Config{
		Addresses: []string{esCfg.Addresses},
		Username:  esCfg.Username,
		Password:  esCfg.Password,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
	}
	client, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return err
	}
	ESClient = client
	return createIndexIfNotExists(esCfg.IndexName)
}

// createIndexIfNotExists 检查段落索引是否存在，如果不存在则创建它
func createIndexIfNotExists(indexName string) error {
	res, err := ESClient.Indices.Exists([]string{indexName})
	if err != nil {
		log.Errorf("检查索引是否存在时出错: %v", err)
		return err
	}
	if !res.IsError() && res.StatusCode == http.StatusOK {
		log.Infof("索引 '%s' 已存在", indexName)
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		log.Errorf("检查索引 '%s' 是否存在时收到意外的状态码: %d", indexName, res.StatusCode)
		return fmt.Errorf("检查索引是否存在时收到意外的状态码: %d", res.StatusCode)
	}

	// 语料是英文维基文本，text 字段使用 english 分词器做 BM25 检索
	mapping := `{
		"mappings": {
			"properties": {
				"paragraph_id": { "type": "long" },
				"document_id": { "type": "long" },
				"document_name": { "type": "keyword" },
				"paragraph_idx": { "type": "integer" },
				"text": {
					"type": "text",
					"analyzer": "english"
				}
			}
		}
	}`

	res, err = ESClient.Indices.Create(
		indexName,
		ESClient.Indices.Create.WithBody(strings.NewReader(mapping)),
	)

	if err != nil {
		log.Errorf("创建索引 '%s' 失败: %v", indexName, err)
		return err
	}
	if res.IsError() {
		log.Errorf("创建索引 '%s' 时 Elasticsearch 返回错误: %s", indexName, res.String())
		return errors.New("创建索引时 Elasticsearch 返回错误")
	}

	log.Infof("索引 '%s' 创建成功", indexName)
	return nil
}

// IndexParagraph 将单个段落索引到 Elasticsearch。
func IndexParagraph(ctx context.Context, indexName string, doc model.EsParagraph) error {
	docBytes, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index:      indexName,
		DocumentID: strconv.FormatUint(uint64(doc.ParagraphID), 10),
		Body:       bytes.NewReader(docBytes),
		Refresh:    "true",
	}

	res, err := req.Do(ctx, ESClient)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		log.Errorf("索引段落到 Elasticsearch 出错: %s", res.String())
		return errors.New("failed to index paragraph")
	}

	return nil
}

// DeleteByDocumentID 删除某篇文档在索引中的全部段落。
func DeleteByDocumentID(ctx context.Context, indexName string, documentID uint) error {
	query := fmt.Sprintf(`{"query":{"term":{"document_id":%d}}}`, documentID)

	res, err := ESClient.DeleteByQuery(
		[]string{indexName},
		strings.NewReader(query),
		ESClient.DeleteByQuery.WithContext(ctx),
		ESClient.DeleteByQuery.WithRefresh(true),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		log.Errorf("按文档删除段落出错: %s", res.String())
		return errors.New("failed to delete paragraphs by document")
	}

	return nil
}

// Index 将段落索引的各项操作绑定到一个具体索引名，
// 业务层以接口形式注入，便于测试替换。
type Index struct {
	Name string
}

// IndexParagraph 将单个段落写入该索引。
func (i Index) IndexParagraph(ctx context.Context, doc model.EsParagraph) error {
	return IndexParagraph(ctx, i.Name, doc)
}

// DeleteByDocumentID 删除某篇文档在该索引中的全部段落。
func (i Index) DeleteByDocumentID(ctx context.Context, documentID uint) error {
	return DeleteByDocumentID(ctx, i.Name, documentID)
}

// SearchParagraphs 在该索引上执行 BM25 全文检索。
func (i Index) SearchParagraphs(ctx context.Context, query string, candidateDocIDs []uint, topK int) ([]ParagraphHit, error) {
	return SearchParagraphs(ctx, i.Name, query, candidateDocIDs, topK)
}

// ParagraphHit 是段落检索的一条命中结果。
type ParagraphHit struct {
	Source model.EsParagraph
	Score  float64
}

// SearchParagraphs 在段落索引上执行 BM25 全文检索。
// candidateDocIDs 非空时仅在给定文档范围内检索。
func SearchParagraphs(ctx context.Context, indexName, query string, candidateDocIDs []uint, topK int) ([]ParagraphHit, error) {
	boolQuery := map[string]interface{}{
		"must": map[string]interface{}{
			"match": map[string]interface{}{
				"text": query,
			},
		},
	}
	if len(candidateDocIDs) > 0 {
		boolQuery["filter"] = map[string]interface{}{
			"terms": map[string]interface{}{
				"document_id": candidateDocIDs,
			},
		}
	}

	esQuery := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": boolQuery,
		},
		"size": topK,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(esQuery); err != nil {
		return nil, fmt.Errorf("failed to encode es query: %w", err)
	}

	res, err := ESClient.Search(
		ESClient.Search.WithContext(ctx),
		ESClient.Search.WithIndex(indexName),
		ESClient.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch search failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		log.Errorf("Elasticsearch 检索返回错误: %s", res.String())
		return nil, fmt.Errorf("elasticsearch returned an error: %s", res.String())
	}

	var esResponse struct {
		Hits struct {
			Hits []struct {
				Source model.EsParagraph `json:"_source"`
				Score  float64           `json:"_score"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&esResponse); err != nil {
		return nil, fmt.Errorf("failed to decode es response: %w", err)
	}

	hits := make([]ParagraphHit, 0, len(esResponse.Hits.Hits))
	for _, h := range esResponse.Hits.Hits {
		hits = append(hits, ParagraphHit{Source: h.Source, Score: h.Score})
	}
	return hits, nil
}
