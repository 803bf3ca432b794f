package service

import (
	"context"
	"errors"
	"fmt"
	"wiki-qa-go/internal/model"
	"wiki-qa-go/internal/repository"
	"wiki-qa-go/internal/retriever"
	"wiki-qa-go/pkg/log"

	"gorm.io/gorm"
)

// ErrDocumentNotFound 表示请求的文档不存在。
var ErrDocumentNotFound = errors.New("document not found")

// ParagraphIndexCleaner 抽象段落全文索引的清理操作。
type ParagraphIndexCleaner interface {
	DeleteByDocumentID(ctx context.Context, documentID uint) error
}

// DocumentService 定义了语料文档管理的业务接口。
type DocumentService interface {
	ListDocuments() ([]model.DocumentSummary, error)
	GetDocument(id uint) (*model.Document, error)
	DeleteDocument(ctx context.Context, id uint) error
}

type documentService struct {
	docRepo   repository.DocumentRepository
	paraRepo  repository.ParagraphRepository
	retriever retriever.Retriever
	index     ParagraphIndexCleaner
}

// NewDocumentService 创建一个新的 DocumentService 实例。
func NewDocumentService(docRepo repository.DocumentRepository, paraRepo repository.ParagraphRepository, r retriever.Retriever, index ParagraphIndexCleaner) DocumentService {
	return &documentService{
		docRepo:   docRepo,
		paraRepo:  paraRepo,
		retriever: r,
		index:     index,
	}
}

// ListDocuments 返回全部已导入文档的摘要信息。
func (s *documentService) ListDocuments() ([]model.DocumentSummary, error) {
	docs, err := s.docRepo.FindAll()
	if err != nil {
		return nil, fmt.Errorf("查询文档列表失败: %w", err)
	}

	summaries := make([]model.DocumentSummary, 0, len(docs))
	for _, d := range docs {
		count, err := s.paraRepo.CountByDocumentID(d.ID)
		if err != nil {
			log.Warnf("[DocumentService] 统计文档 %d 段落数失败: %v", d.ID, err)
		}
		summaries = append(summaries, model.DocumentSummary{
			ID:             d.ID,
			Name:           d.Name,
			MD5:            d.MD5,
			Source:         d.Source,
			ParagraphCount: count,
			CreatedAt:      d.CreatedAt,
		})
	}
	return summaries, nil
}

// GetDocument 返回一篇文档（含全文）。
func (s *documentService) GetDocument(id uint) (*model.Document, error) {
	doc, err := s.docRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("查询文档失败: %w", err)
	}
	return doc, nil
}

// DeleteDocument 删除一篇文档及其段落，并同步清理 ES 索引、重建检索矩阵。
func (s *documentService) DeleteDocument(ctx context.Context, id uint) error {
	if _, err := s.GetDocument(id); err != nil {
		return err
	}

	if err := s.index.DeleteByDocumentID(ctx, id); err != nil {
		return fmt.Errorf("清理 ES 段落失败: %w", err)
	}
	if err := s.paraRepo.DeleteByDocumentID(id); err != nil {
		return fmt.Errorf("删除段落记录失败: %w", err)
	}
	if err := s.docRepo.Delete(id); err != nil {
		return fmt.Errorf("删除文档记录失败: %w", err)
	}

	if err := s.retriever.Refresh(ctx); err != nil {
		return fmt.Errorf("重建检索索引失败: %w", err)
	}

	log.Infof("[DocumentService] 文档 %d 已删除", id)
	return nil
}
