package pipeline

import (
	"context"
	"errors"
	"fmt"
	"wiki-qa-go/internal/model"
	"wiki-qa-go/internal/repository"
	"wiki-qa-go/internal/retriever"
	"wiki-qa-go/pkg/log"
	"wiki-qa-go/pkg/tasks"
)

// CorpusStore 抽象原始语料对象的读取，由对象存储实现。
type CorpusStore interface {
	GetCorpusFile(ctx context.Context, objectName string) ([]byte, error)
}

// ParagraphIndex 抽象段落全文索引的写操作。
type ParagraphIndex interface {
	IndexParagraph(ctx context.Context, doc model.EsParagraph) error
	DeleteByDocumentID(ctx context.Context, documentID uint) error
}

// Processor 封装了语料导入的所有依赖和逻辑。
type Processor struct {
	store     CorpusStore
	index     ParagraphIndex
	docRepo   repository.DocumentRepository
	paraRepo  repository.ParagraphRepository
	retriever retriever.Retriever
}

// NewProcessor 创建一个新的 Processor 实例。
func NewProcessor(
	store CorpusStore,
	index ParagraphIndex,
	docRepo repository.DocumentRepository,
	paraRepo repository.ParagraphRepository,
	r retriever.Retriever,
) *Processor {
	return &Processor{
		store:     store,
		index:     index,
		docRepo:   docRepo,
		paraRepo:  paraRepo,
		retriever: r,
	}
}

// Process 是语料导入的主函数：取回原始文本、清洗、切分段落、
// 写入数据库并索引到 Elasticsearch，最后触发检索器重建。
func (p *Processor) Process(ctx context.Context, task tasks.DocumentIngestTask) error {
	log.Infof("[Processor] 开始导入文档, FileMD5: %s, FileName: %s", task.FileMD5, task.FileName)

	// 1. 从对象存储取回原始文本
	raw, err := p.store.GetCorpusFile(ctx, task.ObjectName)
	if err != nil {
		log.Errorf("[Processor] 下载语料对象失败, Object: %s, Error: %v", task.ObjectName, err)
		return err
	}
	if len(raw) == 0 {
		log.Warnf("[Processor] 文件 '%s' 内容为空, 处理中止", task.FileName)
		return errors.New("文件内容为空")
	}

	// 2. 清洗文本
	text := CleanWikiText(string(raw))
	if text == "" {
		log.Warnf("[Processor] 清洗后文本为空, 处理中止, FileName: %s", task.FileName)
		return errors.New("清洗后的文本内容为空")
	}

	// 3. 写入（或覆盖）文档记录
	doc := &model.Document{
		Name:   task.FileName,
		MD5:    task.FileMD5,
		Text:   text,
		Source: task.Source,
	}
	if err := p.docRepo.Upsert(doc); err != nil {
		log.Errorf("[Processor] 保存文档记录失败, FileName: %s, Error: %v", task.FileName, err)
		return fmt.Errorf("保存文档记录失败: %w", err)
	}

	// 4. 切分段落。重复导入时先清理旧段落（幂等）
	if err := p.paraRepo.DeleteByDocumentID(doc.ID); err != nil {
		log.Warnf("[Processor] 清理旧段落失败 (document_id=%d): %v", doc.ID, err)
	}
	if err := p.index.DeleteByDocumentID(ctx, doc.ID); err != nil {
		log.Warnf("[Processor] 清理 ES 旧段落失败 (document_id=%d): %v", doc.ID, err)
	}

	chunks := SplitParagraphs(text)
	if len(chunks) == 0 {
		log.Warnf("[Processor] 未切分出任何段落, 处理中止, FileName: %s", task.FileName)
		return errors.New("未切分出任何段落")
	}
	log.Infof("[Processor] 文档切分完成, 共 %d 个段落", len(chunks))

	paragraphs := make([]*model.Paragraph, 0, len(chunks))
	for i, chunk := range chunks {
		paragraphs = append(paragraphs, &model.Paragraph{
			DocumentID:   doc.ID,
			ParagraphIdx: i,
			Text:         chunk,
		})
	}
	if err := p.paraRepo.BatchCreate(paragraphs); err != nil {
		log.Errorf("[Processor] 批量保存段落失败, Error: %v", err)
		return fmt.Errorf("批量保存段落失败: %w", err)
	}

	// 5. 索引到 Elasticsearch
	for _, paragraph := range paragraphs {
		esDoc := model.EsParagraph{
			ParagraphID:  paragraph.ID,
			DocumentID:   doc.ID,
			DocumentName: doc.Name,
			ParagraphIdx: paragraph.ParagraphIdx,
			Text:         paragraph.Text,
		}
		if err := p.index.IndexParagraph(ctx, esDoc); err != nil {
			log.Errorf("[Processor] 索引段落 %d 到 Elasticsearch 失败, Error: %v", paragraph.ParagraphIdx, err)
			return fmt.Errorf("索引段落 %d 到 Elasticsearch 失败: %w", paragraph.ParagraphIdx, err)
		}
	}

	// 6. 语料变化后重建检索矩阵
	if err := p.retriever.Refresh(ctx); err != nil {
		log.Errorf("[Processor] 重建检索索引失败, Error: %v", err)
		return fmt.Errorf("重建检索索引失败: %w", err)
	}

	log.Infof("[Processor] 文档导入成功, FileMD5: %s, 段落数: %d", task.FileMD5, len(paragraphs))
	return nil
}
