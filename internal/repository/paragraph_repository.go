package repository

import (
	"wiki-qa-go/internal/model"

	"gorm.io/gorm"
)

// ParagraphRepository 定义了对 paragraphs 表的数据操作接口。
type ParagraphRepository interface {
	BatchCreate(paragraphs []*model.Paragraph) error
	FindByDocumentID(documentID uint) ([]*model.Paragraph, error)
	FindAll() ([]*model.Paragraph, error)
	CountByDocumentID(documentID uint) (int64, error)
	DeleteByDocumentID(documentID uint) error
}

type paragraphRepository struct {
	db *gorm.DB
}

// NewParagraphRepository 创建一个新的 ParagraphRepository 实例。
func NewParagraphRepository(db *gorm.DB) ParagraphRepository {
	return &paragraphRepository{db: db}
}

// BatchCreate 批量创建段落记录。
func (r *paragraphRepository) BatchCreate(paragraphs []*model.Paragraph) error {
	if len(paragraphs) == 0 {
		return nil
	}
	return r.db.CreateInBatches(paragraphs, 100).Error // 每100条记录一批
}

// FindByDocumentID 查找某篇文档的全部段落，按段落序号排序。
func (r *paragraphRepository) FindByDocumentID(documentID uint) ([]*model.Paragraph, error) {
	var paragraphs []*model.Paragraph
	err := r.db.Where("document_id = ?", documentID).Order("paragraph_idx ASC").Find(&paragraphs).Error
	return paragraphs, err
}

// FindAll 返回全部段落，按主键排序。TF-IDF 检索器重建矩阵时使用。
func (r *paragraphRepository) FindAll() ([]*model.Paragraph, error) {
	var paragraphs []*model.Paragraph
	err := r.db.Order("id ASC").Find(&paragraphs).Error
	return paragraphs, err
}

// CountByDocumentID 统计某篇文档的段落数。
func (r *paragraphRepository) CountByDocumentID(documentID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.Paragraph{}).Where("document_id = ?", documentID).Count(&count).Error
	return count, err
}

// DeleteByDocumentID 删除某篇文档的全部段落记录。
func (r *paragraphRepository) DeleteByDocumentID(documentID uint) error {
	return r.db.Where("document_id = ?", documentID).Delete(&model.Paragraph{}).Error
}
