// Package repository 提供了数据访问层的实现。
package repository

import (
	"errors"
	"wiki-qa-go/internal/model"

	"gorm.io/gorm"
)

// DocumentRepository 定义了对 documents 表的数据操作接口。
type DocumentRepository interface {
	Upsert(doc *model.Document) error
	FindByID(id uint) (*model.Document, error)
	FindAll() ([]*model.Document, error)
	ExistsByMD5(md5 string) (bool, error)
	Delete(id uint) error
}

type documentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository 创建一个新的 DocumentRepository 实例。
func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

// Upsert 按文档名写入：已存在则覆盖全文与 MD5，否则新建记录。
// 导入同名文件（语料更新）时保持文档 ID 稳定。
func (r *documentRepository) Upsert(doc *model.Document) error {
	var existing model.Document
	err := r.db.Where("name = ?", doc.Name).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.Create(doc).Error
	}
	if err != nil {
		return err
	}
	doc.ID = existing.ID
	return r.db.Model(&existing).
		Updates(map[string]interface{}{"md5": doc.MD5, "text": doc.Text, "source": doc.Source}).Error
}

// FindByID 根据主键查找文档。
func (r *documentRepository) FindByID(id uint) (*model.Document, error) {
	var doc model.Document
	if err := r.db.First(&doc, id).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

// FindAll 返回全部文档（含全文）。
func (r *documentRepository) FindAll() ([]*model.Document, error) {
	var docs []*model.Document
	err := r.db.Find(&docs).Error
	return docs, err
}

// ExistsByMD5 判断内容完全相同的文档是否已经导入过。
func (r *documentRepository) ExistsByMD5(md5 string) (bool, error) {
	var count int64
	if err := r.db.Model(&model.Document{}).Where("md5 = ?", md5).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Delete 删除一篇文档。
func (r *documentRepository) Delete(id uint) error {
	return r.db.Delete(&model.Document{}, id).Error
}
