// Package model 定义了与数据库表对应的 Go 结构体以及对外的 DTO。
package model

// Document 对应于数据库中的 documents 表，存放一篇清洗后的语料全文。
type Document struct {
	ID        uint      `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null;uniqueIndex;column:name" json:"name"`
	MD5       string    `gorm:"type:varchar(32);not null;index;column:md5" json:"md5"`
	Text      string    `gorm:"type:longtext;column:text" json:"text"`
	Source    string    `gorm:"type:varchar(512);column:source" json:"source"`
	CreatedAt LocalTime `gorm:"autoCreateTime;column:created_at" json:"createdAt"`
	UpdatedAt LocalTime `gorm:"autoUpdateTime;column:updated_at" json:"updatedAt"`
}

func (Document) TableName() string {
	return "documents"
}

// Paragraph 对应于数据库中的 paragraphs 表。
// 段落是检索的基本单位：文档按空行切分后得到的文本块。
type Paragraph struct {
	ID           uint   `gorm:"primaryKey;autoIncrement;column:id"`
	DocumentID   uint   `gorm:"not null;index;column:document_id"`
	ParagraphIdx int    `gorm:"not null;column:paragraph_idx"`
	Text         string `gorm:"type:text;column:text"`
}

func (Paragraph) TableName() string {
	return "paragraphs"
}

// DocumentSummary 定义了文档列表接口返回的结构。
type DocumentSummary struct {
	ID             uint      `json:"id"`
	Name           string    `json:"name"`
	MD5            string    `json:"md5"`
	Source         string    `json:"source"`
	ParagraphCount int64     `json:"paragraphCount"`
	CreatedAt      LocalTime `json:"createdAt"`
}
