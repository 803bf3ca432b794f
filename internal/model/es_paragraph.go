package model

// EsParagraph 定义了存储在 Elasticsearch 段落索引中的文档结构。
type EsParagraph struct {
	ParagraphID  uint   `json:"paragraph_id"`
	DocumentID   uint   `json:"document_id"`
	DocumentName string `json:"document_name"`
	ParagraphIdx int    `json:"paragraph_idx"`
	Text         string `json:"text"`
}
