package model

// Candidate 是检索阶段返回的一个候选段落。
type Candidate struct {
	ParagraphID  uint    `json:"paragraphId"`
	DocumentID   uint    `json:"documentId"`
	DocumentName string  `json:"documentName"`
	Text         string  `json:"text"`
	Score        float64 `json:"score"`
}

// Answer 是阅读阶段从候选段落中抽取出的一个答案片段。
// Offset 以 rune 计，相对于所在段落文本的起始位置。
type Answer struct {
	Answer       string  `json:"answer"`
	Score        float64 `json:"score"`
	Probability  float64 `json:"probability"`
	Context      string  `json:"context"`
	OffsetStart  int     `json:"offsetStart"`
	OffsetEnd    int     `json:"offsetEnd"`
	DocumentID   uint    `json:"documentId"`
	DocumentName string  `json:"documentName"`
	ParagraphID  uint    `json:"paragraphId"`
}

// QAResult 是一次问答查询的完整结果。
type QAResult struct {
	Question string   `json:"question"`
	Answers  []Answer `json:"answers"`
}

// AskRequest 定义了问答接口的请求体。
type AskRequest struct {
	Question      string `json:"question" binding:"required"`
	TopKRetriever int    `json:"topKRetriever"`
	TopKReader    int    `json:"topKReader"`
}
