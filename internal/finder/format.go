package finder

import (
	"fmt"
	"strings"
	"wiki-qa-go/internal/model"
)

// FormatAnswers 将问答结果渲染为可读文本。
// minimal 为 true 时只输出答案和上下文；否则附带得分、来源等详细信息。
func FormatAnswers(result *model.QAResult, minimal bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Q: %s\n", result.Question)

	if len(result.Answers) == 0 {
		b.WriteString("No answers found.\n")
		return b.String()
	}

	for i, a := range result.Answers {
		fmt.Fprintf(&b, "%d. %s\n", i+1, a.Answer)
		fmt.Fprintf(&b, "   context: ...%s...\n", a.Context)
		if minimal {
			continue
		}
		fmt.Fprintf(&b, "   score: %.4f  probability: %.4f\n", a.Score, a.Probability)
		fmt.Fprintf(&b, "   source: %s (document %d, paragraph %d, offset %d-%d)\n",
			a.DocumentName, a.DocumentID, a.ParagraphID, a.OffsetStart, a.OffsetEnd)
	}
	return b.String()
}
