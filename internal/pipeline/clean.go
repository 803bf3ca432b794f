// Package pipeline 定义了语料导入的核心流程。
package pipeline

import (
	"strings"
	"unicode/utf8"
)

// CleanWikiText 清洗维基导出的纯文本：
// 压缩连续空行、丢弃过短的噪声行（保留 "==标题==" 形式的小节标题），
// 并在小节标题前重新插入空行，使后续按空行切分段落时小节自成段落。
func CleanWikiText(text string) string {
	// 压缩连续空行
	for strings.Contains(text, "\n\n") {
		text = strings.ReplaceAll(text, "\n\n", "\n")
	}

	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, l := range lines {
		trimmed := strings.TrimSpace(l)
		if trimmed == "" {
			continue
		}
		if utf8.RuneCountInString(trimmed) > 30 || isSectionHeader(trimmed) {
			cleaned = append(cleaned, trimmed)
		}
	}

	text = strings.Join(cleaned, "\n")
	// 小节标题前补空行，作为段落边界
	text = strings.ReplaceAll(text, "\n==", "\n\n==")
	return text
}

// isSectionHeader 判断一行是否是 "==Some Title==" 形式的小节标题。
func isSectionHeader(line string) bool {
	return strings.HasPrefix(line, "==") || strings.HasSuffix(line, "==")
}

// SplitParagraphs 按空行把文档切分为段落，空白段落被跳过。
func SplitParagraphs(text string) []string {
	parts := strings.Split(text, "\n\n")
	paragraphs := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			continue
		}
		paragraphs = append(paragraphs, p)
	}
	return paragraphs
}
