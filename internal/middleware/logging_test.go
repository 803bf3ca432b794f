package middleware

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncateBodyKeepsRuneBoundary(t *testing.T) {
	// 3 字节字符重复：截断点落在多字节序列中间时必须回退到字符边界
	body := strings.Repeat("答", 1000)

	out := truncateBody(body)

	assert.True(t, utf8.ValidString(out))
	assert.True(t, strings.HasSuffix(out, "...(truncated)"))
	assert.LessOrEqual(t, len(out)-len("...(truncated)"), maxLoggedBody)
}

func TestTruncateBodyShortBodyUnchanged(t *testing.T) {
	assert.Equal(t, "ok", truncateBody("ok"))
	assert.Equal(t, "", truncateBody(""))
}
