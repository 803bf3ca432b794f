package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanWikiText(t *testing.T) {
	raw := strings.Join([]string{
		"Arya Stark is a daughter of Eddard Stark and Catelyn Stark of Winterfell.",
		"",
		"",
		"==Biography==",
		"short",
		"She trains as a faceless assassin in the city of Braavos across the sea.",
	}, "\n")

	cleaned := CleanWikiText(raw)

	// 噪声短行被丢弃，小节标题保留并自成段落边界
	assert.NotContains(t, cleaned, "short")
	assert.Contains(t, cleaned, "\n\n==Biography==")
	assert.NotContains(t, cleaned, "\n\n\n")
}

func TestCleanWikiTextEmpty(t *testing.T) {
	assert.Equal(t, "", CleanWikiText(""))
	assert.Equal(t, "", CleanWikiText("\n\n\nshort\n\n"))
}

func TestSplitParagraphs(t *testing.T) {
	text := "first paragraph line one\nline two\n\nsecond paragraph\n\n   \n\nthird"

	paragraphs := SplitParagraphs(text)

	assert.Len(t, paragraphs, 3)
	assert.Equal(t, "first paragraph line one\nline two", paragraphs[0])
	assert.Equal(t, "second paragraph", paragraphs[1])
	assert.Equal(t, "third", paragraphs[2])
}

func TestSplitParagraphsEmpty(t *testing.T) {
	assert.Empty(t, SplitParagraphs(""))
	assert.Empty(t, SplitParagraphs("\n\n\n\n"))
}

func TestCleanThenSplit(t *testing.T) {
	raw := strings.Join([]string{
		"Winterfell is the ancestral castle and seat of power of House Stark.",
		"==History==",
		"The castle was built following the end of the Long Night many thousands of years ago.",
	}, "\n")

	paragraphs := SplitParagraphs(CleanWikiText(raw))

	assert.Len(t, paragraphs, 2)
	assert.True(t, strings.HasPrefix(paragraphs[1], "==History=="))
}
