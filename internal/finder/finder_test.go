package finder

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"wiki-qa-go/internal/model"
	"wiki-qa-go/pkg/log"
	"wiki-qa-go/pkg/reader"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	log.Init("error", "console", "")
	os.Exit(m.Run())
}

type fakeRetriever struct {
	candidates []model.Candidate
	err        error
	gotTopK    int
}

func (f *fakeRetriever) Retrieve(ctx context.Context, query string, candidateDocIDs []uint, topK int) ([]model.Candidate, error) {
	f.gotTopK = topK
	return f.candidates, f.err
}

func (f *fakeRetriever) Refresh(ctx context.Context) error { return nil }

type fakeReader struct {
	predictions []reader.Prediction
	err         error
	gotPassages []reader.Passage
}

func (f *fakeReader) Predict(ctx context.Context, question string, passages []reader.Passage, topK int) ([]reader.Prediction, error) {
	f.gotPassages = passages
	return f.predictions, f.err
}

func TestGetAnswersMergesAndSorts(t *testing.T) {
	text := "Arya Stark is a daughter of Eddard Stark and Catelyn Stark."
	ret := &fakeRetriever{candidates: []model.Candidate{
		{ParagraphID: 11, DocumentID: 1, DocumentName: "arya_stark.txt", Text: text, Score: 0.8},
		{ParagraphID: 21, DocumentID: 2, DocumentName: "winterfell.txt", Text: "Winterfell is the seat of House Stark.", Score: 0.5},
	}}
	rd := &fakeReader{predictions: []reader.Prediction{
		{PassageID: 21, Answer: "House Stark", Score: 3.5, Probability: 0.41, Start: 25, End: 36},
		{PassageID: 11, Answer: "Eddard Stark", Score: 9.1, Probability: 0.88, Start: 28, End: 40},
	}}

	f := NewFinder(ret, rd)
	result, err := f.GetAnswers(context.Background(), "Who is the father of Arya Stark?", 10, 5)
	require.NoError(t, err)
	require.Len(t, result.Answers, 2)

	// 得分高的预测排在前面，并补全来源元数据
	assert.Equal(t, "Eddard Stark", result.Answers[0].Answer)
	assert.Equal(t, "arya_stark.txt", result.Answers[0].DocumentName)
	assert.Equal(t, uint(1), result.Answers[0].DocumentID)
	assert.Equal(t, uint(11), result.Answers[0].ParagraphID)
	assert.Equal(t, "House Stark", result.Answers[1].Answer)

	// 候选段落全部送入阅读器
	assert.Len(t, rd.gotPassages, 2)
	assert.Equal(t, 10, ret.gotTopK)
}

func TestGetAnswersTopKReaderLimit(t *testing.T) {
	ret := &fakeRetriever{candidates: []model.Candidate{
		{ParagraphID: 1, Text: strings.Repeat("a ", 20)},
	}}
	rd := &fakeReader{predictions: []reader.Prediction{
		{PassageID: 1, Answer: "one", Score: 3},
		{PassageID: 1, Answer: "two", Score: 2},
		{PassageID: 1, Answer: "three", Score: 1},
	}}

	f := NewFinder(ret, rd)
	result, err := f.GetAnswers(context.Background(), "q", 5, 2)
	require.NoError(t, err)
	assert.Len(t, result.Answers, 2)
	assert.Equal(t, "one", result.Answers[0].Answer)
}

func TestGetAnswersEmptyRetrieval(t *testing.T) {
	rd := &fakeReader{}
	f := NewFinder(&fakeRetriever{}, rd)

	result, err := f.GetAnswers(context.Background(), "q", 5, 3)
	require.NoError(t, err)
	assert.Empty(t, result.Answers)
	// 没有候选段落时不应调用阅读器
	assert.Nil(t, rd.gotPassages)
}

func TestGetAnswersReaderError(t *testing.T) {
	ret := &fakeRetriever{candidates: []model.Candidate{{ParagraphID: 1, Text: "t"}}}
	rd := &fakeReader{err: errors.New("model not loaded")}

	f := NewFinder(ret, rd)
	_, err := f.GetAnswers(context.Background(), "q", 5, 3)
	assert.Error(t, err)
}

func TestGetAnswersUnknownPassageSkipped(t *testing.T) {
	ret := &fakeRetriever{candidates: []model.Candidate{{ParagraphID: 1, Text: "t"}}}
	rd := &fakeReader{predictions: []reader.Prediction{
		{PassageID: 99, Answer: "ghost", Score: 5},
	}}

	f := NewFinder(ret, rd)
	result, err := f.GetAnswers(context.Background(), "q", 5, 3)
	require.NoError(t, err)
	assert.Empty(t, result.Answers)
}

func TestContextAround(t *testing.T) {
	text := strings.Repeat("x", 200) + "ANSWER" + strings.Repeat("y", 200)

	ctx := contextAround(text, 200, 206)
	assert.Equal(t, 6+2*contextWindow, len([]rune(ctx)))
	assert.Contains(t, ctx, "ANSWER")

	// 片段靠近开头时窗口贴边
	short := "ANSWER tail"
	assert.Equal(t, short, contextAround(short, 0, 6))

	// 偏移越界时退化为整段
	assert.Equal(t, short, contextAround(short, 3, 999))
}
