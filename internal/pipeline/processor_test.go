package pipeline

import (
	"context"
	"errors"
	"os"
	"testing"
	"wiki-qa-go/internal/model"
	"wiki-qa-go/pkg/log"
	"wiki-qa-go/pkg/tasks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	log.Init("error", "console", "")
	os.Exit(m.Run())
}

type fakeCorpusStore struct {
	objects map[string][]byte
}

func (f *fakeCorpusStore) GetCorpusFile(ctx context.Context, objectName string) ([]byte, error) {
	data, ok := f.objects[objectName]
	if !ok {
		return nil, errors.New("object not found")
	}
	return data, nil
}

type fakeParagraphIndex struct {
	indexed       []model.EsParagraph
	deletedDocIDs []uint
}

func (f *fakeParagraphIndex) IndexParagraph(ctx context.Context, doc model.EsParagraph) error {
	f.indexed = append(f.indexed, doc)
	return nil
}

func (f *fakeParagraphIndex) DeleteByDocumentID(ctx context.Context, documentID uint) error {
	f.deletedDocIDs = append(f.deletedDocIDs, documentID)
	kept := f.indexed[:0]
	for _, doc := range f.indexed {
		if doc.DocumentID != documentID {
			kept = append(kept, doc)
		}
	}
	f.indexed = kept
	return nil
}

type fakeDocRepo struct {
	nextID uint
	byName map[string]*model.Document
}

func newFakeDocRepo() *fakeDocRepo {
	return &fakeDocRepo{byName: make(map[string]*model.Document)}
}

func (f *fakeDocRepo) Upsert(doc *model.Document) error {
	if existing, ok := f.byName[doc.Name]; ok {
		doc.ID = existing.ID
	} else {
		f.nextID++
		doc.ID = f.nextID
	}
	f.byName[doc.Name] = doc
	return nil
}

func (f *fakeDocRepo) FindByID(id uint) (*model.Document, error) { return nil, nil }
func (f *fakeDocRepo) FindAll() ([]*model.Document, error)       { return nil, nil }
func (f *fakeDocRepo) ExistsByMD5(md5 string) (bool, error)      { return false, nil }
func (f *fakeDocRepo) Delete(id uint) error                      { return nil }

type fakeParaRepo struct {
	nextID  uint
	rows    []*model.Paragraph
	deletes []uint
}

func (f *fakeParaRepo) BatchCreate(paragraphs []*model.Paragraph) error {
	for _, p := range paragraphs {
		f.nextID++
		p.ID = f.nextID
		f.rows = append(f.rows, p)
	}
	return nil
}

func (f *fakeParaRepo) FindByDocumentID(id uint) ([]*model.Paragraph, error) { return nil, nil }
func (f *fakeParaRepo) FindAll() ([]*model.Paragraph, error)                 { return f.rows, nil }
func (f *fakeParaRepo) CountByDocumentID(id uint) (int64, error)             { return 0, nil }

func (f *fakeParaRepo) DeleteByDocumentID(documentID uint) error {
	f.deletes = append(f.deletes, documentID)
	kept := f.rows[:0]
	for _, p := range f.rows {
		if p.DocumentID != documentID {
			kept = append(kept, p)
		}
	}
	f.rows = kept
	return nil
}

type refreshCounter struct {
	refreshes int
}

func (r *refreshCounter) Retrieve(ctx context.Context, query string, candidateDocIDs []uint, topK int) ([]model.Candidate, error) {
	return nil, nil
}

func (r *refreshCounter) Refresh(ctx context.Context) error {
	r.refreshes++
	return nil
}

const aryaRaw = "Arya Stark is a daughter of Eddard Stark and Catelyn Stark of Winterfell.\n" +
	"==Biography==\n" +
	"She trains as a faceless assassin in the city of Braavos across the narrow sea."

func aryaTask() tasks.DocumentIngestTask {
	return tasks.DocumentIngestTask{
		FileMD5:    "d41d8cd98f00b204e9800998ecf8427e",
		ObjectName: "corpus/arya_stark.txt",
		FileName:   "arya_stark.txt",
		Source:     "https://example.com/wiki.zip",
	}
}

func newTestProcessor() (*Processor, *fakeCorpusStore, *fakeParagraphIndex, *fakeDocRepo, *fakeParaRepo, *refreshCounter) {
	store := &fakeCorpusStore{objects: map[string][]byte{
		"corpus/arya_stark.txt": []byte(aryaRaw),
	}}
	index := &fakeParagraphIndex{}
	docRepo := newFakeDocRepo()
	paraRepo := &fakeParaRepo{}
	ret := &refreshCounter{}
	return NewProcessor(store, index, docRepo, paraRepo, ret), store, index, docRepo, paraRepo, ret
}

func TestProcessStoresAndIndexesParagraphs(t *testing.T) {
	p, _, index, docRepo, paraRepo, ret := newTestProcessor()

	require.NoError(t, p.Process(context.Background(), aryaTask()))

	doc, ok := docRepo.byName["arya_stark.txt"]
	require.True(t, ok)
	assert.NotContains(t, doc.Text, "\n\n\n")

	// 清洗后的文本按空行切成两个段落：正文与小节
	require.Len(t, paraRepo.rows, 2)
	require.Len(t, index.indexed, 2)
	for i, esDoc := range index.indexed {
		assert.Equal(t, paraRepo.rows[i].ID, esDoc.ParagraphID)
		assert.Equal(t, doc.ID, esDoc.DocumentID)
		assert.Equal(t, "arya_stark.txt", esDoc.DocumentName)
		assert.Equal(t, paraRepo.rows[i].Text, esDoc.Text)
	}
	assert.Equal(t, 1, ret.refreshes)
}

func TestProcessReingestReplacesParagraphs(t *testing.T) {
	p, _, index, docRepo, paraRepo, ret := newTestProcessor()

	require.NoError(t, p.Process(context.Background(), aryaTask()))
	firstID := docRepo.byName["arya_stark.txt"].ID

	// 重复导入同一文档：先清理旧段落行与旧索引，再写入新数据
	require.NoError(t, p.Process(context.Background(), aryaTask()))

	assert.Equal(t, firstID, docRepo.byName["arya_stark.txt"].ID)
	assert.Contains(t, paraRepo.deletes, firstID)
	assert.Contains(t, index.deletedDocIDs, firstID)

	// 段落没有翻倍，只保留最后一次导入的结果
	assert.Len(t, paraRepo.rows, 2)
	assert.Len(t, index.indexed, 2)
	for _, row := range paraRepo.rows {
		assert.Equal(t, firstID, row.DocumentID)
	}
	assert.Equal(t, 2, ret.refreshes)
}

func TestProcessEmptyObject(t *testing.T) {
	p, store, _, _, _, ret := newTestProcessor()
	store.objects["corpus/empty.txt"] = []byte("")

	task := aryaTask()
	task.ObjectName = "corpus/empty.txt"
	task.FileName = "empty.txt"

	assert.Error(t, p.Process(context.Background(), task))
	assert.Equal(t, 0, ret.refreshes)
}

func TestProcessMissingObject(t *testing.T) {
	p, _, _, _, _, _ := newTestProcessor()

	task := aryaTask()
	task.ObjectName = "corpus/missing.txt"

	assert.Error(t, p.Process(context.Background(), task))
}
