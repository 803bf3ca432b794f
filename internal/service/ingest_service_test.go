package service

import (
	"context"
	"crypto/md5"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"wiki-qa-go/internal/config"
	"wiki-qa-go/internal/model"
	"wiki-qa-go/pkg/tasks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUploader struct {
	puts map[string][]byte
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{puts: make(map[string][]byte)}
}

func (f *fakeUploader) PutCorpusFile(ctx context.Context, objectName string, data []byte) error {
	f.puts[objectName] = data
	return nil
}

type fakeTaskQueue struct {
	tasks []tasks.DocumentIngestTask
}

func (f *fakeTaskQueue) ProduceIngestTask(task tasks.DocumentIngestTask) error {
	f.tasks = append(f.tasks, task)
	return nil
}

type memoryStatusRepo struct {
	statuses []string
}

func (m *memoryStatusRepo) Set(ctx context.Context, status string) error {
	m.statuses = append(m.statuses, status)
	return nil
}

func (m *memoryStatusRepo) Get(ctx context.Context) (string, error) {
	if len(m.statuses) == 0 {
		return "", nil
	}
	return m.statuses[len(m.statuses)-1], nil
}

// seedDocRepo 只关心 MD5 去重检查。
type seedDocRepo struct {
	known map[string]bool
}

func (s *seedDocRepo) Upsert(doc *model.Document) error          { return nil }
func (s *seedDocRepo) FindByID(id uint) (*model.Document, error) { return nil, nil }
func (s *seedDocRepo) FindAll() ([]*model.Document, error)       { return nil, nil }
func (s *seedDocRepo) ExistsByMD5(md5 string) (bool, error)      { return s.known[md5], nil }
func (s *seedDocRepo) Delete(id uint) error                      { return nil }

func contentMD5(data string) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(data)))
}

func TestFetchCorpusSkipsIngestedDocuments(t *testing.T) {
	dir := t.TempDir()
	aryaText := "Arya Stark is a daughter of Eddard Stark and Catelyn Stark of Winterfell."
	winterfellText := "Winterfell is the ancestral castle and seat of power of House Stark."
	require.NoError(t, os.WriteFile(filepath.Join(dir, "arya_stark.txt"), []byte(aryaText), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "winterfell.txt"), []byte(winterfellText), 0o644))

	// arya_stark.txt 的内容已经导入过，再次获取语料时应被跳过
	docRepo := &seedDocRepo{known: map[string]bool{contentMD5(aryaText): true}}
	uploader := newFakeUploader()
	queue := &fakeTaskQueue{}
	statusRepo := &memoryStatusRepo{}
	// 数据目录非空，FetchArchive 不会发起真实下载
	svc := NewIngestService(config.CorpusConfig{DataDir: dir}, docRepo, statusRepo, uploader, queue)

	produced, err := svc.FetchCorpus(context.Background(), "https://example.com/wiki.zip")
	require.NoError(t, err)
	assert.Equal(t, 1, produced)

	require.Len(t, queue.tasks, 1)
	task := queue.tasks[0]
	assert.Equal(t, "winterfell.txt", task.FileName)
	assert.Equal(t, contentMD5(winterfellText), task.FileMD5)
	assert.Equal(t, "corpus/winterfell.txt", task.ObjectName)
	assert.Equal(t, "https://example.com/wiki.zip", task.Source)

	// 被跳过的文档也不会重复上传
	assert.Len(t, uploader.puts, 1)
	assert.Contains(t, uploader.puts, "corpus/winterfell.txt")

	status, err := svc.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "dispatched: 1", status)
}

func TestFetchCorpusIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	text := "Winterfell is the ancestral castle and seat of power of House Stark."
	require.NoError(t, os.WriteFile(filepath.Join(dir, "winterfell.txt"), []byte(text), 0o644))

	docRepo := &seedDocRepo{known: map[string]bool{}}
	queue := &fakeTaskQueue{}
	svc := NewIngestService(config.CorpusConfig{DataDir: dir}, docRepo, &memoryStatusRepo{}, newFakeUploader(), queue)

	produced, err := svc.FetchCorpus(context.Background(), "https://example.com/wiki.zip")
	require.NoError(t, err)
	assert.Equal(t, 1, produced)

	// 第一次投递成功后文档视为已导入，重复调用不再投递
	docRepo.known[contentMD5(text)] = true
	produced, err = svc.FetchCorpus(context.Background(), "https://example.com/wiki.zip")
	require.NoError(t, err)
	assert.Equal(t, 0, produced)
	assert.Len(t, queue.tasks, 1)
}

func TestStatusIdleWhenNeverRun(t *testing.T) {
	svc := NewIngestService(config.CorpusConfig{}, &seedDocRepo{}, &memoryStatusRepo{}, newFakeUploader(), &fakeTaskQueue{})

	status, err := svc.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "idle", status)
}
