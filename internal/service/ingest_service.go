package service

import (
	"context"
	"crypto/md5"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"wiki-qa-go/internal/config"
	"wiki-qa-go/internal/fetcher"
	"wiki-qa-go/internal/repository"
	"wiki-qa-go/pkg/log"
	"wiki-qa-go/pkg/tasks"
)

// CorpusUploader 抽象原始语料对象的写入，由对象存储实现。
type CorpusUploader interface {
	PutCorpusFile(ctx context.Context, objectName string, data []byte) error
}

// TaskQueue 抽象导入任务的投递，由消息队列实现。
type TaskQueue interface {
	ProduceIngestTask(task tasks.DocumentIngestTask) error
}

// IngestService 定义了语料获取与导入编排的业务接口。
type IngestService interface {
	// FetchCorpus 下载语料压缩包并为每份新文档投递一个导入任务。
	// 返回投递的任务数。
	FetchCorpus(ctx context.Context, archiveURL string) (int, error)
	// Status 返回最近一次语料导入的状态描述。
	Status(ctx context.Context) (string, error)
}

type ingestService struct {
	corpusCfg  config.CorpusConfig
	docRepo    repository.DocumentRepository
	statusRepo repository.IngestStatusRepository
	uploader   CorpusUploader
	queue      TaskQueue
}

// NewIngestService 创建一个新的 IngestService 实例。
func NewIngestService(
	corpusCfg config.CorpusConfig,
	docRepo repository.DocumentRepository,
	statusRepo repository.IngestStatusRepository,
	uploader CorpusUploader,
	queue TaskQueue,
) IngestService {
	return &ingestService{
		corpusCfg:  corpusCfg,
		docRepo:    docRepo,
		statusRepo: statusRepo,
		uploader:   uploader,
		queue:      queue,
	}
}

// FetchCorpus 执行语料获取：下载解压 → 上传对象存储 → 投递导入任务。
// 内容（MD5）完全相同的文档会被跳过，重复调用是幂等的。
func (s *ingestService) FetchCorpus(ctx context.Context, archiveURL string) (int, error) {
	if archiveURL == "" {
		archiveURL = s.corpusCfg.ArchiveURL
	}
	s.setStatus(ctx, "running")

	if _, err := fetcher.FetchArchive(ctx, archiveURL, s.corpusCfg.DataDir); err != nil {
		s.setStatus(ctx, fmt.Sprintf("failed: %v", err))
		return 0, err
	}

	produced := 0
	walkErr := filepath.Walk(s.corpusCfg.DataDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() || !strings.HasSuffix(info.Name(), ".txt") {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			log.Warnf("[IngestService] 读取语料文件失败: %s, err=%v", path, err)
			return nil
		}
		fileMD5 := fmt.Sprintf("%x", md5.Sum(data))

		// 幂等检查：内容相同的文档已导入则跳过
		exists, err := s.docRepo.ExistsByMD5(fileMD5)
		if err != nil {
			log.Warnf("[IngestService] 查询文档是否已导入失败: %s, err=%v", info.Name(), err)
			return nil
		}
		if exists {
			log.Infof("[IngestService] 已存在，跳过: %s (md5=%s)", info.Name(), fileMD5)
			return nil
		}

		objectName := fmt.Sprintf("corpus/%s", info.Name())
		if err := s.uploader.PutCorpusFile(ctx, objectName, data); err != nil {
			log.Warnf("[IngestService] 上传语料文件失败: %s, err=%v", info.Name(), err)
			return nil
		}

		task := tasks.DocumentIngestTask{
			FileMD5:    fileMD5,
			ObjectName: objectName,
			FileName:   info.Name(),
			Source:     archiveURL,
		}
		if err := s.queue.ProduceIngestTask(task); err != nil {
			log.Warnf("[IngestService] 投递导入任务失败: %s, err=%v", info.Name(), err)
			return nil
		}
		produced++
		return nil
	})
	if walkErr != nil {
		s.setStatus(ctx, fmt.Sprintf("failed: %v", walkErr))
		return produced, fmt.Errorf("遍历语料目录失败: %w", walkErr)
	}

	s.setStatus(ctx, fmt.Sprintf("dispatched: %d", produced))
	log.Infof("[IngestService] 语料获取完成, 共投递 %d 个导入任务", produced)
	return produced, nil
}

// Status 返回最近一次导入状态，从未执行过时返回 "idle"。
func (s *ingestService) Status(ctx context.Context) (string, error) {
	status, err := s.statusRepo.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("读取导入状态失败: %w", err)
	}
	if status == "" {
		return "idle", nil
	}
	return status, nil
}

func (s *ingestService) setStatus(ctx context.Context, status string) {
	if err := s.statusRepo.Set(ctx, status); err != nil {
		log.Warnf("[IngestService] 更新导入状态失败: %v", err)
	}
}
