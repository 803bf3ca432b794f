package handler

import (
	"net/http"
	"wiki-qa-go/internal/service"
	"wiki-qa-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// IngestHandler 负责语料获取与导入状态接口（管理员）。
type IngestHandler struct {
	ingestService service.IngestService
}

// NewIngestHandler 创建一个新的 IngestHandler 实例。
func NewIngestHandler(ingestService service.IngestService) *IngestHandler {
	return &IngestHandler{ingestService: ingestService}
}

type fetchCorpusRequest struct {
	// ArchiveURL 为空时使用配置中的默认地址。
	ArchiveURL string `json:"archiveUrl"`
}

// FetchCorpus 触发一次语料获取与导入。
// 下载和任务投递在请求内同步完成，段落切分与索引由 Kafka 消费端异步处理。
func (h *IngestHandler) FetchCorpus(c *gin.Context) {
	var req fetchCorpusRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求参数"})
		return
	}

	produced, err := h.ingestService.FetchCorpus(c.Request.Context(), req.ArchiveURL)
	if err != nil {
		log.Errorf("[IngestHandler] 语料获取失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "语料获取失败"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 200, "data": gin.H{"dispatched": produced}, "message": "success"})
}

// Status 返回最近一次语料导入的状态。
func (h *IngestHandler) Status(c *gin.Context) {
	status, err := h.ingestService.Status(c.Request.Context())
	if err != nil {
		log.Errorf("[IngestHandler] 查询导入状态失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询导入状态失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 200, "data": gin.H{"status": status}, "message": "success"})
}
