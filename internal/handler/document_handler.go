package handler

import (
	"errors"
	"net/http"
	"strconv"
	"wiki-qa-go/internal/service"
	"wiki-qa-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// DocumentHandler 负责语料文档的查询与管理接口。
type DocumentHandler struct {
	documentService service.DocumentService
}

// NewDocumentHandler 创建一个新的 DocumentHandler 实例。
func NewDocumentHandler(documentService service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

// List 返回全部已导入文档的摘要。
func (h *DocumentHandler) List(c *gin.Context) {
	summaries, err := h.documentService.ListDocuments()
	if err != nil {
		log.Errorf("[DocumentHandler] 查询文档列表失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询文档列表失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 200, "data": summaries, "message": "success"})
}

// Get 返回一篇文档的全文。
func (h *DocumentHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的文档 ID"})
		return
	}

	doc, err := h.documentService.GetDocument(uint(id))
	if errors.Is(err, service.ErrDocumentNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "文档不存在"})
		return
	}
	if err != nil {
		log.Errorf("[DocumentHandler] 查询文档失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询文档失败"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 200, "data": gin.H{
		"id":     doc.ID,
		"name":   doc.Name,
		"md5":    doc.MD5,
		"source": doc.Source,
		"text":   doc.Text,
	}, "message": "success"})
}

// Delete 删除一篇文档及其索引数据（管理员接口）。
func (h *DocumentHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的文档 ID"})
		return
	}

	err = h.documentService.DeleteDocument(c.Request.Context(), uint(id))
	if errors.Is(err, service.ErrDocumentNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "文档不存在"})
		return
	}
	if err != nil {
		log.Errorf("[DocumentHandler] 删除文档失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "删除文档失败"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 200, "data": nil, "message": "success"})
}
