// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
	"wiki-qa-go/internal/model"
	"wiki-qa-go/internal/service"
	"wiki-qa-go/pkg/log"
	"wiki-qa-go/pkg/token"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // 允许所有来源
	},
}

// QAHandler 负责处理问答请求（HTTP 与 WebSocket）。
type QAHandler struct {
	qaService  service.QAService
	jwtManager *token.JWTManager
	// 每连接停止标志
	stopFlags sync.Map
}

// NewQAHandler 创建一个新的 QAHandler 实例。
func NewQAHandler(qaService service.QAService, jwtManager *token.JWTManager) *QAHandler {
	return &QAHandler{
		qaService:  qaService,
		jwtManager: jwtManager,
	}
}

// Ask 处理一次同步问答请求。
func (h *QAHandler) Ask(c *gin.Context) {
	var req model.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("[QAHandler] 问答请求参数无效: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求参数"})
		return
	}

	log.Infof("[QAHandler] 收到问答请求, question: '%s', topKRetriever: %d, topKReader: %d",
		req.Question, req.TopKRetriever, req.TopKReader)

	result, err := h.qaService.Ask(c.Request.Context(), req.Question, req.TopKRetriever, req.TopKReader)
	if err != nil {
		log.Errorf("[QAHandler] 问答服务返回错误: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "问答失败"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 200, "data": result, "message": "success"})
}

// GetWebsocketToken 签发一个短有效期 token，用于 WebSocket 握手。
func (h *QAHandler) GetWebsocketToken(c *gin.Context) {
	wsToken, err := h.jwtManager.GenerateShortLivedToken("ws", "ws", 5*time.Minute)
	if err != nil {
		log.Error("签发 WebSocket token 失败", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "无法签发 token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 200, "message": "success", "data": gin.H{"wsToken": wsToken}})
}

// wsQuestion 是客户端通过 WebSocket 发来的一条查询。
type wsQuestion struct {
	Type          string `json:"type"`
	Question      string `json:"question"`
	TopKRetriever int    `json:"topKRetriever"`
	TopKReader    int    `json:"topKReader"`
}

// HandleStream 处理一个传入的 WebSocket 连接，流式推送问答进度。
func (h *QAHandler) HandleStream(c *gin.Context) {
	tokenString := c.Param("token")
	if _, err := h.jwtManager.VerifyToken(tokenString); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"code": http.StatusUnauthorized, "message": "无效的 token", "data": nil})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WebSocket 升级失败", err)
		return
	}
	defer conn.Close()

	connKey := conn.RemoteAddr().String()
	defer h.stopFlags.Delete(connKey)
	log.Infof("WebSocket 连接已建立: %s", connKey)

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			log.Warnf("从 WebSocket 读取消息失败: %v", err)
			break
		}

		var msg wsQuestion
		if err := json.Unmarshal(message, &msg); err != nil {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"error","data":"无法解析消息"}`))
			continue
		}

		// 停止指令：中断当前查询的阅读阶段
		if msg.Type == "stop" {
			h.stopFlags.Store(connKey, true)
			continue
		}
		if msg.Question == "" {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"error","data":"question 不能为空"}`))
			continue
		}

		h.stopFlags.Store(connKey, false)
		shouldStop := func() bool {
			v, ok := h.stopFlags.Load(connKey)
			return ok && v.(bool)
		}

		if err := h.qaService.StreamAnswers(c.Request.Context(), msg.Question, msg.TopKRetriever, msg.TopKReader, conn, shouldStop); err != nil {
			log.Errorf("[QAHandler] 流式问答失败, question: '%s', error: %v", msg.Question, err)
		}
	}
}
