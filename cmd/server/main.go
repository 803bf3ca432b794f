// Package main 是应用程序的入口点。
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"wiki-qa-go/internal/config"
	"wiki-qa-go/internal/finder"
	"wiki-qa-go/internal/handler"
	"wiki-qa-go/internal/middleware"
	"wiki-qa-go/internal/pipeline"
	"wiki-qa-go/internal/repository"
	"wiki-qa-go/internal/retriever"
	"wiki-qa-go/internal/service"
	"wiki-qa-go/pkg/database"
	"wiki-qa-go/pkg/es"
	"wiki-qa-go/pkg/kafka"
	"wiki-qa-go/pkg/log"
	"wiki-qa-go/pkg/reader"
	"wiki-qa-go/pkg/storage"
	"wiki-qa-go/pkg/token"

	"github.com/gin-gonic/gin"
)

func main() {
	// 1. 初始化配置
	config.Init("./configs/config.yaml")
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync() // 确保在程序退出时刷新所有缓冲的日志条目
	log.Info("日志记录器初始化成功")

	// 3. 初始化数据库、Redis、对象存储与 ES
	database.InitMySQL(cfg.Database.MySQL.DSN)
	database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)
	storage.InitMinIO(cfg.MinIO)
	if err := es.InitES(cfg.Elasticsearch); err != nil {
		log.Errorf("es 初始化失败 %s", err)
		return
	}
	kafka.InitProducer(cfg.Kafka)

	// 4. 初始化 Repository 与外部资源句柄
	docRepo := repository.NewDocumentRepository(database.DB)
	paraRepo := repository.NewParagraphRepository(database.DB)
	answerCache := repository.NewAnswerCacheRepository(database.RDB)
	statusRepo := repository.NewIngestStatusRepository(database.RDB)
	esIndex := es.Index{Name: cfg.Elasticsearch.IndexName}
	corpusBucket := storage.Bucket{Name: cfg.MinIO.BucketName}

	// 5. 初始化检索器并加载已有语料
	qaRetriever := buildRetriever(cfg, docRepo, paraRepo)
	if err := qaRetriever.Refresh(context.Background()); err != nil {
		log.Errorf("检索索引初始化失败: %v", err)
	}

	// 6. 初始化 Service (依赖注入)
	jwtManager := token.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpireHours)
	readerClient := reader.NewClient(cfg.Reader)
	qaFinder := finder.NewFinder(qaRetriever, readerClient)
	qaService := service.NewQAService(qaFinder, answerCache, cfg.Retriever.DefaultTopK, cfg.Reader.DefaultTopK, cfg.Cache.AnswerTTLMinutes)
	documentService := service.NewDocumentService(docRepo, paraRepo, qaRetriever, esIndex)
	ingestService := service.NewIngestService(cfg.Corpus, docRepo, statusRepo, corpusBucket, kafka.Producer{})
	authService := service.NewAuthService(cfg.Admin, jwtManager)

	// 7. 初始化导入流水线并启动后台 Kafka 消费者
	processor := pipeline.NewProcessor(corpusBucket, esIndex, docRepo, paraRepo, qaRetriever)
	go kafka.StartConsumer(cfg.Kafka, processor)

	// 7.1 按配置自动获取语料（幂等，已导入的文档会被跳过）
	if cfg.Corpus.AutoFetch {
		go func() {
			if _, err := ingestService.FetchCorpus(context.Background(), cfg.Corpus.ArchiveURL); err != nil {
				log.Errorf("启动时获取语料失败: %v", err)
			}
		}()
	}

	// 8. 设置 Gin 模式并创建路由引擎
	gin.SetMode(cfg.Server.Mode)
	r := gin.New() // 使用 New() 创建一个不带默认中间件的引擎
	r.Use(middleware.RequestLogger(), gin.Recovery())

	// 9. 注册路由
	qaHandler := handler.NewQAHandler(qaService, jwtManager)
	apiV1 := r.Group("/api/v1")
	{
		// Auth 路由组
		auth := apiV1.Group("/auth")
		{
			auth.POST("/login", handler.NewAuthHandler(authService).Login)
		}

		// QA 路由组（公开访问）
		qa := apiV1.Group("/qa")
		{
			qa.POST("/ask", qaHandler.Ask)
			qa.GET("/websocket-token", qaHandler.GetWebsocketToken)
		}

		// Document 路由组：读接口公开，删除需要管理员权限
		documents := apiV1.Group("/documents")
		{
			documents.GET("", handler.NewDocumentHandler(documentService).List)
			documents.GET("/:id", handler.NewDocumentHandler(documentService).Get)

			authed := documents.Group("/")
			authed.Use(middleware.AuthMiddleware(jwtManager), middleware.AdminAuthMiddleware())
			{
				authed.DELETE(":id", handler.NewDocumentHandler(documentService).Delete)
			}
		}

		// Corpus 路由组，需要管理员权限
		corpus := apiV1.Group("/corpus")
		corpus.Use(middleware.AuthMiddleware(jwtManager), middleware.AdminAuthMiddleware())
		{
			corpus.POST("/fetch", handler.NewIngestHandler(ingestService).FetchCorpus)
			corpus.GET("/status", handler.NewIngestHandler(ingestService).Status)
		}
	}
	// QA 流式路由 (WebSocket)
	r.GET("/qa/stream/:token", qaHandler.HandleStream)

	// 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	// 等待中断信号以实现优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("HTTP 服务器关闭失败: %v", err)
	}

	log.Info("服务已优雅关闭")
}

// buildRetriever 按配置选择检索后端，默认使用内存 TF-IDF。
func buildRetriever(cfg config.Config, docRepo repository.DocumentRepository, paraRepo repository.ParagraphRepository) retriever.Retriever {
	if cfg.Retriever.Backend == "elastic" {
		log.Info("检索后端: Elasticsearch BM25")
		return retriever.NewElasticRetriever(es.Index{Name: cfg.Elasticsearch.IndexName})
	}
	log.Info("检索后端: 内存 TF-IDF")
	return retriever.NewTfidfRetriever(docRepo, paraRepo)
}
