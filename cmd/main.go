package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"familygraph_go/internal/handler"
	"familygraph_go/internal/middleware"
	"familygraph_go/internal/repository"
	"familygraph_go/internal/service"
)

func main() {
	// 加载环境变量
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	// 加载应用配置
	config, err := service.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := service.NewLogger(&config.Log)

	// 初始化数据库连接
	db, err := repository.InitDB(&config.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	repo := repository.NewGormMemberRepository(db)

	// 初始化缓存服务
	cache := service.NewCacheService(config.Redis.Addr, config.Redis.Password, config.Redis.DB)
	defer cache.Close()

	// 初始化事件总线与动态记录订阅者
	events := service.NewEventService(&service.EventConfig{QueueSize: 256}, logger)
	defer events.Stop()
	recorder := service.NewActivityRecorder(db, logger)
	events.Subscribe("*", recorder.Handle)

	// 组装领域服务
	errorHandler := service.NewErrorHandler(logger)
	classifier := service.NewSiblingClassifier(logger)
	trees := service.NewTreeService(repo, errorHandler, logger)
	family := service.NewFamilyService(repo, classifier, errorHandler, logger)
	links := service.NewLinkService(repo, classifier, events, logger)
	retry := service.NewRetry(&service.RetryConfig{MaxAttempts: 3}, logger)
	auth := service.NewAuth(&service.AuthConfig{SecretKey: config.Server.JWTSecret}, db, logger)

	// 构建搜索索引
	search := service.NewMemberSearch(repo, logger)
	if err := search.Reindex(context.Background()); err != nil {
		logger.Warn("Failed to build search index: %v", err)
	}

	// 设置gin模式
	gin.SetMode(gin.ReleaseMode)

	// 创建gin引擎并注册路由
	r := gin.Default()
	public := r.Group("/api")
	protected := r.Group("/api", middleware.AuthMiddleware(auth))

	handler.NewAuthHandler(auth, logger).Register(public)
	handler.NewMemberHandler(repo, links, search, events, logger).Register(public, protected)
	handler.NewTreeHandler(family, trees, cache, logger).Register(public)
	handler.NewRelationshipHandler(links, retry, repo, cache, logger).Register(protected)
	handler.NewFeedHandler(recorder).Register(public)

	// 启动服务器
	logger.Info("Server is running on port %s", config.Server.Port)
	if err := r.Run(":" + config.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
