package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"memonotes/config"
	"memonotes/internal/api/handler"
	"memonotes/internal/api/router"
	"memonotes/internal/generation"
	"memonotes/internal/model"
	"memonotes/internal/repository"
	"memonotes/internal/service"
	"memonotes/pkg/database"
	"memonotes/pkg/gemini"
	applogger "memonotes/pkg/logger"
	"memonotes/pkg/redis"
)

func main() {
	// 1. 加载配置（MEMONOTES_CONFIG 可指定配置文件路径）
	cfg, err := config.Load(os.Getenv("MEMONOTES_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
		zap.String("storage", cfg.Database.Driver),
	)

	// 3. 初始化存储
	repo, closeStore := openStorage(cfg, logger)
	defer closeStore()

	// 4. 连接 Redis（可选：连接失败时降级运行，不中断启动）
	var rdb *redis.Client
	rdb, err = redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，批量生成锁降级为进程内互斥，限流不可用", zap.Error(err))
		rdb = nil
	}

	// 5. 初始化评语生成
	genClient, err := gemini.NewClient(context.Background(), &cfg.Generation, logger)
	if err != nil {
		logger.Fatal("初始化评语生成客户端失败", zap.Error(err))
	}
	orch := generation.NewOrchestrator(genClient, logger, generation.WithConcurrency(cfg.Generation.Concurrency))

	// 6. 依赖注入: Repository → Service → Handler
	svc := service.NewService(cfg, repo, orch, rdb, logger)
	h := handler.NewHandler(svc)

	// 7. 初始化路由
	engine := router.Setup(cfg, h, rdb, logger)

	// 8. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 9. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	// 关闭 Redis 连接
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}

// openStorage 按 db.driver 打开存储并返回仓储与关闭函数
func openStorage(cfg *config.Config, logger *zap.Logger) (*repository.Repository, func()) {
	if cfg.Database.Driver == config.DriverBolt {
		bdb, err := database.OpenBolt(cfg.Database.Path, logger)
		if err != nil {
			logger.Fatal("打开嵌入式存储失败", zap.Error(err))
		}
		return repository.NewBoltRepository(bdb), func() { bdb.Close() }
	}

	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	if err := database.Migrate(db, logger, &model.Workspace{}); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	return repository.NewRepository(db), func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}
}
