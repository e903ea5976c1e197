package service

import (
	"go.uber.org/zap"

	"memonotes/config"
	"memonotes/internal/generation"
	"memonotes/internal/repository"
	"memonotes/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Workspace WorkspaceService
	Report    ReportService
	Export    ExportService
}

// NewService 创建 Service 聚合
// rdb 为 nil 时批量生成锁降级为进程内互斥
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	orch *generation.Orchestrator,
	rdb *redis.Client,
	logger *zap.Logger,
) *Service {
	var locker Locker
	if rdb != nil {
		locker = rdb
	}

	return &Service{
		Workspace: NewWorkspaceService(repo, logger),
		Report:    NewReportService(repo, orch, locker, cfg.Generation.BatchLockTTL, logger),
		Export:    NewExportService(repo, logger),
	}
}
