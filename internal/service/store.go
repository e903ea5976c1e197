package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"memonotes/internal/curriculum"
	"memonotes/internal/dto"
	"memonotes/internal/model"
	"memonotes/internal/repository"
	"memonotes/internal/snapshot"
	pkgerrors "memonotes/pkg/errors"
)

// ── 工作区存取业务错误 ──

var ErrInvalidOwnerID = errors.New("无效的工作区标识")

const (
	maxOwnerIDLen   = 64
	maxSaveAttempts = 3
)

// workspaceStore 工作区读写的公共流程：读取 → 迁移 → 修复；修改 → 乐观锁保存 → 冲突重试
type workspaceStore struct {
	repo     *repository.Repository
	migrator *snapshot.Migrator
	logger   *zap.Logger
}

func newWorkspaceStore(repo *repository.Repository, logger *zap.Logger) *workspaceStore {
	return &workspaceStore{
		repo:     repo,
		migrator: snapshot.NewMigrator(logger),
		logger:   logger,
	}
}

// loadedWorkspace 已加载的工作区：持久化行 + 解码后的快照
type loadedWorkspace struct {
	row  *model.Workspace
	snap *model.AppSnapshot
}

func validateOwnerID(ownerID string) error {
	if strings.TrimSpace(ownerID) == "" || len(ownerID) > maxOwnerIDLen {
		return ErrInvalidOwnerID
	}
	return nil
}

// load 读取工作区；首次访问时写入初始目录
func (s *workspaceStore) load(ctx context.Context, ownerID string) (*loadedWorkspace, error) {
	if err := validateOwnerID(ownerID); err != nil {
		return nil, err
	}

	row, err := s.repo.Workspace.GetByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return s.seed(ctx, ownerID)
		}
		s.logger.Error("读取工作区失败", zap.String("owner_id", ownerID), zap.Error(err))
		return nil, err
	}

	snap := s.migrator.Migrate(row.Payload)
	if n := curriculum.Repair(snap); n > 0 {
		s.logger.Info("已修复学生科目列表", zap.String("owner_id", ownerID), zap.Int("students", n))
	}
	return &loadedWorkspace{row: row, snap: snap}, nil
}

func (s *workspaceStore) seed(ctx context.Context, ownerID string) (*loadedWorkspace, error) {
	snap := NewSeedSnapshot()
	row := &model.Workspace{OwnerID: ownerID}
	if err := s.save(ctx, row, snap); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			// 并发的首次访问已写入
			return s.load(ctx, ownerID)
		}
		s.logger.Error("初始化工作区失败", zap.String("owner_id", ownerID), zap.Error(err))
		return nil, err
	}
	s.logger.Info("已初始化工作区", zap.String("owner_id", ownerID))
	return &loadedWorkspace{row: row, snap: snap}, nil
}

func (s *workspaceStore) save(ctx context.Context, row *model.Workspace, snap *model.AppSnapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("序列化快照失败: %w", err)
	}
	row.Payload = payload
	return s.repo.Workspace.Save(ctx, row)
}

// mutate 在最新快照的副本上执行 fn 并保存
// fn 返回错误时不保存；版本冲突时基于重新读取的快照重放 fn
func (s *workspaceStore) mutate(ctx context.Context, ownerID string, fn func(*model.AppSnapshot) error) (*loadedWorkspace, error) {
	for attempt := 1; ; attempt++ {
		ws, err := s.load(ctx, ownerID)
		if err != nil {
			return nil, err
		}

		work := ws.snap.Clone()
		if err := fn(work); err != nil {
			return nil, err
		}

		row := *ws.row
		err = s.save(ctx, &row, work)
		if err == nil {
			return &loadedWorkspace{row: &row, snap: work}, nil
		}
		if !errors.Is(err, pkgerrors.ErrOptimisticLock) || attempt >= maxSaveAttempts {
			s.logger.Warn("保存工作区失败",
				zap.String("owner_id", ownerID),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			return nil, err
		}
		s.logger.Debug("工作区版本冲突，重试", zap.String("owner_id", ownerID), zap.Int("attempt", attempt))
	}
}

func toWorkspaceResponse(ws *loadedWorkspace) *dto.WorkspaceResponse {
	resp := &dto.WorkspaceResponse{
		OwnerID:  ws.row.OwnerID,
		Version:  ws.row.Version,
		Snapshot: ws.snap,
	}
	if !ws.row.UpdatedAt.IsZero() {
		resp.UpdatedAt = ws.row.UpdatedAt.Format(time.RFC3339)
	}
	return resp
}
