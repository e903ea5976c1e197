package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"memonotes/internal/model"
	pkgerrors "memonotes/pkg/errors"
)

// WorkspaceRepository 工作区文档数据访问接口
type WorkspaceRepository interface {
	// GetByOwner 读取工作区，不存在时返回 pkgerrors.ErrNotFound
	GetByOwner(ctx context.Context, ownerID string) (*model.Workspace, error)
	// Save 按版本号写入：Version 为 0 时创建，否则仅当库中版本一致时更新
	// 版本不一致返回 pkgerrors.ErrOptimisticLock；成功后 ws.Version 为新版本
	Save(ctx context.Context, ws *model.Workspace) error
	// Delete 删除工作区
	Delete(ctx context.Context, ownerID string) error
}

type workspaceRepo struct {
	db *gorm.DB
}

// NewWorkspaceRepo 创建基于 GORM 的 WorkspaceRepository
func NewWorkspaceRepo(db *gorm.DB) WorkspaceRepository {
	return &workspaceRepo{db: db}
}

func (r *workspaceRepo) GetByOwner(ctx context.Context, ownerID string) (*model.Workspace, error) {
	var ws model.Workspace
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		First(&ws).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.ErrNotFound
		}
		return nil, err
	}
	return &ws, nil
}

func (r *workspaceRepo) Save(ctx context.Context, ws *model.Workspace) error {
	now := time.Now()

	if ws.Version == 0 {
		ws.Version = 1
		ws.CreatedAt = now
		ws.UpdatedAt = now
		result := r.db.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(ws)
		if result.Error != nil {
			ws.Version = 0
			return result.Error
		}
		if result.RowsAffected == 0 {
			// 并发的首次保存已抢先创建
			ws.Version = 0
			return pkgerrors.ErrOptimisticLock
		}
		return nil
	}

	oldVersion := ws.Version
	result := r.db.WithContext(ctx).
		Model(&model.Workspace{}).
		Where("owner_id = ? AND version = ?", ws.OwnerID, oldVersion).
		Updates(map[string]interface{}{
			"payload":    ws.Payload,
			"version":    oldVersion + 1,
			"updated_at": now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	ws.Version = oldVersion + 1
	ws.UpdatedAt = now
	return nil
}

func (r *workspaceRepo) Delete(ctx context.Context, ownerID string) error {
	return r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Delete(&model.Workspace{}).Error
}
