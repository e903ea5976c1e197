package repository

import (
	"go.etcd.io/bbolt"
	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Workspace WorkspaceRepository
}

// NewRepository 创建基于 GORM（postgres / sqlite）的 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Workspace: NewWorkspaceRepo(db),
	}
}

// NewBoltRepository 创建基于 bbolt 单文件存储的 Repository 聚合
func NewBoltRepository(db *bbolt.DB) *Repository {
	return &Repository{
		Workspace: NewWorkspaceBoltRepo(db),
	}
}
