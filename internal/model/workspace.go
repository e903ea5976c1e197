package model

// Workspace 教师工作区：按 owner 整体存储的快照文档
// Version 为 0 表示尚未持久化
type Workspace struct {
	OwnerID string `gorm:"primaryKey;type:varchar(64)" json:"owner_id"`
	Payload JSONB  `gorm:"type:jsonb;not null"         json:"payload"`
	VersionedModel
}

// TableName 指定表名
func (Workspace) TableName() string {
	return "workspaces"
}
