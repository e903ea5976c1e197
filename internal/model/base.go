package model

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// ── JSON 文档列类型 ──

// JSONB 对应 PostgreSQL JSONB / SQLite TEXT 列，实现 GORM Scanner/Valuer 接口。
type JSONB []byte

// Scan 将数据库返回的 JSON 文本读入字节切片（复制，避免驱动复用缓冲区）。
func (j *JSONB) Scan(src interface{}) error {
	if src == nil {
		*j = nil
		return nil
	}
	switch v := src.(type) {
	case []byte:
		*j = append(JSONB(nil), v...)
	case string:
		*j = JSONB(v)
	default:
		return fmt.Errorf("JSONB.Scan: unsupported type %T", src)
	}
	return nil
}

// Value 将字节切片作为 JSON 文本写入。
func (j JSONB) Value() (driver.Value, error) {
	if len(j) == 0 {
		return "{}", nil
	}
	return string(j), nil
}

// BaseModel 通用审计字段
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// VersionedModel 支持乐观锁的模型
type VersionedModel struct {
	BaseModel
	Version int `gorm:"not null" json:"version"`
}
