package dto

import (
	"memonotes/internal/generation"
	"memonotes/internal/model"
	"memonotes/internal/snapshot"
)

// ── 工作区响应 ──

// WorkspaceResponse 工作区快照响应
type WorkspaceResponse struct {
	OwnerID   string             `json:"owner_id"`
	Version   int                `json:"version"`
	UpdatedAt string             `json:"updated_at,omitempty"`
	Snapshot  *model.AppSnapshot `json:"snapshot"`
}

// ImportResponse 导入旧数据响应，附带迁移报告
type ImportResponse struct {
	WorkspaceResponse
	Migration MigrationReport `json:"migration"`
	Repaired  int             `json:"repaired"`
}

// MigrationReport 迁移统计
type MigrationReport struct {
	LegacyStudents       int `json:"legacy_students"`
	LegacyWorkedContents int `json:"legacy_worked_contents"`
	MissingTerms         int `json:"missing_terms"`
	Anomalies            int `json:"anomalies"`
}

// NewMigrationReport 由迁移报告构造响应
func NewMigrationReport(r snapshot.Report) MigrationReport {
	return MigrationReport{
		LegacyStudents:       r.LegacyStudents,
		LegacyWorkedContents: r.LegacyWorkedContents,
		MissingTerms:         r.MissingTerms,
		Anomalies:            r.Anomalies,
	}
}

// ── 评语生成响应 ──

// GenerationResponse 批量生成结果
type GenerationResponse struct {
	Summary generation.Summary `json:"summary"`
	// Merged 实际写入的评语数；生成期间被人工填写的字段不会被覆盖
	Merged    int `json:"merged"`
	Discarded int `json:"discarded"`
	WorkspaceResponse
}

// RegenerateResponse 单字段重新生成结果
type RegenerateResponse struct {
	Field  model.FieldRef `json:"field"`
	Report string         `json:"report"`
	WorkspaceResponse
}

// ImportStudentsResponse 学生名单导入结果
type ImportStudentsResponse struct {
	Imported int `json:"imported"`
	WorkspaceResponse
}
