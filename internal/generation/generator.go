// Package generation 批量补全缺失的评语正文。
//
// 一次批量生成分两个阶段：第一阶段并发生成科目评语与个人方面；
// 第一阶段全部结束后，第二阶段再基于最新数据并发生成总评。
// 全程在快照副本上进行，调用方的快照不会被修改。
package generation

import (
	"context"
	"errors"
	"fmt"

	"memonotes/internal/model"
)

// Generator 外部评语生成服务
type Generator interface {
	// Available 服务整体是否可用（如未配置密钥）；不可用时整批失败，不发出任何请求
	Available(ctx context.Context) error
	// Generate 按上下文生成一段评语正文
	Generate(ctx context.Context, fc FieldContext) (string, error)
}

// ── 业务错误 ──

var (
	ErrServiceUnavailable = errors.New("评语生成服务不可用")
	ErrClassGroupNotFound = errors.New("教学班不存在")
	ErrStudentNotFound    = errors.New("学生不存在")
	ErrFieldNotFound      = errors.New("评语字段不存在")
	ErrInvalidTerm        = errors.New("无效的评估期")
	ErrEmptyGeneration    = errors.New("生成服务返回了空文本")
)

// GenerationError 单个字段生成失败，只记录在该字段上，不影响其他字段
type GenerationError struct {
	Field model.FieldRef
	Err   error
}

func (e *GenerationError) Error() string {
	if e.Field.SubjectID != "" {
		return fmt.Sprintf("生成 %s/%s(%s) 失败: %v", e.Field.StudentID, e.Field.Kind, e.Field.SubjectID, e.Err)
	}
	return fmt.Sprintf("生成 %s/%s 失败: %v", e.Field.StudentID, e.Field.Kind, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
