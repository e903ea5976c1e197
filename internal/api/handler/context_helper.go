package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"memonotes/internal/curriculum"
	"memonotes/internal/generation"
	"memonotes/internal/model"
	"memonotes/internal/service"
	pkgerrors "memonotes/pkg/errors"
	"memonotes/pkg/response"
)

// ownerID 从路径参数中提取工作区标识
func ownerID(c *gin.Context) string {
	return c.Param("owner_id")
}

// MustGetTerm 解析路径参数 :term。
// 非法取值时写入 400 响应并返回 false，调用方应直接 return。
func MustGetTerm(c *gin.Context) (model.TermID, bool) {
	term := model.TermID(c.Param("term"))
	if !term.Valid() {
		response.BadRequest(c, 10001, "无效的评估期")
		return "", false
	}
	return term, true
}

// handleServiceError 统一处理工作区相关业务错误
func handleServiceError(c *gin.Context, err error) {
	var genErr *generation.GenerationError
	switch {
	case errors.Is(err, service.ErrInvalidOwnerID):
		response.BadRequest(c, 20001, "无效的工作区标识")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 20002, "数据已被其他操作修改，请刷新后重试")

	// ── 课程结构 ──
	case errors.Is(err, curriculum.ErrSubjectNotFound):
		response.NotFound(c, 21001, "科目不存在")
	case errors.Is(err, curriculum.ErrCourseNotFound):
		response.NotFound(c, 21002, "课程不存在")
	case errors.Is(err, curriculum.ErrClassGroupNotFound), errors.Is(err, generation.ErrClassGroupNotFound):
		response.NotFound(c, 21003, "教学班不存在")
	case errors.Is(err, curriculum.ErrStudentNotFound), errors.Is(err, generation.ErrStudentNotFound):
		response.NotFound(c, 21004, "学生不存在")
	case errors.Is(err, curriculum.ErrInvalidTerm), errors.Is(err, generation.ErrInvalidTerm):
		response.BadRequest(c, 21005, "无效的评估期")
	case errors.Is(err, curriculum.ErrInvalidGrade):
		response.BadRequest(c, 21006, "无效的成绩")
	case errors.Is(err, curriculum.ErrEmptyName):
		response.BadRequest(c, 21007, "名称不能为空")

	// ── 名单导入 ──
	case errors.Is(err, service.ErrRosterEmpty):
		response.BadRequest(c, 21101, "名单文件中没有学生姓名")
	case errors.Is(err, service.ErrRosterTooManyRows):
		response.ErrorWithDetails(c, http.StatusBadRequest, 21102, "名单行数过多", err.Error())

	// ── 评语生成 ──
	case errors.Is(err, generation.ErrFieldNotFound):
		response.NotFound(c, 22001, "评语字段不存在")
	case errors.Is(err, service.ErrBatchInProgress):
		response.Conflict(c, 22002, "该教学班正在批量生成评语，请稍后再试")
	case errors.Is(err, service.ErrGenerationUnavailable):
		response.ServiceUnavailable(c, 22003, "评语生成服务不可用")
	case errors.Is(err, generation.ErrEmptyGeneration):
		response.ServiceUnavailable(c, 22004, "生成服务返回了空文本")
	case errors.As(err, &genErr):
		// 上游模型调用失败，details 指明出错字段
		response.ErrorWithDetails(c, http.StatusBadGateway, 22005, "评语生成失败", genErr.Error())

	// ── 导出 ──
	case errors.Is(err, service.ErrExportNoStudents):
		response.BadRequest(c, 23001, "教学班中没有学生")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)

	default:
		response.InternalError(c)
	}
}
