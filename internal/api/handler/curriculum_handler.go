package handler

import (
	"github.com/gin-gonic/gin"

	"memonotes/internal/dto"
	"memonotes/internal/service"
	"memonotes/pkg/response"
)

// CurriculumHandler 科目与课程 HTTP 处理器
type CurriculumHandler struct {
	wsSvc service.WorkspaceService
}

// NewCurriculumHandler 创建 CurriculumHandler
func NewCurriculumHandler(wsSvc service.WorkspaceService) *CurriculumHandler {
	return &CurriculumHandler{wsSvc: wsSvc}
}

// ────────────────────── 科目 ──────────────────────

// CreateSubject 创建科目
// POST /api/v1/workspaces/:owner_id/subjects
func (h *CurriculumHandler) CreateSubject(c *gin.Context) {
	var req dto.NameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	ws, err := h.wsSvc.CreateSubject(c.Request.Context(), ownerID(c), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Created(c, ws)
}

// RenameSubject 重命名科目
// PUT /api/v1/workspaces/:owner_id/subjects/:subject_id
func (h *CurriculumHandler) RenameSubject(c *gin.Context) {
	var req dto.NameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	ws, err := h.wsSvc.RenameSubject(c.Request.Context(), ownerID(c), c.Param("subject_id"), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, ws)
}

// DeleteSubject 删除科目，同时从所有课程和学生评价中移除
// DELETE /api/v1/workspaces/:owner_id/subjects/:subject_id
func (h *CurriculumHandler) DeleteSubject(c *gin.Context) {
	ws, err := h.wsSvc.DeleteSubject(c.Request.Context(), ownerID(c), c.Param("subject_id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, ws)
}

// ────────────────────── 课程 ──────────────────────

// CreateCourse 创建课程
// POST /api/v1/workspaces/:owner_id/courses
func (h *CurriculumHandler) CreateCourse(c *gin.Context) {
	var req dto.NameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	ws, err := h.wsSvc.CreateCourse(c.Request.Context(), ownerID(c), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Created(c, ws)
}

// RenameCourse 重命名课程
// PUT /api/v1/workspaces/:owner_id/courses/:course_id
func (h *CurriculumHandler) RenameCourse(c *gin.Context) {
	var req dto.NameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	ws, err := h.wsSvc.RenameCourse(c.Request.Context(), ownerID(c), c.Param("course_id"), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, ws)
}

// DeleteCourse 删除课程及其下所有教学班
// DELETE /api/v1/workspaces/:owner_id/courses/:course_id
func (h *CurriculumHandler) DeleteCourse(c *gin.Context) {
	ws, err := h.wsSvc.DeleteCourse(c.Request.Context(), ownerID(c), c.Param("course_id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, ws)
}

// AssignSubject 为课程分配科目，并补齐该课程所有学生的评价条目
// POST /api/v1/workspaces/:owner_id/courses/:course_id/subjects/:subject_id
func (h *CurriculumHandler) AssignSubject(c *gin.Context) {
	ws, err := h.wsSvc.AssignSubject(c.Request.Context(), ownerID(c), c.Param("course_id"), c.Param("subject_id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, ws)
}

// UnassignSubject 取消课程的科目分配
// DELETE /api/v1/workspaces/:owner_id/courses/:course_id/subjects/:subject_id
func (h *CurriculumHandler) UnassignSubject(c *gin.Context) {
	ws, err := h.wsSvc.UnassignSubject(c.Request.Context(), ownerID(c), c.Param("course_id"), c.Param("subject_id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, ws)
}

// SetWorkedContent 设置课程科目某评估期的教学内容
// PUT /api/v1/workspaces/:owner_id/courses/:course_id/subjects/:subject_id/worked-content
func (h *CurriculumHandler) SetWorkedContent(c *gin.Context) {
	var req dto.WorkedContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	ws, err := h.wsSvc.SetWorkedContent(c.Request.Context(), ownerID(c), c.Param("course_id"), c.Param("subject_id"), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, ws)
}
