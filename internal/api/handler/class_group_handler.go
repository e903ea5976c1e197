package handler

import (
	"github.com/gin-gonic/gin"

	"memonotes/internal/dto"
	"memonotes/internal/service"
	"memonotes/pkg/response"
)

// ClassGroupHandler 教学班与学生 HTTP 处理器
type ClassGroupHandler struct {
	wsSvc service.WorkspaceService
}

// NewClassGroupHandler 创建 ClassGroupHandler
func NewClassGroupHandler(wsSvc service.WorkspaceService) *ClassGroupHandler {
	return &ClassGroupHandler{wsSvc: wsSvc}
}

// CreateClassGroup 创建教学班
// POST /api/v1/workspaces/:owner_id/class-groups
func (h *ClassGroupHandler) CreateClassGroup(c *gin.Context) {
	var req dto.CreateClassGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	ws, err := h.wsSvc.CreateClassGroup(c.Request.Context(), ownerID(c), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Created(c, ws)
}

// UpdateClassGroup 重命名教学班或迁移到其他课程
// PUT /api/v1/workspaces/:owner_id/class-groups/:group_id
func (h *ClassGroupHandler) UpdateClassGroup(c *gin.Context) {
	var req dto.UpdateClassGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	if req.Name == nil && req.CourseID == nil {
		response.BadRequest(c, 10001, "name 与 course_id 不能同时为空")
		return
	}

	ws, err := h.wsSvc.UpdateClassGroup(c.Request.Context(), ownerID(c), c.Param("group_id"), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, ws)
}

// DeleteClassGroup 删除教学班
// DELETE /api/v1/workspaces/:owner_id/class-groups/:group_id
func (h *ClassGroupHandler) DeleteClassGroup(c *gin.Context) {
	ws, err := h.wsSvc.DeleteClassGroup(c.Request.Context(), ownerID(c), c.Param("group_id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, ws)
}

// ────────────────────── 学生 ──────────────────────

// AddStudents 批量添加学生
// POST /api/v1/workspaces/:owner_id/class-groups/:group_id/students
func (h *ClassGroupHandler) AddStudents(c *gin.Context) {
	var req dto.AddStudentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	ws, err := h.wsSvc.AddStudents(c.Request.Context(), ownerID(c), c.Param("group_id"), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Created(c, ws)
}

// ImportStudents 从上传的名单文件导入学生（.xlsx 或纯文本，每行一个姓名）
// POST /api/v1/workspaces/:owner_id/class-groups/:group_id/students/import
func (h *ClassGroupHandler) ImportStudents(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, 10001, "请上传名单文件")
		return
	}

	f, err := fh.Open()
	if err != nil {
		response.BadRequest(c, 10001, "读取上传文件失败")
		return
	}
	defer f.Close()

	result, err := h.wsSvc.ImportStudents(c.Request.Context(), ownerID(c), c.Param("group_id"), fh.Filename, f)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Created(c, result)
}

// RenameStudent 重命名学生
// PUT /api/v1/workspaces/:owner_id/class-groups/:group_id/students/:student_id
func (h *ClassGroupHandler) RenameStudent(c *gin.Context) {
	var req dto.NameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	ws, err := h.wsSvc.RenameStudent(c.Request.Context(), ownerID(c), c.Param("group_id"), c.Param("student_id"), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, ws)
}

// DeleteStudent 删除学生
// DELETE /api/v1/workspaces/:owner_id/class-groups/:group_id/students/:student_id
func (h *ClassGroupHandler) DeleteStudent(c *gin.Context) {
	ws, err := h.wsSvc.DeleteStudent(c.Request.Context(), ownerID(c), c.Param("group_id"), c.Param("student_id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, ws)
}
