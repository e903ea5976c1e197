package handler

import (
	"github.com/gin-gonic/gin"

	"memonotes/internal/dto"
	"memonotes/internal/service"
	"memonotes/pkg/response"
)

// EvaluationHandler 学生评价编辑 HTTP 处理器
type EvaluationHandler struct {
	wsSvc service.WorkspaceService
}

// NewEvaluationHandler 创建 EvaluationHandler
func NewEvaluationHandler(wsSvc service.WorkspaceService) *EvaluationHandler {
	return &EvaluationHandler{wsSvc: wsSvc}
}

// UpdateEvaluation 编辑学生某评估期的单个评价字段
// PUT /api/v1/workspaces/:owner_id/class-groups/:group_id/students/:student_id/evaluations/:term
func (h *EvaluationHandler) UpdateEvaluation(c *gin.Context) {
	term, ok := MustGetTerm(c)
	if !ok {
		return
	}

	var req dto.UpdateEvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	if req.Kind == "subject" && req.SubjectID == "" {
		response.BadRequest(c, 10001, "kind=subject 时 subject_id 不能为空")
		return
	}

	ws, err := h.wsSvc.UpdateEvaluation(c.Request.Context(), ownerID(c), c.Param("group_id"), c.Param("student_id"), term, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, ws)
}
