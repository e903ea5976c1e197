package handler

import (
	"github.com/gin-gonic/gin"

	"memonotes/internal/dto"
	"memonotes/internal/model"
	"memonotes/internal/service"
	"memonotes/pkg/response"
)

// ReportHandler 评语生成 HTTP 处理器
type ReportHandler struct {
	reportSvc service.ReportService
}

// NewReportHandler 创建 ReportHandler
func NewReportHandler(reportSvc service.ReportService) *ReportHandler {
	return &ReportHandler{reportSvc: reportSvc}
}

// Generate 为教学班批量生成缺失的评语
// POST /api/v1/workspaces/:owner_id/class-groups/:group_id/generate
func (h *ReportHandler) Generate(c *gin.Context) {
	var req dto.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.reportSvc.GenerateMissing(c.Request.Context(), ownerID(c), c.Param("group_id"), model.TermID(req.Term))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// Regenerate 重新生成单个评语字段（覆盖已有正文）
// POST /api/v1/workspaces/:owner_id/class-groups/:group_id/regenerate
func (h *ReportHandler) Regenerate(c *gin.Context) {
	var req dto.RegenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	if req.Kind == string(model.FieldSubjectComment) && req.SubjectID == "" {
		response.BadRequest(c, 10001, "kind=subject 时 subject_id 不能为空")
		return
	}

	result, err := h.reportSvc.Regenerate(c.Request.Context(), ownerID(c), c.Param("group_id"), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, result)
}
