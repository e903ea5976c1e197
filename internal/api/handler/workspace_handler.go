package handler

import (
	"encoding/json"

	"github.com/gin-gonic/gin"

	"memonotes/internal/dto"
	"memonotes/internal/service"
	"memonotes/pkg/response"
)

// WorkspaceHandler 工作区 HTTP 处理器
type WorkspaceHandler struct {
	wsSvc service.WorkspaceService
}

// NewWorkspaceHandler 创建 WorkspaceHandler
func NewWorkspaceHandler(wsSvc service.WorkspaceService) *WorkspaceHandler {
	return &WorkspaceHandler{wsSvc: wsSvc}
}

// GetWorkspace 获取工作区快照（不存在时自动初始化示例数据）
// GET /api/v1/workspaces/:owner_id
func (h *WorkspaceHandler) GetWorkspace(c *gin.Context) {
	ws, err := h.wsSvc.Load(c.Request.Context(), ownerID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, ws)
}

// ImportWorkspace 用上传的快照 JSON 整体替换工作区，兼容旧格式
// PUT /api/v1/workspaces/:owner_id
func (h *WorkspaceHandler) ImportWorkspace(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		response.BadRequest(c, 10001, "读取请求体失败")
		return
	}
	if len(raw) == 0 || !json.Valid(raw) {
		response.BadRequest(c, 10001, "请求体必须是合法的 JSON 快照")
		return
	}

	result, err := h.wsSvc.Import(c.Request.Context(), ownerID(c), raw)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// ResetWorkspace 删除工作区（下次访问时重新初始化）
// DELETE /api/v1/workspaces/:owner_id
func (h *WorkspaceHandler) ResetWorkspace(c *gin.Context) {
	if err := h.wsSvc.Reset(c.Request.Context(), ownerID(c)); err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, nil)
}

// SetStyleExamples 设置评语风格示例
// PUT /api/v1/workspaces/:owner_id/style-examples
func (h *WorkspaceHandler) SetStyleExamples(c *gin.Context) {
	var req dto.StyleExamplesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	ws, err := h.wsSvc.SetStyleExamples(c.Request.Context(), ownerID(c), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, ws)
}
