package handler

import (
	"bytes"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"memonotes/internal/service"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeHTML = "text/html; charset=utf-8"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportExcel 导出教学班某评估期的评语表格
// GET /api/v1/workspaces/:owner_id/class-groups/:group_id/export/:term/xlsx
func (h *ExportHandler) ExportExcel(c *gin.Context) {
	term, ok := MustGetTerm(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportExcel(c.Request.Context(), ownerID(c), c.Param("group_id"), term)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	sendAttachment(c, buf, filename, contentTypeXLSX)
}

// ExportHTML 导出可打印的评语文档（每个学生一页）
// GET /api/v1/workspaces/:owner_id/class-groups/:group_id/export/:term/html
func (h *ExportHandler) ExportHTML(c *gin.Context) {
	term, ok := MustGetTerm(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportHTML(c.Request.Context(), ownerID(c), c.Param("group_id"), term)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	sendAttachment(c, buf, filename, contentTypeHTML)
}

func sendAttachment(c *gin.Context, buf *bytes.Buffer, filename, contentType string) {
	// 设置下载响应头
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, contentType, buf.Bytes())
}
