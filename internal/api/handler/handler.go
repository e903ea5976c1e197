package handler

import "memonotes/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Workspace  *WorkspaceHandler
	Curriculum *CurriculumHandler
	ClassGroup *ClassGroupHandler
	Evaluation *EvaluationHandler
	Report     *ReportHandler
	Export     *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Workspace:  NewWorkspaceHandler(svc.Workspace),
		Curriculum: NewCurriculumHandler(svc.Workspace),
		ClassGroup: NewClassGroupHandler(svc.Workspace),
		Evaluation: NewEvaluationHandler(svc.Workspace),
		Report:     NewReportHandler(svc.Report),
		Export:     NewExportHandler(svc.Export),
	}
}
