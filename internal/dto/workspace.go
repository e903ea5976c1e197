package dto

// ── 工作区命令 DTO ──

// NameRequest 创建 / 重命名请求
type NameRequest struct {
	Name string `json:"name" binding:"required,max=200"`
}

// WorkedContentRequest 设置课程科目某评估期的教学内容
type WorkedContentRequest struct {
	Term string `json:"term" binding:"required,oneof=1 2 3 final"`
	Text string `json:"text" binding:"max=20000"`
}

// CreateClassGroupRequest 创建教学班请求
type CreateClassGroupRequest struct {
	CourseID string `json:"course_id" binding:"required"`
	Name     string `json:"name"      binding:"required,max=200"`
}

// UpdateClassGroupRequest 更新教学班请求；CourseID 非空时迁移到新课程
type UpdateClassGroupRequest struct {
	Name     *string `json:"name"      binding:"omitempty,max=200"`
	CourseID *string `json:"course_id"`
}

// AddStudentsRequest 批量添加学生请求（空白姓名会被跳过）
type AddStudentsRequest struct {
	Names []string `json:"names" binding:"required,min=1,max=200"`
}

// UpdateEvaluationRequest 编辑单个评价字段
// kind=subject 时 subject_id 必填，且可修改 grade / custom_worked_content
type UpdateEvaluationRequest struct {
	Kind                string  `json:"kind"                  binding:"required,oneof=subject personal general"`
	SubjectID           string  `json:"subject_id"`
	Notes               *string `json:"notes"`
	Report              *string `json:"report"`
	Grade               *string `json:"grade"`
	CustomWorkedContent *string `json:"custom_worked_content"`
	ClearCustomContent  bool    `json:"clear_custom_content"`
}

// StyleExamplesRequest 设置评语风格示例
type StyleExamplesRequest struct {
	Text string `json:"text" binding:"max=50000"`
}

// GenerateRequest 批量生成请求
type GenerateRequest struct {
	Term string `json:"term" binding:"required,oneof=1 2 3 final"`
}

// RegenerateRequest 单字段重新生成请求
type RegenerateRequest struct {
	Term      string `json:"term"       binding:"required,oneof=1 2 3 final"`
	StudentID string `json:"student_id" binding:"required"`
	Kind      string `json:"kind"       binding:"required,oneof=subject personal general"`
	SubjectID string `json:"subject_id"`
}
