package generation

import "memonotes/internal/model"

// BatchState 批量生成状态机
type BatchState string

const (
	StateIdle                  BatchState = "idle"
	StatePlanning              BatchState = "planning"
	StateGeneratingIndependent BatchState = "generating_independent"
	StateGeneratingDependent   BatchState = "generating_dependent"
	StateMerged                BatchState = "merged"
	StateFailed                BatchState = "failed"
)

// StudentStatus 单个学生在本次批量中的结果
type StudentStatus string

const (
	StudentGenerated StudentStatus = "generated"
	StudentSkipped   StudentStatus = "skipped"
	StudentFailed    StudentStatus = "failed"
)

// FieldCounts 字段级统计
//   - Generated: 成功生成
//   - Failed:    生成失败，正文保持为空
//   - Skipped:   正文为空但没有可用素材
//   - Preserved: 已有正文，未改动
type FieldCounts struct {
	Generated int `json:"generated"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
	Preserved int `json:"preserved"`
}

// StudentOutcome 学生级结果
type StudentOutcome struct {
	StudentID   string        `json:"student_id"`
	StudentName string        `json:"student_name"`
	Status      StudentStatus `json:"status"`
	Generated   int           `json:"generated"`
	Failed      int           `json:"failed"`
}

// FieldFailure 单字段失败记录
type FieldFailure struct {
	Field       model.FieldRef `json:"field"`
	StudentName string         `json:"student_name"`
	Message     string         `json:"message"`
	Err         error          `json:"-"`
}

// Summary 批量生成汇总
// Generated / Skipped / Failed 为学生数：有字段生成且无失败 / 无需生成 / 至少一个字段失败
type Summary struct {
	ClassGroupID string           `json:"class_group_id"`
	Term         model.TermID     `json:"term"`
	Generated    int              `json:"generated"`
	Skipped      int              `json:"skipped"`
	Failed       int              `json:"failed"`
	Fields       FieldCounts      `json:"fields"`
	Students     []StudentOutcome `json:"students"`
	Failures     []FieldFailure   `json:"failures"`
}

// HasFailures 是否存在失败字段
func (s *Summary) HasFailures() bool {
	return len(s.Failures) > 0
}

// GeneratedField 成功生成的字段及其正文（供合并到最新快照使用）
type GeneratedField struct {
	Field  model.FieldRef `json:"field"`
	Report string         `json:"report"`
}

// Result 批量生成结果：Snapshot 为合并了生成结果的完整副本，所有权交给调用方
type Result struct {
	Snapshot *model.AppSnapshot
	Summary  Summary
	State    BatchState
	// Produced 按生成顺序列出成功写入的字段
	Produced []GeneratedField
}

// finalize 汇总学生级统计
func (s *Summary) finalize(g *model.ClassGroup, produced []GeneratedField) {
	perStudent := make(map[string]*StudentOutcome, len(g.Students))
	s.Students = make([]StudentOutcome, len(g.Students))
	for i, st := range g.Students {
		s.Students[i] = StudentOutcome{StudentID: st.ID, StudentName: st.Name}
		perStudent[st.ID] = &s.Students[i]
	}
	for _, p := range produced {
		if o := perStudent[p.Field.StudentID]; o != nil {
			o.Generated++
		}
	}
	for _, f := range s.Failures {
		if o := perStudent[f.Field.StudentID]; o != nil {
			o.Failed++
		}
	}
	s.Generated, s.Skipped, s.Failed = 0, 0, 0
	for i := range s.Students {
		o := &s.Students[i]
		switch {
		case o.Failed > 0:
			o.Status = StudentFailed
			s.Failed++
		case o.Generated > 0:
			o.Status = StudentGenerated
			s.Generated++
		default:
			o.Status = StudentSkipped
			s.Skipped++
		}
	}
}
