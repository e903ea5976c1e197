package model

// FieldKind 叙述字段种类
type FieldKind string

const (
	FieldSubjectComment  FieldKind = "subject"
	FieldPersonalAspects FieldKind = "personal"
	FieldGeneralComment  FieldKind = "general"
)

// Valid 判断字段种类是否合法
func (k FieldKind) Valid() bool {
	switch k {
	case FieldSubjectComment, FieldPersonalAspects, FieldGeneralComment:
		return true
	}
	return false
}

// FieldRef 定位某学生某评估期内的一个叙述字段
// SubjectID 仅在 Kind 为 FieldSubjectComment 时有意义
type FieldRef struct {
	StudentID string    `json:"student_id"`
	Kind      FieldKind `json:"kind"`
	SubjectID string    `json:"subject_id,omitempty"`
}

// Narrative 返回指定种类的叙述字段指针，找不到返回 nil
func (e *EvaluationData) Narrative(kind FieldKind, subjectID string) *NarrativeField {
	switch kind {
	case FieldPersonalAspects:
		return &e.PersonalAspects
	case FieldGeneralComment:
		return &e.GeneralComment
	case FieldSubjectComment:
		if ss := e.FindSubject(subjectID); ss != nil {
			return &ss.Comment
		}
	}
	return nil
}
