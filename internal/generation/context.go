package generation

import "memonotes/internal/model"

// FieldContext 传给生成服务的上下文，三种字段各有固定内容
// 只有本包内的三个类型实现该接口
type FieldContext interface {
	Kind() model.FieldKind
	isFieldContext()
}

// SubjectSummary 学生单科成绩与评语的投影
type SubjectSummary struct {
	SubjectID string      `json:"subject_id"`
	Name      string      `json:"name"`
	Grade     model.Grade `json:"grade"`
	Notes     string      `json:"notes"`
	Report    string      `json:"report,omitempty"`
}

// SubjectContext 科目评语上下文
type SubjectContext struct {
	StudentName   string      `json:"student_name"`
	SubjectName   string      `json:"subject_name"`
	Grade         model.Grade `json:"grade"`
	WorkedContent string      `json:"worked_content"`
	Notes         string      `json:"notes"`
	StyleExamples string      `json:"style_examples,omitempty"`
}

// PersonalContext 个人与成长方面上下文
type PersonalContext struct {
	StudentName   string           `json:"student_name"`
	Notes         string           `json:"notes"`
	Subjects      []SubjectSummary `json:"subjects"`
	StyleExamples string           `json:"style_examples,omitempty"`
}

// GeneralContext 总评上下文；PersonalAspects 为第一阶段结束后的个人方面正文
type GeneralContext struct {
	StudentName     string           `json:"student_name"`
	PersonalAspects string           `json:"personal_aspects"`
	Subjects        []SubjectSummary `json:"subjects"`
	Notes           string           `json:"notes"`
	StyleExamples   string           `json:"style_examples,omitempty"`
}

func (SubjectContext) Kind() model.FieldKind  { return model.FieldSubjectComment }
func (PersonalContext) Kind() model.FieldKind { return model.FieldPersonalAspects }
func (GeneralContext) Kind() model.FieldKind  { return model.FieldGeneralComment }

func (SubjectContext) isFieldContext()  {}
func (PersonalContext) isFieldContext() {}
func (GeneralContext) isFieldContext()  {}

// ── 上下文构建 ──

// classroom 生成所需的只读视图：课程科目 + 科目名称
type classroom struct {
	snap   *model.AppSnapshot
	course *model.Course
	term   model.TermID
}

func (c *classroom) courseSubject(subjectID string) *model.CourseSubject {
	if c.course == nil {
		return nil
	}
	return c.course.FindCourseSubject(subjectID)
}

func (c *classroom) summaries(ev *model.EvaluationData) []SubjectSummary {
	out := make([]SubjectSummary, 0, len(ev.Subjects))
	for _, ss := range ev.Subjects {
		out = append(out, SubjectSummary{
			SubjectID: ss.SubjectID,
			Name:      c.snap.SubjectName(ss.SubjectID),
			Grade:     ss.Grade,
			Notes:     ss.Comment.Notes,
			Report:    ss.Comment.Report,
		})
	}
	return out
}

// build 按字段种类组装上下文；科目不存在时返回 nil
func (c *classroom) build(st *model.Student, ref model.FieldRef) FieldContext {
	ev := st.Evaluations.Get(c.term)
	switch ref.Kind {
	case model.FieldSubjectComment:
		ss := ev.FindSubject(ref.SubjectID)
		if ss == nil {
			return nil
		}
		return SubjectContext{
			StudentName:   st.Name,
			SubjectName:   c.snap.SubjectName(ss.SubjectID),
			Grade:         ss.Grade,
			WorkedContent: model.ResolveWorkedContent(ss, c.courseSubject(ss.SubjectID), c.term),
			Notes:         ss.Comment.Notes,
			StyleExamples: c.snap.StyleExamples,
		}
	case model.FieldPersonalAspects:
		return PersonalContext{
			StudentName:   st.Name,
			Notes:         ev.PersonalAspects.Notes,
			Subjects:      c.summaries(ev),
			StyleExamples: c.snap.StyleExamples,
		}
	case model.FieldGeneralComment:
		return GeneralContext{
			StudentName:     st.Name,
			PersonalAspects: ev.PersonalAspects.Report,
			Subjects:        c.summaries(ev),
			Notes:           ev.GeneralComment.Notes,
			StyleExamples:   c.snap.StyleExamples,
		}
	}
	return nil
}
