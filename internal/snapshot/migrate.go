// Package snapshot 将任意历史版本的工作区 JSON 文档规范化为当前数据模型。
package snapshot

import (
	"encoding/json"

	"go.uber.org/zap"

	"memonotes/internal/model"
)

// Report 单次迁移的统计信息
// Anomalies 统计被静默默认化的字段，仅用于日志，不作为错误返回
type Report struct {
	LegacyStudents       int
	LegacyWorkedContents int
	MissingTerms         int
	Anomalies            int
}

// Changed 本次迁移是否改变了文档结构
func (r Report) Changed() bool {
	return r.LegacyStudents > 0 || r.LegacyWorkedContents > 0 || r.MissingTerms > 0
}

// Migrator 快照迁移器
type Migrator struct {
	logger *zap.Logger
}

// NewMigrator 创建 Migrator 实例
func NewMigrator(logger *zap.Logger) *Migrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Migrator{logger: logger}
}

// Migrate 迁移快照，永不失败；无法识别的内容回落为空结构
func (m *Migrator) Migrate(raw []byte) *model.AppSnapshot {
	snap, _ := m.MigrateWithReport(raw)
	return snap
}

// MigrateWithReport 迁移快照并返回统计信息
func (m *Migrator) MigrateWithReport(raw []byte) (*model.AppSnapshot, Report) {
	run := &migration{logger: m.logger}

	var doc map[string]interface{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &doc); err != nil {
			run.anomaly("document", "无法解析的 JSON 文档", zap.Error(err))
		}
	}

	snap := run.snapshot(doc)

	if run.report.Changed() || run.report.Anomalies > 0 {
		m.logger.Info("快照迁移完成",
			zap.Int("legacy_students", run.report.LegacyStudents),
			zap.Int("legacy_worked_contents", run.report.LegacyWorkedContents),
			zap.Int("missing_terms", run.report.MissingTerms),
			zap.Int("anomalies", run.report.Anomalies),
		)
	}
	return snap, run.report
}

// Migrate 使用静默日志的便捷入口
func Migrate(raw []byte) *model.AppSnapshot {
	return NewMigrator(nil).Migrate(raw)
}

// ── 迁移过程 ──

type migration struct {
	logger *zap.Logger
	report Report
}

func (r *migration) anomaly(path, msg string, fields ...zap.Field) {
	r.report.Anomalies++
	r.logger.Debug(msg, append(fields, zap.String("path", path))...)
}

func (r *migration) snapshot(doc map[string]interface{}) *model.AppSnapshot {
	snap := model.NewSnapshot()

	// 更早的结构把大纲挂在科目目录上，待课程解析完成后再下发
	catalogContent := make(map[string]interface{})
	var catalogOrder []string
	for _, item := range r.list(doc, "subjects") {
		obj, ok := item.(map[string]interface{})
		if !ok {
			r.anomaly("subjects[]", "忽略非对象科目条目")
			continue
		}
		sub := model.Subject{
			ID:   stringField(obj, "id"),
			Name: stringField(obj, "name"),
		}
		snap.Subjects = append(snap.Subjects, sub)
		if wc := lookup(obj, "workedContent", "worked_content"); wc != nil {
			if _, seen := catalogContent[sub.ID]; !seen {
				catalogOrder = append(catalogOrder, sub.ID)
			}
			catalogContent[sub.ID] = wc
		}
	}

	for _, item := range r.list(doc, "courses") {
		obj, ok := item.(map[string]interface{})
		if !ok {
			r.anomaly("courses[]", "忽略非对象课程条目")
			continue
		}
		snap.Courses = append(snap.Courses, r.course(obj))
	}

	for _, subjectID := range catalogOrder {
		r.catalogWorkedContent(snap, subjectID, catalogContent[subjectID])
	}

	for _, item := range r.list(doc, "classGroups", "class_groups") {
		obj, ok := item.(map[string]interface{})
		if !ok {
			r.anomaly("classGroups[]", "忽略非对象教学班条目")
			continue
		}
		snap.ClassGroups = append(snap.ClassGroups, r.classGroup(obj))
	}

	snap.StyleExamples = stringField(doc, "styleExamples", "style_examples")
	return snap
}

func (r *migration) course(obj map[string]interface{}) model.Course {
	c := model.Course{
		ID:       stringField(obj, "id"),
		Name:     stringField(obj, "name"),
		Subjects: []model.CourseSubject{},
	}
	for _, item := range r.list(obj, "subjects") {
		csObj, ok := item.(map[string]interface{})
		if !ok {
			r.anomaly("courses[].subjects[]", "忽略非对象课程科目条目", zap.String("course_id", c.ID))
			continue
		}
		cs := model.CourseSubject{SubjectID: stringField(csObj, "subjectId", "subject_id")}
		switch wc := lookup(csObj, "workedContent", "worked_content").(type) {
		case map[string]interface{}:
			for _, term := range model.Terms {
				cs.WorkedContent.Set(term, stringField(wc, string(term)))
			}
		case string:
			// 旧结构：单一文本归入第一学期
			r.report.LegacyWorkedContents++
			cs.WorkedContent.T1 = wc
		case nil:
		default:
			r.anomaly("courses[].subjects[].workedContent", "无法识别的大纲类型", zap.String("course_id", c.ID))
		}
		c.Subjects = append(c.Subjects, cs)
	}
	return c
}

// catalogWorkedContent 将科目目录上的旧大纲写入引用该科目的课程科目中仍为空的评估期
// 文本归入第一学期；无处可放时记为异常
func (r *migration) catalogWorkedContent(snap *model.AppSnapshot, subjectID string, raw interface{}) {
	var texts model.TermText
	switch wc := raw.(type) {
	case string:
		texts.T1 = wc
	case map[string]interface{}:
		for _, term := range model.Terms {
			texts.Set(term, stringField(wc, string(term)))
		}
	default:
		r.anomaly("subjects[].workedContent", "无法识别的大纲类型", zap.String("subject_id", subjectID))
		return
	}

	placed := false
	for ci := range snap.Courses {
		cs := snap.Courses[ci].FindCourseSubject(subjectID)
		if cs == nil {
			continue
		}
		for _, term := range model.Terms {
			if text := texts.Get(term); text != "" && cs.WorkedContent.Get(term) == "" {
				cs.WorkedContent.Set(term, text)
				placed = true
			}
		}
	}

	if placed {
		r.report.LegacyWorkedContents++
		return
	}
	if texts != (model.TermText{}) {
		r.anomaly("subjects[].workedContent", "科目大纲无法归入任何课程", zap.String("subject_id", subjectID))
	}
}

func (r *migration) classGroup(obj map[string]interface{}) model.ClassGroup {
	g := model.ClassGroup{
		ID:       stringField(obj, "id"),
		Name:     stringField(obj, "name"),
		CourseID: stringField(obj, "courseId", "course_id"),
		Students: []model.Student{},
	}
	for _, item := range r.list(obj, "students") {
		stObj, ok := item.(map[string]interface{})
		if !ok {
			r.anomaly("classGroups[].students[]", "忽略非对象学生条目", zap.String("class_group_id", g.ID))
			continue
		}
		g.Students = append(g.Students, r.student(stObj))
	}
	return g
}

func (r *migration) student(obj map[string]interface{}) model.Student {
	st := model.Student{
		ID:   stringField(obj, "id"),
		Name: stringField(obj, "name"),
	}

	evals, ok := obj["evaluations"].(map[string]interface{})
	if !ok {
		// 旧结构：扁平字段只迁入第一学期，其余评估期仅复制科目结构
		r.report.LegacyStudents++
		first := r.evaluation(obj)
		st.Evaluations = model.TermEvaluations{
			T1:    first,
			T2:    resetCopy(first),
			T3:    resetCopy(first),
			Final: resetCopy(first),
		}
		return st
	}

	var template *model.EvaluationData
	present := make(map[model.TermID]bool, len(model.Terms))
	for _, term := range model.Terms {
		evObj, ok := evals[string(term)].(map[string]interface{})
		if !ok {
			continue
		}
		present[term] = true
		*st.Evaluations.Get(term) = r.evaluation(evObj)
		if template == nil {
			template = st.Evaluations.Get(term)
		}
	}
	for _, term := range model.Terms {
		if present[term] {
			continue
		}
		r.report.MissingTerms++
		if template != nil {
			*st.Evaluations.Get(term) = resetCopy(*template)
		} else {
			*st.Evaluations.Get(term) = model.EvaluationData{Subjects: []model.StudentSubject{}}
		}
	}
	return st
}

func (r *migration) evaluation(obj map[string]interface{}) model.EvaluationData {
	ev := model.EvaluationData{
		PersonalAspects: r.narrative(lookup(obj, "personalAspects", "personal_aspects")),
		GeneralComment:  r.narrative(lookup(obj, "generalComment", "general_comment")),
		Subjects:        []model.StudentSubject{},
	}
	for _, item := range r.list(obj, "subjects", "student_subjects") {
		ssObj, ok := item.(map[string]interface{})
		if !ok {
			r.anomaly("subjects[]", "忽略非对象学生科目条目")
			continue
		}
		ss := model.StudentSubject{
			SubjectID: stringField(ssObj, "subjectId", "subject_id"),
			Grade:     model.Grade(stringField(ssObj, "grade")),
			Comment:   r.narrative(ssObj["comment"]),
		}
		if !ss.Grade.Valid() {
			if ss.Grade != "" {
				r.anomaly("subjects[].grade", "未知成绩，回落为默认值", zap.String("grade", string(ss.Grade)))
			}
			ss.Grade = model.DefaultGrade
		}
		if v, ok := ssObj["customWorkedContent"].(string); ok {
			ss.CustomWorkedContent = &v
		}
		ev.Subjects = append(ev.Subjects, ss)
	}
	return ev
}

func (r *migration) narrative(v interface{}) model.NarrativeField {
	switch f := v.(type) {
	case map[string]interface{}:
		return model.NarrativeField{
			Notes:  stringField(f, "notes"),
			Report: stringField(f, "report"),
		}
	case string:
		// 早期版本只存一段文本，视为教师笔记
		return model.NarrativeField{Notes: f}
	case nil:
		return model.NarrativeField{}
	default:
		r.anomaly("narrative", "无法识别的评语字段类型")
		return model.NarrativeField{}
	}
}

func (r *migration) list(obj map[string]interface{}, keys ...string) []interface{} {
	v := lookup(obj, keys...)
	if v == nil {
		return nil
	}
	arr, ok := v.([]interface{})
	if !ok {
		r.anomaly(keys[0], "期望数组，已忽略")
		return nil
	}
	return arr
}

// ── 辅助函数 ──

// resetCopy 复制科目结构并清空内容：笔记、评语、个性化大纲清空，成绩恢复默认
func resetCopy(ev model.EvaluationData) model.EvaluationData {
	subjects := make([]model.StudentSubject, 0, len(ev.Subjects))
	for _, ss := range ev.Subjects {
		subjects = append(subjects, model.NewStudentSubject(ss.SubjectID))
	}
	return model.EvaluationData{Subjects: subjects}
}

func lookup(obj map[string]interface{}, keys ...string) interface{} {
	for _, k := range keys {
		if v, ok := obj[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func stringField(obj map[string]interface{}, keys ...string) string {
	s, _ := lookup(obj, keys...).(string)
	return s
}
