package curriculum

import (
	"strings"

	"github.com/google/uuid"

	"memonotes/internal/model"
)

// ────────────────────── 科目 ──────────────────────

// AddSubject 新增主目录科目（不自动分配给任何课程）
func AddSubject(snap *model.AppSnapshot, name string) (model.Subject, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Subject{}, ErrEmptyName
	}
	sub := model.Subject{ID: uuid.NewString(), Name: name}
	snap.Subjects = append(snap.Subjects, sub)
	return sub, nil
}

// RenameSubject 重命名科目
func RenameSubject(snap *model.AppSnapshot, subjectID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	sub := snap.FindSubject(subjectID)
	if sub == nil {
		return ErrSubjectNotFound
	}
	sub.Name = name
	return nil
}

// DeleteSubject 删除科目：从所有课程解绑，并删除所有学生四个评估期中的对应记录
func DeleteSubject(snap *model.AppSnapshot, subjectID string) error {
	if snap.FindSubject(subjectID) == nil {
		return ErrSubjectNotFound
	}

	out := snap.Subjects[:0]
	for _, s := range snap.Subjects {
		if s.ID != subjectID {
			out = append(out, s)
		}
	}
	snap.Subjects = out

	for ci := range snap.Courses {
		snap.Courses[ci].Subjects = removeCourseSubject(snap.Courses[ci].Subjects, subjectID)
	}
	for gi := range snap.ClassGroups {
		for si := range snap.ClassGroups[gi].Students {
			removeStudentSubject(&snap.ClassGroups[gi].Students[si], subjectID)
		}
	}
	return nil
}

// ────────────────────── 课程 ──────────────────────

// AddCourse 新增课程
func AddCourse(snap *model.AppSnapshot, name string) (model.Course, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Course{}, ErrEmptyName
	}
	c := model.Course{ID: uuid.NewString(), Name: name, Subjects: []model.CourseSubject{}}
	snap.Courses = append(snap.Courses, c)
	return c, nil
}

// RenameCourse 重命名课程
func RenameCourse(snap *model.AppSnapshot, courseID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	c := snap.FindCourse(courseID)
	if c == nil {
		return ErrCourseNotFound
	}
	c.Name = name
	return nil
}

// DeleteCourse 删除课程，级联删除其下所有教学班（及学生）
func DeleteCourse(snap *model.AppSnapshot, courseID string) error {
	if snap.FindCourse(courseID) == nil {
		return ErrCourseNotFound
	}

	courses := snap.Courses[:0]
	for _, c := range snap.Courses {
		if c.ID != courseID {
			courses = append(courses, c)
		}
	}
	snap.Courses = courses

	groups := snap.ClassGroups[:0]
	for _, g := range snap.ClassGroups {
		if g.CourseID != courseID {
			groups = append(groups, g)
		}
	}
	snap.ClassGroups = groups
	return nil
}

// SetWorkedContent 设置课程中某科目在某评估期的内容大纲
func SetWorkedContent(snap *model.AppSnapshot, courseID, subjectID string, term model.TermID, text string) error {
	if !term.Valid() {
		return ErrInvalidTerm
	}
	c := snap.FindCourse(courseID)
	if c == nil {
		return ErrCourseNotFound
	}
	cs := c.FindCourseSubject(subjectID)
	if cs == nil {
		return ErrSubjectNotFound
	}
	cs.WorkedContent.Set(term, text)
	return nil
}

// ────────────────────── 教学班 ──────────────────────

// AddClassGroup 在课程下新增教学班
func AddClassGroup(snap *model.AppSnapshot, courseID, name string) (model.ClassGroup, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.ClassGroup{}, ErrEmptyName
	}
	if snap.FindCourse(courseID) == nil {
		return model.ClassGroup{}, ErrCourseNotFound
	}
	g := model.ClassGroup{ID: uuid.NewString(), Name: name, CourseID: courseID, Students: []model.Student{}}
	snap.ClassGroups = append(snap.ClassGroups, g)
	return g, nil
}

// RenameClassGroup 重命名教学班
func RenameClassGroup(snap *model.AppSnapshot, groupID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	g := snap.FindClassGroup(groupID)
	if g == nil {
		return ErrClassGroupNotFound
	}
	g.Name = name
	return nil
}

// MoveClassGroup 将教学班改挂到另一课程，学生科目列表按新课程重新推导
// 两个课程共有的科目保留已有成绩与评语
func MoveClassGroup(snap *model.AppSnapshot, groupID, courseID string) error {
	g := snap.FindClassGroup(groupID)
	if g == nil {
		return ErrClassGroupNotFound
	}
	course := snap.FindCourse(courseID)
	if course == nil {
		return ErrCourseNotFound
	}
	g.CourseID = courseID
	for si := range g.Students {
		repairStudent(&g.Students[si], course.Subjects)
	}
	return nil
}

// DeleteClassGroup 删除教学班，级联删除其学生
func DeleteClassGroup(snap *model.AppSnapshot, groupID string) error {
	if snap.FindClassGroup(groupID) == nil {
		return ErrClassGroupNotFound
	}
	groups := snap.ClassGroups[:0]
	for _, g := range snap.ClassGroups {
		if g.ID != groupID {
			groups = append(groups, g)
		}
	}
	snap.ClassGroups = groups
	return nil
}

// ────────────────────── 学生 ──────────────────────

// AddStudent 新增学生，四个评估期按所属课程科目同时初始化
func AddStudent(snap *model.AppSnapshot, groupID, name string) (model.Student, error) {
	added, err := AddStudents(snap, groupID, []string{name})
	if err != nil {
		return model.Student{}, err
	}
	if len(added) == 0 {
		return model.Student{}, ErrEmptyName
	}
	return added[0], nil
}

// AddStudents 批量新增学生（如粘贴的名单），忽略空白行
func AddStudents(snap *model.AppSnapshot, groupID string, names []string) ([]model.Student, error) {
	g := snap.FindClassGroup(groupID)
	if g == nil {
		return nil, ErrClassGroupNotFound
	}
	var courseSubjects []model.CourseSubject
	if c := snap.FindCourse(g.CourseID); c != nil {
		courseSubjects = c.Subjects
	}

	added := make([]model.Student, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		st := model.NewStudent(uuid.NewString(), name, courseSubjects)
		g.Students = append(g.Students, st)
		added = append(added, st)
	}
	return added, nil
}

// RenameStudent 重命名学生
func RenameStudent(snap *model.AppSnapshot, groupID, studentID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	st, err := findStudent(snap, groupID, studentID)
	if err != nil {
		return err
	}
	st.Name = name
	return nil
}

// DeleteStudent 删除学生
func DeleteStudent(snap *model.AppSnapshot, groupID, studentID string) error {
	g := snap.FindClassGroup(groupID)
	if g == nil {
		return ErrClassGroupNotFound
	}
	if g.FindStudent(studentID) == nil {
		return ErrStudentNotFound
	}
	students := g.Students[:0]
	for _, st := range g.Students {
		if st.ID != studentID {
			students = append(students, st)
		}
	}
	g.Students = students
	return nil
}

// ────────────────────── 评价编辑 ──────────────────────

// EvaluationEdit 教师手工编辑；nil 字段保持不变
type EvaluationEdit struct {
	Kind      model.FieldKind
	SubjectID string

	Notes  *string
	Report *string
	// 以下仅对科目评语有效
	Grade               *model.Grade
	CustomWorkedContent *string
	ClearCustomContent  bool
}

// UpdateEvaluation 应用教师手工编辑（人工编辑可以覆盖已有评语正文）
func UpdateEvaluation(snap *model.AppSnapshot, groupID, studentID string, term model.TermID, edit EvaluationEdit) error {
	if !term.Valid() {
		return ErrInvalidTerm
	}
	st, err := findStudent(snap, groupID, studentID)
	if err != nil {
		return err
	}
	ev := st.Evaluations.Get(term)

	field := ev.Narrative(edit.Kind, edit.SubjectID)
	if field == nil {
		return ErrSubjectNotFound
	}
	if edit.Grade != nil && !edit.Grade.Valid() {
		return ErrInvalidGrade
	}

	if edit.Notes != nil {
		field.Notes = *edit.Notes
	}
	if edit.Report != nil {
		field.Report = *edit.Report
	}
	if edit.Kind != model.FieldSubjectComment {
		return nil
	}

	ss := ev.FindSubject(edit.SubjectID)
	if edit.Grade != nil {
		ss.Grade = *edit.Grade
	}
	switch {
	case edit.ClearCustomContent:
		ss.CustomWorkedContent = nil
	case edit.CustomWorkedContent != nil:
		v := *edit.CustomWorkedContent
		ss.CustomWorkedContent = &v
	}
	return nil
}

// SetStyleExamples 设置评语风格示例
func SetStyleExamples(snap *model.AppSnapshot, text string) {
	snap.StyleExamples = text
}

func findStudent(snap *model.AppSnapshot, groupID, studentID string) (*model.Student, error) {
	g := snap.FindClassGroup(groupID)
	if g == nil {
		return nil, ErrClassGroupNotFound
	}
	st := g.FindStudent(studentID)
	if st == nil {
		return nil, ErrStudentNotFound
	}
	return st, nil
}
