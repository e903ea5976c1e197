package model

// ── 学期（评估期）──

// TermID 评估期标识，封闭集合：三个学期 + 学年总结
type TermID string

const (
	Term1     TermID = "1"
	Term2     TermID = "2"
	Term3     TermID = "3"
	TermFinal TermID = "final"
)

// Terms 按时间顺序排列的全部评估期
var Terms = [...]TermID{Term1, Term2, Term3, TermFinal}

// Valid 判断是否为合法评估期
func (t TermID) Valid() bool {
	switch t {
	case Term1, Term2, Term3, TermFinal:
		return true
	}
	return false
}

// Label 评估期展示名称
func (t TermID) Label() string {
	switch t {
	case Term1:
		return "1r Trimestre"
	case Term2:
		return "2n Trimestre"
	case Term3:
		return "3r Trimestre"
	case TermFinal:
		return "Final de Curs"
	}
	return string(t)
}

// ── 成绩 ──

// Grade 成绩等级，取值与历史数据中的存储文本保持一致
type Grade string

const (
	GradeExcellent    Grade = "Assoliment Excel·lent"
	GradeNotable      Grade = "Assoliment Notable"
	GradeSatisfactory Grade = "Assoliment Satisfactori"
	GradeNotAchieved  Grade = "No Assolit"
)

// DefaultGrade 新建科目记录时的默认成绩
const DefaultGrade = GradeSatisfactory

// Valid 判断是否为合法成绩
func (g Grade) Valid() bool {
	switch g {
	case GradeExcellent, GradeNotable, GradeSatisfactory, GradeNotAchieved:
		return true
	}
	return false
}

// ── 实体 ──

// NarrativeField 教师原始笔记 + 面向家长的评语正文
type NarrativeField struct {
	Notes  string `json:"notes"`
	Report string `json:"report"`
}

// Subject 科目主目录条目
type Subject struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TermText 按评估期区分的文本（课程内容大纲）
type TermText struct {
	T1    string `json:"1"`
	T2    string `json:"2"`
	T3    string `json:"3"`
	Final string `json:"final"`
}

// Get 读取指定评估期文本，非法评估期返回空串
func (t *TermText) Get(term TermID) string {
	if p := t.field(term); p != nil {
		return *p
	}
	return ""
}

// Set 写入指定评估期文本，非法评估期忽略
func (t *TermText) Set(term TermID, text string) {
	if p := t.field(term); p != nil {
		*p = text
	}
}

func (t *TermText) field(term TermID) *string {
	switch term {
	case Term1:
		return &t.T1
	case Term2:
		return &t.T2
	case Term3:
		return &t.T3
	case TermFinal:
		return &t.Final
	}
	return nil
}

// CourseSubject 某课程中讲授的科目，携带各评估期的内容大纲
type CourseSubject struct {
	SubjectID     string   `json:"subjectId"`
	WorkedContent TermText `json:"workedContent"`
}

// Course 课程（年级），拥有一组科目
type Course struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Subjects []CourseSubject `json:"subjects"`
}

// StudentSubject 学生在某评估期的单科评价
// CustomWorkedContent 为 nil 表示沿用课程大纲；非 nil（包括空串）表示个性化覆盖
type StudentSubject struct {
	SubjectID           string         `json:"subjectId"`
	Grade               Grade          `json:"grade"`
	Comment             NarrativeField `json:"comment"`
	CustomWorkedContent *string        `json:"customWorkedContent,omitempty"`
}

// EvaluationData 学生在单个评估期的全部评价
type EvaluationData struct {
	PersonalAspects NarrativeField   `json:"personalAspects"`
	GeneralComment  NarrativeField   `json:"generalComment"`
	Subjects        []StudentSubject `json:"subjects"`
}

// FindSubject 按科目 ID 查找，未找到返回 nil
func (e *EvaluationData) FindSubject(subjectID string) *StudentSubject {
	for i := range e.Subjects {
		if e.Subjects[i].SubjectID == subjectID {
			return &e.Subjects[i]
		}
	}
	return nil
}

// TermEvaluations 四个评估期的评价，固定字段而非动态 map
type TermEvaluations struct {
	T1    EvaluationData `json:"1"`
	T2    EvaluationData `json:"2"`
	T3    EvaluationData `json:"3"`
	Final EvaluationData `json:"final"`
}

// Get 返回指定评估期的评价指针，非法评估期返回 nil
func (t *TermEvaluations) Get(term TermID) *EvaluationData {
	switch term {
	case Term1:
		return &t.T1
	case Term2:
		return &t.T2
	case Term3:
		return &t.T3
	case TermFinal:
		return &t.Final
	}
	return nil
}

// Student 学生
type Student struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Evaluations TermEvaluations `json:"evaluations"`
}

// ClassGroup 教学班，跟随一个课程的科目设置
type ClassGroup struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	CourseID string    `json:"courseId"`
	Students []Student `json:"students"`
}

// FindStudent 按 ID 查找学生，未找到返回 nil
func (g *ClassGroup) FindStudent(studentID string) *Student {
	for i := range g.Students {
		if g.Students[i].ID == studentID {
			return &g.Students[i]
		}
	}
	return nil
}

// AppSnapshot 一个教师的全部数据，整体加载与保存
type AppSnapshot struct {
	Courses       []Course     `json:"courses"`
	ClassGroups   []ClassGroup `json:"classGroups"`
	Subjects      []Subject    `json:"subjects"`
	StyleExamples string       `json:"styleExamples,omitempty"`
}

// UnknownSubjectName 悬空科目引用的展示名称
const UnknownSubjectName = "Unknown"

// NewSnapshot 创建空快照（切片非 nil，序列化为 []）
func NewSnapshot() *AppSnapshot {
	return &AppSnapshot{
		Courses:     []Course{},
		ClassGroups: []ClassGroup{},
		Subjects:    []Subject{},
	}
}

// FindCourse 按 ID 查找课程
func (s *AppSnapshot) FindCourse(id string) *Course {
	for i := range s.Courses {
		if s.Courses[i].ID == id {
			return &s.Courses[i]
		}
	}
	return nil
}

// FindClassGroup 按 ID 查找教学班
func (s *AppSnapshot) FindClassGroup(id string) *ClassGroup {
	for i := range s.ClassGroups {
		if s.ClassGroups[i].ID == id {
			return &s.ClassGroups[i]
		}
	}
	return nil
}

// FindSubject 按 ID 查找科目
func (s *AppSnapshot) FindSubject(id string) *Subject {
	for i := range s.Subjects {
		if s.Subjects[i].ID == id {
			return &s.Subjects[i]
		}
	}
	return nil
}

// SubjectName 解析科目名称，悬空引用返回 UnknownSubjectName
func (s *AppSnapshot) SubjectName(id string) string {
	if sub := s.FindSubject(id); sub != nil {
		return sub.Name
	}
	return UnknownSubjectName
}

// FindCourseSubject 在课程中查找科目
func (c *Course) FindCourseSubject(subjectID string) *CourseSubject {
	for i := range c.Subjects {
		if c.Subjects[i].SubjectID == subjectID {
			return &c.Subjects[i]
		}
	}
	return nil
}

// HasSubject 课程是否已分配该科目
func (c *Course) HasSubject(subjectID string) bool {
	return c.FindCourseSubject(subjectID) != nil
}

// ── 构造函数 ──

// NewCourseSubject 创建四个评估期大纲均为空的课程科目
func NewCourseSubject(subjectID string) CourseSubject {
	return CourseSubject{SubjectID: subjectID}
}

// NewStudentSubject 创建默认成绩、空评语的学生科目记录
func NewStudentSubject(subjectID string) StudentSubject {
	return StudentSubject{SubjectID: subjectID, Grade: DefaultGrade}
}

// NewEvaluationData 按课程科目创建空评估
func NewEvaluationData(courseSubjects []CourseSubject) EvaluationData {
	subjects := make([]StudentSubject, 0, len(courseSubjects))
	for _, cs := range courseSubjects {
		subjects = append(subjects, NewStudentSubject(cs.SubjectID))
	}
	return EvaluationData{Subjects: subjects}
}

// NewStudent 创建学生，四个评估期同时按课程科目初始化
func NewStudent(id, name string, courseSubjects []CourseSubject) Student {
	return Student{
		ID:   id,
		Name: name,
		Evaluations: TermEvaluations{
			T1:    NewEvaluationData(courseSubjects),
			T2:    NewEvaluationData(courseSubjects),
			T3:    NewEvaluationData(courseSubjects),
			Final: NewEvaluationData(courseSubjects),
		},
	}
}
