package model

// ── 深拷贝 ──
// 批量操作开始前复制整份快照，副本与原快照不共享任何切片或指针

// Clone 深拷贝整个快照
func (s *AppSnapshot) Clone() *AppSnapshot {
	if s == nil {
		return nil
	}
	out := &AppSnapshot{
		Courses:       make([]Course, len(s.Courses)),
		ClassGroups:   make([]ClassGroup, len(s.ClassGroups)),
		Subjects:      append([]Subject(nil), s.Subjects...),
		StyleExamples: s.StyleExamples,
	}
	if out.Subjects == nil {
		out.Subjects = []Subject{}
	}
	for i := range s.Courses {
		out.Courses[i] = s.Courses[i].Clone()
	}
	for i := range s.ClassGroups {
		out.ClassGroups[i] = s.ClassGroups[i].Clone()
	}
	return out
}

// Clone 深拷贝课程
func (c Course) Clone() Course {
	c.Subjects = append([]CourseSubject{}, c.Subjects...)
	return c
}

// Clone 深拷贝教学班
func (g ClassGroup) Clone() ClassGroup {
	students := make([]Student, len(g.Students))
	for i := range g.Students {
		students[i] = g.Students[i].Clone()
	}
	g.Students = students
	return g
}

// Clone 深拷贝学生
func (st Student) Clone() Student {
	st.Evaluations = TermEvaluations{
		T1:    st.Evaluations.T1.Clone(),
		T2:    st.Evaluations.T2.Clone(),
		T3:    st.Evaluations.T3.Clone(),
		Final: st.Evaluations.Final.Clone(),
	}
	return st
}

// Clone 深拷贝单期评估
func (e EvaluationData) Clone() EvaluationData {
	subjects := make([]StudentSubject, len(e.Subjects))
	for i, ss := range e.Subjects {
		if ss.CustomWorkedContent != nil {
			v := *ss.CustomWorkedContent
			ss.CustomWorkedContent = &v
		}
		subjects[i] = ss
	}
	e.Subjects = subjects
	return e
}
