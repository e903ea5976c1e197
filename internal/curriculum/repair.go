package curriculum

import "memonotes/internal/model"

// Repair 按课程重新推导每个学生四个评估期的科目列表：
// 去重、删除未分配科目、补齐缺失科目，已有记录内容保持不变。
// 返回被修复的（学生, 评估期）数量；并发编辑可能留下不一致，这里就地修复而不报错。
// 课程不存在的教学班不做处理。
func Repair(snap *model.AppSnapshot) int {
	repaired := 0
	for gi := range snap.ClassGroups {
		g := &snap.ClassGroups[gi]
		course := snap.FindCourse(g.CourseID)
		if course == nil {
			continue
		}
		for si := range g.Students {
			repaired += repairStudent(&g.Students[si], course.Subjects)
		}
	}
	return repaired
}

func repairStudent(st *model.Student, courseSubjects []model.CourseSubject) int {
	repaired := 0
	for _, term := range model.Terms {
		ev := st.Evaluations.Get(term)
		if subjectsMatch(ev.Subjects, courseSubjects) {
			continue
		}
		ev.Subjects = rederive(ev.Subjects, courseSubjects)
		repaired++
	}
	return repaired
}

// subjectsMatch 学生科目与课程科目集合完全一致（无重复、无遗漏、无多余）
func subjectsMatch(have []model.StudentSubject, want []model.CourseSubject) bool {
	if len(have) != len(want) {
		return false
	}
	wanted := make(map[string]bool, len(want))
	for _, cs := range want {
		wanted[cs.SubjectID] = true
	}
	seen := make(map[string]bool, len(have))
	for _, ss := range have {
		if !wanted[ss.SubjectID] || seen[ss.SubjectID] {
			return false
		}
		seen[ss.SubjectID] = true
	}
	return true
}

// rederive 保留每个课程科目的第一条已有记录，按学生原顺序输出，缺失的追加在末尾
func rederive(have []model.StudentSubject, want []model.CourseSubject) []model.StudentSubject {
	wanted := make(map[string]bool, len(want))
	for _, cs := range want {
		wanted[cs.SubjectID] = true
	}

	out := make([]model.StudentSubject, 0, len(want))
	kept := make(map[string]bool, len(want))
	for _, ss := range have {
		if !wanted[ss.SubjectID] || kept[ss.SubjectID] {
			continue
		}
		kept[ss.SubjectID] = true
		out = append(out, ss)
	}
	for _, cs := range want {
		if !kept[cs.SubjectID] {
			out = append(out, model.NewStudentSubject(cs.SubjectID))
		}
	}
	return out
}
