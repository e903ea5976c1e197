// Package curriculum 维护课程 / 科目 / 教学班 / 学生之间的结构不变量：
// 每个学生在四个评估期的科目列表，与其教学班所属课程的科目一一对应。
//
// 所有操作都先校验、后修改，调用要么完整生效，要么不改动快照。
package curriculum

import (
	"errors"

	"memonotes/internal/model"
)

// ── 业务错误 ──

var (
	ErrCourseNotFound     = errors.New("课程不存在")
	ErrSubjectNotFound    = errors.New("科目不存在")
	ErrClassGroupNotFound = errors.New("教学班不存在")
	ErrStudentNotFound    = errors.New("学生不存在")
	ErrInvalidTerm        = errors.New("无效的评估期")
	ErrInvalidGrade       = errors.New("无效的成绩")
	ErrEmptyName          = errors.New("名称不能为空")
)

// AssignSubjectToCourse 为课程分配科目，并为该课程下所有学生的四个评估期补齐科目记录。
// 已分配时为空操作。
func AssignSubjectToCourse(snap *model.AppSnapshot, courseID, subjectID string) error {
	course := snap.FindCourse(courseID)
	if course == nil {
		return ErrCourseNotFound
	}
	if snap.FindSubject(subjectID) == nil {
		return ErrSubjectNotFound
	}
	if course.HasSubject(subjectID) {
		return nil
	}

	course.Subjects = append(course.Subjects, model.NewCourseSubject(subjectID))
	forEachStudentOfCourse(snap, courseID, func(st *model.Student) {
		for _, term := range model.Terms {
			ev := st.Evaluations.Get(term)
			if ev.FindSubject(subjectID) == nil {
				ev.Subjects = append(ev.Subjects, model.NewStudentSubject(subjectID))
			}
		}
	})
	return nil
}

// UnassignSubjectFromCourse 从课程移除科目，并删除该课程下所有学生四个评估期中对应的科目记录
func UnassignSubjectFromCourse(snap *model.AppSnapshot, courseID, subjectID string) error {
	course := snap.FindCourse(courseID)
	if course == nil {
		return ErrCourseNotFound
	}

	course.Subjects = removeCourseSubject(course.Subjects, subjectID)
	forEachStudentOfCourse(snap, courseID, func(st *model.Student) {
		removeStudentSubject(st, subjectID)
	})
	return nil
}

// ── 内部辅助 ──

func forEachStudentOfCourse(snap *model.AppSnapshot, courseID string, fn func(st *model.Student)) {
	for gi := range snap.ClassGroups {
		g := &snap.ClassGroups[gi]
		if g.CourseID != courseID {
			continue
		}
		for si := range g.Students {
			fn(&g.Students[si])
		}
	}
}

func removeCourseSubject(list []model.CourseSubject, subjectID string) []model.CourseSubject {
	out := list[:0]
	for _, cs := range list {
		if cs.SubjectID != subjectID {
			out = append(out, cs)
		}
	}
	return out
}

func removeStudentSubject(st *model.Student, subjectID string) {
	for _, term := range model.Terms {
		ev := st.Evaluations.Get(term)
		out := ev.Subjects[:0]
		for _, ss := range ev.Subjects {
			if ss.SubjectID != subjectID {
				out = append(out, ss)
			}
		}
		ev.Subjects = out
	}
}
