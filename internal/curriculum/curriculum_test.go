package curriculum

import (
	"errors"
	"testing"

	"memonotes/internal/model"
)

// ── 测试辅助 ──

// setupSnapshot 两个课程：c-3 有 math，c-4 无科目；c-3 下两个教学班各两名学生，c-4 下一个教学班
func setupSnapshot(t *testing.T) *model.AppSnapshot {
	t.Helper()
	snap := model.NewSnapshot()
	snap.Subjects = []model.Subject{
		{ID: "math", Name: "MATEMÀTIQUES"},
		{ID: "cat", Name: "LLENGUA CATALANA"},
	}
	snap.Courses = []model.Course{
		{ID: "c-3", Name: "TERCER", Subjects: []model.CourseSubject{model.NewCourseSubject("math")}},
		{ID: "c-4", Name: "QUART", Subjects: []model.CourseSubject{}},
	}
	for _, g := range []struct{ id, course string }{{"g-a", "c-3"}, {"g-b", "c-3"}, {"g-c", "c-4"}} {
		snap.ClassGroups = append(snap.ClassGroups, model.ClassGroup{ID: g.id, Name: g.id, CourseID: g.course})
		if _, err := AddStudents(snap, g.id, []string{g.id + "-1", g.id + "-2"}); err != nil {
			t.Fatalf("初始化学生失败: %v", err)
		}
	}
	return snap
}

func countSubject(ev *model.EvaluationData, subjectID string) int {
	n := 0
	for _, ss := range ev.Subjects {
		if ss.SubjectID == subjectID {
			n++
		}
	}
	return n
}

// ── AssignSubjectToCourse ──

func TestAssignSubjectToCourse_PropagatesToAllTerms(t *testing.T) {
	snap := setupSnapshot(t)

	if err := AssignSubjectToCourse(snap, "c-3", "cat"); err != nil {
		t.Fatalf("分配科目应成功: %v", err)
	}

	if !snap.FindCourse("c-3").HasSubject("cat") {
		t.Fatal("课程应包含新科目")
	}
	cs := snap.FindCourse("c-3").FindCourseSubject("cat")
	if cs.WorkedContent != (model.TermText{}) {
		t.Errorf("新课程科目大纲应为空，实际=%+v", cs.WorkedContent)
	}
	for _, gid := range []string{"g-a", "g-b"} {
		for _, st := range snap.FindClassGroup(gid).Students {
			for _, term := range model.Terms {
				ev := st.Evaluations.Get(term)
				if n := countSubject(ev, "cat"); n != 1 {
					t.Fatalf("学生 %s term=%s 应恰有 1 条 cat 记录，实际=%d", st.ID, term, n)
				}
				ss := ev.FindSubject("cat")
				if ss.Grade != model.GradeSatisfactory || ss.Comment != (model.NarrativeField{}) {
					t.Errorf("新记录应为默认成绩与空评语，实际=%+v", ss)
				}
			}
		}
	}
	for _, st := range snap.FindClassGroup("g-c").Students {
		if st.Evaluations.T1.FindSubject("cat") != nil {
			t.Error("其他课程的学生不应受影响")
		}
	}
}

func TestAssignSubjectToCourse_AlreadyAssignedIsNoop(t *testing.T) {
	snap := setupSnapshot(t)
	st := &snap.FindClassGroup("g-a").Students[0]
	st.Evaluations.T1.Subjects[0].Comment.Notes = "keep"

	if err := AssignSubjectToCourse(snap, "c-3", "math"); err != nil {
		t.Fatalf("重复分配应为空操作: %v", err)
	}
	if len(snap.FindCourse("c-3").Subjects) != 1 {
		t.Error("课程科目不应重复")
	}
	if countSubject(&st.Evaluations.T1, "math") != 1 || st.Evaluations.T1.Subjects[0].Comment.Notes != "keep" {
		t.Error("学生已有记录不应被改动")
	}
}

func TestAssignSubjectToCourse_NotFound(t *testing.T) {
	snap := setupSnapshot(t)

	if err := AssignSubjectToCourse(snap, "nope", "cat"); !errors.Is(err, ErrCourseNotFound) {
		t.Errorf("期望 ErrCourseNotFound，实际: %v", err)
	}
	if err := AssignSubjectToCourse(snap, "c-3", "nope"); !errors.Is(err, ErrSubjectNotFound) {
		t.Errorf("期望 ErrSubjectNotFound，实际: %v", err)
	}
	if snap.FindCourse("c-3").HasSubject("nope") {
		t.Error("失败的分配不应修改课程")
	}
}

// ── UnassignSubjectFromCourse ──

func TestUnassignSubjectFromCourse_Cascades(t *testing.T) {
	snap := setupSnapshot(t)
	if err := AssignSubjectToCourse(snap, "c-3", "cat"); err != nil {
		t.Fatalf("分配科目失败: %v", err)
	}

	if err := UnassignSubjectFromCourse(snap, "c-3", "math"); err != nil {
		t.Fatalf("解绑科目应成功: %v", err)
	}
	if snap.FindCourse("c-3").HasSubject("math") {
		t.Error("课程不应再包含该科目")
	}
	for _, gid := range []string{"g-a", "g-b"} {
		for _, st := range snap.FindClassGroup(gid).Students {
			for _, term := range model.Terms {
				ev := st.Evaluations.Get(term)
				if countSubject(ev, "math") != 0 {
					t.Errorf("学生 %s term=%s 不应再引用 math", st.ID, term)
				}
				if countSubject(ev, "cat") != 1 {
					t.Errorf("学生 %s term=%s 其他科目应保留", st.ID, term)
				}
			}
		}
	}
}

// ── 级联删除 ──

func TestDeleteSubject_DetachesEverywhere(t *testing.T) {
	snap := setupSnapshot(t)
	if err := AssignSubjectToCourse(snap, "c-4", "math"); err != nil {
		t.Fatalf("分配科目失败: %v", err)
	}

	if err := DeleteSubject(snap, "math"); err != nil {
		t.Fatalf("删除科目应成功: %v", err)
	}
	if snap.FindSubject("math") != nil {
		t.Error("科目应从主目录删除")
	}
	for _, c := range snap.Courses {
		if c.HasSubject("math") {
			t.Errorf("课程 %s 不应再包含 math", c.ID)
		}
	}
	for _, g := range snap.ClassGroups {
		for _, st := range g.Students {
			for _, term := range model.Terms {
				if countSubject(st.Evaluations.Get(term), "math") != 0 {
					t.Errorf("学生 %s term=%s 不应再引用 math", st.ID, term)
				}
			}
		}
	}
}

func TestDeleteCourse_CascadesClassGroups(t *testing.T) {
	snap := setupSnapshot(t)

	if err := DeleteCourse(snap, "c-3"); err != nil {
		t.Fatalf("删除课程应成功: %v", err)
	}
	if len(snap.Courses) != 1 || len(snap.ClassGroups) != 1 || snap.ClassGroups[0].ID != "g-c" {
		t.Errorf("应级联删除 c-3 的教学班，剩余=%+v", snap.ClassGroups)
	}
}

func TestDeleteClassGroupAndStudent(t *testing.T) {
	snap := setupSnapshot(t)
	victim := snap.FindClassGroup("g-b").Students[0].ID

	if err := DeleteStudent(snap, "g-b", victim); err != nil {
		t.Fatalf("删除学生应成功: %v", err)
	}
	if snap.FindClassGroup("g-b").FindStudent(victim) != nil {
		t.Error("学生应被删除")
	}
	if err := DeleteStudent(snap, "g-b", victim); !errors.Is(err, ErrStudentNotFound) {
		t.Errorf("期望 ErrStudentNotFound，实际: %v", err)
	}
	if err := DeleteClassGroup(snap, "g-b"); err != nil {
		t.Fatalf("删除教学班应成功: %v", err)
	}
	if snap.FindClassGroup("g-b") != nil {
		t.Error("教学班应被删除")
	}
}

// ── 学生 ──

func TestAddStudents_SkipsBlankNames(t *testing.T) {
	snap := setupSnapshot(t)

	added, err := AddStudents(snap, "g-c", []string{" PAU DIAZ ", "", "   ", "EMMA NAVARRO"})
	if err != nil {
		t.Fatalf("批量新增应成功: %v", err)
	}
	if len(added) != 2 || added[0].Name != "PAU DIAZ" {
		t.Errorf("应新增 2 名学生并去除空白，实际=%+v", added)
	}
	if _, err := AddStudent(snap, "g-c", "  "); !errors.Is(err, ErrEmptyName) {
		t.Errorf("期望 ErrEmptyName，实际: %v", err)
	}
	if _, err := AddStudent(snap, "nope", "X"); !errors.Is(err, ErrClassGroupNotFound) {
		t.Errorf("期望 ErrClassGroupNotFound，实际: %v", err)
	}
}

func TestMoveClassGroup_RederivesSubjects(t *testing.T) {
	snap := setupSnapshot(t)
	if err := AssignSubjectToCourse(snap, "c-4", "cat"); err != nil {
		t.Fatalf("分配科目失败: %v", err)
	}

	if err := MoveClassGroup(snap, "g-a", "c-4"); err != nil {
		t.Fatalf("移动教学班应成功: %v", err)
	}
	for _, st := range snap.FindClassGroup("g-a").Students {
		for _, term := range model.Terms {
			ev := st.Evaluations.Get(term)
			if len(ev.Subjects) != 1 || ev.Subjects[0].SubjectID != "cat" {
				t.Errorf("学生科目应与新课程一致，实际=%+v", ev.Subjects)
			}
		}
	}
}

// ── 评价编辑 ──

func TestUpdateEvaluation_SubjectFields(t *testing.T) {
	snap := setupSnapshot(t)
	st := snap.FindClassGroup("g-a").Students[0]
	notes, report, empty := "resol problemes", "Text final", ""
	grade := model.GradeExcellent

	err := UpdateEvaluation(snap, "g-a", st.ID, model.Term2, EvaluationEdit{
		Kind: model.FieldSubjectComment, SubjectID: "math",
		Notes: &notes, Report: &report, Grade: &grade, CustomWorkedContent: &empty,
	})
	if err != nil {
		t.Fatalf("编辑应成功: %v", err)
	}
	ss := snap.FindClassGroup("g-a").FindStudent(st.ID).Evaluations.T2.FindSubject("math")
	if ss.Comment.Notes != notes || ss.Comment.Report != report || ss.Grade != grade {
		t.Errorf("编辑未生效: %+v", ss)
	}
	if ss.CustomWorkedContent == nil || *ss.CustomWorkedContent != "" {
		t.Error("应设置显式空覆盖")
	}

	err = UpdateEvaluation(snap, "g-a", st.ID, model.Term2, EvaluationEdit{
		Kind: model.FieldSubjectComment, SubjectID: "math", ClearCustomContent: true,
	})
	if err != nil {
		t.Fatalf("清除覆盖应成功: %v", err)
	}
	if ss.CustomWorkedContent != nil {
		t.Error("覆盖应被清除")
	}
}

func TestUpdateEvaluation_Errors(t *testing.T) {
	snap := setupSnapshot(t)
	st := snap.FindClassGroup("g-a").Students[0]
	bad := model.Grade("A+")

	if err := UpdateEvaluation(snap, "g-a", st.ID, "4", EvaluationEdit{Kind: model.FieldGeneralComment}); !errors.Is(err, ErrInvalidTerm) {
		t.Errorf("期望 ErrInvalidTerm，实际: %v", err)
	}
	if err := UpdateEvaluation(snap, "g-a", st.ID, model.Term1, EvaluationEdit{Kind: model.FieldSubjectComment, SubjectID: "cat"}); !errors.Is(err, ErrSubjectNotFound) {
		t.Errorf("期望 ErrSubjectNotFound，实际: %v", err)
	}
	if err := UpdateEvaluation(snap, "g-a", st.ID, model.Term1, EvaluationEdit{Kind: model.FieldSubjectComment, SubjectID: "math", Grade: &bad}); !errors.Is(err, ErrInvalidGrade) {
		t.Errorf("期望 ErrInvalidGrade，实际: %v", err)
	}
}

// ── Repair ──

func TestRepair_RederivesFromCourse(t *testing.T) {
	snap := setupSnapshot(t)
	st := &snap.FindClassGroup("g-a").Students[0]
	st.Evaluations.T1.Subjects[0].Comment.Notes = "keep"
	// 重复 + 多余 + 遗漏
	st.Evaluations.T1.Subjects = append(st.Evaluations.T1.Subjects,
		model.NewStudentSubject("math"), model.NewStudentSubject("ghost"))
	st.Evaluations.T3.Subjects = nil

	if n := Repair(snap); n != 2 {
		t.Errorf("期望修复 2 处，实际=%d", n)
	}
	t1 := st.Evaluations.T1
	if len(t1.Subjects) != 1 || t1.Subjects[0].Comment.Notes != "keep" {
		t.Errorf("应保留第一条已有记录，实际=%+v", t1.Subjects)
	}
	if len(st.Evaluations.T3.Subjects) != 1 {
		t.Errorf("缺失科目应补齐，实际=%+v", st.Evaluations.T3.Subjects)
	}
	if n := Repair(snap); n != 0 {
		t.Errorf("修复应幂等，实际=%d", n)
	}
}
