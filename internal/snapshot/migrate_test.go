package snapshot

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"memonotes/internal/model"
)

// ── 测试数据 ──

const legacyDoc = `{
  "subjects": [{"id": "sub-cat", "name": "LLENGUA CATALANA"}, {"id": "sub-mat", "name": "MATEMÀTIQUES"}],
  "courses": [{
    "id": "c-3", "name": "TERCER",
    "subjects": [
      {"subjectId": "sub-cat", "workedContent": "Lectura en veu alta."},
      {"subjectId": "sub-mat", "workedContent": {"1": "Suma", "2": "Resta", "3": "", "final": "Tot"}}
    ]
  }],
  "classGroups": [{
    "id": "g-1", "name": "CLASSE DELS DOFINS", "courseId": "c-3",
    "students": [{
      "id": "s-1", "name": "MARC GARCIA",
      "personalAspects": {"notes": "N", "report": "R"},
      "generalComment": {"notes": "G", "report": ""},
      "subjects": [
        {"subjectId": "sub-cat", "grade": "Assoliment Notable", "comment": {"notes": "llegeix bé", "report": "Text"}, "customWorkedContent": "PI"},
        {"subjectId": "sub-mat", "grade": "Assoliment Excel·lent", "comment": {"notes": "", "report": ""}}
      ]
    }]
  }],
  "styleExamples": "EXEMPLE 1"
}`

var equateEmpty = cmpopts.EquateEmpty()

func mustJSON(t *testing.T, v interface{}) []byte {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("序列化失败: %v", err)
	}
	return raw
}

// ── 旧版学生迁移 ──

func TestMigrate_LegacyStudentPreservesTermOne(t *testing.T) {
	snap, report := NewMigrator(nil).MigrateWithReport([]byte(legacyDoc))

	if report.LegacyStudents != 1 {
		t.Errorf("期望 1 个旧版学生，实际=%d", report.LegacyStudents)
	}
	st := snap.ClassGroups[0].Students[0]

	t1 := st.Evaluations.T1
	if t1.PersonalAspects.Notes != "N" || t1.PersonalAspects.Report != "R" {
		t.Errorf("第一学期个人方面应保留原数据，实际=%+v", t1.PersonalAspects)
	}
	if t1.GeneralComment.Notes != "G" {
		t.Errorf("第一学期总评笔记应保留，实际=%q", t1.GeneralComment.Notes)
	}
	if len(t1.Subjects) != 2 || t1.Subjects[0].Grade != model.GradeNotable {
		t.Fatalf("第一学期科目应保留，实际=%+v", t1.Subjects)
	}
	if t1.Subjects[0].CustomWorkedContent == nil || *t1.Subjects[0].CustomWorkedContent != "PI" {
		t.Error("第一学期个性化大纲应保留")
	}
}

func TestMigrate_LegacyStudentResetsOtherTerms(t *testing.T) {
	snap := Migrate([]byte(legacyDoc))
	st := snap.ClassGroups[0].Students[0]

	for _, term := range []model.TermID{model.Term2, model.Term3, model.TermFinal} {
		ev := st.Evaluations.Get(term)
		if ev.PersonalAspects.Notes != "" || ev.PersonalAspects.Report != "" {
			t.Errorf("term=%s 个人方面应清空，实际=%+v", term, ev.PersonalAspects)
		}
		if ev.GeneralComment != (model.NarrativeField{}) {
			t.Errorf("term=%s 总评应清空", term)
		}
		if len(ev.Subjects) != 2 {
			t.Fatalf("term=%s 应复制科目结构，实际=%d", term, len(ev.Subjects))
		}
		for _, ss := range ev.Subjects {
			if ss.Grade != model.GradeSatisfactory {
				t.Errorf("term=%s 成绩应重置为 Satisfactori，实际=%s", term, ss.Grade)
			}
			if ss.Comment != (model.NarrativeField{}) {
				t.Errorf("term=%s 科目评语应清空", term)
			}
			if ss.CustomWorkedContent != nil {
				t.Errorf("term=%s 个性化大纲应移除", term)
			}
		}
	}
}

// ── 课程大纲迁移 ──

func TestMigrate_LiftsStringWorkedContent(t *testing.T) {
	snap, report := NewMigrator(nil).MigrateWithReport([]byte(legacyDoc))

	if report.LegacyWorkedContents != 1 {
		t.Errorf("期望 1 个旧版大纲，实际=%d", report.LegacyWorkedContents)
	}
	cat := snap.Courses[0].Subjects[0].WorkedContent
	want := model.TermText{T1: "Lectura en veu alta."}
	if cat != want {
		t.Errorf("旧版大纲应归入第一学期，实际=%+v", cat)
	}
	mat := snap.Courses[0].Subjects[1].WorkedContent
	if mat.T2 != "Resta" || mat.Final != "Tot" {
		t.Errorf("按学期存储的大纲应原样保留，实际=%+v", mat)
	}
}

// ── 幂等性 ──

func TestMigrate_CatalogWorkedContentFillsCourseSubject(t *testing.T) {
	in := `{"subjects":[{"id":"m","worked_content":"Sumes i restes"}],"courses":[{"id":"c","subjects":[{"subjectId":"m"}]}]}`
	snap, report := NewMigrator(nil).MigrateWithReport([]byte(in))

	cs := snap.Courses[0].FindCourseSubject("m")
	if cs == nil {
		t.Fatal("课程科目丢失")
	}
	if cs.WorkedContent.T1 != "Sumes i restes" {
		t.Errorf("科目目录大纲应写入第一学期, got %q", cs.WorkedContent.T1)
	}
	if report.LegacyWorkedContents != 1 {
		t.Errorf("期望 LegacyWorkedContents=1, got %d", report.LegacyWorkedContents)
	}
	if report.Anomalies != 0 {
		t.Errorf("不应产生异常, got %d", report.Anomalies)
	}
}

func TestMigrate_CatalogWorkedContentKeepsCourseText(t *testing.T) {
	in := `{"subjects":[{"id":"m","workedContent":{"1":"Cataleg","2":"Fraccions"}}],
	        "courses":[{"id":"c","subjects":[{"subjectId":"m","workedContent":"Propi"}]}]}`
	snap, report := NewMigrator(nil).MigrateWithReport([]byte(in))

	cs := snap.Courses[0].FindCourseSubject("m")
	if cs.WorkedContent.T1 != "Propi" {
		t.Errorf("课程自身大纲不应被覆盖, got %q", cs.WorkedContent.T1)
	}
	if cs.WorkedContent.T2 != "Fraccions" {
		t.Errorf("空评估期应由科目目录补齐, got %q", cs.WorkedContent.T2)
	}
	// 课程字符串一次，科目目录一次
	if report.LegacyWorkedContents != 2 {
		t.Errorf("期望 LegacyWorkedContents=2, got %d", report.LegacyWorkedContents)
	}
}

func TestMigrate_CatalogWorkedContentUnplacedIsAnomaly(t *testing.T) {
	tests := map[string]string{
		"无引用课程": `{"subjects":[{"id":"m","worked_content":"Sumes"}],"courses":[]}`,
		"第一学期已有": `{"subjects":[{"id":"m","worked_content":"Sumes"}],"courses":[{"id":"c","subjects":[{"subjectId":"m","workedContent":{"1":"Ja hi és"}}]}]}`,
		"类型非法":   `{"subjects":[{"id":"m","worked_content":7}],"courses":[{"id":"c","subjects":[{"subjectId":"m"}]}]}`,
	}

	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, report := NewMigrator(nil).MigrateWithReport([]byte(in))
			if report.Anomalies != 1 {
				t.Errorf("期望 1 个异常, got %d", report.Anomalies)
			}
			if report.LegacyWorkedContents != 0 {
				t.Errorf("未归入的大纲不应计数, got %d", report.LegacyWorkedContents)
			}
		})
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	inputs := map[string]string{
		"legacy":  legacyDoc,
		"empty":   `{}`,
		"null":    `null`,
		"garbage": `not json at all`,
		"partial": `{"classGroups":[{"id":"g","students":[{"id":"s","evaluations":{"2":{"subjects":[{"subjectId":"x","grade":"??"}]}}}]}]}`,
		"catalog": `{"subjects":[{"id":"m","worked_content":"Sumes i restes"}],"courses":[{"id":"c","subjects":[{"subjectId":"m"}]}]}`,
	}

	for name, in := range inputs {
		t.Run(name, func(t *testing.T) {
			first := Migrate([]byte(in))
			second, report := NewMigrator(nil).MigrateWithReport(mustJSON(t, first))

			if diff := cmp.Diff(first, second, equateEmpty); diff != "" {
				t.Errorf("二次迁移结果不一致 (-first +second):\n%s", diff)
			}
			if report.Changed() {
				t.Errorf("已是当前结构的快照不应再被改写: %+v", report)
			}
		})
	}
}

func TestMigrate_CurrentSnapshotUnchanged(t *testing.T) {
	snap := model.NewSnapshot()
	snap.Subjects = []model.Subject{{ID: "a", Name: "ANGLÈS"}}
	snap.Courses = []model.Course{{ID: "c", Name: "QUART", Subjects: []model.CourseSubject{{
		SubjectID:     "a",
		WorkedContent: model.TermText{T1: "Colors", T2: "Animals", T3: "Food", Final: "Tot"},
	}}}}
	st := model.NewStudent("s", "ONA", snap.Courses[0].Subjects)
	empty := ""
	st.Evaluations.T3.Subjects[0].CustomWorkedContent = &empty
	st.Evaluations.T1.Subjects[0].Grade = model.GradeNotAchieved
	snap.ClassGroups = []model.ClassGroup{{ID: "g", Name: "LLEONS", CourseID: "c", Students: []model.Student{st}}}

	got := Migrate(mustJSON(t, snap))
	if diff := cmp.Diff(snap, got, equateEmpty); diff != "" {
		t.Errorf("当前结构的快照应原样返回 (-want +got):\n%s", diff)
	}
	if got.ClassGroups[0].Students[0].Evaluations.T3.Subjects[0].CustomWorkedContent == nil {
		t.Error("显式空覆盖不应在迁移中丢失")
	}
}

// ── 异常输入 ──

func TestMigrate_DefaultsAnomalies(t *testing.T) {
	in := `{"subjects": "oops", "courses": [42, {"id": "c", "subjects": [{"subjectId": "a", "workedContent": 7}]}],
	        "classGroups": [{"id": "g", "students": [{"id": "s", "subjects": [{"subjectId": "a", "grade": "A+"}]}]}]}`

	snap, report := NewMigrator(nil).MigrateWithReport([]byte(in))

	if report.Anomalies == 0 {
		t.Error("应记录异常字段")
	}
	if len(snap.Subjects) != 0 {
		t.Errorf("非数组科目应回落为空，实际=%d", len(snap.Subjects))
	}
	if len(snap.Courses) != 1 {
		t.Fatalf("应忽略非对象课程，实际=%d", len(snap.Courses))
	}
	ss := snap.ClassGroups[0].Students[0].Evaluations.T1.Subjects[0]
	if ss.Grade != model.DefaultGrade {
		t.Errorf("未知成绩应回落为默认值，实际=%s", ss.Grade)
	}
}

func TestMigrate_MissingTermFilledFromStructure(t *testing.T) {
	in := `{"classGroups":[{"id":"g","students":[{"id":"s","evaluations":{
	  "1":{"personalAspects":{"notes":"x","report":""},"generalComment":{"notes":"","report":""},
	       "subjects":[{"subjectId":"a","grade":"Assoliment Notable","comment":{"notes":"n","report":""}}]}}}]}]}`

	snap, report := NewMigrator(nil).MigrateWithReport([]byte(in))
	if report.MissingTerms != 3 {
		t.Errorf("期望补齐 3 个评估期，实际=%d", report.MissingTerms)
	}
	st := snap.ClassGroups[0].Students[0]
	final := st.Evaluations.Final
	if len(final.Subjects) != 1 || final.Subjects[0].SubjectID != "a" || final.Subjects[0].Grade != model.DefaultGrade {
		t.Errorf("缺失评估期应复制科目结构并重置内容，实际=%+v", final.Subjects)
	}
	if st.Evaluations.T1.PersonalAspects.Notes != "x" {
		t.Error("已有评估期内容不应改变")
	}
}
