package generation

import "memonotes/internal/model"

// task 一次待发出的生成请求
type task struct {
	ref         model.FieldRef
	studentName string
	fc          FieldContext
}

// planStats 规划阶段对未生成字段的统计
type planStats struct {
	skipped   int
	preserved int
}

// planIndependent 第一阶段：有笔记但正文为空的科目评语与个人方面
func planIndependent(cr *classroom, g *model.ClassGroup, stats *planStats) []task {
	var tasks []task
	for si := range g.Students {
		st := &g.Students[si]
		ev := st.Evaluations.Get(cr.term)

		for _, ss := range ev.Subjects {
			ref := model.FieldRef{StudentID: st.ID, Kind: model.FieldSubjectComment, SubjectID: ss.SubjectID}
			if !needsNotesDriven(ss.Comment, stats) {
				continue
			}
			tasks = append(tasks, task{ref: ref, studentName: st.Name, fc: cr.build(st, ref)})
		}

		ref := model.FieldRef{StudentID: st.ID, Kind: model.FieldPersonalAspects}
		if needsNotesDriven(ev.PersonalAspects, stats) {
			tasks = append(tasks, task{ref: ref, studentName: st.Name, fc: cr.build(st, ref)})
		}
	}
	return tasks
}

// planDependent 第二阶段：总评。必须在第一阶段结算后调用，上下文读取的是最新的个人方面正文
func planDependent(cr *classroom, g *model.ClassGroup, stats *planStats) []task {
	var tasks []task
	for si := range g.Students {
		st := &g.Students[si]
		ev := st.Evaluations.Get(cr.term)

		if ev.GeneralComment.Report != "" {
			stats.preserved++
			continue
		}
		if !hasMaterial(ev) {
			stats.skipped++
			continue
		}
		ref := model.FieldRef{StudentID: st.ID, Kind: model.FieldGeneralComment}
		tasks = append(tasks, task{ref: ref, studentName: st.Name, fc: cr.build(st, ref)})
	}
	return tasks
}

// needsNotesDriven 正文为空且有笔记时需要生成；已有正文的字段永不自动覆盖
func needsNotesDriven(f model.NarrativeField, stats *planStats) bool {
	switch {
	case f.Report != "":
		stats.preserved++
		return false
	case f.Notes == "":
		stats.skipped++
		return false
	}
	return true
}

// hasMaterial 总评允许在没有笔记时由其他数据汇总生成，但完全没有素材时跳过
func hasMaterial(ev *model.EvaluationData) bool {
	if ev.GeneralComment.Notes != "" || ev.PersonalAspects.Notes != "" {
		return true
	}
	for _, ss := range ev.Subjects {
		if ss.Comment.Notes != "" || ss.Grade != model.DefaultGrade {
			return true
		}
	}
	return false
}
