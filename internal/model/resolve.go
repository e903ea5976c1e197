package model

// ResolveWorkedContent 解析学生某科目在某评估期实际适用的内容大纲。
//
// 学生级覆盖只要存在（即使为空串）就原样返回，不回落到课程大纲；
// 否则返回课程大纲中该评估期的文本。页面展示与生成上下文都只走这里。
func ResolveWorkedContent(ss *StudentSubject, cs *CourseSubject, term TermID) string {
	if ss != nil && ss.CustomWorkedContent != nil {
		return *ss.CustomWorkedContent
	}
	if cs == nil {
		return ""
	}
	return cs.WorkedContent.Get(term)
}
