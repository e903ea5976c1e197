package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"memonotes/internal/curriculum"
	"memonotes/internal/model"
	"memonotes/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoStudents   = errors.New("教学班中没有学生")
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

// EmptyReportText 评语正文为空时的占位文本
const EmptyReportText = "Sense comentaris."

// ExportService 导出业务接口
//
// 设计说明：
//   - Excel：每个学生一行，每个课程科目一组「成绩 / 评语」列
//   - HTML：面向家长的报告，每个学生单独分页，可直接打印
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	ExportExcel(ctx context.Context, ownerID, classGroupID string, term model.TermID) (*bytes.Buffer, string, error)
	ExportHTML(ctx context.Context, ownerID, classGroupID string, term model.TermID) (*bytes.Buffer, string, error)
}

type exportService struct {
	store  *workspaceStore
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{store: newWorkspaceStore(repo, logger), logger: logger}
}

// exportView 导出所需的已解析数据
type exportView struct {
	GroupName string
	Term      model.TermID
	Subjects  []model.Subject // 按课程科目顺序
	Students  []model.Student
}

func (s *exportService) view(ctx context.Context, ownerID, classGroupID string, term model.TermID) (*exportView, error) {
	if !term.Valid() {
		return nil, curriculum.ErrInvalidTerm
	}
	ws, err := s.store.load(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	group := ws.snap.FindClassGroup(classGroupID)
	if group == nil {
		return nil, curriculum.ErrClassGroupNotFound
	}
	if len(group.Students) == 0 {
		return nil, ErrExportNoStudents
	}

	v := &exportView{GroupName: group.Name, Term: term, Students: group.Students}
	if course := ws.snap.FindCourse(group.CourseID); course != nil {
		for _, cs := range course.Subjects {
			v.Subjects = append(v.Subjects, model.Subject{ID: cs.SubjectID, Name: ws.snap.SubjectName(cs.SubjectID)})
		}
	}
	return v, nil
}

func orEmptyText(s string) string {
	if strings.TrimSpace(s) == "" {
		return EmptyReportText
	}
	return s
}

var unsafeFilenameChars = regexp.MustCompile(`[^\p{L}\p{N}_-]+`)

func exportFilename(groupName string, term model.TermID, ext string) string {
	name := strings.Trim(unsafeFilenameChars.ReplaceAllString(groupName, "_"), "_")
	if name == "" {
		name = "grup"
	}
	return fmt.Sprintf("informes_%s_%s.%s", name, term, ext)
}

// ═══════════════════════════════════════════════════════════
// ExportExcel 导出评价汇总为 Excel
// ═══════════════════════════════════════════════════════════
//
// 表头：| Alumne/a | Aspectes Personals | <科目> Nota | <科目> Comentari | ... | Comentari General |

func (s *exportService) ExportExcel(ctx context.Context, ownerID, classGroupID string, term model.TermID) (*bytes.Buffer, string, error) {
	v, err := s.view(ctx, ownerID, classGroupID, term)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := term.Label()
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headers := []string{"Alumne/a", "Aspectes Personals"}
	for _, sub := range v.Subjects {
		headers = append(headers, sub.Name+" · Nota", sub.Name+" · Comentari")
	}
	headers = append(headers, "Comentari General")

	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheetName, cell, h)
	}

	for i, st := range v.Students {
		ev := st.Evaluations.Get(term)
		row := []string{st.Name, orEmptyText(ev.PersonalAspects.Report)}
		for _, sub := range v.Subjects {
			ss := ev.FindSubject(sub.ID)
			if ss == nil {
				row = append(row, "", "")
				continue
			}
			row = append(row, string(ss.Grade), orEmptyText(ss.Comment.Report))
		}
		row = append(row, orEmptyText(ev.GeneralComment.Report))

		for col, val := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			f.SetCellValue(sheetName, cell, val)
		}
	}

	// ── 样式 ──
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})
	bodyStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
	})

	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	f.SetCellStyle(sheetName, "A1", lastCol+"1", headerStyle)
	f.SetCellStyle(sheetName, "A2", fmt.Sprintf("%s%d", lastCol, len(v.Students)+1), bodyStyle)
	f.SetColWidth(sheetName, "A", "A", 28)
	f.SetColWidth(sheetName, "B", lastCol, 45)
	f.SetPanes(sheetName, &excelize.Panes{Freeze: true, XSplit: 1, YSplit: 1, TopLeftCell: "B2", ActivePane: "bottomRight"})

	buf, err := f.WriteToBuffer()
	if err != nil {
		s.logger.Error("生成 Excel 失败", zap.String("class_group_id", classGroupID), zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	return buf, exportFilename(v.GroupName, term, "xlsx"), nil
}

// ═══════════════════════════════════════════════════════════
// ExportHTML 导出面向家长的 HTML 报告
// ═══════════════════════════════════════════════════════════

var reportHTML = template.Must(template.New("report").Funcs(template.FuncMap{
	"para": func(s string) template.HTML {
		escaped := template.HTMLEscapeString(orEmptyText(s))
		return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))
	},
	"upper": strings.ToUpper,
}).Parse(`<!DOCTYPE html>
<html lang="ca">
<head><meta charset="utf-8"><title>Informes: {{.GroupName}}</title></head>
<body>
<h2>Informes: {{.GroupName}} (Trimestre {{upper (printf "%s" .Term)}})</h2>
{{- range $i, $st := .Students}}
<div{{if $i}} style="page-break-before: always;"{{end}}>
<h1>{{$st.Name}}</h1>
{{- with index $.Evaluations $i}}
<p><strong>Aspectes Personals i Evolutius</strong></p>
<p>{{para .PersonalAspects.Report}}</p>
<br /><p><strong>Valoració de les Assignatures</strong></p>
{{- range .Subjects}}
<br /><p><strong>{{.Name}}</strong></p>
<p><strong>NOTA:</strong> {{.Grade}}</p>
<p><strong>COMENTARI:</strong><br>{{para .Report}}</p>
{{- end}}
<br /><p><strong>Comentari General</strong></p>
<p>{{para .GeneralComment.Report}}</p>
{{- end}}
</div>
{{- end}}
</body>
</html>
`))

type htmlSubject struct {
	Name   string
	Grade  model.Grade
	Report string
}

type htmlEvaluation struct {
	PersonalAspects model.NarrativeField
	GeneralComment  model.NarrativeField
	Subjects        []htmlSubject
}

func (s *exportService) ExportHTML(ctx context.Context, ownerID, classGroupID string, term model.TermID) (*bytes.Buffer, string, error) {
	v, err := s.view(ctx, ownerID, classGroupID, term)
	if err != nil {
		return nil, "", err
	}

	evaluations := make([]htmlEvaluation, len(v.Students))
	for i, st := range v.Students {
		ev := st.Evaluations.Get(term)
		he := htmlEvaluation{PersonalAspects: ev.PersonalAspects, GeneralComment: ev.GeneralComment}
		// 只列出学生实际拥有记录的课程科目
		for _, sub := range v.Subjects {
			if ss := ev.FindSubject(sub.ID); ss != nil {
				he.Subjects = append(he.Subjects, htmlSubject{Name: sub.Name, Grade: ss.Grade, Report: ss.Comment.Report})
			}
		}
		evaluations[i] = he
	}

	var buf bytes.Buffer
	err = reportHTML.Execute(&buf, struct {
		*exportView
		Evaluations []htmlEvaluation
	}{v, evaluations})
	if err != nil {
		s.logger.Error("生成 HTML 失败", zap.String("class_group_id", classGroupID), zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	return &buf, exportFilename(v.GroupName, term, "html"), nil
}
