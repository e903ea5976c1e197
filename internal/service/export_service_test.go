package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"memonotes/internal/curriculum"
	"memonotes/internal/model"
)

func setupTestExportService(t *testing.T) (ExportService, *mockWorkspaceRepo) {
	t.Helper()
	wsRepo := newMockWorkspaceRepo()
	snap := newTestSnapshot()
	ev := &snap.ClassGroups[0].Students[0].Evaluations.T1
	ev.Subjects[0].Grade = model.GradeNotable
	ev.Subjects[0].Comment.Report = "Bon treball.\nContinua així."
	ev.GeneralComment.Report = "<b>Molt bé</b>"
	wsRepo.put(t, testOwner, snap)
	return NewExportService(newTestRepository(wsRepo), zap.NewNop()), wsRepo
}

func TestExportService_ExportExcel(t *testing.T) {
	svc, _ := setupTestExportService(t)

	buf, filename, err := svc.ExportExcel(context.Background(), testOwner, "g-1", model.Term1)
	if err != nil {
		t.Fatalf("ExportExcel 应成功: %v", err)
	}
	if filename != "informes_Grup_A_1.xlsx" {
		t.Errorf("文件名不正确: %s", filename)
	}

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("生成的文件应可被解析: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("1r Trimestre")
	if err != nil {
		t.Fatalf("读取工作表失败: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("期望表头 + 2 个学生，实际 %d 行", len(rows))
	}
	wantHeader := []string{"Alumne/a", "Aspectes Personals", "MATEMÀTIQUES · Nota", "MATEMÀTIQUES · Comentari", "Comentari General"}
	for i, h := range wantHeader {
		if rows[0][i] != h {
			t.Errorf("表头第 %d 列期望 %q，实际 %q", i+1, h, rows[0][i])
		}
	}
	marc := rows[1]
	if marc[0] != "MARC" || marc[2] != string(model.GradeNotable) {
		t.Errorf("学生行不正确: %v", marc)
	}
	if marc[1] != EmptyReportText {
		t.Errorf("空正文应导出为占位文本，实际=%q", marc[1])
	}
}

func TestExportService_ExportHTML(t *testing.T) {
	svc, _ := setupTestExportService(t)

	buf, filename, err := svc.ExportHTML(context.Background(), testOwner, "g-1", model.Term1)
	if err != nil {
		t.Fatalf("ExportHTML 应成功: %v", err)
	}
	if !strings.HasSuffix(filename, ".html") {
		t.Errorf("文件名应以 .html 结尾: %s", filename)
	}

	html := buf.String()
	if n := strings.Count(html, "page-break-before: always"); n != 1 {
		t.Errorf("两个学生之间应有 1 个分页，实际=%d", n)
	}
	for _, want := range []string{
		"Informes: Grup A (Trimestre 1)",
		"Bon treball.<br>Continua així.",
		"&lt;b&gt;Molt bé&lt;/b&gt;",
		"<strong>NOTA:</strong> Assoliment Notable",
		EmptyReportText,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("HTML 缺少 %q", want)
		}
	}
	if strings.Contains(html, "<b>Molt bé</b>") {
		t.Error("评语正文必须转义")
	}
}

func TestExportService_Errors(t *testing.T) {
	svc, repo := setupTestExportService(t)
	ctx := context.Background()

	if _, _, err := svc.ExportExcel(ctx, testOwner, "missing", model.Term1); !errors.Is(err, curriculum.ErrClassGroupNotFound) {
		t.Errorf("期望 ErrClassGroupNotFound，实际: %v", err)
	}
	if _, _, err := svc.ExportHTML(ctx, testOwner, "g-1", model.TermID("4")); !errors.Is(err, curriculum.ErrInvalidTerm) {
		t.Errorf("期望 ErrInvalidTerm，实际: %v", err)
	}

	snap := newTestSnapshot()
	snap.ClassGroups[0].Students = nil
	repo.put(t, testOwner, snap)
	if _, _, err := svc.ExportExcel(ctx, testOwner, "g-1", model.Term1); !errors.Is(err, ErrExportNoStudents) {
		t.Errorf("期望 ErrExportNoStudents，实际: %v", err)
	}
}
