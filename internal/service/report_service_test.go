package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"memonotes/internal/dto"
	"memonotes/internal/generation"
	"memonotes/internal/model"
)

// ── 测试辅助 ──

func setupTestReportService(gen generation.Generator, locker Locker) (ReportService, WorkspaceService, *mockWorkspaceRepo) {
	wsRepo := newMockWorkspaceRepo()
	repo := newTestRepository(wsRepo)
	logger := zap.NewNop()
	orch := generation.NewOrchestrator(gen, logger, generation.WithConcurrency(2))
	return NewReportService(repo, orch, locker, time.Minute, logger), NewWorkspaceService(repo, logger), wsRepo
}

// ── GenerateMissing 测试 ──

func TestReportService_GenerateMissing_Success(t *testing.T) {
	locker := newFakeLocker()
	svc, _, repo := setupTestReportService(&fakeGenerator{}, locker)
	repo.put(t, testOwner, newTestSnapshot())

	resp, err := svc.GenerateMissing(context.Background(), testOwner, "g-1", model.Term1)
	if err != nil {
		t.Fatalf("GenerateMissing 应成功: %v", err)
	}
	if resp.Summary.Generated != 1 || resp.Summary.Skipped != 1 {
		t.Errorf("期望 1 个学生生成、1 个跳过，实际 generated=%d skipped=%d",
			resp.Summary.Generated, resp.Summary.Skipped)
	}
	if resp.Merged != 3 || resp.Discarded != 0 {
		t.Errorf("期望写入 3 个字段，实际 merged=%d discarded=%d", resp.Merged, resp.Discarded)
	}

	stored, version := repo.stored(t, testOwner)
	if version != 2 {
		t.Errorf("期望 version=2，实际=%d", version)
	}
	ev := stored.ClassGroups[0].Students[0].Evaluations.T1
	if ev.Subjects[0].Comment.Report != "[subject MARC MATEMÀTIQUES]" {
		t.Errorf("科目评语未写入: %q", ev.Subjects[0].Comment.Report)
	}
	if ev.GeneralComment.Report != "[general MARC]" {
		t.Errorf("总评未写入: %q", ev.GeneralComment.Report)
	}
	if locker.released != 1 {
		t.Errorf("批量结束后应释放锁，实际释放次数=%d", locker.released)
	}
}

func TestReportService_GenerateMissing_ConcurrentEditWins(t *testing.T) {
	var (
		once   sync.Once
		wsSvc  WorkspaceService
		ctx    = context.Background()
		manual = "escrit pel mestre"
	)
	gen := &fakeGenerator{}
	// 生成进行中，教师手工填写了 MARC 的个人方面
	gen.before = func(fc generation.FieldContext) {
		once.Do(func() {
			_, err := wsSvc.UpdateEvaluation(ctx, testOwner, "g-1", "s-1", model.Term1, &dto.UpdateEvaluationRequest{
				Kind:   string(model.FieldPersonalAspects),
				Report: &manual,
			})
			if err != nil {
				t.Errorf("并发编辑失败: %v", err)
			}
		})
	}

	svc, ws, repo := setupTestReportService(gen, nil)
	wsSvc = ws
	repo.put(t, testOwner, newTestSnapshot())

	resp, err := svc.GenerateMissing(ctx, testOwner, "g-1", model.Term1)
	if err != nil {
		t.Fatalf("GenerateMissing 应成功: %v", err)
	}
	if resp.Discarded != 1 || resp.Merged != 2 {
		t.Errorf("期望丢弃 1 个、写入 2 个，实际 merged=%d discarded=%d", resp.Merged, resp.Discarded)
	}

	stored, _ := repo.stored(t, testOwner)
	if got := stored.ClassGroups[0].Students[0].Evaluations.T1.PersonalAspects.Report; got != manual {
		t.Errorf("人工填写的内容应保留，实际=%q", got)
	}
}

func TestReportService_GenerateMissing_Unavailable(t *testing.T) {
	gen := &fakeGenerator{available: errors.New("no key")}
	svc, _, repo := setupTestReportService(gen, nil)
	repo.put(t, testOwner, newTestSnapshot())

	_, err := svc.GenerateMissing(context.Background(), testOwner, "g-1", model.Term1)
	if !errors.Is(err, ErrGenerationUnavailable) {
		t.Errorf("期望 ErrGenerationUnavailable，实际: %v", err)
	}
	if gen.calls != 0 {
		t.Errorf("服务不可用时不应发出请求，实际=%d", gen.calls)
	}
	if repo.saves != 0 {
		t.Error("服务不可用时不应保存")
	}
}

func TestReportService_GenerateMissing_UnknownGroup(t *testing.T) {
	svc, _, repo := setupTestReportService(&fakeGenerator{}, nil)
	repo.put(t, testOwner, newTestSnapshot())

	_, err := svc.GenerateMissing(context.Background(), testOwner, "missing", model.Term1)
	if !errors.Is(err, generation.ErrClassGroupNotFound) {
		t.Errorf("期望 ErrClassGroupNotFound，实际: %v", err)
	}
}

func TestReportService_GenerateMissing_LockHeldElsewhere(t *testing.T) {
	locker := newFakeLocker()
	locker.held["batch:"+testOwner+":g-1"] = "other-instance"
	gen := &fakeGenerator{}
	svc, _, repo := setupTestReportService(gen, locker)
	repo.put(t, testOwner, newTestSnapshot())

	_, err := svc.GenerateMissing(context.Background(), testOwner, "g-1", model.Term1)
	if !errors.Is(err, ErrBatchInProgress) {
		t.Errorf("期望 ErrBatchInProgress，实际: %v", err)
	}
	if gen.calls != 0 {
		t.Errorf("未获得锁时不应发出请求，实际=%d", gen.calls)
	}
}

func TestReportService_GenerateMissing_LockerErrorDegrades(t *testing.T) {
	locker := newFakeLocker()
	locker.err = errors.New("redis down")
	svc, _, repo := setupTestReportService(&fakeGenerator{}, locker)
	repo.put(t, testOwner, newTestSnapshot())

	if _, err := svc.GenerateMissing(context.Background(), testOwner, "g-1", model.Term1); err != nil {
		t.Errorf("Redis 故障时应降级继续，实际: %v", err)
	}
}

func TestReportService_GenerateMissing_SameGroupRejectedInProcess(t *testing.T) {
	entered := make(chan struct{})
	unblock := make(chan struct{})
	var once sync.Once
	gen := &fakeGenerator{before: func(generation.FieldContext) {
		once.Do(func() { close(entered) })
		<-unblock
	}}
	svc, _, repo := setupTestReportService(gen, nil)
	repo.put(t, testOwner, newTestSnapshot())

	done := make(chan error, 1)
	go func() {
		_, err := svc.GenerateMissing(context.Background(), testOwner, "g-1", model.Term1)
		done <- err
	}()

	<-entered
	_, err := svc.GenerateMissing(context.Background(), testOwner, "g-1", model.Term1)
	if !errors.Is(err, ErrBatchInProgress) {
		t.Errorf("同一教学班并发批量期望 ErrBatchInProgress，实际: %v", err)
	}

	close(unblock)
	if err := <-done; err != nil {
		t.Errorf("第一个批量应成功: %v", err)
	}

	// 锁释放后可以再次执行
	if _, err := svc.GenerateMissing(context.Background(), testOwner, "g-1", model.Term1); err != nil {
		t.Errorf("锁释放后应可再次执行: %v", err)
	}
}

// ── Regenerate 测试 ──

func TestReportService_Regenerate_Overwrites(t *testing.T) {
	svc, _, repo := setupTestReportService(&fakeGenerator{}, nil)
	snap := newTestSnapshot()
	snap.ClassGroups[0].Students[0].Evaluations.T1.PersonalAspects.Report = "antic"
	repo.put(t, testOwner, snap)

	resp, err := svc.Regenerate(context.Background(), testOwner, "g-1", &dto.RegenerateRequest{
		Term:      "1",
		StudentID: "s-1",
		Kind:      string(model.FieldPersonalAspects),
	})
	if err != nil {
		t.Fatalf("Regenerate 应成功: %v", err)
	}
	if resp.Report != "[personal MARC]" {
		t.Errorf("期望新正文，实际=%q", resp.Report)
	}

	stored, _ := repo.stored(t, testOwner)
	if got := stored.ClassGroups[0].Students[0].Evaluations.T1.PersonalAspects.Report; got != "[personal MARC]" {
		t.Errorf("显式重新生成应覆盖已有正文，实际=%q", got)
	}
}

func TestReportService_Regenerate_UnknownField(t *testing.T) {
	svc, _, repo := setupTestReportService(&fakeGenerator{}, nil)
	repo.put(t, testOwner, newTestSnapshot())

	_, err := svc.Regenerate(context.Background(), testOwner, "g-1", &dto.RegenerateRequest{
		Term:      "1",
		StudentID: "s-1",
		Kind:      string(model.FieldSubjectComment),
		SubjectID: "missing",
	})
	if !errors.Is(err, generation.ErrFieldNotFound) {
		t.Errorf("期望 ErrFieldNotFound，实际: %v", err)
	}
}
