package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"memonotes/internal/dto"
	"memonotes/internal/generation"
	"memonotes/internal/model"
	"memonotes/internal/repository"
)

// ── 评语生成业务错误 ──

var (
	ErrBatchInProgress       = errors.New("该教学班正在批量生成评语，请稍后再试")
	ErrGenerationUnavailable = errors.New("评语生成服务不可用")
)

const defaultBatchLockTTL = 10 * time.Minute

// Locker 跨进程互斥锁（Redis 实现见 pkg/redis）
type Locker interface {
	AcquireLock(ctx context.Context, name string, ttl time.Duration) (token string, ok bool, err error)
	ReleaseLock(ctx context.Context, name, token string) error
}

// ReportService 评语生成业务接口
//
// 生成期间教师可能继续编辑同一工作区：生成结果合并到保存时的最新快照，
// 只写入仍为空的评语正文，人工填写的内容优先。
type ReportService interface {
	// GenerateMissing 为教学班在指定评估期补全缺失评语
	GenerateMissing(ctx context.Context, ownerID, classGroupID string, term model.TermID) (*dto.GenerationResponse, error)
	// Regenerate 重新生成单个字段，覆盖已有正文
	Regenerate(ctx context.Context, ownerID, classGroupID string, req *dto.RegenerateRequest) (*dto.RegenerateResponse, error)
}

type reportService struct {
	store   *workspaceStore
	orch    *generation.Orchestrator
	locker  Locker
	lockTTL time.Duration
	logger  *zap.Logger

	mu      sync.Mutex
	running map[string]struct{}
}

// NewReportService 创建 ReportService 实例
// locker 为 nil 时仅在进程内互斥
func NewReportService(repo *repository.Repository, orch *generation.Orchestrator, locker Locker, lockTTL time.Duration, logger *zap.Logger) ReportService {
	if lockTTL <= 0 {
		lockTTL = defaultBatchLockTTL
	}
	return &reportService{
		store:   newWorkspaceStore(repo, logger),
		orch:    orch,
		locker:  locker,
		lockTTL: lockTTL,
		logger:  logger,
		running: make(map[string]struct{}),
	}
}

// ────────────────────── GenerateMissing ──────────────────────

func (s *reportService) GenerateMissing(ctx context.Context, ownerID, classGroupID string, term model.TermID) (*dto.GenerationResponse, error) {
	if err := validateOwnerID(ownerID); err != nil {
		return nil, err
	}

	release, err := s.lock(ctx, "batch:"+ownerID+":"+classGroupID)
	if err != nil {
		return nil, err
	}
	defer release()

	ws, err := s.store.load(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	result, err := s.orch.Run(ctx, ws.snap, classGroupID, term)
	if err != nil {
		return nil, mapGenerationError(err)
	}

	var merged, discarded int
	saved, err := s.store.mutate(ctx, ownerID, func(latest *model.AppSnapshot) error {
		merged, discarded = mergeGenerated(latest, classGroupID, term, result.Produced)
		return nil
	})
	if err != nil {
		s.logger.Error("保存生成结果失败",
			zap.String("owner_id", ownerID),
			zap.String("class_group_id", classGroupID),
			zap.Error(err),
		)
		return nil, err
	}

	if discarded > 0 {
		s.logger.Info("部分生成结果因并发编辑被丢弃",
			zap.String("owner_id", ownerID),
			zap.String("class_group_id", classGroupID),
			zap.Int("discarded", discarded),
		)
	}

	return &dto.GenerationResponse{
		Summary:           result.Summary,
		Merged:            merged,
		Discarded:         discarded,
		WorkspaceResponse: *toWorkspaceResponse(saved),
	}, nil
}

// mergeGenerated 将生成结果写入最新快照中仍为空的字段，返回写入数与丢弃数
func mergeGenerated(latest *model.AppSnapshot, classGroupID string, term model.TermID, produced []generation.GeneratedField) (merged, discarded int) {
	group := latest.FindClassGroup(classGroupID)
	for _, p := range produced {
		field := findField(group, term, p.Field)
		if field == nil || field.Report != "" {
			discarded++
			continue
		}
		field.Report = p.Report
		merged++
	}
	return merged, discarded
}

func findField(group *model.ClassGroup, term model.TermID, ref model.FieldRef) *model.NarrativeField {
	if group == nil {
		return nil
	}
	st := group.FindStudent(ref.StudentID)
	if st == nil {
		return nil
	}
	ev := st.Evaluations.Get(term)
	if ev == nil {
		return nil
	}
	return ev.Narrative(ref.Kind, ref.SubjectID)
}

// ────────────────────── Regenerate ──────────────────────

func (s *reportService) Regenerate(ctx context.Context, ownerID, classGroupID string, req *dto.RegenerateRequest) (*dto.RegenerateResponse, error) {
	term := model.TermID(req.Term)
	ref := model.FieldRef{
		StudentID: req.StudentID,
		Kind:      model.FieldKind(req.Kind),
		SubjectID: req.SubjectID,
	}

	ws, err := s.store.load(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	_, text, err := s.orch.RegenerateField(ctx, ws.snap, classGroupID, term, ref)
	if err != nil {
		return nil, mapGenerationError(err)
	}

	saved, err := s.store.mutate(ctx, ownerID, func(latest *model.AppSnapshot) error {
		group := latest.FindClassGroup(classGroupID)
		if group == nil {
			return generation.ErrClassGroupNotFound
		}
		field := findField(group, term, ref)
		if field == nil {
			return generation.ErrFieldNotFound
		}
		field.Report = text
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &dto.RegenerateResponse{
		Field:             ref,
		Report:            text,
		WorkspaceResponse: *toWorkspaceResponse(saved),
	}, nil
}

// ── 内部方法 ──

func mapGenerationError(err error) error {
	if errors.Is(err, generation.ErrServiceUnavailable) {
		return ErrGenerationUnavailable
	}
	return err
}

// lock 获取批量生成锁：进程内互斥 + Redis 跨实例互斥（Redis 故障时降级为仅进程内）
func (s *reportService) lock(ctx context.Context, name string) (func(), error) {
	s.mu.Lock()
	if _, busy := s.running[name]; busy {
		s.mu.Unlock()
		return nil, ErrBatchInProgress
	}
	s.running[name] = struct{}{}
	s.mu.Unlock()

	unlockLocal := func() {
		s.mu.Lock()
		delete(s.running, name)
		s.mu.Unlock()
	}

	if s.locker == nil {
		return unlockLocal, nil
	}

	token, ok, err := s.locker.AcquireLock(ctx, name, s.lockTTL)
	if err != nil {
		s.logger.Warn("获取分布式锁失败，降级为进程内互斥", zap.String("lock", name), zap.Error(err))
		return unlockLocal, nil
	}
	if !ok {
		unlockLocal()
		return nil, ErrBatchInProgress
	}

	return func() {
		// 请求 ctx 可能已取消，释放锁使用独立的短超时
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.locker.ReleaseLock(releaseCtx, name, token); err != nil {
			s.logger.Warn("释放分布式锁失败", zap.String("lock", name), zap.Error(err))
		}
		unlockLocal()
	}, nil
}
