package generation

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"memonotes/internal/model"
)

// DefaultConcurrency 同时在途的生成请求上限
const DefaultConcurrency = 8

// Orchestrator 批量生成编排器
type Orchestrator struct {
	gen         Generator
	logger      *zap.Logger
	concurrency int
}

// Option 编排器选项
type Option func(*Orchestrator)

// WithConcurrency 设置同时在途请求数，<=0 时使用默认值
func WithConcurrency(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// NewOrchestrator 创建 Orchestrator；gen 为 nil 时所有批量都以 ErrServiceUnavailable 失败
func NewOrchestrator(gen Generator, logger *zap.Logger, opts ...Option) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	o := &Orchestrator{gen: gen, logger: logger, concurrency: DefaultConcurrency}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// outcome 单个请求的结果，按任务下标写入，互不共享
type outcome struct {
	text string
	err  error
}

// ═══════════════════════════════════════════════════════════
// Run 为教学班在指定评估期补全缺失评语
// ═══════════════════════════════════════════════════════════
//
// 流程：
//   1. 校验参数、检查服务可用性（不可用则不发出任何请求）
//   2. 深拷贝快照，之后只在副本上工作
//   3. 第一阶段：科目评语 + 个人方面，全部结算后写入副本
//   4. 第二阶段：基于副本重新规划总评并生成，写入副本
//   5. 返回副本；ctx 取消时丢弃副本并返回错误

func (o *Orchestrator) Run(ctx context.Context, snap *model.AppSnapshot, classGroupID string, term model.TermID) (*Result, error) {
	state := StateIdle
	log := o.logger.With(zap.String("class_group_id", classGroupID), zap.String("term", string(term)))
	transition := func(next BatchState) {
		log.Debug("批量生成状态变更", zap.String("from", string(state)), zap.String("to", string(next)))
		state = next
	}

	transition(StatePlanning)
	if !term.Valid() {
		transition(StateFailed)
		return nil, ErrInvalidTerm
	}
	if snap == nil || snap.FindClassGroup(classGroupID) == nil {
		transition(StateFailed)
		return nil, ErrClassGroupNotFound
	}
	if err := o.available(ctx); err != nil {
		transition(StateFailed)
		log.Warn("生成服务不可用，批量终止", zap.Error(err))
		return nil, err
	}

	work := snap.Clone()
	group := work.FindClassGroup(classGroupID)
	cr := &classroom{snap: work, course: work.FindCourse(group.CourseID), term: term}

	result := &Result{Snapshot: work}
	result.Summary.ClassGroupID = classGroupID
	result.Summary.Term = term
	stats := &planStats{}

	// ── 第一阶段 ──
	transition(StateGeneratingIndependent)
	independent := planIndependent(cr, group, stats)
	log.Info("第一阶段开始", zap.Int("requests", len(independent)))
	outcomes := o.execute(ctx, independent)
	if err := ctx.Err(); err != nil {
		transition(StateFailed)
		return nil, err
	}
	o.apply(cr, group, independent, outcomes, result)

	// ── 第二阶段 ──
	transition(StateGeneratingDependent)
	dependent := planDependent(cr, group, stats)
	log.Info("第二阶段开始", zap.Int("requests", len(dependent)))
	outcomes = o.execute(ctx, dependent)
	if err := ctx.Err(); err != nil {
		transition(StateFailed)
		return nil, err
	}
	o.apply(cr, group, dependent, outcomes, result)

	result.Summary.Fields.Skipped = stats.skipped
	result.Summary.Fields.Preserved = stats.preserved
	result.Summary.finalize(group, result.Produced)

	transition(StateMerged)
	result.State = state
	log.Info("批量生成完成",
		zap.Int("fields_generated", result.Summary.Fields.Generated),
		zap.Int("fields_failed", result.Summary.Fields.Failed),
		zap.Int("fields_skipped", result.Summary.Fields.Skipped),
	)
	return result, nil
}

// ═══════════════════════════════════════════════════════════
// RegenerateField 显式重新生成单个字段（允许覆盖已有正文）
// ═══════════════════════════════════════════════════════════

func (o *Orchestrator) RegenerateField(ctx context.Context, snap *model.AppSnapshot, classGroupID string, term model.TermID, ref model.FieldRef) (*model.AppSnapshot, string, error) {
	if !term.Valid() {
		return nil, "", ErrInvalidTerm
	}
	if snap == nil || snap.FindClassGroup(classGroupID) == nil {
		return nil, "", ErrClassGroupNotFound
	}
	if err := o.available(ctx); err != nil {
		return nil, "", err
	}

	work := snap.Clone()
	group := work.FindClassGroup(classGroupID)
	st := group.FindStudent(ref.StudentID)
	if st == nil {
		return nil, "", ErrStudentNotFound
	}
	field := st.Evaluations.Get(term).Narrative(ref.Kind, ref.SubjectID)
	if field == nil {
		return nil, "", ErrFieldNotFound
	}

	cr := &classroom{snap: work, course: work.FindCourse(group.CourseID), term: term}
	out := o.execute(ctx, []task{{ref: ref, studentName: st.Name, fc: cr.build(st, ref)}})[0]
	if out.err != nil {
		return nil, "", &GenerationError{Field: ref, Err: out.err}
	}
	field.Report = out.text
	return work, out.text, nil
}

// ── 内部方法 ──

func (o *Orchestrator) available(ctx context.Context) error {
	if o.gen == nil {
		return ErrServiceUnavailable
	}
	if err := o.gen.Available(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	return nil
}

// execute 并发发出请求并等待全部结算；单个失败不影响其他请求
func (o *Orchestrator) execute(ctx context.Context, tasks []task) []outcome {
	out := make([]outcome, len(tasks))
	if len(tasks) == 0 {
		return out
	}

	var eg errgroup.Group
	eg.SetLimit(o.concurrency)
	for i := range tasks {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				out[i] = outcome{err: err}
				return nil
			}
			text, err := o.gen.Generate(ctx, tasks[i].fc)
			text = strings.TrimSpace(text)
			if err == nil && text == "" {
				err = ErrEmptyGeneration
			}
			out[i] = outcome{text: text, err: err}
			return nil
		})
	}
	_ = eg.Wait()
	return out
}

// apply 把一个阶段的结果写入副本；失败记录到汇总
func (o *Orchestrator) apply(cr *classroom, g *model.ClassGroup, tasks []task, outcomes []outcome, result *Result) {
	for i, t := range tasks {
		res := outcomes[i]
		if res.err != nil {
			genErr := &GenerationError{Field: t.ref, Err: res.err}
			result.Summary.Fields.Failed++
			result.Summary.Failures = append(result.Summary.Failures, FieldFailure{
				Field:       t.ref,
				StudentName: t.studentName,
				Message:     genErr.Error(),
				Err:         genErr,
			})
			o.logger.Warn("字段生成失败", zap.String("student_id", t.ref.StudentID),
				zap.String("kind", string(t.ref.Kind)), zap.String("subject_id", t.ref.SubjectID), zap.Error(res.err))
			continue
		}

		st := g.FindStudent(t.ref.StudentID)
		if st == nil {
			continue
		}
		field := st.Evaluations.Get(cr.term).Narrative(t.ref.Kind, t.ref.SubjectID)
		if field == nil || field.Report != "" {
			continue
		}
		field.Report = res.text
		result.Summary.Fields.Generated++
		result.Produced = append(result.Produced, GeneratedField{Field: t.ref, Report: res.text})
	}
}
