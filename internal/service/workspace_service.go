package service

import (
	"context"
	"errors"
	"io"

	"go.uber.org/zap"

	"memonotes/internal/curriculum"
	"memonotes/internal/dto"
	"memonotes/internal/model"
	"memonotes/internal/repository"
	pkgerrors "memonotes/pkg/errors"
)

// WorkspaceService 工作区业务接口
//
// 所有修改类操作都经过 Apply：读取最新快照 → 在副本上修改 → 乐观锁保存。
// 调用方只在保存成功后看到新快照。
type WorkspaceService interface {
	Load(ctx context.Context, ownerID string) (*dto.WorkspaceResponse, error)
	Import(ctx context.Context, ownerID string, raw []byte) (*dto.ImportResponse, error)
	Apply(ctx context.Context, ownerID string, mutation func(*model.AppSnapshot) error) (*dto.WorkspaceResponse, error)
	// Reset 删除工作区，下次 Load 时重新写入初始目录
	Reset(ctx context.Context, ownerID string) error

	CreateSubject(ctx context.Context, ownerID string, req *dto.NameRequest) (*dto.WorkspaceResponse, error)
	RenameSubject(ctx context.Context, ownerID, subjectID string, req *dto.NameRequest) (*dto.WorkspaceResponse, error)
	DeleteSubject(ctx context.Context, ownerID, subjectID string) (*dto.WorkspaceResponse, error)

	CreateCourse(ctx context.Context, ownerID string, req *dto.NameRequest) (*dto.WorkspaceResponse, error)
	RenameCourse(ctx context.Context, ownerID, courseID string, req *dto.NameRequest) (*dto.WorkspaceResponse, error)
	DeleteCourse(ctx context.Context, ownerID, courseID string) (*dto.WorkspaceResponse, error)
	AssignSubject(ctx context.Context, ownerID, courseID, subjectID string) (*dto.WorkspaceResponse, error)
	UnassignSubject(ctx context.Context, ownerID, courseID, subjectID string) (*dto.WorkspaceResponse, error)
	SetWorkedContent(ctx context.Context, ownerID, courseID, subjectID string, req *dto.WorkedContentRequest) (*dto.WorkspaceResponse, error)

	CreateClassGroup(ctx context.Context, ownerID string, req *dto.CreateClassGroupRequest) (*dto.WorkspaceResponse, error)
	UpdateClassGroup(ctx context.Context, ownerID, groupID string, req *dto.UpdateClassGroupRequest) (*dto.WorkspaceResponse, error)
	DeleteClassGroup(ctx context.Context, ownerID, groupID string) (*dto.WorkspaceResponse, error)

	AddStudents(ctx context.Context, ownerID, groupID string, req *dto.AddStudentsRequest) (*dto.WorkspaceResponse, error)
	ImportStudents(ctx context.Context, ownerID, groupID, filename string, r io.Reader) (*dto.ImportStudentsResponse, error)
	RenameStudent(ctx context.Context, ownerID, groupID, studentID string, req *dto.NameRequest) (*dto.WorkspaceResponse, error)
	DeleteStudent(ctx context.Context, ownerID, groupID, studentID string) (*dto.WorkspaceResponse, error)

	UpdateEvaluation(ctx context.Context, ownerID, groupID, studentID string, term model.TermID, req *dto.UpdateEvaluationRequest) (*dto.WorkspaceResponse, error)
	SetStyleExamples(ctx context.Context, ownerID string, req *dto.StyleExamplesRequest) (*dto.WorkspaceResponse, error)
}

type workspaceService struct {
	store  *workspaceStore
	logger *zap.Logger
}

// NewWorkspaceService 创建 WorkspaceService 实例
func NewWorkspaceService(repo *repository.Repository, logger *zap.Logger) WorkspaceService {
	return &workspaceService{store: newWorkspaceStore(repo, logger), logger: logger}
}

// ────────────────────── Load / Import ──────────────────────

func (s *workspaceService) Load(ctx context.Context, ownerID string) (*dto.WorkspaceResponse, error) {
	ws, err := s.store.load(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return toWorkspaceResponse(ws), nil
}

// Import 用一份（可能是旧格式的）快照整体替换工作区
func (s *workspaceService) Import(ctx context.Context, ownerID string, raw []byte) (*dto.ImportResponse, error) {
	if err := validateOwnerID(ownerID); err != nil {
		return nil, err
	}

	snap, report := s.store.migrator.MigrateWithReport(raw)
	repaired := curriculum.Repair(snap)

	for attempt := 1; ; attempt++ {
		row, err := s.repo().GetByOwner(ctx, ownerID)
		if errors.Is(err, pkgerrors.ErrNotFound) {
			row, err = &model.Workspace{OwnerID: ownerID}, nil
		}
		if err != nil {
			s.logger.Error("读取工作区失败", zap.String("owner_id", ownerID), zap.Error(err))
			return nil, err
		}

		err = s.store.save(ctx, row, snap)
		if err == nil {
			s.logger.Info("已导入工作区快照",
				zap.String("owner_id", ownerID),
				zap.Int("legacy_students", report.LegacyStudents),
				zap.Int("repaired", repaired),
			)
			return &dto.ImportResponse{
				WorkspaceResponse: *toWorkspaceResponse(&loadedWorkspace{row: row, snap: snap}),
				Migration:         dto.NewMigrationReport(report),
				Repaired:          repaired,
			}, nil
		}
		if !errors.Is(err, pkgerrors.ErrOptimisticLock) || attempt >= maxSaveAttempts {
			s.logger.Error("导入工作区失败", zap.String("owner_id", ownerID), zap.Error(err))
			return nil, err
		}
	}
}

func (s *workspaceService) Reset(ctx context.Context, ownerID string) error {
	if err := validateOwnerID(ownerID); err != nil {
		return err
	}
	if err := s.repo().Delete(ctx, ownerID); err != nil {
		s.logger.Error("删除工作区失败", zap.String("owner_id", ownerID), zap.Error(err))
		return err
	}
	s.logger.Info("已重置工作区", zap.String("owner_id", ownerID))
	return nil
}

func (s *workspaceService) repo() repository.WorkspaceRepository {
	return s.store.repo.Workspace
}

// ────────────────────── Apply ──────────────────────

func (s *workspaceService) Apply(ctx context.Context, ownerID string, mutation func(*model.AppSnapshot) error) (*dto.WorkspaceResponse, error) {
	ws, err := s.store.mutate(ctx, ownerID, mutation)
	if err != nil {
		return nil, err
	}
	return toWorkspaceResponse(ws), nil
}

// ────────────────────── 科目 ──────────────────────

func (s *workspaceService) CreateSubject(ctx context.Context, ownerID string, req *dto.NameRequest) (*dto.WorkspaceResponse, error) {
	return s.Apply(ctx, ownerID, func(snap *model.AppSnapshot) error {
		_, err := curriculum.AddSubject(snap, req.Name)
		return err
	})
}

func (s *workspaceService) RenameSubject(ctx context.Context, ownerID, subjectID string, req *dto.NameRequest) (*dto.WorkspaceResponse, error) {
	return s.Apply(ctx, ownerID, func(snap *model.AppSnapshot) error {
		return curriculum.RenameSubject(snap, subjectID, req.Name)
	})
}

func (s *workspaceService) DeleteSubject(ctx context.Context, ownerID, subjectID string) (*dto.WorkspaceResponse, error) {
	return s.Apply(ctx, ownerID, func(snap *model.AppSnapshot) error {
		return curriculum.DeleteSubject(snap, subjectID)
	})
}

// ────────────────────── 课程 ──────────────────────

func (s *workspaceService) CreateCourse(ctx context.Context, ownerID string, req *dto.NameRequest) (*dto.WorkspaceResponse, error) {
	return s.Apply(ctx, ownerID, func(snap *model.AppSnapshot) error {
		_, err := curriculum.AddCourse(snap, req.Name)
		return err
	})
}

func (s *workspaceService) RenameCourse(ctx context.Context, ownerID, courseID string, req *dto.NameRequest) (*dto.WorkspaceResponse, error) {
	return s.Apply(ctx, ownerID, func(snap *model.AppSnapshot) error {
		return curriculum.RenameCourse(snap, courseID, req.Name)
	})
}

func (s *workspaceService) DeleteCourse(ctx context.Context, ownerID, courseID string) (*dto.WorkspaceResponse, error) {
	return s.Apply(ctx, ownerID, func(snap *model.AppSnapshot) error {
		return curriculum.DeleteCourse(snap, courseID)
	})
}

func (s *workspaceService) AssignSubject(ctx context.Context, ownerID, courseID, subjectID string) (*dto.WorkspaceResponse, error) {
	return s.Apply(ctx, ownerID, func(snap *model.AppSnapshot) error {
		return curriculum.AssignSubjectToCourse(snap, courseID, subjectID)
	})
}

func (s *workspaceService) UnassignSubject(ctx context.Context, ownerID, courseID, subjectID string) (*dto.WorkspaceResponse, error) {
	return s.Apply(ctx, ownerID, func(snap *model.AppSnapshot) error {
		return curriculum.UnassignSubjectFromCourse(snap, courseID, subjectID)
	})
}

func (s *workspaceService) SetWorkedContent(ctx context.Context, ownerID, courseID, subjectID string, req *dto.WorkedContentRequest) (*dto.WorkspaceResponse, error) {
	return s.Apply(ctx, ownerID, func(snap *model.AppSnapshot) error {
		return curriculum.SetWorkedContent(snap, courseID, subjectID, model.TermID(req.Term), req.Text)
	})
}

// ────────────────────── 教学班 ──────────────────────

func (s *workspaceService) CreateClassGroup(ctx context.Context, ownerID string, req *dto.CreateClassGroupRequest) (*dto.WorkspaceResponse, error) {
	return s.Apply(ctx, ownerID, func(snap *model.AppSnapshot) error {
		_, err := curriculum.AddClassGroup(snap, req.CourseID, req.Name)
		return err
	})
}

func (s *workspaceService) UpdateClassGroup(ctx context.Context, ownerID, groupID string, req *dto.UpdateClassGroupRequest) (*dto.WorkspaceResponse, error) {
	return s.Apply(ctx, ownerID, func(snap *model.AppSnapshot) error {
		if req.Name != nil {
			if err := curriculum.RenameClassGroup(snap, groupID, *req.Name); err != nil {
				return err
			}
		}
		if req.CourseID != nil {
			if err := curriculum.MoveClassGroup(snap, groupID, *req.CourseID); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *workspaceService) DeleteClassGroup(ctx context.Context, ownerID, groupID string) (*dto.WorkspaceResponse, error) {
	return s.Apply(ctx, ownerID, func(snap *model.AppSnapshot) error {
		return curriculum.DeleteClassGroup(snap, groupID)
	})
}

// ────────────────────── 学生 ──────────────────────

func (s *workspaceService) AddStudents(ctx context.Context, ownerID, groupID string, req *dto.AddStudentsRequest) (*dto.WorkspaceResponse, error) {
	return s.Apply(ctx, ownerID, func(snap *model.AppSnapshot) error {
		_, err := curriculum.AddStudents(snap, groupID, req.Names)
		return err
	})
}

// ImportStudents 从名单文件（.xlsx 或纯文本）批量导入学生
func (s *workspaceService) ImportStudents(ctx context.Context, ownerID, groupID, filename string, r io.Reader) (*dto.ImportStudentsResponse, error) {
	names, err := ParseRoster(filename, r)
	if err != nil {
		return nil, err
	}

	var imported int
	ws, err := s.store.mutate(ctx, ownerID, func(snap *model.AppSnapshot) error {
		added, err := curriculum.AddStudents(snap, groupID, names)
		imported = len(added)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("已导入学生名单",
		zap.String("owner_id", ownerID),
		zap.String("class_group_id", groupID),
		zap.Int("imported", imported),
	)
	return &dto.ImportStudentsResponse{Imported: imported, WorkspaceResponse: *toWorkspaceResponse(ws)}, nil
}

func (s *workspaceService) RenameStudent(ctx context.Context, ownerID, groupID, studentID string, req *dto.NameRequest) (*dto.WorkspaceResponse, error) {
	return s.Apply(ctx, ownerID, func(snap *model.AppSnapshot) error {
		return curriculum.RenameStudent(snap, groupID, studentID, req.Name)
	})
}

func (s *workspaceService) DeleteStudent(ctx context.Context, ownerID, groupID, studentID string) (*dto.WorkspaceResponse, error) {
	return s.Apply(ctx, ownerID, func(snap *model.AppSnapshot) error {
		return curriculum.DeleteStudent(snap, groupID, studentID)
	})
}

// ────────────────────── 评价 ──────────────────────

func (s *workspaceService) UpdateEvaluation(ctx context.Context, ownerID, groupID, studentID string, term model.TermID, req *dto.UpdateEvaluationRequest) (*dto.WorkspaceResponse, error) {
	edit := curriculum.EvaluationEdit{
		Kind:                model.FieldKind(req.Kind),
		SubjectID:           req.SubjectID,
		Notes:               req.Notes,
		Report:              req.Report,
		CustomWorkedContent: req.CustomWorkedContent,
		ClearCustomContent:  req.ClearCustomContent,
	}
	if req.Grade != nil {
		g := model.Grade(*req.Grade)
		edit.Grade = &g
	}

	return s.Apply(ctx, ownerID, func(snap *model.AppSnapshot) error {
		return curriculum.UpdateEvaluation(snap, groupID, studentID, term, edit)
	})
}

func (s *workspaceService) SetStyleExamples(ctx context.Context, ownerID string, req *dto.StyleExamplesRequest) (*dto.WorkspaceResponse, error) {
	return s.Apply(ctx, ownerID, func(snap *model.AppSnapshot) error {
		curriculum.SetStyleExamples(snap, req.Text)
		return nil
	})
}
