package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"memonotes/internal/generation"
	"memonotes/internal/model"
	"memonotes/internal/repository"
	pkgerrors "memonotes/pkg/errors"
)

// ── Mock WorkspaceRepository ──

type mockWorkspaceRepo struct {
	mu   sync.Mutex
	rows map[string]model.Workspace
	// conflicts 接下来若干次 Save 直接返回版本冲突
	conflicts int
	saves     int
}

func newMockWorkspaceRepo() *mockWorkspaceRepo {
	return &mockWorkspaceRepo{rows: make(map[string]model.Workspace)}
}

func (m *mockWorkspaceRepo) GetByOwner(_ context.Context, ownerID string) (*model.Workspace, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[ownerID]
	if !ok {
		return nil, pkgerrors.ErrNotFound
	}
	row.Payload = append(model.JSONB(nil), row.Payload...)
	return &row, nil
}

func (m *mockWorkspaceRepo) Save(_ context.Context, ws *model.Workspace) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conflicts > 0 {
		m.conflicts--
		return pkgerrors.ErrOptimisticLock
	}
	if m.rows[ws.OwnerID].Version != ws.Version {
		return pkgerrors.ErrOptimisticLock
	}
	ws.Version++
	ws.UpdatedAt = time.Now()
	stored := *ws
	stored.Payload = append(model.JSONB(nil), ws.Payload...)
	m.rows[ws.OwnerID] = stored
	m.saves++
	return nil
}

func (m *mockWorkspaceRepo) Delete(_ context.Context, ownerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, ownerID)
	return nil
}

// put 直接写入快照（版本号 +1）
func (m *mockWorkspaceRepo) put(t *testing.T, ownerID string, snap *model.AppSnapshot) {
	t.Helper()
	payload, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("序列化快照失败: %v", err)
	}
	m.putRaw(ownerID, payload)
}

func (m *mockWorkspaceRepo) putRaw(ownerID string, payload []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row := m.rows[ownerID]
	row.OwnerID = ownerID
	row.Payload = payload
	row.Version++
	m.rows[ownerID] = row
}

// stored 解码当前存储的快照
func (m *mockWorkspaceRepo) stored(t *testing.T, ownerID string) (*model.AppSnapshot, int) {
	t.Helper()
	m.mu.Lock()
	row, ok := m.rows[ownerID]
	m.mu.Unlock()
	if !ok {
		t.Fatalf("工作区 %s 未保存", ownerID)
	}
	var snap model.AppSnapshot
	if err := json.Unmarshal(row.Payload, &snap); err != nil {
		t.Fatalf("解码快照失败: %v", err)
	}
	return &snap, row.Version
}

func newTestRepository(ws repository.WorkspaceRepository) *repository.Repository {
	return &repository.Repository{Workspace: ws}
}

// ── Fake Generator ──

type fakeGenerator struct {
	mu        sync.Mutex
	calls     int
	available error
	// before 在每次生成前调用（可阻塞或修改存储）
	before func(fc generation.FieldContext)
}

func (f *fakeGenerator) Available(_ context.Context) error {
	return f.available
}

func (f *fakeGenerator) Generate(_ context.Context, fc generation.FieldContext) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.before != nil {
		f.before(fc)
	}
	switch c := fc.(type) {
	case generation.SubjectContext:
		return fmt.Sprintf("[subject %s %s]", c.StudentName, c.SubjectName), nil
	case generation.PersonalContext:
		return fmt.Sprintf("[personal %s]", c.StudentName), nil
	case generation.GeneralContext:
		return fmt.Sprintf("[general %s]", c.StudentName), nil
	}
	return "", fmt.Errorf("unexpected context %T", fc)
}

// ── Fake Locker ──

type fakeLocker struct {
	mu       sync.Mutex
	held     map[string]string
	err      error
	released int
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: make(map[string]string)}
}

func (l *fakeLocker) AcquireLock(_ context.Context, name string, _ time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return "", false, l.err
	}
	if _, ok := l.held[name]; ok {
		return "", false, nil
	}
	token := "tok-" + name
	l.held[name] = token
	return token, true, nil
}

func (l *fakeLocker) ReleaseLock(_ context.Context, name, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[name] == token {
		delete(l.held, name)
		l.released++
	}
	return nil
}

// ── 测试数据 ──

const testOwner = "teacher-1"

// newTestSnapshot 课程 TERCER（MATEMÀTIQUES）+ 教学班 g-1，学生 s-1 有笔记，s-2 无任何素材
func newTestSnapshot() *model.AppSnapshot {
	snap := model.NewSnapshot()
	snap.Subjects = []model.Subject{{ID: "math", Name: "MATEMÀTIQUES"}}
	cs := model.NewCourseSubject("math")
	cs.WorkedContent.Set(model.Term1, "Sumes i restes.")
	snap.Courses = []model.Course{{ID: "c-1", Name: "TERCER", Subjects: []model.CourseSubject{cs}}}

	marc := model.NewStudent("s-1", "MARC", snap.Courses[0].Subjects)
	ev := marc.Evaluations.Get(model.Term1)
	ev.Subjects[0].Comment.Notes = "resol problemes"
	ev.PersonalAspects.Notes = "molt participatiu"

	julia := model.NewStudent("s-2", "JÚLIA", snap.Courses[0].Subjects)

	snap.ClassGroups = []model.ClassGroup{{
		ID:       "g-1",
		Name:     "Grup A",
		CourseID: "c-1",
		Students: []model.Student{marc, julia},
	}}
	return snap
}
