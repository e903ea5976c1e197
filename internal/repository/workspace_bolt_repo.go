package repository

import (
	"context"
	"encoding/json"
	"time"

	"go.etcd.io/bbolt"

	"memonotes/internal/model"
	"memonotes/pkg/database"
	pkgerrors "memonotes/pkg/errors"
)

// boltRecord bbolt 中的存储格式
type boltRecord struct {
	Version   int             `json:"version"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	Payload   json.RawMessage `json:"payload"`
}

type workspaceBoltRepo struct {
	db *bbolt.DB
}

// NewWorkspaceBoltRepo 创建基于 bbolt 单文件存储的 WorkspaceRepository
func NewWorkspaceBoltRepo(db *bbolt.DB) WorkspaceRepository {
	return &workspaceBoltRepo{db: db}
}

func (r *workspaceBoltRepo) GetByOwner(ctx context.Context, ownerID string) (*model.Workspace, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rec boltRecord
	err := r.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(database.WorkspaceBucket).Get([]byte(ownerID))
		if v == nil {
			return pkgerrors.ErrNotFound
		}
		return json.Unmarshal(v, &rec)
	})
	if err != nil {
		return nil, err
	}

	ws := &model.Workspace{
		OwnerID: ownerID,
		Payload: model.JSONB(rec.Payload),
	}
	ws.Version = rec.Version
	ws.CreatedAt = rec.CreatedAt
	ws.UpdatedAt = rec.UpdatedAt
	return ws, nil
}

func (r *workspaceBoltRepo) Save(ctx context.Context, ws *model.Workspace) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	now := time.Now()
	var saved boltRecord
	err := r.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(database.WorkspaceBucket)
		key := []byte(ws.OwnerID)

		current := boltRecord{}
		if v := b.Get(key); v != nil {
			if err := json.Unmarshal(v, &current); err != nil {
				return err
			}
		}
		// 不存在时 current.Version 为 0，与“尚未持久化”一致
		if current.Version != ws.Version {
			return pkgerrors.ErrOptimisticLock
		}

		payload := ws.Payload
		if len(payload) == 0 {
			payload = model.JSONB("{}")
		}
		saved = boltRecord{
			Version:   ws.Version + 1,
			CreatedAt: current.CreatedAt,
			UpdatedAt: now,
			Payload:   json.RawMessage(payload),
		}
		if saved.CreatedAt.IsZero() {
			saved.CreatedAt = now
		}

		data, err := json.Marshal(saved)
		if err != nil {
			return err
		}
		return b.Put(key, data)
	})
	if err != nil {
		return err
	}

	ws.Version = saved.Version
	ws.CreatedAt = saved.CreatedAt
	ws.UpdatedAt = saved.UpdatedAt
	return nil
}

func (r *workspaceBoltRepo) Delete(ctx context.Context, ownerID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(database.WorkspaceBucket).Delete([]byte(ownerID))
	})
}
