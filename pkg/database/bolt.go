package database

import (
	"fmt"
	"time"

	"go.etcd.io/bbolt"
	"go.uber.org/zap"
)

// WorkspaceBucket bbolt 中存放工作区文档的桶
var WorkspaceBucket = []byte("Workspaces")

// OpenBolt 打开（或创建）单文件嵌入式存储，并确保所需桶存在
func OpenBolt(path string, logger *zap.Logger) (*bbolt.DB, error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("打开 bolt 文件失败: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(WorkspaceBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("初始化 bolt 桶失败: %w", err)
	}

	logger.Info("嵌入式存储已就绪", zap.String("path", path))
	return db, nil
}
