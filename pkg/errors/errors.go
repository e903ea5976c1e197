package errors

import "errors"

// ErrOptimisticLock 乐观锁冲突：工作区已被其他操作修改
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("记录不存在")
