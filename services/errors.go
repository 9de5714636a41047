package services

import "errors"

// 服务层错误类别。控制器通过errors.Is映射为HTTP状态码。
var (
	// ErrNotFound 目标记录不存在
	ErrNotFound = errors.New("记录不存在")
	// ErrInvalidArgument 参数非法（排序号越界、排序列表不完整等）
	ErrInvalidArgument = errors.New("参数非法")
	// ErrBoundary 已在边界位置，无法继续移动
	ErrBoundary = errors.New("无法移动到该位置")
	// ErrConflict 并发写入冲突，重试次数耗尽
	ErrConflict = errors.New("并发冲突，请重试")
	// ErrForbidden 当前用户没有管理员权限
	ErrForbidden = errors.New("没有管理员权限")
	// ErrAlreadyExists 唯一字段冲突（邮箱、型号重复等）
	ErrAlreadyExists = errors.New("记录已存在")
)
