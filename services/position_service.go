package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chinaharsle/stock-machine/config"
	"github.com/chinaharsle/stock-machine/models"

	"gorm.io/gorm"
)

// 排序操作的并发冲突重试上限
const positionMaxRetries = 3

// InterfacePositionService 定义机器排序服务接口
type InterfacePositionService interface {
	MoveMachinePosition(userID, machineID string, direction models.SortDirection) error
	SetMachineSortOrder(userID, machineID string, sortOrder int) error
	ReorderMachines(userID string, machineIDs []string) error
}

// PositionService 维护机器目录的严格唯一排序。
// 每个操作都是一个完整事务：要么全部生效，要么完全不可见；
// 任何时刻sort_order都是1..N的排列。
type PositionService struct {
	Store        *ElevatedStore
	AdminService InterfaceAdminUserService
	Redis        InterfaceRedisService
}

// NewPositionService 创建排序服务
func NewPositionService(store *ElevatedStore, adminService InterfaceAdminUserService, redis InterfaceRedisService) *PositionService {
	return &PositionService{
		Store:        store,
		AdminService: adminService,
		Redis:        redis,
	}
}

// MoveMachinePosition 将机器与相邻机器交换位置（上移/下移）
func (s *PositionService) MoveMachinePosition(userID, machineID string, direction models.SortDirection) error {
	if direction != models.SortDirectionUp && direction != models.SortDirectionDown {
		return fmt.Errorf("%w: 移动方向必须是up或down", ErrInvalidArgument)
	}
	if !s.AdminService.IsUserAdmin(userID) {
		return ErrForbidden
	}

	err := s.withRetry(func() error {
		return s.Store.WithTransaction(func(ops *ElevatedOps) error {
			current, err := ops.GetMachinePosition(machineID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: 机器不存在", ErrNotFound)
				}
				return err
			}

			target := current.SortOrder - 1
			if direction == models.SortDirectionDown {
				target = current.SortOrder + 1
			}

			count, err := ops.CountMachines()
			if err != nil {
				return err
			}
			if target < 1 || target > int(count) {
				return fmt.Errorf("%w: 已在%s边界", ErrBoundary, directionLabel(direction))
			}

			rows, err := ops.ListMachinePositions()
			if err != nil {
				return err
			}
			var neighbor *MachinePosition
			for i := range rows {
				if rows[i].SortOrder == target {
					neighbor = &rows[i]
					break
				}
			}
			if neighbor == nil {
				// 排序出现空洞，按边界处理而不是制造重复
				return fmt.Errorf("%w: 相邻位置不存在", ErrBoundary)
			}

			// 两段式交换：先把两行移入负数区间，再写入最终位置
			if err := ops.NegateMachinePositions([]string{current.ID, neighbor.ID}); err != nil {
				return err
			}
			if err := ops.AssignMachinePosition(current.ID, target); err != nil {
				return err
			}
			return ops.AssignMachinePosition(neighbor.ID, current.SortOrder)
		})
	})
	if err != nil {
		return err
	}

	s.invalidateCatalogCache()
	return nil
}

// SetMachineSortOrder 把机器放到指定排序位置，其间的机器整体平移一位
func (s *PositionService) SetMachineSortOrder(userID, machineID string, sortOrder int) error {
	if !s.AdminService.IsUserAdmin(userID) {
		return ErrForbidden
	}

	err := s.withRetry(func() error {
		return s.Store.WithTransaction(func(ops *ElevatedOps) error {
			count, err := ops.CountMachines()
			if err != nil {
				return err
			}
			if sortOrder < 1 || sortOrder > int(count) {
				return fmt.Errorf("%w: 排序号必须在1到%d之间", ErrInvalidArgument, count)
			}

			current, err := ops.GetMachinePosition(machineID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: 机器不存在", ErrNotFound)
				}
				return err
			}
			if current.SortOrder == sortOrder {
				return nil
			}

			rows, err := ops.ListMachinePositions()
			if err != nil {
				return err
			}

			// 先完整计算旧位置到新位置的映射，再统一应用
			final := make(map[string]int, len(rows))
			var affected []string
			for _, row := range rows {
				switch {
				case row.ID == current.ID:
					final[row.ID] = sortOrder
					affected = append(affected, row.ID)
				case sortOrder < current.SortOrder &&
					row.SortOrder >= sortOrder && row.SortOrder < current.SortOrder:
					final[row.ID] = row.SortOrder + 1
					affected = append(affected, row.ID)
				case sortOrder > current.SortOrder &&
					row.SortOrder > current.SortOrder && row.SortOrder <= sortOrder:
					final[row.ID] = row.SortOrder - 1
					affected = append(affected, row.ID)
				}
			}

			// 两段式应用：负数区间过渡，避免唯一索引的瞬时冲突
			if err := ops.NegateMachinePositions(affected); err != nil {
				return err
			}
			for _, id := range affected {
				if err := ops.AssignMachinePosition(id, final[id]); err != nil {
					return err
				}
			}
			return nil
		})
	})
	if err != nil {
		return err
	}

	s.invalidateCatalogCache()
	return nil
}

// ReorderMachines 按给定的完整ID序列重排全部机器
func (s *PositionService) ReorderMachines(userID string, machineIDs []string) error {
	if !s.AdminService.IsUserAdmin(userID) {
		return ErrForbidden
	}

	err := s.withRetry(func() error {
		return s.Store.WithTransaction(func(ops *ElevatedOps) error {
			rows, err := ops.ListMachinePositions()
			if err != nil {
				return err
			}

			// 提交的ID集合必须与当前机器集合完全一致
			if len(machineIDs) != len(rows) {
				return fmt.Errorf("%w: 排序列表必须包含全部%d台机器", ErrInvalidArgument, len(rows))
			}
			known := make(map[string]bool, len(rows))
			for _, row := range rows {
				known[row.ID] = true
			}
			seen := make(map[string]bool, len(machineIDs))
			for _, id := range machineIDs {
				if !known[id] {
					return fmt.Errorf("%w: 未知的机器ID %s", ErrInvalidArgument, id)
				}
				if seen[id] {
					return fmt.Errorf("%w: 机器ID %s 重复", ErrInvalidArgument, id)
				}
				seen[id] = true
			}

			if err := ops.NegateMachinePositions(machineIDs); err != nil {
				return err
			}
			for i, id := range machineIDs {
				if err := ops.AssignMachinePosition(id, i+1); err != nil {
					return err
				}
			}
			return nil
		})
	})
	if err != nil {
		return err
	}

	s.invalidateCatalogCache()
	return nil
}

// withRetry 执行op，存储层冲突时有限重试。业务类错误立即返回。
func (s *PositionService) withRetry(op func() error) error {
	var err error
	for attempt := 0; attempt < positionMaxRetries; attempt++ {
		err = op()
		if err == nil {
			return nil
		}
		if isTerminal(err) {
			return err
		}
		config.Warning("排序操作遇到存储冲突，第%d次重试: %v", attempt+1, err)
	}
	if isStorageConflict(err) {
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	return err
}

// isTerminal 判断错误是否为不应重试的业务错误
func isTerminal(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvalidArgument) ||
		errors.Is(err, ErrBoundary) ||
		errors.Is(err, ErrForbidden)
}

// isStorageConflict 判断错误是否为并发写冲突（死锁、锁等待、唯一键碰撞）
func isStorageConflict(err error) bool {
	if err == nil {
		return false
	}
	if IsDuplicateKey(err) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "deadlock") ||
		strings.Contains(msg, "lock wait timeout") ||
		strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked")
}

func (s *PositionService) invalidateCatalogCache() {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Delete(CacheKeyPublicMachines); err != nil {
		config.Warning("清除机器目录缓存失败: %v", err)
	}
}

func directionLabel(direction models.SortDirection) string {
	if direction == models.SortDirectionUp {
		return "顶部"
	}
	return "底部"
}
