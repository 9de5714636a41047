package services

import (
	"errors"
	"fmt"

	"github.com/chinaharsle/stock-machine/config"
	"github.com/chinaharsle/stock-machine/models"

	"gorm.io/gorm"
)

// InterfaceMachineService 定义机器管理服务接口
type InterfaceMachineService interface {
	GetAllMachines() ([]models.Machine, error)
	GetMachineByID(id string) (*models.Machine, error)
	GetMachineByModel(model string) (*models.Machine, error)
	GetPublicMachines() ([]models.PublicMachine, error)
	CreateMachine(actorID string, machine *models.Machine) error
	UpdateMachine(actorID, id string, updates map[string]interface{}) (*models.Machine, error)
	DeleteMachine(actorID, id string) error
}

// MachineService 提供机器的增删改查。排序位置只在创建（追加到末尾）
// 和删除（收紧空洞）时由本服务改动，其余排序变更都走PositionService。
type MachineService struct {
	DB           *gorm.DB
	Store        *ElevatedStore
	AdminService InterfaceAdminUserService
	Redis        InterfaceRedisService
}

// NewMachineService 创建机器服务
func NewMachineService(db *gorm.DB, store *ElevatedStore, adminService InterfaceAdminUserService, redis InterfaceRedisService) *MachineService {
	return &MachineService{
		DB:           db,
		Store:        store,
		AdminService: adminService,
		Redis:        redis,
	}
}

// GetAllMachines 按排序位置获取所有机器（管理端）
func (s *MachineService) GetAllMachines() ([]models.Machine, error) {
	var machines []models.Machine
	if err := s.DB.Order("sort_order ASC").Find(&machines).Error; err != nil {
		return nil, err
	}
	return machines, nil
}

// GetMachineByID 根据ID获取机器
func (s *MachineService) GetMachineByID(id string) (*models.Machine, error) {
	var machine models.Machine
	if err := s.DB.Where("id = ?", id).Take(&machine).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: 机器不存在", ErrNotFound)
		}
		return nil, err
	}
	return &machine, nil
}

// GetMachineByModel 根据型号获取机器（公开接口，用于询盘邮件补充参数）
func (s *MachineService) GetMachineByModel(model string) (*models.Machine, error) {
	var machine models.Machine
	if err := s.DB.Where("model = ?", model).Take(&machine).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: 产品不存在", ErrNotFound)
		}
		return nil, err
	}
	return &machine, nil
}

// GetPublicMachines 获取公开目录，优先走Redis缓存
func (s *MachineService) GetPublicMachines() ([]models.PublicMachine, error) {
	if s.Redis != nil {
		var cached []models.PublicMachine
		if err := s.Redis.Get(CacheKeyPublicMachines, &cached); err == nil {
			return cached, nil
		}
	}

	machines, err := s.GetAllMachines()
	if err != nil {
		return nil, err
	}
	public := make([]models.PublicMachine, 0, len(machines))
	for _, m := range machines {
		public = append(public, m.ToPublic())
	}

	if s.Redis != nil {
		if err := s.Redis.Set(CacheKeyPublicMachines, public, CatalogCacheTTL); err != nil {
			config.Warning("写入机器目录缓存失败: %v", err)
		}
	}
	return public, nil
}

// CreateMachine 创建机器，排序位置追加为当前数量+1（与计数同一事务）
func (s *MachineService) CreateMachine(actorID string, machine *models.Machine) error {
	if !s.AdminService.IsUserAdmin(actorID) {
		return ErrForbidden
	}
	if machine.Model == "" {
		return fmt.Errorf("%w: 型号不能为空", ErrInvalidArgument)
	}
	machine.CreatedBy = actorID

	err := s.Store.WithTransaction(func(ops *ElevatedOps) error {
		count, err := ops.CountMachines()
		if err != nil {
			return err
		}
		machine.SortOrder = int(count) + 1
		return ops.CreateMachine(machine)
	})
	if err != nil {
		if IsDuplicateKey(err) {
			return fmt.Errorf("%w: 型号已存在", ErrAlreadyExists)
		}
		return err
	}

	s.invalidateCache()
	return nil
}

// UpdateMachine 更新机器的非排序字段
func (s *MachineService) UpdateMachine(actorID, id string, updates map[string]interface{}) (*models.Machine, error) {
	if !s.AdminService.IsUserAdmin(actorID) {
		return nil, ErrForbidden
	}

	// 排序位置不允许从普通更新路径修改
	delete(updates, "sort_order")

	machine, err := s.GetMachineByID(id)
	if err != nil {
		return nil, err
	}
	if err := s.DB.Model(machine).Updates(updates).Error; err != nil {
		if IsDuplicateKey(err) {
			return nil, fmt.Errorf("%w: 型号已存在", ErrAlreadyExists)
		}
		return nil, err
	}

	s.invalidateCache()
	return s.GetMachineByID(id)
}

// DeleteMachine 删除机器并在同一事务内收紧排序空洞，
// 保证sort_order始终是1..N的连续排列。
func (s *MachineService) DeleteMachine(actorID, id string) error {
	if !s.AdminService.IsUserAdmin(actorID) {
		return ErrForbidden
	}

	err := s.Store.WithTransaction(func(ops *ElevatedOps) error {
		position, err := ops.GetMachinePosition(id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: 机器不存在", ErrNotFound)
			}
			return err
		}
		if err := ops.DeleteMachine(id); err != nil {
			return err
		}
		return ops.CloseMachineGap(position.SortOrder)
	})
	if err != nil {
		return err
	}

	s.invalidateCache()
	return nil
}

func (s *MachineService) invalidateCache() {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Delete(CacheKeyPublicMachines); err != nil {
		config.Warning("清除机器目录缓存失败: %v", err)
	}
}
