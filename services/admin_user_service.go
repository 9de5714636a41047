package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/chinaharsle/stock-machine/config"
	"github.com/chinaharsle/stock-machine/models"

	"gorm.io/gorm"
)

// InterfaceAdminUserService 定义管理员身份服务接口
type InterfaceAdminUserService interface {
	IsUserAdmin(userID string) bool
	HasAdminUsers() bool
	BootstrapFirstAdmin(user *models.User) (*models.AdminUser, error)
	CreateOrUpdateAdminUser(user *models.User, isAdmin bool) (*models.AdminUser, error)
	GetAdminUserProfile(userID string) (*models.AdminUser, error)
	GetAllAdminUsers(actorID string) ([]models.AdminUser, error)
	ToggleAdminStatus(actorID, userID string, isAdmin bool) error
	DeleteAdminUser(actorID, userID string) error
	UpdateLastLogin(userID string) error
}

// AdminUserService 维护管理员身份记录，并承担首位管理员的一次性引导。
type AdminUserService struct {
	Store *ElevatedStore
}

// NewAdminUserService 创建管理员身份服务
func NewAdminUserService(store *ElevatedStore) *AdminUserService {
	return &AdminUserService{Store: store}
}

// IsUserAdmin 检查用户是否为管理员。记录不存在、is_admin为假、
// 以及任何查询失败都返回false，绝不在出错时放行。
func (s *AdminUserService) IsUserAdmin(userID string) bool {
	if userID == "" {
		return false
	}
	admin, err := s.Store.Ops().GetAdminByUserID(userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			config.Error("查询管理员状态失败: %v", err)
		}
		return false
	}
	return admin.IsAdmin
}

// HasAdminUsers 检查系统中是否已存在管理员
func (s *AdminUserService) HasAdminUsers() bool {
	count, err := s.Store.Ops().CountAdmins()
	if err != nil {
		config.Error("统计管理员数量失败: %v", err)
		return false
	}
	return count > 0
}

// BootstrapFirstAdmin 在系统还没有任何管理员时，把当前用户提升为
// 首位管理员。整个检查加插入在一个事务内完成；并发调用时引导标记
// 的唯一约束保证只有一个调用者成功，落败方得到(nil, nil)，按普通
// 用户继续即可。
func (s *AdminUserService) BootstrapFirstAdmin(user *models.User) (*models.AdminUser, error) {
	if user == nil || user.ID == "" {
		return nil, fmt.Errorf("%w: 用户信息不完整", ErrInvalidArgument)
	}

	var created *models.AdminUser
	err := s.Store.WithTransaction(func(ops *ElevatedOps) error {
		exists, err := ops.BootstrapMarkerExists()
		if err != nil {
			return err
		}
		if exists {
			return nil
		}
		count, err := ops.CountAdmins()
		if err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		if err := ops.InsertBootstrapMarker(user.ID); err != nil {
			return err
		}

		now := time.Now()
		admin := &models.AdminUser{
			UserID:    user.ID,
			Email:     user.Email,
			Name:      user.Name,
			IsAdmin:   true,
			LastLogin: &now,
		}
		if err := ops.CreateAdminUser(admin); err != nil {
			return err
		}
		created = admin
		return nil
	})
	if err != nil {
		if IsDuplicateKey(err) {
			// 引导竞争落败：别人已经成为首位管理员
			config.Info("首位管理员引导竞争落败, user_id=%s", user.ID)
			return nil, nil
		}
		return nil, err
	}
	if created != nil {
		config.Info("首位管理员引导成功: user_id=%s email=%s", user.ID, user.Email)
	}
	return created, nil
}

// CreateOrUpdateAdminUser 登录时维护身份记录：存在则刷新最近登录
// 时间，不存在则以普通用户身份建档。
func (s *AdminUserService) CreateOrUpdateAdminUser(user *models.User, isAdmin bool) (*models.AdminUser, error) {
	if user == nil || user.ID == "" {
		return nil, fmt.Errorf("%w: 用户信息不完整", ErrInvalidArgument)
	}

	var result *models.AdminUser
	err := s.Store.WithTransaction(func(ops *ElevatedOps) error {
		existing, err := ops.GetAdminByUserID(user.ID)
		if err == nil {
			if err := ops.TouchLastLogin(user.ID, time.Now()); err != nil {
				return err
			}
			result = existing
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		now := time.Now()
		admin := &models.AdminUser{
			UserID:    user.ID,
			Email:     user.Email,
			Name:      user.Name,
			IsAdmin:   isAdmin,
			LastLogin: &now,
		}
		if err := ops.CreateAdminUser(admin); err != nil {
			return err
		}
		result = admin
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetAdminUserProfile 读取身份档案
func (s *AdminUserService) GetAdminUserProfile(userID string) (*models.AdminUser, error) {
	admin, err := s.Store.Ops().GetAdminByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: 用户档案不存在", ErrNotFound)
		}
		return nil, err
	}
	return admin, nil
}

// GetAllAdminUsers 列出全部身份记录（仅管理员可用）
func (s *AdminUserService) GetAllAdminUsers(actorID string) ([]models.AdminUser, error) {
	if !s.IsUserAdmin(actorID) {
		return nil, ErrForbidden
	}
	return s.Store.Ops().ListAdminUsers()
}

// ToggleAdminStatus 授予或撤销管理员权限（仅管理员可用）
func (s *AdminUserService) ToggleAdminStatus(actorID, userID string, isAdmin bool) error {
	if !s.IsUserAdmin(actorID) {
		return ErrForbidden
	}
	err := s.Store.WithTransaction(func(ops *ElevatedOps) error {
		return ops.UpdateAdminFlag(userID, isAdmin)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: 用户档案不存在", ErrNotFound)
		}
		return err
	}
	return nil
}

// DeleteAdminUser 删除身份记录（仅管理员可用）
func (s *AdminUserService) DeleteAdminUser(actorID, userID string) error {
	if !s.IsUserAdmin(actorID) {
		return ErrForbidden
	}
	err := s.Store.WithTransaction(func(ops *ElevatedOps) error {
		return ops.DeleteAdminByUserID(userID)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: 用户档案不存在", ErrNotFound)
		}
		return err
	}
	return nil
}

// UpdateLastLogin 刷新最近登录时间
func (s *AdminUserService) UpdateLastLogin(userID string) error {
	return s.Store.WithTransaction(func(ops *ElevatedOps) error {
		return ops.TouchLastLogin(userID, time.Now())
	})
}
