package services

import (
	"errors"
	"fmt"

	"github.com/chinaharsle/stock-machine/config"
	"github.com/chinaharsle/stock-machine/models"

	"gorm.io/gorm"
)

// InterfaceBannerService 定义横幅管理服务接口
type InterfaceBannerService interface {
	GetActiveBanners() ([]models.Banner, error)
	GetAllBanners() ([]models.Banner, error)
	CreateBanner(actorID string, banner *models.Banner) error
	UpdateBanner(actorID, id string, updates map[string]interface{}) (*models.Banner, error)
	DeleteBanner(actorID, id string) error
}

// BannerService 提供首页横幅的管理
type BannerService struct {
	DB           *gorm.DB
	AdminService InterfaceAdminUserService
	Redis        InterfaceRedisService
}

// NewBannerService 创建横幅服务
func NewBannerService(db *gorm.DB, adminService InterfaceAdminUserService, redis InterfaceRedisService) *BannerService {
	return &BannerService{
		DB:           db,
		AdminService: adminService,
		Redis:        redis,
	}
}

// GetActiveBanners 获取启用中的横幅（公开接口，按展示顺序），优先走缓存
func (s *BannerService) GetActiveBanners() ([]models.Banner, error) {
	if s.Redis != nil {
		var cached []models.Banner
		if err := s.Redis.Get(CacheKeyActiveBanners, &cached); err == nil {
			return cached, nil
		}
	}

	var banners []models.Banner
	if err := s.DB.Where("is_active = ?", true).
		Order("display_order ASC").
		Find(&banners).Error; err != nil {
		return nil, err
	}

	if s.Redis != nil {
		if err := s.Redis.Set(CacheKeyActiveBanners, banners, CatalogCacheTTL); err != nil {
			config.Warning("写入横幅缓存失败: %v", err)
		}
	}
	return banners, nil
}

// GetAllBanners 获取全部横幅（管理端）
func (s *BannerService) GetAllBanners() ([]models.Banner, error) {
	var banners []models.Banner
	if err := s.DB.Order("display_order ASC").Find(&banners).Error; err != nil {
		return nil, err
	}
	return banners, nil
}

// CreateBanner 创建横幅
func (s *BannerService) CreateBanner(actorID string, banner *models.Banner) error {
	if !s.AdminService.IsUserAdmin(actorID) {
		return ErrForbidden
	}
	if banner.Title == "" {
		return fmt.Errorf("%w: 标题不能为空", ErrInvalidArgument)
	}
	if err := s.DB.Create(banner).Error; err != nil {
		return err
	}
	s.invalidateCache()
	return nil
}

// UpdateBanner 更新横幅
func (s *BannerService) UpdateBanner(actorID, id string, updates map[string]interface{}) (*models.Banner, error) {
	if !s.AdminService.IsUserAdmin(actorID) {
		return nil, ErrForbidden
	}

	var banner models.Banner
	if err := s.DB.Where("id = ?", id).Take(&banner).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: 横幅不存在", ErrNotFound)
		}
		return nil, err
	}
	if err := s.DB.Model(&banner).Updates(updates).Error; err != nil {
		return nil, err
	}

	s.invalidateCache()
	return &banner, nil
}

// DeleteBanner 删除横幅
func (s *BannerService) DeleteBanner(actorID, id string) error {
	if !s.AdminService.IsUserAdmin(actorID) {
		return ErrForbidden
	}

	result := s.DB.Where("id = ?", id).Delete(&models.Banner{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: 横幅不存在", ErrNotFound)
	}

	s.invalidateCache()
	return nil
}

func (s *BannerService) invalidateCache() {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Delete(CacheKeyActiveBanners); err != nil {
		config.Warning("清除横幅缓存失败: %v", err)
	}
}
