package container

import (
	"context"
	"sync"
	"time"

	"github.com/chinaharsle/stock-machine/config"
	"github.com/chinaharsle/stock-machine/services"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// ServiceContainer 管理所有服务的依赖注入
type ServiceContainer struct {
	db     *gorm.DB
	config *config.Config
	redis  *redis.Client

	// 基础服务
	jwtService   services.InterfaceJWTService
	redisService services.InterfaceRedisService

	// 受限存储能力（只交给排序服务和管理员身份服务）
	elevatedStore *services.ElevatedStore

	// 通知服务
	emailService        services.InterfaceEmailService
	notificationService services.InterfaceNotificationService

	// 业务服务
	userService      services.InterfaceUserService
	adminUserService services.InterfaceAdminUserService
	positionService  services.InterfacePositionService
	machineService   services.InterfaceMachineService
	bannerService    services.InterfaceBannerService
	inquiryService   services.InterfaceInquiryService
	mediaService     services.InterfaceMediaService

	mu sync.RWMutex
}

// NewServiceContainer 创建新的服务容器
func NewServiceContainer(db *gorm.DB, cfg *config.Config, redisClient *redis.Client) *ServiceContainer {
	if db == nil {
		panic("数据库连接为空")
	}
	if cfg == nil {
		panic("配置为空")
	}

	// 测试Redis连接，失败则不使用缓存
	if redisClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			config.Warning("Redis连接测试失败: %v，将不使用Redis缓存", err)
			redisClient = nil
		}
	}

	container := &ServiceContainer{
		db:     db,
		config: cfg,
		redis:  redisClient,
	}
	container.initializeServices()
	return container
}

// initializeServices 初始化所有服务
func (c *ServiceContainer) initializeServices() {
	c.mu.Lock()
	defer c.mu.Unlock()

	// 初始化基础服务
	c.jwtService = services.NewJWTService(c.config)
	if c.redis != nil {
		c.redisService = services.NewRedisService(c.config)
	}

	// 受限存储能力对象，不放入GetService的查找表
	c.elevatedStore = services.NewElevatedStore(c.db)

	// 初始化通知服务
	c.emailService = services.NewEmailService(c.config)
	notifier := services.NewNotificationService(c.config)
	if err := notifier.Connect(); err != nil {
		config.Warning("MQTT通知服务不可用: %v", err)
	}
	c.notificationService = notifier

	// 初始化业务服务
	c.userService = services.NewUserService(c.db)
	c.adminUserService = services.NewAdminUserService(c.elevatedStore)
	c.positionService = services.NewPositionService(c.elevatedStore, c.adminUserService, c.redisService)
	c.machineService = services.NewMachineService(c.db, c.elevatedStore, c.adminUserService, c.redisService)
	c.bannerService = services.NewBannerService(c.db, c.adminUserService, c.redisService)
	c.inquiryService = services.NewInquiryService(c.db, c.adminUserService, c.machineService, c.emailService, c.notificationService)
	c.mediaService = services.NewMediaService(c.db, c.config, c.adminUserService)
}

// GetService 获取指定名称的服务
func (c *ServiceContainer) GetService(name string) interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	switch name {
	case "config":
		return c.config
	case "db":
		return c.db
	case "jwt":
		return c.jwtService
	case "redis":
		return c.redisService
	case "email":
		return c.emailService
	case "notification":
		return c.notificationService
	case "user":
		return c.userService
	case "admin_user":
		return c.adminUserService
	case "position":
		return c.positionService
	case "machine":
		return c.machineService
	case "banner":
		return c.bannerService
	case "inquiry":
		return c.inquiryService
	case "media":
		return c.mediaService
	default:
		return nil
	}
}

// GetDB 获取数据库连接
func (c *ServiceContainer) GetDB() *gorm.DB {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.db
}
