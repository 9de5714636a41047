package routes

import (
	"github.com/chinaharsle/stock-machine/config"
	"github.com/chinaharsle/stock-machine/controllers"
	"github.com/chinaharsle/stock-machine/middleware"
	"github.com/chinaharsle/stock-machine/services"
	"github.com/chinaharsle/stock-machine/services/container"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// SetupRouter 初始化并返回配置好的路由
func SetupRouter(db *gorm.DB, cfg *config.Config, redisClient *redis.Client) *gin.Engine {
	// 初始化 Gin
	r := gin.Default()

	// 添加 CORS 中间件
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", cfg.SiteURL)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, Accept, Origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// 创建服务容器
	serviceContainer := container.NewServiceContainer(db, cfg, redisClient)
	// 初始化认证中间件
	middleware.InitAuthMiddleware(
		serviceContainer.GetService("jwt").(services.InterfaceJWTService),
		serviceContainer.GetService("admin_user").(services.InterfaceAdminUserService),
	)
	// 添加 Swagger 文档路由
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	// 上传文件静态访问
	r.Static("/uploads", cfg.UploadDir)

	// 注册路由
	registerRoutes(r, serviceContainer)
	return r
}

// registerRoutes 配置所有API路由
func registerRoutes(
	r *gin.Engine,
	container *container.ServiceContainer,
) {
	// API 路由根路径
	api := r.Group("/api")
	// 注册公共路由
	registerPublicRoutes(api, container)
	// 注册需要认证的管理路由
	registerAdminRoutes(api, container)
}

// registerPublicRoutes 注册公共路由
func registerPublicRoutes(
	api *gin.RouterGroup,
	container *container.ServiceContainer,
) {
	// 健康检查
	api.GET("/ping", controllers.Ping)

	// 认证路由
	api.POST("/auth/login", controllers.HandleJWTFunc(container, "login"))
	api.POST("/auth/register", controllers.HandleJWTFunc(container, "register"))

	// 公开目录路由
	api.GET("/machines", controllers.HandleMachineFunc(container, "getPublicMachines"))
	api.GET("/machines/by-model", controllers.HandleMachineFunc(container, "getMachineByModel"))
	api.GET("/banners", controllers.HandleBannerFunc(container, "getActiveBanners"))

	// 询盘提交，按IP限流防止滥用
	api.POST("/inquiries", middleware.IPRateLimiter(1, 5), controllers.HandleInquiryFunc(container, "submitInquiry"))
}

// registerAdminRoutes 注册需要管理员身份的路由
func registerAdminRoutes(
	api *gin.RouterGroup,
	container *container.ServiceContainer,
) {
	// 认证中间件只解析令牌；管理员身份以数据库当前记录为准
	admin := api.Group("/admin")
	admin.Use(middleware.Authentication())
	admin.Use(middleware.RequireAdmin())

	// 当前管理员资料
	admin.GET("/profile", controllers.HandleAdminUserFunc(container, "getProfile"))

	// 机器路由
	admin.GET("/machines", controllers.HandleMachineFunc(container, "getMachines"))
	admin.POST("/machines", controllers.HandleMachineFunc(container, "createMachine"))
	admin.PUT("/machines/:id", controllers.HandleMachineFunc(container, "updateMachine"))
	admin.DELETE("/machines/:id", controllers.HandleMachineFunc(container, "deleteMachine"))
	// 排序路由：POST相对移动，PUT指定位置，PATCH整体重排
	admin.POST("/machines/reorder", controllers.HandleMachineFunc(container, "movePosition"))
	admin.PUT("/machines/reorder", controllers.HandleMachineFunc(container, "setSortOrder"))
	admin.PATCH("/machines/reorder", controllers.HandleMachineFunc(container, "reorder"))

	// 横幅路由
	admin.GET("/banners", controllers.HandleBannerFunc(container, "getAllBanners"))
	admin.POST("/banners", controllers.HandleBannerFunc(container, "createBanner"))
	admin.PUT("/banners/:id", controllers.HandleBannerFunc(container, "updateBanner"))
	admin.DELETE("/banners/:id", controllers.HandleBannerFunc(container, "deleteBanner"))

	// 询盘管理路由
	admin.GET("/inquiries", controllers.HandleInquiryFunc(container, "getInquiries"))
	admin.PUT("/inquiries/:id/status", controllers.HandleInquiryFunc(container, "updateStatus"))
	admin.DELETE("/inquiries/:id", controllers.HandleInquiryFunc(container, "deleteInquiry"))

	// 管理员用户路由
	admin.GET("/users", controllers.HandleAdminUserFunc(container, "getAdminUsers"))
	admin.PUT("/users/:userId/admin", controllers.HandleAdminUserFunc(container, "toggleAdminStatus"))
	admin.DELETE("/users/:userId", controllers.HandleAdminUserFunc(container, "deleteAdminUser"))

	// 媒体路由
	admin.POST("/upload", controllers.HandleMediaFunc(container, "uploadFile"))
	admin.GET("/media", controllers.HandleMediaFunc(container, "listMediaFiles"))
}
