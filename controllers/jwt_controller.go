package controllers

import (
	"net/http"

	"github.com/chinaharsle/stock-machine/services"
	"github.com/chinaharsle/stock-machine/services/container"

	"github.com/gin-gonic/gin"
)

// InterfaceJWTController 定义认证控制器接口
type InterfaceJWTController interface {
	Login()
	Register()
}

// JWTController 认证控制器
type JWTController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewJWTController 创建一个新的认证控制器
func NewJWTController(ctx *gin.Context, container *container.ServiceContainer) *JWTController {
	return &JWTController{
		Ctx:       ctx,
		Container: container,
	}
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required" example:"admin@harsle.com"`
	Password string `json:"password" binding:"required" example:"secret123"`
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Email    string `json:"email" binding:"required" example:"user@harsle.com"`
	Password string `json:"password" binding:"required" example:"secret123"`
	Name     string `json:"name" example:"张三"`
}

// HandleJWTFunc 返回一个处理认证请求的Gin处理函数
func HandleJWTFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewJWTController(ctx, container)

		switch method {
		case "login":
			controller.Login()
		case "register":
			controller.Register()
		default:
			ctx.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "无效的方法",
				"data":    nil,
			})
		}
	}
}

// Login 登录
// @Summary      登录
// @Description  校验邮箱密码并签发JWT；系统还没有管理员时触发首位管理员引导
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "登录信息"
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  ErrorResponse
// @Router       /auth/login [post]
func (c *JWTController) Login() {
	var req LoginRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		c.Ctx.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "邮箱和密码是必需的",
			"data":    nil,
		})
		return
	}

	userService := c.Container.GetService("user").(services.InterfaceUserService)
	user, err := userService.Authenticate(req.Email, req.Password)
	if err != nil {
		c.Ctx.JSON(http.StatusUnauthorized, gin.H{
			"code":    401,
			"message": "邮箱或密码错误",
			"data":    nil,
		})
		return
	}

	adminService := c.Container.GetService("admin_user").(services.InterfaceAdminUserService)

	// 系统还没有任何管理员时，当前登录者竞争首位管理员资格。
	// 竞争失败（别的进程先到）按普通用户继续，不视为错误。
	if !adminService.HasAdminUsers() {
		if _, err := adminService.BootstrapFirstAdmin(user); err != nil {
			respondError(c.Ctx, err)
			return
		}
	}

	// 维护身份档案并刷新最近登录时间。已有档案时第二个参数不生效，
	// 不会借登录改变管理员标志。
	if _, err := adminService.CreateOrUpdateAdminUser(user, false); err != nil {
		respondError(c.Ctx, err)
		return
	}

	// 角色以数据库当前状态为准，不信任任何历史令牌
	role := "user"
	if adminService.IsUserAdmin(user.ID) {
		role = "admin"
	}

	jwtService := c.Container.GetService("jwt").(services.InterfaceJWTService)
	token, err := jwtService.GenerateToken(user.ID, role)
	if err != nil {
		respondError(c.Ctx, err)
		return
	}

	respondSuccess(c.Ctx, gin.H{
		"token": token,
		"user": gin.H{
			"id":    user.ID,
			"email": user.Email,
			"name":  user.Name,
			"role":  role,
		},
	})
}

// Register 注册
// @Summary      注册账户
// @Description  创建登录账户。账户本身没有管理权限，权限由管理员记录决定
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "注册信息"
// @Success      200  {object}  map[string]interface{}
// @Failure      409  {object}  ErrorResponse
// @Router       /auth/register [post]
func (c *JWTController) Register() {
	var req RegisterRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		c.Ctx.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "邮箱和密码是必需的",
			"data":    nil,
		})
		return
	}

	userService := c.Container.GetService("user").(services.InterfaceUserService)
	user, err := userService.Register(req.Email, req.Password, req.Name)
	if err != nil {
		respondError(c.Ctx, err)
		return
	}

	respondSuccess(c.Ctx, gin.H{
		"id":    user.ID,
		"email": user.Email,
		"name":  user.Name,
	})
}
