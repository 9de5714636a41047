package controllers

import (
	"net/http"

	"github.com/chinaharsle/stock-machine/middleware"
	"github.com/chinaharsle/stock-machine/services"
	"github.com/chinaharsle/stock-machine/services/container"

	"github.com/gin-gonic/gin"
)

// InterfaceAdminUserController 定义管理员用户控制器接口
type InterfaceAdminUserController interface {
	GetProfile()
	GetAdminUsers()
	ToggleAdminStatus()
	DeleteAdminUser()
}

// AdminUserController 管理员用户控制器
type AdminUserController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewAdminUserController 创建一个新的管理员用户控制器
func NewAdminUserController(ctx *gin.Context, container *container.ServiceContainer) *AdminUserController {
	return &AdminUserController{
		Ctx:       ctx,
		Container: container,
	}
}

// ToggleAdminRequest 切换管理员状态请求
type ToggleAdminRequest struct {
	IsAdmin *bool `json:"is_admin" binding:"required"`
}

// HandleAdminUserFunc 返回一个处理管理员用户请求的Gin处理函数
func HandleAdminUserFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewAdminUserController(ctx, container)

		switch method {
		case "getProfile":
			controller.GetProfile()
		case "getAdminUsers":
			controller.GetAdminUsers()
		case "toggleAdminStatus":
			controller.ToggleAdminStatus()
		case "deleteAdminUser":
			controller.DeleteAdminUser()
		default:
			ctx.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "无效的方法",
				"data":    nil,
			})
		}
	}
}

// GetProfile 获取当前管理员资料
// @Summary      获取当前管理员资料
// @Tags         AdminUser
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /admin/profile [get]
// @Security     BearerAuth
func (c *AdminUserController) GetProfile() {
	adminService := c.Container.GetService("admin_user").(services.InterfaceAdminUserService)
	profile, err := adminService.GetAdminUserProfile(middleware.CurrentUserID(c.Ctx))
	if err != nil {
		respondError(c.Ctx, err)
		return
	}
	respondSuccess(c.Ctx, profile)
}

// GetAdminUsers 获取管理员用户列表
// @Summary      获取管理员用户列表
// @Tags         AdminUser
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      403  {object}  ErrorResponse
// @Router       /admin/users [get]
// @Security     BearerAuth
func (c *AdminUserController) GetAdminUsers() {
	adminService := c.Container.GetService("admin_user").(services.InterfaceAdminUserService)
	users, err := adminService.GetAllAdminUsers(middleware.CurrentUserID(c.Ctx))
	if err != nil {
		respondError(c.Ctx, err)
		return
	}
	respondSuccess(c.Ctx, users)
}

// ToggleAdminStatus 切换管理员状态
// @Summary      切换管理员状态
// @Tags         AdminUser
// @Accept       json
// @Produce      json
// @Param        userId path string true "用户ID"
// @Param        request body ToggleAdminRequest true "目标状态"
// @Success      200  {object}  map[string]interface{}
// @Failure      403  {object}  ErrorResponse
// @Router       /admin/users/{userId}/admin [put]
// @Security     BearerAuth
func (c *AdminUserController) ToggleAdminStatus() {
	userID := c.Ctx.Param("userId")

	var req ToggleAdminRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil || req.IsAdmin == nil {
		c.Ctx.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "目标管理员状态是必需的",
			"data":    nil,
		})
		return
	}

	adminService := c.Container.GetService("admin_user").(services.InterfaceAdminUserService)
	err := adminService.ToggleAdminStatus(middleware.CurrentUserID(c.Ctx), userID, *req.IsAdmin)
	if err != nil {
		respondError(c.Ctx, err)
		return
	}
	respondSuccess(c.Ctx, nil)
}

// DeleteAdminUser 删除管理员用户
// @Summary      删除管理员用户
// @Tags         AdminUser
// @Produce      json
// @Param        userId path string true "用户ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      403  {object}  ErrorResponse
// @Router       /admin/users/{userId} [delete]
// @Security     BearerAuth
func (c *AdminUserController) DeleteAdminUser() {
	userID := c.Ctx.Param("userId")

	adminService := c.Container.GetService("admin_user").(services.InterfaceAdminUserService)
	err := adminService.DeleteAdminUser(middleware.CurrentUserID(c.Ctx), userID)
	if err != nil {
		respondError(c.Ctx, err)
		return
	}
	respondSuccess(c.Ctx, nil)
}
