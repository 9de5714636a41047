package controllers

import (
	"net/http"

	"github.com/chinaharsle/stock-machine/middleware"
	"github.com/chinaharsle/stock-machine/models"
	"github.com/chinaharsle/stock-machine/services"
	"github.com/chinaharsle/stock-machine/services/container"

	"github.com/gin-gonic/gin"
)

// InterfaceBannerController 定义横幅控制器接口
type InterfaceBannerController interface {
	GetActiveBanners()
	GetAllBanners()
	CreateBanner()
	UpdateBanner()
	DeleteBanner()
}

// BannerController 横幅控制器
type BannerController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewBannerController 创建一个新的横幅控制器
func NewBannerController(ctx *gin.Context, container *container.ServiceContainer) *BannerController {
	return &BannerController{
		Ctx:       ctx,
		Container: container,
	}
}

// BannerRequest 横幅创建/更新请求
type BannerRequest struct {
	Title              string `json:"title" binding:"required"`
	Subtitle           string `json:"subtitle"`
	BackgroundImageURL string `json:"background_image_url"`
	BackgroundStyle    string `json:"background_style"`
	DisplayOrder       int    `json:"display_order"`
	IsActive           *bool  `json:"is_active"`
}

// HandleBannerFunc 返回一个处理横幅请求的Gin处理函数
func HandleBannerFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewBannerController(ctx, container)

		switch method {
		case "getActiveBanners":
			controller.GetActiveBanners()
		case "getAllBanners":
			controller.GetAllBanners()
		case "createBanner":
			controller.CreateBanner()
		case "updateBanner":
			controller.UpdateBanner()
		case "deleteBanner":
			controller.DeleteBanner()
		default:
			ctx.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "无效的方法",
				"data":    nil,
			})
		}
	}
}

// GetActiveBanners 获取启用中的横幅
// @Summary      获取启用中的横幅
// @Tags         Banner
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /banners [get]
func (c *BannerController) GetActiveBanners() {
	bannerService := c.Container.GetService("banner").(services.InterfaceBannerService)
	banners, err := bannerService.GetActiveBanners()
	if err != nil {
		respondError(c.Ctx, err)
		return
	}
	respondSuccess(c.Ctx, banners)
}

// GetAllBanners 获取全部横幅（管理端）
// @Summary      获取全部横幅
// @Tags         Banner
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /admin/banners [get]
// @Security     BearerAuth
func (c *BannerController) GetAllBanners() {
	bannerService := c.Container.GetService("banner").(services.InterfaceBannerService)
	banners, err := bannerService.GetAllBanners()
	if err != nil {
		respondError(c.Ctx, err)
		return
	}
	respondSuccess(c.Ctx, banners)
}

// CreateBanner 创建横幅
// @Summary      创建横幅
// @Tags         Banner
// @Accept       json
// @Produce      json
// @Param        request body BannerRequest true "横幅信息"
// @Success      200  {object}  map[string]interface{}
// @Failure      403  {object}  ErrorResponse
// @Router       /admin/banners [post]
// @Security     BearerAuth
func (c *BannerController) CreateBanner() {
	var req BannerRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		c.Ctx.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "请求参数绑定错误: " + err.Error(),
			"data":    nil,
		})
		return
	}

	banner := &models.Banner{
		Title:              req.Title,
		Subtitle:           req.Subtitle,
		BackgroundImageURL: req.BackgroundImageURL,
		BackgroundStyle:    req.BackgroundStyle,
		DisplayOrder:       req.DisplayOrder,
	}
	if req.IsActive != nil {
		banner.IsActive = *req.IsActive
	} else {
		banner.IsActive = true
	}

	bannerService := c.Container.GetService("banner").(services.InterfaceBannerService)
	if err := bannerService.CreateBanner(middleware.CurrentUserID(c.Ctx), banner); err != nil {
		respondError(c.Ctx, err)
		return
	}
	respondSuccess(c.Ctx, banner)
}

// UpdateBanner 更新横幅
// @Summary      更新横幅
// @Tags         Banner
// @Accept       json
// @Produce      json
// @Param        id path string true "横幅ID"
// @Param        request body BannerRequest true "更新字段"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /admin/banners/{id} [put]
// @Security     BearerAuth
func (c *BannerController) UpdateBanner() {
	id := c.Ctx.Param("id")

	var req BannerRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		c.Ctx.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "请求参数绑定错误: " + err.Error(),
			"data":    nil,
		})
		return
	}

	updates := map[string]interface{}{
		"title":                req.Title,
		"subtitle":             req.Subtitle,
		"background_image_url": req.BackgroundImageURL,
		"background_style":     req.BackgroundStyle,
		"display_order":        req.DisplayOrder,
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	bannerService := c.Container.GetService("banner").(services.InterfaceBannerService)
	banner, err := bannerService.UpdateBanner(middleware.CurrentUserID(c.Ctx), id, updates)
	if err != nil {
		respondError(c.Ctx, err)
		return
	}
	respondSuccess(c.Ctx, banner)
}

// DeleteBanner 删除横幅
// @Summary      删除横幅
// @Tags         Banner
// @Produce      json
// @Param        id path string true "横幅ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /admin/banners/{id} [delete]
// @Security     BearerAuth
func (c *BannerController) DeleteBanner() {
	id := c.Ctx.Param("id")

	bannerService := c.Container.GetService("banner").(services.InterfaceBannerService)
	if err := bannerService.DeleteBanner(middleware.CurrentUserID(c.Ctx), id); err != nil {
		respondError(c.Ctx, err)
		return
	}
	respondSuccess(c.Ctx, nil)
}
