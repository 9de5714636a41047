package controllers

import (
	"net/http"

	"github.com/chinaharsle/stock-machine/middleware"
	"github.com/chinaharsle/stock-machine/models"
	"github.com/chinaharsle/stock-machine/services"
	"github.com/chinaharsle/stock-machine/services/container"

	"github.com/gin-gonic/gin"
)

// InterfaceInquiryController 定义询盘控制器接口
type InterfaceInquiryController interface {
	SubmitInquiry()
	GetInquiries()
	UpdateInquiryStatus()
	DeleteInquiry()
}

// InquiryController 询盘控制器
type InquiryController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewInquiryController 创建一个新的询盘控制器
func NewInquiryController(ctx *gin.Context, container *container.ServiceContainer) *InquiryController {
	return &InquiryController{
		Ctx:       ctx,
		Container: container,
	}
}

// SubmitInquiryRequest 公开站点提交询盘请求
type SubmitInquiryRequest struct {
	FullName     string `json:"full_name" binding:"required"`
	Email        string `json:"email" binding:"required"`
	Phone        string `json:"phone"`
	CompanyName  string `json:"company_name"`
	Message      string `json:"message"`
	ProductModel string `json:"product_model"`
	Country      string `json:"country"`
}

// UpdateInquiryStatusRequest 更新询盘状态请求
type UpdateInquiryStatusRequest struct {
	Status string `json:"status" binding:"required" example:"replied"`
}

// HandleInquiryFunc 返回一个处理询盘请求的Gin处理函数
func HandleInquiryFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewInquiryController(ctx, container)

		switch method {
		case "submitInquiry":
			controller.SubmitInquiry()
		case "getInquiries":
			controller.GetInquiries()
		case "updateStatus":
			controller.UpdateInquiryStatus()
		case "deleteInquiry":
			controller.DeleteInquiry()
		default:
			ctx.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "无效的方法",
				"data":    nil,
			})
		}
	}
}

// SubmitInquiry 提交询盘
// @Summary      提交询盘
// @Description  公开站点的询盘入口，落库后异步通知销售邮箱和管理端MQTT
// @Tags         Inquiry
// @Accept       json
// @Produce      json
// @Param        request body SubmitInquiryRequest true "询盘信息"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Router       /inquiries [post]
func (c *InquiryController) SubmitInquiry() {
	var req SubmitInquiryRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		c.Ctx.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "姓名和邮箱是必需的",
			"data":    nil,
		})
		return
	}

	inquiry := &models.Inquiry{
		FullName:     req.FullName,
		Email:        req.Email,
		Phone:        req.Phone,
		CompanyName:  req.CompanyName,
		Message:      req.Message,
		ProductModel: req.ProductModel,
		Country:      req.Country,
		IPAddress:    c.Ctx.ClientIP(),
		Status:       models.InquiryStatusPending,
	}

	inquiryService := c.Container.GetService("inquiry").(services.InterfaceInquiryService)
	if err := inquiryService.SubmitInquiry(inquiry); err != nil {
		respondError(c.Ctx, err)
		return
	}
	respondSuccess(c.Ctx, gin.H{"id": inquiry.ID})
}

// GetInquiries 获取询盘列表
// @Summary      获取询盘列表
// @Description  管理端分页查看询盘，可按状态过滤
// @Tags         Inquiry
// @Produce      json
// @Param        status query string false "询盘状态" Enums(pending, processing, replied, closed)
// @Param        pageNum query int false "页码"
// @Param        pageSize query int false "每页数量"
// @Param        desc query bool false "按提交时间倒序，默认true"
// @Success      200  {object}  map[string]interface{}
// @Failure      403  {object}  ErrorResponse
// @Router       /admin/inquiries [get]
// @Security     BearerAuth
func (c *InquiryController) GetInquiries() {
	status := c.Ctx.Query("status")

	var page models.PaginationQuery
	if err := c.Ctx.ShouldBindQuery(&page); err != nil {
		c.Ctx.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "分页参数非法: " + err.Error(),
			"data":    nil,
		})
		return
	}
	// 默认按提交时间倒序
	if c.Ctx.Query("desc") == "" {
		page.Desc = true
	}

	inquiryService := c.Container.GetService("inquiry").(services.InterfaceInquiryService)
	inquiries, pagination, err := inquiryService.GetInquiries(middleware.CurrentUserID(c.Ctx), status, page)
	if err != nil {
		respondError(c.Ctx, err)
		return
	}
	respondSuccess(c.Ctx, gin.H{
		"inquiries":  inquiries,
		"pagination": pagination,
	})
}

// UpdateInquiryStatus 更新询盘状态
// @Summary      更新询盘状态
// @Tags         Inquiry
// @Accept       json
// @Produce      json
// @Param        id path string true "询盘ID"
// @Param        request body UpdateInquiryStatusRequest true "状态"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Router       /admin/inquiries/{id}/status [put]
// @Security     BearerAuth
func (c *InquiryController) UpdateInquiryStatus() {
	id := c.Ctx.Param("id")

	var req UpdateInquiryStatusRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		c.Ctx.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "询盘状态是必需的",
			"data":    nil,
		})
		return
	}

	inquiryService := c.Container.GetService("inquiry").(services.InterfaceInquiryService)
	err := inquiryService.UpdateInquiryStatus(
		middleware.CurrentUserID(c.Ctx),
		id,
		models.InquiryStatus(req.Status),
	)
	if err != nil {
		respondError(c.Ctx, err)
		return
	}
	respondSuccess(c.Ctx, nil)
}

// DeleteInquiry 删除询盘
// @Summary      删除询盘
// @Tags         Inquiry
// @Produce      json
// @Param        id path string true "询盘ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /admin/inquiries/{id} [delete]
// @Security     BearerAuth
func (c *InquiryController) DeleteInquiry() {
	id := c.Ctx.Param("id")

	inquiryService := c.Container.GetService("inquiry").(services.InterfaceInquiryService)
	if err := inquiryService.DeleteInquiry(middleware.CurrentUserID(c.Ctx), id); err != nil {
		respondError(c.Ctx, err)
		return
	}
	respondSuccess(c.Ctx, nil)
}
