package controllers

import (
	"net/http"
	"time"

	"github.com/chinaharsle/stock-machine/middleware"
	"github.com/chinaharsle/stock-machine/models"
	"github.com/chinaharsle/stock-machine/services"
	"github.com/chinaharsle/stock-machine/services/container"

	"github.com/gin-gonic/gin"
)

// InterfaceMachineController 定义机器控制器接口
type InterfaceMachineController interface {
	GetMachines()
	GetPublicMachines()
	GetMachineByModel()
	CreateMachine()
	UpdateMachine()
	DeleteMachine()
	MoveMachinePosition()
	SetMachineSortOrder()
	ReorderMachines()
}

// MachineController 机器控制器
type MachineController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewMachineController 创建一个新的机器控制器
func NewMachineController(ctx *gin.Context, container *container.ServiceContainer) *MachineController {
	return &MachineController{
		Ctx:       ctx,
		Container: container,
	}
}

// CreateMachineRequest 创建机器请求
type CreateMachineRequest struct {
	Model             string            `json:"model" binding:"required" example:"HARSLE-WC67K"`
	Stock             int               `json:"stock" example:"3"`
	ProductionDate    string            `json:"production_date" example:"2024-06-01"`
	Specifications    map[string]string `json:"specifications"`
	ToolingDrawingURL string            `json:"tooling_drawing_url"`
	ImageURLs         []string          `json:"image_urls"`
}

// UpdateMachineRequest 更新机器请求
type UpdateMachineRequest struct {
	Model             *string            `json:"model"`
	Stock             *int               `json:"stock"`
	ProductionDate    *string            `json:"production_date"`
	Specifications    *map[string]string `json:"specifications"`
	ToolingDrawingURL *string            `json:"tooling_drawing_url"`
	ImageURLs         *[]string          `json:"image_urls"`
}

// MoveMachineRequest 相对移动请求
type MoveMachineRequest struct {
	MachineID string `json:"machineId" binding:"required"`
	Direction string `json:"direction" binding:"required" example:"up"`
}

// SetSortOrderRequest 指定排序位置请求
type SetSortOrderRequest struct {
	MachineID string `json:"machineId" binding:"required"`
	SortOrder int    `json:"sortOrder" binding:"required" example:"2"`
}

// ReorderMachinesRequest 整体重排请求
type ReorderMachinesRequest struct {
	MachineIDs []string `json:"machineIds" binding:"required"`
}

// HandleMachineFunc 返回一个处理机器请求的Gin处理函数
func HandleMachineFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewMachineController(ctx, container)

		switch method {
		case "getMachines":
			controller.GetMachines()
		case "getPublicMachines":
			controller.GetPublicMachines()
		case "getMachineByModel":
			controller.GetMachineByModel()
		case "createMachine":
			controller.CreateMachine()
		case "updateMachine":
			controller.UpdateMachine()
		case "deleteMachine":
			controller.DeleteMachine()
		case "movePosition":
			controller.MoveMachinePosition()
		case "setSortOrder":
			controller.SetMachineSortOrder()
		case "reorder":
			controller.ReorderMachines()
		default:
			ctx.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "无效的方法",
				"data":    nil,
			})
		}
	}
}

// GetMachines 获取机器列表（管理端）
// @Summary      获取机器列表
// @Description  按排序位置获取全部机器
// @Tags         Machine
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  ErrorResponse
// @Router       /admin/machines [get]
// @Security     BearerAuth
func (c *MachineController) GetMachines() {
	machineService := c.Container.GetService("machine").(services.InterfaceMachineService)
	machines, err := machineService.GetAllMachines()
	if err != nil {
		respondError(c.Ctx, err)
		return
	}
	respondSuccess(c.Ctx, machines)
}

// GetPublicMachines 获取公开机器目录
// @Summary      获取公开机器目录
// @Description  公开站点的机器列表，按排序位置排列
// @Tags         Machine
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /machines [get]
func (c *MachineController) GetPublicMachines() {
	machineService := c.Container.GetService("machine").(services.InterfaceMachineService)
	machines, err := machineService.GetPublicMachines()
	if err != nil {
		respondError(c.Ctx, err)
		return
	}
	respondSuccess(c.Ctx, machines)
}

// GetMachineByModel 根据型号获取机器
// @Summary      根据型号获取机器
// @Tags         Machine
// @Produce      json
// @Param        model query string true "产品型号"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /machines/by-model [get]
func (c *MachineController) GetMachineByModel() {
	model := c.Ctx.Query("model")
	if model == "" {
		c.Ctx.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "产品型号是必需的",
			"data":    nil,
		})
		return
	}

	machineService := c.Container.GetService("machine").(services.InterfaceMachineService)
	machine, err := machineService.GetMachineByModel(model)
	if err != nil {
		respondError(c.Ctx, err)
		return
	}
	respondSuccess(c.Ctx, gin.H{
		"model":          machine.Model,
		"specifications": machine.Specifications,
		"toolingDrawing": machine.ToolingDrawingURL,
		"images":         machine.ImageURLs,
	})
}

// CreateMachine 创建机器
// @Summary      创建机器
// @Description  创建机器并追加到目录末尾
// @Tags         Machine
// @Accept       json
// @Produce      json
// @Param        request body CreateMachineRequest true "机器信息"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /admin/machines [post]
// @Security     BearerAuth
func (c *MachineController) CreateMachine() {
	var req CreateMachineRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		c.Ctx.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "请求参数绑定错误: " + err.Error(),
			"data":    nil,
		})
		return
	}

	machine := &models.Machine{
		Model:             req.Model,
		Stock:             req.Stock,
		Specifications:    req.Specifications,
		ToolingDrawingURL: req.ToolingDrawingURL,
		ImageURLs:         req.ImageURLs,
	}
	if req.ProductionDate != "" {
		if date, err := time.Parse("2006-01-02", req.ProductionDate); err == nil {
			machine.ProductionDate = date
		}
	}

	machineService := c.Container.GetService("machine").(services.InterfaceMachineService)
	if err := machineService.CreateMachine(middleware.CurrentUserID(c.Ctx), machine); err != nil {
		respondError(c.Ctx, err)
		return
	}
	respondSuccess(c.Ctx, machine)
}

// UpdateMachine 更新机器
// @Summary      更新机器
// @Description  更新机器的非排序字段
// @Tags         Machine
// @Accept       json
// @Produce      json
// @Param        id path string true "机器ID"
// @Param        request body UpdateMachineRequest true "更新字段"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /admin/machines/{id} [put]
// @Security     BearerAuth
func (c *MachineController) UpdateMachine() {
	id := c.Ctx.Param("id")

	var req UpdateMachineRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		c.Ctx.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "请求参数绑定错误: " + err.Error(),
			"data":    nil,
		})
		return
	}

	updates := map[string]interface{}{}
	if req.Model != nil {
		updates["model"] = *req.Model
	}
	if req.Stock != nil {
		updates["stock"] = *req.Stock
	}
	if req.ProductionDate != nil {
		if date, err := time.Parse("2006-01-02", *req.ProductionDate); err == nil {
			updates["production_date"] = date
		}
	}
	if req.Specifications != nil {
		updates["specifications"] = models.JSONMap(*req.Specifications)
	}
	if req.ToolingDrawingURL != nil {
		updates["tooling_drawing_url"] = *req.ToolingDrawingURL
	}
	if req.ImageURLs != nil {
		updates["image_urls"] = models.StringArray(*req.ImageURLs)
	}

	machineService := c.Container.GetService("machine").(services.InterfaceMachineService)
	machine, err := machineService.UpdateMachine(middleware.CurrentUserID(c.Ctx), id, updates)
	if err != nil {
		respondError(c.Ctx, err)
		return
	}
	respondSuccess(c.Ctx, machine)
}

// DeleteMachine 删除机器
// @Summary      删除机器
// @Description  删除机器并收紧后续机器的排序位置
// @Tags         Machine
// @Produce      json
// @Param        id path string true "机器ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /admin/machines/{id} [delete]
// @Security     BearerAuth
func (c *MachineController) DeleteMachine() {
	id := c.Ctx.Param("id")

	machineService := c.Container.GetService("machine").(services.InterfaceMachineService)
	if err := machineService.DeleteMachine(middleware.CurrentUserID(c.Ctx), id); err != nil {
		respondError(c.Ctx, err)
		return
	}
	respondSuccess(c.Ctx, nil)
}

// MoveMachinePosition 上移/下移机器
// @Summary      移动机器位置
// @Description  将机器与相邻机器交换排序位置
// @Tags         Machine
// @Accept       json
// @Produce      json
// @Param        request body MoveMachineRequest true "移动请求"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /admin/machines/reorder [post]
// @Security     BearerAuth
func (c *MachineController) MoveMachinePosition() {
	var req MoveMachineRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		c.Ctx.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "机器ID和移动方向是必需的",
			"data":    nil,
		})
		return
	}

	positionService := c.Container.GetService("position").(services.InterfacePositionService)
	err := positionService.MoveMachinePosition(
		middleware.CurrentUserID(c.Ctx),
		req.MachineID,
		models.SortDirection(req.Direction),
	)
	if err != nil {
		respondError(c.Ctx, err)
		return
	}
	respondSuccess(c.Ctx, nil)
}

// SetMachineSortOrder 设置机器的排序位置
// @Summary      设置排序位置
// @Description  把机器放到指定排序位置，其间机器整体平移
// @Tags         Machine
// @Accept       json
// @Produce      json
// @Param        request body SetSortOrderRequest true "排序请求"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Router       /admin/machines/reorder [put]
// @Security     BearerAuth
func (c *MachineController) SetMachineSortOrder() {
	var req SetSortOrderRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		c.Ctx.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "机器ID和有效的排序号是必需的",
			"data":    nil,
		})
		return
	}

	positionService := c.Container.GetService("position").(services.InterfacePositionService)
	err := positionService.SetMachineSortOrder(
		middleware.CurrentUserID(c.Ctx),
		req.MachineID,
		req.SortOrder,
	)
	if err != nil {
		respondError(c.Ctx, err)
		return
	}
	respondSuccess(c.Ctx, nil)
}

// ReorderMachines 整体重排机器
// @Summary      整体重排
// @Description  按给定的完整ID序列重排全部机器
// @Tags         Machine
// @Accept       json
// @Produce      json
// @Param        request body ReorderMachinesRequest true "重排请求"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Router       /admin/machines/reorder [patch]
// @Security     BearerAuth
func (c *MachineController) ReorderMachines() {
	var req ReorderMachinesRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		c.Ctx.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "机器ID列表是必需的",
			"data":    nil,
		})
		return
	}

	positionService := c.Container.GetService("position").(services.InterfacePositionService)
	err := positionService.ReorderMachines(middleware.CurrentUserID(c.Ctx), req.MachineIDs)
	if err != nil {
		respondError(c.Ctx, err)
		return
	}
	respondSuccess(c.Ctx, nil)
}
