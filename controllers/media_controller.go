package controllers

import (
	"net/http"

	"github.com/chinaharsle/stock-machine/middleware"
	"github.com/chinaharsle/stock-machine/services"
	"github.com/chinaharsle/stock-machine/services/container"

	"github.com/gin-gonic/gin"
)

// InterfaceMediaController 定义媒体控制器接口
type InterfaceMediaController interface {
	UploadFile()
	ListMediaFiles()
}

// MediaController 媒体控制器
type MediaController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewMediaController 创建一个新的媒体控制器
func NewMediaController(ctx *gin.Context, container *container.ServiceContainer) *MediaController {
	return &MediaController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleMediaFunc 返回一个处理媒体请求的Gin处理函数
func HandleMediaFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewMediaController(ctx, container)

		switch method {
		case "uploadFile":
			controller.UploadFile()
		case "listMediaFiles":
			controller.ListMediaFiles()
		default:
			ctx.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "无效的方法",
				"data":    nil,
			})
		}
	}
}

// UploadFile 上传文件
// @Summary      上传文件
// @Description  上传机器图片或模具图纸，返回可访问的URL
// @Tags         Media
// @Accept       multipart/form-data
// @Produce      json
// @Param        file formData file true "文件"
// @Param        type formData string false "上传类型" Enums(image, drawing)
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Router       /admin/upload [post]
// @Security     BearerAuth
func (c *MediaController) UploadFile() {
	file, err := c.Ctx.FormFile("file")
	if err != nil {
		c.Ctx.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "上传文件是必需的",
			"data":    nil,
		})
		return
	}

	uploadType := c.Ctx.DefaultPostForm("type", services.MediaTypeImage)

	mediaService := c.Container.GetService("media").(services.InterfaceMediaService)
	url, err := mediaService.SaveUpload(
		middleware.CurrentUserID(c.Ctx),
		uploadType,
		file.Filename,
		func(dst string) error {
			return c.Ctx.SaveUploadedFile(file, dst)
		},
	)
	if err != nil {
		respondError(c.Ctx, err)
		return
	}
	respondSuccess(c.Ctx, gin.H{"url": url})
}

// ListMediaFiles 获取媒体库文件列表
// @Summary      获取媒体库文件列表
// @Tags         Media
// @Produce      json
// @Param        type query string false "媒体类型" Enums(image, drawing)
// @Success      200  {object}  map[string]interface{}
// @Failure      403  {object}  ErrorResponse
// @Router       /admin/media [get]
// @Security     BearerAuth
func (c *MediaController) ListMediaFiles() {
	mediaType := c.Ctx.DefaultQuery("type", services.MediaTypeImage)

	mediaService := c.Container.GetService("media").(services.InterfaceMediaService)
	files, err := mediaService.ListMediaFiles(middleware.CurrentUserID(c.Ctx), mediaType)
	if err != nil {
		respondError(c.Ctx, err)
		return
	}
	respondSuccess(c.Ctx, files)
}
