package services

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chinaharsle/stock-machine/config"
	"github.com/chinaharsle/stock-machine/models"
	"github.com/chinaharsle/stock-machine/utils"

	"gorm.io/gorm"
)

// MediaType 媒体库文件类别
const (
	MediaTypeImage   = "image"
	MediaTypeDrawing = "drawing"
)

// MediaFile 媒体库条目，来源是机器记录中引用的文件URL
type MediaFile struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

// InterfaceMediaService 定义媒体文件服务接口
type InterfaceMediaService interface {
	SaveUpload(actorID, uploadType, originalName string, save func(dst string) error) (string, error)
	ListMediaFiles(actorID, mediaType string) ([]MediaFile, error)
}

// MediaService 管理上传文件与媒体库
type MediaService struct {
	DB           *gorm.DB
	Config       *config.Config
	AdminService InterfaceAdminUserService
}

// NewMediaService 创建媒体服务
func NewMediaService(db *gorm.DB, cfg *config.Config, adminService InterfaceAdminUserService) *MediaService {
	return &MediaService{
		DB:           db,
		Config:       cfg,
		AdminService: adminService,
	}
}

// SaveUpload 保存上传文件到本地磁盘，返回可访问的URL路径。
// save回调由控制器提供，负责把multipart内容写到目标位置。
func (s *MediaService) SaveUpload(actorID, uploadType, originalName string, save func(dst string) error) (string, error) {
	if !s.AdminService.IsUserAdmin(actorID) {
		return "", ErrForbidden
	}
	if originalName == "" {
		return "", fmt.Errorf("%w: 未选择文件", ErrInvalidArgument)
	}

	subDir := "images"
	if uploadType == MediaTypeDrawing {
		subDir = "drawings"
	}

	fileName := utils.RandomFileName(originalName)
	relPath := filepath.Join(actorID, subDir, fileName)
	absPath := filepath.Join(s.Config.UploadDir, relPath)

	if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
		return "", fmt.Errorf("创建上传目录失败: %w", err)
	}
	if err := save(absPath); err != nil {
		return "", fmt.Errorf("保存上传文件失败: %w", err)
	}

	return fmt.Sprintf("%s/uploads/%s", s.Config.SiteURL, filepath.ToSlash(relPath)), nil
}

// ListMediaFiles 汇总机器记录中引用的图片和图纸URL
func (s *MediaService) ListMediaFiles(actorID, mediaType string) ([]MediaFile, error) {
	if !s.AdminService.IsUserAdmin(actorID) {
		return nil, ErrForbidden
	}

	var machines []models.Machine
	if err := s.DB.Order("created_at DESC").Find(&machines).Error; err != nil {
		return nil, err
	}

	var files []MediaFile
	for _, machine := range machines {
		if mediaType == "" || mediaType == MediaTypeImage {
			for i, url := range machine.ImageURLs {
				files = append(files, MediaFile{
					ID:        fmt.Sprintf("img_%s_%d", machine.ID, i),
					URL:       url,
					Name:      fmt.Sprintf("%s - 产品图片", machine.Model),
					Type:      MediaTypeImage,
					Source:    "machine",
					CreatedAt: machine.CreatedAt,
				})
			}
		}
		if (mediaType == "" || mediaType == MediaTypeDrawing) && machine.ToolingDrawingURL != "" {
			files = append(files, MediaFile{
				ID:        fmt.Sprintf("drw_%s", machine.ID),
				URL:       machine.ToolingDrawingURL,
				Name:      fmt.Sprintf("%s - 工装图纸", machine.Model),
				Type:      MediaTypeDrawing,
				Source:    "machine",
				CreatedAt: machine.CreatedAt,
			})
		}
	}
	return files, nil
}
