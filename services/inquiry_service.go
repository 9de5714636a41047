package services

import (
	"fmt"

	"github.com/chinaharsle/stock-machine/config"
	"github.com/chinaharsle/stock-machine/models"

	"gorm.io/gorm"
)

// InterfaceInquiryService 定义询盘服务接口
type InterfaceInquiryService interface {
	SubmitInquiry(inquiry *models.Inquiry) error
	GetInquiries(actorID, status string, page models.PaginationQuery) ([]models.Inquiry, models.PaginationResult, error)
	UpdateInquiryStatus(actorID, id string, status models.InquiryStatus) error
	DeleteInquiry(actorID, id string) error
}

// InquiryService 处理公开站点提交的询盘：落库后异步发送邮件通知，
// 并向管理端MQTT主题推送一条消息。
type InquiryService struct {
	DB           *gorm.DB
	AdminService InterfaceAdminUserService
	Machines     InterfaceMachineService
	Email        InterfaceEmailService
	Notifier     InterfaceNotificationService
}

// NewInquiryService 创建询盘服务
func NewInquiryService(db *gorm.DB, adminService InterfaceAdminUserService, machines InterfaceMachineService, email InterfaceEmailService, notifier InterfaceNotificationService) *InquiryService {
	return &InquiryService{
		DB:           db,
		AdminService: adminService,
		Machines:     machines,
		Email:        email,
		Notifier:     notifier,
	}
}

// SubmitInquiry 保存询盘并触发通知。通知失败只记日志，不影响提交结果。
func (s *InquiryService) SubmitInquiry(inquiry *models.Inquiry) error {
	if inquiry.FullName == "" || inquiry.Email == "" {
		return fmt.Errorf("%w: 询盘数据不完整", ErrInvalidArgument)
	}
	if inquiry.Status == "" {
		inquiry.Status = models.InquiryStatusPending
	}

	// 附上产品规格，便于邮件里直接展示
	var specs models.JSONMap
	if inquiry.ProductModel != "" && s.Machines != nil {
		if machine, err := s.Machines.GetMachineByModel(inquiry.ProductModel); err == nil {
			specs = machine.Specifications
		}
	}

	if err := s.DB.Create(inquiry).Error; err != nil {
		return err
	}

	if s.Email != nil {
		go func(in models.Inquiry, specs models.JSONMap) {
			if err := s.Email.SendInquiryNotification(&in, specs); err != nil {
				config.Error("发送询盘通知邮件失败: %v", err)
			}
		}(*inquiry, specs)
	}
	if s.Notifier != nil {
		if err := s.Notifier.PublishInquiryNotification(inquiry); err != nil {
			config.Warning("推送询盘MQTT通知失败: %v", err)
		}
	}
	return nil
}

// GetInquiries 分页获取询盘列表，可按状态过滤（仅管理员可用）
func (s *InquiryService) GetInquiries(actorID, status string, page models.PaginationQuery) ([]models.Inquiry, models.PaginationResult, error) {
	empty := models.PaginationResult{}
	if !s.AdminService.IsUserAdmin(actorID) {
		return nil, empty, ErrForbidden
	}

	if page.PageNum < 1 {
		page.PageNum = 1
	}
	if page.PageSize < 1 || page.PageSize > 100 {
		page.PageSize = 20
	}

	query := s.DB.Model(&models.Inquiry{})
	if status != "" && status != "all" {
		if !models.InquiryStatus(status).Valid() {
			return nil, empty, fmt.Errorf("%w: 非法的询盘状态 %s", ErrInvalidArgument, status)
		}
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, empty, err
	}

	order := "created_at ASC"
	if page.Desc {
		order = "created_at DESC"
	}

	var inquiries []models.Inquiry
	err := query.Order(order).
		Offset((page.PageNum - 1) * page.PageSize).
		Limit(page.PageSize).
		Find(&inquiries).Error
	if err != nil {
		return nil, empty, err
	}
	return inquiries, models.NewPaginationResult(int(total), page.PageNum, page.PageSize), nil
}

// UpdateInquiryStatus 更新询盘处理状态（仅管理员可用）
func (s *InquiryService) UpdateInquiryStatus(actorID, id string, status models.InquiryStatus) error {
	if !s.AdminService.IsUserAdmin(actorID) {
		return ErrForbidden
	}
	if !status.Valid() {
		return fmt.Errorf("%w: 非法的询盘状态 %s", ErrInvalidArgument, status)
	}

	result := s.DB.Model(&models.Inquiry{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: 询盘不存在", ErrNotFound)
	}
	return nil
}

// DeleteInquiry 删除询盘（仅管理员可用）
func (s *InquiryService) DeleteInquiry(actorID, id string) error {
	if !s.AdminService.IsUserAdmin(actorID) {
		return ErrForbidden
	}

	result := s.DB.Where("id = ?", id).Delete(&models.Inquiry{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: 询盘不存在", ErrNotFound)
	}
	return nil
}
