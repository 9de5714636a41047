package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InquiryStatus 询盘处理状态
type InquiryStatus string

const (
	InquiryStatusPending    InquiryStatus = "pending"
	InquiryStatusProcessing InquiryStatus = "processing"
	InquiryStatusReplied    InquiryStatus = "replied"
	InquiryStatusClosed     InquiryStatus = "closed"
)

// Inquiry represents a customer inquiry submitted from the public site
type Inquiry struct {
	BaseModel
	FullName     string        `gorm:"type:varchar(100);not null" json:"full_name"`
	Email        string        `gorm:"type:varchar(100);not null" json:"email"`
	Phone        string        `gorm:"type:varchar(50)" json:"phone"`
	CompanyName  string        `gorm:"type:varchar(200)" json:"company_name,omitempty"`
	Message      string        `gorm:"type:text" json:"message"`
	ProductModel string        `gorm:"type:varchar(100)" json:"product_model,omitempty"`
	IPAddress    string        `gorm:"type:varchar(50)" json:"ip_address,omitempty"`
	Country      string        `gorm:"type:varchar(100)" json:"country,omitempty"`
	Status       InquiryStatus `gorm:"type:varchar(20);default:'pending'" json:"status"`
}

// BeforeCreate is a GORM hook that runs before creating a new record
func (i *Inquiry) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// ValidStatus 检查状态值是否合法
func (s InquiryStatus) Valid() bool {
	switch s {
	case InquiryStatusPending, InquiryStatusProcessing, InquiryStatusReplied, InquiryStatusClosed:
		return true
	}
	return false
}
