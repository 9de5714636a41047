package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SortDirection 表示相对移动的方向
type SortDirection string

const (
	SortDirectionUp   SortDirection = "up"
	SortDirectionDown SortDirection = "down"
)

// Machine represents a machine in the stock catalog
type Machine struct {
	ID                string      `gorm:"type:varchar(36);primaryKey" json:"id"`
	Model             string      `gorm:"type:varchar(100);unique;not null" json:"model"`
	Stock             int         `gorm:"not null;default:0" json:"stock"`
	ProductionDate    time.Time   `json:"production_date"`
	Specifications    JSONMap     `gorm:"type:text" json:"specifications"`
	ToolingDrawingURL string      `gorm:"type:varchar(500)" json:"tooling_drawing_url,omitempty"`
	ImageURLs         StringArray `gorm:"type:text" json:"image_urls"`
	CreatedBy         string      `gorm:"type:varchar(36)" json:"created_by,omitempty"`
	// 排序位置，全表唯一，静止状态下恒为1..N的排列。
	// 带符号类型：批量平移时用负数区间做过渡，避开唯一索引。
	SortOrder int       `gorm:"uniqueIndex;not null" json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate is a GORM hook that runs before creating a new record
func (m *Machine) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// PublicMachine 公开目录中展示的机器信息（不含管理字段）
type PublicMachine struct {
	ID                string      `json:"id"`
	Model             string      `json:"model"`
	Stock             int         `json:"stock"`
	ProductionDate    time.Time   `json:"production_date"`
	Specifications    JSONMap     `json:"specifications"`
	ToolingDrawingURL string      `json:"tooling_drawing_url,omitempty"`
	ImageURLs         StringArray `json:"image_urls"`
	SortOrder         int         `json:"sort_order"`
}

// ToPublic 转换为公开展示结构
func (m *Machine) ToPublic() PublicMachine {
	return PublicMachine{
		ID:                m.ID,
		Model:             m.Model,
		Stock:             m.Stock,
		ProductionDate:    m.ProductionDate,
		Specifications:    m.Specifications,
		ToolingDrawingURL: m.ToolingDrawingURL,
		ImageURLs:         m.ImageURLs,
		SortOrder:         m.SortOrder,
	}
}
