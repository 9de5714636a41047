package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AdminUser 管理员身份记录，每个user_id至多一行
type AdminUser struct {
	ID        string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID    string     `gorm:"type:varchar(36);uniqueIndex;not null" json:"user_id"`
	Email     string     `gorm:"type:varchar(100);not null" json:"email"`
	Name      string     `gorm:"type:varchar(100)" json:"name,omitempty"`
	IsAdmin   bool       `gorm:"not null;default:false" json:"is_admin"`
	LastLogin *time.Time `json:"last_login,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// BeforeCreate is a GORM hook that runs before creating a new record
func (a *AdminUser) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// BootstrapMarkerName 首位管理员引导标记的固定键名
const BootstrapMarkerName = "first_admin"

// BootstrapMarker 首位管理员引导的持久化仲裁记录。
// name列的唯一约束保证并发引导时只有一次插入能成功。
type BootstrapMarker struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
	UserID    string    `gorm:"type:varchar(36);not null" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
