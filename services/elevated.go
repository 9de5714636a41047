package services

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/chinaharsle/stock-machine/models"

	"gorm.io/gorm"
)

// ElevatedStore 是绕过普通行级权限的受限能力对象，对应原系统中
// 使用service role密钥创建的管理客户端。只有排序服务和管理员身份
// 服务持有它；它只暴露固定的几类操作，不接受任意查询。
type ElevatedStore struct {
	db *gorm.DB
}

// NewElevatedStore 创建受限存储能力对象
func NewElevatedStore(db *gorm.DB) *ElevatedStore {
	return &ElevatedStore{db: db}
}

// ElevatedOps 固定操作集。事务内外共用同一组方法。
type ElevatedOps struct {
	tx *gorm.DB
}

// Ops 返回非事务的固定操作集（只用于单条读）
func (s *ElevatedStore) Ops() *ElevatedOps {
	return &ElevatedOps{tx: s.db}
}

// WithTransaction 在一个可串行化事务内执行fn。fn返回错误时整体回滚，
// 不会残留任何部分写入。
func (s *ElevatedStore) WithTransaction(fn func(ops *ElevatedOps) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&ElevatedOps{tx: tx})
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})
}

// MachinePosition 排序引擎关心的机器行视图
type MachinePosition struct {
	ID        string
	SortOrder int
}

// ListMachinePositions 按排序位置升序读取全部机器的(id, sort_order)
func (o *ElevatedOps) ListMachinePositions() ([]MachinePosition, error) {
	var rows []MachinePosition
	err := o.tx.Model(&models.Machine{}).
		Select("id", "sort_order").
		Order("sort_order ASC").
		Find(&rows).Error
	return rows, err
}

// GetMachinePosition 读取单台机器的排序位置
func (o *ElevatedOps) GetMachinePosition(machineID string) (MachinePosition, error) {
	var row MachinePosition
	err := o.tx.Model(&models.Machine{}).
		Select("id", "sort_order").
		Where("id = ?", machineID).
		Take(&row).Error
	return row, err
}

// CountMachines 统计机器总数
func (o *ElevatedOps) CountMachines() (int64, error) {
	var count int64
	err := o.tx.Model(&models.Machine{}).Count(&count).Error
	return count, err
}

// NegateMachinePositions 把给定机器的排序位置取负，腾出正数区间。
// 负数区间始终空闲，批量更新不会触发唯一索引的瞬时冲突。
func (o *ElevatedOps) NegateMachinePositions(machineIDs []string) error {
	if len(machineIDs) == 0 {
		return nil
	}
	return o.tx.Model(&models.Machine{}).
		Where("id IN ?", machineIDs).
		UpdateColumn("sort_order", gorm.Expr("-sort_order")).Error
}

// AssignMachinePosition 写入单台机器的最终排序位置
func (o *ElevatedOps) AssignMachinePosition(machineID string, sortOrder int) error {
	result := o.tx.Model(&models.Machine{}).
		Where("id = ?", machineID).
		UpdateColumn("sort_order", sortOrder)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CreateMachine 插入一条机器记录（排序位置由调用方在同一事务内算好）
func (o *ElevatedOps) CreateMachine(machine *models.Machine) error {
	return o.tx.Create(machine).Error
}

// DeleteMachine 删除一条机器记录
func (o *ElevatedOps) DeleteMachine(machineID string) error {
	result := o.tx.Where("id = ?", machineID).Delete(&models.Machine{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CloseMachineGap 删除机器后把其后的所有位置前移一位（两段式更新）
func (o *ElevatedOps) CloseMachineGap(deletedOrder int) error {
	// 先整体移入负数区间并完成-1偏移
	if err := o.tx.Model(&models.Machine{}).
		Where("sort_order > ?", deletedOrder).
		UpdateColumn("sort_order", gorm.Expr("-(sort_order - 1)")).Error; err != nil {
		return err
	}
	// 再翻回正数区间
	return o.tx.Model(&models.Machine{}).
		Where("sort_order < 0").
		UpdateColumn("sort_order", gorm.Expr("-sort_order")).Error
}

// GetAdminByUserID 按user_id读取管理员身份记录
func (o *ElevatedOps) GetAdminByUserID(userID string) (*models.AdminUser, error) {
	var admin models.AdminUser
	if err := o.tx.Where("user_id = ?", userID).Take(&admin).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

// CountAdmins 统计is_admin=true的身份记录数
func (o *ElevatedOps) CountAdmins() (int64, error) {
	var count int64
	err := o.tx.Model(&models.AdminUser{}).Where("is_admin = ?", true).Count(&count).Error
	return count, err
}

// ListAdminUsers 按创建时间倒序读取全部身份记录
func (o *ElevatedOps) ListAdminUsers() ([]models.AdminUser, error) {
	var admins []models.AdminUser
	err := o.tx.Order("created_at DESC").Find(&admins).Error
	return admins, err
}

// CreateAdminUser 插入一条身份记录
func (o *ElevatedOps) CreateAdminUser(admin *models.AdminUser) error {
	return o.tx.Create(admin).Error
}

// UpdateAdminFlag 修改指定用户的is_admin标志
func (o *ElevatedOps) UpdateAdminFlag(userID string, isAdmin bool) error {
	result := o.tx.Model(&models.AdminUser{}).
		Where("user_id = ?", userID).
		Update("is_admin", isAdmin)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// TouchLastLogin 更新指定用户的最近登录时间
func (o *ElevatedOps) TouchLastLogin(userID string, at time.Time) error {
	return o.tx.Model(&models.AdminUser{}).
		Where("user_id = ?", userID).
		Update("last_login", at).Error
}

// DeleteAdminByUserID 删除指定用户的身份记录
func (o *ElevatedOps) DeleteAdminByUserID(userID string) error {
	result := o.tx.Where("user_id = ?", userID).Delete(&models.AdminUser{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// InsertBootstrapMarker 插入首位管理员引导标记。唯一约束保证并发时
// 只有一个调用者成功，落败方得到IsDuplicateKey为真的错误。
func (o *ElevatedOps) InsertBootstrapMarker(userID string) error {
	return o.tx.Create(&models.BootstrapMarker{
		Name:   models.BootstrapMarkerName,
		UserID: userID,
	}).Error
}

// BootstrapMarkerExists 检查引导标记是否已存在
func (o *ElevatedOps) BootstrapMarkerExists() (bool, error) {
	var count int64
	err := o.tx.Model(&models.BootstrapMarker{}).
		Where("name = ?", models.BootstrapMarkerName).
		Count(&count).Error
	return count > 0, err
}

// IsDuplicateKey 判断错误是否为唯一约束冲突
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
