package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/chinaharsle/stock-machine/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB 创建一个独立的内存数据库。
// _txlock=immediate让写事务一开始就持有写锁，配合busy_timeout
// 避免并发测试中SQLite的锁升级冲突。
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf(
		"file:%s?mode=memory&cache=shared&_busy_timeout=10000&_txlock=immediate",
		uuid.NewString(),
	)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.AdminUser{},
		&models.BootstrapMarker{},
		&models.Machine{},
		&models.Banner{},
		&models.Inquiry{},
	))
	return db
}

// seedAdmin 插入一条管理员身份记录并返回其user_id
func seedAdmin(t *testing.T, db *gorm.DB) string {
	t.Helper()

	userID := uuid.NewString()
	now := time.Now()
	require.NoError(t, db.Create(&models.AdminUser{
		UserID:    userID,
		Email:     userID + "@test.local",
		Name:      "测试管理员",
		IsAdmin:   true,
		LastLogin: &now,
	}).Error)
	return userID
}

// seedMachines 按给定型号顺序插入机器，排序位置依次为1..N
func seedMachines(t *testing.T, db *gorm.DB, mods ...string) []models.Machine {
	t.Helper()

	machines := make([]models.Machine, 0, len(mods))
	for i, mod := range mods {
		m := models.Machine{
			Model:     mod,
			Stock:     1,
			SortOrder: i + 1,
		}
		require.NoError(t, db.Create(&m).Error)
		machines = append(machines, m)
	}
	return machines
}

// catalogOrder 按排序位置读出当前目录的型号序列，同时校验
// sort_order恰好是1..N的排列。
func catalogOrder(t *testing.T, db *gorm.DB) []string {
	t.Helper()

	var machines []models.Machine
	require.NoError(t, db.Order("sort_order ASC").Find(&machines).Error)

	mods := make([]string, 0, len(machines))
	for i, m := range machines {
		require.Equal(t, i+1, m.SortOrder, "排序位置必须是1..N的连续排列")
		mods = append(mods, m.Model)
	}
	return mods
}
