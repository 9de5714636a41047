package services

import (
	"sync"
	"testing"

	"github.com/chinaharsle/stock-machine/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAdminService(db *gorm.DB) *AdminUserService {
	return NewAdminUserService(NewElevatedStore(db))
}

func seedUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hashed, err := models.HashPassword("secret123")
	require.NoError(t, err)
	user := &models.User{Email: email, Password: hashed, Name: "测试用户"}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestIsUserAdminFailClosed(t *testing.T) {
	db := newTestDB(t)
	svc := newAdminService(db)

	// 未知用户、空用户ID都不是管理员
	assert.False(t, svc.IsUserAdmin(uuid.NewString()))
	assert.False(t, svc.IsUserAdmin(""))

	// 有身份记录但is_admin为假，同样拒绝
	user := seedUser(t, db, "user@test.local")
	_, err := svc.CreateOrUpdateAdminUser(user, false)
	require.NoError(t, err)
	assert.False(t, svc.IsUserAdmin(user.ID))

	// 真正的管理员才放行
	admin := seedAdmin(t, db)
	assert.True(t, svc.IsUserAdmin(admin))
}

func TestBootstrapFirstAdmin(t *testing.T) {
	db := newTestDB(t)
	svc := newAdminService(db)

	user := seedUser(t, db, "first@test.local")
	assert.False(t, svc.HasAdminUsers())

	created, err := svc.BootstrapFirstAdmin(user)
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.True(t, created.IsAdmin)
	assert.Equal(t, user.ID, created.UserID)
	assert.True(t, svc.IsUserAdmin(user.ID))

	// 第二个用户来晚了：引导已完成，静默返回nil
	late := seedUser(t, db, "late@test.local")
	got, err := svc.BootstrapFirstAdmin(late)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.False(t, svc.IsUserAdmin(late.ID))
}

// TestBootstrapFirstAdminConcurrent 并发引导时恰好只有一个赢家，
// 落败方拿到(nil, nil)而不是错误。
func TestBootstrapFirstAdminConcurrent(t *testing.T) {
	db := newTestDB(t)
	svc := newAdminService(db)

	users := []*models.User{
		seedUser(t, db, "racer1@test.local"),
		seedUser(t, db, "racer2@test.local"),
		seedUser(t, db, "racer3@test.local"),
	}

	var wg sync.WaitGroup
	results := make([]*models.AdminUser, len(users))
	errs := make([]error, len(users))
	for i, u := range users {
		wg.Add(1)
		go func(i int, u *models.User) {
			defer wg.Done()
			results[i], errs[i] = svc.BootstrapFirstAdmin(u)
		}(i, u)
	}
	wg.Wait()

	winners := 0
	for i := range users {
		require.NoError(t, errs[i])
		if results[i] != nil {
			winners++
		}
	}
	assert.Equal(t, 1, winners)

	// 数据库里也恰好有一条管理员记录
	var count int64
	require.NoError(t, db.Model(&models.AdminUser{}).Where("is_admin = ?", true).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestBootstrapFirstAdminAfterExistingAdmin(t *testing.T) {
	db := newTestDB(t)
	svc := newAdminService(db)

	// 已有管理员（比如人工建档）时，即使引导标记不存在也不再引导
	seedAdmin(t, db)
	user := seedUser(t, db, "nobody@test.local")
	got, err := svc.BootstrapFirstAdmin(user)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.False(t, svc.IsUserAdmin(user.ID))
}

func TestToggleAdminStatus(t *testing.T) {
	db := newTestDB(t)
	svc := newAdminService(db)
	actor := seedAdmin(t, db)

	user := seedUser(t, db, "member@test.local")
	_, err := svc.CreateOrUpdateAdminUser(user, false)
	require.NoError(t, err)

	// 授权
	require.NoError(t, svc.ToggleAdminStatus(actor, user.ID, true))
	assert.True(t, svc.IsUserAdmin(user.ID))

	// 撤销
	require.NoError(t, svc.ToggleAdminStatus(actor, user.ID, false))
	assert.False(t, svc.IsUserAdmin(user.ID))

	// 非管理员不能操作
	err = svc.ToggleAdminStatus(user.ID, actor, false)
	assert.ErrorIs(t, err, ErrForbidden)

	// 不存在的档案
	err = svc.ToggleAdminStatus(actor, uuid.NewString(), true)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteAdminUser(t *testing.T) {
	db := newTestDB(t)
	svc := newAdminService(db)
	actor := seedAdmin(t, db)

	user := seedUser(t, db, "target@test.local")
	_, err := svc.CreateOrUpdateAdminUser(user, true)
	require.NoError(t, err)
	require.True(t, svc.IsUserAdmin(user.ID))

	require.NoError(t, svc.DeleteAdminUser(actor, user.ID))
	assert.False(t, svc.IsUserAdmin(user.ID))

	// 重复删除报NotFound
	err = svc.DeleteAdminUser(actor, user.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// 非管理员不能删除
	err = svc.DeleteAdminUser(uuid.NewString(), actor)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestGetAllAdminUsers(t *testing.T) {
	db := newTestDB(t)
	svc := newAdminService(db)
	actor := seedAdmin(t, db)

	user := seedUser(t, db, "listed@test.local")
	_, err := svc.CreateOrUpdateAdminUser(user, false)
	require.NoError(t, err)

	admins, err := svc.GetAllAdminUsers(actor)
	require.NoError(t, err)
	assert.Len(t, admins, 2)

	// 非管理员不能查看
	_, err = svc.GetAllAdminUsers(user.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}
