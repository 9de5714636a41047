package services

import (
	"testing"

	"github.com/chinaharsle/stock-machine/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newBannerService(db *gorm.DB) *BannerService {
	return NewBannerService(db, NewAdminUserService(NewElevatedStore(db)), nil)
}

func TestBannerLifecycle(t *testing.T) {
	db := newTestDB(t)
	svc := newBannerService(db)
	admin := seedAdmin(t, db)

	banner := &models.Banner{Title: "年中促销", DisplayOrder: 1, IsActive: true}
	require.NoError(t, svc.CreateBanner(admin, banner))
	require.NotEmpty(t, banner.ID)

	// 更新
	updated, err := svc.UpdateBanner(admin, banner.ID, map[string]interface{}{
		"subtitle":  "全场折扣",
		"is_active": false,
	})
	require.NoError(t, err)
	assert.Equal(t, "全场折扣", updated.Subtitle)

	// 停用后不出现在公开列表
	active, err := svc.GetActiveBanners()
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := svc.GetAllBanners()
	require.NoError(t, err)
	assert.Len(t, all, 1)

	// 删除
	require.NoError(t, svc.DeleteBanner(admin, banner.ID))
	err = svc.DeleteBanner(admin, banner.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBannerGateAndValidation(t *testing.T) {
	db := newTestDB(t)
	svc := newBannerService(db)
	admin := seedAdmin(t, db)

	// 标题必填
	err := svc.CreateBanner(admin, &models.Banner{})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	// 非管理员一律拒绝
	err = svc.CreateBanner(uuid.NewString(), &models.Banner{Title: "x"})
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.UpdateBanner(uuid.NewString(), uuid.NewString(), nil)
	assert.ErrorIs(t, err, ErrForbidden)
	err = svc.DeleteBanner("", uuid.NewString())
	assert.ErrorIs(t, err, ErrForbidden)
}
