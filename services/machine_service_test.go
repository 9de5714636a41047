package services

import (
	"testing"

	"github.com/chinaharsle/stock-machine/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newMachineService(db *gorm.DB) *MachineService {
	store := NewElevatedStore(db)
	return NewMachineService(db, store, NewAdminUserService(store), nil)
}

func TestCreateMachineAppendsToEnd(t *testing.T) {
	db := newTestDB(t)
	svc := newMachineService(db)
	admin := seedAdmin(t, db)
	seedMachines(t, db, "A", "B")

	m := &models.Machine{Model: "C", Stock: 2}
	require.NoError(t, svc.CreateMachine(admin, m))
	assert.Equal(t, 3, m.SortOrder)
	assert.Equal(t, []string{"A", "B", "C"}, catalogOrder(t, db))
}

func TestCreateMachineValidation(t *testing.T) {
	db := newTestDB(t)
	svc := newMachineService(db)
	admin := seedAdmin(t, db)
	seedMachines(t, db, "A")

	// 型号必填
	err := svc.CreateMachine(admin, &models.Machine{})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	// 型号唯一
	err = svc.CreateMachine(admin, &models.Machine{Model: "A"})
	assert.ErrorIs(t, err, ErrAlreadyExists)

	// 非管理员不能创建
	err = svc.CreateMachine(uuid.NewString(), &models.Machine{Model: "B"})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestDeleteMachineClosesGap(t *testing.T) {
	db := newTestDB(t)
	svc := newMachineService(db)
	admin := seedAdmin(t, db)
	seedMachines(t, db, "A", "B", "C", "D")

	// 删除中间的机器，后面的机器整体前移一位
	require.NoError(t, svc.DeleteMachine(admin, machineID(t, db, "B")))
	assert.Equal(t, []string{"A", "C", "D"}, catalogOrder(t, db))

	// 删除尾部机器
	require.NoError(t, svc.DeleteMachine(admin, machineID(t, db, "D")))
	assert.Equal(t, []string{"A", "C"}, catalogOrder(t, db))

	// 机器不存在
	err := svc.DeleteMachine(admin, uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateMachineIgnoresSortOrder(t *testing.T) {
	db := newTestDB(t)
	svc := newMachineService(db)
	admin := seedAdmin(t, db)
	seedMachines(t, db, "A", "B")

	// 普通更新路径不允许改排序位置
	updated, err := svc.UpdateMachine(admin, machineID(t, db, "A"), map[string]interface{}{
		"stock":      9,
		"sort_order": 99,
	})
	require.NoError(t, err)
	assert.Equal(t, 9, updated.Stock)
	assert.Equal(t, 1, updated.SortOrder)
	assert.Equal(t, []string{"A", "B"}, catalogOrder(t, db))
}

func TestGetPublicMachines(t *testing.T) {
	db := newTestDB(t)
	svc := newMachineService(db)
	seedMachines(t, db, "A", "B")

	public, err := svc.GetPublicMachines()
	require.NoError(t, err)
	require.Len(t, public, 2)
	assert.Equal(t, "A", public[0].Model)
	assert.Equal(t, 1, public[0].SortOrder)
	assert.Equal(t, "B", public[1].Model)
}

func TestGetMachineByModel(t *testing.T) {
	db := newTestDB(t)
	svc := newMachineService(db)
	seedMachines(t, db, "HARSLE-WC67K")

	m, err := svc.GetMachineByModel("HARSLE-WC67K")
	require.NoError(t, err)
	assert.Equal(t, "HARSLE-WC67K", m.Model)

	_, err = svc.GetMachineByModel("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}
