package services

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/chinaharsle/stock-machine/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newPositionService(db *gorm.DB) (*PositionService, *AdminUserService) {
	store := NewElevatedStore(db)
	adminService := NewAdminUserService(store)
	return NewPositionService(store, adminService, nil), adminService
}

func TestMoveMachinePosition(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newPositionService(db)
	admin := seedAdmin(t, db)
	seedMachines(t, db, "A", "B", "C")

	// 上移C：与B交换
	require.NoError(t, svc.MoveMachinePosition(admin, machineID(t, db, "C"), models.SortDirectionUp))
	assert.Equal(t, []string{"A", "C", "B"}, catalogOrder(t, db))

	// 下移C：恢复原序
	require.NoError(t, svc.MoveMachinePosition(admin, machineID(t, db, "C"), models.SortDirectionDown))
	assert.Equal(t, []string{"A", "B", "C"}, catalogOrder(t, db))
}

func TestMoveMachinePositionBoundary(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newPositionService(db)
	admin := seedAdmin(t, db)
	seedMachines(t, db, "A", "B", "C")

	// 顶部机器不能再上移
	err := svc.MoveMachinePosition(admin, machineID(t, db, "A"), models.SortDirectionUp)
	assert.ErrorIs(t, err, ErrBoundary)

	// 底部机器不能再下移
	err = svc.MoveMachinePosition(admin, machineID(t, db, "C"), models.SortDirectionDown)
	assert.ErrorIs(t, err, ErrBoundary)

	// 边界失败不留任何改动
	assert.Equal(t, []string{"A", "B", "C"}, catalogOrder(t, db))
}

func TestMoveMachinePositionValidation(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newPositionService(db)
	admin := seedAdmin(t, db)
	seedMachines(t, db, "A", "B")

	// 非法方向
	err := svc.MoveMachinePosition(admin, machineID(t, db, "A"), models.SortDirection("sideways"))
	assert.ErrorIs(t, err, ErrInvalidArgument)

	// 机器不存在
	err = svc.MoveMachinePosition(admin, uuid.NewString(), models.SortDirectionUp)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMoveMachinePositionForbidden(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newPositionService(db)
	seedMachines(t, db, "A", "B")

	// 非管理员一律拒绝，且不产生任何改动
	err := svc.MoveMachinePosition(uuid.NewString(), machineID(t, db, "B"), models.SortDirectionUp)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, []string{"A", "B"}, catalogOrder(t, db))

	// 匿名调用同样拒绝
	err = svc.MoveMachinePosition("", machineID(t, db, "B"), models.SortDirectionUp)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestSetMachineSortOrder(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newPositionService(db)
	admin := seedAdmin(t, db)
	seedMachines(t, db, "A", "B", "C", "D", "E")

	// 向前移动：E(5)->2，其间的B、C、D整体后移一位
	require.NoError(t, svc.SetMachineSortOrder(admin, machineID(t, db, "E"), 2))
	assert.Equal(t, []string{"A", "E", "B", "C", "D"}, catalogOrder(t, db))

	// 向后移动：A(1)->4，其间的E、B、C整体前移一位
	require.NoError(t, svc.SetMachineSortOrder(admin, machineID(t, db, "A"), 4))
	assert.Equal(t, []string{"E", "B", "C", "A", "D"}, catalogOrder(t, db))

	// 原位置：无改动
	require.NoError(t, svc.SetMachineSortOrder(admin, machineID(t, db, "D"), 5))
	assert.Equal(t, []string{"E", "B", "C", "A", "D"}, catalogOrder(t, db))
}

func TestSetMachineSortOrderOutOfRange(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newPositionService(db)
	admin := seedAdmin(t, db)
	seedMachines(t, db, "A", "B", "C")

	// 超出[1, N]的目标位置直接拒绝，而不是写入越界值
	for _, target := range []int{0, -1, 4, 100} {
		err := svc.SetMachineSortOrder(admin, machineID(t, db, "B"), target)
		assert.ErrorIs(t, err, ErrInvalidArgument, "目标位置%d应被拒绝", target)
	}
	assert.Equal(t, []string{"A", "B", "C"}, catalogOrder(t, db))
}

func TestReorderMachines(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newPositionService(db)
	admin := seedAdmin(t, db)
	seedMachines(t, db, "A", "B", "C")

	require.NoError(t, svc.ReorderMachines(admin, []string{
		machineID(t, db, "C"),
		machineID(t, db, "A"),
		machineID(t, db, "B"),
	}))
	assert.Equal(t, []string{"C", "A", "B"}, catalogOrder(t, db))
}

func TestReorderMachinesValidation(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newPositionService(db)
	admin := seedAdmin(t, db)
	seedMachines(t, db, "A", "B", "C")

	idA := machineID(t, db, "A")
	idB := machineID(t, db, "B")

	// 列表不完整
	err := svc.ReorderMachines(admin, []string{idA, idB})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	// 含未知ID
	err = svc.ReorderMachines(admin, []string{idA, idB, uuid.NewString()})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	// 含重复ID
	err = svc.ReorderMachines(admin, []string{idA, idB, idB})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	// 全部失败场景都不留改动
	assert.Equal(t, []string{"A", "B", "C"}, catalogOrder(t, db))
}

// TestReorderScenario 覆盖一组连贯的排序操作：相对移动、指定位置、
// 整体重排依次执行，每一步之后排序都保持1..N的排列。
func TestReorderScenario(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newPositionService(db)
	admin := seedAdmin(t, db)
	seedMachines(t, db, "A", "B", "C")

	require.NoError(t, svc.MoveMachinePosition(admin, machineID(t, db, "C"), models.SortDirectionUp))
	assert.Equal(t, []string{"A", "C", "B"}, catalogOrder(t, db))

	require.NoError(t, svc.SetMachineSortOrder(admin, machineID(t, db, "B"), 1))
	assert.Equal(t, []string{"B", "A", "C"}, catalogOrder(t, db))

	require.NoError(t, svc.ReorderMachines(admin, []string{
		machineID(t, db, "C"),
		machineID(t, db, "A"),
		machineID(t, db, "B"),
	}))
	assert.Equal(t, []string{"C", "A", "B"}, catalogOrder(t, db))
}

// TestConcurrentMoves 并发执行随机排序操作，结束后排序仍然必须是
// 1..N的排列。个别操作因冲突重试耗尽而失败是允许的，脏状态不允许。
func TestConcurrentMoves(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newPositionService(db)
	admin := seedAdmin(t, db)
	machines := seedMachines(t, db, "A", "B", "C", "D", "E", "F")

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for j := 0; j < 10; j++ {
				m := machines[rng.Intn(len(machines))]
				if rng.Intn(2) == 0 {
					_ = svc.MoveMachinePosition(admin, m.ID, models.SortDirectionUp)
				} else {
					_ = svc.MoveMachinePosition(admin, m.ID, models.SortDirectionDown)
				}
			}
		}(int64(i))
	}
	wg.Wait()

	// catalogOrder内部断言sort_order是1..N的排列
	order := catalogOrder(t, db)
	assert.Len(t, order, len(machines))
}

// machineID 按型号查ID
func machineID(t *testing.T, db *gorm.DB, model string) string {
	t.Helper()

	var m models.Machine
	require.NoError(t, db.Where("model = ?", model).Take(&m).Error)
	return m.ID
}
