package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"app/internal/lock"
	"app/internal/usecase"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func newTestManager(locker *memLocker, inv *memInventory) *usecase.ReservationManager {
	// テストは短いリトライで回す
	return usecase.NewReservationManager(locker, inv, 3*time.Second, 3, 5*time.Millisecond, zerolog.Nop())
}

func TestReservationManager_ReserveBatch_EmptyItems(t *testing.T) {
	mgr := newTestManager(newMemLocker(), newMemInventory(nil))

	_, err := mgr.ReserveBatch(context.Background(), 1, nil)
	assertErrContains(t, err, "empty items")
}

func TestReservationManager_ReserveBatch_InvalidQuantity(t *testing.T) {
	mgr := newTestManager(newMemLocker(), newMemInventory(map[int64]int64{1: 10}))

	_, err := mgr.ReserveBatch(context.Background(), 1, []usecase.ReserveItem{
		{ProductID: 1, Quantity: 0},
	})
	assertErrContains(t, err, "invalid quantity")
}

func TestReservationManager_ReserveBatch_Success(t *testing.T) {
	locker := newMemLocker()
	inv := newMemInventory(map[int64]int64{1: 10, 2: 5})
	mgr := newTestManager(locker, inv)

	batch, err := mgr.ReserveBatch(context.Background(), 7, []usecase.ReserveItem{
		{ProductID: 1, Quantity: 2},
		{ProductID: 2, Quantity: 1},
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(8), inv.stockOf(1))
	assert.Equal(t, int64(4), inv.stockOf(2))
	assert.Equal(t, 2, len(batch.Reservations()))

	// 注文確定までロックは保持される
	assert.Equal(t, 2, locker.heldCount())

	batch.Commit(context.Background())

	// Commitはロック解放のみ。予約と在庫はそのまま
	assert.Equal(t, 0, locker.heldCount())
	assert.Equal(t, int64(8), inv.stockOf(1))
	assert.Equal(t, 2, inv.activeReservations())
}

func TestReservationManager_ReserveBatch_MidBatchFailure_RollsBackAll(t *testing.T) {
	locker := newMemLocker()
	// 3番目の明細だけ在庫不足
	inv := newMemInventory(map[int64]int64{1: 10, 2: 10, 3: 1, 4: 10})
	mgr := newTestManager(locker, inv)

	_, err := mgr.ReserveBatch(context.Background(), 7, []usecase.ReserveItem{
		{ProductID: 1, Quantity: 2},
		{ProductID: 2, Quantity: 3},
		{ProductID: 3, Quantity: 5},
		{ProductID: 4, Quantity: 1},
	})
	assertErrContains(t, err, "out of stock")

	// 全て元通り
	assert.Equal(t, int64(10), inv.stockOf(1))
	assert.Equal(t, int64(10), inv.stockOf(2))
	assert.Equal(t, int64(1), inv.stockOf(3))
	assert.Equal(t, int64(10), inv.stockOf(4))
	assert.Equal(t, 0, inv.activeReservations())
	assert.Equal(t, 0, locker.heldCount())
}

func TestReservationManager_ReserveBatch_LockRetryExhausted(t *testing.T) {
	locker := newMemLocker()
	inv := newMemInventory(map[int64]int64{1: 10})
	mgr := newTestManager(locker, inv)

	// 他のホルダーがずっと保持している
	locker.holdExternally(lock.ProductKey(1), time.Minute)

	_, err := mgr.ReserveBatch(context.Background(), 7, []usecase.ReserveItem{
		{ProductID: 1, Quantity: 1},
	})

	// リトライ上限は在庫不足と同じ業務エラー
	assertErrContains(t, err, "out of stock")
	assert.Equal(t, int64(10), inv.stockOf(1))
}

func TestReservationManager_ReserveBatch_ExpiredLeaseIsReacquirable(t *testing.T) {
	locker := newMemLocker()
	inv := newMemInventory(map[int64]int64{1: 10})
	mgr := newTestManager(locker, inv)

	// 期限切れのロックは無いものとして扱われる
	locker.holdExternally(lock.ProductKey(1), -time.Second)

	batch, err := mgr.ReserveBatch(context.Background(), 7, []usecase.ReserveItem{
		{ProductID: 1, Quantity: 1},
	})
	assert.NoError(t, err)
	batch.Commit(context.Background())
}

func TestReservationManager_ReserveBatch_BackendErrorIsNotOutOfStock(t *testing.T) {
	locker := newMemLocker()
	locker.acquireErr = errors.New("backend down")
	inv := newMemInventory(map[int64]int64{1: 10})
	mgr := newTestManager(locker, inv)

	_, err := mgr.ReserveBatch(context.Background(), 7, []usecase.ReserveItem{
		{ProductID: 1, Quantity: 1},
	})

	assert.Error(t, err)
	assert.NotContains(t, err.Error(), "out of stock")
}

func TestReservationManager_Abort_RestoresStockAndReleasesLocks(t *testing.T) {
	locker := newMemLocker()
	inv := newMemInventory(map[int64]int64{1: 10, 2: 5})
	mgr := newTestManager(locker, inv)

	batch, err := mgr.ReserveBatch(context.Background(), 7, []usecase.ReserveItem{
		{ProductID: 1, Quantity: 4},
		{ProductID: 2, Quantity: 2},
	})
	assert.NoError(t, err)

	batch.Abort(context.Background())

	assert.Equal(t, int64(10), inv.stockOf(1))
	assert.Equal(t, int64(5), inv.stockOf(2))
	assert.Equal(t, 0, inv.activeReservations())
	assert.Equal(t, 0, locker.heldCount())

	// 二重Abortしても在庫は増えない
	batch.Abort(context.Background())
	assert.Equal(t, int64(10), inv.stockOf(1))
}

func TestReservationManager_DoubleRollback_NoOp(t *testing.T) {
	inv := newMemInventory(map[int64]int64{1: 10})

	r, err := inv.Reserve(context.Background(), 1, 7, 3)
	assert.NoError(t, err)
	assert.Equal(t, int64(7), inv.stockOf(1))

	assert.NoError(t, inv.Rollback(context.Background(), r))
	assert.Equal(t, int64(10), inv.stockOf(1))

	// 同じ予約をもう一度戻しても変化しない
	assert.NoError(t, inv.Rollback(context.Background(), r))
	assert.Equal(t, int64(10), inv.stockOf(1))
}

// 在庫5に対して20人が同時に1個ずつ予約しても、成功はちょうど5人
func TestReservationManager_Concurrent_NoOversell(t *testing.T) {
	locker := newMemLocker()
	inv := newMemInventory(map[int64]int64{1: 5})
	mgr := usecase.NewReservationManager(locker, inv, 3*time.Second, 20, 2*time.Millisecond, zerolog.Nop())

	const buyers = 20

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0

	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(cartID int64) {
			defer wg.Done()

			batch, err := mgr.ReserveBatch(context.Background(), cartID, []usecase.ReserveItem{
				{ProductID: 1, Quantity: 1},
			})
			if err != nil {
				return
			}
			batch.Commit(context.Background())

			mu.Lock()
			succeeded++
			mu.Unlock()
		}(int64(i + 1))
	}
	wg.Wait()

	assert.Equal(t, 5, succeeded)
	assert.Equal(t, int64(0), inv.stockOf(1))
	assert.Equal(t, 0, locker.heldCount())
}
