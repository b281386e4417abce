package usecase_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"app/internal/domain/model"
	"app/internal/lock"
	repo "app/internal/repository"
)

func assertErrContains(t *testing.T, err error, want string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error containing %q, got nil", want)
	}
	if !strings.Contains(err.Error(), want) {
		t.Fatalf("expected error containing %q, got %q", want, err.Error())
	}
}

// =====================
// インメモリのロック（Redisの代わり）
// =====================

type memLocker struct {
	mu     sync.Mutex
	locks  map[string]lock.Lock
	nextID int

	// バックエンド障害を注入する
	acquireErr error
}

func newMemLocker() *memLocker {
	return &memLocker{locks: map[string]lock.Lock{}}
}

func (m *memLocker) Acquire(ctx context.Context, key string, lease time.Duration) (lock.Lock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.acquireErr != nil {
		return lock.Lock{}, m.acquireErr
	}

	if existing, ok := m.locks[key]; ok && time.Now().Before(existing.ExpiresAt) {
		return lock.Lock{}, lock.ErrHeld
	}

	m.nextID++
	l := lock.Lock{
		Key:       key,
		Token:     fmt.Sprintf("tok-%d", m.nextID),
		ExpiresAt: time.Now().Add(lease),
	}
	m.locks[key] = l
	return l, nil
}

func (m *memLocker) Release(ctx context.Context, l lock.Lock) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.locks[l.Key]
	if !ok || existing.Token != l.Token {
		return lock.ErrNotOwner
	}
	delete(m.locks, l.Key)
	return nil
}

func (m *memLocker) heldCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, l := range m.locks {
		if time.Now().Before(l.ExpiresAt) {
			n++
		}
	}
	return n
}

// テスト用：他のホルダーが保持している状態を作る
func (m *memLocker) holdExternally(key string, lease time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.locks[key] = lock.Lock{Key: key, Token: "external", ExpiresAt: time.Now().Add(lease)}
}

// =====================
// インメモリの在庫（条件付き減算と予約）
// =====================

type memInventory struct {
	mu           sync.Mutex
	stock        map[int64]int64
	reservations map[string]model.ReservationStatus
	nextID       int

	reserveErr  error // 次のReserveで返す障害
	rollbackErr error
}

func newMemInventory(stock map[int64]int64) *memInventory {
	s := map[int64]int64{}
	for k, v := range stock {
		s[k] = v
	}
	return &memInventory{stock: s, reservations: map[string]model.ReservationStatus{}}
}

func (m *memInventory) Reserve(ctx context.Context, productID int64, cartID int64, qty int64) (model.InventoryReservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.reserveErr != nil {
		return model.InventoryReservation{}, m.reserveErr
	}

	if m.stock[productID] < qty {
		return model.InventoryReservation{}, repo.ErrInsufficientStock
	}
	m.stock[productID] -= qty

	m.nextID++
	id := fmt.Sprintf("resv-%d", m.nextID)
	m.reservations[id] = model.ReservationStatusActive

	return model.InventoryReservation{
		ID:        id,
		ProductID: productID,
		CartID:    cartID,
		Quantity:  qty,
		Status:    model.ReservationStatusActive,
	}, nil
}

func (m *memInventory) Rollback(ctx context.Context, reservation model.InventoryReservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.rollbackErr != nil {
		return m.rollbackErr
	}

	// void済みはno-op（二重rollback対策）
	if m.reservations[reservation.ID] != model.ReservationStatusActive {
		return nil
	}
	m.reservations[reservation.ID] = model.ReservationStatusVoid
	m.stock[reservation.ProductID] += reservation.Quantity
	return nil
}

func (m *memInventory) AddStock(ctx context.Context, productID int64, shopID int64, qty int64, location string) (model.Inventory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stock[productID] += qty
	return model.Inventory{ProductID: productID, ShopID: shopID, Stock: m.stock[productID], Location: location}, nil
}

func (m *memInventory) FindByProduct(ctx context.Context, productID int64) (model.Inventory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.stock[productID]
	if !ok {
		return model.Inventory{}, repo.ErrNotFound
	}
	return model.Inventory{ProductID: productID, Stock: s}, nil
}

func (m *memInventory) stockOf(productID int64) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stock[productID]
}

func (m *memInventory) activeReservations() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, st := range m.reservations {
		if st == model.ReservationStatusActive {
			n++
		}
	}
	return n
}
