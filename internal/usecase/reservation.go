package usecase

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"time"

	"app/internal/domain/model"
	"app/internal/lock"
	repo "app/internal/repository"

	"github.com/rs/zerolog"
)

// 1明細の予約指示
type ReserveItem struct {
	ProductID int64
	ShopID    int64
	Quantity  int64
}

// 予約成功した1明細。ロックと予約レコードを対で持つ
type reservedLine struct {
	item        ReserveItem
	reservation model.InventoryReservation
	lck         lock.Lock
}

// 全明細の予約が成功したバッチ。
// 注文が確定したらCommit（ロック解放のみ）、失敗したらAbort（全戻し＋解放）
type ReservedBatch struct {
	cartID int64
	lines  []reservedLine
	mgr    *ReservationManager
}

// ReservationManager は明細ごとに lock→reserve を順に進め、
// どこかで失敗したらそれまでの予約を全て巻き戻す
type ReservationManager struct {
	locker     lock.Locker
	inventory  repo.InventoryRepository
	lease      time.Duration
	retryTimes int
	retryDelay time.Duration
	log        zerolog.Logger
}

func NewReservationManager(
	locker lock.Locker,
	inventory repo.InventoryRepository,
	lease time.Duration,
	retryTimes int,
	retryDelay time.Duration,
	log zerolog.Logger,
) *ReservationManager {
	if lease <= 0 {
		lease = 3 * time.Second
	}
	if retryTimes <= 0 {
		retryTimes = 10
	}
	if retryDelay <= 0 {
		retryDelay = 200 * time.Millisecond
	}
	return &ReservationManager{
		locker:     locker,
		inventory:  inventory,
		lease:      lease,
		retryTimes: retryTimes,
		retryDelay: retryDelay,
		log:        log,
	}
}

// ReserveBatch は入力順に処理する。部分成功のバッチは絶対に返さない
func (m *ReservationManager) ReserveBatch(ctx context.Context, cartID int64, items []ReserveItem) (*ReservedBatch, error) {
	if len(items) == 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "empty items")
	}
	for _, it := range items {
		if it.ProductID <= 0 || it.Quantity < 1 {
			return nil, NewHTTPError(http.StatusBadRequest, "invalid quantity")
		}
	}

	batch := &ReservedBatch{cartID: cartID, mgr: m}

	for _, it := range items {
		l, err := m.acquireWithRetry(ctx, lock.ProductKey(it.ProductID))
		if err != nil {
			m.unwind(ctx, batch)
			if errors.Is(err, lock.ErrHeld) {
				// リトライ上限まで取れなかった→在庫不足と同じ扱い
				return nil, NewHTTPError(http.StatusBadRequest, "one or more products are out of stock")
			}
			return nil, err
		}

		reservation, err := m.inventory.Reserve(ctx, it.ProductID, cartID, it.Quantity)
		if err != nil {
			// 今取ったロックも含めて解放する
			if relErr := m.locker.Release(ctx, l); relErr != nil {
				m.log.Error().Err(relErr).Str("key", l.Key).Msg("release lock failed during unwind")
			}
			m.unwind(ctx, batch)

			if errors.Is(err, repo.ErrInsufficientStock) {
				return nil, NewHTTPError(http.StatusBadRequest, "one or more products are out of stock")
			}
			return nil, err
		}

		batch.lines = append(batch.lines, reservedLine{item: it, reservation: reservation, lck: l})
	}

	return batch, nil
}

// 取得できるまで一定回数リトライ（遅延＋ジッタ）。
// ErrHeld以外（バックエンド障害）は即時に返す
func (m *ReservationManager) acquireWithRetry(ctx context.Context, key string) (lock.Lock, error) {
	var lastErr error

	for i := 0; i < m.retryTimes; i++ {
		l, err := m.locker.Acquire(ctx, key, m.lease)
		if err == nil {
			return l, nil
		}
		if !errors.Is(err, lock.ErrHeld) {
			return lock.Lock{}, err
		}
		lastErr = err

		jitter := time.Duration(rand.Int63n(int64(m.retryDelay) / 2))
		select {
		case <-ctx.Done():
			return lock.Lock{}, ctx.Err()
		case <-time.After(m.retryDelay + jitter):
		}
	}

	return lock.Lock{}, lastErr
}

// unwind は成功済みの予約を逆順で全て戻し、その後ロックを解放する。
// 個々の失敗はログに残すだけで、必ず最後まで走る
func (m *ReservationManager) unwind(ctx context.Context, batch *ReservedBatch) {
	for i := len(batch.lines) - 1; i >= 0; i-- {
		line := batch.lines[i]
		if err := m.inventory.Rollback(ctx, line.reservation); err != nil {
			m.log.Error().Err(err).
				Int64("product_id", line.item.ProductID).
				Int64("cart_id", batch.cartID).
				Str("reservation_id", line.reservation.ID).
				Msg("rollback failed during unwind")
		}
	}

	for i := len(batch.lines) - 1; i >= 0; i-- {
		line := batch.lines[i]
		if err := m.locker.Release(ctx, line.lck); err != nil {
			m.log.Error().Err(err).Str("key", line.lck.Key).Msg("release lock failed during unwind")
		}
	}

	batch.lines = nil
}

// Commit は注文確定後に呼ぶ。予約はそのまま、ロックだけ解放する
func (b *ReservedBatch) Commit(ctx context.Context) {
	for _, line := range b.lines {
		if err := b.mgr.locker.Release(ctx, line.lck); err != nil {
			b.mgr.log.Error().Err(err).Str("key", line.lck.Key).Msg("release lock failed after commit")
		}
	}
	b.lines = nil
}

// Abort は予約成功後に注文側で失敗したとき呼ぶ。全戻し＋全解放
func (b *ReservedBatch) Abort(ctx context.Context) {
	b.mgr.unwind(ctx, b)
}

// Reservations は予約済み明細（テストと注文スナップショット用）
func (b *ReservedBatch) Reservations() []model.InventoryReservation {
	out := make([]model.InventoryReservation, 0, len(b.lines))
	for _, line := range b.lines {
		out = append(out, line.reservation)
	}
	return out
}
