package lock

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// 他のホルダーが保持中（リトライ可能な業務エラー）
	ErrHeld = errors.New("lock held by another holder")

	// 自分のロックではない（期限切れ後の解放など）
	ErrNotOwner = errors.New("not lock owner")
)

// 取得済みロック。Tokenが合わないと解放できない
type Lock struct {
	Key       string
	Token     string
	ExpiresAt time.Time
}

// Lockerは共有KVSの上で排他・自動失効するロックを提供する。
// Acquireはset-if-absentで、リースは取得と同時に開始される。
// 取得失敗はErrHeld、バックエンド障害はそれ以外のエラーで区別する。
// リトライはしない（リトライは呼び出し側の責務）
type Locker interface {
	Acquire(ctx context.Context, key string, lease time.Duration) (Lock, error)
	Release(ctx context.Context, l Lock) error
}

// 商品ロックのキー
func ProductKey(productID int64) string {
	return fmt.Sprintf("product_lock:%d", productID)
}
