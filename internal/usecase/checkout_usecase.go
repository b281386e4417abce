package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/rs/zerolog"
)

// ショップごとの割引参照。先頭の1件だけ評価する（仕様上の簡略化）
type ShopDiscountRef struct {
	Code string `json:"code"`
}

type CheckoutItemInput struct {
	ProductID int64 `json:"product_id"`
	// クライアント申告価格。合計は常にサーバ側の価格で計算する
	Price    int64 `json:"price"`
	Quantity int64 `json:"quantity"`
}

type ShopOrderGroupInput struct {
	ShopID    int64               `json:"shop_id"`
	Discounts []ShopDiscountRef   `json:"shop_discounts"`
	Items     []CheckoutItemInput `json:"items"`
}

type PricedItem struct {
	ProductID int64  `json:"product_id"`
	ShopID    int64  `json:"shop_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int64  `json:"quantity"`
}

type PricedGroup struct {
	ShopID             int64        `json:"shop_id"`
	PriceRaw           int64        `json:"price_raw"`
	PriceApplyDiscount int64        `json:"price_apply_discount"`
	Discount           int64        `json:"discount"`
	DiscountID         int64        `json:"-"`
	Items              []PricedItem `json:"items"`
}

type CheckoutTotals struct {
	TotalPrice    int64 `json:"total_price"`
	FeeShip       int64 `json:"fee_ship"`
	TotalDiscount int64 `json:"total_discount"`
	TotalCheckout int64 `json:"total_checkout"`
}

type ReviewOutput struct {
	Groups []PricedGroup  `json:"shop_order_groups"`
	Totals CheckoutTotals `json:"checkout_order"`
}

type CheckoutInput struct {
	Groups   []ShopOrderGroupInput
	Shipping map[string]interface{}
	Payment  map[string]interface{}
}

type OrderItemOutput struct {
	ProductID int64  `json:"product_id"`
	ShopID    int64  `json:"shop_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int64  `json:"quantity"`
}

type OrderOutput struct {
	ID             int64             `json:"id"`
	UserID         int64             `json:"user_id"`
	Status         string            `json:"status"`
	Totals         CheckoutTotals    `json:"checkout"`
	TrackingNumber string            `json:"tracking_number"`
	CreatedAt      time.Time         `json:"created_at"`
	Items          []OrderItemOutput `json:"products"`
}

// 割引評価（外部コラボレータ）。DiscountUsecaseが実装する
type DiscountEvaluator interface {
	Amount(ctx context.Context, shopID int64, code string, items []PricedItem) (DiscountAmountOutput, error)

	// 注文確定後の利用回数カウント
	Consume(ctx context.Context, discountID int64) error
}

// CheckoutUsecase は review で価格を確定し、checkout で
// 予約→注文作成→カート整理→ロック解放を進める。
// 予約成功後に何かが失敗したら必ず全補償してからエラーを返す
type CheckoutUsecase struct {
	cartRepo     repo.CartRepository
	cartItemRepo repo.CartItemRepository
	productRepo  repo.ProductRepository
	orderRepo    repo.OrderRepository
	discounts    DiscountEvaluator
	reservations *ReservationManager
	log          zerolog.Logger
}

func NewCheckoutUsecase(
	cartRepo repo.CartRepository,
	cartItemRepo repo.CartItemRepository,
	productRepo repo.ProductRepository,
	orderRepo repo.OrderRepository,
	discounts DiscountEvaluator,
	reservations *ReservationManager,
	log zerolog.Logger,
) *CheckoutUsecase {
	return &CheckoutUsecase{
		cartRepo:     cartRepo,
		cartItemRepo: cartItemRepo,
		productRepo:  productRepo,
		orderRepo:    orderRepo,
		discounts:    discounts,
		reservations: reservations,
		log:          log,
	}
}

// Review は読み取りのみ。何度呼んでも状態は変わらない
func (u *CheckoutUsecase) Review(ctx context.Context, userID int64, cartID int64, groups []ShopOrderGroupInput) (ReviewOutput, error) {
	if userID <= 0 {
		return ReviewOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if cartID <= 0 {
		return ReviewOutput{}, NewHTTPError(http.StatusBadRequest, "invalid cart_id")
	}

	cart, err := u.cartRepo.FindByID(ctx, cartID)
	if errors.Is(err, repo.ErrNotFound) {
		return ReviewOutput{}, NewHTTPError(http.StatusNotFound, "cart not found")
	}
	if err != nil {
		return ReviewOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if cart.UserID != userID {
		// 他人のカートは存在しない扱い
		return ReviewOutput{}, NewHTTPError(http.StatusNotFound, "cart not found")
	}

	out := ReviewOutput{Groups: make([]PricedGroup, 0, len(groups))}

	for _, g := range groups {
		priced := PricedGroup{ShopID: g.ShopID, Items: make([]PricedItem, 0, len(g.Items))}

		for _, it := range g.Items {
			// 価格はサーバ側が正。非公開・不存在は注文不可
			p, err := u.productRepo.FindPublishedByID(ctx, it.ProductID)
			if errors.Is(err, repo.ErrNotFound) {
				return ReviewOutput{}, NewHTTPError(http.StatusBadRequest, "order with invalid product")
			}
			if err != nil {
				return ReviewOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
			}

			priced.Items = append(priced.Items, PricedItem{
				ProductID: p.ID,
				ShopID:    p.ShopID,
				Name:      p.Name,
				Price:     p.Price,
				Quantity:  it.Quantity,
			})
			priced.PriceRaw += p.Price * it.Quantity
		}

		priced.PriceApplyDiscount = priced.PriceRaw

		// 1ショップ1割引（先頭のみ）
		if len(g.Discounts) > 0 {
			amount, err := u.discounts.Amount(ctx, g.ShopID, g.Discounts[0].Code, priced.Items)
			if err != nil {
				return ReviewOutput{}, err
			}

			priced.Discount = amount.Discount
			priced.DiscountID = amount.DiscountID
			if amount.Discount > 0 {
				priced.PriceApplyDiscount = priced.PriceRaw - amount.Discount
				if priced.PriceApplyDiscount < 0 {
					priced.PriceApplyDiscount = 0
				}
			}
		}

		out.Totals.TotalPrice += priced.PriceRaw
		out.Totals.TotalDiscount += priced.Discount
		out.Totals.TotalCheckout += priced.PriceApplyDiscount

		out.Groups = append(out.Groups, priced)
	}

	return out, nil
}

// Checkout は全明細の予約が成功したときだけ注文を作る。
// 予約後の失敗（注文作成・カート更新）でも予約とロックを必ず片づける
func (u *CheckoutUsecase) Checkout(ctx context.Context, userID int64, cartID int64, in CheckoutInput) (OrderOutput, error) {
	if err := validateCheckoutInput(in); err != nil {
		return OrderOutput{}, err
	}

	review, err := u.Review(ctx, userID, cartID, in.Groups)
	if err != nil {
		return OrderOutput{}, err
	}

	// ショップグループをまたいで明細を平坦化
	var reserveItems []ReserveItem
	var pricedItems []PricedItem
	for _, g := range review.Groups {
		for _, it := range g.Items {
			reserveItems = append(reserveItems, ReserveItem{
				ProductID: it.ProductID,
				ShopID:    it.ShopID,
				Quantity:  it.Quantity,
			})
			pricedItems = append(pricedItems, it)
		}
	}

	batch, err := u.reservations.ReserveBatch(ctx, cartID, reserveItems)
	if err != nil {
		// 予約側で補償済み
		return OrderOutput{}, err
	}

	shippingJSON, paymentJSON, err := marshalCheckoutBlobs(in)
	if err != nil {
		batch.Abort(ctx)
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	order := model.Order{
		UserID:         userID,
		TotalPrice:     review.Totals.TotalPrice,
		TotalDiscount:  review.Totals.TotalDiscount,
		TotalCheckout:  review.Totals.TotalCheckout,
		FeeShip:        review.Totals.FeeShip,
		Shipping:       shippingJSON,
		Payment:        paymentJSON,
		TrackingNumber: newTrackingNumber(),
		Status:         model.OrderStatusPending,
	}

	orderItems := make([]model.OrderItem, 0, len(pricedItems))
	for _, it := range pricedItems {
		orderItems = append(orderItems, model.OrderItem{
			ProductID:    it.ProductID,
			ShopID:       it.ShopID,
			NameSnapshot: it.Name,
			UnitPrice:    it.Price,
			Quantity:     it.Quantity,
		})
	}

	created, err := u.orderRepo.Create(ctx, order, orderItems)
	if err != nil {
		u.log.Error().Err(err).Int64("cart_id", cartID).Msg("order create failed, aborting reservations")
		batch.Abort(ctx)
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	// 購入済み分をカートから外す
	productIDs := make([]int64, 0, len(pricedItems))
	for _, it := range pricedItems {
		productIDs = append(productIDs, it.ProductID)
	}
	if err := u.cartItemRepo.RemoveByProductIDs(ctx, cartID, productIDs); err != nil {
		u.log.Error().Err(err).Int64("order_id", created.ID).Msg("cart prune failed, cancelling order")

		// 注文を残さない。キャンセル失敗はログのみ（元エラーを潰さない）
		if stErr := u.orderRepo.UpdateStatus(ctx, created.ID, model.OrderStatusCancelled); stErr != nil {
			u.log.Error().Err(stErr).Int64("order_id", created.ID).Msg("order cancel failed during compensation")
		}
		batch.Abort(ctx)
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	// 注文が確定したのでロックを返す
	batch.Commit(ctx)

	// 割引の利用回数。失敗しても注文は成立している
	for _, g := range review.Groups {
		if g.Discount <= 0 || g.DiscountID <= 0 {
			continue
		}
		if err := u.discounts.Consume(ctx, g.DiscountID); err != nil {
			u.log.Error().Err(err).Int64("discount_id", g.DiscountID).Int64("order_id", created.ID).Msg("discount usage count failed")
		}
	}

	return toOrderOutput(created, orderItems), nil
}

func validateCheckoutInput(in CheckoutInput) error {
	if len(in.Groups) == 0 {
		return NewHTTPError(http.StatusBadRequest, "empty order")
	}
	for _, g := range in.Groups {
		if len(g.Items) == 0 {
			return NewHTTPError(http.StatusBadRequest, "empty items")
		}
		for _, it := range g.Items {
			if it.ProductID <= 0 || it.Quantity < 1 {
				return NewHTTPError(http.StatusBadRequest, "invalid quantity")
			}
		}
	}
	return nil
}

func marshalCheckoutBlobs(in CheckoutInput) (string, string, error) {
	shipping := in.Shipping
	if shipping == nil {
		shipping = map[string]interface{}{}
	}
	payment := in.Payment
	if payment == nil {
		payment = map[string]interface{}{}
	}

	sb, err := json.Marshal(shipping)
	if err != nil {
		return "", "", err
	}
	pb, err := json.Marshal(payment)
	if err != nil {
		return "", "", err
	}
	return string(sb), string(pb), nil
}

func newTrackingNumber() string {
	return fmt.Sprintf("#%s", time.Now().Format("20060102150405"))
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			ProductID: it.ProductID,
			ShopID:    it.ShopID,
			Name:      it.NameSnapshot,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
		})
	}

	return OrderOutput{
		ID:     o.ID,
		UserID: o.UserID,
		Status: string(o.Status),
		Totals: CheckoutTotals{
			TotalPrice:    o.TotalPrice,
			FeeShip:       o.FeeShip,
			TotalDiscount: o.TotalDiscount,
			TotalCheckout: o.TotalCheckout,
		},
		TrackingNumber: o.TrackingNumber,
		CreatedAt:      o.CreatedAt,
		Items:          outItems,
	}
}
