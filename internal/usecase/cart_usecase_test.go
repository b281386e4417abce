package usecase_test

import (
	"context"
	"testing"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type CartRepoMock struct{ mock.Mock }

func (m *CartRepoMock) GetOrCreateActiveByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	args := m.Called(ctx, userID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *CartRepoMock) FindByID(ctx context.Context, cartID int64) (model.Cart, error) {
	panic("not used in CartUsecase tests")
}

func (m *CartRepoMock) FindActiveByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	args := m.Called(ctx, userID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *CartRepoMock) UpdateStatus(ctx context.Context, cartID int64, status model.CartStatus) error {
	panic("not used in CartUsecase tests")
}

type CartItemRepoMock struct{ mock.Mock }

func (m *CartItemRepoMock) ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error) {
	args := m.Called(ctx, cartID)
	items, _ := args.Get(0).([]model.CartItem)
	return items, args.Error(1)
}

func (m *CartItemRepoMock) FindByID(ctx context.Context, cartItemID int64) (model.CartItem, error) {
	panic("not used in CartUsecase tests")
}

func (m *CartItemRepoMock) IsOwnedByUser(ctx context.Context, cartItemID int64, userID int64) (bool, error) {
	args := m.Called(ctx, cartItemID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *CartItemRepoMock) UpsertByCartAndProduct(ctx context.Context, cartID int64, productID int64, shopID int64, addQty int64, unitPriceSnapshot int64) error {
	args := m.Called(ctx, cartID, productID, shopID, addQty, unitPriceSnapshot)
	return args.Error(0)
}

func (m *CartItemRepoMock) UpdateQuantity(ctx context.Context, cartItemID int64, qty int64) error {
	args := m.Called(ctx, cartItemID, qty)
	return args.Error(0)
}

func (m *CartItemRepoMock) DeleteByID(ctx context.Context, cartItemID int64) error {
	args := m.Called(ctx, cartItemID)
	return args.Error(0)
}

func (m *CartItemRepoMock) RemoveByProductIDs(ctx context.Context, cartID int64, productIDs []int64) error {
	panic("not used in CartUsecase tests")
}

func newCartUsecase(cartRepo *CartRepoMock, itemRepo *CartItemRepoMock, productRepo *CoProductRepoMock) *usecase.CartUsecase {
	return usecase.NewCartUsecase(cartRepo, itemRepo, productRepo)
}

func TestCartUsecase_AddToCart_ProductNotFound(t *testing.T) {
	cRepo := new(CartRepoMock)
	iRepo := new(CartItemRepoMock)
	pRepo := new(CoProductRepoMock)
	uc := newCartUsecase(cRepo, iRepo, pRepo)

	cRepo.On("GetOrCreateActiveByUserID", mock.Anything, int64(1)).Return(model.Cart{ID: 10, UserID: 1}, nil)
	pRepo.On("FindPublishedByID", mock.Anything, int64(5)).Return(model.Product{}, repo.ErrNotFound)

	_, err := uc.AddToCart(context.Background(), 1, usecase.AddCartInput{ProductID: 5, Quantity: 1})
	assertErrContains(t, err, "product not found")
}

func TestCartUsecase_AddToCart_ShopMismatch(t *testing.T) {
	cRepo := new(CartRepoMock)
	iRepo := new(CartItemRepoMock)
	pRepo := new(CoProductRepoMock)
	uc := newCartUsecase(cRepo, iRepo, pRepo)

	cRepo.On("GetOrCreateActiveByUserID", mock.Anything, int64(1)).Return(model.Cart{ID: 10, UserID: 1}, nil)
	pRepo.On("FindPublishedByID", mock.Anything, int64(5)).
		Return(model.Product{ID: 5, ShopID: 100, Price: 500, IsPublished: true}, nil)

	// 申告ショップが実ショップと違う
	_, err := uc.AddToCart(context.Background(), 1, usecase.AddCartInput{ProductID: 5, ShopID: 999, Quantity: 1})
	assertErrContains(t, err, "product not found")
}

func TestCartUsecase_AddToCart_Success(t *testing.T) {
	cRepo := new(CartRepoMock)
	iRepo := new(CartItemRepoMock)
	pRepo := new(CoProductRepoMock)
	uc := newCartUsecase(cRepo, iRepo, pRepo)

	cRepo.On("GetOrCreateActiveByUserID", mock.Anything, int64(1)).Return(model.Cart{ID: 10, UserID: 1}, nil)
	pRepo.On("FindPublishedByID", mock.Anything, int64(5)).
		Return(model.Product{ID: 5, ShopID: 100, Name: "product", Price: 500, IsPublished: true}, nil)

	// スナップショット価格はサーバ側の現在価格
	iRepo.On("UpsertByCartAndProduct", mock.Anything, int64(10), int64(5), int64(100), int64(2), int64(500)).Return(nil)
	iRepo.On("ListByCartID", mock.Anything, int64(10)).Return([]model.CartItem{
		{ID: 1, CartID: 10, ProductID: 5, ShopID: 100, Quantity: 2, UnitPriceSnapshot: 500},
	}, nil)

	out, err := uc.AddToCart(context.Background(), 1, usecase.AddCartInput{ProductID: 5, Quantity: 2})
	assert.NoError(t, err)
	assert.Equal(t, int64(1000), out.Total)
	assert.Equal(t, 1, len(out.Items))

	iRepo.AssertExpectations(t)
}

func TestCartUsecase_UpdateCartItem_NotOwned(t *testing.T) {
	cRepo := new(CartRepoMock)
	iRepo := new(CartItemRepoMock)
	uc := newCartUsecase(cRepo, iRepo, new(CoProductRepoMock))

	iRepo.On("IsOwnedByUser", mock.Anything, int64(3), int64(1)).Return(false, nil)

	_, err := uc.UpdateCartItem(context.Background(), 1, 3, 5)
	assertErrContains(t, err, "not found")
}

func TestCartUsecase_UpdateCartItem_ZeroQuantityDeletes(t *testing.T) {
	cRepo := new(CartRepoMock)
	iRepo := new(CartItemRepoMock)
	uc := newCartUsecase(cRepo, iRepo, new(CoProductRepoMock))

	iRepo.On("IsOwnedByUser", mock.Anything, int64(3), int64(1)).Return(true, nil)
	iRepo.On("DeleteByID", mock.Anything, int64(3)).Return(nil)
	cRepo.On("FindActiveByUserID", mock.Anything, int64(1)).Return(model.Cart{ID: 10, UserID: 1}, nil)
	iRepo.On("ListByCartID", mock.Anything, int64(10)).Return([]model.CartItem{}, nil)

	out, err := uc.UpdateCartItem(context.Background(), 1, 3, 0)
	assert.NoError(t, err)
	assert.Equal(t, 0, len(out.Items))

	iRepo.AssertCalled(t, "DeleteByID", mock.Anything, int64(3))
	iRepo.AssertNotCalled(t, "UpdateQuantity", mock.Anything, mock.Anything, mock.Anything)
}

func TestCartUsecase_GetCart_SkipsUnpublishedProducts(t *testing.T) {
	cRepo := new(CartRepoMock)
	iRepo := new(CartItemRepoMock)
	pRepo := new(CoProductRepoMock)
	uc := newCartUsecase(cRepo, iRepo, pRepo)

	cRepo.On("GetOrCreateActiveByUserID", mock.Anything, int64(1)).Return(model.Cart{ID: 10, UserID: 1}, nil)
	iRepo.On("ListByCartID", mock.Anything, int64(10)).Return([]model.CartItem{
		{ID: 1, CartID: 10, ProductID: 5, Quantity: 1, UnitPriceSnapshot: 500},
		{ID: 2, CartID: 10, ProductID: 6, Quantity: 1, UnitPriceSnapshot: 300},
	}, nil)
	pRepo.On("FindPublishedByID", mock.Anything, int64(5)).
		Return(model.Product{ID: 5, Name: "still here", Price: 500, IsPublished: true}, nil)
	// 6は非公開になった
	pRepo.On("FindPublishedByID", mock.Anything, int64(6)).Return(model.Product{}, repo.ErrNotFound)

	out, err := uc.GetCart(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(out.Items))
	assert.Equal(t, int64(500), out.Total)
}
