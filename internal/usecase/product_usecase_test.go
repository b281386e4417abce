package usecase_test

import (
	"context"
	"testing"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type ProdRepoMock struct{ CoProductRepoMock }

func (m *ProdRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	args := m.Called(ctx, p)
	created, _ := args.Get(0).(model.Product)
	return created, args.Error(1)
}

func (m *ProdRepoMock) Publish(ctx context.Context, shopID int64, productID int64) error {
	args := m.Called(ctx, shopID, productID)
	return args.Error(0)
}

func (m *ProdRepoMock) ListPublished(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	args := m.Called(ctx, q)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Get(1).(int64), args.Error(2)
}

func newProductUsecase(pRepo *ProdRepoMock, inv *memInventory) *usecase.ProductUsecase {
	return usecase.NewProductUsecase(pRepo, inv, zerolog.Nop())
}

func TestProductUsecase_Create_InvalidAttributes(t *testing.T) {
	uc := newProductUsecase(new(ProdRepoMock), newMemInventory(nil))

	_, err := uc.Create(context.Background(), 100, usecase.CreateProductInput{
		Name:       "shirt",
		Type:       "clothing",
		Attributes: `{"brand":"acme"}`, // size/material欠落
		Price:      1000,
	})
	assertErrContains(t, err, `"size" is required`)
}

func TestProductUsecase_Create_UnknownType(t *testing.T) {
	uc := newProductUsecase(new(ProdRepoMock), newMemInventory(nil))

	_, err := uc.Create(context.Background(), 100, usecase.CreateProductInput{
		Name:  "mystery",
		Type:  "food",
		Price: 1000,
	})
	assertErrContains(t, err, "invalid product type")
}

func TestProductUsecase_Create_DraftWithInitialStock(t *testing.T) {
	pRepo := new(ProdRepoMock)
	inv := newMemInventory(nil)
	uc := newProductUsecase(pRepo, inv)

	pRepo.On("Create", mock.Anything, mock.MatchedBy(func(p model.Product) bool {
		// 新規は必ず下書きで、公開されない
		return p.IsDraft && !p.IsPublished && p.ShopID == 100
	})).Return(model.Product{ID: 5, ShopID: 100, IsDraft: true}, nil)

	created, err := uc.Create(context.Background(), 100, usecase.CreateProductInput{
		Name:       "shirt",
		Type:       "clothing",
		Attributes: `{"brand":"acme","size":"M","material":"cotton"}`,
		Price:      1000,
		Stock:      30,
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(5), created.ID)
	assert.Equal(t, int64(30), inv.stockOf(5))

	pRepo.AssertExpectations(t)
}

func TestProductUsecase_Publish_NotFound(t *testing.T) {
	pRepo := new(ProdRepoMock)
	uc := newProductUsecase(pRepo, newMemInventory(nil))

	pRepo.On("Publish", mock.Anything, int64(100), int64(9)).Return(repo.ErrNotFound)

	err := uc.Publish(context.Background(), 100, 9)
	assertErrContains(t, err, "not found")
}

func TestProductUsecase_ListPublished_InvalidSort(t *testing.T) {
	uc := newProductUsecase(new(ProdRepoMock), newMemInventory(nil))

	_, err := uc.ListPublished(context.Background(), usecase.ListProductsInput{Page: 1, Limit: 20, Sort: "cheapest"})
	assertErrContains(t, err, "invalid sort")
}

func TestProductUsecase_ListPublished_Success(t *testing.T) {
	pRepo := new(ProdRepoMock)
	uc := newProductUsecase(pRepo, newMemInventory(nil))

	q := repo.ProductListQuery{Page: 1, Limit: 20, Q: "shirt", Sort: "price_asc"}
	pRepo.On("ListPublished", mock.Anything, q).Return([]model.Product{{ID: 1}}, int64(1), nil)

	out, err := uc.ListPublished(context.Background(), usecase.ListProductsInput{Page: 1, Limit: 20, Q: "shirt", Sort: "price_asc"})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), out.Total)
	assert.Equal(t, 1, len(out.Items))

	pRepo.AssertExpectations(t)
}
