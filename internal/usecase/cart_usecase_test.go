package usecase_test

import (
	"context"
	"errors"
	"math"
	"net/http"
	"testing"

	"vegeapp/internal/domain/model"
	repo "vegeapp/internal/repository"
	"vegeapp/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newCartUC() (*usecase.CartUsecase, *CartRepoMock, *CartItemRepoMock, *ProductRepoMock) {
	cartRepo := new(CartRepoMock)
	itemRepo := new(CartItemRepoMock)
	productRepo := new(ProductRepoMock)
	return usecase.NewCartUsecase(cartRepo, itemRepo, productRepo), cartRepo, itemRepo, productRepo
}

func activeCart() model.Cart {
	return model.Cart{ID: "cart-1", UserID: "user-1", Status: model.CartStatusActive}
}

func carrot() model.Product {
	return model.Product{
		ID: "prod-carrot", Name: "Carrot", Price: 2.5, Stock: 10,
		Unit: "kg", InStock: true,
	}
}

// 同一商品の追加は行を増やさず数量加算でrepoに渡る
func TestCartUsecase_AddToCart_AccumulatesSameProduct(t *testing.T) {
	uc, cartRepo, itemRepo, productRepo := newCartUC()

	cartRepo.On("GetOrCreateActiveByUserID", mock.Anything, "user-1").Return(activeCart(), nil)
	productRepo.On("FindByID", mock.Anything, "prod-carrot").Return(carrot(), nil)

	existing := []model.CartItem{{
		ID: "item-1", CartID: "cart-1", ProductID: "prod-carrot",
		ProductNameSnapshot: "Carrot", UnitPriceSnapshot: 2.5, UnitSnapshot: "kg", Quantity: 2,
	}}
	itemRepo.On("ListByCartID", mock.Anything, "cart-1").Return(existing, nil).Once()

	snap := repo.CartItemSnapshot{ProductName: "Carrot", UnitPrice: 2.5, Unit: "kg"}
	itemRepo.On("UpsertByCartAndProduct", mock.Anything, "cart-1", "prod-carrot", int64(3), snap).Return(nil)

	after := []model.CartItem{{
		ID: "item-1", CartID: "cart-1", ProductID: "prod-carrot",
		ProductNameSnapshot: "Carrot", UnitPriceSnapshot: 2.5, UnitSnapshot: "kg", Quantity: 5,
	}}
	itemRepo.On("ListByCartID", mock.Anything, "cart-1").Return(after, nil).Once()

	out, err := uc.AddToCart(context.Background(), "user-1", usecase.AddCartInput{ProductID: "prod-carrot", Quantity: 3})

	assert.NoError(t, err)
	assert.Len(t, out.Items, 1)
	assert.Equal(t, int64(5), out.Items[0].Quantity)
	assert.Equal(t, int64(5), out.ItemCount)
	assert.InDelta(t, 12.5, out.Total, 1e-9)

	itemRepo.AssertExpectations(t)
}

// 未知の商品は黙って無視して現状のカートを返す
func TestCartUsecase_AddToCart_UnknownProductIsNoOp(t *testing.T) {
	uc, cartRepo, itemRepo, productRepo := newCartUC()

	cartRepo.On("GetOrCreateActiveByUserID", mock.Anything, "user-1").Return(activeCart(), nil)
	productRepo.On("FindByID", mock.Anything, "ghost").Return(model.Product{}, repo.ErrNotFound)
	itemRepo.On("ListByCartID", mock.Anything, "cart-1").Return([]model.CartItem{}, nil)

	out, err := uc.AddToCart(context.Background(), "user-1", usecase.AddCartInput{ProductID: "ghost", Quantity: 1})

	assert.NoError(t, err)
	assert.Empty(t, out.Items)
	itemRepo.AssertNotCalled(t, "UpsertByCartAndProduct", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// 価格が壊れている商品も無視する
func TestCartUsecase_AddToCart_BrokenPriceIsNoOp(t *testing.T) {
	uc, cartRepo, itemRepo, productRepo := newCartUC()

	bad := carrot()
	bad.Price = math.NaN()

	cartRepo.On("GetOrCreateActiveByUserID", mock.Anything, "user-1").Return(activeCart(), nil)
	productRepo.On("FindByID", mock.Anything, "prod-carrot").Return(bad, nil)
	itemRepo.On("ListByCartID", mock.Anything, "cart-1").Return([]model.CartItem{}, nil)

	out, err := uc.AddToCart(context.Background(), "user-1", usecase.AddCartInput{ProductID: "prod-carrot", Quantity: 1})

	assert.NoError(t, err)
	assert.Empty(t, out.Items)
	itemRepo.AssertNotCalled(t, "UpsertByCartAndProduct", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// 既存数量＋追加数量が在庫を超えたら400
func TestCartUsecase_AddToCart_StockExceeded(t *testing.T) {
	uc, cartRepo, itemRepo, productRepo := newCartUC()

	cartRepo.On("GetOrCreateActiveByUserID", mock.Anything, "user-1").Return(activeCart(), nil)
	productRepo.On("FindByID", mock.Anything, "prod-carrot").Return(carrot(), nil)

	existing := []model.CartItem{{
		ID: "item-1", CartID: "cart-1", ProductID: "prod-carrot",
		UnitPriceSnapshot: 2.5, Quantity: 8,
	}}
	itemRepo.On("ListByCartID", mock.Anything, "cart-1").Return(existing, nil)

	_, err := uc.AddToCart(context.Background(), "user-1", usecase.AddCartInput{ProductID: "prod-carrot", Quantity: 3})

	assertHTTPError(t, err, http.StatusBadRequest, "stock exceeded")
	itemRepo.AssertNotCalled(t, "UpsertByCartAndProduct", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCartUsecase_AddToCart_InvalidQuantity(t *testing.T) {
	uc, _, _, _ := newCartUC()

	_, err := uc.AddToCart(context.Background(), "user-1", usecase.AddCartInput{ProductID: "prod-carrot", Quantity: 0})
	assertHTTPError(t, err, http.StatusBadRequest, "invalid quantity")
}

// 数量0以下の更新は削除と同じ
func TestCartUsecase_UpdateQuantity_ZeroRemovesLine(t *testing.T) {
	uc, cartRepo, itemRepo, _ := newCartUC()

	cartRepo.On("GetOrCreateActiveByUserID", mock.Anything, "user-1").Return(activeCart(), nil)
	itemRepo.On("DeleteByProduct", mock.Anything, "cart-1", "prod-carrot").Return(nil)
	itemRepo.On("ListByCartID", mock.Anything, "cart-1").Return([]model.CartItem{}, nil)

	out, err := uc.UpdateQuantity(context.Background(), "user-1", "prod-carrot", usecase.UpdateCartItemInput{Quantity: 0})

	assert.NoError(t, err)
	assert.Empty(t, out.Items)
	itemRepo.AssertCalled(t, "DeleteByProduct", mock.Anything, "cart-1", "prod-carrot")
}

// 数量は設定（加算ではない）
func TestCartUsecase_UpdateQuantity_SetsExactValue(t *testing.T) {
	uc, cartRepo, itemRepo, productRepo := newCartUC()

	cartRepo.On("GetOrCreateActiveByUserID", mock.Anything, "user-1").Return(activeCart(), nil)
	itemRepo.On("FindByProduct", mock.Anything, "cart-1", "prod-carrot").Return(model.CartItem{
		ID: "item-1", CartID: "cart-1", ProductID: "prod-carrot", Quantity: 2,
	}, nil)
	productRepo.On("FindByID", mock.Anything, "prod-carrot").Return(carrot(), nil)
	itemRepo.On("UpdateQuantityByProduct", mock.Anything, "cart-1", "prod-carrot", int64(7)).Return(nil)
	itemRepo.On("ListByCartID", mock.Anything, "cart-1").Return([]model.CartItem{}, nil)

	_, err := uc.UpdateQuantity(context.Background(), "user-1", "prod-carrot", usecase.UpdateCartItemInput{Quantity: 7})

	assert.NoError(t, err)
	itemRepo.AssertCalled(t, "UpdateQuantityByProduct", mock.Anything, "cart-1", "prod-carrot", int64(7))
}

// 存在しない明細の更新は404
func TestCartUsecase_UpdateQuantity_MissingLine(t *testing.T) {
	uc, cartRepo, itemRepo, _ := newCartUC()

	cartRepo.On("GetOrCreateActiveByUserID", mock.Anything, "user-1").Return(activeCart(), nil)
	itemRepo.On("FindByProduct", mock.Anything, "cart-1", "prod-carrot").Return(model.CartItem{}, repo.ErrNotFound)

	_, err := uc.UpdateQuantity(context.Background(), "user-1", "prod-carrot", usecase.UpdateCartItemInput{Quantity: 2})

	assertHTTPError(t, err, http.StatusNotFound, "not found")
}

// 無い明細の削除は黙殺して現状を返す
func TestCartUsecase_RemoveFromCart_MissingLineIsNoOp(t *testing.T) {
	uc, cartRepo, itemRepo, _ := newCartUC()

	cartRepo.On("GetOrCreateActiveByUserID", mock.Anything, "user-1").Return(activeCart(), nil)
	itemRepo.On("DeleteByProduct", mock.Anything, "cart-1", "ghost").Return(repo.ErrNotFound)
	itemRepo.On("ListByCartID", mock.Anything, "cart-1").Return([]model.CartItem{}, nil)

	out, err := uc.RemoveFromCart(context.Background(), "user-1", "ghost")

	assert.NoError(t, err)
	assert.Empty(t, out.Items)
}

// 商品が消えた行・価格が壊れた行は合計にも件数にも入らない
func TestCartUsecase_GetCart_SkipsCorruptLines(t *testing.T) {
	uc, cartRepo, itemRepo, productRepo := newCartUC()

	cartRepo.On("GetOrCreateActiveByUserID", mock.Anything, "user-1").Return(activeCart(), nil)

	items := []model.CartItem{
		{ID: "ok", CartID: "cart-1", ProductID: "prod-carrot", ProductNameSnapshot: "Carrot", UnitPriceSnapshot: 2.5, Quantity: 2},
		{ID: "gone", CartID: "cart-1", ProductID: "prod-gone", ProductNameSnapshot: "Gone", UnitPriceSnapshot: 1.0, Quantity: 1},
		{ID: "nan", CartID: "cart-1", ProductID: "prod-nan", ProductNameSnapshot: "Broken", UnitPriceSnapshot: math.NaN(), Quantity: 1},
		{ID: "neg", CartID: "cart-1", ProductID: "prod-neg", ProductNameSnapshot: "Broken", UnitPriceSnapshot: -1, Quantity: 1},
	}
	itemRepo.On("ListByCartID", mock.Anything, "cart-1").Return(items, nil)

	productRepo.On("FindByID", mock.Anything, "prod-carrot").Return(carrot(), nil)
	productRepo.On("FindByID", mock.Anything, "prod-gone").Return(model.Product{}, repo.ErrNotFound)
	productRepo.On("FindByID", mock.Anything, "prod-nan").Return(model.Product{ID: "prod-nan"}, nil)
	productRepo.On("FindByID", mock.Anything, "prod-neg").Return(model.Product{ID: "prod-neg"}, nil)

	out, err := uc.GetCart(context.Background(), "user-1")

	assert.NoError(t, err)
	assert.Len(t, out.Items, 1)
	assert.Equal(t, "ok", out.Items[0].ID)
	assert.InDelta(t, 5.0, out.Total, 1e-9)
	assert.Equal(t, int64(2), out.ItemCount)
}

// 消えた商品（ErrNotFound）だけが読み飛ばし対象。
// DB障害まで飲み込むと空カートに見えてしまうので500で返す
func TestCartUsecase_GetCart_DBFailureIsNotAVanishedProduct(t *testing.T) {
	uc, cartRepo, itemRepo, productRepo := newCartUC()

	cartRepo.On("GetOrCreateActiveByUserID", mock.Anything, "user-1").Return(activeCart(), nil)
	itemRepo.On("ListByCartID", mock.Anything, "cart-1").Return([]model.CartItem{
		{ID: "ok", CartID: "cart-1", ProductID: "prod-carrot", ProductNameSnapshot: "Carrot", UnitPriceSnapshot: 2.5, Quantity: 4},
	}, nil)
	productRepo.On("FindByID", mock.Anything, "prod-carrot").Return(model.Product{}, errors.New("connection reset"))

	_, err := uc.GetCart(context.Background(), "user-1")

	assertHTTPError(t, err, http.StatusInternalServerError, "db error")
}

// 合計は「スナップショット単価×数量」の和
func TestCartUsecase_GetCart_TotalUsesSnapshotPrices(t *testing.T) {
	uc, cartRepo, itemRepo, productRepo := newCartUC()

	cartRepo.On("GetOrCreateActiveByUserID", mock.Anything, "user-1").Return(activeCart(), nil)

	items := []model.CartItem{
		{ID: "a", CartID: "cart-1", ProductID: "prod-carrot", UnitPriceSnapshot: 2.5, Quantity: 2},
		{ID: "b", CartID: "cart-1", ProductID: "prod-leek", UnitPriceSnapshot: 3.99, Quantity: 3},
	}
	itemRepo.On("ListByCartID", mock.Anything, "cart-1").Return(items, nil)

	// カタログ側で値上げされていてもカートの合計は変わらない
	current := carrot()
	current.Price = 99
	productRepo.On("FindByID", mock.Anything, "prod-carrot").Return(current, nil)
	productRepo.On("FindByID", mock.Anything, "prod-leek").Return(model.Product{ID: "prod-leek", Price: 99, InStock: true}, nil)

	out, err := uc.GetCart(context.Background(), "user-1")

	assert.NoError(t, err)
	assert.InDelta(t, 2.5*2+3.99*3, out.Total, 1e-9)
	assert.Equal(t, int64(5), out.ItemCount)
}

func TestCartUsecase_ClearCart(t *testing.T) {
	uc, cartRepo, _, _ := newCartUC()

	cartRepo.On("GetOrCreateActiveByUserID", mock.Anything, "user-1").Return(activeCart(), nil)
	cartRepo.On("Clear", mock.Anything, "cart-1").Return(nil)

	out, err := uc.ClearCart(context.Background(), "user-1")

	assert.NoError(t, err)
	assert.Empty(t, out.Items)
	assert.Zero(t, out.Total)
	cartRepo.AssertExpectations(t)
}
