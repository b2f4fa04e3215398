package usecase_test

import (
	"context"
	"math"
	"net/http"
	"testing"
	"time"

	"vegeapp/internal/domain/model"
	repo "vegeapp/internal/repository"
	"vegeapp/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newOrderUC() (*usecase.OrderUsecase, *TxReposMock, *NotifierMock) {
	repos := newTxReposMock()
	notifier := &NotifierMock{}
	uc := usecase.NewOrderUsecase(&TxManagerMock{Repos: repos}, notifier)
	return uc, repos, notifier
}

func placeInput(key string) usecase.PlaceOrderInput {
	return usecase.PlaceOrderInput{DeliveryAddress: "12 Farm Lane", IdempotencyKey: key}
}

// 単品チェックアウトの基本形。
// pending、合計は単価×数量、お届け目安は+24h
func TestOrderUsecase_PlaceOrder_SingleItem(t *testing.T) {
	uc, r, notifier := newOrderUC()

	r.orders.On("FindByIdempotencyKey", mock.Anything, "user-1", "key-1").Return(model.Order{}, false, nil)
	r.carts.On("FindActiveByUserID", mock.Anything, "user-1").Return(activeCart(), nil)

	r.cartItems.On("ListByCartID", mock.Anything, "cart-1").Return([]model.CartItem{{
		ID: "item-1", CartID: "cart-1", ProductID: "prod-leek",
		ProductNameSnapshot: "Leek", UnitPriceSnapshot: 3.99, UnitSnapshot: "bunch", Quantity: 1,
	}}, nil)

	r.products.On("FindByID", mock.Anything, "prod-leek").Return(model.Product{ID: "prod-leek", InStock: true}, nil)
	r.inventory.On("DecreaseStockIfEnough", mock.Anything, "prod-leek", int64(1)).Return(true, nil)
	r.orders.On("Create", mock.Anything, mock.AnythingOfType("model.Order")).Return(nil)
	r.orderItems.On("CreateBulk", mock.Anything, mock.AnythingOfType("string"), mock.Anything).Return(nil)
	r.carts.On("UpdateStatus", mock.Anything, "cart-1", model.CartStatusCheckedOut).Return(nil)
	r.carts.On("Clear", mock.Anything, "cart-1").Return(nil)

	before := time.Now()
	out, err := uc.PlaceOrder(context.Background(), "user-1", placeInput("key-1"))
	after := time.Now()

	assert.NoError(t, err)
	assert.Equal(t, "pending", out.Status)
	assert.InDelta(t, 3.99, out.Total, 1e-9)
	assert.Len(t, out.Items, 1)
	assert.Equal(t, "Leek", out.Items[0].Name)

	if assert.NotNil(t, out.EstimatedDelivery) {
		assert.True(t, !out.EstimatedDelivery.Before(before.Add(24*time.Hour)))
		assert.True(t, !out.EstimatedDelivery.After(after.Add(24*time.Hour)))
	}

	// 確定後に購読者へ通知される
	assert.Len(t, notifier.Notified, 1)

	r.orders.AssertExpectations(t)
	r.carts.AssertExpectations(t)
}

// 同じキーなら注文を作り直さず同じ結果を返す
func TestOrderUsecase_PlaceOrder_IdempotentReplay(t *testing.T) {
	uc, r, _ := newOrderUC()

	existing := model.Order{
		ID: "order-1", UserID: "user-1", Status: model.OrderStatusPending,
		Total: 7.98, DeliveryAddress: "12 Farm Lane", IdempotencyKey: "key-1",
	}
	r.orders.On("FindByIdempotencyKey", mock.Anything, "user-1", "key-1").Return(existing, true, nil)
	r.orderItems.On("ListByOrderID", mock.Anything, "order-1").Return([]model.OrderItem{}, nil)

	out, err := uc.PlaceOrder(context.Background(), "user-1", placeInput("key-1"))

	assert.NoError(t, err)
	assert.Equal(t, "order-1", out.ID)

	r.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	r.inventory.AssertNotCalled(t, "DecreaseStockIfEnough", mock.Anything, mock.Anything, mock.Anything)
	r.carts.AssertNotCalled(t, "Clear", mock.Anything, mock.Anything)
}

// 配送先なしは何も書き換えずに400
func TestOrderUsecase_PlaceOrder_MissingAddress(t *testing.T) {
	uc, r, _ := newOrderUC()

	_, err := uc.PlaceOrder(context.Background(), "user-1", usecase.PlaceOrderInput{
		DeliveryAddress: "   ", IdempotencyKey: "key-1",
	})

	assertHTTPError(t, err, http.StatusBadRequest, "delivery address required")
	r.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// 空カートでは注文できない
func TestOrderUsecase_PlaceOrder_EmptyCart(t *testing.T) {
	uc, r, _ := newOrderUC()

	r.orders.On("FindByIdempotencyKey", mock.Anything, "user-1", "key-1").Return(model.Order{}, false, nil)
	r.carts.On("FindActiveByUserID", mock.Anything, "user-1").Return(activeCart(), nil)
	r.cartItems.On("ListByCartID", mock.Anything, "cart-1").Return([]model.CartItem{}, nil)

	_, err := uc.PlaceOrder(context.Background(), "user-1", placeInput("key-1"))

	assertHTTPError(t, err, http.StatusBadRequest, "cart empty")
}

// 壊れた行だけのカートも空と同じ扱い
func TestOrderUsecase_PlaceOrder_OnlyCorruptLines(t *testing.T) {
	uc, r, _ := newOrderUC()

	r.orders.On("FindByIdempotencyKey", mock.Anything, "user-1", "key-1").Return(model.Order{}, false, nil)
	r.carts.On("FindActiveByUserID", mock.Anything, "user-1").Return(activeCart(), nil)

	r.cartItems.On("ListByCartID", mock.Anything, "cart-1").Return([]model.CartItem{
		{ID: "nan", ProductID: "prod-nan", UnitPriceSnapshot: math.NaN(), Quantity: 1},
		{ID: "gone", ProductID: "prod-gone", UnitPriceSnapshot: 1.0, Quantity: 1},
	}, nil)
	r.products.On("FindByID", mock.Anything, "prod-gone").Return(model.Product{}, repo.ErrNotFound)

	_, err := uc.PlaceOrder(context.Background(), "user-1", placeInput("key-1"))

	assertHTTPError(t, err, http.StatusBadRequest, "cart empty")
	r.inventory.AssertNotCalled(t, "DecreaseStockIfEnough", mock.Anything, mock.Anything, mock.Anything)
}

// 消えた商品の行は除外して残りで注文する
func TestOrderUsecase_PlaceOrder_SkipsStaleLines(t *testing.T) {
	uc, r, _ := newOrderUC()

	r.orders.On("FindByIdempotencyKey", mock.Anything, "user-1", "key-1").Return(model.Order{}, false, nil)
	r.carts.On("FindActiveByUserID", mock.Anything, "user-1").Return(activeCart(), nil)

	r.cartItems.On("ListByCartID", mock.Anything, "cart-1").Return([]model.CartItem{
		{ID: "ok", ProductID: "prod-leek", ProductNameSnapshot: "Leek", UnitPriceSnapshot: 3.99, Quantity: 2},
		{ID: "gone", ProductID: "prod-gone", ProductNameSnapshot: "Gone", UnitPriceSnapshot: 1.0, Quantity: 1},
	}, nil)

	r.products.On("FindByID", mock.Anything, "prod-leek").Return(model.Product{ID: "prod-leek", InStock: true}, nil)
	r.products.On("FindByID", mock.Anything, "prod-gone").Return(model.Product{}, repo.ErrNotFound)
	r.inventory.On("DecreaseStockIfEnough", mock.Anything, "prod-leek", int64(2)).Return(true, nil)
	r.orders.On("Create", mock.Anything, mock.AnythingOfType("model.Order")).Return(nil)
	r.orderItems.On("CreateBulk", mock.Anything, mock.AnythingOfType("string"), mock.Anything).Return(nil)
	r.carts.On("UpdateStatus", mock.Anything, "cart-1", model.CartStatusCheckedOut).Return(nil)
	r.carts.On("Clear", mock.Anything, "cart-1").Return(nil)

	out, err := uc.PlaceOrder(context.Background(), "user-1", placeInput("key-1"))

	assert.NoError(t, err)
	assert.Len(t, out.Items, 1)
	assert.InDelta(t, 7.98, out.Total, 1e-9)
	r.inventory.AssertNotCalled(t, "DecreaseStockIfEnough", mock.Anything, "prod-gone", mock.Anything)
}

// 在庫不足なら400で、カートには触れない（Txごとロールバック前提）
func TestOrderUsecase_PlaceOrder_OutOfStock(t *testing.T) {
	uc, r, notifier := newOrderUC()

	r.orders.On("FindByIdempotencyKey", mock.Anything, "user-1", "key-1").Return(model.Order{}, false, nil)
	r.carts.On("FindActiveByUserID", mock.Anything, "user-1").Return(activeCart(), nil)
	r.cartItems.On("ListByCartID", mock.Anything, "cart-1").Return([]model.CartItem{
		{ID: "ok", ProductID: "prod-leek", UnitPriceSnapshot: 3.99, Quantity: 99},
	}, nil)
	r.products.On("FindByID", mock.Anything, "prod-leek").Return(model.Product{ID: "prod-leek", InStock: true}, nil)
	r.inventory.On("DecreaseStockIfEnough", mock.Anything, "prod-leek", int64(99)).Return(false, nil)

	_, err := uc.PlaceOrder(context.Background(), "user-1", placeInput("key-1"))

	assertHTTPError(t, err, http.StatusBadRequest, "out of stock")
	r.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	r.carts.AssertNotCalled(t, "Clear", mock.Anything, mock.Anything)
	assert.Empty(t, notifier.Notified)
}

// 片方だけの座標は捨てる
func TestOrderUsecase_PlaceOrder_DropsHalfCoordinates(t *testing.T) {
	uc, r, _ := newOrderUC()

	lat := 35.6812
	in := placeInput("key-1")
	in.Latitude = &lat // Longitudeなし

	r.orders.On("FindByIdempotencyKey", mock.Anything, "user-1", "key-1").Return(model.Order{}, false, nil)
	r.carts.On("FindActiveByUserID", mock.Anything, "user-1").Return(activeCart(), nil)
	r.cartItems.On("ListByCartID", mock.Anything, "cart-1").Return([]model.CartItem{
		{ID: "ok", ProductID: "prod-leek", ProductNameSnapshot: "Leek", UnitPriceSnapshot: 3.99, Quantity: 1},
	}, nil)
	r.products.On("FindByID", mock.Anything, "prod-leek").Return(model.Product{ID: "prod-leek", InStock: true}, nil)
	r.inventory.On("DecreaseStockIfEnough", mock.Anything, "prod-leek", int64(1)).Return(true, nil)
	r.orders.On("Create", mock.Anything, mock.AnythingOfType("model.Order")).Return(nil)
	r.orderItems.On("CreateBulk", mock.Anything, mock.AnythingOfType("string"), mock.Anything).Return(nil)
	r.carts.On("UpdateStatus", mock.Anything, "cart-1", model.CartStatusCheckedOut).Return(nil)
	r.carts.On("Clear", mock.Anything, "cart-1").Return(nil)

	out, err := uc.PlaceOrder(context.Background(), "user-1", in)

	assert.NoError(t, err)
	assert.Nil(t, out.Latitude)
	assert.Nil(t, out.Longitude)
}

// 履歴は自分の分だけ、新しい順のままrepoから返る
func TestOrderUsecase_ListMyOrders(t *testing.T) {
	uc, r, _ := newOrderUC()

	newer := model.Order{ID: "order-2", UserID: "user-1", CreatedAt: time.Now()}
	older := model.Order{ID: "order-1", UserID: "user-1", CreatedAt: time.Now().Add(-time.Hour)}

	r.orders.On("ListByUserID", mock.Anything, "user-1", 1, 50).Return([]model.Order{newer, older}, int64(2), nil)
	r.orderItems.On("ListByOrderID", mock.Anything, "order-2").Return([]model.OrderItem{}, nil)
	r.orderItems.On("ListByOrderID", mock.Anything, "order-1").Return([]model.OrderItem{}, nil)

	outs, err := uc.ListMyOrders(context.Background(), "user-1", 0, 0)

	assert.NoError(t, err)
	assert.Len(t, outs, 2)
	assert.Equal(t, "order-2", outs[0].ID)
	assert.Equal(t, "order-1", outs[1].ID)
}

// 他人の注文詳細は存在しない扱い
func TestOrderUsecase_GetMyOrderDetail_ForeignOrderHidden(t *testing.T) {
	uc, r, _ := newOrderUC()

	r.orders.On("FindByID", mock.Anything, "order-1").Return(model.Order{ID: "order-1", UserID: "someone-else"}, nil)

	_, err := uc.GetMyOrderDetail(context.Background(), "user-1", "order-1")

	assertHTTPError(t, err, http.StatusNotFound, "not found")
}
