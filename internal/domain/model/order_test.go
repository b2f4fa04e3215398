package model_test

import (
	"testing"

	"vegeapp/internal/domain/model"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatus_Valid(t *testing.T) {
	assert.True(t, model.OrderStatusPending.Valid())
	assert.True(t, model.OrderStatusOutForDelivery.Valid())
	assert.True(t, model.OrderStatusCancelled.Valid())
	assert.False(t, model.OrderStatus("shipped").Valid())
	assert.False(t, model.OrderStatus("").Valid())
}

func TestOrderStatus_Terminal(t *testing.T) {
	assert.True(t, model.OrderStatusDelivered.Terminal())
	assert.True(t, model.OrderStatusCancelled.Terminal())
	assert.False(t, model.OrderStatusPending.Terminal())
	assert.False(t, model.OrderStatusOutForDelivery.Terminal())
}

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	cases := []struct {
		from model.OrderStatus
		to   model.OrderStatus
		want bool
	}{
		// 前進
		{model.OrderStatusPending, model.OrderStatusConfirmed, true},
		{model.OrderStatusPending, model.OrderStatusDelivered, true}, // 飛び級も前進なら可
		{model.OrderStatusConfirmed, model.OrderStatusPreparing, true},
		{model.OrderStatusPreparing, model.OrderStatusOutForDelivery, true},
		{model.OrderStatusOutForDelivery, model.OrderStatusDelivered, true},

		// 後戻りは不可
		{model.OrderStatusConfirmed, model.OrderStatusPending, false},
		{model.OrderStatusPreparing, model.OrderStatusConfirmed, false},
		{model.OrderStatusDelivered, model.OrderStatusOutForDelivery, false},

		// 同じ場所への遷移も不可（usecase側で成功no-op扱い）
		{model.OrderStatusPending, model.OrderStatusPending, false},

		// cancelledは非終端ならどこからでも可
		{model.OrderStatusPending, model.OrderStatusCancelled, true},
		{model.OrderStatusOutForDelivery, model.OrderStatusCancelled, true},
		{model.OrderStatusDelivered, model.OrderStatusCancelled, false},
		{model.OrderStatusCancelled, model.OrderStatusCancelled, false},

		// 終端からは動かせない
		{model.OrderStatusDelivered, model.OrderStatusConfirmed, false},
		{model.OrderStatusCancelled, model.OrderStatusPending, false},

		// 未知のステータス
		{model.OrderStatusPending, model.OrderStatus("shipped"), false},
	}

	for _, c := range cases {
		assert.Equalf(t, c.want, c.from.CanTransitionTo(c.to), "%s -> %s", c.from, c.to)
	}
}
