package usecase

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	"vegeapp/internal/domain/model"
	repo "vegeapp/internal/repository"

	"github.com/google/uuid"
)

// 注文の作成・更新を購読側（管理画面のWebSocketなど）へ知らせる約束。
// 通知失敗は注文処理を失敗させない。
type OrderNotifier interface {
	NotifyOrder(out OrderOutput)
}

// 届くまでの目安。確定時刻に足してestimated_deliveryになる
const estimatedDeliveryLead = 24 * time.Hour

type OrderUsecase struct {
	tx       repo.TransactionManager
	notifier OrderNotifier
}

func NewOrderUsecase(tx repo.TransactionManager, notifier OrderNotifier) *OrderUsecase {
	return &OrderUsecase{tx: tx, notifier: notifier}
}

type PlaceOrderInput struct {
	DeliveryAddress string
	Latitude        *float64
	Longitude       *float64
	IdempotencyKey  string
}

type OrderItemOutput struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Unit      string  `json:"unit"`
	Quantity  int64   `json:"quantity"`
}

type OrderOutput struct {
	ID                string            `json:"id"`
	UserID            string            `json:"user_id"`
	Status            string            `json:"status"`
	Total             float64           `json:"total"`
	DeliveryAddress   string            `json:"delivery_address"`
	Latitude          *float64          `json:"latitude,omitempty"`
	Longitude         *float64          `json:"longitude,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	EstimatedDelivery *time.Time        `json:"estimated_delivery,omitempty"`
	Items             []OrderItemOutput `json:"items"`
}

// PlaceOrder はチェックアウト本体。
// 1トランザクションで「カート読込→在庫再チェック＆減算→注文作成→カートクリア」まで行う。
// 途中で失敗したら全部ロールバックし、カートは手つかずのまま残る。
func (u *OrderUsecase) PlaceOrder(ctx context.Context, userID string, in PlaceOrderInput) (OrderOutput, error) {
	if userID == "" {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	// 配送先は必須。空なら何も書き換えずに弾く
	address := strings.TrimSpace(in.DeliveryAddress)
	if address == "" {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "delivery address required")
	}

	key := strings.TrimSpace(in.IdempotencyKey)
	if key == "" || len(key) > 255 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid idempotency_key")
	}

	// 位置情報は任意。片方だけは捨てる（取得失敗＝位置なしで続行）
	lat, lng := in.Latitude, in.Longitude
	if lat == nil || lng == nil {
		lat, lng = nil, nil
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 同じキーなら同じ結果
		existing, found, err := r.Orders().FindByIdempotencyKey(ctx, userID, key)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if found {
			items, err := r.OrderItems().ListByOrderID(ctx, existing.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			out = toOrderOutput(existing, items)
			return nil
		}

		//ACTIVEカート取得
		cart, err := r.Carts().FindActiveByUserID(ctx, userID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusBadRequest, "cart empty")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		cartItems, err := r.CartItems().ListByCartID(ctx, cart.ID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		// 壊れた行（商品消滅・価格不正）は注文に乗せない。
		// カート表示側と同じフィルタをここでも掛けて、
		// 腐った永続状態がバックエンドまで届かないようにする
		valid := make([]model.CartItem, 0, len(cartItems))
		for _, ci := range cartItems {
			if math.IsNaN(ci.UnitPriceSnapshot) || ci.UnitPriceSnapshot < 0 {
				continue
			}
			if _, err := r.Products().FindByID(ctx, ci.ProductID); err != nil {
				if err == repo.ErrNotFound {
					continue
				}
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			valid = append(valid, ci)
		}

		if len(valid) == 0 {
			return NewHTTPError(http.StatusBadRequest, "cart empty")
		}

		//在庫を確定時に再チェックして減らす
		now := time.Now()
		orderItems := make([]model.OrderItem, 0, len(valid))
		var total float64 = 0

		for _, ci := range valid {
			ok, err := r.Inventory().DecreaseStockIfEnough(ctx, ci.ProductID, ci.Quantity)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !ok {
				return NewHTTPError(http.StatusBadRequest, "out of stock")
			}

			//スナップショット（カートの値をそのまま凍結）
			orderItems = append(orderItems, model.OrderItem{
				ProductID:           ci.ProductID,
				ProductNameSnapshot: ci.ProductNameSnapshot,
				UnitPriceSnapshot:   ci.UnitPriceSnapshot,
				UnitSnapshot:        ci.UnitSnapshot,
				Quantity:            ci.Quantity,
				CreatedAt:           now,
			})

			total += ci.UnitPriceSnapshot * float64(ci.Quantity)
		}

		// 注文作成
		estimated := now.Add(estimatedDeliveryLead)
		order := model.Order{
			ID:                uuid.NewString(),
			UserID:            userID,
			Status:            model.OrderStatusPending,
			Total:             total,
			DeliveryAddress:   address,
			Latitude:          lat,
			Longitude:         lng,
			IdempotencyKey:    key,
			CreatedAt:         now,
			UpdatedAt:         now,
			EstimatedDelivery: &estimated,
		}

		if err := r.Orders().Create(ctx, order); err != nil {
			//競合（同時で同じキーが入った等）はもう一回検索して同じ結果を返す
			ex2, found2, err2 := r.Orders().FindByIdempotencyKey(ctx, userID, key)
			if err2 == nil && found2 {
				items2, err3 := r.OrderItems().ListByOrderID(ctx, ex2.ID)
				if err3 != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
				out = toOrderOutput(ex2, items2)
				return nil
			}
			return NewHTTPError(http.StatusBadRequest, "idempotency conflict")
		}

		//注文明細一括作成
		if err := r.OrderItems().CreateBulk(ctx, order.ID, orderItems); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//カートをCHECKED_OUTにして、明細をクリア（再注文防止）
		if err := r.Carts().UpdateStatus(ctx, cart.ID, model.CartStatusCheckedOut); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := r.Carts().Clear(ctx, cart.ID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = toOrderOutput(order, orderItems)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}

	if u.notifier != nil {
		u.notifier.NotifyOrder(out)
	}
	return out, nil
}

// 自分の注文履歴（新しい順）。
func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID string, page int, limit int) ([]OrderOutput, error) {
	if userID == "" {
		return []OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}

	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, _, err := r.Orders().ListByUserID(ctx, userID, page, limit)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			outs = append(outs, toOrderOutput(o, items))
		}
		return nil
	})

	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

func (u *OrderUsecase) GetMyOrderDetail(ctx context.Context, userID string, orderID string) (OrderOutput, error) {
	if userID == "" {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID == "" {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if o.UserID != userID {
			//他人の注文は「存在しない扱い」にする
			return NewHTTPError(http.StatusNotFound, "not found")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = toOrderOutput(o, items)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			ProductID: it.ProductID,
			Name:      it.ProductNameSnapshot,
			Price:     it.UnitPriceSnapshot,
			Unit:      it.UnitSnapshot,
			Quantity:  it.Quantity,
		})
	}

	return OrderOutput{
		ID:                o.ID,
		UserID:            o.UserID,
		Status:            string(o.Status),
		Total:             o.Total,
		DeliveryAddress:   o.DeliveryAddress,
		Latitude:          o.Latitude,
		Longitude:         o.Longitude,
		CreatedAt:         o.CreatedAt,
		EstimatedDelivery: o.EstimatedDelivery,
		Items:             outItems,
	}
}
