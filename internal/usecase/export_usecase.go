package usecase

import (
	"context"
	"net/http"

	"vegeapp/internal/domain/model"
	repo "vegeapp/internal/repository"
)

// 注文1件と明細をまとめた帳票用の行
type OrderExport struct {
	Order model.Order
	Items []model.OrderItem
}

// 管理画面のExcel出力用にデータを集める。整形はhandlerの仕事
type ExportUsecase struct {
	productRepo   repo.ProductRepository
	orderRepo     repo.OrderRepository
	orderItemRepo repo.OrderItemRepository
}

// DI
func NewExportUsecase(
	productRepo repo.ProductRepository,
	orderRepo repo.OrderRepository,
	orderItemRepo repo.OrderItemRepository,
) *ExportUsecase {
	return &ExportUsecase{
		productRepo:   productRepo,
		orderRepo:     orderRepo,
		orderItemRepo: orderItemRepo,
	}
}

// 帳票用なので論理削除済み・在庫切れも全部出す
func (u *ExportUsecase) ListProducts(ctx context.Context) ([]model.Product, error) {
	products, err := u.productRepo.ListAllForExport(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return products, nil
}

// 全注文を明細つきで新しい順に返す
func (u *ExportUsecase) ListOrders(ctx context.Context) ([]OrderExport, error) {
	orders, err := u.orderRepo.ListAllForExport(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	rows := make([]OrderExport, 0, len(orders))
	for _, o := range orders {
		items, err := u.orderItemRepo.ListByOrderID(ctx, o.ID)
		if err != nil {
			return nil, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		rows = append(rows, OrderExport{Order: o, Items: items})
	}
	return rows, nil
}
