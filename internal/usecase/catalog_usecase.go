package usecase

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"vegeapp/internal/domain/model"
	repo "vegeapp/internal/repository"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
)

// 一覧読み取りのキャッシュの約束。実体はredis（infra/cache）。
// キャッシュが無くても（nilでも）動く。
type CatalogCache interface {
	Get(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error)
	Set(ctx context.Context, q repo.ProductListQuery, items []model.Product, total int64) error
	InvalidateAll(ctx context.Context) error
}

type CatalogUsecase struct {
	productRepo repo.ProductRepository
	tx          repo.TransactionManager
	cache       CatalogCache
}

// DI
func NewCatalogUsecase(
	productRepo repo.ProductRepository,
	tx repo.TransactionManager,
	cache CatalogCache,
) *CatalogUsecase {
	return &CatalogUsecase{
		productRepo: productRepo,
		tx:          tx,
		cache:       cache,
	}
}

// GET /productsの入力DTO
type ListProductsInput struct {
	Page     int
	Limit    int
	Q        string
	Category string
}

type ProductListOutput struct {
	Items []model.Product `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

// 公開カタログ。検索語はname/description、カテゴリは"All"で素通し、在庫ありのみ。
// 読み取りは冪等なのでここだけ有限リトライを掛ける。書き込み系は絶対にリトライしない。
func (u *CatalogUsecase) ListPublicProducts(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	if in.Page < 1 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if len(in.Q) > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "q too long")
	}

	query := repo.ProductListQuery{
		Page:     in.Page,
		Limit:    in.Limit,
		Q:        strings.TrimSpace(in.Q),
		Category: strings.TrimSpace(in.Category),
	}

	// キャッシュヒットならDBに行かない。エラーはミス扱いで素通し
	if u.cache != nil {
		if items, total, err := u.cache.Get(ctx, query); err == nil {
			return ProductListOutput{Items: items, Total: total, Page: in.Page, Limit: in.Limit}, nil
		}
	}

	var items []model.Product
	var total int64

	op := func() error {
		var err error
		items, total, err = u.productRepo.ListPublic(ctx, query)
		return err
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2), ctx)
	if err := backoff.Retry(op, bo); err != nil {
		return ProductListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if u.cache != nil {
		// キャッシュ書き込み失敗は応答に影響させない
		_ = u.cache.Set(ctx, query, items, total)
	}

	return ProductListOutput{
		Items: items,
		Total: total,
		Page:  in.Page,
		Limit: in.Limit,
	}, nil
}

// カテゴリ一覧。先頭に絞り込みなしを表す"All"を付ける
func (u *CatalogUsecase) ListCategories(ctx context.Context) ([]string, error) {
	categories, err := u.productRepo.ListCategories(ctx)
	if err != nil {
		return []string{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return append([]string{"All"}, categories...), nil
}

func (u *CatalogUsecase) GetProductDetail(ctx context.Context, productID string) (model.Product, error) {
	if productID == "" {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if !p.InStock {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	return p, nil
}

type AdminSaveProductInput struct {
	Name        string
	Description string
	Price       float64
	Stock       int64
	Category    string
	ImageURL    string
	Unit        string
	InStock     bool
}

func (u *CatalogUsecase) AdminCreateProduct(ctx context.Context, adminUserID string, in AdminSaveProductInput) (string, error) {
	if adminUserID == "" {
		return "", NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if strings.TrimSpace(in.Name) == "" {
		return "", NewHTTPError(http.StatusBadRequest, "name required")
	}
	if in.Price < 0 {
		return "", NewHTTPError(http.StatusBadRequest, "price must be >= 0")
	}
	if in.Stock < 0 {
		return "", NewHTTPError(http.StatusBadRequest, "stock must be >= 0")
	}

	now := time.Now()
	p, err := u.productRepo.Create(ctx, model.Product{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		Category:    in.Category,
		ImageURL:    in.ImageURL,
		Unit:        in.Unit,
		InStock:     in.InStock,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return "", NewHTTPError(http.StatusInternalServerError, "db error")
	}

	u.invalidateCache(ctx)
	return p.ID, nil
}

func (u *CatalogUsecase) AdminUpdateProduct(ctx context.Context, adminUserID string, productID string, in AdminSaveProductInput) error {
	if adminUserID == "" {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID == "" {
		return NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	if strings.TrimSpace(in.Name) == "" {
		return NewHTTPError(http.StatusBadRequest, "name required")
	}
	if in.Price < 0 {
		return NewHTTPError(http.StatusBadRequest, "price must be >= 0")
	}
	if in.Stock < 0 {
		return NewHTTPError(http.StatusBadRequest, "stock must be >= 0")
	}

	err := u.productRepo.Update(ctx, model.Product{
		ID:          productID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		Category:    in.Category,
		ImageURL:    in.ImageURL,
		Unit:        in.Unit,
		InStock:     in.InStock,
		UpdatedAt:   time.Now(),
	})
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	u.invalidateCache(ctx)
	return nil
}

func (u *CatalogUsecase) AdminDeleteProduct(ctx context.Context, adminUserID string, productID string) error {
	if adminUserID == "" {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID == "" {
		return NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	err := u.productRepo.SoftDelete(ctx, productID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	u.invalidateCache(ctx)
	return nil
}

// 在庫を現在値に更新し、調整履歴と監査ログを残す。
// 在庫・調整履歴・監査ログは1トランザクション。途中で失敗したら全部戻す
func (u *CatalogUsecase) AdminUpdateInventory(ctx context.Context, adminUserID string, productID string, newStock int64, reason string) error {
	if adminUserID == "" {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID == "" {
		return NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	if newStock < 0 {
		return NewHTTPError(http.StatusBadRequest, "stock must be >= 0")
	}
	if strings.TrimSpace(reason) == "" {
		return NewHTTPError(http.StatusBadRequest, "reason required")
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//変更前の在庫（before）
		p, err := r.Products().FindByID(ctx, productID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := r.Inventory().SetStock(ctx, productID, newStock); err != nil {
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusNotFound, "not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//履歴を作成（差分）
		adj := model.InventoryAdjustment{
			ProductID:   productID,
			AdminUserID: adminUserID,
			Delta:       newStock - p.Stock,
			Reason:      strings.TrimSpace(reason),
			CreatedAt:   time.Now(),
		}
		if err := r.Inventory().CreateAdjustment(ctx, adj); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//監査ログ（誰が何をどの対象にどう変えたか）
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  adminUserID,
			Action:       model.AuditActionUpdateStock,
			ResourceType: model.AuditResourceProduct,
			ResourceID:   productID,
			BeforeJSON:   fmt.Sprintf(`{"stock":%d}`, p.Stock),
			AfterJSON:    fmt.Sprintf(`{"stock":%d}`, newStock),
			CreatedAt:    time.Now(),
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		return nil
	})
	if err != nil {
		return err
	}

	u.invalidateCache(ctx)
	return nil
}

func (u *CatalogUsecase) invalidateCache(ctx context.Context) {
	if u.cache == nil {
		return
	}
	// 失敗してもTTLで消えるだけなので無視
	_ = u.cache.InvalidateAll(ctx)
}
