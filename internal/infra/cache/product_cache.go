package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"vegeapp/internal/domain/model"
	repo "vegeapp/internal/repository"

	"github.com/go-redis/redis/v8"
)

var ErrCacheMiss = errors.New("cache miss")

// 公開カタログ一覧の読み取りキャッシュ。
// 商品を書き換えたらInvalidateAllで全部捨てる（キー設計を凝らない）。
type ProductListCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewProductListCache(addr string, ttl time.Duration) *ProductListCache {
	client := redis.NewClient(&redis.Options{Addr: addr})
	return &ProductListCache{client: client, ttl: ttl}
}

type cachedList struct {
	Items []model.Product `json:"items"`
	Total int64           `json:"total"`
}

func listKey(q repo.ProductListQuery) string {
	return fmt.Sprintf("catalog:list:%s:%s:%d:%d", q.Q, q.Category, q.Page, q.Limit)
}

func (c *ProductListCache) Get(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	raw, err := c.client.Get(ctx, listKey(q)).Result()
	if err == redis.Nil {
		return nil, 0, ErrCacheMiss
	}
	if err != nil {
		return nil, 0, err
	}

	var v cachedList
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		// 壊れたエントリはミス扱い
		return nil, 0, ErrCacheMiss
	}
	return v.Items, v.Total, nil
}

func (c *ProductListCache) Set(ctx context.Context, q repo.ProductListQuery, items []model.Product, total int64) error {
	raw, err := json.Marshal(cachedList{Items: items, Total: total})
	if err != nil {
		return err
	}
	return c.client.Set(ctx, listKey(q), raw, c.ttl).Err()
}

// 商品マスタが書き換わった時に呼ぶ
func (c *ProductListCache) InvalidateAll(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, "catalog:list:*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func (c *ProductListCache) Close() error {
	return c.client.Close()
}
