package repository

import "context"

// マスタ7種（カテゴリ・単位・荷姿・野菜・農家・仲買・スタッフ）は
// すべて「登録ユーザーに紐づく参照データのCRUD」で形が同じなので、
// 型パラメータで1つにまとめる。
type MasterRepository[T any] interface {
	Create(ctx context.Context, rec T) (T, error)
	ListByUserID(ctx context.Context, userID string) ([]T, error)
	FindByID(ctx context.Context, id string) (T, error)
	// 他ユーザーのレコードはuser_idで弾く
	Update(ctx context.Context, userID string, id string, rec T) error
	Delete(ctx context.Context, userID string, id string) error
}
