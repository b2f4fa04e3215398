package usecase

import (
	"context"
	"net/http"

	repo "vegeapp/internal/repository"
)

// マスタ7種のCRUDは形が同じなので型パラメータでまとめる。
// レコードの組み立て・名前の必須チェックはhandler側のbind関数が行い、
// ここでは所有ユーザーの絞り込みとエラー変換だけを受け持つ。
type MasterUsecase[T any] struct {
	repo repo.MasterRepository[T]
}

func NewMasterUsecase[T any](r repo.MasterRepository[T]) *MasterUsecase[T] {
	return &MasterUsecase[T]{repo: r}
}

func (u *MasterUsecase[T]) Create(ctx context.Context, userID string, rec T) (T, error) {
	var zero T
	if userID == "" {
		return zero, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	created, err := u.repo.Create(ctx, rec)
	if err != nil {
		return zero, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return created, nil
}

func (u *MasterUsecase[T]) List(ctx context.Context, userID string) ([]T, error) {
	if userID == "" {
		return []T{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	recs, err := u.repo.ListByUserID(ctx, userID)
	if err != nil {
		return []T{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return recs, nil
}

func (u *MasterUsecase[T]) Update(ctx context.Context, userID string, id string, rec T) error {
	if userID == "" {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if id == "" {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	err := u.repo.Update(ctx, userID, id, rec)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func (u *MasterUsecase[T]) Delete(ctx context.Context, userID string, id string) error {
	if userID == "" {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if id == "" {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	err := u.repo.Delete(ctx, userID, id)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}
