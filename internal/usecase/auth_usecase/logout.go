package auth

import (
	"context"

	"vegeapp/internal/repository"
)

// LogoutUsecaseは全デバイスからのログアウト。
// token_versionを上げて既発行のアクセストークンも無効化する。
type LogoutUsecase struct {
	userRepo    repository.UserRepository
	refreshRepo repository.RefreshTokenRepository
	clock       Clock
}

// DI
func NewLogoutUsecase(
	userRepo repository.UserRepository,
	refreshRepo repository.RefreshTokenRepository,
	clock Clock,
) *LogoutUsecase {
	return &LogoutUsecase{
		userRepo:    userRepo,
		refreshRepo: refreshRepo,
		clock:       clock,
	}
}

// ログアウト実行
func (u *LogoutUsecase) Execute(ctx context.Context, userID string) error {
	if err := u.refreshRepo.RevokeAllByUserID(ctx, userID, u.clock.Now()); err != nil {
		return err
	}
	return u.userRepo.IncrementTokenVersion(ctx, userID)
}
