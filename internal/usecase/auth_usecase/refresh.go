package auth

import (
	"context"
	"errors"
	"time"

	"vegeapp/internal/domain/model"
	"vegeapp/internal/repository"
)

// リフレッシュの出力。トークンはローテーションする
type RefreshOutput struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

var (
	// 期限切れ・失効済み・未知のトークン
	ErrRefreshTokenInvalid = errors.New("refresh token invalid")
)

// RefreshUsecaseはアクセストークンの再発行。
type RefreshUsecase struct {
	userRepo    repository.UserRepository
	refreshRepo repository.RefreshTokenRepository
	issuer      AccessTokenIssuer
	idGen       IDGenerator
	clock       Clock
}

// DI
func NewRefreshUsecase(
	userRepo repository.UserRepository,
	refreshRepo repository.RefreshTokenRepository,
	issuer AccessTokenIssuer,
	idGen IDGenerator,
	clock Clock,
) *RefreshUsecase {
	return &RefreshUsecase{
		userRepo:    userRepo,
		refreshRepo: refreshRepo,
		issuer:      issuer,
		idGen:       idGen,
		clock:       clock,
	}
}

// リフレッシュ実行
func (u *RefreshUsecase) Execute(ctx context.Context, plainRefresh string) (RefreshOutput, error) {
	var out RefreshOutput

	if plainRefresh == "" {
		return out, ErrRefreshTokenInvalid
	}

	rt, err := u.refreshRepo.FindByTokenHash(ctx, hashRefreshToken(plainRefresh))
	if err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) {
			return out, ErrRefreshTokenInvalid
		}
		return out, err
	}

	now := u.clock.Now()
	if rt.RevokedAt != nil || now.After(rt.ExpiresAt) {
		return out, ErrRefreshTokenInvalid
	}

	user, err := u.userRepo.FindByID(ctx, rt.UserID)
	if err != nil {
		return out, err
	}
	if user == nil || !user.IsActive {
		return out, ErrUserInactive
	}

	accessToken, expiresAt, err := u.issuer.Issue(*user)
	if err != nil {
		return out, err
	}

	// ローテーション。古いトークンは失効させて新しい値を発行
	if err := u.refreshRepo.Revoke(ctx, rt.ID, now); err != nil {
		return out, err
	}

	newPlain, err := newRefreshTokenValue()
	if err != nil {
		return out, err
	}
	newRT := &model.RefreshToken{
		ID:        u.idGen.NewID(),
		UserID:    user.ID,
		TokenHash: hashRefreshToken(newPlain),
		ExpiresAt: now.Add(refreshTokenTTL),
		CreatedAt: now,
	}
	if err := u.refreshRepo.Create(ctx, newRT); err != nil {
		return out, err
	}

	out.AccessToken = accessToken
	out.RefreshToken = newPlain
	out.ExpiresAt = expiresAt
	return out, nil
}
