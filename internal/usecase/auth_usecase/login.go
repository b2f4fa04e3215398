package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"vegeapp/internal/domain/model"
	"vegeapp/internal/repository"
)

// ログインの入力
type LoginInput struct {
	Email    string
	Password string
}

// ログインの出力。RefreshTokenは平文（ハッシュはDB側）
type LoginOutput struct {
	User         model.User
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

var (
	// 認証失敗。emailなしとpassword違いは区別しない
	ErrInvalidCredentials = errors.New("invalid credentials")

	// 無効化されたユーザー
	ErrUserInactive = errors.New("user inactive")
)

// 平文とハッシュを比較する約束
type PasswordVerifier interface {
	Verify(plain string, hashed string) bool
}

// アクセストークンを発行する約束
type AccessTokenIssuer interface {
	Issue(user model.User) (token string, expiresAt time.Time, err error)
}

// リフレッシュトークンの有効期間
const refreshTokenTTL = 14 * 24 * time.Hour

// LoginUsecaseはログインの処理。
type LoginUsecase struct {
	userRepo    repository.UserRepository
	refreshRepo repository.RefreshTokenRepository
	verifier    PasswordVerifier
	issuer      AccessTokenIssuer
	idGen       IDGenerator
	clock       Clock
}

// DI
func NewLoginUsecase(
	userRepo repository.UserRepository,
	refreshRepo repository.RefreshTokenRepository,
	verifier PasswordVerifier,
	issuer AccessTokenIssuer,
	idGen IDGenerator,
	clock Clock,
) *LoginUsecase {
	return &LoginUsecase{
		userRepo:    userRepo,
		refreshRepo: refreshRepo,
		verifier:    verifier,
		issuer:      issuer,
		idGen:       idGen,
		clock:       clock,
	}
}

// ログイン実行
func (u *LoginUsecase) Execute(ctx context.Context, in LoginInput) (LoginOutput, error) {
	var out LoginOutput

	user, err := u.userRepo.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return out, ErrInvalidCredentials
		}
		return out, err
	}
	if user == nil {
		return out, ErrInvalidCredentials
	}

	if !u.verifier.Verify(in.Password, user.PasswordHash) {
		return out, ErrInvalidCredentials
	}

	if !user.IsActive {
		return out, ErrUserInactive
	}

	accessToken, expiresAt, err := u.issuer.Issue(*user)
	if err != nil {
		return out, err
	}

	// リフレッシュトークンは平文を返してハッシュだけ保存
	plainRefresh, err := newRefreshTokenValue()
	if err != nil {
		return out, err
	}

	now := u.clock.Now()
	rt := &model.RefreshToken{
		ID:        u.idGen.NewID(),
		UserID:    user.ID,
		TokenHash: hashRefreshToken(plainRefresh),
		ExpiresAt: now.Add(refreshTokenTTL),
		CreatedAt: now,
	}
	if err := u.refreshRepo.Create(ctx, rt); err != nil {
		return out, err
	}

	// 最終ログイン日時を更新。失敗してもログインは成立させる
	user.LastLoginAt = &now
	_ = u.userRepo.Update(ctx, user)

	out.User = *user
	out.AccessToken = accessToken
	out.RefreshToken = plainRefresh
	out.ExpiresAt = expiresAt
	return out, nil
}

// ランダムなリフレッシュトークン値
func newRefreshTokenValue() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// DB保存用のハッシュ
func hashRefreshToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}
