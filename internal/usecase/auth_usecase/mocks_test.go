package auth_test

import (
	"context"
	"time"

	"vegeapp/internal/domain/model"
	"vegeapp/internal/repository"

	"github.com/stretchr/testify/mock"
)

type UserRepoMock struct {
	mock.Mock
}

func (m *UserRepoMock) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepoMock) FindByID(ctx context.Context, userID string) (*model.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepoMock) IncrementTokenVersion(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

var _ repository.UserRepository = (*UserRepoMock)(nil)

type RefreshTokenRepoMock struct {
	mock.Mock
}

func (m *RefreshTokenRepoMock) Create(ctx context.Context, token *model.RefreshToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *RefreshTokenRepoMock) FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error) {
	args := m.Called(ctx, tokenHash)
	t, _ := args.Get(0).(*model.RefreshToken)
	return t, args.Error(1)
}

func (m *RefreshTokenRepoMock) Revoke(ctx context.Context, tokenID string, revokedAt time.Time) error {
	args := m.Called(ctx, tokenID, revokedAt)
	return args.Error(0)
}

func (m *RefreshTokenRepoMock) RevokeAllByUserID(ctx context.Context, userID string, revokedAt time.Time) error {
	args := m.Called(ctx, userID, revokedAt)
	return args.Error(0)
}

var _ repository.RefreshTokenRepository = (*RefreshTokenRepoMock)(nil)

// 平文一致だけ見る。bcryptはここでは回さない
type verifierStub struct {
	correct string
}

func (v *verifierStub) Verify(plain string, hashed string) bool {
	return plain == v.correct
}

type hasherStub struct{}

func (h *hasherStub) Hash(plain string) (string, error) {
	return "hashed:" + plain, nil
}

type issuerStub struct {
	token     string
	expiresAt time.Time
	err       error
}

func (i *issuerStub) Issue(user model.User) (string, time.Time, error) {
	return i.token, i.expiresAt, i.err
}

type idGenStub struct {
	next int
}

func (g *idGenStub) NewID() string {
	g.next++
	return "id-" + string(rune('0'+g.next))
}

type clockStub struct {
	now time.Time
}

func (c *clockStub) Now() time.Time {
	return c.now
}

func fixedClock() *clockStub {
	return &clockStub{now: time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)}
}
