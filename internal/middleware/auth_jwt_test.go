package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vegeapp/internal/config"
	"vegeapp/internal/domain/model"
	"vegeapp/internal/middleware"
	"vegeapp/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	assert.NoError(t, err)
	return signed
}

func validClaims() jwt.MapClaims {
	now := time.Now()
	return jwt.MapClaims{
		"sub":  "user-1",
		"role": "customer",
		"tv":   0,
		"iat":  now.Unix(),
		"exp":  now.Add(15 * time.Minute).Unix(),
	}
}

// ミドルウェアを1ハンドラに被せてecho経由で叩く
func invoke(mw echo.MiddlewareFunc, authorization string, setup func(echo.Context)) (*httptest.ResponseRecorder, echo.Context) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if setup != nil {
		setup(c)
	}

	handler := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	_ = handler(c)
	return rec, c
}

func TestAuthJWT_ValidTokenSetsContext(t *testing.T) {
	mw := middleware.AuthJWT(config.Config{JWTSecret: testSecret})
	token := signToken(t, testSecret, validClaims())

	rec, c := invoke(mw, "Bearer "+token, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", c.Get(middleware.CtxUserIDKey))
	assert.Equal(t, "customer", c.Get(middleware.CtxUserRoleKey))
	assert.Equal(t, 0, c.Get(middleware.CtxTokenVersionKey))
}

func TestAuthJWT_MissingHeader(t *testing.T) {
	mw := middleware.AuthJWT(config.Config{JWTSecret: testSecret})

	rec, _ := invoke(mw, "", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_WrongSecret(t *testing.T) {
	mw := middleware.AuthJWT(config.Config{JWTSecret: testSecret})
	token := signToken(t, "other-secret", validClaims())

	rec, _ := invoke(mw, "Bearer "+token, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_ExpiredToken(t *testing.T) {
	mw := middleware.AuthJWT(config.Config{JWTSecret: testSecret})
	claims := validClaims()
	claims["exp"] = time.Now().Add(-time.Minute).Unix()
	token := signToken(t, testSecret, claims)

	rec, _ := invoke(mw, "Bearer "+token, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// HS256以外の署名方式は拒否する
func TestAuthJWT_WrongSigningMethod(t *testing.T) {
	mw := middleware.AuthJWT(config.Config{JWTSecret: testSecret})
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, validClaims())
	signed, err := token.SignedString([]byte(testSecret))
	assert.NoError(t, err)

	rec, _ := invoke(mw, "Bearer "+signed, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_MissingClaims(t *testing.T) {
	mw := middleware.AuthJWT(config.Config{JWTSecret: testSecret})
	claims := validClaims()
	delete(claims, "sub")
	token := signToken(t, testSecret, claims)

	rec, _ := invoke(mw, "Bearer "+token, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_NotBearer(t *testing.T) {
	mw := middleware.AuthJWT(config.Config{JWTSecret: testSecret})
	token := signToken(t, testSecret, validClaims())

	rec, _ := invoke(mw, "Basic "+token, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRoleGuard(t *testing.T) {
	mw := middleware.AdminRoleGuard()

	rec, _ := invoke(mw, "", func(c echo.Context) {
		c.Set(middleware.CtxUserRoleKey, "admin")
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = invoke(mw, "", func(c echo.Context) {
		c.Set(middleware.CtxUserRoleKey, "customer")
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = invoke(mw, "", nil) // roleなし
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// DB側のtoken_versionを返すだけのスタブ
type userRepoStub struct {
	user *model.User
	err  error
}

func (s *userRepoStub) Create(ctx context.Context, user *model.User) error { return nil }
func (s *userRepoStub) FindByID(ctx context.Context, userID string) (*model.User, error) {
	return s.user, s.err
}
func (s *userRepoStub) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.user, s.err
}
func (s *userRepoStub) Update(ctx context.Context, user *model.User) error          { return nil }
func (s *userRepoStub) IncrementTokenVersion(ctx context.Context, userID string) error { return nil }

var _ repository.UserRepository = (*userRepoStub)(nil)

func TestTokenVersionGuard(t *testing.T) {
	withCtx := func(tv int) func(echo.Context) {
		return func(c echo.Context) {
			c.Set(middleware.CtxUserIDKey, "user-1")
			c.Set(middleware.CtxTokenVersionKey, tv)
		}
	}

	// 一致なら素通し
	mw := middleware.TokenVersionGuard(&userRepoStub{user: &model.User{ID: "user-1", TokenVersion: 2}})
	rec, _ := invoke(mw, "", withCtx(2))
	assert.Equal(t, http.StatusOK, rec.Code)

	// 不一致（ログアウト後の古いトークン）は401
	rec, _ = invoke(mw, "", withCtx(1))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// ユーザーが消えていても401
	mw = middleware.TokenVersionGuard(&userRepoStub{err: repository.ErrUserNotFound})
	rec, _ = invoke(mw, "", withCtx(0))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
