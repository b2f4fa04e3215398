package auth_test

import (
	"context"
	"errors"
	"testing"

	auth "vegeapp/internal/usecase/auth_usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// 全デバイス失効＋token_version加算の両方が走る
func TestLogout_RevokesAllAndBumpsVersion(t *testing.T) {
	users := new(UserRepoMock)
	refresh := new(RefreshTokenRepoMock)
	clock := fixedClock()
	uc := auth.NewLogoutUsecase(users, refresh, clock)

	refresh.On("RevokeAllByUserID", mock.Anything, "user-1", clock.now).Return(nil)
	users.On("IncrementTokenVersion", mock.Anything, "user-1").Return(nil)

	err := uc.Execute(context.Background(), "user-1")

	assert.NoError(t, err)
	refresh.AssertExpectations(t)
	users.AssertExpectations(t)
}

// 失効に失敗したらバージョンは上げない
func TestLogout_RevokeFailureStops(t *testing.T) {
	users := new(UserRepoMock)
	refresh := new(RefreshTokenRepoMock)
	uc := auth.NewLogoutUsecase(users, refresh, fixedClock())

	refresh.On("RevokeAllByUserID", mock.Anything, "user-1", mock.Anything).Return(errors.New("db down"))

	err := uc.Execute(context.Background(), "user-1")

	assert.Error(t, err)
	users.AssertNotCalled(t, "IncrementTokenVersion", mock.Anything, mock.Anything)
}
