package auth

import (
	"context"
	"errors"
	"strings"

	"vegeapp/internal/domain/model"
	"vegeapp/internal/repository"
)

// プロフィール更新の入力。nilの項目は変更しない
type UpdateProfileInput struct {
	Name    *string
	Phone   *string
	Address *string
}

var (
	// 他人のプロフィールは触れない
	ErrForbiddenProfile = errors.New("forbidden")

	ErrUserNotFound = errors.New("user not found")
)

// UpdateProfileUsecaseは本人のプロフィール更新。
// email・role・passwordはここでは変更できない。
type UpdateProfileUsecase struct {
	userRepo repository.UserRepository
	clock    Clock
}

// DI
func NewUpdateProfileUsecase(userRepo repository.UserRepository, clock Clock) *UpdateProfileUsecase {
	return &UpdateProfileUsecase{userRepo: userRepo, clock: clock}
}

// 更新実行。requesterIDは認証済みユーザー
func (u *UpdateProfileUsecase) Execute(ctx context.Context, requesterID string, targetID string, in UpdateProfileInput) (model.User, error) {
	var out model.User

	if requesterID != targetID {
		return out, ErrForbiddenProfile
	}

	user, err := u.userRepo.FindByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return out, ErrUserNotFound
		}
		return out, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return out, ErrInvalidInput
		}
		user.Name = name
	}
	if in.Phone != nil {
		user.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Address != nil {
		user.Address = strings.TrimSpace(*in.Address)
	}

	user.UpdatedAt = u.clock.Now()
	if err := u.userRepo.Update(ctx, user); err != nil {
		return out, err
	}

	return *user, nil
}
