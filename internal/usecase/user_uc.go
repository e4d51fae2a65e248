package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"drive-search-bot/internal/domain"
	"drive-search-bot/internal/domain/model"
	"drive-search-bot/internal/domain/ports/repository"
	"drive-search-bot/internal/infra/logging"
)

// Compile-time check
var _ UserUseCase = (*userUC)(nil)

// UserUseCase exposes user-related operations used by bot/admin flows.
type UserUseCase interface {
	Touch(ctx context.Context, id int64, name, username string) error
	IsBanned(ctx context.Context, id int64) (bool, error)
	// SetBan reports whether the target matched a known user.
	SetBan(ctx context.Context, target model.Target, banned bool) (bool, error)
	Find(ctx context.Context, target model.Target) (*model.User, error)
}

type userUC struct {
	users repository.UserRepository
	log   *zerolog.Logger
}

func NewUserUseCase(users repository.UserRepository, logger *zerolog.Logger) *userUC {
	return &userUC{users: users, log: logger}
}

func (u *userUC) Touch(ctx context.Context, id int64, name, username string) error {
	usr, err := model.NewUser(id, name, username)
	if err != nil {
		return err
	}
	return u.users.TouchUser(ctx, usr)
}

func (u *userUC) IsBanned(ctx context.Context, id int64) (bool, error) {
	return u.users.IsBanned(ctx, id)
}

func (u *userUC) SetBan(ctx context.Context, target model.Target, banned bool) (bool, error) {
	defer logging.TraceDuration(u.log, "UserUC.SetBan")()
	if target.IsZero() {
		return false, domain.ErrInvalidArgument
	}
	found, err := u.users.SetBanned(ctx, target, banned)
	if err != nil {
		return false, err
	}
	if found {
		u.log.Info().Str("target", target.String()).Bool("banned", banned).Msg("ban flag updated")
	}
	return found, nil
}

func (u *userUC) Find(ctx context.Context, target model.Target) (*model.User, error) {
	usr, err := u.users.FindUser(ctx, target)
	if err != nil {
		return nil, err
	}
	if usr == nil {
		return nil, domain.ErrNotFound
	}
	return usr, nil
}
