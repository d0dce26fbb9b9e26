package service

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/gym_scheduler/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UserService struct {
	txm    TxManager
	logger *zap.Logger
}

func NewUserService(txm TxManager, logger *zap.Logger) *UserService {
	return &UserService{
		txm:    txm,
		logger: logger,
	}
}

// GetByTelegramID получает пользователя по Telegram ID, nil если аккаунт не привязан
func (s *UserService) GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	var user *model.User
	err := s.txm.WithinTx(ctx, func(ctx context.Context, repos Repositories) error {
		var err error
		user, err = repos.Users.GetByTelegramID(ctx, telegramID)
		if err != nil {
			return fmt.Errorf("get user by telegram id: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetByID получает пользователя по ID
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user *model.User
	err := s.txm.WithinTx(ctx, func(ctx context.Context, repos Repositories) error {
		var err error
		user, err = repos.Users.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("get user by id: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// LinkTelegram привязывает Telegram-аккаунт к пользователю зала. Только для администратора.
func (s *UserService) LinkTelegram(ctx context.Context, caller Caller, userID uuid.UUID, telegramID int64) error {
	if caller.Role != model.RoleAdmin {
		return ErrForbidden
	}
	if telegramID <= 0 {
		return ErrInvalidInput
	}

	err := s.txm.WithinTx(ctx, func(ctx context.Context, repos Repositories) error {
		user, err := repos.Users.GetByID(ctx, userID)
		if err != nil {
			return fmt.Errorf("get user: %w", err)
		}
		if user == nil {
			return ErrUserNotFound
		}

		if err := repos.Users.SetTelegramID(ctx, userID, telegramID); err != nil {
			return fmt.Errorf("set telegram id: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Telegram account linked",
		zap.String("user_id", userID.String()),
		zap.Int64("telegram_id", telegramID),
		zap.String("admin_id", caller.UserID.String()),
	)
	return nil
}

// CallerFor строит Caller из пользователя
func CallerFor(user *model.User) Caller {
	return Caller{UserID: user.ID, Role: user.Role}
}
