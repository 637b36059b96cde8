package service

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/kurtaconger/egm/internal/model"
	"github.com/kurtaconger/egm/internal/repository"
)

// defaultHexColor - цвет подписи по умолчанию, пока участник не выбрал свой.
const defaultHexColor = "#000000"

// UserService содержит бизнес-логику, связанную с участниками поездок.
type UserService struct {
	userRepo *repository.UserRepository
}

// NewUserService создает новый сервис участников.
func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// Register добавляет участника с отображаемым именем и цветом подписи.
func (s *UserService) Register(email, displayName, hexColor string) (*model.User, error) {
	if hexColor == "" {
		hexColor = defaultHexColor
	}
	user := &model.User{
		Email:       email,
		DisplayName: displayName,
		HexColor:    hexColor,
	}
	id, err := s.userRepo.Create(user)
	if err != nil {
		return nil, err
	}
	user.ID = id
	return user, nil
}

// GetByEmail возвращает участника по email.
func (s *UserService) GetByEmail(email string) (*model.User, error) {
	return s.userRepo.GetByEmail(email)
}

// GetColor возвращает цвет подписи участника; для незарегистрированного
// email возвращается цвет по умолчанию, а не ошибка.
func (s *UserService) GetColor(email string) (string, error) {
	user, err := s.userRepo.GetByEmail(email)
	if errors.Is(err, sql.ErrNoRows) {
		return defaultHexColor, nil
	}
	if err != nil {
		return "", fmt.Errorf("ошибка при поиске участника: %w", err)
	}
	if user.HexColor == "" {
		return defaultHexColor, nil
	}
	return user.HexColor, nil
}

// UpdateProfile обновляет отображаемое имя и цвет подписи участника.
func (s *UserService) UpdateProfile(email, displayName, hexColor string) error {
	return s.userRepo.UpdateProfile(email, displayName, hexColor)
}

// AuthTelegram проверяет наличие участника с данным TelegramID и регистрирует
// нового, если не найден. Возвращает структуру участника (существующего или
// новосозданного).
func (s *UserService) AuthTelegram(telegramID int64, username string) (*model.User, error) {
	user, err := s.userRepo.GetByTelegramID(telegramID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Участник ещё не привязан - создаем новую запись
			newUser := &model.User{
				Email:       fmt.Sprintf("tg-%d@telegram", telegramID),
				DisplayName: username,
				HexColor:    defaultHexColor,
				TelegramID:  telegramID,
			}
			id, err := s.userRepo.Create(newUser)
			if err != nil {
				return nil, err
			}
			newUser.ID = id
			return newUser, nil
		}
		return nil, fmt.Errorf("ошибка при поиске участника: %w", err)
	}
	return user, nil
}
