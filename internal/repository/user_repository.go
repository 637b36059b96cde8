package repository

import (
	"fmt"

	"github.com/kurtaconger/egm/internal/model"

	"github.com/jmoiron/sqlx"
)

// UserRepository обеспечивает доступ к данным участников поездок в базе данных.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository создаёт новый репозиторий участников.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create добавляет нового участника. Возвращает ID созданной записи.
func (r *UserRepository) Create(user *model.User) (int, error) {
	query := `INSERT INTO trip_users (email, display_name, hex_color, telegram_id)
	          VALUES ($1, $2, $3, $4) RETURNING id`
	var id int
	err := r.db.QueryRow(query, user.Email, user.DisplayName, user.HexColor, user.TelegramID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("не удалось создать участника: %w", err)
	}
	return id, nil
}

// GetByEmail ищет участника по email. Возвращает sql.ErrNoRows, если не найдено.
func (r *UserRepository) GetByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.db.Get(&user, "SELECT * FROM trip_users WHERE email=$1", email)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByTelegramID ищет участника по его Telegram ID. Возвращает sql.ErrNoRows, если не найдено.
func (r *UserRepository) GetByTelegramID(telegramID int64) (*model.User, error) {
	var user model.User
	err := r.db.Get(&user, "SELECT * FROM trip_users WHERE telegram_id=$1", telegramID)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile обновляет отображаемое имя и цвет подписи участника.
func (r *UserRepository) UpdateProfile(email, displayName, hexColor string) error {
	res, err := r.db.Exec("UPDATE trip_users SET display_name=$1, hex_color=$2 WHERE email=$3",
		displayName, hexColor, email)
	if err != nil {
		return fmt.Errorf("не удалось обновить профиль участника: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("участник %s не найден", email)
	}
	return nil
}
