package model

// User представляет участника поездки: отображаемое имя и цвет подписи в комментариях.
type User struct {
	ID          int    `db:"id"`
	Email       string `db:"email"`
	DisplayName string `db:"display_name"`
	HexColor    string `db:"hex_color"`   // цвет подписи в формате "#RRGGBB"
	TelegramID  int64  `db:"telegram_id"` // 0, если пользователь не привязал Telegram
}
