package media

import (
	"path/filepath"
	"strings"
)

// Категории файлов по расширению. Файлы с другими расширениями конвейер
// отбрасывает ещё на этапе выбора.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".heic": true,
}

var videoExtensions = map[string]bool{
	".mp4": true,
	".mov": true,
}

// Category определяет категорию файла ("image" или "video") по расширению.
// ok равен false для неподдерживаемых расширений.
func Category(name string) (category string, ok bool) {
	ext := strings.ToLower(filepath.Ext(name))
	switch {
	case imageExtensions[ext]:
		return "image", true
	case videoExtensions[ext]:
		return "video", true
	default:
		return "", false
	}
}

// IsHEIC сообщает, указывает ли расширение файла на формат HEIC
// (сравнение без учёта регистра).
func IsHEIC(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".heic")
}

// JPEGName возвращает имя файла с заменой расширения .heic на .jpg,
// сохраняя базовое имя.
func JPEGName(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name)) + ".jpg"
}
