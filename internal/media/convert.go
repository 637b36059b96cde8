package media

import (
	"bytes"
	"fmt"
	"image/jpeg"

	"github.com/adrium/goheif"
)

// jpegQuality - качество JPEG при перекодировании HEIC.
const jpegQuality = 90

// ConvertHEIC перекодирует HEIC-файл в JPEG, пригодный для показа в браузере.
// Возвращает новое имя (то же базовое имя с расширением .jpg) и содержимое.
// Исходные байты после конвертации не используются.
func ConvertHEIC(name string, data []byte) (newName string, converted []byte, err error) {
	img, err := goheif.Decode(bytes.NewReader(data))
	if err != nil {
		return "", nil, fmt.Errorf("не удалось декодировать HEIC %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return "", nil, fmt.Errorf("не удалось закодировать JPEG для %s: %w", name, err)
	}
	return JPEGName(name), buf.Bytes(), nil
}
