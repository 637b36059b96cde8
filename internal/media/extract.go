package media

import (
	"bytes"

	"github.com/adrium/goheif"
	"github.com/rwcarlsen/goexif/exif"
)

// ExtractGPS пытается прочитать координаты из EXIF-блока файла.
// Отсутствие метаданных, отсутствие GPS-тегов и любые ошибки разбора
// (битый файл, неподдерживаемый контейнер) равнозначны: ok равен false.
// Это штатный исход для большой доли файлов (скриншоты, скачанные картинки,
// многие видео), он никогда не прерывает пакет.
func ExtractGPS(name string, data []byte) (lat, lng float64, ok bool) {
	raw := data
	if IsHEIC(name) {
		// exif.Decode не понимает HEIC-контейнер, поэтому EXIF-блок
		// сначала извлекается из него отдельно.
		exifData, err := goheif.ExtractExif(bytes.NewReader(data))
		if err != nil || len(exifData) == 0 {
			return 0, 0, false
		}
		raw = exifData
	}

	x, err := exif.Decode(bytes.NewReader(raw))
	if err != nil {
		return 0, 0, false
	}
	lat, lng, err = x.LatLong()
	if err != nil {
		return 0, 0, false
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return 0, 0, false
	}
	return lat, lng, true
}
