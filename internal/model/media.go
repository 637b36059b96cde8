package model

// MediaAsset представляет один загружаемый файл (фото или видео) на время
// одного прогона конвейера. Как отдельная сущность не сохраняется: в базе
// остаётся только путь файла в списке Media соответствующей остановки.
type MediaAsset struct {
	OriginalName   string   // имя файла, выбранное пользователем
	MimeCategory   string   // "image" или "video", по расширению
	Lat            *float64 // координаты из метаданных, nil если их нет
	Lng            *float64
	BlobPath       string // путь в хранилище блобов, пустой до загрузки
	AssignedStopID string // идентификатор остановки, пустой до назначения
}

// AssignedMedia - строка итогового отчёта о файле, назначенном остановке.
type AssignedMedia struct {
	FileName string  `json:"fileName"`
	StopID   string  `json:"stopId"`
	StopName string  `json:"stopName"`
	Distance float64 `json:"distance"` // мили, округлено до 2 знаков только в отчёте
}

// MediaError - строка отчёта о файле, обработка которого завершилась ошибкой.
type MediaError struct {
	FileName string `json:"fileName"`
	Reason   string `json:"reason"`
}

// IngestReport - итог одного прогона конвейера: каждый уцелевший файл попадает
// ровно в один из трёх списков.
type IngestReport struct {
	Assigned             []AssignedMedia `json:"assigned"`
	NeedsManualPlacement []string        `json:"needsManualPlacement"`
	Errors               []MediaError    `json:"errors"`
}
