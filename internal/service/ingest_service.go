package service

import (
	"context"
	"fmt"
	"math"
	"path"
	"path/filepath"
	"sync"

	"github.com/kurtaconger/egm/internal/geo"
	"github.com/kurtaconger/egm/internal/media"
	"github.com/kurtaconger/egm/internal/model"

	"github.com/google/uuid"
)

// StopStore - операции документной базы, нужные конвейеру.
type StopStore interface {
	FindAll(ctx context.Context, tripID string) ([]model.TripStop, error)
	AppendMedia(ctx context.Context, tripID, stopID, path string) error
	AppendMediaUnique(ctx context.Context, tripID, stopID, path string) error
}

// BlobStore - операции хранилища блобов, нужные конвейеру.
type BlobStore interface {
	Upload(ctx context.Context, key string, content []byte) (string, error)
}

// BatchFile - один файл, выбранный пользователем для загрузки.
type BatchFile struct {
	Name string
	Data []byte
}

// Batch - пакет файлов одного прогона конвейера.
type Batch struct {
	ID    string
	Files []BatchFile
}

// IngestService - конвейер загрузки медиафайлов: нормализация формата,
// извлечение GPS, загрузка в хранилище блобов и назначение ближайшей остановке.
type IngestService struct {
	stops  StopStore
	blobs  BlobStore
	prefix string // папка хранилища, под которой сохраняются файлы
}

// NewIngestService создает новый сервис конвейера загрузки.
func NewIngestService(stops StopStore, blobs BlobStore, uploadPrefix string) *IngestService {
	return &IngestService{stops: stops, blobs: blobs, prefix: uploadPrefix}
}

// SelectFiles отбирает из выбранных пользователем файлов поддерживаемые
// (изображения и видео по расширению) и формирует пакет. Пустой пакет после
// фильтрации - штатный итог "нет подходящих файлов", а не ошибка.
// Имена приводятся к базовым: ключ в хранилище - всегда "префикс/имя_файла",
// сегменты пути из клиентского имени в него не попадают.
func (s *IngestService) SelectFiles(files []BatchFile) Batch {
	accepted := []BatchFile{}
	for _, f := range files {
		if _, ok := media.Category(f.Name); ok {
			accepted = append(accepted, BatchFile{Name: filepath.Base(f.Name), Data: f.Data})
		}
	}
	return Batch{ID: uuid.NewString(), Files: accepted}
}

// ingestFile - состояние одного файла на протяжении прогона конвейера.
type ingestFile struct {
	name     string // текущее имя (после нормализации HEIC меняется на .jpg)
	original []byte // исходные байты, по ним читается EXIF
	data     []byte // байты для загрузки
	lat      float64
	lng      float64
	hasGPS   bool
	blobPath string

	failReason string // непустое значение - файл выбыл из дальнейших этапов
	assigned   *model.AssignedMedia
}

// RunIngestion выполняет один прогон конвейера над пакетом:
// Normalizing -> ExtractingGPS -> Uploading -> Assigning -> Reporting.
// Все ошибки обработки отдельных файлов собираются в отчёт и не прерывают
// пакет; прогон целиком срывается только если список остановок вообще
// недоступен - без него назначение невозможно.
func (s *IngestService) RunIngestion(ctx context.Context, tripID string, batch Batch) (model.IngestReport, error) {
	report := model.IngestReport{
		Assigned:             []model.AssignedMedia{},
		NeedsManualPlacement: []string{},
		Errors:               []model.MediaError{},
	}
	if len(batch.Files) == 0 {
		return report, nil
	}

	// Список остановок проверяется до первого побочного эффекта.
	if _, err := s.stops.FindAll(ctx, tripID); err != nil {
		return model.IngestReport{}, fmt.Errorf("список остановок недоступен: %w", err)
	}

	files := make([]*ingestFile, len(batch.Files))
	for i, bf := range batch.Files {
		files[i] = &ingestFile{name: bf.Name, original: bf.Data, data: bf.Data}
	}

	// Normalizing: HEIC перекодируется в JPEG, остальные файлы проходят как есть.
	s.forEachAlive(files, func(f *ingestFile) {
		if !media.IsHEIC(f.name) {
			return
		}
		newName, converted, err := media.ConvertHEIC(f.name, f.original)
		if err != nil {
			f.failReason = err.Error()
			return
		}
		f.name = newName
		f.data = converted
	})

	// ExtractingGPS: координаты читаются из исходных байтов, так как
	// перекодирование в JPEG не переносит EXIF-блок.
	for i, bf := range batch.Files {
		f := files[i]
		if f.failReason != "" {
			continue
		}
		f.lat, f.lng, f.hasGPS = media.ExtractGPS(bf.Name, f.original)
	}

	// Uploading: обе части пакета (с GPS и без) загружаются в хранилище.
	s.forEachAlive(files, func(f *ingestFile) {
		blobPath, err := s.blobs.Upload(ctx, path.Join(s.prefix, f.name), f.data)
		if err != nil {
			f.failReason = fmt.Sprintf("загрузка не удалась: %v", err)
			return
		}
		f.blobPath = blobPath
	})

	// Assigning: для каждого файла с GPS список остановок перечитывается
	// заново, чтобы видеть правки, сделанные во время прогона. Каждое
	// назначение - независимая атомарная запись, без общей транзакции.
	for _, f := range files {
		if f.failReason != "" || !f.hasGPS {
			continue
		}
		stops, err := s.stops.FindAll(ctx, tripID)
		if err != nil {
			f.failReason = fmt.Sprintf("список остановок недоступен: %v", err)
			continue
		}
		nearest, distance, ok := geo.Nearest(f.lat, f.lng, stops)
		if !ok {
			// Ни одной остановки с координатами: назначение невозможно,
			// файл уходит на ручное размещение.
			f.hasGPS = false
			continue
		}
		if err := s.stops.AppendMedia(ctx, tripID, nearest.ID, f.blobPath); err != nil {
			f.failReason = fmt.Sprintf("запись назначения не удалась: %v", err)
			continue
		}
		f.assigned = &model.AssignedMedia{
			FileName: f.name,
			StopID:   nearest.ID,
			StopName: nearest.ShortName,
			Distance: round2(distance), // округление только в отчёте
		}
	}

	// Reporting: каждый файл попадает ровно в один из трёх списков.
	for _, f := range files {
		switch {
		case f.failReason != "":
			report.Errors = append(report.Errors, model.MediaError{FileName: f.name, Reason: f.failReason})
		case f.assigned != nil:
			report.Assigned = append(report.Assigned, *f.assigned)
		default:
			report.NeedsManualPlacement = append(report.NeedsManualPlacement, f.name)
		}
	}
	return report, nil
}

// ManualAssign загружает один файл и привязывает его к остановке, выбранной
// человеком по отображаемому имени. Остановка проверяется до загрузки, чтобы
// при ошибке выбора в хранилище не оставалось осиротевших объектов.
func (s *IngestService) ManualAssign(ctx context.Context, tripID string, file BatchFile, stopName string) (string, error) {
	if _, ok := media.Category(file.Name); !ok {
		return "", fmt.Errorf("неподдерживаемый тип файла: %s", file.Name)
	}
	file.Name = filepath.Base(file.Name)

	return s.placeManually(ctx, tripID, file, func(stop model.TripStop) bool {
		return stop.ShortName == stopName
	})
}

// ManualAssignByID - то же ручное размещение, но остановка выбирается по
// стабильному идентификатору ("Spot-01"). Идентификатор короткий, поэтому
// именно он передаётся в callback-данных бота вместо отображаемого имени.
func (s *IngestService) ManualAssignByID(ctx context.Context, tripID string, file BatchFile, stopID string) (string, error) {
	if _, ok := media.Category(file.Name); !ok {
		return "", fmt.Errorf("неподдерживаемый тип файла: %s", file.Name)
	}
	file.Name = filepath.Base(file.Name)

	return s.placeManually(ctx, tripID, file, func(stop model.TripStop) bool {
		return stop.ID == stopID
	})
}

// placeManually проверяет выбранную остановку до загрузки и выполняет
// append-unique назначение.
func (s *IngestService) placeManually(ctx context.Context, tripID string, file BatchFile, match func(model.TripStop) bool) (string, error) {
	stops, err := s.stops.FindAll(ctx, tripID)
	if err != nil {
		return "", fmt.Errorf("список остановок недоступен: %w", err)
	}
	var target *model.TripStop
	for i := range stops {
		if match(stops[i]) {
			target = &stops[i]
			break
		}
	}
	if target == nil {
		return "", model.ErrStopNotFound
	}

	name, data := file.Name, file.Data
	if media.IsHEIC(name) {
		name, data, err = media.ConvertHEIC(name, data)
		if err != nil {
			return "", err
		}
	}

	blobPath, err := s.blobs.Upload(ctx, path.Join(s.prefix, name), data)
	if err != nil {
		return "", fmt.Errorf("загрузка не удалась: %w", err)
	}
	if err := s.stops.AppendMediaUnique(ctx, tripID, target.ID, blobPath); err != nil {
		return "", err
	}
	return blobPath, nil
}

// forEachAlive выполняет fn над каждым не выбывшим файлом пакета параллельно
// и дожидается завершения всех задач перед возвратом: результаты этапа
// становятся видны только после общей точки соединения.
func (s *IngestService) forEachAlive(files []*ingestFile, fn func(f *ingestFile)) {
	var wg sync.WaitGroup
	for _, f := range files {
		if f.failReason != "" {
			continue
		}
		wg.Add(1)
		go func(f *ingestFile) {
			defer wg.Done()
			fn(f)
		}(f)
	}
	wg.Wait()
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
