package service

import (
	"context"
	"fmt"

	"github.com/kurtaconger/egm/internal/model"
)

// Geocoder резолвит свободный текст места в координаты.
type Geocoder interface {
	GeocodeLine(ctx context.Context, line string) model.GeocodeResult
	GeocodeLines(ctx context.Context, text string) []model.GeocodeResult
}

// StopAdminStore - операции документной базы для управления набором остановок.
type StopAdminStore interface {
	FindAll(ctx context.Context, tripID string) ([]model.TripStop, error)
	ReplaceAll(ctx context.Context, tripID string, stops []model.TripStop) error
}

// StopService содержит бизнес-логику, связанную с остановками поездки.
type StopService struct {
	geocoder Geocoder
	stops    StopAdminStore
}

// NewStopService создает новый сервис остановок.
func NewStopService(geocoder Geocoder, stops StopAdminStore) *StopService {
	return &StopService{geocoder: geocoder, stops: stops}
}

// GeocodeStops геокодирует многострочный список мест, строку за строкой.
func (s *StopService) GeocodeStops(ctx context.Context, text string) []model.GeocodeResult {
	return s.geocoder.GeocodeLines(ctx, text)
}

// CreateStops геокодирует список мест и заменяет им набор остановок поездки.
// Идентификаторы выдаются в форме "Spot-01", "Spot-02", ... с порядковыми
// номерами от 1 без пропусков. Строки, которые не удалось геокодировать,
// сохраняются без координат - оператор исправит их позже.
func (s *StopService) CreateStops(ctx context.Context, tripID, text string) ([]model.TripStop, error) {
	results := s.geocoder.GeocodeLines(ctx, text)
	if len(results) == 0 {
		return nil, model.ErrNoStops
	}

	stops := make([]model.TripStop, 0, len(results))
	for i, res := range results {
		stops = append(stops, model.TripStop{
			ID:        fmt.Sprintf("Spot-%02d", i+1),
			Name:      res.Name,
			ShortName: res.ShortName,
			Lat:       res.Lat,
			Lng:       res.Lng,
			Seq:       i + 1,
			Media:     []string{},
		})
	}
	if err := s.stops.ReplaceAll(ctx, tripID, stops); err != nil {
		return nil, err
	}
	return stops, nil
}

// ListStops возвращает остановки поездки в порядке следования.
func (s *StopService) ListStops(ctx context.Context, tripID string) ([]model.TripStop, error) {
	return s.stops.FindAll(ctx, tripID)
}
