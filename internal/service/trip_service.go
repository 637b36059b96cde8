package service

import (
	"context"

	"github.com/kurtaconger/egm/internal/model"
)

// TripStore - операции реестра поездок.
type TripStore interface {
	Create(ctx context.Context, tripID, title string) (*model.Trip, error)
	Get(ctx context.Context, tripID string) (*model.Trip, error)
}

// NarrativeStore - операции хранения общих текстов остановок.
type NarrativeStore interface {
	Get(ctx context.Context, tripID, stopID string) (string, error)
	Set(ctx context.Context, tripID, stopID, content string) error
}

// TripService содержит бизнес-логику, связанную с поездками и их
// совместно редактируемыми текстами.
type TripService struct {
	trips      TripStore
	narratives NarrativeStore
}

// NewTripService создает новый сервис поездок.
func NewTripService(trips TripStore, narratives NarrativeStore) *TripService {
	return &TripService{trips: trips, narratives: narratives}
}

// InitTrip регистрирует новую поездку с заголовком карты.
// Возвращает ErrTripExists, если поездка уже создана.
func (s *TripService) InitTrip(ctx context.Context, tripID, title string) (*model.Trip, error) {
	return s.trips.Create(ctx, tripID, title)
}

// GetTrip возвращает поездку по идентификатору.
func (s *TripService) GetTrip(ctx context.Context, tripID string) (*model.Trip, error) {
	return s.trips.Get(ctx, tripID)
}

// GetNarrative возвращает общий текст остановки (пустой, если ещё не писали).
func (s *TripService) GetNarrative(ctx context.Context, tripID, stopID string) (string, error) {
	return s.narratives.Get(ctx, tripID, stopID)
}

// SetNarrative сохраняет общий текст остановки целиком. Разрешение
// конфликтов - last-write-wins, на уровне поля.
func (s *TripService) SetNarrative(ctx context.Context, tripID, stopID, content string) error {
	return s.narratives.Set(ctx, tripID, stopID, content)
}
