package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kurtaconger/egm/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// TripRepository обеспечивает доступ к реестру поездок в документной базе.
type TripRepository struct {
	db *mongo.Database
}

// NewTripRepository создает новый репозиторий поездок.
func NewTripRepository(db *mongo.Database) *TripRepository {
	return &TripRepository{db: db}
}

func (r *TripRepository) collection() *mongo.Collection {
	return r.db.Collection("TRIPS")
}

// Create регистрирует новую поездку. Повторная регистрация того же
// идентификатора возвращает ErrTripExists.
func (r *TripRepository) Create(ctx context.Context, tripID, title string) (*model.Trip, error) {
	trip := model.Trip{
		ID:        tripID,
		Title:     title,
		CreatedAt: time.Now().UTC(),
	}
	_, err := r.collection().InsertOne(ctx, trip)
	if mongo.IsDuplicateKeyError(err) {
		return nil, model.ErrTripExists
	}
	if err != nil {
		return nil, fmt.Errorf("не удалось создать поездку: %w", err)
	}
	return &trip, nil
}

// Get возвращает поездку по идентификатору.
func (r *TripRepository) Get(ctx context.Context, tripID string) (*model.Trip, error) {
	var trip model.Trip
	err := r.collection().FindOne(ctx, bson.M{"_id": tripID}).Decode(&trip)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, model.ErrTripNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка при поиске поездки: %w", err)
	}
	return &trip, nil
}
