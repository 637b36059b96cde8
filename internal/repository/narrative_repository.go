package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/kurtaconger/egm/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NarrativeRepository обеспечивает доступ к совместно редактируемым текстам
// остановок. Тексты каждой поездки лежат в коллекции "TRIP-<tripID>-DATA",
// документ на остановку, ключ - идентификатор остановки.
type NarrativeRepository struct {
	db *mongo.Database
}

// NewNarrativeRepository создает новый репозиторий текстов остановок.
func NewNarrativeRepository(db *mongo.Database) *NarrativeRepository {
	return &NarrativeRepository{db: db}
}

func (r *NarrativeRepository) collection(tripID string) *mongo.Collection {
	return r.db.Collection("TRIP-" + tripID + "-DATA")
}

// Get возвращает текст остановки. Отсутствие документа - пустой текст, не ошибка.
func (r *NarrativeRepository) Get(ctx context.Context, tripID, stopID string) (string, error) {
	var narrative model.StopNarrative
	err := r.collection(tripID).FindOne(ctx, bson.M{"_id": stopID}).Decode(&narrative)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("ошибка при чтении текста остановки %s: %w", stopID, err)
	}
	return narrative.Content, nil
}

// Set записывает текст остановки целиком (last-write-wins), создавая документ
// при первом сохранении.
func (r *NarrativeRepository) Set(ctx context.Context, tripID, stopID, content string) error {
	_, err := r.collection(tripID).UpdateOne(ctx,
		bson.M{"_id": stopID},
		bson.M{"$set": bson.M{"content": content}},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("не удалось сохранить текст остановки %s: %w", stopID, err)
	}
	return nil
}
