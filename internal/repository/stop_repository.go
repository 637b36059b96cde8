package repository

import (
	"context"
	"fmt"

	"github.com/kurtaconger/egm/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// StopRepository обеспечивает доступ к остановкам поездок в документной базе.
// Остановки каждой поездки лежат в отдельной коллекции "MAP-<tripID>-DATA".
type StopRepository struct {
	db *mongo.Database
}

// NewStopRepository создает новый репозиторий остановок.
func NewStopRepository(db *mongo.Database) *StopRepository {
	return &StopRepository{db: db}
}

func (r *StopRepository) collection(tripID string) *mongo.Collection {
	return r.db.Collection("MAP-" + tripID + "-DATA")
}

// FindAll возвращает все остановки поездки в порядке следования (seq).
func (r *StopRepository) FindAll(ctx context.Context, tripID string) ([]model.TripStop, error) {
	cursor, err := r.collection(tripID).Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "seq", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении списка остановок: %w", err)
	}
	defer cursor.Close(ctx)

	stops := []model.TripStop{}
	if err := cursor.All(ctx, &stops); err != nil {
		return nil, fmt.Errorf("ошибка при чтении списка остановок: %w", err)
	}
	return stops, nil
}

// ReplaceAll заменяет весь набор остановок поездки новым: сначала удаляются
// существующие документы, затем вставляются новые (как при пересоздании
// списка остановок оператором).
func (r *StopRepository) ReplaceAll(ctx context.Context, tripID string, stops []model.TripStop) error {
	coll := r.collection(tripID)
	if _, err := coll.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("не удалось удалить прежние остановки: %w", err)
	}
	if len(stops) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(stops))
	for _, stop := range stops {
		docs = append(docs, stop)
	}
	if _, err := coll.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("не удалось сохранить остановки: %w", err)
	}
	return nil
}

// AppendMedia добавляет путь файла в список media остановки. Операция $push
// атомарна на уровне документа, поэтому два файла, назначенные одной остановке
// в одном пакете, не теряют записи друг друга.
func (r *StopRepository) AppendMedia(ctx context.Context, tripID, stopID, path string) error {
	res, err := r.collection(tripID).UpdateOne(ctx,
		bson.M{"_id": stopID},
		bson.M{"$push": bson.M{"media": path}})
	if err != nil {
		return fmt.Errorf("не удалось добавить файл к остановке %s: %w", stopID, err)
	}
	if res.MatchedCount == 0 {
		return model.ErrStopNotFound
	}
	return nil
}

// AppendMediaUnique добавляет путь файла в список media без дублей ($addToSet).
// Используется в ручном назначении: повторная отправка того же файла не
// умножает записи.
func (r *StopRepository) AppendMediaUnique(ctx context.Context, tripID, stopID, path string) error {
	res, err := r.collection(tripID).UpdateOne(ctx,
		bson.M{"_id": stopID},
		bson.M{"$addToSet": bson.M{"media": path}})
	if err != nil {
		return fmt.Errorf("не удалось добавить файл к остановке %s: %w", stopID, err)
	}
	if res.MatchedCount == 0 {
		return model.ErrStopNotFound
	}
	return nil
}
