package main

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"github.com/kurtaconger/egm/internal/config"
	"github.com/kurtaconger/egm/internal/geocode"
	"github.com/kurtaconger/egm/internal/handler"
	"github.com/kurtaconger/egm/internal/repository"
	"github.com/kurtaconger/egm/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq" // PostgreSQL драйвер
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	// .env удобен при локальной разработке; в бою переменные задаёт окружение
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Ошибка чтения конфигурации: %v", err)
	}

	// Подключение к Postgres (реестр участников)
	db, err := sqlx.Connect("postgres", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("Не удалось подключиться к базе данных: %v", err)
	}
	// Выполняем миграции (если есть)
	files, err := filepath.Glob("migrations/*.sql")
	if err == nil {
		for _, file := range files {
			content, readErr := os.ReadFile(file)
			if readErr != nil {
				log.Printf("Миграция %s не прочитана: %v", file, readErr)
				continue
			}
			if _, execErr := db.Exec(string(content)); execErr != nil {
				log.Printf("Миграция %s завершилась ошибкой: %v", file, execErr)
			} else {
				log.Printf("Миграция %s применена.", file)
			}
		}
	}

	// Подключение к MongoDB (документная база остановок и текстов)
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ExternalTimeout)
	defer cancel()
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("Не удалось подключиться к MongoDB: %v", err)
	}
	if err := mongoClient.Ping(ctx, nil); err != nil {
		log.Fatalf("MongoDB не отвечает: %v", err)
	}
	mongoDB := mongoClient.Database(cfg.MongoDatabase)

	// Хранилище блобов на диске
	blobStore, err := repository.NewDiskBlobStore(cfg.BlobRoot)
	if err != nil {
		log.Fatalf("Не удалось инициализировать хранилище блобов: %v", err)
	}

	// Инициализируем репозитории
	userRepo := repository.NewUserRepository(db)
	stopRepo := repository.NewStopRepository(mongoDB)
	tripRepo := repository.NewTripRepository(mongoDB)
	narrativeRepo := repository.NewNarrativeRepository(mongoDB)

	// Инициализируем сервисы
	geocoder := geocode.NewClient(cfg.MapboxToken, cfg.ExternalTimeout)
	tripService := service.NewTripService(tripRepo, narrativeRepo)
	stopService := service.NewStopService(geocoder, stopRepo)
	ingestService := service.NewIngestService(stopRepo, blobStore, cfg.UploadPrefix)
	userService := service.NewUserService(userRepo)

	// Создаем Handler и регистрируем маршруты
	h := handler.NewHandler(tripService, stopService, ingestService, userService)
	router := gin.Default()
	api := router.Group("/api")
	{
		api.POST("/trips", h.InitTrip)
		api.GET("/trips/:tripID", h.GetTrip)
		api.POST("/geocode", h.GeocodeStops)
		api.POST("/trips/:tripID/stops", h.CreateStops)
		api.GET("/trips/:tripID/stops", h.ListStops)
		api.POST("/trips/:tripID/media", h.IngestMedia)
		api.POST("/trips/:tripID/media/manual", h.ManualAssignMedia)
		api.GET("/trips/:tripID/stops/:stopID/narrative", h.GetNarrative)
		api.PUT("/trips/:tripID/stops/:stopID/narrative", h.SetNarrative)
		api.POST("/users", h.RegisterUser)
		api.GET("/users/:email", h.GetUser)
		api.PUT("/users/:email", h.UpdateUserProfile)
		api.GET("/users/:email/color", h.GetUserColor)
	}
	// Health-check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Запускаем HTTP-сервер
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Ошибка запуска сервера: %v", err)
	}
}
