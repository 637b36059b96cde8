package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/kurtaconger/egm/internal/config"
	"github.com/kurtaconger/egm/internal/model"
	"github.com/kurtaconger/egm/internal/repository"
	"github.com/kurtaconger/egm/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Ошибка чтения конфигурации: %v", err)
	}

	// Подключение к базам данных
	db, err := sqlx.Connect("postgres", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("DB connection failed: %v", err)
	}
	mctx, cancel := context.WithTimeout(context.Background(), cfg.ExternalTimeout)
	mongoClient, err := mongo.Connect(mctx, options.Client().ApplyURI(cfg.MongoURI))
	cancel()
	if err != nil {
		log.Fatalf("Не удалось подключиться к MongoDB: %v", err)
	}
	mongoDB := mongoClient.Database(cfg.MongoDatabase)

	blobStore, err := repository.NewDiskBlobStore(cfg.BlobRoot)
	if err != nil {
		log.Fatalf("Не удалось инициализировать хранилище блобов: %v", err)
	}

	// Инициализация репозиториев и сервисов
	userRepo := repository.NewUserRepository(db)
	stopRepo := repository.NewStopRepository(mongoDB)
	tripRepo := repository.NewTripRepository(mongoDB)
	narrativeRepo := repository.NewNarrativeRepository(mongoDB)

	userService := service.NewUserService(userRepo)
	tripService := service.NewTripService(tripRepo, narrativeRepo)
	ingestService := service.NewIngestService(stopRepo, blobStore, cfg.UploadPrefix)

	// Инициализация Telegram Bot API
	if cfg.BotToken == "" {
		log.Fatal("Не указан токен бота (BOT_TOKEN)")
	}
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		log.Fatal("Ошибка инициализации бота:", err)
	}
	log.Printf("Запущен бот %s", bot.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := bot.GetUpdatesChan(u)

	// Состояние диалогов
	activeTrip := make(map[int64]string)              // userID -> tripID
	pendingMedia := make(map[int64]service.BatchFile) // userID -> файл, ожидающий ручного размещения

	for update := range updates {
		// --- CallbackQuery (выбор остановки для файла без GPS) ---
		if cq := update.CallbackQuery; cq != nil {
			bot.Request(tgbotapi.NewCallback(cq.ID, ""))

			fromID := cq.From.ID
			stopID := strings.TrimPrefix(cq.Data, "assign|")
			file, ok := pendingMedia[fromID]
			tripID := activeTrip[fromID]
			if !ok || tripID == "" {
				bot.Send(tgbotapi.NewMessage(cq.Message.Chat.ID, "Нет файла, ожидающего размещения."))
				continue
			}

			ctx, cancel := context.WithTimeout(context.Background(), cfg.ExternalTimeout)
			blobPath, err := ingestService.ManualAssignByID(ctx, tripID, file, stopID)
			cancel()
			if errors.Is(err, model.ErrStopNotFound) {
				bot.Send(tgbotapi.NewMessage(cq.Message.Chat.ID, "Остановка не найдена, попробуйте ещё раз."))
				continue
			}
			if err != nil {
				log.Printf("Ручное размещение для %d не удалось: %v", fromID, err)
				bot.Send(tgbotapi.NewMessage(cq.Message.Chat.ID, "Не удалось сохранить файл: "+err.Error()))
				continue
			}
			delete(pendingMedia, fromID)
			bot.Send(tgbotapi.NewMessage(cq.Message.Chat.ID,
				fmt.Sprintf("Файл %s привязан к остановке %s.", blobPath, stopID)))
			continue
		}

		msg := update.Message
		if msg == nil {
			continue
		}
		fromID := msg.From.ID
		chatID := msg.Chat.ID

		// --- Команды ---
		if msg.IsCommand() {
			switch msg.Command() {
			case "start":
				user, err := userService.AuthTelegram(fromID, msg.From.UserName)
				if err != nil {
					log.Printf("Ошибка регистрации участника %d: %v", fromID, err)
					bot.Send(tgbotapi.NewMessage(chatID, "Не удалось выполнить регистрацию."))
					continue
				}
				bot.Send(tgbotapi.NewMessage(chatID, fmt.Sprintf(
					"Привет, %s! Выберите поездку командой /trip <id>, затем присылайте фото - "+
						"я привяжу их к ближайшей остановке маршрута.", user.DisplayName)))
			case "trip":
				tripID := strings.TrimSpace(msg.CommandArguments())
				if tripID == "" {
					bot.Send(tgbotapi.NewMessage(chatID, "Укажите идентификатор поездки: /trip BVI"))
					continue
				}
				tctx, tcancel := context.WithTimeout(context.Background(), cfg.ExternalTimeout)
				_, err := tripService.GetTrip(tctx, tripID)
				tcancel()
				if errors.Is(err, model.ErrTripNotFound) {
					bot.Send(tgbotapi.NewMessage(chatID, "Поездка не найдена: "+tripID))
					continue
				}
				if err != nil {
					log.Printf("Ошибка проверки поездки %s: %v", tripID, err)
					bot.Send(tgbotapi.NewMessage(chatID, "Не удалось проверить поездку, попробуйте позже."))
					continue
				}
				activeTrip[fromID] = tripID
				bot.Send(tgbotapi.NewMessage(chatID, "Поездка выбрана: "+tripID))
			default:
				bot.Send(tgbotapi.NewMessage(chatID, "Доступные команды: /start, /trip <id>"))
			}
			continue
		}

		// --- Фото и файлы ---
		fileID, fileName := incomingFile(msg)
		if fileID == "" {
			continue
		}
		tripID := activeTrip[fromID]
		if tripID == "" {
			bot.Send(tgbotapi.NewMessage(chatID, "Сначала выберите поездку: /trip <id>"))
			continue
		}

		data, err := downloadTelegramFile(bot, fileID, cfg.ExternalTimeout)
		if err != nil {
			log.Printf("Не удалось скачать файл %s: %v", fileID, err)
			bot.Send(tgbotapi.NewMessage(chatID, "Не удалось получить файл из Telegram."))
			continue
		}

		batch := ingestService.SelectFiles([]service.BatchFile{{Name: fileName, Data: data}})
		if len(batch.Files) == 0 {
			bot.Send(tgbotapi.NewMessage(chatID, "Этот тип файла не поддерживается."))
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ExternalTimeout)
		report, err := ingestService.RunIngestion(ctx, tripID, batch)
		cancel()
		if err != nil {
			bot.Send(tgbotapi.NewMessage(chatID, "Список остановок поездки недоступен, попробуйте позже."))
			continue
		}

		switch {
		case len(report.Assigned) > 0:
			a := report.Assigned[0]
			bot.Send(tgbotapi.NewMessage(chatID, fmt.Sprintf(
				"Фото привязано к остановке %s (%.2f миль).", a.StopName, a.Distance)))
		case len(report.Errors) > 0:
			bot.Send(tgbotapi.NewMessage(chatID, "Ошибка обработки: "+report.Errors[0].Reason))
		default:
			// GPS не найден - предлагаем выбрать остановку вручную
			pendingMedia[fromID] = batch.Files[0]
			keyboard, err := stopKeyboard(stopRepo, tripID, cfg)
			if err != nil {
				bot.Send(tgbotapi.NewMessage(chatID, "Не удалось получить список остановок."))
				continue
			}
			reply := tgbotapi.NewMessage(chatID, "В файле нет GPS-координат. Выберите остановку:")
			reply.ReplyMarkup = keyboard
			bot.Send(reply)
		}
	}
}

// incomingFile возвращает FileID и имя входящего медиафайла сообщения.
// Для фото Telegram отдаёт несколько размеров - берётся самый крупный.
func incomingFile(msg *tgbotapi.Message) (fileID, fileName string) {
	if len(msg.Photo) > 0 {
		photo := msg.Photo[len(msg.Photo)-1]
		return photo.FileID, photo.FileUniqueID + ".jpg"
	}
	if msg.Document != nil {
		return msg.Document.FileID, msg.Document.FileName
	}
	if msg.Video != nil {
		return msg.Video.FileID, msg.Video.FileUniqueID + ".mp4"
	}
	return "", ""
}

// downloadTelegramFile скачивает содержимое файла с серверов Telegram.
func downloadTelegramFile(bot *tgbotapi.BotAPI, fileID string, timeout time.Duration) ([]byte, error) {
	url, err := bot.GetFileDirectURL(fileID)
	if err != nil {
		return nil, err
	}
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("telegram вернул статус %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// stopKeyboard строит inline-клавиатуру из остановок поездки. На кнопке -
// отображаемое имя, в callback-данных - стабильный идентификатор: длинные
// геокодированные имена не влезают в лимит callback-данных Telegram (64 байта).
func stopKeyboard(stopStore service.StopStore, tripID string, cfg config.Config) (tgbotapi.InlineKeyboardMarkup, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ExternalTimeout)
	defer cancel()
	stops, err := stopStore.FindAll(ctx, tripID)
	if err != nil {
		return tgbotapi.InlineKeyboardMarkup{}, err
	}
	rows := [][]tgbotapi.InlineKeyboardButton{}
	for _, stop := range stops {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(stop.ShortName, "assign|"+stop.ID)))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...), nil
}
