package handler

import (
	"database/sql"
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/kurtaconger/egm/internal/model"
	"github.com/kurtaconger/egm/internal/service"

	"github.com/gin-gonic/gin"
)

// Handler структурирует зависимости сервисов для обработки HTTP-запросов.
type Handler struct {
	TripService   *service.TripService
	StopService   *service.StopService
	IngestService *service.IngestService
	UserService   *service.UserService
}

// NewHandler создает новый Handler с внедрением зависимостей (сервисов).
func NewHandler(ts *service.TripService, ss *service.StopService,
	is *service.IngestService, us *service.UserService) *Handler {
	return &Handler{
		TripService:   ts,
		StopService:   ss,
		IngestService: is,
		UserService:   us,
	}
}

// InitTrip обработчик для POST /api/trips - регистрирует новую поездку.
func (h *Handler) InitTrip(c *gin.Context) {
	var req struct {
		ID    string `json:"id" binding:"required"`
		Title string `json:"title" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Требуются id и title поездки"})
		return
	}
	trip, err := h.TripService.InitTrip(c.Request.Context(), req.ID, req.Title)
	if errors.Is(err, model.ErrTripExists) {
		c.JSON(http.StatusConflict, gin.H{"error": "Поездка уже существует"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось создать поездку"})
		return
	}
	c.JSON(http.StatusCreated, trip)
}

// GetTrip обработчик для GET /api/trips/:tripID.
func (h *Handler) GetTrip(c *gin.Context) {
	trip, err := h.TripService.GetTrip(c.Request.Context(), c.Param("tripID"))
	if errors.Is(err, model.ErrTripNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Поездка не найдена"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось получить поездку"})
		return
	}
	c.JSON(http.StatusOK, trip)
}

// CreateStops обработчик для POST /api/trips/:tripID/stops - геокодирует
// многострочный список мест и заменяет им набор остановок поездки.
func (h *Handler) CreateStops(c *gin.Context) {
	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Требуется text со списком остановок"})
		return
	}
	stops, err := h.StopService.CreateStops(c.Request.Context(), c.Param("tripID"), req.Text)
	if errors.Is(err, model.ErrNoStops) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Список остановок пуст"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось сохранить остановки"})
		return
	}
	c.JSON(http.StatusCreated, stops)
}

// GeocodeStops обработчик для POST /api/geocode - геокодирует список мест
// без сохранения (для предварительного просмотра оператором).
func (h *Handler) GeocodeStops(c *gin.Context) {
	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Требуется text со списком мест"})
		return
	}
	c.JSON(http.StatusOK, h.StopService.GeocodeStops(c.Request.Context(), req.Text))
}

// ListStops обработчик для GET /api/trips/:tripID/stops.
func (h *Handler) ListStops(c *gin.Context) {
	stops, err := h.StopService.ListStops(c.Request.Context(), c.Param("tripID"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось получить остановки"})
		return
	}
	c.JSON(http.StatusOK, stops)
}

// IngestMedia обработчик для POST /api/trips/:tripID/media - принимает пакет
// файлов multipart-формой и возвращает отчёт конвейера из трёх списков.
func (h *Handler) IngestMedia(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Ожидалась multipart-форма с файлами"})
		return
	}
	files, err := readFormFiles(form.File["files"])
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Не удалось прочитать файлы формы"})
		return
	}

	batch := h.IngestService.SelectFiles(files)
	report, err := h.IngestService.RunIngestion(c.Request.Context(), c.Param("tripID"), batch)
	if err != nil {
		// Единственный срыв уровня пакета: список остановок недоступен.
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

// ManualAssignMedia обработчик для POST /api/trips/:tripID/media/manual -
// загружает один файл в остановку, выбранную оператором по имени.
func (h *Handler) ManualAssignMedia(c *gin.Context) {
	stopName := c.PostForm("stop")
	if stopName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Требуется поле stop с именем остановки"})
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Требуется файл file"})
		return
	}
	files, err := readFormFiles([]*multipart.FileHeader{fileHeader})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Не удалось прочитать файл"})
		return
	}

	blobPath, err := h.IngestService.ManualAssign(c.Request.Context(), c.Param("tripID"), files[0], stopName)
	if errors.Is(err, model.ErrStopNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Остановка не найдена"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"blobPath": blobPath})
}

// GetNarrative обработчик для GET /api/trips/:tripID/stops/:stopID/narrative.
func (h *Handler) GetNarrative(c *gin.Context) {
	content, err := h.TripService.GetNarrative(c.Request.Context(), c.Param("tripID"), c.Param("stopID"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось прочитать текст остановки"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"content": content})
}

// SetNarrative обработчик для PUT /api/trips/:tripID/stops/:stopID/narrative.
func (h *Handler) SetNarrative(c *gin.Context) {
	var req struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Требуется content"})
		return
	}
	if err := h.TripService.SetNarrative(c.Request.Context(), c.Param("tripID"), c.Param("stopID"), req.Content); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось сохранить текст остановки"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// RegisterUser обработчик для POST /api/users - добавляет участника поездки.
func (h *Handler) RegisterUser(c *gin.Context) {
	var req struct {
		Email       string `json:"email" binding:"required"`
		DisplayName string `json:"displayName" binding:"required"`
		HexColor    string `json:"hexColor"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Требуются email и displayName"})
		return
	}
	user, err := h.UserService.Register(req.Email, req.DisplayName, req.HexColor)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось создать участника"})
		return
	}
	c.JSON(http.StatusCreated, user)
}

// GetUser обработчик для GET /api/users/:email - возвращает профиль участника.
func (h *Handler) GetUser(c *gin.Context) {
	user, err := h.UserService.GetByEmail(c.Param("email"))
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Участник не найден"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось получить участника"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"email":       user.Email,
		"displayName": user.DisplayName,
		"hexColor":    user.HexColor,
	})
}

// UpdateUserProfile обработчик для PUT /api/users/:email - обновляет
// отображаемое имя и цвет подписи участника.
func (h *Handler) UpdateUserProfile(c *gin.Context) {
	var req struct {
		DisplayName string `json:"displayName" binding:"required"`
		HexColor    string `json:"hexColor" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Требуются displayName и hexColor"})
		return
	}
	if err := h.UserService.UpdateProfile(c.Param("email"), req.DisplayName, req.HexColor); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось обновить профиль"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetUserColor обработчик для GET /api/users/:email/color - возвращает цвет
// подписи участника (чёрный по умолчанию для незарегистрированных).
func (h *Handler) GetUserColor(c *gin.Context) {
	color, err := h.UserService.GetColor(c.Param("email"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось получить цвет участника"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"hexColor": color})
}

// readFormFiles вычитывает содержимое файлов multipart-формы в память.
func readFormFiles(headers []*multipart.FileHeader) ([]service.BatchFile, error) {
	files := make([]service.BatchFile, 0, len(headers))
	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, err
		}
		files = append(files, service.BatchFile{Name: header.Filename, Data: data})
	}
	return files, nil
}
