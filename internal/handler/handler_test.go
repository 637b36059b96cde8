package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kurtaconger/egm/internal/model"
	"github.com/kurtaconger/egm/internal/service"

	"github.com/gin-gonic/gin"
)

// Простые заглушки хранилищ для проверки HTTP-слоя.

type stubStopStore struct {
	stops []model.TripStop
}

func (s *stubStopStore) FindAll(ctx context.Context, tripID string) ([]model.TripStop, error) {
	return s.stops, nil
}

func (s *stubStopStore) AppendMedia(ctx context.Context, tripID, stopID, path string) error {
	for i := range s.stops {
		if s.stops[i].ID == stopID {
			s.stops[i].Media = append(s.stops[i].Media, path)
			return nil
		}
	}
	return model.ErrStopNotFound
}

func (s *stubStopStore) AppendMediaUnique(ctx context.Context, tripID, stopID, path string) error {
	return s.AppendMedia(ctx, tripID, stopID, path)
}

func (s *stubStopStore) ReplaceAll(ctx context.Context, tripID string, stops []model.TripStop) error {
	s.stops = stops
	return nil
}

type stubBlobStore struct {
	uploads int
}

func (s *stubBlobStore) Upload(ctx context.Context, key string, content []byte) (string, error) {
	s.uploads++
	return key, nil
}

type stubNarratives struct {
	content map[string]string
}

func (s *stubNarratives) Get(ctx context.Context, tripID, stopID string) (string, error) {
	return s.content[stopID], nil
}

func (s *stubNarratives) Set(ctx context.Context, tripID, stopID, content string) error {
	s.content[stopID] = content
	return nil
}

// stubGeocoder резолвит любую непустую строку в место без координат.
type stubGeocoder struct{}

func (stubGeocoder) GeocodeLine(ctx context.Context, line string) model.GeocodeResult {
	return model.GeocodeResult{Name: line, ShortName: line}
}

func (g stubGeocoder) GeocodeLines(ctx context.Context, text string) []model.GeocodeResult {
	results := []model.GeocodeResult{}
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			results = append(results, g.GeocodeLine(ctx, line))
		}
	}
	return results
}

type stubTrips struct{}

func (stubTrips) Create(ctx context.Context, tripID, title string) (*model.Trip, error) {
	return &model.Trip{ID: tripID, Title: title}, nil
}

func (stubTrips) Get(ctx context.Context, tripID string) (*model.Trip, error) {
	return &model.Trip{ID: tripID}, nil
}

func ptr(v float64) *float64 { return &v }

func newTestRouter(t *testing.T) (*gin.Engine, *stubStopStore, *stubBlobStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	stops := &stubStopStore{stops: []model.TripStop{
		{ID: "Spot-01", ShortName: "Cane Garden Bay", Lat: ptr(18.42), Lng: ptr(-64.62), Seq: 1, Media: []string{}},
	}}
	blobs := &stubBlobStore{}

	tripService := service.NewTripService(stubTrips{}, &stubNarratives{content: map[string]string{}})
	stopService := service.NewStopService(stubGeocoder{}, stops)
	ingestService := service.NewIngestService(stops, blobs, "personal_display")
	h := &Handler{
		TripService:   tripService,
		StopService:   stopService,
		IngestService: ingestService,
	}

	router := gin.New()
	api := router.Group("/api")
	{
		api.POST("/trips/:tripID/stops", h.CreateStops)
		api.POST("/trips/:tripID/media", h.IngestMedia)
		api.POST("/trips/:tripID/media/manual", h.ManualAssignMedia)
		api.GET("/trips/:tripID/stops/:stopID/narrative", h.GetNarrative)
		api.PUT("/trips/:tripID/stops/:stopID/narrative", h.SetNarrative)
	}
	return router, stops, blobs
}

func multipartBody(t *testing.T, field string, files map[string][]byte, extra map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for name, data := range files {
		part, err := writer.CreateFormFile(field, name)
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		if _, err := part.Write(data); err != nil {
			t.Fatalf("запись файла формы: %v", err)
		}
	}
	for k, v := range extra {
		_ = writer.WriteField(k, v)
	}
	writer.Close()
	return body, writer.FormDataContentType()
}

func TestIngestMediaReturnsReport(t *testing.T) {
	router, _, blobs := newTestRouter(t)

	// Файл без EXIF: должен загрузиться и уйти на ручное размещение.
	body, contentType := multipartBody(t, "files", map[string][]byte{
		"screenshot.png": []byte("нет метаданных"),
	}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/trips/BVI/media", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("статус %d, тело: %s", w.Code, w.Body.String())
	}
	var report model.IngestReport
	if err := json.Unmarshal(w.Body.Bytes(), &report); err != nil {
		t.Fatalf("разбор отчёта: %v", err)
	}
	if len(report.NeedsManualPlacement) != 1 || report.NeedsManualPlacement[0] != "screenshot.png" {
		t.Errorf("неожиданный отчёт: %+v", report)
	}
	if blobs.uploads != 1 {
		t.Errorf("ожидалась одна загрузка, было %d", blobs.uploads)
	}
}

func TestManualAssignUnknownStopReturns404(t *testing.T) {
	router, _, blobs := newTestRouter(t)

	body, contentType := multipartBody(t, "file", map[string][]byte{
		"sunset.jpg": []byte("jpg"),
	}, map[string]string{"stop": "NonexistentStop"})
	req := httptest.NewRequest(http.MethodPost, "/api/trips/BVI/media/manual", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("ожидался 404, получен %d: %s", w.Code, w.Body.String())
	}
	if blobs.uploads != 0 {
		t.Error("при неверной остановке загрузок быть не должно")
	}
}

func TestManualAssignSuccess(t *testing.T) {
	router, stops, _ := newTestRouter(t)

	body, contentType := multipartBody(t, "file", map[string][]byte{
		"sunset.jpg": []byte("jpg"),
	}, map[string]string{"stop": "Cane Garden Bay"})
	req := httptest.NewRequest(http.MethodPost, "/api/trips/BVI/media/manual", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("статус %d, тело: %s", w.Code, w.Body.String())
	}
	if len(stops.stops[0].Media) != 1 {
		t.Errorf("файл должен попасть в media остановки: %v", stops.stops[0].Media)
	}
}

func TestCreateStopsBlankTextReturns400(t *testing.T) {
	router, _, _ := newTestRouter(t)

	// Текст из одних пустых строк - неверный ввод оператора, а не сбой сервера.
	body := strings.NewReader(`{"text":"\n   \n"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/trips/BVI/stops", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("ожидался 400, получен %d: %s", w.Code, w.Body.String())
	}
}

func TestNarrativeRoundTrip(t *testing.T) {
	router, _, _ := newTestRouter(t)

	putBody := strings.NewReader(`{"content":"[Kurt] Отличный пляж"}`)
	req := httptest.NewRequest(http.MethodPut, "/api/trips/BVI/stops/Spot-01/narrative", putBody)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("PUT: статус %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/trips/BVI/stops/Spot-01/narrative", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("GET: статус %d", w.Code)
	}
	var resp struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("разбор ответа: %v", err)
	}
	if resp.Content != "[Kurt] Отличный пляж" {
		t.Errorf("текст не совпал: %q", resp.Content)
	}
}
