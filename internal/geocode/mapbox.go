package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kurtaconger/egm/internal/model"
)

// Значения-сигналы, которые возвращаются вместо ошибок: оператор видит их
// в списке остановок и исправляет исходный текст.
const (
	NotFoundName = "Location not found"
	ErrorName    = "Error occurred"
)

// Client - клиент прямого геокодирования Mapbox.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient создает клиент геокодирования. baseURL по умолчанию - боевой API Mapbox.
func NewClient(token string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    "https://api.mapbox.com",
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// NewClientWithBaseURL создает клиент с переопределённым адресом сервиса (для тестов).
func NewClientWithBaseURL(baseURL, token string, timeout time.Duration) *Client {
	c := NewClient(token, timeout)
	c.baseURL = baseURL
	return c
}

// mapboxResponse - нужная часть ответа Mapbox Geocoding API v5.
type mapboxResponse struct {
	Features []struct {
		PlaceName string    `json:"place_name"`
		Center    []float64 `json:"center"` // [lng, lat]
	} `json:"features"`
}

// GeocodeLine геокодирует одну строку описания места. Отсутствие совпадений и
// ошибки транспорта не считаются ошибками: возвращается результат-сигнал
// с пустыми координатами.
func (c *Client) GeocodeLine(ctx context.Context, line string) model.GeocodeResult {
	reqURL := fmt.Sprintf("%s/geocoding/v5/mapbox.places/%s.json?access_token=%s&limit=1",
		c.baseURL, url.PathEscape(line), url.QueryEscape(c.token))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return sentinel(ErrorName)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return sentinel(ErrorName)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return sentinel(ErrorName)
	}

	var body mapboxResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return sentinel(ErrorName)
	}
	if len(body.Features) == 0 {
		return sentinel(NotFoundName)
	}

	feature := body.Features[0]
	if len(feature.Center) < 2 {
		return sentinel(ErrorName)
	}
	lng := feature.Center[0]
	lat := feature.Center[1]
	return model.GeocodeResult{
		Name:      feature.PlaceName,
		ShortName: strings.TrimSpace(strings.SplitN(feature.PlaceName, ",", 2)[0]),
		Lat:       &lat,
		Lng:       &lng,
	}
}

// GeocodeLines разбивает многострочный текст на строки и геокодирует каждую
// последовательно: пользователь видит поэтапное разрешение строк, а сервисы
// геокодирования ограничивают частоту запросов. Пустые строки пропускаются.
func (c *Client) GeocodeLines(ctx context.Context, text string) []model.GeocodeResult {
	results := []model.GeocodeResult{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		results = append(results, c.GeocodeLine(ctx, line))
	}
	return results
}

func sentinel(name string) model.GeocodeResult {
	return model.GeocodeResult{Name: name, ShortName: name}
}
