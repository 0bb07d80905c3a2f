package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultBaseURL - API текущей погоды OpenWeather.
const DefaultBaseURL = "http://api.openweathermap.org/data/2.5"

// ErrCityNotFound возвращается, когда OpenWeather не знает город.
var ErrCityNotFound = errors.New("city not found")

// Report - результат анализа погоды для фермера.
type Report struct {
	City          string    `json:"city"`
	Temperature   string    `json:"temperature"`
	Humidity      string    `json:"humidity"`
	Condition     string    `json:"condition"`
	FarmingAdvice string    `json:"farming_advice"`
	Timestamp     time.Time `json:"timestamp"`
}

// Summary - короткое описание погоды для промпта советника.
func (r *Report) Summary() string {
	return fmt.Sprintf("%s, %s, humidity %s in %s", r.Temperature, r.Condition, r.Humidity, r.City)
}

// Client ходит в OpenWeather.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	now     func() time.Time
}

// NewClient создает клиента OpenWeather.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
		now:     time.Now,
	}
}

type currentResponse struct {
	Cod  any    `json:"cod"` // число при успехе, строка при ошибке
	Name string `json:"name"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Rain struct {
		OneHour float64 `json:"1h"`
	} `json:"rain"`
}

// Current запрашивает текущую погоду и формирует совет.
func (c *Client) Current(ctx context.Context, city string) (*Report, error) {
	q := url.Values{}
	q.Set("q", city)
	q.Set("appid", c.apiKey)
	q.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/weather?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather request failed: %w", err)
	}
	defer resp.Body.Close()

	var body currentResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode weather response: %w", err)
	}
	if fmt.Sprint(body.Cod) != "200" {
		return nil, fmt.Errorf("%s: %w", city, ErrCityNotFound)
	}

	condition := ""
	if len(body.Weather) > 0 {
		condition = body.Weather[0].Description
	}

	return &Report{
		City:          body.Name,
		Temperature:   formatNumber(body.Main.Temp) + "°C",
		Humidity:      formatNumber(body.Main.Humidity) + "%",
		Condition:     condition,
		FarmingAdvice: AnalyzeConditions(body.Main.Temp, body.Main.Humidity, body.Rain.OneHour),
		Timestamp:     c.now(),
	}, nil
}

// AnalyzeConditions переводит погоду в практический совет. Правила проверяются по порядку.
func AnalyzeConditions(temp, humidity, rain float64) string {
	switch {
	case rain > 0:
		return "Rain detected. Avoid spraying pesticides or fertilizers today."
	case humidity > 80 && temp > 25:
		return "High humidity & heat: Increased risk of fungal infections in crops like Chillies."
	case temp > 35:
		return "Extreme heat: Ensure evening irrigation to prevent crop wilting."
	default:
		return "Conditions are normal for general farming."
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
