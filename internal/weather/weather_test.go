package weather

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeConditions(t *testing.T) {
	tests := []struct {
		name                 string
		temp, humidity, rain float64
		want                 string
	}{
		{"rain wins", 40, 90, 0.2, "Rain detected. Avoid spraying pesticides or fertilizers today."},
		{"humid heat", 28, 85, 0, "High humidity & heat: Increased risk of fungal infections in crops like Chillies."},
		{"extreme heat", 38, 40, 0, "Extreme heat: Ensure evening irrigation to prevent crop wilting."},
		{"humid but cool", 22, 90, 0, "Conditions are normal for general farming."},
		{"normal", 30, 50, 0, "Conditions are normal for general farming."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AnalyzeConditions(tt.temp, tt.humidity, tt.rain))
		})
	}
}

func TestClient_Current(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/weather", r.URL.Path)
		assert.Equal(t, "Gadwal", r.URL.Query().Get("q"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		assert.Equal(t, "k", r.URL.Query().Get("appid"))
		_, _ = io.WriteString(w, `{"cod":200,"name":"Gadwal","main":{"temp":36.5,"humidity":40},"weather":[{"description":"clear sky"}]}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", time.Second)
	fixed := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return fixed }

	r, err := c.Current(context.Background(), "Gadwal")
	require.NoError(t, err)
	assert.Equal(t, "Gadwal", r.City)
	assert.Equal(t, "36.5°C", r.Temperature)
	assert.Equal(t, "40%", r.Humidity)
	assert.Equal(t, "clear sky", r.Condition)
	assert.Equal(t, "Extreme heat: Ensure evening irrigation to prevent crop wilting.", r.FarmingAdvice)
	assert.Equal(t, fixed, r.Timestamp)
	assert.Equal(t, "36.5°C, clear sky, humidity 40% in Gadwal", r.Summary())
}

func TestClient_CurrentCityNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"cod":"404","message":"city not found"}`)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "k", time.Second).Current(context.Background(), "Atlantis")
	assert.ErrorIs(t, err, ErrCityNotFound)
}
