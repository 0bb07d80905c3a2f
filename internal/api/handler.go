package api

import (
	"context"
	"net/http"
	"time"

	"github.com/UkralStul/wikikisan-service/internal/advisor"
	"github.com/UkralStul/wikikisan-service/internal/community"
	"github.com/UkralStul/wikikisan-service/internal/dataloader"
	"github.com/UkralStul/wikikisan-service/internal/market"
	"github.com/UkralStul/wikikisan-service/internal/storage"
	"github.com/UkralStul/wikikisan-service/internal/weather"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// WeatherSource - источник текущей погоды.
type WeatherSource interface {
	Current(ctx context.Context, city string) (*weather.Report, error)
}

// MarketSource - источник цен мандей.
type MarketSource interface {
	Prices(ctx context.Context, state, commodity string) (*market.Report, error)
}

// Adviser - генератор советов; никогда не возвращает ошибку.
type Adviser interface {
	Ask(ctx context.Context, question string, c *advisor.Context) string
}

// Translator - перевод текста с откатом на исходный текст.
type Translator interface {
	Translate(ctx context.Context, text, target string) string
	TranslateBatch(ctx context.Context, texts []string, target string) []string
}

// Deps - зависимости HTTP-слоя; все передаются явно.
type Deps struct {
	Community  *community.Service
	Store      storage.Storage
	Advisor    Adviser
	Weather    WeatherSource
	Market     MarketSource
	Translator Translator
	Logger     *zap.Logger

	Debug       bool
	Environment string
	Version     string
	Now         func() time.Time
}

// Handler обслуживает HTTP API.
type Handler struct {
	community  *community.Service
	store      storage.Storage
	advisor    Adviser
	weather    WeatherSource
	market     MarketSource
	translator Translator
	log        *zap.Logger

	debug       bool
	environment string
	version     string
	now         func() time.Time
}

// NewHandler собирает обработчик из зависимостей.
func NewHandler(d Deps) *Handler {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return &Handler{
		community:   d.Community,
		store:       d.Store,
		advisor:     d.Advisor,
		weather:     d.Weather,
		market:      d.Market,
		translator:  d.Translator,
		log:         d.Logger,
		debug:       d.Debug,
		environment: d.Environment,
		version:     d.Version,
		now:         d.Now,
	}
}

// Routes возвращает роутер со всеми маршрутами и middleware.
func (h *Handler) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(RequestLogger(h.log))
	router.Use(Recoverer(h.log, h.debug))

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not Found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	router.Get("/health", h.health)

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/community", func(r chi.Router) {
			r.Use(func(next http.Handler) http.Handler {
				return dataloader.Middleware(h.store, next)
			})
			r.Get("/feed", h.getFeed)
			r.Post("/posts", h.createPost)
			r.Get("/posts/{postID}", h.getPost)
			r.Post("/posts/{postID}/comments", h.addComment)
			r.Post("/react/{postID}", h.react)
			r.Get("/trending", h.trending)
			r.Get("/stream", h.stream)
		})
		r.Get("/weather/current/{city}", h.currentWeather)
		r.Get("/market/prices/{state}/{commodity}", h.marketPrices)
		r.Post("/advisor/ask", h.ask)
		r.Post("/translate", h.translate)
	})

	return router
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "healthy",
		"timestamp":   float64(now.UnixNano()) / float64(time.Second),
		"environment": h.environment,
		"version":     h.version,
	})
}
