package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/UkralStul/wikikisan-service/internal/advisor"
	"github.com/UkralStul/wikikisan-service/internal/community"
	"github.com/UkralStul/wikikisan-service/internal/market"
	"github.com/UkralStul/wikikisan-service/internal/weather"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// === Weather ===

func (h *Handler) currentWeather(w http.ResponseWriter, r *http.Request) {
	city := chi.URLParam(r, "city")

	report, err := h.weather.Current(r.Context(), city)
	switch {
	case errors.Is(err, weather.ErrCityNotFound):
		writeError(w, http.StatusBadRequest, "City not found")
	case err != nil:
		h.writeServiceError(w, r, err, "")
	default:
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": report})
	}
}

// === Market ===

// marketPrices всегда отвечает 200: сбой внешнего API выражается через success:false.
func (h *Handler) marketPrices(w http.ResponseWriter, r *http.Request) {
	state := chi.URLParam(r, "state")
	commodity := chi.URLParam(r, "commodity")

	report, err := h.market.Prices(r.Context(), state, commodity)
	switch {
	case errors.Is(err, market.ErrNoData):
		writeJSON(w, http.StatusOK, map[string]any{
			"success": false,
			"message": "No data available for this selection.",
		})
	case err != nil:
		h.log.Warn("market lookup failed", zap.String("state", state), zap.String("commodity", commodity), zap.Error(err))
		writeJSON(w, http.StatusOK, map[string]any{
			"success": false,
			"error":   "Unable to fetch market data.",
		})
	default:
		writeJSON(w, http.StatusOK, map[string]any{
			"success":   true,
			"commodity": report.Commodity,
			"analysis":  report.Analysis,
			"raw_data":  report.RawData,
		})
	}
}

// === Advisor ===

type askRequest struct {
	Question  string `json:"question"`
	City      string `json:"city"`
	State     string `json:"state"`
	Commodity string `json:"commodity"`
}

func (h *Handler) ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed JSON body")
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		h.writeServiceError(w, r, &community.ValidationError{
			Fields: map[string]string{"question": "question is required"},
		}, "")
		return
	}

	advice := h.advisor.Ask(r.Context(), req.Question, h.gatherContext(r.Context(), req))
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "advice": advice})
}

// gatherContext параллельно запрашивает погоду и цены; ошибки не мешают ответу.
func (h *Handler) gatherContext(ctx context.Context, req askRequest) *advisor.Context {
	wantWeather := req.City != "" && h.weather != nil
	wantPrice := req.State != "" && req.Commodity != "" && h.market != nil
	if !wantWeather && !wantPrice {
		return nil
	}

	var c advisor.Context
	eg, egCtx := errgroup.WithContext(ctx)
	if wantWeather {
		eg.Go(func() error {
			report, err := h.weather.Current(egCtx, req.City)
			if err != nil {
				h.log.Debug("advisor context: weather unavailable", zap.Error(err))
				return nil
			}
			c.Weather = report.Summary()
			return nil
		})
	}
	if wantPrice {
		eg.Go(func() error {
			report, err := h.market.Prices(egCtx, req.State, req.Commodity)
			if err != nil {
				h.log.Debug("advisor context: price unavailable", zap.Error(err))
				return nil
			}
			c.Price = report.Summary()
			return nil
		})
	}
	_ = eg.Wait()

	if c.Weather == "" && c.Price == "" {
		return nil
	}
	return &c
}

// === Translate ===

type translateRequest struct {
	Text   *string  `json:"text"`
	Texts  []string `json:"texts"`
	Target string   `json:"target"`
}

func (h *Handler) translate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed JSON body")
		return
	}
	if req.Target == "" {
		req.Target = "en"
	}

	switch {
	case req.Text != nil:
		writeJSON(w, http.StatusOK, map[string]any{
			"success":    true,
			"translated": h.translator.Translate(r.Context(), *req.Text, req.Target),
		})
	case req.Texts != nil:
		writeJSON(w, http.StatusOK, map[string]any{
			"success":      true,
			"translations": h.translator.TranslateBatch(r.Context(), req.Texts, req.Target),
		})
	default:
		h.writeServiceError(w, r, &community.ValidationError{
			Fields: map[string]string{"text": "text or texts is required"},
		}, "")
	}
}
