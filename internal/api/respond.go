package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/UkralStul/wikikisan-service/internal/community"
	"github.com/UkralStul/wikikisan-service/internal/storage"
	"go.uber.org/zap"
)

const internalErrorMessage = "An internal server error occurred."

// errorResponse - единый конверт ошибки.
type errorResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	Detail  *string           `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Message: message})
}

// writeServiceError переводит ошибки сервиса в HTTP-ответ.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error, notFoundMsg string) {
	var verr *community.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Message: "Validation failed",
			Fields:  verr.Fields,
		})
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, notFoundMsg)
	case errors.Is(err, storage.ErrDuplicateID):
		writeError(w, http.StatusConflict, "Resource with this id already exists")
	default:
		h.log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		resp := errorResponse{Message: internalErrorMessage}
		if h.debug {
			detail := err.Error()
			resp.Detail = &detail
		}
		writeJSON(w, http.StatusInternalServerError, resp)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(v)
}
