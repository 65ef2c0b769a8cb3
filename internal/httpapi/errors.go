package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/lessonshop/internal/domain"
)

type errorBody struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// statusFor переводит доменную ошибку в HTTP-статус.
func statusFor(err error) int {
	switch {
	case domain.IsValidationError(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrLessonNotFound), errors.Is(err, domain.ErrCartLineNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNoSpacesLeft):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidSortKey), errors.Is(err, domain.ErrInvalidSortDirection):
		return http.StatusBadRequest
	case domain.IsBackendError(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func renderHTTPError(logger *log.Entry, w http.ResponseWriter, err error, code int) {
	entry := logger.WithField("error", fmt.Sprintf("%+v", err)).WithField("status", code)
	if code >= http.StatusInternalServerError {
		entry.Error("request error")
	} else {
		entry.Info("request rejected")
	}

	writeJSON(w, code, errorBody{Error: err.Error(), Status: code})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
