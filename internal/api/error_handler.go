package api

import (
	"net/http"

	"github.com/vytor/flashdeck/internal/errors"
	"github.com/vytor/flashdeck/internal/logger"
)

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func errorBody(appErr *errors.AppError) map[string]errorPayload {
	return map[string]errorPayload{
		"error": {Code: appErr.Code, Message: appErr.Message},
	}
}

// handleError centralizes error handling for HTTP responses
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())

	appErr, ok := errors.As(err)
	if !ok {
		appErr = errors.NewInternalError(err)
	}

	switch {
	case appErr.Status >= 500:
		log.Error("server error: %v", appErr)
	case appErr.Status >= 400:
		log.Warn("client error: %v", appErr)
	default:
		log.Debug("error: %v", appErr)
	}

	writeJSON(w, appErr.Status, errorBody(appErr))
}
