package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"ordersetu-be/internal/apperror"
	"ordersetu-be/internal/logger"

	"go.uber.org/zap"
)

const maxBodyBytes = 10 << 20

type messageBody struct {
	Message string `json:"message"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteMessage(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, messageBody{Message: message})
}

// WriteError answers with the status tagged on err. Internal failures are
// logged and reported with a generic message.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperror.KindOf(err)
	if kind == apperror.KindInternal {
		logger.FromCtx(r.Context()).Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	WriteMessage(w, kind.HTTPStatus(), apperror.MessageOf(err))
}

// DecodeJSON decodes the request body into dst. Malformed bodies, including
// fields of the wrong JSON type, become validation errors.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperror.Validation("Request body is required")
		}
		return apperror.Wrap(apperror.KindValidation, "Invalid data", err)
	}
	return nil
}
