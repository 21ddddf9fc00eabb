package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/hrmslite/hrmslite/internal/middleware"
	"github.com/hrmslite/hrmslite/internal/service"
	"github.com/hrmslite/hrmslite/internal/validation"
)

// APIFunc is a handler that reports failures by returning them.
type APIFunc func(w http.ResponseWriter, r *http.Request) error

// errBodyTooLarge is returned by decodePayload when the body exceeds the
// MaxBodySize limit mid-stream.
var errBodyTooLarge = errors.New("request body too large")

// Wrap adapts fn to http.HandlerFunc and turns every returned error into
// the failure envelope. Unrecognized errors are logged and hidden behind
// a generic 500.
func Wrap(logger *slog.Logger, fn APIFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := fn(w, r)
		if err == nil {
			return
		}

		var svcErr *service.Error
		switch {
		case errors.As(err, &svcErr):
			writeError(w, statusFor(svcErr.Kind), svcErr.Message, svcErr.Fields)
		case errors.Is(err, errBodyTooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, middleware.MsgBodyTooLarge, nil)
		default:
			logger.Error("request failed",
				slog.String("error", err.Error()),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("request_id", middleware.GetRequestID(r.Context())),
			)
			writeError(w, http.StatusInternalServerError, middleware.MsgInternalError, nil)
		}
	}
}

// statusFor maps a service failure kind to its HTTP status.
func statusFor(kind service.Kind) int {
	switch kind {
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindValidation, service.KindConflict, service.KindMalformedID, service.KindBadRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// decodePayload reads a JSON object body. An empty body reads as {} so the
// validators report every missing field. Anything after the object is
// rejected.
func decodePayload(r *http.Request) (validation.Payload, error) {
	dec := json.NewDecoder(r.Body)

	var p validation.Payload
	if err := dec.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return validation.Payload{}, nil
		}
		return nil, bodyError(err)
	}
	if p == nil {
		return nil, service.BadRequestError(MsgInvalidBody)
	}

	var trailing json.RawMessage
	if err := dec.Decode(&trailing); !errors.Is(err, io.EOF) {
		return nil, bodyError(err)
	}
	return p, nil
}

func bodyError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return errBodyTooLarge
	}
	return service.BadRequestError(MsgInvalidBody)
}
