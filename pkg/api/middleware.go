package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/luxfi/safehash/pkg/logger"
	"github.com/luxfi/safehash/pkg/safe"
	"github.com/luxfi/safehash/pkg/safeapi"
)

const codeInternal = "INTERNAL_ERROR"

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logger.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).String(),
			"request_id", chimw.GetReqID(r.Context()),
		)
	})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Failed to write response", "error", err.Error())
	}
}

func writeError(w http.ResponseWriter, code int, errCode, msg string) {
	writeJSON(w, code, errorResponse{Error: msg, Code: errCode})
}

// writeEngineError maps typed errors to HTTP statuses. A resolution error
// caused by a missing upstream record is a 404; other upstream failures
// are 502.
func writeEngineError(w http.ResponseWriter, err error) {
	var (
		vErr   *safe.ValidationError
		eErr   *safe.EncodingError
		rErr   *safe.TransactionResolutionError
		netErr *safeapi.NetworkError
	)
	switch {
	case errors.As(err, &vErr):
		writeError(w, http.StatusBadRequest, vErr.Code(), vErr.Error())
	case errors.As(err, &eErr):
		writeError(w, http.StatusBadRequest, eErr.Code(), eErr.Error())
	case errors.As(err, &rErr):
		status := http.StatusBadGateway
		if errors.As(err, &netErr) && netErr.Status == http.StatusNotFound {
			status = http.StatusNotFound
		}
		writeError(w, status, rErr.Code(), rErr.Error())
	case errors.As(err, &netErr):
		writeError(w, http.StatusBadGateway, netErr.Code(), netErr.Error())
	default:
		logger.Error("Unhandled verification error", err)
		writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
	}
}
