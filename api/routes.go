package api

import (
	"fmt"
	"net/http"

	"github.com/felixge/httpsnoop"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/ternarybob/arbor"
)

// NewRouter wires the endpoints and middleware
func NewRouter(h *Handler) http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/health", h.HealthHandler).Methods("GET")
	router.HandleFunc("/screen", h.ScreenHandler).Methods("GET")
	router.HandleFunc("/stock/{ticker}", h.StockHandler).Methods("GET")
	router.Use(requestLogger(h.logger))

	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{h.logger}),
		handlers.PrintRecoveryStack(true),
	)
	return recovery(handlers.CompressHandler(router))
}

func requestLogger(logger arbor.ILogger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m := httpsnoop.CaptureMetrics(next, w, r)
			logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", m.Code).
				Int64("bytes", m.Written).
				Dur("duration", m.Duration).
				Msg("Request handled")
		})
	}
}

// recoveryLogger routes recovered panics to arbor
type recoveryLogger struct {
	logger arbor.ILogger
}

func (l recoveryLogger) Println(v ...interface{}) {
	l.logger.Error().Msg(fmt.Sprint(v...))
}
