// Package api exposes the screener over HTTP
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/ternarybob/arbor"

	"stockscreener/config"
	"stockscreener/finance"
	"stockscreener/pipeline"
	"stockscreener/stock"
	"stockscreener/tickers"
)

// Screener runs the pipeline for one ticker or a batch
type Screener interface {
	Run(ctx context.Context, tickers []string) *pipeline.Result
	Process(ctx context.Context, ticker string) (stock.Record, error)
}

// Handler serves the screener endpoints
type Handler struct {
	screener       Screener
	defaultTickers []string
	logger         arbor.ILogger
}

// NewHandler creates a handler that falls back to defaultTickers when a
// batch request names none
func NewHandler(screener Screener, defaultTickers []string, logger arbor.ILogger) *Handler {
	return &Handler{
		screener:       screener,
		defaultTickers: defaultTickers,
		logger:         logger,
	}
}

type failureResponse struct {
	Ticker string `json:"ticker"`
	Error  string `json:"error"`
}

// ScreenResponse is the body of a batch run
type ScreenResponse struct {
	All       []stock.Record    `json:"all"`
	WatchList []stock.Record    `json:"watch_list"`
	Failures  []failureResponse `json:"failures"`
	Summary   string            `json:"summary"`
}

func newScreenResponse(result *pipeline.Result) ScreenResponse {
	response := ScreenResponse{
		All:       make([]stock.Record, 0, len(result.All)),
		WatchList: make([]stock.Record, 0, len(result.WatchList)),
		Failures:  make([]failureResponse, 0, len(result.Failures)),
		Summary:   result.Summary(),
	}
	response.All = append(response.All, result.All...)
	response.WatchList = append(response.WatchList, result.WatchList...)
	for _, failure := range result.Failures {
		response.Failures = append(response.Failures, failureResponse{
			Ticker: failure.Ticker,
			Error:  failure.Err.Error(),
		})
	}
	return response
}

// HealthHandler reports liveness
func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ScreenHandler runs a batch over ?tickers=A,B or the configured list
func (h *Handler) ScreenHandler(w http.ResponseWriter, r *http.Request) {
	symbols := h.defaultTickers
	if query := r.URL.Query().Get("tickers"); strings.TrimSpace(query) != "" {
		symbols = config.SplitList(query)
	}

	resolved := tickers.Resolve(symbols)
	if len(resolved) == 0 {
		http.Error(w, "No tickers to screen", http.StatusBadRequest)
		return
	}

	result := h.screener.Run(r.Context(), resolved)
	h.writeJSON(w, http.StatusOK, newScreenResponse(result))
}

// StockHandler processes a single ticker
func (h *Handler) StockHandler(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(strings.TrimSpace(mux.Vars(r)["ticker"]))

	record, err := h.screener.Process(r.Context(), symbol)
	if err != nil {
		status := statusFor(err)
		h.logger.Warn().Str("ticker", symbol).Int("status", status).Err(err).Msg("Ticker request failed")
		h.writeJSON(w, status, failureResponse{Ticker: symbol, Error: err.Error()})
		return
	}

	h.writeJSON(w, http.StatusOK, record)
}

func statusFor(err error) int {
	var layoutErr *finance.LayoutError
	switch {
	case errors.Is(err, pipeline.ErrEmptyTicker):
		return http.StatusBadRequest
	case errors.As(err, &layoutErr):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	jsonData, err := json.MarshalIndent(body, "", "    ")
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to marshal response")
		http.Error(w, "Error marshaling to JSON", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(jsonData)
}
