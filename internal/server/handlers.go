package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/guregu/null/v6"

	"market-data-adapter/internal/cache"
	"market-data-adapter/internal/logger"
	"market-data-adapter/internal/trace"
	"market-data-adapter/internal/types"
)

// lineItemRequest is the POST /line-items/search body.
type lineItemRequest struct {
	Ticker    string   `json:"ticker"`
	LineItems []string `json:"line_items"`
	EndDate   string   `json:"end_date"`
	Period    string   `json:"period"`
	Limit     int      `json:"limit"`
}

// badRequest marks caller input errors.
type badRequest struct{ msg string }

func (e badRequest) Error() string { return e.msg }

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, map[string]any{
		"status":  "healthy",
		"service": trace.ServiceName,
	})
}

func (s *Server) handlePrices(w http.ResponseWriter, r *http.Request) {
	ticker := tickerParam(r)
	q := r.URL.Query()
	err := firstErr(requireDate(q.Get("start_date"), "start_date"), requireDate(q.Get("end_date"), "end_date"))
	if err == nil {
		err = dateOrder(q.Get("start_date"), q.Get("end_date"))
	}
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	prices, err := s.adapter.GetPrices(r.Context(), ticker, q.Get("start_date"), q.Get("end_date"))
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, types.PriceResponse{Ticker: ticker, Prices: prices})
}

func (s *Server) handleFinancialMetrics(w http.ResponseWriter, r *http.Request) {
	ticker := tickerParam(r)
	q := r.URL.Query()
	limit, err := limitParam(q.Get("limit"))
	if err == nil {
		err = firstErr(requireDate(q.Get("end_date"), "end_date"), periodParam(q.Get("period")))
	}
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	metrics, err := s.adapter.GetFinancialMetrics(r.Context(), ticker, q.Get("end_date"), q.Get("period"), limit)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, types.FinancialMetricsResponse{FinancialMetrics: metrics})
}

func (s *Server) handleCompanyNews(w http.ResponseWriter, r *http.Request) {
	ticker := tickerParam(r)
	q := r.URL.Query()
	limit, err := limitParam(q.Get("limit"))
	if err == nil {
		err = firstErr(requireDate(q.Get("end_date"), "end_date"), optionalDate(q.Get("start_date"), "start_date"))
	}
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	news, err := s.adapter.GetCompanyNews(r.Context(), ticker, q.Get("end_date"), q.Get("start_date"), limit)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, types.CompanyNewsResponse{News: news})
}

func (s *Server) handleLineItems(w http.ResponseWriter, r *http.Request) {
	var req lineItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeFailure(w, r, badRequest{msg: "invalid request body: " + err.Error()})
		return
	}
	req.Ticker = strings.ToUpper(strings.TrimSpace(req.Ticker))

	var err error
	switch {
	case req.Ticker == "":
		err = badRequest{msg: "ticker is required"}
	case len(req.LineItems) == 0:
		err = badRequest{msg: "line_items is required"}
	default:
		err = firstErr(requireDate(req.EndDate, "end_date"), periodParam(req.Period))
	}
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	items, err := s.adapter.SearchLineItems(r.Context(), req.Ticker, req.LineItems, req.EndDate, req.Period, req.Limit)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, types.LineItemResponse{SearchResults: items})
}

func (s *Server) handleInsiderTrades(w http.ResponseWriter, r *http.Request) {
	ticker := tickerParam(r)
	q := r.URL.Query()
	limit, err := limitParam(q.Get("limit"))
	if err == nil {
		err = firstErr(requireDate(q.Get("end_date"), "end_date"), optionalDate(q.Get("start_date"), "start_date"))
	}
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	trades, err := s.adapter.GetInsiderTrades(r.Context(), ticker, q.Get("end_date"), q.Get("start_date"), limit)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, types.InsiderTradeResponse{InsiderTrades: trades})
}

func (s *Server) handleMarketCap(w http.ResponseWriter, r *http.Request) {
	ticker := tickerParam(r)
	endDate := r.URL.Query().Get("end_date")
	if err := requireDate(endDate, "end_date"); err != nil {
		s.writeFailure(w, r, err)
		return
	}

	mc, err := s.adapter.GetMarketCap(r.Context(), ticker, endDate)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	resp := types.MarketCapResponse{Ticker: ticker}
	if mc != nil {
		resp.MarketCap = null.FloatFrom(*mc)
	}
	s.writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) handleCachedPrices(w http.ResponseWriter, r *http.Request) {
	if s.cache == nil {
		s.writeError(w, r, http.StatusNotFound, "cache disabled")
		return
	}
	ticker := tickerParam(r)
	prices, err := s.cache.GetPrices(r.Context(), ticker)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, types.PriceResponse{Ticker: ticker, Prices: prices})
}

func (s *Server) handleCachedMetrics(w http.ResponseWriter, r *http.Request) {
	if s.cache == nil {
		s.writeError(w, r, http.StatusNotFound, "cache disabled")
		return
	}
	metrics, err := s.cache.GetFinancialMetrics(r.Context(), tickerParam(r))
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, types.FinancialMetricsResponse{FinancialMetrics: metrics})
}

func tickerParam(r *http.Request) string {
	return strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "ticker")))
}

func requireDate(v, name string) error {
	if v == "" {
		return badRequest{msg: name + " is required"}
	}
	return optionalDate(v, name)
}

func optionalDate(v, name string) error {
	if v == "" {
		return nil
	}
	if _, err := time.Parse(types.DateFormat, v); err != nil {
		return badRequest{msg: fmt.Sprintf("%s must be YYYY-MM-DD, got %q", name, v)}
	}
	return nil
}

// dateOrder rejects a range whose start falls after its end. Both dates must
// already be valid YYYY-MM-DD strings, which order lexically.
func dateOrder(start, end string) error {
	if start > end {
		return badRequest{msg: fmt.Sprintf("start_date %s is after end_date %s", start, end)}
	}
	return nil
}

func periodParam(v string) error {
	if _, err := types.ParsePeriod(v); err != nil {
		return badRequest{msg: err.Error()}
	}
	return nil
}

func limitParam(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, badRequest{msg: fmt.Sprintf("limit must be a non-negative integer, got %q", v)}
	}
	return n, nil
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// writeFailure maps an error onto a status code.
func (s *Server) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	var br badRequest
	switch {
	case errors.As(err, &br), errors.Is(err, types.ErrInvalidDate), errors.Is(err, types.ErrInvalidPeriod):
		s.writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, cache.ErrNotFound):
		s.writeError(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, types.ErrFetch):
		s.writeError(w, r, http.StatusBadGateway, err.Error())
	default:
		logger.ErrorWithErr(r.Context(), "Request failed", err, "path", r.URL.Path)
		s.writeError(w, r, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.ErrorWithErr(r.Context(), "Failed to encode JSON response", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	s.writeJSON(w, r, status, map[string]string{
		"error": message,
	})
}
