package server

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bobmcallan/stockverse/internal/common"
	"github.com/bobmcallan/stockverse/internal/models"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "ok",
		"uptime_seconds": int(time.Since(s.app.StartupTime).Seconds()),
		"ws_clients":     s.app.Hub.ClientCount(),
	})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}

// --- Alerts ---

type createAlertRequest struct {
	Symbol    string   `json:"symbol"`
	Kind      string   `json:"kind"`
	Threshold *float64 `json:"threshold"`
}

func (s *Server) handleAlertList(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"alerts": s.app.Alerts.Rules(),
		"counts": s.app.Alerts.Counts(),
	})
}

func (s *Server) handleAlertCreate(w http.ResponseWriter, r *http.Request) {
	var req createAlertRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	kind, ok := models.ParseAlertKind(req.Kind)
	if !ok {
		WriteServiceError(w, common.NewValidationError("kind", fmt.Sprintf("unknown alert kind %q", req.Kind)))
		return
	}
	if req.Threshold == nil {
		WriteServiceError(w, common.NewValidationError("threshold", "is required"))
		return
	}

	rule, err := s.app.Alerts.CreateRule(r.Context(), req.Symbol, kind, *req.Threshold)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, rule)
}

func (s *Server) handleAlertRemove(w http.ResponseWriter, r *http.Request) {
	if err := s.app.Alerts.RemoveRule(r.Context(), chi.URLParam(r, "id")); err != nil {
		WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAlertEvaluate(w http.ResponseWriter, r *http.Request) {
	report := s.app.Alerts.EvaluateAll(r.Context())
	status := http.StatusOK
	if report.Skipped {
		status = http.StatusAccepted
	}
	WriteJSON(w, status, report)
}

func (s *Server) handleAlertCounts(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, s.app.Alerts.Counts())
}

func (s *Server) handleNotificationList(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"notifications": s.app.Alerts.Notifications(),
	})
}

func (s *Server) handleNotificationDismiss(w http.ResponseWriter, r *http.Request) {
	if !s.app.Alerts.DismissNotification(chi.URLParam(r, "id")) {
		WriteError(w, http.StatusNotFound, "Notification not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Portfolio ---

type addHoldingRequest struct {
	Symbol           string  `json:"symbol"`
	Quantity         float64 `json:"quantity"`
	CostBasisPerUnit float64 `json:"cost_basis_per_unit"`
}

func (s *Server) handleHoldingList(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"holdings": s.app.Portfolio.Holdings(),
		"summary":  s.app.Portfolio.Summary(),
	})
}

func (s *Server) handleHoldingAdd(w http.ResponseWriter, r *http.Request) {
	var req addHoldingRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	h, err := s.app.Portfolio.AddHolding(r.Context(), req.Symbol, req.Quantity, req.CostBasisPerUnit)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, models.NewHoldingView(*h, s.app.Portfolio.Summary().TotalValue))
}

func (s *Server) handleHoldingRemove(w http.ResponseWriter, r *http.Request) {
	if err := s.app.Portfolio.RemoveHolding(r.Context(), chi.URLParam(r, "id")); err != nil {
		WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePortfolioRefresh(w http.ResponseWriter, r *http.Request) {
	report := s.app.Portfolio.RefreshPrices(r.Context())
	status := http.StatusOK
	if report.Skipped {
		status = http.StatusAccepted
	}
	WriteJSON(w, status, report)
}

func (s *Server) handlePortfolioSummary(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, s.app.Portfolio.Summary())
}

func (s *Server) handlePortfolioExport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="portfolio.csv"`)
	if err := s.app.Portfolio.WriteSnapshot(w); err != nil {
		s.logger.Warn().Err(err).Msg("Portfolio export failed")
	}
}

// --- Quotes & analytics ---

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	q, err := s.app.Quotes.GetQuote(r.Context(), chi.URLParam(r, "symbol"))
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, q)
}

func (s *Server) handleIndicators(w http.ResponseWriter, r *http.Request) {
	ind, err := s.app.Analytics.Indicators(r.Context(), chi.URLParam(r, "symbol"))
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, ind)
}

func (s *Server) handlePrediction(w http.ResponseWriter, r *http.Request) {
	model := models.PredictionModel(r.URL.Query().Get("model"))
	if model == "" {
		model = models.ModelLSTM
	}

	days := 0
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			WriteServiceError(w, common.NewValidationError("days", "must be an integer"))
			return
		}
		days = n
	}

	pred, err := s.app.Analytics.Predict(r.Context(), chi.URLParam(r, "symbol"), model, days)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, pred)
}

func (s *Server) handleSentiment(w http.ResponseWriter, r *http.Request) {
	sent, err := s.app.Analytics.Sentiment(r.Context(), chi.URLParam(r, "symbol"))
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, sent)
}
