package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/yourusername/roi-ledger/internal/reconcile"
	"github.com/yourusername/roi-ledger/internal/service"
)

const (
	reportFormField = "report"

	// multipartOverhead is allowed on top of the report limit for the
	// multipart envelope
	multipartOverhead = 1 << 20
)

func (s *Server) getDashboard(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.deps.Dashboard.Snapshot(r.Context()))
}

func (s *Server) getReports(w http.ResponseWriter, r *http.Request) {
	reports, err := s.deps.Bets.ListReports(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("Failed to list reports")
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"reports": reports})
}

func (s *Server) getBets(w http.ResponseWriter, r *http.Request) {
	bets, err := s.deps.Bets.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		s.logger.WithError(err).Error("Failed to list bets")
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"bets": bets})
}

func (s *Server) postManualBets(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Bets interface{} `json:"bets"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	// Anything other than an array carries no bets; array items that are
	// not objects are kept so they count as supplied but never validate.
	items, _ := payload.Bets.([]interface{})
	raw := make([]reconcile.RawManualBet, 0, len(items))
	for _, item := range items {
		bet, _ := item.(map[string]interface{})
		raw = append(raw, reconcile.RawManualBet(bet))
	}

	result, err := s.deps.Bets.SubmitManual(r.Context(), raw)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) postReport(w http.ResponseWriter, r *http.Request) {
	if !s.deps.Ingestion.Ready() {
		respondError(w, http.StatusInternalServerError, clientMessage(service.ErrExtractionUnavailable))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+multipartOverhead)
	file, header, err := r.FormFile(reportFormField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusBadRequest, clientMessage(&service.ReportTooLargeError{Limit: s.cfg.MaxUploadBytes}))
			return
		}
		respondError(w, http.StatusBadRequest, `Expected a PDF file under "report"`)
		return
	}
	defer file.Close()

	pdf, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to read uploaded report")
		return
	}

	result, err := s.deps.Ingestion.Ingest(r.Context(), header.Filename, pdf)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) respondServiceError(w http.ResponseWriter, err error) {
	if service.IsClientError(err) {
		respondError(w, http.StatusBadRequest, clientMessage(err))
		return
	}
	s.logger.WithError(err).Error("Request failed")
	respondError(w, http.StatusInternalServerError, clientMessage(err))
}

// clientMessage renders service errors as sentences for the admin UI
func clientMessage(err error) string {
	var tooLarge *service.ReportTooLargeError
	if errors.As(err, &tooLarge) {
		return "Report exceeds " + tooLarge.LimitMB() + " limit"
	}
	for _, sentinel := range []error{
		service.ErrEmptyReport,
		service.ErrNoBetsSupplied,
		service.ErrNoValidBets,
		service.ErrExtractionUnavailable,
	} {
		if errors.Is(err, sentinel) {
			return capitalize(sentinel.Error())
		}
	}
	return err.Error()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
