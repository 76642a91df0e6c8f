// Package digest provides the HTTP API for running the filing digest
// pipeline.
package digest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"filing_digest/pkg/core/gate"
	"filing_digest/pkg/core/pipeline"
	"filing_digest/pkg/core/utils"
	"filing_digest/pkg/models"
)

// Package-level orchestrator shared by all requests
var orch *pipeline.Orchestrator

// InitHandler wires the orchestrator used by the endpoints.
func InitHandler(o *pipeline.Orchestrator) {
	orch = o
}

// =============================================================================
// DIGEST RUN HANDLER
// =============================================================================

// RunRequest for the digest endpoint
type RunRequest struct {
	CIK         string `json:"cik"`
	Symbol      string `json:"symbol"`
	CompanyName string `json:"company_name"`
	FilingType  string `json:"filing_type"` // "10-Q" or "10-K"
	FilingDate  string `json:"filing_date"`
	PeriodEnd   string `json:"period_end"`
	Accession   string `json:"accession"`
}

// RunResponse carries the accepted digest plus an HTML preview.
type RunResponse struct {
	Summary          *models.FilingSummary `json:"summary"`
	Markdown         string                `json:"markdown"`
	HTML             string                `json:"html,omitempty"`
	Scorecard        models.Scorecard      `json:"scorecard"`
	MaterialMetrics  []string              `json:"material_metrics"`
	Footnotes        []string              `json:"footnotes,omitempty"`
	ProcessingTimeMs int64                 `json:"processing_time_ms"`
}

// RejectionResponse is returned with 422 when the gate rejects a draft.
type RejectionResponse struct {
	Error     string           `json:"error"`
	Reason    string           `json:"reason"`
	Scorecard models.Scorecard `json:"scorecard"`
}

// HandleRunDigest handles POST /api/digest/run
func HandleRunDigest(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Content-Type", "application/json")

	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if orch == nil {
		http.Error(w, "Orchestrator not initialized", http.StatusInternalServerError)
		return
	}

	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.CIK == "" || req.Accession == "" {
		http.Error(w, "cik and accession are required", http.StatusBadRequest)
		return
	}
	if req.FilingType == "" {
		req.FilingType = models.Filing10Q
	}

	startTime := time.Now()

	result, err := orch.RunForFiling(r.Context(), pipeline.Request{
		Meta: models.FilingMeta{
			CIK:         req.CIK,
			Symbol:      req.Symbol,
			CompanyName: req.CompanyName,
			FilingType:  req.FilingType,
			FilingDate:  req.FilingDate,
			PeriodEnd:   req.PeriodEnd,
		},
		Accession: req.Accession,
	})
	if err != nil {
		var rejection *gate.RejectionError
		if errors.As(err, &rejection) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			json.NewEncoder(w).Encode(RejectionResponse{
				Error:     "draft rejected",
				Reason:    rejection.Reason,
				Scorecard: rejection.Scorecard,
			})
			return
		}
		http.Error(w, fmt.Sprintf("Digest failed: %v", err), http.StatusInternalServerError)
		return
	}

	// Preview is best-effort; the markdown is the product.
	htmlPreview, err := utils.RenderHTML(result.Markdown)
	if err != nil {
		htmlPreview = ""
	}

	json.NewEncoder(w).Encode(RunResponse{
		Summary:          result.Summary,
		Markdown:         result.Markdown,
		HTML:             htmlPreview,
		Scorecard:        result.Scorecard,
		MaterialMetrics:  result.Meta.MaterialMetrics,
		Footnotes:        result.Meta.Footnotes,
		ProcessingTimeMs: time.Since(startTime).Milliseconds(),
	})
}
