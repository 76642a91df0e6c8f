package digest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"filing_digest/pkg/core/pipeline"
)

type stubFetcher struct {
	html string
	err  error
}

func (s *stubFetcher) FetchFilingHTML(ctx context.Context, cik string, accessionNumber string) (string, error) {
	return s.html, s.err
}

// handlerFiling carries enough tagged facts to clear the quality gate.
const handlerFiling = `<html xmlns:ix="http://www.xbrl.org/2013/inlineXBRL" xmlns:xbrli="http://www.xbrl.org/2003/instance">
<body>
  <xbrli:context id="d-cur">
    <xbrli:period><xbrli:startDate>2024-09-29</xbrli:startDate><xbrli:endDate>2024-12-28</xbrli:endDate></xbrli:period>
  </xbrli:context>
  <xbrli:context id="d-prior">
    <xbrli:period><xbrli:startDate>2023-10-01</xbrli:startDate><xbrli:endDate>2023-12-30</xbrli:endDate></xbrli:period>
  </xbrli:context>
  <p><ix:nonFraction name="us-gaap:Revenues" contextRef="d-cur" scale="6">94,836</ix:nonFraction>
  <ix:nonFraction name="us-gaap:Revenues" contextRef="d-prior" scale="6">90,753</ix:nonFraction></p>
  <p><ix:nonFraction name="us-gaap:NetIncomeLoss" contextRef="d-cur" scale="6">25,903</ix:nonFraction>
  <ix:nonFraction name="us-gaap:NetIncomeLoss" contextRef="d-prior" scale="6">24,160</ix:nonFraction></p>
</body>
</html>`

func postRun(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/digest/run", strings.NewReader(body))
	rec := httptest.NewRecorder()
	HandleRunDigest(rec, req)
	return rec
}

func TestHandleRunDigest_Success(t *testing.T) {
	InitHandler(pipeline.NewOrchestrator(&stubFetcher{html: handlerFiling}))

	rec := postRun(t, `{"cik":"0000320193","symbol":"AAPL","accession":"0000320193-25-000057"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp RunResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !strings.Contains(resp.Markdown, "## Executive Summary") {
		t.Error("expected markdown in the response")
	}
	if !strings.Contains(resp.HTML, "<h2") {
		t.Error("expected an HTML preview")
	}
	if resp.Scorecard.Total < 28 {
		t.Errorf("expected an accepted scorecard, got %d", resp.Scorecard.Total)
	}
	if len(resp.MaterialMetrics) == 0 || resp.MaterialMetrics[0] != "Revenue" {
		t.Errorf("unexpected material metrics: %v", resp.MaterialMetrics)
	}
}

func TestHandleRunDigest_GateRejection(t *testing.T) {
	InitHandler(pipeline.NewOrchestrator(&stubFetcher{html: "<html><body><p>No facts.</p></body></html>"}))

	rec := postRun(t, `{"cik":"123","accession":"456"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp RejectionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode rejection: %v", err)
	}
	if resp.Error != "draft rejected" {
		t.Errorf("unexpected error field: %q", resp.Error)
	}
	if resp.Scorecard.Total >= 28 {
		t.Errorf("expected a failing scorecard, got %d", resp.Scorecard.Total)
	}
}

func TestHandleRunDigest_InvalidRequests(t *testing.T) {
	InitHandler(pipeline.NewOrchestrator(&stubFetcher{html: handlerFiling}))

	if rec := postRun(t, `{not json`); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for a malformed body, got %d", rec.Code)
	}
	if rec := postRun(t, `{"symbol":"AAPL"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 when cik and accession are missing, got %d", rec.Code)
	}

	req := httptest.NewRequest("GET", "/api/digest/run", nil)
	rec := httptest.NewRecorder()
	HandleRunDigest(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405 for GET, got %d", rec.Code)
	}
}

func TestHandleRunDigest_FetchFailure(t *testing.T) {
	InitHandler(pipeline.NewOrchestrator(&stubFetcher{err: fmt.Errorf("EDGAR unreachable")}))

	rec := postRun(t, `{"cik":"123","accession":"456"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "EDGAR unreachable") {
		t.Errorf("expected the fetch error in the body, got %s", rec.Body.String())
	}
}
