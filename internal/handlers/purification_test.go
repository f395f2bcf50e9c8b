package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestPurificationStatusReportsProgress(t *testing.T) {
	handler := newTestHandler(testHandlerOptions{})
	req := httptest.NewRequest(http.MethodGet, "/purification", nil)
	rr := serveWithAuth(t, handler.PurificationStatus, "user-1", req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var status purificationStatus
	if err := json.Unmarshal(rr.Body.Bytes(), &status); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if status.Percent < 0 || status.Percent > 100 {
		t.Fatalf("percent out of range: %f", status.Percent)
	}
	if !status.NextEventAt.After(status.PreviousEventAt) {
		t.Fatalf("event window inverted: %s .. %s", status.PreviousEventAt, status.NextEventAt)
	}
}

func TestSetPurificationOffsetMovesClock(t *testing.T) {
	handler := newTestHandler(testHandlerOptions{})
	body := `{"offset_ms":3600000}`
	req := httptest.NewRequest(http.MethodPost, "/debug/purification/offset", strings.NewReader(body))
	rr := serveWithAuth(t, handler.SetPurificationOffset, "user-1", req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if got := handler.clock.Offset(); got != time.Hour {
		t.Fatalf("expected 1h offset, got %s", got)
	}
	var status purificationStatus
	if err := json.Unmarshal(rr.Body.Bytes(), &status); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if status.OffsetMs != 3600000 {
		t.Fatalf("expected offset in response, got %d", status.OffsetMs)
	}
}

func TestDebugRoutesAbsentInProduction(t *testing.T) {
	handler := newTestHandler(testHandlerOptions{})
	handler.cfg.AppEnv = "production"
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/debug/purification/offset", strings.NewReader(`{"offset_ms":1}`))
	handler.Routes().ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound && rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected debug routes to be absent, got %d", rr.Code)
	}
}
