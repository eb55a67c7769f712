package common

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestJSONErrorEnvelope(t *testing.T) {
	rr := httptest.NewRecorder()
	JSONError(rr, http.StatusBadRequest, "BAD_REQUEST", "invalid employee id", nil)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected json content type, got %q", ct)
	}
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
			Details any    `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Error.Code != "BAD_REQUEST" || body.Error.Message != "invalid employee id" {
		t.Fatalf("unexpected envelope: %+v", body.Error)
	}
	if body.Error.Details != nil {
		t.Fatalf("nil details must be omitted, got %v", body.Error.Details)
	}
}

func TestJSONErrorDetails(t *testing.T) {
	rr := httptest.NewRecorder()
	JSONError(rr, http.StatusUnprocessableEntity, "VALIDATION", "invalid cart payload", "Items is required")

	var body map[string]map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["error"]["details"] != "Items is required" {
		t.Fatalf("expected details passed through, got %v", body["error"])
	}
}

func TestQueryInt(t *testing.T) {
	cases := []struct {
		url  string
		want int
	}{
		{"/t4?year=2025", 2025},
		{"/t4?year=%202025%20", 2025},
		{"/t4", 0},
		{"/t4?year=", 0},
		{"/t4?year=abc", 0},
	}
	for _, tc := range cases {
		r := httptest.NewRequest(http.MethodGet, tc.url, nil)
		if got := QueryInt(r, "year", 0); got != tc.want {
			t.Fatalf("%s: expected %d, got %d", tc.url, tc.want, got)
		}
	}
}
