package httputil

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, 200, map[string]string{"status": "ok"})

	if rec.Code != 200 {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, 409, "sync already running")

	if rec.Code != 409 {
		t.Errorf("status = %d, want 409", rec.Code)
	}
	var body ErrorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body.Error != "sync already running" || body.Status != 409 {
		t.Errorf("body = %+v", body)
	}
}

func TestDecodeJSON_RejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"athlete_id": "a1", "bogus": true}`))
	var dst struct {
		AthleteID string `json:"athlete_id"`
	}
	if err := DecodeJSON(req, &dst); err == nil {
		t.Error("expected unknown field error")
	}

	req = httptest.NewRequest("POST", "/", strings.NewReader(`{"athlete_id": "a1"}`))
	if err := DecodeJSON(req, &dst); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dst.AthleteID != "a1" {
		t.Errorf("athlete_id = %q", dst.AthleteID)
	}
}
