package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWriteJSON(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		data       any
		wantStatus int
		wantJSON   string
	}{
		{
			name:       "object",
			status:     http.StatusOK,
			data:       map[string]int{"likes": 1},
			wantStatus: http.StatusOK,
			wantJSON:   `{"likes":1}`,
		},
		{
			name:       "empty array",
			status:     http.StatusOK,
			data:       []string{},
			wantStatus: http.StatusOK,
			wantJSON:   `[]`,
		},
		{
			name:   "nested",
			status: http.StatusOK,
			data: map[string]any{
				"title": "repo",
				"techs": []string{"Go", "Postgres"},
			},
			wantStatus: http.StatusOK,
			wantJSON:   `{"techs":["Go","Postgres"],"title":"repo"}`,
		},
		{
			name:       "non-200 status",
			status:     http.StatusTooManyRequests,
			data:       map[string]string{},
			wantStatus: http.StatusTooManyRequests,
			wantJSON:   `{}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()

			WriteJSON(rr, tt.status, tt.data)

			if rr.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rr.Code)
			}
			if ct := rr.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
				t.Errorf("unexpected Content-Type %q", ct)
			}

			// Normalize JSON for comparison (handles field ordering)
			var got, want any
			if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}
			if err := json.Unmarshal([]byte(tt.wantJSON), &want); err != nil {
				t.Fatalf("failed to unmarshal expected JSON: %v", err)
			}

			gotJSON, _ := json.Marshal(got)
			wantJSON, _ := json.Marshal(want)
			if string(gotJSON) != string(wantJSON) {
				t.Errorf("expected JSON %s, got %s", wantJSON, gotJSON)
			}
		})
	}
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		message string
	}{
		{"invalid id", http.StatusBadRequest, "Invalid ID"},
		{"not found", http.StatusBadRequest, "ID not found"},
		{"internal", http.StatusInternalServerError, "an unexpected error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()

			WriteError(rr, tt.status, tt.message)

			if rr.Code != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, rr.Code)
			}

			var body map[string]any
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}
			if len(body) != 1 {
				t.Errorf("expected only the error key, got %v", body)
			}
			if body["error"] != tt.message {
				t.Errorf("expected error %q, got %v", tt.message, body["error"])
			}
		})
	}
}

func TestWriteNoContent(t *testing.T) {
	rr := httptest.NewRecorder()

	WriteNoContent(rr)

	if rr.Code != http.StatusNoContent {
		t.Errorf("expected status %d, got %d", http.StatusNoContent, rr.Code)
	}
	if rr.Body.Len() != 0 {
		t.Errorf("expected empty body, got %q", rr.Body.String())
	}
}
