package httpx

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
)

type testRequest struct {
	Title string          `json:"title"`
	Likes int             `json:"likes"`
	Techs json.RawMessage `json:"techs"`
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		opts        []DecodeOption
		wantErr     bool
		errContains string
		validate    func(*testing.T, testRequest)
	}{
		{
			name: "valid JSON",
			body: `{"title":"repo","likes":3,"techs":["Go"]}`,
			validate: func(t *testing.T, req testRequest) {
				if req.Title != "repo" {
					t.Errorf("expected title 'repo', got %q", req.Title)
				}
				if req.Likes != 3 {
					t.Errorf("expected likes 3, got %d", req.Likes)
				}
				if string(req.Techs) != `["Go"]` {
					t.Errorf("expected raw techs [\"Go\"], got %s", req.Techs)
				}
			},
		},
		{
			name:        "empty body",
			body:        "",
			wantErr:     true,
			errContains: "request body is empty",
		},
		{
			name: "empty body allowed",
			body: "",
			opts: []DecodeOption{AllowEmptyBody()},
			validate: func(t *testing.T, req testRequest) {
				if req.Title != "" || req.Techs != nil {
					t.Errorf("expected zero value, got %+v", req)
				}
			},
		},
		{
			name:        "malformed JSON - missing quote",
			body:        `{"title":"repo,"likes":1}`,
			wantErr:     true,
			errContains: "malformed JSON",
		},
		{
			name:        "malformed JSON - trailing comma",
			body:        `{"title":"repo",}`,
			wantErr:     true,
			errContains: "malformed JSON",
		},
		{
			name:        "truncated JSON",
			body:        `{"title":`,
			wantErr:     true,
			errContains: "malformed JSON",
		},
		{
			name:        "unknown field",
			body:        `{"title":"repo","unknown":"field"}`,
			wantErr:     true,
			errContains: "unknown",
		},
		{
			name: "unknown field allowed",
			body: `{"title":"repo","unknown":"field"}`,
			opts: []DecodeOption{AllowUnknownFields()},
			validate: func(t *testing.T, req testRequest) {
				if req.Title != "repo" {
					t.Errorf("expected title 'repo', got %q", req.Title)
				}
			},
		},
		{
			name:        "invalid type for field",
			body:        `{"likes":"three"}`,
			wantErr:     true,
			errContains: "invalid value for field",
		},
		{
			name:        "array instead of object",
			body:        `["title"]`,
			wantErr:     true,
			errContains: "must be a JSON object",
		},
		{
			name: "array body allowed as zero value",
			body: `[]`,
			opts: []DecodeOption{AllowNonObjectBody()},
			validate: func(t *testing.T, req testRequest) {
				if req.Title != "" || req.Techs != nil {
					t.Errorf("expected zero value, got %+v", req)
				}
			},
		},
		{
			name:        "mistyped field still rejected with non-object allowed",
			body:        `{"likes":"three"}`,
			opts:        []DecodeOption{AllowNonObjectBody()},
			wantErr:     true,
			errContains: "invalid value for field",
		},
		{
			name:        "multiple JSON objects",
			body:        `{"title":"a"}{"title":"b"}`,
			wantErr:     true,
			errContains: "multiple JSON objects",
		},
		{
			name:        "body too large",
			body:        `{"title":"` + strings.Repeat("x", MaxRequestBodySize+1) + `"}`,
			wantErr:     true,
			errContains: "request body too large",
		},
		{
			name:        "trailing garbage",
			body:        `{"title":"repo"}extra`,
			wantErr:     true,
			errContains: "multiple JSON objects",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/test", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")

			result, err := DecodeJSON[testRequest](req, tt.opts...)

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("expected error to contain %q, got %q", tt.errContains, err.Error())
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.validate != nil {
				tt.validate(t, result)
			}
		})
	}
}

func TestDecodeJSON_ZeroValueOnError(t *testing.T) {
	req := httptest.NewRequest("POST", "/test", strings.NewReader("invalid json"))

	result, err := DecodeJSON[testRequest](req)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if result.Title != "" || result.Likes != 0 || result.Techs != nil {
		t.Errorf("expected zero value on error, got %+v", result)
	}
}

func TestDecodeJSON_ClosesBody(t *testing.T) {
	body := &testReadCloser{Reader: strings.NewReader(`{"title":"repo"}`)}
	req := httptest.NewRequest("POST", "/test", body)

	if _, err := DecodeJSON[testRequest](req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !body.closed {
		t.Error("expected body to be closed")
	}
}

// testReadCloser helps verify that body is closed
type testReadCloser struct {
	io.Reader
	closed bool
}

func (t *testReadCloser) Close() error {
	t.closed = true
	return nil
}

func TestDecodeJSON_IgnoreNonJSONBody(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		wantTitle   string
	}{
		{"json", "application/json", "repo"},
		{"json with charset", "application/json; charset=utf-8", "repo"},
		{"plain text", "text/plain", ""},
		{"form", "application/x-www-form-urlencoded", ""},
		{"missing", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/test", strings.NewReader(`{"title":"repo"}`))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}

			got, err := DecodeJSON[testRequest](req, IgnoreNonJSONBody())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Title != tt.wantTitle {
				t.Errorf("Title = %q, want %q", got.Title, tt.wantTitle)
			}
		})
	}
}
