package respond

import (
	"agent-market/internal/service"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", service.ErrEmptyContent, http.StatusBadRequest},
		{"wrapped validation", fmt.Errorf("subscribe: %w", service.ErrAlreadySubscribed), http.StatusBadRequest},
		{"forbidden", service.ErrNotSubscribed, http.StatusForbidden},
		{"not found", service.ErrConversationNotFound, http.StatusNotFound},
		{"unclassified", errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusFor(tt.err); got != tt.want {
				t.Errorf("StatusFor() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{"domain message", service.ErrNotSubscribed, http.StatusForbidden, "an active subscription to this agent is required"},
		{"internal error is hidden", errors.New("pq: relation does not exist"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)

			Error(rec, req, tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q, want application/json", ct)
			}
			var body ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("Failed to decode body: %v", err)
			}
			if body.Error != tt.wantMessage {
				t.Errorf("error = %q, want %q", body.Error, tt.wantMessage)
			}
			if body.Code != tt.wantStatus {
				t.Errorf("code = %d, want %d", body.Code, tt.wantStatus)
			}
			if body.Details != "" {
				t.Errorf("details = %q, want empty", body.Details)
			}
		})
	}
}

func TestStatus_WithDetails(t *testing.T) {
	rec := httptest.NewRecorder()

	Status(rec, http.StatusBadRequest, "Invalid request body", errors.New("unexpected EOF"))

	var body ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if body.Details != "unexpected EOF" {
		t.Errorf("details = %q, want unexpected EOF", body.Details)
	}
}

func TestDecode_BodyLimit(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantErr    bool
		wantStatus int
	}{
		{name: "small body", body: `{"content":"hello"}`},
		{name: "malformed", body: `{"content":`, wantErr: true, wantStatus: http.StatusBadRequest},
		{
			name:       "over the cap",
			body:       `{"content":"` + strings.Repeat("a", MaxBodyBytes) + `"}`,
			wantErr:    true,
			wantStatus: http.StatusRequestEntityTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))

			var v struct {
				Content string `json:"content"`
			}
			err := Decode(rec, req, &v)
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("Decode() error = %v", err)
				}
				if v.Content != "hello" {
					t.Errorf("content = %q", v.Content)
				}
				return
			}
			if err == nil {
				t.Fatal("Decode() should fail")
			}
			BadBody(rec, err)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}
