package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"lattice-hq/hermes/pkg/relay/middleware"
	"lattice-hq/hermes/pkg/relay/types"
	"lattice-hq/hermes/pkg/upstream"
)

func TestSessionHandler_MethodNotAllowed(t *testing.T) {
	handler := NewSessionHandler(&mockClient{}, middleware.StaticSecret(""))

	req := httptest.NewRequest(http.MethodGet, "/session", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}

func TestSessionHandler_ReportsAuthAndMode(t *testing.T) {
	tests := []struct {
		name      string
		secretKey string
		mode      upstream.Mode
		wantAuth  bool
		wantModel string
	}{
		{
			name:      "no secret, key mode",
			secretKey: "",
			mode:      upstream.ModeChatAPI,
			wantAuth:  false,
			wantModel: "ChatAPI",
		},
		{
			name:      "secret configured, key mode",
			secretKey: "my-secret",
			mode:      upstream.ModeChatAPI,
			wantAuth:  true,
			wantModel: "ChatAPI",
		},
		{
			name:      "secret configured, token mode",
			secretKey: "my-secret",
			mode:      upstream.ModeReverseProxy,
			wantAuth:  true,
			wantModel: "ReverseProxy",
		},
		{
			name:      "whitespace secret counts as absent",
			secretKey: "   ",
			mode:      upstream.ModeChatAPI,
			wantAuth:  false,
			wantModel: "ChatAPI",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewSessionHandler(&mockClient{mode: tt.mode}, middleware.StaticSecret(tt.secretKey))

			req := httptest.NewRequest(http.MethodPost, "/session", nil)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
			}

			var env struct {
				Status types.Status      `json:"status"`
				Data   types.SessionData `json:"data"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
				t.Fatalf("Failed to decode envelope: %v", err)
			}

			if env.Status != types.StatusSuccess {
				t.Errorf("status = %q, want %q", env.Status, types.StatusSuccess)
			}
			if env.Data.Auth != tt.wantAuth {
				t.Errorf("auth = %v, want %v", env.Data.Auth, tt.wantAuth)
			}
			if env.Data.Model != tt.wantModel {
				t.Errorf("model = %q, want %q", env.Data.Model, tt.wantModel)
			}
		})
	}
}
