package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCORS(t *testing.T) {
	tests := []struct {
		name           string
		config         CORSConfig
		origin         string
		expectedOrigin string
	}{
		{
			name:           "wildcard allows any origin",
			config:         DefaultCORSConfig(),
			origin:         "https://app.example.com",
			expectedOrigin: "https://app.example.com",
		},
		{
			name: "exact origin match",
			config: CORSConfig{
				AllowedOrigins: []string{"https://app.example.com"},
				AllowedMethods: []string{"GET"},
			},
			origin:         "https://app.example.com",
			expectedOrigin: "https://app.example.com",
		},
		{
			name: "subdomain wildcard match",
			config: CORSConfig{
				AllowedOrigins: []string{"*.example.com"},
				AllowedMethods: []string{"GET"},
			},
			origin:         "https://feed.example.com",
			expectedOrigin: "https://feed.example.com",
		},
		{
			name: "non-matching origin gets no allow header",
			config: CORSConfig{
				AllowedOrigins: []string{"https://app.example.com"},
				AllowedMethods: []string{"GET"},
			},
			origin:         "https://evil.example.net",
			expectedOrigin: "",
		},
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "http://example.com/api/v1/events", nil)
			req.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()

			CORS(tt.config)(handler).ServeHTTP(w, req)

			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.expectedOrigin {
				t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, tt.expectedOrigin)
			}
		})
	}
}

func TestCORS_PreflightShortCircuits(t *testing.T) {
	called := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	req := httptest.NewRequest("OPTIONS", "http://example.com/api/v1/events", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()

	CORS(DefaultCORSConfig())(handler).ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if called {
		t.Error("preflight must not reach the handler")
	}
}
