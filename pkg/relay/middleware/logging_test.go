package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLogging(t *testing.T) {
	t.Run("passes response through unchanged", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
			_, _ = w.Write([]byte("short and stout"))
		})

		wrapped := Logging(handler)

		req := httptest.NewRequest(http.MethodPost, "/config", nil)
		w := httptest.NewRecorder()

		wrapped.ServeHTTP(w, req)

		if w.Code != http.StatusTeapot {
			t.Errorf("Status code = %v, want %v", w.Code, http.StatusTeapot)
		}
		if w.Body.String() != "short and stout" {
			t.Errorf("Body = %q", w.Body.String())
		}
	})

	t.Run("exposes start time to handlers", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if GetStartTime(r.Context()).IsZero() {
				t.Error("start time should be set in context")
			}
			w.WriteHeader(http.StatusOK)
		})

		wrapped := Logging(handler)

		req := httptest.NewRequest(http.MethodPost, "/session", nil)
		w := httptest.NewRecorder()

		wrapped.ServeHTTP(w, req)
	})

	t.Run("forwards Flush to the underlying writer", func(t *testing.T) {
		// The chat-process stream flushes after every chunk; the wrapper must
		// not swallow it.
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			flusher, ok := w.(http.Flusher)
			if !ok {
				t.Fatal("wrapped writer should implement http.Flusher")
			}
			_, _ = w.Write([]byte("chunk"))
			flusher.Flush()
		})

		wrapped := Logging(handler)

		req := httptest.NewRequest(http.MethodPost, "/chat-process", nil)
		w := httptest.NewRecorder()

		wrapped.ServeHTTP(w, req)

		if !w.Flushed {
			t.Error("Flush should reach the underlying writer")
		}
	})
}
