package metrics

import (
	"net/http"
	"time"
)

// statusRecorder captures the response status code for metric labels.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// Flush forwards to the wrapped writer so streaming responses keep flushing.
func (sr *statusRecorder) Flush() {
	if flusher, ok := sr.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// InstrumentHandler wraps an HTTP handler so every request is recorded under
// the given route label.
//
// Example:
//
//	mux.Handle("/chat-process", collector.InstrumentHandler("chat-process", chatHandler))
func (c *Collector) InstrumentHandler(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sr, r)

		c.RecordRequest(route, r.Method, sr.status, time.Since(start))
	})
}
