package relay

import (
	"encoding/json"
	"fmt"
	"net/http"

	"lattice-hq/hermes/pkg/relay/types"
	"lattice-hq/hermes/pkg/upstream"
)

// WriteJSON writes a JSON response with the given status code.
// It sets the content-type header and reports encoding failures.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON response: %w", err)
	}

	return nil
}

// WriteEnvelope writes an envelope response with the given status code.
func WriteEnvelope(w http.ResponseWriter, statusCode int, env *types.Envelope) error {
	return WriteJSON(w, statusCode, env)
}

// WriteMethodNotAllowed rejects a non-POST request on a relay endpoint.
func WriteMethodNotAllowed(w http.ResponseWriter) error {
	w.Header().Set("Allow", http.MethodPost)
	return WriteEnvelope(w, http.StatusMethodNotAllowed, types.NewFail("Method Not Allowed"))
}

// SetStreamHeaders sets the response headers for the chat-process stream.
// The headers commit the response to the chunked octet-stream protocol, so
// every failure after this point is reported in-band.
func SetStreamHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Cache-Control", "no-cache")
}

// StreamWriter writes the newline-delimited chunk stream of POST
// /chat-process. Each chunk is one JSON line; a newline separates chunks
// without trailing the last one.
//
// Example output:
//
//	{"ok":{"id":"...","text":"Hel","delta":"Hel","role":"assistant"}}
//	{"ok":{"id":"...","text":"Hello","delta":"lo","role":"assistant"}}
type StreamWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
	wrote   bool
	chunks  int
}

// NewStreamWriter creates a stream writer over the response. The caller must
// have set the stream headers first.
func NewStreamWriter(w http.ResponseWriter) *StreamWriter {
	flusher, _ := w.(http.Flusher)
	return &StreamWriter{w: w, flusher: flusher}
}

// WriteMessage writes one ok chunk carrying a reply update.
func (s *StreamWriter) WriteMessage(msg *types.ChatMessage) error {
	return s.writeChunk(&types.StreamChunk{OK: msg})
}

// WriteError writes one error chunk. The stream ends after it.
func (s *StreamWriter) WriteError(message string) error {
	return s.writeChunk(&types.StreamChunk{Error: message})
}

// Chunks reports how many chunks have been written.
func (s *StreamWriter) Chunks() int {
	return s.chunks
}

func (s *StreamWriter) writeChunk(chunk *types.StreamChunk) error {
	data, err := json.Marshal(chunk)
	if err != nil {
		return fmt.Errorf("failed to marshal stream chunk: %w", err)
	}

	if s.wrote {
		if _, err := s.w.Write([]byte("\n")); err != nil {
			return fmt.Errorf("failed to write chunk separator: %w", err)
		}
	}
	if _, err := s.w.Write(data); err != nil {
		return fmt.Errorf("failed to write stream chunk: %w", err)
	}

	s.wrote = true
	s.chunks++

	// Flush immediately so partial replies render as they arrive.
	if s.flusher != nil {
		s.flusher.Flush()
	}

	return nil
}

// FormatChatMessage converts an upstream reply update into the wire
// ChatMessage carried by an ok chunk.
func FormatChatMessage(reply *upstream.Reply) *types.ChatMessage {
	return &types.ChatMessage{
		ID:              reply.ID,
		Text:            reply.Text,
		Delta:           reply.Delta,
		Role:            reply.Role,
		ConversationID:  reply.ConversationID,
		ParentMessageID: reply.ParentMessageID,
		FinishReason:    reply.FinishReason,
	}
}
