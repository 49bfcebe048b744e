// Package types defines the request and response types for the relay server.
//
// This package contains all data transfer objects (DTOs) exchanged with the
// web client. The JSON field names are part of the wire contract consumed by
// the SPA front-end and must not change casing.
//
// # Core Types
//
// Request types:
//   - ChatProcessRequest: Main request body for /chat-process
//   - ChatContext: Conversation correlation state echoed between turns
//   - VerifyRequest: Secret-key check body for /verify
//
// Response types:
//   - Envelope: Wrapper for every non-streaming response
//   - ChatMessage: Partial or final assistant reply unit
//   - StreamChunk: One newline-delimited line of the /chat-process stream
//   - ModelConfig: Runtime configuration snapshot for /config
//   - SessionData: Auth requirement and active mode label for /session
//
// # Streaming Protocol
//
// /chat-process responds with Content-Type application/octet-stream and a
// sequence of JSON-encoded StreamChunk lines separated by newlines. Each
// chunk carries exactly one of two tags:
//
//	{"ok":{"id":"...","text":"Hello","delta":"Hello","role":"assistant",...}}
//	{"error":"[OpenAI] 错误的网关 | Bad Gateway"}
//
// Consumers switch on which tag is present rather than inspecting object
// shape. The HTTP status is always 200 once streaming begins; failures after
// the first byte are reported in-band through the error tag.
//
// # JSON Serialization
//
// All types use standard encoding/json with camelCase field names matching
// the front-end models, except top_p which keeps the upstream API spelling.
package types
