// Package handlers provides the HTTP endpoint handlers of the relay.
//
// Four POST endpoints make up the client API, each registered at both the
// bare path and under the /api prefix:
//
//   - ChatHandler (/chat-process): relays a prompt upstream and streams the
//     reply back as newline-delimited tagged JSON chunks
//   - ConfigHandler (/config): runtime configuration snapshot plus balance
//   - SessionHandler (/session): auth requirement and active upstream mode
//   - VerifyHandler (/verify): secret key check for the front-end login
//
// Two GET endpoints serve operations:
//
//   - HealthHandler (/health): liveness, always 200
//   - ReadyHandler (/ready): readiness from the upstream probe, 503 when the
//     failure threshold has tripped
//
// # Request Flow
//
// The non-streaming handlers follow one pattern: reject non-POST with a 405
// Fail envelope, parse, build the response DTO, write a Success envelope.
//
// The chat handler differs because its failure channel is the stream itself:
//
//  1. Reject non-POST (the only HTTP-level failure)
//  2. Commit octet-stream headers and open the stream writer
//  3. Parse the body; failures become in-band error chunks
//  4. Call the upstream adapter with the request context
//  5. Forward each reply as an ok chunk, flushing after every write
//  6. On upstream failure, write one error chunk and end the stream
//
// # Error Handling
//
// Client-facing failure text goes through the bilingual status table, so a
// 502 from the upstream always surfaces as
//
//	{"error":"[OpenAI] 错误的网关 | Bad Gateway"}
//
// regardless of what the upstream body said. The HTTP status of a committed
// stream stays 200.
//
// # Health Checks
//
// The health endpoints suit Kubernetes probes:
//
//	livenessProbe:
//	  httpGet:
//	    path: /health
//	    port: 3002
//	readinessProbe:
//	  httpGet:
//	    path: /ready
//	    port: 3002
package handlers
