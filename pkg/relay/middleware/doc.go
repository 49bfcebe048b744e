// Package middleware provides HTTP middleware for cross-cutting concerns.
//
// This package implements middleware functions that handle common
// functionality across all relay requests: request ID generation, structured
// logging, CORS, panic recovery, and secret-key authentication.
//
// # Middleware Chain
//
// Middleware functions are chained in a specific order:
//
//	handler = Recovery(Logging(RequestID(CORS(cors)(Auth(secret)(handler)))))
//
// Order (innermost to outermost):
//  1. Auth: Enforce the secret-key check on protected endpoints
//  2. CORS: Add Cross-Origin Resource Sharing headers
//  3. RequestID: Generate and propagate request ID
//  4. Logging: Log request/response details
//  5. Recovery: Recover from panics
//
// # Request ID
//
// RequestID generates a unique ID for each request using UUID v4:
//
//	X-Request-ID: 550e8400-e29b-41d4-a716-446655440000
//
// The request ID is added to the context, included in response headers, and
// logged with all request logs.
//
// # Logging
//
// Logging uses structured logging (log/slog) to record request details:
//
//	{
//	  "msg": "request completed",
//	  "method": "POST",
//	  "path": "/api/chat-process",
//	  "status": 200,
//	  "bytes": 512,
//	  "latency_ms": 1250,
//	  "request_id": "550e8400-..."
//	}
//
// The response writer wrapper forwards Flush to the underlying writer so the
// chat-process stream keeps flushing per chunk.
//
// # Authentication
//
// Auth checks "Authorization: Bearer <secret>" against the configured secret
// key. The session probe and verification endpoints stay reachable without a
// key so the front-end login flow can run:
//
//	/session, /verify, /api/session, /api/verify
//
// Failures answer 401 with the Unauthorized envelope the front-end expects
// and are logged with their AuthError reason. With no secret configured,
// every request passes through.
//
// # Recovery
//
// Recovery catches panics in handlers and converts them to HTTP 500 with a
// Fail envelope:
//
//	{"status":"Fail","message":"An internal error occurred. Please try again later.","data":null}
//
// The panic stack trace is logged but not exposed to clients.
//
// # Thread Safety
//
// All middleware functions are thread-safe and can be called concurrently
// from multiple goroutines.
package middleware
