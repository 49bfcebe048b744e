// Package relay provides the HTTP relay server between a chat web client and
// the OpenAI upstream.
//
// The relay is the network-facing layer of the service. It accepts the four
// JSON endpoints the SPA front-end calls, performs secret-key authentication,
// forwards chat prompts to the configured upstream client, and streams reply
// chunks back over a newline-delimited protocol.
//
// # Architecture
//
// The relay follows a middleware-based architecture with clean separation of
// concerns:
//
//   - Handlers: Endpoint processing (chat-process, config, session, verify)
//   - Middleware: Cross-cutting concerns (recovery, logging, request ID, CORS, auth)
//   - Types: Wire request/response data structures shared with the front-end
//
// # Endpoints
//
// Every endpoint is a POST and is mounted both at the root and under /api:
//
//   - POST /chat-process - Stream a reply to a prompt as JSON lines
//   - POST /config - Runtime configuration snapshot with account balance
//   - POST /session - Authentication requirement and active mode
//   - POST /verify - Secret-key verification for the login form
//
// # Streaming Protocol
//
// POST /chat-process responds with Content-Type application/octet-stream and
// writes one JSON chunk per reply update, separated by newlines:
//
//	{"ok":{"id":"...","text":"Hel","delta":"Hel","role":"assistant"}}
//	{"ok":{"id":"...","text":"Hello","delta":"lo","role":"assistant"}}
//
// The headers commit before the upstream call, so the HTTP status is always
// 200 and any later failure arrives as an in-band chunk:
//
//	{"error":"[OpenAI] 错误的网关 | Bad Gateway"}
//
// # Basic Usage
//
// Parsing a request and streaming the reply:
//
//	relay.SetStreamHeaders(w)
//	stream := relay.NewStreamWriter(w)
//
//	req, err := relay.ParseChatProcessRequest(r)
//	if err != nil {
//	    stream.WriteError(relay.ErrorText(err))
//	    return
//	}
//
//	replies, err := client.StreamChat(r.Context(), toChatRequest(req))
//	if err != nil {
//	    stream.WriteError(relay.ErrorText(err))
//	    return
//	}
//	for reply := range replies {
//	    stream.WriteMessage(relay.FormatChatMessage(reply))
//	}
//
// # Error Handling
//
// Non-streaming endpoints reply with the envelope the front-end expects:
//
//	{
//	  "status": "Success" | "Fail" | "Unauthorized",
//	  "message": "...",
//	  "data": ...
//	}
//
// Upstream failures are translated to user-facing text by ErrorText, which
// maps well-known HTTP statuses to the bilingual messages the front-end
// displays verbatim.
//
// # Thread Safety
//
// Handlers and parsers are stateless and safe for concurrent use. A
// StreamWriter belongs to a single request and must not be shared across
// goroutines.
package relay
