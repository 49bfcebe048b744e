package upstream

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"lattice-hq/hermes/pkg/config"
)

const (
	// conversationAction requests the next reply turn from the upstream.
	conversationAction = "next"

	// contentTypeText is the only content type the relay sends or renders.
	contentTypeText = "text"

	// errorBodyLimit caps how much of a failed response body is read for
	// the passthrough error message.
	errorBodyLimit = 8 * 1024

	// Conversation events carry the whole cumulative reply, so lines can
	// exceed bufio.Scanner's default token limit.
	scanBufferInitial = 64 * 1024
	scanBufferMax     = 1024 * 1024
)

// conversationRequest is the JSON body posted to the reverse proxy.
type conversationRequest struct {
	Action          string                `json:"action"`
	Messages        []conversationMessage `json:"messages"`
	Model           string                `json:"model"`
	ParentMessageID string                `json:"parent_message_id"`
	ConversationID  string                `json:"conversation_id,omitempty"`
}

// conversationMessage is one outbound message in conversation-API format.
type conversationMessage struct {
	ID      string              `json:"id"`
	Author  conversationAuthor  `json:"author"`
	Content conversationContent `json:"content"`
}

type conversationAuthor struct {
	Role string `json:"role"`
}

type conversationContent struct {
	ContentType string   `json:"content_type"`
	Parts       []string `json:"parts"`
}

// conversationEvent is one SSE data payload from the reverse proxy. Message
// carries the cumulative assistant reply; Error is non-null when the
// upstream reports a failure in-band.
type conversationEvent struct {
	ConversationID string                    `json:"conversation_id"`
	Message        *conversationEventMessage `json:"message"`
	Error          json.RawMessage           `json:"error"`
}

type conversationEventMessage struct {
	ID      string              `json:"id"`
	Author  conversationAuthor  `json:"author"`
	Content conversationContent `json:"content"`
}

// ProxyClient is the access-token variant. It posts conversation-API
// requests to a reverse proxy endpoint and parses the SSE reply stream.
type ProxyClient struct {
	cfg        config.UpstreamConfig
	httpClient *http.Client
	transport  *http.Transport
	logger     *slog.Logger
}

// NewProxyClient creates the access-token variant on the given transport.
func NewProxyClient(cfg config.UpstreamConfig, transport *http.Transport, logger *slog.Logger) (*ProxyClient, error) {
	if cfg.AccessToken == "" {
		return nil, errors.New("proxy client requires an access token")
	}
	if cfg.ReverseProxyURL == "" {
		return nil, errors.New("proxy client requires a reverse proxy URL")
	}
	if logger == nil {
		logger = slog.Default()
	}

	c := &ProxyClient{
		cfg:        cfg,
		httpClient: &http.Client{Transport: transport},
		transport:  transport,
		logger:     logger.With("component", "upstream.proxy"),
	}

	c.logger.Info("upstream client initialized",
		"mode", ModeReverseProxy,
		"model", cfg.Model,
		"reverse_proxy", cfg.ReverseProxyURL,
	)
	return c, nil
}

// Mode returns the ReverseProxy variant label.
func (c *ProxyClient) Mode() Mode {
	return ModeReverseProxy
}

// timeout is the per-exchange deadline, tracking reloaded configuration.
func (c *ProxyClient) timeout() time.Duration {
	return liveTimeout(c.cfg.Timeout)
}

// Model returns the model identifier sent upstream.
func (c *ProxyClient) Model() string {
	return c.cfg.Model
}

// StreamChat posts the prompt to the reverse proxy and parses the SSE reply
// stream. Conversation continuation identifiers from the request are passed
// through verbatim; the ones on the replies come from the upstream.
func (c *ProxyClient) StreamChat(ctx context.Context, req *Request) (<-chan *Reply, error) {
	userMessageID := uuid.New().String()

	parentID := req.ParentMessageID
	if parentID == "" {
		parentID = uuid.New().String()
	}

	body, err := json.Marshal(&conversationRequest{
		Action: conversationAction,
		Messages: []conversationMessage{{
			ID:     userMessageID,
			Author: conversationAuthor{Role: RoleUser},
			Content: conversationContent{
				ContentType: contentTypeText,
				Parts:       []string{req.Prompt},
			},
		}},
		Model:           c.cfg.Model,
		ParentMessageID: parentID,
		ConversationID:  req.ConversationID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal conversation request: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout())

	httpReq, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.cfg.ReverseProxyURL, bytes.NewReader(body))
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create conversation request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		cancel()
		return nil, c.normalizeError(err)
	}

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		resp.Body.Close()
		cancel()
		return nil, NewStatusError(ModeReverseProxy, resp.StatusCode, strings.TrimSpace(string(errBody)), nil)
	}

	replies := make(chan *Reply, replyBuffer)
	go func() {
		defer close(replies)
		defer cancel()
		defer resp.Body.Close()
		c.consumeStream(resp.Body, userMessageID, req.ConversationID, replies)
	}()

	return replies, nil
}

// consumeStream reads SSE lines until the terminator, deriving deltas from
// the cumulative reply text each event carries.
func (c *ProxyClient) consumeStream(body io.Reader, userMessageID, conversationID string, replies chan<- *Reply) {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, scanBufferInitial), scanBufferMax)

	var (
		replyID = uuid.New().String()
		text    string
	)

	final := func() *Reply {
		return &Reply{
			ID:              replyID,
			Text:            text,
			Role:            RoleAssistant,
			ConversationID:  conversationID,
			ParentMessageID: userMessageID,
			FinishReason:    FinishReasonStop,
		}
	}

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		data := strings.TrimPrefix(line, "data: ")

		if data == "[DONE]" {
			replies <- final()
			return
		}

		var event conversationEvent
		if err := json.Unmarshal([]byte(data), &event); err != nil {
			// The conversation stream interleaves non-JSON payloads such
			// as moderation pings; skip them.
			c.logger.Debug("skipping unparseable stream payload", "error", err)
			continue
		}

		if len(event.Error) > 0 && !bytes.Equal(event.Error, []byte("null")) {
			replies <- &Reply{Error: &StreamError{
				Mode:    ModeReverseProxy,
				Message: strings.Trim(string(event.Error), `"`),
			}}
			return
		}

		if event.ConversationID != "" {
			conversationID = event.ConversationID
		}

		msg := event.Message
		if msg == nil {
			continue
		}
		if msg.Author.Role != "" && msg.Author.Role != RoleAssistant {
			continue
		}
		if msg.ID != "" {
			replyID = msg.ID
		}
		if len(msg.Content.Parts) == 0 {
			continue
		}

		current := msg.Content.Parts[0]
		if current == "" || current == text {
			continue
		}
		delta := current
		if strings.HasPrefix(current, text) {
			delta = current[len(text):]
		}
		text = current

		replies <- &Reply{
			ID:              replyID,
			Text:            text,
			Delta:           delta,
			Role:            RoleAssistant,
			ConversationID:  conversationID,
			ParentMessageID: userMessageID,
		}
	}

	if err := scanner.Err(); err != nil {
		normalized := c.normalizeError(err)
		c.logger.Error("upstream stream failed",
			"error", normalized,
			"mode", ModeReverseProxy,
		)
		replies <- &Reply{Error: normalized}
		return
	}

	// Stream ended without a terminator; report what was received.
	replies <- final()
}

// Balance always reports the placeholder: the billing endpoint needs an API
// key and this variant has none.
func (c *ProxyClient) Balance(ctx context.Context) string {
	return BalanceUnavailable
}

// Probe verifies the reverse proxy is reachable. Any response below 500
// counts as reachable.
func (c *ProxyClient) Probe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.cfg.ReverseProxyURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create probe request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.normalizeError(err)
	}
	resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return NewStatusError(ModeReverseProxy, resp.StatusCode, "", nil)
	}
	return nil
}

// Close releases idle connections.
func (c *ProxyClient) Close() error {
	c.transport.CloseIdleConnections()
	return nil
}

// normalizeError maps transport failures onto the upstream error taxonomy.
func (c *ProxyClient) normalizeError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Mode: ModeReverseProxy, Timeout: c.timeout()}
	}
	if errors.Is(err, context.Canceled) {
		return &StreamError{Mode: ModeReverseProxy, Message: "exchange aborted", Cause: err}
	}
	return &StreamError{Mode: ModeReverseProxy, Message: "exchange failed", Cause: err}
}
