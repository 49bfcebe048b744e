package upstream

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"

	"lattice-hq/hermes/pkg/config"
)

// APIClient is the API-key variant. It relays prompts through the
// chat-completions API with streaming enabled and rebuilds multi-turn
// context from its own message store.
type APIClient struct {
	cfg       config.UpstreamConfig
	client    *openai.Client
	transport *http.Transport
	store     *messageStore
	balance   *BalanceClient
	logger    *slog.Logger
}

// NewAPIClient creates the API-key variant on the given transport.
func NewAPIClient(cfg config.UpstreamConfig, transport *http.Transport, logger *slog.Logger) (*APIClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("api client requires an API key")
	}
	if logger == nil {
		logger = slog.Default()
	}

	httpClient := &http.Client{Transport: transport}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = chatBaseURL(cfg.BaseURL)
	clientCfg.HTTPClient = httpClient

	c := &APIClient{
		cfg:       cfg,
		client:    openai.NewClientWithConfig(clientCfg),
		transport: transport,
		store:     newMessageStore(cfg.HistorySize),
		balance:   NewBalanceClient(cfg.BaseURL, cfg.APIKey, httpClient, logger),
		logger:    logger.With("component", "upstream.api"),
	}

	c.logger.Info("upstream client initialized",
		"mode", ModeChatAPI,
		"model", cfg.Model,
		"base_url", clientCfg.BaseURL,
	)
	return c, nil
}

// Mode returns the ChatAPI variant label.
func (c *APIClient) Mode() Mode {
	return ModeChatAPI
}

// timeout is the per-exchange deadline, tracking reloaded configuration.
func (c *APIClient) timeout() time.Duration {
	return liveTimeout(c.cfg.Timeout)
}

// Model returns the model identifier sent upstream.
func (c *APIClient) Model() string {
	return c.cfg.Model
}

// StreamChat sends the prompt with its reconstructed history upstream and
// streams the reply back. The exchange runs under the configured timeout in
// addition to any deadline already on ctx.
func (c *APIClient) StreamChat(ctx context.Context, req *Request) (<-chan *Reply, error) {
	userMessageID := uuid.New().String()
	replyID := uuid.New().String()

	apiReq := openai.ChatCompletionRequest{
		Model:     c.cfg.Model,
		Messages:  c.buildMessages(req),
		MaxTokens: c.cfg.MaxReplyTokens,
		Stream:    true,
	}
	apiReq.Temperature = c.cfg.Temperature
	if req.Temperature != nil {
		apiReq.Temperature = *req.Temperature
	}
	apiReq.TopP = c.cfg.TopP
	if req.TopP != nil {
		apiReq.TopP = *req.TopP
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout())

	stream, err := c.client.CreateChatCompletionStream(callCtx, apiReq)
	if err != nil {
		cancel()
		return nil, c.normalizeError(err)
	}

	replies := make(chan *Reply, replyBuffer)
	go func() {
		defer close(replies)
		defer cancel()
		defer stream.Close()

		var (
			text   string
			finish string
		)

		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				if finish == "" {
					finish = FinishReasonStop
				}
				replies <- &Reply{
					ID:              replyID,
					Text:            text,
					Role:            RoleAssistant,
					ParentMessageID: userMessageID,
					FinishReason:    finish,
				}

				c.store.add(storedMessage{
					ID:              userMessageID,
					Role:            RoleUser,
					Text:            req.Prompt,
					ParentMessageID: req.ParentMessageID,
				})
				c.store.add(storedMessage{
					ID:              replyID,
					Role:            RoleAssistant,
					Text:            text,
					ParentMessageID: userMessageID,
				})
				return
			}
			if err != nil {
				normalized := c.normalizeError(err)
				c.logger.Error("upstream stream failed",
					"error", normalized,
					"mode", ModeChatAPI,
				)
				replies <- &Reply{Error: normalized}
				return
			}

			if len(resp.Choices) == 0 {
				continue
			}
			choice := resp.Choices[0]
			if choice.FinishReason != "" {
				finish = string(choice.FinishReason)
			}
			if choice.Delta.Content == "" {
				continue
			}

			text += choice.Delta.Content
			replies <- &Reply{
				ID:              replyID,
				Text:            text,
				Delta:           choice.Delta.Content,
				Role:            RoleAssistant,
				ParentMessageID: userMessageID,
			}
		}
	}()

	return replies, nil
}

// buildMessages assembles [system?, history..., user] under the context
// window budget left after reserving room for the reply.
func (c *APIClient) buildMessages(req *Request) []openai.ChatCompletionMessage {
	system := req.SystemMessage
	if system == "" {
		system = c.cfg.SystemPrompt
	}

	budget := c.cfg.MaxModelTokens - c.cfg.MaxReplyTokens
	budget -= estimateTokens(system)
	budget -= estimateTokens(req.Prompt)

	history := c.store.history(req.ParentMessageID, budget)

	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	if system != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	for _, msg := range history {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Text,
		})
	}
	return append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})
}

// Balance reports the remaining account credit through the billing endpoint.
func (c *APIClient) Balance(ctx context.Context) string {
	return c.balance.Fetch(ctx)
}

// Probe verifies the chat-completions API is reachable by listing models.
// Any response below 500 counts as reachable, so a key rejected with 401
// still proves the endpoint is up.
func (c *APIClient) Probe(ctx context.Context) error {
	_, err := c.client.ListModels(ctx)
	if err == nil {
		return nil
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode > 0 && apiErr.HTTPStatusCode < http.StatusInternalServerError {
		return nil
	}
	return c.normalizeError(err)
}

// Close releases idle connections.
func (c *APIClient) Close() error {
	c.transport.CloseIdleConnections()
	return nil
}

// normalizeError maps client library failures onto the upstream error
// taxonomy, applying the fixed status message table where a status is known.
func (c *APIClient) normalizeError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return NewStatusError(ModeChatAPI, apiErr.HTTPStatusCode, apiErr.Message, err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return NewStatusError(ModeChatAPI, reqErr.HTTPStatusCode, reqErr.Error(), err)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Mode: ModeChatAPI, Timeout: c.timeout()}
	}
	if errors.Is(err, context.Canceled) {
		return &StreamError{Mode: ModeChatAPI, Message: "exchange aborted", Cause: err}
	}

	return &StreamError{Mode: ModeChatAPI, Message: "exchange failed", Cause: err}
}
