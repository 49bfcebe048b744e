package upstream

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
)

// BalanceUnavailable is the placeholder reported whenever the account
// balance cannot be fetched. The client UI renders it verbatim.
const BalanceUnavailable = "-"

// billingPath is the credit grants endpoint relative to the API base URL.
const billingPath = "/dashboard/billing/credit_grants"

// creditGrants is the payload of the billing credit grants endpoint.
type creditGrants struct {
	TotalGranted   float64 `json:"total_granted"`
	TotalUsed      float64 `json:"total_used"`
	TotalAvailable float64 `json:"total_available"`
}

// BalanceClient fetches the remaining account credit. Failures never
// propagate: every degraded path yields the placeholder so the /config
// snapshot stays renderable.
type BalanceClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewBalanceClient creates a balance fetcher against the billing endpoint
// derived from baseURL. An empty apiKey disables fetching entirely.
func NewBalanceClient(baseURL, apiKey string, httpClient *http.Client, logger *slog.Logger) *BalanceClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &BalanceClient{
		baseURL:    billingBaseURL(baseURL),
		apiKey:     apiKey,
		httpClient: httpClient,
		logger:     logger.With("component", "upstream.balance"),
	}
}

// Fetch returns the remaining credit formatted to three decimals, or the
// placeholder. With no API key configured it returns immediately without a
// network call.
func (b *BalanceClient) Fetch(ctx context.Context) string {
	if b.apiKey == "" {
		return BalanceUnavailable
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+billingPath, nil)
	if err != nil {
		b.logger.Debug("balance request build failed", "error", err)
		return BalanceUnavailable
	}
	req.Header.Set("Authorization", "Bearer "+b.apiKey)

	resp, err := b.httpClient.Do(req)
	if err != nil {
		b.logger.Debug("balance fetch failed", "error", err)
		return BalanceUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b.logger.Debug("balance fetch rejected", "status", resp.StatusCode)
		return BalanceUnavailable
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
	if err != nil {
		b.logger.Debug("balance read failed", "error", err)
		return BalanceUnavailable
	}

	var grants creditGrants
	if err := json.Unmarshal(raw, &grants); err != nil {
		b.logger.Debug("balance response parse failed",
			"error", &ParseError{Mode: ModeChatAPI, RawResponse: string(raw), Cause: err})
		return BalanceUnavailable
	}

	return strconv.FormatFloat(grants.TotalAvailable, 'f', 3, 64)
}
