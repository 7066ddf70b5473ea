// Package jupiter is the REST client for the Jupiter v6 swap aggregator. It
// implements domain.QuoteSource: pricing a conversion between two mints and
// building the unsigned transaction that executes a priced route.
package jupiter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"solarb/internal/domain"
)

// maxErrorBody caps how much of an error response body is echoed into errors.
const maxErrorBody = 1024

// Client is the REST client for the Jupiter quote API.
type Client struct {
	host       string
	httpClient *http.Client
}

// NewClient creates a Jupiter client for the given API root, e.g.
// "https://quote-api.jup.ag". A non-positive timeout falls back to 10 seconds.
func NewClient(host string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		host: strings.TrimRight(host, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// GetQuote prices the conversion of amount base units of inputMint into
// outputMint. A route-less pair yields domain.ErrNoRoute; transport and
// decode problems are plain errors.
func (c *Client) GetQuote(ctx context.Context, inputMint, outputMint string, amount uint64, slippageBps int) (*domain.Quote, error) {
	params := url.Values{}
	params.Set("inputMint", inputMint)
	params.Set("outputMint", outputMint)
	params.Set("amount", strconv.FormatUint(amount, 10))
	params.Set("slippageBps", strconv.Itoa(slippageBps))

	reqURL := c.host + "/v6/quote?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("jupiter: create quote request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("jupiter: quote request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("jupiter: read quote response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if isNoRoute(body) {
			return nil, fmt.Errorf("jupiter: %s -> %s: %w", inputMint, outputMint, domain.ErrNoRoute)
		}
		return nil, fmt.Errorf("jupiter: quote status %d: %s", resp.StatusCode, truncate(body))
	}

	var qr quoteResponse
	if err := json.Unmarshal(body, &qr); err != nil {
		return nil, fmt.Errorf("jupiter: decode quote: %w", err)
	}
	if qr.OutAmount == "" {
		return nil, fmt.Errorf("jupiter: quote missing outAmount")
	}

	inAmt, err := strconv.ParseUint(qr.InAmount, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("jupiter: parse inAmount %q: %w", qr.InAmount, err)
	}
	outAmt, err := strconv.ParseUint(qr.OutAmount, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("jupiter: parse outAmount %q: %w", qr.OutAmount, err)
	}

	impact := 0.0
	if qr.PriceImpactPct != "" {
		// Best effort: the field is informational only.
		impact, _ = strconv.ParseFloat(qr.PriceImpactPct, 64)
	}

	return &domain.Quote{
		InputMint:      qr.InputMint,
		InAmount:       inAmt,
		OutputMint:     qr.OutputMint,
		OutAmount:      outAmt,
		SlippageBps:    qr.SlippageBps,
		PriceImpactPct: impact,
		Raw:            json.RawMessage(body),
	}, nil
}

// GetSwapTransaction builds the unsigned swap transaction for the given quote
// and returns it base64-encoded.
func (c *Client) GetSwapTransaction(ctx context.Context, quote *domain.Quote, userPublicKey string) (string, error) {
	if len(quote.Raw) == 0 {
		return "", fmt.Errorf("jupiter: quote has no route payload")
	}

	reqBody, err := json.Marshal(swapRequest{
		QuoteResponse:    quote.Raw,
		UserPublicKey:    userPublicKey,
		WrapAndUnwrapSol: true,
	})
	if err != nil {
		return "", fmt.Errorf("jupiter: marshal swap request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/v6/swap", bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("jupiter: create swap request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("jupiter: swap request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("jupiter: read swap response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("jupiter: swap status %d: %s", resp.StatusCode, truncate(body))
	}

	var sr swapResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return "", fmt.Errorf("jupiter: decode swap response: %w", err)
	}
	if sr.SwapTransaction == "" {
		return "", fmt.Errorf("jupiter: swap response missing transaction")
	}

	return sr.SwapTransaction, nil
}

// isNoRoute reports whether an error body is the aggregator's explicit
// "no route found" answer rather than a transport-level problem.
func isNoRoute(body []byte) bool {
	var er errorResponse
	if err := json.Unmarshal(body, &er); err != nil {
		return false
	}
	if strings.EqualFold(er.ErrorCode, "COULD_NOT_FIND_ANY_ROUTE") {
		return true
	}
	return strings.Contains(strings.ToLower(er.Error), "no route")
}

func truncate(body []byte) string {
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	return string(body)
}

// Compile-time interface check.
var _ domain.QuoteSource = (*Client)(nil)
