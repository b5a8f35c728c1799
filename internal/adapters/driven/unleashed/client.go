package unleashed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/unleashed-sync/internal/core/domain"
	"github.com/custodia-labs/unleashed-sync/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.SalesClient = (*Client)(nil)

const (
	// DefaultBaseURL is the production API host.
	DefaultBaseURL = "https://api.unleashedsoftware.com"

	// DefaultTimeout bounds a single page request.
	DefaultTimeout = 60 * time.Second

	// maxErrorBody caps how much of an error response is kept.
	maxErrorBody = 4096
)

// APIError is returned for any non-2xx response.
type APIError struct {
	StatusCode int
	Path       string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("unleashed API error %d on %s: %s", e.StatusCode, e.Path, e.Body)
}

// Config holds client settings.
type Config struct {
	BaseURL    string
	APIID      string
	APIKey     string
	ClientType string  // Optional: sent as the client-type header
	PageSize   int     // Default: 1000, the server maximum
	RateLimit  float64 // Requests per second; 0 disables throttling
	Timeout    time.Duration
	HTTPClient *http.Client // Optional: overrides Timeout
}

// Client fetches credit notes and invoices one page at a time.
// Requests are never retried; callers see the first failure.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiID      string
	clientType string
	pageSize   int
	signer     *Signer
	limiter    *rate.Limiter
}

// NewClient creates a new API client.
func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = domain.DefaultPageSize
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiID:      cfg.APIID,
		clientType: cfg.ClientType,
		pageSize:   pageSize,
		signer:     NewSigner(cfg.APIKey),
		limiter:    limiter,
	}
}

// PageSize returns the number of headers requested per page.
func (c *Client) PageSize() int {
	return c.pageSize
}

// CreditNotes fetches one page of credit notes.
func (c *Client) CreditNotes(ctx context.Context, page int) ([]domain.CreditNote, error) {
	items, err := getPage[creditNoteDTO](ctx, c, domain.ResourceCreditNotes, page, c.pageSize)
	if err != nil {
		return nil, err
	}
	notes := make([]domain.CreditNote, len(items))
	for i, dto := range items {
		notes[i] = dto.toDomain()
	}
	return notes, nil
}

// Invoices fetches one page of invoices.
func (c *Client) Invoices(ctx context.Context, page int) ([]domain.Invoice, error) {
	items, err := getPage[invoiceDTO](ctx, c, domain.ResourceInvoices, page, c.pageSize)
	if err != nil {
		return nil, err
	}
	invoices := make([]domain.Invoice, len(items))
	for i, dto := range items {
		invoices[i] = dto.toDomain()
	}
	return invoices, nil
}

// Ping requests a single credit note to verify the base URL and credentials.
func (c *Client) Ping(ctx context.Context) error {
	_, err := getPage[json.RawMessage](ctx, c, domain.ResourceCreditNotes, 1, 1)
	return err
}

func getPage[T any](ctx context.Context, c *Client, res domain.Resource, page, pageSize int) ([]T, error) {
	if page < 1 {
		return nil, fmt.Errorf("%w: page %d", domain.ErrInvalidInput, page)
	}

	path := string(res) + "/" + strconv.Itoa(page)
	query := url.Values{"pageSize": {strconv.Itoa(pageSize)}}.Encode()

	body, err := c.get(ctx, path, query)
	if err != nil {
		return nil, err
	}

	var resp listResponse[T]
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode %s page %d: %w", res, page, err)
	}
	if resp.Items == nil {
		return nil, fmt.Errorf("%w: %s page %d has no Items", domain.ErrMalformedResponse, res, page)
	}
	return *resp.Items, nil
}

// get performs a signed GET and returns the response body.
func (c *Client) get(ctx context.Context, path, query string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	target := c.baseURL + "/" + path
	if query != "" {
		target += "?" + query
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("api-auth-id", c.apiID)
	req.Header.Set("api-auth-signature", c.signer.Sign(query))
	if c.clientType != "" {
		req.Header.Set("client-type", c.clientType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Path:       path,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return body, nil
}
