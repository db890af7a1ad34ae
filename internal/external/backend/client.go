package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/wonny/symfx/internal/orders"
	"github.com/wonny/symfx/pkg/httputil"
	"github.com/wonny/symfx/pkg/logger"
)

// ErrRejected wraps every non-2xx answer from the backend
var ErrRejected = errors.New("backend rejected request")

// StatusError carries the backend's answer to a failed call
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error {
	return ErrRejected
}

// maxErrorBody bounds how much of a failed response is kept
const maxErrorBody = 512

// Client talks to the trading backend's REST surface
// ⭐ SSOT: 백엔드 REST 호출(주문 수정, 로그아웃)은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a backend client rooted at baseURL
func NewClient(httpClient *httputil.Client, baseURL string, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log.Component("backend"),
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// BaseURL returns the backend root
func (c *Client) BaseURL() string {
	return c.baseURL
}

// UpdateOrder sends the full edited record to PUT /orders/{quoteId}.
// The backend answers the edit by broadcasting over the order feed.
func (c *Client) UpdateOrder(ctx context.Context, o orders.Order) error {
	if o.QuoteID == "" {
		return fmt.Errorf("update order: %w", orders.ErrNotFound)
	}

	endpoint := fmt.Sprintf("%s/orders/%s", c.baseURL, url.PathEscape(o.QuoteID))
	resp, err := c.httpClient.PutJSON(ctx, endpoint, o)
	if err != nil {
		return fmt.Errorf("update order %s: %w", o.QuoteID, err)
	}
	defer resp.Body.Close()

	if !httputil.IsSuccess(resp.StatusCode) {
		return statusError("update order "+o.QuoteID, resp)
	}

	io.Copy(io.Discard, resp.Body)
	c.logger.WithFields(map[string]interface{}{
		"quote_id": o.QuoteID,
		"rate":     o.ExchangeRate,
		"status":   resp.StatusCode,
	}).Info("Order update accepted by backend")
	return nil
}

// Logout calls GET /auth/logout forwarding the browser's cookies and
// returns whatever cookies the backend sets in reply.
func (c *Client) Logout(ctx context.Context, cookies []*http.Cookie) ([]*http.Cookie, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/logout", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create logout request: %w", err)
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}

	// a 302 to the login page carries the cookie-clearing Set-Cookie; keep it
	resp, err := c.httpClient.WithoutRedirects().Do(req)
	if err != nil {
		return nil, fmt.Errorf("logout: %w", err)
	}
	defer resp.Body.Close()

	if !httputil.IsSuccess(resp.StatusCode) && resp.StatusCode/100 != 3 {
		return nil, statusError("logout", resp)
	}

	io.Copy(io.Discard, resp.Body)
	return resp.Cookies(), nil
}

func statusError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{
		Op:         op,
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
	}
}
