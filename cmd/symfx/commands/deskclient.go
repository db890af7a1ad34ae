package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/wonny/symfx/pkg/config"
	"github.com/wonny/symfx/pkg/httputil"
	"github.com/wonny/symfx/pkg/logger"
)

// deskClient talks to a running gateway's JSON API
type deskClient struct {
	http *httputil.Client
	base string
}

func newDeskClient(cfg *config.Config, log *logger.Logger, addr string) *deskClient {
	return &deskClient{
		http: httputil.New(cfg, log).DisableRetry(),
		base: strings.TrimRight(addr, "/"),
	}
}

// call sends body (if any) and decodes a 2xx JSON answer into dst (if any)
func (c *deskClient) call(ctx context.Context, method, path string, body, dst interface{}) (int, error) {
	var (
		resp *http.Response
		err  error
	)
	switch {
	case body != nil && method == http.MethodPut:
		resp, err = c.http.PutJSON(ctx, c.base+path, body)
	case body != nil:
		resp, err = c.http.PostJSON(ctx, c.base+path, body)
	default:
		var req *http.Request
		req, err = http.NewRequestWithContext(ctx, method, c.base+path, nil)
		if err != nil {
			return 0, err
		}
		resp, err = c.http.Do(req)
	}
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if !httputil.IsSuccess(resp.StatusCode) {
		var apiErr struct {
			Error string `json:"error"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
			return resp.StatusCode, fmt.Errorf("%s %s: %d %s", method, path, resp.StatusCode, apiErr.Error)
		}
		return resp.StatusCode, fmt.Errorf("%s %s: %d", method, path, resp.StatusCode)
	}

	if dst != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
			return resp.StatusCode, fmt.Errorf("decode %s: %w", path, err)
		}
	}
	return resp.StatusCode, nil
}
