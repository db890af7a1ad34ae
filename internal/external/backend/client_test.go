package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/symfx/internal/orders"
	"github.com/wonny/symfx/pkg/config"
	"github.com/wonny/symfx/pkg/httputil"
	"github.com/wonny/symfx/pkg/logger"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{Backend: config.BackendConfig{SubmitTimeout: time.Second}}
	hc := httputil.New(cfg, logger.Nop()).DisableRetry()
	return NewClient(hc, server.URL+"/", logger.Nop()), server
}

func TestUpdateOrder_SendsFullRecord(t *testing.T) {
	var got orders.Order
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/orders/D4F23E64", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	})

	o := orders.Order{
		QuoteID:      "D4F23E64",
		CurrencyPair: "EUR/USD",
		SellAmount:   "1000.00",
		ExchangeRate: "1.2500",
		BuyAmount:    "1250.00",
		State:        orders.StateWorking,
	}
	require.NoError(t, client.UpdateOrder(context.Background(), o))

	assert.Equal(t, o, got)
}

func TestUpdateOrder_EscapesQuoteID(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders/a%2Fb", r.URL.EscapedPath())
		w.WriteHeader(http.StatusNoContent)
	})

	assert.NoError(t, client.UpdateOrder(context.Background(), orders.Order{QuoteID: "a/b"}))
}

func TestUpdateOrder_RejectedNotRetried(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("quote expired"))
	})

	err := client.UpdateOrder(context.Background(), orders.Order{QuoteID: "Q1"})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRejected)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusServiceUnavailable, se.StatusCode)
	assert.Equal(t, "quote expired", se.Body)
	assert.Equal(t, int32(1), calls.Load())
}

func TestUpdateOrder_EmptyQuoteID(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	assert.ErrorIs(t, client.UpdateOrder(context.Background(), orders.Order{}), orders.ErrNotFound)
}

func TestLogout_ForwardsCookies(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/auth/logout", r.URL.Path)
		if ck, err := r.Cookie("session"); assert.NoError(t, err) {
			assert.Equal(t, "abc", ck.Value)
		}

		http.SetCookie(w, &http.Cookie{Name: "session", Value: "", MaxAge: -1})
		w.WriteHeader(http.StatusOK)
	})

	cookies, err := client.Logout(context.Background(), []*http.Cookie{{Name: "session", Value: "abc"}})

	require.NoError(t, err)
	require.Len(t, cookies, 1)
	assert.Equal(t, "session", cookies[0].Name)
}

func TestLogout_KeepsCookiesFromRedirect(t *testing.T) {
	var paths []string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if r.URL.Path != "/auth/logout" {
			w.WriteHeader(http.StatusOK)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "", MaxAge: -1})
		http.Redirect(w, r, "/login", http.StatusFound)
	})

	cookies, err := client.Logout(context.Background(), []*http.Cookie{{Name: "session", Value: "abc"}})

	require.NoError(t, err)
	assert.Equal(t, []string{"/auth/logout"}, paths)
	require.Len(t, cookies, 1)
	assert.Equal(t, "session", cookies[0].Name)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestLogout_Failure(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.Logout(context.Background(), nil)
	assert.ErrorIs(t, err, ErrRejected)
}

func TestNewClient_TrimsSlash(t *testing.T) {
	c := NewClient(nil, "http://backend:8080///", logger.Nop())
	assert.Equal(t, "http://backend:8080", c.BaseURL())
}
