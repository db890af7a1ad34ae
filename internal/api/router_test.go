package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/symfx/internal/api/handlers"
	"github.com/wonny/symfx/internal/desk"
	"github.com/wonny/symfx/internal/external/backend"
	"github.com/wonny/symfx/internal/orders"
	"github.com/wonny/symfx/internal/preferences"
	"github.com/wonny/symfx/pkg/config"
	"github.com/wonny/symfx/pkg/httputil"
	"github.com/wonny/symfx/pkg/logger"
)

// fakeBackend records PUT /orders/{id} bodies and answers /auth/logout
type fakeBackend struct {
	mu      sync.Mutex
	updates []orders.Order
	cookies []*http.Cookie
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case r.Method == http.MethodPut && strings.HasPrefix(r.URL.Path, "/orders/"):
		var o orders.Order
		json.NewDecoder(r.Body).Decode(&o)
		f.updates = append(f.updates, o)
		w.WriteHeader(http.StatusOK)
	case r.URL.Path == "/auth/logout":
		f.cookies = r.Cookies()
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "", MaxAge: -1})
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeBackend) Updates() []orders.Order {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]orders.Order(nil), f.updates...)
}

type testDesk struct {
	router  http.Handler
	svc     *desk.Service
	prefs   preferences.Store
	backend *fakeBackend
}

func newTestDesk(t *testing.T) *testDesk {
	t.Helper()

	fb := &fakeBackend{}
	backendServer := httptest.NewServer(fb)
	t.Cleanup(backendServer.Close)

	cfg := &config.Config{
		Backend: config.BackendConfig{
			BaseURL:        backendServer.URL,
			OrdersWSURL:    "ws://127.0.0.1:1/unused",
			ReconnectDelay: time.Second,
			SubmitTimeout:  time.Second,
		},
		Desk: config.DeskConfig{
			ActivePageSize:  1,
			HistoryPageSize: 10,
			HistoryStates:   []string{"accepted", "cancelled"},
			UserName:        "trader",
		},
	}
	log := logger.Nop()

	client := backend.NewClient(httputil.New(cfg, log).DisableRetry(), cfg.Backend.BaseURL, log)
	svc, err := desk.NewService(cfg, orders.NewStore(log), client, log)
	require.NoError(t, err)
	svc.Store().Seed(desk.SeedOrders(time.Now()))
	t.Cleanup(svc.Close)

	prefs := preferences.NewMemoryStore()
	pages, err := handlers.NewPagesHandler(svc, prefs, cfg.Desk.UserName, log)
	require.NoError(t, err)

	router := NewRouter(Handlers{
		Health:      handlers.NewHealthHandler(svc, func() int { return 0 }, nil),
		Orders:      handlers.NewOrdersHandler(svc, log),
		Preferences: handlers.NewPreferencesHandler(prefs, cfg.Desk.UserName, log),
		Auth:        handlers.NewAuthHandler(client, log),
		Pages:       pages,
	}, nil, log)

	return &testDesk{router: router, svc: svc, prefs: prefs, backend: fb}
}

func (d *testDesk) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	d.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func document(t *testing.T, rec *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	return doc
}

func TestHealth(t *testing.T) {
	d := newTestDesk(t)

	rec := d.do(t, "GET", "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	decode(t, rec, &body)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "symfx-desk", body["service"])
	assert.Equal(t, false, body["feed_connected"])
}

func TestGetView_PaginatesActive(t *testing.T) {
	d := newTestDesk(t)

	rec := d.do(t, "GET", "/api/orders/active?page=2", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var page desk.PageView
	decode(t, rec, &page)
	assert.Equal(t, 2, page.CurrentPage)
	assert.Equal(t, 2, page.TotalPages)
	assert.True(t, page.HasPrev)
	assert.False(t, page.HasNext)
	require.Len(t, page.Rows, 1)
}

func TestGetView_Errors(t *testing.T) {
	d := newTestDesk(t)

	assert.Equal(t, http.StatusNotFound, d.do(t, "GET", "/api/orders/pending", "").Code)
	assert.Equal(t, http.StatusBadRequest, d.do(t, "GET", "/api/orders/active?page=two", "").Code)
}

func TestRateEditThenBlurSubmitsFullRecord(t *testing.T) {
	d := newTestDesk(t)

	rec := d.do(t, "PUT", "/api/orders/D4F23E64/rate", `{"rate":"1.25"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var edited orders.Order
	decode(t, rec, &edited)
	assert.Equal(t, "1.2500", edited.ExchangeRate)
	assert.Equal(t, "1250.00", edited.BuyAmount)
	assert.Equal(t, orders.StateWorking, edited.State)

	// nothing leaves the desk before blur
	assert.Empty(t, d.backend.Updates())

	rec = d.do(t, "POST", "/api/orders/D4F23E64/blur", "")
	require.Equal(t, http.StatusAccepted, rec.Code)

	d.svc.Editor().Wait()
	updates := d.backend.Updates()
	require.Len(t, updates, 1)
	assert.Equal(t, "D4F23E64", updates[0].QuoteID)
	assert.Equal(t, "EUR/USD", updates[0].CurrencyPair)
	assert.Equal(t, "1.2500", updates[0].ExchangeRate)
	assert.Equal(t, "1250.00", updates[0].BuyAmount)
	assert.Equal(t, orders.StateWorking, updates[0].State)
}

func TestBlurWithoutEdit(t *testing.T) {
	d := newTestDesk(t)

	rec := d.do(t, "POST", "/api/orders/D4F23E64/blur", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, d.backend.Updates())
}

func TestChangeRate_Errors(t *testing.T) {
	d := newTestDesk(t)

	assert.Equal(t, http.StatusNotFound, d.do(t, "PUT", "/api/orders/NOPE/rate", `{"rate":"1.1"}`).Code)
	assert.Equal(t, http.StatusBadRequest, d.do(t, "PUT", "/api/orders/D4F23E64/rate", `{"rate":1.1}`).Code)
	assert.Equal(t, http.StatusBadRequest, d.do(t, "PUT", "/api/orders/D4F23E64/rate", `{"rate":"1.1","extra":true}`).Code)
}

func TestChangeRate_GarbageBecomesZero(t *testing.T) {
	d := newTestDesk(t)

	rec := d.do(t, "PUT", "/api/orders/B1A23E54/rate", `{"rate":"abc"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var edited orders.Order
	decode(t, rec, &edited)
	assert.Equal(t, "0.0000", edited.ExchangeRate)
	assert.Equal(t, "0.00", edited.BuyAmount)
}

func TestTheme(t *testing.T) {
	d := newTestDesk(t)

	var resp handlers.ThemeResponse
	decode(t, d.do(t, "GET", "/api/theme", ""), &resp)
	assert.Equal(t, preferences.ThemeLight, resp.Theme)

	rec := d.do(t, "POST", "/api/theme/toggle", "")
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &resp)
	assert.Equal(t, preferences.ThemeDark, resp.Theme)

	rec = d.do(t, "PUT", "/api/theme", `{"theme":"light"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &resp)
	assert.Equal(t, preferences.ThemeLight, resp.Theme)
}

func TestPutTheme_Validation(t *testing.T) {
	d := newTestDesk(t)

	rec := d.do(t, "PUT", "/api/theme", `{"theme":"sepia"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	decode(t, rec, &body)
	assert.Equal(t, "theme must be one of: light dark", body["error"])

	rec = d.do(t, "PUT", "/api/theme", `{}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	decode(t, rec, &body)
	assert.Equal(t, "theme is required", body["error"])
}

func TestLayout(t *testing.T) {
	d := newTestDesk(t)

	var layout preferences.Layout
	rec := d.do(t, "GET", "/api/layout", "")
	decode(t, rec, &layout)
	assert.Equal(t, preferences.DefaultLayout(), layout)
	assert.Equal(t, `"`+preferences.DefaultLayout().Fingerprint()+`"`, rec.Header().Get("ETag"))

	rec = d.do(t, "PUT", "/api/layout", `{"panels":[{"i":"panel1","title":"Market Overview","x":0,"y":0,"w":12,"h":2}]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &layout)
	assert.Equal(t, preferences.GridColumns, layout.Cols)
	require.Len(t, layout.Panels, 1)
	assert.Equal(t, 12, layout.Panels[0].W)

	// overflows the 12-column grid
	rec = d.do(t, "PUT", "/api/layout", `{"panels":[{"i":"p","title":"P","x":10,"y":0,"w":4,"h":2}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTicker_FollowsTheme(t *testing.T) {
	d := newTestDesk(t)
	d.do(t, "POST", "/api/theme/toggle", "")

	var ticker map[string]interface{}
	decode(t, d.do(t, "GET", "/api/widgets/ticker", ""), &ticker)
	assert.Equal(t, "dark", ticker["colorTheme"])
}

func TestLogout_ForwardsCookiesAndRedirects(t *testing.T) {
	d := newTestDesk(t)

	req := httptest.NewRequest("POST", "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: "abc"})
	rec := httptest.NewRecorder()
	d.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, handlers.LoginPath, rec.Header().Get("Location"))
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "session=")

	d.backend.mu.Lock()
	defer d.backend.mu.Unlock()
	require.Len(t, d.backend.cookies, 1)
	assert.Equal(t, "abc", d.backend.cookies[0].Value)
}

func TestDashboardPage(t *testing.T) {
	d := newTestDesk(t)

	doc := document(t, d.do(t, "GET", "/?active=1&history=1", ""))

	assert.Equal(t, "trader", doc.Find("#user-name").Text())
	assert.Equal(t, "light", doc.Find("#theme-toggle").AttrOr("data-theme", ""))
	assert.Equal(t, 1, doc.Find("#active-orders tbody tr").Length())
	assert.Equal(t, 0, doc.Find("#history-orders tbody tr").Length())
	assert.Equal(t, "Page 1 of 2", doc.Find("#active-orders .page-label").Text())
	assert.Equal(t, "/?active=2&history=1", doc.Find("#active-orders a.next").AttrOr("href", ""))
	assert.Equal(t, 0, doc.Find("#active-orders a.prev").Length())
	assert.Equal(t, 1, doc.Find("#active-orders input.rate").Length())
	assert.Equal(t, 1, doc.Find("#chat iframe").Length())
	assert.Equal(t, 1, doc.Find("form[action='/auth/logout']").Length())
}

func TestDashboardPage_ClampsPage(t *testing.T) {
	d := newTestDesk(t)

	doc := document(t, d.do(t, "GET", "/?active=99", ""))
	assert.Equal(t, "Page 2 of 2", doc.Find("#active-orders .page-label").Text())
}

func TestDashboardPage_WorkingRowLinksChat(t *testing.T) {
	d := newTestDesk(t)
	d.svc.Store().Apply([]orders.Order{{
		QuoteID:   "D4F23E64",
		State:     orders.StateWorking,
		RoomID:    "room 1",
		CreatedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}})

	doc := document(t, d.do(t, "GET", "/", ""))
	link := doc.Find("#active-orders tr[data-quote='D4F23E64'] a.chat-link")
	require.Equal(t, 1, link.Length())
	assert.Contains(t, link.AttrOr("href", ""), "room+1")
}

func TestTradingLayoutPage(t *testing.T) {
	d := newTestDesk(t)

	doc := document(t, d.do(t, "GET", "/trading-layout", ""))
	panels := doc.Find("#layout .panel")
	require.Equal(t, 3, panels.Length())
	assert.Equal(t, "panel2", panels.Eq(1).AttrOr("id", ""))
	assert.Equal(t, "Order Book", strings.TrimSpace(panels.Eq(1).Find("h3").Text()))
	assert.Contains(t, panels.Eq(1).AttrOr("style", ""), "grid-column: 5 / span 4")
	assert.Contains(t, doc.Find("#layout").AttrOr("style", ""), "repeat(12")
}

func TestLoginPage(t *testing.T) {
	d := newTestDesk(t)

	doc := document(t, d.do(t, "GET", "/login", ""))
	assert.Equal(t, "Signed out", strings.TrimSpace(doc.Find("#login h1").Text()))
}

func TestCORS(t *testing.T) {
	d := newTestDesk(t)
	router := NewRouter(Handlers{
		Health:      handlers.NewHealthHandler(d.svc, nil, nil),
		Orders:      handlers.NewOrdersHandler(d.svc, logger.Nop()),
		Preferences: handlers.NewPreferencesHandler(d.prefs, "trader", logger.Nop()),
		Auth:        handlers.NewAuthHandler(backend.NewClient(httputil.New(&config.Config{}, logger.Nop()), "http://127.0.0.1:1", logger.Nop()), logger.Nop()),
		Pages:       mustPages(t, d),
	}, []string{"http://localhost:3000"}, logger.Nop())

	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func mustPages(t *testing.T, d *testDesk) *handlers.PagesHandler {
	t.Helper()
	pages, err := handlers.NewPagesHandler(d.svc, d.prefs, "trader", logger.Nop())
	require.NoError(t, err)
	return pages
}

func TestRecoveryMiddleware(t *testing.T) {
	h := recoveryMiddleware(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
