package handlers

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"github.com/wonny/symfx/internal/desk"
	"github.com/wonny/symfx/internal/orders"
	"github.com/wonny/symfx/internal/preferences"
	"github.com/wonny/symfx/internal/widgets"
	"github.com/wonny/symfx/pkg/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

// PagesHandler renders the server-side HTML pages
type PagesHandler struct {
	svc    *desk.Service
	prefs  preferences.Store
	user   string
	pages  map[string]*template.Template
	logger *logger.Logger
}

// NewPagesHandler parses the embedded templates
func NewPagesHandler(svc *desk.Service, prefs preferences.Store, user string, log *logger.Logger) (*PagesHandler, error) {
	pages := make(map[string]*template.Template)
	for _, name := range []string{"dashboard", "trading_layout", "login"} {
		tmpl, err := template.ParseFS(templateFS, "templates/base.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		pages[name] = tmpl
	}

	return &PagesHandler{
		svc:    svc,
		prefs:  prefs,
		user:   user,
		pages:  pages,
		logger: log,
	}, nil
}

type pageData struct {
	Title string
	Theme preferences.Theme
	User  string
}

type tableData struct {
	desk.PageView
	PrevHref string
	NextHref string
}

type dashboardData struct {
	pageData
	Active       tableData
	History      tableData
	Ticker       widgets.TickerConfig
	TickerScript string
	ChatURL      string
}

type panelData struct {
	preferences.Panel
	Style template.CSS
}

type layoutData struct {
	pageData
	GridStyle template.CSS
	CardBg    string
	Panels    []panelData
}

// Dashboard renders both order tables, the ticker and chat
// GET /?active=N&history=N
func (h *PagesHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	base := h.base(r, "Dashboard")

	activePage := queryInt(r, "active", 1)
	historyPage := queryInt(r, "history", 1)
	views := h.svc.Views(activePage, historyPage)

	data := dashboardData{
		pageData:     base,
		Ticker:       widgets.Ticker(base.Theme),
		TickerScript: widgets.TickerScriptURL,
		ChatURL:      widgets.ChatEmbedURL,
		Active: tableData{
			PageView: views.Active,
			PrevHref: pageHref(views.Active.CurrentPage-1, views.History.CurrentPage),
			NextHref: pageHref(views.Active.CurrentPage+1, views.History.CurrentPage),
		},
		History: tableData{
			PageView: views.History,
			PrevHref: pageHref(views.Active.CurrentPage, views.History.CurrentPage-1),
			NextHref: pageHref(views.Active.CurrentPage, views.History.CurrentPage+1),
		},
	}

	h.render(w, "dashboard", data)
}

// TradingLayout renders the saved panel grid
// GET /trading-layout
func (h *PagesHandler) TradingLayout(w http.ResponseWriter, r *http.Request) {
	base := h.base(r, "Trading Layout")

	layout, err := h.prefs.Layout(r.Context(), h.user)
	if err != nil {
		h.logger.WithError(err).Error("Failed to read layout")
		http.Error(w, "Failed to read layout", http.StatusInternalServerError)
		return
	}

	data := layoutData{
		pageData: base,
		GridStyle: template.CSS(fmt.Sprintf(
			"grid-template-columns: repeat(%d, minmax(0, 1fr)); grid-auto-rows: %dpx",
			layout.Cols, layout.RowHeight,
		)),
		CardBg: "bg-white",
	}
	if base.Theme == preferences.ThemeDark {
		data.CardBg = "bg-gray-800"
	}
	for _, p := range layout.Panels {
		data.Panels = append(data.Panels, panelData{
			Panel: p,
			Style: template.CSS(fmt.Sprintf(
				"grid-column: %d / span %d; grid-row: %d / span %d",
				p.X+1, p.W, p.Y+1, p.H,
			)),
		})
	}

	h.render(w, "trading_layout", data)
}

// Login is where logout lands
// GET /login
func (h *PagesHandler) Login(w http.ResponseWriter, r *http.Request) {
	base := h.base(r, "Login")
	h.render(w, "login", base)
}

func (h *PagesHandler) base(r *http.Request, title string) pageData {
	theme, err := h.prefs.Theme(r.Context(), h.user)
	if err != nil {
		h.logger.WithError(err).Warn("Falling back to default theme")
		theme = preferences.DefaultTheme
	}
	return pageData{Title: title, Theme: theme, User: h.user}
}

// render buffers so a template error never sends a half page
func (h *PagesHandler) render(w http.ResponseWriter, name string, data interface{}) {
	var buf bytes.Buffer
	if err := h.pages[name].ExecuteTemplate(&buf, "base", data); err != nil {
		h.logger.WithError(err).WithField("page", name).Error("Failed to render page")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

func queryInt(r *http.Request, key string, def int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return def
	}
	return n
}

func pageHref(active, history int) string {
	q := url.Values{}
	q.Set(orders.ViewActive, strconv.Itoa(active))
	q.Set(orders.ViewHistory, strconv.Itoa(history))
	return "/?" + q.Encode()
}
