package desk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/wonny/symfx/internal/metrics"
	"github.com/wonny/symfx/internal/orders"
	"github.com/wonny/symfx/internal/realtime/feed"
	"github.com/wonny/symfx/internal/realtime/hub"
	"github.com/wonny/symfx/internal/widgets"
	"github.com/wonny/symfx/pkg/config"
	"github.com/wonny/symfx/pkg/logger"
)

// FreshFor is how long a newly seen quote is highlighted
const FreshFor = 8 * time.Second

// Row is an order as a table shows it
type Row struct {
	orders.Order
	Fresh   bool         `json:"fresh"`
	Pending bool         `json:"pending"` // local edit awaiting the backend
	Phase   orders.Phase `json:"phase"`
	Badge   string       `json:"badge"`
	Label   string       `json:"label"`
	ChatURL string       `json:"chatUrl,omitempty"`
}

// PageView is one page of a view, decorated for display
type PageView struct {
	View        string `json:"view"`
	Rows        []Row  `json:"rows"`
	CurrentPage int    `json:"currentPage"`
	TotalPages  int    `json:"totalPages"`
	PageSize    int    `json:"pageSize"`
	Total       int    `json:"total"`
	HasPrev     bool   `json:"hasPrev"`
	HasNext     bool   `json:"hasNext"`
}

// ViewsMessage is what browsers receive over /ws
type ViewsMessage struct {
	Type      string   `json:"type"`
	Seq       uint64   `json:"seq"`
	Connected bool     `json:"connected"`
	Active    PageView `json:"active"`
	History   PageView `json:"history"`
}

// Service owns the one feed connection, the one store and the editor.
// Views are derived on demand from the store snapshot.
// ⭐ SSOT: 피드 → 스토어 → 뷰 흐름은 이 서비스에서만 조립
type Service struct {
	store   *orders.Store
	feed    *feed.OrderFeed
	editor  *Editor
	active  orders.View
	history orders.View
	seed    bool

	now    func() time.Time
	logger *logger.Logger
}

// Option customises a Service
type Option func(*serviceOptions)

type serviceOptions struct {
	feedOpts []feed.Option
	now      func() time.Time
}

// WithFeedOptions passes options through to the order feed
func WithFeedOptions(opts ...feed.Option) Option {
	return func(o *serviceOptions) {
		o.feedOpts = append(o.feedOpts, opts...)
	}
}

// WithClock replaces time.Now for freshness checks
func WithClock(now func() time.Time) Option {
	return func(o *serviceOptions) {
		o.now = now
	}
}

// NewService wires the store, feed and editor from cfg
func NewService(cfg *config.Config, store *orders.Store, submitter Submitter, log *logger.Logger, opts ...Option) (*Service, error) {
	states, err := orders.ParseStates(cfg.Desk.HistoryStates)
	if err != nil {
		return nil, fmt.Errorf("history states: %w", err)
	}

	so := serviceOptions{now: time.Now}
	for _, opt := range opts {
		opt(&so)
	}

	s := &Service{
		store:   store,
		editor:  NewEditor(store, submitter, cfg.Backend.SubmitTimeout, log),
		active:  orders.ActiveView(cfg.Desk.ActivePageSize),
		history: orders.HistoryView(cfg.Desk.HistoryPageSize, states...),
		seed:    cfg.Desk.SeedOrders,
		now:     so.now,
		logger:  log.Component("desk"),
	}

	feedOpts := append([]feed.Option{feed.WithReconnectDelay(cfg.Backend.ReconnectDelay)}, so.feedOpts...)
	s.feed = feed.NewOrderFeed(cfg.Backend.OrdersWSURL, s.HandleEvent, log, feedOpts...)

	return s, nil
}

// Store returns the shared order store
func (s *Service) Store() *orders.Store {
	return s.store
}

// Editor returns the rate editor
func (s *Service) Editor() *Editor {
	return s.editor
}

// Connected reports the feed status
func (s *Service) Connected() bool {
	return s.feed.Connected()
}

// Stats summarises the store
func (s *Service) Stats() orders.Stats {
	return s.store.Stats()
}

// Start seeds the store if configured and opens the feed
func (s *Service) Start(ctx context.Context) {
	if s.seed {
		s.store.Seed(SeedOrders(s.now()))
		s.logger.Info("Seeded sample orders")
	}
	s.feed.Start(ctx)
}

// Close tears down the feed and waits for in-flight submits
func (s *Service) Close() {
	s.feed.Close()
	s.editor.Wait()
}

// HandleEvent is the feed handler: messages are merged in arrival order
func (s *Service) HandleEvent(ev feed.Event) {
	switch ev.Type {
	case feed.EventConnected:
		s.logger.Info("Order feed up")
	case feed.EventDisconnected:
		s.logger.Debug("Order feed down")
	case feed.EventMessage:
		n, err := s.store.ApplyPayload(ev.Payload)
		switch {
		case errors.Is(err, orders.ErrNoOrders):
			metrics.FeedMessages.WithLabelValues("dropped").Inc()
			s.logger.Debug("Feed message carried no orders")
		case err != nil:
			metrics.FeedMessages.WithLabelValues("malformed").Inc()
			s.logger.WithError(err).Warn("Dropping order feed message")
		default:
			metrics.FeedMessages.WithLabelValues("merged").Inc()
			s.logger.WithField("orders", n).Debug("Merged order update")
		}
	}
}

// Watch calls onChange after every store change until ctx ends
func (s *Service) Watch(ctx context.Context, onChange func(orders.Change)) {
	changes, cancel := s.store.Subscribe(1)
	defer cancel()

	s.recordStats()
	for {
		select {
		case <-ctx.Done():
			return
		case ch, ok := <-changes:
			if !ok {
				return
			}
			s.recordStats()
			if onChange != nil {
				onChange(ch)
			}
		}
	}
}

func (s *Service) recordStats() {
	st := s.store.Stats()
	for _, state := range []orders.State{orders.StateNew, orders.StateWorking, orders.StateAccepted, orders.StateCompleted, orders.StateCancelled} {
		metrics.StoreOrders.WithLabelValues(string(state)).Set(float64(st.ByState[state]))
	}
	metrics.StoreOverrides.Set(float64(st.Overrides))
}

// Page derives one page of the named view
func (s *Service) Page(view string, page int) (PageView, error) {
	v, err := s.view(view)
	if err != nil {
		return PageView{}, err
	}
	return s.decorate(v.Page(s.store.Snapshot(), page)), nil
}

// Views derives both views from a single snapshot
func (s *Service) Views(activePage, historyPage int) ViewsMessage {
	seq := s.store.Seq()
	snapshot := s.store.Snapshot()
	return ViewsMessage{
		Type:      "views",
		Seq:       seq,
		Connected: s.feed.Connected(),
		Active:    s.decorate(s.active.Page(snapshot, activePage)),
		History:   s.decorate(s.history.Page(snapshot, historyPage)),
	}
}

// RenderViews encodes Views for a hub client
func (s *Service) RenderViews(p hub.Pages) ([]byte, error) {
	return json.Marshal(s.Views(p.Active, p.History))
}

// ErrUnknownView is returned for view names other than active and history
var ErrUnknownView = errors.New("unknown view")

func (s *Service) view(name string) (orders.View, error) {
	switch name {
	case orders.ViewActive:
		return s.active, nil
	case orders.ViewHistory:
		return s.history, nil
	}
	return orders.View{}, fmt.Errorf("%w: %q", ErrUnknownView, name)
}

func (s *Service) decorate(p orders.Page) PageView {
	now := s.now()
	rows := make([]Row, 0, len(p.Orders))
	for _, o := range p.Orders {
		row := Row{
			Order:   o,
			Pending: s.store.HasOverride(o.QuoteID),
			Phase:   s.editor.Phase(o.QuoteID),
			Badge:   widgets.BadgeClass(p.View, o.State),
			Label:   widgets.BadgeLabel(o.State),
		}
		if seen, ok := s.store.FirstSeen(o.QuoteID); ok && now.Sub(seen) < FreshFor {
			row.Fresh = true
		}
		if o.State == orders.StateWorking {
			row.ChatURL = widgets.ChatURL(o.RoomID)
		}
		rows = append(rows, row)
	}

	return PageView{
		View:        p.View,
		Rows:        rows,
		CurrentPage: p.CurrentPage,
		TotalPages:  p.TotalPages,
		PageSize:    p.PageSize,
		Total:       p.Total,
		HasPrev:     p.HasPrev,
		HasNext:     p.HasNext,
	}
}
