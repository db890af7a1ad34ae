package orders

import (
	"sort"
	"sync"
	"time"

	"github.com/wonny/symfx/pkg/logger"
)

// Source tells subscribers what produced a change
type Source string

const (
	SourceSeed  Source = "seed"
	SourceFeed  Source = "feed"
	SourceLocal Source = "local"
)

// Change is a coalescing notification: receivers re-read the store
// rather than relying on the payload being complete.
type Change struct {
	Seq      uint64
	Source   Source
	QuoteIDs []string
}

// Override is a local edit layered over the authoritative record
type Override struct {
	Order Order
	SetAt time.Time
}

// Stats summarises the store for reporting
type Stats struct {
	Total     int           `json:"total"`
	ByState   map[State]int `json:"by_state"`
	Overrides int           `json:"overrides"`
	Seq       uint64        `json:"seq"`
}

// Store is the process-wide order collection shared by every view.
// ⭐ SSOT: 주문 상태는 이 스토어에서만 관리 (뷰별 복사본 없음)
type Store struct {
	mu        sync.RWMutex
	orders    []Order
	overrides map[string]Override
	firstSeen map[string]time.Time
	seq       uint64

	subsMu sync.Mutex
	subs   map[int]chan Change
	nextID int

	now    func() time.Time
	logger *logger.Logger
}

// NewStore creates an empty store
func NewStore(log *logger.Logger) *Store {
	return &Store{
		overrides: make(map[string]Override),
		firstSeen: make(map[string]time.Time),
		subs:      make(map[int]chan Change),
		now:       time.Now,
		logger:    log,
	}
}

// Seed loads startup records through the normal merge path
func (s *Store) Seed(records []Order) Change {
	return s.apply(records, SourceSeed)
}

// Apply merges backend records. Any local override for an incoming key is
// dropped because the backend's broadcast is authoritative.
func (s *Store) Apply(records []Order) Change {
	return s.apply(records, SourceFeed)
}

// ApplyPayload normalizes a raw feed message and merges it
func (s *Store) ApplyPayload(payload []byte) (int, error) {
	records, err := Normalize(payload)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, nil
	}
	s.Apply(records)
	return len(records), nil
}

func (s *Store) apply(records []Order, src Source) Change {
	if len(records) == 0 {
		return Change{Seq: s.Seq(), Source: src}
	}

	s.mu.Lock()
	now := s.now()
	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.QuoteID)
		if _, ok := s.firstSeen[r.QuoteID]; !ok {
			s.firstSeen[r.QuoteID] = now
		}
		if _, ok := s.overrides[r.QuoteID]; ok && src == SourceFeed {
			delete(s.overrides, r.QuoteID)
			s.logger.WithFields(map[string]interface{}{
				"quote_id": r.QuoteID,
				"state":    r.State,
			}).Debug("Backend update replaced local override")
		}
	}
	s.orders = Merge(s.orders, records)
	s.seq++
	ch := Change{Seq: s.seq, Source: src, QuoteIDs: ids}
	s.mu.Unlock()

	s.notify(ch)
	return ch
}

// SetOverride layers a local edit over an existing record
func (s *Store) SetOverride(o Order) (Change, error) {
	s.mu.Lock()
	if !s.hasLocked(o.QuoteID) {
		s.mu.Unlock()
		return Change{}, ErrNotFound
	}
	s.overrides[o.QuoteID] = Override{Order: o, SetAt: s.now()}
	s.seq++
	ch := Change{Seq: s.seq, Source: SourceLocal, QuoteIDs: []string{o.QuoteID}}
	s.mu.Unlock()

	s.notify(ch)
	return ch, nil
}

// ClearOverride removes a local edit, if any
func (s *Store) ClearOverride(quoteID string) bool {
	s.mu.Lock()
	if _, ok := s.overrides[quoteID]; !ok {
		s.mu.Unlock()
		return false
	}
	delete(s.overrides, quoteID)
	s.seq++
	ch := Change{Seq: s.seq, Source: SourceLocal, QuoteIDs: []string{quoteID}}
	s.mu.Unlock()

	s.notify(ch)
	return true
}

// StaleOverrides lists local edits older than maxAge, oldest first.
// They stay in place: only a backend record replaces an optimistic edit.
func (s *Store) StaleOverrides(maxAge time.Duration) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cutoff := s.now().Add(-maxAge)
	var stale []string
	for id, ov := range s.overrides {
		if ov.SetAt.Before(cutoff) {
			stale = append(stale, id)
		}
	}
	sort.Slice(stale, func(i, j int) bool {
		a, b := s.overrides[stale[i]].SetAt, s.overrides[stale[j]].SetAt
		if !a.Equal(b) {
			return a.Before(b)
		}
		return stale[i] < stale[j]
	})
	return stale
}

// Snapshot returns the effective collection in raw (merge) order
func (s *Store) Snapshot() []Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Order, len(s.orders))
	for i, o := range s.orders {
		if ov, ok := s.overrides[o.QuoteID]; ok {
			o = ov.Order
		}
		out[i] = o
	}
	return out
}

// Get returns the effective record for quoteID
func (s *Store) Get(quoteID string) (Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if ov, ok := s.overrides[quoteID]; ok {
		return ov.Order, true
	}
	for _, o := range s.orders {
		if o.QuoteID == quoteID {
			return o, true
		}
	}
	return Order{}, false
}

// Edited returns the local edit for quoteID, without falling back to the
// backend record
func (s *Store) Edited(quoteID string) (Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ov, ok := s.overrides[quoteID]
	return ov.Order, ok
}

// HasOverride reports whether a local edit is pending for quoteID
func (s *Store) HasOverride(quoteID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.overrides[quoteID]
	return ok
}

// FirstSeen returns when quoteID first entered the store
func (s *Store) FirstSeen(quoteID string) (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.firstSeen[quoteID]
	return t, ok
}

// Seq returns the current change sequence number
func (s *Store) Seq() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seq
}

// Stats counts effective records per state
func (s *Store) Stats() Stats {
	snapshot := s.Snapshot()

	s.mu.RLock()
	st := Stats{
		Total:     len(snapshot),
		ByState:   make(map[State]int),
		Overrides: len(s.overrides),
		Seq:       s.seq,
	}
	s.mu.RUnlock()

	for _, o := range snapshot {
		st.ByState[o.State]++
	}
	return st
}

// Subscribe registers a change listener. Notifications coalesce: when the
// buffer is full the send is skipped, the pending one already tells the
// receiver to re-read. The returned func unsubscribes and closes the channel.
func (s *Store) Subscribe(buffer int) (<-chan Change, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Change, buffer)

	s.subsMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.subsMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subsMu.Lock()
			delete(s.subs, id)
			s.subsMu.Unlock()
			close(ch)
		})
	}
}

func (s *Store) notify(ch Change) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	for _, sub := range s.subs {
		select {
		case sub <- ch:
		default:
		}
	}
}

func (s *Store) hasLocked(quoteID string) bool {
	for _, o := range s.orders {
		if o.QuoteID == quoteID {
			return true
		}
	}
	return false
}
