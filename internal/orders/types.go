package orders

import (
	"errors"
	"time"
)

// State is the lifecycle state of a quote request
type State string

const (
	StateNew       State = "new"
	StateWorking   State = "working"
	StateAccepted  State = "accepted"
	StateCompleted State = "completed"
	StateCancelled State = "cancelled"
)

// Valid reports whether s is one of the known states
func (s State) Valid() bool {
	switch s {
	case StateNew, StateWorking, StateAccepted, StateCompleted, StateCancelled:
		return true
	}
	return false
}

// ParseStates converts raw state names, rejecting unknown ones
func ParseStates(names []string) ([]State, error) {
	out := make([]State, 0, len(names))
	for _, name := range names {
		s := State(name)
		if !s.Valid() {
			return nil, errors.New("unknown order state: " + name)
		}
		out = append(out, s)
	}
	return out, nil
}

var (
	ErrNotFound  = errors.New("order not found")
	ErrMalformed = errors.New("malformed order payload")
	ErrNoOrders  = errors.New("payload carries neither order nor orders")
)

// Order is a single FX quote request as broadcast by the backend.
// Amounts and the rate stay as text so display precision survives the round trip.
// ⭐ SSOT: 주문 레코드 구조는 여기서만 정의
type Order struct {
	QuoteID      string `json:"quoteId"`
	ValueDate    string `json:"valueDate"`
	CurrencyPair string `json:"currencyPair"`
	ExchangeRate string `json:"exchangeRate"`
	SellCurrency string `json:"sellCurrency"`
	SellAmount   string `json:"sellAmount"`
	BuyCurrency  string `json:"buyCurrency"`
	BuyAmount    string `json:"buyAmount"`
	CreatedAt    string `json:"createdAt"`
	ExpiresAt    string `json:"expiresAt"`
	State        State  `json:"state"`
	RoomID       string `json:"room_id,omitempty"`
}

// CreatedTime parses CreatedAt; unparsable values sort as the zero time
func (o Order) CreatedTime() time.Time {
	return parseTimestamp(o.CreatedAt)
}

// ExpiresTime parses ExpiresAt
func (o Order) ExpiresTime() time.Time {
	return parseTimestamp(o.ExpiresAt)
}

// ValueTime parses ValueDate
func (o Order) ValueTime() time.Time {
	return parseTimestamp(o.ValueDate)
}

// IsActive reports whether the order is still awaiting a decision
func (o Order) IsActive() bool {
	return o.State == StateNew || o.State == StateWorking
}

func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
