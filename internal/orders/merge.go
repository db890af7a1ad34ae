package orders

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// envelope is the feed message shape: either "order" or "orders"
type envelope struct {
	Order  json.RawMessage `json:"order"`
	Orders json.RawMessage `json:"orders"`
}

// Normalize decodes a feed payload into a list of orders.
//
// Accepted shapes are {"order":{...}}, {"orders":{...}} and {"orders":[...]}.
// When both keys are present "orders" wins. Records without a quoteId are dropped.
func Normalize(payload []byte) ([]Order, error) {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	var raw json.RawMessage
	switch {
	case present(env.Orders):
		raw = env.Orders
	case present(env.Order):
		raw = env.Order
	default:
		return nil, ErrNoOrders
	}

	raw = bytes.TrimSpace(raw)
	var list []Order
	switch raw[0] {
	case '[':
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	case '{':
		var single Order
		if err := json.Unmarshal(raw, &single); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		list = []Order{single}
	default:
		return nil, ErrNoOrders
	}

	out := list[:0]
	for _, o := range list {
		if o.QuoteID != "" {
			out = append(out, o)
		}
	}
	return out, nil
}

func present(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// Merge applies incoming records to current by quoteId and returns a new slice.
// Known keys are replaced in place; unseen keys are inserted at the front, the
// last unseen record of the batch ending up first. current is not modified.
func Merge(current []Order, incoming []Order) []Order {
	rest := make([]Order, len(current))
	copy(rest, current)

	type slot struct {
		front bool
		idx   int
	}
	index := make(map[string]slot, len(rest)+len(incoming))
	for i, o := range rest {
		index[o.QuoteID] = slot{idx: i}
	}

	var front []Order
	for _, in := range incoming {
		if s, ok := index[in.QuoteID]; ok {
			if s.front {
				front[s.idx] = in
			} else {
				rest[s.idx] = in
			}
			continue
		}
		index[in.QuoteID] = slot{front: true, idx: len(front)}
		front = append(front, in)
	}

	out := make([]Order, 0, len(front)+len(rest))
	for i := len(front) - 1; i >= 0; i-- {
		out = append(out, front[i])
	}
	return append(out, rest...)
}
