package commands

import (
	"bytes"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wonny/symfx/internal/desk"
	"github.com/wonny/symfx/internal/orders"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := out
	out = &buf
	t.Cleanup(func() { out = prev })
	return &buf
}

func TestPrintOrders(t *testing.T) {
	buf := captureOutput(t)

	PrintOrders("New Orders", desk.PageView{
		CurrentPage: 1,
		TotalPages:  2,
		Total:       3,
		Rows: []desk.Row{{
			Order: orders.Order{
				QuoteID:      "D4F23E64",
				CurrencyPair: "EUR/USD",
				SellAmount:   "1000.00",
				SellCurrency: "EUR",
				ExchangeRate: "1.2500",
				BuyAmount:    "1250.00",
				BuyCurrency:  "USD",
			},
			Label:   "WORKING",
			Pending: true,
		}},
	})

	text := buf.String()
	assert.Contains(t, text, "New Orders  (page 1 of 2, 3 orders)")
	assert.Contains(t, text, "D4F23E64")
	assert.Contains(t, text, "WORKING*")
	assert.Contains(t, text, "1250.00 USD")
}

func TestPrintOrders_Empty(t *testing.T) {
	buf := captureOutput(t)

	PrintOrders("Order History", desk.PageView{CurrentPage: 1, TotalPages: 1})
	assert.Contains(t, buf.String(), "(none)")
}

func TestPrintTableRow_Truncates(t *testing.T) {
	buf := captureOutput(t)

	PrintTableRow([]string{"abcdefghij", "x"}, []int{4, 2})
	assert.Equal(t, "abc…  x", strings.TrimSpace(buf.String()))
}

func TestOriginAllowed(t *testing.T) {
	check := originAllowed([]string{"http://localhost:3000"})

	req := httptest.NewRequest("GET", "http://desk.local/ws", nil)
	assert.True(t, check(req), "no Origin header")

	req.Header.Set("Origin", "http://localhost:3000")
	assert.True(t, check(req))

	req.Header.Set("Origin", "http://desk.local")
	assert.True(t, check(req), "same origin")

	req.Header.Set("Origin", "http://evil.example")
	assert.False(t, check(req))
}

func TestClock(t *testing.T) {
	assert.Equal(t, "garbage", clock("garbage"))
	assert.Len(t, clock("2024-01-01T10:00:00Z"), 8)
}
