package desk

import (
	"time"

	"github.com/wonny/symfx/internal/orders"
)

// SeedOrders returns the two sample quotes a demo desk starts with
func SeedOrders(now time.Time) []orders.Order {
	ts := func(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

	valueDate := ts(now.Add(24 * time.Hour))
	createdAt := ts(now.Add(-60 * time.Second))
	expiresAt := ts(now.Add(60 * time.Second))

	return []orders.Order{
		{
			QuoteID:      "D4F23E64",
			ValueDate:    valueDate,
			CurrencyPair: "EUR/USD",
			ExchangeRate: "1.2140",
			SellCurrency: "EUR",
			SellAmount:   "1000.00",
			BuyCurrency:  "USD",
			BuyAmount:    "1214.02",
			CreatedAt:    createdAt,
			ExpiresAt:    expiresAt,
			State:        orders.StateNew,
		},
		{
			QuoteID:      "B1A23E54",
			ValueDate:    valueDate,
			CurrencyPair: "GBP/USD",
			ExchangeRate: "1.3890",
			SellCurrency: "GBP",
			SellAmount:   "500.00",
			BuyCurrency:  "USD",
			BuyAmount:    "694.51",
			CreatedAt:    createdAt,
			ExpiresAt:    expiresAt,
			State:        orders.StateNew,
		},
	}
}
