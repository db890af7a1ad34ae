package widgets

import (
	"net/url"
	"strings"

	"github.com/wonny/symfx/internal/orders"
	"github.com/wonny/symfx/internal/preferences"
)

const (
	// TickerScriptURL is the TradingView embed loaded by the dashboard
	TickerScriptURL = "https://s3.tradingview.com/external-embedding/embed-widget-ticker-tape.js"

	// ChatEmbedURL is the Symphony panel shown beside the tables
	ChatEmbedURL = "https://preview.symphony.com/"
)

// Symbol is one ticker-tape entry
type Symbol struct {
	ProName string `json:"proName"`
	Title   string `json:"title"`
}

// TickerConfig is passed verbatim to the TradingView script
type TickerConfig struct {
	Symbols        []Symbol `json:"symbols"`
	ShowSymbolLogo bool     `json:"showSymbolLogo"`
	IsTransparent  bool     `json:"isTransparent"`
	DisplayMode    string   `json:"displayMode"`
	ColorTheme     string   `json:"colorTheme"`
	Locale         string   `json:"locale"`
}

var tickerSymbols = []Symbol{
	{ProName: "FOREXCOM:SPXUSD", Title: "S&P 500 Index"},
	{ProName: "FOREXCOM:NSXUSD", Title: "US 100 Cash CFD"},
	{ProName: "FOREXCOM:AUDJPY", Title: "AUD to JPY"},
	{ProName: "FOREXCOM:EURUSD", Title: "EUR to USD"},
	{ProName: "FOREXCOM:GBPUSD", Title: "GBP to USD"},
	{ProName: "FOREXCOM:GBPJPY", Title: "GBP to JPY"},
	{ProName: "FOREXCOM:HKDJPY", Title: "HKD to JPY"},
	{ProName: "FOREXCOM:USDCAD", Title: "USD to CAD"},
	{ProName: "FOREXCOM:USDCHF", Title: "USD to CHF"},
	{ProName: "PEPPERSTONE:USDINR", Title: "USD to INR"},
	{ProName: "FOREXCOM:USDJPY", Title: "USD to JPY"},
	{ProName: "BITSTAMP:BTCUSD", Title: "Bitcoin"},
	{ProName: "BITSTAMP:ETHUSD", Title: "Ethereum"},
}

// Ticker builds the ticker-tape config; its colours follow theme
func Ticker(theme preferences.Theme) TickerConfig {
	color := "light"
	if theme == preferences.ThemeDark {
		color = "dark"
	}

	return TickerConfig{
		Symbols:        append([]Symbol(nil), tickerSymbols...),
		ShowSymbolLogo: true,
		IsTransparent:  true,
		DisplayMode:    "compact",
		ColorTheme:     color,
		Locale:         "en",
	}
}

// ChatURL is where the badge of a working order points. Empty when the
// order has no room.
func ChatURL(roomID string) string {
	if roomID == "" {
		return ""
	}
	return ChatEmbedURL + "?room_id=" + url.QueryEscape(roomID)
}

// BadgeClass returns the badge styling for state as shown in view
func BadgeClass(view string, state orders.State) string {
	if view == orders.ViewHistory {
		switch state {
		case orders.StateAccepted:
			return "bg-blue-500 text-white"
		case orders.StateCancelled:
			return "bg-red-500 text-white"
		}
		return "bg-gray-500 text-white"
	}

	switch state {
	case orders.StateNew:
		return "bg-green-500 text-white"
	case orders.StateWorking:
		return "bg-yellow-500 text-white animate-pulse"
	case orders.StateAccepted:
		return "bg-blue-500 text-white"
	case orders.StateCompleted:
		return "bg-purple-500 text-white"
	}
	return "bg-gray-500 text-white"
}

// BadgeLabel is the upper-cased state
func BadgeLabel(state orders.State) string {
	return strings.ToUpper(string(state))
}
