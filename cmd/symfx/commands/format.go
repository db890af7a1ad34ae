package commands

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/wonny/symfx/internal/desk"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

var out io.Writer = os.Stdout

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator() {
	fmt.Fprintln(out, "═══════════════════════════════════════════════════════════")
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Fprintf(out, "✅ %s\n", message)
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Fprintf(out, "❌ %s\n", message)
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Fprintf(out, "⚠️  %s\n", message)
}

// PrintKeyValue prints key-value pairs
func PrintKeyValue(key string, value string, keyWidth int) {
	fmt.Fprintf(out, "   %-*s : %s\n", keyWidth, key, value)
}

// PrintTableHeader prints a table header and its rule
func PrintTableHeader(columns []string, widths []int) {
	PrintTableRow(columns, widths)

	total := 0
	for i, width := range widths {
		total += width
		if i < len(widths)-1 {
			total += 2
		}
	}
	fmt.Fprintln(out, strings.Repeat("─", total))
}

// PrintTableRow prints a table row, truncating to the column widths
func PrintTableRow(values []string, widths []int) {
	cells := make([]string, len(values))
	for i, val := range values {
		if len([]rune(val)) > widths[i] {
			val = string([]rune(val)[:widths[i]-1]) + "…"
		}
		cells[i] = fmt.Sprintf("%-*s", widths[i], val)
	}
	fmt.Fprintln(out, strings.TrimRight(strings.Join(cells, "  "), " "))
}

var orderColumns = []string{"QUOTE", "PAIR", "SELL", "RATE", "BUY", "STATE", "CREATED", "EXPIRES"}
var orderWidths = []int{10, 8, 14, 8, 14, 10, 8, 8}

// PrintOrders prints one page of a view as a table
func PrintOrders(title string, page desk.PageView) {
	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s  (page %d of %d, %d orders)\n", title, page.CurrentPage, page.TotalPages, page.Total)
	PrintTableHeader(orderColumns, orderWidths)

	if len(page.Rows) == 0 {
		fmt.Fprintln(out, "   (none)")
		return
	}
	for _, row := range page.Rows {
		state := row.Label
		if row.Pending {
			state += "*"
		}
		PrintTableRow([]string{
			row.QuoteID,
			row.CurrencyPair,
			row.SellAmount + " " + row.SellCurrency,
			row.ExchangeRate,
			row.BuyAmount + " " + row.BuyCurrency,
			state,
			clock(row.CreatedAt),
			clock(row.ExpiresAt),
		}, orderWidths)
	}
}

// clock shows an RFC 3339 timestamp as local HH:MM:SS
func clock(ts string) string {
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return ts
	}
	return t.Local().Format("15:04:05")
}
