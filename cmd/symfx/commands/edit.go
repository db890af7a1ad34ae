package commands

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/symfx/internal/orders"
)

// editCmd represents the edit command
var editCmd = &cobra.Command{
	Use:   "edit <quoteId> <rate>",
	Short: "주문 환율 수정 후 전송",
	Long: `실행 중인 데스크에서 주문의 환율을 수정하고 백엔드로 전송합니다.
buyAmount = round2(sellAmount × rate), 상태는 working.

Example:
  go run ./cmd/symfx edit D4F23E64 1.2500`,
	Args: cobra.ExactArgs(2),
	RunE: runEdit,
}

func init() {
	rootCmd.AddCommand(editCmd)
}

func runEdit(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	client := newDeskClient(cfg, log, deskAddr)
	quoteID, rate := args[0], args[1]
	path := "/api/orders/" + url.PathEscape(quoteID)

	ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
	defer cancel()

	var edited orders.Order
	if _, err := client.call(ctx, http.MethodPut, path+"/rate", map[string]string{"rate": rate}, &edited); err != nil {
		PrintError(err.Error())
		return err
	}

	PrintKeyValue("Quote", edited.QuoteID, 8)
	PrintKeyValue("Rate", edited.ExchangeRate, 8)
	PrintKeyValue("Buy", edited.BuyAmount+" "+edited.BuyCurrency, 8)
	PrintKeyValue("State", string(edited.State), 8)

	status, err := client.call(ctx, http.MethodPost, path+"/blur", nil, nil)
	if err != nil {
		PrintError(err.Error())
		return err
	}
	if status == http.StatusNoContent {
		PrintWarning("Nothing to submit")
		return nil
	}

	PrintSuccess(fmt.Sprintf("Submitted %s", edited.QuoteID))
	return nil
}
