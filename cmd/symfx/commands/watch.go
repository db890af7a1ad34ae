package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/symfx/internal/desk"
	"github.com/wonny/symfx/internal/orders"
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "주문 피드 터미널 모니터",
	Long: `백엔드 주문 피드에 직접 연결하여 신규/이력 주문 표를 출력합니다.
피드가 끊기면 5초 후 재연결합니다.

Example:
  go run ./cmd/symfx watch
  go run ./cmd/symfx watch --active-page 2`,
	RunE: runWatch,
}

var (
	watchActivePage  int
	watchHistoryPage int
	watchSeed        bool
)

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().IntVar(&watchActivePage, "active-page", 1, "신규 주문 페이지")
	watchCmd.Flags().IntVar(&watchHistoryPage, "history-page", 1, "이력 주문 페이지")
	watchCmd.Flags().BoolVar(&watchSeed, "seed", false, "샘플 주문으로 시작")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	// watch only reads; nothing is ever submitted
	cfg.Desk.SeedOrders = watchSeed

	svc, err := desk.NewService(cfg, orders.NewStore(log), readOnly{}, log.Component("watch"))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	PrintDoubleSeparator()
	fmt.Fprintf(out, "  Order feed : %s\n", cfg.Backend.OrdersWSURL)
	PrintDoubleSeparator()

	redraw := func(orders.Change) {
		views := svc.Views(watchActivePage, watchHistoryPage)
		fmt.Fprintf(out, "\n[%s] seq=%d connected=%v\n", time.Now().Format("15:04:05"), views.Seq, views.Connected)
		PrintOrders("New Orders", views.Active)
		PrintOrders("Order History", views.History)
	}

	go svc.Watch(ctx, redraw)
	svc.Start(ctx)
	defer svc.Close()

	<-ctx.Done()
	fmt.Fprintln(out)
	PrintSuccess("Stopped watching")
	return nil
}

// readOnly refuses submits
type readOnly struct{}

func (readOnly) UpdateOrder(ctx context.Context, o orders.Order) error {
	return fmt.Errorf("watch is read-only")
}
