package commands

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/symfx/internal/api"
	"github.com/wonny/symfx/internal/api/handlers"
	"github.com/wonny/symfx/internal/desk"
	"github.com/wonny/symfx/internal/external/backend"
	"github.com/wonny/symfx/internal/orders"
	"github.com/wonny/symfx/internal/preferences"
	"github.com/wonny/symfx/internal/realtime/hub"
	"github.com/wonny/symfx/internal/scheduler"
	"github.com/wonny/symfx/internal/scheduler/jobs"
	"github.com/wonny/symfx/pkg/database"
	"github.com/wonny/symfx/pkg/httputil"
	"github.com/wonny/symfx/pkg/redis"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "데스크 게이트웨이 시작",
	Long: `주문 피드에 연결하고 데스크 화면과 API를 제공합니다.

Endpoints:
  GET  /                          - 대시보드 (신규/이력 주문, 티커, 채팅)
  GET  /trading-layout            - 패널 레이아웃
  GET  /ws                        - 실시간 뷰
  GET  /api/orders/{view}         - active | history
  PUT  /api/orders/{id}/rate      - 환율 수정 (로컬)
  POST /api/orders/{id}/blur      - 수정 주문 전송
  GET  /api/theme, PUT /api/theme, POST /api/theme/toggle
  GET  /api/layout, PUT /api/layout
  POST /auth/logout
  GET  /health

Example:
  go run ./cmd/symfx serve
  go run ./cmd/symfx serve --port 9000`,
	RunE: runServe,
}

var servePort string

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&servePort, "port", "", "HTTP 포트 (기본값 PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	// 1. Config + logger
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort != "" {
		cfg.Port = servePort
	}

	log.WithFields(map[string]interface{}{
		"port":    cfg.Port,
		"env":     cfg.Env,
		"backend": cfg.Backend.BaseURL,
		"feed":    cfg.Backend.OrdersWSURL,
	}).Info("Initializing desk gateway")

	// 2. Redis (no-op client when disabled)
	rc, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer rc.Close()

	// 3. Database, only when configured
	var db *database.DB
	if cfg.Database.URL != "" {
		db, err = database.New(cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()

		migrateCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err = db.Migrate(migrateCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
		log.Info("Connected to database")
	}

	// 4. Preferences
	prefs, err := preferences.Open(cfg, rc, db)
	if err != nil {
		return fmt.Errorf("open preferences: %w", err)
	}

	// 5. Backend client: edits are never replayed, only paced
	httpClient := httputil.New(cfg, log).
		DisableRetry().
		WithLocalLimit(cfg.Desk.SubmitRateLimit)
	if rc.Enabled() {
		httpClient = httpClient.WithRateLimiter(
			redis.NewRateLimiter(rc, "symfx"),
			redis.SubmitRateLimit(cfg.Desk.SubmitRateLimit),
		)
	}
	backendClient := backend.NewClient(httpClient, cfg.Backend.BaseURL, log)

	// 6. Desk service
	store := orders.NewStore(log)
	svc, err := desk.NewService(cfg, store, backendClient, log)
	if err != nil {
		return fmt.Errorf("create desk service: %w", err)
	}

	// 7. Browser hub
	browsers := hub.New(svc.RenderViews, log, hub.WithCheckOrigin(originAllowed(cfg.CORSOrigins)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go browsers.Run(ctx)
	go svc.Watch(ctx, func(ch orders.Change) {
		browsers.Refresh()
		if ch.Source == orders.SourceFeed || ch.Source == orders.SourceSeed {
			// drop the highlight once it has expired
			time.AfterFunc(desk.FreshFor, browsers.Refresh)
		}
	})
	svc.Start(ctx)
	defer svc.Close()

	// 8. Scheduler
	sched := scheduler.New(log)
	if err := sched.AddJob(jobs.NewStaleOverrideJob(store, cfg.Desk.StaleOverrideAfter, log)); err != nil {
		return err
	}
	if err := sched.AddJob(jobs.NewDeskReportJob(svc, browsers.ClientCount, log)); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	// 9. HTTP
	pages, err := handlers.NewPagesHandler(svc, prefs, cfg.Desk.UserName, log)
	if err != nil {
		return fmt.Errorf("load templates: %w", err)
	}
	router := api.NewRouter(api.Handlers{
		Health:      handlers.NewHealthHandler(svc, browsers.ClientCount, db),
		Orders:      handlers.NewOrdersHandler(svc, log),
		Preferences: handlers.NewPreferencesHandler(prefs, cfg.Desk.UserName, log),
		Auth:        handlers.NewAuthHandler(backendClient, log),
		Pages:       pages,
		WS:          browsers.ServeWS,
	}, cfg.CORSOrigins, log)

	server := api.New(cfg, log, router)
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	PrintSuccess(fmt.Sprintf("Desk running on http://localhost:%s", cfg.Port))
	fmt.Println("\nPress Ctrl+C to stop")

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			return err
		}
	}

	log.Info("Shutting down desk...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Desk stopped")
	return nil
}

// originAllowed accepts same-origin upgrades and the configured CORS origins
func originAllowed(origins []string) func(*http.Request) bool {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || allowed[origin] {
			return true
		}
		u, err := url.Parse(origin)
		return err == nil && u.Host == r.Host
	}
}
