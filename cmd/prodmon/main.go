package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/odyssey-erp/prodmon/cmd/prodmon/cli"
	"github.com/odyssey-erp/prodmon/internal/app"
	"github.com/odyssey-erp/prodmon/internal/observability"
	"github.com/odyssey-erp/prodmon/internal/platform/cache"
	"github.com/odyssey-erp/prodmon/internal/production"
	productionhttp "github.com/odyssey-erp/prodmon/internal/production/http"
	"github.com/odyssey-erp/prodmon/internal/production/ui"
	"github.com/odyssey-erp/prodmon/jobs"
	"github.com/odyssey-erp/prodmon/web"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)

	args := os.Args[1:]
	if len(args) > 0 {
		switch args[0] {
		case "serve":
		case "jobs":
			os.Exit(runJobs(ctx, cfg, args[1:]))
		case "summary":
			os.Exit(runSummary(ctx, cfg, logger, args[1:]))
		default:
			fmt.Fprintf(os.Stderr, "usage: prodmon [serve|jobs|summary]\n")
			os.Exit(2)
		}
	}

	if err := serve(ctx, cfg, logger); err != nil {
		logger.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func serve(ctx context.Context, cfg *app.Config, logger *slog.Logger) error {
	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	if err := production.SetupMetrics(metrics.Registerer()); err != nil {
		logger.Warn("register production metrics", slog.Any("error", err))
	}

	service := app.NewProductionService(cfg, redisClient, logger)
	if !cfg.AppSheet().Configured() {
		logger.Warn("appsheet credentials missing, serving sample rows")
	}

	page, err := productionhttp.ParsePage(web.Templates)
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}
	productionHandler := productionhttp.NewHandler(logger, service, ui.SVGRenderer{}, page)
	productionHandler.WithExportLimit(cfg.ExportRateLimit)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		ProductionHandler: productionHandler,
		JobHandler:        jobHandler,
		Metrics:           metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return production.NewCache(redisClient, cfg.CacheTTL).ListenForInvalidation(gctx, "")
	})
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func runJobs(ctx context.Context, cfg *app.Config, args []string) int {
	fs := flag.NewFlagSet("jobs", flag.ContinueOnError)
	size := fs.Int("size", 10, "number of scheduled tasks to list")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	jobsCLI, err := cli.NewJobsCLI(cfg.RedisAddr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "jobs: %v\n", err)
		return 1
	}
	defer func() { _ = jobsCLI.Close() }()

	switch fs.Arg(0) {
	case "trigger":
		name := fs.Arg(1)
		if name == "" {
			name = jobs.TaskProductionRefresh
		}
		info, err := jobsCLI.Trigger(ctx, name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "jobs trigger: %v\n", err)
			return 1
		}
		fmt.Printf("enqueued %s id=%s queue=%s\n", info.Type, info.ID, info.Queue)
	case "stats":
		stats, err := jobsCLI.InspectQueue(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "jobs stats: %v\n", err)
			return 1
		}
		fmt.Printf("queue=%s pending=%d active=%d scheduled=%d retry=%d\n", stats.Queue, stats.Pending, stats.Active, stats.Scheduled, stats.Retry)
	case "scheduled":
		tasks, err := jobsCLI.ListScheduled(ctx, *size)
		if err != nil {
			fmt.Fprintf(os.Stderr, "jobs scheduled: %v\n", err)
			return 1
		}
		for _, t := range tasks {
			fmt.Printf("%s %s next=%s\n", t.ID, t.Type, t.NextProcessAt.Format(time.RFC3339))
		}
	default:
		fmt.Fprintf(os.Stderr, "usage: prodmon jobs [-size n] trigger|stats|scheduled\n")
		return 2
	}
	return 0
}

func runSummary(ctx context.Context, cfg *app.Config, logger *slog.Logger, args []string) int {
	fs := flag.NewFlagSet("summary", flag.ContinueOnError)
	opts := cli.SummaryOptions{}
	fs.StringVar(&opts.From, "from", "", "first day, YYYY-MM-DD")
	fs.StringVar(&opts.To, "to", "", "last day, YYYY-MM-DD")
	fs.BoolVar(&opts.All, "all", false, "ignore the date window")
	fs.BoolVar(&opts.JSONOutput, "json", false, "print JSON")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	service := app.NewProductionService(cfg, nil, logger)
	return cli.SummaryCommand(ctx, service, opts)
}
