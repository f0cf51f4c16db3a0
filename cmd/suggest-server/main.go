package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	arg "github.com/alexflint/go-arg"

	"github.com/cognicore/catsuggest/pkg/catsuggest"
	"github.com/cognicore/catsuggest/pkg/catsuggest/config"
)

func main() {
	args := struct {
		Config string `arg:"required" help:"service configuration file"`
		Listen string `help:"listen address, overrides the configuration"`
		Debug  bool   `help:"log pipeline state transitions"`
	}{}
	arg.MustParse(&args)

	if args.Debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	cfg, err := config.Load(args.Config)
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}
	if args.Listen != "" {
		cfg.Listen = args.Listen
	}
	if err := os.MkdirAll(cfg.DownloadDir, 0o755); err != nil {
		log.Fatal("Failed to create download dir:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loader := config.Loader{Config: cfg}
	components, err := loader.Load()
	if err != nil {
		log.Fatal("Failed to load components:", err)
	}
	p, err := components.Pipeline(cfg)
	if err != nil {
		log.Fatal("Failed to create pipeline:", err)
	}
	store, err := loader.OpenStore(ctx)
	if err != nil {
		log.Fatal(err)
	}

	svc, err := catsuggest.New(catsuggest.Options{
		Runner:     p,
		Store:      store,
		Workers:    cfg.Workers,
		QueueSize:  cfg.QueueSize,
		JobTimeout: cfg.JobTimeout,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer svc.Close()

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           newRouter(&server{svc: svc, labels: components.Labels}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Printf("catsuggest listening on %s (%d workers, extractors %v)", cfg.Listen, cfg.Workers, components.Features.Names())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
