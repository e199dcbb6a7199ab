package main

import (
    "context"
    "errors"
    "log"
    "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"

    "go.uber.org/zap"

    "marketdash/internal/config"
    "marketdash/internal/httpx"
    "marketdash/internal/logging"
    "marketdash/internal/provider"
    "marketdash/internal/provider/cache"
    "marketdash/internal/provider/yahoochart"
    "marketdash/internal/quotes"
)

func main() {
    cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
    if err != nil { log.Fatalf("config: %v", err) }

    logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
    if err != nil { log.Fatalf("logger: %v", err) }
    defer func() { _ = logger.Sync() }()

    httpClient := httpx.New(cfg.Server.FetchTimeout())
    chart := yahoochart.NewChartAPIClient(
        yahoochart.WithBaseURL(cfg.Server.ChartURL),
        yahoochart.WithHTTPClient(httpClient),
        yahoochart.WithTimeout(cfg.Server.FetchTimeout()),
        yahoochart.WithLogger(logger.Named("yahoochart")),
    )

    var src provider.QuoteSource = chart
    if ttl := cfg.Server.QuoteCacheTTL(); ttl > 0 {
        src = &cache.Source{S: src, TTL: ttl, MaxItems: cfg.Server.CacheMaxItems}
        logger.Info("quote cache enabled", zap.Duration("ttl", ttl))
    }

    svc := quotes.New(quotes.Config{
        MaxWorkers:     cfg.Server.MaxWorkers,
        FetchTimeout:   cfg.Server.FetchTimeout(),
        CollectTimeout: cfg.Server.CollectTimeout(),
    }, src, logger.Named("quotes"))

    srv := &http.Server{
        Addr:              ":" + cfg.Server.Port,
        Handler:           newHandler(svc, logger.Named("http")),
        ReadHeaderTimeout: 5 * time.Second,
        ReadTimeout:       15 * time.Second,
        WriteTimeout:      20 * time.Second,
        IdleTimeout:       60 * time.Second,
    }

    go func() {
        logger.Info("server listening", zap.String("addr", srv.Addr))
        if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
            logger.Fatal("server", zap.Error(err))
        }
    }()

    // graceful shutdown
    ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
    defer stop()
    <-ctx.Done()
    shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()
    if err := srv.Shutdown(shutdownCtx); err != nil {
        logger.Warn("shutdown", zap.Error(err))
    }
}
