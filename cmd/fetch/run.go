package main

import (
    "context"
    "fmt"
    "io"

    "go.uber.org/zap"

    "marketdash/internal/aggregate"
    "marketdash/internal/archive"
    "marketdash/internal/catalog"
    "marketdash/internal/config"
    "marketdash/internal/httpx"
    "marketdash/internal/provider"
    "marketdash/internal/provider/binance"
    "marketdash/internal/provider/yahoo"
    "marketdash/internal/store"
)

// runBatch performs one snapshot run and prints a summary line to out.
// fetchers may be nil, in which case the live Yahoo and Binance adapters are
// built from cfg.
func runBatch(ctx context.Context, out io.Writer, cfg config.Config, fetchers map[string]provider.Fetcher, log *zap.Logger) error {
    cat, err := catalog.Load(cfg.Job.CatalogPath)
    if err != nil {
        log.Error("failed to load catalog", zap.String("path", cfg.Job.CatalogPath), zap.Error(err))
        return err
    }
    log.Info("catalog loaded",
        zap.Int("categories", len(cat.Categories)),
        zap.Int("assets", cat.Len()))

    if fetchers == nil {
        fetchers = newFetchers(cfg, cat, log)
    }
    snap := aggregate.New(fetchers, log.Named("aggregate")).Build(ctx, cat)

    st := store.New(cfg.Job.DataDir, cfg.Job.HistoryLimit)
    if err := st.SaveSnapshot(snap); err != nil {
        log.Error("failed to save snapshot", zap.Error(err))
        return err
    }
    hist, err := st.AppendHistory(snap.HistoryEntry())
    if err != nil {
        log.Error("failed to update history", zap.Error(err))
        return err
    }
    log.Info("snapshot saved",
        zap.String("path", st.LatestPath()),
        zap.Int("history_entries", len(hist)))

    if cfg.Job.ArchivePath != "" {
        archiveRun(ctx, cfg.Job.ArchivePath, snap, log)
    }

    fmt.Fprintf(out, "Completed: %d/%d assets fetched successfully\n",
        snap.Meta.SuccessfulFetches, snap.Meta.TotalAssets)
    return nil
}

// archiveRun never fails the batch; the JSON files are the primary output.
func archiveRun(ctx context.Context, path string, snap aggregate.Snapshot, log *zap.Logger) {
    a, err := archive.Open(path)
    if err != nil {
        log.Warn("archive unavailable", zap.String("path", path), zap.Error(err))
        return
    }
    defer a.Close()
    id, err := a.Record(ctx, snap)
    if err != nil {
        log.Warn("archive write failed", zap.Error(err))
        return
    }
    log.Info("run archived", zap.String("run_id", id))
}

func newFetchers(cfg config.Config, cat *catalog.Catalog, log *zap.Logger) map[string]provider.Fetcher {
    hc := httpx.New(cfg.Job.RequestTimeout())

    candidates := map[string][]string{}
    for _, c := range cat.Categories {
        for _, a := range c.Assets {
            if a.Source == provider.SourceYahoo && len(a.Alternates) > 0 {
                candidates[a.Symbol] = a.Candidates()
            }
        }
    }

    y := yahoo.New(yahoo.Config{
        MaxRetries: cfg.Job.MaxRetries,
        RetryDelay: cfg.Job.RetryDelay(),
        Candidates: candidates,
    }, yahoo.NewFinanceChart(hc.HTTP), log.Named("yahoo"))
    b := binance.New(binance.Config{BaseURL: cfg.Job.BinanceBaseURL}, hc.HTTP, log.Named("binance"))

    return map[string]provider.Fetcher{
        y.Name(): y,
        b.Name(): b,
    }
}
