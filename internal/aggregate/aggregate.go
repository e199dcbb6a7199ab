// Package aggregate walks the asset catalog, routes every asset to its batch
// adapter and assembles the categorized snapshot.
package aggregate

import (
    "context"
    "fmt"
    "time"

    "go.uber.org/zap"

    "marketdash/internal/catalog"
    "marketdash/internal/logging"
    "marketdash/internal/provider"
)

// Meta counts the fetches of one run. Successful + Failed == TotalAssets.
type Meta struct {
    TotalAssets       int `json:"total_assets"`
    SuccessfulFetches int `json:"successful_fetches"`
    FailedFetches     int `json:"failed_fetches"`
}

// Asset is a fetch result merged with the static catalog fields.
type Asset struct {
    Symbol           string    `json:"symbol"`
    Name             string    `json:"name"`
    Price            *float64  `json:"price"`
    ChangePercent24h *float64  `json:"change_percent_24h"`
    History          []float64 `json:"history"`
    Error            *string   `json:"error"`
    Source           string    `json:"source"`
    Unit             string    `json:"unit"`
    Icon             string    `json:"icon"`
    Category         string    `json:"category"`
    LastUpdated      string    `json:"last_updated,omitempty"`
}

type Category struct {
    Name   string  `json:"name"`
    ID     string  `json:"id"`
    Assets []Asset `json:"assets"`
}

// Snapshot is one complete batch result; it replaces the previous one.
type Snapshot struct {
    Categories  []Category `json:"categories"`
    LastUpdated string     `json:"last_updated"`
    Meta        Meta       `json:"meta"`
}

// Aggregator fetches assets one by one. Fetchers is keyed by the catalog
// source identifier.
type Aggregator struct {
    Fetchers map[string]provider.Fetcher

    log *zap.Logger
    now func() time.Time
}

func New(fetchers map[string]provider.Fetcher, log *zap.Logger) *Aggregator {
    return &Aggregator{Fetchers: fetchers, log: logging.OrNop(log), now: time.Now}
}

// Build fetches every asset in catalog order. A failed or unroutable asset
// still contributes an entry, so the snapshot always holds cat.Len() assets.
// LastUpdated is the time the run started.
func (a *Aggregator) Build(ctx context.Context, cat *catalog.Catalog) Snapshot {
    snap := Snapshot{
        Categories:  make([]Category, 0, len(cat.Categories)),
        LastUpdated: a.now().Format(time.RFC3339),
    }
    for _, c := range cat.Categories {
        a.log.Info("processing category", zap.String("category", c.Name))
        out := Category{Name: c.Name, ID: c.ID, Assets: make([]Asset, 0, len(c.Assets))}
        for _, as := range c.Assets {
            res := a.fetch(ctx, as)
            snap.Meta.TotalAssets++
            if res.Failed() {
                snap.Meta.FailedFetches++
            } else {
                snap.Meta.SuccessfulFetches++
            }
            out.Assets = append(out.Assets, merge(res, as))
        }
        snap.Categories = append(snap.Categories, out)
    }
    a.log.Info("snapshot built",
        zap.Int("total", snap.Meta.TotalAssets),
        zap.Int("successful", snap.Meta.SuccessfulFetches),
        zap.Int("failed", snap.Meta.FailedFetches))
    return snap
}

func (a *Aggregator) fetch(ctx context.Context, as catalog.Asset) provider.Result {
    f, ok := a.Fetchers[as.Source]
    if !ok {
        msg := fmt.Sprintf("Unknown source: %s", as.Source)
        a.log.Error("unroutable asset", zap.String("symbol", as.Symbol), zap.String("source", as.Source))
        return provider.NewFailure(as.Symbol, as.Name, as.Source, msg)
    }
    return f.Fetch(ctx, as.Symbol, as.Name)
}

func merge(r provider.Result, as catalog.Asset) Asset {
    hist := r.History
    if hist == nil {
        hist = []float64{}
    }
    return Asset{
        Symbol:           r.Symbol,
        Name:             r.Name,
        Price:            r.Price,
        ChangePercent24h: r.ChangePercent24h,
        History:          hist,
        Error:            r.Error,
        Source:           r.Source,
        Unit:             as.Unit,
        Icon:             as.Icon,
        Category:         as.Category,
        LastUpdated:      r.LastUpdated,
    }
}

// Entry is one line of the rolling history file.
type Entry struct {
    Timestamp string `json:"timestamp"`
    Meta      Meta   `json:"meta"`
}

// HistoryEntry summarizes s without price data.
func (s Snapshot) HistoryEntry() Entry {
    return Entry{Timestamp: s.LastUpdated, Meta: s.Meta}
}
