// Package archive keeps every batch run in a SQLite database, one row per run
// and one row per asset, keyed by a time-sortable ULID.
package archive

import (
    "context"
    cryptorand "crypto/rand"
    "database/sql"
    "fmt"
    "io"
    "sync"
    "time"

    _ "github.com/mattn/go-sqlite3"
    "github.com/oklog/ulid/v2"

    "marketdash/internal/aggregate"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    run_id     TEXT PRIMARY KEY,
    timestamp  TEXT NOT NULL,
    total      INTEGER NOT NULL,
    successful INTEGER NOT NULL,
    failed     INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS assets (
    run_id     TEXT NOT NULL REFERENCES runs(run_id),
    category   TEXT NOT NULL,
    symbol     TEXT NOT NULL,
    source     TEXT NOT NULL,
    price      REAL,
    change_pct REAL,
    error      TEXT
);
CREATE INDEX IF NOT EXISTS assets_run_id ON assets(run_id);
`

// Run is one archived batch run.
type Run struct {
    ID        string
    Timestamp string
    Meta      aggregate.Meta
}

type Archive struct {
    db *sql.DB

    mu      sync.Mutex
    entropy io.Reader
}

func Open(path string) (*Archive, error) {
    db, err := sql.Open("sqlite3", path)
    if err != nil {
        return nil, fmt.Errorf("open archive: %w", err)
    }
    if _, err := db.Exec(schema); err != nil {
        _ = db.Close()
        return nil, fmt.Errorf("create archive schema: %w", err)
    }
    return &Archive{db: db, entropy: ulid.Monotonic(cryptorand.Reader, 0)}, nil
}

func (a *Archive) Close() error { return a.db.Close() }

// newID returns a ULID; ids generated in the same millisecond still sort in
// creation order.
func (a *Archive) newID(t time.Time) (string, error) {
    a.mu.Lock()
    defer a.mu.Unlock()
    id, err := ulid.New(ulid.Timestamp(t.UTC()), a.entropy)
    if err != nil {
        return "", err
    }
    return id.String(), nil
}

// Record stores snap and returns its run id.
func (a *Archive) Record(ctx context.Context, snap aggregate.Snapshot) (string, error) {
    id, err := a.newID(time.Now())
    if err != nil {
        return "", fmt.Errorf("run id: %w", err)
    }
    tx, err := a.db.BeginTx(ctx, nil)
    if err != nil {
        return "", fmt.Errorf("begin: %w", err)
    }
    defer func() { _ = tx.Rollback() }()

    if _, err := tx.ExecContext(ctx, `
        INSERT INTO runs (run_id, timestamp, total, successful, failed)
        VALUES (?, ?, ?, ?, ?)`,
        id, snap.LastUpdated, snap.Meta.TotalAssets, snap.Meta.SuccessfulFetches, snap.Meta.FailedFetches,
    ); err != nil {
        return "", fmt.Errorf("insert run: %w", err)
    }

    stmt, err := tx.PrepareContext(ctx, `
        INSERT INTO assets (run_id, category, symbol, source, price, change_pct, error)
        VALUES (?, ?, ?, ?, ?, ?, ?)`)
    if err != nil {
        return "", fmt.Errorf("prepare asset insert: %w", err)
    }
    defer stmt.Close()
    for _, c := range snap.Categories {
        for _, as := range c.Assets {
            if _, err := stmt.ExecContext(ctx, id, c.ID, as.Symbol, as.Source, as.Price, as.ChangePercent24h, as.Error); err != nil {
                return "", fmt.Errorf("insert asset %s: %w", as.Symbol, err)
            }
        }
    }
    if err := tx.Commit(); err != nil {
        return "", fmt.Errorf("commit: %w", err)
    }
    return id, nil
}

// ListRuns returns up to limit runs, newest first.
func (a *Archive) ListRuns(ctx context.Context, limit int) ([]Run, error) {
    if limit <= 0 { limit = 20 }
    rows, err := a.db.QueryContext(ctx, `
        SELECT run_id, timestamp, total, successful, failed
        FROM runs ORDER BY run_id DESC LIMIT ?`, limit)
    if err != nil {
        return nil, fmt.Errorf("list runs: %w", err)
    }
    defer rows.Close()

    var out []Run
    for rows.Next() {
        var r Run
        if err := rows.Scan(&r.ID, &r.Timestamp, &r.Meta.TotalAssets, &r.Meta.SuccessfulFetches, &r.Meta.FailedFetches); err != nil {
            return nil, fmt.Errorf("scan run: %w", err)
        }
        out = append(out, r)
    }
    return out, rows.Err()
}

// AssetRow is one archived asset result.
type AssetRow struct {
    Category  string
    Symbol    string
    Source    string
    Price     *float64
    ChangePct *float64
    Error     *string
}

// Assets returns the asset rows of one run in insertion order.
func (a *Archive) Assets(ctx context.Context, runID string) ([]AssetRow, error) {
    rows, err := a.db.QueryContext(ctx, `
        SELECT category, symbol, source, price, change_pct, error
        FROM assets WHERE run_id = ? ORDER BY rowid`, runID)
    if err != nil {
        return nil, fmt.Errorf("list assets: %w", err)
    }
    defer rows.Close()

    var out []AssetRow
    for rows.Next() {
        var r AssetRow
        if err := rows.Scan(&r.Category, &r.Symbol, &r.Source, &r.Price, &r.ChangePct, &r.Error); err != nil {
            return nil, fmt.Errorf("scan asset: %w", err)
        }
        out = append(out, r)
    }
    return out, rows.Err()
}
