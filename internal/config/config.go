package config

import (
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "strings"
    "time"
)

// DefaultFile is read by Load when no path is given and the file exists.
const DefaultFile = "settings.json"

type Server struct {
    Port              string `json:"port"`
    FetchTimeoutSec   int    `json:"fetch_timeout_sec"`
    CollectTimeoutSec int    `json:"collect_timeout_sec"`
    MaxWorkers        int    `json:"max_workers"`
    QuoteCacheTTLSec  int    `json:"quote_cache_ttl_sec"`
    CacheMaxItems     int    `json:"cache_max_items"`
    ChartURL          string `json:"chart_url"`
}

type Job struct {
    CatalogPath       string `json:"catalog_path"`
    DataDir           string `json:"data_dir"`
    HistoryLimit      int    `json:"history_limit"`
    RequestTimeoutSec int    `json:"request_timeout_sec"`
    MaxRetries        int    `json:"max_retries"`
    RetryDelaySec     int    `json:"retry_delay_sec"`
    BinanceBaseURL    string `json:"binance_base_url"`
    ArchivePath       string `json:"archive_path"`
}

type Log struct {
    Level       string `json:"level"`
    Development bool   `json:"development"`
}

type Config struct {
    Server Server `json:"server"`
    Job    Job    `json:"job"`
    Log    Log    `json:"log"`
}

func Default() Config {
    return Config{
        Server: Server{
            Port:              "8080",
            FetchTimeoutSec:   8,
            CollectTimeoutSec: 9,
            MaxWorkers:        6,
            CacheMaxItems:     1000,
            ChartURL:          "https://query1.finance.yahoo.com",
        },
        Job: Job{
            CatalogPath:       "config.json",
            DataDir:           "data",
            HistoryLimit:      100,
            RequestTimeoutSec: 10,
            MaxRetries:        3,
            RetryDelaySec:     1,
        },
        Log: Log{Level: "info"},
    }
}

func (s Server) FetchTimeout() time.Duration   { return time.Duration(s.FetchTimeoutSec) * time.Second }
func (s Server) CollectTimeout() time.Duration { return time.Duration(s.CollectTimeoutSec) * time.Second }
func (s Server) QuoteCacheTTL() time.Duration  { return time.Duration(s.QuoteCacheTTLSec) * time.Second }
func (j Job) RequestTimeout() time.Duration    { return time.Duration(j.RequestTimeoutSec) * time.Second }
func (j Job) RetryDelay() time.Duration        { return time.Duration(j.RetryDelaySec) * time.Second }

// Load reads JSON settings from path. If path is empty or the file does not
// exist, it returns defaults. Environment variables override select fields.
func Load(path string) (Config, error) {
    cfg := Default()
    if path == "" {
        if _, err := os.Stat(DefaultFile); err == nil {
            path = DefaultFile
        }
    }
    if path != "" {
        b, err := os.ReadFile(path)
        if err != nil && !errors.Is(err, os.ErrNotExist) {
            return cfg, fmt.Errorf("read config: %w", err)
        }
        if err == nil {
            if err := json.Unmarshal(b, &cfg); err != nil {
                return cfg, fmt.Errorf("parse config: %w", err)
            }
        }
    }
    applyEnv(&cfg)
    return cfg, nil
}

func applyEnv(cfg *Config) {
    if v := os.Getenv("PORT"); v != "" { cfg.Server.Port = v }
    envInt("FETCH_TIMEOUT_SEC", 1, &cfg.Server.FetchTimeoutSec)
    envInt("COLLECT_TIMEOUT_SEC", 1, &cfg.Server.CollectTimeoutSec)
    envInt("MAX_WORKERS", 1, &cfg.Server.MaxWorkers)
    envInt("QUOTE_CACHE_TTL_SEC", 0, &cfg.Server.QuoteCacheTTLSec)
    envInt("CACHE_MAX_ITEMS", 1, &cfg.Server.CacheMaxItems)
    if v := os.Getenv("YAHOO_CHART_URL"); v != "" { cfg.Server.ChartURL = strings.TrimRight(v, "/") }

    if v := os.Getenv("CATALOG_FILE"); v != "" { cfg.Job.CatalogPath = v }
    if v := os.Getenv("DATA_DIR"); v != "" { cfg.Job.DataDir = v }
    envInt("HISTORY_LIMIT", 1, &cfg.Job.HistoryLimit)
    envInt("REQUEST_TIMEOUT_SEC", 1, &cfg.Job.RequestTimeoutSec)
    envInt("MAX_RETRIES", 1, &cfg.Job.MaxRetries)
    envInt("RETRY_DELAY_SEC", 0, &cfg.Job.RetryDelaySec)
    if v := os.Getenv("BINANCE_BASE_URL"); v != "" { cfg.Job.BinanceBaseURL = strings.TrimRight(v, "/") }
    if v := os.Getenv("ARCHIVE_PATH"); v != "" { cfg.Job.ArchivePath = v }

    if v := os.Getenv("LOG_LEVEL"); v != "" { cfg.Log.Level = v }
    if v := os.Getenv("LOG_DEVELOPMENT"); v != "" {
        switch strings.ToLower(v) {
        case "1","true","yes","y": cfg.Log.Development = true
        case "0","false","no","n": cfg.Log.Development = false
        }
    }
}

// envInt sets *dst from key when it parses to an integer >= floor.
func envInt(key string, floor int, dst *int) {
    v := os.Getenv(key)
    if v == "" { return }
    var x int
    if _, err := fmt.Sscanf(v, "%d", &x); err != nil { return }
    if x >= floor { *dst = x }
}
