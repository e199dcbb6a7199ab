package main

import (
    "github.com/spf13/cobra"
    "go.uber.org/zap"

    "marketdash/internal/config"
    "marketdash/internal/logging"
)

type rootOptions struct {
    settingsPath string
    catalogPath  string
    dataDir      string
    archivePath  string
    logLevel     string
}

func newRootCmd() *cobra.Command {
    opts := &rootOptions{}
    cmd := &cobra.Command{
        Use:   "fetch",
        Short: "Fetch every catalog asset and write data/latest.json plus the run history",
        Long: `fetch walks the asset catalog in order, reads each asset from its configured
provider (yahoo or binance), and writes the categorized snapshot to latest.json.
Each run appends a {timestamp, meta} record to history.json, which keeps the
most recent 100 runs. With --archive every run is also stored in SQLite.`,
        SilenceUsage: true,
        RunE: func(cmd *cobra.Command, args []string) error {
            cfg, log, err := opts.load(cmd)
            if err != nil {
                return err
            }
            defer func() { _ = log.Sync() }()
            return runBatch(cmd.Context(), cmd.OutOrStdout(), cfg, nil, log)
        },
    }

    f := cmd.PersistentFlags()
    f.StringVar(&opts.settingsPath, "settings", "", "JSON settings file (default settings.json when present)")
    f.StringVar(&opts.catalogPath, "config", "config.json", "asset catalog (JSON or YAML)")
    f.StringVar(&opts.dataDir, "data-dir", "data", "directory for latest.json and history.json")
    f.StringVar(&opts.archivePath, "archive", "", "SQLite run archive; empty disables")
    f.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error")

    cmd.AddCommand(
        newHistoryCmd(opts),
        newRunsCmd(opts),
    )
    return cmd
}

// load reads settings and lets explicitly set flags win over them.
func (o *rootOptions) load(cmd *cobra.Command) (config.Config, *zap.Logger, error) {
    cfg, err := config.Load(o.settingsPath)
    if err != nil {
        return cfg, nil, err
    }
    f := cmd.Flags()
    if f.Changed("config") { cfg.Job.CatalogPath = o.catalogPath }
    if f.Changed("data-dir") { cfg.Job.DataDir = o.dataDir }
    if f.Changed("archive") { cfg.Job.ArchivePath = o.archivePath }
    if f.Changed("log-level") { cfg.Log.Level = o.logLevel }

    log, err := logging.New(cfg.Log.Level, cfg.Log.Development)
    if err != nil {
        return cfg, nil, err
    }
    return cfg, log, nil
}
