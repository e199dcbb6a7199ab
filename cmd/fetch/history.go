package main

import (
    "fmt"
    "strconv"
    "text/tabwriter"

    "github.com/spf13/cobra"

    "marketdash/internal/archive"
    "marketdash/internal/store"
)

func newHistoryCmd(opts *rootOptions) *cobra.Command {
    return &cobra.Command{
        Use:   "history",
        Short: "Print the recorded runs from history.json, oldest first",
        RunE: func(cmd *cobra.Command, args []string) error {
            cfg, log, err := opts.load(cmd)
            if err != nil {
                return err
            }
            defer func() { _ = log.Sync() }()

            hist, err := store.New(cfg.Job.DataDir, cfg.Job.HistoryLimit).LoadHistory()
            if err != nil {
                return err
            }
            tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
            fmt.Fprintln(tw, "TIMESTAMP\tTOTAL\tOK\tFAILED")
            for _, e := range hist {
                fmt.Fprintf(tw, "%s\t%d\t%d\t%d\n", e.Timestamp, e.Meta.TotalAssets, e.Meta.SuccessfulFetches, e.Meta.FailedFetches)
            }
            return tw.Flush()
        },
    }
}

func newRunsCmd(opts *rootOptions) *cobra.Command {
    var (
        limit int
        runID string
    )
    cmd := &cobra.Command{
        Use:   "runs",
        Short: "List archived runs, newest first, or one run's assets with --id (requires --archive)",
        RunE: func(cmd *cobra.Command, args []string) error {
            cfg, log, err := opts.load(cmd)
            if err != nil {
                return err
            }
            defer func() { _ = log.Sync() }()
            if cfg.Job.ArchivePath == "" {
                return fmt.Errorf("--archive is required")
            }

            a, err := archive.Open(cfg.Job.ArchivePath)
            if err != nil {
                return err
            }
            defer a.Close()

            if runID != "" {
                return printRunAssets(cmd, a, runID)
            }
            runs, err := a.ListRuns(cmd.Context(), limit)
            if err != nil {
                return err
            }
            tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
            fmt.Fprintln(tw, "RUN ID\tTIMESTAMP\tTOTAL\tOK\tFAILED")
            for _, r := range runs {
                fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\n", r.ID, r.Timestamp, r.Meta.TotalAssets, r.Meta.SuccessfulFetches, r.Meta.FailedFetches)
            }
            return tw.Flush()
        },
    }
    cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to list")
    cmd.Flags().StringVar(&runID, "id", "", "show the assets recorded for this run id")
    return cmd
}

func printRunAssets(cmd *cobra.Command, a *archive.Archive, runID string) error {
    rows, err := a.Assets(cmd.Context(), runID)
    if err != nil {
        return err
    }
    if len(rows) == 0 {
        return fmt.Errorf("no archived run %q", runID)
    }
    tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
    fmt.Fprintln(tw, "CATEGORY\tSYMBOL\tSOURCE\tPRICE\tCHANGE %\tERROR")
    for _, r := range rows {
        fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
            r.Category, r.Symbol, r.Source, optFloat(r.Price), optFloat(r.ChangePct), optString(r.Error))
    }
    return tw.Flush()
}

func optFloat(v *float64) string {
    if v == nil {
        return "-"
    }
    return strconv.FormatFloat(*v, 'f', -1, 64)
}

func optString(v *string) string {
    if v == nil {
        return "-"
    }
    return *v
}
