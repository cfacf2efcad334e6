package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"datafixer.ai/internal/datafix"
	"datafixer.ai/internal/migrate"
	"datafixer.ai/internal/persistence/indexdb"
	auditlog "datafixer.ai/internal/persistence/log"
)

// MigrateCmd runs the fix pass over saves and writes them back.
func MigrateCmd() *cobra.Command {
	var (
		workers  int
		noBackup bool
	)
	cmd := &cobra.Command{
		Use:   "migrate <save...>",
		Short: "Apply pending data fixes to world saves",
		Long: `Reads each save, applies every fix whose version window covers the
stored fix version, marks the save CURRENT and writes it back.

Saves that will be rewritten are copied to <data>/backups first.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cats, reg, err := buildRegistry()
			if err != nil {
				return err
			}

			opts := []migrate.Option{
				migrate.WithLogger(logger),
				migrate.WithSpecialMode(cfg.SpecialMode),
			}
			if !noBackup {
				opts = append(opts, migrate.WithBackupDir(dataPath("backups")))
			}
			if cfg.Audit.Enabled {
				audit := auditlog.NewAuditLogger(dataPath(cfg.Audit.Dir))
				defer audit.Close()
				opts = append(opts, migrate.WithAudit(audit))
			}
			if cfg.Index.Enabled {
				path := dataPath(cfg.Index.Path)
				if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
					return err
				}
				idx, err := indexdb.OpenSQLite(path)
				if err != nil {
					return fmt.Errorf("index: %w", err)
				}
				defer func() {
					if st := idx.Stats(); st.DropRunTotal > 0 || st.DropHitTotal > 0 {
						logger.Warn("index rows dropped",
							zap.Uint64("runs", st.DropRunTotal), zap.Uint64("hits", st.DropHitTotal))
					}
					_ = idx.Close()
				}()
				if err := idx.UpsertCatalogs(ctx, cats); err != nil {
					logger.Warn("index catalogs", zap.Error(err))
				}
				opts = append(opts, migrate.WithIndex(idx))
			}

			if workers <= 0 {
				workers = cfg.Workers
			}
			results, runErr := migrate.New(reg, opts...).RunAll(ctx, args, workers)
			printResults(cmd.OutOrStdout(), results)
			return runErr
		},
	}
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "saves migrated at once (default from config)")
	cmd.Flags().BoolVar(&noBackup, "no-backup", false, "skip the pre-migration copy")
	return cmd
}

func printResults(w io.Writer, results []migrate.Result) {
	world := color.New(color.FgHiMagenta, color.Bold)
	skipped := color.New(color.FgYellow)
	fired := color.New(color.FgGreen)

	var total int
	for _, r := range results {
		if r.RunID == "" {
			continue
		}
		fmt.Fprintf(w, "%s  %s\n", world.Sprint(r.WorldID), r.Path)
		if !r.Decision.Run {
			fmt.Fprintf(w, "  %s (stored %s)\n", skipped.Sprint("up to date"), datafix.VersionName(r.Decision.Stored))
			continue
		}
		fmt.Fprintf(w, "  from %s: %s items, %s blocks, %s tile entities visited\n",
			datafix.VersionName(r.Decision.Previous),
			humanize.Comma(int64(r.Items)),
			humanize.Comma(int64(r.Blocks)),
			humanize.Comma(int64(r.TileEntities)),
		)
		for _, k := range datafix.Kinds {
			byFix := r.Hits[k]
			names := make([]string, 0, len(byFix))
			for name := range byFix {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(w, "    %-12s %-48s %s\n", k, name, fired.Sprint(humanize.Comma(int64(byFix[name]))))
			}
		}
		if r.Backup != "" {
			fmt.Fprintf(w, "  backup %s\n", r.Backup)
		}
		total += r.Fired
	}
	fmt.Fprintf(w, "%s fixes applied\n", humanize.Comma(int64(total)))
}
