package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"datafixer.ai/internal/datafix"
	"datafixer.ai/internal/persistence/indexdb"
)

// HistoryCmd prints the fix passes recorded in the index for one world.
func HistoryCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history <world>",
		Short: "Show recorded fix passes for a world",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := dataPath(cfg.Index.Path)
			if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("no index at %s", path)
			}
			idx, err := indexdb.OpenSQLite(path)
			if err != nil {
				return err
			}
			defer idx.Close()

			runs, err := idx.Runs(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if limit > 0 && len(runs) > limit {
				runs = runs[len(runs)-limit:]
			}
			w := cmd.OutOrStdout()
			for _, r := range runs {
				hits, err := idx.Hits(cmd.Context(), r.RunID)
				if err != nil {
					return err
				}
				printRun(w, r, hits)
			}
			if len(runs) == 0 {
				fmt.Fprintf(w, "no runs recorded for %s\n", args[0])
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "most recent runs to show (0 for all)")
	return cmd
}

func printRun(w io.Writer, r indexdb.RunRow, hits []indexdb.HitRow) {
	stored := "none"
	if r.Stored.Valid {
		stored = datafix.VersionName(int(r.Stored.Int64))
	}
	state := color.YellowString("skipped")
	if r.Ran {
		state = color.GreenString("ran from %s", datafix.VersionName(r.Previous))
	}
	fmt.Fprintf(w, "%s %s  stored=%s  %s  fired=%s\n",
		r.StartedAt, color.New(color.Faint).Sprint(r.RunID), stored, state, humanize.Comma(int64(r.Fired)))
	for _, h := range hits {
		fmt.Fprintf(w, "    %-12s %-48s %s\n", h.Kind, h.Fix, humanize.Comma(int64(h.Count)))
	}
}
