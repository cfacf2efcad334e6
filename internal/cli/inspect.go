package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"datafixer.ai/internal/datafix"
	"datafixer.ai/internal/nbt"
	"datafixer.ai/internal/persistence/save"
)

// InspectCmd prints what a migrate run would do to a save without writing.
func InspectCmd() *cobra.Command {
	var raw, headerOnly bool
	cmd := &cobra.Command{
		Use:   "inspect <save>",
		Short: "Show a save's stored fix version and gate decision",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if headerOnly {
				h, err := save.ReadHeader(args[0])
				if err != nil {
					return err
				}
				printHeader(cmd.OutOrStdout(), h)
				return nil
			}
			s, err := save.Read(args[0])
			if err != nil {
				return err
			}
			_, reg, err := buildRegistry()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			printInspect(w, &s, reg)
			if raw {
				fmt.Fprintln(w)
				spew.Fdump(w, s.Header, s.Data, s.ModList)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "dump the header and saved data")
	cmd.Flags().BoolVar(&headerOnly, "header", false, "print only the header line without decoding the save")
	return cmd
}

func printHeader(w io.Writer, h save.Header) {
	label := color.New(color.Bold)
	fmt.Fprintf(w, "%s %s (format %d)\n", label.Sprint("world:"), h.WorldID, h.Version)
	if h.Version != save.FormatVersion {
		fmt.Fprintf(w, "%s unsupported format, expected %d\n", color.RedString("warning:"), save.FormatVersion)
	}
	if h.SavedAt > 0 {
		fmt.Fprintf(w, "%s %s\n", label.Sprint("saved:"), humanize.Time(time.Unix(h.SavedAt, 0)))
	}
}

type saveCounts struct {
	players, items, entities, chunks, blocks, tiles int
}

func countSave(s *save.SaveV1) saveCounts {
	c := saveCounts{
		players:  len(s.Players),
		entities: len(s.Entities),
		chunks:   len(s.Chunks),
		tiles:    len(s.TileEntities),
	}
	for _, p := range s.Players {
		c.items += len(p.Inventory) + len(p.EnderChest)
	}
	for _, e := range s.Entities {
		c.items += len(e.Equipment)
	}
	for _, te := range s.TileEntities {
		c.items += len(te.GetList("Items", nbt.TypeCompound))
	}
	for _, ch := range s.Chunks {
		c.blocks += len(ch.Blocks)
	}
	return c
}

func printInspect(w io.Writer, s *save.SaveV1, reg *datafix.Registry) {
	label := color.New(color.Bold)
	stored, has := s.FixVersion()
	d := datafix.ShouldRun(stored, has, cfg.SpecialMode)

	storedName := "none"
	if has {
		storedName = datafix.VersionName(stored)
	}
	fmt.Fprintf(w, "%s %s (format %d)\n", label.Sprint("world:"), s.Header.WorldID, s.Header.Version)
	fmt.Fprintf(w, "%s %s\n", label.Sprint("stored fix version:"), storedName)
	if d.Run {
		fmt.Fprintf(w, "%s %s from %s\n", label.Sprint("gate:"), color.GreenString("run"), datafix.VersionName(d.Previous))
		e := datafix.NewEngine(reg, d.Previous, s.Mods())
		fmt.Fprintf(w, "%s %d item, %d block, %d tile entity\n", label.Sprint("eligible fixes:"),
			e.Active(datafix.KindItem), e.Active(datafix.KindBlock), e.Active(datafix.KindTileEntity))
	} else {
		fmt.Fprintf(w, "%s %s\n", label.Sprint("gate:"), color.YellowString("skip"))
	}
	if d.Newer() {
		fmt.Fprintf(w, "%s stored version is newer than %d\n", color.RedString("warning:"), datafix.VersionCurrent)
	}

	c := countSave(s)
	fmt.Fprintf(w, "%s %s players, %s entities, %s items, %s chunks, %s blocks, %s tile entities\n",
		label.Sprint("records:"),
		humanize.Comma(int64(c.players)), humanize.Comma(int64(c.entities)), humanize.Comma(int64(c.items)),
		humanize.Comma(int64(c.chunks)), humanize.Comma(int64(c.blocks)), humanize.Comma(int64(c.tiles)))
}
