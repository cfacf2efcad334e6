package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"datafixer.ai/internal/datafix"
)

// RulesCmd lists the registered fixes.
func RulesCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List registered data fixes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, reg, err := buildRegistry()
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(reg.Describe())
			}
			printRules(cmd.OutOrStdout(), reg.Describe())
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

var kindColor = map[datafix.Kind]*color.Color{
	datafix.KindItem:       color.New(color.FgCyan, color.Bold),
	datafix.KindBlock:      color.New(color.FgHiMagenta, color.Bold),
	datafix.KindTileEntity: color.New(color.FgYellow, color.Bold),
}

func printRules(w io.Writer, fixes []datafix.FixInfo) {
	flag := color.New(color.Faint)
	byKind := map[datafix.Kind][]datafix.FixInfo{}
	for _, f := range fixes {
		byKind[f.Kind] = append(byKind[f.Kind], f)
	}
	for _, k := range datafix.Kinds {
		fmt.Fprintf(w, "%s (%d)\n", kindColor[k].Sprint(k), len(byKind[k]))
		for _, f := range byKind[k] {
			var flags string
			if f.NeedsMode {
				flags += " [mode]"
			}
			if f.NeedsTileEntity {
				flags += " [tile entity]"
			}
			fmt.Fprintf(w, "  %s%s\n", f.Name, flag.Sprint(flags))
			if f.Description != "" {
				fmt.Fprintf(w, "      %s\n", f.Description)
			}
		}
	}
}
