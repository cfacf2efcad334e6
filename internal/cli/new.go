package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"datafixer.ai/internal/persistence/save"
)

// NewCmd creates an empty world save marked NEW.
func NewCmd() *cobra.Command {
	var (
		worldID string
		force   bool
	)
	cmd := &cobra.Command{
		Use:   "new <save>",
		Short: "Create a fresh world save",
		Long: `Creates an empty world save whose stored fix version is NEW, so no fix
ever runs on it. The loaded mods from the config become its mod list.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if strings.TrimSpace(worldID) == "" {
				return fmt.Errorf("--world is required")
			}
			if !force {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", path)
				} else if !errors.Is(err, fs.ErrNotExist) {
					return err
				}
			}
			s := save.New(worldID)
			for _, mod := range cfg.LoadedMods {
				s.ModList[mod] = ""
			}
			if err := save.Write(path, s); err != nil {
				return err
			}
			logger.Info("world created", zap.String("world", worldID), zap.String("path", path))
			fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s)\n", path, worldID)
			return nil
		},
	}
	cmd.Flags().StringVar(&worldID, "world", "", "world id (required)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing save")
	return cmd
}
