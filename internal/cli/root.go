// Package cli holds the fixer subcommands.
package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"datafixer.ai/internal/catalogs"
	"datafixer.ai/internal/config"
	"datafixer.ai/internal/datafix"
	"datafixer.ai/internal/datafix/labsfixes"
	"datafixer.ai/internal/datafix/remap"
	"datafixer.ai/internal/logging"
)

var (
	configPath  string
	catalogsDir string
	dataDir     string

	cfg    config.Config
	logger = zap.NewNop()
)

// Setup installs the global flags and the logger lifecycle on root.
func Setup(root *cobra.Command) {
	root.PersistentFlags().StringVar(&configPath, "config", "configs/fixer.yaml", "path to fixer.yaml")
	root.PersistentFlags().StringVar(&catalogsDir, "catalogs", "configs/catalogs", "host catalog directory")
	root.PersistentFlags().StringVar(&dataDir, "data", "data", "runtime data directory (audit, index, backups)")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		path := configPath
		if !cmd.Flags().Changed("config") {
			// The default location is optional.
			if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
				path = ""
			}
		}
		c, err := config.Load(path)
		if err != nil {
			return err
		}
		l, err := logging.New(c.Log.Level, c.Log.JSON)
		if err != nil {
			return err
		}
		cfg, logger = c, l
		return nil
	}
	root.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	}
}

// buildRegistry derives the remap tables from the catalogs and registers the
// fixes for the configured environment.
func buildRegistry() (*catalogs.Catalogs, *datafix.Registry, error) {
	cats, err := catalogs.Load(catalogsDir)
	if err != nil {
		return nil, nil, fmt.Errorf("catalogs: %w", err)
	}
	tables, err := remap.Build(cats, cfg.Mode)
	if err != nil {
		return nil, nil, fmt.Errorf("remap: %w", err)
	}
	reg, err := labsfixes.Build(tables, cfg.FixOptions())
	if err != nil {
		return nil, nil, fmt.Errorf("fixes: %w", err)
	}
	logger.Debug("fixes registered",
		zap.String("mode", string(cfg.Mode)),
		zap.Int("items", reg.Len(datafix.KindItem)),
		zap.Int("blocks", reg.Len(datafix.KindBlock)),
		zap.Int("tile_entities", reg.Len(datafix.KindTileEntity)),
	)
	return cats, reg, nil
}

// dataPath resolves p against the data directory unless it is absolute.
func dataPath(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dataDir, p)
}
