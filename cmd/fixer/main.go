package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"datafixer.ai/internal/cli"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "fixer",
		Short: "fixer - versioned data fixes for world saves",
		Long: `fixer applies the pack's data fixes to world saves exactly once per fix
version, and can serve the same fix pass to a running host over websocket.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cli.Setup(rootCmd)

	rootCmd.AddCommand(cli.MigrateCmd())
	rootCmd.AddCommand(cli.NewCmd())
	rootCmd.AddCommand(cli.RulesCmd())
	rootCmd.AddCommand(cli.InspectCmd())
	rootCmd.AddCommand(cli.HistoryCmd())
	rootCmd.AddCommand(cli.ServeCmd())

	ctx, cancel := signalContext()
	defer cancel()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		cancel()
		os.Exit(1)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}
