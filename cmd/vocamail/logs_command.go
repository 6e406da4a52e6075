package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"vocamail/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var (
		lines  int
		follow bool
		filter logs.Filter
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the vocamail log, optionally following new lines",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := filepath.Join(ctx.configValue().Paths.LogDir, logs.LogFile)
			out := cmd.OutOrStdout()

			tail, offset, err := logs.Last(path, lines, filter)
			if err != nil {
				return err
			}
			for _, line := range tail {
				fmt.Fprintln(out, line)
			}
			if !follow {
				return nil
			}

			followCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			err = logs.Follow(followCtx, path, offset, logs.DefaultPoll, filter, func(line string) {
				fmt.Fprintln(out, line)
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of trailing lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new lines until interrupted")
	cmd.Flags().StringVar(&filter.RunID, "run", "", "Only show lines from this cycle run id")
	cmd.Flags().StringVar(&filter.Contains, "grep", "", "Only show lines containing this text (case-insensitive)")
	return cmd
}
