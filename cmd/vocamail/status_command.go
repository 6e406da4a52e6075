package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"vocamail/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Run readiness checks against the data directory, stores, and mail transport",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			results := preflight.RunAll(cmd.Context(), cfg)
			if ctx.jsonMode() {
				return writeJSON(cmd, results)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			lines := renderSectionHeader("vocamail", colorize)
			lines = append(lines,
				renderStatusLine("Config policy", statusInfo, fmt.Sprintf("%s, %d words per level", cfg.Selection.Policy, cfg.Selection.WordsPerLevel), colorize),
				renderStatusLine("Notifications", statusInfo, "ntfy "+yesNo(strings.TrimSpace(cfg.Notifications.NtfyTopic) != ""), colorize),
			)
			for _, result := range results {
				lines = append(lines, preflightLine(result, colorize))
			}
			fmt.Fprintln(out, strings.Join(lines, "\n"))
			return nil
		},
	}
}
