package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"vocamail/internal/cohort"
	"vocamail/internal/logging"
	"vocamail/internal/mailer"
	"vocamail/internal/selection"
	"vocamail/internal/subscribers"
	"vocamail/internal/vocab"
)

func newCycleCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cycle",
		Short: "Run or inspect the per-level daily mailing cycle",
	}
	cmd.AddCommand(newCycleRunCommand(ctx))
	cmd.AddCommand(newCycleShowCacheCommand(ctx))
	return cmd
}

func newCycleRunCommand(ctx *commandContext) *cobra.Command {
	var (
		words  int
		policy string
		seed   uint64
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Select, stage, and mail words for every level that has subscribers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			if !cmd.Flags().Changed("policy") {
				policy = cfg.Selection.Policy
			}
			parsed, err := selection.ParsePolicy(policy)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("words") {
				words = cfg.Selection.WordsPerLevel
			}

			runID := uuid.NewString()
			runCtx := logging.WithRunID(cmd.Context(), runID)
			logger := ctx.loggerValue()
			notifier := ctx.notifier()

			var report cohort.Report
			err = ctx.withRunLock(func() error {
				return ctx.withSubscribers(runCtx, func(store *subscribers.Store) error {
					dir := cfg.Paths.DataDir
					orchestrator := cohort.New(cohort.Deps{
						Subscribers: store,
						Words:       vocab.NewStore(dir),
						Selector:    selection.New(newRand(seed)),
						Cursor:      selection.NewCursorStore(dir),
						Dispatcher:  mailer.NewDispatcher(cfg.Mail, mailer.NewSMTPTransport(cfg.Mail), logger),
						Cache:       cohort.NewPartitionCache(dir),
						Logger:      logger,
					}, cohort.Options{
						WordsPerLevel: words,
						Policy:        parsed,
						Levels:        cfg.Selection.Levels,
					})
					var runErr error
					report, runErr = orchestrator.RunDailyCycle(runCtx)
					return runErr
				})
			})
			if err != nil {
				if nerr := notifier.NotifyError(runCtx, err, "daily cycle"); nerr != nil {
					logger.Warn("cycle error notification failed", logging.Error(nerr))
				}
				return err
			}

			duration := report.FinishedAt.Sub(report.StartedAt)
			if nerr := notifier.NotifyCycleCompleted(runCtx, report.Delivered(), report.Failures(), duration); nerr != nil {
				logger.Warn("cycle notification failed", logging.Error(nerr))
			}

			if ctx.jsonMode() {
				if err := writeJSON(cmd, report); err != nil {
					return err
				}
			} else {
				renderCycleReport(cmd, report, duration)
			}
			if failed := report.Failures(); failed > 0 {
				return fmt.Errorf("daily cycle %s: %d level(s) failed", runID, failed)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&words, "words", 0, "Words per level (default: selection.words_per_level)")
	cmd.Flags().StringVar(&policy, "policy", "", "Selection policy: random or sequential (default: selection.policy)")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Seed for the random policy (0 picks a fresh seed)")
	return cmd
}

func renderCycleReport(cmd *cobra.Command, report cohort.Report, duration time.Duration) {
	rows := make([][]string, 0, len(report.Levels))
	for _, l := range report.Levels {
		status := string(l.Status)
		detail := l.Detail
		switch {
		case l.Skipped:
			status = "skipped"
			detail = "no subscribers"
		case l.Error != "":
			status = "error"
			detail = l.Error
		}
		rows = append(rows, []string{
			strconv.Itoa(l.Level),
			strconv.Itoa(len(l.Recipients)),
			strings.Join(l.Words, ", "),
			status,
			detail,
		})
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderTable(
		[]string{"Level", "Recipients", "Words", "Status", "Detail"},
		rows,
		[]columnAlignment{alignRight, alignRight},
	))
	fmt.Fprintf(out, "Run %s: %d delivered, %d failed in %s\n",
		report.RunID, report.Delivered(), report.Failures(), duration.Round(time.Millisecond))
}

func newCycleShowCacheCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show-cache",
		Short: "Print the subscriber partition written by the last cycle",
		RunE: func(cmd *cobra.Command, args []string) error {
			parts, err := cohort.NewPartitionCache(ctx.configValue().Paths.DataDir).Load()
			if err != nil {
				return err
			}
			if ctx.jsonMode() {
				return writeJSON(cmd, parts)
			}
			if cohort.Empty(parts) {
				fmt.Fprintln(cmd.OutOrStdout(), "Partition cache is empty")
				return nil
			}
			rows := make([][]string, 0, len(subscribers.Levels))
			for _, level := range subscribers.Levels {
				emails := subscribers.Emails(parts[level])
				rows = append(rows, []string{strconv.Itoa(level), strconv.Itoa(len(emails)), strings.Join(emails, ", ")})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Level", "Subscribers", "Emails"},
				rows,
				[]columnAlignment{alignRight, alignRight},
			))
			return nil
		},
	}
}
