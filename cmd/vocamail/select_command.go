package main

import (
	"fmt"
	"math/rand/v2"

	"github.com/spf13/cobra"

	"vocamail/internal/logging"
	"vocamail/internal/selection"
	"vocamail/internal/vocab"
)

func newSelectCommand(ctx *commandContext) *cobra.Command {
	var (
		level  int
		count  int
		policy string
		seed   uint64
		save   bool
	)

	cmd := &cobra.Command{
		Use:   "select",
		Short: "Pick words from a level pool, optionally staging them in mailed.json",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			if !vocab.ValidLevel(level) {
				return fmt.Errorf("level must be 1, 2, or 3, got %d", level)
			}
			if !cmd.Flags().Changed("policy") {
				policy = cfg.Selection.Policy
			}
			parsed, err := selection.ParsePolicy(policy)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("count") {
				count = cfg.Selection.WordsPerLevel
			}

			store := ctx.wordStore()
			return ctx.withRunLock(func() error {
				pool, err := store.LoadLevel(level)
				if err != nil {
					return err
				}
				cursor := 0
				if parsed == selection.PolicySequential {
					cursors := selection.NewCursorStore(cfg.Paths.DataDir)
					if cursor, err = cursors.Advance(len(pool), count); err != nil {
						logging.WarnWithContext(logging.NewComponentLogger(ctx.loggerValue(), "select"),
							"selection cursor not saved", "cursor_write_failed",
							logging.String("path", cursors.Path()),
							logging.Error(err),
							logging.String(logging.FieldImpact, "the next sequential run may repeat words"),
						)
					}
				}

				picked := selection.New(newRand(seed)).Select(pool, count, parsed, cursor)
				if save && len(picked) > 0 {
					if _, err := store.StageForMail(store.Mailed(), picked); err != nil {
						return err
					}
				}

				if ctx.jsonMode() {
					if picked == nil {
						picked = []vocab.WordEntry{}
					}
					return writeJSON(cmd, picked)
				}
				out := cmd.OutOrStdout()
				if len(picked) == 0 {
					fmt.Fprintf(out, "No words selected from level %d\n", level)
					return nil
				}
				fmt.Fprintln(out, renderTable(
					[]string{"#", "Word", "Meaning", "Phrase", "Category"},
					wordRows(picked),
					[]columnAlignment{alignRight},
				))
				if save {
					fmt.Fprintf(out, "Staged %d word(s) in %s\n", len(picked), vocab.MailedFile)
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&level, "level", 1, "Level pool to select from (1-3)")
	cmd.Flags().IntVar(&count, "count", 0, "Number of words (default: selection.words_per_level)")
	cmd.Flags().StringVar(&policy, "policy", "", "Selection policy: random or sequential (default: selection.policy)")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Seed for the random policy (0 picks a fresh seed)")
	cmd.Flags().BoolVar(&save, "save", false, "Stage the selection in mailed.json")
	return cmd
}

// newRand returns a PCG source for seed, or nil so the selector seeds itself.
func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		return nil
	}
	return rand.New(rand.NewPCG(seed, seed))
}
