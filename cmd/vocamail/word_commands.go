package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"vocamail/internal/fileutil"
	"vocamail/internal/vocab"
)

func newWordsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "words",
		Short: "Curate level pools and the learned, mailed, and vocabulary collections",
	}
	cmd.AddCommand(newWordsListCommand(ctx))
	cmd.AddCommand(newWordsImportCommand(ctx))
	cmd.AddCommand(newWordsExportCommand(ctx))
	cmd.AddCommand(newWordsLearnCommand(ctx))
	cmd.AddCommand(newWordsStageCommand(ctx))
	cmd.AddCommand(newWordsMoveBackCommand(ctx))
	cmd.AddCommand(newWordsDeleteCommand(ctx))
	cmd.AddCommand(newWordsStatsCommand(ctx))
	return cmd
}

// collectionFlags picks one named collection. Level pools are the default.
type collectionFlags struct {
	level      int
	learned    bool
	mailed     bool
	vocabulary bool
}

func (f *collectionFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.level, "level", 1, "Level pool (1-3)")
	cmd.Flags().BoolVar(&f.learned, "learned", false, "Use the learned collection")
	cmd.Flags().BoolVar(&f.mailed, "mailed", false, "Use the mailed staging collection")
	cmd.Flags().BoolVar(&f.vocabulary, "vocabulary", false, "Use the working vocabulary text file")
	cmd.MarkFlagsMutuallyExclusive("learned", "mailed", "vocabulary")
}

func (f *collectionFlags) name() string {
	switch {
	case f.learned:
		return "learned"
	case f.mailed:
		return "mailed"
	case f.vocabulary:
		return "vocabulary"
	default:
		return fmt.Sprintf("level%d", f.level)
	}
}

func wordRows(entries []vocab.WordEntry) [][]string {
	rows := make([][]string, 0, len(entries))
	for i, e := range entries {
		rows = append(rows, []string{strconv.Itoa(i + 1), e.Word, e.Meaning, e.Phrase, e.Category})
	}
	return rows
}

func newWordsListCommand(ctx *commandContext) *cobra.Command {
	var collection collectionFlags
	var category string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the words of a collection",
		RunE: func(cmd *cobra.Command, args []string) error {
			name := collection.name()
			entries, err := ctx.wordStore().LoadCollection(name)
			if err != nil {
				return err
			}
			entries = vocab.FilterByCategory(entries, category)
			if ctx.jsonMode() {
				if entries == nil {
					entries = []vocab.WordEntry{}
				}
				return writeJSON(cmd, entries)
			}
			if len(entries) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No words in %s\n", name)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"#", "Word", "Meaning", "Phrase", "Category"},
				wordRows(entries),
				[]columnAlignment{alignRight},
			))
			return nil
		},
	}

	collection.register(cmd)
	cmd.Flags().StringVar(&category, "category", "", "Only list words in this category (\"all\" for every category)")
	return cmd
}

func newWordsImportCommand(ctx *commandContext) *cobra.Command {
	var level int
	var source string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Append words from a pipe-separated text file to a level pool",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !vocab.ValidLevel(level) {
				return fmt.Errorf("level must be 1, 2, or 3, got %d", level)
			}
			store := ctx.wordStore()
			path := strings.TrimSpace(source)
			if path == "" {
				path = store.VocabularyPath()
			}
			return ctx.withRunLock(func() error {
				entries, err := vocab.ReadText(path)
				if err != nil {
					return err
				}
				backup, err := fileutil.BackupFile(store.Path(vocab.LevelFile(level)))
				if err != nil {
					return err
				}
				added, err := store.AddToLevel(level, entries)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Imported %d of %d words into level %d\n", added, len(entries), level)
				if backup != "" {
					fmt.Fprintf(out, "Previous pool saved to %s\n", backup)
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&level, "level", 1, "Target level pool (1-3)")
	cmd.Flags().StringVar(&source, "file", "", "Text file with one \"word | meaning | phrase | category\" per line (default: vocabulary.txt)")
	return cmd
}

func newWordsExportCommand(ctx *commandContext) *cobra.Command {
	var collection collectionFlags
	var target string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a collection as pipe-separated text",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := ctx.wordStore()
			entries, err := store.LoadCollection(collection.name())
			if err != nil {
				return err
			}
			path := strings.TrimSpace(target)
			if path == "" {
				path = store.VocabularyPath()
			}
			if _, err := fileutil.BackupFile(path); err != nil {
				return err
			}
			if err := vocab.WriteText(path, entries); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d words from %s to %s\n", len(entries), collection.name(), path)
			return nil
		},
	}

	collection.register(cmd)
	cmd.Flags().StringVar(&target, "file", "", "Destination text file (default: vocabulary.txt)")
	return cmd
}

func newWordsLearnCommand(ctx *commandContext) *cobra.Command {
	var level int

	cmd := &cobra.Command{
		Use:   "learn <word>",
		Short: "Move a word from a level pool into the learned collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRunLock(func() error {
				entry, err := ctx.wordStore().MarkLearned(level, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Marked %q as learned (%s)\n", entry.Word, entry.Difficulty)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&level, "level", 1, "Level pool holding the word (1-3)")
	return cmd
}

func newWordsStageCommand(ctx *commandContext) *cobra.Command {
	var level int
	var force bool

	cmd := &cobra.Command{
		Use:   "stage <word>...",
		Short: "Stage words from a level pool into mailed.json for today's send",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := ctx.wordStore()
			return ctx.withRunLock(func() error {
				pool, err := store.LoadLevel(level)
				if err != nil {
					return err
				}
				existing, err := store.Mailed().Load()
				if err != nil {
					return err
				}

				var entries []vocab.WordEntry
				for _, word := range args {
					idx := vocab.Find(pool, word, "")
					if idx < 0 {
						return fmt.Errorf("%s in level %d: %w", word, level, vocab.ErrWordNotFound)
					}
					if !force && vocab.IsStaged(existing, word) {
						return fmt.Errorf("%q is already staged and unsent (use --force to stage again)", word)
					}
					entries = append(entries, pool[idx])
				}

				records, err := store.StageForMail(store.Mailed(), entries)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Staged %d word(s) in %s\n", len(records), vocab.MailedFile)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&level, "level", 1, "Level pool holding the words (1-3)")
	cmd.Flags().BoolVar(&force, "force", false, "Stage even if an unsent record already exists")
	return cmd
}

func newWordsMoveBackCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "move-back <word>",
		Short: "Return a word to vocabulary.txt and drop it from mailed and learned",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRunLock(func() error {
				entry, err := ctx.wordStore().MoveBack(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Moved %q back to %s\n", entry.Word, vocab.VocabularyFile)
				return nil
			})
		},
	}
}

func newWordsDeleteCommand(ctx *commandContext) *cobra.Command {
	var level int
	var category string

	cmd := &cobra.Command{
		Use:   "delete <word>",
		Short: "Remove a word from a level pool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRunLock(func() error {
				err := ctx.wordStore().DeleteFromLevel(level, args[0], category)
				if errors.Is(err, vocab.ErrWordNotFound) {
					return fmt.Errorf("no %q in level %d", args[0], level)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %q from level %d\n", args[0], level)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&level, "level", 1, "Level pool (1-3)")
	cmd.Flags().StringVar(&category, "category", "", "Only delete the entry in this category")
	return cmd
}

func newWordsStatsCommand(ctx *commandContext) *cobra.Command {
	var collection collectionFlags

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Count the words of a collection per category",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := ctx.wordStore().LoadCollection(collection.name())
			if err != nil {
				return err
			}
			stats := vocab.CategoryStats(entries)
			if ctx.jsonMode() {
				return writeJSON(cmd, stats)
			}
			rows := make([][]string, 0, len(stats)+1)
			for _, s := range stats {
				rows = append(rows, []string{s.Category, strconv.Itoa(s.Count)})
			}
			rows = append(rows, []string{"total", strconv.Itoa(len(entries))})
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Category", "Words"},
				rows,
				[]columnAlignment{alignLeft, alignRight},
			))
			return nil
		},
	}

	collection.register(cmd)
	return cmd
}
