package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"vocamail/internal/logging"
	"vocamail/internal/schedule"
)

var runAtLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// parseRunAt accepts RFC 3339 or a local wall-clock time in loc.
func parseRunAt(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts, nil
	}
	for _, layout := range runAtLayouts {
		if ts, err := time.ParseInLocation(layout, value, loc); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q (use YYYY-MM-DD HH:MM or RFC 3339)", value)
}

func parseEntryID(value string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid schedule id %q", value)
	}
	return id, nil
}

func newScheduleCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Manage the run-due schedule table",
	}
	cmd.AddCommand(newScheduleAddCommand(ctx))
	cmd.AddCommand(newScheduleListCommand(ctx))
	cmd.AddCommand(newScheduleUpdateCommand(ctx))
	cmd.AddCommand(newScheduleDeleteCommand(ctx))
	cmd.AddCommand(newScheduleDueCommand(ctx))
	cmd.AddCommand(newScheduleMarkPlayedCommand(ctx))
	cmd.AddCommand(newScheduleResetCommand(ctx))
	return cmd
}

type draftFlags struct {
	at    string
	url   string
	title string
	memo  string
}

func (f *draftFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.at, "at", "", "Run time (YYYY-MM-DD HH:MM in schedule.timezone, or RFC 3339)")
	cmd.Flags().StringVar(&f.url, "url", "", "URL to open when due")
	cmd.Flags().StringVar(&f.title, "title", "", "Short title")
	cmd.Flags().StringVar(&f.memo, "memo", "", "Free-form memo")
}

// apply overlays the flags the user set onto d.
func (f *draftFlags) apply(cmd *cobra.Command, d schedule.Draft, loc *time.Location) (schedule.Draft, error) {
	flags := cmd.Flags()
	if flags.Changed("at") {
		ts, err := parseRunAt(f.at, loc)
		if err != nil {
			return d, err
		}
		d.RunAt = ts
	}
	if flags.Changed("url") {
		d.URL = f.url
	}
	if flags.Changed("title") {
		d.Title = f.title
	}
	if flags.Changed("memo") {
		d.Memo = f.memo
	}
	return d, nil
}

func entryRows(entries []schedule.Entry, loc *time.Location) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		played := "no"
		if e.Played {
			played = "yes"
			if e.PlayedAt != nil {
				played = e.PlayedAt.In(loc).Format("01-02 15:04")
			}
		}
		rows = append(rows, []string{
			strconv.FormatInt(e.ID, 10),
			e.RunAt.In(loc).Format("2006-01-02 15:04"),
			e.Title,
			e.URL,
			played,
		})
	}
	return rows
}

func renderEntries(cmd *cobra.Command, entries []schedule.Entry, loc *time.Location) {
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"ID", "Run At", "Title", "URL", "Played"},
		entryRows(entries, loc),
		[]columnAlignment{alignRight},
	))
}

func newScheduleAddCommand(ctx *commandContext) *cobra.Command {
	var flags draftFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a scheduled entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			loc := ctx.configValue().Location()
			draft, err := flags.apply(cmd, schedule.Draft{}, loc)
			if err != nil {
				return err
			}
			return ctx.withSchedule(cmd.Context(), func(store *schedule.Store) error {
				entry, err := store.Add(cmd.Context(), draft)
				if err != nil {
					return err
				}
				if ctx.jsonMode() {
					return writeJSON(cmd, entry)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added schedule %d at %s\n", entry.ID, entry.RunAt.In(loc).Format("2006-01-02 15:04"))
				return nil
			})
		},
	}

	flags.register(cmd)
	return cmd
}

func newScheduleListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List scheduled entries by run time",
		RunE: func(cmd *cobra.Command, args []string) error {
			loc := ctx.configValue().Location()
			return ctx.withSchedule(cmd.Context(), func(store *schedule.Store) error {
				entries, err := store.List(cmd.Context())
				if err != nil {
					return err
				}
				if ctx.jsonMode() {
					if entries == nil {
						entries = []schedule.Entry{}
					}
					return writeJSON(cmd, entries)
				}
				if len(entries) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No scheduled entries")
					return nil
				}
				renderEntries(cmd, entries, loc)
				return nil
			})
		},
	}
}

func newScheduleUpdateCommand(ctx *commandContext) *cobra.Command {
	var flags draftFlags

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change the run time, URL, title, or memo of an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseEntryID(args[0])
			if err != nil {
				return err
			}
			loc := ctx.configValue().Location()
			return ctx.withSchedule(cmd.Context(), func(store *schedule.Store) error {
				current, err := store.Get(cmd.Context(), id)
				if err != nil {
					return err
				}
				draft, err := flags.apply(cmd, schedule.Draft{
					RunAt: current.RunAt,
					URL:   current.URL,
					Title: current.Title,
					Memo:  current.Memo,
				}, loc)
				if err != nil {
					return err
				}
				if err := store.Update(cmd.Context(), id, draft); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated schedule %d\n", id)
				return nil
			})
		},
	}

	flags.register(cmd)
	return cmd
}

func newScheduleDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete an entry",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseEntryID(args[0])
			if err != nil {
				return err
			}
			return ctx.withSchedule(cmd.Context(), func(store *schedule.Store) error {
				if err := store.Delete(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted schedule %d\n", id)
				return nil
			})
		},
	}
}

func newScheduleDueCommand(ctx *commandContext) *cobra.Command {
	var (
		window time.Duration
		mark   bool
	)

	cmd := &cobra.Command{
		Use:   "due",
		Short: "List unplayed entries whose run time is within the due window of now",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			if !cmd.Flags().Changed("window") {
				window = cfg.ScheduleWindow()
			}
			loc := cfg.Location()
			logger := logging.NewComponentLogger(ctx.loggerValue(), "schedule")

			return ctx.withSchedule(cmd.Context(), func(store *schedule.Store) error {
				due, err := store.Due(cmd.Context(), time.Now(), window)
				if err != nil {
					return err
				}
				if mark {
					notifier := ctx.notifier()
					for _, e := range due {
						if err := store.MarkPlayed(cmd.Context(), e.ID); err != nil {
							return err
						}
						logger.Info("schedule entry due", logging.Int64("id", e.ID), logging.String("url", e.URL))
						if nerr := notifier.NotifyScheduleDue(cmd.Context(), e.Title, e.URL); nerr != nil {
							logger.Warn("schedule notification failed", logging.Error(nerr))
						}
					}
				}
				if ctx.jsonMode() {
					if due == nil {
						due = []schedule.Entry{}
					}
					return writeJSON(cmd, due)
				}
				if len(due) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Nothing due")
					return nil
				}
				renderEntries(cmd, due, loc)
				return nil
			})
		},
	}

	cmd.Flags().DurationVar(&window, "window", schedule.DefaultWindow, "Due window on either side of now (default: schedule.window_seconds)")
	cmd.Flags().BoolVar(&mark, "mark", false, "Mark due entries played and send a notification for each")
	return cmd
}

func newScheduleMarkPlayedCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "mark-played <id>",
		Short: "Mark an entry played",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseEntryID(args[0])
			if err != nil {
				return err
			}
			return ctx.withSchedule(cmd.Context(), func(store *schedule.Store) error {
				if err := store.MarkPlayed(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Marked schedule %d played\n", id)
				return nil
			})
		},
	}
}

func newScheduleResetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reset <id>",
		Short: "Mark an entry unplayed again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseEntryID(args[0])
			if err != nil {
				return err
			}
			return ctx.withSchedule(cmd.Context(), func(store *schedule.Store) error {
				if err := store.ResetPlayed(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Reset schedule %d\n", id)
				return nil
			})
		},
	}
}
