package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"vocamail/internal/subscribers"
)

func newSubscribersCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "subscribers",
		Aliases: []string{"subs"},
		Short:   "Manage mailing list subscribers",
	}
	cmd.AddCommand(newSubscribersAddCommand(ctx))
	cmd.AddCommand(newSubscribersListCommand(ctx))
	cmd.AddCommand(newSubscribersUpdateCommand(ctx))
	cmd.AddCommand(newSubscribersDeleteCommand(ctx))
	return cmd
}

func newSubscribersAddCommand(ctx *commandContext) *cobra.Command {
	var in subscribers.NewSubscriber

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a subscriber",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSubscribers(cmd.Context(), func(store *subscribers.Store) error {
				sub, err := store.Add(cmd.Context(), in)
				if err != nil {
					return err
				}
				if ctx.jsonMode() {
					return writeJSON(cmd, sub)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added subscriber %d: %s (%s)\n", sub.ID, sub.Email, sub.LevelDisplay())
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&in.Email, "email", "", "Subscriber email address")
	cmd.Flags().StringVar(&in.Name, "name", "", "Display name")
	cmd.Flags().IntVar(&in.Level, "level", 1, "Vocabulary level (1-3)")
	cmd.Flags().StringVar(&in.Media, "media", "", "Preferred media note")
	return cmd
}

func newSubscribersListCommand(ctx *commandContext) *cobra.Command {
	var level int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List subscribers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSubscribers(cmd.Context(), func(store *subscribers.Store) error {
				var (
					subs []subscribers.Subscriber
					err  error
				)
				if level > 0 {
					subs, err = store.ListByLevel(cmd.Context(), level)
				} else {
					subs, err = store.List(cmd.Context())
				}
				if err != nil {
					return err
				}
				if ctx.jsonMode() {
					return writeJSON(cmd, subs)
				}
				if len(subs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No subscribers")
					return nil
				}
				rows := make([][]string, 0, len(subs))
				for _, s := range subs {
					rows = append(rows, []string{
						strconv.FormatInt(s.ID, 10),
						s.Email,
						s.Name,
						strconv.Itoa(s.Level),
						s.Media,
						s.SubscribedAt.Format("2006-01-02 15:04"),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Email", "Name", "Level", "Media", "Subscribed"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&level, "level", 0, "Only list subscribers at this level")
	return cmd
}

func newSubscribersUpdateCommand(ctx *commandContext) *cobra.Command {
	var (
		email string
		name  string
		level int
		media string
	)

	cmd := &cobra.Command{
		Use:   "update <email>",
		Short: "Update fields of every subscriber row with the given email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch subscribers.Patch
			flags := cmd.Flags()
			if flags.Changed("email") {
				patch.Email = &email
			}
			if flags.Changed("name") {
				patch.Name = &name
			}
			if flags.Changed("level") {
				patch.Level = &level
			}
			if flags.Changed("media") {
				patch.Media = &media
			}

			return ctx.withSubscribers(cmd.Context(), func(store *subscribers.Store) error {
				n, err := store.Update(cmd.Context(), strings.TrimSpace(args[0]), patch)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated %d subscriber(s)\n", n)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "New email address")
	cmd.Flags().StringVar(&name, "name", "", "New display name")
	cmd.Flags().IntVar(&level, "level", 0, "New vocabulary level (1-3)")
	cmd.Flags().StringVar(&media, "media", "", "New media note")
	return cmd
}

func newSubscribersDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <email>",
		Aliases: []string{"rm"},
		Short:   "Delete every subscriber row with the given email",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSubscribers(cmd.Context(), func(store *subscribers.Store) error {
				n, err := store.Delete(cmd.Context(), strings.TrimSpace(args[0]))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d subscriber(s)\n", n)
				return nil
			})
		},
	}
}
