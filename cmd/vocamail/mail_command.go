package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"vocamail/internal/logging"
	"vocamail/internal/mailer"
	"vocamail/internal/subscribers"
)

func newMailCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mail",
		Short: "Send staged words",
	}
	cmd.AddCommand(newMailSendCommand(ctx))
	return cmd
}

func newMailSendCommand(ctx *commandContext) *cobra.Command {
	var extra []string

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Email today's words from mailed.json to every subscriber and mark them sent",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			logger := logging.NewComponentLogger(ctx.loggerValue(), "mail")

			var recipients []string
			if err := ctx.withSubscribers(cmd.Context(), func(store *subscribers.Store) error {
				subs, err := store.List(cmd.Context())
				if err != nil {
					return err
				}
				recipients = subscribers.Emails(subs)
				return nil
			}); err != nil {
				return err
			}
			recipients = mailer.NormalizeRecipients(append(recipients, extra...))

			var result mailer.Result
			err := ctx.withRunLock(func() error {
				dispatcher := mailer.NewDispatcher(cfg.Mail, mailer.NewSMTPTransport(cfg.Mail), logger)
				result = dispatcher.Dispatch(cmd.Context(), mailer.Batch{
					Recipients: recipients,
					Staging:    ctx.wordStore().Mailed(),
				})
				return nil
			})
			if err != nil {
				return err
			}

			notifier := ctx.notifier()
			switch {
			case result.Status.Delivered():
				if nerr := notifier.NotifyMailSent(cmd.Context(), len(result.Matched), len(result.Recipients)); nerr != nil {
					logger.Warn("mail sent notification failed", logging.Error(nerr))
				}
			case result.Status.Failed():
				if nerr := notifier.NotifyError(cmd.Context(), fmt.Errorf("%s: %s", result.Status, result.Detail), "mail send"); nerr != nil {
					logger.Warn("mail error notification failed", logging.Error(nerr))
				}
			}

			if ctx.jsonMode() {
				if err := writeJSON(cmd, result); err != nil {
					return err
				}
			} else {
				renderDispatchResult(cmd, result)
			}
			if result.Status.Failed() {
				return fmt.Errorf("mail send: %s", result.Status)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&extra, "to", nil, "Additional recipient addresses")
	return cmd
}

func renderDispatchResult(cmd *cobra.Command, result mailer.Result) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	detail := result.Detail
	if result.Status.Delivered() {
		detail = fmt.Sprintf("%d word(s) to %d recipient(s), %d marked sent", len(result.Matched), len(result.Recipients), result.Marked)
	}
	fmt.Fprintln(out, renderStatusLine("Mail", dispatchKind(result.Status), strings.TrimSpace(string(result.Status)+" "+detail), colorize))
	if result.Subject != "" {
		fmt.Fprintln(out, renderStatusLine("Subject", statusInfo, result.Subject, colorize))
	}
}
