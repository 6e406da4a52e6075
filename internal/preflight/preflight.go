package preflight

import (
	"context"

	"vocamail/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// RunAll executes every preflight check for the given config. The SMTP probe
// only runs when the transport settings are complete.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckWordPools(cfg.Paths.DataDir),
		CheckSubscriberStore(ctx, cfg.SubscribersDBPath()),
		CheckMailConfig(cfg.Mail),
	}
	if cfg.MailComplete() {
		results = append(results, CheckSMTPReachable(ctx, cfg.Mail.Server, cfg.Mail.Port))
	}
	return results
}

// AllPassed reports whether every result passed.
func AllPassed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}
