package cohort

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"vocamail/internal/logging"
	"vocamail/internal/mailer"
	"vocamail/internal/selection"
	"vocamail/internal/subscribers"
	"vocamail/internal/vocab"
)

// DefaultWordsPerLevel is the batch size used when none is configured.
const DefaultWordsPerLevel = 2

// SubscriberLister is the read side of the subscriber store.
type SubscriberLister interface {
	List(ctx context.Context) ([]subscribers.Subscriber, error)
}

// Selector picks words from a pool.
type Selector interface {
	Select(pool []vocab.WordEntry, count int, policy selection.Policy, cursor int) []vocab.WordEntry
}

// Dispatcher delivers a staged batch.
type Dispatcher interface {
	Dispatch(ctx context.Context, batch mailer.Batch) mailer.Result
}

// Options controls a cycle.
type Options struct {
	WordsPerLevel int
	Policy        selection.Policy
	Levels        []int
}

// Deps are the collaborators of one cycle.
type Deps struct {
	Subscribers SubscriberLister
	Words       *vocab.Store
	Selector    Selector
	Cursor      *selection.CursorStore
	Dispatcher  Dispatcher
	Cache       *PartitionCache
	Logger      *slog.Logger
	Now         func() time.Time
}

// LevelReport describes what happened for one level.
type LevelReport struct {
	Level      int           `json:"level"`
	Recipients []string      `json:"recipients,omitempty"`
	Skipped    bool          `json:"skipped"`
	Words      []string      `json:"words,omitempty"`
	Staging    string        `json:"staging,omitempty"`
	Status     mailer.Status `json:"status,omitempty"`
	Detail     string        `json:"detail,omitempty"`
	Error      string        `json:"error,omitempty"`
}

// Failed reports whether the level hit an error before or during dispatch.
func (r LevelReport) Failed() bool {
	return r.Error != "" || r.Status.Failed()
}

// Report summarizes a cycle.
type Report struct {
	RunID      string        `json:"run_id,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Levels     []LevelReport `json:"levels"`
}

// Delivered counts levels whose batch reached the transport.
func (r Report) Delivered() int {
	n := 0
	for _, l := range r.Levels {
		if l.Status.Delivered() {
			n++
		}
	}
	return n
}

// Failures counts levels that failed.
func (r Report) Failures() int {
	n := 0
	for _, l := range r.Levels {
		if l.Failed() {
			n++
		}
	}
	return n
}

// Orchestrator runs daily cycles. Build one per run.
type Orchestrator struct {
	deps   Deps
	opts   Options
	logger *slog.Logger
}

// New returns an orchestrator, filling defaults for zero options.
func New(deps Deps, opts Options) *Orchestrator {
	if opts.WordsPerLevel <= 0 {
		opts.WordsPerLevel = DefaultWordsPerLevel
	}
	if opts.Policy == "" {
		opts.Policy = selection.PolicyRandom
	}
	if len(opts.Levels) == 0 {
		opts.Levels = subscribers.Levels
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Orchestrator{deps: deps, opts: opts, logger: logging.NewComponentLogger(deps.Logger, "cohort")}
}

// RunDailyCycle executes one fan-out. The error is non-nil only when the
// subscriber store cannot be read.
func (o *Orchestrator) RunDailyCycle(ctx context.Context) (Report, error) {
	report := Report{StartedAt: o.deps.Now()}
	if id, ok := logging.RunIDFromContext(ctx); ok {
		report.RunID = id
	}
	logger := logging.WithContext(ctx, o.logger)

	parts, err := o.partition(ctx, logger)
	if err != nil {
		report.FinishedAt = o.deps.Now()
		return report, err
	}

	for _, level := range o.opts.Levels {
		levelCtx := logging.WithLevel(ctx, level)
		report.Levels = append(report.Levels, o.runLevel(levelCtx, level, parts[level]))
	}

	report.FinishedAt = o.deps.Now()
	logger.Info("daily cycle finished",
		logging.Int("levels", len(report.Levels)),
		logging.Int("delivered", report.Delivered()),
		logging.Int("failed", report.Failures()),
		logging.Duration("duration", report.FinishedAt.Sub(report.StartedAt)),
	)
	return report, nil
}

func (o *Orchestrator) partition(ctx context.Context, logger *slog.Logger) (map[int][]subscribers.Subscriber, error) {
	subs, err := o.deps.Subscribers.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}
	parts := subscribers.Partition(subs)
	if o.deps.Cache == nil {
		return parts, nil
	}

	if err := o.deps.Cache.Save(parts); err != nil {
		logging.WarnWithContext(logger, "partition cache not written", "cache_write_failed",
			logging.String("path", o.deps.Cache.Path()),
			logging.Error(err),
			logging.String(logging.FieldImpact, "cycle continues with the in-memory partition"),
		)
		return parts, nil
	}

	cached, err := o.deps.Cache.Load()
	if err == nil && !Empty(cached) {
		return cached, nil
	}
	if err != nil {
		logging.WarnWithContext(logger, "partition cache unreadable", "cache_read_failed",
			logging.String("path", o.deps.Cache.Path()),
			logging.Error(err),
		)
	}

	logger.Info("partition cache empty, refreshing from subscriber store")
	fresh, err := o.deps.Subscribers.List(ctx)
	if err != nil {
		logging.WarnWithContext(logger, "subscriber refresh failed", "subscriber_refresh_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "cycle continues with the first partition"),
		)
		return parts, nil
	}
	parts = subscribers.Partition(fresh)
	if Empty(parts) {
		logger.Info("no subscribers found")
		return parts, nil
	}
	if err := o.deps.Cache.Save(parts); err != nil {
		logging.WarnWithContext(logger, "partition cache not written", "cache_write_failed",
			logging.String("path", o.deps.Cache.Path()),
			logging.Error(err),
		)
	}
	return parts, nil
}

func (o *Orchestrator) runLevel(ctx context.Context, level int, subs []subscribers.Subscriber) LevelReport {
	logger := logging.WithContext(ctx, o.logger)
	report := LevelReport{Level: level, Recipients: subscribers.Emails(subs)}

	if len(report.Recipients) == 0 {
		report.Skipped = true
		logger.Info("no subscribers for level, skipping",
			logging.Args(logging.DecisionAttrs("level_dispatch", "skipped", "no subscribers")...)...)
		return report
	}

	fail := func(stage string, err error) LevelReport {
		report.Error = fmt.Sprintf("%s: %v", stage, err)
		logging.ErrorWithContext(logger, "level processing failed", "level_failed",
			logging.String("stage", stage),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "other levels continue; rerun the cycle after fixing the data files"),
		)
		return report
	}

	pool, err := o.deps.Words.LoadLevel(level)
	if err != nil {
		return fail("load pool", err)
	}

	cursor := 0
	if o.opts.Policy == selection.PolicySequential && o.deps.Cursor != nil {
		cursor, err = o.deps.Cursor.Advance(len(pool), o.opts.WordsPerLevel)
		if err != nil {
			logging.WarnWithContext(logger, "selection cursor not saved", "cursor_write_failed",
				logging.String("path", o.deps.Cursor.Path()),
				logging.Error(err),
				logging.String(logging.FieldImpact, "the next sequential run may repeat words"),
			)
		}
	}

	selected := o.deps.Selector.Select(pool, o.opts.WordsPerLevel, o.opts.Policy, cursor)
	for _, e := range selected {
		report.Words = append(report.Words, e.Word)
	}
	logger.Info("words selected",
		logging.String("policy", string(o.opts.Policy)),
		logging.Int("pool", len(pool)),
		logging.Int("selected", len(selected)),
		logging.Int("cursor", cursor),
	)

	staging := o.deps.Words.SelectedLevel(level)
	report.Staging = staging.Path
	if err := staging.Save(vocab.Stamp(selected, o.deps.Now())); err != nil {
		return fail("stage words", err)
	}
	staged, err := staging.Load()
	if err != nil {
		return fail("reload staging", err)
	}
	if staged == nil {
		staged = []vocab.MailedRecord{}
	}

	result := o.deps.Dispatcher.Dispatch(ctx, mailer.Batch{
		Records:    staged,
		Recipients: report.Recipients,
		Staging:    staging,
	})
	report.Status = result.Status
	report.Detail = result.Detail
	return report
}
