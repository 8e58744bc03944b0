package dedup

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/btraven00/pichaq/pkg/library"
)

// Summary aggregates one engine run across items.
type Summary struct {
	ItemsProcessed int `json:"items_processed"`
	Planned        int `json:"planned"`
	Removed        int `json:"removed"`
	Errors         int `json:"errors"`
}

// Message returns the human-readable completion line, or "" when the
// run has nothing to report (nothing removed and nothing failed).
func (s Summary) Message() string {
	if s.Removed == 0 && s.Errors == 0 {
		return ""
	}

	return fmt.Sprintf("Removed %d duplicate attachment(s) across %d item(s), %d error(s)",
		s.Removed, s.ItemsProcessed, s.Errors)
}

// Engine walks a library and resolves duplicate attachments item by
// item. Processing is strictly sequential: one item is fully read,
// planned and executed before the next begins, and nothing carries over
// between items except the summary counters.
type Engine struct {
	reader   library.Reader
	trasher  library.Trasher
	planner  *Planner
	report   func(library.Item, *Plan)
	itemKeys []string
	dryRun   bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithPlanner replaces the default planner.
func WithPlanner(p *Planner) Option {
	return func(e *Engine) {
		e.planner = p
	}
}

// WithDryRun plans without executing any removal.
func WithDryRun() Option {
	return func(e *Engine) {
		e.dryRun = true
	}
}

// WithItems restricts the run to the named item keys.
func WithItems(keys ...string) Option {
	return func(e *Engine) {
		e.itemKeys = keys
	}
}

// WithReporter registers a callback invoked with every non-empty plan
// before it executes. The dedupe command uses it to print per-item
// reports.
func WithReporter(fn func(library.Item, *Plan)) Option {
	return func(e *Engine) {
		e.report = fn
	}
}

// New creates an Engine over the two store surfaces.
func New(reader library.Reader, trasher library.Trasher, opts ...Option) *Engine {
	e := &Engine{
		reader:  reader,
		trasher: trasher,
		planner: NewPlanner(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Planner returns the engine's planner.
func (e *Engine) Planner() *Planner {
	return e.planner
}

// Run processes the selected items and returns aggregate counts.
//
// Items that are not regular bibliographic records or that are webpages
// are skipped without counting; items whose attachments cannot be read
// are logged and skipped likewise. Holding fewer than two PDFs is not a
// skip, just an item with an empty plan. None of these conditions is an
// error: the only errors an engine run can accumulate are per-
// attachment removal failures, and the only fatal condition is failing
// to enumerate the items at all.
func (e *Engine) Run(ctx context.Context) (Summary, error) {
	var summary Summary

	items, err := e.reader.Items(ctx, e.itemKeys...)
	if err != nil {
		return summary, fmt.Errorf("failed to enumerate items: %w", err)
	}

	executor := NewExecutor(e.trasher)

	for _, item := range items {
		if !item.Regular || strings.EqualFold(item.Type, "webpage") {
			slog.Debug("skipping item", "key", item.Key, "type", item.Type)
			continue
		}

		atts, err := e.reader.ChildAttachments(ctx, item.Key)
		if err != nil {
			slog.Warn("failed to list attachments", "key", item.Key, "title", item.Title, "error", err)
			continue
		}

		summary.ItemsProcessed++

		plan := e.planner.PlanRemovals(atts)
		if plan.Len() == 0 {
			continue
		}

		summary.Planned += plan.Len()

		if e.report != nil {
			e.report(item, plan)
		}

		if e.dryRun {
			continue
		}

		result := executor.Execute(ctx, item, plan)
		summary.Removed += result.Removed
		summary.Errors += result.Errors
	}

	return summary, nil
}
