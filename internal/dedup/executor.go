package dedup

import (
	"context"
	"log/slog"

	"github.com/btraven00/pichaq/pkg/library"
)

// Result aggregates the outcome of executing one removal plan.
type Result struct {
	Removed int `json:"removed"`
	Errors  int `json:"errors"`
}

// Executor applies removal plans against a store's trash surface.
type Executor struct {
	trasher library.Trasher
}

// NewExecutor creates an Executor over a trash surface.
func NewExecutor(trasher library.Trasher) *Executor {
	return &Executor{trasher: trasher}
}

// Execute trashes every planned attachment. Each removal stands alone:
// a rejected trash is logged and counted, and execution moves on to the
// next key, so one failure never strands the rest of the plan.
func (e *Executor) Execute(ctx context.Context, parent library.Item, plan *Plan) Result {
	var result Result

	for _, att := range plan.Attachments() {
		if err := e.trasher.Trash(ctx, att.Key); err != nil {
			slog.Warn("failed to trash attachment",
				"key", att.Key,
				"title", att.Title,
				"parent", parent.Title,
				"error", err)

			result.Errors++

			continue
		}

		slog.Debug("trashed attachment", "key", att.Key, "title", att.Title, "parent", parent.Title)

		result.Removed++
	}

	return result
}
