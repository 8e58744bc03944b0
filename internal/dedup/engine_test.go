package dedup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/btraven00/pichaq/pkg/library"
	"github.com/btraven00/pichaq/pkg/library/memory"
)

// seedDuplicates adds an item holding two identically-sized PDFs and
// returns the item plus the attachment planning should remove.
func seedDuplicates(store *memory.Store, title string) (library.Item, library.Attachment) {
	item := store.AddItem(title, "journalArticle")

	older := store.AddAttachment(item.Key, library.Attachment{
		Title:   "Full Text PDF",
		Size:    102400,
		ModTime: baseTime,
	})
	store.AddAttachment(item.Key, library.Attachment{
		Title:   "Full Text PDF",
		Size:    102400,
		ModTime: baseTime.Add(time.Hour),
	})

	return item, older
}

func TestEngine_Run(t *testing.T) {
	store := memory.New()
	defer store.Close()

	_, older := seedDuplicates(store, "Attention Is All You Need")

	// A webpage item never enters processing, duplicates or not.
	web := store.AddItem("Archived Blog Post", "webpage")
	webAtt := store.AddAttachment(web.Key, library.Attachment{Title: "Full Text PDF", Size: 500, ModTime: baseTime})
	store.AddAttachment(web.Key, library.Attachment{Title: "Full Text PDF", Size: 500, ModTime: baseTime})

	// Non-regular records are skipped before their children are read.
	store.AddItem("reading notes", "note")

	// A single copy is processed but plans nothing.
	single := store.AddItem("Deep Residual Learning", "journalArticle")
	store.AddAttachment(single.Key, library.Attachment{Title: "Full Text PDF", Size: 999, ModTime: baseTime})

	summary, err := New(store, store).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	want := Summary{ItemsProcessed: 2, Planned: 1, Removed: 1, Errors: 0}
	if summary != want {
		t.Errorf("Run() = %+v, want %+v", summary, want)
	}

	if !store.IsTrashed(older.Key) {
		t.Errorf("attachment %s not trashed", older.Key)
	}

	if store.IsTrashed(webAtt.Key) {
		t.Error("webpage attachment trashed")
	}
}

func TestEngine_DryRun(t *testing.T) {
	store := memory.New()
	defer store.Close()

	seedDuplicates(store, "Attention Is All You Need")

	summary, err := New(store, store, WithDryRun()).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	want := Summary{ItemsProcessed: 1, Planned: 1, Removed: 0, Errors: 0}
	if summary != want {
		t.Errorf("Run() = %+v, want %+v", summary, want)
	}

	if trashed := store.Trashed(); len(trashed) != 0 {
		t.Errorf("dry run trashed %v", trashed)
	}
}

func TestEngine_WithItems(t *testing.T) {
	store := memory.New()
	defer store.Close()

	first, firstOlder := seedDuplicates(store, "Attention Is All You Need")
	_, secondOlder := seedDuplicates(store, "Deep Residual Learning")

	summary, err := New(store, store, WithItems(first.Key)).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if summary.ItemsProcessed != 1 {
		t.Errorf("ItemsProcessed = %d, want 1", summary.ItemsProcessed)
	}

	if !store.IsTrashed(firstOlder.Key) {
		t.Errorf("attachment %s not trashed", firstOlder.Key)
	}

	if store.IsTrashed(secondOlder.Key) {
		t.Error("attachment outside the item selection trashed")
	}
}

func TestEngine_Reporter(t *testing.T) {
	store := memory.New()
	defer store.Close()

	item, older := seedDuplicates(store, "Attention Is All You Need")

	// An item with nothing to plan never reaches the reporter.
	quiet := store.AddItem("Deep Residual Learning", "journalArticle")
	store.AddAttachment(quiet.Key, library.Attachment{Title: "Full Text PDF", Size: 999, ModTime: baseTime})

	var reported []string

	reporter := func(it library.Item, plan *Plan) {
		for _, key := range plan.Keys() {
			reported = append(reported, it.Key+"/"+key)
		}
	}

	if _, err := New(store, store, WithReporter(reporter)).Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if len(reported) != 1 || reported[0] != item.Key+"/"+older.Key {
		t.Errorf("reported = %v, want [%s/%s]", reported, item.Key, older.Key)
	}
}

func TestEngine_AttachmentReadFailure(t *testing.T) {
	store := memory.New()
	defer store.Close()

	broken, brokenOlder := seedDuplicates(store, "Attention Is All You Need")
	_, healthyOlder := seedDuplicates(store, "Deep Residual Learning")

	store.FailChildAttachments(broken.Key, errors.New("malformed attachment row"))

	summary, err := New(store, store).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	// The broken item is logged and skipped without counting; the
	// healthy one still resolves.
	want := Summary{ItemsProcessed: 1, Planned: 1, Removed: 1, Errors: 0}
	if summary != want {
		t.Errorf("Run() = %+v, want %+v", summary, want)
	}

	if store.IsTrashed(brokenOlder.Key) {
		t.Error("attachment of unreadable item trashed")
	}

	if !store.IsTrashed(healthyOlder.Key) {
		t.Errorf("attachment %s not trashed", healthyOlder.Key)
	}
}

func TestEngine_TrashFailure(t *testing.T) {
	store := memory.New()
	defer store.Close()

	_, older := seedDuplicates(store, "Attention Is All You Need")

	store.FailTrash(older.Key, errors.New("database is locked"))

	summary, err := New(store, store).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	want := Summary{ItemsProcessed: 1, Planned: 1, Removed: 0, Errors: 1}
	if summary != want {
		t.Errorf("Run() = %+v, want %+v", summary, want)
	}
}

func TestEngine_ItemsError(t *testing.T) {
	store := memory.New()
	store.Close()

	_, err := New(store, store).Run(context.Background())
	if err == nil {
		t.Fatal("Run() succeeded on a closed store")
	}

	if !errors.Is(err, library.ErrClosed) {
		t.Errorf("Run() error = %v, want ErrClosed", err)
	}
}

func TestSummary_Message(t *testing.T) {
	tests := []struct {
		name    string
		summary Summary
		want    string
	}{
		{
			name:    "nothing to report",
			summary: Summary{ItemsProcessed: 5},
			want:    "",
		},
		{
			name:    "removals reported",
			summary: Summary{ItemsProcessed: 5, Planned: 2, Removed: 2},
			want:    "Removed 2 duplicate attachment(s) across 5 item(s), 0 error(s)",
		},
		{
			name:    "errors alone still reported",
			summary: Summary{ItemsProcessed: 5, Planned: 2, Errors: 2},
			want:    "Removed 0 duplicate attachment(s) across 5 item(s), 2 error(s)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.summary.Message(); got != tt.want {
				t.Errorf("Message() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEngine_PlannerAccessor(t *testing.T) {
	planner := NewPlanner(WithKeeper(KeepOldest))

	engine := New(memory.New(), memory.New(), WithPlanner(planner))

	if engine.Planner() != planner {
		t.Error("Planner() does not return the injected planner")
	}
}
