package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/btraven00/pichaq/internal/dedup"
	"github.com/btraven00/pichaq/internal/fetch"
	"github.com/btraven00/pichaq/pkg/library"
	"github.com/btraven00/pichaq/pkg/version"
)

var (
	dedupeDryRun bool
	dedupeKeep   string
	dedupeItems  []string
	dedupeRules  string
)

// dedupeCmd represents the dedupe command
var dedupeCmd = &cobra.Command{
	Use:   "dedupe",
	Short: "Remove duplicate PDF attachments, keeping one copy per version",
	Long: `Dedupe resolves duplicate PDF attachments under each item of the
library. Attachments are classified by version tier (published, accepted,
preprint or unversioned), fuzzy duplicates are grouped within each tier,
and every group keeps one canonical copy while the rest move to the trash.

Unversioned copies matching a versioned attachment are removed outright,
and published copies served by an aggregator yield to publisher-direct
ones.

Examples:
  pichaq dedupe --library ~/Zotero/zotero.sqlite
  pichaq dedupe --dry-run
  pichaq dedupe --item ABCD1234 --keep oldest
  pichaq dedupe --rules rules.yaml --output json`,
	RunE: runDedupe,
}

func runDedupe(cmd *cobra.Command, args []string) error {
	keeper, err := parseKeepPolicy(dedupeKeep)
	if err != nil {
		return err
	}

	rules, err := loadRules(dedupeRules)
	if err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()

	planner := dedup.NewPlanner(dedup.WithRules(rules), dedup.WithKeeper(keeper))

	opts := []dedup.Option{
		dedup.WithPlanner(planner),
		dedup.WithItems(dedupeItems...),
	}

	if dedupeDryRun {
		opts = append(opts, dedup.WithDryRun())
	}

	if output != outputFormatJSON {
		opts = append(opts, dedup.WithReporter(func(item library.Item, plan *dedup.Plan) {
			printItemReport(ctx, store, rules, item, plan)
		}))
	}

	summary, err := dedup.New(store, store, opts...).Run(ctx)
	if err != nil {
		return err
	}

	return outputSummary(summary)
}

// printItemReport prints one item's plan: every PDF copy with its tier,
// size and modification time, marked kept or planned for removal.
func printItemReport(ctx context.Context, reader library.Reader, rules *version.Rules, item library.Item, plan *dedup.Plan) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	fmt.Printf("\n📄 %s\n", item.Title)

	atts, err := reader.ChildAttachments(ctx, item.Key)
	if err != nil {
		// The plan still tells the user what will go.
		for _, att := range plan.Attachments() {
			fmt.Printf("   %s %s\n", red("✗ remove"), att.Title)
		}

		return
	}

	for _, att := range atts {
		if !att.IsPDF() {
			continue
		}

		mark := green("✓ keep  ")
		if plan.Contains(att.Key) {
			mark = red("✗ remove")
		}

		fmt.Printf("   %s %-32s %-11s %9s  %s\n",
			mark,
			truncateString(displayTitle(att.Title), 32),
			rules.Classify(att.Title),
			fetch.FormatBytes(att.Size),
			att.ModTime.Format("2006-01-02 15:04"))
	}
}

func outputSummary(summary dedup.Summary) error {
	if output == outputFormatJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")

		return encoder.Encode(summary)
	}

	fmt.Printf("\n📊 Summary:\n")
	fmt.Printf("   Items processed: %d\n", summary.ItemsProcessed)
	fmt.Printf("   Planned: %d\n", summary.Planned)

	if dedupeDryRun {
		fmt.Printf("   (dry run: nothing was removed)\n")
		return nil
	}

	fmt.Printf("   Removed: %d\n", summary.Removed)
	fmt.Printf("   Errors:  %d\n", summary.Errors)

	if msg := summary.Message(); msg != "" {
		icon := "✅"
		if summary.Errors > 0 {
			icon = "⚠️"
		}

		_, _ = fmt.Fprintf(os.Stderr, "\n%s %s\n", icon, msg)
	}

	return nil
}

// parseKeepPolicy maps the --keep flag to a retention policy.
func parseKeepPolicy(name string) (dedup.Keeper, error) {
	switch name {
	case "newest":
		return dedup.KeepNewest, nil
	case "oldest":
		return dedup.KeepOldest, nil
	default:
		return nil, fmt.Errorf("unknown keep policy %q (use newest or oldest)", name)
	}
}

func displayTitle(title string) string {
	if title == "" {
		return "(untitled)"
	}

	return title
}

// truncateString truncates a string to the specified length.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}

	return s[:maxLen-3] + "..."
}

func init() {
	rootCmd.AddCommand(dedupeCmd)

	dedupeCmd.Flags().BoolVar(&dedupeDryRun, "dry-run", false, "plan and report without removing anything")
	dedupeCmd.Flags().StringVar(&dedupeKeep, "keep", "newest", "which copy of a duplicate group to keep (newest, oldest)")
	dedupeCmd.Flags().StringSliceVar(&dedupeItems, "item", nil, "restrict the run to the given item keys")
	dedupeCmd.Flags().StringVar(&dedupeRules, "rules", "", "YAML file with classification rule overrides")
}
