package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/btraven00/pichaq/pkg/library"
	"github.com/btraven00/pichaq/pkg/version"
)

var (
	stampDeep   bool
	stampDryRun bool
	stampRules  string
)

// stampSummary tallies one stamp run.
type stampSummary struct {
	Stamped int `json:"stamped"`
	Current int `json:"current"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// stampCmd represents the stamp command
var stampCmd = &cobra.Command{
	Use:   "stamp",
	Short: "Stamp attachment titles with their manuscript version",
	Long: `Stamp rewrites PDF attachment titles to a canonical version label
derived from the current title and URL: "Published Version (Nature)",
"Accepted Version", "Preprint (arXiv)". Attachments that reveal nothing
stay untouched.

With --deep, attachments whose title and URL reveal nothing have the
leading text of their PDF probed for version markers (arXiv stamps,
acceptance notices, version-of-record lines).

Examples:
  pichaq stamp --library ~/Zotero/zotero.sqlite --dry-run
  pichaq stamp --deep
  pichaq stamp --rules rules.yaml`,
	RunE: runStamp,
}

func runStamp(cmd *cobra.Command, args []string) error {
	rules, err := loadRules(stampRules)
	if err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()

	items, err := store.Items(ctx)
	if err != nil {
		return fmt.Errorf("failed to list items: %w", err)
	}

	var summary stampSummary

	for _, item := range items {
		if !item.Regular {
			continue
		}

		atts, err := store.ChildAttachments(ctx, item.Key)
		if err != nil {
			slog.Warn("listing attachments failed", "item", item.Key, "error", err)
			continue
		}

		shown := false
		header := func() {
			if shown || output == outputFormatJSON {
				return
			}

			fmt.Printf("\n📄 %s\n", displayTitle(item.Title))
			shown = true
		}

		for _, att := range atts {
			if !att.IsPDF() {
				continue
			}

			stampOne(ctx, store, rules, att, header, &summary)
		}
	}

	return outputStampSummary(summary)
}

// stampOne classifies a single attachment and rewrites its title when a
// version tier or source hint is found.
func stampOne(ctx context.Context, titler library.Titler, rules *version.Rules, att library.Attachment, header func(), summary *stampSummary) {
	tier := rules.Classify(att.Title)
	hint := rules.SourceHint(att.URL)

	if !tier.Versioned() && hint == "" && stampDeep && att.Path != "" {
		if probe, err := version.ProbeFile(att.Path); err != nil {
			slog.Debug("PDF probe failed", "path", att.Path, "error", err)
		} else {
			tier, hint = probe.Tier, probe.SourceHint
		}
	}

	if !tier.Versioned() && hint == "" {
		summary.Skipped++
		return
	}

	title := stampTitle(tier, hint)
	if att.Title == title {
		summary.Current++
		return
	}

	if stampDryRun {
		header()
		if output != outputFormatJSON {
			fmt.Printf("   %s → %s\n", displayTitle(att.Title), title)
		}

		summary.Stamped++

		return
	}

	if err := titler.SetAttachmentTitle(ctx, att.Key, title); err != nil {
		slog.Warn("stamping failed", "attachment", att.Key, "error", err)
		summary.Failed++

		return
	}

	header()
	if output != outputFormatJSON {
		fmt.Printf("   ✓ %s → %s\n", displayTitle(att.Title), title)
	}

	summary.Stamped++
}

// stampTitle builds the canonical attachment title for a tier and an
// optional source hint.
func stampTitle(tier version.Tier, hint string) string {
	if hint == "" {
		return tier.Label()
	}

	return fmt.Sprintf("%s (%s)", tier.Label(), hint)
}

func outputStampSummary(summary stampSummary) error {
	if output == outputFormatJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")

		return encoder.Encode(summary)
	}

	fmt.Printf("\n📊 Summary:\n")
	fmt.Printf("   Stamped: %d\n", summary.Stamped)
	fmt.Printf("   Already current: %d\n", summary.Current)
	fmt.Printf("   Skipped: %d\n", summary.Skipped)

	if summary.Failed > 0 {
		fmt.Printf("   Failed: %d\n", summary.Failed)
		return fmt.Errorf("stamping completed with %d error(s)", summary.Failed)
	}

	if stampDryRun {
		fmt.Printf("   (dry run: no titles were changed)\n")
	}

	return nil
}

func init() {
	rootCmd.AddCommand(stampCmd)

	stampCmd.Flags().BoolVar(&stampDeep, "deep", false, "probe PDF text when title and URL reveal nothing")
	stampCmd.Flags().BoolVar(&stampDryRun, "dry-run", false, "report title changes without writing them")
	stampCmd.Flags().StringVar(&stampRules, "rules", "", "YAML file with classification rule overrides")
}
