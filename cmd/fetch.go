package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/btraven00/pichaq/internal/fetch"
)

var (
	fetchRate      float64
	fetchTimeout   int
	fetchOverwrite bool
)

// fetchSummary tallies one fetch run.
type fetchSummary struct {
	Fetched int   `json:"fetched"`
	Skipped int   `json:"skipped"`
	Failed  int   `json:"failed"`
	Bytes   int64 `json:"bytes"`
}

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download missing attachment files from their recorded URLs",
	Long: `Fetch downloads the backing file of every PDF attachment whose local
file is missing but whose URL is recorded. Files land at the attachment's
resolved storage path via a temp file, so an interrupted download never
leaves a partial PDF.

Downloads run sequentially with a polite rate limit (default one request
per second).

Examples:
  pichaq fetch --library ~/Zotero/zotero.sqlite
  pichaq fetch --rate 0.5 --timeout 120
  pichaq fetch --overwrite`,
	RunE: runFetch,
}

func runFetch(cmd *cobra.Command, args []string) error {
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

	fetcher := fetch.New(fetch.Config{
		Timeout:           time.Duration(fetchTimeout) * time.Second,
		RequestsPerSecond: fetchRate,
		Overwrite:         fetchOverwrite,
	})

	var summary fetchSummary

	for _, item := range items {
		if !item.Regular {
			continue
		}

		atts, err := store.ChildAttachments(ctx, item.Key)
		if err != nil {
			slog.Warn("listing attachments failed", "item", item.Key, "error", err)
			continue
		}

		for _, att := range atts {
			if !att.IsPDF() || att.URL == "" || att.Path == "" {
				continue
			}

			// A non-zero mtime means the backing file was statted fine.
			if !att.ModTime.IsZero() && !fetchOverwrite {
				continue
			}

			written, err := fetcher.Fetch(ctx, att.URL, att.Path)

			switch {
			case errors.Is(err, fetch.ErrExists):
				summary.Skipped++
			case err != nil:
				slog.Warn("fetch failed", "attachment", att.Key, "url", att.URL, "error", err)
				summary.Failed++
			default:
				if output != outputFormatJSON {
					fmt.Printf("   ⬇️  %s (%s)\n", att.Path, fetch.FormatBytes(written))
				}

				summary.Fetched++
				summary.Bytes += written
			}
		}
	}

	return outputFetchSummary(summary)
}

func outputFetchSummary(summary fetchSummary) error {
	if output == outputFormatJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")

		if err := encoder.Encode(summary); err != nil {
			return err
		}
	} else {
		fmt.Printf("\n📊 Summary:\n")
		fmt.Printf("   Fetched: %d (%s)\n", summary.Fetched, fetch.FormatBytes(summary.Bytes))
		fmt.Printf("   Skipped: %d\n", summary.Skipped)
		fmt.Printf("   Failed:  %d\n", summary.Failed)
	}

	if summary.Failed > 0 {
		return fmt.Errorf("fetch completed with %d error(s)", summary.Failed)
	}

	return nil
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().Float64Var(&fetchRate, "rate", 1, "maximum requests per second")
	fetchCmd.Flags().IntVarP(&fetchTimeout, "timeout", "t", 60, "timeout in seconds per download")
	fetchCmd.Flags().BoolVar(&fetchOverwrite, "overwrite", false, "re-download files that already exist")
}
