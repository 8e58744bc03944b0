package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/btraven00/pichaq/pkg/version"
)

var probeText bool

// probeCmd represents the probe command
var probeCmd = &cobra.Command{
	Use:   "probe <file.pdf>",
	Short: "Probe a PDF file for version markers",
	Long: `Probe extracts the text of a PDF and inspects its leading content for
version markers: arXiv stamps, acceptance notices, version-of-record
lines. This is the same detection the stamp command runs under --deep,
exposed for a single file.

Examples:
  pichaq probe paper.pdf
  pichaq probe paper.pdf --text > paper.txt
  pichaq probe paper.pdf -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runProbe,
}

func runProbe(cmd *cobra.Command, args []string) error {
	filename := args[0]

	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return fmt.Errorf("file does not exist: %s", filename)
	}

	if probeText {
		text, err := version.ExtractText(filename)
		if err != nil {
			return fmt.Errorf("failed to convert PDF: %w", err)
		}

		fmt.Print(text)

		return nil
	}

	result, err := version.ProbeFile(filename)
	if err != nil {
		return fmt.Errorf("failed to probe PDF: %w", err)
	}

	if output == outputFormatJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")

		return encoder.Encode(result)
	}

	fmt.Printf("🔍 %s\n", filename)
	fmt.Printf("   Tier: %s (%s)\n", result.Tier, result.Tier.Label())

	if result.SourceHint != "" {
		fmt.Printf("   Source: %s\n", result.SourceHint)
	}

	if result.Evidence != "" {
		fmt.Printf("   Evidence: %q\n", truncateString(result.Evidence, 60))
	}

	fmt.Printf("   Extracted: %d chars\n", result.Chars)

	return nil
}

func init() {
	rootCmd.AddCommand(probeCmd)

	probeCmd.Flags().BoolVar(&probeText, "text", false, "dump the extracted text instead of probing")
}
