package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/btraven00/pichaq/pkg/version"
)

var classifyRules string

// classifyCmd represents the classify command
var classifyCmd = &cobra.Command{
	Use:   "classify <title> [url]",
	Short: "Classify an attachment title and URL by version tier",
	Long: `Classify previews how an attachment would be classified: the version
tier its title encodes, the source hint its URL resolves to, and the
stamped title the stamp command would write.

Examples:
  pichaq classify "Published Version"
  pichaq classify "Full Text PDF" https://arxiv.org/pdf/1706.03762
  pichaq classify "Accepted Version" https://sci-hub.se/10.1000/x -o json`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runClassify,
}

func runClassify(cmd *cobra.Command, args []string) error {
	title := args[0]

	rawURL := ""
	if len(args) > 1 {
		rawURL = args[1]
	}

	rules, err := loadRules(classifyRules)
	if err != nil {
		return err
	}

	tier := rules.Classify(title)
	hint := rules.SourceHint(rawURL)

	if output == outputFormatJSON {
		view := struct {
			Title        string       `json:"title"`
			URL          string       `json:"url,omitempty"`
			Tier         version.Tier `json:"tier"`
			SourceHint   string       `json:"source_hint,omitempty"`
			Supplemental bool         `json:"supplemental,omitempty"`
			Stamped      string       `json:"stamped_title"`
		}{
			Title:        title,
			URL:          rawURL,
			Tier:         tier,
			SourceHint:   hint,
			Supplemental: rules.Supplemental(title),
			Stamped:      stampTitle(tier, hint),
		}

		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")

		return encoder.Encode(view)
	}

	fmt.Printf("🔍 %s\n", title)
	fmt.Printf("   Tier: %s (%s)\n", tier, tier.Label())

	if hint != "" {
		fmt.Printf("   Source: %s\n", hint)
	}

	if rules.Supplemental(title) {
		fmt.Printf("   Supplemental material (never subsumed by URL matching)\n")
	}

	fmt.Printf("   Stamped title: %s\n", stampTitle(tier, hint))

	return nil
}

func init() {
	rootCmd.AddCommand(classifyCmd)

	classifyCmd.Flags().StringVar(&classifyRules, "rules", "", "YAML file with classification rule overrides")
}
