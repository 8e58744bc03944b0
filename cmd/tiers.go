package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/btraven00/pichaq/pkg/version"
)

var (
	tiersSources bool
	tiersJSON    bool
	tiersRules   string
)

// tiersCmd represents the tiers command
var tiersCmd = &cobra.Command{
	Use:   "tiers",
	Short: "List the version tiers and classification rules",
	Long: `The tiers command shows how attachment titles are mapped to manuscript
version tiers and how URLs are mapped to source hints.

Patterns are checked in priority order; the first match decides the
tier. Source domains map URL hosts to the publisher or aggregator that
served the file.

Examples:
  pichaq tiers                      # list title patterns
  pichaq tiers --sources            # list known source domains
  pichaq tiers --rules rules.yaml   # include rule-file overrides
  pichaq tiers --json               # machine-readable output`,
	RunE: runTiers,
}

func runTiers(cmd *cobra.Command, args []string) error {
	rules, err := loadRules(tiersRules)
	if err != nil {
		return err
	}

	if tiersJSON {
		return outputTiersJSON(rules)
	}

	if tiersSources {
		return listSources(rules)
	}

	return listPatterns(rules)
}

// tierPatternView is the JSON shape of a tier pattern; the compiled
// regexp is rendered as its source text.
type tierPatternView struct {
	Tier        version.Tier `json:"tier"`
	Pattern     string       `json:"pattern"`
	Description string       `json:"description,omitempty"`
	Examples    []string     `json:"examples,omitempty"`
	Priority    int          `json:"priority"`
}

type sourceDomainView struct {
	Key        string   `json:"key"`
	Name       string   `json:"name"`
	FullName   string   `json:"full_name,omitempty"`
	Hosts      []string `json:"hosts"`
	Aggregator bool     `json:"aggregator,omitempty"`
}

func outputTiersJSON(rules *version.Rules) error {
	patterns := make([]tierPatternView, 0, len(rules.Patterns))
	for _, p := range rules.Patterns {
		patterns = append(patterns, tierPatternView{
			Tier:        p.Tier,
			Pattern:     p.Regex.String(),
			Description: p.Description,
			Examples:    p.Examples,
			Priority:    p.Priority,
		})
	}

	sources := make([]sourceDomainView, 0, len(rules.Sources))
	for _, key := range sortedSourceKeys(rules) {
		src := rules.Sources[key]
		sources = append(sources, sourceDomainView{
			Key:        key,
			Name:       src.Name,
			FullName:   src.FullName,
			Hosts:      src.Hosts,
			Aggregator: src.Aggregator,
		})
	}

	view := struct {
		Tiers    []version.Tier     `json:"tiers"`
		Patterns []tierPatternView  `json:"patterns"`
		Sources  []sourceDomainView `json:"sources"`
	}{
		Tiers:    version.All,
		Patterns: patterns,
		Sources:  sources,
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	return encoder.Encode(view)
}

func listPatterns(rules *version.Rules) error {
	fmt.Printf("Version Tiers (%d patterns):\n\n", len(rules.Patterns))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIER\tPRIORITY\tPATTERN\tDESCRIPTION")
	fmt.Fprintln(w, "----\t--------\t-------\t-----------")

	for _, p := range rules.Patterns {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", p.Tier, p.Priority, p.Regex.String(), p.Description)
	}

	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\n💡 Tips:\n")
	fmt.Printf("   • Unmatched titles fall back to the %q tier\n", version.Unversioned)
	fmt.Printf("   • Use --sources to see the known source domains\n")
	fmt.Printf("   • Use --rules <file> to preview YAML overrides\n")
	fmt.Printf("   • Run 'pichaq classify <title> [url]' to test a title\n")

	return nil
}

func listSources(rules *version.Rules) error {
	fmt.Printf("Known Source Domains (%d):\n\n", len(rules.Sources))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SOURCE\tHINT\tHOSTS\tAGGREGATOR")
	fmt.Fprintln(w, "------\t----\t-----\t----------")

	for _, key := range sortedSourceKeys(rules) {
		src := rules.Sources[key]

		hint := src.Name
		if src.Aggregator {
			hint = version.HintSciHub
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%t\n", key, hint, strings.Join(src.Hosts, ", "), src.Aggregator)
	}

	return w.Flush()
}

func sortedSourceKeys(rules *version.Rules) []string {
	keys := make([]string, 0, len(rules.Sources))
	for key := range rules.Sources {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

func init() {
	rootCmd.AddCommand(tiersCmd)

	tiersCmd.Flags().BoolVar(&tiersSources, "sources", false, "list known source domains instead of patterns")
	tiersCmd.Flags().BoolVar(&tiersJSON, "json", false, "output as JSON")
	tiersCmd.Flags().StringVar(&tiersRules, "rules", "", "YAML file with classification rule overrides")
}
