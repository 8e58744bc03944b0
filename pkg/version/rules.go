package version

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rules bundles the tier patterns, source domains and exclusion pattern
// used to classify attachments. Construct one with Default or LoadRules;
// a zero value has no patterns and classifies everything as Unversioned.
type Rules struct {
	Patterns     []TierPattern
	Sources      map[string]SourceDomain
	supplemental *regexp.Regexp
}

// Default returns rules backed by copies of the built-in tables.
func Default() *Rules {
	r := &Rules{
		Patterns:     make([]TierPattern, len(TierPatterns)),
		Sources:      make(map[string]SourceDomain, len(KnownSources)),
		supplemental: supplementalPattern,
	}
	copy(r.Patterns, TierPatterns)

	for key, src := range KnownSources {
		r.Sources[key] = src
	}

	return r
}

// rulesFile is the on-disk YAML layout accepted by LoadRules.
type rulesFile struct {
	Patterns []struct {
		Tier        string   `yaml:"tier"`
		Match       string   `yaml:"match"`
		Description string   `yaml:"description"`
		Examples    []string `yaml:"examples"`
		Priority    int      `yaml:"priority"`
	} `yaml:"patterns"`
	Sources map[string]struct {
		Name       string   `yaml:"name"`
		FullName   string   `yaml:"full_name"`
		Hosts      []string `yaml:"hosts"`
		Aggregator bool     `yaml:"aggregator"`
	} `yaml:"sources"`
	Supplemental string `yaml:"supplemental"`
}

// LoadRules reads a YAML rules file and merges it over the defaults:
// file patterns are added to the built-in ones (priority decides the
// check order), sources are merged by key, and a non-empty supplemental
// entry replaces the built-in exclusion pattern. All expressions are
// compiled case-insensitively.
func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	var rf rulesFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("failed to parse rules file %s: %w", path, err)
	}

	rules := Default()

	for _, p := range rf.Patterns {
		tier, err := ParseTier(p.Tier)
		if err != nil {
			return nil, fmt.Errorf("rules file %s: %w", path, err)
		}

		re, err := regexp.Compile("(?i)" + p.Match)
		if err != nil {
			return nil, fmt.Errorf("rules file %s: invalid pattern %q: %w", path, p.Match, err)
		}

		rules.Patterns = append(rules.Patterns, TierPattern{
			Tier:        tier,
			Regex:       re,
			Description: p.Description,
			Examples:    p.Examples,
			Priority:    p.Priority,
		})
	}

	for key, s := range rf.Sources {
		src := SourceDomain{
			Name:       s.Name,
			FullName:   s.FullName,
			Hosts:      s.Hosts,
			Aggregator: s.Aggregator,
		}
		if src.Name == "" {
			src.Name = key
		}

		if len(src.Hosts) == 0 {
			src.Hosts = []string{key}
		}

		rules.Sources[key] = src
	}

	if rf.Supplemental != "" {
		re, err := regexp.Compile("(?i)" + rf.Supplemental)
		if err != nil {
			return nil, fmt.Errorf("rules file %s: invalid supplemental pattern %q: %w", path, rf.Supplemental, err)
		}

		rules.supplemental = re
	}

	sortPatterns(rules.Patterns)

	return rules, nil
}

// Match returns the highest-priority pattern matching the title.
func (r *Rules) Match(title string) (*TierPattern, bool) {
	for i := range r.Patterns {
		pattern := &r.Patterns[i]
		if pattern.Regex.MatchString(title) {
			return pattern, true
		}
	}

	return nil, false
}

// Classify returns the tier encoded in an attachment title. Titles
// matching no pattern are Unversioned.
func (r *Rules) Classify(title string) Tier {
	if pattern, ok := r.Match(title); ok {
		return pattern.Tier
	}

	return Unversioned
}

// Source resolves a URL's host against the known source domains.
func (r *Rules) Source(rawURL string) (*SourceDomain, bool) {
	host := hostOf(rawURL)
	if host == "" {
		return nil, false
	}

	for key := range r.Sources {
		src := r.Sources[key]
		if src.MatchesHost(host) {
			return &src, true
		}
	}

	return nil, false
}

// SourceHint returns the hint recorded for attachments served from a
// recognized host: HintSciHub for aggregators, the source's short name
// for publishers, and "" when the host is unrecognized.
func (r *Rules) SourceHint(rawURL string) string {
	src, ok := r.Source(rawURL)
	if !ok {
		return ""
	}

	if src.Aggregator {
		return HintSciHub
	}

	return src.Name
}

// Supplemental reports whether a title names supplemental material
// rather than a manuscript copy.
func (r *Rules) Supplemental(title string) bool {
	if r.supplemental == nil {
		return false
	}

	return r.supplemental.MatchString(title)
}

// hostOf extracts the lowercase hostname from a URL, tolerating bare
// hosts without a scheme.
func hostOf(rawURL string) string {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return ""
	}

	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Host == "" {
		parsed, err = url.Parse("https://" + trimmed)
		if err != nil {
			return ""
		}
	}

	return strings.ToLower(parsed.Hostname())
}

// defaultRules backs the package-level convenience functions.
var defaultRules = Default()

// Classify classifies a title using the built-in rules.
func Classify(title string) Tier {
	return defaultRules.Classify(title)
}

// SourceHint resolves a URL using the built-in rules.
func SourceHint(rawURL string) string {
	return defaultRules.SourceHint(rawURL)
}

// Supplemental tests a title against the built-in exclusion pattern.
func Supplemental(title string) bool {
	return defaultRules.Supplemental(title)
}
