package version

import (
	"regexp"
	"strings"
)

// TierPattern defines a title pattern that assigns an attachment to a
// publication tier
type TierPattern struct {
	Tier        Tier
	Regex       *regexp.Regexp
	Description string
	Examples    []string
	Priority    int // Higher priority patterns are checked first
}

// SourceDomain represents a known host that serves paper PDFs
type SourceDomain struct {
	Name       string   // short name, used as the source hint
	FullName   string
	Hosts      []string // matched against the URL host by suffix
	Aggregator bool     // mirror/aggregator rather than a publisher
}

// HintSciHub is the source hint recorded for aggregator-hosted copies,
// whichever aggregator domain actually served them.
const HintSciHub = "Sci-Hub"

// KnownSources maps source keys to host information for the domains
// papers are commonly fetched from.
var KnownSources = map[string]SourceDomain{
	"sci-hub": {
		Name:       HintSciHub,
		FullName:   "Sci-Hub",
		Hosts:      []string{"sci-hub.se", "sci-hub.st", "sci-hub.ru", "sci-hub.wf", "sci-hub.box"},
		Aggregator: true,
	},
	"arxiv": {
		Name:     "arXiv",
		FullName: "arXiv.org e-Print archive",
		Hosts:    []string{"arxiv.org"},
	},
	"biorxiv": {
		Name:     "bioRxiv",
		FullName: "bioRxiv preprint server",
		Hosts:    []string{"biorxiv.org"},
	},
	"medrxiv": {
		Name:     "medRxiv",
		FullName: "medRxiv preprint server",
		Hosts:    []string{"medrxiv.org"},
	},
	"springer": {
		Name:     "Springer",
		FullName: "Springer Link",
		Hosts:    []string{"springer.com", "link.springer.com"},
	},
	"nature": {
		Name:     "Nature",
		FullName: "Nature Portfolio",
		Hosts:    []string{"nature.com"},
	},
	"elsevier": {
		Name:     "Elsevier",
		FullName: "Elsevier ScienceDirect",
		Hosts:    []string{"sciencedirect.com", "elsevier.com"},
	},
	"wiley": {
		Name:     "Wiley",
		FullName: "Wiley Online Library",
		Hosts:    []string{"wiley.com", "onlinelibrary.wiley.com"},
	},
	"ieee": {
		Name:     "IEEE",
		FullName: "IEEE Xplore",
		Hosts:    []string{"ieee.org", "ieeexplore.ieee.org"},
	},
	"acm": {
		Name:     "ACM",
		FullName: "ACM Digital Library",
		Hosts:    []string{"acm.org", "dl.acm.org"},
	},
	"oup": {
		Name:     "OUP",
		FullName: "Oxford University Press",
		Hosts:    []string{"oup.com", "academic.oup.com"},
	},
	"plos": {
		Name:     "PLOS",
		FullName: "Public Library of Science",
		Hosts:    []string{"plos.org"},
	},
	"acs": {
		Name:     "ACS",
		FullName: "American Chemical Society",
		Hosts:    []string{"acs.org", "pubs.acs.org"},
	},
	"mdpi": {
		Name:     "MDPI",
		FullName: "MDPI Open Access Journals",
		Hosts:    []string{"mdpi.com"},
	},
	"frontiers": {
		Name:     "Frontiers",
		FullName: "Frontiers Media",
		Hosts:    []string{"frontiersin.org"},
	},
	"pmc": {
		Name:     "PMC",
		FullName: "PubMed Central",
		Hosts:    []string{"ncbi.nlm.nih.gov", "pmc.ncbi.nlm.nih.gov"},
	},
	"europepmc": {
		Name:     "Europe PMC",
		FullName: "Europe PubMed Central",
		Hosts:    []string{"europepmc.org"},
	},
}

// MatchesHost reports whether host falls under one of the source's
// registered domains (exact or subdomain match).
func (s SourceDomain) MatchesHost(host string) bool {
	host = strings.TrimPrefix(strings.ToLower(host), "www.")
	for _, h := range s.Hosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}

	return false
}

// Built-in tier patterns, sorted by priority at init
var TierPatterns []TierPattern

// Titles matching this pattern name supplemental material rather than a
// manuscript copy; URL-based subsumption must not claim them.
var supplementalPattern = regexp.MustCompile(`(?i)supplement`)

func init() {
	TierPatterns = []TierPattern{
		{
			Tier:        Published,
			Regex:       regexp.MustCompile(`(?i)published`),
			Description: "Version of record as published by the venue",
			Examples:    []string{"Published Version", "published version (Springer)"},
			Priority:    100,
		},
		{
			Tier:        Accepted,
			Regex:       regexp.MustCompile(`(?i)accepted`),
			Description: "Author manuscript accepted after peer review",
			Examples:    []string{"Accepted Version", "accepted manuscript"},
			Priority:    90,
		},
		{
			Tier:        Preprint,
			Regex:       regexp.MustCompile(`(?i)submitted|preprint`),
			Description: "Manuscript as submitted, before peer review",
			Examples:    []string{"Preprint", "Submitted Version (arXiv)"},
			Priority:    80,
		},
	}

	sortPatterns(TierPatterns)
}

// sortPatterns orders patterns by priority (descending).
func sortPatterns(patterns []TierPattern) {
	for i := 0; i < len(patterns)-1; i++ {
		for j := i + 1; j < len(patterns); j++ {
			if patterns[j].Priority > patterns[i].Priority {
				patterns[i], patterns[j] = patterns[j], patterns[i]
			}
		}
	}
}
