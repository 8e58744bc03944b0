package version

import (
	"fmt"
	"regexp"
	"strings"

	"code.sajari.com/docconv/v2"
)

// ProbeResult describes what a content probe found inside a PDF.
type ProbeResult struct {
	Tier       Tier   `json:"tier"`
	SourceHint string `json:"source_hint,omitempty"`
	Evidence   string `json:"evidence,omitempty"`
	Chars      int    `json:"chars"`
}

// probeWindow limits content checks to the head of the document, where
// watermarks and imprints live.
const probeWindow = 4096

// Content checks in precedence order: the first match decides the tier.
var probeChecks = []struct {
	Tier  Tier
	Regex *regexp.Regexp
	Hint  string
}{
	{Preprint, regexp.MustCompile(`(?i)arxiv:\d{4}\.\d{4,5}(v\d+)?`), "arXiv"},
	{Preprint, regexp.MustCompile(`(?i)this preprint|has not been peer[- ]reviewed|under review at`), ""},
	{Accepted, regexp.MustCompile(`(?i)accepted (for publication|manuscript|version)|author accepted manuscript`), ""},
	{Published, regexp.MustCompile(`(?i)version of record|to cite this (article|paper)|published by|©\s*\d{4}`), ""},
}

// ExtractText returns the readable text of a PDF file.
func ExtractText(path string) (string, error) {
	response, err := docconv.ConvertPath(path)
	if err != nil {
		return "", fmt.Errorf("failed to convert PDF file '%s': %w", path, err)
	}

	if strings.TrimSpace(response.Body) == "" {
		return "", fmt.Errorf("no readable text found in PDF file")
	}

	return response.Body, nil
}

// ProbeFile extracts text from a PDF and infers its tier from the
// document body rather than from the attachment title.
func ProbeFile(path string) (*ProbeResult, error) {
	text, err := ExtractText(path)
	if err != nil {
		return nil, err
	}

	return probeText(text), nil
}

// probeText runs the content checks over already-extracted text.
func probeText(text string) *ProbeResult {
	result := &ProbeResult{
		Tier:  Unversioned,
		Chars: len(text),
	}

	head := text
	if len(head) > probeWindow {
		head = head[:probeWindow]
	}

	for _, check := range probeChecks {
		if match := check.Regex.FindString(head); match != "" {
			result.Tier = check.Tier
			result.SourceHint = check.Hint
			result.Evidence = strings.TrimSpace(match)

			break
		}
	}

	return result
}
