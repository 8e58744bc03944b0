// Package test provides integration fixtures: canonical duplicate
// libraries over the memory backend, a mock PDF server for download
// tests, and timing constraints for the planning path.
package test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/btraven00/pichaq/pkg/library"
	"github.com/btraven00/pichaq/pkg/library/memory"
)

// FixtureTime is the reference point attachment ages count back from.
var FixtureTime = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

// AttachmentSpec describes one attachment of a fixture item. Titles
// double as identifiers in expectations, so keep them unique per item.
type AttachmentSpec struct {
	Title       string
	URL         string
	ContentType string
	Size        int64
	AgeDays     int // ModTime = FixtureTime minus this many days
}

// ItemSpec describes one fixture item with its attachments.
type ItemSpec struct {
	Title       string
	Type        string // defaults to journalArticle
	Attachments []AttachmentSpec
}

// DuplicateScenario pairs a fixture item with the attachment titles the
// engine must plan for removal.
type DuplicateScenario struct {
	Name         string
	Item         ItemSpec
	RemoveTitles []string
	Processed    bool // whether the engine counts the item at all
}

// SeededItem pairs a stored item with its stored attachments, so tests
// can assert against the minted keys.
type SeededItem struct {
	Item        library.Item
	Attachments []library.Attachment
}

// TitledKeys maps the seeded attachment titles back to their keys.
func (s SeededItem) TitledKeys() map[string]string {
	keys := make(map[string]string, len(s.Attachments))
	for _, att := range s.Attachments {
		keys[att.Title] = att.Key
	}

	return keys
}

// BuildLibrary seeds a fresh memory store from item specs.
func BuildLibrary(specs ...ItemSpec) (*memory.Store, []SeededItem) {
	store := memory.New()
	seeded := make([]SeededItem, 0, len(specs))

	for _, spec := range specs {
		itemType := spec.Type
		if itemType == "" {
			itemType = "journalArticle"
		}

		item := store.AddItem(spec.Title, itemType)
		si := SeededItem{Item: item}

		for _, as := range spec.Attachments {
			att := store.AddAttachment(item.Key, library.Attachment{
				Title:       as.Title,
				URL:         as.URL,
				ContentType: as.ContentType,
				Size:        as.Size,
				ModTime:     FixtureTime.Add(-time.Duration(as.AgeDays) * 24 * time.Hour),
			})
			si.Attachments = append(si.Attachments, att)
		}

		seeded = append(seeded, si)
	}

	return store, seeded
}

// DuplicateScenarios returns the canonical duplicate arrangements a
// cluttered reference library accumulates, each with the removals the
// engine must plan for it.
func DuplicateScenarios() []DuplicateScenario {
	return []DuplicateScenario{
		{
			Name: "unversioned copy subsumed by a published one",
			Item: ItemSpec{
				Title: "Attention Is All You Need",
				Attachments: []AttachmentSpec{
					{Title: "Published Version (Springer)", URL: "https://link.springer.com/article/10.1007/x.pdf", Size: 2 << 20, AgeDays: 10},
					{Title: "Full Text PDF", Size: 2 << 20, AgeDays: 400},
				},
			},
			RemoveTitles: []string{"Full Text PDF"},
			Processed:    true,
		},
		{
			Name: "aggregator copy yields to the publisher-direct one",
			Item: ItemSpec{
				Title: "Deep Residual Learning for Image Recognition",
				Attachments: []AttachmentSpec{
					{Title: "Published Version (Sci-Hub)", URL: "https://sci-hub.se/10.1109/cvpr.2016.90", Size: 900_000, AgeDays: 3},
					{Title: "Published Version (IEEE)", URL: "https://ieeexplore.ieee.org/document/7780459", Size: 870_000, AgeDays: 30},
				},
			},
			RemoveTitles: []string{"Published Version (Sci-Hub)"},
			Processed:    true,
		},
		{
			Name: "independent preprint groups each keep their newest copy",
			Item: ItemSpec{
				Title: "Generative Adversarial Networks",
				Attachments: []AttachmentSpec{
					{Title: "Preprint (arXiv, old)", Size: 300_000, AgeDays: 200},
					{Title: "Preprint (arXiv, new)", Size: 300_000, AgeDays: 5},
					{Title: "Preprint (workshop)", Size: 999_999, AgeDays: 60},
				},
			},
			RemoveTitles: []string{"Preprint (arXiv, old)"},
			Processed:    true,
		},
		{
			Name: "supplemental material sharing the paper's URL survives",
			Item: ItemSpec{
				Title: "AlphaFold Protein Structure Prediction",
				Attachments: []AttachmentSpec{
					{Title: "Published Version (Nature)", URL: "https://www.nature.com/articles/s41586-021-03819-2", Size: 4 << 20, AgeDays: 15},
					{Title: "Supplementary Material", URL: "https://www.nature.com/articles/s41586-021-03819-2", Size: 12 << 20, AgeDays: 15},
				},
			},
			RemoveTitles: nil,
			Processed:    true,
		},
		{
			Name: "single PDF short-circuits with an empty plan",
			Item: ItemSpec{
				Title: "Lonely Paper",
				Attachments: []AttachmentSpec{
					{Title: "Full Text PDF", Size: 123_456, AgeDays: 7},
				},
			},
			RemoveTitles: nil,
			Processed:    true,
		},
		{
			Name: "webpage snapshots never enter planning",
			Item: ItemSpec{
				Title: "Lab Blog Post",
				Type:  "webpage",
				Attachments: []AttachmentSpec{
					{Title: "Snapshot", Size: 50_000, AgeDays: 2},
					{Title: "Snapshot (copy)", Size: 50_000, AgeDays: 1},
				},
			},
			RemoveTitles: nil,
			Processed:    false,
		},
	}
}

// MockPDF is the body the mock server returns for PDF paths.
const MockPDF = "%PDF-1.4\n%mock body served for integration tests\n"

// CreateMockServer returns an HTTP test server that serves a small PDF
// for any path ending in .pdf and 404 for everything else.
func CreateMockServer() *httptest.Server {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, ".pdf") {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Length", fmt.Sprintf("%d", len(MockPDF)))
		_, _ = w.Write([]byte(MockPDF))
	})

	return httptest.NewServer(handler)
}

// TimingConstraints defines expected processing time constraints. The
// planning path is pure in-memory work and must stay fast even for
// implausibly cluttered items.
var TimingConstraints = struct {
	MaxPlanTime     time.Duration
	MaxClassifyTime time.Duration
	MaxRunTime      time.Duration
}{
	MaxPlanTime:     100 * time.Millisecond,
	MaxClassifyTime: 10 * time.Millisecond,
	MaxRunTime:      time.Second,
}
