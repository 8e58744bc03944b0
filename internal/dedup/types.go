// Package dedup resolves duplicate PDF attachments under one
// bibliographic item: classify each copy by version tier, group fuzzy
// duplicates within a tier, keep one canonical copy per group, and plan
// the rest for the trash.
package dedup

import (
	"github.com/btraven00/pichaq/pkg/library"
)

// Plan is the accumulated set of attachments slated for removal while
// planning one parent item. Keys are recorded once, in the order they
// were first planned; a planned key is never reconsidered by a later
// pass.
type Plan struct {
	order       []string
	attachments map[string]library.Attachment
}

// NewPlan creates an empty plan.
func NewPlan() *Plan {
	return &Plan{
		attachments: make(map[string]library.Attachment),
	}
}

// Add records attachments for removal. Re-adding a planned key is a
// no-op, so the plan keeps set semantics.
func (p *Plan) Add(atts ...library.Attachment) {
	for _, att := range atts {
		if _, exists := p.attachments[att.Key]; exists {
			continue
		}

		p.attachments[att.Key] = att
		p.order = append(p.order, att.Key)
	}
}

// Contains reports whether a key is already planned.
func (p *Plan) Contains(key string) bool {
	_, exists := p.attachments[key]
	return exists
}

// Len returns the number of planned removals.
func (p *Plan) Len() int {
	return len(p.order)
}

// Keys returns the planned keys in planning order.
func (p *Plan) Keys() []string {
	keys := make([]string, len(p.order))
	copy(keys, p.order)

	return keys
}

// Attachments returns the planned attachments in planning order.
func (p *Plan) Attachments() []library.Attachment {
	atts := make([]library.Attachment, 0, len(p.order))
	for _, key := range p.order {
		atts = append(atts, p.attachments[key])
	}

	return atts
}
