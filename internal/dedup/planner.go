package dedup

import (
	"github.com/btraven00/pichaq/pkg/library"
	"github.com/btraven00/pichaq/pkg/version"
)

// Planner turns one parent item's attachments into a removal plan.
// Planning is pure: it reads the attachments, mutates nothing, and the
// same input always yields the same plan.
type Planner struct {
	rules *version.Rules
	keep  Keeper
}

// PlannerOption configures a Planner.
type PlannerOption func(*Planner)

// WithRules replaces the built-in classification rules.
func WithRules(rules *version.Rules) PlannerOption {
	return func(p *Planner) {
		p.rules = rules
	}
}

// WithKeeper replaces the retention policy. The default keeps the most
// recently modified copy of each group.
func WithKeeper(keep Keeper) PlannerOption {
	return func(p *Planner) {
		p.keep = keep
	}
}

// NewPlanner creates a Planner with the default rules and policy.
func NewPlanner(opts ...PlannerOption) *Planner {
	p := &Planner{
		rules: version.Default(),
		keep:  KeepNewest,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Rules exposes the planner's classification rules, so callers building
// reports classify attachments exactly the way the plan did.
func (p *Planner) Rules() *version.Rules {
	return p.rules
}

// PlanRemovals decides which of a parent's PDF attachments are
// redundant. Non-PDF attachments are ignored, and fewer than two PDFs
// can hold no duplicates, so the plan comes back empty.
//
// Tiers are resolved best-first so that lower tiers never compete with
// copies a higher tier already claimed:
//
//  1. unversioned copies matching any versioned copy are subsumed
//     outright, and the remainder is grouped among itself
//  2. published copies, with aggregator-hinted ones dropped whenever a
//     publisher-direct copy exists
//  3. accepted copies
//  4. preprints
func (p *Planner) PlanRemovals(atts []library.Attachment) *Plan {
	plan := NewPlan()

	pdfs := make([]library.Attachment, 0, len(atts))

	for _, att := range atts {
		if att.IsPDF() {
			pdfs = append(pdfs, att)
		}
	}

	if len(pdfs) < 2 {
		return plan
	}

	tiers := make(map[version.Tier][]library.Attachment)
	hints := make(map[string]string, len(pdfs))

	for _, att := range pdfs {
		tier := p.rules.Classify(att.Title)
		tiers[tier] = append(tiers[tier], att)
		hints[att.Key] = p.rules.SourceHint(att.URL)
	}

	p.subsumeUnversioned(plan, tiers)
	p.planPool(plan, tiers[version.Unversioned])
	p.planPublished(plan, tiers[version.Published], hints)
	p.planPool(plan, tiers[version.Accepted])
	p.planPool(plan, tiers[version.Preprint])

	return plan
}

// subsumeUnversioned plans every unversioned copy that matches any
// versioned attachment: once a versioned copy of the same file exists,
// the unlabeled one is worthless. Size matches always subsume; URL
// matches skip titles naming supplemental material, which legitimately
// share the paper's URL without being copies of the paper.
func (p *Planner) subsumeUnversioned(plan *Plan, tiers map[version.Tier][]library.Attachment) {
	var versioned []library.Attachment
	for _, tier := range []version.Tier{version.Published, version.Accepted, version.Preprint} {
		versioned = append(versioned, tiers[tier]...)
	}

	if len(versioned) == 0 {
		return
	}

	for _, unv := range tiers[version.Unversioned] {
		for _, ver := range versioned {
			if unv.Size == ver.Size {
				plan.Add(unv)
				break
			}

			if urlContains(unv.URL, ver.URL) && !p.rules.Supplemental(unv.Title) {
				plan.Add(unv)
				break
			}
		}
	}
}

// planPublished resolves the published tier. When at least one copy
// carries a non-aggregator hint, every aggregator-hinted copy is
// dropped unconditionally and only the direct copies compete for
// canonical. When every copy is aggregator-hinted, the pool is grouped
// like any other tier, so independent duplicate groups each keep their
// own best copy rather than collapsing into a single survivor.
func (p *Planner) planPublished(plan *Plan, pool []library.Attachment, hints map[string]string) {
	if len(pool) == 0 {
		return
	}

	var direct, aggregated []library.Attachment

	for _, att := range pool {
		if hints[att.Key] == version.HintSciHub {
			aggregated = append(aggregated, att)
		} else {
			direct = append(direct, att)
		}
	}

	if len(direct) > 0 {
		plan.Add(aggregated...)
		p.planPool(plan, direct)

		return
	}

	p.planPool(plan, aggregated)
}

// planPool repeatedly extracts duplicate groups from a tier's pool and
// plans everything but each group's canonical copy. Attachments that an
// earlier pass already planned never re-enter the pool.
func (p *Planner) planPool(plan *Plan, pool []library.Attachment) {
	remaining := make([]library.Attachment, 0, len(pool))

	for _, att := range pool {
		if !plan.Contains(att.Key) {
			remaining = append(remaining, att)
		}
	}

	for len(remaining) > 0 {
		group, rest := ExtractGroup(remaining[0], remaining[1:])
		_, toRemove := SelectCanonical(group, p.keep)
		plan.Add(toRemove...)

		remaining = rest
	}
}
