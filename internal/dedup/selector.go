package dedup

import (
	"github.com/btraven00/pichaq/pkg/library"
)

// Keeper decides between two attachments: it returns true when cand
// should replace best as the copy to keep. Passing a Keeper into the
// planner swaps the retention policy without touching the grouping
// logic.
type Keeper func(best, cand library.Attachment) bool

// KeepNewest retains the most recently modified file. The comparison is
// strict, so the first attachment seen with the winning time survives a
// tie.
func KeepNewest(best, cand library.Attachment) bool {
	return cand.ModTime.After(best.ModTime)
}

// KeepOldest retains the oldest file instead.
func KeepOldest(best, cand library.Attachment) bool {
	return cand.ModTime.Before(best.ModTime)
}

// SelectCanonical picks the single attachment to keep from a group and
// returns it along with the rest in their original order. A single-
// member group yields an empty remainder; an empty group yields zero
// values.
func SelectCanonical(group []library.Attachment, keep Keeper) (canonical library.Attachment, toRemove []library.Attachment) {
	if len(group) == 0 {
		return library.Attachment{}, nil
	}

	canonical = group[0]
	for _, cand := range group[1:] {
		if keep(canonical, cand) {
			canonical = cand
		}
	}

	toRemove = make([]library.Attachment, 0, len(group)-1)

	for _, att := range group {
		if att.Key != canonical.Key {
			toRemove = append(toRemove, att)
		}
	}

	return canonical, toRemove
}
