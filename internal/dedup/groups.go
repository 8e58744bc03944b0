package dedup

import (
	"github.com/btraven00/pichaq/pkg/library"
)

// ExtractGroup computes the transitive closure of SameFile around seed,
// drawing candidates from pool. It returns the group (seed first, then
// members in discovery order) and whatever the search left unclaimed.
//
// The traversal is breadth-first with an explicit frontier: each round
// splits the remaining candidates into matches of the current frontier
// and everything else, then searches onward only through the shrunken
// remainder. Claimed attachments never re-enter the candidate list, so
// the search terminates even though the predicate is symmetric.
func ExtractGroup(seed library.Attachment, pool []library.Attachment) (group, rest []library.Attachment) {
	group = []library.Attachment{seed}
	frontier := []library.Attachment{seed}

	remaining := make([]library.Attachment, 0, len(pool))
	for _, att := range pool {
		if att.Key == seed.Key {
			continue
		}

		remaining = append(remaining, att)
	}

	for len(frontier) > 0 && len(remaining) > 0 {
		var matched, unmatched []library.Attachment

		for _, cand := range remaining {
			claimed := false

			for _, cur := range frontier {
				if SameFile(cur, cand) {
					claimed = true
					break
				}
			}

			if claimed {
				matched = append(matched, cand)
			} else {
				unmatched = append(unmatched, cand)
			}
		}

		group = append(group, matched...)
		frontier = matched
		remaining = unmatched
	}

	return group, remaining
}

// Partition splits a pool into disjoint duplicate groups. Every
// attachment lands in exactly one group; attachments matching nothing
// form singletons.
func Partition(pool []library.Attachment) [][]library.Attachment {
	var groups [][]library.Attachment

	remaining := pool
	for len(remaining) > 0 {
		group, rest := ExtractGroup(remaining[0], remaining[1:])
		groups = append(groups, group)
		remaining = rest
	}

	return groups
}
