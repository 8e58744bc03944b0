package dedup

import (
	"strings"

	"github.com/btraven00/pichaq/pkg/library"
)

// SameFile reports whether two attachments look like copies of the same
// file: equal sizes, or one source URL containing the other (both
// non-empty, compared case-insensitively). The predicate is permissive
// on purpose: within a single parent item, size collisions and mirrored
// URLs almost always mean the same document, and a false positive costs
// one redundant copy while a false negative leaves clutter behind.
func SameFile(a, b library.Attachment) bool {
	if a.Size == b.Size {
		return true
	}

	return urlContains(a.URL, b.URL)
}

// urlContains reports whether one of two non-empty URLs contains the
// other, ignoring case. Two empty URLs never match.
func urlContains(a, b string) bool {
	if a == "" || b == "" {
		return false
	}

	la := strings.ToLower(a)
	lb := strings.ToLower(b)

	return strings.Contains(la, lb) || strings.Contains(lb, la)
}
