// Package library provides a pluggable interface to a reference-manager
// library: bibliographic items, their file attachments, and the trash.
package library

import (
	"context"
	"strings"
	"time"
)

// Item is a bibliographic record that may own child attachments.
type Item struct {
	Key     string `json:"key"`
	Title   string `json:"title"`
	Type    string `json:"type"`    // e.g. "journalArticle", "webpage"
	Regular bool   `json:"regular"` // false for notes, attachments, annotations
}

// Attachment is a file linked under a parent item. Size and ModTime are
// resolved from the backing file when it exists; otherwise they stay at
// their zero values.
type Attachment struct {
	ModTime     time.Time `json:"mod_time"`
	Key         string    `json:"key"`
	ParentKey   string    `json:"parent_key"`
	Title       string    `json:"title"`
	URL         string    `json:"url,omitempty"`
	ContentType string    `json:"content_type,omitempty"`
	Path        string    `json:"path,omitempty"`
	Size        int64     `json:"size,omitempty"`
}

// IsPDF reports whether the attachment holds a PDF.
func (a Attachment) IsPDF() bool {
	return strings.EqualFold(a.ContentType, "application/pdf")
}

// Reader is the read-only query surface of a library store.
type Reader interface {
	// Items enumerates the regular items in the library, or only the
	// named ones when keys are given.
	Items(ctx context.Context, keys ...string) ([]Item, error)

	// ChildAttachments lists the attachments under a parent item.
	ChildAttachments(ctx context.Context, parentKey string) ([]Attachment, error)
}

// Trasher moves attachments to the store's trash.
type Trasher interface {
	// Trash marks one attachment as deleted. Backends may defer the
	// actual file removal; an error reports rejection, not completion.
	Trash(ctx context.Context, key string) error
}

// Titler updates attachment titles in place.
type Titler interface {
	SetAttachmentTitle(ctx context.Context, key, title string) error
}

// Store is a full read/write library handle.
type Store interface {
	Reader
	Trasher
	Titler
	Close() error
}

// StoreError describes a store-level failure.
type StoreError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Backend string `json:"backend,omitempty"`
	Key     string `json:"key,omitempty"`
}

func (e *StoreError) Error() string {
	if e.Backend != "" && e.Key != "" {
		return e.Type + ": " + e.Message + " (backend: " + e.Backend + ", key: " + e.Key + ")"
	}

	return e.Type + ": " + e.Message
}

// Is matches store errors by type, so derived errors carrying a backend
// or key still compare equal to the package sentinels.
func (e *StoreError) Is(target error) bool {
	t, ok := target.(*StoreError)
	if !ok {
		return false
	}

	return e.Type == t.Type
}

// Common error values.
var (
	ErrNotFound = &StoreError{Type: "not_found", Message: "no item with this key"}
	ErrReadOnly = &StoreError{Type: "read_only", Message: "store does not accept writes"}
	ErrClosed   = &StoreError{Type: "closed", Message: "store is closed"}
)
