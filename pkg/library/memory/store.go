// Package memory provides an in-memory library store. It backs the
// test suites and lets the engine run against fixture data without a
// real database.
package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/btraven00/pichaq/pkg/library"
)

// Store is an in-memory library.Store. The zero value is not usable;
// construct with New.
type Store struct {
	mu          sync.RWMutex
	items       map[string]library.Item
	attachments map[string]library.Attachment
	itemOrder   []string
	attOrder    []string
	trashed     map[string]bool
	failTrash   map[string]error
	failList    map[string]error
	closed      bool
}

// New creates an empty store.
func New() *Store {
	return &Store{
		items:       make(map[string]library.Item),
		attachments: make(map[string]library.Attachment),
		trashed:     make(map[string]bool),
		failTrash:   make(map[string]error),
		failList:    make(map[string]error),
	}
}

// Open satisfies library.Opener. The location is ignored; every open
// yields a fresh empty store.
func Open(location string) (library.Store, error) {
	return New(), nil
}

// mintKey generates an 8-character key in the style reference managers
// use for items.
func mintKey() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(raw[:8])
}

// AddItem stores a top-level item and returns it with a minted key.
// Regularity is derived from the item type.
func (s *Store) AddItem(title, itemType string) library.Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := library.Item{
		Key:     mintKey(),
		Title:   title,
		Type:    itemType,
		Regular: isRegularType(itemType),
	}

	s.items[item.Key] = item
	s.itemOrder = append(s.itemOrder, item.Key)

	return item
}

// AddAttachment stores an attachment under a parent item. A missing
// key is minted; a missing content type defaults to application/pdf.
func (s *Store) AddAttachment(parentKey string, att library.Attachment) library.Attachment {
	s.mu.Lock()
	defer s.mu.Unlock()

	if att.Key == "" {
		att.Key = mintKey()
	}

	if att.ContentType == "" {
		att.ContentType = "application/pdf"
	}

	att.ParentKey = parentKey

	s.attachments[att.Key] = att
	s.attOrder = append(s.attOrder, att.Key)

	return att
}

// FailTrash makes future Trash calls for a key fail with err.
func (s *Store) FailTrash(key string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failTrash[key] = err
}

// FailChildAttachments makes ChildAttachments fail for one parent key.
func (s *Store) FailChildAttachments(parentKey string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failList[parentKey] = err
}

// Trashed returns the keys trashed so far, in attachment insertion
// order.
func (s *Store) Trashed() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.trashed))

	for _, key := range s.attOrder {
		if s.trashed[key] {
			keys = append(keys, key)
		}
	}

	return keys
}

// IsTrashed reports whether an attachment has been trashed.
func (s *Store) IsTrashed(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.trashed[key]
}

// Items returns the stored top-level items in insertion order, or only
// the named ones when keys are given. Unknown keys are skipped, the
// way a database lookup would skip missing rows.
func (s *Store) Items(ctx context.Context, keys ...string) ([]library.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, library.ErrClosed
	}

	if len(keys) > 0 {
		items := make([]library.Item, 0, len(keys))

		for _, key := range keys {
			if item, exists := s.items[key]; exists {
				items = append(items, item)
			}
		}

		return items, nil
	}

	items := make([]library.Item, 0, len(s.itemOrder))
	for _, key := range s.itemOrder {
		items = append(items, s.items[key])
	}

	return items, nil
}

// ChildAttachments returns a parent's attachments in insertion order,
// excluding trashed ones.
func (s *Store) ChildAttachments(ctx context.Context, parentKey string) ([]library.Attachment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, library.ErrClosed
	}

	if err, exists := s.failList[parentKey]; exists {
		return nil, err
	}

	var atts []library.Attachment

	for _, key := range s.attOrder {
		att := s.attachments[key]
		if att.ParentKey == parentKey && !s.trashed[key] {
			atts = append(atts, att)
		}
	}

	return atts, nil
}

// Trash marks an attachment as deleted. Trashing an already-trashed
// attachment is a no-op.
func (s *Store) Trash(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return library.ErrClosed
	}

	if err, exists := s.failTrash[key]; exists {
		return err
	}

	if _, exists := s.attachments[key]; !exists {
		return &library.StoreError{Type: "not_found", Message: "no attachment with this key", Backend: "memory", Key: key}
	}

	s.trashed[key] = true

	return nil
}

// SetAttachmentTitle updates an attachment's title.
func (s *Store) SetAttachmentTitle(ctx context.Context, key, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return library.ErrClosed
	}

	att, exists := s.attachments[key]
	if !exists {
		return &library.StoreError{Type: "not_found", Message: "no attachment with this key", Backend: "memory", Key: key}
	}

	att.Title = title
	s.attachments[key] = att

	return nil
}

// Close marks the store closed; subsequent calls fail with ErrClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true

	return nil
}

// isRegularType reports whether an item type names a regular
// bibliographic record rather than a note, attachment or annotation.
func isRegularType(itemType string) bool {
	switch strings.ToLower(itemType) {
	case "attachment", "note", "annotation":
		return false
	default:
		return true
	}
}
