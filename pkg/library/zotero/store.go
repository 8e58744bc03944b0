// Package zotero provides read and trash access to a Zotero sqlite
// database. Attachment files are resolved against the Zotero data
// directory, so sizes and modification times come from the filesystem
// while titles, URLs and the trash live in the database.
package zotero

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/btraven00/pichaq/pkg/library"
)

// Store is a library.Store backed by a Zotero sqlite database.
type Store struct {
	db       *sql.DB
	dataDir  string // Zotero data directory holding storage/<KEY>/
	baseDir  string // base directory for linked attachments, optional
	readOnly bool
}

// Option configures a Store.
type Option func(*Store)

// WithDataDir overrides the Zotero data directory. By default the
// directory containing the database file is used, which matches a
// standard Zotero installation.
func WithDataDir(dir string) Option {
	return func(s *Store) {
		s.dataDir = dir
	}
}

// WithBaseDir sets the base directory for linked attachments
// ("attachments:" paths). Without it such paths stay unresolved.
func WithBaseDir(dir string) Option {
	return func(s *Store) {
		s.baseDir = dir
	}
}

// WithReadOnly rejects Trash and title updates with ErrReadOnly.
func WithReadOnly() Option {
	return func(s *Store) {
		s.readOnly = true
	}
}

// Open opens a Zotero database file. The file must already exist;
// opening never creates or migrates a database.
func Open(location string, opts ...Option) (*Store, error) {
	path := strings.TrimSpace(location)
	if path == "" {
		return nil, fmt.Errorf("zotero store requires a database path")
	}

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("cannot open library database: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open library database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open library database: %w", err)
	}

	store := &Store{
		db:      db,
		dataDir: filepath.Dir(path),
	}

	for _, opt := range opts {
		opt(store)
	}

	return store, nil
}

// Items returns the library's top-level items: everything that is not
// trashed and not a child attachment or note. Regularity still depends
// on the item type, so standalone notes and attachments come back with
// Regular unset.
func (s *Store) Items(ctx context.Context, keys ...string) ([]library.Item, error) {
	query := `
		SELECT i.key, it.typeName, COALESCE(idv.value, '')
		FROM items i
		JOIN itemTypes it ON it.itemTypeID = i.itemTypeID
		LEFT JOIN itemData id ON id.itemID = i.itemID
			AND id.fieldID = (SELECT fieldID FROM fields WHERE fieldName = 'title')
		LEFT JOIN itemDataValues idv ON idv.valueID = id.valueID
		WHERE i.itemID NOT IN (SELECT itemID FROM deletedItems)
		  AND i.itemID NOT IN (SELECT itemID FROM itemAttachments WHERE parentItemID IS NOT NULL)
		  AND i.itemID NOT IN (SELECT itemID FROM itemNotes WHERE parentItemID IS NOT NULL)`

	args := make([]any, 0, len(keys))

	if len(keys) > 0 {
		query += " AND i.key IN (?" + strings.Repeat(",?", len(keys)-1) + ")"
		for _, key := range keys {
			args = append(args, key)
		}
	}

	query += " ORDER BY i.itemID"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	var items []library.Item

	for rows.Next() {
		var item library.Item
		if err := rows.Scan(&item.Key, &item.Type, &item.Title); err != nil {
			return nil, fmt.Errorf("failed to scan item row: %w", err)
		}

		item.Regular = isRegularType(item.Type)
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}

	return items, nil
}

// ChildAttachments returns a parent's attachments, excluding trashed
// ones. Size and modification time are stat'ed from the resolved file
// path and stay zero when the file is missing.
func (s *Store) ChildAttachments(ctx context.Context, parentKey string) ([]library.Attachment, error) {
	query := `
		SELECT i.key, COALESCE(ia.contentType, ''), COALESCE(ia.path, ''),
		       COALESCE(t.value, ''), COALESCE(u.value, '')
		FROM itemAttachments ia
		JOIN items i ON i.itemID = ia.itemID
		JOIN items p ON p.itemID = ia.parentItemID
		LEFT JOIN itemData td ON td.itemID = ia.itemID
			AND td.fieldID = (SELECT fieldID FROM fields WHERE fieldName = 'title')
		LEFT JOIN itemDataValues t ON t.valueID = td.valueID
		LEFT JOIN itemData ud ON ud.itemID = ia.itemID
			AND ud.fieldID = (SELECT fieldID FROM fields WHERE fieldName = 'url')
		LEFT JOIN itemDataValues u ON u.valueID = ud.valueID
		WHERE p.key = ?
		  AND i.itemID NOT IN (SELECT itemID FROM deletedItems)
		ORDER BY i.itemID`

	rows, err := s.db.QueryContext(ctx, query, parentKey)
	if err != nil {
		return nil, fmt.Errorf("failed to list attachments of %s: %w", parentKey, err)
	}
	defer rows.Close()

	var atts []library.Attachment

	for rows.Next() {
		var (
			att     library.Attachment
			rawPath string
		)

		if err := rows.Scan(&att.Key, &att.ContentType, &rawPath, &att.Title, &att.URL); err != nil {
			return nil, fmt.Errorf("failed to scan attachment row: %w", err)
		}

		att.ParentKey = parentKey
		att.Path = s.resolvePath(att.Key, rawPath)

		if att.Path != "" {
			if info, err := os.Stat(att.Path); err == nil {
				att.Size = info.Size()
				att.ModTime = info.ModTime()
			}
		}

		atts = append(atts, att)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list attachments of %s: %w", parentKey, err)
	}

	return atts, nil
}

// Trash moves an item to the Zotero trash. Zotero empties its trash on
// its own schedule, so this is a soft delete. Trashing an item twice
// is a no-op.
func (s *Store) Trash(ctx context.Context, key string) error {
	if s.readOnly {
		return library.ErrReadOnly
	}

	itemID, err := s.itemID(ctx, key)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO deletedItems (itemID, dateDeleted) VALUES (?, CURRENT_TIMESTAMP)", itemID)
	if err != nil {
		return fmt.Errorf("failed to trash %s: %w", key, err)
	}

	return nil
}

// SetAttachmentTitle updates an item's title field, reusing an existing
// value row when the same string is already interned.
func (s *Store) SetAttachmentTitle(ctx context.Context, key, title string) error {
	if s.readOnly {
		return library.ErrReadOnly
	}

	itemID, err := s.itemID(ctx, key)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to update title of %s: %w", key, err)
	}
	defer tx.Rollback()

	var fieldID int64
	if err := tx.QueryRowContext(ctx,
		"SELECT fieldID FROM fields WHERE fieldName = 'title'").Scan(&fieldID); err != nil {
		return fmt.Errorf("failed to resolve title field: %w", err)
	}

	var valueID int64

	err = tx.QueryRowContext(ctx,
		"SELECT valueID FROM itemDataValues WHERE value = ?", title).Scan(&valueID)
	if errors.Is(err, sql.ErrNoRows) {
		result, err := tx.ExecContext(ctx,
			"INSERT INTO itemDataValues (value) VALUES (?)", title)
		if err != nil {
			return fmt.Errorf("failed to store title value: %w", err)
		}

		valueID, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to store title value: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("failed to look up title value: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT OR REPLACE INTO itemData (itemID, fieldID, valueID) VALUES (?, ?, ?)",
		itemID, fieldID, valueID)
	if err != nil {
		return fmt.Errorf("failed to update title of %s: %w", key, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to update title of %s: %w", key, err)
	}

	return nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// itemID resolves a key to its database row id.
func (s *Store) itemID(ctx context.Context, key string) (int64, error) {
	var itemID int64

	err := s.db.QueryRowContext(ctx, "SELECT itemID FROM items WHERE key = ?", key).Scan(&itemID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, &library.StoreError{Type: "not_found", Message: "no item with this key", Backend: "zotero", Key: key}
	}

	if err != nil {
		return 0, fmt.Errorf("failed to resolve item %s: %w", key, err)
	}

	return itemID, nil
}

// resolvePath turns a Zotero attachment path into a filesystem path.
// Stored files use "storage:<name>" under the data directory, linked
// files carry an absolute path, and "attachments:<rel>" paths depend on
// the configured base directory.
func (s *Store) resolvePath(key, raw string) string {
	switch {
	case raw == "":
		return ""
	case strings.HasPrefix(raw, "storage:"):
		return filepath.Join(s.dataDir, "storage", key, strings.TrimPrefix(raw, "storage:"))
	case strings.HasPrefix(raw, "attachments:"):
		if s.baseDir == "" {
			return ""
		}

		return filepath.Join(s.baseDir, filepath.FromSlash(strings.TrimPrefix(raw, "attachments:")))
	case filepath.IsAbs(raw):
		return raw
	default:
		return ""
	}
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
