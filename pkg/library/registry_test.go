// Package library provides unit tests for the backend registry
// functionality including registration, retrieval, and locator parsing.
package library

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

// fakeStore implements Store for testing; it records the location it
// was opened with.
type fakeStore struct {
	scheme   string
	location string
}

func (s *fakeStore) Items(ctx context.Context, keys ...string) ([]Item, error) {
	return nil, nil
}

func (s *fakeStore) ChildAttachments(ctx context.Context, parentKey string) ([]Attachment, error) {
	return nil, nil
}

func (s *fakeStore) Trash(ctx context.Context, key string) error {
	return nil
}

func (s *fakeStore) SetAttachmentTitle(ctx context.Context, key, title string) error {
	return nil
}

func (s *fakeStore) Close() error {
	return nil
}

func fakeOpener(scheme string) Opener {
	return func(location string) (Store, error) {
		return &fakeStore{scheme: scheme, location: location}, nil
	}
}

func TestRegistry_Register(t *testing.T) {
	registry := NewRegistry()

	// Test successful registration
	err := registry.Register("test", fakeOpener("test"))
	if err != nil {
		t.Fatalf("Expected successful registration, got error: %v", err)
	}

	// Test duplicate registration
	err = registry.Register("test", fakeOpener("test"))
	if err == nil {
		t.Fatal("Expected error for duplicate registration, got nil")
	}

	// Test nil opener
	err = registry.Register("nil", nil)
	if err == nil {
		t.Fatal("Expected error for nil opener, got nil")
	}

	// Test empty scheme
	err = registry.Register("", fakeOpener(""))
	if err == nil {
		t.Fatal("Expected error for empty scheme, got nil")
	}
}

func TestRegistry_RegisterAlias(t *testing.T) {
	registry := NewRegistry()

	err := registry.Register("test", fakeOpener("test"))
	if err != nil {
		t.Fatalf("Failed to register backend: %v", err)
	}

	// Test successful alias registration
	err = registry.RegisterAlias("alias", "test")
	if err != nil {
		t.Fatalf("Expected successful alias registration, got error: %v", err)
	}

	// Test duplicate alias
	err = registry.RegisterAlias("alias", "test")
	if err == nil {
		t.Fatal("Expected error for duplicate alias, got nil")
	}

	// Test alias for non-existent scheme
	err = registry.RegisterAlias("alias2", "nonexistent")
	if err == nil {
		t.Fatal("Expected error for non-existent scheme, got nil")
	}

	// Test empty parameters
	err = registry.RegisterAlias("", "test")
	if err == nil {
		t.Fatal("Expected error for empty alias, got nil")
	}

	err = registry.RegisterAlias("alias3", "")
	if err == nil {
		t.Fatal("Expected error for empty scheme, got nil")
	}

	// Test alias conflicting with real scheme
	err = registry.Register("conflict", fakeOpener("conflict"))
	if err != nil {
		t.Fatalf("Failed to register second backend: %v", err)
	}

	err = registry.RegisterAlias("conflict", "test")
	if err == nil {
		t.Fatal("Expected error for alias conflicting with scheme, got nil")
	}
}

func TestRegistry_Get(t *testing.T) {
	registry := NewRegistry()

	if err := registry.Register("test", fakeOpener("test")); err != nil {
		t.Fatalf("Failed to register backend: %v", err)
	}

	if err := registry.RegisterAlias("alias", "test"); err != nil {
		t.Fatalf("Failed to register alias: %v", err)
	}

	// Test getting by scheme
	if _, err := registry.Get("test"); err != nil {
		t.Fatalf("Expected to get opener, got error: %v", err)
	}

	// Test getting by alias
	if _, err := registry.Get("alias"); err != nil {
		t.Fatalf("Expected to get opener by alias, got error: %v", err)
	}

	// Test case insensitive lookup
	if _, err := registry.Get("TEST"); err != nil {
		t.Fatalf("Expected case-insensitive lookup to work, got error: %v", err)
	}

	if _, err := registry.Get(" Alias "); err != nil {
		t.Fatalf("Expected trimmed alias lookup to work, got error: %v", err)
	}

	// Test non-existent scheme
	if _, err := registry.Get("nonexistent"); err == nil {
		t.Fatal("Expected error for non-existent scheme, got nil")
	}
}

func TestRegistry_Open(t *testing.T) {
	registry := NewRegistry()

	if err := registry.Register(DefaultScheme, fakeOpener(DefaultScheme)); err != nil {
		t.Fatalf("Failed to register default backend: %v", err)
	}

	if err := registry.Register("memory", fakeOpener("memory")); err != nil {
		t.Fatalf("Failed to register memory backend: %v", err)
	}

	if err := registry.RegisterAlias("sqlite", DefaultScheme); err != nil {
		t.Fatalf("Failed to register alias: %v", err)
	}

	tests := []struct {
		name         string
		locator      string
		wantScheme   string
		wantLocation string
		wantErr      bool
	}{
		{
			name:         "explicit scheme",
			locator:      "memory:",
			wantScheme:   "memory",
			wantLocation: "",
		},
		{
			name:         "scheme with location",
			locator:      "zotero:/home/user/Zotero/zotero.sqlite",
			wantScheme:   DefaultScheme,
			wantLocation: "/home/user/Zotero/zotero.sqlite",
		},
		{
			name:         "alias scheme",
			locator:      "sqlite:/data/zotero.sqlite",
			wantScheme:   DefaultScheme,
			wantLocation: "/data/zotero.sqlite",
		},
		{
			name:         "bare path falls back to default scheme",
			locator:      "/home/user/Zotero/zotero.sqlite",
			wantScheme:   DefaultScheme,
			wantLocation: "/home/user/Zotero/zotero.sqlite",
		},
		{
			name:         "unknown prefix treated as bare path",
			locator:      "C:/Zotero/zotero.sqlite",
			wantScheme:   DefaultScheme,
			wantLocation: "C:/Zotero/zotero.sqlite",
		},
		{
			name:    "empty locator",
			locator: "  ",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := registry.Open(tt.locator)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Open(%q) error = %v, wantErr %v", tt.locator, err, tt.wantErr)
			}

			if tt.wantErr {
				return
			}

			fake := store.(*fakeStore)
			if fake.scheme != tt.wantScheme {
				t.Errorf("Open(%q) scheme = %q, want %q", tt.locator, fake.scheme, tt.wantScheme)
			}

			if fake.location != tt.wantLocation {
				t.Errorf("Open(%q) location = %q, want %q", tt.locator, fake.location, tt.wantLocation)
			}
		})
	}
}

func TestRegistry_List(t *testing.T) {
	registry := NewRegistry()

	// Test empty registry
	schemes := registry.List()
	if len(schemes) != 0 {
		t.Fatalf("Expected empty list, got %d items", len(schemes))
	}

	if err := registry.Register("test1", fakeOpener("test1")); err != nil {
		t.Fatalf("Failed to register backend1: %v", err)
	}

	if err := registry.Register("test2", fakeOpener("test2")); err != nil {
		t.Fatalf("Failed to register backend2: %v", err)
	}

	schemes = registry.List()
	if len(schemes) != 2 {
		t.Fatalf("Expected 2 schemes, got %d", len(schemes))
	}

	// Verify content (order might vary)
	schemeSet := make(map[string]bool)
	for _, s := range schemes {
		schemeSet[s] = true
	}

	if !schemeSet["test1"] || !schemeSet["test2"] {
		t.Fatalf("Expected schemes 'test1' and 'test2', got %v", schemes)
	}
}

func TestRegistry_ListWithAliases(t *testing.T) {
	registry := NewRegistry()

	if err := registry.Register("test", fakeOpener("test")); err != nil {
		t.Fatalf("Failed to register backend: %v", err)
	}

	if err := registry.RegisterAlias("alias1", "test"); err != nil {
		t.Fatalf("Failed to register alias1: %v", err)
	}

	if err := registry.RegisterAlias("alias2", "test"); err != nil {
		t.Fatalf("Failed to register alias2: %v", err)
	}

	result := registry.ListWithAliases()

	if len(result) != 1 {
		t.Fatalf("Expected 1 scheme, got %d", len(result))
	}

	aliases, exists := result["test"]
	if !exists {
		t.Fatal("Expected 'test' scheme to exist")
	}

	if len(aliases) != 2 {
		t.Fatalf("Expected 2 aliases, got %d", len(aliases))
	}

	aliasSet := make(map[string]bool)
	for _, alias := range aliases {
		aliasSet[alias] = true
	}

	if !aliasSet["alias1"] || !aliasSet["alias2"] {
		t.Fatalf("Expected aliases 'alias1' and 'alias2', got %v", aliases)
	}
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	registry := NewRegistry()

	done := make(chan bool, 10)

	// Concurrent registrations
	for i := 0; i < 5; i++ {
		go func(id int) {
			defer func() { done <- true }()

			scheme := fmt.Sprintf("concurrent%d", id)
			registry.Register(scheme, fakeOpener(scheme))
		}(i)
	}

	// Concurrent access
	for i := 0; i < 5; i++ {
		go func() {
			defer func() { done <- true }()
			registry.List()
		}()
	}

	// Wait for all goroutines
	for i := 0; i < 10; i++ {
		<-done
	}

	// Verify final state
	schemes := registry.List()
	if len(schemes) != 5 {
		t.Fatalf("Expected 5 registered schemes after concurrent access, got %d", len(schemes))
	}
}

func TestStoreError(t *testing.T) {
	err := &StoreError{Type: "not_found", Message: "no item with this key", Backend: "zotero", Key: "ABCD2345"}

	want := "not_found: no item with this key (backend: zotero, key: ABCD2345)"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	if !errors.Is(err, ErrNotFound) {
		t.Error("expected keyed not_found error to match ErrNotFound")
	}

	if errors.Is(err, ErrReadOnly) {
		t.Error("expected not_found error not to match ErrReadOnly")
	}

	wrapped := fmt.Errorf("trash failed: %w", err)
	if !errors.Is(wrapped, ErrNotFound) {
		t.Error("expected wrapped error to match ErrNotFound")
	}

	bare := &StoreError{Type: "closed", Message: "store is closed"}
	if bare.Error() != "closed: store is closed" {
		t.Errorf("Error() = %q, want %q", bare.Error(), "closed: store is closed")
	}
}

func TestAttachment_IsPDF(t *testing.T) {
	tests := []struct {
		contentType string
		want        bool
	}{
		{"application/pdf", true},
		{"Application/PDF", true},
		{"text/html", false},
		{"", false},
	}

	for _, tt := range tests {
		a := Attachment{ContentType: tt.contentType}
		if got := a.IsPDF(); got != tt.want {
			t.Errorf("IsPDF() with %q = %v, want %v", tt.contentType, got, tt.want)
		}
	}
}
