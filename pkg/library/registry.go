// Package library provides registry functionality for mapping store
// locator schemes to their backend implementations.
package library

import (
	"fmt"
	"strings"
	"sync"
)

// Opener constructs a Store from a location string (whatever follows
// the "scheme:" prefix of a locator).
type Opener func(location string) (Store, error)

// DefaultScheme handles locators that carry no recognized scheme
// prefix, i.e. bare file paths.
const DefaultScheme = "zotero"

// Registry manages the collection of available store backends
type Registry struct {
	mu      sync.RWMutex
	openers map[string]Opener
	aliases map[string]string // Allow multiple names for same backend
}

// NewRegistry creates a new backend registry
func NewRegistry() *Registry {
	return &Registry{
		openers: make(map[string]Opener),
		aliases: make(map[string]string),
	}
}

// Register adds a backend to the registry
func (r *Registry) Register(scheme string, opener Opener) error {
	if opener == nil {
		return fmt.Errorf("opener cannot be nil")
	}

	if scheme == "" {
		return fmt.Errorf("backend must have a non-empty scheme")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Check if already registered
	if _, exists := r.openers[scheme]; exists {
		return fmt.Errorf("backend for scheme '%s' already registered", scheme)
	}

	r.openers[scheme] = opener

	return nil
}

// RegisterAlias creates an alias for an existing backend
func (r *Registry) RegisterAlias(alias, scheme string) error {
	if alias == "" || scheme == "" {
		return fmt.Errorf("alias and scheme cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Check if target exists
	if _, exists := r.openers[scheme]; !exists {
		return fmt.Errorf("scheme '%s' not found", scheme)
	}

	// Check if alias already exists
	if _, exists := r.aliases[alias]; exists {
		return fmt.Errorf("alias '%s' already registered", alias)
	}

	// Check if alias conflicts with a real scheme
	if _, exists := r.openers[alias]; exists {
		return fmt.Errorf("alias '%s' conflicts with existing scheme", alias)
	}

	r.aliases[alias] = scheme

	return nil
}

// Get retrieves an opener by scheme or alias
func (r *Registry) Get(scheme string) (Opener, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// Normalize scheme (case-insensitive)
	normalized := strings.ToLower(strings.TrimSpace(scheme))

	// Try direct lookup first
	if opener, exists := r.openers[normalized]; exists {
		return opener, nil
	}

	// Try alias lookup
	if realScheme, exists := r.aliases[normalized]; exists {
		if opener, exists := r.openers[realScheme]; exists {
			return opener, nil
		}
	}

	return nil, fmt.Errorf("no backend registered for scheme '%s'", scheme)
}

// List returns all registered schemes
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	schemes := make([]string, 0, len(r.openers))
	for scheme := range r.openers {
		schemes = append(schemes, scheme)
	}

	return schemes
}

// ListWithAliases returns all registered schemes and their aliases
func (r *Registry) ListWithAliases() map[string][]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string][]string)

	// Add main schemes
	for scheme := range r.openers {
		result[scheme] = []string{}
	}

	// Add aliases
	for alias, scheme := range r.aliases {
		if _, exists := result[scheme]; exists {
			result[scheme] = append(result[scheme], alias)
		}
	}

	return result
}

// Open resolves a locator of the form "scheme:location" to its backend
// and opens the store. A locator without a recognized scheme prefix is
// treated as a bare location for the default scheme, so plain database
// paths keep working.
func (r *Registry) Open(locator string) (Store, error) {
	trimmed := strings.TrimSpace(locator)
	if trimmed == "" {
		return nil, fmt.Errorf("empty store locator")
	}

	if scheme, location, found := strings.Cut(trimmed, ":"); found {
		if opener, err := r.Get(scheme); err == nil {
			return opener(location)
		}
	}

	opener, err := r.Get(DefaultScheme)
	if err != nil {
		return nil, fmt.Errorf("cannot open '%s': %w", locator, err)
	}

	return opener(trimmed)
}

// DefaultRegistry is the global registry instance
var DefaultRegistry = NewRegistry()

// Register adds a backend to the default registry
func Register(scheme string, opener Opener) error {
	return DefaultRegistry.Register(scheme, opener)
}

// RegisterAlias creates an alias in the default registry
func RegisterAlias(alias, scheme string) error {
	return DefaultRegistry.RegisterAlias(alias, scheme)
}

// Get retrieves an opener from the default registry
func Get(scheme string) (Opener, error) {
	return DefaultRegistry.Get(scheme)
}

// List returns all schemes from the default registry
func List() []string {
	return DefaultRegistry.List()
}

// Open opens a store via the default registry
func Open(locator string) (Store, error) {
	return DefaultRegistry.Open(locator)
}
