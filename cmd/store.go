package cmd

import (
	"fmt"
	"sync"

	"github.com/spf13/viper"

	"github.com/btraven00/pichaq/pkg/library"
	"github.com/btraven00/pichaq/pkg/library/memory"
	"github.com/btraven00/pichaq/pkg/library/zotero"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// initializeBackends registers all available store backends.
func initializeBackends() error {
	registerOnce.Do(func() {
		registerErr = registerBackends()
	})

	return registerErr
}

func registerBackends() error {
	err := library.Register("zotero", func(location string) (library.Store, error) {
		return zotero.Open(location)
	})
	if err != nil {
		return fmt.Errorf("failed to register zotero backend: %w", err)
	}

	if err := library.Register("memory", memory.Open); err != nil {
		return fmt.Errorf("failed to register memory backend: %w", err)
	}

	if err := library.RegisterAlias("sqlite", "zotero"); err != nil {
		return fmt.Errorf("failed to register sqlite alias: %w", err)
	}

	return nil
}

// openStore resolves the library locator (flag first, then the viper
// "library" key from config or environment) and opens the store.
func openStore() (library.Store, error) {
	if err := initializeBackends(); err != nil {
		return nil, err
	}

	locator := libraryDSN
	if locator == "" {
		locator = viper.GetString("library")
	}

	if locator == "" {
		return nil, fmt.Errorf("no library specified: use --library or set 'library' in $HOME/.pichaq.yaml")
	}

	return library.Open(locator)
}
