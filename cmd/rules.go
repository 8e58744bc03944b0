package cmd

import (
	"github.com/spf13/viper"

	"github.com/btraven00/pichaq/pkg/version"
)

// loadRules resolves the rules file (flag first, then the viper "rules"
// key from config or environment) and loads it over the built-in
// defaults. No rules file means the defaults alone.
func loadRules(path string) (*version.Rules, error) {
	if path == "" {
		path = viper.GetString("rules")
	}

	if path == "" {
		return version.Default(), nil
	}

	return version.LoadRules(path)
}
