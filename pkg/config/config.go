// Package config provides the configuration system for rowbind. It defines a
// single MappingConfig structure carrying the naming-match rules, strictness
// policy, and column prefix that plan resolution consumes.
//
// The naming rules implement the matching contract used by the plan resolver:
// case-insensitive by default, with optional camelCase↔snake_case equivalence.
//
// Example usage:
//
//	cfg := config.NewMappingConfig()
//	cfg.Naming.CamelToUnderscore = true
//	cfg.StrictMatching = true
//
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config

import (
	"fmt"

	stringpool "github.com/rowbind/rowbind/pkg/strings"
)

// NamingRules control how result-set column labels are matched against
// target-type property names. The zero value matches nothing useful; use
// DefaultNamingRules or NewMappingConfig for sensible defaults.
type NamingRules struct {
	// CaseSensitive requires exact-case equality between column label and
	// property name. Off by default.
	CaseSensitive bool `yaml:"case_sensitive" json:"case_sensitive"`
	// CamelToUnderscore treats camelCase property names and snake_case
	// column labels as equivalent ("userId" matches "user_id").
	CamelToUnderscore bool `yaml:"camel_to_underscore" json:"camel_to_underscore"`
}

// DefaultNamingRules returns the default matching rules: case-insensitive
// with camel/underscore equivalence enabled.
func DefaultNamingRules() NamingRules {
	return NamingRules{
		CaseSensitive:     false,
		CamelToUnderscore: true,
	}
}

// ColumnNameMatches reports whether a result-set column label corresponds to
// a property name under these rules. Pure; no side effects. An empty column
// label never matches any property.
func (r NamingRules) ColumnNameMatches(columnLabel, propertyName string) bool {
	if columnLabel == "" {
		return false
	}

	if r.equal(columnLabel, propertyName) {
		return true
	}

	if r.CamelToUnderscore {
		return r.equal(columnLabel, stringpool.SnakeFromCamel(propertyName))
	}

	return false
}

func (r NamingRules) equal(a, b string) bool {
	if r.CaseSensitive {
		return a == b
	}
	return stringpool.EqualFold(a, b)
}

// MappingConfig is the configuration consumed by plan resolution. It is
// read-only during resolution; resolved plans are keyed on the prefix so a
// config change never invalidates plans already handed out.
type MappingConfig struct {
	// Naming holds the column/property matching rules
	Naming NamingRules `yaml:"naming" json:"naming"`

	// StrictMatching requires every result column to be consumed by the
	// mapping; resolution fails otherwise
	StrictMatching bool `yaml:"strict_matching" json:"strict_matching"`

	// Prefix is stripped case-insensitively from column labels before
	// matching; columns without the prefix are filtered out, not errors
	Prefix string `yaml:"prefix" json:"prefix"`

	// Logging configures the structured logger
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// LoggingConfig contains logger settings.
type LoggingConfig struct {
	// Level sets the minimum log level (debug, info, warn, error)
	Level string `yaml:"level" json:"level"`
	// Encoding selects json or console output
	Encoding string `yaml:"encoding" json:"encoding"`
	// Development enables colorized, stack-traced development output
	Development bool `yaml:"development" json:"development"`
}

// NewMappingConfig creates a MappingConfig with sensible defaults.
func NewMappingConfig() *MappingConfig {
	return &MappingConfig{
		Naming:         DefaultNamingRules(),
		StrictMatching: false,
		Prefix:         "",
		Logging: LoggingConfig{
			Level:    "info",
			Encoding: "json",
		},
	}
}

// IsStrictMatching reports whether strict matching is enabled. Exposed as a
// method so the resolver depends on the naming-configuration contract rather
// than struct internals.
func (c *MappingConfig) IsStrictMatching() bool {
	return c.StrictMatching
}

// Validate checks the configuration for invalid combinations.
func (c *MappingConfig) Validate() error {
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	switch c.Logging.Encoding {
	case "", "json", "console":
	default:
		return fmt.Errorf("invalid log encoding: %s", c.Logging.Encoding)
	}

	return nil
}
