package suppress

import (
	"fmt"
	"sort"

	"github.com/docfold/docfold/internal/logging"
)

// Config is the suppression section of the build configuration.
type Config struct {
	// Loggers maps a logger short-name to the severities to suppress:
	// a bool (true = every severity), a single severity, or a list.
	Loggers map[string]any `toml:"loggers"`

	// Records lists suppression-record specifications: a bare pattern
	// string applied to every logger, or a list whose first element is a
	// logger short-name and remaining elements are patterns scoped to it.
	Records []any `toml:"records"`

	// Protect names extensions or logger modules exempted from filter
	// attachment.
	Protect []string `toml:"protect"`
}

// Registry holds the built suppression rules: the default pattern-only rule
// applied to every logger, and an ordered rule list per fully-qualified
// logger-name prefix. Build it once; rules are immutable afterwards.
type Registry struct {
	defaultRule logging.Filter
	byPrefix    map[string][]logging.Filter
	prefixes    []string
}

// Build constructs a Registry from configuration. Invalid severity types and
// malformed record specifications fail immediately; unknown severity names
// are dropped silently.
func Build(cfg Config) (*Registry, error) {
	byPrefix := make(map[string][]logging.Filter)

	// Logger severities map. Iterate in sorted order so registry
	// construction is deterministic; per-prefix rule order is what the
	// evaluation contract guarantees.
	names := make([]string, 0, len(cfg.Loggers))
	for name := range cfg.Loggers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		prefix := logging.Qualified(name)
		rule, err := NewLoggerRule(prefix, cfg.Loggers[name])
		if err != nil {
			return nil, fmt.Errorf("suppress logger %q: %w", name, err)
		}
		byPrefix[prefix] = append(byPrefix[prefix], rule)
	}

	// Record specifications: bare patterns are global, groups are scoped.
	globals, groups, err := partitionRecords(cfg.Records)
	if err != nil {
		return nil, err
	}
	for _, group := range groups {
		prefix := logging.Qualified(group[0])
		rule, err := NewRecordRule(prefix, group[1:]...)
		if err != nil {
			return nil, fmt.Errorf("suppress record for %q: %w", group[0], err)
		}
		byPrefix[prefix] = append(byPrefix[prefix], rule)
	}

	defaultRule, err := NewPatternRule(globals...)
	if err != nil {
		return nil, fmt.Errorf("suppress records: %w", err)
	}

	prefixes := make([]string, 0, len(byPrefix))
	for prefix := range byPrefix {
		prefixes = append(prefixes, prefix)
	}
	sort.Strings(prefixes)

	return &Registry{
		defaultRule: defaultRule,
		byPrefix:    byPrefix,
		prefixes:    prefixes,
	}, nil
}

// partitionRecords splits record specifications into global pattern strings
// and scoped groups (logger short-name followed by its patterns).
func partitionRecords(records []any) (globals []string, groups [][]string, err error) {
	for _, record := range records {
		switch spec := record.(type) {
		case string:
			globals = append(globals, spec)
		case []string:
			if len(spec) == 0 {
				return nil, nil, fmt.Errorf("empty suppress record group")
			}
			groups = append(groups, spec)
		case []any:
			if len(spec) == 0 {
				return nil, nil, fmt.Errorf("empty suppress record group")
			}
			group := make([]string, len(spec))
			for i, elem := range spec {
				s, isString := elem.(string)
				if !isString {
					return nil, nil, fmt.Errorf("invalid suppress record element type %T (%v)", elem, elem)
				}
				group[i] = s
			}
			groups = append(groups, group)
		default:
			return nil, nil, fmt.Errorf("invalid suppress record type %T (%v)", record, record)
		}
	}
	return globals, groups, nil
}

// DefaultRule returns the pattern-only rule applied to every logger.
func (r *Registry) DefaultRule() logging.Filter {
	return r.defaultRule
}

// Prefixes returns the configured logger-name prefixes, sorted.
func (r *Registry) Prefixes() []string {
	return r.prefixes
}

// RulesFor returns, in declaration order, the rules whose prefix covers the
// fully-qualified logger name. The default rule is not included.
func (r *Registry) RulesFor(loggerName string) []logging.Filter {
	var rules []logging.Filter
	for _, prefix := range r.prefixes {
		if underLogger(loggerName, prefix) {
			rules = append(rules, r.byPrefix[prefix]...)
		}
	}
	return rules
}
