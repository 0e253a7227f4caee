package suppress

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/docfold/docfold/internal/logging"
)

// levelSet is a set of severities, with a sentinel form matching every
// severity for "suppress the whole logger" configurations.
type levelSet struct {
	all     bool
	members map[slog.Level]struct{}
}

// newLevelSet builds a level set from a configuration value: a bool selects
// the match-everything sentinel (true) or the empty set (false); anything
// else goes through ParseLevels.
func newLevelSet(levels any) (levelSet, error) {
	if b, isBool := levels.(bool); isBool {
		return levelSet{all: b}, nil
	}

	parsed, err := ParseLevels(levels)
	if err != nil {
		return levelSet{}, err
	}

	members := make(map[slog.Level]struct{}, len(parsed))
	for _, l := range parsed {
		members[l] = struct{}{}
	}
	return levelSet{members: members}, nil
}

func (s levelSet) contains(l slog.Level) bool {
	if s.all {
		return true
	}
	_, ok := s.members[l]
	return ok
}

// LoggerRule suppresses records of one logger subtree at a set of severities.
type LoggerRule struct {
	name   string
	levels levelSet
}

// NewLoggerRule builds a rule for the fully-qualified logger name. The
// levels value follows the configuration surface: bool, a single severity,
// or a list of severities.
func NewLoggerRule(name string, levels any) (*LoggerRule, error) {
	set, err := newLevelSet(levels)
	if err != nil {
		return nil, err
	}
	return &LoggerRule{name: name, levels: set}, nil
}

// Suppressed reports true when the record does not belong to the rule's
// logger subtree, or when its severity is one of the configured ones.
// Records outside the subtree would not be emitted by the matched logger in
// the first place; the rule treats them as suppressed so that combining it
// with a pattern rule keeps AND semantics scoped to the named logger.
func (r *LoggerRule) Suppressed(rec logging.Record) bool {
	if !underLogger(rec.Logger, r.name) {
		return true
	}
	return r.levels.contains(rec.Level)
}

// underLogger reports whether name falls under prefix in the dot hierarchy.
// An empty prefix matches every logger.
func underLogger(name, prefix string) bool {
	if prefix == "" {
		return true
	}
	return name == prefix || strings.HasPrefix(name, prefix+".")
}

// PatternRule suppresses records whose rendered message matches one of the
// configured regular expressions (substring search, not full match).
type PatternRule struct {
	patterns []*regexp.Regexp
}

// NewPatternRule compiles the given patterns. An invalid pattern is a
// configuration error.
func NewPatternRule(patterns ...string) (*PatternRule, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, re)
	}
	return &PatternRule{patterns: compiled}, nil
}

// Suppressed reports true when at least one pattern is configured and at
// least one of them matches the message. An empty pattern set never
// suppresses.
func (r *PatternRule) Suppressed(rec logging.Record) bool {
	if len(r.patterns) == 0 {
		return false
	}
	for _, p := range r.patterns {
		if p.MatchString(rec.Message) {
			return true
		}
	}
	return false
}

// andRule combines filters with logical AND: a record is suppressed only
// when every filter independently agrees.
type andRule struct {
	filters []logging.Filter
}

// AllOf composes filters into a single rule with AND semantics. With no
// filters the result never suppresses.
func AllOf(filters ...logging.Filter) logging.Filter {
	return &andRule{filters: filters}
}

func (r *andRule) Suppressed(rec logging.Record) bool {
	if len(r.filters) == 0 {
		return false
	}
	for _, f := range r.filters {
		if !f.Suppressed(rec) {
			return false
		}
	}
	return true
}

// NewRecordRule builds the scoped-record rule: suppress records of the named
// logger at every severity, but only when the message also matches one of
// the patterns.
func NewRecordRule(name string, patterns ...string) (logging.Filter, error) {
	loggerRule, err := NewLoggerRule(name, true)
	if err != nil {
		return nil, err
	}
	patternRule, err := NewPatternRule(patterns...)
	if err != nil {
		return nil, err
	}
	return AllOf(loggerRule, patternRule), nil
}
