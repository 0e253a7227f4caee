package suppress

import (
	"fmt"
	"log/slog"
)

// levelNames resolves canonical severity names to slog levels. Lookup is
// case-sensitive: configuration authors write the uppercase names, anything
// else is treated as unknown and ignored.
var levelNames = map[string]slog.Level{
	"DEBUG":   slog.LevelDebug,
	"INFO":    slog.LevelInfo,
	"WARN":    slog.LevelWarn,
	"WARNING": slog.LevelWarn,
	"ERROR":   slog.LevelError,
}

// normalizeLevel converts a single severity value into a slog level. Unknown
// names report ok=false without an error; a value that is neither an integer
// nor a string is a configuration error.
func normalizeLevel(v any) (level slog.Level, ok bool, err error) {
	switch x := v.(type) {
	case slog.Level:
		return x, true, nil
	case int:
		return slog.Level(x), true, nil
	case int64: // TOML integers decode as int64
		return slog.Level(x), true, nil
	case string:
		l, known := levelNames[x]
		return l, known, nil
	default:
		return 0, false, fmt.Errorf("invalid logging level type %T (%v)", v, v)
	}
}

// ParseLevels converts one severity value or a list of severity values into
// the resolved slog levels. Unrecognized severity names are silently dropped;
// an element of any other invalid type fails immediately.
func ParseLevels(v any) ([]slog.Level, error) {
	if v == nil {
		return nil, nil
	}

	var items []any
	switch x := v.(type) {
	case []any:
		items = x
	case []string:
		items = make([]any, len(x))
		for i, s := range x {
			items[i] = s
		}
	case []int:
		items = make([]any, len(x))
		for i, n := range x {
			items[i] = n
		}
	case []slog.Level:
		items = make([]any, len(x))
		for i, l := range x {
			items[i] = l
		}
	default:
		items = []any{v}
	}

	levels := make([]slog.Level, 0, len(items))
	for _, item := range items {
		level, ok, err := normalizeLevel(item)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		levels = append(levels, level)
	}
	return levels, nil
}
