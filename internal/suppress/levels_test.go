package suppress

import (
	"log/slog"
	"reflect"
	"testing"
)

func TestParseLevels(t *testing.T) {
	tests := []struct {
		name    string
		input   any
		want    []slog.Level
		wantErr bool
	}{
		{"nil", nil, nil, false},
		{"single name", "WARN", []slog.Level{slog.LevelWarn}, false},
		{"single int", 8, []slog.Level{slog.LevelError}, false},
		{"single slog level", slog.LevelDebug, []slog.Level{slog.LevelDebug}, false},
		{"name list", []any{"WARNING", "ERROR"}, []slog.Level{slog.LevelWarn, slog.LevelError}, false},
		{"string slice", []string{"DEBUG", "INFO"}, []slog.Level{slog.LevelDebug, slog.LevelInfo}, false},
		{"int64 list from toml", []any{int64(0), int64(4)}, []slog.Level{slog.LevelInfo, slog.LevelWarn}, false},
		{"unknown name dropped", []any{"WARN", "VERBOSE"}, []slog.Level{slog.LevelWarn}, false},
		{"lowercase is unknown", "warn", []slog.Level{}, false},
		{"all unknown", []any{"NOPE", "NADA"}, []slog.Level{}, false},
		{"invalid type", []any{"WARN", 1.5}, nil, true},
		{"invalid scalar type", true, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLevels(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseLevels(%v) error = nil, want error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseLevels(%v) error = %v", tt.input, err)
			}
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseLevels(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
