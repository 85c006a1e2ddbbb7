package log

import (
	"log/slog"
	"strconv"
)

var levelNames = []struct {
	level Level
	name  string
}{
	{LevelError, "error"},
	{LevelWarn, "warn"},
	{LevelInfo, "info"},
	{LevelDebug, "debug"},
	{LevelTrace, "trace"},
}

// String returns the lower-case level name. Levels between the named ones
// are written relative to the nearest lower name, as in "info+2".
func (l Level) String() string {
	for _, n := range levelNames {
		if l < n.level {
			continue
		}

		if l == n.level {
			return n.name
		}

		return n.name + "+" + strconv.Itoa(int(l-n.level))
	}

	return "trace" + strconv.Itoa(int(l-LevelTrace))
}

// Level returns l as a [slog.Level].
func (l Level) Level() slog.Level { return slog.Level(l) }

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatJSON:
		return "json"
	default:
		return "Format(" + strconv.Itoa(int(f)) + ")"
	}
}
