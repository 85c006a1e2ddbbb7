package log

import (
	"io"
	"iter"
	"log/slog"
	"slices"
	"strings"
	"time"
)

// Level represents the severity of a log message.
type Level slog.Level

const levelTraceMask = -8

const (
	LevelTrace Level = Level(levelTraceMask)  // trace
	LevelDebug Level = Level(slog.LevelDebug) // debug
	LevelInfo  Level = Level(slog.LevelInfo)  // info
	LevelWarn  Level = Level(slog.LevelWarn)  // warn
	LevelError Level = Level(slog.LevelError) // error
)

// DefaultLevel is the default log level.
const DefaultLevel = LevelInfo

// Levels returns the level names from least to most severe.
func Levels() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, n := range slices.Backward(levelNames) {
			if !yield(n.name) {
				return
			}
		}
	}
}

// ParseLevel returns the level named s, which is one of [Levels] in any
// case, optionally followed by a signed offset as in "info+2". Unknown
// names give [DefaultLevel].
func ParseLevel(s string) Level {
	sign := "+"

	name, offset, signed := strings.Cut(s, sign)
	if !signed {
		sign = "-"
		name, offset, signed = strings.Cut(s, sign)
	}

	offset = sign + offset

	// slog knows every name but trace.
	if strings.EqualFold(name, "trace") {
		s = "debug"
		if signed {
			s += offset
		}

		var l slog.Level
		if l.UnmarshalText([]byte(s)) != nil {
			return DefaultLevel
		}

		return Level(l) - LevelDebug + LevelTrace
	}

	var l slog.Level
	if l.UnmarshalText([]byte(s)) != nil {
		return DefaultLevel
	}

	return Level(l)
}

// Format represents the output format for log messages.
type Format int

const (
	FormatText Format = iota // text
	FormatJSON               // json
)

// DefaultFormat is the default log message format.
const DefaultFormat = FormatJSON

// Formats returns the format names.
func Formats() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, f := range []Format{FormatJSON, FormatText} {
			if !yield(f.String()) {
				return
			}
		}
	}
}

// ParseFormat returns the format named s, ignoring case and surrounding
// space. Unknown names give [DefaultFormat].
func ParseFormat(s string) Format {
	s = strings.TrimSpace(s)

	for _, f := range []Format{FormatJSON, FormatText} {
		if strings.EqualFold(s, f.String()) {
			return f
		}
	}

	return DefaultFormat
}

// FormatTime renders a record timestamp. An empty result drops the time.
type FormatTime func(time.Time) string

const (
	// DefaultTimeLayout is the timestamp layout of a new logger.
	DefaultTimeLayout = time.RFC3339
	// DefaultCaller is whether a new logger records the caller.
	DefaultCaller = false
	// DefaultPretty is whether a new logger uses the pretty handlers.
	DefaultPretty = true
)

// config is the immutable configuration of a Logger. Options copy it.
type config struct {
	output     io.Writer
	formatTime FormatTime
	level      Level
	format     Format
	caller     bool
	pretty     bool
}

func makeConfig(w io.Writer, opts ...Option) config {
	return apply(config{}, append([]Option{WithDefaults(w)}, opts...)...)
}

// handlers maps each format to its plain and pretty constructors.
var handlers = map[Format][2]func(io.Writer, *slog.HandlerOptions) slog.Handler{
	FormatText: {
		func(w io.Writer, o *slog.HandlerOptions) slog.Handler { return slog.NewTextHandler(w, o) },
		func(w io.Writer, o *slog.HandlerOptions) slog.Handler { return newPrettyTextHandler(w, o) },
	},
	FormatJSON: {
		func(w io.Writer, o *slog.HandlerOptions) slog.Handler { return slog.NewJSONHandler(w, o) },
		func(w io.Writer, o *slog.HandlerOptions) slog.Handler { return newPrettyJSONHandler(w, o) },
	},
}

// handler returns the slog handler c describes. An unknown format discards.
func (c config) handler() slog.Handler {
	mk, ok := handlers[c.format]
	if !ok {
		return slog.DiscardHandler
	}

	pretty := 0
	if c.pretty {
		pretty = 1
	}

	return mk[pretty](c.output, &slog.HandlerOptions{
		AddSource:   c.caller,
		Level:       slog.Level(c.level),
		ReplaceAttr: c.replaceAttr,
	})
}

// replaceAttr formats the time with c.formatTime and writes levels by their
// upper-case name, so trace records read "TRACE" rather than "DEBUG-4".
func (c config) replaceAttr(_ []string, a slog.Attr) slog.Attr {
	switch a.Key {
	case slog.TimeKey:
		if t, ok := a.Value.Any().(time.Time); ok {
			s := c.formatTime(t)
			if s == "" {
				return slog.Attr{}
			}

			a.Value = slog.StringValue(s)
		}

	case slog.LevelKey:
		if l, ok := a.Value.Any().(slog.Level); ok {
			a.Value = slog.StringValue(strings.ToUpper(Level(l).String()))
		}
	}

	return a
}

// timeLayout maps normalized layout names to layouts.
var timeLayout = map[string]string{
	"rfc3339":     time.RFC3339,
	"rfc3339nano": time.RFC3339Nano,
	"ansic":       time.ANSIC,
	"unixdate":    time.UnixDate,
	"rubydate":    time.RubyDate,
	"rfc822":      time.RFC822,
	"rfc822z":     time.RFC822Z,
	"rfc850":      time.RFC850,
	"kitchen":     time.Kitchen,
	"stamp":       time.Stamp,
	"stampmilli":  time.StampMilli,
	"ms":          time.StampMilli,
	"stampmicro":  time.StampMicro,
	"us":          time.StampMicro,
	"stampnano":   time.StampNano,
	"ns":          time.StampNano,
	"none":        "",
}

func makeFormatTimeFunc(layout string) FormatTime {
	key := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}

		return -1
	}, strings.ToLower(layout))

	if std, ok := timeLayout[key]; ok {
		layout = std
	}

	if key == "" || layout == "" {
		return func(time.Time) string { return "" }
	}

	return func(t time.Time) string { return t.Format(layout) }
}
