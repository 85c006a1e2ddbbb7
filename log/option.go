package log

import "io"

// Option sets one field of a logger configuration.
type Option func(*config)

// apply returns a copy of c with opts applied in order.
func apply(c config, opts ...Option) config {
	for _, opt := range opts {
		opt(&c)
	}

	return c
}

// WithDefaults resets every setting to its default and directs output to w.
func WithDefaults(w io.Writer) Option {
	return func(c *config) {
		*c = config{
			formatTime: makeFormatTimeFunc(DefaultTimeLayout),
			level:      DefaultLevel,
			format:     DefaultFormat,
			caller:     DefaultCaller,
			pretty:     DefaultPretty,
		}

		WithOutput(w)(c)
	}
}

// WithOutput directs output to w. A nil writer discards output.
func WithOutput(w io.Writer) Option {
	return func(c *config) {
		if w == nil {
			w = io.Discard
		}

		c.output = w
	}
}

// WithLevel discards records below level.
func WithLevel(level Level) Option {
	return func(c *config) { c.level = level }
}

// WithFormat selects the record encoding.
func WithFormat(format Format) Option {
	return func(c *config) { c.format = format }
}

// WithTimeLayout sets the timestamp layout. Named layouts of package time
// are matched case-insensitively ignoring punctuation ("RFC3339",
// "rfc-3339-nano", "kitchen"), along with the short forms "ms", "us" and
// "ns". Any other layout is used verbatim. An empty or blank layout, or
// "none", omits timestamps.
func WithTimeLayout(layout string) Option {
	return func(c *config) { c.formatTime = makeFormatTimeFunc(layout) }
}

// WithCaller adds the source position of the logging call to each record.
func WithCaller(enable bool) Option {
	return func(c *config) { c.caller = enable }
}

// WithPretty selects the lipgloss handlers: single-line colorized text, or
// indented unquoted JSON.
func WithPretty(enable bool) Option {
	return func(c *config) { c.pretty = enable }
}
