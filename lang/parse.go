package lang

import (
	"context"
	"log/slog"
	"regexp"
	"slices"
	"strings"

	"github.com/ardnew/lrx/log"
)

// DefaultNamespace is the canonical namespace word recognized in
// declarations, tags and entities.
const DefaultNamespace = "yatt"

// DefaultKind is the part kind given to leading text that is not preceded
// by any declaration.
const DefaultKind = "args"

// DefaultBodyArgument is the name of the synthetic body argument.
const DefaultBodyArgument = "body"

// DefaultMaxDepth is the default limit on bracket, entity and element
// nesting.
const DefaultMaxDepth = 100

// Config is the small configuration record accepted by the front end.
type Config struct {
	// Namespaces lists the recognized namespace words.
	Namespaces []string `json:"namespaces"     yaml:"namespaces"`
	// DefaultKind is the kind of the implicit part created for leading text.
	DefaultKind string `json:"default_kind"   yaml:"default_kind"`
	// LegacyComment also accepts "-->" as a comment closer.
	LegacyComment bool `json:"legacy_comment" yaml:"legacy_comment"`
	// BodyArgument is the name of the synthetic body argument.
	BodyArgument string `json:"body_argument"  yaml:"body_argument"`
	// MaxDepth limits recursion in nested constructs.
	MaxDepth int `json:"max_depth"      yaml:"max_depth"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Namespaces:   []string{DefaultNamespace},
		DefaultKind:  DefaultKind,
		BodyArgument: DefaultBodyArgument,
		MaxDepth:     DefaultMaxDepth,
	}
}

// Parser is one parsing session: an immutable configuration plus the
// pattern cache shared by every file it parses. A Parser is safe for
// concurrent use; each parsed file owns its own scanners.
type Parser struct {
	cfg      Config
	patterns *Patterns
	cache    *cache
	logger   log.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithConfig replaces the whole configuration.
func WithConfig(cfg Config) Option {
	return func(p *Parser) {
		p.cfg = cfg
	}
}

// WithNamespaces sets the recognized namespace words.
func WithNamespaces(ns ...string) Option {
	return func(p *Parser) {
		p.cfg.Namespaces = slices.Clone(ns)
	}
}

// WithDefaultKind sets the kind of the implicit leading part.
func WithDefaultKind(kind string) Option {
	return func(p *Parser) {
		p.cfg.DefaultKind = kind
	}
}

// WithLegacyComment toggles acceptance of "-->" as a comment closer.
func WithLegacyComment(enable bool) Option {
	return func(p *Parser) {
		p.cfg.LegacyComment = enable
	}
}

// WithBodyArgument sets the name of the synthetic body argument.
func WithBodyArgument(name string) Option {
	return func(p *Parser) {
		p.cfg.BodyArgument = name
	}
}

// WithMaxDepth sets the nesting limit.
func WithMaxDepth(depth int) Option {
	return func(p *Parser) {
		p.cfg.MaxDepth = depth
	}
}

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(p *Parser) {
		p.logger = logger
	}
}

// New returns a Parser configured by opts.
func New(opts ...Option) *Parser {
	p := &Parser{cfg: DefaultConfig(), patterns: NewPatterns(), cache: &cache{}}

	for _, opt := range opts {
		opt(p)
	}

	if len(p.cfg.Namespaces) == 0 {
		p.cfg.Namespaces = []string{DefaultNamespace}
	}

	if p.cfg.DefaultKind == "" {
		p.cfg.DefaultKind = DefaultKind
	}

	if p.cfg.BodyArgument == "" {
		p.cfg.BodyArgument = DefaultBodyArgument
	}

	if p.cfg.MaxDepth <= 0 {
		p.cfg.MaxDepth = DefaultMaxDepth
	}

	return p
}

// Config returns a copy of the parser configuration.
func (p *Parser) Config() Config {
	cfg := p.cfg
	cfg.Namespaces = slices.Clone(p.cfg.Namespaces)

	return cfg
}

// Logger returns the parser's logger.
func (p *Parser) Logger() log.Logger { return p.logger }

// Patterns returns the session's pattern cache.
func (p *Parser) Patterns() *Patterns { return p.patterns }

// IsNamespace reports whether ns is a recognized namespace word.
func (p *Parser) IsNamespace(ns string) bool {
	return slices.Contains(p.cfg.Namespaces, ns)
}

// nsAlt returns a regular expression alternation of the namespace words.
func (p *Parser) nsAlt() string {
	quoted := make([]string, len(p.cfg.Namespaces))
	for i, ns := range p.cfg.Namespaces {
		quoted[i] = regexp.QuoteMeta(ns)
	}

	return "(?:" + strings.Join(quoted, "|") + ")"
}

// nsKey identifies the namespace set in pattern cache keys.
func (p *Parser) nsKey() string {
	return strings.Join(p.cfg.Namespaces, "|")
}

func (p *Parser) scanner(src *Source) *Scanner {
	return NewScanner(src, p.cfg.MaxDepth)
}

// ParseString splits text into declaration parts.
func (p *Parser) ParseString(
	ctx context.Context,
	filename, text string,
) (*File, error) {
	p.logger.TraceContext(ctx, "parse start",
		slog.String("file", filename),
		slog.Int("source_length", len(text)),
	)

	f, err := p.parseMultipart(NewSource(filename, text, p.patterns))
	if err != nil {
		return nil, err
	}

	for _, part := range f.Parts {
		p.logger.TraceContext(ctx, "part", partAttrs(part)...)
	}

	p.logger.TraceContext(ctx, "parse complete",
		slog.String("file", filename),
		slog.Int("chunk_count", len(f.Chunks)),
		slog.Int("part_count", len(f.Parts)),
	)

	return f, nil
}

// ParseString parses text with a default Parser.
func ParseString(ctx context.Context, filename, text string, opts ...Option) (*File, error) {
	return New(opts...).ParseString(ctx, filename, text)
}
