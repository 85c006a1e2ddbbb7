package lang

import (
	"log/slog"
	"strings"
)

// RangeAttr returns a structured logging attribute for r.
func RangeAttr(key string, r Range) slog.Attr {
	return slog.Group(key,
		slog.Int("start", r.Start),
		slog.Int("end", r.End),
	)
}

func partAttrs(p *RawPart) []slog.Attr {
	kind := p.Kind
	if len(p.Subkinds) > 0 {
		kind += ":" + strings.Join(p.Subkinds, ":")
	}

	return []slog.Attr{
		slog.String("kind", kind),
		slog.Bool("implicit", p.Implicit),
		slog.Int("attributes", p.Attributes.Len()),
		slog.Int("payload_chunks", len(p.Payload)),
		RangeAttr("range", p.Range),
	}
}
