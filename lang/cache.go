package lang

import (
	"bytes"
	"context"
	"encoding/gob"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"
)

// cache stores parsed files keyed by a hash of filename, source text and
// configuration. Entries are parsed at most once.
type cache struct {
	registry sync.Map
}

// state tracks the parse result of one cached source.
type state struct {
	once sync.Once
	file *File
	err  error
}

// hashConfig encodes the configuration using gob and hashes it with xxh3.
func hashConfig(cfg Config) uint64 {
	var buf bytes.Buffer

	enc := gob.NewEncoder(&buf)

	_ = enc.Encode(cfg.Namespaces)
	_ = enc.Encode(cfg.DefaultKind)
	_ = enc.Encode(cfg.LegacyComment)
	_ = enc.Encode(cfg.BodyArgument)
	_ = enc.Encode(cfg.MaxDepth)

	return xxh3.Hash(buf.Bytes())
}

// ParseReader reads all of r and parses it as one source file. The result
// is cached by content, so reading identical input again returns the same
// *File.
func (p *Parser) ParseReader(
	ctx context.Context,
	filename string,
	r io.Reader,
) (*File, error) {
	// Wrap reader with async read-ahead for concurrent I/O.
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).
			With(slog.String("file", filename))
	}

	p.logger.TraceContext(
		ctx,
		"read input",
		slog.String("file", filename),
		slog.Int("source_bytes", len(data)),
		slog.Bool("read_ahead", true),
	)

	return p.ParseCached(ctx, filename, string(data))
}

// ParseCached is [Parser.ParseString] with memoization by content.
func (p *Parser) ParseCached(
	ctx context.Context,
	filename, text string,
) (*File, error) {
	sourceHash := xxh3.HashString(filename + "\x00" + text)
	cfgHash := hashConfig(p.cfg)
	key := strconv.FormatUint(sourceHash^cfgHash, 36)

	value, hit := p.cache.registry.LoadOrStore(key, new(state))

	entry, ok := value.(*state)
	if !ok {
		return nil, NewError("invalid cache entry").
			With(slog.String("key", key))
	}

	p.logger.TraceContext(
		ctx,
		"cache lookup",
		slog.String("source_hash", strconv.FormatUint(sourceHash, 16)),
		slog.String("config_hash", strconv.FormatUint(cfgHash, 16)),
		slog.Bool("cache_hit", hit),
	)

	entry.once.Do(func() {
		entry.file, entry.err = p.ParseString(ctx, filename, text)
	})

	return entry.file, entry.err
}

// ClearCache removes all cached parse results.
func (p *Parser) ClearCache() {
	p.cache.registry.Clear()
}
