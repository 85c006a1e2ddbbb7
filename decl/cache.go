package decl

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strconv"
	"sync"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"

	"github.com/ardnew/lrx/lang"
)

// Cache is a read-through store of declarations keyed by file name and
// content, so an edited file is rebuilt while an unchanged one is built
// once. It is safe for concurrent use.
type Cache struct {
	builder  *Builder
	registry sync.Map
}

// entry tracks the build result of one file version.
type entry struct {
	once sync.Once
	decl *Declaration
	err  error
}

// NewCache returns a Cache building declarations with b.
func NewCache(b *Builder) *Cache {
	return &Cache{builder: b}
}

// Load reads the file at path and returns its declaration.
func (c *Cache) Load(ctx context.Context, path string) (*Declaration, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, lang.ErrReadInput.Wrap(err).With(slog.String("file", path))
	}
	defer f.Close()

	ra := readahead.NewReader(f)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, lang.ErrReadInput.Wrap(err).With(slog.String("file", path))
	}

	return c.LoadString(ctx, path, string(data))
}

// LoadString returns the declaration of text as read from path.
func (c *Cache) LoadString(ctx context.Context, path, text string) (*Declaration, error) {
	hash := xxh3.HashString(path + "\x00" + text)
	key := strconv.FormatUint(hash, 36)

	value, hit := c.registry.LoadOrStore(key, new(entry))

	e, ok := value.(*entry)
	if !ok {
		return nil, lang.NewError("invalid cache entry").
			With(slog.String("key", key))
	}

	c.builder.logger.TraceContext(ctx, "declaration cache lookup",
		slog.String("file", path),
		slog.String("content_hash", strconv.FormatUint(hash, 16)),
		slog.Bool("cache_hit", hit),
	)

	e.once.Do(func() {
		e.decl, e.err = c.builder.BuildString(ctx, path, text)
	})

	return e.decl, e.err
}

// Len returns the number of cached file versions.
func (c *Cache) Len() int {
	n := 0

	c.registry.Range(func(any, any) bool {
		n++

		return true
	})

	return n
}

// Clear removes every cached declaration.
func (c *Cache) Clear() { c.registry.Clear() }
