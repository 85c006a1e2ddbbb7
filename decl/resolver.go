package decl

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ardnew/lrx/lang"
)

// DefaultExt is the file extension of template sources.
const DefaultExt = ".yatt"

// Resolver finds widgets defined in other files. Path is the element path
// of the call, e.g. ["lib", "button"] for <ns:lib:button>. Resolve returns
// (nil, nil) when nothing is found.
type Resolver interface {
	Resolve(ctx context.Context, bases []string, path []string) (*Part, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, bases []string, path []string) (*Part, error)

// Resolve implements Resolver.
func (f ResolverFunc) Resolve(ctx context.Context, bases []string, path []string) (*Part, error) {
	return f(ctx, bases, path)
}

// FileResolver resolves [file] to the default widget of file.yatt and
// [file, name] to widget name of file.yatt, searching each base directory
// in order and then its own roots.
type FileResolver struct {
	cache *Cache
	roots []string
	ext   string
}

// NewFileResolver returns a FileResolver loading declarations through cache.
func NewFileResolver(cache *Cache, roots ...string) *FileResolver {
	return &FileResolver{cache: cache, roots: roots, ext: DefaultExt}
}

// Resolve implements Resolver.
func (r *FileResolver) Resolve(ctx context.Context, bases []string, path []string) (*Part, error) {
	if len(path) == 0 || len(path) > 2 {
		return nil, nil
	}

	name := ""
	if len(path) == 2 {
		name = path[1]
	}

	dirs := append(append([]string(nil), bases...), r.roots...)

	for _, dir := range dirs {
		file := filepath.Join(dir, path[0]+r.ext)

		if _, err := os.Stat(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}

			return nil, lang.ErrReadInput.Wrap(err).With(slog.String("file", file))
		}

		d, err := r.cache.Load(ctx, file)
		if err != nil {
			return nil, err
		}

		if w, ok := d.Widget(name); ok {
			return w, nil
		}
	}

	return nil, nil
}
