package cmd

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/ardnew/lrx/decl"
	"github.com/ardnew/lrx/lang"
	"github.com/ardnew/lrx/log"
)

// contextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// Setup is the front end configuration shared by every command.
type Setup struct {
	// Options configure the template parser.
	Options []lang.Option
	// Roots are extra directories searched for widgets of other files.
	Roots []string
	// Logger receives parser and builder records.
	Logger log.Logger
	// Stdout and Stderr default to the process streams.
	Stdout, Stderr io.Writer
}

type setupKey struct{}

// WithSetup returns a new context.Context carrying s.
func WithSetup(ctx context.Context, s Setup) context.Context {
	return context.WithValue(ctx, setupKey{}, s)
}

func setupFrom(ctx context.Context) Setup {
	s, _ := ctx.Value(setupKey{}).(Setup)

	if s.Stdout == nil {
		s.Stdout = os.Stdout
	}

	if s.Stderr == nil {
		s.Stderr = os.Stderr
	}

	return s
}

// Builder returns a declaration builder for s. Widgets of other files are
// resolved through a cache shared by every declaration the builder makes.
func (s Setup) Builder() *decl.Builder {
	opts := append([]lang.Option{lang.WithLogger(s.Logger)}, s.Options...)
	parser := lang.New(opts...)

	loader := decl.New(decl.WithParser(parser), decl.WithLogger(s.Logger))
	cache := decl.NewCache(loader)

	return decl.New(
		decl.WithParser(parser),
		decl.WithLogger(s.Logger),
		decl.WithResolver(decl.NewFileResolver(cache, s.Roots...)),
	)
}

// stdinSource names standard input on the command line.
const stdinSource = "-"

// load builds the declaration of one source file, or of standard input.
func load(ctx context.Context, b *decl.Builder, source string) (*decl.Declaration, error) {
	if source == stdinSource {
		return b.BuildReader(ctx, "<stdin>", os.Stdin)
	}

	file, err := os.Open(source)
	if err != nil {
		return nil, lang.ErrReadInput.Wrap(err).With(slog.String("file", source))
	}
	defer file.Close()

	return b.BuildReader(ctx, source, file)
}

// fileKey uniquely identifies a file by its device and inode numbers, so a
// file named twice through links or relative paths is visited once.
type fileKey struct {
	dev uint64
	ino uint64
}

func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true
}

// expandSources returns the template files named by sources in order.
// Directories are walked for files with ext. Duplicates are dropped.
func expandSources(sources []string, ext string) ([]string, error) {
	var files []string

	seen := make(map[fileKey]struct{})

	add := func(path string, info os.FileInfo) {
		if key, ok := makeFileKey(info); ok {
			if _, dup := seen[key]; dup {
				return
			}

			seen[key] = struct{}{}
		}

		files = append(files, path)
	}

	for _, src := range sources {
		info, err := os.Stat(src)
		if err != nil {
			return nil, lang.ErrReadInput.Wrap(err)
		}

		if !info.IsDir() {
			add(src, info)

			continue
		}

		err = filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ext) {
				return nil
			}

			info, err := d.Info()
			if err != nil {
				return err
			}

			add(path, info)

			return nil
		})
		if err != nil {
			return nil, lang.ErrReadInput.Wrap(err)
		}
	}

	return files, nil
}
