package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"

	"github.com/ardnew/lrx/decl"
	"github.com/ardnew/lrx/lang"
	"github.com/ardnew/lrx/log"
)

// Check builds every source file and verifies the element calls in its
// widget bodies. Diagnostics are printed for each failing file.
type Check struct {
	Jobs  int    `default:"0" help:"Files checked concurrently (0 for one per CPU)." short:"j"`
	Where string `            help:"Check only widgets matching this expression."   short:"w"`
	Quiet bool   `            help:"Print nothing for files that pass."             short:"q"`

	Sources []string `arg:"" help:"Template files or directories." name:"sources" type:"path"`
}

// result is the outcome for one file, kept in input order.
type result struct {
	path string
	text string
	err  error
}

// Run executes the check command.
func (c *Check) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	s := setupFrom(ctx)

	files, err := expandSources(c.Sources, decl.DefaultExt)
	if err != nil {
		return err
	}

	if len(files) == 0 {
		return ErrNoSourceFile.With(slog.Any("sources", c.Sources))
	}

	var filter *decl.Filter

	if c.Where != "" {
		if filter, err = decl.CompileFilter(c.Where); err != nil {
			return err
		}
	}

	jobs := c.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	b := s.Builder()
	results := make([]result, len(files))

	var failed atomic.Int32

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for i, path := range files {
		g.Go(func() error {
			text, err := checkFile(gctx, b, path, filter)
			if err != nil {
				failed.Add(1)
			}

			results[i] = result{path: path, text: text, err: err}

			return gctx.Err()
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	r := newReport(s.Stdout)

	for _, res := range results {
		if res.err == nil {
			if !c.Quiet {
				r.pass(res.path)
			}

			continue
		}

		r.fail(res)
	}

	log.DebugContext(ctx, "check complete",
		slog.Int("files", len(files)),
		slog.Int("failed", int(failed.Load())),
		slog.Int("jobs", jobs),
	)

	if n := failed.Load(); n > 0 {
		return ErrCheckFailed.With(
			slog.Int("failed", int(n)),
			slog.Int("files", len(files)),
		)
	}

	return nil
}

// checkFile returns the source text of path along with the first error
// found in it. The text is empty if the file could not be built.
func checkFile(
	ctx context.Context,
	b *decl.Builder,
	path string,
	filter *decl.Filter,
) (string, error) {
	d, err := load(ctx, b, path)
	if err != nil {
		return "", err
	}

	text := d.File().Source.Text

	if filter == nil {
		return text, d.Check(ctx)
	}

	parts, err := d.Select(filter)
	if err != nil {
		return text, err
	}

	return text, d.CheckParts(ctx, parts)
}

// report renders check results. Styles come from a renderer bound to the
// output, so redirected output is plain text.
type report struct {
	w io.Writer

	ok, bad, loc, caret, dim lipgloss.Style
}

func newReport(w io.Writer) *report {
	r := lipgloss.NewRenderer(w)

	return &report{
		w:     w,
		ok:    r.NewStyle().Foreground(lipgloss.Color("2")),
		bad:   r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		loc:   r.NewStyle().Bold(true),
		caret: r.NewStyle().Foreground(lipgloss.Color("1")),
		dim:   r.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

func (r *report) pass(path string) {
	fmt.Fprintf(r.w, "%s %s\n", r.ok.Render("ok"), path)
}

func (r *report) fail(res result) {
	d, located := lang.AsDiagnostic(res.err)

	file := d.Filename
	if file == "" {
		file = res.path
	}

	where := file
	if located {
		where = fmt.Sprintf("%s:%d:%d", file, d.Line, d.Column)
	}

	class := "error"
	if d.Class != "" {
		class = d.Class + " error"
	}

	fmt.Fprintf(r.w, "%s %s: %s\n", r.bad.Render(class), r.loc.Render(where), d.Message)

	if !located {
		return
	}

	snippet := strings.TrimRight(lang.Snippet(sourceText(res, file), d), "\n")
	if snippet == "" {
		return
	}

	lines := strings.Split(snippet, "\n")
	for i, line := range lines {
		if i == len(lines)-1 {
			line = r.caret.Render(line)
		} else {
			line = r.dim.Render(line)
		}

		fmt.Fprintln(r.w, line)
	}
}

// sourceText returns the text of the file a diagnostic points into. The
// error may come from a widget resolved in another file.
func sourceText(res result, file string) string {
	if file == res.path && res.text != "" {
		return res.text
	}

	if file == res.path && res.path == stdinSource {
		return ""
	}

	b, err := os.ReadFile(file)
	if err != nil {
		return ""
	}

	return string(b)
}
