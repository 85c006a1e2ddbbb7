package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ardnew/lrx/decl"
	"github.com/ardnew/lrx/lang"
	"github.com/ardnew/lrx/log"
)

const defaultEditor = "vi"

// editDeclCommand implements [tea.ExecCommand] for the edit-build-retry loop.
// It writes the source of the current declaration to a temp file, opens the
// user's editor, and rebuilds the result under the original file name. On a
// build error the user is prompted to re-edit; declining exits the program.
type editDeclCommand struct {
	decl    *decl.Declaration
	builder *decl.Builder
	ctxFunc func() context.Context
	newDecl *decl.Declaration
	logger  log.Logger
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

// SetStdin sets the stdin reader for the command.
func (c *editDeclCommand) SetStdin(r io.Reader) { c.stdin = r }

// SetStdout sets the stdout writer for the command.
func (c *editDeclCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr sets the stderr writer for the command.
func (c *editDeclCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run executes the edit-build-retry loop. If the user declines to re-edit,
// it returns [ErrEditDeclined].
func (c *editDeclCommand) Run() error {
	ctx := c.ctxFunc()

	content := c.decl.File().Source.Text

	ext := filepath.Ext(c.decl.Path)
	if ext == "" {
		ext = decl.DefaultExt
	}

	f, err := os.CreateTemp(os.TempDir(), "lrx-repl-*"+ext)
	if err != nil {
		return err
	}

	tmpPath := f.Name()

	defer os.Remove(tmpPath)

	if err := f.Chmod(0o600); err != nil {
		f.Close()

		return err
	}

	f.Close()

	for {
		if err := os.WriteFile(tmpPath, []byte(content), 0o600); err != nil {
			return err
		}

		data, err := runEditor(ctx, c.stdin, c.stdout, c.stderr, tmpPath)
		if err != nil {
			return err
		}

		if len(strings.TrimSpace(string(data))) == 0 {
			return nil
		}

		// Build under the original name so base directories still resolve.
		d, buildErr := c.builder.BuildString(ctx, c.decl.Path, string(data))
		c.logger.TraceContext(
			ctx,
			"editor build attempt",
			slog.Int("content_length", len(data)),
			slog.Bool("success", buildErr == nil),
		)

		if buildErr == nil {
			c.newDecl = d

			return nil
		}

		fmt.Fprintf(c.stderr, "\n%s\n", describeBuildError(buildErr, string(data)))
		fmt.Fprintf(c.stdout, "Re-edit? [Y/n] ")

		scanner := bufio.NewScanner(c.stdin)
		if !scanner.Scan() {
			return ErrEditDeclined
		}

		response := strings.TrimSpace(strings.ToLower(scanner.Text()))
		if response == "n" || response == "no" {
			return ErrEditDeclined
		}

		content = string(data)
	}
}

// describeBuildError renders err with the line of text it points at.
func describeBuildError(err error, text string) string {
	d, ok := lang.AsDiagnostic(err)
	if !ok {
		return "Build error: " + err.Error()
	}

	return fmt.Sprintf("Build error at line %d, column %d: %s\n%s",
		d.Line, d.Column, d.Message, lang.Snippet(text, d))
}

// editorCommand returns the argv of the user's editor: $VISUAL, then
// $EDITOR, then vi. The variable may carry arguments, as in "code -w".
func editorCommand() []string {
	for _, env := range []string{"VISUAL", "EDITOR"} {
		if argv := strings.Fields(os.Getenv(env)); len(argv) > 0 {
			return argv
		}
	}

	return []string{defaultEditor}
}

// runEditor launches the user's editor on path and returns the edited
// content.
func runEditor(
	ctx context.Context,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
	path string,
) ([]byte, error) {
	argv := append(editorCommand(), path)

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		return nil, err
	}

	return os.ReadFile(path)
}
