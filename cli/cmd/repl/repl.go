package repl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/lrx/decl"
	"github.com/ardnew/lrx/lang"
	"github.com/ardnew/lrx/log"
)

// Messages sent by the edit command when the editor exits.
type (
	editDeclMsg      struct{ decl *decl.Declaration }
	editCancelledMsg struct{}
	editDeclinedMsg  struct{}
	editErrorMsg     struct{ err error }
)

const (
	evalPrompt = "➜ "
	ctrlPrompt = " :"

	// snippetName is the file name given to templates typed at the prompt.
	snippetName = "<repl>"

	defaultWidth = 80
	indent       = 2
)

const helpMessage = `
: Commands (press Esc to toggle mode):

  help       Print this help
  list       List the parts of the loaded file
  show PART  Print the declaration and tree of a part
  check      Check the widget calls of the loaded file
  edit       Edit the loaded file in $EDITOR
  clear      Clear screen
  quit       Exit REPL

Eval mode:
  <yatt:btn label="ok"/>   print the tree of a template snippet
  &yatt:user:name;         print the path of an entity
  <!yatt:widget w x>       print a declaration

Keys:
  Tab / Shift-Tab          cycle completion candidates (Space accepts)
  Up / Down                history (switches mode with the entry)
  Shift-Up / Shift-Down    history of the current mode
  Alt-Up / Alt-Down        command history
  Ctrl-C on empty line, Ctrl-D  exit`

// inputMode selects how a submitted line is interpreted.
type inputMode int

const (
	modeEval inputMode = iota
	modeCtrl
)

func (i inputMode) prompt() string {
	if i == modeCtrl {
		return ctrlPromptStyle.Render(ctrlPrompt)
	}

	return promptStyle.Render(evalPrompt)
}

var (
	promptStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	ctrlPromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	selectedStyle   = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
)

// echo renders a submitted line after its prompt.
func echo(mode inputMode, input string) tea.Cmd {
	return tea.Println(mode.prompt() + inputStyle.Render(input))
}

func printError(err error) tea.Cmd {
	return tea.Println(errorStyle.Render("error: " + err.Error()))
}

// savedInput is the text and cursor of an input line set aside.
type savedInput struct {
	text   string
	cursor int
}

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc func() context.Context
	input   textinput.Model
	decl    *decl.Declaration
	builder *decl.Builder
	logger  log.Logger

	history    *History
	historyIdx int // history.Len() when not browsing

	matches    fuzzy.Matches
	candidates []string
	wordStart  int
	wordEnd    int
	suggIdx    int
	tabActive  bool
	preTab     savedInput

	// Alt navigation restores the mode and line it started from.
	altNavActive bool
	altNavMode   inputMode
	altNavSaved  savedInput

	width    int
	quitting bool
	mode     inputMode
	evalText string
	ctrlText string
	saved    [2]int // cursor per mode
}

// Run starts the REPL over the declaration d. Snippets typed at the prompt
// are built with b. History is kept under cacheDir.
func Run(
	ctx context.Context,
	b *decl.Builder,
	d *decl.Declaration,
	cacheDir string,
	logger log.Logger,
) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	if d == nil || b == nil {
		return ErrNoSource
	}

	logger.TraceContext(ctx, "repl start",
		slog.String("path", d.Path),
		slog.Int("part_count", len(d.Order)),
		slog.String("cache_dir", cacheDir),
	)

	// Unresolved calls are reported but do not prevent browsing the file.
	if err := d.Check(ctx); err != nil {
		fmt.Println(errorStyle.Render("warning: " + err.Error()))
	}

	history := NewHistory(filepath.Join(cacheDir, baseHistory))
	if err := history.Load(); err != nil {
		logger.WarnContext(ctx, "history not loaded", slog.Any("error", err))
	}

	p := tea.NewProgram(newModel(ctx, b, d, history, logger), tea.WithContext(ctx))
	_, err = p.Run()

	return err
}

func newModel(
	ctx context.Context,
	b *decl.Builder,
	d *decl.Declaration,
	history *History,
	logger log.Logger,
) model {
	ti := textinput.New()
	ti.Prompt = modeEval.prompt()
	ti.Focus()
	ti.CharLimit = 1024
	ti.Width = defaultWidth

	return model{
		ctxFunc:    func() context.Context { return ctx },
		input:      ti,
		decl:       d,
		builder:    b,
		logger:     logger,
		history:    history,
		historyIdx: history.Len(),
		suggIdx:    -1,
		width:      defaultWidth,
		mode:       modeEval,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - len(evalPrompt) - 2

		return m, nil

	case editDeclMsg:
		m.decl = msg.decl
		m.logger.TraceContext(m.ctxFunc(), "repl edit complete",
			slog.Int("part_count", len(m.decl.Order)),
		)

		return m, tea.Println(resultStyle.Render("✔ declaration rebuilt"))

	case editCancelledMsg:
		return m, tea.Println(hintStyle.Render("🗴 edit cancelled"))

	case editDeclinedMsg:
		m.quitting = true

		return m, tea.Quit

	case editErrorMsg:
		return m, printError(msg.err)
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	return m.input.View() + "\n" + m.hintLine() + "\n"
}

// hintLine is the line under the prompt: the history position, a usage
// hint, the signature of the widget being called or completion candidates.
func (m model) hintLine() string {
	input := m.input.Value()

	if m.historyIdx < m.history.Len() {
		pos := lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx + 1))

		return hintStyle.Render(fmt.Sprintf("%s/%d", pos, m.history.Len()))
	}

	if strings.TrimSpace(input) == "" {
		if m.mode == modeCtrl {
			return hintStyle.Render("Type: " + strings.Join(ctrlCommands, ", ") + " (press Esc to return)")
		}

		return hintStyle.Render("Type a template or entity, or press Esc for commands")
	}

	if m.mode == modeEval {
		call := detectElementCall(input, m.input.Position(), m.builder.Parser().IsNamespace)
		if call.inTag {
			if sig, params := getSignature(m.decl, call.name); sig != "" {
				return renderSignatureHint(sig, params, call.argIndex(params))
			}
		}
	}

	return renderCandidateBar(m.matches, m.suggIdx, m.tabActive, m.width)
}

func (m model) executeInput() (model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	if input == "" {
		return m, nil
	}

	m.evalText, m.ctrlText = "", ""
	m.saved = [2]int{}
	m.input.SetValue("")

	_, _ = m.history.WriteWithMode(input, m.mode)
	m.historyIdx = m.history.Len()

	m.logger.TraceContext(m.ctxFunc(), "repl input",
		slog.String("input", input),
		slog.Int("mode", int(m.mode)),
	)

	if m.mode == modeCtrl {
		return m.executeCommand(input)
	}

	result, err := m.eval(input)
	if err != nil {
		return m, tea.Sequence(echo(modeEval, input), printError(err))
	}

	return m, tea.Sequence(
		echo(modeEval, input),
		tea.Println(resultStyle.Render(strings.TrimRight(result, "\n"))),
	)
}

// eval renders input. Entities print their path; declarations print their
// parts; any other template prints the tree of its implicit part.
func (m model) eval(input string) (string, error) {
	ctx := m.ctxFunc()

	if strings.HasPrefix(input, "&") {
		ent, err := m.builder.Parser().ParseEntityRef(ctx, input)
		if err != nil {
			return "", err
		}

		return lang.FormatPath(ent.Path), nil
	}

	d, err := m.builder.BuildString(ctx, snippetName, input)
	if err != nil {
		return "", err
	}

	var buf strings.Builder

	if strings.HasPrefix(input, "<!") {
		err = d.Format(ctx, &buf, indent)

		return buf.String(), err
	}

	w, ok := d.Widget("")
	if !ok {
		return "", ErrNoImplicitPart
	}

	tree, err := w.Tree()
	if err != nil {
		return "", err
	}

	err = tree.Format(ctx, &buf, indent)

	return buf.String(), err
}

func (m model) executeCommand(input string) (model, tea.Cmd) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return m, nil
	}

	name, args := fields[0], fields[1:]
	echoCmd := echo(modeCtrl, input)

	switch name {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Sequence(echoCmd, tea.Quit)

	case "h", "help":
		return m, tea.Sequence(echoCmd, tea.Println(helpMessage))

	case "l", "list":
		return m, tea.Sequence(echoCmd, tea.Println(m.listParts()))

	case "s", "show":
		out, err := m.showPart(strings.Join(args, " "))
		if err != nil {
			return m, tea.Sequence(echoCmd, printError(err))
		}

		return m, tea.Sequence(echoCmd, tea.Println(out))

	case "k", "check":
		return m, tea.Sequence(echoCmd, tea.Println(m.checkDecl()))

	case "c", "clear":
		return m, tea.ClearScreen

	case "e", "edit":
		return m, tea.Sequence(echoCmd, m.editCmd())
	}

	return m, tea.Println(errorStyle.Render("Unknown command: " + name + " (try 'help')"))
}

func (m model) editCmd() tea.Cmd {
	cmd := &editDeclCommand{
		decl:    m.decl,
		builder: m.builder,
		ctxFunc: m.ctxFunc,
		logger:  m.logger,
	}

	return tea.Exec(cmd, func(err error) tea.Msg {
		switch {
		case errors.Is(err, ErrEditDeclined):
			return editDeclinedMsg{}
		case err != nil:
			return editErrorMsg{err: err}
		case cmd.newDecl == nil:
			return editCancelledMsg{}
		}

		return editDeclMsg{decl: cmd.newDecl}
	})
}

func (m model) listParts() string {
	var b strings.Builder

	for p := range m.decl.Parts() {
		fmt.Fprintf(&b, "  %-7s %s %s\n",
			p.Kind, p.DisplayName(), hintStyle.Render(formatPreview(p)))
	}

	return b.String()
}

// checkDecl checks the widget calls of the loaded file and renders the first
// failure with its source line.
func (m model) checkDecl() string {
	err := m.decl.Check(m.ctxFunc())
	if err == nil {
		return resultStyle.Render("✔ " + m.decl.Path)
	}

	d, ok := lang.AsDiagnostic(err)
	if !ok || d.Filename != m.decl.Path {
		return errorStyle.Render("🗴 " + err.Error())
	}

	msg := fmt.Sprintf("🗴 %s:%d:%d: %s", d.Filename, d.Line, d.Column, d.Message)
	snippet := strings.TrimRight(lang.Snippet(m.decl.File().Source.Text, d), "\n")

	return errorStyle.Render(msg) + "\n" + hintStyle.Render(snippet)
}

// showPart prints the declaration of the part named name followed by its
// tree. "(default)" names the unnamed widget.
func (m model) showPart(name string) (string, error) {
	p, ok := lookupPart(m.decl, name)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownPart, name)
	}

	var b strings.Builder

	if err := m.decl.FormatParts(&b, []*decl.Part{p}, indent); err != nil {
		return "", err
	}

	tree, err := p.Tree()
	if err != nil {
		return "", err
	}

	if err := tree.Format(m.ctxFunc(), &b, indent); err != nil {
		return "", err
	}

	return strings.TrimRight(b.String(), "\n"), nil
}

func lookupPart(d *decl.Declaration, name string) (*decl.Part, bool) {
	if name == "(default)" {
		name = ""
	}

	for _, c := range []decl.Category{
		decl.CategoryWidget, decl.CategoryAction, decl.CategoryEntity,
	} {
		if p, ok := d.Part(c, name); ok {
			return p, true
		}
	}

	return nil, false
}
