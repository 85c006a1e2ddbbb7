package repl

import (
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
)

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(m.ctxFunc(), "repl keypress",
		slog.String("key", msg.String()),
	)

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.resetBrowsing()
		refreshMatches(&m, false)

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		if m.tabActive && len(m.matches) > 0 {
			// Enter locks in the candidate without submitting.
			m.tabActive, m.altNavActive = false, false
			refreshMatches(&m, true)

			return m, nil
		}

		m.altNavActive = false

		return m.executeInput()

	case tea.KeyTab:
		return m.cycle(1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		if msg.Alt {
			return m.recallCtrl(-1), nil
		}

		return m.recall(-1, nil), nil

	case tea.KeyDown:
		if msg.Alt {
			return m.recallCtrl(1), nil
		}

		return m.recall(1, nil), nil

	case tea.KeyShiftUp:
		return m.recall(-1, m.inMode(m.mode)), nil

	case tea.KeyShiftDown:
		return m.recall(1, m.inMode(m.mode)), nil

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.restore(m.preTab)
			refreshMatches(&m, false)

			return m, nil
		}

		m.altNavActive = false

		return m.toggleMode()
	}

	autoConfirm := msg.Type == tea.KeyRunes

	if autoConfirm && m.tabActive && msg.String() == " " {
		m.tabActive = false
	}

	if !autoConfirm {
		m.tabActive, m.altNavActive = false, false
	}

	var cmd tea.Cmd

	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	refreshMatches(&m, autoConfirm)

	return m, cmd
}

func (m *model) resetBrowsing() {
	m.tabActive = false
	m.altNavActive = false
	m.historyIdx = m.history.Len()
}

func (m model) save() savedInput {
	return savedInput{text: m.input.Value(), cursor: m.input.Position()}
}

func (m *model) restore(s savedInput) {
	m.input.SetValue(s.text)
	m.input.SetCursor(s.cursor)
}

// cycle moves the completion selection by step, starting at the first
// candidate (or the last when step is negative). A sole candidate is
// completed at once.
func (m model) cycle(step int) model {
	n := len(m.matches)

	switch {
	case n == 0:
		return m

	case n == 1:
		replaceCurrentWord(&m, m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return m

	case m.tabActive:
		m.suggIdx = (m.suggIdx + step + n) % n

	default:
		m.tabActive = true
		m.preTab = m.save()
		m.suggIdx = 0

		if step < 0 {
			m.suggIdx = n - 1
		}
	}

	replaceCurrentWord(&m, m.matches[m.suggIdx].Str)

	return m
}

// replaceCurrentWord replaces the word under the cursor with replacement and
// moves the cursor after it.
func replaceCurrentWord(m *model, replacement string) {
	input := m.input.Value()
	cursor := m.wordStart + len(replacement)

	m.input.SetValue(input[:m.wordStart] + replacement + input[m.wordEnd:])
	m.input.SetCursor(cursor)

	m.wordEnd = cursor
}

// refreshMatches recomputes the completion candidates. With autoConfirm, a
// word that already equals its sole candidate is accepted; deletions and
// cursor movement pass false so editing never completes unexpectedly.
func refreshMatches(m *model, autoConfirm bool) {
	m.matches, m.candidates, m.wordStart, m.wordEnd = m.computeMatches()

	if !m.tabActive {
		m.suggIdx = -1
	}

	if !autoConfirm || len(m.matches) != 1 {
		return
	}

	if candidate := m.matches[0].Str; m.input.Value()[m.wordStart:m.wordEnd] == candidate {
		replaceCurrentWord(m, candidate)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil
	}
}

func (m model) inMode(mode inputMode) func(HistoryEntry) bool {
	return func(e HistoryEntry) bool { return e.Mode == mode }
}

// recall moves through history by step to the nearest entry accepted by
// match (any entry when match is nil), switching to the entry's mode. Moving
// past the newest entry clears the input.
func (m model) recall(step int, match func(HistoryEntry) bool) model {
	for i := m.historyIdx + step; i >= 0 && i < m.history.Len(); i += step {
		e, err := m.history.GetEntry(i)
		if err != nil || (match != nil && !match(e)) {
			continue
		}

		m.historyIdx = i

		if m.mode != e.Mode {
			m, _ = m.switchToMode(e.Mode)
		}

		m.restore(savedInput{text: e.Line, cursor: len(e.Line)})
		refreshMatches(&m, false)

		return m
	}

	if step > 0 && m.historyIdx < m.history.Len() {
		m.historyIdx = m.history.Len()
		m.input.SetValue("")
		refreshMatches(&m, false)
	}

	return m
}

// recallCtrl browses command history from either mode. Running off either
// end returns to the mode and line the browsing started from.
func (m model) recallCtrl(step int) model {
	if !m.altNavActive {
		m.altNavActive = true
		m.altNavMode = m.mode
		m.altNavSaved = m.save()

		if m.mode != modeCtrl {
			m, _ = m.switchToMode(modeCtrl)
		}
	}

	from := m.historyIdx
	m = m.recall(step, m.inMode(modeCtrl))

	if m.historyIdx != from && m.historyIdx < m.history.Len() {
		return m
	}

	m.altNavActive = false

	if m.mode != m.altNavMode {
		m, _ = m.switchToMode(m.altNavMode)
	}

	m.restore(m.altNavSaved)
	m.historyIdx = m.history.Len()
	refreshMatches(&m, false)

	return m
}

// toggleMode switches between eval and control modes.
func (m model) toggleMode() (model, tea.Cmd) {
	if m.mode == modeEval {
		return m.switchToMode(modeCtrl)
	}

	return m.switchToMode(modeEval)
}

// switchToMode sets the current line aside and restores the line last typed
// in mode.
func (m model) switchToMode(mode inputMode) (model, tea.Cmd) {
	text := m.input.Value()

	if m.mode == modeEval {
		m.evalText = text
	} else {
		m.ctrlText = text
	}

	m.saved[m.mode] = m.input.Position()

	m.mode = mode
	m.input.Prompt = mode.prompt()

	if mode == modeEval {
		m.input.SetValue(m.evalText)
	} else {
		m.input.SetValue(m.ctrlText)
	}

	m.input.SetCursor(m.saved[mode])
	refreshMatches(&m, false)

	return m, nil
}
