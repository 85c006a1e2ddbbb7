package repl

import (
	"bufio"
	"errors"
	"io/fs"
	"os"
	"slices"
	"strings"
	"sync"
)

const (
	baseHistory = "history.utf8"

	// maxHistory bounds the entries kept in memory and on disk.
	maxHistory = 1000
)

// HistoryEntry is one submitted line and the mode it was submitted in.
type HistoryEntry struct {
	Line string
	Mode inputMode
}

// historyTag is the line prefix that records the mode of an entry on disk.
var historyTag = map[inputMode]string{modeEval: "E:", modeCtrl: "C:"}

func (e HistoryEntry) encode() string { return historyTag[e.Mode] + e.Line + "\n" }

func decodeEntry(line string) HistoryEntry {
	for mode, tag := range historyTag {
		if s, ok := strings.CutPrefix(line, tag); ok {
			return HistoryEntry{Line: s, Mode: mode}
		}
	}

	// untagged lines predate mode tracking
	return HistoryEntry{Line: line, Mode: modeEval}
}

// History is the REPL input history, persisted under the cache directory.
// Each line occurs once per mode; submitting it again moves it to the end.
type History struct {
	mu      sync.RWMutex
	path    string
	entries []HistoryEntry
}

// NewHistory returns an empty History stored at path.
func NewHistory(path string) *History {
	return &History{path: path}
}

// Load replaces the entries with the contents of the history file. A missing
// file is an empty history.
func (h *History) Load() error {
	file, err := os.Open(h.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	if err != nil {
		return err
	}
	defer file.Close()

	var entries []HistoryEntry

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			entries = append(entries, decodeEntry(line))
		}
	}

	if len(entries) > maxHistory {
		entries = entries[len(entries)-maxHistory:]
	}

	h.mu.Lock()
	h.entries = entries
	h.mu.Unlock()

	return scanner.Err()
}

// Write records an eval mode line.
func (h *History) Write(line string) (int, error) {
	return h.WriteWithMode(line, modeEval)
}

// WriteWithMode records line as submitted in mode and returns the number of
// bytes written to the history file. Blank lines are ignored.
func (h *History) WriteWithMode(line string, mode inputMode) (int, error) {
	entry := HistoryEntry{Line: strings.TrimSpace(line), Mode: mode}
	if entry.Line == "" {
		return 0, nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if n := len(h.entries); n > 0 && h.entries[n-1] == entry {
		return 0, nil
	}

	i := slices.Index(h.entries, entry)
	if i >= 0 {
		h.entries = slices.Delete(h.entries, i, i+1)
	}

	h.entries = append(h.entries, entry)

	if i >= 0 || len(h.entries) > maxHistory {
		if len(h.entries) > maxHistory {
			h.entries = slices.Delete(h.entries, 0, len(h.entries)-maxHistory)
		}

		return h.save(os.O_TRUNC, h.entries...)
	}

	return h.save(os.O_APPEND, entry)
}

// save writes entries to the history file opened with flag. The caller
// holds h.mu.
func (h *History) save(flag int, entries ...HistoryEntry) (int, error) {
	file, err := os.OpenFile(h.path, os.O_WRONLY|os.O_CREATE|flag, 0o600)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	n := 0

	for _, e := range entries {
		m, err := w.WriteString(e.encode())
		n += m

		if err != nil {
			return n, err
		}
	}

	return n, w.Flush()
}

// GetLine returns the line of entry i, oldest first.
func (h *History) GetLine(i int) (string, error) {
	e, err := h.GetEntry(i)

	return e.Line, err
}

// GetEntry returns entry i, oldest first.
func (h *History) GetEntry(i int) (HistoryEntry, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if i < 0 || i >= len(h.entries) {
		return HistoryEntry{}, ErrOutOfBounds
	}

	return h.entries[i], nil
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.entries)
}

// Dump returns the lines of every entry, oldest first.
func (h *History) Dump() any {
	h.mu.RLock()
	defer h.mu.RUnlock()

	lines := make([]string, len(h.entries))
	for i, e := range h.entries {
		lines[i] = e.Line
	}

	return lines
}

// Entries returns a copy of every entry, oldest first.
func (h *History) Entries() []HistoryEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return slices.Clone(h.entries)
}
