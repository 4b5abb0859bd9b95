// Copyright 2026 Phillip Cloud
// Licensed under the Apache License, Version 2.0

// Package applog is the in-process diagnostic log the TUI's log panel
// reads from (ambient addition, SPEC_FULL.md §6): a capped ring buffer
// of entries plus a live Perl-compatible regex filter over them.
// Grounded on the teacher's internal/app logState.
package applog

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dlclark/regexp2"
	"github.com/dlclark/regexp2/syntax"
)

// Level orders log entries by severity, most urgent first.
type Level int

const (
	LevelError Level = iota
	LevelInfo
	LevelDebug
)

func (l Level) String() string {
	switch l {
	case LevelError:
		return "ERROR"
	case LevelDebug:
		return "DEBUG"
	default:
		return "INFO"
	}
}

// Entry is one recorded log line.
type Entry struct {
	Time    time.Time
	Level   Level
	Message string
}

// State holds the log panel's ring buffer, verbosity gate, and filter
// input. The zero value is disabled; use New to enable it.
type State struct {
	enabled    bool
	focus      bool
	verbosity  int
	maxLevel   Level
	maxEntries int
	input      textinput.Model
	filter     *regexp2.Regexp
	filterErr  error
	entries    []Entry
}

// New returns a log state at the given verbosity. verbosity <= 0
// disables logging entirely (Append becomes a no-op); 1 admits
// info/error; 2 or more admits debug as well.
func New(verbosity int) State {
	if verbosity <= 0 {
		return State{}
	}
	input := textinput.New()
	input.Prompt = ""
	input.Placeholder = "type a Perl-compatible regex"
	input.CharLimit = 256
	input.Width = 32

	maxLevel := LevelInfo
	if verbosity >= 2 {
		maxLevel = LevelDebug
	}
	return State{
		enabled:    true,
		verbosity:  verbosity,
		maxLevel:   maxLevel,
		maxEntries: 500,
		input:      input,
	}
}

// Enabled reports whether this state accepts any log entries.
func (l *State) Enabled() bool { return l.enabled }

// SetFilter compiles pattern as the live entry filter. An empty
// pattern clears the filter (everything matches); an invalid pattern
// leaves filterErr set and Matches reporting everything as matching,
// so a typo in the filter box never hides the log entirely.
func (l *State) SetFilter(pattern string) {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		l.filter = nil
		l.filterErr = nil
		return
	}
	re, err := regexp2.Compile(pattern, 0)
	if err != nil {
		l.filterErr = err
		l.filter = nil
		return
	}
	l.filter = re
	l.filterErr = nil
}

// Append records a message at level, dropping it if logging is
// disabled, the level exceeds the configured verbosity, or the
// message is blank after trimming. Oldest entries are evicted once
// maxEntries is exceeded.
func (l *State) Append(level Level, format string, args ...any) {
	if !l.enabled || level > l.maxLevel {
		return
	}
	message := strings.TrimSpace(fmt.Sprintf(format, args...))
	if message == "" {
		return
	}
	l.entries = append(l.entries, Entry{
		Time:    time.Now(),
		Level:   level,
		Message: message,
	})
	if len(l.entries) > l.maxEntries {
		l.entries = l.entries[len(l.entries)-l.maxEntries:]
	}
}

// Entries returns every retained entry that currently matches the
// live filter, oldest first.
func (l *State) Entries() []Entry {
	if len(l.entries) == 0 {
		return nil
	}
	out := make([]Entry, 0, len(l.entries))
	for _, e := range l.entries {
		if l.matches(e.Message) {
			out = append(out, e)
		}
	}
	return out
}

func (l *State) matches(line string) bool {
	if l.filterErr != nil || l.filter == nil {
		return true
	}
	ok, err := l.filter.MatchString(line)
	if err != nil {
		return false
	}
	return ok
}

// ValidityLabel describes the current filter input's state, for
// rendering next to the filter box.
func (l *State) ValidityLabel() string {
	if l.filterErr != nil {
		if parseErr, ok := l.filterErr.(*syntax.Error); ok {
			return fmt.Sprintf("invalid: %s", parseErr.Code.String())
		}
		message := l.filterErr.Error()
		message = strings.TrimPrefix(message, "error parsing regexp: ")
		message = strings.TrimPrefix(message, "error parsing regex: ")
		return fmt.Sprintf("invalid: %s", message)
	}
	if strings.TrimSpace(l.input.Value()) == "" {
		return "no filter"
	}
	return "valid"
}

// Focus gives keyboard focus to the filter input.
func (l *State) Focus() tea.Cmd {
	l.focus = true
	return l.input.Focus()
}

// Blur removes keyboard focus from the filter input.
func (l *State) Blur() {
	l.focus = false
	l.input.Blur()
}

// Focused reports whether the filter input currently has focus.
func (l *State) Focused() bool { return l.focus }

// Update feeds a bubbletea message to the filter input and
// recompiles the filter if the input's value changed.
func (l *State) Update(msg tea.Msg) tea.Cmd {
	if !l.enabled || !l.focus {
		return nil
	}
	before := l.input.Value()
	var cmd tea.Cmd
	l.input, cmd = l.input.Update(msg)
	if l.input.Value() != before {
		l.SetFilter(l.input.Value())
	}
	return cmd
}
