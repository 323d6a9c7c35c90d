package repl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/non/lang"
	"github.com/ardnew/non/log"
)

const (
	prompt     = "➜ "
	ctrlPrefix = ":"
)

func helpMessage() string {
	return `
Input:
  id           Print the record, fully resolved
  id.field     Print the value of one field

Commands:
  :help        Print this message
  :list        List records with their parents
  :where EXPR  List records matching an expression over id, parents, fields
  :reload      Re-read the source file
  :edit        Open the source file in $EDITOR, then reload
  :clear       Clear screen
  :quit        Exit REPL

Keys:
  Completions appear automatically as you type
  Press Tab / Shift-Tab to cycle through candidates, Esc to cancel
  Use Up/Down arrows for history navigation
  Press Ctrl+C on empty line or Ctrl+D to exit
`
}

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	selectedStyle   = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
)

// formatCommand formats the echo line with prompt and input styled.
func formatCommand(input string) string {
	return promptStyle.Render(prompt) + inputStyle.Render(input)
}

func formatError(err error) string {
	return errorStyle.Render("error: " + err.Error())
}

// reloadMsg asks the model to re-read its source file.
type reloadMsg struct{}

// editErrorMsg is sent when the external editor fails.
type editErrorMsg struct{ err error }

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc      func() context.Context
	input        textinput.Model
	source       string
	table        *lang.Table
	logger       log.Logger
	history      *History
	historyIdx   int
	matches      fuzzy.Matches // current fuzzy match results
	wordStart    int           // byte offset of current word start
	wordEnd      int           // byte offset of current word end
	suggIdx      int           // selected candidate index
	tabActive    bool          // whether user is tab-cycling
	preTabText   string        // input text before tab-cycling began
	preTabCursor int           // cursor position before tab-cycling began
	width        int           // terminal width for ellipsization
	quitting     bool
}

// Run starts the REPL on the source file at path. History is kept in
// cacheDir.
func Run(
	ctx context.Context,
	path string,
	cacheDir string,
	logger log.Logger,
) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	logger.TraceContext(ctx, "repl start",
		slog.String("source", path),
		slog.String("cache_dir", cacheDir),
	)

	if path == "" || path == "-" {
		return ErrNoSource
	}

	table, err := load(ctx, path, logger)
	if err != nil {
		return err
	}

	history := NewHistory(filepath.Join(cacheDir, baseHistory))
	if err := history.Load(); err != nil {
		logger.WarnContext(ctx, "history not loaded", slog.Any("error", err))
	}

	logger.TraceContext(ctx, "repl history loaded",
		slog.Int("entry_count", history.Len()),
	)

	m := newModel(ctx, path, table, history, logger)

	_, err = tea.NewProgram(m, tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}

	return err
}

// load parses the source file at path.
func load(ctx context.Context, path string, logger log.Logger) (*lang.Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	table, err := lang.ParseReader(ctx, file, lang.WithLogger(logger))
	if err != nil {
		return nil, lang.WrapError(err).With(slog.String("path", path))
	}

	logger.TraceContext(ctx, "repl table loaded",
		slog.Int("record_count", table.Len()),
	)

	return table, nil
}

const defaultWidth = 80

func newModel(
	ctx context.Context,
	source string,
	table *lang.Table,
	history *History,
	logger log.Logger,
) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(prompt)
	ti.Focus()
	ti.CharLimit = 1024
	ti.Width = defaultWidth

	return model{
		ctxFunc:    func() context.Context { return ctx },
		input:      ti,
		source:     source,
		table:      table,
		logger:     logger,
		history:    history,
		historyIdx: history.Len(),
		suggIdx:    -1,
		width:      defaultWidth,
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
		m.input.Width = msg.Width - len(prompt) - 2

		return m, nil

	case reloadMsg:
		return m.reload()

	case editErrorMsg:
		return m, tea.Println(formatError(msg.err))
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")

	switch {
	case m.historyIdx < m.history.Len():
		hint := fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx+1)),
			m.history.Len())
		b.WriteString(hintStyle.Render(hint))

	case strings.TrimSpace(m.input.Value()) == "":
		b.WriteString(hintStyle.Render(
			"Type a record id, id.field, or :help"))

	case len(m.matches) > 0:
		b.WriteString(renderCandidateBar(
			m.matches, m.suggIdx, m.tabActive, m.width))
	}

	b.WriteString("\n")

	return b.String()
}

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
		m.tabActive = false
		m.historyIdx = m.history.Len()
		refreshMatches(&m, false)

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		if !m.tabActive || len(m.matches) == 0 {
			return m.executeInput()
		}
		// Lock in the current tab candidate without executing.
		m.tabActive = false
		refreshMatches(&m, true)

		return m, nil

	case tea.KeyTab:
		return m.cycle(1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		return m.historyMove(-1), nil

	case tea.KeyDown:
		return m.historyMove(1), nil

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTabText)
			m.input.SetCursor(m.preTabCursor)
			refreshMatches(&m, false)
		}

		return m, nil

	case tea.KeyRunes, tea.KeySpace:
		// Space ends tab-cycling and keeps the current candidate.
		if msg.Type == tea.KeySpace {
			m.tabActive = false
		}

		var cmd tea.Cmd

		m.historyIdx = m.history.Len()
		m.input, cmd = m.input.Update(msg)
		refreshMatches(&m, true)

		return m, cmd
	}

	// For any other key (backspace, delete, arrows, etc.),
	// update input and recompute matches without auto-confirm.
	var cmd tea.Cmd

	m.tabActive = false
	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	refreshMatches(&m, false)

	return m, cmd
}

// cycle moves the tab selection by step, wrapping around. The first press
// selects the first (or last, for a negative step) candidate.
func (m model) cycle(step int) model {
	if len(m.matches) == 0 {
		return m
	}

	// Single candidate: complete and confirm immediately.
	if len(m.matches) == 1 {
		replaceCurrentWord(&m, m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return m
	}

	switch {
	case m.tabActive:
		m.suggIdx = (m.suggIdx + step + len(m.matches)) % len(m.matches)

	default:
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()

		m.suggIdx = 0
		if step < 0 {
			m.suggIdx = len(m.matches) - 1
		}
	}

	replaceCurrentWord(&m, m.matches[m.suggIdx].Str)

	return m
}

// replaceCurrentWord replaces the current word in the input with the given
// text and moves the cursor to its end.
func replaceCurrentWord(m *model, replacement string) {
	input := m.input.Value()
	newInput := input[:m.wordStart] + replacement + input[m.wordEnd:]
	newCursor := m.wordStart + len(replacement)

	m.input.SetValue(newInput)
	m.input.SetCursor(newCursor)

	m.wordEnd = newCursor
}

// refreshMatches recomputes fuzzy matches for the current input state.
// With autoConfirm, a sole candidate that the typed word already equals is
// accepted. Deletions and cursor movement pass false so editing never
// completes unexpectedly.
func refreshMatches(m *model, autoConfirm bool) {
	m.matches, m.wordStart, m.wordEnd = m.computeMatches()

	if !m.tabActive {
		m.suggIdx = -1
	}

	if !autoConfirm || len(m.matches) != 1 {
		return
	}

	candidate := m.matches[0].Str
	if m.input.Value()[m.wordStart:m.wordEnd] == candidate {
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil
	}
}

func (m model) executeInput() (model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	if input == "" {
		return m, nil
	}

	m.input.SetValue("")
	m.matches = nil

	if _, err := m.history.Write(input); err != nil {
		m.logger.DebugContext(m.ctxFunc(), "history not saved",
			slog.Any("error", err))
	}

	m.historyIdx = m.history.Len()

	echo := tea.Println(formatCommand(input))

	if line, ok := strings.CutPrefix(input, ctrlPrefix); ok {
		m, cmd := m.executeCommand(line)

		return m, tea.Sequence(echo, cmd)
	}

	m.logger.TraceContext(m.ctxFunc(), "repl eval", slog.String("input", input))

	out, err := m.eval(input)
	if err != nil {
		return m, tea.Sequence(echo, tea.Println(formatError(err)))
	}

	return m, tea.Sequence(echo, tea.Println(resultStyle.Render(out)))
}

// eval resolves "id" to the whole record or "id.field" to a single value.
func (m model) eval(input string) (string, error) {
	ctx := m.ctxFunc()

	if id, field, ok := strings.Cut(input, "."); ok {
		return m.table.Lookup(ctx, id, field)
	}

	res, err := m.table.Resolve(ctx, input)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	if err := lang.FormatResolved(&b, res); err != nil {
		return "", err
	}

	return strings.TrimSuffix(b.String(), "\n"), nil
}

func (m model) executeCommand(line string) (model, tea.Cmd) {
	name, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	m.logger.TraceContext(m.ctxFunc(), "repl command",
		slog.String("command", name),
		slog.String("arg", arg),
	)

	switch name {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Quit

	case "h", "help":
		return m, tea.Println(helpMessage())

	case "l", "list":
		return m, tea.Println(m.listRecords())

	case "w", "where":
		out, err := m.where(arg)
		if err != nil {
			return m, tea.Println(formatError(err))
		}

		return m, tea.Println(out)

	case "r", "reload":
		return m.reload()

	case "e", "edit":
		return m, m.edit()

	case "c", "clear":
		return m, tea.ClearScreen

	default:
		return m, tea.Println(
			errorStyle.Render("unknown command: " + name + " (try :help)"),
		)
	}
}

// listRecords renders one line per record: its id and its parents.
func (m model) listRecords() string {
	var b strings.Builder

	for id, rec := range m.table.All() {
		b.WriteString("  " + id)

		if len(rec.Parents) > 0 {
			b.WriteString(hintStyle.Render(": " + strings.Join(rec.Parents, " ")))
		}

		b.WriteString(hintStyle.Render(fmt.Sprintf(" (%d fields)", len(rec.Fields))))
		b.WriteString("\n")
	}

	return strings.TrimSuffix(b.String(), "\n")
}

// where lists the ids of records matching the filter expression.
func (m model) where(src string) (string, error) {
	if src == "" {
		return "", lang.ErrInvalidFilter.With(slog.String("filter", src))
	}

	f, err := lang.CompileFilter(src)
	if err != nil {
		return "", err
	}

	ids, err := m.table.Select(m.ctxFunc(), f)
	if err != nil {
		if len(ids) == 0 {
			return "", err
		}

		m.logger.DebugContext(m.ctxFunc(), "filter skipped records",
			slog.Any("error", err))
	}

	out := strings.Join(ids, "\n")
	if len(ids) == 0 {
		out = hintStyle.Render("no records matched")
	}

	return out, nil
}

// reload re-reads the source file. The current table is kept on failure.
func (m model) reload() (model, tea.Cmd) {
	table, err := load(m.ctxFunc(), m.source, m.logger)
	if err != nil {
		return m, tea.Println(formatError(err))
	}

	m.table = table

	return m, tea.Println(resultStyle.Render(
		fmt.Sprintf("reloaded %s: %d records", m.source, table.Len())))
}

// historyMove steps through history by step, clearing the input when
// moving past the newest entry.
func (m model) historyMove(step int) model {
	idx := m.historyIdx + step
	if idx < 0 {
		return m
	}

	if idx >= m.history.Len() {
		m.historyIdx = m.history.Len()
		m.input.SetValue("")
		refreshMatches(&m, false)

		return m
	}

	line, err := m.history.GetLine(idx)
	if err != nil {
		return m
	}

	m.historyIdx = idx
	m.input.SetValue(line)
	m.input.SetCursor(len(line))
	refreshMatches(&m, false)

	return m
}
