package repl

import (
	"log/slog"
	"os"
	"os/exec"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

const defaultEditor = "vi"

// editorCommand returns the command that opens path in the user's editor.
// $EDITOR may carry arguments, such as "code --wait".
func editorCommand(path string) *exec.Cmd {
	args := strings.Fields(os.Getenv("EDITOR"))
	if len(args) == 0 {
		args = []string{defaultEditor}
	}

	return exec.Command(args[0], append(args[1:], path)...) //nolint:gosec
}

// edit suspends the program while the source file is open in the editor,
// then reloads it. A file that no longer parses leaves the current table in
// place, so the user can fix it and :reload.
func (m model) edit() tea.Cmd {
	c := editorCommand(m.source)

	m.logger.TraceContext(m.ctxFunc(), "repl edit",
		slog.String("editor", c.Path),
		slog.String("source", m.source),
	)

	return tea.ExecProcess(c, func(err error) tea.Msg {
		if err != nil {
			return editErrorMsg{err: err}
		}

		return reloadMsg{}
	})
}
