// Package tui renders interactive progress while the pipeline runs. Output
// goes to stderr so piped stdout stays clean for the script itself.
package tui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

type progressMsg struct {
	phase     string
	processed int
	total     int
}

type doneMsg struct {
	err error
}

type progressModel struct {
	spinner   spinner.Model
	title     string
	phase     string
	processed int
	total     int
	done      bool
	err       error
}

func newProgressModel(title string) progressModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle
	return progressModel{spinner: sp, title: title, phase: "Starting..."}
}

func (m progressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case progressMsg:
		m.phase = msg.phase
		m.processed = msg.processed
		m.total = msg.total
		return m, nil
	case doneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.done = true
			m.err = fmt.Errorf("interrupted")
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m progressModel) View() string {
	s := "\n" + titleStyle.Render("  "+m.title) + "\n\n"
	if m.done {
		if m.err != nil {
			return s + errorStyle.Render(fmt.Sprintf("  Error: %v", m.err)) + "\n"
		}
		return s + successStyle.Render("  ✓ Done") + "\n"
	}
	s += fmt.Sprintf("  %s %s\n", m.spinner.View(), m.phase)
	if m.total > 0 {
		s += fmt.Sprintf("  %d / %d\n", m.processed, m.total)
	}
	s += "\n" + dimStyle.Render("  Press ctrl+c to cancel") + "\n"
	return s
}

// RunWithProgress shows a spinner while run executes in the background. The
// callback handed to run is safe to call from that goroutine. The returned
// error is whatever run returned.
func RunWithProgress(title string, run func(onProgress func(phase string, processed, total int)) error) error {
	p := tea.NewProgram(newProgressModel(title), tea.WithOutput(os.Stderr))

	go func() {
		err := run(func(phase string, processed, total int) {
			p.Send(progressMsg{phase: phase, processed: processed, total: total})
		})
		p.Send(doneMsg{err: err})
	}()

	final, err := p.Run()
	if err != nil {
		return err
	}
	if m, ok := final.(progressModel); ok {
		return m.err
	}
	return nil
}
