package tui

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// workDoneMsg carries the outcome of the blocking work shown under a spinner.
type workDoneMsg[T any] struct {
	value T
	err   error
}

// spinnerModel shows a spinner until its work function returns.
type spinnerModel[T any] struct {
	spinner spinner.Model
	message string
	work    func() (T, error)
	done    *workDoneMsg[T]
}

func newSpinnerModel[T any](message string, work func() (T, error)) spinnerModel[T] {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle
	return spinnerModel[T]{spinner: s, message: message, work: work}
}

// Init implements tea.Model.
func (m spinnerModel[T]) Init() tea.Cmd {
	work := m.work
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		value, err := work()
		return workDoneMsg[T]{value: value, err: err}
	})
}

// Update implements tea.Model.
func (m spinnerModel[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case workDoneMsg[T]:
		m.done = &msg
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m spinnerModel[T]) View() string {
	if m.done != nil {
		return ""
	}
	return m.spinner.View() + " " + m.message + "\n"
}

// RunWithSpinner runs work while a spinner is drawn on stderr.
// Outside interactive mode work is called directly with no output.
func RunWithSpinner[T any](mode Mode, message string, work func() (T, error)) (T, error) {
	if mode != ModeInteractive {
		return work()
	}
	return runSpinnerProgram(message, work, tea.WithInput(nil), tea.WithOutput(os.Stderr))
}

func runSpinnerProgram[T any](message string, work func() (T, error), opts ...tea.ProgramOption) (T, error) {
	var zero T

	final, err := tea.NewProgram(newSpinnerModel(message, work), opts...).Run()
	if err != nil {
		return zero, fmt.Errorf("spinner: %w", err)
	}

	m, ok := final.(spinnerModel[T])
	if !ok || m.done == nil {
		return zero, errors.New("spinner: stopped before work completed")
	}
	return m.done.value, m.done.err
}
