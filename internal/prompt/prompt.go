// Package prompt asks for check parameters on the terminal.
package prompt

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/LeStarch/fplint/internal/check"
)

// ErrCancelled is returned when the user leaves the prompt early.
var ErrCancelled = errors.New("prompt cancelled")

// Question is one parameter to ask for. Kind is the parameter type; "path"
// answers must name an existing file.
type Question struct {
	Key  string
	Help string
	Kind string
}

// ForParams returns one question per parameter, in order.
func ForParams(params []check.Param) []Question {
	out := make([]Question, 0, len(params))
	for _, p := range params {
		out = append(out, Question{Key: p.Name, Help: p.Help, Kind: p.Type})
	}
	return out
}

// Label renders the question line shown before the input.
func (q Question) Label() string {
	label := q.Key
	if q.Kind != "" {
		label += " <" + q.Kind + ">"
	}
	if q.Help != "" {
		label += " (" + q.Help + ")"
	}
	return label
}

// Check validates an answer.
func (q Question) Check(answer string) error {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return fmt.Errorf("%s is required", q.Key)
	}
	if q.Kind == "path" {
		info, err := os.Stat(answer)
		if err != nil {
			return fmt.Errorf("%s: %w", q.Key, err)
		}
		if info.IsDir() {
			return fmt.Errorf("%s: %s is a directory", q.Key, answer)
		}
	}
	return nil
}

// model walks the questions one at a time and refuses to advance past an
// invalid answer.
type model struct {
	questions []Question
	idx       int
	inputs    []textinput.Model
	problem   string
	done      bool
}

func newModel(questions []Question) model {
	m := model{questions: questions, inputs: make([]textinput.Model, len(questions))}
	for i, q := range questions {
		ti := textinput.New()
		ti.Placeholder = q.Kind
		ti.CharLimit = 1024
		m.inputs[i] = ti
	}
	if len(m.inputs) > 0 {
		m.inputs[0].Focus()
	}
	return m
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m.submit()
		}
	}
	m.problem = ""
	var cmd tea.Cmd
	m.inputs[m.idx], cmd = m.inputs[m.idx].Update(msg)
	return m, cmd
}

func (m model) submit() (tea.Model, tea.Cmd) {
	if err := m.questions[m.idx].Check(m.inputs[m.idx].Value()); err != nil {
		m.problem = err.Error()
		return m, nil
	}
	m.problem = ""
	if m.idx == len(m.inputs)-1 {
		m.done = true
		return m, tea.Quit
	}
	m.inputs[m.idx].Blur()
	m.idx++
	m.inputs[m.idx].Focus()
	return m, textinput.Blink
}

func (m model) View() string {
	if m.done || len(m.questions) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "[%d/%d] %s\n> %s\n", m.idx+1, len(m.questions), m.questions[m.idx].Label(), m.inputs[m.idx].View())
	if m.problem != "" {
		fmt.Fprintf(&b, "  %s\n", m.problem)
	}
	return b.String()
}

func (m model) answers() map[string]string {
	out := make(map[string]string, len(m.questions))
	for i, q := range m.questions {
		out[q.Key] = strings.TrimSpace(m.inputs[i].Value())
	}
	return out
}

// Ask runs the prompt and returns the answers keyed by Question.Key.
func Ask(questions []Question, opts ...tea.ProgramOption) (map[string]string, error) {
	if len(questions) == 0 {
		return map[string]string{}, nil
	}
	result, err := tea.NewProgram(newModel(questions), opts...).Run()
	if err != nil {
		return nil, err
	}
	final, ok := result.(model)
	if !ok || !final.done {
		return nil, ErrCancelled
	}
	return final.answers(), nil
}
