package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/wippyai/refcell/errors"
	"github.com/wippyai/refcell/scenario"
)

const maxLogLines = 12

var interactiveCmd = &cobra.Command{
	Use:     "interactive [scenario.yaml]",
	Aliases: []string{"i"},
	Short:   "Step through a scenario or drive handles by hand",
	Long: `Open a terminal UI over a scenario. Press enter on an empty line to run the
next scripted step (or type n), or type a command:

  create <handle> <resource>
  clone <handle> <from>
  release <handle>
  expect <resource> <teardowns>`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadScenario(args)
		if err != nil {
			return err
		}
		return runInteractive(s)
	},
}

func init() {
	rootCmd.AddCommand(interactiveCmd)
}

type interactiveModel struct {
	err      error
	runner   *scenario.Runner
	scenario *scenario.Scenario
	input    textinput.Model
	log      []string
	closed   bool
}

func newInteractiveModel(s *scenario.Scenario) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "enter: next step"
	ti.Prompt = "> "
	ti.Width = 48
	ti.Focus()

	return &interactiveModel{
		runner:   newRunner(s),
		scenario: s,
		input:    ti,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c", "esc":
			m.shutdown()
			return m, tea.Quit

		case "enter":
			line := strings.TrimSpace(m.input.Value())
			m.input.SetValue("")
			m.submit(line)
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit runs the next scripted step for an empty line or "n", otherwise the
// parsed command.
func (m *interactiveModel) submit(line string) {
	if m.closed {
		return
	}

	var (
		res scenario.Result
		err error
	)
	switch {
	case line == "" || line == "n":
		if m.runner.Done() {
			m.err = errors.InvalidInput(errors.PhaseScenario, "no scripted steps left; type a command")
			return
		}
		res, err = m.runner.Step()
	default:
		st, perr := scenario.ParseStep(line)
		if perr != nil {
			m.err = perr
			return
		}
		res, err = m.runner.Exec(st)
	}

	m.err = err
	m.appendLog(strings.TrimRight(formatResult(true, res), "\n"))
}

func (m *interactiveModel) appendLog(entry string) {
	m.log = append(m.log, strings.Split(entry, "\n")...)
	if len(m.log) > maxLogLines {
		m.log = m.log[len(m.log)-maxLogLines:]
	}
}

func (m *interactiveModel) shutdown() {
	if m.closed {
		return
	}
	m.closed = true
	_ = m.runner.Close()
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	name := m.scenario.Name
	if name == "" {
		name = "scenario"
	}
	b.WriteString(titleStyle.Render("refctl"))
	b.WriteString(" ")
	b.WriteString(name)
	b.WriteString("\n\n")

	b.WriteString("Live handles:\n")
	handles := m.runner.Handles()
	if len(handles) == 0 {
		b.WriteString(helpStyle.Render("  (none)"))
		b.WriteString("\n")
	}
	for _, h := range handles {
		valid := "valid"
		if !h.Valid {
			valid = "null"
		}
		fmt.Fprintf(&b, "  %-8s %s count=%d %s\n",
			h.Name, opStyle.Render(h.Resource), h.Count, eventStyle.Render(valid))
	}

	b.WriteString("\nTeardowns:\n")
	for _, res := range m.runner.Resources() {
		fmt.Fprintf(&b, "  %-16s %s\n", res,
			teardownStyle.Render(fmt.Sprintf("%d", len(m.runner.Teardowns(res)))))
	}

	b.WriteString("\n")
	for _, line := range m.log {
		b.WriteString(line)
		b.WriteString("\n")
	}

	if next, ok := m.runner.Next(); ok {
		b.WriteString(helpStyle.Render("next: " + next.String()))
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("enter/n next step • esc quit"))

	return b.String()
}

func runInteractive(s *scenario.Scenario) error {
	m := newInteractiveModel(s)
	defer m.shutdown()

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
