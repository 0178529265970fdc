package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/js-runtime/runtime"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type replEntry struct {
	input  string
	output string
	isErr  bool
}

type replModel struct {
	rt      *runtime.Runtime
	timeout time.Duration
	input   textinput.Model
	history []replEntry
}

func runInteractive(deferred bool, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	rt, err := newRuntime(ctx, deferred)
	cancel()
	if err != nil {
		return err
	}
	defer rt.Close(context.Background())

	ti := textinput.New()
	ti.Placeholder = "1 + 2"
	ti.Prompt = promptStyle.Render("js> ")
	ti.Focus()

	m := replModel{rt: rt, timeout: timeout, input: ti}
	_, err = tea.NewProgram(m).Run()
	return err
}

func (m replModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m replModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyCtrlD:
			return m, tea.Quit
		case tea.KeyEnter:
			src := strings.TrimSpace(m.input.Value())
			if src == "" {
				return m, nil
			}
			m.history = append(m.history, m.eval(src))
			m.input.SetValue("")
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m replModel) eval(src string) replEntry {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	v, err := m.rt.Eval(ctx, src)
	if err != nil {
		return replEntry{input: src, output: err.Error(), isErr: true}
	}
	result, err := m.rt.Await(ctx, v)
	if err != nil {
		return replEntry{input: src, output: err.Error(), isErr: true}
	}
	return replEntry{input: src, output: fmt.Sprintf("%v", result)}
}

func (m replModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("js-runtime"))
	b.WriteString("\n\n")

	for _, e := range m.history {
		b.WriteString(promptStyle.Render("js> "))
		b.WriteString(e.input)
		b.WriteByte('\n')
		if e.isErr {
			b.WriteString(errorStyle.Render(e.output))
		} else {
			b.WriteString(resultStyle.Render(e.output))
		}
		b.WriteByte('\n')
	}

	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("enter: evaluate • ctrl+c: quit"))
	b.WriteByte('\n')

	return b.String()
}
