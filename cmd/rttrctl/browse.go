package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/rttr/binding/wasmhost"
	"github.com/wippyai/rttr/errors"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	funcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// pageSize bounds the export list shown at once.
const pageSize = 20

type browserModel struct {
	err      error
	host     *wasmhost.Host
	rt       wazero.Runtime
	mod      api.Module
	result   string
	funcs    []wasmhost.Export
	inputs   []textinput.Model
	selected int
	focusIdx int
	state    modelState
}

type modelState int

const (
	stateSelectFunc modelState = iota
	stateInputArgs
	stateShowResult
)

func newBrowserModel(h *wasmhost.Host) *browserModel {
	return &browserModel{host: h, state: stateSelectFunc}
}

type loadedMsg struct {
	err error
	rt  wazero.Runtime
	mod api.Module
}

type callResultMsg struct {
	err    error
	result string
}

func (m *browserModel) Init() tea.Cmd {
	return m.load
}

func (m *browserModel) load() tea.Msg {
	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	mod, err := m.host.Instantiate(ctx, rt)
	if err != nil {
		_ = rt.Close(ctx)
		return loadedMsg{err: err}
	}
	return loadedMsg{rt: rt, mod: mod}
}

func (m *browserModel) close() {
	if m.rt != nil {
		_ = m.rt.Close(context.Background())
		m.rt = nil
	}
}

func (m *browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.close()
			return m, tea.Quit

		case "q":
			if m.state != stateInputArgs {
				m.close()
				return m, tea.Quit
			}

		case "up", "k":
			if m.state == stateSelectFunc && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectFunc && m.selected < len(m.funcs)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelectFunc:
				if len(m.funcs) == 0 {
					return m, nil
				}
				m.prepareInputs()
				if len(m.inputs) == 0 {
					return m, m.callFunction
				}
				m.state = stateInputArgs
				return m, nil

			case stateInputArgs:
				return m, m.callFunction

			case stateShowResult:
				m.state = stateSelectFunc
				m.result = ""
				m.err = nil
				return m, nil
			}

		case "tab":
			if m.state == stateInputArgs && len(m.inputs) > 1 {
				m.inputs[m.focusIdx].Blur()
				m.focusIdx = (m.focusIdx + 1) % len(m.inputs)
				m.inputs[m.focusIdx].Focus()
			}

		case "esc":
			switch m.state {
			case stateInputArgs:
				m.state = stateSelectFunc
				m.inputs = nil
			case stateShowResult:
				m.state = stateSelectFunc
				m.result = ""
				m.err = nil
			}
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.rt = msg.rt
		m.mod = msg.mod
		m.funcs = m.host.Exports()

	case callResultMsg:
		m.result = msg.result
		m.err = msg.err
		m.state = stateShowResult
	}

	if m.state == stateInputArgs {
		var cmds []tea.Cmd
		for i := range m.inputs {
			var cmd tea.Cmd
			m.inputs[i], cmd = m.inputs[i].Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m *browserModel) prepareInputs() {
	f := m.funcs[m.selected]
	m.inputs = make([]textinput.Model, len(f.Params))
	for i, p := range f.Params {
		ti := textinput.New()
		ti.Placeholder = api.ValueTypeName(p)
		ti.Prompt = paramLabel(f, i) + ": "
		ti.Width = 40
		if i == 0 {
			ti.Focus()
		}
		m.inputs[i] = ti
	}
	m.focusIdx = 0
}

func paramLabel(f wasmhost.Export, i int) string {
	if i < len(f.ParamNames) {
		return f.ParamNames[i]
	}
	return "p" + strconv.Itoa(i)
}

func (m *browserModel) callFunction() tea.Msg {
	if m.mod == nil {
		return callResultMsg{err: errors.NotInitialized(errors.PhaseBind, "host module")}
	}
	f := m.funcs[m.selected]
	args := make([]uint64, len(m.inputs))
	for i, input := range m.inputs {
		v, err := parseArg(input.Value(), f.Params[i])
		if err != nil {
			return callResultMsg{err: fmt.Errorf("%s: %w", paramLabel(f, i), err)}
		}
		args[i] = v
	}

	fn := m.mod.ExportedFunction(f.Name)
	if fn == nil {
		return callResultMsg{err: errors.NotFound(errors.PhaseBind, "export", f.Name)}
	}
	out, err := fn.Call(context.Background(), args...)
	if err != nil {
		return callResultMsg{err: err}
	}
	if len(f.Results) == 0 {
		return callResultMsg{result: "ok"}
	}
	return callResultMsg{result: formatResult(out[0], f.Results[0])}
}

// parseArg converts user input to a core value. Handles are plain i32s.
func parseArg(value string, t api.ValueType) (uint64, error) {
	value = strings.TrimSpace(value)
	switch t {
	case api.ValueTypeI32:
		switch value {
		case "true":
			return 1, nil
		case "false":
			return 0, nil
		}
		v, err := strconv.ParseInt(value, 10, 32)
		if err != nil {
			u, uerr := strconv.ParseUint(value, 10, 32)
			if uerr != nil {
				return 0, err
			}
			return api.EncodeU32(uint32(u)), nil
		}
		return api.EncodeI32(int32(v)), nil
	case api.ValueTypeI64:
		v, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			u, uerr := strconv.ParseUint(value, 10, 64)
			if uerr != nil {
				return 0, err
			}
			return u, nil
		}
		return api.EncodeI64(v), nil
	case api.ValueTypeF32:
		v, err := strconv.ParseFloat(value, 32)
		if err != nil {
			return 0, err
		}
		return api.EncodeF32(float32(v)), nil
	case api.ValueTypeF64:
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, err
		}
		return api.EncodeF64(v), nil
	default:
		return 0, errors.Unsupported(errors.PhaseBind, "value type "+api.ValueTypeName(t))
	}
}

func formatResult(v uint64, t api.ValueType) string {
	switch t {
	case api.ValueTypeI32:
		return strconv.FormatInt(int64(api.DecodeI32(v)), 10)
	case api.ValueTypeI64:
		return strconv.FormatInt(int64(v), 10)
	case api.ValueTypeF32:
		return strconv.FormatFloat(float64(api.DecodeF32(v)), 'g', -1, 32)
	case api.ValueTypeF64:
		return strconv.FormatFloat(api.DecodeF64(v), 'g', -1, 64)
	default:
		return fmt.Sprintf("%#x", v)
	}
}

func (m *browserModel) View() string {
	if m.err != nil && m.state != stateShowResult {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}

	if m.mod == nil {
		return "Instantiating host module..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("rttr browser"))
	b.WriteString(" ")
	b.WriteString(m.host.ModuleName())
	b.WriteString(fmt.Sprintf(" (%d objects)", m.host.Table().Len()))
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectFunc:
		b.WriteString("Select a host function to call:\n\n")
		start := 0
		if m.selected >= pageSize {
			start = m.selected - pageSize + 1
		}
		end := min(start+pageSize, len(m.funcs))
		for i := start; i < end; i++ {
			f := m.funcs[i]
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + m.formatFunc(f)))
			} else {
				b.WriteString("  " + m.formatFunc(f))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter call • q quit"))

	case stateInputArgs:
		f := m.funcs[m.selected]
		b.WriteString(fmt.Sprintf("Calling %s\n\n", funcStyle.Render(f.Name)))
		for i, input := range m.inputs {
			b.WriteString(input.View())
			b.WriteString(" ")
			b.WriteString(typeStyle.Render(api.ValueTypeName(f.Params[i])))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("tab next field • enter call • esc back"))

	case stateShowResult:
		f := m.funcs[m.selected]
		b.WriteString(fmt.Sprintf("Result of %s:\n\n", funcStyle.Render(f.Name)))
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(resultStyle.Render(m.result))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}

	return b.String()
}

func (m *browserModel) formatFunc(f wasmhost.Export) string {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = paramLabel(f, i) + ": " + typeStyle.Render(api.ValueTypeName(p))
	}
	result := ""
	if len(f.Results) > 0 {
		result = " -> " + typeStyle.Render(api.ValueTypeName(f.Results[0]))
	}
	return funcStyle.Render(f.Name) + "(" + strings.Join(params, ", ") + ")" + result
}

func runBrowser(h *wasmhost.Host) error {
	m := newBrowserModel(h)
	defer m.close()
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
