package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// SetupModel asks for the catalog service address and the default lineage
// depth. The caller validates the address with a health probe and answers
// with SetupErrorMsg on failure.
type SetupModel struct {
	urlInput   textinput.Model
	depthInput textinput.Model
	focus      int
	error      string
	checking   bool
	width      int
	height     int
}

func NewSetupModel(baseURL string, depth int) SetupModel {
	urlInput := textinput.New()
	urlInput.Placeholder = "http://localhost:8000"
	urlInput.SetValue(baseURL)
	urlInput.Focus()
	urlInput.Width = 60

	depthInput := textinput.New()
	depthInput.Placeholder = "2"
	if depth > 0 {
		depthInput.SetValue(strconv.Itoa(depth))
	}
	depthInput.Width = 6

	return SetupModel{
		urlInput:   urlInput,
		depthInput: depthInput,
		focus:      0,
	}
}

func (m SetupModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m SetupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "tab", "down", "shift+tab", "up":
			if m.focus == 0 {
				m.focus = 1
				m.urlInput.Blur()
				m.depthInput.Focus()
			} else {
				m.focus = 0
				m.depthInput.Blur()
				m.urlInput.Focus()
			}
			return m, nil

		case "enter":
			baseURL := strings.TrimSpace(m.urlInput.Value())
			depthText := strings.TrimSpace(m.depthInput.Value())

			if baseURL == "" {
				m.error = "Catalog service URL is required"
				return m, nil
			}

			depth := 0
			if depthText != "" {
				d, err := strconv.Atoi(depthText)
				if err != nil || d < MinDepth || d > MaxDepth {
					m.error = "Depth must be a number from 1 to 10"
					return m, nil
				}
				depth = d
			}

			m.error = ""
			m.checking = true
			return m, func() tea.Msg {
				return SetupSubmitMsg{
					BaseURL: baseURL,
					Depth:   depth,
				}
			}
		}

		if m.focus == 0 {
			m.urlInput, cmd = m.urlInput.Update(msg)
		} else {
			m.depthInput, cmd = m.depthInput.Update(msg)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case SetupErrorMsg:
		m.error = msg.Error
		m.checking = false

	default:
		if m.focus == 0 {
			m.urlInput, cmd = m.urlInput.Update(msg)
		} else {
			m.depthInput, cmd = m.depthInput.Update(msg)
		}
	}

	return m, cmd
}

func (m SetupModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("cdgcview - Setup") + "\n\n")
	b.WriteString("Point cdgcview at your CDGC-Lite catalog service.\n")
	b.WriteString("The address is checked with a call to /healthz before it is saved.\n\n")

	urlLabel := "Catalog service URL:"
	if m.focus == 0 {
		urlLabel = activeStyle.Render("> " + urlLabel)
	} else {
		urlLabel = "  " + urlLabel
	}
	b.WriteString(urlLabel + "\n")
	b.WriteString(inputStyle.Render(m.urlInput.View()) + "\n\n")

	depthLabel := "Default lineage depth:"
	if m.focus == 1 {
		depthLabel = activeStyle.Render("> " + depthLabel)
	} else {
		depthLabel = "  " + depthLabel
	}
	b.WriteString(depthLabel + "\n")
	b.WriteString(inputStyle.Render(m.depthInput.View()) + "\n")

	if m.checking {
		b.WriteString("\n" + dimStyle.Render("Checking service...") + "\n")
	}

	if m.error != "" {
		b.WriteString("\n" + errorStyle.Render("Error: "+m.error) + "\n")
	}

	b.WriteString("\n" + helpStyle.Render("tab switch field  enter submit  esc quit"))

	return b.String()
}
