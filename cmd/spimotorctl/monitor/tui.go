package monitor

import (
	"fmt"
	"strings"

	spimotor "github.com/brianrwillis/SPIMotorController"
	"github.com/brianrwillis/SPIMotorController/mc33879"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type model struct {
	table table.Model
	state string
}

func newTUI() *model {
	columns := []table.Column{
		{Title: "Outputs", Width: 20},
		{Title: "Drive", Width: 12},
		{Title: "Fault", Width: 8},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(false),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		Foreground(lipgloss.Color("#00afff")).
		BorderForeground(lipgloss.Color("#00afff")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#ffffff")).
		Bold(false)
	t.SetStyles(s)

	return &model{
		table: t,
	}
}

func (m *model) Init() tea.Cmd {
	return nil
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.table.SetWidth(msg.Width)
		m.table.SetHeight(msg.Height)
	case spimotor.Status:
		m.update(msg)
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	}
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *model) View() string {
	return m.table.View() + "\n state: " + m.state
}

func (m *model) update(status spimotor.Status) {
	m.state = strings.ToUpper(status.State)

	rows := make([]table.Row, 0, mc33879.OutputCount)
	for c := mc33879.Output1; c <= mc33879.Output8; c++ {
		name := c.String()
		drive := "off"
		if uint8(c) == status.Output {
			if status.Label != "" && status.Label != name {
				name = fmt.Sprintf("%s(%s)", name, status.Label)
			}
			if status.Duty == 0 {
				drive = "FULL"
			} else {
				drive = fmt.Sprintf("PWM %2d%%", status.Duty)
			}
		}

		fault := ""
		if status.Fault&c.Mask() != 0 {
			fault = "FAULT"
		}

		rows = append(rows, table.Row{name, drive, fault})
	}

	m.table.SetRows(rows)
}
