// Package panel is the operator-facing keypad + LCD: terminal keys stand in
// for the membrane keypad, the view renders the layered panel model.
package panel

import (
	"time"

	spimotor "github.com/brianrwillis/SPIMotorController"
	"github.com/brianrwillis/SPIMotorController/lcd"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var helpStyle = lipgloss.NewStyle().Faint(true)

type refreshMsg time.Time

type Model struct {
	screen *lcd.Screen
	keys   chan<- spimotor.Key
}

func New(screen *lcd.Screen, keys chan<- spimotor.Key) *Model {
	return &Model{
		screen: screen,
		keys:   keys,
	}
}

func (m *Model) Init() tea.Cmd {
	return tick()
}

// The UI task draws on the screen from its own goroutine, so the view is
// repainted on a fixed cadence instead of per message.
func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return refreshMsg(t)
	})
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case refreshMsg:
		return m, tick()
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

		if k, ok := keyFor(msg.String()); ok {
			select {
			case m.keys <- k:
			default:
				// The physical keypad has no buffer either; a press while
				// the line is saturated is lost.
			}
		}
	}
	return m, nil
}

func (m *Model) View() string {
	return m.screen.Render() + "\n" +
		helpStyle.Render("0-9 digits - a select/accept - b back - d EMERGENCY STOP - q quit")
}

func keyFor(s string) (spimotor.Key, bool) {
	if len(s) != 1 {
		return 0, false
	}

	switch c := s[0]; {
	case c >= '0' && c <= '9':
		return spimotor.Key(c), true
	case c == 'a' || c == 'A':
		return spimotor.KeySelect, true
	case c == 'b' || c == 'B':
		return spimotor.KeyBack, true
	case c == 'd' || c == 'D':
		return spimotor.KeyStop, true
	}
	return 0, false
}
