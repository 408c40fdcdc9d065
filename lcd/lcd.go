// Package lcd models the layered 2x16 character panel. Drawing happens on
// independent layers; the fault layer fully occludes the status layer while
// it is shown, the way the hardware display stacks its framebuffers.
package lcd

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	spimotor "github.com/brianrwillis/SPIMotorController"
	"github.com/charmbracelet/lipgloss"
)

const (
	Rows = 2
	Cols = 16
)

const layerCount = 2

type cursor struct {
	row   int
	col   int
	layer spimotor.Layer
	on    bool
	blink bool
}

// Screen is safe for concurrent use: the UI task draws while the panel TUI
// renders.
type Screen struct {
	mu      sync.Mutex
	layers  [layerCount][Rows][Cols]byte
	visible [layerCount]bool
	cur     cursor
}

func New() *Screen {
	s := &Screen{}
	for l := range s.layers {
		for r := range s.layers[l] {
			for c := range s.layers[l][r] {
				s.layers[l][r][c] = ' '
			}
		}
	}
	return s
}

func (s *Screen) ShowText(row, col int, layer spimotor.Layer, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !valid(row, col, layer) {
		return
	}
	for i := 0; i < len(text) && col-1+i < Cols; i++ {
		s.layers[layer][row-1][col-1+i] = text[i]
	}
}

func (s *Screen) ShowDigits(row, col int, layer spimotor.Layer, value uint8, leadingZero bool) {
	var text string
	if leadingZero {
		text = fmt.Sprintf("%02d", value)
	} else {
		text = strconv.Itoa(int(value))
	}
	s.ShowText(row, col, layer, text)
}

func (s *Screen) SetCursor(row, col int, layer spimotor.Layer, on, blink bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !valid(row, col, layer) {
		return
	}
	s.cur = cursor{row: row, col: col, layer: layer, on: on, blink: blink}
}

func (s *Screen) ClearLine(row int, layer spimotor.Layer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !valid(row, 1, layer) {
		return
	}
	for c := range s.layers[layer][row-1] {
		s.layers[layer][row-1][c] = ' '
	}
}

func (s *Screen) ClearLayer(layer spimotor.Layer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if layer >= layerCount {
		return
	}
	for r := range s.layers[layer] {
		for c := range s.layers[layer][r] {
			s.layers[layer][r][c] = ' '
		}
	}
}

func (s *Screen) ShowLayer(layer spimotor.Layer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if layer >= layerCount {
		return
	}
	s.visible[layer] = true
}

func (s *Screen) HideLayer(layer spimotor.Layer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if layer >= layerCount {
		return
	}
	s.visible[layer] = false
}

// top returns the rendered layer and whether anything is visible at all.
// Must be called with the lock held.
func (s *Screen) top() (spimotor.Layer, bool) {
	if s.visible[spimotor.LayerFault] {
		return spimotor.LayerFault, true
	}
	if s.visible[spimotor.LayerStatus] {
		return spimotor.LayerStatus, true
	}
	return 0, false
}

// Line returns the visible text of a 1-based row, unstyled. Used by tests
// and anything that wants the raw panel contents.
func (s *Screen) Line(row int) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if row < 1 || row > Rows {
		return ""
	}

	layer, ok := s.top()
	if !ok {
		return strings.Repeat(" ", Cols)
	}
	return string(s.layers[layer][row-1][:])
}

// CursorAt reports the cursor position when it is on and sits on the
// rendered layer.
func (s *Screen) CursorAt() (row, col int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	layer, visible := s.top()
	if !visible || !s.cur.on || s.cur.layer != layer {
		return 0, 0, false
	}
	return s.cur.row, s.cur.col, true
}

var (
	bezelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00afff")).
			Padding(0, 1)
	glassStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#9cbd0f"))
	cursorStyle = lipgloss.NewStyle().Reverse(true)
	blinkStyle  = lipgloss.NewStyle().Reverse(true).Blink(true)
)

// Render draws the panel for the TUI.
func (s *Screen) Render() string {
	s.mu.Lock()
	layer, visible := s.top()
	var rows [Rows]string
	cur := s.cur
	if visible {
		for r := range s.layers[layer] {
			rows[r] = string(s.layers[layer][r][:])
		}
	} else {
		for r := range rows {
			rows[r] = strings.Repeat(" ", Cols)
		}
	}
	showCursor := visible && cur.on && cur.layer == layer
	s.mu.Unlock()

	lines := make([]string, Rows)
	for r := range rows {
		line := rows[r]
		if showCursor && cur.row == r+1 {
			i := cur.col - 1
			style := cursorStyle
			if cur.blink {
				style = blinkStyle
			}
			lines[r] = glassStyle.Render(line[:i]) + style.Render(string(line[i])) + glassStyle.Render(line[i+1:])
			continue
		}
		lines[r] = glassStyle.Render(line)
	}

	return bezelStyle.Render(strings.Join(lines, "\n"))
}

func valid(row, col int, layer spimotor.Layer) bool {
	return row >= 1 && row <= Rows && col >= 1 && col <= Cols && layer < layerCount
}
