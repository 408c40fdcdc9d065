package spimotor

import (
	"time"

	"github.com/brianrwillis/SPIMotorController/mc33879"
)

// SwitchBank is the serial-link service: the single writer path to the
// MC33879 command slot and the wait point for its fault reports.
type SwitchBank interface {
	SubmitCommand(word uint16)
	AwaitFault(timeout time.Duration) uint16
}

// DutyProgrammer reprograms the hardware duty register. How percent maps to
// timer ticks is the driver's business; the core needs no feedback.
type DutyProgrammer interface {
	ProgramDuty(percent uint8)
}

// Layer selects one of the two LCD overlays. The fault layer occludes the
// status layer whenever it is shown.
type Layer uint8

const (
	LayerStatus Layer = iota
	LayerFault
)

// Display is the layered LCD surface the UI task draws on.
// Rows and columns are 1-based, matching the panel silkscreen.
type Display interface {
	ShowText(row, col int, layer Layer, s string)
	ShowDigits(row, col int, layer Layer, value uint8, leadingZero bool)
	SetCursor(row, col int, layer Layer, on, blink bool)
	ClearLine(row int, layer Layer)
	ClearLayer(layer Layer)
	ShowLayer(layer Layer)
	HideLayer(layer Layer)
}

// Key is one decoded keypad press.
type Key byte

const (
	KeySelect Key = 'A' // enter adjust mode / accept the entered value
	KeyBack   Key = 'B'
	KeyStop   Key = 'D' // emergency stop, handled before any state dispatch
)

// Digit returns the decimal value of a number key.
func (k Key) Digit() (uint8, bool) {
	if k < '0' || k > '9' {
		return 0, false
	}
	return uint8(k - '0'), true
}

// EventKind tags inbox messages so dispatch never depends on payload size.
type EventKind uint8

const (
	EventKey EventKind = iota + 1
	EventFault
)

// Event is one inbox message: a keypad press or a fault-link report.
type Event struct {
	Kind  EventKind
	Key   Key
	Fault uint16
}

// Status is the snapshot published to monitor watchers.
type Status struct {
	State  string `json:"state"`
	Output uint8  `json:"output"` // 0 when no output is armed
	Label  string `json:"label,omitempty"`
	Duty   uint8  `json:"duty"`
	Fault  uint16 `json:"fault"`
}

// UIState is the top-level mode of the operator interface.
type UIState uint8

const (
	StateRunning UIState = iota
	StateAdjust
	StateFault
)

func (s UIState) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateAdjust:
		return "adjust"
	case StateFault:
		return "fault"
	}
	return "unknown"
}

// AdjustStep is the cursor position within an adjust episode.
type AdjustStep uint8

const (
	StepOutput AdjustStep = iota
	StepTens
	StepOnes
)

// selection is the transient state of one adjust episode. It is discarded
// on commit, cancel and emergency stop.
type selection struct {
	output  mc33879.Channel
	command uint16
	duty    uint8
}

const (
	hubUpdateStatus = "update-status"
	hubWatch        = "watch"
	hubUnwatch      = "unwatch"
	hubRefresh      = "refresh-watchers"
)

type hubEvent struct {
	name      string
	status    Status
	monitorID int64
	monitor   chan<- []byte
}

func genID() int64 {
	time.Sleep(time.Nanosecond)
	return time.Now().UnixNano()
}
