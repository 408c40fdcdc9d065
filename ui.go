package spimotor

import (
	"context"

	"github.com/brianrwillis/SPIMotorController/mc33879"
)

// LCD layout, 1-based rows and columns on a 2x16 panel.
const (
	statusRow      = 1
	entryRow       = 2
	firstCol       = 1
	outputCol      = 5  // active/selected output name
	pwmTagCol      = 10 // "PWM%" tag
	dutyCol        = 15 // two duty digits
	tensCol        = 15 // entry cursor, tens place
	onesCol        = 16 // entry cursor, ones place
	faultOutputCol = 8  // faulted output name on the banner
)

const (
	msgNoOutput = "Outputs Off"
	msgSet      = "SET:"
	msgPWM      = "PWM%"
	msgFault    = "Fault: "
	msgMany     = "Many"
)

// InboxCapacity bounds the UI inbox. Five entries absorb the expected worst
// burst (a fault volley during digit entry); a full inbox blocks the
// forwarders rather than dropping events.
const InboxCapacity = 5

// UI is the state-machine task. It is the only consumer of the inbox, the
// only writer to the switch bank command slot and to the duty cycle, and
// the only owner of the display.
type UI struct {
	inbox  chan Event
	bank   SwitchBank
	pwm    *PWM
	disp   Display
	hub    *Hub
	labels map[mc33879.Channel]string
	m      machine
}

func NewUI(bank SwitchBank, pwm *PWM, disp Display) *UI {
	return &UI{
		inbox: make(chan Event, InboxCapacity),
		bank:  bank,
		pwm:   pwm,
		disp:  disp,
	}
}

// SetHub attaches the monitor hub fed with status snapshots.
func (ui *UI) SetHub(hub *Hub) {
	ui.hub = hub
}

// SetLabels attaches the configured display labels used in snapshots.
func (ui *UI) SetLabels(labels map[mc33879.Channel]string) {
	ui.labels = labels
}

// Inbox is where the forwarders post their events.
func (ui *UI) Inbox() chan<- Event {
	return ui.inbox
}

// Run paints the idle screen then consumes exactly one inbox event per
// iteration until the context ends. It never polls.
func (ui *UI) Run(ctx context.Context) {
	ui.disp.ShowText(statusRow, firstCol, LayerStatus, msgNoOutput)
	ui.disp.ShowLayer(LayerStatus)
	ui.publish()

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-ui.inbox:
			var eff effect
			ui.m, eff = transition(ui.m, ev)
			ui.apply(eff)
		}
	}
}

// ForwardKeys relays raw keypad presses into the inbox, one event per
// physical press. Unknown codes are dropped before they reach the inbox.
func (ui *UI) ForwardKeys(ctx context.Context, keys <-chan Key) {
	for {
		select {
		case <-ctx.Done():
			return
		case k, ok := <-keys:
			if !ok {
				return
			}
			if _, digit := k.Digit(); !digit && k != KeySelect && k != KeyBack && k != KeyStop {
				continue
			}
			select {
			case ui.inbox <- Event{Kind: EventKey, Key: k}:
			case <-ctx.Done():
				return
			}
		}
	}
}

// ForwardFaults relays every fault report from the switch bank into the
// inbox. Each physical report becomes one event; the wait itself is not
// cancellable, so shutdown is observed between reports.
func (ui *UI) ForwardFaults(ctx context.Context) {
	for {
		word := ui.bank.AwaitFault(0)
		select {
		case ui.inbox <- Event{Kind: EventFault, Fault: word}:
		case <-ctx.Done():
			return
		}
	}
}

func (ui *UI) apply(eff effect) {
	for _, word := range eff.commands {
		ui.bank.SubmitCommand(word)
	}
	if eff.duty != nil {
		ui.pwm.SetRate(*eff.duty) // range is guaranteed by two-digit entry
	}

	switch eff.disp {
	case dispNone:
		return

	case dispStopAll:
		ui.disp.ClearLine(statusRow, LayerStatus)
		ui.disp.ClearLine(entryRow, LayerStatus)
		ui.disp.ShowText(statusRow, firstCol, LayerStatus, msgNoOutput)
		ui.disp.SetCursor(entryRow, firstCol, LayerStatus, false, false)
		ui.disp.HideLayer(LayerFault)
		ui.disp.ShowLayer(LayerStatus)

	case dispEnterAdjust:
		ui.disp.ShowText(entryRow, firstCol, LayerStatus, msgSet)
		ui.disp.SetCursor(entryRow, outputCol, LayerStatus, true, true)

	case dispOutputChosen:
		ui.disp.ShowText(entryRow, outputCol, LayerStatus, ui.m.sel.output.String())
		ui.disp.ShowText(entryRow, pwmTagCol, LayerStatus, msgPWM)
		ui.disp.SetCursor(entryRow, tensCol, LayerStatus, true, true)
		ui.disp.ShowLayer(LayerStatus)

	case dispDutyDigit:
		ui.disp.ShowDigits(entryRow, dutyCol, LayerStatus, ui.m.sel.duty, true)
		ui.disp.SetCursor(entryRow, onesCol, LayerStatus, true, true)
		ui.disp.ShowLayer(LayerStatus)

	case dispCursorOutput:
		ui.disp.SetCursor(entryRow, outputCol, LayerStatus, true, true)

	case dispCursorTens:
		ui.disp.SetCursor(entryRow, tensCol, LayerStatus, true, true)

	case dispCommitted:
		ui.disp.ClearLayer(LayerStatus)
		ui.disp.ShowText(statusRow, firstCol, LayerStatus, ui.m.sel.output.String())
		ui.disp.ShowText(statusRow, pwmTagCol, LayerStatus, msgPWM)
		ui.disp.ShowDigits(statusRow, dutyCol, LayerStatus, ui.m.sel.duty, true)
		ui.disp.SetCursor(entryRow, firstCol, LayerStatus, false, false)

	case dispFault:
		ui.disp.HideLayer(LayerStatus)
		ui.disp.ShowText(statusRow, firstCol, LayerFault, msgFault)
		name := msgMany
		if ch, ok := mc33879.DecodeFault(ui.m.fault); ok {
			name = ch.String()
		}
		ui.disp.ShowText(statusRow, faultOutputCol, LayerFault, name)
		ui.disp.ShowLayer(LayerFault)

	case dispFaultCleared:
		ui.disp.HideLayer(LayerFault)
		ui.disp.ShowLayer(LayerStatus)
	}

	ui.publish()
}

func (ui *UI) publish() {
	if ui.hub == nil {
		return
	}

	s := Status{
		State: ui.m.mode.String(),
		Duty:  ui.m.sel.duty,
		Fault: ui.m.fault,
	}
	if ui.m.sel.output.Valid() {
		s.Output = uint8(ui.m.sel.output)
		s.Label = ui.labels[ui.m.sel.output]
	}

	ui.hub.Publish(s)
}
