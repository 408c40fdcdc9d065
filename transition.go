package spimotor

import "github.com/brianrwillis/SPIMotorController/mc33879"

// machine is the complete UI-task state: top-level mode, adjust cursor
// position, the in-progress selection and the last displayed fault word.
type machine struct {
	mode  UIState
	step  AdjustStep
	sel   selection
	fault uint16
}

// displayOp tells the UI task what to redraw. The transition function never
// touches the display itself so it stays testable without a screen.
type displayOp uint8

const (
	dispNone displayOp = iota
	dispStopAll       // status back to "Outputs Off", fault banner hidden
	dispEnterAdjust   // "SET:" prompt, cursor on the output field
	dispOutputChosen  // echo OUTn, cursor on the tens digit
	dispDutyDigit     // echo the accumulator, cursor follows the step
	dispCursorOutput  // back-key, cursor returns to the output field
	dispCursorTens    // back-key, cursor returns to the tens digit
	dispCommitted     // status line shows the armed output and duty
	dispFault         // fault banner shown over the status layer
	dispFaultCleared  // fault banner hidden, status layer restored
)

// effect is the side-effect description of one transition: command words for
// the serial link in submission order, an optional duty update that must
// follow them, and a display directive.
type effect struct {
	commands []uint16
	duty     *uint8
	disp     displayOp
}

// transition consumes exactly one inbox event and returns the next machine
// state plus the side effects to apply. Events with an unknown tag and keys
// with no meaning in the current state fall through untouched.
func transition(m machine, ev Event) (machine, effect) {
	switch ev.Kind {
	case EventKey:
		return keyTransition(m, ev.Key)
	case EventFault:
		return faultTransition(m, ev.Fault)
	}
	return m, effect{}
}

func keyTransition(m machine, k Key) (machine, effect) {
	// Emergency stop outranks every state: all outputs off, duty zeroed,
	// any adjust episode and fault banner discarded.
	if k == KeyStop {
		zero := uint8(0)
		return machine{mode: StateRunning}, effect{
			commands: []uint16{mc33879.EmergencyStop},
			duty:     &zero,
			disp:     dispStopAll,
		}
	}

	switch m.mode {
	case StateRunning:
		if k == KeySelect {
			m.mode = StateAdjust
			m.step = StepOutput
			m.sel = selection{}
			return m, effect{disp: dispEnterAdjust}
		}
	case StateAdjust:
		return adjustTransition(m, k)
	case StateFault:
		// Only the stop key means anything while the banner is up.
	}
	return m, effect{}
}

func adjustTransition(m machine, k Key) (machine, effect) {
	switch m.step {
	case StepOutput:
		if d, ok := k.Digit(); ok {
			ch := mc33879.Channel(d)
			if !ch.Valid() {
				break
			}
			m.sel.output = ch
			m.sel.command = ch.Mask()
			m.step = StepTens
			return m, effect{disp: dispOutputChosen}
		}

	case StepTens:
		if d, ok := k.Digit(); ok {
			m.sel.duty = 10*d + m.sel.duty%10
			m.step = StepOnes
			return m, effect{disp: dispDutyDigit}
		}
		if k == KeyBack {
			m.step = StepOutput
			m.sel.duty = 0
			return m, effect{disp: dispCursorOutput}
		}

	case StepOnes:
		if d, ok := k.Digit(); ok {
			m.sel.duty = (m.sel.duty/10)*10 + d
			return m, effect{disp: dispDutyDigit}
		}
		if k == KeyBack {
			m.step = StepTens
			return m, effect{disp: dispCursorTens}
		}
		if k == KeySelect { // accept
			m.mode = StateRunning

			if m.sel.duty == 0 {
				// Full drive straight through the switch, no PWM.
				return m, effect{
					commands: []uint16{m.sel.command},
					disp:     dispCommitted,
				}
			}

			// The MC33879 cannot hold a serial-selected output while PWM
			// drives the same path (INS5/INS6), so the switch outputs are
			// quiesced before the duty cycle is armed.
			duty := m.sel.duty
			return m, effect{
				commands: []uint16{mc33879.EmergencyStop},
				duty:     &duty,
				disp:     dispCommitted,
			}
		}
	}
	return m, effect{}
}

func faultTransition(m machine, word uint16) (machine, effect) {
	if word == mc33879.NoFault {
		if m.mode == StateFault {
			m.mode = StateRunning
			m.fault = mc33879.NoFault
			return m, effect{disp: dispFaultCleared}
		}
		return m, effect{} // level already clear, nothing to repaint
	}

	m.mode = StateFault
	m.fault = word
	return m, effect{disp: dispFault}
}
