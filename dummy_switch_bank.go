package spimotor

import (
	"sync"
	"time"

	"github.com/mdouchement/logger"
)

// A DummySwitchBank should only be used for dev & tests. It records every
// submitted command word and lets callers inject fault reports as if the
// MC33879 had latched them.
type DummySwitchBank struct {
	sync     sync.Mutex
	commands []uint16
	fault    uint16
	faultSig chan struct{}
	log      logger.Logger
}

func NewDummySwitchBank() *DummySwitchBank {
	return &DummySwitchBank{
		faultSig: make(chan struct{}, 32),
	}
}

func (c *DummySwitchBank) SetLogger(l logger.Logger) {
	c.log = l
}

func (c *DummySwitchBank) Close() error {
	return nil
}

func (c *DummySwitchBank) Port() string {
	return "x-testing"
}

func (c *DummySwitchBank) SubmitCommand(word uint16) {
	c.sync.Lock()
	defer c.sync.Unlock()

	c.commands = append(c.commands, word)
	if c.log != nil {
		c.log.Debugf("Command word %04X", word)
	}
}

func (c *DummySwitchBank) AwaitFault(timeout time.Duration) uint16 {
	if timeout <= 0 {
		<-c.faultSig
	} else {
		select {
		case <-c.faultSig:
		case <-time.After(timeout):
		}
	}

	c.sync.Lock()
	defer c.sync.Unlock()
	return c.fault
}

// InjectFault plays the role of the fault-receipt path: one call is one
// physical report.
func (c *DummySwitchBank) InjectFault(word uint16) {
	c.sync.Lock()
	c.fault = word
	c.sync.Unlock()

	select {
	case c.faultSig <- struct{}{}:
	default:
	}
}

// Commands returns a copy of every word submitted so far, oldest first.
func (c *DummySwitchBank) Commands() []uint16 {
	c.sync.Lock()
	defer c.sync.Unlock()

	out := make([]uint16, len(c.commands))
	copy(out, c.commands)
	return out
}

// LastCommand returns the most recent word, or EmergencyStop semantics
// (zero) when nothing was submitted yet.
func (c *DummySwitchBank) LastCommand() uint16 {
	c.sync.Lock()
	defer c.sync.Unlock()

	if len(c.commands) == 0 {
		return 0
	}
	return c.commands[len(c.commands)-1]
}

// A DummyDutyProgrammer records the duty cycles pushed to the would-be
// hardware register.
type DummyDutyProgrammer struct {
	sync   sync.Mutex
	duties []uint8
	log    logger.Logger
}

func NewDummyDutyProgrammer() *DummyDutyProgrammer {
	return &DummyDutyProgrammer{}
}

func (p *DummyDutyProgrammer) SetLogger(l logger.Logger) {
	p.log = l
}

func (p *DummyDutyProgrammer) ProgramDuty(percent uint8) {
	p.sync.Lock()
	defer p.sync.Unlock()

	p.duties = append(p.duties, percent)
	if p.log != nil {
		p.log.Debugf("Duty register %d%%", percent)
	}
}

// Duties returns a copy of every value programmed so far, oldest first.
func (p *DummyDutyProgrammer) Duties() []uint8 {
	p.sync.Lock()
	defer p.sync.Unlock()

	out := make([]uint8, len(p.duties))
	copy(out, p.duties)
	return out
}
