package spimotor

import (
	"context"
	"errors"
	"sync"
)

var ErrInvalidDuty = errors.New("invalid duty cycle")

// PWM owns the shared duty-cycle value. Writers go through SetRate, which
// stores under mutual exclusion and wakes the programmer; the hardware side
// only ever sees values in [0, 99].
type PWM struct {
	mu     sync.Mutex
	rate   uint8
	change chan struct{}
	prog   DutyProgrammer
}

func NewPWM(prog DutyProgrammer) *PWM {
	return &PWM{
		change: make(chan struct{}, 8),
		prog:   prog,
	}
}

// SetRate stores percent and signals the programmer. It returns immediately;
// the duty register is reprogrammed by the programmer goroutine.
func (p *PWM) SetRate(percent uint8) error {
	if percent > 99 {
		return ErrInvalidDuty
	}

	p.mu.Lock()
	p.rate = percent
	p.mu.Unlock()

	select {
	case p.change <- struct{}{}:
	default:
		// A wake-up is already pending, the programmer reads the slot.
	}
	return nil
}

// Rate returns the last stored duty cycle.
func (p *PWM) Rate() uint8 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rate
}

// Run pends on the change signal and pushes each distinct update to the
// duty register. It is the only caller of the programmer.
func (p *PWM) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.change:
		}

		p.prog.ProgramDuty(p.Rate())
	}
}
