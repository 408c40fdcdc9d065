package spimotor

import (
	"context"
	"testing"
	"time"
)

func TestPWM_SetRateBounds(t *testing.T) {
	pwm := NewPWM(NewDummyDutyProgrammer())

	if err := pwm.SetRate(99); err != nil {
		t.Errorf("99 is a valid duty cycle: %v", err)
	}
	if err := pwm.SetRate(0); err != nil {
		t.Errorf("0 is a valid duty cycle: %v", err)
	}
	if err := pwm.SetRate(100); err != ErrInvalidDuty {
		t.Errorf("expected ErrInvalidDuty, got %v", err)
	}
	if got := pwm.Rate(); got != 0 {
		t.Errorf("rejected value must not be stored, got %d", got)
	}
}

func TestPWM_ProgrammerSignalled(t *testing.T) {
	prog := NewDummyDutyProgrammer()
	pwm := NewPWM(prog)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go pwm.Run(ctx)

	if err := pwm.SetRate(42); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		duties := prog.Duties()
		if len(duties) > 0 && duties[len(duties)-1] == 42 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("timeout waiting for the duty register update")
}

func TestPWM_RateReadback(t *testing.T) {
	pwm := NewPWM(NewDummyDutyProgrammer())

	for _, rate := range []uint8{7, 0, 99, 35} {
		if err := pwm.SetRate(rate); err != nil {
			t.Fatal(err)
		}
		if got := pwm.Rate(); got != rate {
			t.Errorf("expected %d, got %d", rate, got)
		}
	}
}
