package lcd

import (
	"strings"
	"testing"

	spimotor "github.com/brianrwillis/SPIMotorController"
)

func TestShowText(t *testing.T) {
	s := New()
	s.ShowLayer(spimotor.LayerStatus)
	s.ShowText(1, 1, spimotor.LayerStatus, "Outputs Off")

	if got := s.Line(1); got != "Outputs Off     " {
		t.Errorf("unexpected line 1 %q", got)
	}
	if got := s.Line(2); got != strings.Repeat(" ", Cols) {
		t.Errorf("unexpected line 2 %q", got)
	}
}

func TestShowText_ClipsAtRightEdge(t *testing.T) {
	s := New()
	s.ShowLayer(spimotor.LayerStatus)
	s.ShowText(1, 14, spimotor.LayerStatus, "ABCDEF")

	if got := s.Line(1); got != "             ABC" {
		t.Errorf("unexpected line %q", got)
	}
}

func TestShowDigits(t *testing.T) {
	s := New()
	s.ShowLayer(spimotor.LayerStatus)

	s.ShowDigits(2, 1, spimotor.LayerStatus, 7, true)
	if got := s.Line(2)[:2]; got != "07" {
		t.Errorf("expected leading zero, got %q", got)
	}

	s.ShowDigits(2, 5, spimotor.LayerStatus, 7, false)
	if got := s.Line(2)[4:5]; got != "7" {
		t.Errorf("expected bare digit, got %q", got)
	}
}

func TestFaultLayerOccludesStatus(t *testing.T) {
	s := New()
	s.ShowText(1, 1, spimotor.LayerStatus, "OUT4     PWM% 07")
	s.ShowText(1, 1, spimotor.LayerFault, "Fault: OUT1")
	s.ShowLayer(spimotor.LayerStatus)

	if got := s.Line(1); !strings.HasPrefix(got, "OUT4") {
		t.Errorf("expected status layer, got %q", got)
	}

	s.ShowLayer(spimotor.LayerFault)
	if got := s.Line(1); !strings.HasPrefix(got, "Fault: OUT1") {
		t.Errorf("expected fault layer on top, got %q", got)
	}

	// Status survives untouched underneath.
	s.HideLayer(spimotor.LayerFault)
	if got := s.Line(1); !strings.HasPrefix(got, "OUT4") {
		t.Errorf("expected status layer restored, got %q", got)
	}
}

func TestNothingVisible(t *testing.T) {
	s := New()
	s.ShowText(1, 1, spimotor.LayerStatus, "hidden")

	if got := s.Line(1); got != strings.Repeat(" ", Cols) {
		t.Errorf("expected blank panel, got %q", got)
	}
}

func TestClearLine(t *testing.T) {
	s := New()
	s.ShowLayer(spimotor.LayerStatus)
	s.ShowText(1, 1, spimotor.LayerStatus, "keep")
	s.ShowText(2, 1, spimotor.LayerStatus, "wipe")

	s.ClearLine(2, spimotor.LayerStatus)
	if got := s.Line(1); !strings.HasPrefix(got, "keep") {
		t.Errorf("line 1 should be untouched, got %q", got)
	}
	if got := s.Line(2); got != strings.Repeat(" ", Cols) {
		t.Errorf("line 2 should be blank, got %q", got)
	}
}

func TestClearLayer(t *testing.T) {
	s := New()
	s.ShowLayer(spimotor.LayerStatus)
	s.ShowText(1, 1, spimotor.LayerStatus, "one")
	s.ShowText(2, 1, spimotor.LayerStatus, "two")

	s.ClearLayer(spimotor.LayerStatus)
	for row := 1; row <= Rows; row++ {
		if got := s.Line(row); got != strings.Repeat(" ", Cols) {
			t.Errorf("row %d should be blank, got %q", row, got)
		}
	}
}

func TestCursor(t *testing.T) {
	s := New()
	s.ShowLayer(spimotor.LayerStatus)

	if _, _, ok := s.CursorAt(); ok {
		t.Error("cursor should start off")
	}

	s.SetCursor(2, 15, spimotor.LayerStatus, true, true)
	row, col, ok := s.CursorAt()
	if !ok || row != 2 || col != 15 {
		t.Errorf("unexpected cursor %d,%d,%v", row, col, ok)
	}

	// A cursor on an occluded layer is not reported.
	s.ShowLayer(spimotor.LayerFault)
	if _, _, ok := s.CursorAt(); ok {
		t.Error("cursor sits under the fault layer")
	}

	s.HideLayer(spimotor.LayerFault)
	s.SetCursor(2, 15, spimotor.LayerStatus, false, false)
	if _, _, ok := s.CursorAt(); ok {
		t.Error("cursor should be off")
	}
}

func TestOutOfRangeIgnored(t *testing.T) {
	s := New()
	s.ShowLayer(spimotor.LayerStatus)

	s.ShowText(0, 1, spimotor.LayerStatus, "nope")
	s.ShowText(3, 1, spimotor.LayerStatus, "nope")
	s.ShowText(1, 0, spimotor.LayerStatus, "nope")
	s.ShowText(1, 17, spimotor.LayerStatus, "nope")
	s.ShowText(1, 1, spimotor.Layer(9), "nope")
	s.SetCursor(0, 0, spimotor.LayerStatus, true, false)

	if got := s.Line(1); got != strings.Repeat(" ", Cols) {
		t.Errorf("expected blank panel, got %q", got)
	}
	if _, _, ok := s.CursorAt(); ok {
		t.Error("out of range cursor should be ignored")
	}
}

func TestRenderContainsPanelText(t *testing.T) {
	s := New()
	s.ShowLayer(spimotor.LayerStatus)
	s.ShowText(1, 1, spimotor.LayerStatus, "Outputs Off")

	if out := s.Render(); !strings.Contains(out, "Outputs Off") {
		t.Errorf("rendered panel misses its text:\n%s", out)
	}
}
