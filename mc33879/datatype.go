package mc33879

import "fmt"

// Channel is one of the eight switch outputs, numbered 1 to 8.
type Channel uint8

// Mask returns the one-hot command/report bit for the channel.
// An out-of-range channel maps to no bit at all.
func (c Channel) Mask() uint16 {
	if c < Output1 || c > Output8 {
		return 0
	}
	return 1 << (c - 1)
}

// Valid reports whether c names a physical output.
func (c Channel) Valid() bool {
	return c >= Output1 && c <= Output8
}

func (c Channel) String() string {
	return fmt.Sprintf("OUT%d", uint8(c))
}

// DecodeFault maps a fault report to the single channel it names.
// The lookup is an exact match against each one-hot mask, so a zero word,
// a multi-bit word or an unused upper bit all return false and the caller
// falls back to its generic path.
func DecodeFault(word uint16) (Channel, bool) {
	for c := Output1; c <= Output8; c++ {
		if word == c.Mask() {
			return c, true
		}
	}
	return 0, false
}

// Identity describes the serial bridge carrying the MC33879.
type Identity struct {
	Revision string `json:"revision"`
	Firmware string `json:"firmware"`
}

func f4x[T ~uint16](v T) (byte, byte, byte, byte) {
	s := fmt.Sprintf("%04X", v)
	return s[0], s[1], s[2], s[3]
}
