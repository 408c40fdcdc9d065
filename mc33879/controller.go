// Package mc33879 talks to an MC33879 octal switch sitting behind a small
// serial-to-SPI bridge board. The bridge relays 16-bit command words to the
// device and pushes every fault report it latches back up the line.
package mc33879

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/mdouchement/logger"
	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

var (
	ErrNotFound = errors.New("device not found/plugged")
)

const (
	signalBacklog      = 32
	transmitRetryDelay = 100 * time.Millisecond
)

type Controller struct {
	pname  string
	serial serial.Port
	log    logger.Logger
	wbuf   []byte
	rbuf   []byte

	cmdMu  sync.Mutex
	cmd    uint16
	cmdSig chan struct{}

	faultMu  sync.Mutex
	fault    uint16
	faultSig chan struct{}
}

func OpenAuto(readTimeout time.Duration) (*Controller, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, err
	}

	var port *enumerator.PortDetails
	for _, p := range ports {
		if p.VID == "2e8a" && p.PID == "000a" {
			// The bridge is a Pico-based board so it enumerates twice;
			// the first entry is the command link.
			port = p
		}
	}
	if port == nil {
		return nil, ErrNotFound
	}

	fmt.Printf("Found MC33879 bridge on %s - PID: %s - VID: %s - SN: %s\n", port.Name, port.VID, port.PID, port.SerialNumber)
	return Open(port.Name, readTimeout)
}

func Open(port string, readTimeout time.Duration) (*Controller, error) {
	p, err := serial.Open(port, &serial.Mode{
		BaudRate: 115200,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, err
	}

	if readTimeout <= 0 {
		readTimeout = 200 * time.Millisecond
	}
	p.SetReadTimeout(readTimeout)

	if err = p.ResetInputBuffer(); err != nil {
		return nil, err
	}

	if err = p.ResetOutputBuffer(); err != nil {
		return nil, err
	}

	return newController(port, p), nil
}

func newController(pname string, port serial.Port) *Controller {
	return &Controller{
		pname:    pname,
		serial:   port,
		wbuf:     make([]byte, CommFrameLen),
		rbuf:     make([]byte, CommRxBufferLen),
		cmdSig:   make(chan struct{}, signalBacklog),
		faultSig: make(chan struct{}, signalBacklog),
	}
}

func (c *Controller) SetLogger(l logger.Logger) {
	c.log = l
}

func (c *Controller) Port() string {
	return c.pname
}

func (c *Controller) Close() error {
	if err := c.serial.ResetInputBuffer(); err != nil {
		return err
	}

	if err := c.serial.ResetOutputBuffer(); err != nil {
		return err
	}

	return c.serial.Close()
}

// Identify queries the bridge for its revision strings. It performs a
// synchronous request/response exchange on the line and therefore must be
// called before Start hands the read side to the fault listener.
func (c *Controller) Identify() (*Identity, error) {
	_, err := c.serial.Write([]byte{CommRequestCharacter, 'I', 'D', CommAltEndCharacter, CommEndCharacter})
	if err != nil {
		return nil, fmt.Errorf("identify: write: %w", err)
	}

	var n, l int
	for {
		n, err = c.serial.Read(c.rbuf[l:])
		if err != nil {
			return nil, fmt.Errorf("identify: read: %w", err)
		}
		if n == 0 { // read timeout, the bridge is done talking
			break
		}

		l += n
		if l == len(c.rbuf) {
			break
		}
	}

	n = bytes.IndexByte(c.rbuf[:l], CommReportCharacter)
	if n < 0 {
		return nil, errors.New("identify: no report in response")
	}

	var id Identity
	for p := range bytes.SplitSeq(bytes.TrimSpace(c.rbuf[n+1:l]), []byte{';'}) {
		kv := bytes.Split(p, []byte{':'})
		if len(kv) != 2 {
			continue
		}

		switch string(kv[0]) {
		case "REV":
			id.Revision = string(kv[1])
		case "FW":
			id.Firmware = string(kv[1])
		}
	}

	return &id, nil
}

// Start launches the transmitter and the fault listener. The read side
// switches to fully blocking mode; no request/response exchange may happen
// after this point.
func (c *Controller) Start(ctx context.Context) {
	c.serial.SetReadTimeout(serial.NoTimeout)
	go c.transmit(ctx)
	go c.listen()
}

// SubmitCommand stores word as the pending command and wakes the
// transmitter. It never blocks: the slot always holds the latest word and
// the signal channel keeps one token per submission, so the transmitter
// drains submissions in order without ever writing a stale word last.
func (c *Controller) SubmitCommand(word uint16) {
	c.cmdMu.Lock()
	c.cmd = word
	c.cmdMu.Unlock()

	select {
	case c.cmdSig <- struct{}{}:
	default:
		// Backlog full: a wake-up is already pending and the slot holds
		// the freshest word, nothing is lost.
	}
}

// AwaitFault blocks until the bridge delivers a fault report or timeout
// elapses, then returns the most recent fault word. Fault state is a level,
// not an edge, so a timeout hands back the last known value instead of
// failing. A timeout <= 0 waits forever.
func (c *Controller) AwaitFault(timeout time.Duration) uint16 {
	if timeout <= 0 {
		<-c.faultSig
	} else {
		select {
		case <-c.faultSig:
		case <-time.After(timeout):
		}
	}

	c.faultMu.Lock()
	defer c.faultMu.Unlock()
	return c.fault
}

func (c *Controller) transmit(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.cmdSig:
		}

		c.cmdMu.Lock()
		word := c.cmd
		c.cmdMu.Unlock()

		// Wait for the previous frame to leave the wire before pushing the
		// next one: one transfer in flight, in submission order.
		if err := c.serial.Drain(); err != nil {
			c.retry(err, "Could not drain command link")
			continue
		}

		c.wbuf[0] = CommRequestCharacter
		c.wbuf[1], c.wbuf[2], c.wbuf[3], c.wbuf[4] = f4x(word)
		c.wbuf[5] = CommAltEndCharacter
		c.wbuf[6] = CommEndCharacter

		n, err := c.serial.Write(c.wbuf)
		if err != nil {
			c.retry(err, "Could not write command frame")
			continue
		}
		if n != CommFrameLen && c.log != nil {
			c.log.Warnf("Invalid write: %d of %d", n, CommFrameLen)
		}
	}
}

// retry logs a link error and re-arms the transmitter so the pending word is
// attempted again. The slot still holds the latest word, so an emergency stop
// is never lost to a transient failure.
func (c *Controller) retry(err error, msg string) {
	if c.log != nil {
		c.log.WithError(err).Error(msg)
	}

	time.Sleep(transmitRetryDelay)

	select {
	case c.cmdSig <- struct{}{}:
	default:
	}
}

func (c *Controller) listen() {
	sc := bufio.NewScanner(c.serial)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		if len(line) != CommReportLen || line[0] != CommReportCharacter {
			if c.log != nil {
				c.log.Debugf("Dropping malformed report %q", line)
			}
			continue
		}

		word, err := strconv.ParseUint(string(line[1:]), 16, 16)
		if err != nil {
			if c.log != nil {
				c.log.Debugf("Dropping malformed report %q", line)
			}
			continue
		}

		c.faultMu.Lock()
		c.fault = uint16(word)
		c.faultMu.Unlock()

		select {
		case c.faultSig <- struct{}{}:
		default:
			// Reports arriving faster than the consumer drains them; the
			// level is still up to date.
		}
	}

	if err := sc.Err(); err != nil && c.log != nil {
		c.log.WithError(err).Error("Fault listener stopped")
	}
}
