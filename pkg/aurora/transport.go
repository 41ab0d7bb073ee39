package aurora

import (
	"fmt"
	"time"

	"go.bug.st/serial"
)

// Transport abstracts the open serial channel the exchange engine talks
// through. Implementations own exactly one underlying port; Reopen is the
// only recovery primitive the engine ever asks for.
type Transport interface {
	Open() error
	Close() error
	Write(p []byte) error
	// ReadByte returns one byte, or ErrReadTimeout when nothing arrived
	// within the configured read timeout.
	ReadByte() (byte, error)
	// DiscardInput drops any bytes sitting in the receive buffer.
	DiscardInput() error
}

// SerialTransport drives a physical RS-485 adapter at 8N1.
type SerialTransport struct {
	device       string
	mode         *serial.Mode
	readTimeout  time.Duration
	writeTimeout time.Duration

	port serial.Port
}

func NewSerialTransport(device string, baudRate uint, readTimeout, writeTimeout time.Duration) *SerialTransport {
	return &SerialTransport{
		device: device,
		mode: &serial.Mode{
			BaudRate: int(baudRate),
			DataBits: 8,
			Parity:   serial.NoParity,
			StopBits: serial.OneStopBit,
		},
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
	}
}

func (t *SerialTransport) Open() error {
	if t.port != nil {
		return nil
	}
	port, err := serial.Open(t.device, t.mode)
	if err != nil {
		return fmt.Errorf("aurora: open %s: %w", t.device, err)
	}
	if err := port.SetReadTimeout(t.readTimeout); err != nil {
		port.Close()
		return fmt.Errorf("aurora: set read timeout: %w", err)
	}
	t.port = port
	return nil
}

func (t *SerialTransport) Close() error {
	if t.port == nil {
		return nil
	}
	err := t.port.Close()
	t.port = nil
	return err
}

func (t *SerialTransport) Write(p []byte) error {
	if t.port == nil {
		return ErrPortNotOpen
	}
	type writeResult struct {
		n   int
		err error
	}
	done := make(chan writeResult, 1)
	go func() {
		n, err := t.port.Write(p)
		done <- writeResult{n, err}
	}()
	select {
	case res := <-done:
		if res.err != nil {
			return res.err
		}
		if res.n != len(p) {
			return fmt.Errorf("aurora: short write: %d of %d bytes", res.n, len(p))
		}
		return nil
	case <-time.After(t.writeTimeout):
		return fmt.Errorf("aurora: write timeout after %s", t.writeTimeout)
	}
}

func (t *SerialTransport) ReadByte() (byte, error) {
	if t.port == nil {
		return 0, ErrPortNotOpen
	}
	var buf [1]byte
	n, err := t.port.Read(buf[:])
	if err != nil {
		return 0, err
	}
	// go.bug.st/serial reports an expired read timeout as n == 0, nil.
	if n == 0 {
		return 0, ErrReadTimeout
	}
	return buf[0], nil
}

func (t *SerialTransport) DiscardInput() error {
	if t.port == nil {
		return ErrPortNotOpen
	}
	return t.port.ResetInputBuffer()
}
