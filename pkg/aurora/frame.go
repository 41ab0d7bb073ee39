package aurora

import "fmt"

// Command selects the requested operation. Closed set per the Aurora
// protocol documentation, extensible through DebugProbe.
type Command byte

const (
	CommandStateRequest      Command = 50
	CommandPartNumber        Command = 52
	CommandVersion           Command = 58
	CommandMeasure           Command = 59
	CommandSerialNumber      Command = 63
	CommandManufacturingDate Command = 65
	CommandCumulatedEnergy   Command = 78
)

const (
	// OutboundFrameSize is address + command + 6 payload bytes + 2 CRC bytes.
	OutboundFrameSize = 10
	// InboundFrameSize is 2 state bytes + 4 data bytes + 2 CRC bytes.
	InboundFrameSize = 8

	payloadSize = 6
)

// EncodeFrame builds the fixed 10-byte outbound frame: address, command,
// payload, then CRC16 over the first 8 bytes appended little-endian.
func EncodeFrame(address byte, command Command, payload [payloadSize]byte) []byte {
	frame := make([]byte, 0, OutboundFrameSize)
	frame = append(frame, address, byte(command))
	frame = append(frame, payload[:]...)
	return appendCRC16(frame)
}

// DecodeFrame validates a reply frame: exactly 8 bytes, trailing CRC
// (little-endian) matching CRC16 over the leading 6 bytes. On success the
// verified frame is returned unchanged.
func DecodeFrame(frame []byte) ([]byte, error) {
	if len(frame) != InboundFrameSize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrFrameLength, len(frame), InboundFrameSize)
	}
	want := CRC16(frame[:InboundFrameSize-2])
	got := uint16(frame[6]) | uint16(frame[7])<<8
	if want != got {
		return nil, fmt.Errorf("%w: computed 0x%04X, frame carries 0x%04X", ErrCRCMismatch, want, got)
	}
	return frame, nil
}
