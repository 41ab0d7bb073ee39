package aurora

import "errors"

var (
	// ErrPortNotOpen is returned when an operation is attempted on a
	// closed or absent transport. The caller must reconnect.
	ErrPortNotOpen = errors.New("aurora: port not open")

	// ErrFrameLength marks a reply that is not exactly 8 bytes long.
	ErrFrameLength = errors.New("aurora: invalid reply frame length")

	// ErrCRCMismatch marks a reply whose trailing CRC does not match.
	ErrCRCMismatch = errors.New("aurora: reply CRC mismatch")

	// ErrReplyTimeout marks a single attempt that did not assemble a
	// full reply before its deadline. Retried inside the exchange.
	ErrReplyTimeout = errors.New("aurora: reply timeout")

	// ErrCommunicationTimeout is surfaced after all attempts for one
	// logical command are exhausted. The port has been force-reopened.
	ErrCommunicationTimeout = errors.New("aurora: communication timeout")

	// ErrReadTimeout is the transport-level signal that no byte arrived
	// within one read round.
	ErrReadTimeout = errors.New("aurora: serial read timeout")
)
