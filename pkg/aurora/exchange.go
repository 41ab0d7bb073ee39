package aurora

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Config holds the timing knobs of the exchange engine. Zero fields are
// replaced by the defaults below, which match the device turnaround times
// observed on Aurora PVI inverters.
type Config struct {
	// ReadTimeout bounds the assembly of one full reply and is also the
	// serial per-read timeout.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// SettleDelay is the pause between transmit and the first read.
	SettleDelay time.Duration
	// BackoffStep scales the linear inter-attempt backoff: after failed
	// attempt n the engine waits n * BackoffStep.
	BackoffStep time.Duration
	// Attempts is the number of tries per logical command.
	Attempts int
	// MaxReadRounds bounds the number of single-byte read rounds per attempt.
	MaxReadRounds int
	// Recovery is invoked once, after the final failed attempt.
	Recovery RecoveryPolicy
}

const (
	DefaultReadTimeout   = 3000 * time.Millisecond
	DefaultWriteTimeout  = 2000 * time.Millisecond
	DefaultSettleDelay   = 80 * time.Millisecond
	DefaultBackoffStep   = 100 * time.Millisecond
	DefaultReopenSettle  = 500 * time.Millisecond
	DefaultAttempts      = 3
	DefaultMaxReadRounds = 10
)

func DefaultConfig() Config {
	return Config{
		ReadTimeout:   DefaultReadTimeout,
		WriteTimeout:  DefaultWriteTimeout,
		SettleDelay:   DefaultSettleDelay,
		BackoffStep:   DefaultBackoffStep,
		Attempts:      DefaultAttempts,
		MaxReadRounds: DefaultMaxReadRounds,
		Recovery:      ReopenRecovery{Settle: DefaultReopenSettle},
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = def.ReadTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = def.WriteTimeout
	}
	if c.SettleDelay <= 0 {
		c.SettleDelay = def.SettleDelay
	}
	if c.BackoffStep <= 0 {
		c.BackoffStep = def.BackoffStep
	}
	if c.Attempts <= 0 {
		c.Attempts = def.Attempts
	}
	if c.MaxReadRounds <= 0 {
		c.MaxReadRounds = def.MaxReadRounds
	}
	if c.Recovery == nil {
		c.Recovery = def.Recovery
	}
	return c
}

// RecoveryPolicy decides how to bring a wedged port back after a logical
// command has exhausted its attempts. The default closes the port, waits,
// and opens it again; stricter policies can be substituted without touching
// the engine.
type RecoveryPolicy interface {
	Recover(ctx context.Context, t Transport) error
}

// ReopenRecovery is the default close/settle/open policy. It unwedges
// devices that stop responding on the UART after a burst of malformed
// traffic.
type ReopenRecovery struct {
	Settle time.Duration
}

func (r ReopenRecovery) Recover(ctx context.Context, t Transport) error {
	if err := t.Close(); err != nil {
		return err
	}
	if err := sleepContext(ctx, r.Settle); err != nil {
		return err
	}
	return t.Open()
}

// Instrument receives timing and raw-frame callbacks from the exchange
// engine. Used for trace logging and diagnostics dumps.
type Instrument struct {
	RecordTime  func(op string, elapsed time.Duration)
	RecordFrame func(direction string, frame []byte)
}

func recordTimer(op string, instrument []Instrument) func() {
	if instrument == nil {
		return func() {}
	}
	start := time.Now()
	return func() {
		elapsed := time.Since(start)
		for i := range instrument {
			if instrument[i].RecordTime != nil {
				instrument[i].RecordTime(op, elapsed)
			}
		}
	}
}

func recordFrame(direction string, frame []byte, instrument []Instrument) {
	for i := range instrument {
		if instrument[i].RecordFrame != nil {
			instrument[i].RecordFrame(direction, frame)
		}
	}
}

// exchanger runs one logical command at a time against a Transport. Not
// reentrant: callers serialize commands against one instance.
type exchanger struct {
	transport  Transport
	address    byte
	cfg        Config
	logger     *zap.Logger
	instrument []Instrument
}

// exchange performs one complete request/validated-reply cycle, retries
// included. Every wait observes ctx; cancellation aborts promptly and
// leaves the transport as-is.
func (e *exchanger) exchange(ctx context.Context, command Command, payload [payloadSize]byte) ([]byte, error) {
	if e.transport == nil {
		return nil, ErrPortNotOpen
	}
	defer recordTimer("Exchange", e.instrument)()

	var lastErr error
	for attempt := 1; attempt <= e.cfg.Attempts; attempt++ {
		frame, err := e.attempt(ctx, command, payload)
		if err == nil {
			return frame, nil
		}
		if ctx.Err() != nil {
			// Cancelled: unknown outcome, no forced reopen.
			return nil, ctx.Err()
		}
		if errors.Is(err, ErrPortNotOpen) {
			// Fatal for this call, the caller must reconnect.
			return nil, err
		}
		lastErr = err
		e.logger.Debug("exchange attempt failed",
			zap.Uint8("command", uint8(command)),
			zap.Int("attempt", attempt),
			zap.Error(err))
		if err := sleepContext(ctx, time.Duration(attempt)*e.cfg.BackoffStep); err != nil {
			return nil, err
		}
	}

	// The device may have wedged its UART; force a close/reopen before
	// surfacing the failure. A reopen failure is only a warning here,
	// subsequent commands will fail with ErrPortNotOpen.
	if err := e.cfg.Recovery.Recover(ctx, e.transport); err != nil {
		e.logger.Warn("port reopen after exhausted retries failed", zap.Error(err))
	}
	return nil, fmt.Errorf("%w: command %d after %d attempts: %v",
		ErrCommunicationTimeout, command, e.cfg.Attempts, lastErr)
}

func (e *exchanger) attempt(ctx context.Context, command Command, payload [payloadSize]byte) ([]byte, error) {
	// Stale bytes from a misaligned earlier reply would shift the frame.
	if err := e.transport.DiscardInput(); err != nil {
		return nil, err
	}

	tx := EncodeFrame(e.address, command, payload)
	recordFrame("tx", tx, e.instrument)
	e.logger.Debug("tx", zap.String("frame", fmt.Sprintf("% x", tx)))
	if err := e.transport.Write(tx); err != nil {
		return nil, err
	}

	// Device turnaround time.
	if err := sleepContext(ctx, e.cfg.SettleDelay); err != nil {
		return nil, err
	}

	rx, err := e.readReply(ctx)
	if err != nil {
		return nil, err
	}
	recordFrame("rx", rx, e.instrument)
	e.logger.Debug("rx", zap.String("frame", fmt.Sprintf("% x", rx)))

	return DecodeFrame(rx)
}

// readReply assembles exactly 8 bytes by repeated single-byte reads,
// bounded by the reply deadline and a fixed number of read rounds. A
// partial frame is an attempt failure, never a crash.
func (e *exchanger) readReply(ctx context.Context) ([]byte, error) {
	frame := make([]byte, 0, InboundFrameSize)
	deadline := time.Now().Add(e.cfg.ReadTimeout)
	for round := 0; round < e.cfg.MaxReadRounds; round++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if time.Now().After(deadline) {
			break
		}
		b, err := e.transport.ReadByte()
		if errors.Is(err, ErrReadTimeout) {
			continue
		}
		if err != nil {
			return nil, err
		}
		frame = append(frame, b)
		if len(frame) == InboundFrameSize {
			return frame, nil
		}
	}
	return nil, fmt.Errorf("%w: got %d of %d bytes", ErrReplyTimeout, len(frame), InboundFrameSize)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
