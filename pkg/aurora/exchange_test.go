package aurora

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// scriptTransport replays canned reply frames keyed by command byte and
// first payload byte, and records everything the engine does to it.
type scriptTransport struct {
	replies map[[2]byte][]byte

	pending  []byte
	writes   [][]byte
	opens    int
	closes   int
	discards int
}

func newScriptTransport() *scriptTransport {
	return &scriptTransport{replies: map[[2]byte][]byte{}}
}

func (t *scriptTransport) script(command Command, selector byte, reply []byte) {
	t.replies[[2]byte{byte(command), selector}] = reply
}

func (t *scriptTransport) Open() error {
	t.opens++
	return nil
}

func (t *scriptTransport) Close() error {
	t.closes++
	return nil
}

func (t *scriptTransport) Write(p []byte) error {
	frame := make([]byte, len(p))
	copy(frame, p)
	t.writes = append(t.writes, frame)
	t.pending = append([]byte(nil), t.replies[[2]byte{p[1], p[2]}]...)
	return nil
}

func (t *scriptTransport) ReadByte() (byte, error) {
	if len(t.pending) == 0 {
		return 0, ErrReadTimeout
	}
	b := t.pending[0]
	t.pending = t.pending[1:]
	return b, nil
}

func (t *scriptTransport) DiscardInput() error {
	t.discards++
	t.pending = nil
	return nil
}

func fastConfig() *Config {
	return &Config{
		ReadTimeout:   50 * time.Millisecond,
		WriteTimeout:  50 * time.Millisecond,
		SettleDelay:   1 * time.Millisecond,
		BackoffStep:   20 * time.Millisecond,
		Attempts:      3,
		MaxReadRounds: 10,
		Recovery:      ReopenRecovery{Settle: 5 * time.Millisecond},
	}
}

func TestExchangeRetryExhaustion(t *testing.T) {
	assert := assert.New(t)

	transport := newScriptTransport()
	// Valid length, broken CRC: every attempt must fail.
	transport.script(CommandMeasure, 1, []byte{0x00, 0x06, 0x43, 0x66, 0x80, 0x00, 0x00, 0x00})

	reader, err := CreateInverterReaderWithTransport(transport, 2, fastConfig(), zap.NewNop(), nil)
	assert.NoError(err)

	start := time.Now()
	_, err = reader.ReadMeasure(context.Background(), GridVoltage, true)
	elapsed := time.Since(start)

	assert.ErrorIs(err, ErrCommunicationTimeout, "exhaustion surfaces as communication timeout")
	assert.Equal(3, len(transport.writes), "exactly 3 attempts")
	assert.Equal(1, transport.closes, "one forced close")
	assert.Equal(1, transport.opens, "one forced reopen")
	// Linear backoff 1x+2x+3x the step, settles on top.
	assert.GreaterOrEqual(elapsed, 120*time.Millisecond, "linear backoff observed")
}

func TestExchangeShortReply(t *testing.T) {
	assert := assert.New(t)

	transport := newScriptTransport()
	transport.script(CommandMeasure, 1, []byte{0x00, 0x06, 0x43})

	reader, err := CreateInverterReaderWithTransport(transport, 2, fastConfig(), zap.NewNop(), nil)
	assert.NoError(err)

	_, err = reader.ReadMeasure(context.Background(), GridVoltage, true)

	assert.ErrorIs(err, ErrCommunicationTimeout, "partial frames count as failed attempts")
	assert.Equal(3, len(transport.writes))
	assert.Equal(1, transport.opens, "reopen after exhaustion")
}

func TestExchangeCancellation(t *testing.T) {
	assert := assert.New(t)

	transport := newScriptTransport()

	cfg := fastConfig()
	cfg.SettleDelay = 500 * time.Millisecond
	reader, err := CreateInverterReaderWithTransport(transport, 2, cfg, zap.NewNop(), nil)
	assert.NoError(err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err = reader.ReadMeasure(ctx, GridVoltage, true)

	assert.ErrorIs(err, context.Canceled, "cancellation surfaces ctx error")
	assert.Less(time.Since(start), 200*time.Millisecond, "cancellation aborts promptly")
	assert.Equal(0, transport.closes, "no forced reopen on cancellation")
}

// wrappingTransport wraps the read-timeout sentinel for its first reads,
// like a port driver that decorates errors with context.
type wrappingTransport struct {
	*scriptTransport
	slowRounds int
}

func (t *wrappingTransport) ReadByte() (byte, error) {
	if t.slowRounds > 0 {
		t.slowRounds--
		return 0, fmt.Errorf("serial: %w", ErrReadTimeout)
	}
	return t.scriptTransport.ReadByte()
}

func TestExchangeWrappedReadTimeout(t *testing.T) {
	assert := assert.New(t)

	base := newScriptTransport()
	base.script(CommandMeasure, 1, []byte{0x00, 0x06, 0x43, 0x66, 0x80, 0x00, 0x35, 0xA0})
	transport := &wrappingTransport{scriptTransport: base, slowRounds: 2}

	reader, err := CreateInverterReaderWithTransport(transport, 2, fastConfig(), zap.NewNop(), nil)
	assert.NoError(err)

	measure, err := reader.ReadMeasure(context.Background(), GridVoltage, true)

	assert.NoError(err, "wrapped read timeouts spend read rounds, not the attempt")
	assert.Equal(1, len(base.writes), "single attempt")
	assert.Equal(230.5, measure.Value)
}

func TestExchangeSuccessResetsNothing(t *testing.T) {
	assert := assert.New(t)

	transport := newScriptTransport()
	transport.script(CommandMeasure, 1, []byte{0x00, 0x06, 0x43, 0x66, 0x80, 0x00, 0x35, 0xA0})

	reader, err := CreateInverterReaderWithTransport(transport, 2, fastConfig(), zap.NewNop(), nil)
	assert.NoError(err)

	measure, err := reader.ReadMeasure(context.Background(), GridVoltage, true)

	assert.NoError(err)
	assert.Equal(1, len(transport.writes), "single attempt on success")
	assert.Equal(0, transport.closes, "no reopen on success")
	assert.Equal(1, transport.discards, "stale input discarded before transmit")
	assert.Equal(230.5, measure.Value)
}
