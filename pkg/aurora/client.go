package aurora

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// InverterReader is the command API of one Aurora inverter on the bus.
// Implementations are not reentrant: callers serialize commands against one
// instance, and composite reads issue their sub-commands strictly in order
// because the device is a single half-duplex responder.
type InverterReader interface {
	Open() error
	Close() error

	ReadMeasure(ctx context.Context, measure MeasureType, global bool) (*Measure, error)
	ReadPartNumber(ctx context.Context) (string, error)
	ReadVersion(ctx context.Context) (string, error)
	ReadSerialNumber(ctx context.Context) (string, error)
	ReadManufacturingDate(ctx context.Context) (*ManufacturingDate, error)
	ReadState(ctx context.Context) (*SystemState, error)
	ReadEnergyCounter(ctx context.Context, counter EnergyCounterType) (uint32, error)
	ReadEnergyCounters(ctx context.Context) (*EnergyCounters, error)
	ReadExtendedSystemInfo(ctx context.Context) (*ExtendedSystemInfo, error)

	// DebugProbe sends an arbitrary command byte with an all-zero payload
	// and returns the verified 8-byte reply unmodified.
	DebugProbe(ctx context.Context, command byte) ([]byte, error)
}

// InverterSerialReader talks the Aurora protocol over an RS-485 serial link.
type InverterSerialReader struct {
	exchanger

	logger *zap.Logger
}

func (inv *InverterSerialReader) Open() error {
	return inv.transport.Open()
}

func (inv *InverterSerialReader) Close() error {
	return inv.transport.Close()
}

func (inv *InverterSerialReader) ReadMeasure(ctx context.Context, measure MeasureType, global bool) (*Measure, error) {
	var payload [payloadSize]byte
	payload[0] = byte(measure)
	if global {
		payload[1] = 1
	}
	frame, err := inv.exchange(ctx, CommandMeasure, payload)
	if err != nil {
		return nil, err
	}
	return &Measure{
		Type:  measure,
		Value: AsFloatBigEndian(frame, 2),
		Raw:   frame,
	}, nil
}

func (inv *InverterSerialReader) ReadPartNumber(ctx context.Context) (string, error) {
	frame, err := inv.exchange(ctx, CommandPartNumber, [payloadSize]byte{})
	if err != nil {
		return "", err
	}
	return trimASCII(frame[1:6]), nil
}

func (inv *InverterSerialReader) ReadSerialNumber(ctx context.Context) (string, error) {
	frame, err := inv.exchange(ctx, CommandSerialNumber, [payloadSize]byte{})
	if err != nil {
		return "", err
	}
	return trimASCII(frame[1:6]), nil
}

// ReadVersion reads the firmware release. Multi-character releases are
// joined with "-" to match the vendor display convention, e.g. "1-K-N-N".
func (inv *InverterSerialReader) ReadVersion(ctx context.Context) (string, error) {
	frame, err := inv.exchange(ctx, CommandVersion, [payloadSize]byte{})
	if err != nil {
		return "", err
	}
	return formatVersion(frame[2:6]), nil
}

func (inv *InverterSerialReader) ReadManufacturingDate(ctx context.Context) (*ManufacturingDate, error) {
	frame, err := inv.exchange(ctx, CommandManufacturingDate, [payloadSize]byte{})
	if err != nil {
		return nil, err
	}
	return &ManufacturingDate{
		Week: trimASCII(frame[2:4]),
		Year: trimASCII(frame[4:6]),
	}, nil
}

func (inv *InverterSerialReader) ReadState(ctx context.Context) (*SystemState, error) {
	frame, err := inv.exchange(ctx, CommandStateRequest, [payloadSize]byte{})
	if err != nil {
		return nil, err
	}
	return decodeSystemState(frame), nil
}

func (inv *InverterSerialReader) ReadEnergyCounter(ctx context.Context, counter EnergyCounterType) (uint32, error) {
	var payload [payloadSize]byte
	payload[0] = byte(counter)
	frame, err := inv.exchange(ctx, CommandCumulatedEnergy, payload)
	if err != nil {
		return 0, err
	}
	return AsUint32(frame, 2), nil
}

// ReadEnergyCounters reads the five cumulated energy registers in order and
// scales them to kWh.
func (inv *InverterSerialReader) ReadEnergyCounters(ctx context.Context) (*EnergyCounters, error) {
	var counters EnergyCounters
	for _, read := range []struct {
		counter EnergyCounterType
		dest    *float64
	}{
		{EnergyToday, &counters.TodayKWh},
		{EnergyMonth, &counters.MonthKWh},
		{EnergyYear, &counters.YearKWh},
		{EnergyTotal, &counters.TotalKWh},
		{EnergyPartial, &counters.PartialKWh},
	} {
		raw, err := inv.ReadEnergyCounter(ctx, read.counter)
		if err != nil {
			return nil, err
		}
		*read.dest = scaleEnergy(raw, read.counter)
	}
	return &counters, nil
}

// ReadExtendedSystemInfo composes the state request with the identity
// reads. The sub-commands run strictly sequentially.
func (inv *InverterSerialReader) ReadExtendedSystemInfo(ctx context.Context) (*ExtendedSystemInfo, error) {
	state, err := inv.ReadState(ctx)
	if err != nil {
		return nil, err
	}
	partNumber, err := inv.ReadPartNumber(ctx)
	if err != nil {
		return nil, err
	}
	serial, err := inv.ReadSerialNumber(ctx)
	if err != nil {
		return nil, err
	}
	version, err := inv.ReadVersion(ctx)
	if err != nil {
		return nil, err
	}
	mfg, err := inv.ReadManufacturingDate(ctx)
	if err != nil {
		return nil, err
	}
	return &ExtendedSystemInfo{
		PartNumber:        partNumber,
		SerialNumber:      serial,
		Version:           version,
		ManufacturingDate: *mfg,
		State:             *state,
	}, nil
}

func (inv *InverterSerialReader) DebugProbe(ctx context.Context, command byte) ([]byte, error) {
	return inv.exchange(ctx, Command(command), [payloadSize]byte{})
}

func decodeSystemState(frame []byte) *SystemState {
	state := &SystemState{
		TransmissionState: frame[0],
		GlobalState:       frame[1],
		InverterState:     frame[2],
		DcDc1State:        frame[3],
		DcDc2State:        frame[4],
		AlarmState:        frame[5],
	}
	state.GlobalStateStr = GlobalStateToString(state.GlobalState)
	state.InverterStateStr = InverterStateToString(state.InverterState)
	state.DcDc1StateStr = DcDcStateToString(state.DcDc1State)
	state.DcDc2StateStr = DcDcStateToString(state.DcDc2State)
	state.AlarmStateStr = AlarmStateToString(state.AlarmState)
	return state
}

func trimASCII(data []byte) string {
	return strings.TrimRight(string(data), "\x00 ")
}

func formatVersion(data []byte) string {
	chars := trimASCII(data)
	if len(chars) <= 1 {
		return chars
	}
	parts := make([]string, 0, len(chars))
	for _, c := range chars {
		parts = append(parts, string(c))
	}
	return strings.Join(parts, "-")
}

func traceLoggerInstrument(logger *zap.Logger) *Instrument {
	return &Instrument{
		RecordTime: func(op string, elapsed time.Duration) {
			logger.Debug("aurora exchange", zap.String("op", op), zap.Int64("millis", elapsed.Milliseconds()))
		},
		RecordFrame: func(direction string, frame []byte) {
			logger.Debug("aurora frame", zap.String("dir", direction), zap.String("bytes", fmt.Sprintf("% x", frame)))
		},
	}
}

// CreateInverterSerialReader connects the command layer to a physical
// serial port. A nil cfg uses the protocol defaults; instrument, when set,
// receives every raw transmitted and received byte sequence.
func CreateInverterSerialReader(device string, baudRate uint, address uint8, cfg *Config,
	logger *zap.Logger, instrument *Instrument) (InverterReader, error) {
	if address == 0 {
		return nil, fmt.Errorf("aurora: invalid bus address %d", address)
	}
	config := Config{}
	if cfg != nil {
		config = *cfg
	}
	config = config.withDefaults()

	transport := NewSerialTransport(device, baudRate, config.ReadTimeout, config.WriteTimeout)
	return CreateInverterReaderWithTransport(transport, address, &config, logger, instrument)
}

// CreateInverterReaderWithTransport wires an arbitrary Transport, which is
// how tests substitute a scripted port.
func CreateInverterReaderWithTransport(transport Transport, address uint8, cfg *Config,
	logger *zap.Logger, instrument *Instrument) (InverterReader, error) {
	if transport == nil {
		return nil, ErrPortNotOpen
	}
	config := Config{}
	if cfg != nil {
		config = *cfg
	}
	config = config.withDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}

	inst := []Instrument{*traceLoggerInstrument(logger.With(zap.Uint8("inverter", address)))}
	if instrument != nil {
		inst = append(inst, *instrument)
	}

	return &InverterSerialReader{
		exchanger: exchanger{
			transport:  transport,
			address:    address,
			cfg:        config,
			logger:     logger,
			instrument: inst,
		},
		logger: logger,
	}, nil
}
