package aurora

import "context"

// CreateTestInverterReader returns a reader with canned values and no wire
// behind it. Used by the actor layer tests.
func CreateTestInverterReader() (InverterReader, error) {
	return TestInverterReader{}, nil
}

type TestInverterReader struct {
}

func (inv TestInverterReader) Open() error {
	return nil
}

func (inv TestInverterReader) Close() error {
	return nil
}

func (inv TestInverterReader) ReadMeasure(ctx context.Context, measure MeasureType, global bool) (*Measure, error) {
	value := 0.0
	switch measure {
	case GridVoltage:
		value = 230.5
	case GridCurrent:
		value = 5.63
	case GridPower:
		value = 1297.7
	case Frequency:
		value = 50.02
	case InverterTemperature:
		value = 44.3
	case BoosterTemperature:
		value = 41.8
	case Input1Voltage:
		value = 312.4
	case Input1Current:
		value = 4.21
	}
	return &Measure{Type: measure, Value: value, Raw: make([]byte, InboundFrameSize)}, nil
}

func (inv TestInverterReader) ReadPartNumber(ctx context.Context) (string, error) {
	return "-3G79", nil
}

func (inv TestInverterReader) ReadVersion(ctx context.Context) (string, error) {
	return "1-K-N-N", nil
}

func (inv TestInverterReader) ReadSerialNumber(ctx context.Context) (string, error) {
	return "126014", nil
}

func (inv TestInverterReader) ReadManufacturingDate(ctx context.Context) (*ManufacturingDate, error) {
	return &ManufacturingDate{Week: "23", Year: "10"}, nil
}

func (inv TestInverterReader) ReadState(ctx context.Context) (*SystemState, error) {
	return decodeSystemState([]byte{0, 6, 2, 2, 2, 0, 0, 0}), nil
}

func (inv TestInverterReader) ReadEnergyCounter(ctx context.Context, counter EnergyCounterType) (uint32, error) {
	switch counter {
	case EnergyToday:
		return 5321, nil
	case EnergyMonth:
		return 123456, nil
	case EnergyYear:
		return 654321, nil
	case EnergyTotal:
		return 9876543, nil
	case EnergyPartial:
		return 0xDB123456, nil
	}
	return 0, nil
}

func (inv TestInverterReader) ReadEnergyCounters(ctx context.Context) (*EnergyCounters, error) {
	return &EnergyCounters{
		TodayKWh:   5.321,
		MonthKWh:   123.456,
		YearKWh:    654.321,
		TotalKWh:   9876.543,
		PartialKWh: 0,
	}, nil
}

func (inv TestInverterReader) ReadExtendedSystemInfo(ctx context.Context) (*ExtendedSystemInfo, error) {
	state, _ := inv.ReadState(ctx)
	return &ExtendedSystemInfo{
		PartNumber:        "-3G79",
		SerialNumber:      "126014",
		Version:           "1-K-N-N",
		ManufacturingDate: ManufacturingDate{Week: "23", Year: "10"},
		State:             *state,
	}, nil
}

func (inv TestInverterReader) DebugProbe(ctx context.Context, command byte) ([]byte, error) {
	return []byte{0, 6, 0, 0, 0, 0, 0, 0}, nil
}

// CreateBrokenTestInverterReader returns a reader whose every wire
// operation fails with ErrCommunicationTimeout, the way a wedged or
// disconnected bus looks after the exchange engine exhausts its retries.
func CreateBrokenTestInverterReader() (InverterReader, error) {
	return BrokenTestInverterReader{}, nil
}

type BrokenTestInverterReader struct {
}

func (inv BrokenTestInverterReader) Open() error {
	return nil
}

func (inv BrokenTestInverterReader) Close() error {
	return nil
}

func (inv BrokenTestInverterReader) ReadMeasure(ctx context.Context, measure MeasureType, global bool) (*Measure, error) {
	return nil, ErrCommunicationTimeout
}

func (inv BrokenTestInverterReader) ReadPartNumber(ctx context.Context) (string, error) {
	return "", ErrCommunicationTimeout
}

func (inv BrokenTestInverterReader) ReadVersion(ctx context.Context) (string, error) {
	return "", ErrCommunicationTimeout
}

func (inv BrokenTestInverterReader) ReadSerialNumber(ctx context.Context) (string, error) {
	return "", ErrCommunicationTimeout
}

func (inv BrokenTestInverterReader) ReadManufacturingDate(ctx context.Context) (*ManufacturingDate, error) {
	return nil, ErrCommunicationTimeout
}

func (inv BrokenTestInverterReader) ReadState(ctx context.Context) (*SystemState, error) {
	return nil, ErrCommunicationTimeout
}

func (inv BrokenTestInverterReader) ReadEnergyCounter(ctx context.Context, counter EnergyCounterType) (uint32, error) {
	return 0, ErrCommunicationTimeout
}

func (inv BrokenTestInverterReader) ReadEnergyCounters(ctx context.Context) (*EnergyCounters, error) {
	return nil, ErrCommunicationTimeout
}

func (inv BrokenTestInverterReader) ReadExtendedSystemInfo(ctx context.Context) (*ExtendedSystemInfo, error) {
	return nil, ErrCommunicationTimeout
}

func (inv BrokenTestInverterReader) DebugProbe(ctx context.Context, command byte) ([]byte, error) {
	return nil, ErrCommunicationTimeout
}
