package aurora

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func scriptedReader(t *testing.T, transport *scriptTransport) InverterReader {
	t.Helper()
	reader, err := CreateInverterReaderWithTransport(transport, 2, fastConfig(), zap.NewNop(), nil)
	if err != nil {
		t.Fatal(err)
	}
	return reader
}

func TestReadMeasureEndToEnd(t *testing.T) {
	assert := assert.New(t)

	reply := []byte{0x00, 0x06, 0x43, 0x66, 0x80, 0x00, 0x35, 0xA0}
	transport := newScriptTransport()
	transport.script(CommandMeasure, byte(GridVoltage), reply)

	reader := scriptedReader(t, transport)
	measure, err := reader.ReadMeasure(context.Background(), GridVoltage, true)

	assert.NoError(err)
	assert.Equal(reply, measure.Raw, "verified frame returned unmodified")
	assert.Equal(230.5, measure.Value, "big-endian float at offset 2")
	assert.Equal(GridVoltage, measure.Type)
	// The transmitted frame is the pinned golden vector.
	assert.Equal([]byte{0x02, 0x3B, 0x01, 0x01, 0x00, 0x00, 0x00, 0x00, 0xBB, 0x27}, transport.writes[0])
}

func TestReadPartNumber(t *testing.T) {
	assert := assert.New(t)

	transport := newScriptTransport()
	transport.script(CommandPartNumber, 0, []byte{0x00, 0x2D, 0x33, 0x47, 0x37, 0x39, 0xCE, 0x5F})

	reader := scriptedReader(t, transport)
	pn, err := reader.ReadPartNumber(context.Background())

	assert.NoError(err)
	assert.Equal("-3G79", pn)
}

func TestReadVersionFormatting(t *testing.T) {
	assert := assert.New(t)

	transport := newScriptTransport()
	// ASCII "1KNN" at bytes [2..6).
	transport.script(CommandVersion, 0, []byte{0x00, 0x06, 0x31, 0x4B, 0x4E, 0x4E, 0x82, 0xC4})

	reader := scriptedReader(t, transport)
	version, err := reader.ReadVersion(context.Background())

	assert.NoError(err)
	assert.Equal("1-K-N-N", version, "multi-char firmware joined with dashes")
}

func TestFormatVersionSingleChar(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("1", formatVersion([]byte{'1', 0x00, 0x00, 0x00}), "single char unchanged")
	assert.Equal("", formatVersion([]byte{0x00, 0x00, 0x00, 0x00}))
}

func TestReadSerialNumber(t *testing.T) {
	assert := assert.New(t)

	transport := newScriptTransport()
	transport.script(CommandSerialNumber, 0, []byte{0x00, 0x31, 0x32, 0x33, 0x34, 0x35, 0xB8, 0x83})

	reader := scriptedReader(t, transport)
	serial, err := reader.ReadSerialNumber(context.Background())

	assert.NoError(err)
	assert.Equal("12345", serial)
}

func TestReadEnergyCounters(t *testing.T) {
	assert := assert.New(t)

	transport := newScriptTransport()
	transport.script(CommandCumulatedEnergy, byte(EnergyToday), []byte{0x00, 0x06, 0x00, 0x00, 0x14, 0xC9, 0x2B, 0x65})
	transport.script(CommandCumulatedEnergy, byte(EnergyMonth), []byte{0x00, 0x06, 0x00, 0x01, 0xE2, 0x40, 0xE6, 0x0E})
	transport.script(CommandCumulatedEnergy, byte(EnergyYear), []byte{0x00, 0x06, 0x00, 0x09, 0xFB, 0xF1, 0xAF, 0x2E})
	transport.script(CommandCumulatedEnergy, byte(EnergyTotal), []byte{0x00, 0x06, 0x00, 0x96, 0xB4, 0x3F, 0xCD, 0x07})
	// Partial counter carrying the 0xDB unset sentinel.
	transport.script(CommandCumulatedEnergy, byte(EnergyPartial), []byte{0x00, 0x06, 0xDB, 0x12, 0x34, 0x56, 0x26, 0x22})

	reader := scriptedReader(t, transport)
	counters, err := reader.ReadEnergyCounters(context.Background())

	assert.NoError(err)
	assert.Equal(5.321, counters.TodayKWh)
	assert.Equal(123.456, counters.MonthKWh)
	assert.Equal(654.321, counters.YearKWh)
	assert.Equal(9876.543, counters.TotalKWh)
	assert.Equal(0.0, counters.PartialKWh, "sentinel partial normalizes to zero")
	assert.Equal(5, len(transport.writes), "five sequential counter reads")
}

func TestScaleEnergySentinel(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(0.0, scaleEnergy(0xDB123456, EnergyPartial), "0xDB-prefixed partial is unset")
	assert.InDelta(3672061.014, scaleEnergy(0xDADF3456, EnergyPartial), 0.001, "other partial values pass through")
	assert.InDelta(3675403.350, scaleEnergy(0xDB123456, EnergyTotal), 0.001, "sentinel only applies to partial")
}

func TestReadExtendedSystemInfo(t *testing.T) {
	assert := assert.New(t)

	transport := newScriptTransport()
	transport.script(CommandStateRequest, 0, []byte{0x00, 0x06, 0x02, 0x02, 0x02, 0x00, 0x69, 0x73})
	transport.script(CommandPartNumber, 0, []byte{0x00, 0x2D, 0x33, 0x47, 0x37, 0x39, 0xCE, 0x5F})
	transport.script(CommandSerialNumber, 0, []byte{0x00, 0x31, 0x32, 0x33, 0x34, 0x35, 0xB8, 0x83})
	transport.script(CommandVersion, 0, []byte{0x00, 0x06, 0x31, 0x4B, 0x4E, 0x4E, 0x82, 0xC4})
	transport.script(CommandManufacturingDate, 0, []byte{0x00, 0x06, 0x32, 0x33, 0x31, 0x39, 0x61, 0xD3})

	reader := scriptedReader(t, transport)
	info, err := reader.ReadExtendedSystemInfo(context.Background())

	assert.NoError(err)
	assert.Equal("-3G79", info.PartNumber)
	assert.Equal("12345", info.SerialNumber)
	assert.Equal("1-K-N-N", info.Version)
	assert.Equal("23", info.ManufacturingDate.Week)
	assert.Equal("19", info.ManufacturingDate.Year)
	assert.Equal("Run", info.State.GlobalStateStr)
	assert.Equal("MPPT", info.State.DcDc1StateStr)
	assert.Equal("No Alarm", info.State.AlarmStateStr)

	// Sub-commands issued strictly in order.
	order := make([]Command, 0, len(transport.writes))
	for _, frame := range transport.writes {
		order = append(order, Command(frame[1]))
	}
	assert.Equal([]Command{CommandStateRequest, CommandPartNumber, CommandSerialNumber,
		CommandVersion, CommandManufacturingDate}, order)

	report := info.Report()
	assert.Contains(report, "Part Number:        -3G79")
	assert.Contains(report, "Firmware Version:   1-K-N-N")
	assert.Contains(report, "Global State:       Run")
}

func TestDebugProbePassThrough(t *testing.T) {
	assert := assert.New(t)

	reply := []byte{0x00, 0x06, 0xDE, 0xAD, 0xBE, 0xEF, 0x02, 0xD5}
	transport := newScriptTransport()
	transport.script(Command(200), 0, reply)

	reader := scriptedReader(t, transport)
	frame, err := reader.DebugProbe(context.Background(), 200)

	assert.NoError(err)
	assert.Equal(reply, frame, "verified reply returned unmodified")
	assert.Equal([]byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00}, transport.writes[0][2:8], "all-zero payload")
}

func TestStatusLookupFallback(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("Run", GlobalStateToString(6))
	assert.Equal("Unknown(0xFE)", GlobalStateToString(0xFE))
	assert.Equal("Unknown(0x7F)", AlarmStateToString(0x7F))
}
