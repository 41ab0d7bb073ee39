package aurora

import (
	"fmt"
	"strings"
)

// Measure is one decoded measurement reply. Raw keeps the verified 8-byte
// frame so callers that need an integer decode can apply their own rule.
type Measure struct {
	Type  MeasureType
	Value float64
	Raw   []byte
}

// EnergyCounterType selects one of the cumulated energy registers.
type EnergyCounterType byte

const (
	EnergyToday   EnergyCounterType = 0
	EnergyWeek    EnergyCounterType = 1
	EnergyMonth   EnergyCounterType = 3
	EnergyYear    EnergyCounterType = 4
	EnergyTotal   EnergyCounterType = 5
	EnergyPartial EnergyCounterType = 6
)

// energyUnsetSentinel is the leading byte of a partial counter the device
// has never latched. Such raw values normalize to zero.
const energyUnsetSentinel = 0xDB

// EnergyCounters holds the five scaled energy registers in kWh.
type EnergyCounters struct {
	TodayKWh   float64
	MonthKWh   float64
	YearKWh    float64
	TotalKWh   float64
	PartialKWh float64
}

// scaleEnergy turns a raw register value into kWh, applying the
// unset-partial sentinel rule first.
func scaleEnergy(raw uint32, counter EnergyCounterType) float64 {
	if counter == EnergyPartial && byte(raw>>24) == energyUnsetSentinel {
		raw = 0
	}
	return float64(raw) / 1000
}

// SystemState is the decoded state-request reply.
type SystemState struct {
	TransmissionState byte
	GlobalState       byte
	InverterState     byte
	DcDc1State        byte
	DcDc2State        byte
	AlarmState        byte

	GlobalStateStr   string
	InverterStateStr string
	DcDc1StateStr    string
	DcDc2StateStr    string
	AlarmStateStr    string
}

// ManufacturingDate is the week/year pair stamped on the device.
type ManufacturingDate struct {
	Week string
	Year string
}

// ExtendedSystemInfo is the composite identity + state read.
type ExtendedSystemInfo struct {
	PartNumber        string
	SerialNumber      string
	Version           string
	ManufacturingDate ManufacturingDate
	State             SystemState
}

// Report renders the fixed key/value block shown to operators.
func (i ExtendedSystemInfo) Report() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Part Number:        %s\n", i.PartNumber)
	fmt.Fprintf(&b, "Serial Number:      %s\n", i.SerialNumber)
	fmt.Fprintf(&b, "Firmware Version:   %s\n", i.Version)
	fmt.Fprintf(&b, "Manufactured:       week %s of 20%s\n", i.ManufacturingDate.Week, i.ManufacturingDate.Year)
	fmt.Fprintf(&b, "Global State:       %s\n", i.State.GlobalStateStr)
	fmt.Fprintf(&b, "Inverter State:     %s\n", i.State.InverterStateStr)
	fmt.Fprintf(&b, "DC/DC 1 State:      %s\n", i.State.DcDc1StateStr)
	fmt.Fprintf(&b, "DC/DC 2 State:      %s\n", i.State.DcDc2StateStr)
	fmt.Fprintf(&b, "Alarm:              %s\n", i.State.AlarmStateStr)
	return b.String()
}
