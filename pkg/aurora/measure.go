package aurora

import (
	"fmt"
	"strings"
)

// MeasureType selects which physical quantity a measurement command reads
// from the DSP. It is purely a selector; the values are the register codes
// from the Aurora protocol documentation.
type MeasureType byte

const (
	GridVoltage         MeasureType = 1
	GridCurrent         MeasureType = 2
	GridPower           MeasureType = 3
	Frequency           MeasureType = 4
	VBulk               MeasureType = 5
	ILeakDcDc           MeasureType = 6
	ILeakInverter       MeasureType = 7
	Pin1                MeasureType = 8
	Pin2                MeasureType = 9
	InverterTemperature MeasureType = 21
	BoosterTemperature  MeasureType = 22
	Input1Voltage       MeasureType = 23
	Input1Current       MeasureType = 25
	Input2Voltage       MeasureType = 26
	Input2Current       MeasureType = 27
	GridVoltageDcDc     MeasureType = 28
	GridFrequencyDcDc   MeasureType = 29
	IsolationResistance MeasureType = 30
	VBulkDcDc           MeasureType = 31
	AverageGridVoltage  MeasureType = 32
	VBulkMid            MeasureType = 33
	PowerPeak           MeasureType = 34
	PowerPeakToday      MeasureType = 35
)

type measureInfo struct {
	name string
	unit string
}

var measures = map[MeasureType]measureInfo{
	GridVoltage:         {"grid_voltage", "V"},
	GridCurrent:         {"grid_current", "A"},
	GridPower:           {"grid_power", "W"},
	Frequency:           {"grid_frequency", "Hz"},
	VBulk:               {"bulk_voltage", "V"},
	ILeakDcDc:           {"leak_current_dcdc", "A"},
	ILeakInverter:       {"leak_current_inverter", "A"},
	Pin1:                {"input_1_power", "W"},
	Pin2:                {"input_2_power", "W"},
	InverterTemperature: {"inverter_temperature", "°C"},
	BoosterTemperature:  {"booster_temperature", "°C"},
	Input1Voltage:       {"input_1_voltage", "V"},
	Input1Current:       {"input_1_current", "A"},
	Input2Voltage:       {"input_2_voltage", "V"},
	Input2Current:       {"input_2_current", "A"},
	GridVoltageDcDc:     {"grid_voltage_dcdc", "V"},
	GridFrequencyDcDc:   {"grid_frequency_dcdc", "Hz"},
	IsolationResistance: {"isolation_resistance", "MOhm"},
	VBulkDcDc:           {"bulk_voltage_dcdc", "V"},
	AverageGridVoltage:  {"grid_voltage_average", "V"},
	VBulkMid:            {"bulk_voltage_mid", "V"},
	PowerPeak:           {"power_peak", "W"},
	PowerPeakToday:      {"power_peak_today", "W"},
}

func (m MeasureType) String() string {
	if info, ok := measures[m]; ok {
		return info.name
	}
	return fmt.Sprintf("measure_0x%02X", byte(m))
}

func (m MeasureType) Unit() string {
	if info, ok := measures[m]; ok {
		return info.unit
	}
	return ""
}

// ParseMeasureType resolves a measure name as produced by String().
func ParseMeasureType(name string) (MeasureType, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for mt, info := range measures {
		if info.name == name {
			return mt, nil
		}
	}
	return 0, fmt.Errorf("aurora: unknown measure type %q", name)
}
