package aurora

import "fmt"

// Status code tables from the Aurora protocol documentation. Unmapped codes
// render as Unknown(0xNN) rather than failing the decode.

var transmissionStates = map[byte]string{
	0:  "Everything is OK",
	51: "Command is not implemented",
	52: "Variable does not exist",
	53: "Variable value is out of range",
	54: "EEprom not accessible",
	55: "Not toggled Service Mode",
	56: "Cannot send the command to internal micro",
	57: "Command not executed",
	58: "The variable is not available, retry",
}

var globalStates = map[byte]string{
	0:  "Sending Parameters",
	1:  "Wait Sun/Grid",
	2:  "Checking Grid",
	3:  "Measuring Riso",
	4:  "DcDc Start",
	5:  "Inverter Start",
	6:  "Run",
	7:  "Recovery",
	8:  "Pause",
	9:  "Ground Fault",
	10: "OTH Fault",
	11: "Address Setting",
	12: "Self Test",
	13: "Self Test Fail",
	14: "Sensor Test + Measure Riso",
	15: "Leak Fault",
	16: "Waiting for manual reset",
	17: "Internal Error E026",
	18: "Internal Error E027",
	19: "Internal Error E028",
}

var inverterStates = map[byte]string{
	0:  "Stand By",
	1:  "Checking Grid",
	2:  "Run",
	3:  "Bulk Over Voltage",
	4:  "Out Over Current",
	5:  "IGBT Sat",
	6:  "Bulk Under Voltage",
	7:  "Degauss Error",
	8:  "No Parameters",
	9:  "Bulk Low",
	10: "Grid Over Voltage",
	11: "Communication Error",
	12: "Degaussing",
	13: "Starting",
	14: "Bulk Cap Fail",
	15: "Leak Fail",
	16: "DcDc Fail",
	17: "Ileak Sensor Fail",
	18: "SelfTest: relay inverter",
	19: "SelfTest: wait for sensor test",
}

var dcdcStates = map[byte]string{
	0:  "DcDc OFF",
	1:  "Ramp Start",
	2:  "MPPT",
	3:  "Not Used",
	4:  "Input Over Current",
	5:  "Input Under Voltage",
	6:  "Input Over Voltage",
	7:  "Input Low",
	8:  "No Parameters",
	9:  "Bulk Over Voltage",
	10: "Communication Error",
	11: "Ramp Fail",
	12: "Internal Error",
	13: "Input mode Error",
	14: "Ground Fault",
	15: "Inverter Fail",
}

var alarmStates = map[byte]string{
	0:  "No Alarm",
	1:  "Sun Low",
	2:  "Input Over Current",
	3:  "Input Under Voltage",
	4:  "Input Over Voltage",
	5:  "Sun Low",
	6:  "No Parameters",
	7:  "Bulk Over Voltage",
	8:  "Communication Error",
	9:  "Output Over Current",
	10: "IGBT Sat",
	11: "Bulk Under Voltage",
	12: "Internal Error",
	13: "Grid Fail",
	14: "Bulk Low",
	15: "Ramp Fail",
	16: "Dc/Dc Fail",
	17: "Wrong Mode",
	18: "Ground Fault",
	19: "Over Temperature",
	20: "Bulk Cap Fail",
	21: "Inverter Fail",
}

func lookupState(table map[byte]string, code byte) string {
	if label, ok := table[code]; ok {
		return label
	}
	return fmt.Sprintf("Unknown(0x%02X)", code)
}

func TransmissionStateToString(code byte) string { return lookupState(transmissionStates, code) }
func GlobalStateToString(code byte) string       { return lookupState(globalStates, code) }
func InverterStateToString(code byte) string     { return lookupState(inverterStates, code) }
func DcDcStateToString(code byte) string         { return lookupState(dcdcStates, code) }
func AlarmStateToString(code byte) string        { return lookupState(alarmStates, code) }
