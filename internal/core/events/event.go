package events

import (
	. "auroramon/internal/core/domain"
	"auroramon/pkg/aurora"
)

func LiveMeasuresToUpdateEvents(lm *LiveMeasures) []any {
	var events []any

	// Grid voltage
	events = append(events, FloatSensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{
			Id: SENSOR_ID_GRID_VOLTAGE,
		},
		Value:    lm.GridVoltage,
		Decimals: 1,
	})
	// Grid current
	events = append(events, FloatSensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{
			Id: SENSOR_ID_GRID_CURRENT,
		},
		Value:    lm.GridCurrent,
		Decimals: 2,
	})
	// Grid power
	events = append(events, FloatSensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{
			Id: SENSOR_ID_GRID_POWER,
		},
		Value:    lm.GridPower,
		Decimals: 1,
	})
	// Grid frequency
	events = append(events, FloatSensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{
			Id: SENSOR_ID_GRID_FREQUENCY,
		},
		Value:    lm.GridFrequency,
		Decimals: 2,
	})
	// Inverter temperature
	events = append(events, FloatSensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{
			Id: SENSOR_ID_INVERTER_TEMPERATURE,
		},
		Value:    lm.InverterTemperature,
		Decimals: 1,
	})
	// Booster temperature
	events = append(events, FloatSensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{
			Id: SENSOR_ID_BOOSTER_TEMPERATURE,
		},
		Value:    lm.BoosterTemperature,
		Decimals: 1,
	})

	return events
}

func EnergyCountersToUpdateEvents(ec *aurora.EnergyCounters) []any {
	var events []any

	counters := []struct {
		id    string
		value float64
	}{
		{SENSOR_ID_ENERGY_TODAY, ec.TodayKWh},
		{SENSOR_ID_ENERGY_MONTH, ec.MonthKWh},
		{SENSOR_ID_ENERGY_YEAR, ec.YearKWh},
		{SENSOR_ID_ENERGY_TOTAL, ec.TotalKWh},
		{SENSOR_ID_ENERGY_PARTIAL, ec.PartialKWh},
	}
	for _, c := range counters {
		events = append(events, FloatSensorUpdateEvent{
			SensorUpdateEventMixIn: SensorUpdateEventMixIn{
				Id: c.id,
			},
			Value:    c.value,
			Decimals: 3,
		})
	}

	return events
}

func SystemStateToUpdateEvents(state *aurora.SystemState) []any {
	var events []any

	// Global state
	events = append(events, TextSensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{
			Id: SENSOR_ID_GLOBAL_STATE,
		},
		Value: state.GlobalStateStr,
	})
	// Inverter state
	events = append(events, TextSensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{
			Id: SENSOR_ID_INVERTER_STATE,
		},
		Value: state.InverterStateStr,
	})
	// Alarm state
	events = append(events, TextSensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{
			Id: SENSOR_ID_ALARM_STATE,
		},
		Value: state.AlarmStateStr,
	})

	return events
}

func BridgeStateToUpdateEvent(connected bool) any {
	return BridgeStateUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{
			Id: SENSOR_ID_BRIDGE_STATE,
		},
		Value: connected,
	}
}
