package events

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"

	"auroramon/internal/core/domain"
	"auroramon/pkg/aurora"

	"github.com/carlmjohnson/versioninfo"
)

const (
	SENSOR_ID_BRIDGE_STATE         = "bridge"
	SENSOR_ID_GRID_VOLTAGE         = "grid_voltage"
	SENSOR_ID_GRID_CURRENT         = "grid_current"
	SENSOR_ID_GRID_POWER           = "grid_power"
	SENSOR_ID_GRID_FREQUENCY       = "grid_frequency"
	SENSOR_ID_INVERTER_TEMPERATURE = "inverter_temperature"
	SENSOR_ID_BOOSTER_TEMPERATURE  = "booster_temperature"
	SENSOR_ID_GLOBAL_STATE         = "global_state"
	SENSOR_ID_INVERTER_STATE       = "inverter_state"
	SENSOR_ID_ALARM_STATE          = "alarm_state"
	SENSOR_ID_ENERGY_TODAY         = "energy_today"
	SENSOR_ID_ENERGY_MONTH         = "energy_month"
	SENSOR_ID_ENERGY_YEAR          = "energy_year"
	SENSOR_ID_ENERGY_TOTAL         = "energy_total"
	SENSOR_ID_ENERGY_PARTIAL       = "energy_partial"
	STATE_CLASS_MEASUREMENT        = "measurement"
	STATE_CLASS_TOTAL_INCREASING   = "total_increasing"
	DEVICE_CLASS_CURRENT           = "current"
	DEVICE_CLASS_ENERGY            = "energy"
	DEVICE_CLASS_FREQUENCY         = "frequency"
	DEVICE_CLASS_POWER             = "power"
	DEVICE_CLASS_TEMPERATURE       = "temperature"
	DEVICE_CLASS_VOLTAGE           = "voltage"
	DEVICE_CLASS_CONNECTIVITY      = "connectivity"
	ENTITY_CLASS_DIAGNOSTIC        = "diagnostic"
	SENSOR_TYPE_SENSOR             = "sensor"
	SENSOR_TYPE_BINARY             = "binary_sensor"
)

func BridgeDevice(id string) domain.Device {
	return domain.Device{
		Id:           fmt.Sprintf("auroramon_bridge_%s", md5HashShort(id)),
		Manufacturer: "auroramon",
		Model:        "Aurora RS-485 bridge",
		Version:      versioninfo.Short(),
		Name:         fmt.Sprintf("Auroramon %s", md5HashShort(id)),
	}
}

func InverterDevice(info *aurora.ExtendedSystemInfo) domain.Device {
	return domain.Device{
		Id:           fmt.Sprintf("aur_inverter_%s", md5HashShort(info.SerialNumber)),
		Version:      info.Version,
		Manufacturer: "Power-One",
		Model:        info.PartNumber,
		Name:         fmt.Sprintf("Aurora %s %s", info.PartNumber, md5HashShort(info.SerialNumber)),
	}
}

func InverterBaseSensors(inverterDevice domain.Device) []domain.GenericSensor {

	var sensors []domain.GenericSensor

	// Grid voltage
	sensors = append(sensors, domain.GenericSensor{
		Device:            inverterDevice,
		Id:                SENSOR_ID_GRID_VOLTAGE,
		SensorType:        SENSOR_TYPE_SENSOR,
		Name:              "Grid voltage",
		StateClass:        STATE_CLASS_MEASUREMENT,
		DeviceClass:       DEVICE_CLASS_VOLTAGE,
		UnitOfMeasurement: "V",
		UniqueId:          uniqueId(inverterDevice.Id, SENSOR_ID_GRID_VOLTAGE),
	})

	// Grid current
	sensors = append(sensors, domain.GenericSensor{
		Device:            inverterDevice,
		Id:                SENSOR_ID_GRID_CURRENT,
		SensorType:        SENSOR_TYPE_SENSOR,
		Name:              "Grid current",
		StateClass:        STATE_CLASS_MEASUREMENT,
		DeviceClass:       DEVICE_CLASS_CURRENT,
		UnitOfMeasurement: "A",
		UniqueId:          uniqueId(inverterDevice.Id, SENSOR_ID_GRID_CURRENT),
	})

	// Grid power
	sensors = append(sensors, domain.GenericSensor{
		Device:            inverterDevice,
		Id:                SENSOR_ID_GRID_POWER,
		SensorType:        SENSOR_TYPE_SENSOR,
		Name:              "Grid power",
		StateClass:        STATE_CLASS_MEASUREMENT,
		DeviceClass:       DEVICE_CLASS_POWER,
		UnitOfMeasurement: "W",
		Icon:              "mdi:solar-power",
		UniqueId:          uniqueId(inverterDevice.Id, SENSOR_ID_GRID_POWER),
	})

	// Grid frequency
	sensors = append(sensors, domain.GenericSensor{
		Device:            inverterDevice,
		Id:                SENSOR_ID_GRID_FREQUENCY,
		SensorType:        SENSOR_TYPE_SENSOR,
		Name:              "Grid frequency",
		StateClass:        STATE_CLASS_MEASUREMENT,
		DeviceClass:       DEVICE_CLASS_FREQUENCY,
		UnitOfMeasurement: "Hz",
		Icon:              "mdi:sine-wave",
		EnabledByDefault:  optionalBool(false),
		UniqueId:          uniqueId(inverterDevice.Id, SENSOR_ID_GRID_FREQUENCY),
	})

	// Inverter temperature
	sensors = append(sensors, domain.GenericSensor{
		Device:            inverterDevice,
		Id:                SENSOR_ID_INVERTER_TEMPERATURE,
		SensorType:        SENSOR_TYPE_SENSOR,
		Name:              "Inverter temperature",
		StateClass:        STATE_CLASS_MEASUREMENT,
		DeviceClass:       DEVICE_CLASS_TEMPERATURE,
		UnitOfMeasurement: "°C",
		UniqueId:          uniqueId(inverterDevice.Id, SENSOR_ID_INVERTER_TEMPERATURE),
	})

	// Booster temperature
	sensors = append(sensors, domain.GenericSensor{
		Device:            inverterDevice,
		Id:                SENSOR_ID_BOOSTER_TEMPERATURE,
		SensorType:        SENSOR_TYPE_SENSOR,
		Name:              "Booster temperature",
		StateClass:        STATE_CLASS_MEASUREMENT,
		DeviceClass:       DEVICE_CLASS_TEMPERATURE,
		UnitOfMeasurement: "°C",
		EnabledByDefault:  optionalBool(false),
		UniqueId:          uniqueId(inverterDevice.Id, SENSOR_ID_BOOSTER_TEMPERATURE),
	})

	// Global state
	sensors = append(sensors, domain.GenericSensor{
		Device:     inverterDevice,
		Id:         SENSOR_ID_GLOBAL_STATE,
		SensorType: SENSOR_TYPE_SENSOR,
		Name:       "Global state",
		UniqueId:   uniqueId(inverterDevice.Id, SENSOR_ID_GLOBAL_STATE),
	})

	// Inverter state
	sensors = append(sensors, domain.GenericSensor{
		Device:     inverterDevice,
		Id:         SENSOR_ID_INVERTER_STATE,
		SensorType: SENSOR_TYPE_SENSOR,
		Name:       "Inverter state",
		UniqueId:   uniqueId(inverterDevice.Id, SENSOR_ID_INVERTER_STATE),
	})

	// Alarm state
	sensors = append(sensors, domain.GenericSensor{
		Device:         inverterDevice,
		Id:             SENSOR_ID_ALARM_STATE,
		SensorType:     SENSOR_TYPE_SENSOR,
		Name:           "Alarm state",
		EntityCategory: ENTITY_CLASS_DIAGNOSTIC,
		UniqueId:       uniqueId(inverterDevice.Id, SENSOR_ID_ALARM_STATE),
	})

	return sensors
}

func InverterEnergySensors(inverterDevice domain.Device) []domain.GenericSensor {

	var sensors []domain.GenericSensor

	ids := []struct {
		id   string
		name string
	}{
		{SENSOR_ID_ENERGY_TODAY, "Energy today"},
		{SENSOR_ID_ENERGY_MONTH, "Energy this month"},
		{SENSOR_ID_ENERGY_YEAR, "Energy this year"},
		{SENSOR_ID_ENERGY_TOTAL, "Energy total"},
		{SENSOR_ID_ENERGY_PARTIAL, "Energy partial"},
	}
	for _, s := range ids {
		sensors = append(sensors, domain.GenericSensor{
			Device:            inverterDevice,
			Id:                s.id,
			SensorType:        SENSOR_TYPE_SENSOR,
			Name:              s.name,
			StateClass:        STATE_CLASS_TOTAL_INCREASING,
			DeviceClass:       DEVICE_CLASS_ENERGY,
			UnitOfMeasurement: "kWh",
			UniqueId:          uniqueId(inverterDevice.Id, s.id),
		})
	}

	return sensors
}

func BridgeSensors(bridgeDevice domain.Device) []domain.GenericSensor {

	var sensors []domain.GenericSensor

	sensors = append(sensors, domain.GenericSensor{
		Device:         bridgeDevice,
		Id:             SENSOR_ID_BRIDGE_STATE,
		SensorType:     SENSOR_TYPE_BINARY,
		Name:           "Connection state",
		DeviceClass:    DEVICE_CLASS_CONNECTIVITY,
		EntityCategory: ENTITY_CLASS_DIAGNOSTIC,
		UniqueId:       uniqueId(bridgeDevice.Id, SENSOR_ID_BRIDGE_STATE),
	})

	return sensors
}

func uniqueId(baseId, id string) string {
	return fmt.Sprintf("uid_%s_%s", baseId, id)
}

func md5HashShort(text string) string {
	hash := md5.Sum([]byte(text))
	return hex.EncodeToString(hash[:])[0:8]
}

func optionalBool(value bool) *bool {
	return &value
}
