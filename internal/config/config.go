package config

import (
	"errors"

	"go.uber.org/zap/zapcore"
)

type Config struct {
	LogLevel zapcore.Level
	Serial   SerialConfig  `mapstructure:"serial"`
	Monitor  MonitorConfig `mapstructure:"monitor"`
	Port     uint          `mapstructure:"port"`
	HttpLog  bool          `mapstructure:"http_log"`
}

type SerialConfig struct {
	Device             string
	Baud               uint
	Address            uint
	ReadTimeoutMillis  uint32 `mapstructure:"read_timeout_millis"`
	WriteTimeoutMillis uint32 `mapstructure:"write_timeout_millis"`
	TraceFrames        bool   `mapstructure:"trace_frames"`
}

type MonitorConfig struct {
	PollIntervalMillis       uint32 `mapstructure:"poll_interval_millis"`
	EnergyPollIntervalCycles uint   `mapstructure:"energy_poll_interval_cycles"`
}

func CheckSerialAddress(address uint) (uint8, error) {
	if address < 1 || address > 255 {
		return 0, errors.New("invalid inverter address. must be between 1 and 255")
	}
	return uint8(address), nil
}
