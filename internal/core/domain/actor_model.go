package domain

import "auroramon/pkg/aurora"

const (
	ACTOR_ID_MASTER  = "master"
	ACTOR_ID_AURORA  = "aurora"
	ACTOR_ID_MONITOR = "monitor"
)

// LiveMeasures is one poll cycle worth of instantaneous DSP readings.
type LiveMeasures struct {
	GridVoltage         float64
	GridCurrent         float64
	GridPower           float64
	GridFrequency       float64
	InverterTemperature float64
	BoosterTemperature  float64
}

type GetSystemInfoRequest struct {
	ActorRequestMixIn
}

type GetSystemInfoResponse struct {
	ActorResponseMixIn
	Info *aurora.ExtendedSystemInfo
}

type GetLiveMeasuresRequest struct {
	ActorRequestMixIn
}

type GetLiveMeasuresResponse struct {
	ActorResponseMixIn
	Measures *LiveMeasures
}

type GetMeasureRequest struct {
	ActorRequestMixIn
	Measure aurora.MeasureType
}

type GetMeasureResponse struct {
	ActorResponseMixIn
	Measure *aurora.Measure
}

type GetEnergyCountersRequest struct {
	ActorRequestMixIn
}

type GetEnergyCountersResponse struct {
	ActorResponseMixIn
	Counters *aurora.EnergyCounters
}

type GetSystemStateRequest struct {
	ActorRequestMixIn
}

type GetSystemStateResponse struct {
	ActorResponseMixIn
	State *aurora.SystemState
}

type DebugProbeRequest struct {
	ActorRequestMixIn
	Command byte
}

type DebugProbeResponse struct {
	ActorResponseMixIn
	Frame []byte
}

type ActorHealthRequest struct {
	ActorRequestMixIn
}

type ActorHealthResponse struct {
	ActorResponseMixIn
	Id      string
	Healthy bool
	State   string
}
