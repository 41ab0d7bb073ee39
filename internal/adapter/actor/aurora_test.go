package actor

import (
	"testing"
	"time"

	"auroramon/internal/core/domain"
	"auroramon/internal/util/actorutil"
	"auroramon/pkg/aurora"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestGetSystemInfoAuroraActor(t *testing.T) {

	assert := assert.New(t)

	inv, err := aurora.CreateTestInverterReader()
	if err != nil {
		t.Error(err)
		return
	}

	logger := zap.Must(zap.NewDevelopment())

	as := actorutil.NewActorSystemWithZapLogger(logger)

	context := as.Root

	props := actor.PropsFromProducer(func() actor.Actor { return NewAuroraActor(inv, logger) })
	pid := context.Spawn(props)

	time.Sleep(1 * time.Second)

	msg := domain.GetSystemInfoRequest{}
	result, err := context.RequestFuture(pid, msg, 15*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	resp := result.(domain.GetSystemInfoResponse)

	assert.False(resp.HasResponseError())
	assert.Equal("-3G79", resp.Info.PartNumber, "part number")
	assert.Equal("126014", resp.Info.SerialNumber, "serial number")
	assert.Equal("1-K-N-N", resp.Info.Version, "firmware version")
	assert.Equal("Run", resp.Info.State.GlobalStateStr, "global state")

	context.Stop(pid)

	as.Shutdown()
}

func TestGetLiveMeasuresAuroraActor(t *testing.T) {

	assert := assert.New(t)

	inv, err := aurora.CreateTestInverterReader()
	if err != nil {
		t.Error(err)
		return
	}

	logger := zap.Must(zap.NewDevelopment())

	as := actorutil.NewActorSystemWithZapLogger(logger)
	context := as.Root

	props := actor.PropsFromProducer(func() actor.Actor { return NewAuroraActor(inv, logger) })
	pid := context.Spawn(props)

	time.Sleep(1 * time.Second)

	msg := domain.GetLiveMeasuresRequest{}

	result, err := context.RequestFuture(pid, msg, 15*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	resp := result.(domain.GetLiveMeasuresResponse)

	assert.False(resp.HasResponseError())
	assert.Equal(230.5, resp.Measures.GridVoltage, "grid voltage")
	assert.True(resp.Measures.GridPower > 0, "grid power bounds")
	assert.True(resp.Measures.GridFrequency > 45 && resp.Measures.GridFrequency < 65, "grid frequency bounds")

	context.Stop(pid)

	as.Shutdown()
}

func TestGetEnergyCountersAuroraActor(t *testing.T) {

	assert := assert.New(t)

	inv, err := aurora.CreateTestInverterReader()
	if err != nil {
		t.Error(err)
		return
	}

	logger := zap.Must(zap.NewDevelopment())

	as := actorutil.NewActorSystemWithZapLogger(logger)
	context := as.Root

	props := actor.PropsFromProducer(func() actor.Actor { return NewAuroraActor(inv, logger) })
	pid := context.Spawn(props)

	time.Sleep(1 * time.Second)

	result, err := context.RequestFuture(pid, domain.GetEnergyCountersRequest{}, 15*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	resp := result.(domain.GetEnergyCountersResponse)

	assert.False(resp.HasResponseError())
	assert.Equal(5.321, resp.Counters.TodayKWh, "today counter")
	assert.Equal(9876.543, resp.Counters.TotalKWh, "total counter")
	assert.Equal(0.0, resp.Counters.PartialKWh, "unset partial counter")

	context.Stop(pid)

	as.Shutdown()
}

func TestGetLiveMeasuresErrorAuroraActor(t *testing.T) {

	assert := assert.New(t)

	inv, err := aurora.CreateBrokenTestInverterReader()
	if err != nil {
		t.Error(err)
		return
	}

	logger := zap.Must(zap.NewDevelopment())

	as := actorutil.NewActorSystemWithZapLogger(logger)
	context := as.Root

	props := actor.PropsFromProducer(func() actor.Actor { return NewAuroraActor(inv, logger) })
	pid := context.Spawn(props)

	time.Sleep(1 * time.Second)

	result, err := context.RequestFuture(pid, domain.GetLiveMeasuresRequest{}, 15*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	resp := result.(domain.GetLiveMeasuresResponse)

	assert.True(resp.HasResponseError(), "failed read surfaces an error response")
	assert.ErrorIs(resp.GetResponseError(), aurora.ErrCommunicationTimeout)
	assert.Nil(resp.Measures)

	context.Stop(pid)

	as.Shutdown()
}

func TestGetSystemInfoErrorAuroraActor(t *testing.T) {

	assert := assert.New(t)

	inv, err := aurora.CreateBrokenTestInverterReader()
	if err != nil {
		t.Error(err)
		return
	}

	logger := zap.Must(zap.NewDevelopment())

	as := actorutil.NewActorSystemWithZapLogger(logger)
	context := as.Root

	props := actor.PropsFromProducer(func() actor.Actor { return NewAuroraActor(inv, logger) })
	pid := context.Spawn(props)

	time.Sleep(1 * time.Second)

	result, err := context.RequestFuture(pid, domain.GetSystemInfoRequest{}, 15*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	resp := result.(domain.GetSystemInfoResponse)

	assert.True(resp.HasResponseError(), "failed read surfaces an error response")
	assert.ErrorIs(resp.GetResponseError(), aurora.ErrCommunicationTimeout)

	// the actor must stay up and keep serving after a failed read
	result, err = context.RequestFuture(pid, domain.ActorHealthRequest{}, 5*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	health := result.(domain.ActorHealthResponse)
	assert.True(health.Healthy)

	context.Stop(pid)

	as.Shutdown()
}
