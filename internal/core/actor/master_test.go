package actor

import (
	"fmt"
	"testing"
	"time"

	adactor "auroramon/internal/adapter/actor"
	"auroramon/internal/core/domain"
	"auroramon/internal/util"
	"auroramon/pkg/aurora"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func spawnTestMaster(t *testing.T, as *actor.ActorSystem, logger *zap.Logger, es *eventstream.EventStream) *actor.PID {
	t.Helper()

	cfg := util.LoadTestConfig()

	props := actor.PropsFromProducer(func() actor.Actor {
		return NewMasterActor(cfg, func() *adactor.AuroraActor {
			inv, _ := aurora.CreateTestInverterReader()
			return adactor.NewAuroraActor(inv, logger)
		}, es, logger)
	})
	pid, err := as.Root.SpawnNamed(props, "master")
	if err != nil {
		t.Fatal(err)
	}
	return pid
}

func TestMasterActorHealthCheck(t *testing.T) {

	as := actor.NewActorSystem()
	context := as.Root

	cfg := util.LoadTestConfig()
	logCfg := zap.NewDevelopmentConfig()
	logCfg.Level = zap.NewAtomicLevelAt(cfg.LogLevel)
	logger := zap.Must(logCfg.Build())

	pid := spawnTestMaster(t, as, logger, &eventstream.EventStream{})

	time.Sleep(2 * time.Second)

	res, err := context.RequestFuture(pid, domain.ActorHealthRequest{}, 10*time.Second).Result()
	if err != nil {
		t.Error(err)
	}
	healthResp, ok := res.(domain.ActorHealthResponse)
	assert.True(t, ok)
	fmt.Printf("Health response: %+v\n", healthResp)
	assert.NotNil(t, healthResp)

	assert.True(t, healthResp.Healthy, "healthy is true")

	context.Stop(pid)

	as.Shutdown()
}

func TestMasterActorForwardsReads(t *testing.T) {

	as := actor.NewActorSystem()
	context := as.Root

	logCfg := zap.NewDevelopmentConfig()
	logger := zap.Must(logCfg.Build())

	pid := spawnTestMaster(t, as, logger, &eventstream.EventStream{})

	time.Sleep(2 * time.Second)

	res, err := context.RequestFuture(pid, domain.GetSystemInfoRequest{}, 10*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	infoResp, ok := res.(domain.GetSystemInfoResponse)
	assert.True(t, ok)
	assert.False(t, infoResp.HasResponseError())
	assert.Equal(t, "-3G79", infoResp.Info.PartNumber)

	res, err = context.RequestFuture(pid, domain.GetEnergyCountersRequest{}, 10*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	countersResp, ok := res.(domain.GetEnergyCountersResponse)
	assert.True(t, ok)
	assert.False(t, countersResp.HasResponseError())
	assert.Equal(t, 9876.543, countersResp.Counters.TotalKWh)

	context.Stop(pid)

	as.Shutdown()
}

func TestMasterActorForwardsReadError(t *testing.T) {

	as := actor.NewActorSystem()
	context := as.Root

	logCfg := zap.NewDevelopmentConfig()
	logger := zap.Must(logCfg.Build())

	cfg := util.LoadTestConfig()
	props := actor.PropsFromProducer(func() actor.Actor {
		return NewMasterActor(cfg, func() *adactor.AuroraActor {
			inv, _ := aurora.CreateBrokenTestInverterReader()
			return adactor.NewAuroraActor(inv, logger)
		}, &eventstream.EventStream{}, logger)
	})
	pid, err := as.Root.SpawnNamed(props, "master")
	if err != nil {
		t.Fatal(err)
	}

	time.Sleep(2 * time.Second)

	res, err := context.RequestFuture(pid, domain.GetEnergyCountersRequest{}, 10*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	countersResp, ok := res.(domain.GetEnergyCountersResponse)
	assert.True(t, ok)
	assert.True(t, countersResp.HasResponseError(), "failed read surfaces an error response")
	assert.ErrorIs(t, countersResp.GetResponseError(), aurora.ErrCommunicationTimeout)
	assert.Nil(t, countersResp.Counters)

	context.Stop(pid)

	as.Shutdown()
}

func TestMonitorPublishesUpdates(t *testing.T) {

	as := actor.NewActorSystem()
	context := as.Root

	logCfg := zap.NewDevelopmentConfig()
	logger := zap.Must(logCfg.Build())

	es := &eventstream.EventStream{}
	updates := make(chan any, 64)
	sub := es.Subscribe(func(evt any) {
		updates <- evt
	})
	defer es.Unsubscribe(sub)

	pid := spawnTestMaster(t, as, logger, es)

	// First poll tick fires after the configured 5s interval.
	deadline := time.After(15 * time.Second)
	var sawGridVoltage bool
	for !sawGridVoltage {
		select {
		case evt := <-updates:
			if fl, ok := evt.(domain.FloatSensorUpdateEvent); ok && fl.SensorId() == "grid_voltage" {
				assert.Equal(t, 230.5, fl.Value)
				sawGridVoltage = true
			}
		case <-deadline:
			t.Fatal("no grid_voltage update published")
		}
	}

	context.Stop(pid)

	as.Shutdown()
}
