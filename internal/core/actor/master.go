package actor

import (
	"errors"
	"fmt"
	"log"
	"time"

	adactor "auroramon/internal/adapter/actor"
	"auroramon/internal/config"
	"auroramon/internal/core/domain"
	. "auroramon/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"go.uber.org/zap"
)

type AuroraActorProvider func() *adactor.AuroraActor

// MasterActor supervises the serial owner and the poll loop, answers the
// health fan-out and forwards read requests to the aurora actor.
type MasterActor struct {
	config   config.Config
	behavior actor.Behavior
	stash    *Stash

	currentHealthCheck  healthCheckResult
	eventStream         *eventstream.EventStream
	auroraActor         *actor.PID
	monitorActor        *actor.PID
	auroraActorProvider AuroraActorProvider
	logger              *zap.Logger
}

type healthCheckResult struct {
	auroraActorHealthy  bool
	monitorActorHealthy bool
	checksReceived      int
	respondTo           *actor.PID
}

func NewMasterActor(config config.Config, auroraActorProvider AuroraActorProvider, eventStream *eventstream.EventStream, logger *zap.Logger) *MasterActor {
	act := &MasterActor{
		config:              config,
		behavior:            actor.NewBehavior(),
		stash:               &Stash{},
		logger:              ActorLogger("master", logger),
		eventStream:         eventStream,
		auroraActorProvider: auroraActorProvider,
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *MasterActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *MasterActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("master@starting started")

		state.currentHealthCheck = healthCheckResult{}
		state.currentHealthCheck.reset()

		// start serial owner child
		auroraActorPID, err := state.startAuroraActor(ctx)
		if err != nil {
			panic(err)
		}
		state.auroraActor = auroraActorPID

		// start poll loop child
		monitorActorPID, err := state.startMonitorActor(ctx)
		if err != nil {
			panic(err)
		}
		state.monitorActor = monitorActorPID

		state.behavior.Become(state.DefaultReceive)
		state.stash.UnstashAll(ctx)
	default:
		state.logger.Debug("master@starting stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MasterActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.logger.Debug("master@default ActorHealthRequest")
		state.currentHealthCheck.reset()
		state.currentHealthCheck.respondTo = ctx.Sender()
		// Aurora Actor Request
		PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.auroraActor, domain.ActorHealthRequest{}, 500*time.Millisecond), func(err error) any {
			return domain.ActorHealthResponse{
				Id:      domain.ACTOR_ID_AURORA,
				Healthy: false,
			}
		})
		// Monitor Actor Request
		PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.monitorActor, domain.ActorHealthRequest{}, 500*time.Millisecond), func(err error) any {
			return domain.ActorHealthResponse{
				Id:      domain.ACTOR_ID_MONITOR,
				Healthy: false,
			}
		})

		ctx.SetReceiveTimeout(1 * time.Second)

		state.behavior.BecomeStacked(state.HealthCheckReceive)
	case domain.GetSystemInfoRequest:
		state.logger.Debug("master@default GetSystemInfoRequest")
		ctx.Forward(state.auroraActor)
	case domain.GetLiveMeasuresRequest:
		state.logger.Debug("master@default GetLiveMeasuresRequest")
		ctx.Forward(state.auroraActor)
	case domain.GetMeasureRequest:
		state.logger.Debug("master@default GetMeasureRequest")
		ctx.Forward(state.auroraActor)
	case domain.GetEnergyCountersRequest:
		state.logger.Debug("master@default GetEnergyCountersRequest")
		ctx.Forward(state.auroraActor)
	case domain.GetSystemStateRequest:
		state.logger.Debug("master@default GetSystemStateRequest")
		ctx.Forward(state.auroraActor)
	case domain.DebugProbeRequest:
		state.logger.Debug("master@default DebugProbeRequest")
		ctx.Forward(state.auroraActor)
	case *actor.Terminated:
		// if the serial owner fails on boot, terminate
		if msg.Who.Id == fmt.Sprintf("%s/%s", domain.ACTOR_ID_MASTER, domain.ACTOR_ID_AURORA) {
			state.logger.Error("master@default aurora error")
			panic(errors.New("aurora terminated"))
		}
	default:
		state.logger.Debug("master@default stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MasterActor) HealthCheckReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.ReceiveTimeout:
		// if some actor does not respond to healthCheck, assume not healthy
		state.currentHealthCheck.respond(ctx)
		state.behavior.UnbecomeStacked()
		state.stash.UnstashAll(ctx)
	case domain.ActorHealthResponse:
		state.logger.Debug("master@healthcheck ActorHealthResponse", zap.String("sender", msg.Id), zap.Bool("healthy", msg.Healthy))
		state.currentHealthCheck.checksReceived++
		if msg.Healthy {
			if msg.Id == domain.ACTOR_ID_AURORA {
				state.currentHealthCheck.auroraActorHealthy = true
			} else if msg.Id == domain.ACTOR_ID_MONITOR {
				state.currentHealthCheck.monitorActorHealthy = true
			}
		}
		if state.currentHealthCheck.allReceived() {

			state.currentHealthCheck.respond(ctx)

			state.behavior.UnbecomeStacked()
			state.stash.UnstashAll(ctx)
		} else {
			ctx.SetReceiveTimeout(1 * time.Second)
		}
	default:
		state.logger.Debug("master@healthcheck stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MasterActor) startAuroraActor(ctx actor.Context) (*actor.PID, error) {

	supervisor := actor.NewExponentialBackoffStrategy(10*time.Second, 1*time.Second)

	auroraProps := actor.PropsFromProducer(func() actor.Actor {
		return state.auroraActorProvider()
	}, actor.WithSupervisor(supervisor))
	auroraActorPID, err := ctx.SpawnNamed(auroraProps, domain.ACTOR_ID_AURORA)
	if err != nil {
		return nil, err
	}

	return auroraActorPID, nil
}

func (state *MasterActor) startMonitorActor(ctx actor.Context) (*actor.PID, error) {

	decider := func(reason interface{}) actor.Directive {
		log.Printf("handling failure for child. reason: %v", reason)
		return actor.RestartDirective
	}
	supervisor := actor.NewAllForOneStrategy(1, 10*time.Second, decider)

	monitorProps := actor.PropsFromProducer(func() actor.Actor {
		return NewMonitorActor(&state.config, state.auroraActor, state.eventStream, state.logger)
	}, actor.WithSupervisor(supervisor))
	monitorActorPID, err := ctx.SpawnNamed(monitorProps, domain.ACTOR_ID_MONITOR)
	if err != nil {
		return nil, err
	}

	return monitorActorPID, nil
}

func (state *healthCheckResult) reset() {
	state.auroraActorHealthy = false
	state.monitorActorHealthy = false
	state.checksReceived = 0
}

func (state *healthCheckResult) allReceived() bool {
	return state.checksReceived == 2
}

func (state *healthCheckResult) allHealthy() bool {
	return state.auroraActorHealthy && state.monitorActorHealthy
}

func (state *healthCheckResult) respond(ctx actor.Context) {
	resp := domain.ActorHealthResponse{
		Id:      domain.ACTOR_ID_MASTER,
		Healthy: state.allHealthy(),
	}
	if state.respondTo != nil {
		ctx.Send(state.respondTo, resp)
	}
}
