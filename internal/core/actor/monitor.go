package actor

import (
	"fmt"
	"time"

	"auroramon/internal/config"
	"auroramon/internal/core/domain"
	"auroramon/internal/core/events"
	. "auroramon/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/asynkron/protoactor-go/scheduler"
	"go.uber.org/zap"
)

// MonitorActor drives the poll loop: every tick it requests the live
// measures, and every N ticks the energy counters and system state too.
type MonitorActor struct {
	behavior  actor.Behavior
	stash     *Stash
	scheduler *scheduler.TimerScheduler

	auroraActor       *actor.PID
	config            *config.Config
	eventStream       *eventstream.EventStream
	currentCycleCount uint
	cycleCount        uint

	logger *zap.Logger
}

type monitorTick struct {
}

func NewMonitorActor(config *config.Config, auroraActor *actor.PID, eventStream *eventstream.EventStream, logger *zap.Logger) *MonitorActor {
	cycles := config.Monitor.EnergyPollIntervalCycles
	if cycles == 0 {
		cycles = 6
	}
	act := &MonitorActor{
		config:            config,
		auroraActor:       auroraActor,
		behavior:          actor.NewBehavior(),
		stash:             &Stash{},
		logger:            ActorLogger("monitor", logger),
		eventStream:       eventStream,
		currentCycleCount: cycles,
		cycleCount:        cycles,
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *MonitorActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *MonitorActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("monitor@starting started")

		if state.config.Monitor.PollIntervalMillis > 0 {
			state.scheduler = scheduler.NewTimerScheduler(ctx)
			state.scheduler.RequestOnce(time.Duration(state.config.Monitor.PollIntervalMillis)*time.Millisecond, ctx.Self(), monitorTick{})
		}

		PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.auroraActor, domain.GetSystemInfoRequest{}, 60*time.Second), func(err error) any {
			return domain.GetSystemInfoResponse{
				ActorResponseMixIn: domain.ActorResponseMixIn{
					ResponseError: err,
				},
			}
		})
		state.behavior.Become(state.WaitingInfoReceive)
	case *actor.Restarting:
	default:
		state.logger.Debug("monitor@starting: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MonitorActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.logger.Debug("monitor@default: ActorHealthRequest")
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_MONITOR,
			Healthy: true,
			State:   "idle",
		})
	case monitorTick:
		state.logger.Debug("monitor@default tick")
		// get live measures
		PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.auroraActor, domain.GetLiveMeasuresRequest{}, 60*time.Second), func(err error) any {
			return domain.GetLiveMeasuresResponse{
				ActorResponseMixIn: domain.ActorResponseMixIn{
					ResponseError: err,
				},
			}
		})
		// get energy counters and state on the slow cycle
		if state.currentCycleCount == state.cycleCount {
			state.currentCycleCount = 0
			PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.auroraActor, domain.GetEnergyCountersRequest{}, 60*time.Second), func(err error) any {
				return domain.GetEnergyCountersResponse{
					ActorResponseMixIn: domain.ActorResponseMixIn{
						ResponseError: err,
					},
				}
			})
			PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.auroraActor, domain.GetSystemStateRequest{}, 60*time.Second), func(err error) any {
				return domain.GetSystemStateResponse{
					ActorResponseMixIn: domain.ActorResponseMixIn{
						ResponseError: err,
					},
				}
			})
		} else {
			state.currentCycleCount++
		}

		// schedule next tick
		state.scheduler.RequestOnce(time.Duration(state.config.Monitor.PollIntervalMillis)*time.Millisecond, ctx.Self(), monitorTick{})
		state.behavior.BecomeStacked(state.WaitingMeasuresReceive)
	case domain.GetEnergyCountersResponse:
		state.logger.Debug("monitor@default GetEnergyCountersResponse")
		if !msg.HasResponseError() && msg.Counters != nil {
			evs := events.EnergyCountersToUpdateEvents(msg.Counters)
			for _, ev := range evs {
				state.eventStream.Publish(ev)
			}
		}
	case domain.GetSystemStateResponse:
		state.logger.Debug("monitor@default GetSystemStateResponse")
		if !msg.HasResponseError() && msg.State != nil {
			evs := events.SystemStateToUpdateEvents(msg.State)
			for _, ev := range evs {
				state.eventStream.Publish(ev)
			}
		}
	default:
		state.logger.Debug("monitor@default: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MonitorActor) WaitingMeasuresReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.GetLiveMeasuresResponse:
		if msg.HasResponseError() {
			state.logger.Error("monitor@waiting GetLiveMeasuresResponse error", zap.Error(msg.GetResponseError()))
			state.eventStream.Publish(events.BridgeStateToUpdateEvent(false))
			state.behavior.UnbecomeStacked()
			state.stash.UnstashAll(ctx)
			return
		}
		state.logger.Debug("monitor@waiting GetLiveMeasuresResponse")
		if msg.Measures != nil {
			state.eventStream.Publish(events.BridgeStateToUpdateEvent(true))
			evs := events.LiveMeasuresToUpdateEvents(msg.Measures)
			for _, ev := range evs {
				state.eventStream.Publish(ev)
			}
		}

		state.behavior.UnbecomeStacked()
		state.stash.UnstashAll(ctx)
	default:
		state.logger.Debug("monitor@waiting: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MonitorActor) WaitingInfoReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.GetSystemInfoResponse:
		if msg.HasResponseError() {
			state.logger.Error("monitor@waitingInfo GetSystemInfoResponse", zap.Error(msg.GetResponseError()))
			state.behavior.Become(state.DefaultReceive)
			state.stash.UnstashAll(ctx)
			return
		}
		state.logger.Debug("monitor@waitingInfo GetSystemInfoResponse")
		state.logger.Info("inverter identified",
			zap.String("part_number", msg.Info.PartNumber),
			zap.String("serial", msg.Info.SerialNumber),
			zap.String("version", msg.Info.Version))
		state.behavior.Become(state.DefaultReceive)
		state.stash.UnstashAll(ctx)
	default:
		state.logger.Debug("monitor@waitingInfo: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}
