package actor

import (
	"context"
	"fmt"
	"time"

	"auroramon/internal/core/domain"
	"auroramon/internal/util/actorutil"
	"auroramon/pkg/aurora"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/reugn/go-quartz/logger"
	"go.uber.org/zap"
)

const (
	AURORA_ACTOR_ID = "aurora"

	// A single read can spend up to three attempts with backoff plus a
	// port reopen, and the composite info request chains five commands.
	readTaskTimeout = 15 * time.Second
	infoTaskTimeout = 60 * time.Second
)

// AuroraActor owns the serial line. Requests are served one at a time:
// while a background exchange is in flight the actor stacks into
// WaitingSerial and stashes everything else.
type AuroraActor struct {
	behavior actor.Behavior
	stash    *actorutil.Stash
	inverter aurora.InverterReader
	logger   *zap.Logger
}

type backgroundTaskResult struct {
	message any
	replyTo *actor.PID
}

func NewAuroraActor(inverter aurora.InverterReader, logger *zap.Logger) *AuroraActor {
	act := &AuroraActor{
		inverter: inverter,
		behavior: actor.NewBehavior(),
		stash:    &actorutil.Stash{},
		logger:   actorutil.ActorLogger("aurora", logger),
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *AuroraActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *AuroraActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("aurora@starting started")
		if err := state.inverter.Open(); err != nil {
			panic(err)
		}
		state.behavior.Become(state.DefaultReceive)
		state.stash.UnstashAll(ctx)
	case *actor.Restarting:
		state.inverter.Close()
	default:
		state.logger.Debug("aurora@starting: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *AuroraActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.logger.Debug("aurora@default: ActorHealthRequest")
		ctx.Respond(domain.ActorHealthResponse{
			Id:      AURORA_ACTOR_ID,
			Healthy: true,
			State:   "idle",
		})
	case domain.GetSystemInfoRequest:
		state.logger.Debug("aurora@default: GetSystemInfoRequest")
		sender := actorutil.ForRequest(msg).ReplyTo(ctx)

		actorutil.MapBackgroundTask(actorutil.NewBackgroundTask(ctx, state.getSystemInfo),
			mapTaskResult[domain.GetSystemInfoResponse](sender)).Recover(func(err error) backgroundTaskResult {
			return backgroundTaskResult{
				message: domain.GetSystemInfoResponse{
					ActorResponseMixIn: domain.ActorResponseMixIn{
						ResponseError: err,
					},
				},
				replyTo: sender,
			}
		}).WithTimeout(infoTaskTimeout).PipeTo(ctx.Self())
		state.behavior.BecomeStacked(state.WaitingSerial)
	case domain.GetLiveMeasuresRequest:
		state.logger.Debug("aurora@default: GetLiveMeasuresRequest")
		sender := ctx.Sender()
		actorutil.MapBackgroundTask(actorutil.NewBackgroundTask(ctx, state.getLiveMeasures),
			mapTaskResult[domain.GetLiveMeasuresResponse](sender)).Recover(func(err error) backgroundTaskResult {
			return backgroundTaskResult{
				message: domain.GetLiveMeasuresResponse{
					ActorResponseMixIn: domain.ActorResponseMixIn{
						ResponseError: err,
					},
				},
				replyTo: sender,
			}
		}).WithTimeout(infoTaskTimeout).PipeTo(ctx.Self())
		state.behavior.BecomeStacked(state.WaitingSerial)
	case domain.GetMeasureRequest:
		state.logger.Debug("aurora@default: GetMeasureRequest", zap.String("measure", msg.Measure.String()))
		sender := ctx.Sender()
		measure := msg.Measure
		actorutil.MapBackgroundTask(actorutil.NewBackgroundTask(ctx, func() (*domain.GetMeasureResponse, error) {
			return state.getMeasure(measure)
		}),
			mapTaskResult[domain.GetMeasureResponse](sender)).Recover(func(err error) backgroundTaskResult {
			return backgroundTaskResult{
				message: domain.GetMeasureResponse{
					ActorResponseMixIn: domain.ActorResponseMixIn{
						ResponseError: err,
					},
				},
				replyTo: sender,
			}
		}).WithTimeout(readTaskTimeout).PipeTo(ctx.Self())
		state.behavior.BecomeStacked(state.WaitingSerial)
	case domain.GetEnergyCountersRequest:
		state.logger.Debug("aurora@default: GetEnergyCountersRequest")
		sender := ctx.Sender()
		actorutil.MapBackgroundTask(actorutil.NewBackgroundTask(ctx, state.getEnergyCounters),
			mapTaskResult[domain.GetEnergyCountersResponse](sender)).Recover(func(err error) backgroundTaskResult {
			return backgroundTaskResult{
				message: domain.GetEnergyCountersResponse{
					ActorResponseMixIn: domain.ActorResponseMixIn{
						ResponseError: err,
					},
				},
				replyTo: sender,
			}
		}).WithTimeout(infoTaskTimeout).PipeTo(ctx.Self())
		state.behavior.BecomeStacked(state.WaitingSerial)
	case domain.GetSystemStateRequest:
		state.logger.Debug("aurora@default: GetSystemStateRequest")
		sender := ctx.Sender()
		actorutil.MapBackgroundTask(actorutil.NewBackgroundTask(ctx, state.getSystemState),
			mapTaskResult[domain.GetSystemStateResponse](sender)).Recover(func(err error) backgroundTaskResult {
			return backgroundTaskResult{
				message: domain.GetSystemStateResponse{
					ActorResponseMixIn: domain.ActorResponseMixIn{
						ResponseError: err,
					},
				},
				replyTo: sender,
			}
		}).WithTimeout(readTaskTimeout).PipeTo(ctx.Self())
		state.behavior.BecomeStacked(state.WaitingSerial)
	case domain.DebugProbeRequest:
		state.logger.Debug("aurora@default: DebugProbeRequest", zap.Uint8("command", msg.Command))
		sender := ctx.Sender()
		command := msg.Command
		actorutil.MapBackgroundTask(actorutil.NewBackgroundTask(ctx, func() (*domain.DebugProbeResponse, error) {
			return state.debugProbe(command)
		}),
			mapTaskResult[domain.DebugProbeResponse](sender)).Recover(func(err error) backgroundTaskResult {
			return backgroundTaskResult{
				message: domain.DebugProbeResponse{
					ActorResponseMixIn: domain.ActorResponseMixIn{
						ResponseError: err,
					},
				},
				replyTo: sender,
			}
		}).WithTimeout(readTaskTimeout).PipeTo(ctx.Self())
		state.behavior.BecomeStacked(state.WaitingSerial)
	case *actor.Stopping:
		state.inverter.Close()
	default:
		state.logger.Debug("aurora@default default recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *AuroraActor) WaitingSerial(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case backgroundTaskResult:
		state.logger.Debug("aurora@WaitingSerial backgroundTaskResult", zap.String("type", fmt.Sprintf("%T", msg.message)))
		if msg.replyTo != nil {
			ctx.Send(msg.replyTo, msg.message)
		}
		state.behavior.UnbecomeStacked()
		state.stash.UnstashAll(ctx)
	case *actor.Stopping:
		state.inverter.Close()
	default:
		state.logger.Debug("aurora@WaitingSerial stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (a *AuroraActor) getSystemInfo() (*domain.GetSystemInfoResponse, error) {
	info, err := a.inverter.ReadExtendedSystemInfo(context.Background())
	if err != nil {
		logger.Error(err)
		return nil, err
	}
	return &domain.GetSystemInfoResponse{
		Info: info,
	}, nil
}

func (a *AuroraActor) getLiveMeasures() (*domain.GetLiveMeasuresResponse, error) {
	bg := context.Background()
	measures := &domain.LiveMeasures{}
	reads := []struct {
		measure aurora.MeasureType
		dest    *float64
	}{
		{aurora.GridVoltage, &measures.GridVoltage},
		{aurora.GridCurrent, &measures.GridCurrent},
		{aurora.GridPower, &measures.GridPower},
		{aurora.Frequency, &measures.GridFrequency},
		{aurora.InverterTemperature, &measures.InverterTemperature},
		{aurora.BoosterTemperature, &measures.BoosterTemperature},
	}
	for _, read := range reads {
		m, err := a.inverter.ReadMeasure(bg, read.measure, true)
		if err != nil {
			logger.Error(err)
			return nil, err
		}
		*read.dest = m.Value
	}
	return &domain.GetLiveMeasuresResponse{
		Measures: measures,
	}, nil
}

func (a *AuroraActor) getMeasure(measure aurora.MeasureType) (*domain.GetMeasureResponse, error) {
	m, err := a.inverter.ReadMeasure(context.Background(), measure, true)
	if err != nil {
		logger.Error(err)
		return nil, err
	}
	return &domain.GetMeasureResponse{
		Measure: m,
	}, nil
}

func (a *AuroraActor) getEnergyCounters() (*domain.GetEnergyCountersResponse, error) {
	counters, err := a.inverter.ReadEnergyCounters(context.Background())
	if err != nil {
		logger.Error(err)
		return nil, err
	}
	return &domain.GetEnergyCountersResponse{
		Counters: counters,
	}, nil
}

func (a *AuroraActor) getSystemState() (*domain.GetSystemStateResponse, error) {
	state, err := a.inverter.ReadState(context.Background())
	if err != nil {
		logger.Error(err)
		return nil, err
	}
	return &domain.GetSystemStateResponse{
		State: state,
	}, nil
}

func (a *AuroraActor) debugProbe(command byte) (*domain.DebugProbeResponse, error) {
	frame, err := a.inverter.DebugProbe(context.Background(), command)
	if err != nil {
		logger.Error(err)
		return nil, err
	}
	return &domain.DebugProbeResponse{
		Frame: frame,
	}, nil
}

func mapTaskResult[T any](sender *actor.PID) func(t *T) *backgroundTaskResult {
	return func(t *T) *backgroundTaskResult {
		return &backgroundTaskResult{
			message: *t,
			replyTo: sender,
		}
	}
}
