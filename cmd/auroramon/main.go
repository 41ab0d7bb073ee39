package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	adactor "auroramon/internal/adapter/actor"
	"auroramon/internal/config"
	"auroramon/internal/core/actor"
	"auroramon/internal/core/domain"
	"auroramon/internal/server"
	"auroramon/internal/util/actorutil"
	"auroramon/pkg/aurora"

	pactor "github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func gracefulShutdown(apiServer *http.Server, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Listen for the interrupt signal.
	<-ctx.Done()

	log.Println("shutting down gracefully, press Ctrl+C again to force")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown with error: %v", err)
	}

	log.Println("Server exiting")

	// Notify the main goroutine that the shutdown is complete
	done <- true
}

func main() {

	// load and print config
	cfg, err := initConfig()
	if err != nil {
		slog.Error("config errors", "error", err)
		return
	}
	slog.Info("Using", "config", *cfg)

	// zap logger
	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(cfg.LogLevel)

	logger := zap.Must(zapCfg.Build())

	// init actor system
	as := actorutil.NewActorSystemWithZapLogger(logger)
	ctx := as.Root

	defer logger.Sync()

	// init Aurora actor provider
	auroraProv, err := auroraActorProvider(cfg, logger)
	if err != nil {
		panic(err)
	}

	// sensor updates go to the log
	es := &eventstream.EventStream{}
	sub := es.Subscribe(sensorUpdateLogger(logger))
	defer es.Unsubscribe(sub)

	props := pactor.PropsFromProducer(func() pactor.Actor {
		return actor.NewMasterActor(*cfg, auroraProv, es, logger)
	})
	pid, err := ctx.SpawnNamed(props, "master")
	if err != nil {
		return
	}

	server := server.NewServer(*cfg, ctx, pid)
	// Create a done channel to signal when the shutdown is complete
	done := make(chan bool, 1)

	// Run graceful shutdown in a separate goroutine
	go gracefulShutdown(server, done)

	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		panic(fmt.Sprintf("http server error: %s", err))
	}

	// Wait for the graceful shutdown to complete
	<-done
	log.Println("Graceful shutdown complete.")

	ctx.Stop(pid)
	as.Shutdown()
}

func initConfig() (*config.Config, error) {

	// alias PORT => AURORAMON_PORT
	if port := os.Getenv("PORT"); port != "" {
		os.Setenv("AURORAMON_PORT", port)
	}

	setConfigDefaults()

	viper.SetEnvPrefix("auroramon")
	viper.AutomaticEnv()

	// if defined, try to load config from yaml file
	if cfgFile := os.Getenv("CONFIG_FILE"); cfgFile != "" {
		if _, err := os.Stat(cfgFile); err == nil {
			slog.Info("Using config", "file", cfgFile)
			viper.SetConfigFile(cfgFile)

			err = viper.ReadInConfig()
			if err != nil {
				slog.Error("Error reading config file", "error", err)
			}
		}
	}

	var cfg config.Config

	err := viper.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	// parse log level
	switch viper.GetString("log_level") {
	case "trace":
		cfg.LogLevel = zap.DebugLevel
	case "debug":
		cfg.LogLevel = zap.DebugLevel
	case "info":
		cfg.LogLevel = zap.InfoLevel
	case "error":
		cfg.LogLevel = zap.ErrorLevel
	case "warn":
		cfg.LogLevel = zap.WarnLevel
	case "fatal":
		cfg.LogLevel = zap.FatalLevel
	default:
		cfg.LogLevel = zap.InfoLevel
	}

	// check bounds
	if cfg.Serial.Device == "" {
		return nil, errors.New("config param serial.device is required")
	}
	if _, err := config.CheckSerialAddress(cfg.Serial.Address); err != nil {
		return nil, err
	}
	if cfg.Monitor.PollIntervalMillis < 5000 {
		return nil, errors.New("config param monitor.poll_interval_millis should be >= 5000")
	}

	return &cfg, nil
}

func auroraActorProvider(cfg *config.Config, logger *zap.Logger) (actor.AuroraActorProvider, error) {

	address, err := config.CheckSerialAddress(cfg.Serial.Address)
	if err != nil {
		return nil, err
	}

	auroraCfg := aurora.DefaultConfig()
	if cfg.Serial.ReadTimeoutMillis > 0 {
		auroraCfg.ReadTimeout = time.Duration(cfg.Serial.ReadTimeoutMillis) * time.Millisecond
	}
	if cfg.Serial.WriteTimeoutMillis > 0 {
		auroraCfg.WriteTimeout = time.Duration(cfg.Serial.WriteTimeoutMillis) * time.Millisecond
	}

	var instrument *aurora.Instrument
	if cfg.Serial.TraceFrames {
		instrument = frameTraceInstrument(logger)
	}

	inv, err := aurora.CreateInverterSerialReader(cfg.Serial.Device, cfg.Serial.Baud,
		address, &auroraCfg, logger, instrument)

	if err != nil {
		return nil, err
	}

	return func() *adactor.AuroraActor {
		return adactor.NewAuroraActor(inv, logger)
	}, nil
}

func frameTraceInstrument(logger *zap.Logger) *aurora.Instrument {
	return &aurora.Instrument{
		RecordFrame: func(direction string, frame []byte) {
			logger.Info("serial frame", zap.String("dir", direction), zap.String("bytes", fmt.Sprintf("% x", frame)))
		},
	}
}

func sensorUpdateLogger(logger *zap.Logger) func(evt any) {
	return func(evt any) {
		switch ev := evt.(type) {
		case domain.FloatSensorUpdateEvent:
			logger.Debug("sensor update", zap.String("sensor", ev.SensorId()), zap.Float64("value", ev.Value))
		case domain.TextSensorUpdateEvent:
			logger.Debug("sensor update", zap.String("sensor", ev.SensorId()), zap.String("value", ev.Value))
		case domain.BridgeStateUpdateEvent:
			logger.Info("bridge state", zap.Bool("connected", ev.Value))
		}
	}
}

func setConfigDefaults() {
	viper.SetDefault("log_level", "warn")
	viper.SetDefault("serial.device", "/dev/ttyUSB0")
	viper.SetDefault("serial.baud", 19200)
	viper.SetDefault("serial.address", 2)
	viper.SetDefault("monitor.poll_interval_millis", 10000)
	viper.SetDefault("monitor.energy_poll_interval_cycles", 6)
	viper.SetDefault("port", 8080)
}
