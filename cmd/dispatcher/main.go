package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dinaMadelen/elevdispatch/internal/elevactuate"
	"github.com/dinaMadelen/elevdispatch/internal/elevconfig"
	"github.com/dinaMadelen/elevdispatch/internal/elevdispatch"
	"github.com/dinaMadelen/elevdispatch/internal/elevlock"
	"github.com/dinaMadelen/elevdispatch/internal/elevqueue"
	"github.com/dinaMadelen/elevdispatch/internal/elevstore"
	"github.com/dinaMadelen/elevdispatch/internal/elevutils"
	"github.com/dinaMadelen/elevdispatch/internal/elevworker"
	"github.com/dinaMadelen/elevdispatch/internal/logger"
	"github.com/rs/zerolog"
)

var Logger = logger.GetLoggerConfigured(zerolog.InfoLevel)

func main() {
	args := elevutils.ProcessCmdArgs()

	cfg, err := loadConfig(args)
	if err != nil {
		Logger.Fatal().Err(err).Msg("Invalid configuration")
	}
	logger.SetLevel(cfg.LogLevel)

	// Starting Programme
	Logger.Info().Msgf("Starting Dispatcher %s with %d workers and %d elevators", elevutils.GetGitHash(), cfg.Workers, len(cfg.Cars))

	store, err := elevstore.NewMemory(cfg.Cars)
	if err != nil {
		Logger.Fatal().Err(err).Msg("Error Creating Elevator Store")
	}
	locks := elevlock.NewRegistry(cfg.CarIds()...)

	actuator, closeActuator, err := newActuator(cfg.Actuator, store, locks)
	if err != nil {
		Logger.Fatal().Err(err).Msg("Error Creating Actuator")
	}
	defer closeActuator()

	queue := elevqueue.New()
	pool := elevworker.NewPool(queue, store, locks, actuator, cfg.WorkerOptions())
	dispatcher := elevdispatch.NewDispatcher(queue, store, pool, cfg.MinFloor, cfg.MaxFloor)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dispatcher.Start(ctx)
	defer dispatcher.Stop()

	if args.Interactive {
		if err := runPanel(ctx, dispatcher); err != nil {
			Logger.Error().Err(err).Msg("Console panel stopped")
		}
		return
	}

	<-ctx.Done()
	Logger.Info().Msg("Shutting down Dispatcher")
}

func loadConfig(args elevutils.CmdArgs) (elevconfig.Config, error) {
	cfg := elevconfig.Default()
	if args.ConfigPath != "" {
		loaded, err := elevconfig.Load(args.ConfigPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	if args.EnvPath != "" {
		if err := cfg.ApplyEnvFile(args.EnvPath); err != nil {
			return cfg, err
		}
	}
	return cfg, cfg.Validate()
}

func newActuator(cfg elevconfig.ActuatorConfig, store elevstore.Store, locks *elevlock.Registry) (elevactuate.Actuator, func(), error) {
	switch cfg.Kind {
	case elevconfig.ActuatorSimulator:
		return elevactuate.NewSimulator(store, locks, cfg.FloorTravel, cfg.DoorOpen), func() {}, nil
	case elevconfig.ActuatorUDP:
		udp, err := elevactuate.NewUDPActuator(cfg.LocalAddr, cfg.Addr)
		if err != nil {
			return nil, nil, err
		}
		return udp, func() { udp.Close() }, nil
	case elevconfig.ActuatorNone:
		return elevactuate.Nop, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown actuator kind %q", cfg.Kind)
	}
}
