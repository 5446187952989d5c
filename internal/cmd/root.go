// SPDX-License-Identifier: AGPL-3.0-or-later
// hpsdr-emu - Emulate an OpenHPSDR Protocol 1 radio in a single binary
// Copyright (C) 2026 Jacob McSwain
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// The source code is available at <https://github.com/USA-RedDragon/hpsdr-emu>

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"syscall"
	"time"

	"github.com/USA-RedDragon/configulator"
	"github.com/USA-RedDragon/hpsdr-emu/internal/config"
	"github.com/USA-RedDragon/hpsdr-emu/internal/dsp"
	"github.com/USA-RedDragon/hpsdr-emu/internal/hpsdr/hpsdrconst"
	"github.com/USA-RedDragon/hpsdr-emu/internal/hpsdr/protocol1"
	"github.com/USA-RedDragon/hpsdr-emu/internal/metrics"
	"github.com/USA-RedDragon/hpsdr-emu/internal/pprof"
	"github.com/USA-RedDragon/hpsdr-emu/internal/radio"
	"github.com/go-co-op/gocron/v2"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"github.com/ztrue/shutdown"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func NewCommand(version, commit string) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "hpsdr-emu",
		Version: fmt.Sprintf("%s - %s", version, commit),
		Annotations: map[string]string{
			"version": version,
			"commit":  commit,
		},
		RunE:              runRoot,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}
	return cmd
}

func runRoot(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	fmt.Printf("hpsdr-emu - %s (%s)\n", cmd.Annotations["version"], cmd.Annotations["commit"])

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	setupLogger(cfg)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	cleanup, err := setupTracing(cfg)
	if err != nil {
		return fmt.Errorf("failed to setup tracing: %w", err)
	}
	defer func() {
		if err := cleanup(ctx); err != nil {
			slog.Error("Failed to shutdown tracer", "error", err)
		}
	}()

	startBackgroundServices(cfg)

	hw, err := hpsdrconst.ParseHardware(cfg.Radio)
	if err != nil {
		return err
	}
	mac, err := resolveMAC(cfg)
	if err != nil {
		return err
	}

	state := radio.NewState(hw, mac)
	generator := dsp.NewGenerator(cfg.ToneOffset, cfg.NoiseLevel)

	var echo *dsp.EchoBuffer
	var source dsp.Source = generator
	if cfg.Echo {
		echo = dsp.NewEchoBuffer(state.SampleRate)
		source = echo
	}

	slog.Info("Starting HPSDR emulator",
		"radio", hw.String(),
		"tone", cfg.ToneOffset,
		"noise", cfg.NoiseLevel,
		"echo", cfg.Echo)

	server := protocol1.MakeServer(cfg, state, source, echo)
	metrics.NewMetrics().SampleRate.Set(float64(state.SampleRate))

	serverCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if err := server.Start(serverCtx); err != nil {
		return fmt.Errorf("failed to start Protocol 1 server: %w", err)
	}

	scheduler, err := setupScheduler(cfg, server)
	if err != nil {
		return err
	}
	scheduler.Start()

	stop := func(sig os.Signal) {
		slog.Info("Shutting down due to signal", "signal", sig)
		cancel()
		server.Stop()
		if err := scheduler.Shutdown(); err != nil {
			slog.Error("Failed to stop scheduler", "error", err)
		}
	}
	defer stop(syscall.SIGINT)

	shutdown.AddWithParam(stop)

	shutdown.Listen(syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGHUP)

	return nil
}

// loadConfig loads the configuration from context
func loadConfig(ctx context.Context) (*config.Config, error) {
	c, err := configulator.FromContext[config.Config](ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get config from context: %w", err)
	}

	cfg, err := c.LoadWithoutValidation()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// setupLogger configures the structured logger
func setupLogger(cfg *config.Config) {
	var logger *slog.Logger
	switch cfg.LogLevel {
	case config.LogLevelDebug:
		logger = slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: slog.LevelDebug}))
	case config.LogLevelInfo:
		logger = slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: slog.LevelInfo}))
	case config.LogLevelWarn:
		logger = slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelWarn}))
	case config.LogLevelError:
		logger = slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelError}))
	default:
		// Fall back to info level for unrecognized log levels to prevent nil logger panic
		logger = slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: slog.LevelInfo}))
	}
	slog.SetDefault(logger)
}

// resolveMAC parses the configured MAC or generates a random one.
func resolveMAC(cfg *config.Config) ([6]byte, error) {
	if cfg.MAC != "" {
		return radio.ParseMAC(cfg.MAC)
	}
	return radio.RandomMAC()
}

// setupScheduler creates the job scheduler with the periodic statistics job.
func setupScheduler(cfg *config.Config, server *protocol1.Server) (gocron.Scheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	_, err = scheduler.NewJob(
		gocron.DurationJob(time.Duration(cfg.Stats.IntervalMinutes)*time.Minute),
		gocron.NewTask(server.LogStats),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule statistics job: %w", err)
	}
	return scheduler, nil
}

// setupTracing initializes OpenTelemetry tracing if configured.
// When tracing is not configured it returns a no-op cleanup function.
func setupTracing(cfg *config.Config) (func(context.Context) error, error) {
	if cfg.Metrics.OTLPEndpoint == "" {
		return func(context.Context) error { return nil }, nil
	}
	return initTracer(cfg), nil
}

// startBackgroundServices starts metrics and pprof servers
func startBackgroundServices(cfg *config.Config) {
	go func() {
		err := metrics.CreateMetricsServer(cfg)
		if err != nil {
			slog.Error("Failed to start metrics server", "error", err)
		}
	}()
	go pprof.CreatePProfServer(cfg)
}

func initTracer(cfg *config.Config) func(context.Context) error {
	exporter, err := otlptrace.New(
		context.Background(),
		otlptracegrpc.NewClient(
			otlptracegrpc.WithInsecure(),
			otlptracegrpc.WithEndpoint(cfg.Metrics.OTLPEndpoint),
		),
	)
	if err != nil {
		slog.Error("Failed tracing app", "error", err)
	}
	resources, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			attribute.String("service.name", "hpsdr-emu"),
			attribute.String("library.language", "go"),
		),
	)
	if err != nil {
		slog.Error("Could not set resources", "error", err)
	}

	otel.SetTracerProvider(
		sdktrace.NewTracerProvider(
			sdktrace.WithSampler(sdktrace.AlwaysSample()),
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(resources),
		),
	)
	return exporter.Shutdown
}
