// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/turtlebridge/capture"
	"github.com/bureau-foundation/turtlebridge/lib/clock"
	"github.com/bureau-foundation/turtlebridge/lib/config"
	"github.com/bureau-foundation/turtlebridge/lib/geometry"
	"github.com/bureau-foundation/turtlebridge/lib/mission"
	"github.com/bureau-foundation/turtlebridge/lib/process"
	"github.com/bureau-foundation/turtlebridge/lib/version"
	"github.com/bureau-foundation/turtlebridge/rosbridge"
	"github.com/bureau-foundation/turtlebridge/turtlebot"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

type options struct {
	configPath   string
	outputPath   string
	thermal      bool
	pollInterval time.Duration
	topicTimeout time.Duration
	fetchRetries int
}

// taskError reports a task that ended without completing. It exits
// with status 2 so scripts can tell robot failures from usage errors.
type taskError struct {
	task   string
	status mission.Status
}

func (e *taskError) Error() string {
	return fmt.Sprintf("%s ended with status %s", e.task, e.status)
}

func (e *taskError) ExitCode() int { return 2 }

func run() error {
	var opts options
	flagSet := pflag.NewFlagSet("turtlebridge", pflag.ContinueOnError)
	flagSet.StringVar(&opts.configPath, "config", "", "path to config file (default: $TURTLEBRIDGE_CONFIG)")
	flagSet.StringVarP(&opts.outputPath, "output", "o", "", "write the inspection image to this file")
	flagSet.BoolVar(&opts.thermal, "thermal", false, "take a thermal image instead of a camera image")
	flagSet.DurationVar(&opts.pollInterval, "poll-interval", time.Second, "interval between mission status polls")
	flagSet.DurationVar(&opts.topicTimeout, "topic-timeout", 10*time.Second, "how long to wait for the robot's status and odometry topics")
	flagSet.IntVar(&opts.fetchRetries, "fetch-retries", 5, "attempts to download an inspection result")
	showVersion := flagSet.Bool("version", false, "print version information and exit")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if *showVersion {
		version.Print("turtlebridge")
		return nil
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}

	args := flagSet.Args()
	if len(args) == 0 {
		printHelp(flagSet)
		return fmt.Errorf("missing subcommand")
	}
	if opts.pollInterval <= 0 {
		return fmt.Errorf("--poll-interval must be positive")
	}
	if opts.topicTimeout <= 0 {
		return fmt.Errorf("--topic-timeout must be positive")
	}

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.Logging, os.Stderr)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	robot, closeRobot, err := connect(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeRobot()

	host := &host{robot: robot, clock: clock.Real(), logger: logger, options: opts}
	switch args[0] {
	case "drive":
		return host.drive(ctx, args[1:])
	case "inspect":
		return host.inspect(ctx, args[1:])
	case "status":
		return host.status(ctx, os.Stdout)
	default:
		return fmt.Errorf("unknown subcommand %q", args[0])
	}
}

func loadConfig(path string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := cfg.EnsurePaths(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg config.LoggingConfig, output io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, fmt.Errorf("logging.level: %w", err)
	}
	handlerOptions := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(output, handlerOptions)), nil
	}
	return slog.New(slog.NewTextHandler(output, handlerOptions)), nil
}

// connect dials rosbridge and assembles the adapter.
func connect(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*turtlebot.Robot, func(), error) {
	dialCtx, cancel := context.WithTimeout(ctx, cfg.Rosbridge.DialTimeout.Duration())
	defer cancel()

	client, err := rosbridge.Dial(dialCtx, rosbridge.ClientConfig{
		URL:    cfg.Rosbridge.URL,
		Origin: cfg.Rosbridge.Origin,
		Logger: logger,
	})
	if err != nil {
		return nil, nil, err
	}
	closeClient := func() {
		if err := client.Close(); err != nil {
			logger.Debug("closing rosbridge connection", "error", err)
		}
	}

	channel, err := capture.Open(capture.ChannelConfig{
		Bus:           client,
		Topic:         cfg.Topics.Image,
		ThrottleRate:  cfg.Topics.ImageThrottleRate,
		StorageFolder: cfg.Storage.StorageFolder,
		Logger:        logger,
	})
	if err != nil {
		closeClient()
		return nil, nil, err
	}

	robot, err := turtlebot.New(turtlebot.Config{
		Bus:                  client,
		Capture:              channel,
		GoalTopic:            cfg.Topics.Goal,
		StatusTopic:          cfg.Topics.Status,
		PoseTopic:            cfg.Topics.Pose,
		DispatchTimeout:      cfg.Mission.DispatchTimeout.Duration(),
		InspectionTimeout:    cfg.Mission.InspectionTaskTimeout.Duration(),
		SharedDeadline:       cfg.SharedDeadline(),
		ImageFileType:        cfg.Metadata.ImageFileType,
		ThermalImageFileType: cfg.Metadata.ThermalImageFileType,
		Logger:               logger,
	})
	if err != nil {
		closeClient()
		return nil, nil, err
	}
	return robot, closeClient, nil
}

// host plays the mission host: submit, poll, fetch.
type host struct {
	robot   *turtlebot.Robot
	clock   clock.Clock
	logger  *slog.Logger
	options options
}

func (h *host) drive(ctx context.Context, args []string) error {
	if len(args) != 2 && len(args) != 3 {
		return fmt.Errorf("usage: turtlebridge drive X Y [YAW]")
	}
	values, err := parseFloats(args)
	if err != nil {
		return err
	}
	var yaw float64
	if len(values) == 3 {
		yaw = values[2]
	}
	task := mission.DriveToPose{Pose: geometry.Pose{
		Position:    geometry.Position{X: values[0], Y: values[1], Frame: geometry.FrameRobot},
		Orientation: geometry.YawOrientation(yaw, geometry.FrameRobot),
		Frame:       geometry.FrameRobot,
	}}

	if err := h.robot.WaitForTopics(ctx, h.options.topicTimeout, false); err != nil {
		return err
	}
	runID, err := h.robot.Submit(ctx, task)
	if err != nil {
		return err
	}
	status, err := h.awaitTerminal(ctx, runID, task)
	if err != nil {
		return err
	}
	if status != mission.StatusCompleted {
		return &taskError{task: "drive", status: status}
	}
	return nil
}

func (h *host) inspect(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("usage: turtlebridge inspect [--thermal] X Y Z")
	}
	values, err := parseFloats(args)
	if err != nil {
		return err
	}
	target := geometry.Position{X: values[0], Y: values[1], Z: values[2], Frame: geometry.FrameAsset}
	var task mission.Task = mission.TakeImage{Target: target}
	if h.options.thermal {
		task = mission.TakeThermalImage{Target: target}
	}

	if err := h.robot.WaitForTopics(ctx, h.options.topicTimeout, true); err != nil {
		return err
	}
	runID, err := h.robot.Submit(ctx, task)
	if err != nil {
		return err
	}
	status, err := h.awaitTerminal(ctx, runID, task)
	if err != nil {
		return err
	}
	if status != mission.StatusCompleted {
		return &taskError{task: "inspection", status: status}
	}

	references, err := h.robot.InspectionReferences(runID, task)
	if err != nil {
		return err
	}
	for _, reference := range references {
		inspection, err := h.fetch(ctx, reference)
		if err != nil {
			return err
		}
		if h.options.outputPath == "" {
			h.logger.Info("inspection complete; use --output to save the image",
				"run_id", reference.ID,
				"bytes", len(inspection.Data),
			)
			continue
		}
		if err := os.WriteFile(h.options.outputPath, inspection.Data, 0644); err != nil {
			return fmt.Errorf("writing %s: %w", h.options.outputPath, err)
		}
		h.logger.Info("saved inspection image",
			"run_id", reference.ID,
			"path", h.options.outputPath,
			"file_type", reference.Metadata.FileType,
		)
	}
	return nil
}

// status prints the mission status and pose once the subscriptions
// have received their first messages, or whatever is known when the
// topic timeout passes.
func (h *host) status(ctx context.Context, output io.Writer) error {
	if err := h.robot.WaitForTopics(ctx, h.options.topicTimeout, true); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		h.logger.Warn("robot topics incomplete", "error", err)
	}

	fmt.Fprintf(output, "mission status: %s\n", h.robot.MissionStatus())
	pose, err := h.robot.Pose()
	if err != nil {
		fmt.Fprintf(output, "pose: %v\n", err)
		return nil
	}
	fmt.Fprintf(output, "pose: x=%.3f y=%.3f yaw=%.3f\n",
		pose.Position.X, pose.Position.Y, pose.Orientation.Yaw())
	return nil
}

// awaitTerminal polls the mission status until it is terminal.
func (h *host) awaitTerminal(ctx context.Context, runID turtlebot.RunID, task mission.Task) (mission.Status, error) {
	ticker := h.clock.NewTicker(h.options.pollInterval)
	defer ticker.Stop()

	for {
		status := h.robot.MissionStatus()
		h.robot.LogStatus(runID, status, task)
		if status.Terminal() {
			return status, nil
		}
		select {
		case <-ctx.Done():
			h.robot.Abort()
			return status, ctx.Err()
		case <-ticker.C:
		}
	}
}

// fetch downloads a result, retrying while it is absent.
func (h *host) fetch(ctx context.Context, reference mission.Reference) (*mission.Inspection, error) {
	ticker := h.clock.NewTicker(h.options.pollInterval)
	defer ticker.Stop()

	var result mission.Result
	for attempt := 1; attempt <= h.options.fetchRetries; attempt++ {
		result = h.robot.FetchResult(reference)
		if result.Ready() {
			return result.Inspection, nil
		}
		h.logger.Info("inspection result not ready", "run_id", reference.ID, "attempt", attempt, "reason", result.Absence)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
	return nil, fmt.Errorf("no inspection result for run %s: %s", reference.ID, result.Absence)
}

func parseFloats(args []string) ([]float64, error) {
	values := make([]float64, len(args))
	for i, arg := range args {
		value, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		values[i] = value
	}
	return values, nil
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `turtlebridge runs one task on a TurtleBot through rosbridge.

Usage:
  turtlebridge [flags] drive X Y [YAW]
  turtlebridge [flags] inspect [--thermal] [--output FILE] X Y Z
  turtlebridge [flags] status

Exit status is 2 when the robot reports a task as failed.

Flags:
`)
	flagSet.PrintDefaults()
}
