// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// EnvironmentVariable names the variable [Load] reads the config path
// from.
const EnvironmentVariable = "TURTLEBRIDGE_CONFIG"

// Seconds is a duration written in the config file as a number of
// seconds (fractions allowed), for example `inspection_task_timeout: 60`.
type Seconds float64

// Duration converts s to a time.Duration.
func (s Seconds) Duration() time.Duration {
	return time.Duration(float64(s) * float64(time.Second))
}

// Config is the master configuration for the TurtleBot adapter.
type Config struct {
	// Rosbridge configures the websocket connection to the robot.
	Rosbridge RosbridgeConfig `yaml:"rosbridge"`

	// Topics names the ROS topics the adapter subscribes and publishes to.
	Topics TopicsConfig `yaml:"topics"`

	// Mission configures task timeouts.
	Mission MissionConfig `yaml:"mission"`

	// Metadata configures the file types reported for inspections.
	Metadata MetadataConfig `yaml:"metadata"`

	// Storage configures where captured images are written.
	Storage StorageConfig `yaml:"storage"`

	// Logging configures the structured logger of the binaries.
	Logging LoggingConfig `yaml:"logging"`
}

// RosbridgeConfig configures the rosbridge websocket server connection.
type RosbridgeConfig struct {
	// URL is the websocket endpoint, e.g. ws://turtlebot.local:9090.
	URL string `yaml:"url"`

	// Origin is sent in the websocket handshake.
	// Default: http://localhost/
	Origin string `yaml:"origin"`

	// DialTimeout bounds the initial connection.
	// Default: 10
	DialTimeout Seconds `yaml:"dial_timeout"`
}

// TopicsConfig names the ROS topics used by the adapter.
type TopicsConfig struct {
	// Goal receives move_base navigation goals.
	Goal string `yaml:"goal"`

	// Status carries move_base goal status arrays.
	Status string `yaml:"status"`

	// Pose carries the robot odometry.
	Pose string `yaml:"pose"`

	// Image carries compressed camera frames.
	Image string `yaml:"image"`

	// ImageThrottleRate is the minimum interval between image frames
	// the rosbridge server forwards, in milliseconds.
	// Default: 1000
	ImageThrottleRate int `yaml:"image_throttle_rate"`
}

// MissionConfig configures the timeouts of robot tasks.
type MissionConfig struct {
	// InspectionTaskTimeout bounds driving to the inspection pose and
	// capturing the image.
	// Default: 60
	InspectionTaskTimeout Seconds `yaml:"inspection_task_timeout"`

	// DispatchTimeout bounds the wait for move_base to accept a goal.
	// Default: 20
	DispatchTimeout Seconds `yaml:"dispatch_timeout"`

	// SharedDeadline makes the navigation and capture phases of an
	// inspection share one InspectionTaskTimeout budget. When false,
	// each phase gets its own budget.
	// Default: true
	SharedDeadline *bool `yaml:"shared_deadline"`
}

// MetadataConfig configures the file types reported with inspection
// references. Values are image format names understood by the capture
// package ("jpeg", "png").
type MetadataConfig struct {
	// ImageFileType is the file type of plain images.
	// Default: jpeg
	ImageFileType string `yaml:"image_filetype"`

	// ThermalImageFileType is the file type thermal images are
	// re-encoded to.
	// Default: png
	ThermalImageFileType string `yaml:"thermal_image_filetype"`
}

// StorageConfig configures captured image storage.
type StorageConfig struct {
	// StorageFolder is the directory captured images and the capture
	// index are written to. Created on demand.
	StorageFolder string `yaml:"storage_folder"`
}

// LoggingConfig configures slog output of the binaries.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	// Default: info
	Level string `yaml:"level"`

	// Format is "text" or "json".
	// Default: text
	Format string `yaml:"format"`
}

// Default returns the default configuration. Values from the config
// file are merged over it.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	shared := true

	return &Config{
		Rosbridge: RosbridgeConfig{
			URL:         "ws://localhost:9090",
			Origin:      "http://localhost/",
			DialTimeout: 10,
		},
		Topics: TopicsConfig{
			Goal:              "/move_base/goal",
			Status:            "/move_base/status",
			Pose:              "/odom",
			Image:             "/camera/rgb/image_raw/compressed",
			ImageThrottleRate: 1000,
		},
		Mission: MissionConfig{
			InspectionTaskTimeout: 60,
			DispatchTimeout:       20,
			SharedDeadline:        &shared,
		},
		Metadata: MetadataConfig{
			ImageFileType:        "jpeg",
			ThermalImageFileType: "png",
		},
		Storage: StorageConfig{
			StorageFolder: filepath.Join(homeDir, ".cache", "turtlebridge", "images"),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from the file named by TURTLEBRIDGE_CONFIG.
// There is no fallback: if the variable is unset, Load fails.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your turtlebridge.yaml config file, or use --config flag", EnvironmentVariable)
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from path, merged over Default. Files
// ending in .json or .jsonc may contain comments and trailing commas.
// ${HOME} and ${VAR:-default} patterns in path fields are expanded.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		// JSON is a YAML subset, so after stripping comments the yaml
		// tags apply unchanged.
		data = jsonc.ToJSON(data)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg.expandVariables()
	return cfg, nil
}

// SharedDeadline reports whether inspections use one cumulative budget.
func (c *Config) SharedDeadline() bool {
	return c.Mission.SharedDeadline == nil || *c.Mission.SharedDeadline
}

func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}
	c.Storage.StorageFolder = expandVars(c.Storage.StorageFolder, vars)
}

// varPattern matches ${VAR} and ${VAR:-default}.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration and reports every problem found.
func (c *Config) Validate() error {
	var errs []error

	if parsed, err := url.Parse(c.Rosbridge.URL); err != nil {
		errs = append(errs, fmt.Errorf("rosbridge.url: %w", err))
	} else if parsed.Scheme != "ws" && parsed.Scheme != "wss" {
		errs = append(errs, fmt.Errorf("rosbridge.url must use ws:// or wss://, got %q", c.Rosbridge.URL))
	}
	if c.Rosbridge.DialTimeout <= 0 {
		errs = append(errs, fmt.Errorf("rosbridge.dial_timeout must be positive"))
	}

	topics := map[string]string{
		"topics.goal":   c.Topics.Goal,
		"topics.status": c.Topics.Status,
		"topics.pose":   c.Topics.Pose,
		"topics.image":  c.Topics.Image,
	}
	for _, name := range []string{"topics.goal", "topics.status", "topics.pose", "topics.image"} {
		if !strings.HasPrefix(topics[name], "/") {
			errs = append(errs, fmt.Errorf("%s must be an absolute ROS topic name, got %q", name, topics[name]))
		}
	}
	if c.Topics.ImageThrottleRate < 0 {
		errs = append(errs, fmt.Errorf("topics.image_throttle_rate must not be negative"))
	}

	if !positiveSeconds(c.Mission.InspectionTaskTimeout) {
		errs = append(errs, fmt.Errorf("mission.inspection_task_timeout must be a positive number of seconds"))
	}
	if !positiveSeconds(c.Mission.DispatchTimeout) {
		errs = append(errs, fmt.Errorf("mission.dispatch_timeout must be a positive number of seconds"))
	}

	fileTypes := []string{"jpeg", "jpg", "png"}
	if !contains(fileTypes, strings.ToLower(c.Metadata.ImageFileType)) {
		errs = append(errs, fmt.Errorf("metadata.image_filetype must be one of: %v", fileTypes))
	}
	if !contains(fileTypes, strings.ToLower(c.Metadata.ThermalImageFileType)) {
		errs = append(errs, fmt.Errorf("metadata.thermal_image_filetype must be one of: %v", fileTypes))
	}

	if c.Storage.StorageFolder == "" {
		errs = append(errs, fmt.Errorf("storage.storage_folder is required"))
	}

	if !contains([]string{"debug", "info", "warn", "error"}, c.Logging.Level) {
		errs = append(errs, fmt.Errorf("logging.level must be one of: debug, info, warn, error"))
	}
	if !contains([]string{"text", "json"}, c.Logging.Format) {
		errs = append(errs, fmt.Errorf("logging.format must be text or json"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// EnsurePaths creates the storage folder if it does not exist.
func (c *Config) EnsurePaths() error {
	if err := os.MkdirAll(c.Storage.StorageFolder, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", c.Storage.StorageFolder, err)
	}
	return nil
}

func positiveSeconds(s Seconds) bool {
	value := float64(s)
	return value > 0 && !math.IsInf(value, 0) && !math.IsNaN(value)
}

func contains(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}
