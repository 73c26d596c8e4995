// Package config loads daemon settings from flags, environment variables
// and an optional YAML file, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/soar/ovrinput/internal/haptics"
	"github.com/soar/ovrinput/internal/input"
	"github.com/soar/ovrinput/internal/ovr"
)

const (
	EnvPrefix = "OVRINPUT"
	FileName  = "ovrinput"
)

// Backends selectable with --backend.
const (
	BackendSim = "sim"
	BackendSDL = "sdl"
)

type Config struct {
	Listen    string
	Backend   string
	FrameRate int

	ThumbstickDeadzone input.Deadzone
	TriggerDeadzone    input.Deadzone

	HapticsSampleRate int
	ConstantTimeout   time.Duration
	JoinTimeout       time.Duration

	Tray bool
	Tail bool

	// ConfigFile is the file that was read, if any.
	ConfigFile string
}

// InputOptions returns the device options for an input.Manager.
func (c *Config) InputOptions() input.Options {
	return input.Options{
		ThumbstickDeadzone:       c.ThumbstickDeadzone,
		TriggerDeadzone:          c.TriggerDeadzone,
		HapticsSampleRate:        c.HapticsSampleRate,
		ConstantVibrationTimeout: c.ConstantTimeout,
		HapticsJoinTimeout:       c.JoinTimeout,
	}
}

// FrameInterval is the period of the frame loop.
func (c *Config) FrameInterval() time.Duration {
	return time.Second / time.Duration(c.FrameRate)
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("ovrinput", pflag.ContinueOnError)
	fs.String("config", "", "config file (default ./ovrinput.yaml or <user config dir>/ovrinput/ovrinput.yaml)")
	fs.String("listen", ":8080", "HTTP listen address; with --tail, the daemon to connect to")
	fs.String("backend", BackendSim, "controller backend: sim or sdl")
	fs.Int("frame-rate", 90, "frames polled per second")
	fs.Float32("deadzone.thumb-low", input.DefaultThumbstickDeadzone.Low, "thumbstick inner deadzone radius")
	fs.Float32("deadzone.thumb-high", input.DefaultThumbstickDeadzone.High, "thumbstick outer deadzone radius")
	fs.Float32("deadzone.trigger-low", input.DefaultTriggerDeadzone.Low, "trigger inner deadzone")
	fs.Float32("deadzone.trigger-high", input.DefaultTriggerDeadzone.High, "trigger outer deadzone")
	fs.Int("haptics.sample-rate", ovr.HapticsSampleRate, "buffered haptics sample rate in Hz")
	fs.Duration("haptics.constant-timeout", haptics.DefaultConstantTimeout, "how long a constant vibration lasts; 0 keeps it until changed")
	fs.Duration("haptics.join-timeout", haptics.DefaultJoinTimeout, "how long shutdown waits for a haptics goroutine")
	fs.Bool("tray", runtime.GOOS == "windows", "show a system tray icon")
	fs.Bool("tail", false, "print frames from a running daemon instead of starting one")
	return fs
}

// Load parses args and merges them with the environment and the config
// file. pflag.ErrHelp is returned unwrapped when -h is given.
func Load(args []string) (*Config, error) {
	fs := newFlagSet()
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, FileName))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	c := &Config{
		Listen:    v.GetString("listen"),
		Backend:   strings.ToLower(v.GetString("backend")),
		FrameRate: v.GetInt("frame-rate"),
		ThumbstickDeadzone: input.Deadzone{
			Low:  float32(v.GetFloat64("deadzone.thumb-low")),
			High: float32(v.GetFloat64("deadzone.thumb-high")),
		},
		TriggerDeadzone: input.Deadzone{
			Low:  float32(v.GetFloat64("deadzone.trigger-low")),
			High: float32(v.GetFloat64("deadzone.trigger-high")),
		},
		HapticsSampleRate: v.GetInt("haptics.sample-rate"),
		ConstantTimeout:   v.GetDuration("haptics.constant-timeout"),
		JoinTimeout:       v.GetDuration("haptics.join-timeout"),
		Tray:              v.GetBool("tray"),
		Tail:              v.GetBool("tail"),
		ConfigFile:        v.ConfigFileUsed(),
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate reports the first setting that is out of range.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendSim, BackendSDL:
	default:
		return fmt.Errorf("backend %q: must be %s or %s", c.Backend, BackendSim, BackendSDL)
	}
	if c.Listen == "" {
		return errors.New("listen address is empty")
	}
	if c.FrameRate < 1 || c.FrameRate > 1000 {
		return fmt.Errorf("frame-rate %d: must be between 1 and 1000", c.FrameRate)
	}
	for name, dz := range map[string]input.Deadzone{
		"deadzone.thumb":   c.ThumbstickDeadzone,
		"deadzone.trigger": c.TriggerDeadzone,
	} {
		if dz.Low < 0 || dz.Low >= 1 {
			return fmt.Errorf("%s-low %v: must be in [0, 1)", name, dz.Low)
		}
		if dz.High <= 0 || dz.High > 1 {
			return fmt.Errorf("%s-high %v: must be in (0, 1]", name, dz.High)
		}
	}
	if c.HapticsSampleRate < 1 {
		return fmt.Errorf("haptics.sample-rate %d: must be positive", c.HapticsSampleRate)
	}
	if c.ConstantTimeout < 0 {
		return fmt.Errorf("haptics.constant-timeout %v: must not be negative", c.ConstantTimeout)
	}
	if c.JoinTimeout <= 0 {
		return fmt.Errorf("haptics.join-timeout %v: must be positive", c.JoinTimeout)
	}
	return nil
}
