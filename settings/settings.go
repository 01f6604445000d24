package settings

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/pmove/game"
	"github.com/oomph-ac/pmove/oerror"
	"github.com/oomph-ac/pmove/pmove"
	"github.com/pelletier/go-toml"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Settings contains everything about character movement that can be configured
// from a file.
type Settings struct {
	Movement struct {
		// Gravity is the gravity vector in units per second squared.
		Gravity       []float64 `toml:"gravity" yaml:"gravity"`
		WalkSpeed     float64   `toml:"walk_speed" yaml:"walk_speed"`
		CrouchSpeed   float64   `toml:"crouch_speed" yaml:"crouch_speed"`
		MaxStepHeight float64   `toml:"max_step_height" yaml:"max_step_height"`
		MaxJumpHeight float64   `toml:"max_jump_height" yaml:"max_jump_height"`
		Mass          float64   `toml:"mass" yaml:"mass"`
	} `toml:"movement" yaml:"movement"`
	Bounds struct {
		Width            float64 `toml:"width" yaml:"width"`
		NormalHeight     float64 `toml:"normal_height" yaml:"normal_height"`
		CrouchHeight     float64 `toml:"crouch_height" yaml:"crouch_height"`
		DeadHeight       float64 `toml:"dead_height" yaml:"dead_height"`
		NormalViewHeight float64 `toml:"normal_view_height" yaml:"normal_view_height"`
		CrouchViewHeight float64 `toml:"crouch_view_height" yaml:"crouch_view_height"`
	} `toml:"bounds" yaml:"bounds"`
	Mantle struct {
		Reach       float64 `toml:"reach" yaml:"reach"`
		Height      float64 `toml:"height" yaml:"height"`
		MinFlatness float64 `toml:"min_flatness" yaml:"min_flatness"`
		// Phase durations in milliseconds.
		HangTime        float64 `toml:"hang_time" yaml:"hang_time"`
		PullTime        float64 `toml:"pull_time" yaml:"pull_time"`
		ShiftHandsTime  float64 `toml:"shift_hands_time" yaml:"shift_hands_time"`
		PushTime        float64 `toml:"push_time" yaml:"push_time"`
		JumpHoldTrigger float64 `toml:"jump_hold_trigger" yaml:"jump_hold_trigger"`
	} `toml:"mantle" yaml:"mantle"`
	Debug struct {
		// LogLevel is any level logrus understands.
		LogLevel string `toml:"log_level" yaml:"log_level"`
		// Modes are the names of the debug modes enabled for every character.
		Modes []string `toml:"modes" yaml:"modes"`
		// Ground enables the allsolid, kickoff and steep slope diagnostics.
		Ground bool `toml:"ground" yaml:"ground"`
	} `toml:"debug" yaml:"debug"`
}

// DefaultSettings returns the settings matching pmove.DefaultConfig.
func DefaultSettings() Settings {
	return FromConfig(pmove.DefaultConfig())
}

// FromConfig returns the settings describing the given config.
func FromConfig(c pmove.Config) Settings {
	s := Settings{}
	s.Movement.Gravity = []float64{float64(c.Gravity[0]), float64(c.Gravity[1]), float64(c.Gravity[2])}
	s.Movement.WalkSpeed = float64(c.WalkSpeed)
	s.Movement.CrouchSpeed = float64(c.CrouchSpeed)
	s.Movement.MaxStepHeight = float64(c.MaxStepHeight)
	s.Movement.MaxJumpHeight = float64(c.MaxJumpHeight)
	s.Movement.Mass = float64(c.Mass)

	s.Bounds.Width = float64(c.BoundsWidth)
	s.Bounds.NormalHeight = float64(c.NormalHeight)
	s.Bounds.CrouchHeight = float64(c.CrouchHeight)
	s.Bounds.DeadHeight = float64(c.DeadHeight)
	s.Bounds.NormalViewHeight = float64(c.NormalViewHeight)
	s.Bounds.CrouchViewHeight = float64(c.CrouchViewHeight)

	s.Mantle.Reach = float64(c.Mantle.Reach)
	s.Mantle.Height = float64(c.Mantle.Height)
	s.Mantle.MinFlatness = float64(c.Mantle.MinFlatness)
	s.Mantle.HangTime = float64(c.Mantle.HangTime)
	s.Mantle.PullTime = float64(c.Mantle.PullTime)
	s.Mantle.ShiftHandsTime = float64(c.Mantle.ShiftHandsTime)
	s.Mantle.PushTime = float64(c.Mantle.PushTime)
	s.Mantle.JumpHoldTrigger = float64(c.Mantle.JumpHoldTrigger)

	s.Debug.LogLevel = logrus.InfoLevel.String()
	return s
}

// Validate checks that the settings describe a usable config.
func (s Settings) Validate() error {
	if len(s.Movement.Gravity) != 3 {
		return oerror.New("settings: gravity needs 3 components, got %d", len(s.Movement.Gravity))
	}
	if s.Movement.Gravity[0] == 0 && s.Movement.Gravity[1] == 0 && s.Movement.Gravity[2] == 0 {
		return oerror.New(game.ErrorZeroGravity)
	}

	tunables := []struct {
		name  string
		value float64
	}{
		{"movement.walk_speed", s.Movement.WalkSpeed},
		{"movement.crouch_speed", s.Movement.CrouchSpeed},
		{"movement.max_step_height", s.Movement.MaxStepHeight},
		{"movement.max_jump_height", s.Movement.MaxJumpHeight},
		{"movement.mass", s.Movement.Mass},
		{"bounds.width", s.Bounds.Width},
		{"bounds.normal_height", s.Bounds.NormalHeight},
		{"bounds.crouch_height", s.Bounds.CrouchHeight},
		{"bounds.dead_height", s.Bounds.DeadHeight},
		{"bounds.normal_view_height", s.Bounds.NormalViewHeight},
		{"bounds.crouch_view_height", s.Bounds.CrouchViewHeight},
		{"mantle.reach", s.Mantle.Reach},
		{"mantle.height", s.Mantle.Height},
		{"mantle.min_flatness", s.Mantle.MinFlatness},
		{"mantle.hang_time", s.Mantle.HangTime},
		{"mantle.pull_time", s.Mantle.PullTime},
		{"mantle.shift_hands_time", s.Mantle.ShiftHandsTime},
		{"mantle.push_time", s.Mantle.PushTime},
		{"mantle.jump_hold_trigger", s.Mantle.JumpHoldTrigger},
	}
	for _, t := range tunables {
		if t.value < 0 {
			return oerror.New(game.ErrorNegativeTunable, t.name, t.value)
		}
	}

	if s.Bounds.CrouchHeight >= s.Bounds.NormalHeight {
		return oerror.New(game.ErrorInvertedHeights, s.Bounds.CrouchHeight, s.Bounds.NormalHeight)
	}
	for _, name := range s.Debug.Modes {
		if _, ok := pmove.DebugModeFromName(name); !ok {
			return oerror.New("settings: unknown debug mode %q", name)
		}
	}
	if s.Debug.LogLevel != "" {
		if _, err := logrus.ParseLevel(s.Debug.LogLevel); err != nil {
			return oerror.Wrap(err, "settings: bad log level")
		}
	}
	return nil
}

// Config converts the settings into the immutable movement config.
func (s Settings) Config() pmove.Config {
	c := pmove.DefaultConfig()
	if len(s.Movement.Gravity) == 3 {
		c.Gravity = mgl32.Vec3{float32(s.Movement.Gravity[0]), float32(s.Movement.Gravity[1]), float32(s.Movement.Gravity[2])}
	}
	c.WalkSpeed = float32(s.Movement.WalkSpeed)
	c.CrouchSpeed = float32(s.Movement.CrouchSpeed)
	c.MaxStepHeight = float32(s.Movement.MaxStepHeight)
	c.MaxJumpHeight = float32(s.Movement.MaxJumpHeight)
	c.Mass = float32(s.Movement.Mass)

	c.BoundsWidth = float32(s.Bounds.Width)
	c.NormalHeight = float32(s.Bounds.NormalHeight)
	c.CrouchHeight = float32(s.Bounds.CrouchHeight)
	c.DeadHeight = float32(s.Bounds.DeadHeight)
	c.NormalViewHeight = float32(s.Bounds.NormalViewHeight)
	c.CrouchViewHeight = float32(s.Bounds.CrouchViewHeight)

	c.Mantle = pmove.MantleConfig{
		Reach:           float32(s.Mantle.Reach),
		Height:          float32(s.Mantle.Height),
		MinFlatness:     float32(s.Mantle.MinFlatness),
		HangTime:        float32(s.Mantle.HangTime),
		PullTime:        float32(s.Mantle.PullTime),
		ShiftHandsTime:  float32(s.Mantle.ShiftHandsTime),
		PushTime:        float32(s.Mantle.PushTime),
		JumpHoldTrigger: float32(s.Mantle.JumpHoldTrigger),
	}
	return c
}

// Logger returns a logger at the configured level.
func (s Settings) Logger() *logrus.Logger {
	log := logrus.New()
	if lvl, err := logrus.ParseLevel(s.Debug.LogLevel); err == nil {
		log.SetLevel(lvl)
	}
	return log
}

// Apply enables the configured debug output on a player.
func (s Settings) Apply(p *pmove.Player) {
	for _, name := range s.Debug.Modes {
		if mode, ok := pmove.DebugModeFromName(name); ok {
			p.Dbg.Enable(mode, true)
		}
	}
	p.SetDebugLevel(s.Debug.Ground)
}

// SaveDefault will create and save the default settings file. If the file already exists, it will return an error.
func SaveDefault(path string) error {
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return errors.New("settings file already exists")
	}
	data, err := marshal(path, DefaultSettings())
	if err != nil {
		return oerror.Wrap(err, "failed encoding default settings")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return oerror.Wrap(err, "failed creating settings file")
	}
	return nil
}

// Load will load the settings from your settings file, and return an error if the file does not exist or holds
// invalid settings. Missing values keep their defaults.
func Load(path string) (Settings, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Settings{}, errors.New("settings file doesn't exist")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, oerror.Wrap(err, "error reading config")
	}

	s := DefaultSettings()
	switch format(path) {
	case "toml":
		err = toml.Unmarshal(data, &s)
	case "yaml":
		err = yaml.Unmarshal(data, &s)
	default:
		return Settings{}, oerror.New(game.ErrorUnknownFormat, filepath.Ext(path))
	}
	if err != nil {
		return Settings{}, oerror.Wrap(err, "error decoding config")
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func marshal(path string, s Settings) ([]byte, error) {
	switch format(path) {
	case "toml":
		return toml.Marshal(s)
	case "yaml":
		return yaml.Marshal(s)
	}
	return nil, oerror.New(game.ErrorUnknownFormat, filepath.Ext(path))
}

func format(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return "toml"
	case ".yaml", ".yml":
		return "yaml"
	}
	return ""
}
