// Package config provides configuration loading and access for the wind and
// intensity layers.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all layer configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Camera    CameraConfig    `yaml:"camera"`
	Forecast  ForecastConfig  `yaml:"forecast"`
	Layers    LayersConfig    `yaml:"layers"`
	Particles ParticlesConfig `yaml:"particles"`
	Field     FieldConfig     `yaml:"field"`
	Buckets   BucketsConfig   `yaml:"buckets"`
	Legend    LegendConfig    `yaml:"legend"`
	Solar     IntensityConfig `yaml:"solar"`
	Snow      IntensityConfig `yaml:"snow"`
	Drag      DragConfig      `yaml:"drag"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// CameraConfig holds the initial map view.
type CameraConfig struct {
	Projection string  `yaml:"projection"` // equirectangular, mercator or orthographic
	CenterLon  float64 `yaml:"center_lon"`
	CenterLat  float64 `yaml:"center_lat"`
	Zoom       float64 `yaml:"zoom"`
	MinZoom    float64 `yaml:"min_zoom"`
	MaxZoom    float64 `yaml:"max_zoom"`
}

// ForecastConfig selects the forecast sources. Empty paths use the
// synthetic generator.
type ForecastConfig struct {
	Path          string  `yaml:"path"` // wind payload
	SolarPath     string  `yaml:"solar_path"`
	SnowPath      string  `yaml:"snow_path"`
	OffsetHours   float64 `yaml:"offset_hours"`
	SyntheticSeed int64   `yaml:"synthetic_seed"`
	SyntheticDX   float64 `yaml:"synthetic_dx"`
	SyntheticDY   float64 `yaml:"synthetic_dy"`
}

// LayersConfig selects the layers shown at startup.
type LayersConfig struct {
	Wind  bool `yaml:"wind"`
	Solar bool `yaml:"solar"`
	Snow  bool `yaml:"snow"`
}

// ParticlesConfig holds particle pool and animation parameters.
type ParticlesConfig struct {
	Density        float64 `yaml:"density"`
	TouchReduction float64 `yaml:"touch_reduction"`
	MaxAge         int     `yaml:"max_age"`
	VelocityScale  float64 `yaml:"velocity_scale"`
	Fade           float64 `yaml:"fade"`
	NominalFrameMS float64 `yaml:"nominal_frame_ms"`
	Seed           int64   `yaml:"seed"`
}

// FieldConfig holds field interpolation parameters.
type FieldConfig struct {
	Stride            int `yaml:"stride"`
	BatchBudgetMS     int `yaml:"batch_budget_ms"`
	BatchDelayMS      int `yaml:"batch_delay_ms"`
	RandomizeAttempts int `yaml:"randomize_attempts"`
}

// BucketsConfig holds the wind colour ramp.
type BucketsConfig struct {
	MaxIntensity  float64  `yaml:"max_intensity"`
	Count         int      `yaml:"count"`
	BaseLineWidth float64  `yaml:"base_line_width"`
	LineWidthStep float64  `yaml:"line_width_step"`
	Opacity       float64  `yaml:"opacity"`
	Colors        []string `yaml:"colors"`
}

// LegendConfig holds wind legend dimensions.
type LegendConfig struct {
	Width      int `yaml:"width"`
	Height     int `yaml:"height"`
	BlurRadius int `yaml:"blur_radius"`
}

// IntensityConfig parameterises one raster intensity layer (solar, snow).
type IntensityConfig struct {
	Domain     float64   `yaml:"domain"`
	Samples    int       `yaml:"samples"`
	MaxOpacity float64   `yaml:"max_opacity"`
	BlurRadius int       `yaml:"blur_radius"`
	Colors     []string  `yaml:"colors"`
	Alphas     []float64 `yaml:"alphas"`
}

// DragConfig holds map drag coordination parameters.
type DragConfig struct {
	SettleDelayMS int `yaml:"settle_delay_ms"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	PerfWindow        int `yaml:"perf_window"`
	LogIntervalFrames int `yaml:"log_interval_frames"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	NominalFrame time.Duration
	BatchBudget  time.Duration
	BatchDelay   time.Duration
	SettleDelay  time.Duration
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns a fresh copy of the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Field.Stride < 1 {
		return fmt.Errorf("field.stride must be >= 1, got %d", c.Field.Stride)
	}
	if c.Buckets.Count < 1 {
		return fmt.Errorf("buckets.count must be >= 1, got %d", c.Buckets.Count)
	}
	if c.Buckets.MaxIntensity <= 0 {
		return fmt.Errorf("buckets.max_intensity must be positive, got %v", c.Buckets.MaxIntensity)
	}
	if len(c.Buckets.Colors) == 0 {
		return fmt.Errorf("buckets.colors is empty")
	}
	for name, ic := range map[string]IntensityConfig{"solar": c.Solar, "snow": c.Snow} {
		if len(ic.Alphas) != 0 && len(ic.Alphas) != len(ic.Colors) {
			return fmt.Errorf("%s: %d alphas for %d colors", name, len(ic.Alphas), len(ic.Colors))
		}
		if ic.Domain <= 0 {
			return fmt.Errorf("%s.domain must be positive, got %v", name, ic.Domain)
		}
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.NominalFrame = time.Duration(c.Particles.NominalFrameMS * float64(time.Millisecond))
	if c.Derived.NominalFrame <= 0 {
		c.Derived.NominalFrame = time.Second / 60
	}
	c.Derived.BatchBudget = time.Duration(c.Field.BatchBudgetMS) * time.Millisecond
	c.Derived.BatchDelay = time.Duration(c.Field.BatchDelayMS) * time.Millisecond
	c.Derived.SettleDelay = time.Duration(c.Drag.SettleDelayMS) * time.Millisecond

	if c.Field.RandomizeAttempts < 0 {
		c.Field.RandomizeAttempts = 0
	}
	if c.Particles.TouchReduction <= 0 {
		c.Particles.TouchReduction = 1
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
