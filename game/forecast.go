package game

import (
	"fmt"
	"os"
	"time"

	"github.com/pthm-cable/windy/config"
	"github.com/pthm-cable/windy/forecast"
)

// syntheticSpacing is the gap in hours between synthetic before/after runs.
const syntheticSpacing = 6

// forecasts is the data shown by the three layers.
type forecasts struct {
	wind  forecast.Pair
	solar forecast.ScalarPair
	snow  forecast.ScalarPair
}

// windAt returns the instant rendered by every layer: the wind pair's before
// target time plus the configured offset.
func (f forecasts) windAt(offsetHours float64) time.Time {
	return f.wind.Before.TargetTime().Add(time.Duration(offsetHours * float64(time.Hour)))
}

// loadForecasts reads the configured payloads, generating synthetic
// forecasts for any source left empty.
func loadForecasts(cfg config.ForecastConfig, refTime time.Time) (forecasts, error) {
	synth := forecast.NewSynthetic(cfg.SyntheticSeed, cfg.SyntheticDX, cfg.SyntheticDY, refTime)
	var f forecasts

	if cfg.Path == "" {
		f.wind = synth.WindPair(0, syntheticSpacing)
	} else {
		p, err := readPayload(cfg.Path)
		if err != nil {
			return f, err
		}
		if f.wind, err = p.VectorPair(); err != nil {
			return f, fmt.Errorf("wind forecast %s: %w", cfg.Path, err)
		}
	}

	var err error
	if f.solar, err = scalarPair(cfg.SolarPath, synth.Solar); err != nil {
		return f, err
	}
	if f.snow, err = scalarPair(cfg.SnowPath, synth.Snow); err != nil {
		return f, err
	}
	return f, nil
}

func scalarPair(path string, generate func(hours float64) *forecast.Grid) (forecast.ScalarPair, error) {
	if path == "" {
		return forecast.NewScalarPair(generate(0), generate(syntheticSpacing))
	}
	p, err := readPayload(path)
	if err != nil {
		return forecast.ScalarPair{}, err
	}
	pair, err := p.ScalarPair()
	if err != nil {
		return forecast.ScalarPair{}, fmt.Errorf("forecast %s: %w", path, err)
	}
	return pair, nil
}

func readPayload(path string) (*forecast.Payload, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening forecast: %w", err)
	}
	defer f.Close()
	p, err := forecast.DecodePayload(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}
