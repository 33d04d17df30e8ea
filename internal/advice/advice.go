package advice

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidThresholds is returned by Validate when the boundaries are out of order.
var ErrInvalidThresholds = errors.New("invalid thresholds")

// ClearSky is the sky label that triggers the sunglasses note.
const ClearSky = "Clear"

// Thresholds are the five temperature boundaries in °F, expected Freezing <= ... <= Hot.
type Thresholds struct {
	Freezing float64 `json:"freezing"`
	Cold     float64 `json:"cold"`
	Cool     float64 `json:"cool"`
	Warm     float64 `json:"warm"`
	Hot      float64 `json:"hot"`
}

// DefaultThresholds returns the stock boundaries.
func DefaultThresholds() Thresholds {
	return Thresholds{Freezing: 15, Cold: 35, Cool: 50, Warm: 60, Hot: 70}
}

// Derive builds thresholds from a personal cold and warm point. Cool is their midpoint;
// Freezing and Hot extend half a cool-step beyond cold and warm. Derive never reorders:
// cold > warm produces thresholds that fail Validate.
func Derive(cold, warm float64) Thresholds {
	cool := (warm + cold) / 2
	return Thresholds{
		Freezing: cold - 0.5*(cool-cold),
		Cold:     cold,
		Cool:     cool,
		Warm:     warm,
		Hot:      warm + 0.5*(warm-cool),
	}
}

// Validate reports whether the boundaries are non-decreasing from Freezing to Hot.
func (t Thresholds) Validate() error {
	order := []float64{t.Freezing, t.Cold, t.Cool, t.Warm, t.Hot}
	for i, v := range order {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite boundary %v", ErrInvalidThresholds, v)
		}
		if i > 0 && v < order[i-1] {
			return fmt.Errorf("%w: freezing=%g cold=%g cool=%g warm=%g hot=%g",
				ErrInvalidThresholds, t.Freezing, t.Cold, t.Cool, t.Warm, t.Hot)
		}
	}
	return nil
}

// Band is one of the six clothing bands, hottest first.
type Band int

const (
	BandUnknown Band = iota
	BandLight
	BandLightExtra
	BandMedium
	BandMediumHeavy
	BandHeavy
	BandExtremeCold
)

func (b Band) String() string {
	switch b {
	case BandLight:
		return "light layer"
	case BandLightExtra:
		return "light layer + extra"
	case BandMedium:
		return "medium layer"
	case BandMediumHeavy:
		return "medium-heavy layer"
	case BandHeavy:
		return "heavy layer"
	case BandExtremeCold:
		return "extreme-cold advisory"
	default:
		return "unknown"
	}
}

// Advice returns the clothing suggestion printed for the band.
func (b Band) Advice() string {
	switch b {
	case BandLight:
		return "T-Shirt, Shorts"
	case BandLightExtra:
		return "T-Shirt and Shorts + Layer"
	case BandMedium:
		return "Long Pants, Light Jacket"
	case BandMediumHeavy:
		return "Long Pants, Outer Layer and/or Light Jacket"
	case BandHeavy:
		return "Long Pants, Winter Jacket, Hat"
	case BandExtremeCold:
		return "FREEZING: minimize outdoor exposure"
	default:
		return ""
	}
}

// MarshalText encodes the band by name.
func (b Band) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// Classify maps temp to a band. Intervals are closed at both ends, so a boundary value
// matches two bands; the scan runs hot to cold and the first match wins.
func Classify(temp float64, t Thresholds) Band {
	switch {
	case temp >= t.Hot:
		return BandLight
	case temp <= t.Hot && temp >= t.Warm:
		return BandLightExtra
	case temp <= t.Warm && temp >= t.Cool:
		return BandMedium
	case temp <= t.Cool && temp >= t.Cold:
		return BandMediumHeavy
	case temp <= t.Cold && temp >= t.Freezing:
		return BandHeavy
	case temp <= t.Freezing:
		return BandExtremeCold
	}
	return BandUnknown
}

// NeedsUmbrella reports whether any precipitation was recorded.
func NeedsUmbrella(precipitation float64) bool {
	return precipitation > 0
}

// NeedsSunglasses reports whether the sky is clear.
func NeedsSunglasses(sky string) bool {
	return sky == ClearSky
}

// Recommendation is the full advice for one observation.
type Recommendation struct {
	Band       Band       `json:"band"`
	Advice     string     `json:"advice"`
	Umbrella   bool       `json:"umbrella"`
	Sunglasses bool       `json:"sunglasses"`
	Thresholds Thresholds `json:"thresholds"`
}

// Recommend classifies temp and evaluates the umbrella and sunglasses signals.
func Recommend(temp, precipitation float64, sky string, t Thresholds) Recommendation {
	band := Classify(temp, t)
	return Recommendation{
		Band:       band,
		Advice:     band.Advice(),
		Umbrella:   NeedsUmbrella(precipitation),
		Sunglasses: NeedsSunglasses(sky),
		Thresholds: t,
	}
}
