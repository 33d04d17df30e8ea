// Package report renders the human-readable attire report written by the CLI.
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/kjstillabower/attire-decider/internal/advice"
	"github.com/kjstillabower/attire-decider/internal/models"
)

// writer accumulates the first write error so callers check once.
type writer struct {
	w   io.Writer
	err error
}

func (p *writer) line(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format+"\n", args...)
}

// Thresholds prints a custom threshold set, hot first.
func Thresholds(w io.Writer, t advice.Thresholds) error {
	p := &writer{w: w}
	p.line("Custom Temperature Preferences:")
	p.line("Hot:     \t%s", number(t.Hot))
	p.line("Warm:    \t%s", number(t.Warm))
	p.line("Cool:    \t%s", number(t.Cool))
	p.line("Cold:    \t%s", number(t.Cold))
	p.line("Freezing:\t%s", number(t.Freezing))
	return p.err
}

// Write prints the conditions for rec followed by the recommendation.
func Write(w io.Writer, rec models.WeatherRecord, r advice.Recommendation) error {
	p := &writer{w: w}
	p.line("Weather for %s", rec.Location())
	p.line("Current Temperature is: %s degrees Fahrenheit", number(rec.Temperature))
	p.line("Feels like: %s degrees Fahrenheit", number(rec.FeelsLike))
	p.line("Humidity: %s%%", number(rec.Humidity))
	p.line("Sky is %s", rec.Sky)
	p.line("Rain is %s in.", number(rec.Precipitation))
	p.line("Consider wearing: ")
	if r.Band == advice.BandUnknown {
		p.line("No recommendation (thresholds leave %s degrees uncovered)", number(rec.Temperature))
	} else {
		p.line("%s", r.Advice)
	}
	if r.Umbrella {
		p.line("Bring an umbrella")
	}
	if r.Sunglasses {
		p.line("Bring sunglasses")
	}
	return p.err
}

func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
