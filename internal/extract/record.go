package extract

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kjstillabower/attire-decider/internal/models"
)

// TimeLayout is the capture timestamp format written to and read from records.
// Timestamps are local wall-clock time with microsecond precision.
const TimeLayout = "2006-01-02T15:04:05.000000"

// ErrMalformedTimestamp is returned when a record's time field does not parse with TimeLayout.
var ErrMalformedTimestamp = errors.New("malformed timestamp")

// EncodeReport writes r in the persisted tagged-field format. Field order is fixed.
func EncodeReport(r models.Report) []byte {
	var b strings.Builder
	b.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	b.WriteString("<response>\n")
	writeTag(&b, "time", r.Time)
	b.WriteString("<weather>\n")
	writeTag(&b, "town", r.Town)
	writeTag(&b, "state", r.State)
	writeTag(&b, "zip", r.Zip)
	writeTag(&b, "temp", r.Temp)
	writeTag(&b, "feel", r.Feel)
	writeTag(&b, "sky", r.Sky)
	writeTag(&b, "rain", r.Rain)
	writeTag(&b, "humidity", r.Humidity)
	b.WriteString("</weather>\n")
	b.WriteString("</response>\n")
	return []byte(b.String())
}

func writeTag(b *strings.Builder, tag, value string) {
	b.WriteString("<" + tag + ">")
	b.WriteString(value)
	b.WriteString("</" + tag + ">\n")
}

// DecodeReport extracts every persisted field from blob. The first missing field aborts.
func DecodeReport(blob []byte) (models.Report, error) {
	text := string(blob)
	var r models.Report
	fields := []struct {
		tag string
		dst *string
	}{
		{"time", &r.Time},
		{"zip", &r.Zip},
		{"town", &r.Town},
		{"state", &r.State},
		{"temp", &r.Temp},
		{"feel", &r.Feel},
		{"sky", &r.Sky},
		{"rain", &r.Rain},
		{"humidity", &r.Humidity},
	}
	for _, f := range fields {
		v, err := Field(text, f.tag)
		if err != nil {
			return models.Report{}, err
		}
		*f.dst = v
	}
	return r, nil
}

// FormatTime renders t in TimeLayout using t's own location.
func FormatTime(t time.Time) string {
	return t.Format(TimeLayout)
}

// ParseTime parses a record timestamp as local time.
func ParseTime(s string) (time.Time, error) {
	t, err := time.ParseInLocation(TimeLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedTimestamp, s)
	}
	return t, nil
}

// ParseRecord converts the raw strings of r into a typed WeatherRecord.
func ParseRecord(r models.Report) (models.WeatherRecord, error) {
	captured, err := ParseTime(r.Time)
	if err != nil {
		return models.WeatherRecord{}, err
	}
	temp, err := parseNumber("temp", r.Temp)
	if err != nil {
		return models.WeatherRecord{}, err
	}
	feel, err := parseNumber("feel", r.Feel)
	if err != nil {
		return models.WeatherRecord{}, err
	}
	humidity, err := parseNumber("humidity", strings.TrimSuffix(strings.TrimSpace(r.Humidity), "%"))
	if err != nil {
		return models.WeatherRecord{}, err
	}
	rain, err := parseNumber("rain", r.Rain)
	if err != nil {
		return models.WeatherRecord{}, err
	}
	return models.WeatherRecord{
		LocationKey:   r.Zip,
		Town:          r.Town,
		State:         r.State,
		Sky:           r.Sky,
		Temperature:   temp,
		FeelsLike:     feel,
		Humidity:      humidity,
		Precipitation: rain,
		CapturedAt:    captured,
	}, nil
}

func parseNumber(field, s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", field, s, err)
	}
	return v, nil
}
