package extract

import (
	"fmt"
	"strings"

	"github.com/kjstillabower/attire-decider/internal/models"
)

// PageParser pulls weather fields out of a fetched weather page. The returned Report has
// every field except Time populated; Zip is the postal code the page reports.
type PageParser interface {
	Parse(page string) (models.Report, error)
}

const (
	headOpen     = "<head>"
	headClose    = "</head>"
	ogTitleOpen  = `<meta property="og:title" content=`
	metaClose    = "/>"
	precipMarker = "precip_today"
	valueOpen    = `wx-value">`
	valueClose   = "</span>"
	humidityKey  = `"humidity":`
	feelsLikeKey = `"feelslike":`
)

// WundergroundParser reads the legacy wunderground forecast page. The og:title meta content
// has the layout `Town, ST (ZIP) | 72.3&deg;F | Sky`; humidity, feels-like and precipitation
// live in the page body. Any layout drift surfaces as ErrFieldNotFound.
type WundergroundParser struct{}

// Parse implements PageParser.
func (p WundergroundParser) Parse(page string) (models.Report, error) {
	head, err := p.Header(page)
	if err != nil {
		return models.Report{}, err
	}
	meta, err := p.MetaData(head)
	if err != nil {
		return models.Report{}, err
	}

	var r models.Report
	if r.Town, r.State, err = p.Place(meta); err != nil {
		return models.Report{}, err
	}
	if r.Zip, err = p.PostalCode(meta); err != nil {
		return models.Report{}, err
	}
	if r.Temp, err = p.Temperature(meta); err != nil {
		return models.Report{}, err
	}
	if r.Sky, err = p.Sky(meta); err != nil {
		return models.Report{}, err
	}
	if r.Rain, err = p.Rain(page); err != nil {
		return models.Report{}, err
	}
	if r.Humidity, err = p.Humidity(page); err != nil {
		return models.Report{}, err
	}
	if r.Feel, err = p.FeelsLike(page); err != nil {
		return models.Report{}, err
	}
	return r, nil
}

// Header isolates the <head> region of the page.
func (WundergroundParser) Header(page string) (string, error) {
	return between(page, headOpen, headClose, "head")
}

// MetaData isolates the og:title content attribute inside head, without its quotes.
func (WundergroundParser) MetaData(head string) (string, error) {
	raw, err := between(head, ogTitleOpen, metaClose, "og:title")
	if err != nil {
		return "", err
	}
	return strings.Trim(strings.TrimSpace(raw), `"'`), nil
}

// location returns the token before the first '|': `Town, ST (ZIP)`.
func location(meta string) string {
	if i := strings.Index(meta, "|"); i >= 0 {
		return strings.TrimSpace(meta[:i])
	}
	return strings.TrimSpace(meta)
}

// segment returns everything after the n-th '|' of meta, trimmed.
func segment(meta string, n int, name string) (string, error) {
	parts := strings.SplitN(meta, "|", n+1)
	if len(parts) <= n {
		return "", fmt.Errorf("%w: %s", ErrFieldNotFound, name)
	}
	return strings.TrimSpace(parts[n]), nil
}

// Place returns town and state. The state is the token after the last comma before the
// postal code, so commas inside a town name stay with the town.
func (WundergroundParser) Place(meta string) (town, state string, err error) {
	place := location(meta)
	if i := strings.Index(place, "("); i >= 0 {
		place = strings.TrimSpace(place[:i])
	}
	comma := strings.LastIndex(place, ",")
	if comma < 0 {
		return "", "", fmt.Errorf("%w: state", ErrFieldNotFound)
	}
	town = strings.TrimSpace(place[:comma])
	state = strings.TrimSpace(place[comma+1:])
	if town == "" {
		return "", "", fmt.Errorf("%w: town", ErrFieldNotFound)
	}
	return town, state, nil
}

// PostalCode returns the text between '(' and the nearest ')' in the location token.
func (WundergroundParser) PostalCode(meta string) (string, error) {
	zip, err := between(location(meta), "(", ")", "zip")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(zip), nil
}

// Temperature returns the number after the first '|', up to the nearest '&deg;' entity.
func (WundergroundParser) Temperature(meta string) (string, error) {
	seg, err := segment(meta, 1, "temp")
	if err != nil {
		return "", err
	}
	end := strings.Index(seg, "&")
	if end < 0 {
		return "", fmt.Errorf("%w: temp", ErrFieldNotFound)
	}
	return strings.TrimSpace(seg[:end]), nil
}

// Sky returns everything after the second '|'.
func (WundergroundParser) Sky(meta string) (string, error) {
	return segment(meta, 2, "sky")
}

// Rain returns today's precipitation from the first wx-value span after precip_today.
func (WundergroundParser) Rain(page string) (string, error) {
	i := strings.Index(page, precipMarker)
	if i < 0 {
		return "", fmt.Errorf("%w: %s", ErrFieldNotFound, precipMarker)
	}
	v, err := between(page[i:], valueOpen, valueClose, "rain")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(v), nil
}

// Humidity returns the value of the embedded "humidity" key.
func (WundergroundParser) Humidity(page string) (string, error) {
	return keyValue(page, humidityKey, "humidity")
}

// FeelsLike returns the value of the embedded "feelslike" key.
func (WundergroundParser) FeelsLike(page string) (string, error) {
	return keyValue(page, feelsLikeKey, "feel")
}

// keyValue reads the value following key up to the nearest ',' or '}'.
func keyValue(page, key, name string) (string, error) {
	i := strings.Index(page, key)
	if i < 0 {
		return "", fmt.Errorf("%w: %s", ErrFieldNotFound, name)
	}
	rest := page[i+len(key):]
	end := nearest(rest, ",", "}")
	if end < 0 {
		return "", fmt.Errorf("%w: %s", ErrFieldNotFound, name)
	}
	return strings.Trim(strings.TrimSpace(rest[:end]), `"`), nil
}
