package models

import "time"

// Report is a weather observation exactly as extracted, one string per persisted field.
// Stores hold the encoded Report so a read-back yields the same bytes that were scraped.
type Report struct {
	Time     string
	Zip      string
	Town     string
	State    string
	Temp     string
	Feel     string
	Sky      string
	Rain     string
	Humidity string
}

// WeatherRecord is the typed view of a Report used for classification and display.
type WeatherRecord struct {
	LocationKey   string    `json:"locationKey"`
	Town          string    `json:"town"`
	State         string    `json:"state"`
	Sky           string    `json:"sky"`
	Temperature   float64   `json:"temperature"`
	FeelsLike     float64   `json:"feelsLike"`
	Humidity      float64   `json:"humidity"`
	Precipitation float64   `json:"precipitation"`
	CapturedAt    time.Time `json:"capturedAt"`
}

// Location returns "Town, State" as shown in reports.
func (r WeatherRecord) Location() string {
	return r.Town + ", " + r.State
}
