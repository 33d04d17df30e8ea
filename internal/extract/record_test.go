package extract

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kjstillabower/attire-decider/internal/models"
)

func sampleReport() models.Report {
	return models.Report{
		Time:     "2015-06-14T09:30:00.123456",
		Zip:      "08540",
		Town:     "Princeton",
		State:    "NJ",
		Temp:     "72.0",
		Feel:     "71.5",
		Sky:      "Clear",
		Rain:     "0.00",
		Humidity: "54",
	}
}

// TestEncodeReport_Layout verifies the persisted format is written in fixed field order.
func TestEncodeReport_Layout(t *testing.T) {
	want := `<?xml version="1.0" encoding="UTF-8"?>
<response>
<time>2015-06-14T09:30:00.123456</time>
<weather>
<town>Princeton</town>
<state>NJ</state>
<zip>08540</zip>
<temp>72.0</temp>
<feel>71.5</feel>
<sky>Clear</sky>
<rain>0.00</rain>
<humidity>54</humidity>
</weather>
</response>
`
	if got := string(EncodeReport(sampleReport())); got != want {
		t.Errorf("EncodeReport() =\n%s\nwant\n%s", got, want)
	}
}

// TestReport_RoundTrip verifies that every field read back from an encoded report is
// byte-identical to the value written.
func TestReport_RoundTrip(t *testing.T) {
	reports := []models.Report{
		sampleReport(),
		{
			Time: "2024-01-02T03:04:05.000001", Zip: "20001", Town: "Washington, D.C.", State: "DC",
			Temp: "-3.5", Feel: "-10", Sky: "Partly Cloudy", Rain: "0.25", Humidity: "81%",
		},
		{Time: "2024-01-02T03:04:05.000000", Zip: "12345"},
	}
	for _, in := range reports {
		got, err := DecodeReport(EncodeReport(in))
		if err != nil {
			t.Fatalf("DecodeReport() error = %v", err)
		}
		if got != in {
			t.Errorf("round trip = %+v, want %+v", got, in)
		}
	}
}

func TestDecodeReport_MissingField(t *testing.T) {
	blob := strings.Replace(string(EncodeReport(sampleReport())), "<sky>Clear</sky>\n", "", 1)
	_, err := DecodeReport([]byte(blob))
	if !errors.Is(err, ErrFieldNotFound) {
		t.Fatalf("DecodeReport() error = %v, want ErrFieldNotFound", err)
	}
	if !strings.Contains(err.Error(), "sky") {
		t.Errorf("error %q should name the missing field", err)
	}
}

func TestParseTime(t *testing.T) {
	now := time.Date(2015, 6, 14, 9, 30, 0, 123456000, time.Local)
	got, err := ParseTime(FormatTime(now))
	if err != nil {
		t.Fatalf("ParseTime() error = %v", err)
	}
	if !got.Equal(now) {
		t.Errorf("ParseTime() = %v, want %v", got, now)
	}

	for _, bad := range []string{"", "yesterday", "2015-06-14 09:30:00", "2015-06-14T09:30:00Z"} {
		if _, err := ParseTime(bad); !errors.Is(err, ErrMalformedTimestamp) {
			t.Errorf("ParseTime(%q) error = %v, want ErrMalformedTimestamp", bad, err)
		}
	}
}

func TestParseRecord(t *testing.T) {
	r := sampleReport()
	r.Humidity = "54%"
	rec, err := ParseRecord(r)
	if err != nil {
		t.Fatalf("ParseRecord() error = %v", err)
	}
	if rec.LocationKey != "08540" || rec.Town != "Princeton" || rec.State != "NJ" || rec.Sky != "Clear" {
		t.Errorf("ParseRecord() strings = %+v", rec)
	}
	if rec.Temperature != 72 || rec.FeelsLike != 71.5 || rec.Humidity != 54 || rec.Precipitation != 0 {
		t.Errorf("ParseRecord() numbers = %+v", rec)
	}
	if rec.CapturedAt.Year() != 2015 || rec.CapturedAt.Nanosecond() != 123456000 {
		t.Errorf("ParseRecord().CapturedAt = %v", rec.CapturedAt)
	}
	if got := rec.Location(); got != "Princeton, NJ" {
		t.Errorf("Location() = %q", got)
	}
}

func TestParseRecord_Errors(t *testing.T) {
	bad := sampleReport()
	bad.Time = "not a time"
	if _, err := ParseRecord(bad); !errors.Is(err, ErrMalformedTimestamp) {
		t.Errorf("ParseRecord() error = %v, want ErrMalformedTimestamp", err)
	}

	bad = sampleReport()
	bad.Temp = "N/A"
	if _, err := ParseRecord(bad); err == nil || !strings.Contains(err.Error(), "temp") {
		t.Errorf("ParseRecord() error = %v, want temp parse error", err)
	}
}
