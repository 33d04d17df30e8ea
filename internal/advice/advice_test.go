package advice

import (
	"errors"
	"math"
	"testing"
)

// TestClassify_Defaults walks every band of the default thresholds, including each
// boundary, which must resolve to the warmer adjacent band.
func TestClassify_Defaults(t *testing.T) {
	d := DefaultThresholds()
	tests := []struct {
		name string
		temp float64
		want Band
	}{
		{"scorching", 101, BandLight},
		{"hot boundary", 70, BandLight},
		{"between warm and hot", 65, BandLightExtra},
		{"warm boundary", 60, BandLightExtra},
		{"between cool and warm", 55, BandMedium},
		{"cool boundary", 50, BandMedium},
		{"between cold and cool", 40, BandMediumHeavy},
		{"cold boundary", 35, BandMediumHeavy},
		{"between freezing and cold", 20, BandHeavy},
		{"freezing boundary", 15, BandHeavy},
		{"below freezing", 14.9, BandExtremeCold},
		{"arctic", -40, BandExtremeCold},
		{"princeton scenario", 72, BandLight},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.temp, d); got != tt.want {
				t.Errorf("Classify(%v) = %v, want %v", tt.temp, got, tt.want)
			}
		})
	}
}

// TestClassify_ExactlyOneBand sweeps a temperature range and checks every value lands in
// a known band.
func TestClassify_ExactlyOneBand(t *testing.T) {
	d := DefaultThresholds()
	for temp := -60.0; temp <= 130; temp += 0.25 {
		if got := Classify(temp, d); got == BandUnknown {
			t.Fatalf("Classify(%v) = unknown", temp)
		}
	}
	if got := Classify(math.NaN(), d); got != BandUnknown {
		t.Errorf("Classify(NaN) = %v, want unknown", got)
	}
}

// TestDerive verifies derived thresholds for cold=20, warm=50.
func TestDerive(t *testing.T) {
	got := Derive(20, 50)
	want := Thresholds{Freezing: 12.5, Cold: 20, Cool: 35, Warm: 50, Hot: 57.5}
	if got != want {
		t.Fatalf("Derive(20, 50) = %+v, want %+v", got, want)
	}
	if err := got.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
	if band := Classify(40, got); band != BandMedium {
		t.Errorf("Classify(40) = %v, want %v", band, BandMedium)
	}
}

func TestThresholds_Validate(t *testing.T) {
	tests := []struct {
		name    string
		th      Thresholds
		wantErr bool
	}{
		{"defaults", DefaultThresholds(), false},
		{"all equal", Thresholds{50, 50, 50, 50, 50}, false},
		{"cold above warm", Derive(60, 40), true},
		{"hot below warm", Thresholds{Freezing: 10, Cold: 20, Cool: 30, Warm: 40, Hot: 35}, true},
		{"nan", Thresholds{Freezing: math.NaN(), Cold: 20, Cool: 30, Warm: 40, Hot: 50}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.th.Validate()
			if tt.wantErr && !errors.Is(err, ErrInvalidThresholds) {
				t.Errorf("Validate() error = %v, want ErrInvalidThresholds", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate() error = %v, want nil", err)
			}
		})
	}
}

func TestBand_Strings(t *testing.T) {
	bands := []Band{BandLight, BandLightExtra, BandMedium, BandMediumHeavy, BandHeavy, BandExtremeCold}
	seen := make(map[string]bool)
	for _, b := range bands {
		if b.Advice() == "" {
			t.Errorf("%v has no advice", b)
		}
		if seen[b.String()] {
			t.Errorf("duplicate band name %q", b)
		}
		seen[b.String()] = true
	}
	if BandUnknown.Advice() != "" {
		t.Error("unknown band should have no advice")
	}
	if BandLight.String() != "light layer" {
		t.Errorf("BandLight = %q", BandLight.String())
	}
}

func TestNeedsUmbrella(t *testing.T) {
	tests := []struct {
		precip float64
		want   bool
	}{
		{0, false},
		{0.0, false},
		{0.01, true},
		{1.5, true},
	}
	for _, tt := range tests {
		if got := NeedsUmbrella(tt.precip); got != tt.want {
			t.Errorf("NeedsUmbrella(%v) = %v, want %v", tt.precip, got, tt.want)
		}
	}
}

func TestNeedsSunglasses(t *testing.T) {
	if !NeedsSunglasses("Clear") {
		t.Error("NeedsSunglasses(Clear) = false")
	}
	for _, sky := range []string{"clear", "Mostly Clear", "Overcast", ""} {
		if NeedsSunglasses(sky) {
			t.Errorf("NeedsSunglasses(%q) = true", sky)
		}
	}
}

// TestRecommend_Princeton covers 08540 at 72°F with default thresholds.
func TestRecommend_Princeton(t *testing.T) {
	r := Recommend(72, 0, "Overcast", DefaultThresholds())
	if r.Band != BandLight || r.Band.String() != "light layer" {
		t.Errorf("Band = %v, want light layer", r.Band)
	}
	if r.Umbrella {
		t.Error("Umbrella = true with no precipitation")
	}
	if r.Sunglasses {
		t.Error("Sunglasses = true with overcast sky")
	}
	if r.Advice != "T-Shirt, Shorts" {
		t.Errorf("Advice = %q", r.Advice)
	}

	clear := Recommend(72, 0.2, ClearSky, DefaultThresholds())
	if !clear.Sunglasses || !clear.Umbrella {
		t.Errorf("Recommend() = %+v, want umbrella and sunglasses", clear)
	}
}
