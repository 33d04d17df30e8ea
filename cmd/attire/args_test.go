package main

import (
	"errors"
	"testing"

	"github.com/kjstillabower/attire-decider/internal/advice"
	"github.com/kjstillabower/attire-decider/internal/validation"
)

func TestParseArgs(t *testing.T) {
	defaults := advice.DefaultThresholds()
	tests := []struct {
		name string
		args []string
		want invocation
	}{
		{"no args", nil, invocation{Zip: "08540", Thresholds: defaults}},
		{"zip only", []string{"98101"}, invocation{Zip: "98101", Thresholds: defaults}},
		{"single threshold ignored", []string{"98101", "20"}, invocation{Zip: "98101", Thresholds: defaults}},
		{"cold and warm", []string{"98101", "20", "50"}, invocation{Zip: "98101", Thresholds: advice.Derive(20, 50), Custom: true}},
		{"extra args ignored", []string{"98101", "20", "50", "x"}, invocation{Zip: "98101", Thresholds: advice.Derive(20, 50), Custom: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseArgs(tt.args, defaults)
			if err != nil {
				t.Fatalf("parseArgs() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("parseArgs() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseArgs_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{"path in zip", []string{"../etc"}, validation.ErrLocationInvalidChars},
		{"bad cold", []string{"08540", "cold", "50"}, validation.ErrTemperatureInvalid},
		{"bad warm", []string{"08540", "20", "warm"}, validation.ErrTemperatureInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseArgs(tt.args, advice.DefaultThresholds()); !errors.Is(err, tt.wantErr) {
				t.Errorf("parseArgs() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
