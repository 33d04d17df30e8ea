package main

import (
	"fmt"

	"github.com/kjstillabower/attire-decider/internal/advice"
	"github.com/kjstillabower/attire-decider/internal/validation"
)

const defaultZip = "08540"

// invocation is the parsed command line: attire [zip] [cold warm].
type invocation struct {
	Zip        string
	Thresholds advice.Thresholds
	Custom     bool
}

// parseArgs reads args (without the program name). Cold and warm override defaults only
// when both are given; a lone third argument is ignored.
func parseArgs(args []string, defaults advice.Thresholds) (invocation, error) {
	inv := invocation{Zip: defaultZip, Thresholds: defaults}
	if len(args) > 0 {
		zip, err := validation.ValidatePostalCode(args[0])
		if err != nil {
			return invocation{}, fmt.Errorf("zip %q: %w", args[0], err)
		}
		inv.Zip = zip
	}
	if len(args) > 2 {
		cold, err := validation.ParseTemperature(args[1])
		if err != nil {
			return invocation{}, fmt.Errorf("cold %q: %w", args[1], err)
		}
		warm, err := validation.ParseTemperature(args[2])
		if err != nil {
			return invocation{}, fmt.Errorf("warm %q: %w", args[2], err)
		}
		inv.Thresholds = advice.Derive(cold, warm)
		inv.Custom = true
	}
	return inv, nil
}
