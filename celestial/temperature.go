package celestial

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

var ErrInvalidArgument = errors.New("celestial: invalid argument")

const kelvinOffset = 273.15

// KelvinToFahrenheit converts a temperature decoded from JSON (or any Go
// numeric value) from Kelvin to Fahrenheit. Anything that is not a finite
// number is rejected with ErrInvalidArgument.
func KelvinToFahrenheit(kelvin any) (float64, error) {
	k, err := toFloat(kelvin)
	if err != nil {
		return 0, err
	}
	return fahrenheit(k), nil
}

func fahrenheit(kelvin float64) float64 {
	return (kelvin-kelvinOffset)*9/5 + 32
}

func toFloat(v any) (float64, error) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidArgument, string(n))
		}
		f = parsed
	default:
		return 0, fmt.Errorf("%w: must be a number, got %T", ErrInvalidArgument, v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %v is not finite", ErrInvalidArgument, f)
	}
	return f, nil
}
