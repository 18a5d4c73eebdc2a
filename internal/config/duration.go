package config

import (
	"fmt"
	"strconv"
	"time"
)

// Duration parses lifetime strings of the form "<integer><unit>" where unit is
// one of s, m, h, d. An unrecognized unit or a non-positive value is an error:
// a mistyped token lifetime must stop startup, not silently become a default.
type Duration time.Duration

func (d *Duration) UnmarshalText(b []byte) error {
	parsed, err := ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Seconds returns the whole-second count used for cookie max-age and
// storage-side expiry math.
func (d Duration) Seconds() int {
	return int(time.Duration(d) / time.Second)
}

func ParseDuration(s string) (time.Duration, error) {
	if len(s) < 2 {
		return 0, fmt.Errorf("invalid duration %q: want <integer><unit>", s)
	}

	value, err := strconv.Atoi(s[:len(s)-1])
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	if value <= 0 {
		return 0, fmt.Errorf("invalid duration %q: value must be positive", s)
	}

	var unit time.Duration
	switch s[len(s)-1] {
	case 's':
		unit = time.Second
	case 'm':
		unit = time.Minute
	case 'h':
		unit = time.Hour
	case 'd':
		unit = 24 * time.Hour
	default:
		return 0, fmt.Errorf("invalid duration %q: unknown unit %q", s, s[len(s)-1:])
	}

	return time.Duration(value) * unit, nil
}
