package tagsheet

import (
	"fmt"
	"strconv"
	"strings"
)

// Unit distinguishes absolute thresholds from percentages of an external
// reference length. Percent values are resolved by the caller; this
// package only round-trips them.
type Unit string

const (
	UnitSeconds Unit = "seconds"
	UnitPercent Unit = "percent"
)

// Duration is a threshold value: a magnitude in seconds, or a percentage
// of a reference length supplied elsewhere.
type Duration struct {
	Value float64
	Unit  Unit
}

// ParseDuration reads a duration cell. Blank input yields (nil, nil):
// the field is absent, not zero. Accepted forms are a signed number
// ("35", "-2.5"), a number with a trailing "s" seconds suffix ("15s"),
// and a percentage ("35%"). Anything else is a MalformedValue error.
func ParseDuration(text string) (*Duration, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, nil
	}

	unit := UnitSeconds
	body := trimmed
	switch {
	case strings.HasSuffix(body, "%"):
		unit = UnitPercent
		body = strings.TrimSpace(strings.TrimSuffix(body, "%"))
	case strings.HasSuffix(body, "s"), strings.HasSuffix(body, "S"):
		body = strings.TrimSpace(body[:len(body)-1])
	}

	value, err := strconv.ParseFloat(body, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: duration %q", ErrMalformedValue, text)
	}
	return &Duration{Value: value, Unit: unit}, nil
}

// String renders the canonical textual form: the bare magnitude, with a
// "%" marker when the unit is percent. ParseDuration(d.String()) always
// reproduces d.
func (d Duration) String() string {
	text := strconv.FormatFloat(d.Value, 'f', -1, 64)
	if d.Unit == UnitPercent {
		return text + "%"
	}
	return text
}

// IsPercent reports whether the duration is relative to a reference length.
func (d Duration) IsPercent() bool {
	return d.Unit == UnitPercent
}
