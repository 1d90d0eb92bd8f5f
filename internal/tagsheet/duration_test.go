package tagsheet

import (
	"errors"
	"testing"
)

func TestParseDurationSeconds(t *testing.T) {
	d, err := ParseDuration("35")
	if err != nil {
		t.Fatalf("ParseDuration failed: %v", err)
	}
	if d == nil {
		t.Fatal("expected a duration, got nil")
	}
	if d.Value != 35 || d.Unit != UnitSeconds {
		t.Errorf("got %v/%s, want 35/seconds", d.Value, d.Unit)
	}
}

func TestParseDurationPercent(t *testing.T) {
	d, err := ParseDuration("35%")
	if err != nil {
		t.Fatalf("ParseDuration failed: %v", err)
	}
	if d.Value != 35 || d.Unit != UnitPercent {
		t.Errorf("got %v/%s, want 35/percent", d.Value, d.Unit)
	}
	if !d.IsPercent() {
		t.Error("IsPercent should be true")
	}
}

func TestParseDurationSecondsSuffix(t *testing.T) {
	d, err := ParseDuration("15s")
	if err != nil {
		t.Fatalf("ParseDuration failed: %v", err)
	}
	if d.Value != 15 || d.Unit != UnitSeconds {
		t.Errorf("got %v/%s, want 15/seconds", d.Value, d.Unit)
	}
}

func TestParseDurationNegativeAndFractional(t *testing.T) {
	d, err := ParseDuration("-2.5")
	if err != nil {
		t.Fatalf("ParseDuration failed: %v", err)
	}
	if d.Value != -2.5 || d.Unit != UnitSeconds {
		t.Errorf("got %v/%s, want -2.5/seconds", d.Value, d.Unit)
	}
}

func TestParseDurationBlankIsAbsent(t *testing.T) {
	for _, input := range []string{"", "   ", "\t"} {
		d, err := ParseDuration(input)
		if err != nil {
			t.Errorf("blank input %q should not error: %v", input, err)
		}
		if d != nil {
			t.Errorf("blank input %q should yield nil, got %v", input, d)
		}
	}
}

func TestParseDurationMalformed(t *testing.T) {
	for _, input := range []string{"abc", "%", "12..3", "35%%", "s"} {
		_, err := ParseDuration(input)
		if err == nil {
			t.Errorf("input %q should fail", input)
			continue
		}
		if !errors.Is(err, ErrMalformedValue) {
			t.Errorf("input %q: error should wrap ErrMalformedValue, got %v", input, err)
		}
	}
}

func TestDurationRoundTrip(t *testing.T) {
	inputs := []string{"35", "35%", "0.5", "12.25%", "-2", "120"}
	for _, input := range inputs {
		d, err := ParseDuration(input)
		if err != nil {
			t.Fatalf("ParseDuration(%q) failed: %v", input, err)
		}
		if got := d.String(); got != input {
			t.Errorf("round trip %q -> %q", input, got)
		}
		again, err := ParseDuration(d.String())
		if err != nil {
			t.Fatalf("reparse of %q failed: %v", d.String(), err)
		}
		if *again != *d {
			t.Errorf("reparse mismatch: %v != %v", again, d)
		}
	}
}

func TestDurationCanonicalForm(t *testing.T) {
	// Seconds suffix is accepted but canonical form is the bare number.
	d, err := ParseDuration("15s")
	if err != nil {
		t.Fatalf("ParseDuration failed: %v", err)
	}
	if got := d.String(); got != "15" {
		t.Errorf("canonical form of 15s should be 15, got %q", got)
	}
}
