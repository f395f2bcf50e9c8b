package token

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(value string) decimal.Decimal {
	d, err := decimal.NewFromString(value)
	if err != nil {
		panic(err)
	}
	return d
}

func TestCalculateExamples(t *testing.T) {
	cases := []struct {
		name         string
		reps         int64
		repsPerToken string
		minGain      string
		want         string
	}{
		{"quantized half steps", 25, "10", "0.5", "2.5"},
		{"below minimum gain", 3, "10", "0.5", "0"},
		{"whole tokens", 30, "10", "1", "3"},
		{"zero reps", 0, "10", "0.5", "0"},
		{"exact single step", 5, "10", "0.5", "0.5"},
		{"truncates partial step", 7, "10", "0.5", "0.5"},
		{"tenth steps", 3, "10", "0.1", "0.3"},
		{"one rep per token", 12, "1", "1", "12"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Calculate(tc.reps, dec(tc.repsPerToken), dec(tc.minGain))
			if !got.Equal(dec(tc.want)) {
				t.Fatalf("Calculate(%d, %s, %s) = %s, want %s", tc.reps, tc.repsPerToken, tc.minGain, got, tc.want)
			}
		})
	}
}

func TestCalculateIsMultipleOfMinGain(t *testing.T) {
	minGains := []string{"0.1", "0.25", "0.5", "1", "2.5"}
	rates := []string{"1", "3", "10", "33"}
	for _, mg := range minGains {
		for _, rate := range rates {
			for reps := int64(0); reps <= 100; reps += 7 {
				minGain := dec(mg)
				perToken := dec(rate)
				got := Calculate(reps, perToken, minGain)
				if got.Sign() < 0 {
					t.Fatalf("negative output %s for reps=%d rate=%s min=%s", got, reps, rate, mg)
				}
				if !got.Mod(minGain).IsZero() {
					t.Fatalf("%s is not a multiple of %s (reps=%d rate=%s)", got, mg, reps, rate)
				}
				raw := decimal.NewFromInt(reps).Div(perToken)
				if got.GreaterThan(raw) {
					t.Fatalf("output %s exceeds raw yield %s (reps=%d rate=%s min=%s)", got, raw, reps, rate, mg)
				}
			}
		}
	}
}

func TestCalculateDegenerateInputs(t *testing.T) {
	if got := Calculate(10, decimal.Zero, dec("0.5")); !got.IsZero() {
		t.Fatalf("zero rate should yield zero, got %s", got)
	}
	if got := Calculate(10, dec("10"), decimal.Zero); !got.IsZero() {
		t.Fatalf("zero min gain should yield zero, got %s", got)
	}
	if got := Calculate(-5, dec("10"), dec("0.5")); !got.IsZero() {
		t.Fatalf("negative reps should yield zero, got %s", got)
	}
}

func TestParseCurrency(t *testing.T) {
	for _, valid := range []string{"red", "gold", "black"} {
		if _, err := ParseCurrency(valid); err != nil {
			t.Fatalf("expected %q to parse, got %v", valid, err)
		}
	}
	if _, err := ParseCurrency("platinum"); err != ErrUnknownCurrency {
		t.Fatalf("expected ErrUnknownCurrency, got %v", err)
	}
	if Black.Mineable() {
		t.Fatal("black tokens must not be mineable")
	}
	if !Red.Mineable() || !Gold.Mineable() {
		t.Fatal("red and gold must be mineable")
	}
}
