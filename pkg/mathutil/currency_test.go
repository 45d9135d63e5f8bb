package mathutil

import (
	"math"
	"testing"
)

func TestRound(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{"Round up at midpoint", 1.235, 1.24},
		{"Round down below midpoint", 1.234, 1.23},
		{"No rounding needed", 1.23, 1.23},
		{"Large number", 12345.678, 12345.68},
		{"Negative number round down", -1.234, -1.23},
		{"Zero", 0.0, 0.0},
		{"Very small positive", 0.001, 0.00},
		{"Nearly two cents", 0.019, 0.02},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Round(tt.input)
			if math.Abs(result-tt.expected) > 0.001 {
				t.Errorf("Round(%v) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestIsZero(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected bool
	}{
		{"Exactly zero", 0.0, true},
		{"Very small negative", -0.001, true},
		{"Just above tolerance", 0.02, false},
		{"Large negative", -100.0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := IsZero(tt.input); result != tt.expected {
				t.Errorf("IsZero(%v) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestIsFinite(t *testing.T) {
	if !IsFinite(12.5) {
		t.Error("IsFinite(12.5) = false, expected true")
	}
	if IsFinite(math.NaN()) {
		t.Error("IsFinite(NaN) = true, expected false")
	}
	if IsFinite(math.Inf(-1)) {
		t.Error("IsFinite(-Inf) = true, expected false")
	}
}

func TestClampPercent(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{"Inside range", 42.5, 42.5},
		{"Negative clamps to zero", -3, 0},
		{"Above range clamps to hundred", 140, 100},
		{"NaN clamps to zero", math.NaN(), 0},
		{"Positive infinity", math.Inf(1), 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := ClampPercent(tt.input); result != tt.expected {
				t.Errorf("ClampPercent(%v) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestApplyAndCalculatePercentage(t *testing.T) {
	if got := ApplyPercentage(200000, 8); got != 16000 {
		t.Errorf("ApplyPercentage() = %v, expected 16000", got)
	}
	if got := CalculatePercentage(50, 200); got != 25 {
		t.Errorf("CalculatePercentage() = %v, expected 25", got)
	}
	if got := CalculatePercentage(50, 0); got != 0 {
		t.Errorf("CalculatePercentage() with zero total = %v, expected 0", got)
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		expected  float64
		wantError bool
	}{
		{"Plain integer", "1200", 1200, false},
		{"Comma decimal separator", "1200,50", 1200.5, false},
		{"Spaces as thousands separator", "1 200,50", 1200.5, false},
		{"Percent sign", "8%", 8, false},
		{"Currency symbol", "€350", 350, false},
		{"Negative", "-12.5", -12.5, false},
		{"Empty string is zero", "   ", 0, false},
		{"Only symbols", "€%", 0, true},
		{"Two decimal points", "1.2.3", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseAmount(tt.input)
			if tt.wantError {
				if err == nil {
					t.Errorf("ParseAmount(%q) expected error, got %v", tt.input, result)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAmount(%q) error = %v", tt.input, err)
			}
			if !WithinTolerance(result, tt.expected, 1e-9) {
				t.Errorf("ParseAmount(%q) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}
