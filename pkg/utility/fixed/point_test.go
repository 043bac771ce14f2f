package fixed

import (
	"testing"
)

func TestPoint_Arithmetic(t *testing.T) {
	tests := []struct {
		name     string
		result   Point
		expected string
	}{
		{"Add", FromInt(217, 2).Add(FromInt(54, 2)), "2.71"},
		{"Sub", FromInt(10, 0).Sub(FromInt64(25, 1)), "7.5"},
		{"Mul", FromInt(12, 1).Mul(FromInt(3, 0)), "3.6"},
		{"Div", FromInt(9, 0).Div(FromInt(4, 0)), "2.25"},
		{"MulInt", FromInt64(105, 1).MulInt(4), "42"},
		{"DivInt", FromInt(7, 0).DivInt(2), "3.5"},
		{"Neg", FromInt(3, 0).Neg(), "-3"},
		{"Abs", FromInt(-3, 0).Abs(), "3"},
		{"Sqrt", FromInt(16, 0).Sqrt(), "4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.result.String(); got != tt.expected {
				t.Errorf("got %s, expected %s", got, tt.expected)
			}
		})
	}
}

func TestPoint_Comparison(t *testing.T) {
	a := FromInt(3, 0)
	b := FromInt(30, 1)
	c := FromInt(4, 0)

	if !a.Eq(b) {
		t.Error("3 should equal 3.0")
	}
	if !c.Gt(a) || !a.Lt(c) {
		t.Error("ordering mismatch")
	}
	if !a.Gte(b) || !a.Lte(b) {
		t.Error("gte/lte mismatch for equal values")
	}
	if !Zero.IsZero() {
		t.Error("Zero.IsZero() should be true")
	}
}

func TestPoint_Parse(t *testing.T) {
	p, err := Parse("217.54")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.String() != "217.54" {
		t.Errorf("got %s", p.String())
	}

	if _, err := Parse("not-a-number"); err == nil {
		t.Error("expected error for invalid input")
	}
}

func TestPoint_Float64Unsafe(t *testing.T) {
	p := FromInt(125, 1)
	if got := p.Float64Unsafe(); got != 12.5 {
		t.Errorf("got %v, expected 12.5", got)
	}
}

func TestMath_Aggregates(t *testing.T) {
	points := []Point{
		FromInt(10, 0),
		FromInt(12, 0),
		FromInt(9, 0),
		FromInt(15, 0),
	}

	if got := Mean(points).String(); got != "11.5" {
		t.Errorf("Mean: got %s", got)
	}
	if got := Min(points).String(); got != "9" {
		t.Errorf("Min: got %s", got)
	}
	if got := Max(points).String(); got != "15" {
		t.Errorf("Max: got %s", got)
	}
	if got := Sum(points).String(); got != "46" {
		t.Errorf("Sum: got %s", got)
	}
}

func TestMath_EmptyAndSingle(t *testing.T) {
	if !Mean(nil).IsZero() {
		t.Error("Mean of empty slice should be zero")
	}
	if !StdDev([]Point{One}, One).IsZero() {
		t.Error("StdDev of single point should be zero")
	}
	if !Min(nil).IsZero() || !Max(nil).IsZero() {
		t.Error("Min/Max of empty slice should be zero")
	}
}
