package units

import (
	"math"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestConvert(t *testing.T) {
	cases := []struct {
		u    Length
		want float64
		sym  string
	}{
		{Meters, 1000, "m"},
		{Feet, 3280.84, "ft"},
		{Miles, 0.621371, "mi"},
		{Kilometers, 1, "km"},
		{LightYears, 1.057e-13, "ly"},
	}
	for _, tc := range cases {
		got := tc.u.Convert(1000)
		if math.Abs(got-tc.want) > 1e-9*math.Max(1, tc.want) {
			t.Fatalf("%v: got %v want %v", tc.u, got, tc.want)
		}
		if tc.u.Symbol() != tc.sym {
			t.Fatalf("%v: symbol=%q want %q", tc.u, tc.u.Symbol(), tc.sym)
		}
	}
}

func TestNext_Wraps(t *testing.T) {
	if got := LightYears.Next(1); got != Meters {
		t.Fatalf("next=%v want meters", got)
	}
	if got := Meters.Next(-1); got != LightYears {
		t.Fatalf("prev=%v want light-years", got)
	}
	u := Feet
	for range All {
		u = u.Next(1)
	}
	if u != Feet {
		t.Fatalf("full lap=%v want feet", u)
	}
}

func TestParse(t *testing.T) {
	for in, want := range map[string]Length{
		"m":           Meters,
		"FT":          Feet,
		" miles ":     Miles,
		"kilometre":   Kilometers,
		"light-years": LightYears,
	} {
		got, err := Parse(in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("Parse(%q)=%v want %v", in, got, want)
		}
	}
	if _, err := Parse("furlongs"); err == nil {
		t.Fatalf("expected error for unknown unit")
	}
}

func TestYAML(t *testing.T) {
	var v struct {
		Unit Length `yaml:"unit"`
	}
	if err := yaml.Unmarshal([]byte("unit: ft\n"), &v); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if v.Unit != Feet {
		t.Fatalf("unit=%v want feet", v.Unit)
	}
	out, err := yaml.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(out) != "unit: feet\n" {
		t.Fatalf("yaml=%q", out)
	}
}
