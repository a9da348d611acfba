// Package units converts navigation distances (always meters internally)
// into the unit the user selected for display.
package units

import (
	"fmt"
	"strings"
)

// Length is a user-selectable unit of length.
type Length int

const (
	Meters Length = iota
	Feet
	Miles
	Kilometers
	LightYears
)

// All lists every unit in menu order.
var All = []Length{Meters, Feet, Miles, Kilometers, LightYears}

var factors = map[Length]float64{
	Meters:     1,
	Feet:       3.28084,
	Miles:      0.000621371,
	Kilometers: 0.001,
	LightYears: 1.057e-16,
}

var symbols = map[Length]string{
	Meters:     "m",
	Feet:       "ft",
	Miles:      "mi",
	Kilometers: "km",
	LightYears: "ly",
}

var names = map[Length]string{
	Meters:     "meters",
	Feet:       "feet",
	Miles:      "miles",
	Kilometers: "kilometers",
	LightYears: "light-years",
}

// Convert returns meters expressed in u. Unknown units pass meters through.
func (u Length) Convert(meters float64) float64 {
	f, ok := factors[u]
	if !ok {
		return meters
	}
	return meters * f
}

// Symbol is the short suffix shown after a distance, e.g. "ft".
func (u Length) Symbol() string {
	if s, ok := symbols[u]; ok {
		return s
	}
	return "?"
}

func (u Length) String() string {
	if s, ok := names[u]; ok {
		return s
	}
	return fmt.Sprintf("Length(%d)", int(u))
}

// Next returns the unit after u in menu order, wrapping at the end.
// A negative step walks backward.
func (u Length) Next(step int) Length {
	i := 0
	for j, v := range All {
		if v == u {
			i = j
			break
		}
	}
	n := len(All)
	return All[((i+step)%n+n)%n]
}

// Parse accepts a unit name or symbol, case-insensitively.
func Parse(s string) (Length, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for _, u := range All {
		if key == names[u] || key == symbols[u] {
			return u, nil
		}
	}
	switch key {
	case "meter", "metre", "metres":
		return Meters, nil
	case "foot":
		return Feet, nil
	case "mile":
		return Miles, nil
	case "kilometer", "kilometre", "kilometres":
		return Kilometers, nil
	case "light-year", "lightyears", "light_years":
		return LightYears, nil
	}
	return Meters, fmt.Errorf("units: unknown length unit %q", s)
}

// UnmarshalText lets Length appear directly in YAML config.
func (u *Length) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*u = v
	return nil
}

func (u Length) MarshalText() ([]byte, error) {
	if _, ok := names[u]; !ok {
		return nil, fmt.Errorf("units: unknown length unit %d", int(u))
	}
	return []byte(u.String()), nil
}
