// Package catalog holds the compiled-in table of drying profiles.
// Materials form a closed cycle used for menu navigation.
package catalog

import "time"

// Material identifies a drying profile. None means no active cycle.
type Material int

const (
	None Material = iota
	Demo
	Pla
	Pvb
	Petg
	Asa
	Tpu

	count // number of materials in the cycle
)

// Profile is the immutable drying recipe for a material.
type Profile struct {
	Name     string
	TempC    int
	Duration time.Duration
}

var profiles = [count]Profile{
	None: {Name: "IDLE", TempC: 0, Duration: 0},
	Demo: {Name: "DEMO", TempC: 45, Duration: 5 * time.Minute},
	Pla:  {Name: "PLA", TempC: 45, Duration: 6 * time.Hour},
	Pvb:  {Name: "PVB", TempC: 45, Duration: 8 * time.Hour},
	Petg: {Name: "PETG", TempC: 55, Duration: 6 * time.Hour},
	Asa:  {Name: "ASA", TempC: 80, Duration: 4 * time.Hour},
	Tpu:  {Name: "TPU", TempC: 60, Duration: 4 * time.Hour},
}

// All returns every material in cycle order, starting at None.
func All() []Material {
	out := make([]Material, count)
	for i := range out {
		out[i] = Material(i)
	}
	return out
}

// Get returns the profile for m. Unknown values map to the None profile.
func Get(m Material) Profile {
	if m < 0 || m >= count {
		return profiles[None]
	}
	return profiles[m]
}

// Next returns the material after m in the cycle None→Demo→…→Tpu→None.
func Next(m Material) Material {
	return Material((int(m) + 1) % int(count))
}

// Prev is the inverse of Next.
func Prev(m Material) Material {
	return Material((int(m) + int(count) - 1) % int(count))
}

// String returns the display name of m.
func (m Material) String() string {
	return Get(m).Name
}
