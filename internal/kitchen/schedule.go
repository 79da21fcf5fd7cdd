// Package kitchen holds the household's 10-day meal rotation, the rolling daily
// food forecast and the shopping simulation cart.
package kitchen

import (
	"strings"
	"time"
)

// CycleLength is the number of days in the rotation.
const CycleLength = 10

// Meal is one rotation day, priced for the whole household.
type Meal struct {
	Day     int    `json:"day"`
	Morning string `json:"morning"`
	Noon    string `json:"noon"`
	Night   string `json:"night"`
	Total   int64  `json:"total"`
}

// Leftover reports whether the noon meal reuses food cooked earlier.
func (m Meal) Leftover() bool {
	noon := strings.ToLower(m.Noon)
	return strings.Contains(noon, "sisa") || strings.Contains(noon, "stok")
}

var schedule = [CycleLength]Meal{
	{Day: 1, Morning: "Gado-gado", Noon: "Tempe + Tahu + Sayur Asem", Night: "Telur Omlette/Original", Total: 67000},
	{Day: 2, Morning: "Mie Instan + Telur", Noon: "Karedok", Night: "Ayam De Kriuk (4) + Telur (2)", Total: 91500},
	{Day: 3, Morning: "Nasi Uduk (4) + Mie + Telur", Noon: "Gado-gado", Night: "Tempe + Tahu + Sambelan", Total: 77500},
	{Day: 4, Morning: "Tempe + Tahu + Sayur Asem", Noon: "Mie Instan (3) + Telur 1/4kg", Night: "Soto Mie", Total: 66500},
	{Day: 5, Morning: "Sayur Bakso", Noon: "Tempe + Tahu + Sambelan", Night: "Nasi Uduk (2) + Mie Instan (3)", Total: 70500},
	{Day: 6, Morning: "Nasgor Nyanyah + Telur 1/4kg", Noon: "Karedok", Night: "Soto Ayam (+Gas)", Total: 74000},
	{Day: 7, Morning: "Tempe + Tahu + Sayur Bayam", Noon: "Sisa Pagi + Sambelan", Night: "Telur 1/4kg + Soto Mie (2)", Total: 86000},
	{Day: 8, Morning: "Karedok", Noon: "Kentang Pedas + Tempe", Night: "Semur Tahu (Rempah + Kecap)", Total: 62000},
	{Day: 9, Morning: "Semur Telur + Tahu", Noon: "Stok Pagi (Sisa)", Night: "Mie Instan (2) + Telur (2)", Total: 74000},
	{Day: 10, Morning: "Nasgor Nyanyah + Telur (Sisa)", Noon: "Mie Instan (3)", Night: "Semur Kentang + Tempe (Sisa)", Total: 53500},
}

// Schedule returns a copy of the rotation.
func Schedule() []Meal {
	out := make([]Meal, CycleLength)
	copy(out, schedule[:])
	return out
}

// MealAt returns the meal for a zero-based rotation index. Out of range
// indexes wrap around the cycle.
func MealAt(index int) Meal {
	return schedule[wrap(index)]
}

// CycleDay is the zero-based rotation index for t: the 1st, 11th and 21st are 0.
func CycleDay(t time.Time) int {
	return (t.Day() - 1) % CycleLength
}

// Next moves one day forward, wrapping 9 to 0.
func Next(index int) int {
	return wrap(index + 1)
}

// Prev moves one day back, wrapping 0 to 9.
func Prev(index int) int {
	return wrap(index - 1)
}

func wrap(i int) int {
	i %= CycleLength
	if i < 0 {
		i += CycleLength
	}
	return i
}
