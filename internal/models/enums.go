package models

import "fmt"

// Weekday is the day a recipe is scheduled on inside a meal plan. Monday is 0.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// DaysInWeek is the number of Weekday values.
const DaysInWeek = 7

var weekdayLabels = [DaysInWeek]string{
	"Monday",
	"Tuesday",
	"Wednesday",
	"Thursday",
	"Friday",
	"Saturday",
	"Sunday",
}

// Weekdays returns every weekday in Monday..Sunday order.
func Weekdays() [DaysInWeek]Weekday {
	return [DaysInWeek]Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}
}

// Valid reports whether w is one of the seven weekdays.
func (w Weekday) Valid() bool {
	return w >= Monday && w <= Sunday
}

// Label returns the human readable weekday name, or "" for invalid values.
func (w Weekday) Label() string {
	if !w.Valid() {
		return ""
	}
	return weekdayLabels[w]
}

func (w Weekday) String() string {
	if !w.Valid() {
		return fmt.Sprintf("Weekday(%d)", int(w))
	}
	return weekdayLabels[w]
}

// MeasurementUnit is the unit ingredient quantities are expressed in.
type MeasurementUnit string

const (
	UnitGrams       MeasurementUnit = "g"
	UnitMilliliters MeasurementUnit = "ml"
	UnitUnits       MeasurementUnit = "unit"
)

var unitLabels = map[MeasurementUnit]string{
	UnitGrams:       "grams",
	UnitMilliliters: "milliliters",
	UnitUnits:       "units",
}

func (u MeasurementUnit) Valid() bool {
	_, ok := unitLabels[u]
	return ok
}

func (u MeasurementUnit) Label() string {
	return unitLabels[u]
}

// Difficulty grades how hard a recipe is to cook.
type Difficulty int

const (
	DifficultyEasy   Difficulty = 1
	DifficultyMedium Difficulty = 2
	DifficultyHard   Difficulty = 3
)

func (d Difficulty) Valid() bool {
	return d >= DifficultyEasy && d <= DifficultyHard
}

func (d Difficulty) Label() string {
	switch d {
	case DifficultyEasy:
		return "Easy"
	case DifficultyMedium:
		return "Medium"
	case DifficultyHard:
		return "Hard"
	default:
		return ""
	}
}

// ColourCode is the traffic light shown next to a nutrition value. Zero means unset.
type ColourCode int

const (
	ColourUnset ColourCode = iota
	ColourGreen
	ColourAmber
	ColourRed
)

func (c ColourCode) Valid() bool {
	return c >= ColourUnset && c <= ColourRed
}
