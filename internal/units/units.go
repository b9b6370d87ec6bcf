// Package units implements the physical-unit and time-duration tables
// named in the type system: a base unit per dimension and a table of
// (name, factor, offset) conversion tuples for each unit belonging to
// that dimension. Mass, length and volume are wired onto
// github.com/martinlindhe/unit, the same library and base units the
// reference unit registry builds its length/mass/volume conversions
// on. The remaining dimensions have no ready-made conversion in that
// library and are implemented with float64 (factor, offset)
// tables in the same idiom, temperature's included as the only affine
// one.
package units

import (
	"fmt"
	"strings"

	mlunit "github.com/martinlindhe/unit"
)

// Dimension names a physical quantity kind.
type Dimension string

const (
	Mass        Dimension = "mass"
	Length      Dimension = "length"
	Volume      Dimension = "volume"
	Temperature Dimension = "temperature"
	Power       Dimension = "power"
	Force       Dimension = "force"
	Pressure    Dimension = "pressure"
	Energy      Dimension = "energy"
	Frequency   Dimension = "frequency"
	DataSize    Dimension = "data_size"
)

// Info describes one recognised unit name: its dimension and the
// closures that convert a magnitude to and from the dimension's base
// unit.
type Info struct {
	Dimension    Dimension
	ToBaseUnit   func(float64) float64
	FromBaseUnit func(float64) float64
}

var registry map[string]Info

func init() {
	registry = make(map[string]Info)
	addLengthUnits(registry)
	addMassUnits(registry)
	addVolumeUnits(registry)
	addTemperatureUnits(registry)
	addPowerUnits(registry)
	addForceUnits(registry)
	addPressureUnits(registry)
	addEnergyUnits(registry)
	addFrequencyUnits(registry)
	addDataSizeUnits(registry)
}

// Lookup returns the conversion info for a unit name (case-insensitive,
// singular or plural).
func Lookup(name string) (Info, bool) {
	info, ok := registry[strings.ToLower(name)]
	return info, ok
}

// IsKnown reports whether name is a recognised unit.
func IsKnown(name string) bool {
	_, ok := registry[strings.ToLower(name)]
	return ok
}

// DimensionOf returns the dimension of a known unit name.
func DimensionOf(name string) (Dimension, bool) {
	info, ok := Lookup(name)
	if !ok {
		return "", false
	}
	return info.Dimension, true
}

// Convert converts value expressed in `from` to the equivalent
// magnitude in `to`. Both units must share a dimension.
func Convert(value float64, from, to string) (float64, error) {
	fromInfo, ok := Lookup(from)
	if !ok {
		return 0, fmt.Errorf("unknown unit %q", from)
	}
	toInfo, ok := Lookup(to)
	if !ok {
		return 0, fmt.Errorf("unknown unit %q", to)
	}
	if fromInfo.Dimension != toInfo.Dimension {
		return 0, fmt.Errorf("cannot convert %s to %s: different dimensions (%s vs %s)", from, to, fromInfo.Dimension, toInfo.Dimension)
	}
	base := fromInfo.ToBaseUnit(value)
	return toInfo.FromBaseUnit(base), nil
}

func register(registry map[string]Info, dim Dimension, toBase, fromBase func(float64) float64, names ...string) {
	info := Info{Dimension: dim, ToBaseUnit: toBase, FromBaseUnit: fromBase}
	for _, n := range names {
		registry[n] = info
	}
}

// addLengthUnits: base unit meter.
func addLengthUnits(r map[string]Info) {
	register(r, Length, func(v float64) float64 { return v }, func(v float64) float64 { return v }, "m", "meter", "meters", "metre", "metres")
	register(r, Length,
		func(v float64) float64 { return (mlunit.Length(v) * mlunit.Kilometer).Meters() },
		func(v float64) float64 { return (mlunit.Length(v) * mlunit.Meter).Kilometers() },
		"km", "kilometer", "kilometers", "kilometre", "kilometres")
	register(r, Length,
		func(v float64) float64 { return (mlunit.Length(v) * mlunit.Centimeter).Meters() },
		func(v float64) float64 { return (mlunit.Length(v) * mlunit.Meter).Centimeters() },
		"cm", "centimeter", "centimeters", "centimetre", "centimetres")
	register(r, Length,
		func(v float64) float64 { return (mlunit.Length(v) * mlunit.Millimeter).Meters() },
		func(v float64) float64 { return (mlunit.Length(v) * mlunit.Meter).Millimeters() },
		"mm", "millimeter", "millimeters", "millimetre", "millimetres")
	register(r, Length,
		func(v float64) float64 { return (mlunit.Length(v) * mlunit.Foot).Meters() },
		func(v float64) float64 { return (mlunit.Length(v) * mlunit.Meter).Feet() },
		"ft", "foot", "feet")
	// "in" itself is reserved for the conversion operator; only the
	// unambiguous spellings are registered here.
	register(r, Length,
		func(v float64) float64 { return (mlunit.Length(v) * mlunit.Inch).Meters() },
		func(v float64) float64 { return (mlunit.Length(v) * mlunit.Meter).Inches() },
		"inch", "inches")
	register(r, Length,
		func(v float64) float64 { return (mlunit.Length(v) * mlunit.Yard).Meters() },
		func(v float64) float64 { return (mlunit.Length(v) * mlunit.Meter).Yards() },
		"yd", "yard", "yards")
	register(r, Length,
		func(v float64) float64 { return (mlunit.Length(v) * mlunit.Mile).Meters() },
		func(v float64) float64 { return (mlunit.Length(v) * mlunit.Meter).Miles() },
		"mi", "mile", "miles")
	register(r, Length,
		func(v float64) float64 { return (mlunit.Length(v) * mlunit.NauticalMile).Meters() },
		func(v float64) float64 { return (mlunit.Length(v) * mlunit.Meter).NauticalMiles() },
		"nmi", "nautical mile", "nautical miles")
}

// addMassUnits: base unit kilogram.
func addMassUnits(r map[string]Info) {
	register(r, Mass, func(v float64) float64 { return v }, func(v float64) float64 { return v }, "kg", "kilogram", "kilograms")
	register(r, Mass,
		func(v float64) float64 { return (mlunit.Mass(v) * mlunit.Gram).Kilograms() },
		func(v float64) float64 { return (mlunit.Mass(v) * mlunit.Kilogram).Grams() },
		"g", "gram", "grams")
	register(r, Mass,
		func(v float64) float64 { return (mlunit.Mass(v) * mlunit.Milligram).Kilograms() },
		func(v float64) float64 { return (mlunit.Mass(v) * mlunit.Kilogram).Milligrams() },
		"mg", "milligram", "milligrams")
	register(r, Mass,
		func(v float64) float64 { return (mlunit.Mass(v) * mlunit.Tonne).Kilograms() },
		func(v float64) float64 { return (mlunit.Mass(v) * mlunit.Kilogram).Tonnes() },
		"t", "tonne", "tonnes", "metric ton", "metric tons")
	register(r, Mass,
		func(v float64) float64 { return (mlunit.Mass(v) * mlunit.AvoirdupoisPound).Kilograms() },
		func(v float64) float64 { return (mlunit.Mass(v) * mlunit.Kilogram).AvoirdupoisPounds() },
		"lb", "lbs", "pound", "pounds")
	register(r, Mass,
		func(v float64) float64 { return (mlunit.Mass(v) * mlunit.AvoirdupoisOunce).Kilograms() },
		func(v float64) float64 { return (mlunit.Mass(v) * mlunit.Kilogram).AvoirdupoisOunces() },
		"oz", "ounce", "ounces")
}

// addVolumeUnits: base unit liter.
func addVolumeUnits(r map[string]Info) {
	register(r, Volume, func(v float64) float64 { return v }, func(v float64) float64 { return v }, "l", "liter", "liters", "litre", "litres")
	register(r, Volume,
		func(v float64) float64 { return (mlunit.Volume(v) * mlunit.Milliliter).Liters() },
		func(v float64) float64 { return (mlunit.Volume(v) * mlunit.Liter).Milliliters() },
		"ml", "milliliter", "milliliters", "millilitre", "millilitres")
	register(r, Volume,
		func(v float64) float64 { return (mlunit.Volume(v) * mlunit.USLiquidGallon).Liters() },
		func(v float64) float64 { return (mlunit.Volume(v) * mlunit.Liter).USLiquidGallons() },
		"gal", "gallon", "gallons")
	register(r, Volume,
		func(v float64) float64 { return (mlunit.Volume(v) * mlunit.USLiquidPint).Liters() },
		func(v float64) float64 { return (mlunit.Volume(v) * mlunit.Liter).USLiquidPints() },
		"pt", "pint", "pints")
	register(r, Volume,
		func(v float64) float64 { return (mlunit.Volume(v) * mlunit.USLiquidQuart).Liters() },
		func(v float64) float64 { return (mlunit.Volume(v) * mlunit.Liter).USLiquidQuarts() },
		"qt", "quart", "quarts")
	register(r, Volume,
		func(v float64) float64 { return (mlunit.Volume(v) * mlunit.USLegalCup).Liters() },
		func(v float64) float64 { return (mlunit.Volume(v) * mlunit.Liter).USLegalCups() },
		"cup", "cups")
}

// addTemperatureUnits: base unit kelvin. Affine (factor, offset) pairs.
func addTemperatureUnits(r map[string]Info) {
	register(r, Temperature, func(v float64) float64 { return v }, func(v float64) float64 { return v }, "kelvin", "k")
	register(r, Temperature,
		func(v float64) float64 { return v + 273.15 },
		func(v float64) float64 { return v - 273.15 },
		"celsius", "c")
	register(r, Temperature,
		func(v float64) float64 { return (v-32)*5/9 + 273.15 },
		func(v float64) float64 { return (v-273.15)*9/5 + 32 },
		"fahrenheit", "f")
}

// addPowerUnits: base unit watt.
func addPowerUnits(r map[string]Info) {
	register(r, Power, func(v float64) float64 { return v }, func(v float64) float64 { return v }, "watt", "watts", "w")
	register(r, Power, func(v float64) float64 { return v * 1000 }, func(v float64) float64 { return v / 1000 }, "kilowatt", "kilowatts", "kw")
	register(r, Power, func(v float64) float64 { return v * 745.699872 }, func(v float64) float64 { return v / 745.699872 }, "horsepower", "hp")
}

// addForceUnits: base unit newton.
func addForceUnits(r map[string]Info) {
	register(r, Force, func(v float64) float64 { return v }, func(v float64) float64 { return v }, "newton", "newtons", "n")
	register(r, Force, func(v float64) float64 { return v * 4.4482216153 }, func(v float64) float64 { return v / 4.4482216153 }, "pound-force", "lbf")
}

// addPressureUnits: base unit pascal.
func addPressureUnits(r map[string]Info) {
	register(r, Pressure, func(v float64) float64 { return v }, func(v float64) float64 { return v }, "pascal", "pascals", "pa")
	register(r, Pressure, func(v float64) float64 { return v * 1000 }, func(v float64) float64 { return v / 1000 }, "kilopascal", "kilopascals", "kpa")
	register(r, Pressure, func(v float64) float64 { return v * 100000 }, func(v float64) float64 { return v / 100000 }, "bar", "bars")
	register(r, Pressure, func(v float64) float64 { return v * 6894.757293168 }, func(v float64) float64 { return v / 6894.757293168 }, "psi")
}

// addEnergyUnits: base unit joule.
func addEnergyUnits(r map[string]Info) {
	register(r, Energy, func(v float64) float64 { return v }, func(v float64) float64 { return v }, "joule", "joules", "j")
	register(r, Energy, func(v float64) float64 { return v * 1000 }, func(v float64) float64 { return v / 1000 }, "kilojoule", "kilojoules", "kj")
	register(r, Energy, func(v float64) float64 { return v * 4184 }, func(v float64) float64 { return v / 4184 }, "kilocalorie", "kilocalories", "kcal")
	register(r, Energy, func(v float64) float64 { return v * 3600000 }, func(v float64) float64 { return v / 3600000 }, "kilowatt-hour", "kwh")
}

// addFrequencyUnits: base unit hertz.
func addFrequencyUnits(r map[string]Info) {
	register(r, Frequency, func(v float64) float64 { return v }, func(v float64) float64 { return v }, "hertz", "hz")
	register(r, Frequency, func(v float64) float64 { return v * 1000 }, func(v float64) float64 { return v / 1000 }, "kilohertz", "khz")
	register(r, Frequency, func(v float64) float64 { return v * 1e6 }, func(v float64) float64 { return v / 1e6 }, "megahertz", "mhz")
	register(r, Frequency, func(v float64) float64 { return v * 1e9 }, func(v float64) float64 { return v / 1e9 }, "gigahertz", "ghz")
}

// addDataSizeUnits: base unit byte, binary (1024) multiples as is
// conventional for storage sizes.
func addDataSizeUnits(r map[string]Info) {
	register(r, DataSize, func(v float64) float64 { return v }, func(v float64) float64 { return v }, "byte", "bytes", "b")
	register(r, DataSize, func(v float64) float64 { return v * 1024 }, func(v float64) float64 { return v / 1024 }, "kilobyte", "kilobytes", "kb")
	register(r, DataSize, func(v float64) float64 { return v * 1024 * 1024 }, func(v float64) float64 { return v / (1024 * 1024) }, "megabyte", "megabytes", "mb")
	register(r, DataSize, func(v float64) float64 { return v * 1024 * 1024 * 1024 }, func(v float64) float64 { return v / (1024 * 1024 * 1024) }, "gigabyte", "gigabytes", "gb")
	register(r, DataSize, func(v float64) float64 { return v * 1024 * 1024 * 1024 * 1024 }, func(v float64) float64 { return v / (1024 * 1024 * 1024 * 1024) }, "terabyte", "terabytes", "tb")
}
