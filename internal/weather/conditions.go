package weather

import "github.com/talgya/citycore/internal/simrand"

// Conditions is the day's weather draw: temperature, storm/snow/rain flags,
// and wind, generated deterministically instead of fetched.
type Conditions struct {
	Temp      float64 // Celsius
	WindSpeed float64 // m/s
	IsStorm   bool
	IsSnow    bool
	IsRain    bool
}

// SimModifiers holds simulation-facing effects derived from conditions,
// mirroring the shape of a real weather-to-gameplay mapping: a temperature
// modifier, a food/decay multiplier, and a travel penalty.
type SimModifiers struct {
	TempModifier  float64 // -1 cold .. +1 hot
	FoodDecayMod  float64
	TravelPenalty float64
	Description   string
}

// Generate derives the day's weather conditions from the season and a
// warming offset (from climate state) using the deterministic random
// source, keyed on the game-day index.
func Generate(rng *simrand.Source, day uint64, season Season, warmingOffsetC float64) Conditions {
	tempNoise := (rng.Float(day, simrand.SubsystemWeather, 0) - 0.5) * 10
	temp := season.baseTemp() + tempNoise + warmingOffsetC

	stormRoll := rng.Float(day, simrand.SubsystemWeather, 1)
	isStorm := stormRoll < season.stormProbability()

	rainRoll := rng.Float(day, simrand.SubsystemWeather, 2)
	isRain := !isStorm && rainRoll < 0.25
	isSnow := !isStorm && !isRain && season == Winter && temp < 2 && rainRoll < 0.35

	windSpeed := rng.Float(day, simrand.SubsystemWeather, 3) * 12
	if isStorm {
		windSpeed += 10
	}

	return Conditions{Temp: temp, WindSpeed: windSpeed, IsStorm: isStorm, IsSnow: isSnow, IsRain: isRain}
}

// MapToSim converts conditions into simulation modifiers.
func MapToSim(c Conditions, season Season) SimModifiers {
	m := SimModifiers{FoodDecayMod: 1.0, TravelPenalty: 1.0}

	m.TempModifier = (c.Temp - 20) / 20
	if m.TempModifier < -1 {
		m.TempModifier = -1
	}
	if m.TempModifier > 1 {
		m.TempModifier = 1
	}

	switch {
	case c.Temp > 30:
		m.FoodDecayMod = 1.5
	case c.Temp > 25:
		m.FoodDecayMod = 1.2
	case c.Temp < 0:
		m.FoodDecayMod = 0.7
	}

	switch {
	case c.IsStorm:
		m.TravelPenalty = 2.0
	case c.IsSnow:
		m.TravelPenalty = 1.5
	case c.IsRain:
		m.TravelPenalty = 1.2
	}

	m.Description = describe(c, season)
	return m
}

func describe(c Conditions, season Season) string {
	switch {
	case c.IsStorm:
		return "stormy " + season.String() + " weather"
	case c.IsSnow:
		return "snowy " + season.String() + " day"
	case c.IsRain:
		return "rainy " + season.String() + " day"
	default:
		return "clear " + season.String() + " weather"
	}
}
