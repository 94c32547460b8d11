package telcolcaexporter

// HoursPerYear is the number of hours over which operational power draw is
// integrated for one year of the equipment lifetime.
const HoursPerYear = 24 * 365

// Power in kilowatt
type Power float64

// Energy in kilowatt-hour
type Energy float64

// Emissions in kgCO2
type Emissions float64

// EmissionFactor in kgCO2 per kilowatt-hour
type EmissionFactor float64

// AnnualEnergy integrates a constant power draw over one full year.
func (p Power) AnnualEnergy() Energy {
	return Energy(float64(p) * HoursPerYear)
}

// Emissions converts an amount of energy into emissions given a factor.
func (e Energy) Emissions(factor EmissionFactor) Emissions {
	return Emissions(float64(e) * float64(factor))
}

func (e Emissions) KgCO2() float64 {
	return float64(e)
}

func (e Emissions) TCO2() float64 {
	return float64(e) / 1000
}

// Blend mixes two emission factors, weight being the share of the first one.
// Blend(0.3, grid) on a renewable factor yields the effective factor of a 30%
// renewable supply.
func (f EmissionFactor) Blend(weight float64, other EmissionFactor) EmissionFactor {
	return EmissionFactor(weight*float64(f) + (1-weight)*float64(other))
}
