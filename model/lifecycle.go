package model

import (
	"errors"

	telcolcaexporter "github.com/carbonwise/telco-lca-exporter"
)

// EquipmentProfile describes one piece of telecommunications equipment.
// Created once at startup and never mutated.
type EquipmentProfile struct {
	// LifetimeYears is the total operational lifetime
	LifetimeYears int
	// ManufacturingEnergyKWh is the energy consumed by the manufacturing phase
	ManufacturingEnergyKWh telcolcaexporter.Energy
	// EOLEnergyKWh is the energy required by end-of-life processing
	EOLEnergyKWh telcolcaexporter.Energy
	// BasePowerKW is the average operational power draw
	BasePowerKW telcolcaexporter.Power
}

// EmissionFactors regroups the carbon intensity of the energy sources
// involved in the equipment lifecycle, in kgCO2 per kWh.
type EmissionFactors struct {
	Grid      telcolcaexporter.EmissionFactor
	Renewable telcolcaexporter.EmissionFactor
	Recycling telcolcaexporter.EmissionFactor
}

// ScenarioParams tunes one evaluation of the model. SleepFrac is the fraction
// of operational energy removed by sleep mode, RenewableShare the fraction of
// operational energy supplied by renewables.
type ScenarioParams struct {
	SleepFrac      float64
	RenewableShare float64
}

// YearRecord holds the emissions of a single lifetime year, split by
// lifecycle phase. EOLKgCO2 is zero everywhere except the final year.
type YearRecord struct {
	Year               int     `json:"year"`
	ManufacturingKgCO2 float64 `json:"manufacturing_kgCO2"`
	OperationalKgCO2   float64 `json:"operational_kgCO2"`
	EOLKgCO2           float64 `json:"eol_kgCO2"`
	TotalKgCO2         float64 `json:"total_kgCO2"`
}

// LifetimeSummary sums every YearRecord component over the whole lifetime.
type LifetimeSummary struct {
	Scenario           string  `json:"scenario"`
	ManufacturingKgCO2 float64 `json:"manufacturing_life_kgCO2"`
	OperationalKgCO2   float64 `json:"operational_life_kgCO2"`
	EOLKgCO2           float64 `json:"eol_life_kgCO2"`
	TotalKgCO2         float64 `json:"total_life_kgCO2"`
}

func (equipment EquipmentProfile) Validate() error {
	if equipment.LifetimeYears < 1 {
		return &telcolcaexporter.InvalidParameterErr{
			Parameter: "lifetime_years",
			Value:     float64(equipment.LifetimeYears),
			Err:       errors.New("must be at least one year"),
		}
	}
	for parameter, value := range map[string]float64{
		"manufacturing_energy_kwh": float64(equipment.ManufacturingEnergyKWh),
		"eol_energy_kwh":           float64(equipment.EOLEnergyKWh),
		"base_power_kw":            float64(equipment.BasePowerKW),
	} {
		if value < 0 {
			return &telcolcaexporter.InvalidParameterErr{
				Parameter: parameter,
				Value:     value,
				Err:       errors.New("must not be negative"),
			}
		}
	}
	return nil
}

func (factors EmissionFactors) Validate() error {
	for parameter, value := range map[string]float64{
		"grid_emission_factor":      float64(factors.Grid),
		"renewable_emission_factor": float64(factors.Renewable),
		"recycling_emission_factor": float64(factors.Recycling),
	} {
		if value < 0 {
			return &telcolcaexporter.InvalidParameterErr{
				Parameter: parameter,
				Value:     value,
				Err:       errors.New("must not be negative"),
			}
		}
	}
	return nil
}

func (scenario ScenarioParams) Validate() error {
	if scenario.SleepFrac < 0 || scenario.SleepFrac >= 1 {
		return &telcolcaexporter.InvalidParameterErr{
			Parameter: "sleep_frac",
			Value:     scenario.SleepFrac,
			Err:       errors.New("must lie in [0,1)"),
		}
	}
	if scenario.RenewableShare < 0 || scenario.RenewableShare > 1 {
		return &telcolcaexporter.InvalidParameterErr{
			Parameter: "renewable_share",
			Value:     scenario.RenewableShare,
			Err:       errors.New("must lie in [0,1]"),
		}
	}
	return nil
}

// ComputeSeries evaluates the lifecycle model for one scenario and returns
// one YearRecord per lifetime year. Operational emissions are identical every
// year (constant draw, no degradation). Manufacturing emissions land entirely
// on year 0 unless manufacturingSpread amortizes them evenly over the
// lifetime; the lifetime manufacturing total is the same either way.
// End-of-life emissions land on the final year only.
func ComputeSeries(equipment EquipmentProfile, factors EmissionFactors, scenario ScenarioParams, manufacturingSpread bool) ([]YearRecord, error) {
	if err := equipment.Validate(); err != nil {
		return nil, err
	}
	if err := factors.Validate(); err != nil {
		return nil, err
	}
	if err := scenario.Validate(); err != nil {
		return nil, err
	}

	effectiveEF := factors.Renewable.Blend(scenario.RenewableShare, factors.Grid)
	annualEnergy := telcolcaexporter.Energy(float64(equipment.BasePowerKW.AnnualEnergy()) * (1 - scenario.SleepFrac))
	operational := annualEnergy.Emissions(effectiveEF).KgCO2()
	manufacturing := equipment.ManufacturingEnergyKWh.Emissions(factors.Grid).KgCO2()

	series := make([]YearRecord, equipment.LifetimeYears)
	for year := range series {
		record := YearRecord{
			Year:             year,
			OperationalKgCO2: operational,
		}
		switch {
		case manufacturingSpread:
			record.ManufacturingKgCO2 = manufacturing / float64(equipment.LifetimeYears)
		case year == 0:
			record.ManufacturingKgCO2 = manufacturing
		}
		if year == equipment.LifetimeYears-1 {
			record.EOLKgCO2 = equipment.EOLEnergyKWh.Emissions(factors.Recycling).KgCO2()
		}
		record.TotalKgCO2 = record.ManufacturingKgCO2 + record.OperationalKgCO2 + record.EOLKgCO2
		series[year] = record
	}

	return series, nil
}

// Summarize reduces a series to its lifetime totals. An empty series yields
// a zeroed summary.
func Summarize(scenario string, series []YearRecord) LifetimeSummary {
	summary := LifetimeSummary{Scenario: scenario}
	for _, record := range series {
		summary.ManufacturingKgCO2 += record.ManufacturingKgCO2
		summary.OperationalKgCO2 += record.OperationalKgCO2
		summary.EOLKgCO2 += record.EOLKgCO2
		summary.TotalKgCO2 += record.TotalKgCO2
	}
	return summary
}
