// Package config loads the immutable run configuration. Every entry point
// receives it explicitly, there is no process-wide state.
package config

import (
	"fmt"
	"os"

	telcolcaexporter "github.com/carbonwise/telco-lca-exporter"
	"github.com/carbonwise/telco-lca-exporter/model"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

type Equipment struct {
	LifetimeYears          int     `yaml:"lifetime_years"`
	ManufacturingEnergyKWh float64 `yaml:"manufacturing_energy_kwh"`
	EOLEnergyKWh           float64 `yaml:"eol_energy_kwh"`
	BasePowerKW            float64 `yaml:"base_power_kw"`
}

type Factors struct {
	Grid      float64 `yaml:"grid"`
	Renewable float64 `yaml:"renewable"`
	Recycling float64 `yaml:"recycling"`
}

type Scenario struct {
	Name           string  `yaml:"name"`
	SleepFrac      float64 `yaml:"sleep_frac"`
	RenewableShare float64 `yaml:"renewable_share"`
}

type Sweep struct {
	RenewableSteps int `yaml:"renewable_steps"`
	SleepSteps     int `yaml:"sleep_steps"`
}

type Config struct {
	Equipment           Equipment  `yaml:"equipment"`
	EmissionFactors     Factors    `yaml:"emission_factors"`
	ManufacturingSpread bool       `yaml:"manufacturing_spread"`
	Scenarios           []Scenario `yaml:"scenarios"`
	Sweep               Sweep      `yaml:"sweep"`
}

// Default returns the reference configuration of a 5G radio unit on a
// standard grid supply.
func Default() *Config {
	return &Config{
		Equipment: Equipment{
			LifetimeYears:          10,
			ManufacturingEnergyKWh: 30000,
			EOLEnergyKWh:           2000,
			BasePowerKW:            5.0,
		},
		EmissionFactors: Factors{
			Grid:      0.55,
			Renewable: 0.05,
			Recycling: 0.30,
		},
		ManufacturingSpread: false,
		Scenarios: []Scenario{
			{Name: "baseline"},
			{Name: "renewable", RenewableShare: 1},
			{Name: "mixed", RenewableShare: model.DefaultPartialRenewable},
			{Name: "sleep", SleepFrac: model.DefaultSleepModeReduction},
			{Name: "sleep+renewable", SleepFrac: model.DefaultSleepModeReduction, RenewableShare: 1},
		},
		Sweep: Sweep{
			RenewableSteps: model.DefaultRenewableSteps,
			SleepSteps:     model.DefaultSleepSteps,
		},
	}
}

// Load reads a yaml configuration file on top of the defaults and validates
// it before any computation starts. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	config := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration file: %w", err)
		}

		parsed := make(map[string]any)
		if err := yaml.Unmarshal(raw, &parsed); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file: %w", err)
		}

		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			TagName: "yaml",
			Result:  config,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to build configuration decoder: %w", err)
		}
		if err := decoder.Decode(parsed); err != nil {
			return nil, fmt.Errorf("failed to decode configuration: %w", err)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) Validate() error {
	if err := c.EquipmentProfile().Validate(); err != nil {
		return err
	}
	if err := c.Factors().Validate(); err != nil {
		return err
	}
	for _, scenario := range c.Scenarios {
		params := model.ScenarioParams{SleepFrac: scenario.SleepFrac, RenewableShare: scenario.RenewableShare}
		if err := params.Validate(); err != nil {
			return fmt.Errorf("scenario %s: %w", scenario.Name, err)
		}
	}
	return nil
}

func (c *Config) EquipmentProfile() model.EquipmentProfile {
	return model.EquipmentProfile{
		LifetimeYears:          c.Equipment.LifetimeYears,
		ManufacturingEnergyKWh: telcolcaexporter.Energy(c.Equipment.ManufacturingEnergyKWh),
		EOLEnergyKWh:           telcolcaexporter.Energy(c.Equipment.EOLEnergyKWh),
		BasePowerKW:            telcolcaexporter.Power(c.Equipment.BasePowerKW),
	}
}

func (c *Config) Factors() model.EmissionFactors {
	return model.EmissionFactors{
		Grid:      telcolcaexporter.EmissionFactor(c.EmissionFactors.Grid),
		Renewable: telcolcaexporter.EmissionFactor(c.EmissionFactors.Renewable),
		Recycling: telcolcaexporter.EmissionFactor(c.EmissionFactors.Recycling),
	}
}

// ScenarioSet builds the ordered scenario mapping, configuration order
// preserved.
func (c *Config) ScenarioSet() *model.ScenarioSet {
	set := model.NewScenarioSet()
	for _, scenario := range c.Scenarios {
		set.Add(scenario.Name, model.ScenarioParams{
			SleepFrac:      scenario.SleepFrac,
			RenewableShare: scenario.RenewableShare,
		})
	}
	return set
}
