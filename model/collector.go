package model

import (
	"context"
	"fmt"

	telcolcaexporter "github.com/carbonwise/telco-lca-exporter"
)

// Collector implements the telcolcaexporter.Collector interface over the
// lifecycle model: it evaluates every configured scenario and streams the
// resulting figures as metrics.
type Collector struct {
	Equipment           EquipmentProfile
	Factors             EmissionFactors
	Scenarios           *ScenarioSet
	ManufacturingSpread bool
}

func (c *Collector) Collect(ctx context.Context, metrics chan telcolcaexporter.Metric) error {
	defer close(metrics)

	table, err := ComputeScenarioTable(c.Equipment, c.Factors, c.ManufacturingSpread, c.Scenarios)
	if err != nil {
		return fmt.Errorf("failed to compute scenario table: %w", err)
	}

	for _, row := range table {
		// the baseline row is always the reference parameters, whatever the
		// set carries under that name
		scenario, found := c.Scenarios.Get(row.Scenario)
		if !found || row.Scenario == "baseline" {
			scenario = BaselineParams
		}
		series, err := ComputeSeries(c.Equipment, c.Factors, scenario, c.ManufacturingSpread)
		if err != nil {
			return fmt.Errorf("failed to compute scenario %s: %w", row.Scenario, err)
		}

		labels := map[string]string{"scenario": row.Scenario}

		for component, value := range map[string]float64{
			"manufacturing": row.ManufacturingKgCO2,
			"operational":   row.OperationalKgCO2,
			"eol":           row.EOLKgCO2,
			"total":         row.TotalKgCO2,
		} {
			if err := send(ctx, metrics, telcolcaexporter.Metric{
				Name:   "lifetime_co2_kg",
				Labels: telcolcaexporter.MergeLabels(labels, map[string]string{"component": component}),
				Value:  value,
			}); err != nil {
				return err
			}
		}

		for _, record := range series {
			if err := send(ctx, metrics, telcolcaexporter.Metric{
				Name:   "annual_co2_kg",
				Labels: telcolcaexporter.MergeLabels(labels, map[string]string{"year": fmt.Sprintf("%d", record.Year)}),
				Value:  record.TotalKgCO2,
			}); err != nil {
				return err
			}
		}

		if err := send(ctx, metrics, telcolcaexporter.Metric{
			Name:   "co2_savings_kg",
			Labels: labels,
			Value:  row.SavingsKgCO2,
		}); err != nil {
			return err
		}
		if err := send(ctx, metrics, telcolcaexporter.Metric{
			Name:   "co2_savings_percent",
			Labels: labels,
			Value:  row.SavingsPct,
		}); err != nil {
			return err
		}
	}

	return nil
}

func send(ctx context.Context, metrics chan telcolcaexporter.Metric, metric telcolcaexporter.Metric) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case metrics <- metric:
		return nil
	}
}
