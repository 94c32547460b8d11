// Package export is the reporting collaborator of the lifecycle model. It
// only consumes the structured numeric outputs of the model package and
// contains no emissions logic.
package export

import (
	"fmt"
	"time"

	"github.com/carbonwise/telco-lca-exporter/model"
	"gonum.org/v1/gonum/mat"
)

type AnnualRow struct {
	Scenario string `json:"scenario"`
	model.YearRecord
}

// CumulativeRow carries running sums over the years of one scenario,
// computed here and not by the model.
type CumulativeRow struct {
	AnnualRow
	CumulativeManufacturingKgCO2 float64 `json:"cumulative_manufacturing_kgCO2"`
	CumulativeOperationalKgCO2   float64 `json:"cumulative_operational_kgCO2"`
	CumulativeEOLKgCO2           float64 `json:"cumulative_eol_kgCO2"`
	CumulativeTotalKgCO2         float64 `json:"cumulative_total_kgCO2"`
}

// GridTable is the sensitivity sweep flattened for serialization, cells row
// major, sleep fraction rows first.
type GridTable struct {
	RenewableShares []float64               `json:"renewable_shares"`
	SleepFracs      []float64               `json:"sleep_fracs"`
	BaselineKgCO2   float64                 `json:"baseline_lifetime_kgCO2"`
	Cells           []model.SavingsGridCell `json:"cells"`
}

// Report regroups every table the reporting surface renders.
type Report struct {
	GeneratedAt   time.Time               `json:"generated_at"`
	Annual        []AnnualRow             `json:"annual_results"`
	Cumulative    []CumulativeRow         `json:"cumulative_results"`
	Summary       []model.ScenarioSummary `json:"lifetime_summary"`
	SavingsSorted []model.ScenarioSummary `json:"savings_sorted"`
	Grid          GridTable               `json:"savings_grid"`

	// dense view of the absolute savings, kept for the csv grid sheet
	savingsAbs *mat.Dense
}

// Prefix is the common, timestamped prefix of every file written for this
// report.
func (r *Report) Prefix() string {
	return fmt.Sprintf("telco_lca_%s", r.GeneratedAt.Format("20060102_150405"))
}

// BuildReport evaluates every configured scenario and the sensitivity sweep,
// then derives the presentation tables.
func BuildReport(equipment model.EquipmentProfile, factors model.EmissionFactors, manufacturingSpread bool, scenarios *model.ScenarioSet, renewableSteps, sleepSteps int) (*Report, error) {
	table, err := model.ComputeScenarioTable(equipment, factors, manufacturingSpread, scenarios)
	if err != nil {
		return nil, fmt.Errorf("failed to compute scenario table: %w", err)
	}

	report := &Report{
		GeneratedAt:   time.Now(),
		Summary:       table,
		SavingsSorted: model.SortBySavings(table),
	}

	for _, row := range table {
		// the baseline row is always the reference parameters, whatever the
		// set carries under that name
		params, found := scenarios.Get(row.Scenario)
		if !found || row.Scenario == "baseline" {
			params = model.BaselineParams
		}
		series, err := model.ComputeSeries(equipment, factors, params, manufacturingSpread)
		if err != nil {
			return nil, fmt.Errorf("failed to compute scenario %s: %w", row.Scenario, err)
		}

		cumulative := CumulativeRow{}
		for _, record := range series {
			annual := AnnualRow{Scenario: row.Scenario, YearRecord: record}
			report.Annual = append(report.Annual, annual)

			cumulative.AnnualRow = annual
			cumulative.CumulativeManufacturingKgCO2 += record.ManufacturingKgCO2
			cumulative.CumulativeOperationalKgCO2 += record.OperationalKgCO2
			cumulative.CumulativeEOLKgCO2 += record.EOLKgCO2
			cumulative.CumulativeTotalKgCO2 += record.TotalKgCO2
			report.Cumulative = append(report.Cumulative, cumulative)
		}
	}

	grid, err := model.ComputeSavingsGrid(equipment, factors, manufacturingSpread, renewableSteps, sleepSteps)
	if err != nil {
		return nil, fmt.Errorf("failed to compute savings grid: %w", err)
	}
	report.Grid = GridTable{
		RenewableShares: grid.RenewableShares,
		SleepFracs:      grid.SleepFracs,
		BaselineKgCO2:   grid.BaselineKgCO2,
		Cells:           grid.Cells(),
	}
	report.savingsAbs = grid.AbsMatrix()

	return report, nil
}
