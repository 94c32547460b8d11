package export

import (
	"bytes"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carbonwise/telco-lca-exporter/model"
)

var (
	testEquipment = model.EquipmentProfile{
		LifetimeYears:          10,
		ManufacturingEnergyKWh: 30000,
		EOLEnergyKWh:           2000,
		BasePowerKW:            5.0,
	}
	testFactors = model.EmissionFactors{
		Grid:      0.55,
		Renewable: 0.05,
		Recycling: 0.30,
	}
)

func buildTestReport(t *testing.T) *Report {
	t.Helper()
	report, err := BuildReport(testEquipment, testFactors, false, model.DefaultScenarios(), 11, 9)
	require.NoError(t, err)
	return report
}

func TestBuildReport(t *testing.T) {
	report := buildTestReport(t)

	// 5 scenarios over 10 years
	assert.Len(t, report.Annual, 50)
	assert.Len(t, report.Cumulative, 50)
	require.Len(t, report.Summary, 5)
	require.Len(t, report.SavingsSorted, 5)
	assert.Len(t, report.Grid.Cells, 99)

	assert.Equal(t, "baseline", report.Summary[0].Scenario)
	assert.Equal(t, "sleep+renewable", report.SavingsSorted[0].Scenario)
	assert.InDelta(t, 258000.0, report.Grid.BaselineKgCO2, 1e-6)
}

func TestBuildReportCumulativeRunningSums(t *testing.T) {
	report := buildTestReport(t)

	// the running sum restarts for every scenario and ends on the lifetime
	// total of its summary
	totals := make(map[string]float64)
	for _, row := range report.Cumulative {
		if row.Year == 0 {
			assert.InDelta(t, row.TotalKgCO2, row.CumulativeTotalKgCO2, 1e-9, "scenario %s", row.Scenario)
		}
		totals[row.Scenario] = row.CumulativeTotalKgCO2
	}

	for _, summary := range report.Summary {
		assert.InDelta(t, summary.TotalKgCO2, totals[summary.Scenario], 1e-6, "scenario %s", summary.Scenario)
	}
}

func TestBuildReportWithOverriddenBaselineEntry(t *testing.T) {
	// a set entry named "baseline" never overrides the reference
	// parameters: summary, annual and cumulative tables must agree
	scenarios := model.NewScenarioSet().
		Add("baseline", model.ScenarioParams{SleepFrac: 0.5}).
		Add("renewable", model.ScenarioParams{RenewableShare: 1})

	report, err := BuildReport(testEquipment, testFactors, false, scenarios, 11, 9)
	require.NoError(t, err)

	require.Equal(t, "baseline", report.Summary[0].Scenario)
	assert.InDelta(t, 258000.0, report.Summary[0].TotalKgCO2, 1e-6)

	annualTotal := 0.0
	lastCumulative := 0.0
	for _, row := range report.Annual {
		if row.Scenario == "baseline" {
			annualTotal += row.TotalKgCO2
		}
	}
	for _, row := range report.Cumulative {
		if row.Scenario == "baseline" {
			lastCumulative = row.CumulativeTotalKgCO2
		}
	}
	assert.InDelta(t, 258000.0, annualTotal, 1e-6)
	assert.InDelta(t, 258000.0, lastCumulative, 1e-6)
}

func TestBuildReportInvalidInput(t *testing.T) {
	_, err := BuildReport(model.EquipmentProfile{}, testFactors, false, model.DefaultScenarios(), 11, 9)
	assert.Error(t, err)
}

func TestWriteJSON(t *testing.T) {
	report := buildTestReport(t)

	buf := new(bytes.Buffer)
	require.NoError(t, WriteJSON(buf, report))

	decoded := make(map[string]any)
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	assert.Contains(t, decoded, "annual_results")
	assert.Contains(t, decoded, "cumulative_results")
	assert.Contains(t, decoded, "lifetime_summary")
	assert.Contains(t, decoded, "savings_sorted")
	assert.Contains(t, decoded, "savings_grid")

	annual, ok := decoded["annual_results"].([]any)
	require.True(t, ok)
	assert.Len(t, annual, 50)

	first, ok := annual[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "baseline", first["scenario"])
	assert.InDelta(t, 40590.0, first["total_kgCO2"].(float64), 1e-6)
}
