package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	telcolcaexporter "github.com/carbonwise/telco-lca-exporter"
)

var (
	testEquipment = EquipmentProfile{
		LifetimeYears:          10,
		ManufacturingEnergyKWh: 30000,
		EOLEnergyKWh:           2000,
		BasePowerKW:            5.0,
	}
	testFactors = EmissionFactors{
		Grid:      0.55,
		Renewable: 0.05,
		Recycling: 0.30,
	}
)

func TestComputeSeriesBaseline(t *testing.T) {
	series, err := ComputeSeries(testEquipment, testFactors, BaselineParams, false)
	require.NoError(t, err)
	require.Len(t, series, 10)

	// 5 kW * 8760 h * 0.55 kgCO2/kWh
	for _, record := range series {
		assert.InDelta(t, 24090.0, record.OperationalKgCO2, 1e-6)
	}

	// all manufacturing on year 0: 30000 kWh * 0.55 kgCO2/kWh
	assert.InDelta(t, 16500.0, series[0].ManufacturingKgCO2, 1e-6)
	assert.InDelta(t, 40590.0, series[0].TotalKgCO2, 1e-6)
	for _, record := range series[1:] {
		assert.Zero(t, record.ManufacturingKgCO2)
	}

	// end of life only on the final year: 2000 kWh * 0.30 kgCO2/kWh
	for _, record := range series[:9] {
		assert.Zero(t, record.EOLKgCO2)
	}
	assert.InDelta(t, 600.0, series[9].EOLKgCO2, 1e-6)
	assert.InDelta(t, 24690.0, series[9].TotalKgCO2, 1e-6)

	summary := Summarize("baseline", series)
	assert.InDelta(t, 258000.0, summary.TotalKgCO2, 1e-6)
}

func TestComputeSeriesRenewable(t *testing.T) {
	series, err := ComputeSeries(testEquipment, testFactors, ScenarioParams{RenewableShare: 1}, false)
	require.NoError(t, err)

	// 5 kW * 8760 h * 0.05 kgCO2/kWh
	assert.InDelta(t, 2190.0, series[0].OperationalKgCO2, 1e-6)

	summary := Summarize("renewable", series)
	assert.InDelta(t, 16500.0, summary.ManufacturingKgCO2, 1e-6)
	assert.InDelta(t, 21900.0, summary.OperationalKgCO2, 1e-6)
	assert.InDelta(t, 600.0, summary.EOLKgCO2, 1e-6)
	assert.InDelta(t, 39000.0, summary.TotalKgCO2, 1e-6)
}

func TestComputeSeriesComponentSumIdentity(t *testing.T) {
	for _, scenario := range DefaultScenarios().Scenarios() {
		series, err := ComputeSeries(testEquipment, testFactors, scenario.Params, false)
		require.NoError(t, err)

		summary := Summarize(scenario.Name, series)

		totalOfTotals := 0.0
		for _, record := range series {
			assert.InDelta(t, record.TotalKgCO2, record.ManufacturingKgCO2+record.OperationalKgCO2+record.EOLKgCO2, 1e-9)
			totalOfTotals += record.TotalKgCO2
		}
		assert.InDelta(t, summary.TotalKgCO2, totalOfTotals, 1e-9)
		assert.InDelta(t, summary.TotalKgCO2, summary.ManufacturingKgCO2+summary.OperationalKgCO2+summary.EOLKgCO2, 1e-9)
	}
}

func TestManufacturingSpreadInvariance(t *testing.T) {
	upfront, err := ComputeSeries(testEquipment, testFactors, BaselineParams, false)
	require.NoError(t, err)
	spread, err := ComputeSeries(testEquipment, testFactors, BaselineParams, true)
	require.NoError(t, err)

	// amortizing changes per year values, not the lifetime sum
	assert.InDelta(t, 1650.0, spread[0].ManufacturingKgCO2, 1e-6)
	assert.InDelta(t, spread[0].ManufacturingKgCO2, spread[9].ManufacturingKgCO2, 1e-9)
	assert.InDelta(t,
		Summarize("", upfront).ManufacturingKgCO2,
		Summarize("", spread).ManufacturingKgCO2,
		1e-6)
}

func TestComputeSeriesValidation(t *testing.T) {
	invalidErr := new(telcolcaexporter.InvalidParameterErr)

	_, err := ComputeSeries(EquipmentProfile{LifetimeYears: 0}, testFactors, BaselineParams, false)
	require.ErrorAs(t, err, &invalidErr)
	assert.Equal(t, "lifetime_years", invalidErr.Parameter)

	badEquipment := testEquipment
	badEquipment.BasePowerKW = -1
	_, err = ComputeSeries(badEquipment, testFactors, BaselineParams, false)
	assert.ErrorAs(t, err, &invalidErr)

	badFactors := testFactors
	badFactors.Renewable = -0.1
	_, err = ComputeSeries(testEquipment, badFactors, BaselineParams, false)
	assert.ErrorAs(t, err, &invalidErr)

	for _, scenario := range []ScenarioParams{
		{SleepFrac: 1},
		{SleepFrac: -0.1},
		{RenewableShare: 1.1},
		{RenewableShare: -0.1},
	} {
		_, err = ComputeSeries(testEquipment, testFactors, scenario, false)
		assert.ErrorAs(t, err, &invalidErr, "scenario %+v", scenario)
	}

	// sleep_frac upper bound is exclusive, renewable_share is not
	_, err = ComputeSeries(testEquipment, testFactors, ScenarioParams{RenewableShare: 1}, false)
	assert.NoError(t, err)
}

func TestSummarizeEmptySeries(t *testing.T) {
	summary := Summarize("degenerate", nil)
	assert.Equal(t, "degenerate", summary.Scenario)
	assert.Zero(t, summary.ManufacturingKgCO2)
	assert.Zero(t, summary.OperationalKgCO2)
	assert.Zero(t, summary.EOLKgCO2)
	assert.Zero(t, summary.TotalKgCO2)
}

func TestInvalidParameterErrUnwrap(t *testing.T) {
	err := testEquipment.Validate()
	assert.NoError(t, err)

	bad := testEquipment
	bad.LifetimeYears = -3
	err = bad.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lifetime_years")
	assert.NotNil(t, errors.Unwrap(err))
}
