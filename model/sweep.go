package model

import (
	"errors"
	"fmt"
	"sort"

	telcolcaexporter "github.com/carbonwise/telco-lca-exporter"
	"github.com/carbonwise/telco-lca-exporter/internal/must"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	DefaultRenewableSteps = 11
	DefaultSleepSteps     = 9

	// the sleep axis stops at 80%: fully asleep equipment serves no traffic
	maxSweepSleepFrac = 0.8
)

// SavingsGridCell holds the lifetime emissions of one (renewable share,
// sleep fraction) combination and its savings against the baseline.
// SavingsPct is expressed in percent.
type SavingsGridCell struct {
	RenewableShare float64 `json:"renewable_share"`
	SleepFrac      float64 `json:"sleep_frac"`
	LifetimeKgCO2  float64 `json:"lifetime_total_kgCO2"`
	SavingsKgCO2   float64 `json:"savings_kgCO2"`
	SavingsPct     float64 `json:"savings_pct"`
}

// SavingsGrid is the result of a two dimensional sensitivity sweep. Cells are
// indexed by sleep fraction first, renewable share second.
type SavingsGrid struct {
	RenewableShares []float64
	SleepFracs      []float64
	BaselineKgCO2   float64

	cells [][]SavingsGridCell
}

func (grid *SavingsGrid) At(sleepIdx, renewableIdx int) SavingsGridCell {
	must.Assert(sleepIdx >= 0 && sleepIdx < len(grid.SleepFracs), "sleep index out of grid bounds")
	must.Assert(renewableIdx >= 0 && renewableIdx < len(grid.RenewableShares), "renewable index out of grid bounds")
	return grid.cells[sleepIdx][renewableIdx]
}

// Cells flattens the grid row major, sleep fraction rows first.
func (grid *SavingsGrid) Cells() []SavingsGridCell {
	cells := make([]SavingsGridCell, 0, len(grid.SleepFracs)*len(grid.RenewableShares))
	for _, row := range grid.cells {
		cells = append(cells, row...)
	}
	return cells
}

// AbsMatrix returns absolute savings as a dense matrix, one row per sleep
// fraction, one column per renewable share.
func (grid *SavingsGrid) AbsMatrix() *mat.Dense {
	return grid.matrix(func(cell SavingsGridCell) float64 { return cell.SavingsKgCO2 })
}

// PctMatrix returns percentage savings with the same layout as AbsMatrix.
func (grid *SavingsGrid) PctMatrix() *mat.Dense {
	return grid.matrix(func(cell SavingsGridCell) float64 { return cell.SavingsPct })
}

func (grid *SavingsGrid) matrix(value func(cell SavingsGridCell) float64) *mat.Dense {
	dense := mat.NewDense(len(grid.SleepFracs), len(grid.RenewableShares), nil)
	for i, row := range grid.cells {
		for j, cell := range row {
			dense.Set(i, j, value(cell))
		}
	}
	return dense
}

// ComputeSavingsGrid sweeps renewable share over [0,1] and sleep fraction
// over [0,0.8], both endpoints included, and compares every combination to
// the baseline lifetime total. Cells are independent so rows are computed
// concurrently; the baseline is computed once upfront and only read after.
func ComputeSavingsGrid(equipment EquipmentProfile, factors EmissionFactors, manufacturingSpread bool, renewableSteps, sleepSteps int) (*SavingsGrid, error) {
	if renewableSteps < 2 {
		return nil, &telcolcaexporter.InvalidParameterErr{
			Parameter: "renewable_steps",
			Value:     float64(renewableSteps),
			Err:       errors.New("sweep axis needs at least two points"),
		}
	}
	if sleepSteps < 2 {
		return nil, &telcolcaexporter.InvalidParameterErr{
			Parameter: "sleep_steps",
			Value:     float64(sleepSteps),
			Err:       errors.New("sweep axis needs at least two points"),
		}
	}

	baselineSeries, err := ComputeSeries(equipment, factors, BaselineParams, manufacturingSpread)
	if err != nil {
		return nil, fmt.Errorf("failed to compute baseline: %w", err)
	}
	baseline := Summarize("baseline", baselineSeries).TotalKgCO2

	grid := &SavingsGrid{
		RenewableShares: floats.Span(make([]float64, renewableSteps), 0, 1),
		SleepFracs:      floats.Span(make([]float64, sleepSteps), 0, maxSweepSleepFrac),
		BaselineKgCO2:   baseline,
		cells:           make([][]SavingsGridCell, sleepSteps),
	}

	errg := new(errgroup.Group)
	errg.SetLimit(5)

	for i, sleepFrac := range grid.SleepFracs {
		errg.Go(func() error {
			row := make([]SavingsGridCell, len(grid.RenewableShares))
			for j, renewableShare := range grid.RenewableShares {
				scenario := ScenarioParams{SleepFrac: sleepFrac, RenewableShare: renewableShare}
				series, err := ComputeSeries(equipment, factors, scenario, manufacturingSpread)
				if err != nil {
					return fmt.Errorf("failed to compute grid cell (sleep=%g, renewable=%g): %w", sleepFrac, renewableShare, err)
				}
				total := Summarize("", series).TotalKgCO2
				row[j] = SavingsGridCell{
					RenewableShare: renewableShare,
					SleepFrac:      sleepFrac,
					LifetimeKgCO2:  total,
					SavingsKgCO2:   baseline - total,
					SavingsPct:     savingsPercent(baseline, total),
				}
			}
			grid.cells[i] = row
			return nil
		})
	}

	if err := errg.Wait(); err != nil {
		return nil, err
	}

	return grid, nil
}

// savingsPercent defines the percentage as zero when the baseline is exactly
// zero instead of failing on the division.
func savingsPercent(baseline, total float64) float64 {
	if baseline == 0 {
		return 0
	}
	return (baseline - total) / baseline * 100
}

// ScenarioSummary is a LifetimeSummary annotated with its savings against
// the baseline scenario. SavingsPct is expressed in percent.
type ScenarioSummary struct {
	LifetimeSummary
	SavingsKgCO2 float64 `json:"savings_kgCO2"`
	SavingsPct   float64 `json:"savings_pct"`
}

// ComputeScenarioTable evaluates every scenario of the set and returns one
// summary per scenario. The baseline row always comes first, computed from
// BaselineParams whatever the set contains; the other rows follow the set
// insertion order.
func ComputeScenarioTable(equipment EquipmentProfile, factors EmissionFactors, manufacturingSpread bool, scenarios *ScenarioSet) ([]ScenarioSummary, error) {
	baselineSeries, err := ComputeSeries(equipment, factors, BaselineParams, manufacturingSpread)
	if err != nil {
		return nil, fmt.Errorf("failed to compute baseline: %w", err)
	}
	baselineSummary := Summarize("baseline", baselineSeries)

	table := []ScenarioSummary{{LifetimeSummary: baselineSummary}}

	for _, scenario := range scenarios.Scenarios() {
		if scenario.Name == "baseline" {
			continue
		}
		series, err := ComputeSeries(equipment, factors, scenario.Params, manufacturingSpread)
		if err != nil {
			return nil, fmt.Errorf("failed to compute scenario %s: %w", scenario.Name, err)
		}
		summary := Summarize(scenario.Name, series)
		table = append(table, ScenarioSummary{
			LifetimeSummary: summary,
			SavingsKgCO2:    baselineSummary.TotalKgCO2 - summary.TotalKgCO2,
			SavingsPct:      savingsPercent(baselineSummary.TotalKgCO2, summary.TotalKgCO2),
		})
	}

	return table, nil
}

// SortBySavings returns a copy of the table sorted by decreasing absolute
// savings. The sort is stable so ties keep their insertion order.
func SortBySavings(table []ScenarioSummary) []ScenarioSummary {
	sorted := make([]ScenarioSummary, len(table))
	copy(sorted, table)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SavingsKgCO2 > sorted[j].SavingsKgCO2
	})
	return sorted
}
